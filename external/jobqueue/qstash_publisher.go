package jobqueue

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fannax/internal/platform/logging"
	"github.com/riskibarqy/fannax/internal/platform/resilience"
	"github.com/riskibarqy/fannax/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errQStashTransient = crerr.New("qstash transient failure")

const internalJobTokenHeader = "X-Internal-Job-Token"

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
	HTTPClient       *http.Client
}

// QStashPublisher hands delayed job calls to Upstash QStash, which later
// POSTs them back to this service's internal job endpoints.
type QStashPublisher struct {
	client           *http.Client
	publishBaseURL   string
	targetBaseURL    string
	token            string
	retries          int
	internalJobToken string
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
}

var _ usecase.JobQueue = (*QStashPublisher)(nil)

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) (*QStashPublisher, error) {
	publishBaseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(cfg.TargetBaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, crerr.New("QSTASH_TOKEN is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &QStashPublisher{
		client:           client,
		publishBaseURL:   publishBaseURL,
		targetBaseURL:    targetBaseURL,
		token:            strings.TrimSpace(cfg.Token),
		retries:          max(cfg.Retries, 0),
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger.Named("qstash"),
		breaker:          resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}, nil
}

func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	if err := p.breaker.Allow(); err != nil {
		p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", p.breaker.State())
		return fmt.Errorf("%w: qstash is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return crerr.New("job path is required")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal job payload")
	}

	targetURL := p.targetBaseURL + path
	publishURL := p.publishBaseURL + "/v2/publish/" + targetURL
	deduplicationID = strings.TrimSpace(deduplicationID)
	delayHeader := normalizeDelay(delay)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", targetURL),
			attribute.String("qstash.path", path),
			attribute.String("qstash.delay", delayHeader),
			attribute.String("qstash.deduplication_id", deduplicationID),
		)
	}
	headers := p.publishHeaders(delay, deduplicationID)
	p.logger.DebugContext(ctx, "qstash publish request",
		"path", path,
		"curl_preview", curlPreview(publishURL, headers, truncateForLog(string(body), 1024)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	for _, h := range headers {
		req.Header.Set(h.name, h.value)
	}

	err = p.send(req, targetURL)
	p.breaker.Record(err, isQStashCircuitFailure)
	if err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "qstash job published", "path", path, "delay", delayHeader, "deduplication_id", deduplicationID)
	return nil
}

func (p *QStashPublisher) send(req *http.Request, targetURL string) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: publish qstash job target_url=%s: %v", errQStashTransient, targetURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if isQStashRetryableStatus(resp.StatusCode) {
		return fmt.Errorf("%w: publish qstash job status=%d target_url=%s body=%s",
			errQStashTransient, resp.StatusCode, targetURL, strings.TrimSpace(string(raw)))
	}
	return crerr.Newf("publish qstash job status=%d target_url=%s body=%s",
		resp.StatusCode, targetURL, strings.TrimSpace(string(raw)))
}

func normalizeDelay(delay time.Duration) string {
	if delay <= 0 {
		return "0s"
	}
	return strconv.Itoa(int(delay.Round(time.Second).Seconds())) + "s"
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return strings.TrimRight(candidate, "/"), nil
}

type publishHeader struct {
	name   string
	value  string
	secret bool
}

func (p *QStashPublisher) publishHeaders(delay time.Duration, deduplicationID string) []publishHeader {
	headers := []publishHeader{
		{name: "Authorization", value: "Bearer " + p.token, secret: true},
		{name: "Content-Type", value: "application/json"},
		{name: "Upstash-Method", value: http.MethodPost},
	}
	if p.retries > 0 {
		headers = append(headers, publishHeader{name: "Upstash-Retries", value: strconv.Itoa(p.retries)})
	}
	if delay > 0 {
		headers = append(headers, publishHeader{name: "Upstash-Delay", value: normalizeDelay(delay)})
	}
	if deduplicationID != "" {
		headers = append(headers, publishHeader{name: "Upstash-Deduplication-Id", value: deduplicationID})
	}
	if p.internalJobToken != "" {
		headers = append(headers, publishHeader{name: "Upstash-Forward-" + internalJobTokenHeader, value: p.internalJobToken, secret: true})
	}
	return headers
}

// curlPreview renders the publish call for debug logs with secret header
// values masked.
func curlPreview(publishURL string, headers []publishHeader, body string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("curl -X POST ")
	_, _ = buf.WriteString(shellQuote(publishURL))
	for _, h := range headers {
		value := h.value
		if h.secret {
			value = "***"
		}
		_, _ = buf.WriteString(" -H ")
		_, _ = buf.WriteString(shellQuote(h.name + ": " + value))
	}
	_, _ = buf.WriteString(" -d ")
	_, _ = buf.WriteString(shellQuote(body))
	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

func truncateForLog(value string, limit int) string {
	if limit <= 0 || len(value) <= limit {
		return value
	}
	return value[:limit] + "...(truncated)"
}

func isQStashCircuitFailure(err error) bool {
	return stderrors.Is(err, errQStashTransient)
}

func isQStashRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
