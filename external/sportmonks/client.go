package sportmonks

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v5"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fannax/internal/platform/logging"
	"github.com/riskibarqy/fannax/internal/platform/resilience"
	"github.com/riskibarqy/fannax/internal/usecase"
)

const (
	defaultBaseURL        = "https://api.sportmonks.com/v3/football"
	defaultIncludeFixture = "participants;venue;league;scores"
	defaultMaxPages       = 50
	maxBodyBytes          = 6 << 20
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)
var errSportMonksTransient = crerr.New("sportmonks transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	MinInterval    time.Duration
	MaxPages       int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	maxRetries   int
	maxPages     int
	retryInitial time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	limiter      *resilience.RateLimiter
	flight       resilience.SingleFlight
}

var _ usecase.FixtureProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		token:        strings.TrimSpace(cfg.Token),
		maxRetries:   max(cfg.MaxRetries, 0),
		maxPages:     maxPages,
		retryInitial: 500 * time.Millisecond,
		logger:       logger.Named("sportmonks"),
		breaker:      resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		limiter:      resilience.NewRateLimiter(cfg.MinInterval),
	}
}

// FetchFixturesBetween returns every fixture whose date falls in [start, end],
// following provider pagination.
func (c *Client) FetchFixturesBetween(ctx context.Context, start, end time.Time) ([]usecase.ExternalFixture, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("invalid fixture window %s..%s", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	path := fmt.Sprintf("/fixtures/between/%s/%s", start.UTC().Format(time.DateOnly), end.UTC().Format(time.DateOnly))
	out := make([]usecase.ExternalFixture, 0, 64)
	seen := make(map[int64]struct{}, 64)
	for page := 1; page <= c.maxPages; page++ {
		query := map[string]string{
			"include": defaultIncludeFixture,
			"page":    strconv.Itoa(page),
		}

		var envelope fixturesEnvelope
		if err := c.doJSON(ctx, path, query, &envelope); err != nil {
			return nil, fmt.Errorf("fetch fixtures page=%d: %w", page, err)
		}
		for _, item := range envelope.Data {
			if item.ID <= 0 {
				continue
			}
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			out = append(out, mapFixture(item))
		}

		if !envelope.Pagination.HasMore {
			return out, nil
		}
	}

	c.logger.WarnContext(ctx, "fixture pagination truncated", "max_pages", c.maxPages, "fixtures", len(out))
	return out, nil
}

func (c *Client) FetchTeamsPage(ctx context.Context, page, perPage int) (usecase.ExternalTeamPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 100
	}

	var envelope teamsEnvelope
	err := c.doJSON(ctx, "/teams", map[string]string{
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(perPage),
	}, &envelope)
	if err != nil {
		return usecase.ExternalTeamPage{}, fmt.Errorf("fetch teams page=%d: %w", page, err)
	}

	teams := make([]usecase.ExternalTeam, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		mapped := mapTeam(item)
		if mapped.ExternalID <= 0 {
			continue
		}
		teams = append(teams, mapped)
	}
	return usecase.ExternalTeamPage{
		Teams:   teams,
		Page:    page,
		HasMore: envelope.Pagination.HasMore,
	}, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "sportmonks circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: sport data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	key := path + "?" + values.Encode()
	values.Set("api_token", c.token)
	fullURL := c.baseURL + path + "?" + values.Encode()

	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		c.breaker.Record(reqErr, isSportMonksCircuitFailure)
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInitial
	policy.MaxInterval = 10 * time.Second

	raw, err := backoff.Retry(ctx, func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		return c.attempt(ctx, fullURL)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.DebugContext(ctx, "sportmonks request retry", "url", redactAPIURL(fullURL), "next_in", next.String(), "error", err)
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.WarnContext(ctx, "sportmonks request failed", "url", redactAPIURL(fullURL), "error", err)
		return nil, err
	}
	return raw, nil
}

// attempt performs one HTTP round trip. Retryable failures are marked
// transient; anything else stops the retry loop.
func (c *Client) attempt(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %s", sanitizeSensitiveText(err.Error(), c.token)))
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %s", errSportMonksTransient, sanitizeSensitiveText(err.Error(), c.token))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errSportMonksTransient, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	body := sanitizeSensitiveText(abbreviateBody(raw), c.token)
	if resp.StatusCode == http.StatusTooManyRequests {
		if wait, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
			c.limiter.Defer(wait)
			return nil, fmt.Errorf("%w: provider status=429: %w", errSportMonksTransient, backoff.RetryAfter(int(wait/time.Second)))
		}
	}
	if isRetryableStatus(resp.StatusCode) {
		return nil, fmt.Errorf("%w: provider status=%d body=%s", errSportMonksTransient, resp.StatusCode, body)
	}
	return nil, backoff.Permanent(crerr.Newf("provider status=%d body=%s", resp.StatusCode, body))
}

func parseRetryAfter(raw string) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(raw); err == nil {
		wait := time.Until(at)
		if wait < 0 {
			wait = 0
		}
		return wait.Truncate(time.Second), true
	}
	return 0, false
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
}

func isSportMonksCircuitFailure(err error) bool {
	return stderrors.Is(err, errSportMonksTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return apiTokenParamRegex.ReplaceAllString(rawURL, "api_token=REDACTED")
	}
	query := parsed.Query()
	if query.Has("api_token") {
		query.Set("api_token", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
