package push

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fannax/internal/domain/notification"
	"github.com/riskibarqy/fannax/internal/platform/logging"
	"github.com/riskibarqy/fannax/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

type WebhookConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
	// Client overrides the fasthttp client; tests dial an in-memory listener.
	Client *fasthttp.Client
}

// WebhookSender POSTs stored notifications to a push gateway webhook.
type WebhookSender struct {
	client  *fasthttp.Client
	url     string
	token   string
	timeout time.Duration
	logger  *logging.Logger
}

var _ usecase.PushSender = (*WebhookSender)(nil)

type pushPayload struct {
	ID           string    `json:"id"`
	RecipientID  string    `json:"recipient_id"`
	Kind         string    `json:"kind"`
	Message      string    `json:"message"`
	PredictionID string    `json:"prediction_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewWebhookSender(cfg WebhookConfig, logger *logging.Logger) (*WebhookSender, error) {
	target := strings.TrimSpace(cfg.URL)
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return nil, crerr.Newf("push webhook url %q must be http or https", target)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &fasthttp.Client{
			Name:                "fannax-push",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookSender{
		client:  client,
		url:     target,
		token:   strings.TrimSpace(cfg.Token),
		timeout: timeout,
		logger:  logger.Named("push"),
	}, nil
}

func (s *WebhookSender) Send(ctx context.Context, n notification.Notification) error {
	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)

	err := sonic.ConfigDefault.NewEncoder(body).Encode(pushPayload{
		ID:           n.ID,
		RecipientID:  n.RecipientID,
		Kind:         string(n.Kind),
		Message:      n.Message,
		PredictionID: n.PredictionID,
		CreatedAt:    n.CreatedAt.UTC(),
	})
	if err != nil {
		return crerr.Wrap(err, "encode push payload")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if s.token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+s.token)
	}
	req.SetBody(body.B)

	deadline := time.Now().Add(s.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("send push webhook: %w", err)
	}

	if status := resp.StatusCode(); status < 200 || status >= 300 {
		return crerr.Newf("push webhook returned status=%d body=%s", status, abbreviate(resp.Body()))
	}
	s.logger.DebugContext(ctx, "push webhook delivered", "notification_id", n.ID, "recipient_id", n.RecipientID)
	return nil
}

func abbreviate(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		return text[:200] + "..."
	}
	return text
}
