package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"truthtube/internal/models"
	"truthtube/shared/config"
	"truthtube/shared/logger"
)

// ErrSchemaViolation means the model answered, but not with the requested shape.
var ErrSchemaViolation = errors.New("schema violation")

// Schema is a response type that can check its own invariants after decoding.
type Schema interface {
	Validate() error
}

// Request is one scoring call. Payload is the user prompt, System the fixed
// per-metric instruction.
type Request struct {
	Metric  models.Metric
	System  string
	Payload string
}

const strictReformat = `

IMPORTANT: your previous answer could not be used (%s).
Respond again with ONLY one JSON object that matches the schema above exactly.
Do not wrap it in markdown, do not add commentary, do not omit required fields.`

// Client is the language-model collaborator. Every call is rate limited and
// bounded by its own timeout.
type Client struct {
	model   Model
	limiter *rate.Limiter
	timeout time.Duration
}

func NewClient(model Model, cfg *config.AIConfig) *Client {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}
	return &Client{
		model:   model,
		limiter: rate.NewLimiter(limit, max(cfg.Burst, 1)),
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// Score sends req and decodes the answer into out. An answer that does not
// decode or validate is retried once with a stricter formatting instruction;
// a second failure returns ErrSchemaViolation. Transport failures are not
// retried.
func (c *Client) Score(ctx context.Context, req Request, out Schema) error {
	log := logger.Log.WithFields(logrus.Fields{"metric": req.Metric})

	prompt := req.Payload
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			prompt = req.Payload + fmt.Sprintf(strictReformat, lastErr)
			log.Warnf("Retrying with strict reformat instruction: %v", lastErr)
		}

		text, err := c.generate(ctx, req.System, prompt)
		if err != nil {
			return err
		}

		if err := decodeJSON(text, out); err != nil {
			lastErr = err
			continue
		}
		if err := out.Validate(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("%w for %s after retry: %v", ErrSchemaViolation, req.Metric, lastErr)
}

func (c *Client) generate(ctx context.Context, system, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	text, err := c.model.Generate(callCtx, system, prompt)
	if err != nil {
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: language model call exceeded %v", models.ErrCollaboratorTimeout, c.timeout)
		}
		return "", err
	}
	return text, nil
}
