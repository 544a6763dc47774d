package recommendation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-family-activity-search/app/tracer"
	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

const maxErrorBodyBytes = 64 * 1024

// SampleRecorder receives the observed end-to-end latency of successful
// invocations. Feeds the progress heuristic only, never correctness logic.
type SampleRecorder interface {
	Record(sample types.SearchDurationSample)
}

// StatusFunc surfaces human-readable invoker progress ("Retry 1/2") to the caller.
type StatusFunc func(status string)

// RawResponse is the backend payload before validation. Activities stay
// loosely typed because generative output cannot be trusted to match its
// nominal schema.
type RawResponse struct {
	Activities []any             `json:"activities"`
	WebSources []types.WebSource `json:"web_sources,omitempty"`
	AiProvider string            `json:"ai_provider,omitempty"`
	AiModel    string            `json:"ai_model,omitempty"`
}

// Ensure implementation satisfies the interface
var _ Invoker = (*InvokerImpl)(nil)

// Invoker posts a Context to the recommendation backend with a hard client
// timeout and a bounded retry loop for transient upstream failures.
type Invoker interface {
	Invoke(ctx context.Context, searchCtx types.Context, onStatus StatusFunc) (*RawResponse, error)
}

type InvokerImpl struct {
	logger     *slog.Logger
	client     *http.Client
	endpoint   string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	recorder   SampleRecorder
}

func NewInvokerImpl(endpoint string, timeout time.Duration, maxRetries int, retryDelay time.Duration, recorder SampleRecorder, logger *slog.Logger) *InvokerImpl {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &InvokerImpl{
		logger:     logger,
		client:     &http.Client{},
		endpoint:   endpoint,
		timeout:    timeout,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		recorder:   recorder,
	}
}

type backendRequest struct {
	Context           types.Context `json:"context"`
	AllowedCategories string        `json:"allowed_categories"`
	BypassCache       bool          `json:"bypass_cache,omitempty"`
}

// Invoke sends the Context and retries RetryableServiceError failures up to
// the retry budget with a fixed inter-attempt delay. Every other error kind
// terminates immediately. The same immutable Context is reused across
// attempts, so retried requests are byte-identical.
func (i *InvokerImpl) Invoke(ctx context.Context, searchCtx types.Context, onStatus StatusFunc) (*RawResponse, error) {
	ctx, span := otel.Tracer("RecommendationInvoker").Start(ctx, "Invoke")
	defer span.End()
	span.SetAttributes(attribute.String("location", searchCtx.Location), attribute.String("date", searchCtx.Date))

	body, err := json.Marshal(backendRequest{
		Context:           searchCtx,
		AllowedCategories: types.AllowedCategoriesString(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recommendation request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= i.maxRetries; attempt++ {
		if attempt > 0 {
			if onStatus != nil {
				onStatus(fmt.Sprintf("Retry %d/%d", attempt, i.maxRetries))
			}
			select {
			case <-time.After(i.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		start := time.Now()
		resp, err := i.attempt(ctx, body)
		if err == nil {
			latency := time.Since(start)
			if i.recorder != nil {
				i.recorder.Record(types.SearchDurationSample{
					DurationMs: latency.Milliseconds(),
					Model:      resp.AiModel,
					Timestamp:  time.Now(),
				})
			}
			span.SetAttributes(attribute.Int("attempts", attempt+1), attribute.Int("activities.count", len(resp.Activities)))
			span.SetStatus(codes.Ok, "Recommendation received")
			return resp, nil
		}

		lastErr = err
		span.RecordError(err)

		var retryable *types.RetryableServiceError
		if !errors.As(err, &retryable) {
			return nil, err
		}
		tracer.RecordRecommendationRetry(ctx)
		i.logger.WarnContext(ctx, "Recommendation attempt failed with retryable error",
			slog.Int("attempt", attempt+1), slog.Any("error", err))
	}
	return nil, lastErr
}

// attempt performs one backend call under the hard client-side timeout.
// The timeout races the network call; a deadline hit counts as retryable.
func (i *InvokerImpl) attempt(ctx context.Context, body []byte) (*RawResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, i.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build recommendation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		// User cancellation propagates untouched; the controller gates it.
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, &types.RetryableServiceError{Reason: "client-side timeout elapsed"}
		}
		return nil, &types.TransportError{Op: "recommendation", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyFailure(resp)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "json") {
		return nil, &types.MalformedResponseError{ContentType: contentType, Reason: "non-JSON success response"}
	}

	// Decode into an envelope first: a missing activities field is a distinct
	// failure from an empty array, but both end the run.
	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &types.MalformedResponseError{ContentType: contentType, Reason: err.Error()}
	}
	rawActivities, ok := envelope["activities"]
	if !ok {
		return nil, &types.EmptyResultError{}
	}

	var parsed RawResponse
	if err := json.Unmarshal(rawActivities, &parsed.Activities); err != nil {
		return nil, &types.MalformedResponseError{ContentType: contentType, Reason: fmt.Sprintf("activities field: %v", err)}
	}
	if len(parsed.Activities) == 0 {
		return nil, &types.EmptyResultError{}
	}
	if raw, ok := envelope["web_sources"]; ok {
		// Citations are optional; a malformed list is not worth failing the run.
		_ = json.Unmarshal(raw, &parsed.WebSources)
	}
	if raw, ok := envelope["ai_provider"]; ok {
		_ = json.Unmarshal(raw, &parsed.AiProvider)
	}
	if raw, ok := envelope["ai_model"]; ok {
		_ = json.Unmarshal(raw, &parsed.AiModel)
	}
	return &parsed, nil
}

// classifyFailure maps a non-2xx reply onto the error taxonomy. Error bodies
// may arrive as JSON or as plain text/HTML; both are inspected for the
// transient-failure keywords.
func classifyFailure(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	bodyText := string(bodyBytes)

	var jsonErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(bodyBytes, &jsonErr); err == nil {
		if jsonErr.Error != "" {
			bodyText = jsonErr.Error
		} else if jsonErr.Message != "" {
			bodyText = jsonErr.Message
		}
	}

	lower := strings.ToLower(bodyText)
	switch {
	case resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout,
		strings.Contains(lower, "temporarily unavailable"),
		strings.Contains(lower, "timeout"):
		return &types.RetryableServiceError{Status: resp.StatusCode, Reason: truncate(bodyText, 200)}
	default:
		return &types.TransportError{
			Op:  "recommendation",
			Err: fmt.Errorf("backend returned status %d: %s", resp.StatusCode, truncate(bodyText, 200)),
		}
	}
}

func truncate(str string, num int) string {
	if len(str) > num {
		return str[0:num] + "..."
	}
	return str
}
