package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-family-activity-search/app/tracer"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/festivals"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/geocoding"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/history"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/holidays"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/recommendation"
	searchContext "github.com/FACorreiaa/go-family-activity-search/internal/api/search_context"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/weather"
	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

// ErrRunActive is returned by Start while another run is in flight.
var ErrRunActive = errors.New("a search is already in progress")

// Options carries the controller's tuning knobs.
type Options struct {
	FestivalRadiusKm    float64
	SuccessDisplayDelay time.Duration
	ErrorDisplayDelay   time.Duration
}

// Controller owns at most one in-flight search run. It drives the pipeline
// (resolve → gather → invoke → validate), guarantees exclusivity, gates every
// state mutation by run identity so a cancelled run's late resolution is a
// no-op, and keeps progress monotonically non-decreasing within a run.
type Controller struct {
	logger    *slog.Logger
	geocoder  geocoding.Service
	weather   weather.Service
	holidays  holidays.Service
	festivals festivals.Service
	invoker   recommendation.Invoker
	validator recommendation.Validator
	history   history.Service
	durations *DurationHistory
	opts      Options

	mu          sync.Mutex
	activeRunID *uuid.UUID
	cancelRun   context.CancelFunc
	resetTimer  *time.Timer
	snapshot    types.RunSnapshot
}

func NewController(
	geocoder geocoding.Service,
	weatherSvc weather.Service,
	holidaySvc holidays.Service,
	festivalSvc festivals.Service,
	invoker recommendation.Invoker,
	validator recommendation.Validator,
	historySvc history.Service,
	durations *DurationHistory,
	opts Options,
	logger *slog.Logger,
) *Controller {
	if opts.FestivalRadiusKm <= 0 {
		opts.FestivalRadiusKm = 60
	}
	if opts.SuccessDisplayDelay <= 0 {
		opts.SuccessDisplayDelay = 1 * time.Second
	}
	if opts.ErrorDisplayDelay <= 0 {
		opts.ErrorDisplayDelay = 8 * time.Second
	}
	return &Controller{
		logger:    logger,
		geocoder:  geocoder,
		weather:   weatherSvc,
		holidays:  holidaySvc,
		festivals: festivalSvc,
		invoker:   invoker,
		validator: validator,
		history:   historySvc,
		durations: durations,
		opts:      opts,
		snapshot:  types.RunSnapshot{State: types.RunStateIdle},
	}
}

// Start begins a run if the controller is idle. A Start while any run is in
// flight (or a terminal state is still displayed) is a no-op returning
// ErrRunActive: state is unchanged and no network calls are issued.
func (c *Controller) Start(req types.SearchRequest) (uuid.UUID, error) {
	if err := validateRequest(req); err != nil {
		return uuid.Nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot.State != types.RunStateIdle {
		return uuid.Nil, ErrRunActive
	}

	runID := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	c.activeRunID = &runID
	c.cancelRun = cancel
	c.stopResetTimerLocked()
	c.snapshot = types.RunSnapshot{
		RunID:    runID,
		State:    types.RunStateResolving,
		Progress: progressResolving,
		Status:   "Resolving location…",
	}

	c.logger.Info("Search run started", slog.String("run_id", runID.String()), slog.String("location", req.Location))
	go c.execute(ctx, runID, req)
	return runID, nil
}

// Cancel aborts the identified run. Idempotent: cancelling a finished or
// unknown run does nothing. The run context is cancelled, which aborts any
// in-flight provider call, and the controller returns to idle synchronously;
// whatever the aborted run eventually resolves to is discarded by the
// run-identity gate.
func (c *Controller) Cancel(runID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeRunID == nil || *c.activeRunID != runID {
		return
	}

	c.cancelRun()
	c.cancelRun = nil
	c.activeRunID = nil
	c.stopResetTimerLocked()
	c.logger.Info("Search run cancelled", slog.String("run_id", runID.String()))

	// cancelled → idle happens synchronously; polls never observe a lingering
	// cancelled state.
	c.snapshot = types.RunSnapshot{State: types.RunStateIdle}
}

// Snapshot returns the current controller view.
func (c *Controller) Snapshot() types.RunSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// SnapshotFor returns the view for a specific run, if it is still the one
// the controller knows about.
func (c *Controller) SnapshotFor(runID uuid.UUID) (types.RunSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot.RunID != runID {
		return types.RunSnapshot{}, false
	}
	return c.snapshot, true
}

func (c *Controller) execute(ctx context.Context, runID uuid.UUID, req types.SearchRequest) {
	start := time.Now()

	loc, err := c.geocoder.Resolve(ctx, req.Location)
	if err != nil {
		c.fail(runID, err, time.Since(start))
		return
	}

	c.advance(runID, types.RunStateGathering, progressWeather, "Checking the weather forecast…")

	var (
		weatherSnapshot types.WeatherSnapshot
		holidayResult   holidays.Result
		festivalFacts   []types.FestivalFact
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		weatherSnapshot = c.weather.GetSnapshot(gctx, loc.Latitude, loc.Longitude, req.Date)
		c.advance(runID, types.RunStateGathering, progressWeather, "")
		return nil
	})
	g.Go(func() error {
		holidayResult = c.holidays.Gather(gctx, *loc, req.Date, c.opts.FestivalRadiusKm)
		c.advance(runID, types.RunStateGathering, progressHoliday, "Checking holidays and festivals…")
		return nil
	})
	g.Go(func() error {
		festivalFacts = c.festivals.Gather(gctx, loc.Latitude, loc.Longitude, c.opts.FestivalRadiusKm, req.Date)
		return nil
	})
	_ = g.Wait() // gatherers are best-effort and never return errors

	if ctx.Err() != nil {
		return
	}

	c.advance(runID, types.RunStateGathering, progressAssembling, "Assembling search context…")
	searchCtx := searchContext.BuildContext(req, *loc, weatherSnapshot, holidayResult, festivalFacts)
	c.advance(runID, types.RunStateGathering, progressAssembled, "")

	c.advance(runID, types.RunStateInvoking, progressWebFraming, "Searching the web for ideas…")
	c.advance(runID, types.RunStateInvoking, EstimateAIStartProgress(c.durations), "")

	rotateCtx, stopRotate := context.WithCancel(ctx)
	go rotateStatus(rotateCtx, func(msg string) { c.setStatus(runID, msg) })

	raw, err := c.invoker.Invoke(ctx, searchCtx, func(status string) { c.setStatus(runID, status) })
	stopRotate()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.fail(runID, err, time.Since(start))
		return
	}

	c.advance(runID, types.RunStateValidating, progressValidating, "Validating results…")
	result := c.validator.Validate(raw)

	c.saveHistory(ctx, runID, req, loc.Label(), result, time.Since(start))
	c.complete(runID, result, time.Since(start))
}

// advance applies a gated, monotonic state/progress update. Returns false
// when the run is no longer the active one.
func (c *Controller) advance(runID uuid.UUID, state types.RunState, progress int, status string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeRunID == nil || *c.activeRunID != runID {
		return false
	}
	c.snapshot.State = state
	if progress > c.snapshot.Progress {
		c.snapshot.Progress = progress
	}
	if status != "" {
		c.snapshot.Status = status
	}
	return true
}

func (c *Controller) setStatus(runID uuid.UUID, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeRunID == nil || *c.activeRunID != runID {
		return
	}
	c.snapshot.Status = status
}

func (c *Controller) complete(runID uuid.UUID, result *types.RecommendationResult, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeRunID == nil || *c.activeRunID != runID {
		return
	}
	if c.cancelRun != nil {
		c.cancelRun()
		c.cancelRun = nil
	}
	c.activeRunID = nil
	c.snapshot.State = types.RunStateComplete
	c.snapshot.Progress = progressComplete
	c.snapshot.Status = "Done"
	c.snapshot.Result = result
	c.logger.Info("Search run complete",
		slog.String("run_id", runID.String()), slog.Int("activities", len(result.Activities)))
	tracer.RecordRunOutcome(context.Background(), "complete", elapsed.Seconds())
	c.scheduleResetLocked(runID, c.opts.SuccessDisplayDelay)
}

func (c *Controller) fail(runID uuid.UUID, err error, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeRunID == nil || *c.activeRunID != runID {
		return
	}
	if c.cancelRun != nil {
		c.cancelRun()
		c.cancelRun = nil
	}
	c.activeRunID = nil
	c.snapshot.State = types.RunStateFailed
	c.snapshot.Error = userMessage(err)
	c.logger.Error("Search run failed", slog.String("run_id", runID.String()), slog.Any("error", err))
	tracer.RecordRunOutcome(context.Background(), "failed", elapsed.Seconds())
	c.scheduleResetLocked(runID, c.opts.ErrorDisplayDelay)
}

// scheduleResetLocked returns the controller to idle after the display
// window, unless a newer run has taken over in the meantime.
func (c *Controller) scheduleResetLocked(runID uuid.UUID, delay time.Duration) {
	c.stopResetTimerLocked()
	c.resetTimer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.snapshot.RunID != runID {
			return
		}
		c.snapshot = types.RunSnapshot{State: types.RunStateIdle}
	})
}

func (c *Controller) stopResetTimerLocked() {
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
}

func (c *Controller) saveHistory(ctx context.Context, runID uuid.UUID, req types.SearchRequest, label string, result *types.RecommendationResult, elapsed time.Duration) {
	if c.history == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	entry := history.Entry{
		ID:            runID,
		Request:       req,
		Location:      label,
		ActivityCount: len(result.Activities),
		DurationMs:    elapsed.Milliseconds(),
		Model:         result.AiModel,
		CreatedAt:     time.Now(),
	}
	if err := c.history.SaveSearch(saveCtx, entry); err != nil {
		c.logger.Warn("Failed to persist search history entry",
			slog.String("run_id", runID.String()), slog.Any("error", err))
	}
}

func validateRequest(req types.SearchRequest) error {
	if req.Location == "" {
		return fmt.Errorf("location must not be empty")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return fmt.Errorf("date must be an ISO date (YYYY-MM-DD): %w", err)
	}
	if req.DurationHrs <= 0 {
		return fmt.Errorf("duration_hours must be greater than zero")
	}
	if len(req.ChildAges) == 0 {
		return fmt.Errorf("child_ages must not be empty")
	}
	for _, age := range req.ChildAges {
		if age < 0 {
			return fmt.Errorf("child_ages must not contain negative values")
		}
	}
	return nil
}

// userMessage maps the error taxonomy onto the human-readable status string
// shown during the failed-state display window.
func userMessage(err error) string {
	var notFound *types.NotFoundError
	var retryable *types.RetryableServiceError
	var malformed *types.MalformedResponseError
	var empty *types.EmptyResultError
	var transport *types.TransportError

	switch {
	case errors.As(err, &notFound):
		return "We couldn't find that location. Try a more specific place name."
	case errors.As(err, &retryable):
		return "The recommendation service is temporarily unavailable. Please try again in a moment."
	case errors.As(err, &malformed):
		return "The recommendation service returned an unexpected response. Please try again."
	case errors.As(err, &empty):
		return "No activities were found for this search. Try a different date or location."
	case errors.As(err, &transport):
		return "We couldn't reach one of our data providers. Check your connection and try again."
	default:
		return "Something went wrong with this search. Please try again."
	}
}
