package recommendation

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xeipuuv/gojsonschema"

	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

const (
	defaultDurationHrs  = 2.0
	defaultSuitableAges = "All ages"
	maxDurationHrs      = 24.0
)

// Ensure implementation satisfies the interface
var _ Validator = (*ValidatorImpl)(nil)

// Validator turns a raw backend payload into a guaranteed-valid result.
// Generative output is adversarial input: it is sanitized, schema-validated,
// repaired on violation, and degraded to an explicit placeholder as last
// resort. A parse or validation failure never escapes this component.
type Validator interface {
	Validate(raw *RawResponse) *types.RecommendationResult
}

type ValidatorImpl struct {
	logger *slog.Logger
}

func NewValidatorImpl(logger *slog.Logger) *ValidatorImpl {
	return &ValidatorImpl{logger: logger}
}

func (v *ValidatorImpl) Validate(raw *RawResponse) *types.RecommendationResult {
	sanitized := sanitizeActivities(raw.Activities)

	activities, err := validateActivities(sanitized)
	if err == nil && len(activities) > 0 {
		return buildResult(activities, raw)
	}

	var vErr *types.ValidationError
	if errors.As(err, &vErr) {
		v.logger.Warn("Activity payload failed validation, entering repair tier",
			slog.Int("field_errors", len(vErr.Fields)), slog.Any("error", vErr))
	} else {
		v.logger.Warn("Activity payload yielded no usable entries, entering repair tier", slog.Any("error", err))
	}

	repaired := repairActivities(sanitized)
	activities, err = validateActivities(repaired)
	if err == nil && len(activities) > 0 {
		return buildResult(activities, raw)
	}

	v.logger.Error("Repair tier could not produce a valid result, degrading to placeholder", slog.Any("error", err))
	return minimalResult()
}

func buildResult(activities []types.Activity, raw *RawResponse) *types.RecommendationResult {
	return &types.RecommendationResult{
		Activities: activities,
		WebSources: raw.WebSources,
		AiProvider: raw.AiProvider,
		AiModel:    raw.AiModel,
	}
}

// minimalResult is the last-resort output: a single explicit placeholder so
// the user sees a degraded-but-honest result instead of an exception.
func minimalResult() *types.RecommendationResult {
	return &types.RecommendationResult{
		Activities: []types.Activity{
			{
				Title:        "Recommendations unavailable",
				Category:     types.CategoryOther,
				Description:  "The recommendation service returned data we could not interpret. Please try the search again.",
				SuitableAges: defaultSuitableAges,
				DurationHrs:  defaultDurationHrs,
				WeatherFit:   types.WeatherFitOk,
			},
		},
		AiProvider: "unknown",
		AiModel:    "unknown",
	}
}

// validateActivities schema-checks the sanitized list and coerces it into
// typed activities with defaults applied. Schema violations come back as a
// ValidationError carrying one message per offending field.
func validateActivities(sanitized []map[string]any) ([]types.Activity, error) {
	doc, err := json.Marshal(sanitized)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sanitized activities: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(activityListSchema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		fields := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			fields[i] = desc.String()
		}
		return nil, &types.ValidationError{Fields: fields}
	}

	var activities []types.Activity
	if err := json.Unmarshal(doc, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode validated activities: %w", err)
	}
	for i := range activities {
		applyDefaults(&activities[i])
	}
	return activities, nil
}

// applyDefaults normalizes enum and range fields after schema validation:
// unknown category becomes "other", unknown weather fit becomes "ok", and an
// out-of-range duration clamps to the 2-hour default.
func applyDefaults(a *types.Activity) {
	if !types.IsValidCategory(a.Category) {
		a.Category = types.CategoryOther
	}
	if !types.IsValidWeatherFit(a.WeatherFit) {
		a.WeatherFit = types.WeatherFitOk
	}
	if a.DurationHrs <= 0 || a.DurationHrs > maxDurationHrs {
		a.DurationHrs = defaultDurationHrs
	}
	if a.SuitableAges == "" {
		a.SuitableAges = defaultSuitableAges
	}
}
