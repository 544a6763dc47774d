package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	generativeAI "github.com/FACorreiaa/go-family-activity-search/internal/api/generative_ai"
	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

const (
	discoveryTemperature = 0.2
	discoveryWindowDays  = 3
)

// Ensure implementation satisfies the interface
var _ EventDiscoverer = (*AIDiscoverer)(nil)

// AIDiscoverer asks the generative model for holidays and festivals the other
// tiers missed, scoped to a ±3 day window around the target date.
type AIDiscoverer struct {
	logger   *slog.Logger
	aiClient *generativeAI.AIClient
}

func NewAIDiscoverer(aiClient *generativeAI.AIClient, logger *slog.Logger) *AIDiscoverer {
	return &AIDiscoverer{
		logger:   logger,
		aiClient: aiClient,
	}
}

func discoveryPrompt(loc types.ResolvedLocation, date string) (string, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	from := day.AddDate(0, 0, -discoveryWindowDays).Format("2006-01-02")
	to := day.AddDate(0, 0, discoveryWindowDays).Format("2006-01-02")

	return fmt.Sprintf(`List public holidays, religious observances, and festivals taking place in or near %s between %s and %s.
Respond with JSON only, no prose, in this exact shape:
{"events": [{"name": "...", "date": "YYYY-MM-DD", "url": ""}]}
Only include events you are confident about. Use an empty events array if there are none.`,
		loc.Label(), from, to), nil
}

func (d *AIDiscoverer) DiscoverEvents(ctx context.Context, loc types.ResolvedLocation, date string) ([]DiscoveredEvent, error) {
	prompt, err := discoveryPrompt(loc, date)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](discoveryTemperature)}
	txt, err := d.aiClient.GenerateResponse(ctx, prompt, config)
	if err != nil {
		return nil, fmt.Errorf("AI event discovery failed: %w", err)
	}

	var payload struct {
		Events []DiscoveredEvent `json:"events"`
	}
	if err := json.Unmarshal([]byte(cleanJSONResponse(txt)), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse discovered events JSON: %w", err)
	}

	d.logger.DebugContext(ctx, "AI event discovery done",
		slog.String("location", loc.Label()), slog.Int("event_count", len(payload.Events)))
	return payload.Events, nil
}

func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	// Remove markdown code block markers
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	if strings.HasSuffix(response, "```") {
		response = strings.TrimSuffix(response, "```")
	}
	response = strings.TrimSpace(response)

	// Extract the {..} portion when the model wraps JSON in explanatory text
	firstBrace := strings.Index(response, "{")
	lastBrace := strings.LastIndex(response, "}")
	if firstBrace == -1 || lastBrace == -1 || lastBrace <= firstBrace {
		return response
	}
	return strings.TrimSpace(response[firstBrace : lastBrace+1])
}
