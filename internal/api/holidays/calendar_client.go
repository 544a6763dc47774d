package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

// Ensure implementation satisfies the interface
var _ CalendarProvider = (*CalendarClient)(nil)

// CalendarClient talks to a Nager.Date-style public holiday API.
type CalendarClient struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

func NewCalendarClient(baseURL string, timeout time.Duration, logger *slog.Logger) *CalendarClient {
	return &CalendarClient{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type calendarHoliday struct {
	Date      string `json:"date"`
	LocalName string `json:"localName"`
	Name      string `json:"name"`
}

// PublicHolidays returns all public holidays for a country and year.
// A 204 reply means the provider has no data for the country and maps to an
// empty slice, not an error.
func (c *CalendarClient) PublicHolidays(ctx context.Context, countryCode string, year int) ([]types.HolidayFact, error) {
	reqURL := fmt.Sprintf("%s/PublicHolidays/%d/%s", c.baseURL, year, strings.ToUpper(countryCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		c.logger.DebugContext(ctx, "Calendar provider has no data for country",
			slog.String("country_code", countryCode), slog.Int("year", year))
		return []types.HolidayFact{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("calendar provider returned status %d", resp.StatusCode)
	}

	var payload []calendarHoliday
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode calendar response: %w", err)
	}

	facts := make([]types.HolidayFact, 0, len(payload))
	for _, h := range payload {
		facts = append(facts, types.HolidayFact{
			Name:      h.Name,
			LocalName: h.LocalName,
			Date:      h.Date,
		})
	}
	return facts, nil
}
