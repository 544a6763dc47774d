package holidays

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

// Ensure implementation satisfies the interface
var _ EnhancedProvider = (*EnhancedClient)(nil)

// EnhancedClient calls the server-side "enhanced" holiday endpoint, which
// applies keyword/heuristic detection for countries the calendar provider
// does not cover.
type EnhancedClient struct {
	logger   *slog.Logger
	client   *http.Client
	endpoint string
}

func NewEnhancedClient(endpoint string, timeout time.Duration, logger *slog.Logger) *EnhancedClient {
	return &EnhancedClient{
		logger:   logger,
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}
}

type enhancedRequest struct {
	Location    string `json:"location"`
	CountryCode string `json:"country_code"`
	Date        string `json:"date"`
}

type enhancedResponse struct {
	Holidays []struct {
		Name      string `json:"name"`
		LocalName string `json:"local_name"`
		Date      string `json:"date"`
	} `json:"holidays"`
}

func (c *EnhancedClient) DetectHolidays(ctx context.Context, loc types.ResolvedLocation, date string) ([]types.HolidayFact, error) {
	body, err := json.Marshal(enhancedRequest{
		Location:    loc.Label(),
		CountryCode: loc.CountryCode,
		Date:        date,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal enhanced request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build enhanced request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enhanced holiday request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("enhanced holiday endpoint returned status %d", resp.StatusCode)
	}

	var payload enhancedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode enhanced holiday response: %w", err)
	}

	facts := make([]types.HolidayFact, 0, len(payload.Holidays))
	for _, h := range payload.Holidays {
		facts = append(facts, types.HolidayFact{
			Name:      h.Name,
			LocalName: h.LocalName,
			Date:      h.Date,
		})
	}
	return facts, nil
}
