package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

// Entry is one persisted search-history record.
type Entry struct {
	ID            uuid.UUID           `json:"id"`
	Request       types.SearchRequest `json:"request"`
	Location      string              `json:"location"`
	ActivityCount int                 `json:"activity_count"`
	DurationMs    int64               `json:"duration_ms"`
	Model         string              `json:"model,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service is the client for the external search-history store. Persistence
// itself lives behind this HTTP CRUD surface; saving is best-effort at run
// completion.
type Service interface {
	SaveSearch(ctx context.Context, entry Entry) error
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

func NewServiceImpl(baseURL string, timeout time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (s *ServiceImpl) SaveSearch(ctx context.Context, entry Entry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/searches", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build history request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("history store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("history store returned status %d", resp.StatusCode)
	}
	s.logger.DebugContext(ctx, "Search history entry saved", slog.String("id", entry.ID.String()))
	return nil
}

func (s *ServiceImpl) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	reqURL := fmt.Sprintf("%s/searches?limit=%d", s.baseURL, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build history request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("history store returned status %d", resp.StatusCode)
	}

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode history entries: %w", err)
	}
	return entries, nil
}
