package run

import (
	"sync"

	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

const (
	historySize       = 10
	assumedDurationMs = 60_000
	aiStartFloor      = 75
	aiStartCeiling    = 85
)

// Fixed progress checkpoints for the deterministic pipeline stages.
const (
	progressResolving  = 10
	progressWeather    = 25
	progressHoliday    = 40
	progressAssembling = 55
	progressAssembled  = 65
	progressWebFraming = 75
	progressValidating = 95
	progressComplete   = 100
)

// DurationHistory is a bounded ring of recent search latencies feeding the
// progress heuristic. It is the recorder handed to the recommendation
// invoker and is safe for concurrent use.
type DurationHistory struct {
	mu      sync.Mutex
	samples []types.SearchDurationSample
}

func NewDurationHistory() *DurationHistory {
	return &DurationHistory{}
}

// Record appends a sample, keeping only the most recent entries.
func (h *DurationHistory) Record(sample types.SearchDurationSample) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = append(h.samples, sample)
	if len(h.samples) > historySize {
		h.samples = h.samples[len(h.samples)-historySize:]
	}
}

// AverageMs returns the mean recorded latency and whether any history exists.
func (h *DurationHistory) AverageMs() (int64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.samples) == 0 {
		return assumedDurationMs, false
	}
	var total int64
	for _, s := range h.samples {
		total += s.DurationMs
	}
	return total / int64(len(h.samples)), true
}

// Len reports the number of retained samples.
func (h *DurationHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.samples)
}

// EstimateAIStartProgress places the progress-bar position at which AI
// generation begins. Purely cosmetic: it keeps the bar visually honest for a
// variable-latency final stage and has no correctness impact. With no history
// it falls back to the ceiling.
func EstimateAIStartProgress(history *DurationHistory) int {
	avg, ok := history.AverageMs()
	if !ok {
		return aiStartCeiling
	}
	estimate := aiStartCeiling - int(float64(avg)/(float64(avg)*1.2)*20)
	return clampProgress(estimate, aiStartFloor, aiStartCeiling)
}

func clampProgress(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
