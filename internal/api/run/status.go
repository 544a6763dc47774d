package run

import (
	"context"
	"time"
)

// workingMessages rotate on a timer while the AI generation stage runs.
// Cosmetic side-channel only; the state machine never depends on them.
var workingMessages = []string{
	"Generating recommendations…",
	"Still working — good ideas take a moment…",
	"Matching activities to the weather…",
	"Checking what fits the children's ages…",
	"Almost there…",
}

const workingMessageInterval = 5 * time.Second

// rotateStatus cycles through workingMessages until ctx is cancelled.
// The caller guarantees cleanup by cancelling ctx on every exit path.
func rotateStatus(ctx context.Context, setStatus func(string)) {
	ticker := time.NewTicker(workingMessageInterval)
	defer ticker.Stop()

	i := 0
	setStatus(workingMessages[0])
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i = (i + 1) % len(workingMessages)
			setStatus(workingMessages[i])
		}
	}
}
