package testutil

import (
	"log"
	"os"
	"sync"
	"testing"

	"github.com/npezzotti/meetup/internal/stats"
	"github.com/npezzotti/meetup/internal/types"
	"github.com/stretchr/testify/mock"
)

func TestLogger(t *testing.T) *log.Logger {
	logger := log.New(os.Stdout, "[test] ", log.LstdFlags)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
	})
	return logger
}

// TestStats returns a stats mock that accepts any counter update.
func TestStats(t *testing.T) *stats.MockStatsUpdater {
	st := new(stats.MockStatsUpdater)
	st.On("Incr", mock.Anything).Maybe()
	st.On("Decr", mock.Anything).Maybe()
	return st
}

// ChangeRecorder is a publisher that keeps every change it receives.
type ChangeRecorder struct {
	mu      sync.Mutex
	changes []types.Change
}

func (r *ChangeRecorder) Publish(change types.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
}

func (r *ChangeRecorder) Changes() []types.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.Change(nil), r.changes...)
}

// Last returns the most recent change or the zero Change.
func (r *ChangeRecorder) Last() types.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.changes) == 0 {
		return types.Change{}
	}
	return r.changes[len(r.changes)-1]
}
