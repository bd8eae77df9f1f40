package mapper

import (
	"time"

	"github.com/pixil98/go-mudmap/internal/world"
)

type ManagerOpt func(*Manager)

func WithSnapshots(s Snapshotter) ManagerOpt {
	return func(m *Manager) {
		m.snapshots = s
	}
}

func WithJournal(j Journaler) ManagerOpt {
	return func(m *Manager) {
		m.journal = j
	}
}

func WithHistory(r Recorder) ManagerOpt {
	return func(m *Manager) {
		m.history = r
	}
}

func WithApplyOptions(opts world.ApplyOptions) ManagerOpt {
	return func(m *Manager) {
		m.opts = opts
	}
}

// WithAutosave saves a dirty map on the first tick after interval has passed
// since the last save. Zero disables autosave.
func WithAutosave(interval time.Duration) ManagerOpt {
	return func(m *Manager) {
		m.autosave = interval
	}
}

// WithConsistencyCheck verifies the map on the first tick after each change.
func WithConsistencyCheck(enabled bool) ManagerOpt {
	return func(m *Manager) {
		m.checkOnTick = enabled
	}
}

func WithMaxUndo(n int) ManagerOpt {
	return func(m *Manager) {
		m.maxUndo = n
	}
}
