package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically prunes idle sessions.
type Janitor struct {
	cron *cron.Cron
}

// NewJanitor schedules Prune(idle) on m. spec is a cron expression or a
// descriptor such as "@every 10m".
func NewJanitor(m *Manager, spec string, idle time.Duration) (*Janitor, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if n := m.Prune(idle); n > 0 {
			slog.Info("pruned idle sessions", "count", n, "remaining", m.Len())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", spec, err)
	}
	return &Janitor{cron: c}, nil
}

func (j *Janitor) Start() { j.cron.Start() }

// Stop halts the schedule and waits for a running prune to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}
