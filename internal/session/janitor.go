package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Janitor periodically removes expired sessions from stores that cannot expire
// entries on their own.
type Janitor struct {
	cron   *cron.Cron
	purger Purger
}

// NewJanitor schedules purger.PurgeExpired on spec (standard cron or "@every 10m").
func NewJanitor(purger Purger, spec string) (*Janitor, error) {
	j := &Janitor{cron: cron.New(), purger: purger}
	if _, err := j.cron.AddFunc(spec, j.run); err != nil {
		return nil, fmt.Errorf("schedule session purge %q: %w", spec, err)
	}
	return j, nil
}

func (j *Janitor) run() {
	n, err := j.purger.PurgeExpired(context.Background())
	if err != nil {
		slog.Error("session purge failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("expired sessions purged", "count", n)
	}
}

// Start runs the scheduler in its own goroutine.
func (j *Janitor) Start() { j.cron.Start() }

// Stop halts the scheduler and waits for a running purge to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}
