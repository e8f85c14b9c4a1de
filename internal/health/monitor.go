package health

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Monitor runs readiness probes on a cron schedule so the health gauge stays
// current even when nothing scrapes /readyz.
type Monitor struct {
	checker *Checker
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewMonitor accepts standard cron expressions and descriptors such as
// "@every 30s".
func NewMonitor(checker *Checker, spec string, logger *slog.Logger) (*Monitor, error) {
	m := &Monitor{
		checker: checker,
		cron:    cron.New(),
		logger:  logger.With("component", "health_monitor"),
	}
	if _, err := m.cron.AddFunc(spec, m.probe); err != nil {
		return nil, fmt.Errorf("parse probe spec %q: %w", spec, err)
	}
	return m, nil
}

func (m *Monitor) probe() {
	res := m.checker.Readiness(context.Background())
	if res.Status != "up" {
		m.logger.Warn("readiness probe down", "checks", res.Checks)
	}
}

// Start runs the schedule until ctx is cancelled, then waits for a running
// probe to finish.
func (m *Monitor) Start(ctx context.Context) {
	m.cron.Start()
	m.logger.Info("health monitor started")
	<-ctx.Done()
	<-m.cron.Stop().Done()
	m.logger.Info("health monitor stopped")
}
