// Package reminder raises one-time reminders for in-progress projects whose
// deadline is close.
package reminder

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/freelancehub/tracker/internal/api/metrics"
	"github.com/freelancehub/tracker/internal/core/domain"
	"github.com/freelancehub/tracker/internal/core/ports"
)

const (
	defaultInterval = 60 * time.Second
	defaultLeadDays = 7
)

// LowerBound decides whether a project due today gets a reminder.
type LowerBound string

const (
	// LowerBoundInclusive reminds for 0 <= days <= lead.
	LowerBoundInclusive LowerBound = "inclusive"
	// LowerBoundExclusive reminds for 0 < days <= lead.
	LowerBoundExclusive LowerBound = "exclusive"
)

// ParseLowerBound accepts "inclusive" or "exclusive".
func ParseLowerBound(s string) (LowerBound, error) {
	switch b := LowerBound(strings.ToLower(strings.TrimSpace(s))); b {
	case LowerBoundInclusive, LowerBoundExclusive:
		return b, nil
	}
	return "", fmt.Errorf("unknown reminder lower bound %q", s)
}

// Options tunes the poller. Zero values fall back to the defaults.
type Options struct {
	Interval   time.Duration
	LeadDays   int
	LowerBound LowerBound
	// Now returns the current time; used to decide what "today" is.
	Now func() time.Time
}

// Poller periodically checks in-progress projects and reminds the user once
// per project per process run.
type Poller struct {
	repo     ports.ProjectRepository
	ui       ports.UIDispatcher
	notifier ports.ReminderNotifier
	log      zerolog.Logger

	interval time.Duration
	leadDays int
	bound    LowerBound
	now      func() time.Time

	mu       sync.Mutex
	notified map[int64]struct{}
}

// NewPoller returns a poller with an empty notified set.
func NewPoller(
	repo ports.ProjectRepository,
	ui ports.UIDispatcher,
	notifier ports.ReminderNotifier,
	opts Options,
	log zerolog.Logger,
) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.LeadDays <= 0 {
		opts.LeadDays = defaultLeadDays
	}
	if opts.LowerBound == "" {
		opts.LowerBound = LowerBoundInclusive
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Poller{
		repo:     repo,
		ui:       ui,
		notifier: notifier,
		log:      log.With().Str("component", "deadline_poller").Logger(),
		interval: opts.Interval,
		leadDays: opts.LeadDays,
		bound:    opts.LowerBound,
		now:      opts.Now,
		notified: make(map[int64]struct{}),
	}
}

// Run polls until ctx is cancelled. A failed query is logged and the loop
// carries on with the next cycle.
func (p *Poller) Run(ctx context.Context) {
	p.log.Info().
		Dur("interval", p.interval).
		Int("lead_days", p.leadDays).
		Str("lower_bound", string(p.bound)).
		Msg("deadline poller started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("deadline poller stopped")
			return
		case <-timer.C:
		}

		if _, err := p.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				p.log.Info().Msg("deadline poller stopped")
				return
			}
			metrics.DeadlinePollErrorsTotal.Inc()
			p.log.Error().Err(err).Msg("failed to check project deadlines")
		}
		timer.Reset(p.interval)
	}
}

// Poll runs a single check and returns how many reminders it raised.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	projects, err := p.repo.FindAllInProgress(ctx)
	if err != nil {
		return 0, fmt.Errorf("find in-progress projects: %w", err)
	}

	today := p.now()
	raised := 0
	for _, project := range projects {
		if ctx.Err() != nil {
			return raised, ctx.Err()
		}
		if project.Status != domain.StatusInProgress {
			continue
		}
		days := project.DaysUntil(today)
		if !p.due(days) {
			continue
		}
		if _, seen := p.notified[project.ID]; seen {
			continue
		}
		p.notified[project.ID] = struct{}{}

		r := domain.Reminder{
			ProjectID:     project.ID,
			ProjectName:   project.Name,
			DaysRemaining: days,
			RaisedAt:      today,
		}
		p.log.Info().Int64("project_id", project.ID).Int("days", days).Msg(r.Message())
		if err := p.ui.RunOnUI(func() { p.notifier.OnReminder(r) }); err != nil {
			p.log.Warn().Err(err).Int64("project_id", project.ID).Msg("could not deliver reminder")
			continue
		}
		metrics.RemindersRaisedTotal.Inc()
		raised++
	}
	return raised, nil
}

func (p *Poller) due(days int) bool {
	if days > p.leadDays {
		return false
	}
	if p.bound == LowerBoundExclusive {
		return days > 0
	}
	return days >= 0
}
