package sysinfo

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Interval is the sampling tick of the panel.
const Interval = time.Second

// Poller samples on a fixed tick and delivers snapshots over a channel.
type Poller struct {
	sampler  *Sampler
	interval time.Duration
	logger   log.FieldLogger
}

// NewPoller creates a Poller ticking every Interval.
func NewPoller(sampler *Sampler, logger log.FieldLogger) *Poller {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Poller{
		sampler:  sampler,
		interval: Interval,
		logger:   logger.WithField("component", "poller"),
	}
}

// Run starts sampling in a goroutine: once immediately, then on every tick.
// The returned channel holds at most one pending snapshot; a consumer that
// falls behind only sees the newest one. The channel is closed once ctx is
// done.
func (p *Poller) Run(ctx context.Context) <-chan *Snapshot {
	out := make(chan *Snapshot, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			snap, err := p.sampler.Sample(ctx)
			if err != nil {
				p.logger.WithError(err).Debug("sampling stopped")
				return
			}
			deliver(out, snap)

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return out
}

// deliver replaces a pending snapshot instead of blocking the tick.
func deliver(out chan *Snapshot, snap *Snapshot) {
	select {
	case out <- snap:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	out <- snap
}
