package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/charmcart-backend/pkg/logger"
)

const (
	CartFlushJobName    = "cart-flush"
	SessionEvictJobName = "session-evict"
)

type dirtyFlusher interface {
	FlushDirty(ctx context.Context) (int, error)
}

type idleEvictor interface {
	EvictIdle(ctx context.Context) (int, error)
}

// NewCartFlushJob saves carts whose background save has not landed.
func NewCartFlushJob(logg *logger.Logger, sessions dirtyFlusher) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	return &countingJob{name: CartFlushJobName, verb: "flushed", logg: logg, run: sessions.FlushDirty}, nil
}

// NewSessionEvictJob ends sessions that have been idle past their TTL.
func NewSessionEvictJob(logg *logger.Logger, sessions idleEvictor) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	return &countingJob{name: SessionEvictJobName, verb: "evicted", logg: logg, run: sessions.EvictIdle}, nil
}

// processedReporter is implemented by jobs that count what their last run handled.
type processedReporter interface {
	Processed() int
}

type countingJob struct {
	name string
	verb string
	logg *logger.Logger
	run  func(ctx context.Context) (int, error)
	last int
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Processed() int { return j.last }

func (j *countingJob) Run(ctx context.Context) error {
	n, err := j.run(ctx)
	j.last = n
	if n > 0 {
		j.logg.Info(j.logg.WithField(ctx, j.verb, n), j.name+" run")
	}
	return err
}
