package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ppiankov/commentlab/internal/logging"
	"golang.org/x/time/rate"
)

// Progress counts finished units and logs at most once per interval, plus
// once when the last unit finishes.
type Progress struct {
	task      string
	total     int64
	done      atomic.Int64
	failed    atomic.Int64
	sometimes rate.Sometimes
	logger    *logging.Logger
}

// NewProgress creates a progress tracker for total units.
func NewProgress(task string, total int, interval time.Duration, logger *logging.Logger) *Progress {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Progress{
		task:      task,
		total:     int64(total),
		sometimes: rate.Sometimes{First: 1, Interval: interval},
		logger:    logger,
	}
}

// Done records one finished unit.
func (p *Progress) Done(ctx context.Context, err error) {
	if err != nil {
		p.failed.Add(1)
	}
	n := p.done.Add(1)
	report := func() {
		p.logger.InfoContext(ctx, "progress",
			"task", p.task,
			"done", n,
			"total", p.total,
			"failed", p.failed.Load(),
		)
	}
	if n == p.total {
		report()
		return
	}
	p.sometimes.Do(report)
}

// Counts returns the finished and failed unit counts.
func (p *Progress) Counts() (done, failed int) {
	return int(p.done.Load()), int(p.failed.Load())
}
