package pages

import (
	"context"
	"fmt"
	"time"

	"github.com/brogergvhs/pagegrab/internal/host"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultPollTimeout  = 2 * time.Minute
)

type Loader struct {
	layout   Layout
	interval time.Duration
	timeout  time.Duration
	log      Logger
}

// NewLoader builds a Loader polling every interval. A zero timeout waits
// until ctx is cancelled.
func NewLoader(layout Layout, interval, timeout time.Duration, log Logger) *Loader {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout < 0 {
		timeout = 0
	}

	return &Loader{
		layout:   layout.WithDefaults(),
		interval: interval,
		timeout:  timeout,
		log:      log,
	}
}

// AwaitPageReady scrolls the surface into view so the viewer renders it,
// then polls its readiness marker.
func (l *Loader) AwaitPageReady(ctx context.Context, pageNo int, surface host.Element) error {
	l.log.Debugf("Preloading page #%d\n", pageNo)

	if err := surface.ScrollIntoView(ctx); err != nil {
		return fmt.Errorf("scroll page #%d into view: %w", pageNo, err)
	}

	maxPolls := 0
	if l.timeout > 0 {
		maxPolls = int(l.timeout / l.interval)
		if maxPolls < 1 {
			maxPolls = 1
		}
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for polls := 0; ; polls++ {
		ready, err := l.isReady(ctx, surface)
		if err != nil {
			return fmt.Errorf("check page #%d readiness: %w", pageNo, err)
		}
		if ready {
			l.log.Debugf("Loaded page #%d\n", pageNo)
			return nil
		}

		if maxPolls > 0 && polls >= maxPolls {
			return &PageLoadTimeoutError{Page: pageNo, Polls: polls}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Loader) isReady(ctx context.Context, surface host.Element) (bool, error) {
	v, ok, err := surface.Attribute(ctx, l.layout.ReadyAttr)
	if err != nil {
		return false, err
	}

	return ok && v == l.layout.ReadyValue, nil
}
