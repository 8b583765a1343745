package pages

import (
	"context"
	"fmt"
)

const DefaultMaxContinueClicks = 1000

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
}

type Revealer struct {
	loc       *Locator
	maxClicks int
	log       Logger
}

func NewRevealer(loc *Locator, maxClicks int, log Logger) *Revealer {
	if maxClicks <= 0 {
		maxClicks = DefaultMaxContinueClicks
	}

	return &Revealer{loc: loc, maxClicks: maxClicks, log: log}
}

// RevealAllPlaceholders clicks the viewer's continue control until the
// host removes it, then checks that every page has a surface.
func (r *Revealer) RevealAllPlaceholders(ctx context.Context) error {
	layout := r.loc.Layout()
	clicks := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		btn, ok, err := r.loc.host.ElementByID(ctx, layout.ContinueID)
		if err != nil {
			return fmt.Errorf("locate continue control: %w", err)
		}
		if !ok {
			break
		}

		if clicks >= r.maxClicks {
			return &RevealLimitError{Clicks: clicks}
		}

		if err := btn.Click(ctx); err != nil {
			return fmt.Errorf("click continue control: %w", err)
		}
		clicks++
	}

	if clicks > 0 {
		r.log.Debugf("Clicked continue control %d times\n", clicks)
	}

	count, err := r.loc.TotalPageCount(ctx)
	if err != nil {
		return err
	}

	for pageNo := 1; pageNo <= count; pageNo++ {
		_, ok, err := r.loc.PageSurface(ctx, pageNo)
		if err != nil {
			return err
		}
		if !ok {
			return &MissingPageSurfaceError{Page: pageNo}
		}
	}

	r.log.Infof("Revealed all page placeholders (%d pages)\n", count)
	return nil
}
