// Package pages finds, reveals and waits for the page surfaces of a
// document viewer reached through a host.Host.
package pages

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/brogergvhs/pagegrab/internal/host"
)

type Locator struct {
	host   host.Host
	layout Layout
}

func NewLocator(h host.Host, layout Layout) *Locator {
	return &Locator{host: h, layout: layout.WithDefaults()}
}

func (l *Locator) Layout() Layout {
	return l.layout
}

// PageSurface returns the rendering surface of pageNo. Out-of-range page
// numbers are reported as not found.
func (l *Locator) PageSurface(ctx context.Context, pageNo int) (host.Element, bool, error) {
	if pageNo < 1 {
		return nil, false, nil
	}

	el, ok, err := l.host.ElementByID(ctx, l.layout.SurfaceID(pageNo))
	if err != nil {
		return nil, false, fmt.Errorf("locate page #%d: %w", pageNo, err)
	}

	return el, ok, nil
}

// TotalPageCount reads the "N / total" indicator next to the page number
// input.
func (l *Locator) TotalPageCount(ctx context.Context) (int, error) {
	input, ok, err := l.host.ElementByID(ctx, l.layout.PageCountID)
	if err != nil {
		return 0, fmt.Errorf("locate page count: %w", err)
	}
	if !ok {
		return 0, &MissingElementError{ID: l.layout.PageCountID}
	}

	container := input
	if parent, ok, err := input.Parent(ctx); err != nil {
		return 0, fmt.Errorf("locate page count container: %w", err)
	} else if ok {
		container = parent
	}

	text, err := container.Text(ctx)
	if err != nil {
		return 0, fmt.Errorf("read page count: %w", err)
	}

	return parsePageCount(text)
}

func parsePageCount(text string) (int, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '/' {
			return -1
		}
		return r
	}, text)

	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, &ParseError{Text: text, Err: err}
	}

	return n, nil
}

// Title returns the document title, or DefaultTitle when the host page
// does not expose one.
func (l *Locator) Title(ctx context.Context) string {
	el, ok, err := l.host.Query(ctx, l.layout.TitleSelector)
	if err != nil || !ok {
		return DefaultTitle
	}

	title, ok, err := el.Attribute(ctx, l.layout.TitleAttr)
	title = strings.TrimSpace(title)
	if err != nil || !ok || title == "" {
		return DefaultTitle
	}

	return title
}
