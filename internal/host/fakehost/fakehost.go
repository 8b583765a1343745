// Package fakehost is an in-memory host.Host used by tests.
package fakehost

import (
	"context"
	"fmt"
	"sync"

	"github.com/brogergvhs/pagegrab/internal/host"
)

type Host struct {
	mu       sync.Mutex
	byID     map[string]*Element
	bySel    map[string]*Element
	captures []string
	formats  []string
}

func New() *Host {
	return &Host{
		byID:  map[string]*Element{},
		bySel: map[string]*Element{},
	}
}

// Element is a scripted DOM node.
type Element struct {
	h *Host

	ID    string
	text  string
	attrs map[string]string
	data  []byte
	par   *Element

	// readyAfter makes Attribute(readyAttr) return readyValue only after
	// that many reads.
	readyAttr  string
	readyValue string
	readyAfter int
	reads      int

	onClick func(h *Host)

	Clicks  int
	Scrolls int
}

func (h *Host) Add(id string) *Element {
	h.mu.Lock()
	defer h.mu.Unlock()

	el := &Element{h: h, ID: id, attrs: map[string]string{}}
	h.byID[id] = el
	return el
}

// AddSelector registers an element reachable through Query.
func (h *Host) AddSelector(selector string) *Element {
	h.mu.Lock()
	defer h.mu.Unlock()

	el := &Element{h: h, attrs: map[string]string{}}
	h.bySel[selector] = el
	return el
}

func (h *Host) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.byID, id)
}

// Captures lists the element IDs captured so far, in order.
func (h *Host) Captures() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.captures...)
}

// CaptureFormats lists the requested encodings as "mime@quality", in
// capture order.
func (h *Host) CaptureFormats() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.formats...)
}

// AddPages adds n ready page surfaces named prefix+N with distinct data.
func (h *Host) AddPages(prefix string, n int, readyAttr, readyValue string) []*Element {
	out := make([]*Element, 0, n)
	for i := 1; i <= n; i++ {
		el := h.Add(fmt.Sprintf("%s%d", prefix, i)).
			WithData([]byte(fmt.Sprintf("page-%d", i))).
			ReadyAfter(readyAttr, readyValue, 0)
		out = append(out, el)
	}
	return out
}

func (e *Element) WithText(s string) *Element {
	e.h.mu.Lock()
	defer e.h.mu.Unlock()
	e.text = s
	return e
}

func (e *Element) WithAttr(name, value string) *Element {
	e.h.mu.Lock()
	defer e.h.mu.Unlock()
	e.attrs[name] = value
	return e
}

func (e *Element) WithData(b []byte) *Element {
	e.h.mu.Lock()
	defer e.h.mu.Unlock()
	e.data = b
	return e
}

func (e *Element) WithParent(p *Element) *Element {
	e.h.mu.Lock()
	defer e.h.mu.Unlock()
	e.par = p
	return e
}

func (e *Element) ReadyAfter(attr, value string, reads int) *Element {
	e.h.mu.Lock()
	defer e.h.mu.Unlock()
	e.readyAttr = attr
	e.readyValue = value
	e.readyAfter = reads
	return e
}

func (e *Element) OnClick(fn func(h *Host)) *Element {
	e.h.mu.Lock()
	defer e.h.mu.Unlock()
	e.onClick = fn
	return e
}

func (h *Host) ElementByID(ctx context.Context, id string) (host.Element, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	el, ok := h.byID[id]
	if !ok {
		return nil, false, nil
	}
	return el, true, nil
}

func (h *Host) Query(ctx context.Context, selector string) (host.Element, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	el, ok := h.bySel[selector]
	if !ok {
		return nil, false, nil
	}
	return el, true, nil
}

func (e *Element) Click(ctx context.Context) error {
	e.h.mu.Lock()
	e.Clicks++
	fn := e.onClick
	e.h.mu.Unlock()

	if fn != nil {
		fn(e.h)
	}
	return nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	e.h.mu.Lock()
	defer e.h.mu.Unlock()
	return e.text, nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	e.h.mu.Lock()
	defer e.h.mu.Unlock()

	if e.readyAttr != "" && name == e.readyAttr {
		e.reads++
		if e.reads > e.readyAfter {
			return e.readyValue, true, nil
		}
		return "0", true, nil
	}

	v, ok := e.attrs[name]
	return v, ok, nil
}

func (e *Element) Parent(ctx context.Context) (host.Element, bool, error) {
	e.h.mu.Lock()
	defer e.h.mu.Unlock()

	if e.par == nil {
		return nil, false, nil
	}
	return e.par, true, nil
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	e.h.mu.Lock()
	defer e.h.mu.Unlock()
	e.Scrolls++
	return nil
}

func (e *Element) Capture(ctx context.Context, mimeType string, quality float64) ([]byte, error) {
	e.h.mu.Lock()
	defer e.h.mu.Unlock()

	if e.data == nil {
		return nil, fmt.Errorf("element %q has no content", e.ID)
	}
	e.h.captures = append(e.h.captures, e.ID)
	e.h.formats = append(e.h.formats, fmt.Sprintf("%s@%.2f", mimeType, quality))
	return append([]byte(nil), e.data...), nil
}
