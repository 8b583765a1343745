package static

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/pagegrab/internal/host"
	"github.com/brogergvhs/pagegrab/internal/imaging"
	"github.com/brogergvhs/pagegrab/internal/util"
)

var (
	lazyAttrs = []string{"data-src", "data-lazy-src", "data-original"}

	reBackgroundURL = regexp.MustCompile(`url\((?:["']?)([^"')]+)(?:["']?)\)`)
)

type Options struct {
	// ReadyAttr is set to ReadyValue on a surface once it is scrolled
	// into view, mirroring what a live viewer does after rendering.
	ReadyAttr  string
	ReadyValue string
}

type Host struct {
	mu      sync.Mutex
	doc     *goquery.Document
	client  *http.Client
	pageURL string
	opts    Options
}

// Load fetches pageURL and parses it.
func Load(ctx context.Context, client *http.Client, pageURL string, opts Options) (*Host, error) {
	doc, err := fetchDOM(ctx, client, pageURL)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", pageURL, err)
	}

	return &Host{doc: doc, client: client, pageURL: pageURL, opts: opts}, nil
}

// FromReader parses an already downloaded page. pageURL resolves relative
// links and image sources.
func FromReader(r io.Reader, client *http.Client, pageURL string, opts Options) (*Host, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	return &Host{doc: doc, client: client, pageURL: pageURL, opts: opts}, nil
}

func fetchDOM(ctx context.Context, client *http.Client, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := util.DoWithRetry(client, req, 3, 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

func (h *Host) ElementByID(ctx context.Context, id string) (host.Element, bool, error) {
	return h.Query(ctx, fmt.Sprintf("[id=%q]", id))
}

func (h *Host) Query(ctx context.Context, selector string) (host.Element, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sel := h.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false, nil
	}

	return &element{h: h, sel: sel}, true, nil
}

type element struct {
	h   *Host
	sel *goquery.Selection
}

// Click follows the control's href or data-href and replaces the control
// with the body of the fetched fragment. A control without a target is
// removed.
func (e *element) Click(ctx context.Context) error {
	e.h.mu.Lock()
	target, ok := e.sel.Attr("data-href")
	if !ok || strings.TrimSpace(target) == "" {
		target, ok = e.sel.Attr("href")
	}
	target = strings.TrimSpace(target)
	e.h.mu.Unlock()

	if !ok || target == "" || strings.HasPrefix(target, "#") || strings.HasPrefix(target, "javascript:") {
		e.h.mu.Lock()
		e.sel.Remove()
		e.h.mu.Unlock()
		return nil
	}

	frag, err := fetchDOM(ctx, e.h.client, resolve(e.h.pageURL, target))
	if err != nil {
		return fmt.Errorf("follow %s: %w", target, err)
	}

	e.h.mu.Lock()
	defer e.h.mu.Unlock()

	content := frag.Find("body").Children()
	if content.Length() == 0 {
		e.sel.Remove()
		return nil
	}
	e.sel.ReplaceWithSelection(content)

	return nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	e.h.mu.Lock()
	defer e.h.mu.Unlock()
	return e.sel.Text(), nil
}

func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	e.h.mu.Lock()
	defer e.h.mu.Unlock()

	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *element) Parent(ctx context.Context) (host.Element, bool, error) {
	e.h.mu.Lock()
	defer e.h.mu.Unlock()

	p := e.sel.Parent()
	if p.Length() == 0 {
		return nil, false, nil
	}
	return &element{h: e.h, sel: p}, true, nil
}

// ScrollIntoView promotes lazy image sources and marks the surface ready.
func (e *element) ScrollIntoView(ctx context.Context) error {
	e.h.mu.Lock()
	defer e.h.mu.Unlock()

	img := e.imageNode()
	if src, _ := img.Attr("src"); strings.TrimSpace(src) == "" {
		for _, k := range lazyAttrs {
			if v, ok := img.Attr(k); ok && strings.TrimSpace(v) != "" {
				img.SetAttr("src", strings.TrimSpace(v))
				break
			}
		}
	}

	if e.h.opts.ReadyAttr != "" {
		e.sel.SetAttr(e.h.opts.ReadyAttr, e.h.opts.ReadyValue)
	}

	return nil
}

// imageNode is the surface itself when it is an <img>, otherwise its
// first descendant image.
func (e *element) imageNode() *goquery.Selection {
	if goquery.NodeName(e.sel) == "img" {
		return e.sel
	}
	return e.sel.Find("img").First()
}

func (e *element) Capture(ctx context.Context, mimeType string, quality float64) ([]byte, error) {
	e.h.mu.Lock()
	src := imageSource(e.imageNode())
	if src == "" {
		src = backgroundSource(e.sel)
	}
	e.h.mu.Unlock()

	if src == "" {
		return nil, fmt.Errorf("surface has no image source")
	}

	raw, err := e.h.fetchImage(ctx, src)
	if err != nil {
		return nil, err
	}

	return imaging.Transcode(raw, mimeType, quality, 0)
}

func imageSource(img *goquery.Selection) string {
	if img.Length() == 0 {
		return ""
	}

	if v, ok := img.Attr("src"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	for _, k := range lazyAttrs {
		if v, ok := img.Attr(k); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}

	if ss, ok := img.Attr("srcset"); ok {
		for _, p := range strings.Split(ss, ",") {
			if parts := strings.Fields(strings.TrimSpace(p)); len(parts) > 0 {
				return parts[0]
			}
		}
	}

	return ""
}

// backgroundSource reads a CSS background-image from the inline style of
// the surface.
func backgroundSource(sel *goquery.Selection) string {
	style, ok := sel.Attr("style")
	if !ok {
		return ""
	}

	if m := reBackgroundURL.FindStringSubmatch(style); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func (h *Host) fetchImage(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		b, _, err := host.DecodeDataURL(src)
		return b, err
	}

	u := resolve(h.pageURL, src)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", h.pageURL)
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", u, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func resolve(pageURL, raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u == nil {
		return raw
	}

	if u.IsAbs() {
		return u.String()
	}

	base, err := url.Parse(pageURL)
	if err != nil || base == nil {
		return raw
	}

	return base.ResolveReference(u).String()
}
