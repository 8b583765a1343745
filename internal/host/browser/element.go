package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"

	"github.com/brogergvhs/pagegrab/internal/host"
)

// captureJS renders the surface to a data URL. A canvas is exported
// directly; an image is first drawn onto a scratch canvas.
const captureJS = `function (mime, quality) {
	let src = this.tagName === 'CANVAS' || this.tagName === 'IMG'
		? this
		: (this.querySelector('canvas') || this.querySelector('img'));
	if (!src) {
		throw new Error('surface has no canvas or image');
	}
	if (src.tagName === 'IMG') {
		const c = document.createElement('canvas');
		c.width = src.naturalWidth;
		c.height = src.naturalHeight;
		c.getContext('2d').drawImage(src, 0, 0);
		src = c;
	}
	return src.toDataURL(mime, quality);
}`

type element struct {
	el *rod.Element
}

func (e *element) Click(ctx context.Context) error {
	_, err := e.el.Context(ctx).Eval(`function () { this.click() }`)
	return err
}

func (e *element) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *element) Parent(ctx context.Context) (host.Element, bool, error) {
	el := e.el.Context(ctx)

	res, err := el.Eval(`function () { return this.parentElement !== null }`)
	if err != nil {
		return nil, false, err
	}
	if !res.Value.Bool() {
		return nil, false, nil
	}

	p, err := el.Parent()
	if err != nil {
		return nil, false, err
	}
	return &element{el: p}, true, nil
}

func (e *element) ScrollIntoView(ctx context.Context) error {
	return e.el.Context(ctx).ScrollIntoView()
}

func (e *element) Capture(ctx context.Context, mimeType string, quality float64) ([]byte, error) {
	res, err := e.el.Context(ctx).Eval(captureJS, mimeType, quality)
	if err != nil {
		return nil, fmt.Errorf("render surface: %w", err)
	}

	data, got, err := host.DecodeDataURL(res.Value.Str())
	if err != nil {
		return nil, err
	}
	if got != mimeType {
		return nil, fmt.Errorf("browser rendered %s instead of %s", got, mimeType)
	}

	return data, nil
}
