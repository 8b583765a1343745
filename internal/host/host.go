// Package host defines the capabilities pagegrab needs from a document
// viewer page it does not own. Concrete hosts drive a real browser
// (host/browser), a parsed HTML snapshot (host/static) or an in-memory
// DOM for tests (host/fakehost).
package host

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Host locates elements on the viewer page. A missing element is reported
// with found == false; errors are reserved for transport failures.
type Host interface {
	ElementByID(ctx context.Context, id string) (el Element, found bool, err error)
	Query(ctx context.Context, selector string) (el Element, found bool, err error)
}

// Element is a handle to one node of the host page.
type Element interface {
	Click(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (value string, present bool, err error)
	Parent(ctx context.Context) (el Element, found bool, err error)
	ScrollIntoView(ctx context.Context) error

	// Capture encodes the rendered content of the element at the given
	// MIME type. Quality applies to lossy types only.
	Capture(ctx context.Context, mimeType string, quality float64) ([]byte, error)
}

var ErrNotDataURL = errors.New("not a data URL")

// DecodeDataURL returns the payload and media type of a data: URL.
func DecodeDataURL(raw string) ([]byte, string, error) {
	if !strings.HasPrefix(raw, "data:") {
		return nil, "", ErrNotDataURL
	}

	meta, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URL: missing payload separator")
	}

	mediaType := meta
	isBase64 := false
	if strings.HasSuffix(meta, ";base64") {
		mediaType = strings.TrimSuffix(meta, ";base64")
		isBase64 = true
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}

	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("decode data URL: %w", err)
		}
		return b, mediaType, nil
	}

	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data URL: %w", err)
	}

	return []byte(s), mediaType, nil
}
