// Package static implements host.Host over a parsed HTML snapshot of a
// viewer page. It suits viewers that render pages as plain images: the
// continue control is followed as a link, lazy images are promoted when
// scrolled into view and captures are transcoded from the image source.
package static
