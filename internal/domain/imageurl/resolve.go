// Package imageurl picks the image shown for a painter and rewrites media
// repository URLs into sized thumbnails.
package imageurl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/okian/artmap/pkg/metrics"
)

// Thumbnail widths per call site.
const (
	MarkerWidth = 300
	PanelWidth  = 400
)

// Defaults for the Wikimedia Commons repository.
const (
	DefaultCommonsPrefix  = "https://upload.wikimedia.org/wikipedia/commons/"
	DefaultPlaceholderURL = "https://upload.wikimedia.org/wikipedia/commons/thumb/3/3f/Placeholder_view_vector.svg/640px-Placeholder_view_vector.svg.png"
)

var errNoFilename = errors.New("image path has no filename")

// Preloader warms an image out of band. Failures are never reported back.
type Preloader interface {
	Preload(url string)
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	URL     string `json:"url"`
	Preload bool   `json:"preload"`
}

// Resolver applies the image preference order and thumbnail convention.
type Resolver struct {
	prefix      string
	placeholder string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCommonsPrefix sets the media repository prefix to rewrite.
func WithCommonsPrefix(prefix string) Option {
	return func(r *Resolver) {
		if prefix != "" {
			if !strings.HasSuffix(prefix, "/") {
				prefix += "/"
			}
			r.prefix = prefix
		}
	}
}

// WithPlaceholder sets the image used when a record has none.
func WithPlaceholder(u string) Option {
	return func(r *Resolver) {
		if u != "" {
			r.placeholder = u
		}
	}
}

// NewResolver creates a Resolver for Wikimedia Commons by default.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{prefix: DefaultCommonsPrefix, placeholder: DefaultPlaceholderURL}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Placeholder returns the configured placeholder URL.
func (r *Resolver) Placeholder() string { return r.placeholder }

// Resolve picks artwork, then painter image, then the placeholder, and
// rewrites repository URLs into {prefix}thumb/{path}/{width}px-{filename}.
// A rewrite failure yields the original URL.
func (r *Resolver) Resolve(artworkURL, painterURL string, width int) Resolution {
	raw := firstNonEmpty(artworkURL, painterURL, r.placeholder)
	if raw == r.placeholder {
		metrics.RecordThumbnail("placeholder")
		return Resolution{URL: raw}
	}
	if !strings.HasPrefix(raw, r.prefix) {
		metrics.RecordThumbnail("original")
		return Resolution{URL: raw, Preload: true}
	}
	thumb, err := r.thumbnail(raw, width)
	if err != nil {
		metrics.RecordThumbnail("fallback")
		return Resolution{URL: raw, Preload: true}
	}
	metrics.RecordThumbnail("thumbnail")
	return Resolution{URL: thumb, Preload: true}
}

func (r *Resolver) thumbnail(raw string, width int) (string, error) {
	if width <= 0 {
		return "", fmt.Errorf("invalid thumbnail width %d", width)
	}
	path := raw[len(r.prefix):]
	segments := strings.Split(path, "/")
	encoded := make([]string, len(segments))
	var filename string
	for i, seg := range segments {
		decoded, err := url.PathUnescape(seg)
		if err != nil {
			return "", fmt.Errorf("decode segment %q: %w", seg, err)
		}
		if !utf8.ValidString(decoded) {
			return "", fmt.Errorf("segment %q is not UTF-8", seg)
		}
		encoded[i] = EncodeComponent(decoded)
		filename = decoded
	}
	if filename == "" {
		return "", errNoFilename
	}
	return fmt.Sprintf("%sthumb/%s/%dpx-%s", r.prefix, strings.Join(encoded, "/"), width, filename), nil
}

// EncodeComponent percent-encodes s like JavaScript's encodeURIComponent:
// everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ) is escaped.
func EncodeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
