// Package assets resolves texture sources and decodes them into images.
// A source is an http(s) URL, a file:// URL, or a path; relative sources
// resolve against the fetcher's base, which may itself be a URL or a
// directory.
package assets

import (
	"context"
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxBytes caps a single image download or file read.
const DefaultMaxBytes = 32 << 20

// ErrTooLarge is returned when a source exceeds the fetcher's byte limit.
var ErrTooLarge = errors.New("asset exceeds size limit")

// Fetcher loads image sources over HTTP or from the local filesystem. It
// implements core.ImageSource and is safe for concurrent use.
type Fetcher struct {
	Client *http.Client
	// Base is the URL or directory relative sources resolve against.
	Base     string
	MaxBytes int64
}

// NewFetcher returns a fetcher rooted at base with a 30s HTTP timeout.
func NewFetcher(base string) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: 30 * time.Second},
		Base:     base,
		MaxBytes: DefaultMaxBytes,
	}
}

// location is a resolved source: exactly one of url or path is set.
type location struct {
	url  string
	path string
}

func (l location) String() string {
	if l.url != "" {
		return l.url
	}
	return l.path
}

func isRemote(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

// parseURL parses s, rejecting Windows drive letters that would otherwise
// read as single-letter schemes.
func parseURL(s string) (*url.URL, bool) {
	u, err := url.Parse(s)
	if err != nil || len(u.Scheme) < 2 {
		return nil, false
	}
	return u, true
}

// Resolve maps source to the URL or file path it names.
func (f *Fetcher) Resolve(source string) (string, error) {
	loc, err := f.resolve(source)
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}

func (f *Fetcher) resolve(source string) (location, error) {
	if source == "" {
		return location{}, errors.New("empty source")
	}
	if u, ok := parseURL(source); ok {
		switch {
		case isRemote(u):
			return location{url: u.String()}, nil
		case u.Scheme == "file":
			return location{path: filepath.FromSlash(u.Path)}, nil
		default:
			return location{}, errors.Errorf("unsupported scheme %q", u.Scheme)
		}
	}

	if base, ok := parseURL(f.Base); ok {
		ref, err := url.Parse(filepath.ToSlash(source))
		if err != nil {
			return location{}, errors.Wrapf(err, "parse %s", source)
		}
		resolved := base.ResolveReference(ref)
		if isRemote(resolved) {
			return location{url: resolved.String()}, nil
		}
		return location{path: filepath.FromSlash(resolved.Path)}, nil
	}

	if filepath.IsAbs(source) || f.Base == "" {
		return location{path: source}, nil
	}
	return location{path: filepath.Join(f.Base, source)}, nil
}

// Open returns the raw bytes of source. The caller closes the reader.
func (f *Fetcher) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	loc, err := f.resolve(source)
	if err != nil {
		return nil, err
	}
	if loc.url != "" {
		return f.get(ctx, loc.url)
	}
	file, err := os.Open(loc.path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	return f.limit(file), nil
}

func (f *Fetcher) get(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", u)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("get %s: unexpected status: %s", u, resp.Status)
	}
	if f.MaxBytes > 0 && resp.ContentLength > f.MaxBytes {
		resp.Body.Close()
		return nil, errors.Wrapf(ErrTooLarge, "get %s: %d bytes", u, resp.ContentLength)
	}
	return f.limit(resp.Body), nil
}

// Decode fetches source and decodes it with the registered image formats:
// PNG, JPEG, GIF, BMP, TIFF and WebP.
func (f *Fetcher) Decode(ctx context.Context, source string) (image.Image, error) {
	rc, err := f.Open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, errors.Wrap(err, "decode")
	}
	return img, nil
}

func (f *Fetcher) limit(rc io.ReadCloser) io.ReadCloser {
	if f.MaxBytes <= 0 {
		return rc
	}
	return &limitedReader{rc: rc, left: f.MaxBytes}
}

// limitedReader fails with ErrTooLarge instead of truncating silently.
type limitedReader struct {
	rc   io.ReadCloser
	left int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.left < 0 {
		return 0, ErrTooLarge
	}
	if int64(len(p)) > l.left+1 {
		p = p[:l.left+1]
	}
	n, err := l.rc.Read(p)
	l.left -= int64(n)
	if l.left < 0 {
		return n, ErrTooLarge
	}
	return n, err
}

func (l *limitedReader) Close() error { return l.rc.Close() }
