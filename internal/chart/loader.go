package chart

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader fetches and parses a CSV source into a Table.
type Loader interface {
	Load(ctx context.Context, source string) (Table, error)
}

// NewHTTPClient returns an http.Client with cookie jar
func NewHTTPClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Jar: jar, Timeout: 30 * time.Second}
}

// NewLoader returns a loader that reads http(s) sources over the network and everything
// else from the local filesystem, with concurrent loads of one source coalesced.
func NewLoader(client *http.Client) Loader {
	if client == nil {
		client = NewHTTPClient()
	}
	return NewSharedLoader(sourceLoader{
		http: HTTPLoader{Client: client},
		file: FileLoader{},
	})
}

type sourceLoader struct {
	http HTTPLoader
	file FileLoader
}

func (l sourceLoader) Load(ctx context.Context, source string) (Table, error) {
	if IsRemote(source) {
		return l.http.Load(ctx, source)
	}
	return l.file.Load(ctx, source)
}

// IsRemote reports whether source is fetched over http(s) rather than read from disk.
func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// FileLoader reads a CSV file from disk.
type FileLoader struct{}

func (FileLoader) Load(ctx context.Context, path string) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, loadError(path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return Table{}, loadError(path, err)
	}
	defer f.Close()
	t, err := ParseCSV(path, f)
	if err != nil {
		return Table{}, loadError(path, err)
	}
	return t, nil
}

// HTTPLoader GETs a CSV over http(s).
type HTTPLoader struct {
	Client *http.Client
}

func (l HTTPLoader) Load(ctx context.Context, url string) (Table, error) {
	client := l.Client
	if client == nil {
		client = NewHTTPClient()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Table{}, loadError(url, err)
	}
	req.Header.Set("accept", "text/csv, text/plain, */*")
	req.Header.Set("user-agent", "go-client")
	resp, err := client.Do(req)
	if err != nil {
		return Table{}, loadError(url, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Table{}, loadError(url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Table{}, loadError(url, fmt.Errorf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	// an html body here is an error page or a dev-server fallback, not a dataset
	ct := resp.Header.Get("Content-Type")
	trimmed := bytes.TrimSpace(b)
	if strings.HasPrefix(string(trimmed), "<") || strings.Contains(strings.ToLower(ct), "text/html") {
		return Table{}, loadError(url, fmt.Errorf("response appears to be HTML, not CSV. status=%d snippet=%q", resp.StatusCode, snippet(trimmed, 120)))
	}

	t, err := ParseCSV(url, bytes.NewReader(b))
	if err != nil {
		return Table{}, loadError(url, err)
	}
	return t, nil
}

func snippet(b []byte, n int) string {
	s := string(b)
	if len(s) > n {
		s = s[:n]
	}
	return s
}

func loadError(path string, err error) error {
	return &OpError{Op: "chart.load", Kind: KindLoad, Path: path, Err: err}
}

// ParseCSV reads a header record followed by data records. An input with no records at all
// yields an empty Table, not an error. Records shorter than the header read the missing
// fields as ""; extra fields are ignored. A quote is only special at the start of a field,
// so titles like `5" pipe` load as written.
func ParseCSV(source string, r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	t := Table{Source: source}
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return t, nil
	}
	if err != nil {
		return t, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}
	t.Headers = header

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return t, fmt.Errorf("read record: %w", err)
		}
		// a blank line in the middle of the file is skipped by encoding/csv already
		row := make(RawRow, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

type loadKey struct{}

// WithLoadKey scopes coalescing in a SharedLoader: loads of one source share a fetch only
// when their contexts carry the same key. A controller keys every draw separately so a new
// draw never reuses a fetch that started before it.
func WithLoadKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, loadKey{}, key)
}

// SharedLoader coalesces concurrent loads of the same source (and load key) into one call
// of the wrapped loader. Callers share the result, including any error. A caller whose
// context ends stops waiting without cancelling the fetch for the others.
type SharedLoader struct {
	inner Loader
	group singleflight.Group
}

func NewSharedLoader(inner Loader) *SharedLoader {
	return &SharedLoader{inner: inner}
}

func (l *SharedLoader) Load(ctx context.Context, source string) (Table, error) {
	key := source
	if k, ok := ctx.Value(loadKey{}).(string); ok {
		key += "\x00" + k
	}
	ch := l.group.DoChan(key, func() (interface{}, error) {
		return l.inner.Load(context.WithoutCancel(ctx), source)
	})
	select {
	case <-ctx.Done():
		return Table{}, loadError(source, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return Table{}, res.Err
		}
		return res.Val.(Table), nil
	}
}
