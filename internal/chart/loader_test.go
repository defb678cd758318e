package chart

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		headers []string
		rows    []RawRow
	}{
		{
			name:    "basic",
			input:   "Year,Amount USD\n2000,5\n2001,9\n",
			headers: []string{"Year", "Amount USD"},
			rows:    []RawRow{{"Year": "2000", "Amount USD": "5"}, {"Year": "2001", "Amount USD": "9"}},
		},
		{
			name:    "bom and padded header",
			input:   "\ufeff year , count\n2000,1\n",
			headers: []string{"year", "count"},
			rows:    []RawRow{{"year": "2000", "count": "1"}},
		},
		{
			name:    "short and long records",
			input:   "a,b,c\n1\n1,2,3,4\n",
			headers: []string{"a", "b", "c"},
			rows:    []RawRow{{"a": "1", "b": "", "c": ""}, {"a": "1", "b": "2", "c": "3"}},
		},
		{
			name:    "quoted fields",
			input:   "title,year\n\"Roads, bridges\",2004\n",
			headers: []string{"title", "year"},
			rows:    []RawRow{{"title": "Roads, bridges", "year": "2004"}},
		},
		{
			name:    "quote inside a field",
			input:   "Title,Commitment Year\nThe 5\" Pipe Project,2001\nRoads,2002\n",
			headers: []string{"Title", "Commitment Year"},
			rows: []RawRow{
				{"Title": "The 5\" Pipe Project", "Commitment Year": "2001"},
				{"Title": "Roads", "Commitment Year": "2002"},
			},
		},
		{
			name:    "headers only",
			input:   "Year,Value\n",
			headers: []string{"Year", "Value"},
		},
		{
			name:  "empty input",
			input: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ParseCSV("mem", strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, "mem", tbl.Source)
			assert.Equal(t, tt.headers, tbl.Headers)
			assert.Equal(t, tt.rows, tbl.Rows)
		})
	}
}

func TestParseCSVUnclosedQuote(t *testing.T) {
	// an unclosed quoted field runs to the end of the input
	tbl, err := ParseCSV("mem", strings.NewReader("a,b\n1,2\n\"open,1\n"))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, RawRow{"a": "1", "b": "2"}, tbl.Rows[0])
	assert.True(t, strings.HasPrefix(tbl.Rows[1]["a"], "open,1"), tbl.Rows[1]["a"])
}

func TestParseCSVReadError(t *testing.T) {
	_, err := ParseCSV("mem", iotest.ErrReader(errors.New("disk gone")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")

	_, err = ParseCSV("mem", io.MultiReader(strings.NewReader("year\n2000\n"), iotest.ErrReader(errors.New("cut off"))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read record")
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("Commitment Year,Title\n2001,a\n2002,b\n"), 0o644))

	tbl, err := FileLoader{}.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)

	_, err = FileLoader{}.Load(context.Background(), filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindLoad))
	assert.Contains(t, Diagnostic(err), "Error loading CSV: ")
}

func TestHTTPLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data.csv":
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("year,value\n2000,5\n2000,7\n"))
		case "/page.csv":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<!doctype html><html><body>index</body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := HTTPLoader{Client: srv.Client()}

	tbl, err := l.Load(context.Background(), srv.URL+"/data.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "value"}, tbl.Headers)
	assert.Len(t, tbl.Rows, 2)

	_, err = l.Load(context.Background(), srv.URL+"/missing.csv")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindLoad))
	assert.Contains(t, err.Error(), "404")

	_, err = l.Load(context.Background(), srv.URL+"/page.csv")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindLoad))
	assert.Contains(t, err.Error(), "HTML")
}

func TestNewLoaderDispatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("year\n1999\n"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "d.csv")
	require.NoError(t, os.WriteFile(path, []byte("year\n2010\n2011\n"), 0o644))

	l := NewLoader(srv.Client())
	tbl, err := l.Load(context.Background(), srv.URL+"/x.csv")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)

	tbl, err = l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)
}

type blockingLoader struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (b *blockingLoader) Load(ctx context.Context, source string) (Table, error) {
	b.calls.Add(1)
	b.entered <- struct{}{}
	<-b.release
	return Table{Source: source, Headers: []string{"year"}, Rows: []RawRow{{"year": "2000"}}}, nil
}

func TestSharedLoaderCoalesces(t *testing.T) {
	inner := &blockingLoader{entered: make(chan struct{}, 2), release: make(chan struct{})}
	l := NewSharedLoader(inner)

	var wg sync.WaitGroup
	results := make([]Table, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tbl, err := l.Load(context.Background(), "same.csv")
			assert.NoError(t, err)
			results[i] = tbl
		}(i)
		if i == 0 {
			<-inner.entered
		}
	}
	// give the second caller time to join the in-flight load
	time.Sleep(50 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, results[0], results[1])
}

func TestSharedLoaderKeysSeparateFetches(t *testing.T) {
	inner := &blockingLoader{entered: make(chan struct{}, 2), release: make(chan struct{})}
	l := NewSharedLoader(inner)

	var wg sync.WaitGroup
	for _, key := range []string{"draw-1", "draw-2"} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			_, err := l.Load(WithLoadKey(context.Background(), key), "same.csv")
			assert.NoError(t, err)
		}(key)
	}
	// both loads reach the wrapped loader before either is released
	<-inner.entered
	<-inner.entered
	close(inner.release)
	wg.Wait()

	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestSharedLoaderCallerCancel(t *testing.T) {
	inner := &blockingLoader{entered: make(chan struct{}, 2), release: make(chan struct{})}
	l := NewSharedLoader(inner)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx, "same.csv")
		errs <- err
	}()
	<-inner.entered

	tables := make(chan Table, 1)
	go func() {
		tbl, err := l.Load(context.Background(), "same.csv")
		assert.NoError(t, err)
		tables <- tbl
	}()

	cancel()
	err := <-errs
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsKind(err, KindLoad))

	close(inner.release)
	tbl := <-tables
	assert.Len(t, tbl.Rows, 1)
}
