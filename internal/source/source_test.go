package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordmemo/internal/importer"
	"github.com/example/wordmemo/internal/session"
	"github.com/example/wordmemo/internal/spaced_repetition"
)

type wordServer struct {
	mu       sync.Mutex
	body     string
	status   int
	requests int
	onServe  func()
}

func (s *wordServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests++
	body, status, hook := s.body, s.status, s.onServe
	s.onServe = nil
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	if status != 0 {
		w.WriteHeader(status)
		return
	}
	w.Write([]byte(body))
}

func (s *wordServer) set(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = body
}

func (s *wordServer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func newTestWatcher(t *testing.T) (*Watcher, *session.Session) {
	t.Helper()
	s := session.New(session.Options{Clock: session.NewFixedClock(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))})
	return NewWatcher(s, nil, importer.DefaultImportConfig(), nil), s
}

func TestSignature(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Signature(nil))
	assert.NotEqual(t, Signature([]byte("a")), Signature([]byte("b")))
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/words.txt"))
	assert.True(t, IsRemote("HTTP://example.com"))
	assert.False(t, IsRemote("words.txt"))
}

func TestFetchErrors(t *testing.T) {
	srv := &wordServer{status: http.StatusNotFound}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	f := NewFetcher(nil)
	_, err := f.Fetch(context.Background(), ts.URL+"/words.txt")
	assert.Error(t, err)

	_, err = f.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestCheckMergesOnlyChangedContent(t *testing.T) {
	srv := &wordServer{body: "apple\tsa-gwa\nbanana\tba-na-na\n"}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	location := ts.URL + "/words.txt"

	w, s := newTestWatcher(t)
	ctx := context.Background()

	st, err := w.Load(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, 2, st.DeckSize)
	s.Grade(spaced_repetition.Knew)

	changed, err := w.Check(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	srv.set("apple\tsagwa\ncherry\tche-ri\n")
	changed, err = w.Check(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	cards := s.Cards()
	require.Len(t, cards, 2)
	assert.Equal(t, 1, cards[0].Level)
	assert.Equal(t, "sagwa", cards[0].Meaning)
	assert.Equal(t, "cherry", cards[1].Term)
}

func TestCheckIgnoresStaleSource(t *testing.T) {
	srv := &wordServer{body: "apple\tsa-gwa\n"}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	w, s := newTestWatcher(t)
	ctx := context.Background()
	_, err := w.Load(ctx, ts.URL+"/words.txt")
	require.NoError(t, err)

	srv.set("apple\tsa-gwa\nbanana\tba-na-na\n")
	srv.mu.Lock()
	srv.onServe = func() {
		_, _, err := w.Import("manual.txt", []byte("cherry\tche-ri\n"))
		assert.NoError(t, err)
	}
	srv.mu.Unlock()

	changed, err := w.Check(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	cards := s.Cards()
	require.Len(t, cards, 1)
	assert.Equal(t, "cherry", cards[0].Term)
	assert.Equal(t, UploadPrefix+"manual.txt", s.Source())

	requests := srv.count()
	changed, err = w.Check(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, requests, srv.count())
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("apple\tsa-gwa\n"), 0644))

	w, s := newTestWatcher(t)
	ctx := context.Background()
	_, err := w.Load(ctx, path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("apple\tsa-gwa\nbanana\tba-na-na\n"), 0644))
	changed, err := w.Check(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, s.Cards(), 2)

	require.NoError(t, os.Remove(path))
	_, err = w.Check(ctx)
	assert.Error(t, err)
	assert.Len(t, s.Cards(), 2)
}

func TestImportUnsupported(t *testing.T) {
	w, s := newTestWatcher(t)

	_, _, err := w.Import("photo.jpg", []byte{0xff})

	assert.True(t, errors.Is(err, importer.ErrUnsupportedFormat))
	assert.Equal(t, "", s.Source())
}

func TestImportCountsSkippedLines(t *testing.T) {
	w, _ := newTestWatcher(t)

	st, skipped, err := w.Import("words.txt", []byte("apple\tsa-gwa\njunk\n\n"))

	require.NoError(t, err)
	assert.Equal(t, 1, st.DeckSize)
	assert.Equal(t, 1, skipped)
}

func TestAppendKeepsExistingCards(t *testing.T) {
	w, s := newTestWatcher(t)
	_, _, err := w.Import("first.txt", []byte("apple\tsa-gwa\n"))
	require.NoError(t, err)
	s.Grade(spaced_repetition.Knew)

	st, skipped, err := w.Append("second.csv", []byte("banana,ba-na-na\n"))

	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 2, st.DeckSize)
	cards := s.Cards()
	assert.Equal(t, "apple", cards[0].Term)
	assert.Equal(t, 1, cards[0].Level)
	assert.Equal(t, "banana", cards[1].Term)
	assert.Equal(t, UploadPrefix+"second.csv", s.Source())

	changed, err := w.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
}
