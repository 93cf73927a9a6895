package source

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/example/wordmemo/internal/deck"
	"github.com/example/wordmemo/internal/importer"
	"github.com/example/wordmemo/internal/logger"
	"github.com/example/wordmemo/internal/parser"
	"github.com/example/wordmemo/internal/session"
	"github.com/example/wordmemo/pkg/models"
)

// UploadPrefix marks sources that came from an uploaded file and cannot be re-fetched
const UploadPrefix = "upload:"

// Target is the review session a watcher feeds
type Target interface {
	Source() string
	Parse(text string) *parser.Result
	Load(source string, cards []models.Card) session.State
	Append(source string, cards []models.Card) session.State
	Merge(source string, cards []models.Card) (deck.MergeResult, bool)
}

// Watcher loads the configured word list and merges it again when its content changes
type Watcher struct {
	target  Target
	fetcher *Fetcher
	config  importer.ImportConfig
	log     *logger.Logger

	mu         sync.Mutex
	signatures map[string]string
}

// NewWatcher creates a watcher feeding target
func NewWatcher(target Target, fetcher *Fetcher, config importer.ImportConfig, log *logger.Logger) *Watcher {
	if fetcher == nil {
		fetcher = NewFetcher(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Watcher{
		target:     target,
		fetcher:    fetcher,
		config:     config,
		log:        log,
		signatures: make(map[string]string),
	}
}

// Load fetches location and replaces the deck with it
func (w *Watcher) Load(ctx context.Context, location string) (session.State, error) {
	doc, err := w.fetcher.Fetch(ctx, location)
	if err != nil {
		w.log.Error("Failed to fetch word list", "source", location, "error", err)
		return session.State{}, err
	}
	cards, err := w.decode(doc)
	if err != nil {
		return session.State{}, err
	}
	st := w.target.Load(location, cards)
	w.remember(location, doc.Signature)
	return st, nil
}

// Check re-fetches the deck's current source and merges it when the content changed.
// It reports whether a merge happened.
func (w *Watcher) Check(ctx context.Context) (bool, error) {
	location := w.target.Source()
	if location == "" || strings.HasPrefix(location, UploadPrefix) {
		return false, nil
	}

	doc, err := w.fetcher.Fetch(ctx, location)
	if err != nil {
		w.log.Error("Failed to re-check word list", "source", location, "error", err)
		return false, err
	}
	if w.signature(location) == doc.Signature {
		return false, nil
	}

	cards, err := w.decode(doc)
	if err != nil {
		return false, err
	}
	result, ok := w.target.Merge(location, cards)
	if !ok {
		return false, nil
	}
	w.remember(location, doc.Signature)
	w.log.Info("Word list changed", "source", location, "kept", result.Kept, "added", result.Added, "removed", result.Removed)
	return true, nil
}

// Import decodes an uploaded file and replaces the deck with it
func (w *Watcher) Import(name string, data []byte) (session.State, int, error) {
	return w.upload(name, data, w.target.Load)
}

// Append decodes an uploaded file and adds its cards after the existing ones.
// The deck's source becomes the upload, so the previous source is no longer re-checked.
func (w *Watcher) Append(name string, data []byte) (session.State, int, error) {
	return w.upload(name, data, w.target.Append)
}

func (w *Watcher) upload(name string, data []byte, apply func(string, []models.Card) session.State) (session.State, int, error) {
	doc := newDocument(UploadPrefix+name, name, data)
	result, err := importer.Decode(doc.Name, bytes.NewReader(doc.Data), w.config)
	if err != nil {
		return session.State{}, 0, err
	}
	parsed := w.target.Parse(result.Text)
	st := apply(doc.Location, parsed.Cards)
	w.remember(doc.Location, doc.Signature)
	return st, parsed.Skipped + result.Skipped, nil
}

func (w *Watcher) decode(doc *Document) ([]models.Card, error) {
	result, err := importer.Decode(doc.Name, bytes.NewReader(doc.Data), w.config)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", doc.Location)
	}
	parsed := w.target.Parse(result.Text)
	if parsed.Skipped > 0 || result.Skipped > 0 {
		w.log.Debug("Skipped unreadable lines", "source", doc.Location, "lines", parsed.Skipped+result.Skipped)
	}
	return parsed.Cards, nil
}

func (w *Watcher) signature(location string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.signatures[location]
}

func (w *Watcher) remember(location, signature string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.signatures[location] = signature
}
