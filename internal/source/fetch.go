package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// maxSize caps how much of a word list is read
const maxSize = 16 << 20

// Document is a fetched word list
type Document struct {
	Location  string
	Name      string // file name used to pick the decoder
	Data      []byte
	Signature string
}

// Fetcher reads word lists from http(s) URLs or local files
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher. A nil client gets a 30 second timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch reads location. There is no retry; callers decide when to try again.
func (f *Fetcher) Fetch(ctx context.Context, location string) (*Document, error) {
	if IsRemote(location) {
		return f.fetchURL(ctx, location)
	}

	p := strings.TrimPrefix(location, "file://")
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", p)
	}
	return newDocument(location, path.Base(p), data), nil
}

func (f *Fetcher) fetchURL(ctx context.Context, location string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch %s: unexpected status %s", location, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	name := "words.txt"
	if u, err := url.Parse(location); err == nil {
		if base := path.Base(u.Path); strings.Contains(base, ".") {
			name = base
		}
	}
	return newDocument(location, name, data), nil
}

func newDocument(location, name string, data []byte) *Document {
	if path.Ext(name) == "" {
		name += ".txt"
	}
	return &Document{
		Location:  location,
		Name:      name,
		Data:      data,
		Signature: Signature(data),
	}
}

// IsRemote reports whether location is an http(s) URL
func IsRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Signature returns the hex sha256 of data
func Signature(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
