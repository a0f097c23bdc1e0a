package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/outfit"
)

// DefaultTimeout bounds a remote catalog fetch.
const DefaultTimeout = 30 * time.Second

// DefaultMaxBodyBytes caps a remote catalog download.
const DefaultMaxBodyBytes = 64 << 20

// Loader reads outfit catalogs from local files or http(s) URLs.
type Loader struct {
	client  *http.Client
	maxBody int64
	logger  *zap.Logger
}

// NewLoader creates a catalog loader. A nil client gets DefaultTimeout.
func NewLoader(client *http.Client, logger *zap.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{client: client, maxBody: DefaultMaxBodyBytes, logger: logger}
}

// WithMaxBodyBytes sets the download cap for remote catalogs. n <= 0 is ignored.
func (l *Loader) WithMaxBodyBytes(n int64) *Loader {
	if n > 0 {
		l.maxBody = n
	}
	return l
}

// Load reads a catalog from source, which is either a file path or an http(s) URL.
func (l *Loader) Load(ctx context.Context, source string) (outfit.Catalog, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return outfit.Catalog{}, fmt.Errorf("%w: empty source", domain.ErrInvalidCatalog)
	}

	var (
		cat outfit.Catalog
		err error
	)
	if isRemote(source) {
		cat, err = l.fetch(ctx, source)
	} else {
		cat, err = l.readFile(source)
	}
	if err != nil {
		return outfit.Catalog{}, err
	}

	l.logger.Info("Catalog loaded",
		zap.String("source", source),
		zap.Int("outfits", cat.Len()),
	)
	return cat, nil
}

func (l *Loader) readFile(path string) (outfit.Catalog, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return outfit.Catalog{}, fmt.Errorf("%w: open %s: %w", domain.ErrInvalidCatalog, path, err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

func (l *Loader) fetch(ctx context.Context, rawURL string) (outfit.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return outfit.Catalog{}, fmt.Errorf("%w: build request: %w", domain.ErrInvalidCatalog, err)
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	resp, err := l.client.Do(req)
	if err != nil {
		return outfit.Catalog{}, fmt.Errorf("%w: fetch %s: %w", domain.ErrInvalidCatalog, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return outfit.Catalog{}, fmt.Errorf("%w: fetch %s: status %d",
			domain.ErrInvalidCatalog, rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBody+1))
	if err != nil {
		return outfit.Catalog{}, fmt.Errorf("%w: read %s: %w", domain.ErrInvalidCatalog, rawURL, err)
	}
	if int64(len(data)) > l.maxBody {
		return outfit.Catalog{}, fmt.Errorf("%w: %s exceeds %d bytes",
			domain.ErrInvalidCatalog, rawURL, l.maxBody)
	}

	return Parse(bytes.NewReader(data))
}

// Parse reads a CSV catalog. The first row is the header; column names are
// matched case-insensitively and unknown columns are ignored. Short rows are
// padded with empty values. Empty input yields an empty catalog.
func Parse(r io.Reader) (outfit.Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return outfit.Catalog{}, nil
	}
	if err != nil {
		return outfit.Catalog{}, fmt.Errorf("%w: read header: %w", domain.ErrInvalidCatalog, err)
	}

	index := make(map[outfit.Column]int, len(outfit.Columns))
	columns := make([]outfit.Column, 0, len(outfit.Columns))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		col, ok := outfit.ParseColumn(name)
		if !ok {
			continue
		}
		if _, dup := index[col]; dup {
			return outfit.Catalog{}, fmt.Errorf("%w: duplicate column %q", domain.ErrInvalidCatalog, name)
		}
		index[col] = i
		columns = append(columns, col)
	}

	var rows []map[outfit.Column]string
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return outfit.Catalog{}, fmt.Errorf("%w: line %d: %w", domain.ErrInvalidCatalog, line, err)
		}
		row := make(map[outfit.Column]string, len(index))
		for col, i := range index {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}

	return outfit.NewCatalog(columns, rows), nil
}

func isRemote(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
