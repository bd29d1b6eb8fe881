package source

import (
	"compress/bzip2"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dimchansky/utfbom"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/pable/go-cod-stats/internal/model"
)

// CSVLoader reads the static match export from a local path or an http(s)
// URL. Files ending in .gz, .bz2 or .zst are decompressed on the fly.
type CSVLoader struct {
	Path string
	HTTP *http.Client
}

// NewCSVLoader returns a loader for path.
func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{Path: path, HTTP: &http.Client{Timeout: 30 * time.Second}}
}

// LoadCSV opens Path and parses every data row.
func (l *CSVLoader) LoadCSV(ctx context.Context) ([]model.RawCSVRow, error) {
	rc, err := l.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r, closeDec, err := decompress(l.Path, rc)
	if err != nil {
		return nil, err
	}
	defer closeDec()

	rows, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.Path, err)
	}
	return rows, nil
}

func (l *CSVLoader) open(ctx context.Context) (io.ReadCloser, error) {
	if strings.HasPrefix(l.Path, "http://") || strings.HasPrefix(l.Path, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.Path, nil)
		if err != nil {
			return nil, err
		}
		client := l.HTTP
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", l.Path, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, &StatusError{Method: http.MethodGet, Path: l.Path, Code: resp.StatusCode}
		}
		return resp.Body, nil
	}
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	return f, nil
}

func decompress(name string, r io.Reader) (io.Reader, func(), error) {
	noop := func() {}
	switch {
	case strings.HasSuffix(name, ".bz2"):
		return bzip2.NewReader(r), noop, nil
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("zstd: %w", err)
		}
		return dec, dec.Close, nil
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("gzip: %w", err)
		}
		return gz, func() { gz.Close() }, nil
	}
	return r, noop, nil
}

// ReadCSV parses a header row followed by data rows. A leading byte-order
// mark is skipped; short rows leave the missing columns absent.
func ReadCSV(r io.Reader) ([]model.RawCSVRow, error) {
	sr, _ := utfbom.Skip(r)
	cr := csv.NewReader(sr)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv")
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []model.RawCSVRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row := make(model.RawCSVRow, len(header))
		for i, col := range header {
			if i < len(rec) && col != "" {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
