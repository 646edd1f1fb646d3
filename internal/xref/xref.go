// Package xref loads the SIREN → INSEE cross-reference table used to give
// commune members their geographic code.
package xref

import (
	"context"
	"encoding/csv"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/groupements-cli/internal/fetcher"
)

var (
	// ErrIO is returned when the table file is missing or unreadable.
	ErrIO = eris.New("xref: read error")
	// ErrParse is returned when the table does not have the expected shape.
	ErrParse = eris.New("xref: parse error")
)

const (
	colSIREN = "siren"
	colINSEE = "insee"
)

// Mapping maps a SIREN to an INSEE commune code. Read-only once loaded.
type Mapping map[string]string

// Lookup returns the INSEE code for siren.
func (m Mapping) Lookup(siren string) (string, bool) {
	code, ok := m[siren]
	return code, ok
}

// Load reads a gzip-compressed, semicolon-delimited, BOM-prefixed table with
// at least `siren` and `insee` columns. Later rows overwrite earlier ones on
// duplicate SIREN. Nothing is returned on failure.
func Load(ctx context.Context, path string) (Mapping, error) {
	rc, err := fetcher.OpenGzip(path)
	if err != nil {
		return nil, eris.Wrapf(ErrIO, "%v", err)
	}
	defer rc.Close() //nolint:errcheck

	rowCh, errCh := fetcher.StreamCSV(ctx, fetcher.StripBOM(rc), fetcher.CSVOptions{
		Delimiter: ';',
		Strict:    true,
	})

	var (
		header             []string
		sirenIdx, inseeIdx int
		headerErr          error
	)
	mapping := make(Mapping)
	for rec := range rowCh {
		if header == nil {
			header = rec
			sirenIdx, inseeIdx, headerErr = columns(rec)
			continue
		}
		if headerErr != nil {
			continue
		}
		mapping[rec[sirenIdx]] = rec[inseeIdx]
	}
	if err := <-errCh; err != nil {
		return nil, classify(err)
	}
	if header == nil {
		return nil, eris.Wrapf(ErrParse, "%s: missing header row", path)
	}
	if headerErr != nil {
		return nil, headerErr
	}

	zap.L().Info("cross-reference loaded",
		zap.String("component", "xref"),
		zap.String("path", path),
		zap.Int("entries", len(mapping)),
	)
	return mapping, nil
}

func columns(header []string) (int, int, error) {
	sirenIdx, inseeIdx := -1, -1
	for i, col := range header {
		switch col {
		case colSIREN:
			sirenIdx = i
		case colINSEE:
			inseeIdx = i
		}
	}
	if sirenIdx < 0 || inseeIdx < 0 {
		return -1, -1, eris.Wrapf(ErrParse, "header %q lacks %q or %q", header, colSIREN, colINSEE)
	}
	return sirenIdx, inseeIdx, nil
}

// classify sorts a stream failure: malformed CSV is a parse error, anything
// else (truncated or corrupt gzip stream, cancelled read) is unreadable input.
func classify(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return eris.Wrapf(ErrParse, "%v", err)
	}
	return eris.Wrapf(ErrIO, "%v", err)
}
