// Package csvfile opens the storm CSV on disk and loads it into a Dataset.
package csvfile

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/storm-dashboard/internal/domain"
	"github.com/jonboulle/clockwork"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Open reads the CSV at path, decoding it from charset. The dataset is
// stamped with the clock's time once loading succeeds.
func Open(path, charset string, clock clockwork.Clock) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open storm csv: %w", err)
	}
	defer f.Close()

	r, err := NewDecoder(f, charset)
	if err != nil {
		return nil, err
	}

	obs, err := domain.LoadObservations(r)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return domain.NewDataset(obs, clock.Now()), nil
}

// NewDecoder wraps r so it yields UTF-8 text. A leading UTF-8 byte order
// mark is dropped. In utf-8 mode invalid byte sequences fail the read with
// encoding.ErrInvalidUTF8 instead of being replaced.
func NewDecoder(r io.Reader, charset string) (io.Reader, error) {
	dec, err := lookupDecoder(charset)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, dec), nil
}

func lookupDecoder(name string) (transform.Transformer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return transform.Chain(unicode.BOMOverride(transform.Nop), encoding.UTF8Validator), nil
	case "latin1", "latin-1", "iso-8859-1":
		return unicode.BOMOverride(charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return unicode.BOMOverride(charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", name)
	}
}
