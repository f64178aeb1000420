package csvfile

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/storm-dashboard/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
)

var loadedAt = time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)

func TestOpen_Latin1(t *testing.T) {
	ds, err := Open("testdata/latin1.csv", "latin1", clockwork.NewFakeClockAt(loadedAt))
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "René", ds.Observations()[1].Name)
	assert.Equal(t, []int{2000, 2001}, ds.Years())
	assert.Equal(t, loadedAt, ds.LoadedAt())
}

func TestOpen_BOM(t *testing.T) {
	ds, err := Open("testdata/bom.csv", "utf-8", clockwork.NewRealClock())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestOpen_Malformed(t *testing.T) {
	_, err := Open("testdata/malformed.csv", "utf-8", clockwork.NewRealClock())
	require.Error(t, err)

	var perr *domain.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, domain.ColumnDateTime, perr.Column)
	assert.Contains(t, err.Error(), "testdata/malformed.csv")
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open("testdata/does-not-exist.csv", "utf-8", clockwork.NewRealClock())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open storm csv")
}

func TestNewDecoder(t *testing.T) {
	tests := []struct {
		charset string
		in      string
		want    string
	}{
		{"", "Amy", "Amy"},
		{"UTF-8", "\xef\xbb\xbfAmy", "Amy"},
		{"iso-8859-1", "Ren\xe9", "René"},
		{"cp1252", "\x93Amy\x94", "“Amy”"},
	}
	for _, tt := range tests {
		t.Run(tt.charset, func(t *testing.T) {
			r, err := NewDecoder(strings.NewReader(tt.in), tt.charset)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestNewDecoder_Unsupported(t *testing.T) {
	_, err := NewDecoder(strings.NewReader(""), "ebcdic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ebcdic")
}

func TestOpen_InvalidUTF8(t *testing.T) {
	_, err := Open("testdata/latin1.csv", "utf-8", clockwork.NewRealClock())
	require.Error(t, err)
	assert.ErrorIs(t, err, encoding.ErrInvalidUTF8)
}

func TestNewDecoder_InvalidUTF8KeepsNamesApart(t *testing.T) {
	csv := "storm_name,datetime,latitude,longitude,storm_type,pressure\n" +
		"Ren\xe9,01/01/2000 00:00,10,140,TS,990\n" +
		"Ren\xe8,01/01/2000 06:00,11,141,TS,985\n"

	r, err := NewDecoder(strings.NewReader(csv), "utf-8")
	require.NoError(t, err)

	obs, err := domain.LoadObservations(r)
	require.ErrorIs(t, err, encoding.ErrInvalidUTF8)
	assert.Nil(t, obs)
}
