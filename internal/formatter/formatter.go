// package formatter encodes catalog tables as CSV, consolidates them into a workbook and writes update reports
package formatter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/nmdb/internal/models"
)

// CatalogStem is the base name of the catalog table and its sheet.
const CatalogStem = "_GAME_LIST_"

const setSeparator = "|"

var (
	// TrackColumns is the header of a per-game table.
	TrackColumns = []string{"index", "name", "duration", "isLoop", "isBest", "playlist", "playlist2", "playlist3", "id", "thumbnailUrl"}

	// CatalogColumns is the header of the catalog table.
	CatalogColumns = []string{"index", "name", "year", "hardware", "relatedGame", "isLink", "id", "thumbnailUrl"}
)

// Table is a decoded CSV table: a header row followed by records of raw cell text.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the position of name in the header, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// TablePath returns the path of the table named stem inside dir.
func TablePath(dir, stem string) string {
	return filepath.Join(dir, stem+".csv")
}

// TableExists reports whether the table named stem is already present in dir.
func TableExists(dir, stem string) bool {
	info, err := os.Stat(TablePath(dir, stem))
	return err == nil && !info.IsDir()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteSet(s models.StringSet) string {
	return quote(s.Join(setSeparator))
}

func writeLine(buf *bytes.Buffer, cells []string) {
	buf.WriteString(strings.Join(cells, ","))
	buf.WriteByte('\n')
}

// EncodeTrackTable renders the tracks of g ordered by index.
func EncodeTrackTable(g *models.Game) []byte {
	var buf bytes.Buffer
	writeLine(&buf, TrackColumns)
	for _, t := range g.SortedTracks() {
		writeLine(&buf, []string{
			strconv.Itoa(t.Index),
			quote(t.Name),
			strconv.Itoa(t.Duration),
			strconv.FormatBool(t.IsLoop),
			strconv.FormatBool(t.IsBest),
			quoteSet(t.Playlists),
			quoteSet(t.Playlists2),
			quoteSet(t.Playlists3),
			quote(t.ID),
			quote(t.ThumbnailURL),
		})
	}
	return buf.Bytes()
}

// EncodeCatalogTable renders games in the order given.
func EncodeCatalogTable(games []*models.Game) []byte {
	var buf bytes.Buffer
	writeLine(&buf, CatalogColumns)
	for _, g := range games {
		writeLine(&buf, []string{
			strconv.Itoa(g.Index),
			quote(g.Name),
			strconv.Itoa(g.Year),
			quote(g.Hardware),
			quoteSet(g.RelatedGames),
			strconv.FormatBool(g.IsLink),
			quote(g.ID),
			quote(g.ThumbnailURL),
		})
	}
	return buf.Bytes()
}

// WriteTrackTable writes the table of g into dir unless a table with the same stem already exists.
//
// It reports whether a file was written.
func WriteTrackTable(dir string, g *models.Game) (bool, error) {
	if g.FileStem == "" {
		return false, fmt.Errorf("game %s has no file stem", g.ID)
	}
	path := TablePath(dir, g.FileStem)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := writeFileAtomic(path, EncodeTrackTable(g)); err != nil {
		return false, err
	}
	return true, nil
}

// WriteCatalogTable replaces the catalog table in dir and returns its path.
func WriteCatalogTable(dir string, games []*models.Game) (string, error) {
	path := TablePath(dir, CatalogStem)
	if err := writeFileAtomic(path, EncodeCatalogTable(games)); err != nil {
		return "", err
	}
	return path, nil
}

// ReadTable decodes the CSV table at path.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("table %s has no header", path)
	}
	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// FormatDuration renders milliseconds as m:ss, rounding partial seconds up.
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}
	total := (ms + 999) / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
