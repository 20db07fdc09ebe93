package formatter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// UpdateReportDir is the directory, relative to the output root, that holds update reports.
const UpdateReportDir = "detect_update"

// UpdateLine is one entry of an update report. A non-nil Err records a failed lookup.
type UpdateLine struct {
	Time time.Time
	ID   string
	Name string
	Err  error
}

func (l UpdateLine) String() string {
	stamp := l.Time.Local().Format(time.DateTime)
	if l.Err != nil {
		return fmt.Sprintf("time: %s, Failed to get data for track ID: %s", stamp, l.ID)
	}
	return fmt.Sprintf("time: %s, ID: %s, name: %s", stamp, l.ID, l.Name)
}

// EncodeUpdateReport renders one line per update.
func EncodeUpdateReport(lines []UpdateLine) []byte {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l.String())
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// UpdateReportPath returns the report path for day under root.
func UpdateReportPath(root string, day time.Time) string {
	name := fmt.Sprintf("detect_update(%s).txt", day.Format(time.DateOnly))
	return filepath.Join(root, UpdateReportDir, name)
}

// WriteUpdateReport replaces the report for day under root and returns its path.
func WriteUpdateReport(root string, day time.Time, lines []UpdateLine) (string, error) {
	path := UpdateReportPath(root, day)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := writeFileAtomic(path, EncodeUpdateReport(lines)); err != nil {
		return "", err
	}
	return path, nil
}
