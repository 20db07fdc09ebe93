package formatter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/nmdb/internal/models"
	"golang.org/x/text/unicode/norm"
)

// MaxSheetNameLen is the longest sheet name a workbook accepts.
const MaxSheetNameLen = 31

var (
	fileNameReplacer  = strings.NewReplacer("<", "-", ">", "-", ":", "-", `"`, "-", "/", "-", `\`, "-", "|", "-", "?", "-", "*", "-")
	sheetNameReplacer = strings.NewReplacer("[", "-", "]", "-")
)

// SanitizeFileName makes name safe to use as a file name on common filesystems.
func SanitizeFileName(name string) string {
	return fileNameReplacer.Replace(strings.TrimSpace(norm.NFC.String(name)))
}

// AssignFileStems sets [models.Game.FileStem] for every game.
//
// games must be in index order; when names collide the later games get " (2)", " (3)" and so on.
// The catalog table name is reserved.
func AssignFileStems(games []*models.Game) {
	used := map[string]bool{CatalogStem: true}
	for _, g := range games {
		base := SanitizeFileName(g.Name)
		if base == "" {
			base = SanitizeFileName(g.ID)
		}
		stem := base
		for n := 2; used[stem]; n++ {
			stem = fmt.Sprintf("%s (%d)", base, n)
		}
		used[stem] = true
		g.FileStem = stem
	}
}

// SheetName converts a table stem into a valid sheet name.
func SheetName(stem string) string {
	name := strings.Trim(sheetNameReplacer.Replace(SanitizeFileName(stem)), "'")
	// a cut can expose an apostrophe, which is not allowed at either end
	name = strings.TrimRight(truncateRunes(name, MaxSheetNameLen), " '")
	if name == "" {
		name = "Sheet"
	}
	return name
}

// SheetNames converts stems into sheet names that are unique regardless of case.
func SheetNames(stems []string) []string {
	names := make([]string, len(stems))
	used := make(map[string]bool, len(stems))
	for i, stem := range stems {
		base := SheetName(stem)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			name = truncateRunes(base, MaxSheetNameLen-utf8.RuneCountInString(suffix)) + suffix
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
