package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Locale  string // Locale the event belongs to
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	ListGames Phase = iota
	FetchGames
	ApplySections
	ResolveYears
	WriteTables
	WriteWorkbook
	DetectUpdates
	LookupTracks
)

func (p Phase) String() string {
	switch p {
	case ListGames:
		return "list_games"
	case FetchGames:
		return "fetch_games"
	case ApplySections:
		return "apply_sections"
	case ResolveYears:
		return "resolve_years"
	case WriteTables:
		return "write_tables"
	case WriteWorkbook:
		return "write_workbook"
	case DetectUpdates:
		return "detect_updates"
	case LookupTracks:
		return "lookup_tracks"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func listGamesUpdate(locale string, total int) ProgressUpdate {
	return ProgressUpdate{
		Locale:  locale,
		Phase:   ListGames,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Listed %d games", total),
	}
}

func fetchGameUpdate(locale string, step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Locale:  locale,
		Phase:   FetchGames,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetched %s", name),
	}
}

func sectionUpdate(locale string, step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Locale:  locale,
		Phase:   ApplySections,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Applying section %s...", name),
	}
}

func resolveYearsUpdate(locale string) ProgressUpdate {
	return ProgressUpdate{
		Locale:  locale,
		Phase:   ResolveYears,
		Step:    1,
		Total:   1,
		Message: "Resolving release years...",
	}
}

func writeTableUpdate(locale string, step, total int, stem string, written bool) ProgressUpdate {
	msg := fmt.Sprintf("Wrote %s", stem)
	if !written {
		msg = fmt.Sprintf("Kept existing %s", stem)
	}
	return ProgressUpdate{
		Locale:  locale,
		Phase:   WriteTables,
		Step:    step,
		Total:   total,
		Message: msg,
	}
}

func writeWorkbookUpdate(locale string, sheets int) ProgressUpdate {
	return ProgressUpdate{
		Locale:  locale,
		Phase:   WriteWorkbook,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing workbook with %d sheets...", sheets),
	}
}

func detectUpdatesUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DetectUpdates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d updated tracks", total),
	}
}

func lookupTrackUpdate(locale string, step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Locale:  locale,
		Phase:   LookupTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Looked up track %s", id),
	}
}
