package tasks

import (
	"fmt"

	"github.com/desertthunder/filmhub/internal/formatter"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchRatings Phase = iota
	FetchCatalog
	FetchRecommendations
	FetchWatchList
	FetchWatched
	ImportRatings
	WriteExport
)

func (p Phase) String() string {
	switch p {
	case FetchRatings:
		return "fetch_ratings"
	case FetchCatalog:
		return "fetch_catalog"
	case FetchRecommendations:
		return "fetch_recommendations"
	case FetchWatchList:
		return "fetch_watch_list"
	case FetchWatched:
		return "fetch_watched"
	case ImportRatings:
		return "import_ratings"
	case WriteExport:
		return "write_export"
	default:
		return ""
	}
}

func operationUpdate(endpoint endpointOperation, step int, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   endpoint.phase,
		Step:    step,
		Total:   total,
		Message: endpoint.message,
	}
}

func importStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportRatings,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Importing %d ratings...", total),
	}
}

func importRowUpdate(step, total int, res ImportRowResult) ProgressUpdate {
	if res.Error != nil {
		return ProgressUpdate{
			Phase:   ImportRatings,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ line %d: %v", step, total, res.Row.Line, res.Error),
			Data:    res,
		}
	}
	return ProgressUpdate{
		Phase:   ImportRatings,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ movie %d rated %d", step, total, res.Row.Movie, res.Row.Score),
		Data:    res,
	}
}

func fetchRatingsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRatings,
		Step:    step,
		Total:   total,
		Message: "Fetching your ratings...",
	}
}

func fetchCatalogUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCatalog,
		Step:    step,
		Total:   total,
		Message: "Fetching movie catalog...",
	}
}

func writeExportUpdate(step, total int, format string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Writing %d ratings as %s...", count, format),
	}
}

func rowsSummary(rows []formatter.RatingRow) (valid, invalid int) {
	for _, r := range rows {
		if r.Err != nil {
			invalid++
		} else {
			valid++
		}
	}
	return valid, invalid
}
