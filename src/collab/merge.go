package collab

import (
	"chart-collab/src/models"
)

// -----------------------------------------------------------------------------
// Full-state merge. Field handling is explicit so every merge rule is
// visible here instead of buried in a generic traversal. Shared fields
// (chart id, series, settings) take the incoming value; session-local
// identity (display name, host flag) stays local; drawings are unioned
// with deletion winning over any concurrent edit.
// -----------------------------------------------------------------------------

func MergeStates(local, incoming models.MAppState) models.MAppState {
	merged := incoming.Clone()

	merged.Collaboration.DisplayName = local.Collaboration.DisplayName
	merged.Collaboration.IsOpen = local.Collaboration.IsOpen
	merged.Collaboration.Room.ID = local.Collaboration.Room.ID
	merged.Collaboration.Room.IsHost = local.Collaboration.Room.IsHost
	merged.Collaboration.Room.Status = local.Collaboration.Room.Status
	merged.Collaboration.Room.ActiveUsers = mergeRosters(
		local.Collaboration.Room.ActiveUsers, incoming.Collaboration.Room.ActiveUsers)

	// A full sync ends the joining side's loading phase.
	merged.Collaboration.Room.IsLoading = false

	merged.Chart.Tools = local.Chart.Tools
	merged.Chart.Drawings.SelectedID = local.Chart.Drawings.SelectedID
	merged.Chart.Drawings.Collection = MergeDrawings(
		local.Chart.Drawings.Collection, incoming.Chart.Drawings.Collection)

	return merged
}

// -----------------------------------------------------------------------------

// MergeDrawings unions two collections by drawing id. A tombstone on
// either side deletes the drawing regardless of order, so merging in
// either direction converges on the same survivors.
func MergeDrawings(local, incoming []models.MDrawing) []models.MDrawing {
	index := make(map[string]int, len(local)+len(incoming))
	merged := make([]models.MDrawing, 0, len(local)+len(incoming))

	for _, d := range append(models.CloneDrawings(local), models.CloneDrawings(incoming)...) {
		at, seen := index[d.ID]
		if !seen {
			index[d.ID] = len(merged)
			merged = append(merged, d)
			continue
		}
		if d.IsDeleted {
			merged[at].IsDeleted = true
		}
	}

	kept := merged[:0]
	for _, d := range merged {
		if !d.IsDeleted {
			kept = append(kept, d)
		}
	}
	return kept
}

// -----------------------------------------------------------------------------

func mergeRosters(local, incoming []string) []string {
	seen := make(map[string]bool, len(local)+len(incoming))
	out := make([]string, 0, len(local)+len(incoming))
	for _, u := range append(append([]string{}, incoming...), local...) {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
