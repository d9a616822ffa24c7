package interfaces

import "chart-collab/src/models"

// -----------------------------------------------------------------------------
// IDrawingStore is the best-effort local cache: drawings keyed by chart
// series id plus an AppState snapshot. Absence is never an error -- loads
// return empty results and the interactive path continues.
// -----------------------------------------------------------------------------

type IDrawingStore interface {

	// Initialize sets up the schema.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveDrawings replaces the cached collection for one chart series.
	SaveDrawings(chartID string, drawings []models.MDrawing) error

	// -----------------------------------------------------------------------------

	// LoadDrawings returns the cached collection, or an empty slice when
	// nothing is cached for the series.
	LoadDrawings(chartID string) ([]models.MDrawing, error)

	// -----------------------------------------------------------------------------

	// SaveAppState persists a session snapshot.
	SaveAppState(state models.MAppState) error

	// -----------------------------------------------------------------------------

	// LoadAppState returns the last snapshot; ok is false when none exists.
	LoadAppState() (state models.MAppState, ok bool, err error)

	// -----------------------------------------------------------------------------

	// Close the underlying connection.
	Close() error
}
