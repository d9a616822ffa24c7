package storage

import (
	"path/filepath"
	"testing"

	"chart-collab/src/logger"
	"chart-collab/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	cfg := &models.MConfig{
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: filepath.Join(t.TempDir(), "test.db"),
		},
	}

	store, err := NewSQLiteStore(cfg, logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { store.Close() })
	return store
}

// -----------------------------------------------------------------------------

func TestSaveAndLoadDrawings(t *testing.T) {
	store := newTestStore(t)
	chartID := models.ChartID("SOL-USD", "coinbase")

	drawings := []models.MDrawing{
		{
			ID:   "d1",
			Type: "trendline",
			Points: []models.MDrawingPoint{
				{Time: 1700000000, Price: 100.5},
				{Time: 1700000600, Price: 105.25},
			},
			Options: map[string]any{"color": "#26a69a"},
		},
	}

	require.NoError(t, store.SaveDrawings(chartID, drawings))

	loaded, err := store.LoadDrawings(chartID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "d1", loaded[0].ID)
	assert.Equal(t, 105.25, loaded[0].Points[1].Price)
	assert.Equal(t, "#26a69a", loaded[0].Options["color"])
}

func TestSaveDrawingsReplacesExistingCollection(t *testing.T) {
	store := newTestStore(t)
	chartID := models.ChartID("SOL-USD", "coinbase")

	require.NoError(t, store.SaveDrawings(chartID, []models.MDrawing{{ID: "d1"}, {ID: "d2"}}))
	require.NoError(t, store.SaveDrawings(chartID, []models.MDrawing{{ID: "d3"}}))

	loaded, err := store.LoadDrawings(chartID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "d3", loaded[0].ID)
}

func TestLoadDrawingsUnknownChartIsEmpty(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.LoadDrawings("never-seen:binance")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestDrawingsAreKeyedPerChart(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveDrawings("sol-usd:coinbase", []models.MDrawing{{ID: "sol"}}))
	require.NoError(t, store.SaveDrawings("eth-usd:binance", []models.MDrawing{{ID: "eth"}}))

	sol, err := store.LoadDrawings("sol-usd:coinbase")
	require.NoError(t, err)
	require.Len(t, sol, 1)
	assert.Equal(t, "sol", sol[0].ID)
}

// -----------------------------------------------------------------------------

func TestAppStateRoundTrip(t *testing.T) {
	store := newTestStore(t)

	_, ok, err := store.LoadAppState()
	require.NoError(t, err)
	assert.False(t, ok, "fresh store has no snapshot")

	state := models.DefaultAppState()
	state.Chart.Settings.Background.Theme = "light"
	require.NoError(t, store.SaveAppState(state))

	// Snapshot row is a singleton: saves overwrite.
	state.Chart.Data.Symbol = "ETH-USD"
	require.NoError(t, store.SaveAppState(state))

	loaded, ok, err := store.LoadAppState()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "light", loaded.Chart.Settings.Background.Theme)
	assert.Equal(t, "ETH-USD", loaded.Chart.Data.Symbol)
}
