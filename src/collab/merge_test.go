package collab

import (
	"testing"

	"chart-collab/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Drawing union
// -----------------------------------------------------------------------------

func TestMergeDrawingsUnionByID(t *testing.T) {
	local := []models.MDrawing{drawing("d1"), drawing("d2")}
	incoming := []models.MDrawing{drawing("d2"), drawing("d3")}

	merged := MergeDrawings(local, incoming)

	ids := make([]string, 0, len(merged))
	for _, d := range merged {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"d1", "d2", "d3"}, ids)
}

func TestMergeDrawingsTombstoneWins(t *testing.T) {
	deleted := drawing("d1")
	deleted.IsDeleted = true

	// A concurrent edit on one side never resurrects a deletion on the other.
	left := MergeDrawings([]models.MDrawing{drawing("d1"), drawing("d2")}, []models.MDrawing{deleted})
	right := MergeDrawings([]models.MDrawing{deleted}, []models.MDrawing{drawing("d1"), drawing("d2")})

	require.Len(t, left, 1)
	require.Len(t, right, 1)
	assert.Equal(t, "d2", left[0].ID)
	assert.Equal(t, "d2", right[0].ID)
}

func TestMergeDrawingsFiltersAgreedTombstones(t *testing.T) {
	deleted := drawing("d1")
	deleted.IsDeleted = true

	merged := MergeDrawings([]models.MDrawing{deleted}, []models.MDrawing{deleted})
	assert.Empty(t, merged)
}

// -----------------------------------------------------------------------------
// Full state merge
// -----------------------------------------------------------------------------

func TestMergeStatesSharedFieldsTakeIncoming(t *testing.T) {
	local := models.DefaultAppState()
	local.Collaboration.DisplayName = "bob"
	local.Collaboration.Room.ID = "room-1"
	local.Collaboration.Room.IsLoading = true

	incoming := models.DefaultAppState()
	incoming.Chart.Settings.Background.Theme = "light"
	incoming.Chart.Data.Symbol = "ETH-USD"
	incoming.Chart.ID = models.ChartID("ETH-USD", "coinbase")
	incoming.Collaboration.DisplayName = "alice"

	merged := MergeStates(local, incoming)

	assert.Equal(t, "light", merged.Chart.Settings.Background.Theme)
	assert.Equal(t, "ETH-USD", merged.Chart.Data.Symbol)
	assert.Equal(t, "eth-usd:coinbase", merged.Chart.ID)

	// Session identity stays local, and the sync ends the loading phase.
	assert.Equal(t, "bob", merged.Collaboration.DisplayName)
	assert.Equal(t, "room-1", merged.Collaboration.Room.ID)
	assert.False(t, merged.Collaboration.Room.IsLoading)
}

func TestMergeStatesUnionsDrawingsAndRoster(t *testing.T) {
	local := models.DefaultAppState()
	local.Chart.Drawings.Collection = []models.MDrawing{drawing("mine")}
	local.Collaboration.Room.ActiveUsers = []string{"bob"}

	incoming := models.DefaultAppState()
	incoming.Chart.Drawings.Collection = []models.MDrawing{drawing("theirs")}
	incoming.Collaboration.Room.ActiveUsers = []string{"alice", "bob"}

	merged := MergeStates(local, incoming)

	require.Len(t, merged.Chart.Drawings.Collection, 2)
	assert.Equal(t, []string{"alice", "bob"}, merged.Collaboration.Room.ActiveUsers)
}
