package collab

import (
	"testing"

	"chart-collab/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func mustAction(t *testing.T, typ models.ActionType, payload any) models.MAction {
	t.Helper()
	action, err := models.NewAction(typ, payload)
	require.NoError(t, err)
	return action
}

func drawing(id string) models.MDrawing {
	return models.MDrawing{
		ID:   id,
		Type: "trendline",
		Points: []models.MDrawingPoint{
			{Time: 1700000000, Price: 100},
			{Time: 1700000600, Price: 110},
		},
	}
}

// -----------------------------------------------------------------------------
// Drawing actions
// -----------------------------------------------------------------------------

func TestAddDrawingAppendsAndClearsTool(t *testing.T) {
	state := models.DefaultAppState()
	state.Chart.Tools.ActiveTool = "trendline"

	next := Reduce(state, mustAction(t, models.ActionAddDrawing,
		models.MDrawingPayload{Drawing: drawing("d1")}))

	require.Len(t, next.Chart.Drawings.Collection, 1)
	assert.Equal(t, "d1", next.Chart.Drawings.Collection[0].ID)
	assert.Empty(t, next.Chart.Tools.ActiveTool)

	// Input state is untouched.
	assert.Empty(t, state.Chart.Drawings.Collection)
	assert.Equal(t, "trendline", state.Chart.Tools.ActiveTool)
}

func TestDeleteDrawingFiltersAndClearsSelection(t *testing.T) {
	state := models.DefaultAppState()
	state.Chart.Drawings.Collection = []models.MDrawing{drawing("d1"), drawing("d2")}
	state.Chart.Drawings.SelectedID = "d1"

	next := Reduce(state, mustAction(t, models.ActionDeleteDrawing,
		models.MDrawingPayload{Drawing: models.MDrawing{ID: "d1"}}))

	require.Len(t, next.Chart.Drawings.Collection, 1)
	assert.Equal(t, "d2", next.Chart.Drawings.Collection[0].ID)
	assert.Empty(t, next.Chart.Drawings.SelectedID)
}

func TestSelectAndToolActions(t *testing.T) {
	state := models.DefaultAppState()

	next := Reduce(state, mustAction(t, models.ActionStartTool, models.MToolPayload{Tool: "hline"}))
	assert.Equal(t, "hline", next.Chart.Tools.ActiveTool)

	next = Reduce(next, mustAction(t, models.ActionCancelTool, nil))
	assert.Empty(t, next.Chart.Tools.ActiveTool)

	next = Reduce(next, mustAction(t, models.ActionSelectDrawing,
		models.MDrawingPayload{Drawing: models.MDrawing{ID: "d7"}}))
	assert.Equal(t, "d7", next.Chart.Drawings.SelectedID)
}

func TestInitializeDrawingsReplacesCollection(t *testing.T) {
	state := models.DefaultAppState()
	state.Chart.Drawings.Collection = []models.MDrawing{drawing("old")}

	next := Reduce(state, mustAction(t, models.ActionInitializeDrawings,
		models.MDrawingsPayload{Drawings: []models.MDrawing{drawing("a"), drawing("b")}}))

	require.Len(t, next.Chart.Drawings.Collection, 2)
	assert.Equal(t, "a", next.Chart.Drawings.Collection[0].ID)
}

// -----------------------------------------------------------------------------
// Chart actions
// -----------------------------------------------------------------------------

func TestSelectChartRebuildsSeriesAndDropsDrawings(t *testing.T) {
	state := models.DefaultAppState()
	state.Chart.Drawings.Collection = []models.MDrawing{drawing("d1")}
	state.Chart.Drawings.SelectedID = "d1"
	state.Chart.Tools.ActiveTool = "trendline"

	next := Reduce(state, mustAction(t, models.ActionSelectChart,
		models.MSelectChartPayload{Symbol: "ETH-USD", Timeframe: "5m", Exchange: "binance"}))

	assert.Equal(t, "eth-usd:binance", next.Chart.ID)
	assert.Equal(t, "ETH-USD", next.Chart.Data.Symbol)
	assert.Equal(t, "5m", next.Chart.Data.Timeframe)
	assert.Equal(t, "binance", next.Chart.Data.Exchange)
	assert.Empty(t, next.Chart.Drawings.Collection)
	assert.Empty(t, next.Chart.Drawings.SelectedID)
	assert.Empty(t, next.Chart.Tools.ActiveTool)
}

func TestSettingsAndToggles(t *testing.T) {
	state := models.DefaultAppState()

	next := Reduce(state, mustAction(t, models.ActionToggleSettings, models.MTogglePayload{State: true}))
	assert.True(t, next.Chart.Settings.IsOpen)

	next = Reduce(next, mustAction(t, models.ActionToggleCollabWindow, models.MTogglePayload{State: true}))
	assert.True(t, next.Collaboration.IsOpen)

	settings := next.Chart.Settings
	settings.Background.Theme = "light"
	next = Reduce(next, mustAction(t, models.ActionUpdateSettings, models.MSettingsPayload{Settings: settings}))
	assert.Equal(t, "light", next.Chart.Settings.Background.Theme)
}

// -----------------------------------------------------------------------------
// Room actions
// -----------------------------------------------------------------------------

func TestRoomLifecycleActions(t *testing.T) {
	state := models.DefaultAppState()

	next := Reduce(state, mustAction(t, models.ActionCreateCollabRoom,
		models.MRoomPayload{RoomID: "room-1"}))
	assert.Equal(t, "room-1", next.Collaboration.Room.ID)
	assert.True(t, next.Collaboration.Room.IsHost)

	join := models.MJoinPayload{}
	join.Room.RoomID = "room-2"
	join.Room.DisplayName = "alice"
	next = Reduce(models.DefaultAppState(), mustAction(t, models.ActionJoinCollabRoom, join))
	assert.Equal(t, "room-2", next.Collaboration.Room.ID)
	assert.Equal(t, "alice", next.Collaboration.DisplayName)
	assert.True(t, next.Collaboration.Room.IsLoading)
	assert.False(t, next.Collaboration.Room.IsHost)

	next = Reduce(next, mustAction(t, models.ActionEndLoading, nil))
	assert.False(t, next.Collaboration.Room.IsLoading)

	next = Reduce(next, mustAction(t, models.ActionLeaveCollabRoom, nil))
	assert.Empty(t, next.Collaboration.Room.ID)
	assert.False(t, next.Collaboration.Room.IsHost)
}

func TestUserRosterActions(t *testing.T) {
	state := models.DefaultAppState()

	next := Reduce(state, mustAction(t, models.ActionUserJoined, models.MUserPayload{DisplayName: "alice"}))
	next = Reduce(next, mustAction(t, models.ActionUserJoined, models.MUserPayload{DisplayName: "bob"}))
	assert.Equal(t, []string{"bob", "alice"}, next.Collaboration.Room.ActiveUsers)

	// Rejoin announcements do not duplicate the entry.
	next = Reduce(next, mustAction(t, models.ActionUserJoined, models.MUserPayload{DisplayName: "alice"}))
	assert.Len(t, next.Collaboration.Room.ActiveUsers, 2)

	next = Reduce(next, mustAction(t, models.ActionUserLeft, models.MUserPayload{DisplayName: "bob"}))
	assert.Equal(t, []string{"alice"}, next.Collaboration.Room.ActiveUsers)
}

func TestCleanupStateResetsToSoloDefaults(t *testing.T) {
	state := models.DefaultAppState()
	state.Collaboration.IsOpen = true
	state.Collaboration.DisplayName = "alice"
	state.Collaboration.Room.ID = "room-1"
	state.Collaboration.Room.IsHost = true
	state.Collaboration.Room.ActiveUsers = []string{"bob"}
	state.Collaboration.Room.Status = models.StatusConnected
	state.Chart.Drawings.Collection = []models.MDrawing{drawing("d1")}
	state.Chart.Drawings.SelectedID = "d1"

	next := Reduce(state, mustAction(t, models.ActionCleanupState, nil))

	assert.False(t, next.Collaboration.IsOpen)
	assert.Equal(t, models.SoloDisplayName, next.Collaboration.DisplayName)
	assert.Empty(t, next.Collaboration.Room.ID)
	assert.False(t, next.Collaboration.Room.IsHost)
	assert.Empty(t, next.Collaboration.Room.ActiveUsers)
	assert.Equal(t, models.StatusDisconnected, next.Collaboration.Room.Status)

	// Drawings survive the transition back to solo.
	assert.Len(t, next.Chart.Drawings.Collection, 1)
	assert.Empty(t, next.Chart.Drawings.SelectedID)
}

// -----------------------------------------------------------------------------

func TestConnectionStatusActions(t *testing.T) {
	state := models.DefaultAppState()

	next := Reduce(state, mustAction(t, models.ActionSetCollabStatus,
		models.MStatusPayload{Status: models.StatusConnected}))
	assert.Equal(t, models.StatusConnected, next.Collaboration.Room.Status)

	next = Reduce(next, mustAction(t, models.ActionSetChartStatus,
		models.MStatusPayload{Status: models.StatusReconnecting}))
	assert.Equal(t, models.StatusReconnecting, next.Chart.Data.Status)
}

func TestUnknownActionIsIgnored(t *testing.T) {
	state := models.DefaultAppState()
	next := Reduce(state, models.MAction{Type: "SOMETHING_ELSE"})
	assert.Equal(t, state, next)
}

func TestMalformedPayloadLeavesStateUnchanged(t *testing.T) {
	state := models.DefaultAppState()
	next := Reduce(state, models.MAction{Type: models.ActionAddDrawing, Payload: []byte(`{broken`)})
	assert.Equal(t, state, next)
}
