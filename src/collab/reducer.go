package collab

import (
	"chart-collab/src/models"
)

// -----------------------------------------------------------------------------
// Reduce is the single mutation path for MAppState: a pure function with
// no I/O, applied identically to locally-dispatched and remote actions so
// every participant computes the same transformation. Unknown action
// types return the state unchanged.
// -----------------------------------------------------------------------------

func Reduce(state models.MAppState, action models.MAction) models.MAppState {
	next := state.Clone()

	switch action.Type {

	// -----------ROOM LOGIC----------

	case models.ActionUserJoined:
		var p models.MUserPayload
		if action.Decode(&p) != nil || p.DisplayName == "" {
			return state
		}
		for _, u := range next.Collaboration.Room.ActiveUsers {
			if u == p.DisplayName {
				return next
			}
		}
		next.Collaboration.Room.ActiveUsers = append(
			[]string{p.DisplayName}, next.Collaboration.Room.ActiveUsers...)

	case models.ActionUserLeft:
		var p models.MUserPayload
		if action.Decode(&p) != nil {
			return state
		}
		users := next.Collaboration.Room.ActiveUsers[:0]
		for _, u := range next.Collaboration.Room.ActiveUsers {
			if u != p.DisplayName {
				users = append(users, u)
			}
		}
		next.Collaboration.Room.ActiveUsers = users

	case models.ActionSyncFullState:
		var p models.MSyncPayload
		if action.Decode(&p) != nil {
			return state
		}
		return MergeStates(state, p.State)

	case models.ActionCreateCollabRoom:
		var p models.MRoomPayload
		if action.Decode(&p) != nil {
			return state
		}
		next.Collaboration.Room.ID = p.RoomID
		next.Collaboration.Room.IsHost = true

	case models.ActionJoinCollabRoom:
		var p models.MJoinPayload
		if action.Decode(&p) != nil {
			return state
		}
		next.Collaboration.DisplayName = p.Room.DisplayName
		next.Collaboration.Room.ID = p.Room.RoomID
		next.Collaboration.Room.IsLoading = true

	case models.ActionLeaveCollabRoom:
		next.Collaboration.Room.ID = ""
		next.Collaboration.Room.IsHost = false

	case models.ActionEndLoading:
		next.Collaboration.Room.IsLoading = false

	// -----------DRAWING LOGIC----------

	case models.ActionAddDrawing:
		var p models.MDrawingPayload
		if action.Decode(&p) != nil || p.Drawing.ID == "" {
			return state
		}
		next.Chart.Tools.ActiveTool = ""
		next.Chart.Drawings.Collection = append(next.Chart.Drawings.Collection, p.Drawing.Clone())

	case models.ActionDeleteDrawing:
		var p models.MDrawingPayload
		if action.Decode(&p) != nil {
			return state
		}
		kept := next.Chart.Drawings.Collection[:0]
		for _, d := range next.Chart.Drawings.Collection {
			if d.ID != p.Drawing.ID {
				kept = append(kept, d)
			}
		}
		next.Chart.Drawings.Collection = kept
		next.Chart.Drawings.SelectedID = ""

	case models.ActionSelectDrawing:
		var p models.MDrawingPayload
		if action.Decode(&p) != nil {
			return state
		}
		next.Chart.Drawings.SelectedID = p.Drawing.ID

	case models.ActionStartTool:
		var p models.MToolPayload
		if action.Decode(&p) != nil {
			return state
		}
		next.Chart.Tools.ActiveTool = p.Tool

	case models.ActionCancelTool:
		next.Chart.Tools.ActiveTool = ""

	case models.ActionInitializeDrawings:
		var p models.MDrawingsPayload
		if action.Decode(&p) != nil {
			return state
		}
		next.Chart.Drawings.Collection = models.CloneDrawings(p.Drawings)

	// -----------CHART LOGIC----------

	case models.ActionSelectChart:
		var p models.MSelectChartPayload
		if action.Decode(&p) != nil {
			return state
		}
		next.Chart.ID = models.ChartID(p.Symbol, p.Exchange)
		next.Chart.Tools.ActiveTool = ""
		next.Chart.Drawings = models.MDrawingState{Collection: []models.MDrawing{}}
		next.Chart.Data.Symbol = p.Symbol
		next.Chart.Data.Timeframe = p.Timeframe
		next.Chart.Data.Exchange = p.Exchange

	case models.ActionToggleSettings:
		var p models.MTogglePayload
		if action.Decode(&p) != nil {
			return state
		}
		next.Chart.Settings.IsOpen = p.State

	case models.ActionToggleCollabWindow:
		var p models.MTogglePayload
		if action.Decode(&p) != nil {
			return state
		}
		next.Collaboration.IsOpen = p.State

	case models.ActionUpdateSettings:
		var p models.MSettingsPayload
		if action.Decode(&p) != nil {
			return state
		}
		next.Chart.Settings = p.Settings

	case models.ActionCleanupState:
		next.Collaboration.IsOpen = false
		next.Collaboration.DisplayName = models.SoloDisplayName
		next.Collaboration.Room.ID = ""
		next.Collaboration.Room.IsHost = false
		next.Collaboration.Room.ActiveUsers = []string{}
		next.Collaboration.Room.Status = models.StatusDisconnected
		next.Chart.Tools.ActiveTool = ""
		next.Chart.Settings.IsOpen = false
		next.Chart.Drawings.SelectedID = ""

	// -----------CONNECTION STATUS----------

	case models.ActionSetCollabStatus:
		var p models.MStatusPayload
		if action.Decode(&p) != nil {
			return state
		}
		next.Collaboration.Room.Status = p.Status

	case models.ActionSetChartStatus:
		var p models.MStatusPayload
		if action.Decode(&p) != nil {
			return state
		}
		next.Chart.Data.Status = p.Status

	default:
		return state
	}

	return next
}
