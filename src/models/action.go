package models

import (
	"encoding/json"
	"fmt"
)

// -----------------------------------------------------------------------------
// Actions are the only mutation vector into MAppState and the only unit
// exchanged between peers: JSON encoded, one action per message.
// -----------------------------------------------------------------------------

type ActionType string

const (
	// Room logic
	ActionCreateCollabRoom ActionType = "CREATE_COLLAB_ROOM"
	ActionJoinCollabRoom   ActionType = "JOIN_COLLAB_ROOM"
	ActionLeaveCollabRoom  ActionType = "LEAVE_COLLAB_ROOM"
	ActionUserJoined       ActionType = "USER_JOINED"
	ActionUserLeft         ActionType = "USER_LEFT"
	ActionSyncFullState    ActionType = "SYNC_FULL_STATE"
	ActionEndLoading       ActionType = "END_LOADING"

	// Drawing logic
	ActionAddDrawing         ActionType = "ADD_DRAWING"
	ActionDeleteDrawing      ActionType = "DELETE_DRAWING"
	ActionSelectDrawing      ActionType = "SELECT_DRAWING"
	ActionStartTool          ActionType = "START_TOOL"
	ActionCancelTool         ActionType = "CANCEL_TOOL"
	ActionInitializeDrawings ActionType = "INITIALIZE_DRAWINGS"

	// Chart logic
	ActionSelectChart        ActionType = "SELECT_CHART"
	ActionToggleSettings     ActionType = "TOGGLE_SETTINGS"
	ActionToggleCollabWindow ActionType = "TOGGLE_COLLAB_WINDOW"
	ActionUpdateSettings     ActionType = "UPDATE_SETTINGS"
	ActionCleanupState       ActionType = "CLEANUP_STATE"

	// Connection status
	ActionSetCollabStatus ActionType = "SET_CONNECTION_STATUS_COLLAB"
	ActionSetChartStatus  ActionType = "SET_CONNECTION_STATUS_CHART"
)

// -----------------------------------------------------------------------------

// MAction is the tagged union; Payload stays raw until the reducer decodes
// it with the struct matching Type.
type MAction struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// -----------------------------------------------------------------------------
// Payload shapes
// -----------------------------------------------------------------------------

type MRoomPayload struct {
	RoomID string `json:"roomId"`
}

type MUserPayload struct {
	DisplayName string `json:"displayName"`
}

type MJoinPayload struct {
	Room struct {
		RoomID      string `json:"roomId"`
		DisplayName string `json:"displayName"`
	} `json:"room"`
}

type MSyncPayload struct {
	State MAppState `json:"state"`
}

type MDrawingPayload struct {
	Drawing MDrawing `json:"drawing"`
}

type MDrawingsPayload struct {
	Drawings []MDrawing `json:"drawings"`
}

type MToolPayload struct {
	Tool string `json:"tool"`
}

type MSelectChartPayload struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	Exchange  string `json:"exchange"`
}

type MTogglePayload struct {
	State bool `json:"state"`
}

type MSettingsPayload struct {
	Settings MChartSettings `json:"settings"`
}

type MStatusPayload struct {
	Status ConnectionStatus `json:"status"`
}

// -----------------------------------------------------------------------------

// NewAction marshals the payload; a nil payload yields a bare action.
func NewAction(t ActionType, payload any) (MAction, error) {
	act := MAction{Type: t}
	if payload == nil {
		return act, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return MAction{}, fmt.Errorf("failed to encode %s payload: %w", t, err)
	}
	act.Payload = raw
	return act, nil
}

// -----------------------------------------------------------------------------

// Decode unmarshals the payload into dst.
func (a MAction) Decode(dst any) error {
	if len(a.Payload) == 0 {
		return fmt.Errorf("action %s has no payload", a.Type)
	}
	if err := json.Unmarshal(a.Payload, dst); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", a.Type, err)
	}
	return nil
}
