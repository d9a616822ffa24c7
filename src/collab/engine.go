package collab

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"chart-collab/src/helpers"
	"chart-collab/src/interfaces"
	"chart-collab/src/logger"
	"chart-collab/src/models"
)

// -----------------------------------------------------------------------------
// Engine owns the session state and the room connection. Local actions
// are applied optimistically through the reducer, then broadcast; remote
// actions arriving on the room socket run through the same reducer, so
// both sides converge on identical state.
// -----------------------------------------------------------------------------

type Engine struct {
	cfg     models.MCollabConfig
	store   interfaces.IDrawingStore
	network interfaces.INetworkManager
	logger  *logger.Logger
	dial    SessionDialer

	mu         sync.Mutex
	state      models.MAppState
	conn       SessionConn
	sessionGen int

	sendMu sync.Mutex
}

// -----------------------------------------------------------------------------

// NewEngine restores the last session snapshot when one is cached,
// resets the collaboration block to solo defaults and reloads the
// drawings for the active chart series.
func NewEngine(cfg models.MCollabConfig, store interfaces.IDrawingStore, network interfaces.INetworkManager, log *logger.Logger) *Engine {
	e := &Engine{
		cfg:     cfg,
		store:   store,
		network: network,
		logger:  log,
		dial:    DefaultSessionDialer,
	}

	state := models.DefaultAppState()
	if store != nil {
		if cached, ok, err := store.LoadAppState(); err != nil {
			log.Warning("could not restore session snapshot: %v", err)
		} else if ok {
			state = cached
		}
	}
	state = Reduce(state, models.MAction{Type: models.ActionCleanupState})

	if store != nil {
		if drawings, err := store.LoadDrawings(state.Chart.ID); err != nil {
			log.Warning("could not restore drawings for %s: %v", state.Chart.ID, err)
		} else {
			state.Chart.Drawings.Collection = drawings
		}
	}

	e.state = state
	return e
}

// SetDialer overrides the room transport.
func (e *Engine) SetDialer(dial SessionDialer) {
	e.dial = dial
}

// -----------------------------------------------------------------------------

// State returns a snapshot of the current session state.
func (e *Engine) State() models.MAppState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// -----------------------------------------------------------------------------

// Dispatch applies the action locally, persists the result and, for
// shared mutations, broadcasts the same action to the room.
func (e *Engine) Dispatch(action models.MAction) models.MAppState {
	snap := e.apply(action)

	// Activating a series pulls its cached drawings back in.
	if action.Type == models.ActionSelectChart && e.store != nil {
		if drawings, err := e.store.LoadDrawings(snap.Chart.ID); err != nil {
			e.logger.Warning("could not load drawings for %s: %v", snap.Chart.ID, err)
		} else if len(drawings) > 0 {
			init, _ := models.NewAction(models.ActionInitializeDrawings,
				models.MDrawingsPayload{Drawings: drawings})
			snap = e.apply(init)
		}
	}

	if isShared(action.Type) {
		e.send(action)
	}
	return snap
}

func isShared(t models.ActionType) bool {
	switch t {
	case models.ActionAddDrawing, models.ActionDeleteDrawing, models.ActionSelectChart:
		return true
	}
	return false
}

// -----------------------------------------------------------------------------

// HandleIncoming applies an action received from the room. A USER_JOINED
// announcement additionally answers with a full state sync so the new
// participant catches up.
func (e *Engine) HandleIncoming(action models.MAction) {
	e.apply(action)

	if action.Type == models.ActionUserJoined {
		if err := e.SendFullState(); err != nil {
			e.logger.Warning("full state sync failed: %v", err)
		}
	}
}

// -----------------------------------------------------------------------------

// SendFullState broadcasts the whole session state to the room.
func (e *Engine) SendFullState() error {
	action, err := models.NewAction(models.ActionSyncFullState,
		models.MSyncPayload{State: e.State()})
	if err != nil {
		return err
	}
	return e.send(action)
}

// -----------------------------------------------------------------------------

type roomCreated struct {
	RoomID string `json:"roomId"`
	URL    string `json:"url"`
}

// CreateRoom provisions a room on the collaboration server and marks
// this session as its host. The returned share URL carries the host
// flag so the creator's own join is distinguishable.
func (e *Engine) CreateRoom() (roomID string, shareURL string, err error) {
	raw, err := e.network.Post(fmt.Sprintf("http://%s/rooms/create", e.cfg.ServerHost), nil)
	if err != nil {
		return "", "", helpers.NewTransportError("room creation failed", err)
	}

	var created roomCreated
	if err := json.Unmarshal(raw, &created); err != nil {
		return "", "", helpers.NewProtocolError("malformed room creation response", err)
	}
	if created.RoomID == "" {
		return "", "", helpers.NewProtocolError("room creation response missing roomId", nil)
	}

	act, err := models.NewAction(models.ActionCreateCollabRoom,
		models.MRoomPayload{RoomID: created.RoomID})
	if err != nil {
		return "", "", err
	}
	e.apply(act)

	sep := "?"
	if strings.Contains(created.URL, "?") {
		sep = "&"
	}
	return created.RoomID, created.URL + sep + "host=true", nil
}

// -----------------------------------------------------------------------------

// JoinRoom connects to the room and starts relaying its actions into the
// local state. The call returns once the connection is established; the
// initial full sync arrives asynchronously.
func (e *Engine) JoinRoom(roomID, displayName string) error {
	e.mu.Lock()
	if e.conn != nil {
		e.mu.Unlock()
		return helpers.NewTransportError("already joined a room", nil)
	}
	e.mu.Unlock()

	e.setCollabStatus(models.StatusConnecting)

	query := url.Values{}
	query.Set("roomId", roomID)
	query.Set("displayName", displayName)
	endpoint := fmt.Sprintf("ws://%s/rooms/join?%s", e.cfg.ServerHost, query.Encode())

	conn, err := e.dial(endpoint)
	if err != nil {
		e.setCollabStatus(models.StatusError)
		return helpers.NewTransportError("could not join room "+roomID, err)
	}

	e.mu.Lock()
	e.conn = conn
	e.sessionGen++
	gen := e.sessionGen
	e.mu.Unlock()

	join := models.MJoinPayload{}
	join.Room.RoomID = roomID
	join.Room.DisplayName = displayName
	act, err := models.NewAction(models.ActionJoinCollabRoom, join)
	if err != nil {
		return err
	}
	e.apply(act)
	e.setCollabStatus(models.StatusConnected)

	e.logger.Info("joined room %s as %s", roomID, displayName)
	go e.readLoop(conn, gen)
	return nil
}

// -----------------------------------------------------------------------------

// LeaveRoom closes the room connection; the read loop performs the
// state cleanup when the socket drops.
func (e *Engine) LeaveRoom() {
	e.mu.Lock()
	conn := e.conn
	e.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

// Close tears the session down.
func (e *Engine) Close() {
	e.LeaveRoom()
}

// -----------------------------------------------------------------------------

func (e *Engine) readLoop(conn SessionConn, gen int) {
	for {
		var action models.MAction
		if err := conn.ReadJSON(&action); err != nil {
			e.logger.Info("room connection closed: %v", err)
			break
		}
		e.HandleIncoming(action)
	}

	conn.Close()

	e.mu.Lock()
	if e.sessionGen != gen {
		e.mu.Unlock()
		return
	}
	e.conn = nil
	e.mu.Unlock()

	// Whatever ended the session, the state falls back to solo.
	e.apply(models.MAction{Type: models.ActionCleanupState})
}

// -----------------------------------------------------------------------------

// apply runs the reducer under the lock and persists the result.
func (e *Engine) apply(action models.MAction) models.MAppState {
	e.mu.Lock()
	e.state = Reduce(e.state, action)
	snap := e.state.Clone()
	e.mu.Unlock()

	e.persist(action, snap)
	return snap
}

func (e *Engine) persist(action models.MAction, snap models.MAppState) {
	if e.store == nil {
		return
	}

	switch action.Type {
	case models.ActionAddDrawing, models.ActionDeleteDrawing,
		models.ActionInitializeDrawings, models.ActionSyncFullState:
		if err := e.store.SaveDrawings(snap.Chart.ID, snap.Chart.Drawings.Collection); err != nil {
			e.logger.Warning("could not persist drawings for %s: %v", snap.Chart.ID, err)
		}
	}

	snap.LastSaved = time.Now().UTC().Format(time.RFC3339)
	if err := e.store.SaveAppState(snap); err != nil {
		e.logger.Warning("could not persist session snapshot: %v", err)
	}
}

// -----------------------------------------------------------------------------

func (e *Engine) setCollabStatus(status models.ConnectionStatus) {
	act, err := models.NewAction(models.ActionSetCollabStatus, models.MStatusPayload{Status: status})
	if err != nil {
		return
	}
	e.apply(act)
}

// -----------------------------------------------------------------------------

func (e *Engine) send(action models.MAction) error {
	e.mu.Lock()
	conn := e.conn
	e.mu.Unlock()
	if conn == nil {
		return nil
	}

	e.sendMu.Lock()
	defer e.sendMu.Unlock()
	if err := conn.WriteJSON(action); err != nil {
		return helpers.NewTransportError("broadcast failed", err)
	}
	return nil
}
