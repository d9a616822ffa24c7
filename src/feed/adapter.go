package feed

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"chart-collab/src/interfaces"
	"chart-collab/src/logger"
	"chart-collab/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Reconnect policy defaults (overridable per exchange in config)
// -----------------------------------------------------------------------------

const (
	defaultInitialDelay = 10 * time.Millisecond
	defaultMaxDelay     = 30000 * time.Millisecond
	defaultMaxAttempts  = 10
)

// -----------------------------------------------------------------------------

// TickHandler consumes one parsed tick.
type TickHandler func(models.MTickData)

// StatusHandler consumes connection state transitions.
type StatusHandler func(models.MConnectionState)

// -----------------------------------------------------------------------------

// IFeedConn is the transport primitive the adapter drives: ordered
// delivery per connection, JSON writes, blocking reads.
type IFeedConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
}

// Dialer opens a transport connection to a websocket URL.
type Dialer func(wsURL string) (IFeedConn, error)

// DefaultDialer connects via gorilla/websocket.
func DefaultDialer(wsURL string) (IFeedConn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// -----------------------------------------------------------------------------
// Adapter owns one live connection to one exchange and multiplexes
// per-symbol tick callbacks over it. Reference-counted fan-out: many
// subscribers to one symbol share a single upstream subscription.
// -----------------------------------------------------------------------------

type Adapter struct {
	cfg    models.MExchangeConfig
	parser interfaces.IExchangeFeed
	dial   Dialer
	logger *logger.Logger

	mu             sync.Mutex
	conn           IFeedConn
	status         models.ConnectionStatus
	subscriptions  map[string]map[int]TickHandler
	statusListeners map[int]StatusHandler
	nextID         int

	reconnectAttempts uint
	reconnectTimer    *time.Timer

	manuallyDisconnected bool
	destroyed            bool
	generation           int // invalidates read loops of stale connections

	statusCh chan models.MConnectionState
}

// -----------------------------------------------------------------------------

func NewAdapter(cfg models.MExchangeConfig, parser interfaces.IExchangeFeed, dial Dialer, log *logger.Logger) *Adapter {
	if dial == nil {
		dial = DefaultDialer
	}
	a := &Adapter{
		cfg:             cfg,
		parser:          parser,
		dial:            dial,
		logger:          log,
		status:          models.StatusDisconnected,
		subscriptions:   make(map[string]map[int]TickHandler),
		statusListeners: make(map[int]StatusHandler),
		statusCh:        make(chan models.MConnectionState, 16),
	}
	go a.dispatchStatus()
	return a
}

// -----------------------------------------------------------------------------

// dispatchStatus delivers transitions to listeners one at a time, in the
// order the adapter produced them.
func (a *Adapter) dispatchStatus() {
	for state := range a.statusCh {
		a.mu.Lock()
		listeners := make([]StatusHandler, 0, len(a.statusListeners))
		for _, l := range a.statusListeners {
			listeners = append(listeners, l)
		}
		a.mu.Unlock()

		for _, l := range listeners {
			l(state)
		}
	}
}

// -----------------------------------------------------------------------------
// Connection lifecycle
// -----------------------------------------------------------------------------

// Connect starts a connection attempt. It is idempotent while already
// connecting or connected, and a no-op after an explicit Disconnect or
// Destroy.
func (a *Adapter) Connect() {
	a.mu.Lock()
	if a.manuallyDisconnected || a.destroyed {
		a.mu.Unlock()
		return
	}
	if a.status == models.StatusConnecting || a.status == models.StatusConnected {
		a.mu.Unlock()
		return
	}
	a.clearReconnectTimerLocked()
	a.generation++
	gen := a.generation
	a.setStatusLocked(models.StatusConnecting, "")
	a.mu.Unlock()

	go a.runConnect(gen)
}

// -----------------------------------------------------------------------------

func (a *Adapter) runConnect(gen int) {
	conn, err := a.dial(a.cfg.WSURL)

	a.mu.Lock()
	if gen != a.generation || a.manuallyDisconnected || a.destroyed {
		a.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		// Dial failure counts as an error followed by a close: surface the
		// error, then let the reconnect machine take over.
		a.setStatusLocked(models.StatusError, fmt.Sprintf("failed to create connection: %v", err))
		a.scheduleReconnectLocked()
		a.mu.Unlock()
		return
	}

	a.conn = conn
	a.reconnectAttempts = 0
	a.setStatusLocked(models.StatusConnected, "")

	// Re-send subscribe requests for every held symbol so a reconnect
	// restores the upstream subscriptions.
	symbols := make([]string, 0, len(a.subscriptions))
	for sym := range a.subscriptions {
		symbols = append(symbols, sym)
	}
	if len(symbols) > 0 {
		a.sendSubscribeLocked(symbols)
	}
	a.mu.Unlock()

	a.readLoop(conn, gen)
}

// -----------------------------------------------------------------------------

func (a *Adapter) readLoop(conn IFeedConn, gen int) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			a.handleClose(gen, err)
			return
		}
		a.handleMessage(raw)
	}
}

// -----------------------------------------------------------------------------

func (a *Adapter) handleClose(gen int, cause error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.generation {
		return // a newer connection owns the state now
	}
	if a.conn != nil {
		a.conn.Close()
		a.conn = nil
	}
	if a.manuallyDisconnected || a.destroyed {
		return
	}

	a.logger.Warning("%s connection closed: %v", a.cfg.Name, cause)
	a.status = models.StatusDisconnected
	a.scheduleReconnectLocked()
}

// -----------------------------------------------------------------------------

// scheduleReconnectLocked runs the exponential backoff policy:
// delay = min(initial * 2^(attempts-1), max), attempts incremented before
// computing. Exhausting the budget is a terminal error state.
func (a *Adapter) scheduleReconnectLocked() {
	maxAttempts := uint(a.cfg.Reconnect.MaxAttempts)
	if maxAttempts == 0 {
		maxAttempts = defaultMaxAttempts
	}

	if a.reconnectAttempts >= maxAttempts {
		a.setStatusLocked(models.StatusError,
			fmt.Sprintf("failed to connect after %d attempts", maxAttempts))
		return
	}

	a.reconnectAttempts++
	a.setStatusLocked(models.StatusReconnecting, "")

	delay := BackoffDelay(a.reconnectAttempts, a.cfg.Reconnect)
	a.reconnectTimer = time.AfterFunc(delay, func() {
		a.mu.Lock()
		// AfterFunc may fire after a manual disconnect raced the timer
		if a.manuallyDisconnected || a.destroyed {
			a.mu.Unlock()
			return
		}
		a.status = models.StatusDisconnected
		a.mu.Unlock()
		a.Connect()
	})
}

// -----------------------------------------------------------------------------

// BackoffDelay computes the reconnect delay for the n-th attempt (1-based).
func BackoffDelay(attempt uint, cfg models.MReconnectConfig) time.Duration {
	initial := defaultInitialDelay
	if cfg.InitialDelayMs > 0 {
		initial = time.Duration(cfg.InitialDelayMs) * time.Millisecond
	}
	max := defaultMaxDelay
	if cfg.MaxDelayMs > 0 {
		max = time.Duration(cfg.MaxDelayMs) * time.Millisecond
	}

	delay := initial
	for i := uint(1); i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}

// -----------------------------------------------------------------------------

// Disconnect closes the connection and suppresses auto-reconnect until a
// fresh adapter is built. Safe to call repeatedly.
func (a *Adapter) Disconnect() {
	a.mu.Lock()
	a.manuallyDisconnected = true
	a.clearReconnectTimerLocked()
	if a.conn != nil {
		a.conn.Close()
		a.conn = nil
	}
	a.setStatusLocked(models.StatusDisconnected, "")
	a.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Destroy disconnects and drops all subscriptions and listeners. The
// adapter must not be used afterwards.
func (a *Adapter) Destroy() {
	a.mu.Lock()
	if a.destroyed {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	a.Disconnect()

	a.mu.Lock()
	a.destroyed = true
	a.subscriptions = make(map[string]map[int]TickHandler)
	a.statusListeners = make(map[int]StatusHandler)
	close(a.statusCh)
	a.mu.Unlock()
}

// -----------------------------------------------------------------------------
// Subscriptions
// -----------------------------------------------------------------------------

// Subscribe registers a tick callback for a symbol and returns its cancel
// func. The first callback for a symbol sends one upstream subscribe
// request; the last cancel sends one unsubscribe request.
func (a *Adapter) Subscribe(symbol string, onTick TickHandler) func() {
	normalized := normalizeSymbol(symbol)

	a.mu.Lock()
	handlers, ok := a.subscriptions[normalized]
	if !ok {
		handlers = make(map[int]TickHandler)
		a.subscriptions[normalized] = handlers
		a.sendSubscribeLocked([]string{normalized})
	}
	a.nextID++
	id := a.nextID
	handlers[id] = onTick
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			handlers, ok := a.subscriptions[normalized]
			if !ok {
				return
			}
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(a.subscriptions, normalized)
				a.sendUnsubscribeLocked([]string{normalized})
			}
		})
	}
}

// -----------------------------------------------------------------------------

// OnStatusChange registers a status listener and returns its cancel func.
func (a *Adapter) OnStatusChange(onStatus StatusHandler) func() {
	a.mu.Lock()
	a.nextID++
	id := a.nextID
	a.statusListeners[id] = onStatus
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.statusListeners, id)
		a.mu.Unlock()
	}
}

// -----------------------------------------------------------------------------

// State returns a snapshot of the current connection state.
func (a *Adapter) State() models.MConnectionState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return models.MConnectionState{
		Status:            a.status,
		Exchange:          a.cfg.Name,
		ReconnectAttempts: a.reconnectAttempts,
	}
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(symbol)
}

// -----------------------------------------------------------------------------

func (a *Adapter) sendSubscribeLocked(symbols []string) {
	if a.conn == nil || a.status != models.StatusConnected {
		return
	}
	msg := a.parser.FormatSubscribeMessage(symbols)
	if err := a.conn.WriteJSON(msg); err != nil {
		a.logger.Warning("%s subscribe send failed: %v", a.cfg.Name, err)
	}
}

// -----------------------------------------------------------------------------

func (a *Adapter) sendUnsubscribeLocked(symbols []string) {
	if a.conn == nil || a.status != models.StatusConnected {
		return
	}
	msg := a.parser.FormatUnsubscribeMessage(symbols)
	if err := a.conn.WriteJSON(msg); err != nil {
		a.logger.Warning("%s unsubscribe send failed: %v", a.cfg.Name, err)
	}
}

// -----------------------------------------------------------------------------

// handleMessage parses one inbound payload and fans the tick out to the
// symbol's callback set. Malformed or irrelevant payloads are dropped;
// unknown symbols are dropped.
func (a *Adapter) handleMessage(raw []byte) {
	tick := a.parser.ParseTickerMessage(raw)
	if tick == nil {
		a.logger.Debug("%s dropped non-ticker payload (%d bytes)", a.cfg.Name, len(raw))
		return
	}

	a.mu.Lock()
	set, ok := a.subscriptions[normalizeSymbol(tick.Symbol)]
	if !ok {
		a.mu.Unlock()
		return
	}
	handlers := make([]TickHandler, 0, len(set))
	for _, h := range set {
		handlers = append(handlers, h)
	}
	a.mu.Unlock()

	for _, h := range handlers {
		h(*tick)
	}
}

// -----------------------------------------------------------------------------

// setStatusLocked records the transition and notifies listeners. Callbacks
// run outside the lock.
func (a *Adapter) setStatusLocked(status models.ConnectionStatus, errMsg string) {
	if a.destroyed {
		return
	}
	a.status = status
	state := models.MConnectionState{
		Status:            status,
		Exchange:          a.cfg.Name,
		ReconnectAttempts: a.reconnectAttempts,
		Err:               errMsg,
	}
	select {
	case a.statusCh <- state:
	default:
		a.logger.Debug("%s status queue full, dropping %s", a.cfg.Name, status)
	}
}

// -----------------------------------------------------------------------------

func (a *Adapter) clearReconnectTimerLocked() {
	if a.reconnectTimer != nil {
		a.reconnectTimer.Stop()
		a.reconnectTimer = nil
	}
}
