package feed

import (
	"sync"

	"chart-collab/src/helpers"
	"chart-collab/src/interfaces"
	"chart-collab/src/logger"
	"chart-collab/src/models"
)

// -----------------------------------------------------------------------------
// Registry is the single point of truth mapping exchange keys to adapters.
// It is constructed explicitly (no package-level singleton) and handed to
// whoever needs feed access; adapters are built lazily, at most once per
// registry lifetime.
// -----------------------------------------------------------------------------

type Registry struct {
	logger *logger.Logger
	dial   Dialer

	mu       sync.Mutex
	parsers  map[string]interfaces.IExchangeFeed
	configs  map[string]models.MExchangeConfig
	adapters map[string]*Adapter
	subs     map[string]int // composite exchange:symbol -> active count
}

// -----------------------------------------------------------------------------

func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		logger:   log,
		dial:     DefaultDialer,
		parsers:  make(map[string]interfaces.IExchangeFeed),
		configs:  make(map[string]models.MExchangeConfig),
		adapters: make(map[string]*Adapter),
		subs:     make(map[string]int),
	}
}

// -----------------------------------------------------------------------------

// Register wires one exchange parser with its connection config. Must be
// called before the first Subscribe for that exchange.
func (r *Registry) Register(parser interfaces.IExchangeFeed, cfg models.MExchangeConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[parser.Name()] = parser
	r.configs[parser.Name()] = cfg
}

// -----------------------------------------------------------------------------

// SetDialer overrides the transport dialer. Test hook.
func (r *Registry) SetDialer(dial Dialer) {
	r.mu.Lock()
	r.dial = dial
	r.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Subscribe routes a tick subscription to the exchange's adapter, lazily
// constructing and connecting it. Subscribing to an unregistered exchange
// is a hard failure: a config error, not a transient condition.
func (r *Registry) Subscribe(symbol, exchange string, onTick TickHandler) (func(), error) {
	adapter, err := r.adapterFor(exchange)
	if err != nil {
		return nil, err
	}

	adapter.Connect()
	cancel := adapter.Subscribe(symbol, onTick)

	key := exchange + ":" + symbol
	r.mu.Lock()
	r.subs[key]++
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			r.mu.Lock()
			if r.subs[key]--; r.subs[key] <= 0 {
				delete(r.subs, key)
			}
			r.mu.Unlock()
		})
	}, nil
}

// -----------------------------------------------------------------------------

// ConnectionStatus exposes the adapter's status-change registration
// without leaking the adapter itself.
func (r *Registry) ConnectionStatus(exchange string) (func(StatusHandler) func(), error) {
	adapter, err := r.adapterFor(exchange)
	if err != nil {
		return nil, err
	}
	return adapter.OnStatusChange, nil
}

// -----------------------------------------------------------------------------

// ActiveSubscriptions returns the composite exchange:symbol keys currently
// held. Diagnostic surface for the health endpoint.
func (r *Registry) ActiveSubscriptions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.subs))
	for k := range r.subs {
		keys = append(keys, k)
	}
	return keys
}

// -----------------------------------------------------------------------------

// Destroy tears down every adapter and clears the subscription index.
func (r *Registry) Destroy() {
	r.mu.Lock()
	adapters := make([]*Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		adapters = append(adapters, a)
	}
	r.adapters = make(map[string]*Adapter)
	r.subs = make(map[string]int)
	r.mu.Unlock()

	for _, a := range adapters {
		a.Destroy()
	}
}

// -----------------------------------------------------------------------------

func (r *Registry) adapterFor(exchange string) (*Adapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if adapter, ok := r.adapters[exchange]; ok {
		return adapter, nil
	}

	parser, ok := r.parsers[exchange]
	if !ok {
		return nil, helpers.NewUnsupportedExchangeError(exchange)
	}

	adapter := NewAdapter(r.configs[exchange], parser, r.dial, r.logger.Named("feed-"+exchange))
	r.adapters[exchange] = adapter
	return adapter, nil
}
