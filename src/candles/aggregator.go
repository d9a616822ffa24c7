package candles

import (
	"fmt"
	"sort"
	"sync"

	"chart-collab/src/logger"
	"chart-collab/src/models"
)

// -----------------------------------------------------------------------------
// Aggregator builds an append-and-update OHLC series for exactly one
// (symbol, exchange, interval) at a time. The bucket cache belongs to the
// active series only: switching series discards it rather than merging.
// -----------------------------------------------------------------------------

type Aggregator struct {
	history *HistoryClient
	logger  *logger.Logger

	mu        sync.Mutex
	symbol    string
	exchange  string
	timeframe string
	interval  int64
	cache     map[int64]models.MCandlestick
}

// -----------------------------------------------------------------------------

func NewAggregator(history *HistoryClient, log *logger.Logger) *Aggregator {
	return &Aggregator{
		history: history,
		logger:  log,
		cache:   make(map[int64]models.MCandlestick),
	}
}

// -----------------------------------------------------------------------------

// SetSeries switches the active series and clears the cache. Unknown
// timeframe keys are rejected; the previous series stays active.
func (a *Aggregator) SetSeries(symbol, exchange, timeframe string) error {
	interval, ok := models.IntervalSeconds[timeframe]
	if !ok {
		return fmt.Errorf("unsupported timeframe %q", timeframe)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.symbol = symbol
	a.exchange = exchange
	a.timeframe = timeframe
	a.interval = interval
	a.cache = make(map[int64]models.MCandlestick)
	return nil
}

// -----------------------------------------------------------------------------

// ApplyTick folds one tick into its bucket and returns the updated candle.
// Existing bucket: high=max, low=min, close=price, volume is last-write.
// New bucket: all four prices open at the tick price.
func (a *Aggregator) ApplyTick(tick models.MTickData) models.MCandlestick {
	a.mu.Lock()
	defer a.mu.Unlock()

	bucket := BucketStart(tick.Timestamp, a.interval)
	candle, ok := a.cache[bucket]
	if ok {
		if tick.Price > candle.High {
			candle.High = tick.Price
		}
		if tick.Price < candle.Low {
			candle.Low = tick.Price
		}
		candle.Close = tick.Price
		candle.Volume = tick.Volume
	} else {
		candle = models.MCandlestick{
			Time:   bucket,
			Open:   tick.Price,
			High:   tick.Price,
			Low:    tick.Price,
			Close:  tick.Price,
			Volume: tick.Volume,
		}
	}

	a.cache[bucket] = candle
	return candle
}

// -----------------------------------------------------------------------------

// BucketStart floors a timestamp to its interval bucket.
func BucketStart(ts, interval int64) int64 {
	if interval <= 0 {
		return ts
	}
	return (ts / interval) * interval
}

// -----------------------------------------------------------------------------

// LoadHistory fetches numBars of backfill, merges it into the cache and
// returns the full series sorted ascending. A failed fetch leaves the
// existing cache untouched and returns the error for logging upstream.
func (a *Aggregator) LoadHistory(numBars int) ([]models.MCandlestick, error) {
	a.mu.Lock()
	symbol, timeframe, interval := a.symbol, a.timeframe, a.interval
	a.mu.Unlock()

	bars, err := a.history.Fetch(symbol, timeframe, numBars, interval)
	if err != nil {
		a.logger.Warning("Backfill for %s %s failed, keeping %d cached bars: %v",
			symbol, timeframe, a.Size(), err)
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, bar := range bars {
		// Buckets already built from live ticks are fresher than backfill.
		if _, exists := a.cache[bar.Time]; !exists {
			a.cache[bar.Time] = bar
		}
	}
	return a.snapshotLocked(), nil
}

// -----------------------------------------------------------------------------

// Snapshot returns the cached series sorted ascending by bucket start.
func (a *Aggregator) Snapshot() []models.MCandlestick {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Aggregator) snapshotLocked() []models.MCandlestick {
	out := make([]models.MCandlestick, 0, len(a.cache))
	for _, c := range a.cache {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// -----------------------------------------------------------------------------

// Size returns the number of cached buckets.
func (a *Aggregator) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.cache)
}

// -----------------------------------------------------------------------------

// backfillEdgeBars is the look-back room below which more history loads.
const backfillEdgeBars = 10

// backfillGrowth is how many bars each backfill request adds.
const backfillGrowth = 50

// NeedsBackfill reports whether the visible range is close enough to the
// earliest loaded bar to warrant loading more history, and if so how many
// bars the next request should ask for.
func (a *Aggregator) NeedsBackfill(logicalFrom float64) (int, bool) {
	if logicalFrom >= backfillEdgeBars {
		return 0, false
	}
	return a.Size() + backfillGrowth, true
}
