package candles

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"chart-collab/src/interfaces"
	"chart-collab/src/logger"
	"chart-collab/src/models"
)

// -----------------------------------------------------------------------------
// HistoryClient fetches backfill bars from the candle endpoint. Responses
// are rows of [time, low, high, open, close, volume]; row order is not
// trusted, the client sorts.
// -----------------------------------------------------------------------------

type HistoryClient struct {
	baseURL string
	network interfaces.INetworkManager
	logger  *logger.Logger
	now     func() time.Time // test hook
}

// -----------------------------------------------------------------------------

func NewHistoryClient(baseURL string, network interfaces.INetworkManager, log *logger.Logger) *HistoryClient {
	return &HistoryClient{
		baseURL: baseURL,
		network: network,
		logger:  log,
		now:     time.Now,
	}
}

// -----------------------------------------------------------------------------

// Fetch requests numBars ending now for one symbol/timeframe.
func (h *HistoryClient) Fetch(symbol, timeframe string, numBars int, interval int64) ([]models.MCandlestick, error) {
	end := h.now().Unix()
	start := end - int64(numBars)*interval

	raw, err := h.network.Get(h.baseURL+"/candles", map[string]string{
		"symbol":    symbol,
		"timeframe": timeframe,
		"start":     strconv.FormatInt(start, 10),
		"end":       strconv.FormatInt(end, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("candle fetch failed: %w", err)
	}

	return ParseCandleRows(raw)
}

// -----------------------------------------------------------------------------

// ParseCandleRows decodes the tuple response and returns bars sorted
// ascending. Rows shorter than 6 elements are dropped.
func ParseCandleRows(raw []byte) ([]models.MCandlestick, error) {
	var rows [][]float64
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("malformed candle response: %w", err)
	}

	bars := make([]models.MCandlestick, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		bars = append(bars, models.MCandlestick{
			Time:   int64(row[0]),
			Low:    row[1],
			High:   row[2],
			Open:   row[3],
			Close:  row[4],
			Volume: row[5],
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time < bars[j].Time })
	return bars, nil
}
