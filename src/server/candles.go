package server

import (
	"sort"
	"strconv"
	"time"

	"chart-collab/src/candles"
	"chart-collab/src/helpers"
	"chart-collab/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Candle History Proxy
//
// Upstream exchanges cap candle queries at 300 bars, so wide ranges are
// split into chunks fetched concurrently and reassembled by index before
// the final ascending sort.
// -----------------------------------------------------------------------------

const (
	maxBarsPerChunk = 300
	fetchTimeout    = 10 * time.Second
)

var errFetchTimeout = helpers.NewTransportError("candle fetch timed out", nil)

type chunkResult struct {
	index int
	bars  []models.MCandlestick
	err   error
}

// -----------------------------------------------------------------------------

func (s *Server) getCandles(c *gin.Context) {
	symbol := c.Query("symbol")
	timeframe := c.Query("timeframe")
	if symbol == "" || timeframe == "" {
		c.JSON(400, gin.H{"error": "symbol and timeframe are required"})
		return
	}

	granularity, ok := models.IntervalSeconds[timeframe]
	if !ok {
		c.JSON(400, gin.H{"error": "unknown timeframe " + timeframe})
		return
	}

	start, err1 := strconv.ParseInt(c.Query("start"), 10, 64)
	end, err2 := strconv.ParseInt(c.Query("end"), 10, 64)
	if err1 != nil || err2 != nil || end <= start {
		c.JSON(400, gin.H{"error": "start and end must be epoch seconds with start < end"})
		return
	}

	exchange := c.DefaultQuery("exchange", "coinbase")
	exCfg, ok := s.Config.Exchange(exchange)
	if !ok || exCfg.RestURL == "" {
		c.JSON(400, gin.H{"error": "exchange " + exchange + " not supported"})
		return
	}

	bars, err := s.fetchChunked(exCfg.RestURL, symbol, granularity, start, end)
	if err != nil {
		s.Logger.Error("Candle fetch for %s failed: %v", symbol, err)
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	rows := make([][]float64, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, []float64{
			float64(b.Time), b.Low, b.High, b.Open, b.Close, b.Volume,
		})
	}
	c.JSON(200, rows)
}

// -----------------------------------------------------------------------------

func (s *Server) fetchChunked(restURL, symbol string, granularity, start, end int64) ([]models.MCandlestick, error) {
	chunkSpan := maxBarsPerChunk * granularity

	type span struct{ start, end int64 }
	var spans []span
	for from := start; from < end; from += chunkSpan {
		to := from + chunkSpan
		if to > end {
			to = end
		}
		spans = append(spans, span{from, to})
	}

	results := make(chan chunkResult, len(spans))
	for i, sp := range spans {
		go func(index int, sp span) {
			raw, err := s.Network.Get(restURL+"/products/"+symbol+"/candles", map[string]string{
				"granularity": strconv.FormatInt(granularity, 10),
				"start":       time.Unix(sp.start, 0).UTC().Format(time.RFC3339),
				"end":         time.Unix(sp.end, 0).UTC().Format(time.RFC3339),
			})
			if err != nil {
				results <- chunkResult{index: index, err: err}
				return
			}
			bars, err := candles.ParseCandleRows(raw)
			results <- chunkResult{index: index, bars: bars, err: err}
		}(i, sp)
	}

	ordered := make([][]models.MCandlestick, len(spans))
	deadline := time.After(fetchTimeout)
	for range spans {
		select {
		case res := <-results:
			if res.err != nil {
				return nil, res.err
			}
			ordered[res.index] = res.bars
		case <-deadline:
			return nil, errFetchTimeout
		}
	}

	var bars []models.MCandlestick
	for _, chunk := range ordered {
		bars = append(bars, chunk...)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time < bars[j].Time })
	return bars, nil
}
