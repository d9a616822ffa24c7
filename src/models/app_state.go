package models

import "strings"

// -----------------------------------------------------------------------------
// MAppState is the aggregate root for one client session. It is created
// once from DefaultAppState (optionally overlaid with a cached snapshot)
// and mutated exclusively through the collab reducer.
// -----------------------------------------------------------------------------

type MAppState struct {
	LastSaved     string          `json:"lastSaved"`
	Collaboration MCollabState    `json:"collaboration"`
	Chart         MChartState     `json:"chart"`
}

type MCollabState struct {
	IsOpen      bool       `json:"isOpen"`
	DisplayName string     `json:"displayName"`
	Room        MRoomState `json:"room"`
}

type MRoomState struct {
	ID          string           `json:"id,omitempty"`
	IsHost      bool             `json:"isHost"`
	IsLoading   bool             `json:"isLoading"`
	ActiveUsers []string         `json:"activeUsers"`
	Status      ConnectionStatus `json:"status"`
}

type MChartState struct {
	ID       string         `json:"id"`
	Tools    MToolState     `json:"tools"`
	Drawings MDrawingState  `json:"drawings"`
	Settings MChartSettings `json:"settings"`
	Cursor   string         `json:"cursor"`
	Data     MChartData     `json:"data"`
}

type MToolState struct {
	ActiveTool string `json:"activeTool,omitempty"`
}

type MDrawingState struct {
	Collection []MDrawing `json:"collection"`
	SelectedID string     `json:"selected,omitempty"`
}

type MChartData struct {
	Style     string           `json:"style"`
	Symbol    string           `json:"symbol"`
	Timeframe string           `json:"timeframe"`
	Exchange  string           `json:"exchange"`
	Status    ConnectionStatus `json:"status"`
}

// -----------------------------------------------------------------------------
// Chart settings: an open bag of style fields the UI edits and peers sync.
// -----------------------------------------------------------------------------

type MChartSettings struct {
	IsOpen     bool            `json:"isOpen"`
	Background MBackgroundConf `json:"background"`
	Candles    MCandleStyle    `json:"candles"`
}

type MBackgroundConf struct {
	Theme string    `json:"theme"`
	Grid  MGridConf `json:"grid"`
}

type MGridConf struct {
	VertLines bool `json:"vertLines"`
	HorzLines bool `json:"horzLines"`
}

type MCandleStyle struct {
	UpColor       string `json:"upColor"`
	DownColor     string `json:"downColor"`
	BorderVisible bool   `json:"borderVisible"`
	WickUpColor   string `json:"wickUpColor"`
	WickDownColor string `json:"wickDownColor"`
}

// -----------------------------------------------------------------------------

const SoloDisplayName = "solo_user"

// ChartID derives the series key for a symbol/exchange pair. The chart id
// is always this value lowercased; nothing else may set it.
func ChartID(symbol, exchange string) string {
	return strings.ToLower(symbol) + ":" + strings.ToLower(exchange)
}

// -----------------------------------------------------------------------------

// DefaultAppState returns the solo-session baseline.
func DefaultAppState() MAppState {
	return MAppState{
		Collaboration: MCollabState{
			DisplayName: SoloDisplayName,
			Room: MRoomState{
				ActiveUsers: []string{},
				Status:      StatusDisconnected,
			},
		},
		Chart: MChartState{
			ID: ChartID("SOL-USD", "coinbase"),
			Drawings: MDrawingState{
				Collection: []MDrawing{},
			},
			Settings: MChartSettings{
				Background: MBackgroundConf{
					Theme: "dark",
					Grid:  MGridConf{VertLines: true, HorzLines: true},
				},
				Candles: MCandleStyle{
					UpColor:       "#26a69a",
					DownColor:     "#ef5350",
					WickUpColor:   "#26a69a",
					WickDownColor: "#ef5350",
				},
			},
			Cursor: "normal",
			Data: MChartData{
				Style:     "candle",
				Symbol:    "SOL-USD",
				Timeframe: "1m",
				Exchange:  "coinbase",
				Status:    StatusDisconnected,
			},
		},
	}
}

// -----------------------------------------------------------------------------

// Clone deep-copies the state. Reducers build their result on a clone so
// every Reduce call is referentially safe.
func (s MAppState) Clone() MAppState {
	out := s
	out.Collaboration.Room.ActiveUsers = append([]string{}, s.Collaboration.Room.ActiveUsers...)
	out.Chart.Drawings.Collection = CloneDrawings(s.Chart.Drawings.Collection)
	return out
}
