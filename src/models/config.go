package models

// MConfig Structure
type MConfig struct {
	Name      string            `yaml:"name"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	LogLevel  string            `yaml:"log_level"`
	Storage   MStorageConfig    `yaml:"storage"`
	Network   MNetworkConfig    `yaml:"network"`
	Exchanges []MExchangeConfig `yaml:"exchanges"`
	Collab    MCollabConfig     `yaml:"collab"`
	History   MHistoryConfig    `yaml:"history"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}

// MExchangeConfig describes one upstream streaming feed.
type MExchangeConfig struct {
	Name      string           `yaml:"name"`
	WSURL     string           `yaml:"ws_url"`
	RestURL   string           `yaml:"rest_url"`
	Reconnect MReconnectConfig `yaml:"reconnect"`
}

// MReconnectConfig holds the exponential backoff policy for one exchange.
// Zero values fall back to the defaults in src/feed.
type MReconnectConfig struct {
	InitialDelayMs int `yaml:"initial_delay_ms"`
	MaxDelayMs     int `yaml:"max_delay_ms"`
	MaxAttempts    int `yaml:"max_attempts"`
}

// MCollabConfig points the engine at the room server.
type MCollabConfig struct {
	ServerHost string `yaml:"server_host"` // host:port, no scheme
}

// MHistoryConfig points the candle backfill at the /candles endpoint.
type MHistoryConfig struct {
	BaseURL string `yaml:"base_url"`
}
