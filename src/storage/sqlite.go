package storage

import (
	"database/sql"
	"encoding/json"

	"chart-collab/src/helpers"
	"chart-collab/src/logger"
	"chart-collab/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------
// SQLite drawing store
//
// The cache must survive restarts, so tables are created once and kept.
// Drawing collections are stored whole as JSON per chart series; the
// session snapshot occupies a single fixed row.
// -----------------------------------------------------------------------------

type SQLiteStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteStore, error) {
	return &SQLiteStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS drawings (
			chart_id TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewPersistenceError("failed to create drawings table", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS app_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			payload TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewPersistenceError("failed to create app_state table", err)
	}

	d.Logger.Info("SQLiteStore initialized (%s)", d.Config.Storage.DBPath)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) SaveDrawings(chartID string, drawings []models.MDrawing) error {
	payload, err := json.Marshal(drawings)
	if err != nil {
		return helpers.NewPersistenceError("failed to encode drawings", err)
	}

	query := `
		INSERT INTO drawings (chart_id, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (chart_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP;
	`
	if _, err := d.DB.Exec(query, chartID, string(payload)); err != nil {
		return helpers.NewPersistenceError("failed to save drawings for "+chartID, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) LoadDrawings(chartID string) ([]models.MDrawing, error) {
	var payload string
	err := d.DB.QueryRow("SELECT payload FROM drawings WHERE chart_id = ?", chartID).Scan(&payload)
	if err == sql.ErrNoRows {
		return []models.MDrawing{}, nil
	}
	if err != nil {
		return nil, helpers.NewPersistenceError("failed to load drawings for "+chartID, err)
	}

	var drawings []models.MDrawing
	if err := json.Unmarshal([]byte(payload), &drawings); err != nil {
		return nil, helpers.NewPersistenceError("corrupt drawings payload for "+chartID, err)
	}
	if drawings == nil {
		drawings = []models.MDrawing{}
	}
	return drawings, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) SaveAppState(state models.MAppState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return helpers.NewPersistenceError("failed to encode app state", err)
	}

	query := `
		INSERT INTO app_state (id, payload, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP;
	`
	if _, err := d.DB.Exec(query, string(payload)); err != nil {
		return helpers.NewPersistenceError("failed to save app state", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) LoadAppState() (models.MAppState, bool, error) {
	var payload string
	err := d.DB.QueryRow("SELECT payload FROM app_state WHERE id = 1").Scan(&payload)
	if err == sql.ErrNoRows {
		return models.MAppState{}, false, nil
	}
	if err != nil {
		return models.MAppState{}, false, helpers.NewPersistenceError("failed to load app state", err)
	}

	var state models.MAppState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return models.MAppState{}, false, helpers.NewPersistenceError("corrupt app state payload", err)
	}
	return state, true, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}
