package storage

import (
	"database/sql"
	"encoding/json"

	"chart-collab/src/helpers"
	"chart-collab/src/logger"
	"chart-collab/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------
// Postgres drawing store. Same contract as the SQLite store for shared
// deployments where several chart workstations point at one database.
// -----------------------------------------------------------------------------

type PostgresStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresStore(cfg *models.MConfig, log *logger.Logger) (*PostgresStore, error) {
	return &PostgresStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db
	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS drawings (
			chart_id TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewPersistenceError("failed to create drawings table", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS app_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewPersistenceError("failed to create app_state table", err)
	}

	d.Logger.Info("PostgresStore initialized")
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) SaveDrawings(chartID string, drawings []models.MDrawing) error {
	payload, err := json.Marshal(drawings)
	if err != nil {
		return helpers.NewPersistenceError("failed to encode drawings", err)
	}

	query := `
		INSERT INTO drawings (chart_id, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (chart_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = NOW();
	`
	if _, err := d.DB.Exec(query, chartID, string(payload)); err != nil {
		return helpers.NewPersistenceError("failed to save drawings for "+chartID, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) LoadDrawings(chartID string) ([]models.MDrawing, error) {
	var payload string
	err := d.DB.QueryRow("SELECT payload FROM drawings WHERE chart_id = $1", chartID).Scan(&payload)
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

func (d *PostgresStore) SaveAppState(state models.MAppState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return helpers.NewPersistenceError("failed to encode app state", err)
	}

	query := `
		INSERT INTO app_state (id, payload, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = NOW();
	`
	if _, err := d.DB.Exec(query, string(payload)); err != nil {
		return helpers.NewPersistenceError("failed to save app state", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) LoadAppState() (models.MAppState, bool, error) {
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

func (d *PostgresStore) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}
