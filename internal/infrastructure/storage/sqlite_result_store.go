package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"wsi-recon/internal/domain/entity"
	"wsi-recon/internal/domain/port"
)

// SQLiteResultStore сохраняет согласованные прогоны в базе SQLite.
type SQLiteResultStore struct {
	conn *sql.DB
}

// NewSQLiteResultStore открывает (и при необходимости создаёт) базу по пути dbPath.
func NewSQLiteResultStore(dbPath string) (*SQLiteResultStore, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	s := &SQLiteResultStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteResultStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		slide_path TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		levels INTEGER DEFAULT 0,
		mpp REAL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS regions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		class TEXT NOT NULL,
		x1 REAL NOT NULL,
		y1 REAL NOT NULL,
		x2 REAL NOT NULL,
		y2 REAL NOT NULL,
		confidence REAL DEFAULT 0,
		polygon TEXT,
		area_ratio REAL,
		perimeter_ratio REAL,
		fallback INTEGER DEFAULT 0,
		over_budget INTEGER DEFAULT 0,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_regions_run_id ON regions(run_id);
	CREATE INDEX IF NOT EXISTS idx_regions_class ON regions(class);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close закрывает соединение с базой.
func (s *SQLiteResultStore) Close() error {
	return s.conn.Close()
}

// SaveRun записывает прогон и его регионы одной транзакцией.
func (s *SQLiteResultStore) SaveRun(ctx context.Context, run *entity.RunResult) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, slide_path, width, height, levels, mpp) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Slide.Path, run.Slide.Width, run.Slide.Height, run.Slide.Levels, run.Slide.MPP,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, region := range run.Regions {
		polygon, err := marshalPolygon(region.Polygon)
		if err != nil {
			return err
		}

		var areaRatio, perimeterRatio sql.NullFloat64
		var fallback, overBudget bool
		if region.Quality != nil {
			areaRatio = sql.NullFloat64{Float64: region.Quality.AreaRatio, Valid: true}
			perimeterRatio = sql.NullFloat64{Float64: region.Quality.PerimeterRatio, Valid: true}
			fallback = region.Quality.Fallback
			overBudget = region.Quality.OverBudget
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO regions (run_id, class, x1, y1, x2, y2, confidence, polygon, area_ratio, perimeter_ratio, fallback, over_budget)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, region.Class,
			region.Box.Start.X, region.Box.Start.Y, region.Box.End.X, region.Box.End.Y,
			region.Confidence, polygon, areaRatio, perimeterRatio, fallback, overBudget,
		)
		if err != nil {
			return fmt.Errorf("failed to insert region: %w", err)
		}
	}

	return tx.Commit()
}

// GetRun загружает прогон и его регионы.
func (s *SQLiteResultStore) GetRun(ctx context.Context, id string) (*entity.RunResult, error) {
	run := &entity.RunResult{ID: id}
	err := s.conn.QueryRowContext(ctx,
		`SELECT slide_path, width, height, levels, mpp FROM runs WHERE id = ?`, id,
	).Scan(&run.Slide.Path, &run.Slide.Width, &run.Slide.Height, &run.Slide.Levels, &run.Slide.MPP)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT class, x1, y1, x2, y2, confidence, polygon, area_ratio, perimeter_ratio, fallback, over_budget
		 FROM regions WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load regions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var region entity.MergedDetection
		var polygon sql.NullString
		var areaRatio, perimeterRatio sql.NullFloat64
		var fallback, overBudget bool

		err := rows.Scan(&region.Class,
			&region.Box.Start.X, &region.Box.Start.Y, &region.Box.End.X, &region.Box.End.Y,
			&region.Confidence, &polygon, &areaRatio, &perimeterRatio, &fallback, &overBudget)
		if err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}

		if polygon.Valid && polygon.String != "" {
			region.Polygon, err = unmarshalPolygon(polygon.String)
			if err != nil {
				return nil, err
			}
		}
		if areaRatio.Valid {
			region.Quality = &entity.SimplifyQuality{
				AreaRatio:      areaRatio.Float64,
				PerimeterRatio: perimeterRatio.Float64,
				Fallback:       fallback,
				OverBudget:     overBudget,
			}
		}
		run.Regions = append(run.Regions, region)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	run.Stats = entity.ComputeStatistics(run.Regions)
	return run, nil
}

func marshalPolygon(p entity.Polygon) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	coords := make([][2]float64, len(p))
	for i, pt := range p {
		coords[i] = [2]float64{pt.X, pt.Y}
	}
	data, err := json.Marshal(coords)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode polygon: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalPolygon(data string) (entity.Polygon, error) {
	var coords [][2]float64
	if err := json.Unmarshal([]byte(data), &coords); err != nil {
		return nil, fmt.Errorf("failed to decode polygon: %w", err)
	}
	poly := make(entity.Polygon, len(coords))
	for i, c := range coords {
		poly[i] = entity.Point{X: c[0], Y: c[1]}
	}
	return poly, nil
}

var _ port.ResultStore = (*SQLiteResultStore)(nil)
