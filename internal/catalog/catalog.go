package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/basekick-labs/pqdif/pkg/logical"
	"github.com/basekick-labs/pqdif/pkg/models"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Catalog records indexed PQDIF files and their observations in SQLite
type Catalog struct {
	db     *sql.DB
	logger zerolog.Logger
}

// FileInfo is the storage metadata of an indexed object
type FileInfo struct {
	Size     int64
	Modified time.Time
}

// Filter selects observations in Search. Zero fields match everything.
type Filter struct {
	Name       string // substring of the observation name
	DataSource string // exact data source name
	File       string // exact file path
	From       time.Time
	To         time.Time
	Limit      int
}

// Open opens or creates the catalog database at dbPath
func Open(dbPath string, logger zerolog.Logger) (*Catalog, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Limit connections for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	c := &Catalog{
		db:     db,
		logger: logger.With().Str("component", "catalog").Logger(),
	}

	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return c, nil
}

func (c *Catalog) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pqdif_files (
		path TEXT PRIMARY KEY,
		file_name TEXT,
		created_us INTEGER,
		observations INTEGER NOT NULL DEFAULT 0,
		size INTEGER NOT NULL DEFAULT 0,
		modified_us INTEGER,
		indexed_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pqdif_observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file TEXT NOT NULL REFERENCES pqdif_files(path) ON DELETE CASCADE,
		ordinal INTEGER NOT NULL,
		name TEXT,
		start_us INTEGER,
		trigger_us INTEGER,
		data_source TEXT,
		channel_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_pqdif_observations_file ON pqdif_observations(file);
	CREATE INDEX IF NOT EXISTS idx_pqdif_observations_start ON pqdif_observations(start_us);
	CREATE INDEX IF NOT EXISTS idx_pqdif_observations_data_source ON pqdif_observations(data_source);
	`

	_, err := c.db.Exec(schema)
	return err
}

// Close closes the database connection
func (c *Catalog) Close() error {
	return c.db.Close()
}

// NeedsIndex reports whether path is unknown to the catalog or has changed
// size or modification time since it was indexed.
func (c *Catalog) NeedsIndex(ctx context.Context, path string, info FileInfo) (bool, error) {
	var size int64
	var modified sql.NullInt64
	err := c.db.QueryRowContext(ctx,
		`SELECT size, modified_us FROM pqdif_files WHERE path = ?`, path,
	).Scan(&size, &modified)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up file: %w", err)
	}
	var want int64
	if !info.Modified.IsZero() {
		want = toMicros(info.Modified)
	}
	return size != info.Size || modified.Int64 != want, nil
}

// IndexFile reads every observation from p and replaces the catalog entries
// for path. Observations that cannot be read are skipped and logged.
func (c *Catalog) IndexFile(ctx context.Context, path string, info FileInfo, p *logical.Parser) (*models.FileSummary, error) {
	summary := &models.FileSummary{
		Path:      path,
		Size:      info.Size,
		Modified:  info.Modified,
		IndexedAt: time.Now().UTC(),
	}
	if container := p.ContainerRecord(); container != nil {
		var err error
		if summary.FileName, err = container.FileName(); err != nil {
			c.fieldWarning(path, -1, "file_name", err)
		}
		if summary.Created, err = container.Creation(); err != nil {
			c.fieldWarning(path, -1, "creation", err)
		}
	}

	var observations []models.ObservationSummary
	for ordinal := 0; ; ordinal++ {
		ok, err := p.HasNextObservationRecord()
		if err != nil {
			if logical.IsFatal(err) {
				return nil, err
			}
			c.logger.Warn().Err(err).Str("file", path).Msg("Skipping unreadable observation")
			continue
		}
		if !ok {
			break
		}
		obs, err := p.NextObservationRecord()
		if err != nil {
			return nil, err
		}
		observations = append(observations, c.summarize(path, ordinal, obs))
	}
	summary.Observations = len(observations)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pqdif_observations WHERE file = ?`, path); err != nil {
		return nil, fmt.Errorf("failed to clear observations: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO pqdif_files (path, file_name, created_us, observations, size, modified_us, indexed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET
		file_name = excluded.file_name,
		created_us = excluded.created_us,
		observations = excluded.observations,
		size = excluded.size,
		modified_us = excluded.modified_us,
		indexed_at = excluded.indexed_at
	`,
		path, summary.FileName, nullableMicros(summary.Created), summary.Observations,
		summary.Size, nullableMicros(summary.Modified), summary.IndexedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert file: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pqdif_observations (file, ordinal, name, start_us, trigger_us, data_source, channel_count)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range observations {
		var trigger interface{}
		if o.TriggerTime != nil {
			trigger = toMicros(*o.TriggerTime)
		}
		if _, err := stmt.ExecContext(ctx,
			o.File, o.Ordinal, o.Name, nullableMicros(o.Start), trigger, o.DataSource, o.ChannelCount,
		); err != nil {
			return nil, fmt.Errorf("failed to insert observation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit index: %w", err)
	}

	c.logger.Debug().
		Str("file", path).
		Int("observations", summary.Observations).
		Msg("Indexed file")
	return summary, nil
}

// summarize reads the searchable fields of obs. Unreadable fields stay empty
// and are logged.
func (c *Catalog) summarize(path string, ordinal int, obs *logical.ObservationRecord) models.ObservationSummary {
	s := models.ObservationSummary{
		File:         path,
		Ordinal:      ordinal,
		ChannelCount: len(obs.ChannelInstances()),
	}
	var err error
	if s.Name, err = obs.Name(); err != nil {
		c.fieldWarning(path, ordinal, "name", err)
	}
	if s.Start, err = obs.StartTime(); err != nil {
		c.fieldWarning(path, ordinal, "start", err)
	}

	// The trigger time is optional
	t, err := obs.TimeTriggered()
	switch {
	case err == nil:
		s.TriggerTime = &t
	case !errors.Is(err, logical.ErrMissingTag):
		c.fieldWarning(path, ordinal, "trigger_time", err)
	}

	if ds := obs.DataSource(); ds != nil {
		if s.DataSource, err = ds.Name(); err != nil {
			c.fieldWarning(path, ordinal, "data_source", err)
		}
	}
	return s
}

// fieldWarning logs a field indexed as empty; ordinal -1 means the container.
func (c *Catalog) fieldWarning(path string, ordinal int, field string, err error) {
	event := c.logger.Warn().Err(err).Str("file", path).Str("field", field)
	if ordinal >= 0 {
		event = event.Int("ordinal", ordinal)
	}
	event.Msg("Indexing unreadable field as empty")
}

// RemoveFile deletes path and its observations from the catalog
func (c *Catalog) RemoveFile(ctx context.Context, path string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM pqdif_files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// Files lists every indexed file ordered by path
func (c *Catalog) Files(ctx context.Context) ([]models.FileSummary, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT path, file_name, created_us, observations, size, modified_us, indexed_at
	FROM pqdif_files
	ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []models.FileSummary
	for rows.Next() {
		var f models.FileSummary
		var fileName sql.NullString
		var created, modified sql.NullInt64
		var indexedAt string
		if err := rows.Scan(&f.Path, &fileName, &created, &f.Observations, &f.Size, &modified, &indexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		f.FileName = fileName.String
		f.Created = fromMicros(created)
		f.Modified = fromMicros(modified)
		if f.IndexedAt, err = time.Parse(time.RFC3339, indexedAt); err != nil {
			c.logger.Warn().Err(err).Str("file", f.Path).Str("indexed_at", indexedAt).Msg("Invalid indexed_at in catalog")
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating files: %w", err)
	}
	return files, nil
}

// Search returns observations matching f ordered by start time
func (c *Catalog) Search(ctx context.Context, f Filter) ([]models.ObservationSummary, error) {
	var where []string
	var args []interface{}

	if f.Name != "" {
		where = append(where, "name LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(f.Name)+"%")
	}
	if f.DataSource != "" {
		where = append(where, "data_source = ?")
		args = append(args, f.DataSource)
	}
	if f.File != "" {
		where = append(where, "file = ?")
		args = append(args, f.File)
	}
	if !f.From.IsZero() {
		where = append(where, "start_us >= ?")
		args = append(args, toMicros(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "start_us < ?")
		args = append(args, toMicros(f.To))
	}

	query := `SELECT file, ordinal, name, start_us, trigger_us, data_source, channel_count FROM pqdif_observations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_us, file, ordinal"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search observations: %w", err)
	}
	defer rows.Close()

	var results []models.ObservationSummary
	for rows.Next() {
		var o models.ObservationSummary
		var name, dataSource sql.NullString
		var start, trigger sql.NullInt64
		if err := rows.Scan(&o.File, &o.Ordinal, &name, &start, &trigger, &dataSource, &o.ChannelCount); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		o.Name = name.String
		o.DataSource = dataSource.String
		o.Start = fromMicros(start)
		if trigger.Valid {
			t := fromMicros(trigger)
			o.TriggerTime = &t
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating observations: %w", err)
	}
	return results, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func nullableMicros(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return toMicros(t)
}

func fromMicros(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.UnixMicro(v.Int64).UTC()
}
