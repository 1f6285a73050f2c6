package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/beamlak/srts/internal/models"
)

const historyTable = "subtitle_history"

var historyColumns = []string{"id", "title", "year", "language", "download_url", "file_name", "created_at"}

var schemas = map[string]string{
	"sqlite3": `
	CREATE TABLE IF NOT EXISTS subtitle_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		year INTEGER,
		language TEXT NOT NULL,
		download_url TEXT NOT NULL,
		file_name TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_subtitle_history_created_at ON subtitle_history (created_at);
	`,
	"postgres": `
	CREATE TABLE IF NOT EXISTS subtitle_history (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		year INTEGER,
		language TEXT NOT NULL,
		download_url TEXT NOT NULL,
		file_name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_subtitle_history_created_at ON subtitle_history (created_at);
	`,
}

// HistoryStore persists HistoryRecords in a single table
type HistoryStore interface {
	Insert(ctx context.Context, rec *models.HistoryRecord) error
	List(ctx context.Context) ([]models.HistoryRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

type sqlHistoryStore struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

// OpenHistoryStore connects to the database selected by driver ("sqlite3" or "postgres")
// and creates the history table if it does not exist yet.
func OpenHistoryStore(driver, dsn string) (HistoryStore, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	qb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if driver == "sqlite3" {
		dsn = sqliteDSN(dsn)
	} else {
		qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite3" {
		// A single connection keeps in-memory databases alive and serializes writers.
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate history table: %w", err)
	}

	return &sqlHistoryStore{db: db, qb: qb}, nil
}

// sqliteDSN appends WAL and busy-timeout pragmas unless the DSN already carries options.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?_journal_mode=WAL&_busy_timeout=5000"
}

func (s *sqlHistoryStore) Insert(ctx context.Context, rec *models.HistoryRecord) error {
	query, args, err := s.qb.Insert(historyTable).
		Columns("title", "year", "language", "download_url", "file_name", "created_at").
		Values(rec.Title, rec.Year, rec.Language, rec.DownloadURL, rec.FileName, rec.CreatedAt.UTC()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&rec.ID); err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

func (s *sqlHistoryStore) List(ctx context.Context) ([]models.HistoryRecord, error) {
	query, args, err := s.qb.Select(historyColumns...).
		From(historyTable).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	records := []models.HistoryRecord{}
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	for i := range records {
		records[i].CreatedAt = records[i].CreatedAt.UTC()
	}
	return records, nil
}

func (s *sqlHistoryStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlHistoryStore) Close() error {
	return s.db.Close()
}
