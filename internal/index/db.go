package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS runs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    file_path   TEXT NOT NULL,
    file_mtime  INTEGER NOT NULL DEFAULT 0,
    file_size   INTEGER NOT NULL DEFAULT 0,
    charset     TEXT NOT NULL DEFAULT '',
    start_date  TEXT NOT NULL,
    end_date    TEXT NOT NULL,
    lexicon_fp  TEXT NOT NULL,
    line_count  INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS runs_key ON runs (file_path, start_date, end_date, lexicon_fp);

CREATE TABLE IF NOT EXISTS results (
    run_id      INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    rank        INTEGER NOT NULL,
    author_id   TEXT NOT NULL,
    nickname    TEXT NOT NULL DEFAULT '',
    idx         REAL NOT NULL,
    score       INTEGER NOT NULL,
    messages    INTEGER NOT NULL,
    top_keyword TEXT NOT NULL DEFAULT '',
    first_line  INTEGER NOT NULL DEFAULT 0,
    hits_json   TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY (run_id, author_id)
);

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// schemaVersion should be bumped whenever scoring changes so that cached
// runs are recomputed.
const schemaVersion = "1"

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// foreign_keys is per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

func (d *DB) migrateSchemaVersion() error {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err == nil && ver == schemaVersion {
		return nil
	}
	// drop cached results computed by an older scorer
	if _, err := d.db.Exec("DELETE FROM runs"); err != nil {
		return err
	}
	_, err = d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

// RunKey identifies the inputs of an analysis: a file version, a window and
// a lexicon.
type RunKey struct {
	FilePath  string
	Mtime     int64
	Size      int64
	StartDate string
	EndDate   string
	LexiconFP string
}

type Run struct {
	ID int64
	RunKey
	Charset   string
	LineCount int
	CreatedAt string
	RowCount  int
}

const runColumns = `r.id, r.file_path, r.file_mtime, r.file_size, r.charset, r.start_date, r.end_date,
	r.lexicon_fp, r.line_count, r.created_at,
	(SELECT COUNT(*) FROM results WHERE run_id = r.id)`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var r Run
	err := s.Scan(&r.ID, &r.FilePath, &r.Mtime, &r.Size, &r.Charset, &r.StartDate, &r.EndDate,
		&r.LexiconFP, &r.LineCount, &r.CreatedAt, &r.RowCount)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindRun returns the newest run for exactly this key, or nil.
func (d *DB) FindRun(key RunKey) (*Run, error) {
	row := d.db.QueryRow(`SELECT `+runColumns+` FROM runs r
		WHERE r.file_path = ? AND r.file_mtime = ? AND r.file_size = ?
		  AND r.start_date = ? AND r.end_date = ? AND r.lexicon_fp = ?
		ORDER BY r.id DESC LIMIT 1`,
		key.FilePath, key.Mtime, key.Size, key.StartDate, key.EndDate, key.LexiconFP)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

func (d *DB) GetRun(id int64) (*Run, error) {
	row := d.db.QueryRow(`SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return run, err
}

// ListRuns returns runs newest first. limit <= 0 means no limit.
func (d *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(`SELECT `+runColumns+` FROM runs r ORDER BY r.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// SaveRun stores a run and its ranked rows, replacing older runs with the
// same key. It returns the new run id.
func (d *DB) SaveRun(run *Run, results []analyze.Row) (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM runs WHERE file_path = ? AND start_date = ? AND end_date = ? AND lexicon_fp = ?`,
		run.FilePath, run.StartDate, run.EndDate, run.LexiconFP)
	if err != nil {
		return 0, err
	}

	res, err := tx.Exec(
		`INSERT INTO runs (file_path, file_mtime, file_size, charset, start_date, end_date, lexicon_fp, line_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.FilePath, run.Mtime, run.Size, run.Charset, run.StartDate, run.EndDate,
		run.LexiconFP, run.LineCount, run.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO results (run_id, rank, author_id, nickname, idx, score, messages, top_keyword, first_line, hits_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range results {
		hits, err := json.Marshal(r.Hits)
		if err != nil {
			return 0, err
		}
		_, err = stmt.Exec(id, r.Rank, r.AuthorID, r.Nickname, r.Index, r.Score, r.Messages,
			r.TopKeyword, r.FirstLine, string(hits))
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	run.ID = id
	run.RowCount = len(results)
	return id, nil
}

// GetRows returns the rows of a run in rank order.
func (d *DB) GetRows(runID int64) ([]analyze.Row, error) {
	rows, err := d.db.Query(
		`SELECT rank, author_id, nickname, idx, score, messages, top_keyword, first_line, hits_json
		 FROM results WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analyze.Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRow(s scanner, extra ...any) (analyze.Row, error) {
	var r analyze.Row
	var hits string
	dest := append([]any{&r.Rank, &r.AuthorID, &r.Nickname, &r.Index, &r.Score, &r.Messages,
		&r.TopKeyword, &r.FirstLine, &hits}, extra...)
	if err := s.Scan(dest...); err != nil {
		return r, err
	}
	if err := json.Unmarshal([]byte(hits), &r.Hits); err != nil {
		return r, fmt.Errorf("decode hits of %s: %w", r.AuthorID, err)
	}
	return r, nil
}

// ScanRow reads the row columns followed by extra destinations; used by
// queries joining rows with other tables.
func ScanRow(s scanner, extra ...any) (analyze.Row, error) {
	return scanRow(s, extra...)
}

// RowColumns lists the results-table columns in ScanRow order, qualified by alias.
func RowColumns(alias string) string {
	a := alias + "."
	return a + "rank, " + a + "author_id, " + a + "nickname, " + a + "idx, " + a + "score, " +
		a + "messages, " + a + "top_keyword, " + a + "first_line, " + a + "hits_json"
}

func (d *DB) DeleteRun(id int64) error {
	res, err := d.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return nil
}

// PruneMissing deletes runs whose transcript file no longer exists.
func (d *DB) PruneMissing() (int, error) {
	runs, err := d.ListRuns(0)
	if err != nil {
		return 0, err
	}
	pruned := 0
	for _, r := range runs {
		if _, err := os.Stat(r.FilePath); !os.IsNotExist(err) {
			continue
		}
		if err := d.DeleteRun(r.ID); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

func (d *DB) RunCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n)
	return n, err
}

func (d *DB) RowCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM results").Scan(&n)
	return n, err
}
