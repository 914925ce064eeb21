package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/cwygoda/jobtrack/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY,
  source TEXT,
  url TEXT UNIQUE,
  company TEXT,
  title TEXT,
  location TEXT,
  salary TEXT,
  posted_date TEXT,
  deadline TEXT,
  job_type TEXT,
  experience_level TEXT,
  notes TEXT,
  status TEXT DEFAULT 'Saved',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
`

const selectColumns = `id, COALESCE(source, ''), COALESCE(url, ''), COALESCE(company, ''),
	COALESCE(title, ''), COALESCE(location, ''), COALESCE(salary, ''),
	COALESCE(posted_date, ''), COALESCE(deadline, ''), COALESCE(job_type, ''),
	COALESCE(experience_level, ''), COALESCE(notes, ''), COALESCE(status, ''),
	COALESCE(created_at, '')`

// Repository implements domain.JobRepository using SQLite.
type Repository struct {
	db  *sql.DB
	log *zap.Logger
}

// New opens (or creates) the database at dbPath in WAL mode and makes sure
// the jobs table exists with the expected columns.
func New(dbPath string, log *zap.Logger) (*Repository, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	if err := verifySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug("database ready", zap.String("path", dbPath))
	return &Repository{db: db, log: log}, nil
}

func dsn(dbPath string) string {
	return "file:" + dbPath +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=synchronous(FULL)"
}

// verifySchema compares the live column set against domain.JobColumns.
func verifySchema(db *sql.DB) error {
	rows, err := db.Query(`PRAGMA table_info(jobs)`)
	if err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}
	defer rows.Close()

	var got []string
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return fmt.Errorf("inspect schema: %w", err)
		}
		got = append(got, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}

	if strings.Join(got, ",") != strings.Join(domain.JobColumns, ",") {
		return fmt.Errorf("%w: have columns [%s], want [%s]",
			domain.ErrSchemaMismatch, strings.Join(got, ", "), strings.Join(domain.JobColumns, ", "))
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Put inserts job, leaving status and created_at to their column defaults.
// The UNIQUE constraint on url decides duplicates, so concurrent writers
// against the same file cannot create a second row.
func (r *Repository) Put(ctx context.Context, job *domain.Job) (bool, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO jobs (source, url, company, title, location, salary,
		                   posted_date, deadline, job_type, experience_level, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO NOTHING
		 RETURNING id, COALESCE(status, ''), COALESCE(created_at, '')`,
		nullable(job.Source), job.URL, nullable(job.Company), nullable(job.Title),
		nullable(job.Location), nullable(job.Salary), nullable(job.PostedDate),
		nullable(job.Deadline), nullable(job.JobType), nullable(job.ExperienceLevel),
		nullable(job.Notes),
	)

	var status string
	err := row.Scan(&job.ID, &status, &job.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		r.log.Debug("duplicate url ignored", zap.String("url", job.URL))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert job: %w", err)
	}
	job.Status = domain.Status(status)
	return true, nil
}

// Get retrieves a job by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*domain.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM jobs WHERE id = ?`, id,
	)
	return scanJob(row)
}

// GetByURL retrieves a job by its unique URL.
func (r *Repository) GetByURL(ctx context.Context, url string) (*domain.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM jobs WHERE url = ?`, url,
	)
	return scanJob(row)
}

// List returns jobs matching filter, newest first.
func (r *Repository) List(ctx context.Context, filter domain.Filter) ([]domain.Job, error) {
	where, args := buildWhere(filter)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM jobs WHERE `+where+` ORDER BY created_at DESC, id DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func buildWhere(f domain.Filter) (string, []any) {
	clauses := []string{"1=1"}
	var args []any

	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + likeEscaper.Replace(s) + "%"
		clauses = append(clauses, `(company LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\' OR url LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}
	if len(f.Statuses) > 0 {
		marks := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			marks[i] = "?"
			args = append(args, string(st))
		}
		clauses = append(clauses, "status IN ("+strings.Join(marks, ",")+")")
	}
	for _, eq := range []struct {
		column string
		value  string
	}{
		{"source", f.Source},
		{"company", f.Company},
		{"title", f.Title},
		{"location", f.Location},
		{"job_type", f.JobType},
		{"experience_level", f.ExperienceLevel},
	} {
		if eq.value == "" {
			continue
		}
		clauses = append(clauses, eq.column+" = ? COLLATE NOCASE")
		args = append(args, eq.value)
	}
	return strings.Join(clauses, " AND "), args
}

// Count returns the number of stored jobs.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return n, nil
}

// UpdateStatus sets the status of a job.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	return r.execOne(ctx, `UPDATE jobs SET status = ? WHERE id = ?`, string(status), id)
}

// UpdateNotes replaces the notes of a job.
func (r *Repository) UpdateNotes(ctx context.Context, id int64, notes string) error {
	return r.execOne(ctx, `UPDATE jobs SET notes = ? WHERE id = ?`, nullable(notes), id)
}

// Delete removes a job.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM jobs WHERE id = ?`, id)
}

func (r *Repository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// nullable maps absent (empty) fields to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*domain.Job, error) {
	var job domain.Job
	var status string
	err := row.Scan(
		&job.ID, &job.Source, &job.URL, &job.Company, &job.Title, &job.Location,
		&job.Salary, &job.PostedDate, &job.Deadline, &job.JobType,
		&job.ExperienceLevel, &job.Notes, &status, &job.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	job.Status = domain.Status(status)
	return &job, nil
}
