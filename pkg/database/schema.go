package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Default credential seeded on first run. Operators are expected to rotate it.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"
)

// Subjects created before course/semester tracking existed get these values
// so the unique index can be built without violations.
const (
	backfillCourse   = "BCom"
	backfillSemester = 1
)

var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id SERIAL PRIMARY KEY,
		usn TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		phone TEXT,
		class TEXT NOT NULL,
		department TEXT NOT NULL,
		parent_name TEXT,
		parent_phone TEXT,
		parent_email TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id SERIAL PRIMARY KEY,
		student_id INTEGER NOT NULL REFERENCES students (id) ON DELETE CASCADE,
		date DATE NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('Present', 'Absent')),
		UNIQUE (student_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		due_date DATE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS student_tasks (
		id SERIAL PRIMARY KEY,
		task_id INTEGER NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
		student_id INTEGER NOT NULL REFERENCES students (id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'Completed')),
		completed_date DATE,
		UNIQUE (task_id, student_id)
	)`,
	`CREATE TABLE IF NOT EXISTS subjects (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		course TEXT,
		semester INTEGER,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS marks (
		id SERIAL PRIMARY KEY,
		student_id INTEGER NOT NULL REFERENCES students (id) ON DELETE CASCADE,
		subject_id INTEGER NOT NULL REFERENCES subjects (id) ON DELETE CASCADE,
		exam_type TEXT NOT NULL,
		marks_obtained DOUBLE PRECISION NOT NULL,
		max_marks DOUBLE PRECISION NOT NULL,
		exam_date DATE,
		remarks TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id SERIAL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL
	)`,
}

// Additive migrations for databases created before these columns existed.
var migrateStatements = []string{
	`ALTER TABLE students ADD COLUMN IF NOT EXISTS parent_name TEXT`,
	`ALTER TABLE students ADD COLUMN IF NOT EXISTS parent_phone TEXT`,
	`ALTER TABLE students ADD COLUMN IF NOT EXISTS parent_email TEXT`,
	`ALTER TABLE subjects ADD COLUMN IF NOT EXISTS course TEXT`,
	`ALTER TABLE subjects ADD COLUMN IF NOT EXISTS semester INTEGER`,
}

// Course and semester are backfilled before the unique index is built so
// the index can be created without violations.
var backfillStatements = []struct {
	query string
	arg   interface{}
}{
	{`UPDATE subjects SET course = $1 WHERE course IS NULL`, backfillCourse},
	{`UPDATE subjects SET semester = $1 WHERE semester IS NULL`, backfillSemester},
}

const createSubjectIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_subjects_unique ON subjects (name, course, semester)`

// Migrate brings the schema to its current shape. It is idempotent: every
// statement is create-if-missing or additive, so running it against an
// up-to-date database changes nothing.
func Migrate(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, stmt := range createStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	for _, stmt := range migrateStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	for _, backfill := range backfillStatements {
		if _, err := db.ExecContext(ctx, backfill.query, backfill.arg); err != nil {
			return fmt.Errorf("backfill subjects: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, createSubjectIndex); err != nil {
		return fmt.Errorf("create subject index: %w", err)
	}

	seeded, err := seedAdmin(ctx, db)
	if err != nil {
		return err
	}
	if seeded {
		logger.Warn("seeded default admin account; change the password",
			zap.String("username", DefaultAdminUsername))
	}

	logger.Info("schema up to date")
	return nil
}

// seedAdmin inserts the default admin account when the table is empty.
// It never re-seeds once any account exists.
func seedAdmin(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admins`); err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash default password: %w", err)
	}

	const query = `INSERT INTO admins (username, password_hash) VALUES ($1, $2)`
	if _, err := db.ExecContext(ctx, query, DefaultAdminUsername, string(hash)); err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}
