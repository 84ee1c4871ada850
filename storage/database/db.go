package database

import (
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS attendance_record (
    id                 SERIAL PRIMARY KEY,
    session_id         TEXT        NOT NULL,
    student_name       TEXT        NOT NULL,
    student_id         TEXT        NOT NULL,
    device_fingerprint TEXT        NOT NULL,
    latitude           DOUBLE PRECISION NOT NULL,
    longitude          DOUBLE PRECISION NOT NULL,
    submitted_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS attendance_record_device_idx ON attendance_record (device_fingerprint, submitted_at);
CREATE INDEX IF NOT EXISTS attendance_record_student_session_idx ON attendance_record (student_id, session_id);
`

func Open(conf *core.Config) (*sqlx.DB, error) {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Database.Engine,
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.Database.Host + ":" + conf.Database.Port,
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}
	db, err := sqlx.Open(conf.Database.Engine, u.String())
	return db, errors.Wrap(err, "opening database")
}

// Ping waits for the database to be ready. Waits 100ms longer between each attempt.
func Ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate brings the schema up to date. The schema is small enough that
// idempotent DDL beats a migration tool here.
func Migrate(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	return errors.Wrap(err, "migrating database")
}
