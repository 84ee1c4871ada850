package sqlxrepos

import (
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) AppendRecord(rec attendance.Record) (attendance.Record, error) {
	const q = `
INSERT INTO attendance_record (session_id, student_name, student_id, device_fingerprint, latitude, longitude, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err := repo.db.QueryRow(
		q, rec.SessionID, rec.StudentName, rec.StudentID, rec.DeviceFingerprint, rec.Latitude, rec.Longitude, rec.SubmittedAt,
	).Scan(&rec.ID)
	return rec, errors.Wrap(err, "appending record")
}

func (repo *attendanceRepository) FindByDevice(fingerprint string, since time.Time) ([]attendance.Record, error) {
	const q = `
SELECT * FROM attendance_record
WHERE device_fingerprint = $1 AND submitted_at >= $2
ORDER BY submitted_at`
	recs := make([]attendance.Record, 0)
	err := repo.db.Select(&recs, q, fingerprint, since)
	return recs, errors.Wrap(err, "finding records by device")
}

func (repo *attendanceRepository) FindByStudentAndSession(studentID, sessionID string) ([]attendance.Record, error) {
	const q = `
SELECT * FROM attendance_record
WHERE student_id = $1 AND session_id = $2
ORDER BY submitted_at`
	recs := make([]attendance.Record, 0)
	err := repo.db.Select(&recs, q, studentID, sessionID)
	return recs, errors.Wrap(err, "finding records by student and session")
}

func (repo *attendanceRepository) FilterRecords(filter attendance.QueryFilter) ([]attendance.Record, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.SessionID != "" {
		conds = append(conds, "session_id = "+arg(filter.SessionID))
	}
	if filter.StudentID != "" {
		conds = append(conds, "student_id = "+arg(filter.StudentID))
	}
	if !filter.SubmittedFrom.IsZero() {
		conds = append(conds, "submitted_at >= "+arg(filter.SubmittedFrom))
	}
	if !filter.SubmittedTo.IsZero() {
		conds = append(conds, "submitted_at <= "+arg(filter.SubmittedTo))
	}

	q := "SELECT * FROM attendance_record"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY submitted_at"

	recs := make([]attendance.Record, 0)
	err := repo.db.Select(&recs, q, args...)
	return recs, errors.Wrap(err, "filtering records")
}
