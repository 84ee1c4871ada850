package inmemdb

import (
	"time"

	"github.com/trezcool/mahudhurio/core/attendance"
)

type attendanceRepository struct {
	db *recordTable
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.records}
}

func (repo *attendanceRepository) AppendRecord(rec attendance.Record) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	rec.ID = repo.db.seq
	repo.db.table = append(repo.db.table, rec)
	return rec, nil
}

func (repo *attendanceRepository) FindByDevice(fingerprint string, since time.Time) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var recs []attendance.Record
	for _, rec := range repo.db.table {
		if rec.DeviceFingerprint == fingerprint && !rec.SubmittedAt.Before(since) {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (repo *attendanceRepository) FindByStudentAndSession(studentID, sessionID string) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var recs []attendance.Record
	for _, rec := range repo.db.table {
		if rec.StudentID == studentID && rec.SessionID == sessionID {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (repo *attendanceRepository) FilterRecords(filter attendance.QueryFilter) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]attendance.Record, 0, len(repo.db.table))
	for _, rec := range repo.db.table {
		if filter.SessionID != "" && rec.SessionID != filter.SessionID {
			continue
		}
		if filter.StudentID != "" && rec.StudentID != filter.StudentID {
			continue
		}
		if !filter.SubmittedFrom.IsZero() && rec.SubmittedAt.Before(filter.SubmittedFrom) {
			continue
		}
		if !filter.SubmittedTo.IsZero() && rec.SubmittedAt.After(filter.SubmittedTo) {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
