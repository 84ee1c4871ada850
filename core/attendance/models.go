package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
)

// Session is a time- and location-bound attendance window. It is never mutated
// after creation; closing stamps ClosedAt and replacement creates a new one.
type Session struct {
	ID           string     `json:"id"`
	Subject      string     `json:"subject"`
	AnchorLat    float64    `json:"anchor_lat"`
	AnchorLon    float64    `json:"anchor_lon"`
	RadiusMeters float64    `json:"radius_meters"`
	CreatedAt    time.Time  `json:"created_at"` // UTC
	ExpiresAt    time.Time  `json:"expires_at"` // UTC
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
}

func (s Session) IsClosed() bool { return s.ClosedAt != nil }

// IsExpired reports whether the session's validity window has passed.
// A submission at exactly ExpiresAt is still accepted.
func (s Session) IsExpired(now time.Time) bool { return now.After(s.ExpiresAt) }

// Record is an accepted attendance claim. Created only through successful
// validation; immutable once created; persisted append-only.
type Record struct {
	ID                int       `json:"id" db:"id"`
	SessionID         string    `json:"session_id" db:"session_id"`
	StudentName       string    `json:"student_name" db:"student_name"`
	StudentID         string    `json:"student_id" db:"student_id"`
	DeviceFingerprint string    `json:"device_fingerprint" db:"device_fingerprint"`
	Latitude          float64   `json:"latitude" db:"latitude"`
	Longitude         float64   `json:"longitude" db:"longitude"`
	SubmittedAt       time.Time `json:"submitted_at" db:"submitted_at"` // UTC
}

// NewSession contains the operator input needed to open a Session.
type NewSession struct {
	Subject         string  `json:"subject" validate:"required"`
	AnchorLat       float64 `json:"anchor_lat" validate:"latitude"`
	AnchorLon       float64 `json:"anchor_lon" validate:"longitude"`
	RadiusMeters    float64 `json:"radius_meters" validate:"required,gt=0"`
	DurationMinutes int     `json:"duration_minutes" validate:"omitempty,gt=0"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Subject = core.CleanString(ns.Subject)
	return validate.Struct(ns)
}

// Submission is a student attendance claim against the active session.
// Latitude/Longitude are pointers so that an absent location (the device's
// location source failed) is distinguishable from a zero coordinate.
type Submission struct {
	StudentName       string   `json:"student_name" validate:"required"`
	StudentID         string   `json:"student_id" validate:"required,alphanum_"`
	DeviceFingerprint string   `json:"device_fingerprint"`
	Latitude          *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude         *float64 `json:"longitude" validate:"omitempty,longitude"`
}

func (sub *Submission) Validate(validate *validator.Validate) error {
	sub.StudentName = core.CleanString(sub.StudentName)
	sub.StudentID = core.CleanString(sub.StudentID, true /* lower */)
	sub.DeviceFingerprint = core.CleanString(sub.DeviceFingerprint)
	return validate.Struct(sub)
}

// QueryFilter filters stored records. Zero-valued fields are ignored;
// set fields are ANDed.
type QueryFilter struct {
	SessionID     string    `query:"session_id"`
	StudentID     string    `query:"student_id"`
	SubmittedFrom time.Time `query:"submitted_from"`
	SubmittedTo   time.Time `query:"submitted_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.SessionID == "" && qf.StudentID == "" && qf.SubmittedFrom.IsZero() && qf.SubmittedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.SessionID = core.CleanString(qf.SessionID)
	qf.StudentID = core.CleanString(qf.StudentID, true /* lower */)
}

type Repository interface {
	// AppendRecord persists an accepted record and returns it with its ID set.
	AppendRecord(rec Record) (Record, error)
	// FindByDevice returns records by `fingerprint` submitted at or after `since`.
	FindByDevice(fingerprint string, since time.Time) ([]Record, error)
	FindByStudentAndSession(studentID, sessionID string) ([]Record, error)
	// FilterRecords applies AND operation on available QueryFilter fields,
	// ordered by submission time.
	FilterRecords(filter QueryFilter) ([]Record, error)
}
