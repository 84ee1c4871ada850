package attendance

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/mahudhurio/core"
)

var (
	NowFunc = time.Now // mockable

	// rejections; all expected & user-facing. none of them mutates the store.
	ErrNoActiveSession  = errors.New("no attendance session is currently active")
	ErrSessionExpired   = errors.New("the attendance session has expired")
	ErrSessionInactive  = errors.New("the attendance session has been closed")
	ErrAlreadySubmitted = errors.New("attendance already marked")
	ErrInputUnavailable = errors.New("device location or fingerprint unavailable")
)

// OutOfRangeError rejects a submission outside the session's geofence.
// It carries the measured distance so the caller can render a helpful message.
type OutOfRangeError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("out of range: %.1fm from the session location (%.0fm allowed)", e.DistanceMeters, e.RadiusMeters)
}

// Service owns the current session and the record store; it is the only writer
// of either. Submit is serialized so the duplicate-check-then-append sequence
// is atomic.
type Service struct {
	mu      sync.Mutex
	repo    Repository
	conf    *core.Config
	mailSvc core.EmailService
	logger  core.Logger
	current *Session
}

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		conf:    conf,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

// CreateSession opens a new session and implicitly closes the active one.
// At most one session accepts submissions at any time.
func (svc *Service) CreateSession(ns NewSession) (Session, error) {
	if ns.RadiusMeters <= 0 {
		return Session{}, core.NewValidationError(nil, core.FieldError{Field: "radius_meters", Error: "must be greater than 0"})
	}
	if ns.DurationMinutes < 0 {
		return Session{}, core.NewValidationError(nil, core.FieldError{Field: "duration_minutes", Error: "must be greater than 0"})
	}

	duration := time.Duration(ns.DurationMinutes) * time.Minute
	if duration == 0 {
		duration = svc.conf.Attendance.DefaultSessionDuration
	}

	now := NowFunc().UTC()
	sess := Session{
		ID:           uuid.New().String(),
		Subject:      ns.Subject,
		AnchorLat:    ns.AnchorLat,
		AnchorLon:    ns.AnchorLon,
		RadiusMeters: ns.RadiusMeters,
		CreatedAt:    now,
		ExpiresAt:    now.Add(duration),
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.current != nil && !svc.current.IsClosed() {
		svc.current.ClosedAt = &now
	}
	svc.current = &sess
	if svc.logger != nil {
		svc.logger.Info(fmt.Sprintf("session %s opened for %q until %s", sess.ID, sess.Subject, sess.ExpiresAt.Format(time.RFC3339)))
	}
	return sess, nil
}

// CloseSession marks the active session inactive; subsequent submissions
// against it are rejected with ErrSessionInactive.
func (svc *Service) CloseSession() (Session, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.current == nil {
		return Session{}, ErrNoActiveSession
	}
	if !svc.current.IsClosed() {
		now := NowFunc().UTC()
		svc.current.ClosedAt = &now
	}
	return *svc.current, nil
}

// ActiveSession returns the session currently accepting submissions.
func (svc *Service) ActiveSession() (Session, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.current == nil || svc.current.IsClosed() {
		return Session{}, ErrNoActiveSession
	}
	return *svc.current, nil
}

// Submit validates a student claim against the active session and the stored
// records, as an ordered pipeline where the first failing check determines the
// outcome. On success the record is appended and returned.
func (svc *Service) Submit(sub Submission) (Record, error) {
	// external-collaborator inputs must be present before entering the
	// pipeline; a missing location never defaults to a valid-feeling one.
	if sub.DeviceFingerprint == "" || sub.Latitude == nil || sub.Longitude == nil {
		return Record{}, ErrInputUnavailable
	}

	now := NowFunc().UTC()

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.current == nil {
		return Record{}, ErrNoActiveSession
	}
	sess := *svc.current
	if sess.IsClosed() {
		return Record{}, ErrSessionInactive
	}
	if sess.IsExpired(now) {
		return Record{}, ErrSessionExpired
	}

	dist := DistanceMeters(sess.AnchorLat, sess.AnchorLon, *sub.Latitude, *sub.Longitude)
	if dist > sess.RadiusMeters {
		return Record{}, &OutOfRangeError{DistanceMeters: dist, RadiusMeters: sess.RadiusMeters}
	}

	// device-based dedup catches identity spoofing...
	prior, err := svc.repo.FindByDevice(sub.DeviceFingerprint, now.Add(-svc.conf.Attendance.DedupWindow))
	if err != nil {
		return Record{}, err
	}
	if len(prior) > 0 {
		return Record{}, ErrAlreadySubmitted
	}

	// ... and id-based dedup catches device spoofing. both must pass.
	prior, err = svc.repo.FindByStudentAndSession(sub.StudentID, sess.ID)
	if err != nil {
		return Record{}, err
	}
	if len(prior) > 0 {
		return Record{}, ErrAlreadySubmitted
	}

	return svc.repo.AppendRecord(Record{
		SessionID:         sess.ID,
		StudentName:       sub.StudentName,
		StudentID:         sub.StudentID,
		DeviceFingerprint: sub.DeviceFingerprint,
		Latitude:          *sub.Latitude,
		Longitude:         *sub.Longitude,
		SubmittedAt:       now,
	})
}

// Filter returns stored records matching `filter`.
func (svc *Service) Filter(filter QueryFilter) ([]Record, error) {
	filter.Clean()
	return svc.repo.FilterRecords(filter)
}
