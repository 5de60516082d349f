package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/models"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/repository"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/schedule"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionNotifier receives session state changes. Delivery is best-effort;
// correctness never depends on it.
type SessionNotifier interface {
	NotifySession(event string, session *models.LiveSession)
}

const (
	EventSessionScheduled = "session.scheduled"
	EventSessionStarted   = "session.started"
	EventSessionEnded     = "session.ended"
	EventSessionCancelled = "session.cancelled"
)

// SessionService drives the session lifecycle:
// scheduled -> ongoing -> completed/cancelled, with no way out of the
// terminal states. Operations on one class's sessions are serialized through
// the class advisory lock.
type SessionService struct {
	db          *pgxpool.Pool
	sessionRepo *repository.SessionRepository
	classRepo   *repository.LiveClassRepository
	rooms       RoomProvider
	notifier    SessionNotifier
}

func NewSessionService(
	db *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	classRepo *repository.LiveClassRepository,
	rooms RoomProvider,
	notifier SessionNotifier,
) *SessionService {
	return &SessionService{
		db:          db,
		sessionRepo: sessionRepo,
		classRepo:   classRepo,
		rooms:       rooms,
		notifier:    notifier,
	}
}

// StartSession opens a live session for the class. Only the owning artist may
// start one, and a class holds at most one ongoing session at a time. When a
// scheduled session exists for today it is started in place; otherwise a new
// session is created. The room provider call happens inside the transaction
// so a provider failure persists nothing.
func (s *SessionService) StartSession(
	ctx context.Context,
	classID, artistID int64,
	now time.Time,
) (*models.LiveSession, error) {
	if classID <= 0 || artistID <= 0 {
		return nil, ErrInvalidInput
	}

	var started *models.LiveSession
	err := withTxRetry(ctx, func(ctx context.Context) error {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = tx.Rollback(ctx)
		}()

		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", classID); err != nil {
			return err
		}

		txClassRepo := repository.NewLiveClassRepository(tx)
		txSessionRepo := repository.NewSessionRepository(tx)

		class, err := txClassRepo.GetByID(ctx, classID)
		if err != nil {
			return err
		}
		if class.ArtistID != artistID {
			return ErrUnauthorized
		}
		if class.Disabled {
			return ErrClassDisabled
		}

		hasOngoing, err := txSessionRepo.HasOngoingByClass(ctx, classID)
		if err != nil {
			return err
		}
		if hasOngoing {
			return ErrSessionAlreadyActive
		}

		today := dateOf(now)
		session, err := txSessionRepo.GetScheduledOnDate(ctx, classID, today)
		switch {
		case err == nil:
			session, err = txSessionRepo.StartIfScheduled(ctx, session.ID, now)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrInvalidTransition
				}
				return err
			}
		case errors.Is(err, pgx.ErrNoRows):
			session, err = txSessionRepo.Create(ctx, repository.CreateSessionInput{
				ClassID:   classID,
				Date:      today,
				StartTime: &now,
				Status:    models.SessionOngoing,
			})
			if err != nil {
				return err
			}
		default:
			return err
		}

		joinURL, err := s.rooms.CreateRoom(ctx, session.ID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExternalProvider, err)
		}
		session, err = txSessionRepo.SetJoinURL(ctx, session.ID, joinURL)
		if err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
		started = session
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(EventSessionStarted, started)
	return started, nil
}

// ScheduleSession creates a scheduled session on the class's next occurrence
// on or after from, per its weekly pattern.
func (s *SessionService) ScheduleSession(
	ctx context.Context,
	classID, artistID int64,
	from time.Time,
) (*models.LiveSession, error) {
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class.ArtistID != artistID {
		return nil, ErrUnauthorized
	}
	if class.Disabled {
		return nil, ErrClassDisabled
	}

	pattern, err := class.Schedule()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	next, err := schedule.NextOccurrence(pattern, from)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	session, err := s.sessionRepo.Create(ctx, repository.CreateSessionInput{
		ClassID: classID,
		Date:    next,
		Status:  models.SessionScheduled,
	})
	if err != nil {
		return nil, err
	}
	s.notify(EventSessionScheduled, session)
	return session, nil
}

// EndSession completes an ongoing session, closing any attendance interval
// still open at end time. The recording fetch afterwards is best-effort:
// a missing recording or provider failure never fails the transition.
func (s *SessionService) EndSession(
	ctx context.Context,
	sessionID, artistID int64,
	now time.Time,
) (*models.LiveSession, error) {
	var ended *models.LiveSession
	err := withTxRetry(ctx, func(ctx context.Context) error {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = tx.Rollback(ctx)
		}()

		txSessionRepo := repository.NewSessionRepository(tx)
		txClassRepo := repository.NewLiveClassRepository(tx)

		session, err := lockSessionClass(ctx, tx, txSessionRepo, sessionID)
		if err != nil {
			return err
		}
		if err := s.requireOwner(ctx, txClassRepo, session.ClassID, artistID); err != nil {
			return err
		}
		if session.Status != models.SessionOngoing {
			return ErrInvalidTransition
		}

		completed, err := txSessionRepo.CompleteIfOngoing(ctx, sessionID, now)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInvalidTransition
			}
			return err
		}
		if err := txSessionRepo.CloseOpenAttendees(ctx, sessionID, now); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
		ended = completed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if recordingURL, err := s.rooms.GetRecording(ctx, sessionID); err != nil {
		log.Printf("session %d: fetch recording: %v", sessionID, err)
	} else if recordingURL != nil {
		if updated, err := s.sessionRepo.SetRecordingURL(ctx, sessionID, *recordingURL); err != nil {
			log.Printf("session %d: store recording url: %v", sessionID, err)
		} else {
			ended = updated
		}
	}

	s.notify(EventSessionEnded, ended)
	return ended, nil
}

// CancelSession cancels a scheduled or ongoing session with a mandatory
// reason.
func (s *SessionService) CancelSession(
	ctx context.Context,
	sessionID, artistID int64,
	reason string,
	now time.Time,
) (*models.LiveSession, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrInvalidInput
	}

	var cancelled *models.LiveSession
	err := withTxRetry(ctx, func(ctx context.Context) error {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = tx.Rollback(ctx)
		}()

		txSessionRepo := repository.NewSessionRepository(tx)
		txClassRepo := repository.NewLiveClassRepository(tx)

		session, err := lockSessionClass(ctx, tx, txSessionRepo, sessionID)
		if err != nil {
			return err
		}
		if err := s.requireOwner(ctx, txClassRepo, session.ClassID, artistID); err != nil {
			return err
		}
		if session.Status != models.SessionScheduled && session.Status != models.SessionOngoing {
			return ErrInvalidTransition
		}

		updated, err := txSessionRepo.CancelIfActive(ctx, sessionID, reason)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInvalidTransition
			}
			return err
		}
		if err := txSessionRepo.CloseOpenAttendees(ctx, sessionID, now); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
		cancelled = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(EventSessionCancelled, cancelled)
	return cancelled, nil
}

// RecordJoin notes a student entering the room. A student with an interval
// still open keeps it (rejoining an open interval is a no-op); a student who
// left earlier gets a fresh interval appended so multiple join/leave cycles
// are preserved.
func (s *SessionService) RecordJoin(
	ctx context.Context,
	sessionID, studentID int64,
	now time.Time,
) (*models.Attendee, error) {
	if sessionID <= 0 || studentID <= 0 {
		return nil, ErrInvalidInput
	}

	var attendee *models.Attendee
	err := withTxRetry(ctx, func(ctx context.Context) error {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = tx.Rollback(ctx)
		}()

		txSessionRepo := repository.NewSessionRepository(tx)
		txClassRepo := repository.NewLiveClassRepository(tx)

		session, err := lockSessionClass(ctx, tx, txSessionRepo, sessionID)
		if err != nil {
			return err
		}
		if session.Status != models.SessionOngoing {
			return ErrSessionNotActive
		}
		if _, err := txClassRepo.GetRosterEntry(ctx, session.ClassID, studentID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotEnrolled
			}
			return err
		}

		open, err := txSessionRepo.GetOpenAttendee(ctx, sessionID, studentID)
		switch {
		case err == nil:
			attendee = open
		case errors.Is(err, pgx.ErrNoRows):
			attendee, err = txSessionRepo.AddAttendee(ctx, sessionID, studentID, now)
			if err != nil {
				return err
			}
		default:
			return err
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}
	return attendee, nil
}

// RecordLeave closes the student's most recent open interval and derives its
// duration in whole minutes.
func (s *SessionService) RecordLeave(
	ctx context.Context,
	sessionID, studentID int64,
	now time.Time,
) (*models.Attendee, error) {
	if sessionID <= 0 || studentID <= 0 {
		return nil, ErrInvalidInput
	}

	var attendee *models.Attendee
	err := withTxRetry(ctx, func(ctx context.Context) error {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = tx.Rollback(ctx)
		}()

		txSessionRepo := repository.NewSessionRepository(tx)

		session, err := lockSessionClass(ctx, tx, txSessionRepo, sessionID)
		if err != nil {
			return err
		}
		if session.Status != models.SessionOngoing {
			return ErrSessionNotActive
		}

		closed, err := txSessionRepo.CloseAttendee(ctx, sessionID, studentID, now)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: no open attendance interval", ErrInvalidInput)
			}
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		attendee = closed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attendee, nil
}

func (s *SessionService) GetSession(ctx context.Context, sessionID int64) (*models.SessionDetail, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	attendees, err := s.sessionRepo.ListAttendees(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &models.SessionDetail{LiveSession: *session, Attendees: attendees}, nil
}

func (s *SessionService) ListByClass(ctx context.Context, classID int64) ([]models.LiveSession, error) {
	return s.sessionRepo.ListByClass(ctx, classID)
}

func (s *SessionService) requireOwner(
	ctx context.Context,
	classRepo *repository.LiveClassRepository,
	classID, artistID int64,
) error {
	class, err := classRepo.GetByID(ctx, classID)
	if err != nil {
		return err
	}
	if class.ArtistID != artistID {
		return ErrUnauthorized
	}
	return nil
}

// lockSessionClass serializes a per-session operation against every other
// operation on the same class: read the session to learn its class, take the
// class advisory lock, then re-read so the status reflects whatever committed
// while we waited for the lock.
func lockSessionClass(
	ctx context.Context,
	tx pgx.Tx,
	sessionRepo *repository.SessionRepository,
	sessionID int64,
) (*models.LiveSession, error) {
	session, err := sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", session.ClassID); err != nil {
		return nil, err
	}
	return sessionRepo.GetByIDForUpdate(ctx, sessionID)
}

func (s *SessionService) notify(event string, session *models.LiveSession) {
	if s.notifier == nil || session == nil {
		return
	}
	s.notifier.NotifySession(event, session)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
