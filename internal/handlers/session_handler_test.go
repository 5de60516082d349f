package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/models"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/services"
)

type stubSessionService struct {
	startResult    *models.LiveSession
	startErr       error
	scheduleResult *models.LiveSession
	scheduleErr    error
	endResult      *models.LiveSession
	endErr         error
	cancelResult   *models.LiveSession
	cancelErr      error
	joinResult     *models.Attendee
	joinErr        error
	leaveResult    *models.Attendee
	leaveErr       error
	getResult      *models.SessionDetail
	getErr         error
	listResult     []models.LiveSession
	listErr        error
	lastClassID    int64
	lastSessionID  int64
	lastActorID    int64
	lastReason     string
}

func (s *stubSessionService) StartSession(_ context.Context, classID, artistID int64, _ time.Time) (*models.LiveSession, error) {
	s.lastClassID = classID
	s.lastActorID = artistID
	return s.startResult, s.startErr
}

func (s *stubSessionService) ScheduleSession(_ context.Context, classID, artistID int64, _ time.Time) (*models.LiveSession, error) {
	s.lastClassID = classID
	s.lastActorID = artistID
	return s.scheduleResult, s.scheduleErr
}

func (s *stubSessionService) EndSession(_ context.Context, sessionID, artistID int64, _ time.Time) (*models.LiveSession, error) {
	s.lastSessionID = sessionID
	s.lastActorID = artistID
	return s.endResult, s.endErr
}

func (s *stubSessionService) CancelSession(_ context.Context, sessionID, artistID int64, reason string, _ time.Time) (*models.LiveSession, error) {
	s.lastSessionID = sessionID
	s.lastActorID = artistID
	s.lastReason = reason
	return s.cancelResult, s.cancelErr
}

func (s *stubSessionService) RecordJoin(_ context.Context, sessionID, studentID int64, _ time.Time) (*models.Attendee, error) {
	s.lastSessionID = sessionID
	s.lastActorID = studentID
	return s.joinResult, s.joinErr
}

func (s *stubSessionService) RecordLeave(_ context.Context, sessionID, studentID int64, _ time.Time) (*models.Attendee, error) {
	s.lastSessionID = sessionID
	s.lastActorID = studentID
	return s.leaveResult, s.leaveErr
}

func (s *stubSessionService) GetSession(_ context.Context, sessionID int64) (*models.SessionDetail, error) {
	s.lastSessionID = sessionID
	return s.getResult, s.getErr
}

func (s *stubSessionService) ListByClass(_ context.Context, classID int64) ([]models.LiveSession, error) {
	s.lastClassID = classID
	return s.listResult, s.listErr
}

func newSessionTestApp(service sessionApplicationService, role, userID string) *fiber.App {
	handler := &SessionHandler{service: service}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/classes/:id/sessions/start", handler.StartSession)
	app.Post("/api/v1/classes/:id/sessions/schedule", handler.ScheduleSession)
	app.Get("/api/v1/classes/:id/sessions", handler.ListClassSessions)
	app.Get("/api/v1/sessions/:id", handler.GetSession)
	app.Post("/api/v1/sessions/:id/end", handler.EndSession)
	app.Post("/api/v1/sessions/:id/cancel", handler.CancelSession)
	app.Post("/api/v1/sessions/:id/join", handler.RecordJoin)
	app.Post("/api/v1/sessions/:id/leave", handler.RecordLeave)
	return app
}

func TestStartSessionReturnsCreatedSession(t *testing.T) {
	service := &stubSessionService{
		startResult: &models.LiveSession{ID: 31, ClassID: 12, Status: models.SessionOngoing, JoinURL: "https://rooms.example/s/31"},
	}
	app := newSessionTestApp(service, RoleArtist, "5")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classes/12/sessions/start", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastClassID != 12 || service.lastActorID != 5 {
		t.Fatalf("unexpected service call: class %d actor %d", service.lastClassID, service.lastActorID)
	}

	var body struct {
		Session models.LiveSession `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Session.ID != 31 || body.Session.Status != models.SessionOngoing {
		t.Fatalf("unexpected session payload: %+v", body.Session)
	}
}

func TestStartSessionRejectsStudentRole(t *testing.T) {
	service := &stubSessionService{}
	app := newSessionTestApp(service, RoleStudent, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classes/12/sessions/start", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if service.lastClassID != 0 {
		t.Fatalf("service should not have been called")
	}
}

func TestStartSessionMapsActiveConflictTo422(t *testing.T) {
	service := &stubSessionService{startErr: services.ErrSessionAlreadyActive}
	app := newSessionTestApp(service, RoleArtist, "5")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classes/12/sessions/start", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestStartSessionMapsProviderFailureTo502(t *testing.T) {
	service := &stubSessionService{startErr: services.ErrExternalProvider}
	app := newSessionTestApp(service, RoleArtist, "5")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classes/12/sessions/start", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestEndSessionMapsInvalidTransitionTo422(t *testing.T) {
	service := &stubSessionService{endErr: services.ErrInvalidTransition}
	app := newSessionTestApp(service, RoleArtist, "5")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/31/end", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if service.lastSessionID != 31 {
		t.Fatalf("expected session 31, got %d", service.lastSessionID)
	}
}

func TestCancelSessionRequiresReason(t *testing.T) {
	service := &stubSessionService{}
	app := newSessionTestApp(service, RoleArtist, "5")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/31/cancel", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if service.lastSessionID != 0 {
		t.Fatalf("service should not have been called without a reason")
	}
}

func TestCancelSessionPassesReasonThrough(t *testing.T) {
	reason := "artist unavailable"
	service := &stubSessionService{
		cancelResult: &models.LiveSession{ID: 31, Status: models.SessionCancelled, CancellationReason: &reason},
	}
	app := newSessionTestApp(service, RoleArtist, "5")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/31/cancel",
		strings.NewReader(`{"reason": "artist unavailable"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastReason != "artist unavailable" {
		t.Fatalf("unexpected reason %q", service.lastReason)
	}
}

func TestRecordJoinMapsNotEnrolledTo403(t *testing.T) {
	service := &stubSessionService{joinErr: services.ErrNotEnrolled}
	app := newSessionTestApp(service, RoleStudent, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/31/join", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestRecordJoinReturnsCreatedAttendee(t *testing.T) {
	service := &stubSessionService{
		joinResult: &models.Attendee{ID: 3, SessionID: 31, StudentID: 42},
	}
	app := newSessionTestApp(service, RoleStudent, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/31/join", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastSessionID != 31 || service.lastActorID != 42 {
		t.Fatalf("unexpected service call: session %d actor %d", service.lastSessionID, service.lastActorID)
	}
}

func TestRecordLeaveMapsInactiveSessionTo422(t *testing.T) {
	service := &stubSessionService{leaveErr: services.ErrSessionNotActive}
	app := newSessionTestApp(service, RoleStudent, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/31/leave", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestGetSessionMapsMissingRowTo404(t *testing.T) {
	service := &stubSessionService{getErr: pgx.ErrNoRows}
	app := newSessionTestApp(service, RoleStudent, "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/999", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListClassSessionsRejectsBadID(t *testing.T) {
	service := &stubSessionService{}
	app := newSessionTestApp(service, RoleArtist, "5")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/classes/abc/sessions", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
