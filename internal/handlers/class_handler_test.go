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

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/models"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/services"
)

type stubClassService struct {
	createResult  *models.LiveClass
	createErr     error
	getResult     *models.ClassDetail
	getErr        error
	listResult    []models.LiveClass
	listErr       error
	disableResult *models.LiveClass
	disableErr    error
	lastArtistID  int64
	lastClassID   int64
	lastInput     services.CreateClassInput
}

func (s *stubClassService) CreateClass(_ context.Context, artistID int64, input services.CreateClassInput) (*models.LiveClass, error) {
	s.lastArtistID = artistID
	s.lastInput = input
	return s.createResult, s.createErr
}

func (s *stubClassService) GetClass(_ context.Context, classID int64) (*models.ClassDetail, error) {
	s.lastClassID = classID
	return s.getResult, s.getErr
}

func (s *stubClassService) ListByArtist(_ context.Context, artistID int64) ([]models.LiveClass, error) {
	s.lastArtistID = artistID
	return s.listResult, s.listErr
}

func (s *stubClassService) Disable(_ context.Context, classID, artistID int64) (*models.LiveClass, error) {
	s.lastClassID = classID
	s.lastArtistID = artistID
	return s.disableResult, s.disableErr
}

type stubEnrollmentService struct {
	enrollResult  *models.RosterEntry
	enrollErr     error
	withdrawErr   error
	lastClassID   int64
	lastStudentID int64
}

func (s *stubEnrollmentService) Enroll(_ context.Context, classID, studentID int64, _ time.Time) (*models.RosterEntry, error) {
	s.lastClassID = classID
	s.lastStudentID = studentID
	return s.enrollResult, s.enrollErr
}

func (s *stubEnrollmentService) Withdraw(_ context.Context, classID, studentID int64) error {
	s.lastClassID = classID
	s.lastStudentID = studentID
	return s.withdrawErr
}

func newClassTestApp(classes classApplicationService, enrollment enrollmentApplicationService, role, userID string) *fiber.App {
	handler := &ClassHandler{classes: classes, enrollment: enrollment}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/classes", handler.CreateClass)
	app.Get("/api/v1/classes", handler.ListClasses)
	app.Get("/api/v1/classes/:id", handler.GetClass)
	app.Post("/api/v1/classes/:id/disable", handler.DisableClass)
	app.Post("/api/v1/classes/:id/enroll", handler.Enroll)
	app.Delete("/api/v1/classes/:id/enroll", handler.Withdraw)
	return app
}

const validClassBody = `{
	"class_name": "Hindustani vocals",
	"art_form": "music",
	"specialization": "khayal",
	"classes_per_week": 2,
	"class_days": ["Monday", "Thursday"],
	"start_time": "18:00",
	"end_time": "19:30",
	"max_students": 10,
	"monthly_fee": 150000,
	"enrollment_deadline": "2026-03-01"
}`

func TestCreateClassReturnsCreatedClass(t *testing.T) {
	classes := &stubClassService{
		createResult: &models.LiveClass{ID: 12, ArtistID: 5, ClassName: "Hindustani vocals"},
	}
	app := newClassTestApp(classes, &stubEnrollmentService{}, RoleArtist, "5")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classes", strings.NewReader(validClassBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if classes.lastArtistID != 5 {
		t.Fatalf("expected artist 5, got %d", classes.lastArtistID)
	}
	if classes.lastInput.MonthlyFee != 150000 || len(classes.lastInput.ClassDays) != 2 {
		t.Fatalf("unexpected input: %+v", classes.lastInput)
	}
	if !classes.lastInput.EnrollmentDeadline.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected deadline: %s", classes.lastInput.EnrollmentDeadline)
	}

	var body struct {
		Class models.LiveClass `json:"class"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Class.ID != 12 {
		t.Fatalf("unexpected class payload: %+v", body.Class)
	}
}

func TestCreateClassRejectsMissingFields(t *testing.T) {
	classes := &stubClassService{}
	app := newClassTestApp(classes, &stubEnrollmentService{}, RoleArtist, "5")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classes",
		strings.NewReader(`{"class_name": "Hindustani vocals"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if classes.lastArtistID != 0 {
		t.Fatalf("service should not have been called")
	}
}

func TestCreateClassRejectsMalformedDeadline(t *testing.T) {
	classes := &stubClassService{}
	app := newClassTestApp(classes, &stubEnrollmentService{}, RoleArtist, "5")

	body := strings.Replace(validClassBody, "2026-03-01", "March 1st", 1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/classes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateClassRejectsStudentRole(t *testing.T) {
	classes := &stubClassService{}
	app := newClassTestApp(classes, &stubEnrollmentService{}, RoleStudent, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classes", strings.NewReader(validClassBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestEnrollReturnsCreatedRosterEntry(t *testing.T) {
	enrollment := &stubEnrollmentService{
		enrollResult: &models.RosterEntry{ClassID: 12, StudentID: 42},
	}
	app := newClassTestApp(&stubClassService{}, enrollment, RoleStudent, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classes/12/enroll", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if enrollment.lastClassID != 12 || enrollment.lastStudentID != 42 {
		t.Fatalf("unexpected service call: class %d student %d", enrollment.lastClassID, enrollment.lastStudentID)
	}
}

func TestEnrollMapsCapacityTo409(t *testing.T) {
	enrollment := &stubEnrollmentService{enrollErr: services.ErrCapacityExceeded}
	app := newClassTestApp(&stubClassService{}, enrollment, RoleStudent, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classes/12/enroll", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestEnrollMapsDeadlineTo422(t *testing.T) {
	enrollment := &stubEnrollmentService{enrollErr: services.ErrDeadlinePassed}
	app := newClassTestApp(&stubClassService{}, enrollment, RoleStudent, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classes/12/enroll", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestWithdrawReturnsNoContent(t *testing.T) {
	enrollment := &stubEnrollmentService{}
	app := newClassTestApp(&stubClassService{}, enrollment, RoleStudent, "42")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/classes/12/enroll", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestWithdrawMapsNotEnrolledTo403(t *testing.T) {
	enrollment := &stubEnrollmentService{withdrawErr: services.ErrNotEnrolled}
	app := newClassTestApp(&stubClassService{}, enrollment, RoleStudent, "42")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/classes/12/enroll", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestDisableClassMapsForeignOwnerTo403(t *testing.T) {
	classes := &stubClassService{disableErr: services.ErrUnauthorized}
	app := newClassTestApp(classes, &stubEnrollmentService{}, RoleArtist, "5")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classes/12/disable", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
