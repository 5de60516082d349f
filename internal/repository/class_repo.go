package repository

import (
	"context"
	"time"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so the same repository
// works inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const classColumns = `id, artist_id, class_name, art_form, specialization,
	classes_per_week, class_days, start_time, end_time, max_students,
	monthly_fee, enrollment_deadline, cover_image_id, trailer_video_id,
	disabled, created_at, updated_at`

type CreateClassInput struct {
	ArtistID           int64
	ClassName          string
	ArtForm            string
	Specialization     string
	ClassesPerWeek     int
	ClassDays          []string
	StartTime          string
	EndTime            string
	MaxStudents        int
	MonthlyFee         int64
	EnrollmentDeadline time.Time
	CoverImageID       *string
	TrailerVideoID     *string
}

type LiveClassRepository struct {
	db DBTX
}

func NewLiveClassRepository(db DBTX) *LiveClassRepository {
	return &LiveClassRepository{db: db}
}

func scanClass(row pgx.Row) (*models.LiveClass, error) {
	var class models.LiveClass
	err := row.Scan(
		&class.ID,
		&class.ArtistID,
		&class.ClassName,
		&class.ArtForm,
		&class.Specialization,
		&class.ClassesPerWeek,
		&class.ClassDays,
		&class.StartTime,
		&class.EndTime,
		&class.MaxStudents,
		&class.MonthlyFee,
		&class.EnrollmentDeadline,
		&class.CoverImageID,
		&class.TrailerVideoID,
		&class.Disabled,
		&class.CreatedAt,
		&class.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *LiveClassRepository) Create(ctx context.Context, input CreateClassInput) (*models.LiveClass, error) {
	query := `
		INSERT INTO live_classes (
			artist_id, class_name, art_form, specialization, classes_per_week,
			class_days, start_time, end_time, max_students, monthly_fee,
			enrollment_deadline, cover_image_id, trailer_video_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + classColumns

	return scanClass(r.db.QueryRow(
		ctx,
		query,
		input.ArtistID,
		input.ClassName,
		input.ArtForm,
		input.Specialization,
		input.ClassesPerWeek,
		input.ClassDays,
		input.StartTime,
		input.EndTime,
		input.MaxStudents,
		input.MonthlyFee,
		input.EnrollmentDeadline,
		input.CoverImageID,
		input.TrailerVideoID,
	))
}

func (r *LiveClassRepository) GetByID(ctx context.Context, classID int64) (*models.LiveClass, error) {
	query := `SELECT ` + classColumns + ` FROM live_classes WHERE id = $1`
	return scanClass(r.db.QueryRow(ctx, query, classID))
}

func (r *LiveClassRepository) ListByArtist(ctx context.Context, artistID int64) ([]models.LiveClass, error) {
	query := `
		SELECT ` + classColumns + `
		FROM live_classes
		WHERE artist_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := make([]models.LiveClass, 0)
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, *class)
	}
	return classes, rows.Err()
}

func (r *LiveClassRepository) SetDisabled(ctx context.Context, classID int64, disabled bool) (*models.LiveClass, error) {
	query := `
		UPDATE live_classes
		SET disabled = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + classColumns
	return scanClass(r.db.QueryRow(ctx, query, classID, disabled))
}

const rosterColumns = `id, class_id, student_id, enrollment_date, next_payment_due`

func scanRosterEntry(row pgx.Row) (*models.RosterEntry, error) {
	var entry models.RosterEntry
	err := row.Scan(
		&entry.ID,
		&entry.ClassID,
		&entry.StudentID,
		&entry.EnrollmentDate,
		&entry.NextPaymentDue,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *LiveClassRepository) ListRoster(ctx context.Context, classID int64) ([]models.RosterEntry, error) {
	query := `
		SELECT ` + rosterColumns + `
		FROM live_class_students
		WHERE class_id = $1
		ORDER BY enrollment_date ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roster := make([]models.RosterEntry, 0)
	for rows.Next() {
		entry, err := scanRosterEntry(rows)
		if err != nil {
			return nil, err
		}
		roster = append(roster, *entry)
	}
	return roster, rows.Err()
}

func (r *LiveClassRepository) CountRoster(ctx context.Context, classID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM live_class_students WHERE class_id = $1`, classID).Scan(&count)
	return count, err
}

func (r *LiveClassRepository) GetRosterEntry(ctx context.Context, classID, studentID int64) (*models.RosterEntry, error) {
	query := `
		SELECT ` + rosterColumns + `
		FROM live_class_students
		WHERE class_id = $1 AND student_id = $2
	`
	return scanRosterEntry(r.db.QueryRow(ctx, query, classID, studentID))
}

func (r *LiveClassRepository) AddRosterEntry(
	ctx context.Context,
	classID, studentID int64,
	enrollmentDate, nextPaymentDue time.Time,
) (*models.RosterEntry, error) {
	query := `
		INSERT INTO live_class_students (class_id, student_id, enrollment_date, next_payment_due)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + rosterColumns
	return scanRosterEntry(r.db.QueryRow(ctx, query, classID, studentID, enrollmentDate, nextPaymentDue))
}

func (r *LiveClassRepository) DeleteRosterEntry(ctx context.Context, classID, studentID int64) (bool, error) {
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM live_class_students WHERE class_id = $1 AND student_id = $2`,
		classID,
		studentID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AdvanceNextPaymentDue moves the roster entry's due date one month forward
// from the previous due date, so repeated billing cycles never drift.
func (r *LiveClassRepository) AdvanceNextPaymentDue(ctx context.Context, classID, studentID int64) (*models.RosterEntry, error) {
	query := `
		UPDATE live_class_students
		SET next_payment_due = next_payment_due + INTERVAL '1 month'
		WHERE class_id = $1 AND student_id = $2
		RETURNING ` + rosterColumns
	return scanRosterEntry(r.db.QueryRow(ctx, query, classID, studentID))
}
