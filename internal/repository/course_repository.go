package repository

import (
	"context"
	"fmt"

	"github.com/campushub/portal/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	query := `
		INSERT INTO courses (code, name, description, instructor_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		course.Code,
		course.Name,
		course.Description,
		course.InstructorID,
	).Scan(&course.CreatedAt)

	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

// GetByCode returns the course with its enrollment list, or nil.
func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	query := `
		SELECT code, name, description, instructor_id, created_at
		FROM courses
		WHERE code = $1
	`

	var course model.Course
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&course.Code,
		&course.Name,
		&course.Description,
		&course.InstructorID,
		&course.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by code: %w", err)
	}

	if err := r.loadEnrollments(ctx, &course); err != nil {
		return nil, err
	}

	return &course, nil
}

// List returns all courses with enrollments, ordered by code.
func (r *CourseRepository) List(ctx context.Context) ([]*model.Course, error) {
	query := `
		SELECT code, name, description, instructor_id, created_at
		FROM courses
		ORDER BY code
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		var course model.Course
		err := rows.Scan(
			&course.Code,
			&course.Name,
			&course.Description,
			&course.InstructorID,
			&course.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, &course)
	}
	rows.Close()

	for _, course := range courses {
		if err := r.loadEnrollments(ctx, course); err != nil {
			return nil, err
		}
	}

	return courses, nil
}

// Update changes name and description.
func (r *CourseRepository) Update(ctx context.Context, course *model.Course) error {
	query := `
		UPDATE courses
		SET name = $2, description = $3
		WHERE code = $1
	`

	result, err := r.pool.Exec(ctx, query, course.Code, course.Name, course.Description)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// Delete removes a course and its enrollments.
func (r *CourseRepository) Delete(ctx context.Context, code string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// Enroll adds a student to the course. Idempotent.
func (r *CourseRepository) Enroll(ctx context.Context, code, studentID string) error {
	query := `
		INSERT INTO course_enrollments (course_code, student_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, code, studentID); err != nil {
		return fmt.Errorf("enroll student: %w", err)
	}

	return nil
}

// Unenroll removes a student from the course. Idempotent.
func (r *CourseRepository) Unenroll(ctx context.Context, code, studentID string) error {
	query := `DELETE FROM course_enrollments WHERE course_code = $1 AND student_id = $2`

	if _, err := r.pool.Exec(ctx, query, code, studentID); err != nil {
		return fmt.Errorf("unenroll student: %w", err)
	}

	return nil
}

// Count returns the number of courses.
func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return n, nil
}

func (r *CourseRepository) loadEnrollments(ctx context.Context, course *model.Course) error {
	query := `
		SELECT student_id
		FROM course_enrollments
		WHERE course_code = $1
		ORDER BY student_id
	`

	rows, err := r.pool.Query(ctx, query, course.Code)
	if err != nil {
		return fmt.Errorf("load enrollments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var studentID string
		if err := rows.Scan(&studentID); err != nil {
			return fmt.Errorf("scan enrollment: %w", err)
		}
		course.EnrolledStudents = append(course.EnrolledStudents, studentID)
	}

	return nil
}
