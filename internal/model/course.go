package model

import "time"

type Course struct {
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	InstructorID     string    `json:"instructor_id"`
	EnrolledStudents []string  `json:"enrolled_students"`
	CreatedAt        time.Time `json:"created_at"`
}

// IsEnrolled reports whether the student is enrolled in the course.
func (c *Course) IsEnrolled(studentID string) bool {
	for _, id := range c.EnrolledStudents {
		if id == studentID {
			return true
		}
	}
	return false
}
