package model

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      RoleID    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdvisor reports whether the user can be booked for appointments.
func (u *User) IsAdvisor() bool {
	return u.Role == RoleFaculty || u.Role == RoleAdmin
}
