package user

import "time"

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleDoctor:
		return true
	default:
		return false
	}
}

type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	JoinDate time.Time `json:"joinDate"`
}

// RegisteredUser is the demo signup record held under the registeredUsers key.
// Sign-in resolves by exact email+password match against the stored list, so
// the password stays plain text. The API only ever renders the embedded User.
type RegisteredUser struct {
	User
	Password string `json:"password"`
}
