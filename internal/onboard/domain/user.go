package domain

import "time"

// Role is the closed set of account roles a user can sign up with.
type Role string

const (
	RoleUser     Role = "user"
	RoleStartup  Role = "startup"
	RoleInvestor Role = "investor"
)

// ParseRole validates a role string. An empty input defaults to
// RoleUser, matching what signup assigns when no role is given.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "":
		return RoleUser, true
	case RoleUser, RoleStartup, RoleInvestor:
		return Role(s), true
	default:
		return "", false
	}
}

func (r Role) String() string { return string(r) }

type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2 encoded
	Role         Role
	Verified     bool
	// VerificationCode is the pending single-use code, nil once the
	// user is verified or before one is issued. A verified user never
	// carries a code.
	VerificationCode *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
