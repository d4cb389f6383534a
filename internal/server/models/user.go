package models

import (
	"time"

	"github.com/dmitrijs2005/taskboard/internal/common"
)

// User is an authentication identity. The matching Profile row carries the
// display name and role.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Profile is the public face of a user: username, role and a copy of the
// email for admin listings.
type Profile struct {
	ID        string
	Username  string
	Role      string
	Email     string
	CreatedAt time.Time
}

// Caller identifies the authenticated principal of a request.
type Caller struct {
	UserID string
	Role   string
}

func (c Caller) IsAdmin() bool { return c.Role == common.RoleAdmin }
