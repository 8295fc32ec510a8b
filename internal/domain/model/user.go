package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a temporary, session-scoped identity. One is created lazily on the
// first visit and deleted (with all uploads) on logout.
type User struct {
	ID        string
	CreatedAt time.Time
}

func NewUser(id string) *User {
	if id == "" {
		id = uuid.NewString()
	}
	return &User{ID: id, CreatedAt: time.Now()}
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
