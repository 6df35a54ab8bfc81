package backoffice

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is one authenticated principal's live login. The Registry owns
// every instance; callers only ever see copies.
type Session struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Role           UserRole  `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// IdleFor returns how long the session has been without authorized activity.
func (s Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastActivityAt)
}

// Principal is the authenticated identity attached to a request after a
// successful guard check.
type Principal struct {
	UserID    string   `json:"user_id"`
	Role      UserRole `json:"role"`
	SessionID string   `json:"-"`
}

// GetUserUUID parses the principal's user id.
func (p Principal) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(p.UserID)
}

// HasRole checks if the principal carries a specific role
func (p Principal) HasRole(role UserRole) bool {
	return p.Role == role
}

func (p Principal) String() string {
	return fmt.Sprintf("user=%s role=%s", p.UserID, p.Role)
}

func principalFromSession(s Session) Principal {
	return Principal{
		UserID:    s.UserID,
		Role:      s.Role,
		SessionID: s.ID,
	}
}
