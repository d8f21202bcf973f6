package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/agorawin/loyalty-server/internal/models"
)

// getUserID extracts the authenticated member ID from gin context.
func getUserID(c *gin.Context) uint64 {
	val, exists := c.Get("userID")
	if !exists {
		return 0
	}
	id, ok := val.(uint64)
	if !ok {
		return 0
	}
	return id
}

// userView is the member payload returned by auth and profile endpoints.
// The PIN is never included.
type userView struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email,omitempty"`
	Branch    string     `json:"branch,omitempty"`
	IsActive  bool       `json:"is_active"`
	JoinDate  time.Time  `json:"join_date"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// newUserView builds the full member payload.
func newUserView(user models.User) userView {
	created := user.CreatedAt
	updated := user.UpdatedAt
	return userView{
		ID:        user.ID,
		Name:      user.Name,
		Phone:     user.Phone,
		Email:     user.Email,
		Branch:    user.Branch,
		IsActive:  user.IsActive,
		JoinDate:  user.JoinDate,
		CreatedAt: &created,
		UpdatedAt: &updated,
	}
}
