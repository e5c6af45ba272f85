package shared

import (
	"context"
	"time"

	"coach_marketplace_backend/internal/common"

	"github.com/golang-jwt/jwt/v5"
)

// User is the account view other packages work with.
type User struct {
	ID                  uint
	Email               *string
	FirstName           *string
	LastName            *string
	Role                string
	FirebaseUID         *string
	CoachProfileID      *uint
	CoachProfileDraftID *uint
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsCoach reports whether the account is a coach.
func (u *User) IsCoach() bool {
	return u.Role == common.RoleCoach
}

// Service defines the user lookups needed outside the user package.
type Service interface {
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*User, error)
}

// Identity is what an authenticated request carries after session verification.
type Identity struct {
	UserID      uint
	Email       string
	Role        string
	FirebaseUID string
}

// SessionVerifier turns a bearer credential into an Identity.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// TokenService defines the interface for JWT operations.
type TokenService interface {
	GenerateAccessToken(user *User) (string, time.Time, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents the JWT claims structure
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
