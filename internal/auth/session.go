package auth

import (
	"context"
	"errors"

	"coach_marketplace_backend/internal/common"
	"coach_marketplace_backend/internal/firebase"
	"coach_marketplace_backend/internal/shared"

	firebaseauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

// IDTokenVerifier verifies Firebase ID tokens.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// SessionAuthenticator accepts the account service's HS256 session tokens and, when
// Firebase is configured, Firebase ID tokens mapped to users by UID.
type SessionAuthenticator struct {
	tokens   shared.TokenService
	firebase IDTokenVerifier
	users    shared.Service
	logger   *zap.Logger
}

// NewSessionAuthenticator wires the verifier. fb may be nil when Firebase is not configured.
func NewSessionAuthenticator(tokens shared.TokenService, fb *firebase.FirebaseService, users shared.Service, logger *zap.Logger) *SessionAuthenticator {
	a := &SessionAuthenticator{
		tokens: tokens,
		users:  users,
		logger: logger.Named("SessionAuthenticator"),
	}
	if fb != nil {
		a.firebase = fb
	}
	return a
}

var _ shared.SessionVerifier = (*SessionAuthenticator)(nil)

// Verify resolves a bearer credential to an Identity.
func (a *SessionAuthenticator) Verify(ctx context.Context, token string) (*shared.Identity, error) {
	if token == "" {
		return nil, common.ErrUnauthorized.WithDetails("Bearer token is required.")
	}

	claims, jwtErr := a.tokens.ValidateToken(token)
	if jwtErr == nil {
		return &shared.Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
	}
	if a.firebase == nil {
		return nil, common.ErrUnauthorized.WithDetails("Invalid or expired session token.")
	}

	fbToken, err := a.firebase.VerifyIDToken(ctx, token)
	if err != nil {
		a.logger.Debug("Session token rejected by both verifiers", zap.NamedError("jwt_error", jwtErr), zap.Error(err))
		return nil, common.ErrUnauthorized.WithDetails("Invalid or expired session token.")
	}

	usr, err := a.users.GetUserByFirebaseUID(ctx, fbToken.UID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized.WithDetails("No account is linked to this Firebase user.")
		}
		return nil, err
	}
	return &shared.Identity{
		UserID:      usr.ID,
		Email:       common.StringValue(usr.Email),
		Role:        usr.Role,
		FirebaseUID: fbToken.UID,
	}, nil
}
