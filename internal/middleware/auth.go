package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"blackvant/internal/auth"
	"blackvant/internal/models"

	"github.com/google/uuid"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey).(string)
	return role, ok
}

// UserDirectory resolves and provisions users keyed by the identity
// provider's subject.
type UserDirectory interface {
	GetByExternalAuthID(ctx context.Context, externalAuthID string) (models.User, error)
	Create(ctx context.Context, id, externalAuthID, email, fullName, role string) error
}

// Auth verifies the bearer token and resolves the internal user record,
// creating one on first contact. The subject named in bootstrapAdminSubject
// is provisioned as admin so a fresh deployment has one.
func Auth(secret string, users UserDirectory, bootstrapAdminSubject string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			user, err := resolveUser(r.Context(), users, claims, bootstrapAdminSubject)
			if err != nil {
				http.Error(w, "unable to resolve user", http.StatusInternalServerError)
				return
			}
			if user.Disabled {
				http.Error(w, "account disabled", http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, user.ID)
			ctx = context.WithValue(ctx, roleKey, user.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveUser(ctx context.Context, users UserDirectory, claims auth.Claims, bootstrapAdminSubject string) (models.User, error) {
	user, err := users.GetByExternalAuthID(ctx, claims.Subject)
	if err == nil {
		return user, nil
	}
	if err != sql.ErrNoRows {
		return models.User{}, err
	}
	role := models.RoleUser
	if bootstrapAdminSubject != "" && claims.Subject == bootstrapAdminSubject {
		role = models.RoleAdmin
	}
	id := uuid.NewString()
	if err := users.Create(ctx, id, claims.Subject, claims.Email, claims.FullName, role); err != nil {
		return models.User{}, err
	}
	// concurrent first requests race on the unique external id; the loser's
	// insert no-ops and the read below picks up the winner's row
	return users.GetByExternalAuthID(ctx, claims.Subject)
}
