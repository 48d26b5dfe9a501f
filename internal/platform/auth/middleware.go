package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const actorKey contextKey = "actor"

// Actor identifies the authenticated caller for the duration of a request.
type Actor struct {
	UserID   int64
	Role     string
	Name     string
	DoctorID *int64
	StaffID  *int64
}

func (a *Actor) IsAdmin() bool  { return a.Role == RoleAdmin }
func (a *Actor) IsDoctor() bool { return a.Role == RoleDoctor }
func (a *Actor) IsStaff() bool  { return a.Role == RoleStaff }

// Middleware validates the bearer token and binds the resulting Actor to
// the request context.
func Middleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := issuer.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			actor := &Actor{
				UserID:   claims.UserID,
				Role:     claims.Role,
				Name:     claims.Name,
				DoctorID: claims.DoctorID,
				StaffID:  claims.StaffID,
			}
			ctx := context.WithValue(c.Request().Context(), actorKey, actor)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// ActorFromContext returns the authenticated caller, or nil outside an
// authenticated request.
func ActorFromContext(ctx context.Context) *Actor {
	a, _ := ctx.Value(actorKey).(*Actor)
	return a
}

// WithActor binds an actor to a context. Used by tests and internal jobs.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}
