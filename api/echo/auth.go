package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/incluso/backend/core"
	"github.com/incluso/backend/core/user"
)

const sessionCtxKey = "session"

type authApi struct {
	auth *user.Authenticator
}

func registerAuthAPI(g *echo.Group, auth *user.Authenticator) {
	api := authApi{auth: auth}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout)
	ag.GET("/session", api.session)
}

func (api *authApi) login(ctx echo.Context) error {
	data := new(user.Credentials)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := core.Validate.Struct(data); err != nil {
		return err
	}

	sess, err := api.auth.SignIn(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *authApi) logout(ctx echo.Context) error {
	api.auth.SignOut()
	return ctx.NoContent(http.StatusNoContent)
}

// session restores the persisted session, the startup path of the UI.
func (api *authApi) session(ctx echo.Context) error {
	sess, err := api.auth.CheckSession()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

// sessionMiddleware resolves the bearer token against the persisted
// session and carries it in the request context.
func sessionMiddleware(sessions user.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token := bearerToken(ctx.Request())
			if token == "" {
				return unauthorizedErr
			}
			sess, err := sessions.Restore()
			if err != nil || sess.Token != token {
				return unauthorizedErr
			}
			ctx.Set(sessionCtxKey, sess)
			return next(ctx)
		}
	}
}

// requireRole gates a route to one role; it must run after
// sessionMiddleware.
func requireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, ok := contextSession(ctx)
			if !ok {
				return unauthorizedErr
			}
			if sess.User.Role != role {
				return ForbiddenHttpErr
			}
			return next(ctx)
		}
	}
}

func contextSession(ctx echo.Context) (user.Session, bool) {
	sess, ok := ctx.Get(sessionCtxKey).(user.Session)
	return sess, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
