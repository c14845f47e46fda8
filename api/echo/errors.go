package echoapi

import (
	stderrors "errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/incluso/backend/core"
	"github.com/incluso/backend/core/school"
	"github.com/incluso/backend/core/user"
)

var (
	unauthorizedErr  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	ForbiddenHttpErr = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	NotFoundHttpErr  = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler translates the core error taxonomy into HTTP
// responses; anything unrecognized is a 500 and gets reported.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code    int
			message interface{}
		)

		var vErr *core.ValidationError
		switch {
		case stderrors.As(err, &vErr):
			if vErr.Fields != nil {
				fldErrs := make(map[string]string)
				for _, fErr := range vErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = vErr.Error()
			}
			code = http.StatusBadRequest
		case stderrors.Is(err, user.ErrAuthenticationFailed):
			code, message = http.StatusBadRequest, user.ErrAuthenticationFailed.Error()
		case stderrors.Is(err, user.ErrNoSession):
			code, message = http.StatusUnauthorized, unauthorizedErr.Message
		case stderrors.Is(err, school.ErrNotFound), stderrors.Is(err, user.ErrNotFound):
			code, message = http.StatusNotFound, NotFoundHttpErr.Message
		default:
			code, message = translateEchoErr(err)
		}

		if code == http.StatusInternalServerError {
			logger.Error("api: "+err.Error(), err)
		}
		if c.Response().Committed {
			return
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, echo.Map{"error": message})
	}
}

func translateEchoErr(err error) (int, interface{}) {
	switch err := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if err.Internal != nil {
			if herr, ok := err.Internal.(*echo.HTTPError); ok {
				err = herr
			}
		}
		return err.Code, err.Message
	case validator.ValidationErrors:
		fldErrs := make(map[string]string)
		for _, fErr := range err {
			fldErrs[fErr.Field()] = fErr.Translate(core.Translator)
		}
		return http.StatusBadRequest, fldErrs
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}
