package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/incluso/backend/core/school"
	"github.com/incluso/backend/core/user"
)

type schoolApi struct {
	service *school.Service
}

// mutationResponse carries the dual-write outcome: synced=false means
// the record was saved locally but the remote sync failed ("saved
// offline"); the operation itself still succeeded.
type mutationResponse struct {
	Data   interface{} `json:"data"`
	Synced bool        `json:"synced"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
	Synced  bool `json:"synced"`
}

func registerSchoolAPI(g *echo.Group, svc *school.Service, sessions user.SessionStore) {
	api := schoolApi{service: svc}

	authed := g.Group("", sessionMiddleware(sessions))
	coord := requireRole(user.RoleCoordinator)
	teacher := requireRole(user.RoleTeacher)

	sg := authed.Group("/students")
	sg.GET("", api.studentList)
	sg.POST("", api.studentCreate, coord)
	sg.GET("/:id", api.studentRetrieve)
	sg.PUT("/:id", api.studentUpdate, coord)
	sg.DELETE("/:id", api.studentDestroy, coord)
	sg.GET("/:id/adaptations", api.adaptationList)
	sg.GET("/:id/reports", api.reportList)
	sg.GET("/:id/report", api.studentReport)
	sg.POST("/:id/report/email", api.studentReportEmail, coord)

	ag := authed.Group("/adaptations")
	ag.POST("", api.adaptationCreate, coord)
	ag.PUT("/:id", api.adaptationUpdate, coord)
	ag.DELETE("/:id", api.adaptationDestroy, coord)

	rg := authed.Group("/reports")
	rg.POST("", api.reportCreate, teacher)
	rg.PUT("/:id", api.reportUpdate, teacher)
	rg.DELETE("/:id", api.reportDestroy)
}

// Students

func (api *schoolApi) studentList(ctx echo.Context) error {
	students, err := api.service.ListStudents(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *schoolApi) studentCreate(ctx echo.Context) error {
	data := new(school.NewStudent)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	sess, _ := contextSession(ctx)
	st, synced, err := api.service.CreateStudent(ctx.Request().Context(), sess.User, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, mutationResponse{Data: st, Synced: synced})
}

func (api *schoolApi) studentRetrieve(ctx echo.Context) error {
	st, err := api.service.GetStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *schoolApi) studentUpdate(ctx echo.Context) error {
	data := new(school.UpdateStudent)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	sess, _ := contextSession(ctx)
	st, synced, err := api.service.UpdateStudent(ctx.Request().Context(), sess.User, ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mutationResponse{Data: st, Synced: synced})
}

func (api *schoolApi) studentDestroy(ctx echo.Context) error {
	found, synced, err := api.service.DeleteStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if !found {
		return NotFoundHttpErr
	}
	return ctx.JSON(http.StatusOK, deleteResponse{Deleted: true, Synced: synced})
}

func (api *schoolApi) studentReport(ctx echo.Context) error {
	agg, err := api.service.StudentReport(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, agg)
}

func (api *schoolApi) studentReportEmail(ctx echo.Context) error {
	if err := api.service.EmailStudentReport(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusAccepted)
}

// Adaptations

func (api *schoolApi) adaptationList(ctx echo.Context) error {
	adapts, err := api.service.ListAdaptations(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, adapts)
}

func (api *schoolApi) adaptationCreate(ctx echo.Context) error {
	data := new(school.NewAdaptation)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	sess, _ := contextSession(ctx)
	ad, synced, err := api.service.CreateAdaptation(ctx.Request().Context(), sess.User, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, mutationResponse{Data: ad, Synced: synced})
}

func (api *schoolApi) adaptationUpdate(ctx echo.Context) error {
	data := new(school.UpdateAdaptation)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	ad, synced, err := api.service.UpdateAdaptation(ctx.Request().Context(), ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mutationResponse{Data: ad, Synced: synced})
}

func (api *schoolApi) adaptationDestroy(ctx echo.Context) error {
	found, synced, err := api.service.DeleteAdaptation(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if !found {
		return NotFoundHttpErr
	}
	return ctx.JSON(http.StatusOK, deleteResponse{Deleted: true, Synced: synced})
}

// Reports

func (api *schoolApi) reportList(ctx echo.Context) error {
	reports, err := api.service.ListReports(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *schoolApi) reportCreate(ctx echo.Context) error {
	data := new(school.NewReport)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	sess, _ := contextSession(ctx)
	rp, synced, err := api.service.CreateReport(ctx.Request().Context(), sess.User, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, mutationResponse{Data: rp, Synced: synced})
}

func (api *schoolApi) reportUpdate(ctx echo.Context) error {
	data := new(school.UpdateReport)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	rp, synced, err := api.service.UpdateReport(ctx.Request().Context(), ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mutationResponse{Data: rp, Synced: synced})
}

func (api *schoolApi) reportDestroy(ctx echo.Context) error {
	found, synced, err := api.service.DeleteReport(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if !found {
		return NotFoundHttpErr
	}
	return ctx.JSON(http.StatusOK, deleteResponse{Deleted: true, Synced: synced})
}
