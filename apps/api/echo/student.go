package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/student"
)

var errStudentNotFoundInCtx = errors.New("student object not found in echo.Context")

type studentApi struct {
	svc      *student.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *student.Service, validate *validator.Validate) {
	api := studentApi{
		svc:      svc,
		validate: validate,
	}

	sg := g.Group("/students", auth)
	sg.GET("", api.query)
	sg.POST("", api.create)

	// detail endpoints
	dg := sg.Group("/:id", objectMiddleware(api.getByID, student.ErrNotFound))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func (api *studentApi) getByID(ctx echo.Context, id int) (interface{}, error) {
	return api.svc.GetByID(ctx.Request().Context(), id)
}

func (api *studentApi) query(ctx echo.Context) error {
	var filter student.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	var ord Ordering
	ord.Bind(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), filter, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	s, ok := ctx.Get(contextObjectKey).(student.Student)
	if !ok {
		return errStudentNotFoundInCtx
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	s, ok := ctx.Get(contextObjectKey).(student.Student)
	if !ok {
		return errStudentNotFoundInCtx
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(s, api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), s, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	s, ok := ctx.Get(contextObjectKey).(student.Student)
	if !ok {
		return errStudentNotFoundInCtx
	}
	if err := api.svc.Delete(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}
