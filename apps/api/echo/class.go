package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/class"
	"github.com/trezcool/gradebook/core/evaluation"
)

var errClassNotFoundInCtx = errors.New("class object not found in echo.Context")

type classApi struct {
	svc      *class.Service
	sessions *evaluation.Sessions
	validate *validator.Validate
}

func registerClassAPI(
	g *echo.Group,
	auth echo.MiddlewareFunc,
	svc *class.Service,
	sessions *evaluation.Sessions,
	validate *validator.Validate,
) {
	api := classApi{
		svc:      svc,
		sessions: sessions,
		validate: validate,
	}

	cg := g.Group("/classes", auth)
	cg.GET("", api.query)
	cg.POST("", api.create)

	// detail endpoints
	dg := cg.Group("/:id", objectMiddleware(api.getByID, class.ErrNotFound))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func (api *classApi) getByID(ctx echo.Context, id int) (interface{}, error) {
	return api.svc.GetByID(ctx.Request().Context(), id)
}

func (api *classApi) query(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	classes, err := api.svc.Query(ctx.Request().Context(), ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []class.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) create(ctx echo.Context) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *classApi) retrieve(ctx echo.Context) error {
	cls, ok := ctx.Get(contextObjectKey).(class.Class)
	if !ok {
		return errClassNotFoundInCtx
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) update(ctx echo.Context) error {
	cls, ok := ctx.Get(contextObjectKey).(class.Class)
	if !ok {
		return errClassNotFoundInCtx
	}

	var data class.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(cls, api.validate); err != nil {
		return err
	}

	updated, err := api.svc.Update(ctx.Request().Context(), cls.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	if updated.Name != cls.Name {
		api.sessions.RenameClass(cls.Name, updated.Name)
	}
	return ctx.JSON(http.StatusOK, updated)
}

func (api *classApi) destroy(ctx echo.Context) error {
	cls, ok := ctx.Get(contextObjectKey).(class.Class)
	if !ok {
		return errClassNotFoundInCtx
	}
	if err := api.svc.Delete(ctx.Request().Context(), cls.ID); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	api.sessions.Forget(cls.Name)
	return ctx.NoContent(http.StatusNoContent)
}
