package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/evaluation"
)

type (
	SelectClassRequest struct {
		Class string `json:"class" validate:"required,notblank"`
	}

	// FormRequest carries the form fields to change; absent fields keep their pending value.
	FormRequest struct {
		Name   *string `json:"name"`
		Weight *int    `json:"weight"`
	}

	WeightRequest struct {
		Weight *int `json:"weight" validate:"required"`
	}
)

func (fr FormRequest) isEmpty() bool {
	return fr.Name == nil && fr.Weight == nil
}

func (fr FormRequest) merge(f evaluation.Form) evaluation.Form {
	if fr.Name != nil {
		f.Name = *fr.Name
	}
	if fr.Weight != nil {
		f.Weight = *fr.Weight
	}
	return f
}

type evaluationApi struct {
	sessions *evaluation.Sessions
	validate *validator.Validate
}

func registerEvaluationAPI(g *echo.Group, auth echo.MiddlewareFunc, sessions *evaluation.Sessions, validate *validator.Validate) {
	api := evaluationApi{
		sessions: sessions,
		validate: validate,
	}

	eg := g.Group("/evaluations", auth)
	eg.GET("/classes", api.queryClasses)
	eg.POST("/select", api.selectClass)
	eg.GET("", api.retrieve)
	eg.DELETE("", api.leave)

	// criterion form
	fg := eg.Group("/editor")
	fg.POST("/create", api.openCreate)
	fg.POST("/edit/:id", api.openEdit)
	fg.PUT("", api.setForm)
	fg.POST("/submit", api.submit)
	fg.POST("/cancel", api.cancel)

	// inline actions
	cg := eg.Group("/criteria")
	cg.DELETE("/:id", api.remove)
	cg.PATCH("/:id", api.setWeight)
}

// session returns the context user's current session.
func (api *evaluationApi) session(ctx echo.Context) (*evaluation.Session, error) {
	id, err := getContextUserID(ctx)
	if err != nil {
		return nil, err
	}
	return api.sessions.Get(id)
}

// do runs fn on the context user's editor and renders the resulting snapshot.
func (api *evaluationApi) do(ctx echo.Context, code int, fn func(*evaluation.Editor) error) error {
	sess, err := api.session(ctx)
	if err != nil {
		return err
	}
	snap, err := sess.Do(fn)
	if err != nil {
		recordRejection(err)
		return err
	}
	return ctx.JSON(code, snap)
}

func (api *evaluationApi) queryClasses(ctx echo.Context) error {
	names, err := api.sessions.Classes(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if names == nil {
		names = []string{}
	}
	return ctx.JSON(http.StatusOK, names)
}

func (api *evaluationApi) selectClass(ctx echo.Context) error {
	var data SelectClassRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SelectClassRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	id, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	sess, err := api.sessions.Select(ctx.Request().Context(), id, data.Class)
	if err != nil {
		return errors.Wrap(err, "selecting class")
	}
	return ctx.JSON(http.StatusOK, sess.Snapshot())
}

func (api *evaluationApi) retrieve(ctx echo.Context) error {
	sess, err := api.session(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess.Snapshot())
}

func (api *evaluationApi) leave(ctx echo.Context) error {
	id, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	if !api.sessions.Leave(id) {
		return evaluation.ErrNoSession
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *evaluationApi) openCreate(ctx echo.Context) error {
	return api.do(ctx, http.StatusOK, func(e *evaluation.Editor) error {
		return e.OpenCreate()
	})
}

func (api *evaluationApi) openEdit(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	return api.do(ctx, http.StatusOK, func(e *evaluation.Editor) error {
		return e.OpenEdit(id)
	})
}

func (api *evaluationApi) setForm(ctx echo.Context) error {
	var data FormRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FormRequest")
	}
	return api.do(ctx, http.StatusOK, func(e *evaluation.Editor) error {
		return e.SetForm(data.merge(e.Form()))
	})
}

// submit commits the form, after applying the optional body on top of it.
func (api *evaluationApi) submit(ctx echo.Context) error {
	var data FormRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FormRequest")
	}
	return api.do(ctx, http.StatusOK, func(e *evaluation.Editor) error {
		if !data.isEmpty() {
			if err := e.SetForm(data.merge(e.Form())); err != nil {
				return err
			}
		}
		_, err := e.Submit()
		return err
	})
}

func (api *evaluationApi) cancel(ctx echo.Context) error {
	return api.do(ctx, http.StatusOK, func(e *evaluation.Editor) error {
		e.Cancel()
		return nil
	})
}

func (api *evaluationApi) remove(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	ok := confirmed(ctx)
	return api.do(ctx, http.StatusOK, func(e *evaluation.Editor) error {
		_, err := e.Remove(id, func(evaluation.Criterion) bool { return ok })
		return err
	})
}

func (api *evaluationApi) setWeight(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	var data WeightRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to WeightRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	return api.do(ctx, http.StatusOK, func(e *evaluation.Editor) error {
		_, err := e.SetWeight(id, *data.Weight)
		return err
	})
}
