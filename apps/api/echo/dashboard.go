package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/dashboard"
)

type dashboardApi struct {
	svc *dashboard.Service
}

func registerDashboardAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *dashboard.Service) {
	api := dashboardApi{svc: svc}
	g.GET("/dashboard", api.summary, auth)
}

func (api *dashboardApi) summary(ctx echo.Context) error {
	sum, err := api.svc.Summary(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing dashboard summary")
	}
	return ctx.JSON(http.StatusOK, sum)
}
