package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/evaluation"
	"github.com/trezcool/gradebook/core/user"
)

type (
	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

type authApi struct {
	conf     *core.Config
	svc      *user.Service
	sessions *evaluation.Sessions
	validate *validator.Validate
}

func registerAuthAPI(
	g *echo.Group,
	auth echo.MiddlewareFunc,
	conf *core.Config,
	svc *user.Service,
	sessions *evaluation.Sessions,
	validate *validator.Validate,
) {
	api := authApi{
		conf:     conf,
		svc:      svc,
		sessions: sessions,
		validate: validate,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login)

	// authed endpoints
	ag.POST("/token-refresh", api.refreshToken, auth)
	ag.POST("/logout", api.logout, auth)
	ag.GET("/me", api.me, auth)
}

func (api *authApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Login(ctx.Request().Context(), data)
	if err != nil {
		switch errors.Cause(err) {
		case user.ErrInvalidCredentials:
			return errAuthenticationFailed
		case user.ErrAccountDeactivated:
			return errAccountDeactivated
		}
		return errors.Wrap(err, "logging in")
	}

	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

// logout revokes the current token and discards the user's editing session.
func (api *authApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id, err := claims.UserID()
	if err != nil {
		return err
	}

	api.svc.Revoke(claims.Id, time.Unix(claims.ExpiresAt, 0))
	api.sessions.Leave(id)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Logged out."})
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

type userApi struct {
	svc      *user.Service
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *user.Service, validate *validator.Validate) {
	api := userApi{
		svc:      svc,
		validate: validate,
	}

	ug := g.Group("/users", auth, adminMiddleware())
	ug.GET("", api.query)
	ug.POST("", api.create)
	ug.GET("/roles", api.queryRoles)
}

func (api *userApi) query(ctx echo.Context) error {
	users, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}
