package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const contextObjectKey = "object"

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// objectMiddleware loads the object named by the `:id` path parameter into the context.
// get must return notFound when there is no such object.
func objectMiddleware(get func(echo.Context, int) (interface{}, error), notFound error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := idParam(ctx)
			if err != nil {
				return err
			}
			obj, err := get(ctx, id)
			if err != nil {
				if errors.Cause(err) == notFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding object by ID")
			}
			ctx.Set(contextObjectKey, obj)
			return next(ctx)
		}
	}
}
