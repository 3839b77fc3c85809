// Package logsvc reports application events to Rollbar and mirrors them on a standard logger.
package logsvc

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/rollbar/rollbar-go"
	rollbarerrors "github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/user"
)

// RollbarLogger owns its Rollbar client; loggers built from the same config report independently.
type RollbarLogger struct {
	client *rollbar.Client
	std    *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	client := rollbar.NewAsync(conf.RollbarToken, conf.Env, conf.Build, conf.Server.Host, "")
	client.SetStackTracer(rollbarerrors.StackTracer)
	return &RollbarLogger{client: client, std: std}
}

// Enable turns reporting to Rollbar on or off. Messages are always mirrored to std.
func (l *RollbarLogger) Enable(enabled bool) {
	l.client.SetEnabled(enabled)
}

// report is one log call, sorted out for Rollbar.
type report struct {
	ctx    context.Context // carries the acting user, when there is one
	err    error
	extras map[string]interface{}
}

// collect sorts the args of a log call: the first error is reported with its stack,
// maps are merged into the extras, the first user.User with an ID becomes the Rollbar
// person and anything else is kept as "arg<N>" extras.
func collect(args []interface{}) report {
	r := report{ctx: context.Background(), extras: make(map[string]interface{})}
	var usrSet bool
	for i, arg := range args {
		switch v := arg.(type) {
		case user.User:
			if !usrSet && v.ID != 0 {
				r.ctx = rollbar.NewPersonContext(r.ctx, &rollbar.Person{
					Id:       strconv.Itoa(v.ID),
					Username: v.Name,
					Email:    v.Email,
				})
				usrSet = true
			}
		case error:
			if r.err == nil {
				r.err = v
			} else {
				r.extras["arg"+strconv.Itoa(i)] = v.Error()
			}
		case map[string]interface{}:
			for k, val := range v {
				r.extras[k] = val
			}
		default:
			r.extras["arg"+strconv.Itoa(i)] = fmt.Sprintf("%+v", v)
		}
	}
	return r
}

func (l *RollbarLogger) log(level, msg string, args []interface{}) {
	r := collect(args)
	if r.err != nil {
		r.extras["message"] = msg
		l.client.ErrorWithExtrasAndContext(r.ctx, level, r.err, r.extras)
	} else {
		l.client.MessageWithExtrasAndContext(r.ctx, level, msg, r.extras)
	}

	l.std.Printf("%s: %s", strings.ToUpper(level), msg)
	for _, arg := range args {
		l.std.Printf("\t%+v", arg)
	}
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) { l.log(rollbar.DEBUG, msg, args) }
func (l *RollbarLogger) Info(msg string, args ...interface{})  { l.log(rollbar.INFO, msg, args) }
func (l *RollbarLogger) Warn(msg string, args ...interface{})  { l.log(rollbar.WARN, msg, args) }
func (l *RollbarLogger) Error(msg string, args ...interface{}) { l.log(rollbar.ERR, msg, args) }

// Fatal reports msg, waits for pending reports to be sent, then exits.
func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	l.client.Wait()
	l.std.Fatal(msg)
}
