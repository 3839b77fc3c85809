package dig_container

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/class"
	"github.com/trezcool/gradebook/core/dashboard"
	"github.com/trezcool/gradebook/core/evaluation"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/user"
	logsvc "github.com/trezcool/gradebook/services/logger"
	dummydb "github.com/trezcool/gradebook/storage/database/dummy"
	"github.com/trezcool/gradebook/storage/seed"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type depsParam struct {
	dig.In
	Validate     *validator.Validate
	Translator   ut.Translator
	UserSvc      *user.Service
	StudentSvc   *student.Service
	ClassSvc     *class.Service
	DashboardSvc *dashboard.Service
	Sessions     *evaluation.Sessions
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *dummydb.DB {
	setUp := func() (*dummydb.DB, error) {
		data, err := seed.Load(conf.Store.SeedFile)
		if err != nil {
			return nil, err
		}
		return dummydb.Open(dummydb.Options{Latency: conf.Store.Latency, Seed: data})
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

// newClassDirectory exposes the class service to the consumers of class names.
func newClassDirectory(svc *class.Service) (student.ClassDirectory, evaluation.ClassDirectory) {
	return svc, svc
}

func newDeps(p depsParam) *echoapi.Deps {
	return &echoapi.Deps{
		Validate:     p.Validate,
		Translator:   p.Translator,
		UserSvc:      p.UserSvc,
		StudentSvc:   p.StudentSvc,
		ClassSvc:     p.ClassSvc,
		DashboardSvc: p.DashboardSvc,
		Sessions:     p.Sessions,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(dummydb.NewUserRepository))
	must(c.Provide(dummydb.NewClassRepository, dig.As(new(class.Repository), new(dashboard.ClassCounter))))
	must(c.Provide(dummydb.NewStudentRepository, dig.As(new(student.Repository), new(class.Roster), new(dashboard.StudentCounter))))
	must(c.Provide(dummydb.NewEvaluationRepository))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(core.NewValidator))
	must(c.Provide(user.NewService))
	must(c.Provide(class.NewService))
	must(c.Provide(newClassDirectory))
	must(c.Provide(student.NewService))
	must(c.Provide(dashboard.NewService))
	must(c.Provide(evaluation.NewSessions))
	must(c.Provide(newDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
