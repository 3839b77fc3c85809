package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/class"
	"github.com/trezcool/gradebook/core/dashboard"
	"github.com/trezcool/gradebook/core/evaluation"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/user"
	logsvc "github.com/trezcool/gradebook/services/logger"
	dummydb "github.com/trezcool/gradebook/storage/database/dummy"
	"github.com/trezcool/gradebook/tests"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errUnauthorized = httpErr{Error: "user not authenticated"}
)

// testEnv is a server over a freshly seeded database.
type testEnv struct {
	app      *Server
	conf     *core.Config
	usrRepo  user.Repository
	clsRepo  *dummydb.ClassRepository
	stdRepo  *dummydb.StudentRepository
	usrSvc   *user.Service
	sessions *evaluation.Sessions

	admin        user.User
	teacher      user.User
	adminToken   string
	teacherToken string
}

func setup(t *testing.T, demo ...bool) *testEnv {
	conf := core.NewTestConfig()
	if len(demo) > 0 {
		conf.Auth.DemoMode = demo[0]
	}

	// set up DB & repos
	db := testutil.OpenSeededDB(t)
	env := &testEnv{
		conf:    conf,
		usrRepo: dummydb.NewUserRepository(db),
		clsRepo: dummydb.NewClassRepository(db),
		stdRepo: dummydb.NewStudentRepository(db),
	}

	// set up services
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	env.usrSvc = user.NewService(env.usrRepo, conf)
	clsSvc := class.NewService(env.clsRepo, env.stdRepo)
	env.sessions = evaluation.NewSessions(clsSvc)

	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
	logger.Enable(false)

	// set up server
	env.app = NewServer(conf, logger, &Deps{
		Validate:     validate,
		Translator:   translator,
		UserSvc:      env.usrSvc,
		StudentSvc:   student.NewService(env.stdRepo, clsSvc),
		ClassSvc:     clsSvc,
		DashboardSvc: dashboard.NewService(dummydb.NewEvaluationRepository(db), env.stdRepo, env.clsRepo),
		Sessions:     env.sessions,
	})

	env.admin = getUser(t, env.usrRepo, "admin@escola.com")
	env.teacher = getUser(t, env.usrRepo, "professor@escola.com")
	env.adminToken = getToken(t, conf, env.admin)
	env.teacherToken = getToken(t, conf, env.teacher)
	return env
}

// do serves a request and returns the recorded response.
func (env *testEnv) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	env.app.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, env.do(tt.method, tt.path, tt.token, tt.body))
		})
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getUser(t *testing.T, repo user.Repository, email string) user.User {
	usr, err := repo.GetUserByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("getUser() failed: %v", err)
	}
	return usr
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	claims := GetUserClaims(conf, usr)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "body: %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
