package echoapi

import (
	"bytes"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/operator"
	emailsvc "github.com/trezcool/mahudhurio/services/email"
	logsvc "github.com/trezcool/mahudhurio/services/logger"
	inmemdb "github.com/trezcool/mahudhurio/storage/database/inmem"
)

const (
	testUsername = "prof.moyo"
	testPassword = "s3cr3t-pass"

	anchorLat = 12.9716
	anchorLon = 77.5946
)

// 1 degree of latitude on the haversine sphere (R = 6371 km).
const metersPerDegreeLat = 6371000 * math.Pi / 180

// offsetLat returns a point `meters` due north of `lat`.
func offsetLat(lat float64, meters float64) float64 {
	return lat + meters/metersPerDegreeLat
}

func testConf(t *testing.T) *core.Config {
	t.Helper()
	hash, err := operator.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}
	conf := &core.Config{
		TestMode:        true,
		AppName:         "Mahudhurio",
		SecretKey:       []byte("test-secret-key"),
		FrontendBaseURL: "http://localhost:3000",
	}
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Attendance.DedupWindow = 24 * time.Hour
	conf.Attendance.DefaultSessionDuration = 30 * time.Minute
	conf.Operator.Username = testUsername
	conf.Operator.PasswordHash = hash
	return conf
}

// newTestServer wires a full server on the in-memory store. Each call gets its
// own session state and record store.
func newTestServer(t *testing.T) Server {
	t.Helper()
	conf := testConf(t)

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	repo := inmemdb.NewAttendanceRepository(db)

	validate := validator.New()
	translator := newTestTranslator()
	core.InitValidators(validate, translator)

	return NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags)),
		AttendanceSvc:  attendance.NewService(conf, repo, emailsvc.NewConsoleServiceMock(conf), nil),
		OperatorSvc:    operator.NewService(conf),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
}

func newTestTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
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
	return req, httptest.NewRecorder()
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

// getToken logs the test operator in and returns the issued JWT.
func getToken(t *testing.T, app Server) string {
	t.Helper()
	body := marshallObj(t, LoginRequest{Username: testUsername, Password: testPassword})
	req, rec := newRequest(http.MethodPost, "/v1/operator/login", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("getToken() failed: code %d body %s", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return resp.Token
}

// openTestSession creates a session over the API and returns the response.
func openTestSession(t *testing.T, app Server, token string, ns attendance.NewSession) SessionResponse {
	t.Helper()
	req, rec := newAuthRequest(http.MethodPost, "/v1/sessions", token, marshallObj(t, ns))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("openTestSession() failed: code %d body %s", rec.Code, rec.Body.String())
	}
	var resp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("openTestSession() failed: %v", err)
	}
	return resp
}

func floatPtr(f float64) *float64 { return &f }

// mockNow pins attendance.NowFunc to `t0` and restores it on cleanup.
func mockNow(t *testing.T, t0 time.Time) *time.Time {
	t.Helper()
	now := t0
	attendance.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { attendance.NowFunc = time.Now })
	return &now
}
