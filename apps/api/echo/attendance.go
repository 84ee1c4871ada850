package echoapi

import (
	"bytes"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/operator"
)

const qrImageSize = 512

type attendanceApi struct {
	svc        *attendance.Service
	opSvc      operator.Verifier
	conf       *core.Config
	validate   *validator.Validate
	translator ut.Translator
	srv        *server
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *server) {
	api := attendanceApi{
		svc:        s.deps.AttendanceSvc,
		opSvc:      s.deps.OperatorSvc,
		conf:       s.deps.Conf,
		validate:   s.deps.Validate,
		translator: s.deps.Translator,
		srv:        s,
	}

	// un-authed endpoints
	g.POST("/operator/login", api.login)
	g.POST("/attendance", api.submit)

	// operator endpoints
	sg := g.Group("/sessions", jwt)
	sg.POST("", api.createSession)
	sg.GET("/active", api.activeSession)
	sg.DELETE("/active", api.closeSession)
	sg.GET("/active/qr", api.sessionQR)

	rg := g.Group("/records", jwt)
	rg.GET("", api.queryRecords)
	rg.GET("/export", api.exportRecords)
}

// Handlers

func (api *attendanceApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	op, err := authenticate(data.Username, data.Password, api.opSvc)
	if err != nil {
		return err
	}
	token, err := api.srv.generateToken(getOperatorClaims(api.conf, op))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *attendanceApi) createSession(ctx echo.Context) error {
	var data attendance.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.CreateSession(data)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, SessionResponse{
		Session: sess,
		JoinURL: sess.JoinURL(api.conf.FrontendBaseURL),
	})
}

func (api *attendanceApi) activeSession(ctx echo.Context) error {
	sess, err := api.svc.ActiveSession()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SessionResponse{
		Session: sess,
		JoinURL: sess.JoinURL(api.conf.FrontendBaseURL),
	})
}

func (api *attendanceApi) closeSession(ctx echo.Context) error {
	sess, err := api.svc.CloseSession()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *attendanceApi) sessionQR(ctx echo.Context) error {
	sess, err := api.svc.ActiveSession()
	if err != nil {
		return err
	}
	png, err := sess.QRCodePNG(api.conf.FrontendBaseURL, qrImageSize)
	if err != nil {
		return err
	}
	return ctx.Blob(http.StatusOK, "image/png", png)
}

func (api *attendanceApi) submit(ctx echo.Context) error {
	var data attendance.Submission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.Submit(data)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) queryRecords(ctx echo.Context) error {
	filter, err := bindQueryFilter(ctx)
	if err != nil {
		return err
	}
	recs, err := api.svc.Filter(filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) exportRecords(ctx echo.Context) error {
	filter, err := bindQueryFilter(ctx)
	if err != nil {
		return err
	}
	recs, err := api.svc.Filter(filter)
	if err != nil {
		return err
	}

	var buff bytes.Buffer
	if err := attendance.WriteReportCSV(&buff, recs); err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="attendance.csv"`)
	return ctx.Blob(http.StatusOK, "text/csv", buff.Bytes())
}

// bindQueryFilter parses filter query params; the default binder does not
// handle time.Time.
func bindQueryFilter(ctx echo.Context) (attendance.QueryFilter, error) {
	filter := attendance.QueryFilter{
		SessionID: ctx.QueryParam("session_id"),
		StudentID: ctx.QueryParam("student_id"),
	}
	for param, dst := range map[string]*time.Time{
		"submitted_from": &filter.SubmittedFrom,
		"submitted_to":   &filter.SubmittedTo,
	} {
		if raw := ctx.QueryParam(param); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return filter, core.NewValidationError(nil, core.FieldError{Field: param, Error: "must be a RFC3339 timestamp"})
			}
			*dst = t
		}
	}
	return filter, nil
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	SessionResponse struct {
		attendance.Session
		JoinURL string `json:"join_url"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
