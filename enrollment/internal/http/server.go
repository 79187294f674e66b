package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
	"github.com/tilinna/clock"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/apierr"
	"github.com/KB-iGOT/cb-external-enrollment-service/common/logging"
	"github.com/KB-iGOT/cb-external-enrollment-service/common/response"
	"github.com/KB-iGOT/cb-external-enrollment-service/enrollment/internal/enrollment"
)

const (
	// TokenHeader carries the user token. Authorization is read when absent.
	TokenHeader = "x-authenticated-user-token"

	apiHealth = "api.cios.health"
)

const (
	routeEnroll         = "/v1/cios-enroll/create"
	routeListByUser     = "/v1/cios-enroll/readby/userid"
	routeGetByCourse    = "/v1/cios-enroll/readby/useridcourseid/:courseId"
	routeProgressUpdate = "/v1/cios-enroll/progress/update/:partnerId"
	routeContentRead    = "/v1/cios/content/read/:contentId"
	routeHealth         = "/health"
)

// routeAPI names the API id a failure on each route is reported with.
var routeAPI = map[string]string{
	routeEnroll:         enrollment.APICreate,
	routeListByUser:     enrollment.APIReadCourseList,
	routeGetByCourse:    enrollment.APIReadCourseID,
	routeProgressUpdate: enrollment.APIProgressUpdate,
	routeContentRead:    enrollment.APIContentRead,
	routeHealth:         apiHealth,
}

// Server exposes the enrollment service over REST.
type Server struct {
	Addr    string
	Service enrollment.Service
	Clock   clock.Clock
	Logger  *slog.Logger

	httpServer *http.Server
}

// Handler builds the router with every route and middleware in place.
func (s *Server) Handler() http.Handler {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(
		logging.CorrelationIDMiddleware(),
		logging.GinLogger(logger),
		logging.GinRecovery(logger, s.onPanic),
	)

	router.GET(routeHealth, s.health)

	router.POST(routeEnroll, s.enroll)
	router.GET(routeListByUser, s.listByUser)
	router.GET(routeGetByCourse, s.getByUserAndCourse)
	router.POST(routeProgressUpdate, s.progressUpdate)
	router.GET(routeContentRead, s.readContent)

	return router
}

func (s *Server) Start() error {
	slog.Info("starting enrollment HTTP server", "addr", s.Addr)

	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return errors.Annotatef(err, "failed to listen on %s", s.Addr)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Annotatef(err, "failed to serve on %s", s.Addr)
	}

	return nil
}

// Stop waits for in-flight requests until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return errors.Trace(s.httpServer.Shutdown(ctx))
}

func (s *Server) health(ctx *gin.Context) {
	env := response.New(ctx.Request.Context(), apiHealth, s.Clock.Now()).
		WithResult(gin.H{"healthy": true})

	render(ctx, env, nil)
}

// enroll hands the body over undecoded; the token is checked before the body.
func (s *Server) enroll(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil {
		s.renderFailure(ctx, enrollment.APICreate, apierr.BadRequestf("reading request body: %s", err))
		return
	}

	env, err := s.Service.Enroll(ctx.Request.Context(), body, requestToken(ctx))
	render(ctx, env, err)
}

func (s *Server) listByUser(ctx *gin.Context) {
	env, err := s.Service.ListByUser(ctx.Request.Context(), requestToken(ctx))
	render(ctx, env, err)
}

func (s *Server) getByUserAndCourse(ctx *gin.Context) {
	env, err := s.Service.GetByUserAndCourse(ctx.Request.Context(), ctx.Param("courseId"), requestToken(ctx))
	render(ctx, env, err)
}

func (s *Server) progressUpdate(ctx *gin.Context) {
	payload, err := ctx.GetRawData()
	if err != nil || !json.Valid(payload) {
		s.renderFailure(ctx, enrollment.APIProgressUpdate, apierr.BadRequest("invalid request body: expected a JSON document"))
		return
	}

	env, err := s.Service.ProgressUpdate(ctx.Request.Context(), payload, ctx.Param("partnerId"))
	render(ctx, env, err)
}

func (s *Server) readContent(ctx *gin.Context) {
	env, err := s.Service.FetchContent(ctx.Request.Context(), ctx.Param("contentId"))
	render(ctx, env, err)
}

func (s *Server) onPanic(ctx *gin.Context, recovered any) {
	api, ok := routeAPI[ctx.FullPath()]
	if !ok {
		api = "api.cios"
	}

	s.renderFailure(ctx, api, apierr.Internal(fmt.Errorf("panic: %v", recovered)))
}

func (s *Server) renderFailure(ctx *gin.Context, api string, apiErr *apierr.Error) {
	render(ctx, response.Failure(ctx.Request.Context(), api, s.Clock.Now(), apiErr), apiErr)
}

// render writes env with its own status code. err is attached to the gin
// context so the request log carries it.
func render(ctx *gin.Context, env response.Envelope, err error) {
	if err != nil {
		_ = ctx.Error(err)
	}

	status := env.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	ctx.JSON(status, env)
}

func requestToken(ctx *gin.Context) string {
	if tok := ctx.GetHeader(TokenHeader); tok != "" {
		return tok
	}

	return ctx.GetHeader("Authorization")
}
