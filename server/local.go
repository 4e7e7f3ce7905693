package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aura-studio/lambdaweb/bridge"
	"github.com/aura-studio/lambdaweb/dynamic"
	"github.com/aura-studio/lambdaweb/metrics"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const localFormat = "local"

var methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead, http.MethodOptions}

// Local serves a bridge.Handler on an ordinary listener. Requests go through
// the same canonical model as on Lambda.
type Local struct {
	*Options
	*gin.Engine
	handler bridge.Handler
	loader  *dynamic.Loader
	srv     *http.Server
}

func NewLocal(handler bridge.Handler, opts ...Option) *Local {
	return newLocal(handler, NewOptions(opts...))
}

func newLocal(handler bridge.Handler, options *Options) *Local {
	l := &Local{
		Options: options,
		handler: handler,
	}
	if l.Logger == nil {
		l.Logger = logrus.StandardLogger()
	}
	if l.DebugMode && !l.Logger.IsLevelEnabled(logrus.DebugLevel) {
		l.Logger.SetLevel(logrus.DebugLevel)
	}
	if l.Metrics == nil {
		l.Metrics = metrics.New()
	}
	if loader, ok := handler.(dynamicHandler); ok {
		l.loader = loader.loader
	}

	if !l.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	l.Engine = gin.New()
	l.Use(gin.Recovery())
	if l.DebugMode {
		l.Use(l.logRequest)
	}
	if l.CorsMode {
		l.Use(cors())
	}

	l.installHandlers()
	l.srv = &http.Server{
		Addr:    l.Address,
		Handler: l.Engine,
	}

	return l
}

func (l *Local) installHandlers() {
	if l.HealthCheckPath != "" {
		l.HandleAllMethods(l.HealthCheckPath, l.OK)
	}
	if l.MetricsPath != "" {
		l.GET(l.MetricsPath, gin.WrapH(l.Metrics.Handler()))
	}
	if l.loader != nil {
		l.GET("/_meta/*path", l.Meta)
	}
	l.NoRoute(l.Forward)
}

func (l *Local) HandleAllMethods(relativePath string, handlers ...gin.HandlerFunc) {
	for _, method := range methods {
		l.Handle(method, relativePath, handlers...)
	}
}

func (l *Local) OK(c *gin.Context) {
	c.String(http.StatusOK, "OK")
	c.Abort()
}

// Meta reports loader and package metadata for /_meta/{package}/{version}.
func (l *Local) Meta(c *gin.Context) {
	parts := strings.Split(strings.Trim(c.Param("path"), "/"), "/")
	var pkg, version string
	if len(parts) >= 2 {
		pkg, version = parts[0], parts[1]
	}
	c.Data(http.StatusOK, "application/json", []byte(l.loader.Meta(pkg, version)))
	c.Abort()
}

// Forward hands every unmatched request to the bridged handler.
func (l *Local) Forward(c *gin.Context) {
	start := time.Now()

	req, err := bridge.ReadRequest(c.Request)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		c.Abort()
		return
	}

	resp, err := l.handler.ServeLambda(c.Request.Context(), req)
	if err == nil && resp == nil {
		err = errors.New("handler returned no response")
	}
	if err != nil {
		l.Logger.WithFields(logrus.Fields{
			"requestId": req.Meta.RequestID,
			"method":    req.Method,
			"path":      req.Path,
		}).WithError(err).Error("[Local] handler failed")
		l.Metrics.Observe(localFormat, "HandlerError", time.Since(start))
		c.String(http.StatusInternalServerError, err.Error())
		c.Abort()
		return
	}

	if err := bridge.WriteResponse(c.Writer, resp); err != nil {
		l.Logger.WithError(err).Warn("[Local] write response")
	}
	l.Metrics.Observe(localFormat, metrics.OutcomeSuccess, time.Since(start))
	c.Abort()
}

func (l *Local) logRequest(c *gin.Context) {
	start := time.Now()
	c.Next()
	l.Logger.WithFields(logrus.Fields{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	}).Debug("[Local] request")
}

// ListenAndServe blocks until the listener fails or Close is called.
func (l *Local) ListenAndServe() error {
	l.Logger.WithField("address", l.Address).Info("[Local] listening")
	if err := l.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (l *Local) Close(ctx context.Context) error {
	return l.srv.Shutdown(ctx)
}
