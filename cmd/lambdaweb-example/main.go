package main

import (
	"context"
	"net/http"
	"os"

	"github.com/aura-studio/lambdaweb/bridge"
	"github.com/aura-studio/lambdaweb/canonical"
	"github.com/aura-studio/lambdaweb/mode"
	"github.com/aura-studio/lambdaweb/runtime"
	"github.com/aura-studio/lambdaweb/server"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "lambdaweb example")
	})
	r.GET("/hello/:name", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"hello": c.Param("name")})
	})
	r.POST("/echo", func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.Data(http.StatusOK, c.ContentType(), body)
	})
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ip":        c.ClientIP(),
			"requestId": c.GetHeader("X-Request-Id"),
			"trace":     os.Getenv("_X_AMZN_TRACE_ID"),
		})
	})
	return r
}

// withRequestID copies the invocation's request id into a header so plain
// net/http code can log it.
func withRequestID(next bridge.Handler) bridge.Handler {
	return bridge.HandlerFunc(func(ctx context.Context, req *canonical.Request) (*canonical.Response, error) {
		if req.Meta.RequestID != "" {
			req.Header.Set("X-Request-Id", req.Meta.RequestID)
		}
		return next.ServeLambda(ctx, req)
	})
}

func main() {
	// .env is optional; it only matters for local runs
	_ = godotenv.Load()

	logger := logrus.New()
	if mode.IsRunningOnLambda() {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	err := server.Serve(withRequestID(bridge.Gin(newRouter())),
		server.WithDefaultServeConfigFile(),
		server.WithLogger(logger),
		server.WithRuntime(runtime.WithBinaryMediaTypes("image/*", "application/octet-stream")),
	)
	if err != nil {
		logger.WithError(err).Fatal("serve")
	}
}
