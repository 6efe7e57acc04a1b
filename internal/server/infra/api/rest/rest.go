// Package rest HTTP API конструктора хитов.
//
// Каждая сессия /hits/:id хранит одну модель хита. Ответы возвращаются в JSON,
// ошибки в виде {"error": "..."}.
package rest

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hitbuilder/internal/server/core/model"
)

// HitService операции над сессиями конструктора хитов.
type HitService interface {
	CreateHit(ctx context.Context, query string) (model.Snapshot, error)
	GetHit(ctx context.Context, id string) (model.Snapshot, error)
	DeleteHit(ctx context.Context, id string) error
	ReplacePayload(ctx context.Context, id, payload string) (model.Snapshot, error)
	AddParameter(ctx context.Context, id, name string) (model.Snapshot, error)
	RemoveParameter(ctx context.Context, id string, paramID int64) (model.Snapshot, error)
	UpdateParameter(ctx context.Context, id string, paramID int64, patch model.Patch) (model.Snapshot, error)
	GenerateClientID(ctx context.Context, id string) (model.Snapshot, error)
	ValidateHit(ctx context.Context, id string) (model.Snapshot, error)
	SendHit(ctx context.Context, id string) (model.Snapshot, error)
	Properties(ctx context.Context, token string) ([]model.Property, error)
	HitTypes() []string
	Ping(ctx context.Context) error
}

type Config struct {
	Service HitService
	Logger  zap.SugaredLogger
	Address string
	Pprof   bool
}

type API struct {
	srv    *http.Server
	logger zap.SugaredLogger
}

func NewServerAPI(conf Config) *API {
	h := handler{
		service: conf.Service,
		logger:  conf.Logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(h.MwLog())
	router.Use(h.mwDecompress())
	router.Use(h.responseGzipMiddleware())

	router.GET("/hits/new", h.createFromQuery)
	router.POST("/hits", h.create)
	router.GET("/hits/:id", h.get)
	router.DELETE("/hits/:id", h.delete)
	router.PUT("/hits/:id/payload", h.replacePayload)
	router.POST("/hits/:id/parameters", h.addParameter)
	router.PATCH("/hits/:id/parameters/:pid", h.updateParameter)
	router.DELETE("/hits/:id/parameters/:pid", h.removeParameter)
	router.POST("/hits/:id/cid", h.generateClientID)
	router.POST("/hits/:id/validate", h.validate)
	router.POST("/hits/:id/send", h.send)

	router.GET("/hit-types", h.hitTypes)
	router.GET("/properties", h.properties)
	router.GET("/ping", h.ping)
	router.GET("/health", h.health)

	if conf.Pprof {
		pprof.Register(router)
	}

	return &API{
		srv: &http.Server{
			Addr:              conf.Address,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: conf.Logger,
	}
}

func (a *API) Run() error {
	a.logger.Infow("server started", "address", a.srv.Addr)

	err := a.srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to listen and serve: %w", err)
	}

	return nil
}

func (a *API) Shutdown(ctx context.Context) error {
	err := a.srv.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

func (h *handler) MwLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()

		c.Next()

		h.logger.Infow("request",
			"uri", c.Request.RequestURI,
			"method", c.Request.Method,
			"latency", time.Since(now).String(),
			"status", c.Writer.Status(),
			"size", c.Writer.Size(),
		)
	}
}

func (h *handler) mwDecompress() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Content-Encoding"), "gzip") {
			c.Next()
			return
		}

		gzipReader, err := gzip.NewReader(c.Request.Body)
		if err != nil {
			h.logger.Errorw("failed to create gzip reader", "error", err)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid gzip body"})
			return
		}

		defer func() {
			err := gzipReader.Close()
			if err != nil {
				h.logger.Errorw("failed to close gzip reader", "error", err)
			}
		}()

		c.Request.Body = io.NopCloser(gzipReader)

		c.Next()
	}
}

func (h *handler) responseGzipMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Проверяем, поддерживает ли клиент gzip
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		w := &gzipResponseWriter{ResponseWriter: c.Writer}
		defer func() {
			err := w.Close()
			if err != nil {
				h.logger.Errorw("failed to close gzip writer", "error", err)
			}
		}()

		c.Writer = w

		c.Next()
	}
}

// gzipResponseWriter сжимает только JSON ответы.
// Решение принимается при первой записи, когда Content-Type уже известен.
type gzipResponseWriter struct {
	gin.ResponseWriter
	gz      *gzip.Writer
	decided bool
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	if !w.decided {
		w.decided = true

		if strings.Contains(w.Header().Get("Content-Type"), "application/json") {
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Add("Vary", "Accept-Encoding")
			w.Header().Del("Content-Length")
			w.gz = gzip.NewWriter(w.ResponseWriter)
		}
	}

	if w.gz != nil {
		return w.gz.Write(data) //nolint:wrapcheck
	}

	return w.ResponseWriter.Write(data) //nolint:wrapcheck
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *gzipResponseWriter) Close() error {
	if w.gz == nil {
		return nil
	}

	return w.gz.Close() //nolint:wrapcheck
}
