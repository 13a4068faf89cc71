package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"

	"github.com/chaos-io/chromakey/config"
	"github.com/chaos-io/chromakey/pipeline"
	"github.com/chaos-io/chromakey/rembg"
	"github.com/chaos-io/chromakey/util"
)

const (
	HeaderRequestID    = "X-Request-Id"
	HeaderPixelsErased = "X-Pixels-Erased"
	HeaderPixelsTotal  = "X-Pixels-Total"

	formField = "image"
)

// Server 抠图 HTTP 服务：上传一张图，返回处理后的 PNG
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
}

func New(cfg *config.Config) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestID())
	engine.MaxMultipartMemory = cfg.Server.MaxUploadSize

	s := &Server{cfg: cfg, engine: engine}
	engine.GET("/healthz", s.healthz)
	engine.POST("/v1/remove", s.remove)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 监听直到 ctx 结束，然后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ksuid.New().String()
		c.Set(HeaderRequestID, id)
		c.Header(HeaderRequestID, id)

		start := time.Now()
		c.Next()

		slog.Info("request",
			"id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) remove(c *gin.Context) {
	limit := s.cfg.Server.MaxUploadSize
	if c.Request.ContentLength > limit {
		s.fail(c, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	kind := s.cfg.Kind()
	if q := c.Query("classifier"); q != "" {
		k, err := rembg.ParseKind(q)
		if err != nil {
			s.fail(c, http.StatusBadRequest, err.Error())
			return
		}
		kind = k
	}

	fh, err := c.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(c, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		s.fail(c, http.StatusBadRequest, "missing form field "+formField)
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.fail(c, http.StatusBadRequest, err.Error())
		return
	}
	defer func() {
		_ = f.Close()
	}()

	src, format, err := util.DecodeImage(f)
	if err != nil {
		s.fail(c, http.StatusBadRequest, (&pipeline.ImageDecodeError{Path: fh.Filename, Err: err}).Error())
		return
	}

	h, err := s.cfg.RemoverFor(kind)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err.Error())
		return
	}

	out, stats, err := h.RemoveWithStats(c.Request.Context(), src)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := pipeline.Encode(&buf, out); err != nil {
		s.fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Debug("upload processed", "id", c.GetString(HeaderRequestID), "file", fh.Filename,
		"format", format, "classifier", kind, "erased", stats.Erased, "total", stats.Total)

	c.Header(HeaderPixelsErased, strconv.Itoa(stats.Erased))
	c.Header(HeaderPixelsTotal, strconv.Itoa(stats.Total))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"request_id": c.GetString(HeaderRequestID),
	})
}
