// Package server exposes the extraction pipeline and the donated medicine
// inventory over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medishare/medlabel/internal/common"
	"github.com/medishare/medlabel/internal/entity"
	"github.com/medishare/medlabel/internal/export"
	"github.com/medishare/medlabel/internal/match"
	"github.com/medishare/medlabel/internal/ocr"
	"github.com/medishare/medlabel/internal/repository"
	"github.com/medishare/medlabel/internal/selftest"
)

// ImageProcessor is the slice of the pipeline the handlers need.
type ImageProcessor interface {
	ProcessImage(ctx context.Context, in ocr.Input, medicineID int64, useLLM bool) (entity.Record, error)
	ProcessText(ctx context.Context, rawText string, useLLM bool) entity.Record
}

// Server wires the HTTP handlers to the application services.
type Server struct {
	cfg      common.ServerConfig
	logger   *slog.Logger
	pipeline ImageProcessor
	repo     repository.MedicineRepository
	matcher  *match.Matcher
	exporter *export.Service
	checker  *selftest.Checker
}

func New(
	cfg common.ServerConfig,
	logger *slog.Logger,
	pipeline ImageProcessor,
	repo repository.MedicineRepository,
	matcher *match.Matcher,
	exporter *export.Service,
	checker *selftest.Checker,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		pipeline: pipeline,
		repo:     repo,
		matcher:  matcher,
		exporter: exporter,
		checker:  checker,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.corsMiddleware())
	if s.cfg.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = s.cfg.MaxUploadBytes
	}

	r.GET("/health", s.Health)

	api := r.Group("/api/v1")
	{
		api.POST("/extract", s.Extract)
		api.GET("/medicines", s.ListMedicines)
		api.GET("/medicines/:id", s.GetMedicine)
		api.GET("/medicines/:id/similar", s.SimilarMedicines)
		api.GET("/export", s.ExportInventory)
		api.GET("/selftest", s.SelfTest)
	}
	return r
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	origins := "*"
	if len(s.cfg.AllowedOrigins) > 0 {
		origins = strings.Join(s.cfg.AllowedOrigins, ", ")
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origins)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
