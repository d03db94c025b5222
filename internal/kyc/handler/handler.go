package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/idextract/idextract/internal/fetch"
	"github.com/idextract/idextract/internal/kyc"
	"github.com/idextract/idextract/internal/kyc/service"
	"github.com/idextract/idextract/pkg/logger"
	"github.com/idextract/idextract/pkg/metrics"
	"github.com/idextract/idextract/pkg/middleware"
)

const WelcomeMessage = "Welcome to the Identity Document Extractor API"

// Processor runs one extraction request end to end.
type Processor interface {
	Process(ctx context.Context, req service.Request) (service.Result, error)
}

// Finder looks a stored record up by identity number.
type Finder interface {
	Lookup(ctx context.Context, identity string) (kyc.Record, error)
}

type uploadRequest struct {
	UserID   string `json:"user_id"`
	FrontURL string `json:"front_url" binding:"required"`
	BackURL  string `json:"back_url" binding:"required"`
}

// RegisterRoutes mounts the extractor API on r. upload middlewares (auth,
// rate limiting) wrap only POST /upload_url.
func RegisterRoutes(r gin.IRouter, p Processor, f Finder, upload ...gin.HandlerFunc) {
	log := logger.Named("http")

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": WelcomeMessage})
	})

	uploadHandler := func(c *gin.Context) {
		var req uploadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			metrics.Extractions.WithLabelValues("invalid").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body: " + err.Error()})
			return
		}
		if req.UserID == "" {
			req.UserID = c.GetString(middleware.SubjectKey)
		}
		if req.UserID == "" {
			metrics.Extractions.WithLabelValues("invalid").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body: user_id is required"})
			return
		}

		res, err := p.Process(c.Request.Context(), service.Request{
			UserID:   req.UserID,
			FrontURL: strings.TrimSpace(req.FrontURL),
			BackURL:  strings.TrimSpace(req.BackURL),
		})

		var ferr *fetch.Error
		var verr *kyc.ValidationError
		switch {
		case err == nil:
			metrics.Extractions.WithLabelValues(res.Outcome.String()).Inc()
			c.JSON(http.StatusOK, gin.H{"status": res.Outcome.String(), "data": res.Record})
		case errors.As(err, &ferr):
			metrics.Extractions.WithLabelValues("fetch_failed").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Image download failed: " + ferr.Error()})
		case errors.As(err, &verr):
			metrics.Extractions.WithLabelValues("incomplete").Inc()
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":          "Essential fields missing",
				"missing_fields": verr.MissingNames(),
				"text":           verr.Text(),
			})
		default:
			metrics.Extractions.WithLabelValues("error").Inc()
			log.Errorf("upload for user %q failed: %v", req.UserID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to process document: " + err.Error()})
		}
	}
	r.POST("/upload_url", append(upload[:len(upload):len(upload)], uploadHandler)...)

	r.GET("/records/:identity", func(c *gin.Context) {
		rec, err := f.Lookup(c.Request.Context(), c.Param("identity"))
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "record not found"})
			return
		}
		if err != nil {
			log.Errorf("lookup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rec})
	})
}
