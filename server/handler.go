package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/maastricht-university/meeting-clarity/clarity"
	"github.com/maastricht-university/meeting-clarity/meeting"
	"github.com/maastricht-university/meeting-clarity/orchestrator"
	"github.com/maastricht-university/meeting-clarity/store"
)

// ReportScorer validates and scores a raw report.
type ReportScorer interface {
	ScoreReport(ctx context.Context, raw []byte, totalWords any) (*clarity.Report, *clarity.Result, error)
}

// Meetings reads stored analyses.
type Meetings interface {
	Get(ctx context.Context, id string) (*meeting.Analysis, error)
	History(ctx context.Context, owner string) ([]meeting.Summary, error)
}

type Handler struct {
	analyzer  orchestrator.Analyzer
	scorer    ReportScorer
	meetings  Meetings
	uploadDir string
}

func NewHandler(a orchestrator.Analyzer, s ReportScorer, m Meetings, uploadDir string) *Handler {
	return &Handler{analyzer: a, scorer: s, meetings: m, uploadDir: uploadDir}
}

// Analyze takes a multipart upload (owner, file, optional label) and runs
// the full pipeline on it.
func (h *Handler) Analyze(c *gin.Context) {
	ctx := c.Request.Context()

	if _, err := c.MultipartForm(); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
				Error: fmt.Sprintf("upload exceeds %d bytes", tooBig.Limit),
				Field: "file",
			})
			return
		}
	}

	owner := strings.TrimSpace(c.PostForm("owner"))
	if owner == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "owner is required", Field: "owner"})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "file is required", Field: "file"})
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		log.WithError(err).Error("create upload dir")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to store upload"})
		return
	}
	tmp, err := os.CreateTemp(h.uploadDir, "upload-*"+filepath.Ext(fh.Filename))
	if err != nil {
		log.WithError(err).Error("create upload file")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to store upload"})
		return
	}
	tmp.Close()
	defer os.Remove(tmp.Name())
	if err := c.SaveUploadedFile(fh, tmp.Name()); err != nil {
		log.WithError(err).Error("save upload")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to store upload"})
		return
	}

	label := c.PostForm("label")
	if label == "" {
		label = filepath.Base(fh.Filename)
	}
	a, err := h.analyzer.Run(ctx, orchestrator.Request{MediaPath: tmp.Name(), Owner: owner, Label: label})
	if err != nil {
		var mre *clarity.MalformedReportError
		if errors.As(err, &mre) {
			log.WithError(err).WithField("excerpt", mre.Excerpt).Warn("extractor returned a malformed report")
			c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error(), Field: mre.Field})
			return
		}
		log.WithError(err).WithField("owner", owner).Error("analysis failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "analysis failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

// Score validates and scores a report supplied by the caller.
func (h *Handler) Score(c *gin.Context) {
	var req ScoreRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if len(bytes.TrimSpace(req.Report)) == 0 {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "report is required", Field: "report"})
		return
	}

	r, res, err := h.scorer.ScoreReport(c.Request.Context(), rawReport(req.Report), req.TotalWords)
	if err != nil {
		var mre *clarity.MalformedReportError
		switch {
		case errors.As(err, &mre):
			c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Field: mre.Field})
		case errors.Is(err, clarity.ErrInvalidWordCount):
			c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Field: "total_words"})
		default:
			c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, toScoreResponse(r, res))
}

func (h *Handler) History(c *gin.Context) {
	list, err := h.meetings.History(c.Request.Context(), c.Param("owner"))
	if err != nil {
		log.WithError(err).Error("history")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) Meeting(c *gin.Context) {
	a, err := h.meetings.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "meeting not found"})
		return
	}
	if err != nil {
		log.WithError(err).Error("get meeting")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load meeting"})
		return
	}
	c.JSON(http.StatusOK, a)
}
