package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/imdipper19-stack/vidlecta/internal/core/domain"
)

// IntakeUseCase is the Inbound Port the HTTP surface drives.
type IntakeUseCase interface {
	SubmitUpload(ctx context.Context, userID, filename, contentType string, size int64, data io.Reader, language string) (*domain.Video, error)
	SubmitURL(ctx context.Context, userID, rawURL, language string) (*domain.Video, error)
	GetStatus(ctx context.Context, userID, videoID string) (*domain.Video, error)
	GetResult(ctx context.Context, userID, videoID, language string) (*domain.Transcription, error)
	ListVideos(ctx context.Context, userID, statusFilter string, page, perPage int) ([]domain.Video, int, error)
	DeleteVideo(ctx context.Context, userID, videoID string) error
}

type Handler struct {
	uc IntakeUseCase
}

func NewHandler(uc IntakeUseCase) *Handler {
	return &Handler{uc: uc}
}

func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/api/v1")
	{
		v1.POST("/videos", h.UploadVideo)
		v1.POST("/videos/from-url", h.SubmitFromURL)
		v1.GET("/videos", h.ListVideos)
		v1.GET("/videos/:video_id", h.GetVideo)
		v1.GET("/videos/:video_id/transcriptions/:language", h.GetTranscription)
		v1.DELETE("/videos/:video_id", h.DeleteVideo)
	}
}

type submitFromURLRequest struct {
	URL      string `json:"url" binding:"required"`
	Language string `json:"language"`
}

func (h *Handler) UploadVideo(c *gin.Context) {
	userID := c.GetString("user_id")

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	language := c.DefaultPostForm("language", "en")

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	video, err := h.uc.SubmitUpload(c.Request.Context(), userID,
		file.Filename, file.Header.Get("Content-Type"), file.Size, f, language)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":      video.ID,
		"status":  video.Status,
		"message": "Video uploaded successfully. Processing will begin shortly.",
	})
}

func (h *Handler) SubmitFromURL(c *gin.Context) {
	userID := c.GetString("user_id")

	var req submitFromURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url required"})
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}

	video, err := h.uc.SubmitURL(c.Request.Context(), userID, req.URL, req.Language)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":         video.ID,
		"status":     video.Status,
		"source_url": video.SourceURL,
		"message":    "Video queued for download. Transcription will begin after download completes.",
	})
}

func (h *Handler) ListVideos(c *gin.Context) {
	userID := c.GetString("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	statusFilter := c.Query("status")

	videos, total, err := h.uc.ListVideos(c.Request.Context(), userID, statusFilter, page, perPage)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"videos":   videos,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (h *Handler) GetVideo(c *gin.Context) {
	userID := c.GetString("user_id")

	video, err := h.uc.GetStatus(c.Request.Context(), userID, c.Param("video_id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	resp := gin.H{
		"id":               video.ID,
		"status":           video.Status,
		"duration_seconds": video.DurationSeconds,
		"created_at":       video.CreatedAt,
	}
	if video.ErrorMessage != "" {
		resp["error_message"] = video.ErrorMessage
	}
	if video.ProcessedAt != nil {
		resp["processed_at"] = video.ProcessedAt
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetTranscription(c *gin.Context) {
	userID := c.GetString("user_id")

	t, err := h.uc.GetResult(c.Request.Context(), userID, c.Param("video_id"), c.Param("language"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteVideo(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.uc.DeleteVideo(c.Request.Context(), userID, c.Param("video_id")); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video deleted"})
}

// abortWithDomainError maps domain errors to HTTP statuses. Raw internals
// never leak to callers.
func abortWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnsupportedLanguage),
		errors.Is(err, domain.ErrInvalidSource),
		errors.Is(err, domain.ErrFileTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrTranscriptionExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
