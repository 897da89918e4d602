package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nexusatelier/atelier-backend/internal/domain"
	"github.com/nexusatelier/atelier-backend/internal/generation"
	"github.com/nexusatelier/atelier-backend/internal/http/middleware"
	"github.com/nexusatelier/atelier-backend/internal/http/response"
	"github.com/nexusatelier/atelier-backend/internal/queue"
)

// GenerateHandler accepts generation requests, persists the job through
// the matching pipeline and admits it to the queue.
type GenerateHandler struct {
	pipelines map[domain.JobType]*generation.Pipeline
	queue     *queue.Manager
}

func NewGenerateHandler(pipelines []*generation.Pipeline, q *queue.Manager) *GenerateHandler {
	byType := make(map[domain.JobType]*generation.Pipeline, len(pipelines))
	for _, p := range pipelines {
		byType[p.Type()] = p
	}
	return &GenerateHandler{pipelines: byType, queue: q}
}

type submitRequest struct {
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
}

type submitResponse struct {
	JobID       uuid.UUID        `json:"job_id"`
	Status      domain.JobStatus `json:"status"`
	CreditsUsed int              `json:"credits_used"`
}

// POST /api/v1/video/generate/text
func (h *GenerateHandler) TextToVideo(c *gin.Context) {
	var req struct {
		submitRequest
		domain.TextToVideoParams
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	if req.Prompt == "" {
		response.RespondError(c, http.StatusBadRequest, "MISSING_PROMPT", errors.New("prompt is required"))
		return
	}
	h.submit(c, &req.TextToVideoParams, req.ProjectID)
}

// POST /api/v1/video/generate/image
func (h *GenerateHandler) ImageToVideo(c *gin.Context) {
	var req struct {
		submitRequest
		domain.ImageToVideoParams
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	if req.ImageURL == "" {
		response.RespondError(c, http.StatusBadRequest, "MISSING_IMAGE_URL", errors.New("image_url is required"))
		return
	}
	h.submit(c, &req.ImageToVideoParams, req.ProjectID)
}

// POST /api/v1/video/transform
func (h *GenerateHandler) VideoToVideo(c *gin.Context) {
	var req struct {
		submitRequest
		domain.VideoToVideoParams
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	if req.VideoURL == "" {
		response.RespondError(c, http.StatusBadRequest, "MISSING_VIDEO_URL", errors.New("video_url is required"))
		return
	}
	h.submit(c, &req.VideoToVideoParams, req.ProjectID)
}

// POST /api/v1/image/generate/text
func (h *GenerateHandler) TextToImage(c *gin.Context) {
	var req struct {
		submitRequest
		domain.TextToImageParams
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	if req.Prompt == "" {
		response.RespondError(c, http.StatusBadRequest, "MISSING_PROMPT", errors.New("prompt is required"))
		return
	}
	h.submit(c, &req.TextToImageParams, req.ProjectID)
}

// POST /api/v1/image/edit
func (h *GenerateHandler) ImageEdit(c *gin.Context) {
	var req struct {
		submitRequest
		domain.ImageEditParams
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	if req.ImageURL == "" {
		response.RespondError(c, http.StatusBadRequest, "MISSING_IMAGE_URL", errors.New("image_url is required"))
		return
	}
	h.submit(c, &req.ImageEditParams, req.ProjectID)
}

// POST /api/v1/audio/generate
func (h *GenerateHandler) Audio(c *gin.Context) {
	var req struct {
		submitRequest
		domain.AudioGenerationParams
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	if req.AudioType == "" {
		response.RespondError(c, http.StatusBadRequest, "MISSING_AUDIO_TYPE", errors.New("audio_type is required"))
		return
	}
	if req.Prompt == "" {
		response.RespondError(c, http.StatusBadRequest, "MISSING_PROMPT", errors.New("prompt is required"))
		return
	}
	h.submit(c, &req.AudioGenerationParams, req.ProjectID)
}

// POST /api/v1/workflow/run
func (h *GenerateHandler) Workflow(c *gin.Context) {
	var req struct {
		submitRequest
		domain.WorkflowParams
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	if req.WorkflowType == "" {
		response.RespondError(c, http.StatusBadRequest, "MISSING_WORKFLOW_TYPE", errors.New("workflow_type is required"))
		return
	}
	h.submit(c, &req.WorkflowParams, req.ProjectID)
}

func (h *GenerateHandler) submit(c *gin.Context, params domain.JobParams, projectID *uuid.UUID) {
	jobType, err := domain.JobTypeForKind(params.Kind())
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_PARAMS", err)
		return
	}
	pipeline, ok := h.pipelines[jobType]
	if !ok {
		response.RespondError(c, http.StatusInternalServerError, domain.ErrCodeInternal,
			errors.New("generation type is not available"))
		return
	}

	userID := middleware.UserID(c)
	job, err := pipeline.Submit(c.Request.Context(), userID, params, projectID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_PARAMS", err)
		return
	}
	if err := h.queue.Enqueue(job.ID, job.Type, job.Priority); err != nil {
		response.RespondError(c, http.StatusServiceUnavailable, domain.ErrCodeInternal, err)
		return
	}

	response.RespondAccepted(c, submitResponse{
		JobID:       job.ID,
		Status:      job.Status,
		CreditsUsed: job.CreditsUsed,
	})
}
