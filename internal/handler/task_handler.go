package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/tsago2003/gpt/internal/export"
	"github.com/tsago2003/gpt/internal/llm"
	"github.com/tsago2003/gpt/internal/logger"
	"github.com/tsago2003/gpt/internal/model"
	"github.com/tsago2003/gpt/internal/service"
	"github.com/tsago2003/gpt/internal/store"
)

type TaskService interface {
	SubmitVideo(ctx context.Context, link, modelName, language string) (string, error)
	SubmitVoice(ctx context.Context, link, outputLanguage, inputLanguage string) (string, error)
	GetTaskStatus(ctx context.Context, taskID string) (service.StatusView, error)
	GetTask(ctx context.Context, taskID string) (*model.Task, error)
	PostMessage(ctx context.Context, transcript string, history []llm.Message, newMessage string) (string, []llm.Message, error)
}

type SubmitVideoRequest struct {
	VideoLink       string `json:"video_link" example:"https://www.youtube.com/watch?v=dQw4w9WgXcQ"`
	Model           string `json:"model" example:"Gemini"`
	SummaryLanguage string `json:"summaryLanguage" example:"English"`
}

type SubmitVoiceRequest struct {
	AudioLink              string `json:"audio_link" example:"https://cdn.example.com/notes/memo.m4a"`
	OutputLanguageCode     string `json:"outputLanguageCode" example:"English"`
	TranscriptLanguageCode string `json:"transcriptLanguageCode" example:"auto"`
}

type MessageRequest struct {
	TranscriptionText string        `json:"transcriptionText"`
	ChatHistory       []llm.Message `json:"chatHistory"`
	NewMessage        string        `json:"newMessage"`
}

type MessageResponse struct {
	Message     string        `json:"message"`
	ChatHistory []llm.Message `json:"chatHistory"`
}

type TaskResponse struct {
	TaskID string `json:"task_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageOnly struct {
	Message string `json:"message"`
}

type TaskHandler struct {
	svc       TaskService
	exportDir string
	logger    logger.Logger
}

func NewTaskHandler(svc TaskService, exportDir string, log logger.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, exportDir: exportDir, logger: log}
}

// RegisterRoutes mounts the API. auth guards every task route.
func RegisterRoutes(r *gin.Engine, h *TaskHandler, auth gin.HandlerFunc) {
	r.GET("/healthz", h.Health)

	api := r.Group("/", auth)
	api.POST("/submit_video", h.SubmitVideo)
	api.POST("/submit_voice", h.SubmitVoice)
	api.GET("/task_status/:task_id", h.GetTaskStatus)
	api.GET("/tasks/:task_id", h.GetTask)
	api.GET("/tasks/:task_id/export", h.ExportTask)
	api.POST("/message", h.PostMessage)
}

// Health godoc
// @Summary Liveness probe
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *TaskHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SubmitVideo godoc
// @Summary Submit a video for summarization
// @Description Registers a task and processes the video transcript in the background
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body SubmitVideoRequest true "Video submission"
// @Success 200 {object} TaskResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Security BearerAuth
// @Router /submit_video [post]
func (h *TaskHandler) SubmitVideo(c *gin.Context) {
	var req SubmitVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	taskID, err := h.svc.SubmitVideo(c.Request.Context(), req.VideoLink, req.Model, req.SummaryLanguage)
	if err != nil {
		h.writeError(c, "Submission error", err)
		return
	}
	c.JSON(http.StatusOK, TaskResponse{TaskID: taskID})
}

// SubmitVoice godoc
// @Summary Submit a voice note for transcription and summarization
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body SubmitVoiceRequest true "Voice submission"
// @Success 200 {object} TaskResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Security BearerAuth
// @Router /submit_voice [post]
func (h *TaskHandler) SubmitVoice(c *gin.Context) {
	var req SubmitVoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "wrong request body"})
		return
	}

	taskID, err := h.svc.SubmitVoice(c.Request.Context(), req.AudioLink, req.OutputLanguageCode, req.TranscriptLanguageCode)
	if err != nil {
		h.writeError(c, "Voice submission error", err)
		return
	}
	c.JSON(http.StatusOK, TaskResponse{TaskID: taskID})
}

// GetTaskStatus godoc
// @Summary Poll a task
// @Description Completed tasks carry their results, failed tasks an error
// @Tags tasks
// @Produce json
// @Param task_id path string true "Task ID"
// @Success 200 {object} service.StatusView
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /task_status/{task_id} [get]
func (h *TaskHandler) GetTaskStatus(c *gin.Context) {
	view, err := h.svc.GetTaskStatus(c.Request.Context(), c.Param("task_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Task ID not found"})
			return
		}
		h.writeError(c, "Status lookup error", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetTask godoc
// @Summary Get the full task row
// @Tags tasks
// @Produce json
// @Param task_id path string true "Task ID"
// @Success 200 {object} model.Task
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tasks/{task_id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.svc.GetTask(c.Request.Context(), c.Param("task_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Task not found"})
			return
		}
		h.writeError(c, "Task lookup error", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ExportTask godoc
// @Summary Download a completed task as a Word document
// @Tags tasks
// @Produce application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Param task_id path string true "Task ID"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tasks/{task_id}/export [get]
func (h *TaskHandler) ExportTask(c *gin.Context) {
	ctx := c.Request.Context()
	taskID := c.Param("task_id")

	task, err := h.svc.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Task not found"})
			return
		}
		h.writeError(c, "Export error", err)
		return
	}
	if task.Status != model.StatusCompleted {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Task is not completed yet"})
		return
	}

	f, err := os.CreateTemp(h.exportDir, "export-*.docx")
	if err != nil {
		h.writeError(c, "Export error", err)
		return
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := export.WriteDocx(task, path); err != nil {
		h.writeError(c, "Export error", err)
		return
	}
	c.FileAttachment(path, fmt.Sprintf("summary-%s.docx", filepath.Base(task.TaskID)))
}

// PostMessage godoc
// @Summary Chat about a transcript
// @Description Appends the new message and the reply to the supplied history
// @Tags chat
// @Accept json
// @Produce json
// @Param request body MessageRequest true "Chat turn"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /message [post]
func (h *TaskHandler) PostMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Wrong request body"})
		return
	}

	reply, history, err := h.svc.PostMessage(c.Request.Context(), req.TranscriptionText, req.ChatHistory, req.NewMessage)
	if err != nil {
		h.writeError(c, "Chat error", err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: reply, ChatHistory: history})
}

func (h *TaskHandler) writeError(c *gin.Context, what string, err error) {
	ctx := c.Request.Context()

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		h.logger.Warn(ctx, "%s: %v", what, err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Msg})
	case errors.Is(err, service.ErrBusy):
		h.logger.Warn(ctx, "%s: %v", what, err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: service.ErrBusy.Error()})
	default:
		h.logger.Error(ctx, "%s: %v", what, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
