package handlers

import (
	"net/http"
	"strings"

	"workhive/models"
	"workhive/services/task"
	"workhive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TaskHandler serves the task discovery endpoints.
type TaskHandler struct {
	Svc    task.Service
	Logger *zap.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(svc task.Service, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{Svc: svc, Logger: logger}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var input models.CreateTaskInput
	if !bindAndValidate(c, &input) {
		return
	}
	if err := input.CustomerLocation.Validate(); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid customer location", err.Error())
		return
	}

	t, err := h.Svc.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// GetTask handles GET /tasks/:taskId.
func (h *TaskHandler) GetTask(c *gin.Context) {
	t, err := h.Svc.Get(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// GetTaskWithBooking handles GET /tasks/:taskId/with-booking.
func (h *TaskHandler) GetTaskWithBooking(c *gin.Context) {
	out, err := h.Svc.GetWithBooking(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListTasks handles GET /tasks?customerId=...&status=MATCHED,FLOATING.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	customerID := c.Query("customerId")
	if customerID == "" {
		utils.JSONError(c, http.StatusBadRequest, "VALIDATION_FAILED", "Missing customerId", "")
		return
	}

	var statuses []models.TaskStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, models.TaskStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}

	tasks, err := h.Svc.ListByCustomer(c.Request.Context(), customerID, statuses)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// UpdateTask handles PATCH /tasks/:taskId. Responds 409 once converted.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var input models.UpdateTaskInput
	if !bindAndValidate(c, &input) {
		return
	}

	t, err := h.Svc.Update(c.Request.Context(), c.Param("taskId"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// RequestProvider handles POST /tasks/:taskId/request-provider.
func (h *TaskHandler) RequestProvider(c *gin.Context) {
	var input models.RequestProviderInput
	if !bindAndValidate(c, &input) {
		return
	}

	t, err := h.Svc.RequestProvider(c.Request.Context(), c.Param("taskId"), input.ProviderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Respond handles POST /tasks/:taskId/respond. The booking field is present
// only on accept.
func (h *TaskHandler) Respond(c *gin.Context) {
	var input models.RespondInput
	if !bindAndValidate(c, &input) {
		return
	}

	t, b, err := h.Svc.RespondToRequest(c.Request.Context(), c.Param("taskId"),
		input.ProviderID, input.Action == "accept")
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{"task": t}
	if b != nil {
		resp["booking"] = b
	}
	c.JSON(http.StatusOK, resp)
}

// ExpressInterest handles POST /tasks/:taskId/express-interest.
func (h *TaskHandler) ExpressInterest(c *gin.Context) {
	var input models.RequestProviderInput
	if !bindAndValidate(c, &input) {
		return
	}

	t, err := h.Svc.ExpressInterest(c.Request.Context(), c.Param("taskId"), input.ProviderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Rematch handles POST /tasks/:taskId/rematch.
func (h *TaskHandler) Rematch(c *gin.Context) {
	var input models.RematchInput
	if !bindAndValidate(c, &input) {
		return
	}

	t, err := h.Svc.Rematch(c.Request.Context(), c.Param("taskId"), input.Strategy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// CancelTask handles POST /tasks/:taskId/cancel.
func (h *TaskHandler) CancelTask(c *gin.Context) {
	t, err := h.Svc.Cancel(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTask handles DELETE /tasks/:taskId.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.Svc.SoftDelete(c.Request.Context(), c.Param("taskId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

// RestoreTask handles POST /tasks/:taskId/restore.
func (h *TaskHandler) RestoreTask(c *gin.Context) {
	if err := h.Svc.Restore(c.Request.Context(), c.Param("taskId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task restored"})
}
