package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/college-adp-api/internal/service"
	appErrors "github.com/campushq/college-adp-api/pkg/errors"
	"github.com/campushq/college-adp-api/pkg/response"
)

// TaskHandler exposes task and assignment endpoints.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler constructs TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type assignmentUpdateRequest struct {
	StudentIDs []int64 `json:"student_ids"`
}

type assignOneRequest struct {
	StudentID int64 `json:"student_id"`
}

// Create godoc
// @Summary Create task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param payload body service.CreateTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	task, assigned, err := h.tasks.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, task, map[string]interface{}{"assigned": assigned})
}

// List godoc
// @Summary List tasks with assignment counts
// @Tags Tasks
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.tasks.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks)
}

// Detail godoc
// @Summary Task detail with per-student assignment state
// @Tags Tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *TaskHandler) Detail(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.tasks.Detail(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// UpdateAssignments godoc
// @Summary Reconcile task assignments to the submitted student set
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param payload body assignmentUpdateRequest true "Desired student IDs"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks/{id}/assignments [put]
func (h *TaskHandler) UpdateAssignments(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req assignmentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.tasks.UpdateAssignments(c.Request.Context(), id, req.StudentIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// AssignOne godoc
// @Summary Assign a task to a single student
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param payload body assignOneRequest true "Student"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks/{id}/assignments [post]
func (h *TaskHandler) AssignOne(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req assignOneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	outcome, err := h.tasks.AssignOne(c.Request.Context(), id, req.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome)
}

// Complete godoc
// @Summary Mark one student's assignment completed
// @Tags Tasks
// @Param id path int true "Task ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks/{id}/assignments/{studentId}/complete [put]
func (h *TaskHandler) Complete(c *gin.Context) {
	taskID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	studentID, err := pathID(c, "studentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.tasks.Complete(c.Request.Context(), taskID, studentID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "assignment completed"})
}

// Reset godoc
// @Summary Reset one student's assignment back to pending
// @Tags Tasks
// @Param id path int true "Task ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks/{id}/assignments/{studentId}/reset [put]
func (h *TaskHandler) Reset(c *gin.Context) {
	taskID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	studentID, err := pathID(c, "studentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.tasks.Reset(c.Request.Context(), taskID, studentID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "assignment reset"})
}

// BulkComplete godoc
// @Summary Mark every pending assignment for a task completed
// @Tags Tasks
// @Param id path int true "Task ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks/{id}/complete-all [put]
func (h *TaskHandler) BulkComplete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	completed, err := h.tasks.BulkComplete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"completed": completed})
}

// Delete godoc
// @Summary Delete task and its assignments
// @Tags Tasks
// @Param id path int true "Task ID"
// @Success 204
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
