package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.StudentDetail, error)
	Create(ctx context.Context, req models.StudentRequest) (*models.Student, error)
	Update(ctx context.Context, id string, req models.StudentRequest) (*models.Student, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, req models.StudentStatusRequest) (*models.StudentDetail, error)
	StatusHistory(ctx context.Context, id string) ([]models.StudentStatusHistory, error)
	Promote(ctx context.Context, req models.PromoteRequest) (*models.PromoteResult, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param busId query string false "Filter by bus"
// @Param class query string false "Filter by class"
// @Param isActive query bool false "Filter by active state"
// @Param search query string false "Search by name, parent or village"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		BusID:    strings.TrimSpace(c.Query("busId")),
		Class:    strings.TrimSpace(c.Query("class")),
		IsActive: parseQueryBool(c, "isActive"),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "pageSize", 50),
	}
	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body models.StudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req models.StudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.StudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req models.StudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student
// @Tags Students
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Student deleted successfully")
}

// SetStatus godoc
// @Summary Activate or deactivate a student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.StudentStatusRequest true "Status change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/{id}/status [patch]
func (h *StudentHandler) SetStatus(c *gin.Context) {
	var req models.StudentStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.SetStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// StatusHistory godoc
// @Summary Status changes of a student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/status-history [get]
func (h *StudentHandler) StatusHistory(c *gin.Context) {
	history, err := h.students.StatusHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// Promote godoc
// @Summary Move students up one class
// @Description Promotes the listed students, or every active student when the list is empty. Class 12 stays at 12.
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body models.PromoteRequest false "Students to promote"
// @Success 200 {object} response.Envelope
// @Router /students/promote [post]
func (h *StudentHandler) Promote(c *gin.Context) {
	var req models.PromoteRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	result, err := h.students.Promote(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
