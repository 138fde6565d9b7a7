package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ecs-mentoring/backend/internal/dto"
	"ecs-mentoring/backend/internal/service"
	"ecs-mentoring/backend/pkg/response"
)

// AdminHandler 管理员师生关系维护 HTTP 处理器
type AdminHandler struct {
	adminSvc service.AdminService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(adminSvc service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// ListStudents 学生列表
// GET /api/v1/admin/students?department=CS&page=1&page_size=20
func (h *AdminHandler) ListStudents(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.adminSvc.ListStudents(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListTeachers 教师列表
// GET /api/v1/admin/teachers
func (h *AdminHandler) ListTeachers(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.adminSvc.ListTeachers(c.Request.Context(), &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// AssignMentor 为学生分配导师
// PUT /api/v1/admin/students/:id/mentor
func (h *AdminHandler) AssignMentor(c *gin.Context) {
	var req dto.AssignMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	student, err := h.adminSvc.AssignMentor(c.Request.Context(), c.Param("id"), req.TeacherProfileID)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, student)
}

// LinkParent 为家长关联学生
// POST /api/v1/admin/parents/:id/students
func (h *AdminHandler) LinkParent(c *gin.Context) {
	var req dto.LinkParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.adminSvc.LinkParent(c.Request.Context(), c.Param("id"), req.StudentProfileID); err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *AdminHandler) handleAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentProfileNotFound):
		response.NotFound(c, 16001, "学生档案不存在")
	case errors.Is(err, service.ErrTeacherProfileNotFound):
		response.NotFound(c, 16002, "教师档案不存在")
	case errors.Is(err, service.ErrParentProfileNotFound):
		response.NotFound(c, 16003, "家长档案不存在")
	default:
		respondByKind(c, err)
	}
}
