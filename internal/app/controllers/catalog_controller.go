package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/app/services"
	"github.com/yigit/agencyportal/internal/middleware"
)

// CatalogController serves colleges and their courses. Agencies only see active entries.
type CatalogController struct {
	collegeService services.CollegeService
	courseService  services.CourseService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(collegeService services.CollegeService, courseService services.CourseService) *CatalogController {
	return &CatalogController{
		collegeService: collegeService,
		courseService:  courseService,
	}
}

// ListColleges lists colleges ordered by ranking, then name
// @Summary List colleges
// @Tags colleges
// @Produce json
// @Security SessionCookie
// @Param status query string false "Status (admin only)"
// @Param search query string false "Name, code or location contains"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]models.College} "Colleges"
// @Router /admin/colleges [get]
// @Router /agency/colleges [get]
func (c *CatalogController) ListColleges(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	opts, page, size := listOptions(ctx)
	colleges, total, err := c.collegeService.ListColleges(ctx.Request.Context(), actor, repositories.CollegeFilter{
		ListOptions: opts,
		Status:      models.AccountStatus(ctx.Query("status")),
		Search:      ctx.Query("search"),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, colleges, total, page, size)
}

// GetCollege retrieves a college
// @Summary Get college
// @Tags colleges
// @Produce json
// @Security SessionCookie
// @Param id path string true "College ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.College} "College"
// @Failure 404 {object} dto.ErrorResponse "College not found"
// @Router /admin/colleges/{id} [get]
// @Router /agency/colleges/{id} [get]
func (c *CatalogController) GetCollege(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	college, err := c.collegeService.GetCollege(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(college, ""))
}

// CreateCollege creates a college
// @Summary Create college
// @Tags colleges
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param request body dto.CollegeRequest true "College"
// @Success 201 {object} dto.APIResponse{data=models.College} "College created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /admin/colleges [post]
func (c *CatalogController) CreateCollege(ctx *gin.Context) {
	req, ok := middleware.BindJSON[dto.CollegeRequest](ctx)
	if !ok {
		return
	}
	college := req.ToModel()
	if err := c.collegeService.CreateCollege(ctx.Request.Context(), college); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(college, "College created successfully"))
}

// UpdateCollege updates a college
// @Summary Update college
// @Tags colleges
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "College ID" Format(uuid)
// @Param request body dto.CollegeRequest true "College"
// @Success 200 {object} dto.APIResponse{data=models.College} "College updated"
// @Failure 404 {object} dto.ErrorResponse "College not found"
// @Router /admin/colleges/{id} [put]
func (c *CatalogController) UpdateCollege(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.CollegeRequest](ctx)
	if !ok {
		return
	}

	college := req.ToModel()
	college.ID = id
	if err := c.collegeService.UpdateCollege(ctx.Request.Context(), college); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	updated, err := c.collegeService.GetCollege(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(updated, "College updated successfully"))
}

// DeleteCollege deletes a college and its courses
// @Summary Delete college
// @Tags colleges
// @Produce json
// @Security SessionCookie
// @Param id path string true "College ID" Format(uuid)
// @Success 200 {object} dto.APIResponse "College deleted"
// @Failure 404 {object} dto.ErrorResponse "College not found"
// @Router /admin/colleges/{id} [delete]
func (c *CatalogController) DeleteCollege(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.collegeService.DeleteCollege(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "College deleted successfully"))
}

// ListCollegeCourses lists the courses of one college
// @Summary List courses of a college
// @Tags courses
// @Produce json
// @Security SessionCookie
// @Param id path string true "College ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=[]models.Course} "Courses"
// @Failure 404 {object} dto.ErrorResponse "College not found"
// @Router /admin/colleges/{id}/courses [get]
// @Router /agency/colleges/{id}/courses [get]
func (c *CatalogController) ListCollegeCourses(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	if _, err := c.collegeService.GetCollege(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	courses, _, err := c.courseService.ListCourses(ctx.Request.Context(), actor, repositories.CourseFilter{CollegeID: id})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(courses, ""))
}

// ListCourses lists courses
// @Summary List courses
// @Tags courses
// @Produce json
// @Security SessionCookie
// @Param collegeId query string false "College ID"
// @Param status query string false "Status (admin only)"
// @Param search query string false "Name contains"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]models.Course} "Courses"
// @Router /admin/courses [get]
// @Router /agency/courses [get]
func (c *CatalogController) ListCourses(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	collegeID, ok := middleware.OptionalUUIDQuery(ctx, "collegeId")
	if !ok {
		return
	}
	opts, page, size := listOptions(ctx)
	courses, total, err := c.courseService.ListCourses(ctx.Request.Context(), actor, repositories.CourseFilter{
		ListOptions: opts,
		CollegeID:   collegeID,
		Status:      models.AccountStatus(ctx.Query("status")),
		Search:      ctx.Query("search"),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, courses, total, page, size)
}

// GetCourse retrieves a course
// @Summary Get course
// @Tags courses
// @Produce json
// @Security SessionCookie
// @Param id path string true "Course ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /admin/courses/{id} [get]
// @Router /agency/courses/{id} [get]
func (c *CatalogController) GetCourse(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	course, err := c.courseService.GetCourse(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course, ""))
}

// CreateCourse creates a course
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param request body dto.CourseRequest true "Course"
// @Success 201 {object} dto.APIResponse{data=models.Course} "Course created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or unknown college"
// @Router /admin/courses [post]
func (c *CatalogController) CreateCourse(ctx *gin.Context) {
	req, ok := middleware.BindJSON[dto.CourseRequest](ctx)
	if !ok {
		return
	}
	course := req.ToModel()
	if err := c.courseService.CreateCourse(ctx.Request.Context(), course); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(course, "Course created successfully"))
}

// UpdateCourse updates a course
// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "Course ID" Format(uuid)
// @Param request body dto.CourseRequest true "Course"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course updated"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /admin/courses/{id} [put]
func (c *CatalogController) UpdateCourse(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	req, ok := middleware.BindJSON[dto.CourseRequest](ctx)
	if !ok {
		return
	}

	course := req.ToModel()
	course.ID = id
	if err := c.courseService.UpdateCourse(ctx.Request.Context(), course); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	updated, err := c.courseService.GetCourse(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(updated, "Course updated successfully"))
}

// DeleteCourse deletes a course
// @Summary Delete course
// @Tags courses
// @Produce json
// @Security SessionCookie
// @Param id path string true "Course ID" Format(uuid)
// @Success 200 {object} dto.APIResponse "Course deleted"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /admin/courses/{id} [delete]
func (c *CatalogController) DeleteCourse(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.courseService.DeleteCourse(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Course deleted successfully"))
}
