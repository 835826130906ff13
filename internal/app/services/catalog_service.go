package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
)

// CollegeService defines college operations. Agencies only see active colleges.
type CollegeService interface {
	ListColleges(ctx context.Context, actor Actor, filter repositories.CollegeFilter) ([]*models.College, int64, error)
	GetCollege(ctx context.Context, actor Actor, id string) (*models.College, error)
	CreateCollege(ctx context.Context, college *models.College) error
	UpdateCollege(ctx context.Context, college *models.College) error
	// DeleteCollege removes the college together with its courses
	DeleteCollege(ctx context.Context, id string) error
}

// CourseService defines course operations. Agencies only see active courses.
type CourseService interface {
	ListCourses(ctx context.Context, actor Actor, filter repositories.CourseFilter) ([]*models.Course, int64, error)
	GetCourse(ctx context.Context, actor Actor, id string) (*models.Course, error)
	CreateCourse(ctx context.Context, course *models.Course) error
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id string) error
}

type collegeServiceImpl struct {
	collegeRepo repositories.ICollegeRepository
	courseRepo  repositories.ICourseRepository
	logger      zerolog.Logger
}

// NewCollegeService creates a new college service instance
func NewCollegeService(collegeRepo repositories.ICollegeRepository, courseRepo repositories.ICourseRepository, logger zerolog.Logger) CollegeService {
	return &collegeServiceImpl{
		collegeRepo: collegeRepo,
		courseRepo:  courseRepo,
		logger:      logger,
	}
}

func (s *collegeServiceImpl) validateCollege(college *models.College) error {
	if college == nil {
		return fmt.Errorf("%w: college is nil", apperrors.ErrValidationFailed)
	}
	college.Name = strings.TrimSpace(college.Name)
	if college.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidationFailed)
	}
	if college.Status == "" {
		college.Status = models.StatusActive
	}
	if college.Ranking != nil && *college.Ranking < 1 {
		return fmt.Errorf("%w: ranking must be positive", apperrors.ErrValidationFailed)
	}
	return nil
}

func (s *collegeServiceImpl) ListColleges(ctx context.Context, actor Actor, filter repositories.CollegeFilter) ([]*models.College, int64, error) {
	if !actor.IsAdmin() {
		filter.Status = models.StatusActive
	}
	return s.collegeRepo.List(ctx, filter)
}

func (s *collegeServiceImpl) GetCollege(ctx context.Context, actor Actor, id string) (*models.College, error) {
	college, err := s.collegeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && college.Status != models.StatusActive {
		return nil, apperrors.NewResourceNotFoundError("college not found")
	}
	return college, nil
}

func (s *collegeServiceImpl) CreateCollege(ctx context.Context, college *models.College) error {
	if err := s.validateCollege(college); err != nil {
		return err
	}
	if err := s.collegeRepo.Create(ctx, college); err != nil {
		return fmt.Errorf("error creating college: %w", err)
	}
	return nil
}

func (s *collegeServiceImpl) UpdateCollege(ctx context.Context, college *models.College) error {
	if err := s.validateCollege(college); err != nil {
		return err
	}
	return s.collegeRepo.Update(ctx, college)
}

func (s *collegeServiceImpl) DeleteCollege(ctx context.Context, id string) error {
	if err := s.collegeRepo.Delete(ctx, id); err != nil {
		return err
	}
	n, err := s.courseRepo.DeleteByCollege(ctx, id)
	if err != nil {
		return fmt.Errorf("error deleting courses of college: %w", err)
	}
	s.logger.Info().Str("collegeId", id).Int64("courses", n).Msg("College deleted with its courses")
	return nil
}

type courseServiceImpl struct {
	courseRepo  repositories.ICourseRepository
	collegeRepo repositories.ICollegeRepository
}

// NewCourseService creates a new course service instance
func NewCourseService(courseRepo repositories.ICourseRepository, collegeRepo repositories.ICollegeRepository) CourseService {
	return &courseServiceImpl{
		courseRepo:  courseRepo,
		collegeRepo: collegeRepo,
	}
}

func (s *courseServiceImpl) validateCourse(ctx context.Context, course *models.Course) error {
	if course == nil {
		return fmt.Errorf("%w: course is nil", apperrors.ErrValidationFailed)
	}
	course.Name = strings.TrimSpace(course.Name)
	if course.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidationFailed)
	}
	if course.Fee < 0 {
		return fmt.Errorf("%w: fee cannot be negative", apperrors.ErrValidationFailed)
	}
	if course.Status == "" {
		course.Status = models.StatusActive
	}
	if course.Sessions == nil {
		course.Sessions = []string{}
	}
	if course.Streams == nil {
		course.Streams = []string{}
	}
	if _, err := s.collegeRepo.GetByID(ctx, course.CollegeID); err != nil {
		return err
	}
	return nil
}

func (s *courseServiceImpl) ListCourses(ctx context.Context, actor Actor, filter repositories.CourseFilter) ([]*models.Course, int64, error) {
	if !actor.IsAdmin() {
		filter.Status = models.StatusActive
	}
	return s.courseRepo.List(ctx, filter)
}

func (s *courseServiceImpl) GetCourse(ctx context.Context, actor Actor, id string) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && course.Status != models.StatusActive {
		return nil, apperrors.NewResourceNotFoundError("course not found")
	}
	return course, nil
}

func (s *courseServiceImpl) CreateCourse(ctx context.Context, course *models.Course) error {
	if err := s.validateCourse(ctx, course); err != nil {
		return err
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return fmt.Errorf("error creating course: %w", err)
	}
	return nil
}

func (s *courseServiceImpl) UpdateCourse(ctx context.Context, course *models.Course) error {
	if err := s.validateCourse(ctx, course); err != nil {
		return err
	}
	return s.courseRepo.Update(ctx, course)
}

func (s *courseServiceImpl) DeleteCourse(ctx context.Context, id string) error {
	return s.courseRepo.Delete(ctx, id)
}
