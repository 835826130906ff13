package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
)

type collegeRepository struct {
	db *DB
}

var _ repositories.ICollegeRepository = (*collegeRepository)(nil)

func (r *collegeRepository) Create(_ context.Context, college *models.College) error {
	t := r.db.colleges
	t.Lock()
	defer t.Unlock()

	if college.ID == "" {
		college.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	college.CreatedAt, college.UpdatedAt = now, now
	t.put(college.ID, *college)
	return nil
}

func (r *collegeRepository) GetByID(_ context.Context, id string) (*models.College, error) {
	t := r.db.colleges
	t.RLock()
	defer t.RUnlock()

	if row, ok := t.rows[id]; ok {
		c := row.value
		return &c, nil
	}
	return nil, apperrors.NewResourceNotFoundError("college not found")
}

func (r *collegeRepository) List(_ context.Context, filter repositories.CollegeFilter) ([]*models.College, int64, error) {
	t := r.db.colleges
	t.RLock()
	defer t.RUnlock()

	matched := []*models.College{}
	for _, c := range t.newestFirst() {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !contains(c.Name, filter.Search) &&
			!contains(c.Code, filter.Search) && !contains(c.Location, filter.Search) {
			continue
		}
		c := c
		matched = append(matched, &c)
	}

	// ranking ascending, unranked last, then name
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch {
		case a.Ranking != nil && b.Ranking != nil && *a.Ranking != *b.Ranking:
			return *a.Ranking < *b.Ranking
		case a.Ranking != nil && b.Ranking == nil:
			return true
		case a.Ranking == nil && b.Ranking != nil:
			return false
		}
		return a.Name < b.Name
	})
	return paginate(matched, filter.ListOptions), int64(len(matched)), nil
}

func (r *collegeRepository) Update(_ context.Context, college *models.College) error {
	t := r.db.colleges
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[college.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("college not found")
	}
	college.CreatedAt = row.value.CreatedAt
	college.UpdatedAt = time.Now().UTC()
	row.value = *college
	return nil
}

func (r *collegeRepository) Delete(_ context.Context, id string) error {
	t := r.db.colleges
	t.Lock()
	defer t.Unlock()

	if _, ok := t.rows[id]; !ok {
		return apperrors.NewResourceNotFoundError("college not found")
	}
	delete(t.rows, id)
	return nil
}

type courseRepository struct {
	db *DB
}

var _ repositories.ICourseRepository = (*courseRepository)(nil)

func copyCourse(c models.Course) models.Course {
	c.Sessions = append([]string{}, c.Sessions...)
	c.Streams = append([]string{}, c.Streams...)
	return c
}

func (r *courseRepository) Create(_ context.Context, course *models.Course) error {
	t := r.db.courses
	t.Lock()
	defer t.Unlock()

	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt, course.UpdatedAt = now, now
	t.put(course.ID, copyCourse(*course))
	return nil
}

func (r *courseRepository) GetByID(_ context.Context, id string) (*models.Course, error) {
	t := r.db.courses
	t.RLock()
	defer t.RUnlock()

	if row, ok := t.rows[id]; ok {
		c := copyCourse(row.value)
		return &c, nil
	}
	return nil, apperrors.NewResourceNotFoundError("course not found")
}

func (r *courseRepository) List(_ context.Context, filter repositories.CourseFilter) ([]*models.Course, int64, error) {
	t := r.db.courses
	t.RLock()
	defer t.RUnlock()

	matched := []*models.Course{}
	for _, c := range t.newestFirst() {
		if filter.CollegeID != "" && c.CollegeID != filter.CollegeID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !contains(c.Name, filter.Search) && !contains(c.Level, filter.Search) {
			continue
		}
		c := copyCourse(c)
		matched = append(matched, &c)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return paginate(matched, filter.ListOptions), int64(len(matched)), nil
}

func (r *courseRepository) Update(_ context.Context, course *models.Course) error {
	t := r.db.courses
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[course.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("course not found")
	}
	course.CreatedAt = row.value.CreatedAt
	course.UpdatedAt = time.Now().UTC()
	row.value = copyCourse(*course)
	return nil
}

func (r *courseRepository) Delete(_ context.Context, id string) error {
	t := r.db.courses
	t.Lock()
	defer t.Unlock()

	if _, ok := t.rows[id]; !ok {
		return apperrors.NewResourceNotFoundError("course not found")
	}
	delete(t.rows, id)
	return nil
}

func (r *courseRepository) DeleteByCollege(_ context.Context, collegeID string) (int64, error) {
	t := r.db.courses
	t.Lock()
	defer t.Unlock()

	var n int64
	for id, row := range t.rows {
		if row.value.CollegeID == collegeID {
			delete(t.rows, id)
			n++
		}
	}
	return n, nil
}
