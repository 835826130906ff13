package repositories

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
)

var courseSelect = "SELECT " + strings.Join(courseColumns, ", ") + " FROM courses"

func courseRow(id string, sessions, streams []byte) []interface{} {
	created := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	return []interface{}{
		id, "college-1", "B.Tech Computer Science", "undergraduate", "4 years", 250000.0,
		sessions, streams, "12th with PCM", "active", created, created,
	}
}

func TestCourseGetByIDDecodesJSONB(t *testing.T) {
	mock := newMockDB(t)
	repo := NewCourseRepository(mock)

	mock.ExpectQuery(courseSelect + " WHERE id = $1 LIMIT 1").
		WithArgs("course-1").
		WillReturnRows(pgxmock.NewRows(courseColumns).
			AddRow(courseRow("course-1", []byte(`["2025-26","2026-27"]`), []byte(`["Science"]`))...))

	course, err := repo.GetByID(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-26", "2026-27"}, course.Sessions)
	assert.Equal(t, []string{"Science"}, course.Streams)
	assert.Equal(t, models.AccountStatus("active"), course.Status)
	assert.Equal(t, 250000.0, course.Fee)
}

func TestCourseGetByIDNullArrays(t *testing.T) {
	mock := newMockDB(t)
	repo := NewCourseRepository(mock)

	mock.ExpectQuery(courseSelect + " WHERE id = $1 LIMIT 1").
		WithArgs("course-1").
		WillReturnRows(pgxmock.NewRows(courseColumns).
			AddRow(courseRow("course-1", nil, []byte("null"))...))

	course, err := repo.GetByID(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, course.Sessions)
	assert.Equal(t, []string{}, course.Streams)
}

func TestCourseGetByIDNotFound(t *testing.T) {
	mock := newMockDB(t)
	repo := NewCourseRepository(mock)

	mock.ExpectQuery(courseSelect + " WHERE id = $1 LIMIT 1").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(courseColumns))

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestCourseListFiltersAndPagination(t *testing.T) {
	mock := newMockDB(t)
	repo := NewCourseRepository(mock)

	where := " WHERE (college_id = $1 AND (name ILIKE $2 OR level ILIKE $3))"
	mock.ExpectQuery("SELECT COUNT(*) FROM courses"+where).
		WithArgs("college-1", "%tech%", "%tech%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(courseSelect+where+" ORDER BY name ASC LIMIT 2 OFFSET 0").
		WithArgs("college-1", "%tech%", "%tech%").
		WillReturnRows(pgxmock.NewRows(courseColumns).
			AddRow(courseRow("course-1", []byte(`["2025-26"]`), []byte(`[]`))...).
			AddRow(courseRow("course-2", []byte(`["2025-26"]`), []byte(`["Commerce"]`))...))

	courses, total, err := repo.List(context.Background(), CourseFilter{
		ListOptions: ListOptions{Page: 1, Size: 2},
		CollegeID:   "college-1",
		Search:      "tech",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, courses, 2)
	assert.Equal(t, []string{}, courses[0].Streams)
	assert.Equal(t, []string{"Commerce"}, courses[1].Streams)
}

func TestCourseListRejectsMalformedSessions(t *testing.T) {
	mock := newMockDB(t)
	repo := NewCourseRepository(mock)

	mock.ExpectQuery("SELECT COUNT(*) FROM courses WHERE (1=1)").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(courseSelect + " WHERE (1=1) ORDER BY name ASC").
		WillReturnRows(pgxmock.NewRows(courseColumns).
			AddRow(courseRow("course-1", []byte(`{"year":"2025-26"}`), nil)...))

	_, _, err := repo.List(context.Background(), CourseFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error decoding course sessions")
}
