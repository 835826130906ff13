package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/app/repositories/memory"
	"github.com/yigit/agencyportal/internal/pkg/auth"
)

func TestCreateDefaultDataIsIdempotent(t *testing.T) {
	auth.BcryptCost = bcrypt.MinCost
	ctx := context.Background()
	repos := memory.NewRepositories(memory.Open())
	admin := AdminAccount{Name: "Root", Email: " Admin@Portal.local ", Password: "s3cret-pass"}

	require.NoError(t, CreateDefaultData(ctx, repos, admin, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, repos, admin, zerolog.Nop()))

	users, total, err := repos.Users.List(ctx, repositories.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@portal.local", users[0].Email)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.Equal(t, models.StatusActive, users[0].Status)
	assert.True(t, auth.CheckPassword(users[0].Password, "s3cret-pass"))

	settings, err := repos.Settings.Get(ctx)
	require.NoError(t, err)
	assert.False(t, settings.UpdatedAt.IsZero())
}

func TestCreateDefaultDataWithoutAdminCredentials(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories(memory.Open())

	require.NoError(t, CreateDefaultData(ctx, repos, AdminAccount{}, zerolog.Nop()))

	_, total, err := repos.Users.List(ctx, repositories.UserFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}
