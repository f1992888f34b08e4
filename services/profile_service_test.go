package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/maeum/models"
)

func TestEnsureCreatesOnce(t *testing.T) {
	svcs, _ := newTestServices(t, "2024-01-01")
	ctx := context.Background()

	p, err := svcs.Profiles.Ensure(ctx, Identity{UserID: "u1", Email: "mina@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "mina", p.DisplayName)
	assert.Equal(t, 0, p.Streak)
	assert.Nil(t, p.LastCheckIn)

	again, err := svcs.Profiles.Ensure(ctx, Identity{UserID: "u1", DisplayName: "Someone else"})
	require.NoError(t, err)
	assert.Equal(t, "mina", again.DisplayName)

	_, err = svcs.Profiles.Ensure(ctx, Identity{})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestUpdateDetails(t *testing.T) {
	svcs, _ := newTestServices(t, "2024-01-01")
	ctx := context.Background()
	ensureUser(t, svcs, "u1", "Mina")

	name := "  <b>Mina K</b> "
	photo := "https://example.com/me.png"
	p, err := svcs.Profiles.UpdateDetails(ctx, "u1", &name, &photo)
	require.NoError(t, err)
	assert.Equal(t, "Mina K", p.DisplayName)
	assert.Equal(t, photo, p.PhotoURL)

	empty := "   "
	_, err = svcs.Profiles.UpdateDetails(ctx, "u1", &empty, nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svcs.Profiles.UpdateDetails(ctx, "ghost", &photo, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
