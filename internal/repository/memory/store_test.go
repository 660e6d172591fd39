package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
	"github.com/vietanh2810/eventbooking-api/internal/repository"
)

func TestUsers(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u, err := s.Users().Create(ctx, domain.User{Username: "alice", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	_, err = s.Users().Create(ctx, domain.User{Username: "alice"})
	assert.ErrorIs(t, err, repository.ErrUsernameExists)

	got, err := s.Users().FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Users().FindByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvents(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	late, err := s.Events().Create(ctx, domain.Event{Title: "late", StartTime: base.Add(time.Hour), CreatedBy: 1})
	require.NoError(t, err)
	early, err := s.Events().Create(ctx, domain.Event{Title: "early", StartTime: base})
	require.NoError(t, err)

	all, err := s.Events().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, early.ID, all[0].ID)
	assert.Equal(t, late.ID, all[1].ID)

	late.Title = "later"
	late.CreatedBy = 42
	updated, err := s.Events().Update(ctx, late)
	require.NoError(t, err)
	assert.Equal(t, "later", updated.Title)
	assert.Equal(t, uint(1), updated.CreatedBy)

	_, err = s.Events().Update(ctx, domain.Event{ID: 999})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
