package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"santaswishlist/internal/database"
	"santaswishlist/internal/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations("../../migrations", nil))
	return db
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user, err := repo.CreateUser("elf@northpole.test", "hash", "elf")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	found, err := repo.GetUserByEmail("elf@northpole.test")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "elf", found.Username)
	assert.Empty(t, found.OAuthProvider)

	missing, err := repo.GetUserByEmail("grinch@northpole.test")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.LinkOAuthProvider(user.ID, "google", "sub-1"))
	assert.ErrorIs(t, repo.LinkOAuthProvider(user.ID, "facebook", "sub-2"), ErrOAuthAlreadyLinked)

	byOAuth, err := repo.GetUserByOAuth("google", "sub-1")
	require.NoError(t, err)
	require.NotNil(t, byOAuth)
	assert.Equal(t, user.ID, byOAuth.ID)

	_, err = repo.CreateUser("elf@northpole.test", "hash", "again")
	assert.Error(t, err, "email must be unique")
}

func TestSessions(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	user, err := repo.CreateUser("elf@northpole.test", "hash", "elf")
	require.NoError(t, err)

	now := time.Now()
	_, err = repo.CreateSession("live", user.ID, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = repo.CreateSession("stale", user.ID, now.Add(-time.Hour))
	require.NoError(t, err)

	removed, err := repo.DeleteExpiredSessions(now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	live, err := repo.GetSession("live")
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, user.ID, live.UserID)

	stale, err := repo.GetSession("stale")
	require.NoError(t, err)
	assert.Nil(t, stale)

	require.NoError(t, repo.DeleteSession("live"))
	live, err = repo.GetSession("live")
	require.NoError(t, err)
	assert.Nil(t, live)
}

func TestWishRepository(t *testing.T) {
	db := newTestDB(t)
	user, err := NewUserRepository(db).CreateUser("elf@northpole.test", "hash", "elf")
	require.NoError(t, err)
	repo := NewWishRepository(db)

	base := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	for i, title := range []string{"Sled", "Book"} {
		at := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.CreateWish(&models.Wish{
			ID:        title,
			UserID:    user.ID,
			Title:     title,
			Category:  models.CategoryToys,
			Status:    models.StatusPending,
			CreatedAt: at,
			UpdatedAt: at,
		}))
	}

	wishes, err := repo.GetUserWishes(user.ID)
	require.NoError(t, err)
	require.Len(t, wishes, 2)
	assert.Equal(t, "Book", wishes[0].ID, "newest first")

	wish := wishes[1]
	wish.Status = models.StatusApproved
	wish.UpdatedAt = base.Add(2 * time.Hour)
	require.NoError(t, repo.UpdateWish(&wish))

	got, err := repo.GetWish("Sled")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.True(t, got.UpdatedAt.Equal(wish.UpdatedAt))

	require.NoError(t, repo.DeleteWish("Sled"))
	got, err = repo.GetWish("Sled")
	require.NoError(t, err)
	assert.Nil(t, got)

	empty, err := repo.GetUserWishes(user.ID + 100)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)
}

func TestKVRepository(t *testing.T) {
	db := newTestDB(t)
	user, err := NewUserRepository(db).CreateUser("elf@northpole.test", "hash", "elf")
	require.NoError(t, err)
	kv := NewKVRepository(db).ForUser(user.ID)

	_, ok, err := kv.Get("santa_user_profile")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set("santa_user_profile", []byte(`{"niceScore":75}`)))
	require.NoError(t, kv.Set("santa_user_profile", []byte(`{"niceScore":90}`)))

	value, ok, err := kv.Get("santa_user_profile")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"niceScore":90}`, string(value))

	all, err := NewKVRepository(db).GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, kv.Delete("santa_user_profile"))
	require.NoError(t, kv.Delete("santa_user_profile"))
	_, ok, err = kv.Get("santa_user_profile")
	require.NoError(t, err)
	assert.False(t, ok)
}
