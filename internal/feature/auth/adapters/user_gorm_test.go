package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolio_backend/internal/feature/auth/domain"
	"portfolio_backend/internal/feature/auth/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&entity.User{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func strPtr(s string) *string { return &s }

func TestUserGorm_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		user := &entity.User{Email: "test@example.com", Password: "hashed", IsActive: true}
		err := repo.Create(context.Background(), user)

		assert.NoError(t, err)
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")
	})

	t.Run("duplicate email error", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		require.NoError(t, repo.Create(context.Background(), &entity.User{Email: "dup@example.com", Password: "p1"}))
		err := repo.Create(context.Background(), &entity.User{Email: "dup@example.com", Password: "p2"})

		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	})

	t.Run("nil user error", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		assert.Error(t, repo.Create(context.Background(), nil))
	})
}

func TestUserGorm_FindByEmail(t *testing.T) {
	repo := NewUserGorm(setupTestDB(t))
	balance := 1250.5
	require.NoError(t, repo.Create(context.Background(), &entity.User{
		Email: "find@example.com", Password: "hashed", Balance: &balance, IsActive: true,
	}))

	t.Run("found", func(t *testing.T) {
		found, err := repo.FindByEmail(context.Background(), "find@example.com")

		require.NoError(t, err)
		assert.Equal(t, "find@example.com", found.Email)
		require.NotNil(t, found.Balance)
		assert.Equal(t, 1250.5, *found.Balance)
		assert.True(t, found.IsActive)
		assert.False(t, found.HasAPIKey())
	})

	t.Run("not found", func(t *testing.T) {
		found, err := repo.FindByEmail(context.Background(), "notfound@example.com")

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.Nil(t, found)
	})

	t.Run("empty email", func(t *testing.T) {
		found, err := repo.FindByEmail(context.Background(), "")

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.Nil(t, found)
	})
}

func TestUserGorm_KeyLookups(t *testing.T) {
	repo := NewUserGorm(setupTestDB(t))
	ctx := context.Background()

	users := []*entity.User{
		{Email: "a@example.com", Password: "p", APIKey: strPtr("$argon2id$a"), APIKeyFingerprint: strPtr("aaaa")},
		{Email: "b@example.com", Password: "p", APIKey: strPtr("$argon2id$b")},
		{Email: "c@example.com", Password: "p"},
		{Email: "d@example.com", Password: "p", APIKey: strPtr(""), APIKeyFingerprint: strPtr("aaaa")},
	}
	for _, u := range users {
		require.NoError(t, repo.Create(ctx, u))
	}

	t.Run("FindAllWithAPIKey skips users without a key", func(t *testing.T) {
		found, err := repo.FindAllWithAPIKey(ctx)

		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "a@example.com", found[0].Email)
		assert.Equal(t, "b@example.com", found[1].Email)
	})

	t.Run("FindByFingerprint", func(t *testing.T) {
		found, err := repo.FindByFingerprint(ctx, "aaaa")

		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "a@example.com", found[0].Email)

		none, err := repo.FindByFingerprint(ctx, "zzzz")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("UpdateAPIKey", func(t *testing.T) {
		require.NoError(t, repo.UpdateAPIKey(ctx, "c@example.com", "$argon2id$c", "cccc"))

		found, err := repo.FindByFingerprint(ctx, "cccc")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "$argon2id$c", *found[0].APIKey)

		err = repo.UpdateAPIKey(ctx, "ghost@example.com", "h", "f")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
