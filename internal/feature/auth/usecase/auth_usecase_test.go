package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/auth/domain"
	"portfolio_backend/internal/feature/auth/domain/entity"
)

func TestAuthUsecase_Signup(t *testing.T) {
	t.Run("successful signup", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			CreateFunc: func(user *entity.User) error {
				assert.Equal(t, "test@example.com", user.Email)
				assert.True(t, user.IsActive)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
				return nil
			},
		}

		uc := NewAuthUsecase(mockRepo, &mockJWTGenerator{}, NewArgon2Verifier(testParams))
		err := uc.Signup(context.Background(), " Test@Example.com ", "password123")

		assert.NoError(t, err)
	})

	t.Run("short password", func(t *testing.T) {
		uc := NewAuthUsecase(&mockUserRepository{}, &mockJWTGenerator{}, NewArgon2Verifier(testParams))
		err := uc.Signup(context.Background(), "test@example.com", "short")

		assert.Error(t, err)
	})

	t.Run("repository create failure", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			CreateFunc: func(user *entity.User) error { return domain.ErrUserAlreadyExists },
		}

		uc := NewAuthUsecase(mockRepo, &mockJWTGenerator{}, NewArgon2Verifier(testParams))
		err := uc.Signup(context.Background(), "test@example.com", "password123")

		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
		assert.NotErrorIs(t, err, api.ErrDependency)
	})

	t.Run("storage unavailable", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			CreateFunc: func(user *entity.User) error { return errors.New("connection refused") },
		}

		uc := NewAuthUsecase(mockRepo, &mockJWTGenerator{}, NewArgon2Verifier(testParams))
		err := uc.Signup(context.Background(), "test@example.com", "password123")

		var dep *api.DependencyError
		require.ErrorAs(t, err, &dep)
		assert.Equal(t, api.KindStorage, dep.Kind)
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	testUser := &entity.User{Email: "test@example.com", Password: string(hashed), IsActive: true}

	repo := &mockUserRepository{
		FindByEmailFunc: func(email string) (*entity.User, error) {
			if email == testUser.Email {
				return testUser, nil
			}
			return nil, domain.ErrUserNotFound
		},
	}

	t.Run("successful login", func(t *testing.T) {
		jwtGen := &mockJWTGenerator{
			GenerateTokenFunc: func(email string) (string, error) {
				assert.Equal(t, testUser.Email, email)
				return "signed", nil
			},
		}
		uc := NewAuthUsecase(repo, jwtGen, NewArgon2Verifier(testParams))

		token, err := uc.Login(context.Background(), "test@example.com", "password123")

		require.NoError(t, err)
		assert.Equal(t, "signed", token)
	})

	t.Run("wrong password", func(t *testing.T) {
		uc := NewAuthUsecase(repo, &mockJWTGenerator{}, NewArgon2Verifier(testParams))
		_, err := uc.Login(context.Background(), "test@example.com", "nope-nope")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		uc := NewAuthUsecase(repo, &mockJWTGenerator{}, NewArgon2Verifier(testParams))
		_, err := uc.Login(context.Background(), "ghost@example.com", "password123")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		inactive := *testUser
		inactive.IsActive = false
		r := &mockUserRepository{
			FindByEmailFunc: func(string) (*entity.User, error) { return &inactive, nil },
		}
		uc := NewAuthUsecase(r, &mockJWTGenerator{}, NewArgon2Verifier(testParams))
		_, err := uc.Login(context.Background(), "test@example.com", "password123")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("repository failure is not hidden", func(t *testing.T) {
		dbErr := errors.New("db down")
		r := &mockUserRepository{
			FindByEmailFunc: func(string) (*entity.User, error) { return nil, dbErr },
		}
		uc := NewAuthUsecase(r, &mockJWTGenerator{}, NewArgon2Verifier(testParams))
		_, err := uc.Login(context.Background(), "test@example.com", "password123")

		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("token generation failure", func(t *testing.T) {
		jwtGen := &mockJWTGenerator{
			GenerateTokenFunc: func(string) (string, error) { return "", errors.New("sign failed") },
		}
		uc := NewAuthUsecase(repo, jwtGen, NewArgon2Verifier(testParams))
		_, err := uc.Login(context.Background(), "test@example.com", "password123")

		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestAuthUsecase_IssueKey(t *testing.T) {
	verifier := NewArgon2Verifier(testParams)

	t.Run("stores hash and fingerprint of the returned key", func(t *testing.T) {
		var storedHash, storedFP string
		repo := &mockUserRepository{
			FindByEmailFunc: func(email string) (*entity.User, error) {
				return &entity.User{Email: email, IsActive: true}, nil
			},
			UpdateAPIKeyFunc: func(email, hash, fp string) error {
				assert.Equal(t, "a@example.com", email)
				storedHash, storedFP = hash, fp
				return nil
			},
		}
		uc := NewAuthUsecase(repo, &mockJWTGenerator{}, verifier)

		key, err := uc.IssueKey(context.Background(), "a@example.com")

		require.NoError(t, err)
		assert.NotEqual(t, key, storedHash)
		assert.True(t, verifier.Verify(key, storedHash))
		assert.Equal(t, Fingerprint(key), storedFP)
	})

	t.Run("unknown user", func(t *testing.T) {
		uc := NewAuthUsecase(&mockUserRepository{}, &mockJWTGenerator{}, verifier)
		_, err := uc.IssueKey(context.Background(), "ghost@example.com")

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
