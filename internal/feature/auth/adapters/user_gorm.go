// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"portfolio_backend/internal/feature/auth/domain"
	"portfolio_backend/internal/feature/auth/domain/entity"
	"portfolio_backend/internal/feature/auth/usecase"
)

// pgUniqueViolation はPostgreSQLの一意制約違反コードです。
const pgUniqueViolation = "23505"

// userGorm はUserRepositoryとUserDirectoryのGORM実装です。
type userGorm struct {
	db *gorm.DB
}

// userGormがユースケースのインターフェースを実装していることをコンパイル時に検証します。
var (
	_ usecase.UserRepository = (*userGorm)(nil)
	_ usecase.UserDirectory  = (*userGorm)(nil)
)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーをデータベースに追加します。
// 同じメールアドレスのユーザーが既に存在する場合、domain.ErrUserAlreadyExistsを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、domain.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if email == "" {
		return nil, domain.ErrUserNotFound
	}
	var u entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByFingerprint はフィンガープリントが一致するユーザーを返します。
func (r *userGorm) FindByFingerprint(ctx context.Context, fp string) ([]*entity.User, error) {
	var users []*entity.User
	err := r.db.WithContext(ctx).
		Where("api_key_fingerprint = ? AND api_key IS NOT NULL AND api_key <> ''", fp).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// FindAllWithAPIKey はAPIキーを持つすべてのユーザーを返します。
func (r *userGorm) FindAllWithAPIKey(ctx context.Context) ([]*entity.User, error) {
	var users []*entity.User
	err := r.db.WithContext(ctx).
		Where("api_key IS NOT NULL AND api_key <> ''").
		Order("email").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateAPIKey はAPIキーのハッシュとフィンガープリントを更新します。
func (r *userGorm) UpdateAPIKey(ctx context.Context, email, hash, fingerprint string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("email = ?", email).
		Updates(map[string]any{"api_key": hash, "api_key_fingerprint": fingerprint})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
