package repository

import (
	"context"

	"constructedge/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return first[domain.User](ctx, r.db, domain.ErrUserNotFound, "email = ?", email)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return first[domain.User](ctx, r.db, domain.ErrUserNotFound, "id = ?", id)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := count[domain.User](ctx, r.db, "email = ?", email)
	return n > 0, err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, email, password string) (bool, error) {
	return updatePassword[domain.User](ctx, r.db, email, password)
}

func (r *UserRepository) ListUsers(ctx context.Context, page, pageSize int, emailFilter string) ([]*domain.User, int, error) {
	var users []*domain.User
	query := r.db.WithContext(ctx).Model(&domain.User{})

	if emailFilter != "" {
		query = query.Where("email LIKE ?", "%"+emailFilter+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	if err := query.Order("created_at").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, int(total), nil
}
