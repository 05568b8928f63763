package mysql

import (
	"context"

	"greenmart/internal/domain"
	"greenmart/internal/repository"

	"gorm.io/gorm"
)

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	return mapError(r.db.WithContext(ctx).Create(u).Error)
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	return mapError(r.db.WithContext(ctx).Save(u).Error)
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := []domain.User{}
	if err := q.Scopes(paginate(f.Page, f.Limit)).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
