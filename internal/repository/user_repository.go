package repository

import (
	"context"

	"github.com/shinyyama/realestate-backend/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindContact loads only the public contact columns; credentials are
	// never read.
	FindContact(ctx context.Context, id string) (*model.Contact, error)
	FindContacts(ctx context.Context, ids []string) (map[string]model.Contact, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

type contactRow struct {
	ID    string
	Name  string
	Email string
	Phone string
}

func (r *userRepository) FindContact(ctx context.Context, id string) (*model.Contact, error) {
	var row contactRow
	if err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("id", "name", "email", "phone").
		Where("id = ?", id).
		Take(&row).Error; err != nil {
		return nil, err
	}
	return &model.Contact{Name: row.Name, Email: row.Email, Phone: row.Phone}, nil
}

func (r *userRepository) FindContacts(ctx context.Context, ids []string) (map[string]model.Contact, error) {
	out := make(map[string]model.Contact, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []contactRow
	if err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("id", "name", "email", "phone").
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = model.Contact{Name: row.Name, Email: row.Email, Phone: row.Phone}
	}
	return out, nil
}
