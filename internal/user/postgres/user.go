package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/school-store/internal/core/database"
	roleDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/user"
	"github.com/frahmantamala/school-store/internal/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user.FromDataModel(&u), nil
}

func (r *UserRepository) CreateWithRole(ctx context.Context, u *user.User, roleID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user.ToDataModel(u)).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return user.ErrUsernameTaken
			}
			return err
		}
		return tx.Create(&userDatamodel.UserRole{
			UserID:    u.ID,
			RoleID:    roleID,
			CreatedAt: u.CreatedAt,
		}).Error
	})
}

func (r *UserRepository) AddMembership(ctx context.Context, userID, roleID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&userDatamodel.UserRole{UserID: userID, RoleID: roleID, CreatedAt: time.Now().UTC()}).Error
}

func (r *UserRepository) GetRoleNames(ctx context.Context, userID string) ([]string, error) {
	names := make([]string, 0)
	err := r.db.WithContext(ctx).
		Model(&roleDatamodel.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name ASC").
		Pluck("roles.name", &names).Error
	return names, err
}
