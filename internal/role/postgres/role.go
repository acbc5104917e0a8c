package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/school-store/internal/auth"
	"github.com/frahmantamala/school-store/internal/core/database"
	roleDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/role"
	"github.com/frahmantamala/school-store/internal/role"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) EnsureRole(ctx context.Context, name string, defaults []string, at time.Time) (*role.Role, bool, error) {
	var (
		out     *role.Role
		created bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := &roleDatamodel.Role{
			ID:             uuid.NewString(),
			Name:           name,
			NormalizedName: auth.NormalizeRoleName(name),
			CreatedAt:      at,
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if res.Error != nil {
			return fmt.Errorf("insert role: %w", res.Error)
		}
		created = res.RowsAffected == 1

		var stored roleDatamodel.Role
		if err := tx.Where("normalized_name = ?", auth.NormalizeRoleName(name)).First(&stored).Error; err != nil {
			return fmt.Errorf("load role: %w", err)
		}
		out = role.FromDataModel(&stored)

		if !created || len(defaults) == 0 {
			return nil
		}
		claims := make([]roleDatamodel.RoleClaim, 0, len(defaults))
		for _, p := range defaults {
			claims = append(claims, roleDatamodel.RoleClaim{
				RoleID:     stored.ID,
				ClaimType:  roleDatamodel.ClaimTypePermission,
				ClaimValue: p,
			})
		}
		return tx.Create(&claims).Error
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*role.Role, error) {
	var stored roleDatamodel.Role
	err := r.db.WithContext(ctx).Where("normalized_name = ?", auth.NormalizeRoleName(name)).First(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return role.FromDataModel(&stored), nil
}

func (r *RoleRepository) ListRoles(ctx context.Context) ([]*role.Role, error) {
	var rows []roleDatamodel.Role
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*role.Role, 0, len(rows))
	for i := range rows {
		out = append(out, role.FromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *RoleRepository) ListClaims(ctx context.Context, roleID string) ([]string, error) {
	return listClaims(r.db.WithContext(ctx), roleID)
}

func listClaims(db *gorm.DB, roleID string) ([]string, error) {
	claims := make([]string, 0)
	err := db.Model(&roleDatamodel.RoleClaim{}).
		Where("role_id = ? AND claim_type = ?", roleID, roleDatamodel.ClaimTypePermission).
		Order("claim_value ASC").
		Pluck("claim_value", &claims).Error
	return claims, err
}

// lockRole serializes claim changes per role.
func lockRole(tx *gorm.DB, roleID string) error {
	var stored roleDatamodel.Role
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", roleID).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return role.ErrRoleNotFound
	}
	return err
}

func (r *RoleRepository) AddClaims(ctx context.Context, roleID string, permissions []string) ([]string, error) {
	var result []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRole(tx, roleID); err != nil {
			return err
		}
		existing, err := listClaims(tx, roleID)
		if err != nil {
			return err
		}
		have := make(map[string]struct{}, len(existing))
		for _, c := range existing {
			have[c] = struct{}{}
		}

		for _, p := range permissions {
			if _, dup := have[p]; dup {
				return role.ErrDuplicateClaim.WithMessage(fmt.Sprintf("Can't Add Duplicate Claim: %s", p))
			}
			have[p] = struct{}{}
			if err := tx.Create(&roleDatamodel.RoleClaim{
				RoleID:     roleID,
				ClaimType:  roleDatamodel.ClaimTypePermission,
				ClaimValue: p,
			}).Error; err != nil {
				if database.IsUniqueViolation(err) {
					return role.ErrDuplicateClaim.WithMessage(fmt.Sprintf("Can't Add Duplicate Claim: %s", p))
				}
				return err
			}
		}

		result, err = listClaims(tx, roleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *RoleRepository) RemoveClaims(ctx context.Context, roleID string, permissions []string) ([]string, error) {
	var result []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRole(tx, roleID); err != nil {
			return err
		}
		for _, p := range permissions {
			res := tx.Where("role_id = ? AND claim_type = ? AND claim_value = ?", roleID, roleDatamodel.ClaimTypePermission, p).
				Delete(&roleDatamodel.RoleClaim{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return role.ErrClaimNotFound.WithMessage(fmt.Sprintf("Can't Remove non existent Claim: %s", p))
			}
		}

		var err error
		result, err = listClaims(tx, roleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
