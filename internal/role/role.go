package role

import (
	"time"

	"github.com/frahmantamala/school-store/internal"
	roleDatamodel "github.com/frahmantamala/school-store/internal/core/datamodel/role"
)

type Role struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type ModifyMode string

const (
	ModeAdd    ModifyMode = "Add"
	ModeRemove ModifyMode = "Remove"
)

var (
	ErrInvalidRole       = internal.NewValidationError("role is not one of Admin, Teacher, StoreKeeper, Student", internal.ErrCodeInvalidRole)
	ErrRoleNotFound      = internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
	ErrDuplicateClaim    = internal.NewValidationError("Can't Add Duplicate Claim", internal.ErrCodeDuplicateClaim)
	ErrClaimNotFound     = internal.NewValidationError("Can't Remove non existent Claim", internal.ErrCodeClaimNotFound)
	ErrUnknownPermission = internal.NewValidationError("permission is not in the catalog", internal.ErrCodeUnknownPermission)
	ErrInvalidModifyMode = internal.NewValidationError("Invalid Modify Mode", internal.ErrCodeInvalidModifyMode)
)

func FromDataModel(r *roleDatamodel.Role) *Role {
	return &Role{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
	}
}
