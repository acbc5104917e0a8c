package role

import (
	"strings"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/core/common/validation"
)

type AddRoleDTO struct {
	Name string `json:"name"`
}

func (d AddRoleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required()
	return v.Validate()
}

type ModifyRoleClaimsDTO struct {
	Name        string     `json:"name"`
	Mode        ModifyMode `json:"mode"`
	Permissions []string   `json:"permissions"`
}

// Validate checks shape only; catalog membership is checked by the service.
func (d ModifyRoleClaimsDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required()
	v.Field("permissions", d.Permissions).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	if _, err := ParseMode(string(d.Mode)); err != nil {
		return err
	}
	return nil
}

func ParseMode(raw string) (ModifyMode, error) {
	switch {
	case strings.EqualFold(raw, string(ModeAdd)):
		return ModeAdd, nil
	case strings.EqualFold(raw, string(ModeRemove)):
		return ModeRemove, nil
	default:
		return "", ErrInvalidModifyMode.WithDetails(internal.ValidationErrors{Errors: []internal.ValidationError{
			{Field: "mode", Message: "mode must be Add or Remove", Code: string(internal.ErrCodeInvalidModifyMode)},
		}})
	}
}

type RoleResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Claims []string `json:"claims"`
}

type RoleClaimsResponse struct {
	Role   string   `json:"role"`
	Claims []string `json:"claims"`
}
