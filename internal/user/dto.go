package user

import (
	"strings"

	"github.com/frahmantamala/school-store/internal/core/common/validation"
)

type RegisterDTO struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func (d RegisterDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required().MaxLength(64)
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(8).MaxLength(72)
	v.Field("role", d.Role).Required()
	return v.Validate()
}

// Normalized lower-cases and trims the identifying fields.
func (d RegisterDTO) Normalized() RegisterDTO {
	d.Username = strings.ToLower(strings.TrimSpace(d.Username))
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Phone = strings.TrimSpace(d.Phone)
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	return d
}

type AssignRoleDTO struct {
	Role string `json:"role"`
}

func (d AssignRoleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("role", d.Role).Required()
	return v.Validate()
}

type MembershipsResponse struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}
