package role

import "time"

const ClaimTypePermission = "permission"

type Role struct {
	ID             string    `gorm:"primaryKey;size:36"`
	Name           string    `gorm:"column:name;not null"`
	NormalizedName string    `gorm:"column:normalized_name;uniqueIndex;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (Role) TableName() string {
	return "roles"
}

type RoleClaim struct {
	ID         int64  `gorm:"primaryKey"`
	RoleID     string `gorm:"column:role_id;size:36;not null;uniqueIndex:idx_role_claims_role_value"`
	ClaimType  string `gorm:"column:claim_type;not null;default:permission"`
	ClaimValue string `gorm:"column:claim_value;not null;uniqueIndex:idx_role_claims_role_value"`
}

func (RoleClaim) TableName() string {
	return "role_claims"
}
