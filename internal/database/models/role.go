package models

import "github.com/google/uuid"

// Built-in role names. SuperAdmin is global (no tenant scope) and its
// users are always active.
const (
	RoleSuperAdmin = "SuperAdmin"
	RoleAdmin      = "Admin"
)

type Role struct {
	Base
	Name     string     `gorm:"not null;index:idx_roles_tenant_name,unique" json:"name"`
	TenantID *uuid.UUID `gorm:"type:uuid;index:idx_roles_tenant_name,unique" json:"tenantId,omitempty"` // nil = global role

	// Relationships
	Tenant *Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// IsGlobal reports whether the role is tenant-less (e.g. SuperAdmin).
func (r *Role) IsGlobal() bool {
	return r.TenantID == nil
}
