package models

import "fmt"

// Role is the closed set of principals the back-office knows about.
type Role string

const (
	RoleRegularUser  Role = "regular_user"
	RoleCompanyAdmin Role = "company_admin"
	RoleSuperAdmin   Role = "super_admin"
)

// ParseRole converts s into a Role, rejecting anything outside the set.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleRegularUser, RoleCompanyAdmin, RoleSuperAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User is an authenticated account. Company staff carry the company they
// belong to in CompanyID.
type User struct {
	ID        uint
	Name      string
	Email     string
	Role      Role
	CompanyID *uint
}

// HasCompany reports whether the user is associated with a company.
func (u *User) HasCompany() bool {
	return u.CompanyID != nil && *u.CompanyID != 0
}
