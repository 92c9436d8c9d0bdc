package models

// Role is the caller's role as asserted by the external auth
// collaborator. The core trusts it; authentication itself is out of
// scope here.
type Role string

const (
	RoleClient       Role = "client"
	RoleEmployee     Role = "employee"
	RoleCompanyAdmin Role = "company_admin"
)

// Caller is the explicit identity threaded into every core operation
// in place of ambient session state.
type Caller struct {
	UserID    string
	Role      Role
	CompanyID string
}

// Staff reports whether the caller acts for a company.
func (c Caller) Staff() bool {
	return c.Role == RoleEmployee || c.Role == RoleCompanyAdmin
}
