package entity

import "time"

// EmployeeRole is the organizational role of an employee
type EmployeeRole string

const (
	RoleEmployee  EmployeeRole = "employee"
	RoleManager   EmployeeRole = "manager"
	RoleExecutive EmployeeRole = "executive"
	RoleAdmin     EmployeeRole = "admin"
)

// Employee belongs to one company and may hold approval authority.
type Employee struct {
	ID             string
	Name           string
	NameKana       string
	Email          string
	EmployeeNumber string
	Department     string
	Role           EmployeeRole
	CompanyID      string
	IsActive       bool
	CanApprove     bool
	ApprovalLimit  int64 // 0 means no limit
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CanApproveAmount reports whether this employee may approve an expense of
// the given amount. The limit boundary is inclusive.
func (e *Employee) CanApproveAmount(amount int64) bool {
	if !e.CanApprove {
		return false
	}
	if e.ApprovalLimit > 0 && amount > e.ApprovalLimit {
		return false
	}
	return true
}
