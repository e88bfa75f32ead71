package auth

import (
	"sort"
	"strings"
)

const (
	RoleStaff             = "Staff"
	RoleDivisionCC        = "Division CC"
	RoleDivisionHead      = "Division Head"
	RoleADS               = "ADS"
	RoleHOD               = "HOD"
	RoleHeadOfDepartment  = "Head of Department"
	RoleSubjectOffice     = "Leave Subject Officer (Office)"
	RoleSubjectField      = "Leave Subject Officer (Field)"
	RoleSubjectDevOfficer = "Leave Subject Officer (DO)"
	RoleAdmin             = "Admin"
)

type StaffType string

const (
	StaffOffice StaffType = "Office"
	StaffField  StaffType = "Field"
)

// Member is a directory entry as the leave workflow sees it.
type Member struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	RoleID      string    `json:"roleId,omitempty"`
	RoleName    string    `json:"roleName,omitempty"`
	DivisionID  string    `json:"divisionId,omitempty"`
	StaffType   StaffType `json:"staffType"`
	Designation string    `json:"designation,omitempty"`
}

// RoleBinding is the actor's role as of the moment it was read.
type RoleBinding struct {
	UserID      string
	RoleID      string
	RoleName    string
	Permissions PermissionSet
}

// IsHeadOfDepartment reports the escalation role by exact name.
func (b RoleBinding) IsHeadOfDepartment() bool {
	return b.RoleName == RoleHeadOfDepartment
}

func (b RoleBinding) Can(p Permission) bool {
	return b.Permissions.Has(p)
}

var staffPermissions = []Permission{PermLeaveApply, PermLeaveViewHistory, PermStaffView}

func withStaff(extra ...Permission) []Permission {
	out := append([]Permission{}, staffPermissions...)
	return append(out, extra...)
}

// DefaultRolePermissions is the permission set each organisational role is seeded with.
var DefaultRolePermissions = map[string][]Permission{
	RoleStaff:            withStaff(PermLeaveActing),
	RoleDivisionCC:       withStaff(PermLeaveRecommend),
	RoleDivisionHead:     withStaff(PermLeaveRecommend, PermLeaveApprove, PermLeaveViewSummary),
	RoleADS:              withStaff(PermLeaveRecommend, PermLeaveApprove, PermLeaveViewSummary),
	RoleHOD:              withStaff(PermLeaveApprove, PermLeaveViewSummary),
	RoleHeadOfDepartment: withStaff(PermLeaveApprove, PermLeaveViewSummary, PermLeaveManageBalance),
	RoleSubjectOffice:    withStaff(PermLeaveActing, PermLeaveManageSubject, PermLeaveOfficeStaff, PermLeaveViewSummary),
	RoleSubjectField:     withStaff(PermLeaveActing, PermLeaveManageSubject, PermLeaveFieldStaff, PermLeaveViewSummary),
	RoleSubjectDevOfficer: withStaff(
		PermLeaveActing, PermLeaveManageSubject, PermLeaveDevOfficers, PermLeaveViewSummary,
	),
	RoleAdmin: {
		PermAdminAccess, PermDivisionRead, PermRoleRead, PermUserRead,
		PermLeaveManageBalance, PermLeaveViewSummary,
	},
}

func SeededRoles() []string {
	names := make([]string, 0, len(DefaultRolePermissions))
	for name := range DefaultRolePermissions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseStaffType defaults anything unrecognised to office staff.
func ParseStaffType(raw string) StaffType {
	if strings.EqualFold(strings.TrimSpace(raw), string(StaffField)) {
		return StaffField
	}
	return StaffOffice
}

// UserContext is the authenticated caller attached to a request.
type UserContext struct {
	UserID string
	Name   string
}
