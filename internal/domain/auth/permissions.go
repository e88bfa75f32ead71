package auth

import (
	"fmt"
	"sort"
	"strings"
)

type Resource string

type Action string

const (
	ResourceLeave    Resource = "leave"
	ResourceMail     Resource = "mail"
	ResourceFile     Resource = "file"
	ResourceStaff    Resource = "staff"
	ResourceAdmin    Resource = "admin"
	ResourceDivision Resource = "division"
	ResourceRole     Resource = "role"
	ResourceUser     Resource = "user"
)

const (
	ActionApply           Action = "apply"
	ActionViewHistory     Action = "view_history"
	ActionRecommend       Action = "recommend"
	ActionApprove         Action = "approve"
	ActionManageSubject   Action = "manage_subject"
	ActionActing          Action = "acting"
	ActionViewOfficeStaff Action = "view_office_staff"
	ActionViewFieldStaff  Action = "view_field_staff"
	ActionViewDevOfficers Action = "view_dev_officers"
	ActionManageBalance   Action = "manage_balance"
	ActionViewSummary     Action = "view_summary"

	ActionAccess Action = "access"
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionView   Action = "view"
)

// Permission is one resource/action pair, written "resource:action" on the wire.
type Permission struct {
	Resource Resource
	Action   Action
}

func (p Permission) String() string {
	return string(p.Resource) + ":" + string(p.Action)
}

var (
	PermLeaveApply         = Permission{ResourceLeave, ActionApply}
	PermLeaveViewHistory   = Permission{ResourceLeave, ActionViewHistory}
	PermLeaveRecommend     = Permission{ResourceLeave, ActionRecommend}
	PermLeaveApprove       = Permission{ResourceLeave, ActionApprove}
	PermLeaveManageSubject = Permission{ResourceLeave, ActionManageSubject}
	PermLeaveActing        = Permission{ResourceLeave, ActionActing}
	PermLeaveOfficeStaff   = Permission{ResourceLeave, ActionViewOfficeStaff}
	PermLeaveFieldStaff    = Permission{ResourceLeave, ActionViewFieldStaff}
	PermLeaveDevOfficers   = Permission{ResourceLeave, ActionViewDevOfficers}
	PermLeaveManageBalance = Permission{ResourceLeave, ActionManageBalance}
	PermLeaveViewSummary   = Permission{ResourceLeave, ActionViewSummary}
	PermStaffView          = Permission{ResourceStaff, ActionView}
	PermAdminAccess        = Permission{ResourceAdmin, ActionAccess}
	PermDivisionRead       = Permission{ResourceDivision, ActionRead}
	PermRoleRead           = Permission{ResourceRole, ActionRead}
	PermUserRead           = Permission{ResourceUser, ActionRead}
)

// Catalog lists every permission a role may carry.
var Catalog = []Permission{
	PermLeaveApply,
	PermLeaveViewHistory,
	PermLeaveRecommend,
	PermLeaveApprove,
	PermLeaveManageSubject,
	PermLeaveActing,
	PermLeaveOfficeStaff,
	PermLeaveFieldStaff,
	PermLeaveDevOfficers,
	PermLeaveManageBalance,
	PermLeaveViewSummary,
	PermStaffView,
	PermAdminAccess,
	PermDivisionRead,
	PermRoleRead,
	PermUserRead,
}

var catalogIndex = func() map[Permission]struct{} {
	out := make(map[Permission]struct{}, len(Catalog))
	for _, p := range Catalog {
		out[p] = struct{}{}
	}
	return out
}()

// ParsePermissionKey parses "resource:action" and rejects anything outside the catalog.
func ParsePermissionKey(raw string) (Permission, error) {
	resource, action, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || resource == "" || action == "" {
		return Permission{}, fmt.Errorf("malformed permission %q", raw)
	}
	perm := Permission{Resource: Resource(resource), Action: Action(action)}
	if _, known := catalogIndex[perm]; !known {
		return Permission{}, fmt.Errorf("unknown permission %q", raw)
	}
	return perm, nil
}

type PermissionSet map[Resource]map[Action]struct{}

func NewPermissionSet(perms ...Permission) PermissionSet {
	set := PermissionSet{}
	for _, p := range perms {
		set.Add(p)
	}
	return set
}

func (s PermissionSet) Add(p Permission) {
	actions, ok := s[p.Resource]
	if !ok {
		actions = map[Action]struct{}{}
		s[p.Resource] = actions
	}
	actions[p.Action] = struct{}{}
}

func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p.Resource][p.Action]
	return ok
}

// Raw renders the set in its stored shape: resource -> sorted "resource:action" keys.
func (s PermissionSet) Raw() map[string][]string {
	out := make(map[string][]string, len(s))
	for resource, actions := range s {
		keys := make([]string, 0, len(actions))
		for action := range actions {
			keys = append(keys, Permission{resource, action}.String())
		}
		sort.Strings(keys)
		out[string(resource)] = keys
	}
	return out
}

// ParsePermissions converts the stored role document into a typed set. Values
// may be full keys ("leave:apply") or bare actions ("apply") under their
// resource. Entries outside the catalog are reported, and the valid rest is kept.
func ParsePermissions(raw map[string][]string) (PermissionSet, error) {
	set := PermissionSet{}
	var bad []string
	for resource, values := range raw {
		for _, value := range values {
			key := value
			if !strings.Contains(value, ":") {
				key = resource + ":" + value
			}
			perm, err := ParsePermissionKey(key)
			if err != nil || string(perm.Resource) != resource {
				bad = append(bad, value)
				continue
			}
			set.Add(perm)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return set, fmt.Errorf("unknown permissions: %s", strings.Join(bad, ", "))
	}
	return set, nil
}
