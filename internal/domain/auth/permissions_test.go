package auth

import "testing"

func TestDefaultRolePermissionsWithinCatalog(t *testing.T) {
	for role, perms := range DefaultRolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			if _, ok := catalogIndex[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
		}
	}
}

func TestCatalogUnique(t *testing.T) {
	seen := map[Permission]struct{}{}
	for _, perm := range Catalog {
		if _, ok := seen[perm]; ok {
			t.Fatalf("duplicate permission %s", perm)
		}
		seen[perm] = struct{}{}
	}
}

func TestParsePermissionKey(t *testing.T) {
	cases := []struct {
		raw     string
		want    Permission
		wantErr bool
	}{
		{raw: "leave:apply", want: PermLeaveApply},
		{raw: " leave:approve ", want: PermLeaveApprove},
		{raw: "leave", wantErr: true},
		{raw: ":apply", wantErr: true},
		{raw: "leave:fly", wantErr: true},
		{raw: "mail:apply", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParsePermissionKey(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestParsePermissions(t *testing.T) {
	set, err := ParsePermissions(map[string][]string{
		"leave": {"leave:apply", "recommend", "leave:bogus"},
		"staff": {"leave:approve"},
	})
	if err == nil {
		t.Fatal("expected error for unknown entries")
	}
	if !set.Has(PermLeaveApply) || !set.Has(PermLeaveRecommend) {
		t.Fatalf("expected valid entries kept, got %v", set.Raw())
	}
	if set.Has(PermLeaveApprove) {
		t.Fatal("permission filed under the wrong resource must be ignored")
	}
}

func TestPermissionSetRaw(t *testing.T) {
	set := NewPermissionSet(PermLeaveApprove, PermLeaveApply, PermStaffView)
	raw := set.Raw()
	if got := raw["leave"]; len(got) != 2 || got[0] != "leave:apply" || got[1] != "leave:approve" {
		t.Fatalf("unexpected leave entries: %v", got)
	}

	back, err := ParsePermissions(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.Has(PermStaffView) || len(back) != 2 {
		t.Fatalf("unexpected parsed set: %v", back)
	}
}

func TestRoleBinding(t *testing.T) {
	hod := RoleBinding{RoleName: RoleHeadOfDepartment}
	if !hod.IsHeadOfDepartment() {
		t.Fatal("expected head of department")
	}
	if (RoleBinding{RoleName: RoleHOD}).IsHeadOfDepartment() {
		t.Fatal("HOD is not the escalation role name")
	}
	if (RoleBinding{RoleName: "head of department"}).IsHeadOfDepartment() {
		t.Fatal("match must be exact")
	}
}

func TestParseStaffType(t *testing.T) {
	if ParseStaffType("field") != StaffField {
		t.Fatal("expected field")
	}
	if ParseStaffType("") != StaffOffice || ParseStaffType("Office") != StaffOffice {
		t.Fatal("expected office default")
	}
}
