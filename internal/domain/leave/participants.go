package leave

import (
	"strings"

	"leaveflow/internal/domain/auth"
)

var (
	actingExcludedRoles = roleSet(auth.RoleDivisionCC, auth.RoleDivisionHead, auth.RoleHOD, auth.RoleHeadOfDepartment)
	recommenderRoles    = roleSet(auth.RoleDivisionCC, auth.RoleDivisionHead, auth.RoleADS)
	approverRoles       = roleSet(auth.RoleDivisionHead, auth.RoleADS, auth.RoleHOD, auth.RoleHeadOfDepartment)
)

func roleSet(names ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

// Participants are the people a requester may pick, plus the reviewer
// assigned automatically.
type Participants struct {
	ActingOfficers  []auth.Member `json:"actingOfficers"`
	Recommenders    []auth.Member `json:"recommenders"`
	Approvers       []auth.Member `json:"approvers"`
	SubjectInCharge *auth.Member  `json:"subjectInCharge,omitempty"`
}

// ResolveParticipants builds the candidate lists for requester from the
// current directory.
func ResolveParticipants(requester auth.Member, directory []auth.Member) Participants {
	p := Participants{
		ActingOfficers: []auth.Member{},
		Recommenders:   []auth.Member{},
		Approvers:      []auth.Member{},
	}
	target := SubjectInChargeRole(requester)

	for _, m := range directory {
		if m.DivisionID == requester.DivisionID && m.ID != requester.ID {
			if _, senior := actingExcludedRoles[m.RoleName]; !senior {
				p.ActingOfficers = append(p.ActingOfficers, m)
			}
		}
		if _, ok := recommenderRoles[m.RoleName]; ok {
			p.Recommenders = append(p.Recommenders, m)
		}
		if _, ok := approverRoles[m.RoleName]; ok {
			p.Approvers = append(p.Approvers, m)
		}
		if p.SubjectInCharge == nil && m.RoleName == target {
			found := m
			p.SubjectInCharge = &found
		}
	}
	return p
}

// SubjectInChargeRole picks the reviewing role from the requester's staff type
// and designation.
func SubjectInChargeRole(requester auth.Member) string {
	if requester.StaffType == auth.StaffField {
		return auth.RoleSubjectField
	}
	if strings.Contains(strings.ToLower(requester.Designation), "do") {
		return auth.RoleSubjectDevOfficer
	}
	return auth.RoleSubjectOffice
}

func containsMember(list []auth.Member, id string) bool {
	for _, m := range list {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Validate checks the chosen participants against the candidate lists.
func (p Participants) Validate(actingID, recommenderID, approverID string) error {
	var issues []Issue
	check := func(field, id string, list []auth.Member, label string) {
		switch {
		case strings.TrimSpace(id) == "":
			issues = append(issues, Issue{Field: field, Message: label + " is required"})
		case !containsMember(list, id):
			issues = append(issues, Issue{Field: field, Message: label + " is not eligible"})
		}
	}
	check("actingOfficerId", actingID, p.ActingOfficers, "acting officer")
	check("recommenderId", recommenderID, p.Recommenders, "recommending officer")
	check("approverId", approverID, p.Approvers, "approving officer")
	if p.SubjectInCharge == nil {
		issues = append(issues, Issue{Field: "subjectInChargeId", Message: "no leave subject officer could be assigned"})
	}
	if len(issues) > 0 {
		return validationError(issues...)
	}
	return nil
}
