// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package perm implements the static role→capability table that gates
// dashboard surfaces. Two fixed roles exist: the couple role with full
// access and a restricted guest role. Unknown capabilities are denied.
package perm

// User roles.
const (
	RoleCouple = "pariskunta"
	RoleGuest  = "vieras"
)

// Capability names.
const (
	CapViewDashboard = "viewDashboard"
	CapManageGuests  = "manageGuests"
	CapManageBudget  = "manageBudget"
	CapManageNotes   = "manageNotes"
	CapManagePhotos  = "managePhotos"
	CapManageProgram = "manageProgram"
	CapEditSite      = "editSite"
	CapPublishSite   = "publishSite"
)

// capabilities is the fixed lookup table. Flags absent from a role's map
// are denied; there is no hierarchy or inheritance between roles.
var capabilities = map[string]map[string]bool{
	RoleCouple: {
		CapViewDashboard: true,
		CapManageGuests:  true,
		CapManageBudget:  true,
		CapManageNotes:   true,
		CapManagePhotos:  true,
		CapManageProgram: true,
		CapEditSite:      true,
		CapPublishSite:   true,
	},
	RoleGuest: {
		CapViewDashboard: true,
		CapManagePhotos:  true,
	},
}

// IsValidRole reports whether role names one of the fixed roles.
func IsValidRole(role string) bool {
	_, ok := capabilities[role]
	return ok
}

// HasPermission reports whether the role grants the capability.
// Deny-by-default: unknown roles and unknown capability names are false.
func HasPermission(role, capability string) bool {
	return capabilities[role][capability]
}

// Capabilities returns a copy of the role's capability table (granted
// flags only). Unknown roles get an empty map.
func Capabilities(role string) map[string]bool {
	out := make(map[string]bool, len(capabilities[role]))
	for name, granted := range capabilities[role] {
		if granted {
			out[name] = true
		}
	}
	return out
}
