package dbpair

import "strings"

var protectedPrefixes = []string{"system.", "admin.", "config."}

var protectedSuffixes = []string{
	".system.roles",
	".system.users",
	".system.version",
	".system.buckets",
	".system.profile",
	".system.js",
	".system.views",
}

// IsProtectedEntity reports whether name must never be dropped by
// ClearDatabase, regardless of the allow-list.
func IsProtectedEntity(name string) bool {
	for _, p := range protectedPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	for _, s := range protectedSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// ClearPlan is the result of applying the entity-clearing safety rules to a
// requested allow-list: which entities are safe to drop, and which were
// skipped (and why), so the caller can log every decision.
type ClearPlan struct {
	ToDrop  []string
	Skipped []SkipDecision
}

// SkipDecision records one entity that was excluded from a clear operation.
type SkipDecision struct {
	Entity string
	Reason string
}

// PlanClear filters entityNames down to the set that may actually be
// dropped. Only names in entityNames are considered (the allow-list);
// names matching a protected prefix/suffix are always skipped.
func PlanClear(entityNames []string) ClearPlan {
	plan := ClearPlan{}
	for _, name := range entityNames {
		if IsProtectedEntity(name) {
			plan.Skipped = append(plan.Skipped, SkipDecision{
				Entity: name,
				Reason: "protected system/admin/config entity",
			})
			continue
		}
		plan.ToDrop = append(plan.ToDrop, name)
	}
	return plan
}
