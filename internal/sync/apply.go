package sync

import (
	"log"

	"github.com/nuxeo/mkto-pd-sync-app/internal/crm"
	"github.com/nuxeo/mkto-pd-sync-app/internal/mapping"
)

// Apply walks a mapping table, resolves every target field from the
// source entity and applies the real changes to the target. It reports
// whether anything changed; an unchanged round-trip means no write is
// issued, which is what keeps the two systems from updating each other
// forever.
func Apply(source, target *crm.Entity, table mapping.Table, reg *mapping.Registry) bool {
	changed := false
	for _, entry := range table.Entries {
		changed = applyField(source, target, entry, reg) || changed
	}
	return changed
}

// applyField computes one new value and assigns it under the
// no-clobber rule: an empty value never overwrites a field the target
// already carries. Fields outside the target schema are assigned
// unconditionally.
func applyField(source, target *crm.Entity, entry mapping.Entry, reg *mapping.Registry) bool {
	newValue := mapping.Resolve(entry.Rule, source, reg)

	if !target.Has(entry.TargetField) {
		target.Set(entry.TargetField, newValue)
		return true
	}

	oldValue := target.Get(entry.TargetField)
	if crm.Equal(newValue, oldValue) || crm.IsEmpty(newValue) {
		return false
	}

	log.Printf("[sync] field=%s (old=%v, new=%v)", entry.TargetField, oldValue, newValue)
	target.Set(entry.TargetField, newValue)
	return true
}
