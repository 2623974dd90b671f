package marketo

import "github.com/nuxeo/mkto-pd-sync-app/internal/crm"

// ComputeExternalID derives the deterministic external id stored on a
// Marketo entity for its Pipedrive counterpart, e.g. "pd-organization-10".
func ComputeExternalID(entityType string, id any) string {
	return ComputeExternalIDWithPrefix(entityType, id, "pd")
}

func ComputeExternalIDWithPrefix(entityType string, id any, prefix string) string {
	return prefix + "-" + entityType + "-" + crm.String(id)
}
