package crm

// Record is a raw entity payload as exchanged with a remote CRM API,
// keyed by storage key.
type Record map[string]any

// Client is the narrow contract the sync engine consumes. Both CRM
// clients implement it; everything else about their REST surfaces
// (auth, retry, URL building) stays behind it.
type Client interface {
	// GetData loads one record by the given id field. A "not found"
	// answer from the remote API returns (nil, nil), not an error.
	GetData(entityType string, id any, idField string) (Record, error)

	// PutData creates or updates a record and returns at least the
	// identity field(s) assigned by the remote system.
	PutData(entityType string, data Record, id any) (Record, error)

	// Delete removes a record and returns it, or nil when the remote
	// reports nothing deleted.
	Delete(entityType string, id any) (Record, error)
}
