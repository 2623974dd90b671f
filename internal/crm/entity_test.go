package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{
	Entity:  "contact",
	IDField: "id",
	Fields: []FieldDef{
		{Name: "id", Key: "id"},
		{Name: "name", Key: "name"},
		{Name: "email", Key: "email"},
		{Name: "crossref", Key: "f9e8d7c6"},
		{Name: "status", Key: "status_code", Kind: Enum, Options: map[string]string{
			"1": "Open",
			"2": "Closed",
		}},
		{Name: "owner", Key: "owner_id", Kind: Related, Related: "user"},
	},
}

func TestEntityInitFiltersUnknownKeys(t *testing.T) {
	e := NewEntity(testSchema)
	e.Init(Record{
		"id":         7,
		"name":       "Jane Doe",
		"add_time":   "2016-01-01",
		"visible_to": 3,
	})

	assert.Equal(t, 7, e.ID())
	assert.Equal(t, "Jane Doe", e.Get("name"))
	assert.Nil(t, e.Get("add_time"))
	assert.Nil(t, e.Get("visible_to"))
}

func TestEntityGetRemapsStorageKey(t *testing.T) {
	e := NewEntity(testSchema)
	e.Init(Record{"f9e8d7c6": 42, "owner_id": 9})

	assert.Equal(t, 42, e.Get("crossref"))
	assert.Equal(t, 9, e.Get("owner"))
}

func TestEntitySetStoresUnderStorageKey(t *testing.T) {
	e := NewEntity(testSchema)
	e.Set("crossref", 42)

	payload := e.Payload()
	assert.Equal(t, 42, payload["f9e8d7c6"])
	_, present := payload["crossref"]
	assert.False(t, present)
}

func TestEntityGetDecodesEnum(t *testing.T) {
	e := NewEntity(testSchema)
	e.Init(Record{"status_code": "2"})

	assert.Equal(t, "Closed", e.Get("status"))

	e.Set("status", "99")
	assert.Equal(t, "", e.Get("status"))
}

func TestEntityGetFlattensComplexValues(t *testing.T) {
	e := NewEntity(testSchema)
	e.Init(Record{
		"email":    []any{map[string]any{"value": "jane@acme.com", "primary": true}},
		"owner_id": map[string]any{"id": 9, "name": "Owner"},
	})

	assert.Equal(t, "jane@acme.com", e.Get("email"))
	assert.Equal(t, 9, e.Get("owner"))
}

func TestEntityIDEmptyWhenUnset(t *testing.T) {
	e := NewEntity(testSchema)
	require.Nil(t, e.ID())

	e.SetID(7)
	assert.Equal(t, 7, e.ID())
}

func TestEntityHas(t *testing.T) {
	e := NewEntity(testSchema)

	assert.True(t, e.Has("email"), "schema fields are always present")
	assert.False(t, e.Has("externalId"))

	e.Set("externalId", "x1")
	assert.True(t, e.Has("externalId"))
}
