package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nuxeo/mkto-pd-sync-app/internal/crm"
	"github.com/nuxeo/mkto-pd-sync-app/internal/mapping"
	"github.com/nuxeo/mkto-pd-sync-app/internal/marketo"
	"github.com/nuxeo/mkto-pd-sync-app/internal/pipedrive"
)

var nameEmailTable = mapping.Table{
	Name: "name_email",
	Entries: []mapping.Entry{
		{TargetField: "name", Rule: mapping.Rule{Fields: []string{"firstName", "lastName"}, Mode: mapping.ModeJoin}},
		{TargetField: "email", Rule: mapping.Rule{Fields: []string{"email"}}},
	},
}

func leadEntity(data crm.Record) *crm.Entity {
	e := crm.NewEntity(marketo.LeadSchema)
	e.Init(data)
	return e
}

func personEntity(data crm.Record) *crm.Entity {
	e := crm.NewEntity(pipedrive.PersonSchema)
	e.Init(data)
	return e
}

func TestApplyFillsEmptyTarget(t *testing.T) {
	reg := mapping.NewRegistry(nil)
	lead := leadEntity(crm.Record{"firstName": "Jane", "lastName": "Doe", "email": "jane@acme.com"})
	person := personEntity(crm.Record{})

	changed := Apply(lead, person, nameEmailTable, reg)

	assert.True(t, changed)
	assert.Equal(t, "Jane Doe", person.Get("name"))
	assert.Equal(t, "jane@acme.com", person.Get("email"))
}

func TestApplyUnchangedRoundTrip(t *testing.T) {
	reg := mapping.NewRegistry(nil)
	lead := leadEntity(crm.Record{"firstName": "Jane", "lastName": "Doe", "email": "jane@acme.com"})
	person := personEntity(crm.Record{"name": "Jane Doe", "email": "jane@acme.com"})

	changed := Apply(lead, person, nameEmailTable, reg)

	assert.False(t, changed, "identical values must not count as a change")
}

func TestApplyEmptyNeverOverwrites(t *testing.T) {
	reg := mapping.NewRegistry(nil)
	lead := leadEntity(crm.Record{"firstName": "Jane", "lastName": "Doe"})
	person := personEntity(crm.Record{"name": "Jane Doe", "email": "jane@acme.com"})

	changed := Apply(lead, person, nameEmailTable, reg)

	assert.False(t, changed)
	assert.Equal(t, "jane@acme.com", person.Get("email"), "an empty value must not clobber target data")
}

func TestApplyOverwritesDifferingValue(t *testing.T) {
	reg := mapping.NewRegistry(nil)
	lead := leadEntity(crm.Record{"firstName": "Jane", "lastName": "Doe", "email": "jane@nuxeo.com"})
	person := personEntity(crm.Record{"name": "Jane Doe", "email": "jane@acme.com"})

	changed := Apply(lead, person, nameEmailTable, reg)

	assert.True(t, changed)
	assert.Equal(t, "jane@nuxeo.com", person.Get("email"))
}

func TestApplyAssignsUnknownFieldsUnconditionally(t *testing.T) {
	reg := mapping.NewRegistry(nil)
	table := mapping.Table{
		Name: "unknown_field",
		Entries: []mapping.Entry{
			{TargetField: "notInSchema", Rule: mapping.Rule{Fields: []string{"email"}}},
		},
	}
	lead := leadEntity(crm.Record{})
	person := personEntity(crm.Record{})

	changed := Apply(lead, person, table, reg)

	assert.True(t, changed, "fields outside the schema are assigned even when empty")
}
