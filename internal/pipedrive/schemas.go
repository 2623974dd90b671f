package pipedrive

import "github.com/nuxeo/mkto-pd-sync-app/internal/crm"

// Entity type names as used in API paths.
const (
	EntityPerson       = "person"
	EntityOrganization = "organization"
	EntityDeal         = "deal"
	EntityActivity     = "activity"
	EntityUser         = "user"
	EntityPipeline     = "pipeline"
	EntityStage        = "stage"
)

// Custom fields are addressed by hash keys in the Pipedrive API; the
// schemas pin the logical names the mapping tables use to those keys.
const (
	personMarketoIDKey       = "9a9714c55a34f5faf2956584040ca245b7ab641b"
	organizationMarketoIDKey = "dbb7e5a64b17fdbdd1ff02e9c74ccd2d37ab5b99"
	dealChampionKey          = "c2d39c0b8a4bb7e87fd7936de2e6d0d0f0fbba9e"
)

// IndustryOptions are the organization industry field options,
// option id -> label. Translation between the two systems goes through
// the mapping adapters.
var IndustryOptions = map[string]string{
	"27": "Aerospace & Defense",
	"28": "Automotive",
	"29": "Banking & Securities",
	"30": "Consumer Goods",
	"31": "Education",
	"32": "Energy & Utilities",
	"33": "Government",
	"34": "Healthcare & Life Sciences",
	"35": "Insurance",
	"36": "Manufacturing",
	"37": "Media & Entertainment",
	"38": "Retail",
	"39": "Technology",
	"40": "Telecommunications",
	"41": "Travel & Hospitality",
}

// DealTypeOptions are the deal type enum options, code -> label.
var DealTypeOptions = map[string]string{
	"new_business": "New Business",
	"upsell":       "Upsell",
	"renewal":      "Renewal",
}

var PersonSchema = crm.Schema{
	Entity:  EntityPerson,
	IDField: "id",
	Fields: []crm.FieldDef{
		{Name: "id", Key: "id"},
		{Name: "name", Key: "name"},
		{Name: "email", Key: "email"},
		{Name: "phone", Key: "phone"},
		{Name: "title", Key: "title"},
		{Name: "org_id", Key: "org_id", Kind: crm.Related, Related: EntityOrganization},
		{Name: "organization", Key: "org_id", Kind: crm.Related, Related: EntityOrganization},
		{Name: "owner_id", Key: "owner_id", Kind: crm.Related, Related: EntityUser},
		{Name: "owner", Key: "owner_id", Kind: crm.Related, Related: EntityUser},
		{Name: "inferred_country", Key: "inferred_country"},
		{Name: "lead_source", Key: "lead_source"},
		{Name: "lead_score", Key: "lead_score"},
		{Name: "created_date", Key: "created_date"},
		{Name: "date_sql", Key: "date_sql"},
		{Name: "state", Key: "state"},
		{Name: "city", Key: "city"},
		{Name: "marketoid", Key: personMarketoIDKey},
	},
}

var OrganizationSchema = crm.Schema{
	Entity:  EntityOrganization,
	IDField: "id",
	Fields: []crm.FieldDef{
		{Name: "id", Key: "id"},
		{Name: "name", Key: "name"},
		{Name: "industry", Key: "industry"},
		{Name: "people_count", Key: "people_count"},
		{Name: "owner_id", Key: "owner_id", Kind: crm.Related, Related: EntityUser},
		{Name: "marketoid", Key: organizationMarketoIDKey},
	},
}

var DealSchema = crm.Schema{
	Entity:  EntityDeal,
	IDField: "id",
	Fields: []crm.FieldDef{
		{Name: "id", Key: "id"},
		{Name: "title", Key: "title"},
		{Name: "type", Key: "type"},
		{Name: "deal_description", Key: "deal_description"},
		{Name: "last_activity_date", Key: "last_activity_date"},
		{Name: "status", Key: "status"},
		{Name: "value", Key: "value"},
		{Name: "currency", Key: "currency"},
		{Name: "close_time", Key: "close_time"},
		{Name: "expected_close_date", Key: "expected_close_date"},
		{Name: "stage", Key: "stage_id", Kind: crm.Related, Related: EntityStage},
		{Name: "pipeline_id", Key: "pipeline_id", Kind: crm.Related, Related: EntityPipeline},
		{Name: "contact_person", Key: "person_id", Kind: crm.Related, Related: EntityPerson},
		{Name: "champion", Key: dealChampionKey, Kind: crm.Related, Related: EntityPerson},
		{Name: "user_id", Key: "user_id", Kind: crm.Related, Related: EntityUser},
	},
}

var ActivitySchema = crm.Schema{
	Entity:  EntityActivity,
	IDField: "id",
	Fields: []crm.FieldDef{
		{Name: "id", Key: "id"},
		{Name: "user_id", Key: "user_id", Kind: crm.Related, Related: EntityUser},
		{Name: "person_id", Key: "person_id", Kind: crm.Related, Related: EntityPerson},
		{Name: "type", Key: "type"},
		{Name: "subject", Key: "subject"},
		{Name: "due_date", Key: "due_date"},
		{Name: "done", Key: "done"},
	},
}

var UserSchema = crm.Schema{
	Entity:  EntityUser,
	IDField: "id",
	Fields: []crm.FieldDef{
		{Name: "id", Key: "id"},
		{Name: "name", Key: "name"},
		{Name: "email", Key: "email"},
	},
}

var PipelineSchema = crm.Schema{
	Entity:  EntityPipeline,
	IDField: "id",
	Fields: []crm.FieldDef{
		{Name: "id", Key: "id"},
		{Name: "name", Key: "name"},
	},
}

var StageSchema = crm.Schema{
	Entity:  EntityStage,
	IDField: "id",
	Fields: []crm.FieldDef{
		{Name: "id", Key: "id"},
		{Name: "name", Key: "name"},
	},
}

var schemas = map[string]crm.Schema{
	EntityPerson:       PersonSchema,
	EntityOrganization: OrganizationSchema,
	EntityDeal:         DealSchema,
	EntityActivity:     ActivitySchema,
	EntityUser:         UserSchema,
	EntityPipeline:     PipelineSchema,
	EntityStage:        StageSchema,
}

// SchemaFor returns the static field table for an entity type.
func SchemaFor(entityType string) (crm.Schema, bool) {
	s, ok := schemas[entityType]
	return s, ok
}

// FieldKey returns the storage key behind a logical field name, which
// for custom fields is the API hash key.
func FieldKey(entityType, name string) string {
	s, ok := schemas[entityType]
	if !ok {
		return name
	}
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Key
		}
	}
	return name
}
