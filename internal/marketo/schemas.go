package marketo

import "github.com/nuxeo/mkto-pd-sync-app/internal/crm"

// Entity type names as used in API paths.
const (
	EntityLead        = "lead"
	EntityCompany     = "company"
	EntityOpportunity = "opportunity"
	EntityRole        = "opportunities/role"
)

// Marketo field names and storage keys coincide, so schemas only list
// them once.
func plainFields(names ...string) []crm.FieldDef {
	fields := make([]crm.FieldDef, 0, len(names))
	for _, name := range names {
		fields = append(fields, crm.FieldDef{Name: name, Key: name})
	}
	return fields
}

var LeadSchema = crm.Schema{
	Entity:  EntityLead,
	IDField: "id",
	Fields: plainFields(
		"id",
		"firstName",
		"lastName",
		"email",
		"company",
		"title",
		"phone",
		"mainPhone",
		"street",
		"city",
		"state",
		"postalCode",
		"country",
		"inferredCountry",
		"inferredCity",
		"inferredStateRegion",
		"website",
		"industry",
		"annualRevenue",
		"numberOfEmployees",
		"leadSource",
		"leadScore",
		"leadStatus",
		"createdAt",
		"mKTODateSQL",
		"conversicaLeadOwnerEmail",
		"conversicaLeadOwnerFirstName",
		"conversicaLeadOwnerLastName",
		"pipedriveId",
		"externalCompanyId",
		"toDelete",
	),
}

var CompanySchema = crm.Schema{
	Entity:  EntityCompany,
	IDField: "id",
	Fields: plainFields(
		"id",
		"externalCompanyId",
		"company",
		"billingStreet",
		"billingCity",
		"billingState",
		"billingPostalCode",
		"billingCountry",
		"mainPhone",
		"industry",
		"annualRevenue",
		"numberOfEmployees",
		"website",
	),
}

var OpportunitySchema = crm.Schema{
	Entity:  EntityOpportunity,
	IDField: "marketoGUID",
	Fields: plainFields(
		"marketoGUID",
		"externalOpportunityId",
		"name",
		"type",
		"description",
		"lastActivityDate",
		"isClosed",
		"isWon",
		"amount",
		"closeDate",
		"stage",
		"fiscalQuarter",
		"fiscalYear",
	),
}

var RoleSchema = crm.Schema{
	Entity:  EntityRole,
	IDField: "marketoGUID",
	Fields: plainFields(
		"marketoGUID",
		"externalOpportunityId",
		"leadId",
		"role",
		"isPrimary",
	),
}

var schemas = map[string]crm.Schema{
	EntityLead:        LeadSchema,
	EntityCompany:     CompanySchema,
	EntityOpportunity: OpportunitySchema,
	EntityRole:        RoleSchema,
}

// SchemaFor returns the static field table for an entity type.
func SchemaFor(entityType string) (crm.Schema, bool) {
	s, ok := schemas[entityType]
	return s, ok
}

func fieldKeys(entityType string) []string {
	s, ok := schemas[entityType]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}
