package mapping

import "fmt"

// Declarative mapping tables, one per entity pair and direction. A
// table maps target field names to the rule computing their value from
// the source entity. Tables are immutable at run time and validated
// against the registry at startup.

// PersonFromLead sends a Marketo lead to a Pipedrive person.
var PersonFromLead = Table{
	Name: "person_from_lead",
	Entries: []Entry{
		{TargetField: "name", Rule: Rule{Fields: []string{"firstName", "lastName"}, Mode: ModeJoin}},
		{TargetField: "email", Rule: Rule{Fields: []string{"email"}}},
		{TargetField: "org_id", Rule: Rule{Transform: "company_name_to_org_id"}},
		{TargetField: "title", Rule: Rule{Fields: []string{"title"}}},
		{TargetField: "phone", Rule: Rule{Fields: []string{"phone"}}},
		{TargetField: "inferred_country", Rule: Rule{Fields: []string{"inferredCountry", "country"}, Mode: ModeChoose, Pre: "country_iso_to_name"}},
		{TargetField: "lead_source", Rule: Rule{Fields: []string{"leadSource"}}},
		{TargetField: "owner_id", Rule: Rule{Fields: []string{"conversicaLeadOwnerFirstName", "conversicaLeadOwnerLastName"}, Mode: ModeJoin, Post: "user_name_to_user_id_or_default"}},
		{TargetField: "created_date", Rule: Rule{Fields: []string{"createdAt"}, Post: "datetime_to_date"}},
		{TargetField: "marketoid", Rule: Rule{Fields: []string{"id"}}},
		{TargetField: "state", Rule: Rule{Fields: []string{"inferredStateRegion", "state"}, Mode: ModeChoose}},
		{TargetField: "city", Rule: Rule{Fields: []string{"inferredCity", "city"}, Mode: ModeChoose}},
		{TargetField: "lead_score", Rule: Rule{Fields: []string{"leadScore"}}},
		{TargetField: "date_sql", Rule: Rule{Fields: []string{"mKTODateSQL"}, Post: "datetime_to_date"}},
	},
}

// OrganizationFromCompany sends a Marketo company to a Pipedrive
// organization.
var OrganizationFromCompany = Table{
	Name: "organization_from_company",
	Entries: []Entry{
		{TargetField: "name", Rule: Rule{Fields: []string{"company"}}},
		{TargetField: "industry", Rule: Rule{Fields: []string{"industry"}, Post: "industry_name_to_code"}},
		{TargetField: "people_count", Rule: Rule{Fields: []string{"numberOfEmployees"}}},
		{TargetField: "owner_id", Rule: Rule{Transform: "default_owner_id"}},
	},
}

// LeadFromPerson sends a Pipedrive person to a Marketo lead.
var LeadFromPerson = Table{
	Name: "lead_from_person",
	Entries: []Entry{
		{TargetField: "firstName", Rule: Rule{Fields: []string{"name"}, Post: "split_name_first"}},
		{TargetField: "lastName", Rule: Rule{Fields: []string{"name"}, Post: "split_name_last"}},
		{TargetField: "email", Rule: Rule{Fields: []string{"email"}}},
		{TargetField: "externalCompanyId", Rule: Rule{Fields: []string{"organization"}, Post: "organization_to_external_id"}},
		{TargetField: "title", Rule: Rule{Fields: []string{"title"}}},
		{TargetField: "phone", Rule: Rule{Fields: []string{"phone"}}},
		{TargetField: "leadSource", Rule: Rule{Fields: []string{"lead_source"}}},
		{TargetField: "conversicaLeadOwnerEmail", Rule: Rule{Fields: []string{"owner"}, Pre: "user_to_email"}},
		{TargetField: "conversicaLeadOwnerFirstName", Rule: Rule{Fields: []string{"owner"}, Pre: "user_to_first_name"}},
		{TargetField: "conversicaLeadOwnerLastName", Rule: Rule{Fields: []string{"owner"}, Pre: "user_to_last_name"}},
		{TargetField: "pipedriveId", Rule: Rule{Fields: []string{"id"}}},
	},
}

// CompanyFromOrganization sends a Pipedrive organization to a Marketo
// company.
var CompanyFromOrganization = Table{
	Name: "company_from_organization",
	Entries: []Entry{
		{TargetField: "company", Rule: Rule{Fields: []string{"name"}}},
		{TargetField: "industry", Rule: Rule{Fields: []string{"industry"}, Post: "industry_code_to_name"}},
		{TargetField: "numberOfEmployees", Rule: Rule{Fields: []string{"people_count"}}},
	},
}

// OpportunityFromDeal sends a Pipedrive deal to a Marketo opportunity.
var OpportunityFromDeal = Table{
	Name: "opportunity_from_deal",
	Entries: []Entry{
		{TargetField: "name", Rule: Rule{Fields: []string{"title"}}},
		{TargetField: "type", Rule: Rule{Fields: []string{"type"}, Post: "deal_type_code_to_name"}},
		{TargetField: "description", Rule: Rule{Fields: []string{"deal_description"}}},
		{TargetField: "lastActivityDate", Rule: Rule{Fields: []string{"last_activity_date"}}},
		{TargetField: "isClosed", Rule: Rule{Fields: []string{"status"}, Post: "is_closed"}},
		{TargetField: "isWon", Rule: Rule{Fields: []string{"status"}, Post: "is_won"}},
		{TargetField: "amount", Rule: Rule{Fields: []string{"value"}, Post: "number_to_float"}},
		{TargetField: "closeDate", Rule: Rule{Fields: []string{"close_time", "expected_close_date"}, Mode: ModeChoose, Post: "datetime_to_date"}},
		{TargetField: "stage", Rule: Rule{Fields: []string{"stage"}, Post: "stage_to_name"}},
		{TargetField: "fiscalQuarter", Rule: Rule{Fields: []string{"close_time", "expected_close_date"}, Mode: ModeChoose, Post: "datetime_to_quarter"}},
		{TargetField: "fiscalYear", Rule: Rule{Fields: []string{"close_time", "expected_close_date"}, Mode: ModeChoose, Post: "datetime_to_year"}},
	},
}

// ActivityFromLead creates a follow-up activity in Pipedrive for a
// lead's owner.
var ActivityFromLead = Table{
	Name: "activity_from_lead",
	Entries: []Entry{
		{TargetField: "user_id", Rule: Rule{Fields: []string{"conversicaLeadOwnerFirstName", "conversicaLeadOwnerLastName"}, Mode: ModeJoin, Post: "user_name_to_user_id"}},
		{TargetField: "person_id", Rule: Rule{Fields: []string{"pipedriveId"}}},
		{TargetField: "type", Rule: Rule{Transform: "call_type"}},
		{TargetField: "subject", Rule: Rule{Fields: []string{"firstName", "lastName"}, Mode: ModeJoin, Post: "custom_subject"}},
		{TargetField: "due_date", Rule: Rule{Transform: "today_date"}},
	},
}

// All returns every mapping table.
func All() []Table {
	return []Table{
		PersonFromLead,
		OrganizationFromCompany,
		LeadFromPerson,
		CompanyFromOrganization,
		OpportunityFromDeal,
		ActivityFromLead,
	}
}

// ValidateAll fails fast when any table references an unknown adapter
// or is structurally malformed.
func ValidateAll(reg *Registry) error {
	for _, table := range All() {
		if err := table.Validate(reg); err != nil {
			return fmt.Errorf("invalid mapping table: %w", err)
		}
	}
	return nil
}
