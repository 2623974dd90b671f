package sync

import (
	"fmt"
	"log"

	"github.com/nuxeo/mkto-pd-sync-app/internal/crm"
	"github.com/nuxeo/mkto-pd-sync-app/internal/mapping"
	"github.com/nuxeo/mkto-pd-sync-app/internal/marketo"
	"github.com/nuxeo/mkto-pd-sync-app/internal/pipedrive"
)

// Task names, as addressed by the HTTP surface and the queue.
const (
	TaskLeadToPerson          = "lead_to_person"
	TaskPersonToLead          = "person_to_lead"
	TaskCompanyToOrganization = "company_to_organization"
	TaskOrganizationToCompany = "organization_to_company"
	TaskDealToOpportunity     = "deal_to_opportunity"
	TaskLeadToActivity        = "lead_to_activity"
	TaskDeletePerson          = "delete_person"
	TaskFlagLeadForDeletion   = "flag_lead_for_deletion"
)

// SyncLeadToPerson creates or updates the Pipedrive person behind a
// Marketo lead. An unchanged person is not written, and the person id
// is written back onto the lead when missing or stale.
func (s *Service) SyncLeadToPerson(leadID any) (Result, error) {
	log.Printf("[sync] Fetching lead data from Marketo with id=%v", leadID)
	lead, found, err := loadEntity(s.marketo, marketo.LeadSchema, leadID, "id")
	if err != nil {
		return Result{}, err
	}
	if !found {
		return s.notFound(TaskLeadToPerson, leadID, "No lead found in Marketo with id=%v", leadID), nil
	}

	person, found, err := loadEntity(s.pipedrive, pipedrive.PersonSchema, lead.Get("pipedriveId"), "id")
	if err != nil {
		return Result{}, err
	}
	status := StatusCreated
	if found {
		status = StatusUpdated
	}

	changed := Apply(lead, person, mapping.PersonFromLead, s.registry)
	if found && !changed {
		logNothingToDo("Pipedrive", person)
		res := Result{Status: StatusSkipped, ID: person.ID()}
		s.record(TaskLeadToPerson, leadID, res)
		return res, nil
	}

	log.Printf("[sync] Sending lead data with id=%v to Pipedrive for %s", leadID, person)
	if err := persist(s.pipedrive, person); err != nil {
		return Result{}, err
	}

	if !crm.Equal(lead.Get("pipedriveId"), person.ID()) {
		log.Printf("[sync] Updating pipedrive_id=%v in Marketo (old=%v)", person.ID(), lead.Get("pipedriveId"))
		lead.Set("pipedriveId", person.ID())
		if err := persist(s.marketo, lead); err != nil {
			return Result{}, err
		}
	}

	res := Result{Status: status, ID: person.ID()}
	s.record(TaskLeadToPerson, leadID, res)
	return res, nil
}

// SyncPersonToLead creates or updates the Marketo lead behind a
// Pipedrive person, then writes the lead id back onto the person when
// missing or stale.
func (s *Service) SyncPersonToLead(personID any) (Result, error) {
	log.Printf("[sync] Fetching person data from Pipedrive with id=%v", personID)
	person, found, err := loadEntity(s.pipedrive, pipedrive.PersonSchema, personID, "id")
	if err != nil {
		return Result{}, err
	}
	if !found {
		return s.notFound(TaskPersonToLead, personID, "No person found in Pipedrive with id=%v", personID), nil
	}

	lead, found, err := loadEntity(s.marketo, marketo.LeadSchema, person.Get("marketoid"), "id")
	if err != nil {
		return Result{}, err
	}
	status := StatusCreated
	if found {
		status = StatusUpdated
	}

	changed := Apply(person, lead, mapping.LeadFromPerson, s.registry)
	if found && !changed {
		logNothingToDo("Marketo", lead)
		res := Result{Status: StatusSkipped, ID: lead.ID()}
		s.record(TaskPersonToLead, personID, res)
		return res, nil
	}

	log.Printf("[sync] Sending person data with id=%v to Marketo for %s", personID, lead)
	if err := persist(s.marketo, lead); err != nil {
		return Result{}, err
	}

	if !crm.Equal(person.Get("marketoid"), lead.ID()) {
		log.Printf("[sync] Updating marketo_id=%v in Pipedrive (old=%v)", lead.ID(), person.Get("marketoid"))
		person.Set("marketoid", lead.ID())
		if err := persist(s.pipedrive, person); err != nil {
			return Result{}, err
		}
	}

	res := Result{Status: status, ID: lead.ID()}
	s.record(TaskPersonToLead, personID, res)
	return res, nil
}

// SyncCompanyToOrganization creates or updates the Pipedrive
// organization behind a Marketo company, addressed by its external
// company id. The organization is located by cross-reference id first,
// then by name, finally by email domain.
func (s *Service) SyncCompanyToOrganization(companyExternalID any) (Result, error) {
	log.Printf("[sync] Fetching company data from Marketo with external_id=%v", companyExternalID)
	company, found, err := loadEntity(s.marketo, marketo.CompanySchema, companyExternalID, "externalCompanyId")
	if err != nil {
		return Result{}, err
	}
	if !found {
		return s.notFound(TaskCompanyToOrganization, companyExternalID,
			"No company found in Marketo with external_id=%v", companyExternalID), nil
	}

	organization, found, err := s.locateOrganization(company)
	if err != nil {
		return Result{}, err
	}
	status := StatusCreated
	if found {
		status = StatusUpdated
	}

	changed := Apply(company, organization, mapping.OrganizationFromCompany, s.registry)
	if found && !changed {
		logNothingToDo("Pipedrive", organization)
		res := Result{Status: StatusSkipped, ID: organization.ID()}
		s.record(TaskCompanyToOrganization, companyExternalID, res)
		return res, nil
	}

	log.Printf("[sync] Sending company data with external_id=%v to Pipedrive for %s", companyExternalID, organization)
	if err := persist(s.pipedrive, organization); err != nil {
		return Result{}, err
	}

	res := Result{Status: status, ID: organization.ID()}
	s.record(TaskCompanyToOrganization, companyExternalID, res)
	return res, nil
}

func (s *Service) locateOrganization(company *crm.Entity) (*crm.Entity, bool, error) {
	marketoIDKey := pipedrive.FieldKey(pipedrive.EntityOrganization, "marketoid")

	log.Printf("[sync] Trying to fetch organization data from Pipedrive with marketo_id=%v", company.ID())
	organization, found, err := loadEntity(s.pipedrive, pipedrive.OrganizationSchema, company.ID(), marketoIDKey)
	if err != nil || found {
		return organization, found, err
	}

	log.Printf("[sync] Trying to fetch organization data from Pipedrive with name=%v", company.Get("company"))
	organization, found, err = loadEntity(s.pipedrive, pipedrive.OrganizationSchema, company.Get("company"), "name")
	if err != nil || found {
		return organization, found, err
	}

	log.Printf("[sync] Trying to fetch organization data from Pipedrive with email_domain=%v", company.Get("website"))
	return loadEntity(s.pipedrive, pipedrive.OrganizationSchema, company.Get("website"), "email_domain")
}

// SyncOrganizationToCompany creates or updates the Marketo company
// behind a Pipedrive organization. The company is located by
// cross-reference id first, then by the deterministic external id,
// finally by name. A created company gets the deterministic external
// id, and the company id is written back onto the organization when
// missing or stale.
func (s *Service) SyncOrganizationToCompany(organizationID any) (Result, error) {
	log.Printf("[sync] Fetching organization data from Pipedrive with id=%v", organizationID)
	organization, found, err := loadEntity(s.pipedrive, pipedrive.OrganizationSchema, organizationID, "id")
	if err != nil {
		return Result{}, err
	}
	if !found {
		return s.notFound(TaskOrganizationToCompany, organizationID,
			"No organization found in Pipedrive with id=%v", organizationID), nil
	}

	company, found, err := s.locateCompany(organization)
	if err != nil {
		return Result{}, err
	}

	changed := Apply(organization, company, mapping.CompanyFromOrganization, s.registry)
	status := StatusUpdated
	if !found {
		status = StatusCreated
		company.Set("externalCompanyId", marketo.ComputeExternalID(pipedrive.EntityOrganization, organization.ID()))
		changed = true
	}

	if found && !changed {
		logNothingToDo("Marketo", company)
		res := Result{Status: StatusSkipped, ID: company.ID(), ExternalID: crm.String(company.Get("externalCompanyId"))}
		s.record(TaskOrganizationToCompany, organizationID, res)
		return res, nil
	}

	log.Printf("[sync] Sending organization data with id=%v to Marketo for %s", organizationID, company)
	if err := persist(s.marketo, company); err != nil {
		return Result{}, err
	}

	if !crm.Equal(organization.Get("marketoid"), company.ID()) {
		log.Printf("[sync] Updating marketo_id=%v in Pipedrive (old=%v)", company.ID(), organization.Get("marketoid"))
		organization.Set("marketoid", company.ID())
		if err := persist(s.pipedrive, organization); err != nil {
			return Result{}, err
		}
	}

	res := Result{Status: status, ID: company.ID(), ExternalID: crm.String(company.Get("externalCompanyId"))}
	s.record(TaskOrganizationToCompany, organizationID, res)
	return res, nil
}

func (s *Service) locateCompany(organization *crm.Entity) (*crm.Entity, bool, error) {
	log.Printf("[sync] Trying to fetch company data from Marketo with id=%v", organization.Get("marketoid"))
	company, found, err := loadEntity(s.marketo, marketo.CompanySchema, organization.Get("marketoid"), "id")
	if err != nil || found {
		return company, found, err
	}

	externalID := marketo.ComputeExternalID(pipedrive.EntityOrganization, organization.ID())
	log.Printf("[sync] Trying to fetch company data from Marketo with external_id=%s", externalID)
	company, found, err = loadEntity(s.marketo, marketo.CompanySchema, externalID, "externalCompanyId")
	if err != nil || found {
		return company, found, err
	}

	log.Printf("[sync] Trying to fetch company data from Marketo with name=%v", organization.Get("name"))
	return loadEntity(s.marketo, marketo.CompanySchema, organization.Get("name"), "company")
}

// SyncDealToOpportunity creates or updates the Marketo opportunity
// behind a Pipedrive deal, restricted to the configured pipeline. When
// the deal's contact person is known in Marketo, the opportunity role
// is upserted alongside; its dedupe key is the external opportunity
// id, the lead id and the role label, so roles are never located
// beforehand.
func (s *Service) SyncDealToOpportunity(dealID any) (Result, error) {
	log.Printf("[sync] Fetching deal data from Pipedrive with id=%v", dealID)
	deal, found, err := loadEntity(s.pipedrive, pipedrive.DealSchema, dealID, "id")
	if err != nil {
		return Result{}, err
	}
	if !found {
		return s.notFound(TaskDealToOpportunity, dealID, "No deal found in Pipedrive with id=%v", dealID), nil
	}

	pipelineName, err := s.pipelineNameOf(deal)
	if err != nil {
		return Result{}, err
	}
	if pipelineName != s.pipelineName {
		message := fmt.Sprintf("Deal synchronization with id=%v not enabled for pipeline=%s", dealID, pipelineName)
		log.Printf("[sync] %s", message)
		res := Result{Status: StatusSkipped, Message: message}
		s.record(TaskDealToOpportunity, dealID, res)
		return res, nil
	}

	externalID := marketo.ComputeExternalID(pipedrive.EntityDeal, deal.ID())
	opportunity, found, err := loadEntity(s.marketo, marketo.OpportunitySchema, externalID, "externalOpportunityId")
	if err != nil {
		return Result{}, err
	}

	changed := Apply(deal, opportunity, mapping.OpportunityFromDeal, s.registry)
	status := StatusUpdated
	if !found {
		status = StatusCreated
		opportunity.Set("externalOpportunityId", externalID)
		changed = true
	}

	if changed {
		log.Printf("[sync] Sending deal data with id=%v to Marketo for opportunity with external_id=%s", dealID, externalID)
		if err := persist(s.marketo, opportunity); err != nil {
			return Result{}, err
		}
	} else {
		log.Printf("[sync] Nothing to do in Marketo for opportunity with external_id=%s", externalID)
		status = StatusSkipped
	}

	res := Result{Status: status, ID: opportunity.ID(), ExternalID: externalID}

	roleRes, err := s.syncRole(deal, externalID)
	if err != nil {
		return Result{}, err
	}
	res.Role = roleRes

	s.record(TaskDealToOpportunity, dealID, res)
	return res, nil
}

func (s *Service) pipelineNameOf(deal *crm.Entity) (string, error) {
	pipeline, found, err := loadEntity(s.pipedrive, pipedrive.PipelineSchema, deal.Get("pipeline_id"), "id")
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return crm.String(pipeline.Get("name")), nil
}

// syncRole upserts the opportunity role for the deal's contact person.
// Returns nil without error when the person is unknown in Marketo.
func (s *Service) syncRole(deal *crm.Entity, opportunityExternalID string) (*Result, error) {
	contact, found, err := loadEntity(s.pipedrive, pipedrive.PersonSchema, deal.Get("contact_person"), "id")
	if err != nil {
		return nil, err
	}
	if !found || crm.IsEmpty(contact.Get("marketoid")) {
		return nil, nil
	}

	champion, championFound, err := loadEntity(s.pipedrive, pipedrive.PersonSchema, deal.Get("champion"), "id")
	if err != nil {
		return nil, err
	}

	role := crm.NewEntity(marketo.RoleSchema)
	role.Set("externalOpportunityId", opportunityExternalID)
	role.Set("leadId", contact.Get("marketoid"))
	role.Set("role", "Default Role")
	if championFound && !crm.IsEmpty(champion.Get("title")) {
		role.Set("role", champion.Get("title"))
	}
	role.Set("isPrimary", championFound && crm.Equal(champion.Get("marketoid"), contact.Get("marketoid")))

	log.Printf("[sync] Sending deal data to Marketo for role with (externalOpportunityId=%s, leadId=%v, role=%v)",
		opportunityExternalID, role.Get("leadId"), role.Get("role"))
	if err := persist(s.marketo, role); err != nil {
		return nil, err
	}
	return &Result{Status: StatusCreated, ID: role.ID()}, nil
}

// SyncLeadToActivity creates a follow-up call activity in Pipedrive
// for a lead's owner. Unlike the other tasks it always creates; an
// activity is a one-shot reminder, not a mirrored record.
func (s *Service) SyncLeadToActivity(leadID any) (Result, error) {
	log.Printf("[sync] Fetching lead data from Marketo with id=%v", leadID)
	lead, found, err := loadEntity(s.marketo, marketo.LeadSchema, leadID, "id")
	if err != nil {
		return Result{}, err
	}
	if !found {
		return s.notFound(TaskLeadToActivity, leadID, "No lead found in Marketo with id=%v", leadID), nil
	}

	if crm.IsEmpty(lead.Get("conversicaLeadOwnerFirstName")) ||
		crm.IsEmpty(lead.Get("conversicaLeadOwnerLastName")) ||
		crm.IsEmpty(lead.Get("pipedriveId")) {
		message := fmt.Sprintf("Activity synchronization for lead with id=%v not enabled when no owner", leadID)
		log.Printf("[sync] %s", message)
		res := Result{Status: StatusSkipped, Message: message}
		s.record(TaskLeadToActivity, leadID, res)
		return res, nil
	}

	activity := crm.NewEntity(pipedrive.ActivitySchema)
	Apply(lead, activity, mapping.ActivityFromLead, s.registry)

	log.Printf("[sync] Sending lead data with id=%v to Pipedrive activity", leadID)
	if err := persist(s.pipedrive, activity); err != nil {
		return Result{}, err
	}

	res := Result{Status: StatusCreated, ID: activity.ID()}
	s.record(TaskLeadToActivity, leadID, res)
	return res, nil
}

// DeletePerson removes a person in Pipedrive by id, used when the
// associated lead was flagged for deletion in Marketo.
func (s *Service) DeletePerson(personID any) (Result, error) {
	log.Printf("[sync] Deleting person in Pipedrive with id=%v", personID)
	record, err := s.pipedrive.Delete(pipedrive.EntityPerson, personID)
	if err != nil {
		return Result{}, err
	}
	if record == nil {
		res := errorResult(fmt.Sprintf("Could not delete person in Pipedrive with id=%v", personID))
		log.Printf("[sync] %s", res.Error)
		s.record(TaskDeletePerson, personID, res)
		return res, nil
	}

	res := Result{Status: StatusDeleted, ID: record["id"]}
	s.record(TaskDeletePerson, personID, res)
	return res, nil
}

// FlagLeadForDeletion marks a Marketo lead for deletion, used when the
// associated person was deleted in Pipedrive. The lead is only
// flagged; actual removal is a Marketo-side batch job keyed on the
// flag.
func (s *Service) FlagLeadForDeletion(leadID any) (Result, error) {
	log.Printf("[sync] Flagging lead for deletion in Marketo with id=%v", leadID)
	lead, found, err := loadEntity(s.marketo, marketo.LeadSchema, leadID, "id")
	if err != nil {
		return Result{}, err
	}
	if !found {
		return s.notFound(TaskFlagLeadForDeletion, leadID, "No lead found in Marketo with id=%v", leadID), nil
	}

	lead.Set("toDelete", true)
	if err := persist(s.marketo, lead); err != nil {
		return Result{}, err
	}

	res := Result{Status: StatusReadyForDeletion, ID: lead.ID()}
	s.record(TaskFlagLeadForDeletion, leadID, res)
	return res, nil
}

func (s *Service) notFound(task string, sourceID any, format string, args ...any) Result {
	res := errorResult(fmt.Sprintf(format, args...))
	log.Printf("[sync] %s", res.Error)
	s.record(task, sourceID, res)
	return res
}
