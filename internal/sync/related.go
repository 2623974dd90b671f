package sync

import (
	"log"

	"github.com/nuxeo/mkto-pd-sync-app/internal/crm"
	"github.com/nuxeo/mkto-pd-sync-app/internal/marketo"
	"github.com/nuxeo/mkto-pd-sync-app/internal/pipedrive"
)

// Service implements mapping.Resolver: the side-effectful adapters call
// back into the service directly so the nested synchronizations stay
// visible in the call graph.

// CompanyToOrgID finds or creates the Pipedrive organization behind a
// lead's company. When the company exists only as form fields on the
// lead itself, a Marketo company is created from them first, then
// synchronized over. Failures degrade to nil so the outer sync is
// never blocked.
func (s *Service) CompanyToOrgID(lead *crm.Entity) any {
	if crm.IsEmpty(lead.Get("company")) {
		return nil
	}

	res, err := s.SyncCompanyToOrganization(lead.Get("externalCompanyId"))
	if err == nil && res.Error == "" && res.ID != nil {
		return res.ID
	}

	// The lead carries company form fields but no company record yet.
	company := crm.NewEntity(marketo.CompanySchema)
	externalID := marketo.ComputeExternalIDWithPrefix("lead-company", lead.Get("id"), "mkto")
	company.Set("externalCompanyId", externalID)
	company.Set("company", lead.Get("company"))
	company.Set("billingStreet", lead.Get("street"))
	company.Set("billingCity", lead.Get("city"))
	company.Set("billingState", lead.Get("state"))
	company.Set("billingPostalCode", lead.Get("postalCode"))
	company.Set("billingCountry", lead.Get("country"))
	company.Set("mainPhone", lead.Get("mainPhone"))
	company.Set("industry", lead.Get("industry"))
	company.Set("annualRevenue", lead.Get("annualRevenue"))
	company.Set("numberOfEmployees", lead.Get("numberOfEmployees"))

	if err := persist(s.marketo, company); err != nil {
		log.Printf("[sync] Could not create company from lead fields: %v", err)
		return nil
	}

	lead.Set("externalCompanyId", externalID)
	if err := persist(s.marketo, lead); err != nil {
		log.Printf("[sync] Could not record company reference on lead: %v", err)
		return nil
	}

	res, err = s.SyncCompanyToOrganization(externalID)
	if err == nil && res.Error == "" && res.ID != nil {
		return res.ID
	}
	return nil
}

// OrganizationToExternalID finds or creates the Marketo company behind
// a Pipedrive organization id and returns its external company id.
func (s *Service) OrganizationToExternalID(orgID any) any {
	if crm.IsEmpty(orgID) {
		return nil
	}
	res, err := s.SyncOrganizationToCompany(orgID)
	if err == nil && res.Error == "" && res.ExternalID != "" {
		return res.ExternalID
	}
	return nil
}

// UserNameToID resolves a Pipedrive user by name, nil when unknown.
func (s *Service) UserNameToID(name any) any {
	userName := crm.String(name)
	if userName == "" {
		return nil
	}
	record, err := s.pipedrive.GetData(pipedrive.EntityUser, userName, "name")
	if err != nil {
		log.Printf("[sync] User lookup failed for name=%s: %v", userName, err)
		return nil
	}
	if record == nil {
		return nil
	}
	return record["id"]
}

// UserNameToIDOrDefault resolves a user by name, falling back to the
// unassigned-owner id.
func (s *Service) UserNameToIDOrDefault(name any) any {
	if id := s.UserNameToID(name); id != nil {
		return id
	}
	return s.ownerID
}

// DefaultOwnerID is the unassigned-owner user id.
func (s *Service) DefaultOwnerID() any {
	return s.ownerID
}

// UserName returns a user's name by id; the unassigned owner reads as
// empty.
func (s *Service) UserName(userID any) any {
	record := s.userRecord(userID)
	if record == nil {
		return nil
	}
	return record["name"]
}

// UserEmail returns a user's email by id; the unassigned owner reads
// as empty.
func (s *Service) UserEmail(userID any) any {
	record := s.userRecord(userID)
	if record == nil {
		return nil
	}
	return record["email"]
}

func (s *Service) userRecord(userID any) crm.Record {
	if crm.IsEmpty(userID) {
		return nil
	}
	if id, ok := crm.Int(userID); ok && id == s.ownerID {
		return nil
	}
	record, err := s.pipedrive.GetData(pipedrive.EntityUser, userID, "id")
	if err != nil {
		log.Printf("[sync] User lookup failed for id=%v: %v", userID, err)
		return nil
	}
	return record
}

// StageName returns a stage's name by id.
func (s *Service) StageName(stageID any) any {
	if crm.IsEmpty(stageID) {
		return nil
	}
	record, err := s.pipedrive.GetData(pipedrive.EntityStage, stageID, "id")
	if err != nil {
		log.Printf("[sync] Stage lookup failed for id=%v: %v", stageID, err)
		return nil
	}
	if record == nil {
		return nil
	}
	return record["name"]
}
