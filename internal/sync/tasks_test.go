package sync

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuxeo/mkto-pd-sync-app/internal/crm"
	"github.com/nuxeo/mkto-pd-sync-app/internal/marketo"
	"github.com/nuxeo/mkto-pd-sync-app/internal/pipedrive"
)

// fakeClient is an in-memory crm.Client. Lookups by any field scan the
// stored records, like the remote search endpoints do.
type fakeClient struct {
	idKeys  map[string]string
	records map[string][]crm.Record
	nextID  int
}

func newFakeClient(idKeys map[string]string) *fakeClient {
	return &fakeClient{
		idKeys:  idKeys,
		records: make(map[string][]crm.Record),
	}
}

func newFakeMarketo() *fakeClient {
	return newFakeClient(map[string]string{
		marketo.EntityOpportunity: "marketoGUID",
		marketo.EntityRole:        "marketoGUID",
	})
}

func newFakePipedrive() *fakeClient {
	return newFakeClient(nil)
}

func (f *fakeClient) idKey(entityType string) string {
	if key, ok := f.idKeys[entityType]; ok {
		return key
	}
	return "id"
}

func (f *fakeClient) add(entityType string, rec crm.Record) {
	f.records[entityType] = append(f.records[entityType], rec)
}

func (f *fakeClient) find(entityType, key string, value any) crm.Record {
	for _, rec := range f.records[entityType] {
		if v, ok := rec[key]; ok && crm.Equal(v, value) {
			return rec
		}
	}
	return nil
}

func (f *fakeClient) GetData(entityType string, id any, idField string) (crm.Record, error) {
	if crm.IsEmpty(id) {
		return nil, nil
	}
	key := idField
	if key == "" || key == "id" {
		key = f.idKey(entityType)
	}
	rec := f.find(entityType, key, id)
	if rec == nil {
		return nil, nil
	}
	return copyRecord(rec), nil
}

func (f *fakeClient) PutData(entityType string, data crm.Record, id any) (crm.Record, error) {
	idKey := f.idKey(entityType)

	if crm.IsEmpty(id) {
		f.nextID++
		rec := copyRecord(data)
		if idKey == "marketoGUID" {
			rec[idKey] = fmt.Sprintf("guid-%04d", f.nextID)
		} else {
			rec[idKey] = f.nextID
		}
		f.add(entityType, rec)
		return copyRecord(rec), nil
	}

	rec := f.find(entityType, idKey, id)
	if rec == nil {
		rec = copyRecord(data)
		rec[idKey] = id
		f.add(entityType, rec)
		return copyRecord(rec), nil
	}
	for k, v := range data {
		rec[k] = v
	}
	return copyRecord(rec), nil
}

func (f *fakeClient) Delete(entityType string, id any) (crm.Record, error) {
	idKey := f.idKey(entityType)
	recs := f.records[entityType]
	for i, rec := range recs {
		if crm.Equal(rec[idKey], id) {
			f.records[entityType] = append(recs[:i], recs[i+1:]...)
			return crm.Record{"id": id}, nil
		}
	}
	return nil, nil
}

func copyRecord(rec crm.Record) crm.Record {
	out := make(crm.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func newTestService(t *testing.T) (*Service, *fakeClient, *fakeClient) {
	t.Helper()
	mkto := newFakeMarketo()
	pd := newFakePipedrive()
	svc, err := NewService(mkto, pd, Options{PipelineName: "Subscription (New and Upsell)"})
	require.NoError(t, err)
	return svc, mkto, pd
}

func personMarketoIDKey() string {
	return pipedrive.FieldKey(pipedrive.EntityPerson, "marketoid")
}

func orgMarketoIDKey() string {
	return pipedrive.FieldKey(pipedrive.EntityOrganization, "marketoid")
}

func TestSyncLeadToPersonCreatesAndLinksBack(t *testing.T) {
	svc, mkto, pd := newTestService(t)
	mkto.add(marketo.EntityLead, crm.Record{
		"id":        10,
		"firstName": "Jane",
		"lastName":  "Doe",
		"email":     "jane@acme.com",
		"country":   "FR",
		"createdAt": "2016-05-10T12:30:00Z",
	})

	res, err := svc.SyncLeadToPerson(10)

	require.NoError(t, err)
	assert.Equal(t, StatusCreated, res.Status)
	assert.Equal(t, 1, res.ID)

	person := pd.find(pipedrive.EntityPerson, "id", 1)
	require.NotNil(t, person)
	assert.Equal(t, "Jane Doe", person["name"])
	assert.Equal(t, "jane@acme.com", person["email"])
	assert.Equal(t, "France", person["inferred_country"])
	assert.Equal(t, "2016-05-10", person["created_date"])
	assert.Equal(t, 10, person[personMarketoIDKey()])
	assert.Equal(t, 208823, person["owner_id"], "unresolvable owner falls back to the default")

	lead := mkto.find(marketo.EntityLead, "id", 10)
	require.NotNil(t, lead)
	assert.Equal(t, 1, lead["pipedriveId"], "person id must be written back onto the lead")
}

func TestSyncLeadToPersonSecondRunSkips(t *testing.T) {
	svc, mkto, _ := newTestService(t)
	mkto.add(marketo.EntityLead, crm.Record{
		"id":        10,
		"firstName": "Jane",
		"lastName":  "Doe",
		"email":     "jane@acme.com",
	})

	first, err := svc.SyncLeadToPerson(10)
	require.NoError(t, err)
	require.Equal(t, StatusCreated, first.Status)

	second, err := svc.SyncLeadToPerson(10)
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, second.Status, "an unchanged round trip must not write")
	assert.Equal(t, first.ID, second.ID)
}

func TestSyncLeadToPersonUnknownLead(t *testing.T) {
	svc, _, _ := newTestService(t)

	res, err := svc.SyncLeadToPerson(999)

	require.NoError(t, err)
	assert.Contains(t, res.Error, "No lead found")
}

func TestSyncPersonToLeadCreatesAndLinksBack(t *testing.T) {
	svc, mkto, pd := newTestService(t)
	pd.add(pipedrive.EntityPerson, crm.Record{
		"id":    7,
		"name":  "Jane Doe",
		"email": "jane@acme.com",
		"title": "CTO",
	})

	res, err := svc.SyncPersonToLead(7)

	require.NoError(t, err)
	assert.Equal(t, StatusCreated, res.Status)

	lead := mkto.find(marketo.EntityLead, "id", res.ID)
	require.NotNil(t, lead)
	assert.Equal(t, "Jane", lead["firstName"])
	assert.Equal(t, "Doe", lead["lastName"])
	assert.Equal(t, "jane@acme.com", lead["email"])
	assert.Equal(t, 7, lead["pipedriveId"])

	person := pd.find(pipedrive.EntityPerson, "id", 7)
	require.NotNil(t, person)
	assert.Equal(t, res.ID, person[personMarketoIDKey()], "lead id must be written back onto the person")
}

func TestSyncCompanyToOrganizationLocatesByName(t *testing.T) {
	svc, mkto, pd := newTestService(t)
	mkto.add(marketo.EntityCompany, crm.Record{
		"id":                30,
		"externalCompanyId": "c-ext-1",
		"company":           "Acme",
		"industry":          "Technology",
		"numberOfEmployees": 50,
	})
	pd.add(pipedrive.EntityOrganization, crm.Record{
		"id":           20,
		"name":         "Acme",
		"people_count": 10,
	})

	res, err := svc.SyncCompanyToOrganization("c-ext-1")

	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, res.Status)
	assert.Equal(t, 20, res.ID)

	org := pd.find(pipedrive.EntityOrganization, "id", 20)
	require.NotNil(t, org)
	assert.Equal(t, 50, org["people_count"])
	assert.Equal(t, "39", org["industry"], "industry label must be stored as its option id")
	assert.Equal(t, 208823, org["owner_id"])
}

func TestSyncCompanyToOrganizationSecondRunSkips(t *testing.T) {
	svc, mkto, _ := newTestService(t)
	mkto.add(marketo.EntityCompany, crm.Record{
		"id":                30,
		"externalCompanyId": "c-ext-1",
		"company":           "Acme",
		"industry":          "Technology",
		"numberOfEmployees": 50,
	})

	first, err := svc.SyncCompanyToOrganization("c-ext-1")
	require.NoError(t, err)
	require.Equal(t, StatusCreated, first.Status)

	second, err := svc.SyncCompanyToOrganization("c-ext-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, second.Status)
}

func TestSyncOrganizationToCompanyCreatesWithExternalID(t *testing.T) {
	svc, mkto, pd := newTestService(t)
	pd.add(pipedrive.EntityOrganization, crm.Record{
		"id":           20,
		"name":         "Acme",
		"people_count": 50,
	})

	res, err := svc.SyncOrganizationToCompany(20)

	require.NoError(t, err)
	assert.Equal(t, StatusCreated, res.Status)
	assert.Equal(t, "pd-organization-20", res.ExternalID)

	company := mkto.find(marketo.EntityCompany, "externalCompanyId", "pd-organization-20")
	require.NotNil(t, company)
	assert.Equal(t, "Acme", company["company"])
	assert.Equal(t, 50, company["numberOfEmployees"])

	org := pd.find(pipedrive.EntityOrganization, "id", 20)
	require.NotNil(t, org)
	assert.Equal(t, res.ID, org[orgMarketoIDKey()], "company id must be written back onto the organization")
}

func TestSyncDealToOpportunityWithRole(t *testing.T) {
	svc, mkto, pd := newTestService(t)
	pd.add(pipedrive.EntityPipeline, crm.Record{"id": 2, "name": "Subscription (New and Upsell)"})
	pd.add(pipedrive.EntityStage, crm.Record{"id": 3, "name": "Negotiation"})
	pd.add(pipedrive.EntityPerson, crm.Record{
		"id":                 7,
		"name":               "Jane Doe",
		"title":              "CTO",
		personMarketoIDKey(): 10,
	})
	pd.add(pipedrive.EntityDeal, crm.Record{
		"id":          5,
		"title":       "Acme Upsell",
		"type":        "upsell",
		"status":      "won",
		"value":       15000,
		"close_time":  "2017-03-08 10:00:00",
		"stage_id":    3,
		"pipeline_id": 2,
		"person_id":   7,
	})

	res, err := svc.SyncDealToOpportunity(5)

	require.NoError(t, err)
	assert.Equal(t, StatusCreated, res.Status)
	assert.Equal(t, "pd-deal-5", res.ExternalID)

	opp := mkto.find(marketo.EntityOpportunity, "externalOpportunityId", "pd-deal-5")
	require.NotNil(t, opp)
	assert.Equal(t, "Acme Upsell", opp["name"])
	assert.Equal(t, "Upsell", opp["type"])
	assert.Equal(t, true, opp["isClosed"])
	assert.Equal(t, true, opp["isWon"])
	assert.Equal(t, 15000.0, opp["amount"])
	assert.Equal(t, "2017-03-08", opp["closeDate"])
	assert.Equal(t, 1, opp["fiscalQuarter"])
	assert.Equal(t, 2017, opp["fiscalYear"])
	assert.Equal(t, "Negotiation", opp["stage"])

	require.NotNil(t, res.Role)
	role := mkto.find(marketo.EntityRole, "externalOpportunityId", "pd-deal-5")
	require.NotNil(t, role)
	assert.Equal(t, 10, role["leadId"])
	assert.Equal(t, "Default Role", role["role"])
	assert.Equal(t, false, role["isPrimary"])
}

func TestSyncDealToOpportunitySecondRunSkipsOpportunity(t *testing.T) {
	svc, _, pd := newTestService(t)
	pd.add(pipedrive.EntityPipeline, crm.Record{"id": 2, "name": "Subscription (New and Upsell)"})
	pd.add(pipedrive.EntityDeal, crm.Record{
		"id":          5,
		"title":       "Acme Upsell",
		"status":      "open",
		"pipeline_id": 2,
	})

	first, err := svc.SyncDealToOpportunity(5)
	require.NoError(t, err)
	require.Equal(t, StatusCreated, first.Status)

	second, err := svc.SyncDealToOpportunity(5)
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, second.Status)
	assert.Nil(t, second.Role, "no role without a contact person in Marketo")
}

func TestSyncDealToOpportunityFiltersPipeline(t *testing.T) {
	svc, mkto, pd := newTestService(t)
	pd.add(pipedrive.EntityPipeline, crm.Record{"id": 9, "name": "Partner Deals"})
	pd.add(pipedrive.EntityDeal, crm.Record{
		"id":          5,
		"title":       "Acme Upsell",
		"pipeline_id": 9,
	})

	res, err := svc.SyncDealToOpportunity(5)

	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, res.Status)
	assert.Contains(t, res.Message, "not enabled for pipeline")
	assert.Empty(t, mkto.records[marketo.EntityOpportunity])
}

func TestSyncLeadToActivity(t *testing.T) {
	svc, mkto, pd := newTestService(t)
	pd.add(pipedrive.EntityUser, crm.Record{"id": 42, "name": "Helene Jonin", "email": "helene@nuxeo.com"})
	mkto.add(marketo.EntityLead, crm.Record{
		"id":                           10,
		"firstName":                    "Jane",
		"lastName":                     "Doe",
		"conversicaLeadOwnerFirstName": "Helene",
		"conversicaLeadOwnerLastName":  "Jonin",
		"pipedriveId":                  7,
	})

	res, err := svc.SyncLeadToActivity(10)

	require.NoError(t, err)
	assert.Equal(t, StatusCreated, res.Status)

	activity := pd.find(pipedrive.EntityActivity, "id", res.ID)
	require.NotNil(t, activity)
	assert.Equal(t, 42, activity["user_id"])
	assert.Equal(t, 7, activity["person_id"])
	assert.Equal(t, "call", activity["type"])
	assert.Equal(t, "Follow up with Jane Doe", activity["subject"])
}

func TestSyncLeadToActivitySkipsWithoutOwner(t *testing.T) {
	svc, mkto, _ := newTestService(t)
	mkto.add(marketo.EntityLead, crm.Record{"id": 10, "firstName": "Jane", "lastName": "Doe"})

	res, err := svc.SyncLeadToActivity(10)

	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, res.Status)
	assert.Contains(t, res.Message, "not enabled when no owner")
}

func TestDeletePerson(t *testing.T) {
	svc, _, pd := newTestService(t)
	pd.add(pipedrive.EntityPerson, crm.Record{"id": 7, "name": "Jane Doe"})

	res, err := svc.DeletePerson(7)

	require.NoError(t, err)
	assert.Equal(t, StatusDeleted, res.Status)
	assert.Equal(t, 7, res.ID)
	assert.Nil(t, pd.find(pipedrive.EntityPerson, "id", 7))
}

func TestDeletePersonUnknown(t *testing.T) {
	svc, _, _ := newTestService(t)

	res, err := svc.DeletePerson(999)

	require.NoError(t, err)
	assert.Contains(t, res.Error, "Could not delete person")
}

func TestFlagLeadForDeletion(t *testing.T) {
	svc, mkto, _ := newTestService(t)
	mkto.add(marketo.EntityLead, crm.Record{"id": 10, "firstName": "Jane"})

	res, err := svc.FlagLeadForDeletion(10)

	require.NoError(t, err)
	assert.Equal(t, StatusReadyForDeletion, res.Status)

	lead := mkto.find(marketo.EntityLead, "id", 10)
	require.NotNil(t, lead)
	assert.Equal(t, true, lead["toDelete"])
}

func TestJournalRecordsTaskOutcomes(t *testing.T) {
	mkto := newFakeMarketo()
	pd := newFakePipedrive()
	journal := &fakeJournal{}
	svc, err := NewService(mkto, pd, Options{Journal: journal})
	require.NoError(t, err)

	mkto.add(marketo.EntityLead, crm.Record{"id": 10, "firstName": "Jane", "lastName": "Doe"})
	_, err = svc.SyncLeadToPerson(10)
	require.NoError(t, err)
	_, err = svc.SyncLeadToPerson(999)
	require.NoError(t, err)

	require.Len(t, journal.entries, 2)
	assert.Equal(t, TaskLeadToPerson, journal.entries[0].task)
	assert.Equal(t, StatusCreated, journal.entries[0].status)
	assert.Equal(t, "error", journal.entries[1].status)
}

type journalEntry struct {
	task     string
	sourceID any
	status   string
	targetID any
}

type fakeJournal struct {
	entries []journalEntry
}

func (j *fakeJournal) Record(task string, sourceID any, status string, targetID any) {
	j.entries = append(j.entries, journalEntry{task, sourceID, status, targetID})
}
