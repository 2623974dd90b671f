package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuxeo/mkto-pd-sync-app/internal/domains"
	"github.com/nuxeo/mkto-pd-sync-app/internal/pipedrive"
	"github.com/nuxeo/mkto-pd-sync-app/internal/sync"
)

type stubWebhookService struct {
	task     string
	entityID any
}

func (s *stubWebhookService) VerifySignature(payload []byte, signature string) bool {
	return signature == "good"
}

func (s *stubWebhookService) EnqueueTask(ctx context.Context, task string, entityID any) (string, bool, error) {
	s.task = task
	s.entityID = entityID
	return "task-123", true, nil
}

func postHook(h *WebhookHandler, event, signature string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/hook", bytes.NewBufferString(body))
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}
	if event != "" {
		req.Header.Set("X-Webhook-Event", event)
	}
	rr := httptest.NewRecorder()
	h.HandleWebhook(rr, req)
	return rr
}

func TestHandleWebhookEnqueues(t *testing.T) {
	svc := &stubWebhookService{}
	h := NewWebhookHandler(svc)

	rr := postHook(h, "deal.updated", "good", `{"current":{"id":15}}`)

	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, sync.TaskDealToOpportunity, svc.task)
	assert.Equal(t, float64(15), svc.entityID)

	var resp domains.WebhookResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "task-123", resp.TaskID)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	h := NewWebhookHandler(&stubWebhookService{})

	rr := postHook(h, "deal.updated", "forged", `{"current":{"id":15}}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = postHook(h, "deal.updated", "", `{"current":{"id":15}}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleWebhookRequiresEvent(t *testing.T) {
	h := NewWebhookHandler(&stubWebhookService{})

	rr := postHook(h, "", "good", `{"current":{"id":15}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleWebhookUnknownEvent(t *testing.T) {
	h := NewWebhookHandler(&stubWebhookService{})

	rr := postHook(h, "note.added", "good", `{"current":{"id":15}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTaskForEvent(t *testing.T) {
	marketoIDKey := pipedrive.FieldKey(pipedrive.EntityPerson, "marketoid")

	cases := []struct {
		event    string
		payload  domains.WebhookPayload
		task     string
		entityID any
	}{
		{"lead.created", domains.WebhookPayload{Current: map[string]interface{}{"id": 10}}, sync.TaskLeadToPerson, 10},
		{"lead.updated", domains.WebhookPayload{Current: map[string]interface{}{"id": 10}}, sync.TaskLeadToPerson, 10},
		{"lead.deleted", domains.WebhookPayload{Current: map[string]interface{}{"pipedriveId": 7}}, sync.TaskDeletePerson, 7},
		{"company.updated", domains.WebhookPayload{Current: map[string]interface{}{"externalCompanyId": "pd-organization-20"}}, sync.TaskCompanyToOrganization, "pd-organization-20"},
		{"person.added", domains.WebhookPayload{Current: map[string]interface{}{"id": 7}}, sync.TaskPersonToLead, 7},
		{"person.deleted", domains.WebhookPayload{Previous: map[string]interface{}{marketoIDKey: 10}}, sync.TaskFlagLeadForDeletion, 10},
		{"organization.updated", domains.WebhookPayload{Current: map[string]interface{}{"id": 20}}, sync.TaskOrganizationToCompany, 20},
		{"deal.added", domains.WebhookPayload{Current: map[string]interface{}{"id": 15}}, sync.TaskDealToOpportunity, 15},
	}

	for _, tc := range cases {
		t.Run(tc.event, func(t *testing.T) {
			task, entityID, err := taskForEvent(tc.event, &tc.payload)
			require.NoError(t, err)
			assert.Equal(t, tc.task, task)
			assert.Equal(t, tc.entityID, entityID)
		})
	}
}

func TestTaskForEventMissingEntity(t *testing.T) {
	_, _, err := taskForEvent("lead.created", &domains.WebhookPayload{})
	assert.Error(t, err)

	_, _, err = taskForEvent("person.deleted", &domains.WebhookPayload{Previous: map[string]interface{}{}})
	assert.Error(t, err)
}
