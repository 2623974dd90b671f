package pipedrive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nuxeo/mkto-pd-sync-app/internal/crm"
)

// Client talks to the Pipedrive REST API. Authentication is a token in
// the query string; there is nothing to refresh.
type Client struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// GetData loads one record. Alternate id fields resolve to a native id
// first: "name" through the find endpoint with exact-match preference,
// any other field through the field search endpoint. Lookups that match
// nothing return (nil, nil).
func (c *Client) GetData(entityType string, id any, idField string) (crm.Record, error) {
	if crm.IsEmpty(id) {
		return nil, nil
	}

	nativeID := id
	switch idField {
	case "", "id":
	case "name":
		found, err := c.findByName(entityType, crm.String(id))
		if err != nil {
			return nil, err
		}
		nativeID = found
	default:
		found, err := c.findByField(entityType, idField, crm.String(id))
		if err != nil {
			return nil, err
		}
		nativeID = found
	}
	if crm.IsEmpty(nativeID) {
		return nil, nil
	}

	path := fmt.Sprintf("%s/%v", pluralize(entityType), nativeID)
	data, err := c.doRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var record crm.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse %s data: %w", entityType, err)
	}

	// Deleted records stay readable with active_flag unset.
	if active, present := record["active_flag"]; present {
		if flag, _ := active.(bool); !flag {
			return nil, nil
		}
	}
	return record, nil
}

// PutData creates (POST) or updates (PUT) a record and returns the
// stored record including its id.
func (c *Client) PutData(entityType string, data crm.Record, id any) (crm.Record, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", entityType, err)
	}

	method := http.MethodPost
	path := pluralize(entityType)
	if !crm.IsEmpty(id) {
		method = http.MethodPut
		path = fmt.Sprintf("%s/%v", path, id)
	}

	raw, err := c.doRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var record crm.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to parse %s data: %w", entityType, err)
	}
	return record, nil
}

// Delete removes a record by id.
func (c *Client) Delete(entityType string, id any) (crm.Record, error) {
	if crm.IsEmpty(id) {
		return nil, nil
	}
	log.Printf("[pipedrive] Deleting %s with id=%v", entityType, id)

	raw, err := c.doRequest(http.MethodDelete, fmt.Sprintf("%s/%v", pluralize(entityType), id), nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var record crm.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to parse %s data: %w", entityType, err)
	}
	return record, nil
}

// findByName resolves an entity id through the find endpoint. With
// several matches, only an exact name match wins.
func (c *Client) findByName(entityType, name string) (any, error) {
	name = strings.TrimSpace(name)
	// Search terms must be at least 2 characters long
	if len(name) < 2 {
		return nil, nil
	}

	path := fmt.Sprintf("%s/find?term=%s", pluralize(entityType), url.QueryEscape(name))
	raw, err := c.doRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var matches []crm.Record
	if err := json.Unmarshal(raw, &matches); err != nil {
		return nil, fmt.Errorf("failed to parse %s search result: %w", entityType, err)
	}

	if len(matches) == 0 {
		return nil, nil
	}
	if len(matches) == 1 {
		return matches[0]["id"], nil
	}
	for _, match := range matches {
		if matchName, _ := match["name"].(string); matchName == name {
			return match["id"], nil
		}
	}
	log.Printf("[pipedrive] More than one %s found with name=%s and no exact match", entityType, name)
	return nil, nil
}

// findByField resolves an entity id through the field search endpoint,
// used for custom-field lookups such as the cross-reference id.
func (c *Client) findByField(entityType, fieldKey, term string) (any, error) {
	query := url.Values{}
	query.Set("term", term)
	query.Set("field_type", entityType+"Field")
	query.Set("field_key", fieldKey)
	query.Set("exact_match", "1")
	query.Set("return_item_ids", "1")

	raw, err := c.doRequest(http.MethodGet, "searchResults/field?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var matches []crm.Record
	if err := json.Unmarshal(raw, &matches); err != nil {
		return nil, fmt.Errorf("failed to parse field search result: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0]["id"], nil
}

func (c *Client) doRequest(method, path string, body []byte) (json.RawMessage, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	fullURL := c.baseURL + "/" + path + sep + "api_token=" + url.QueryEscape(c.apiToken)

	req, err := http.NewRequest(method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// 404 means not found, 410 shows up on deletion of a gone record.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("pipedrive API error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !env.Success {
		log.Printf("[pipedrive] API error: %s", env.Error)
		return nil, nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	return env.Data, nil
}

func pluralize(name string) string {
	if strings.HasSuffix(name, "y") {
		return name[:len(name)-1] + "ies"
	}
	return name + "s"
}
