package marketo

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

// Client talks to the Marketo REST API. Authentication uses client
// credentials; the access token is refreshed shortly before expiry and
// a request hitting an expired-token error is retried once with a fresh
// token. None of this is visible to callers.
type Client struct {
	identityEndpoint string
	apiEndpoint      string
	clientID         string
	clientSecret     string
	client           *http.Client
	token            accessToken
}

type accessToken struct {
	Value     string
	ExpiresAt time.Time
}

func (t accessToken) ShouldRefresh() bool {
	// Refresh 5 minutes before expiry
	return time.Now().Add(5 * time.Minute).After(t.ExpiresAt)
}

// Expired-token error codes returned inside an HTTP 200 envelope.
const (
	errCodeTokenExpired = "601"
	errCodeTokenInvalid = "602"
)

func NewClient(identityEndpoint, apiEndpoint, clientID, clientSecret string) *Client {
	return &Client{
		identityEndpoint: identityEndpoint,
		apiEndpoint:      apiEndpoint,
		clientID:         clientID,
		clientSecret:     clientSecret,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Result  []crm.Record    `json:"result"`
	Errors  []envelopeError `json:"errors"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GetData loads one record by the given id field. Lookups that match
// nothing return (nil, nil).
func (c *Client) GetData(entityType string, id any, idField string) (crm.Record, error) {
	if crm.IsEmpty(id) {
		return nil, nil
	}

	fields := fieldKeys(entityType)

	var path string
	query := url.Values{}
	if entityType == EntityLead && idField == "id" {
		path = fmt.Sprintf("%s/%v.json", pluralize(entityType), id)
	} else {
		path = pluralize(entityType) + ".json"
		query.Set("filterType", idField)
		query.Set("filterValues", crm.String(id))
	}
	if len(fields) > 0 {
		query.Set("fields", strings.Join(fields, ","))
	}
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	env, err := c.doRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if len(env.Result) == 0 {
		return nil, nil
	}
	if len(env.Result) > 1 {
		log.Printf("[marketo] More than one %s found for %s=%v", entityType, idField, id)
	}
	return env.Result[0], nil
}

// PutData creates or updates a record and returns the identity fields
// assigned by Marketo.
func (c *Client) PutData(entityType string, data crm.Record, id any) (crm.Record, error) {
	payload := map[string]any{
		"action": "createOrUpdate",
		"input":  []crm.Record{data},
	}
	// Lead updates match on id instead of the default email lookup.
	if entityType == EntityLead && !crm.IsEmpty(id) {
		payload["lookupField"] = "id"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", entityType, err)
	}

	env, err := c.doRequest(http.MethodPost, pluralize(entityType)+".json", body)
	if err != nil {
		return nil, err
	}
	if len(env.Result) == 0 {
		return nil, nil
	}

	result := env.Result[0]
	if status, _ := result["status"].(string); status == "skipped" {
		log.Printf("[marketo] %s put skipped: %v", entityType, result["reasons"])
		return nil, nil
	}
	return result, nil
}

// Delete removes a record by id.
func (c *Client) Delete(entityType string, id any) (crm.Record, error) {
	payload := map[string]any{
		"input": []crm.Record{{"id": id}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s delete payload: %w", entityType, err)
	}

	env, err := c.doRequest(http.MethodPost, pluralize(entityType)+"/delete.json", body)
	if err != nil {
		return nil, err
	}
	if len(env.Result) == 0 {
		return nil, nil
	}
	return env.Result[0], nil
}

func (c *Client) doRequest(method, path string, body []byte) (*envelope, error) {
	if c.token.ShouldRefresh() {
		if err := c.refreshToken(); err != nil {
			return nil, fmt.Errorf("failed to refresh token: %w", err)
		}
	}

	env, err := c.doAuthenticatedRequest(method, path, body)
	if err != nil {
		return nil, err
	}

	// Retry once when the token expired mid-flight.
	if !env.Success && isTokenError(env.Errors) {
		if err := c.refreshToken(); err != nil {
			return nil, fmt.Errorf("failed to refresh token after expiry: %w", err)
		}
		env, err = c.doAuthenticatedRequest(method, path, body)
		if err != nil {
			return nil, err
		}
	}

	if !env.Success {
		return nil, fmt.Errorf("marketo API error: %v", env.Errors)
	}
	return env, nil
}

func (c *Client) doAuthenticatedRequest(method, path string, body []byte) (*envelope, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, c.apiEndpoint+"/v1/"+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token.Value)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("marketo API error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &env, nil
}

func (c *Client) refreshToken() error {
	query := url.Values{}
	query.Set("grant_type", "client_credentials")
	query.Set("client_id", c.clientID)
	query.Set("client_secret", c.clientSecret)

	resp, err := c.client.Get(c.identityEndpoint + "/oauth/token?" + query.Encode())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("token request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return err
	}

	c.token = accessToken{
		Value:     tokenResp.AccessToken,
		ExpiresAt: time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
	}
	log.Println("[marketo] Access token acquired")
	return nil
}

func isTokenError(errs []envelopeError) bool {
	for _, e := range errs {
		if e.Code == errCodeTokenExpired || e.Code == errCodeTokenInvalid {
			return true
		}
	}
	return false
}

// pluralize builds the REST collection name ("company" -> "companies",
// "opportunities/role" -> "opportunities/roles").
func pluralize(name string) string {
	if strings.HasSuffix(name, "y") {
		return name[:len(name)-1] + "ies"
	}
	return name + "s"
}
