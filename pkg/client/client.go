// Package client is a session-scoped façade over the approval HTTP API,
// bound to one document. It caches the document's flows, exposes pure query
// helpers over the cache, and reloads after every successful mutation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/procflow/approval_flow_app/internal/dto"
)

// Notifier receives the user-facing outcome of each mutation. The UI shows
// these directly; the façade never retries a failed call.
type Notifier interface {
	NotifySuccess(message string)
	NotifyFailure(message string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) NotifySuccess(string) {}
func (NopNotifier) NotifyFailure(string) {}

// Options configures an ApprovalFlowClient.
type Options struct {
	// BaseURL is the API root, e.g. "https://host/api/v1".
	BaseURL string
	// Token is the bearer token forwarded on every request.
	Token string
	// AutoCreate makes the first empty load trigger CreateFlows once.
	AutoCreate bool
	// HTTPClient overrides the default client (30s timeout).
	HTTPClient *http.Client
	// Notifier receives mutation outcomes. Defaults to NopNotifier.
	Notifier Notifier
}

// ApprovalFlowClient is bound to one (docType, docID) pair. Its mutation
// methods are meant to be called from UI event handlers; the boolean flags
// let the caller disable controls while a call is in flight, they do not
// queue or coalesce overlapping calls.
type ApprovalFlowClient struct {
	baseURL    string
	token      string
	docType    string
	docID      string
	autoCreate bool
	httpClient *http.Client
	notifier   Notifier

	mu                 sync.RWMutex
	flows              []dto.FlowResponse
	loading            bool
	signing            bool
	canceling          bool
	reverting          bool
	hasAttemptedCreate bool
}

// New creates a façade bound to one document.
func New(docType, docID string, opts Options) *ApprovalFlowClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ApprovalFlowClient{
		baseURL:    opts.BaseURL,
		token:      opts.Token,
		docType:    docType,
		docID:      docID,
		autoCreate: opts.AutoCreate,
		httpClient: httpClient,
		notifier:   notifier,
	}
}

func (c *ApprovalFlowClient) documentURL(suffix string) string {
	return fmt.Sprintf("%s/approval/%s/%s%s", c.baseURL, c.docType, c.docID, suffix)
}

// do performs one request and decodes the response into out (when non-nil).
// Non-2xx responses are returned as an error carrying the body's detail.
func (c *ApprovalFlowClient) do(ctx context.Context, method, url string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if detail := errorDetail(respBody); detail != "" {
			return fmt.Errorf("%s", detail)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// errorDetail extracts the detail of a failure body. Servers send detail
// either as a plain string or as an object carrying a message field.
func errorDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Detail, &obj); err == nil {
		return obj.Message
	}
	return ""
}

// LoadFlows fetches the document's flows and replaces the whole cache
// atomically. When AutoCreate is on and the first load returns no flows,
// CreateFlows is attempted exactly once.
func (c *ApprovalFlowClient) LoadFlows(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	var flows []dto.FlowResponse
	if err := c.do(ctx, http.MethodGet, c.documentURL("/approval-flows"), nil, &flows); err != nil {
		return err
	}

	c.mu.Lock()
	c.flows = flows
	shouldCreate := c.autoCreate && len(flows) == 0 && !c.hasAttemptedCreate
	c.mu.Unlock()

	if shouldCreate {
		return c.CreateFlows(ctx)
	}
	return nil
}

// CreateFlows asks the backend to fan out the document's flows, then reloads.
// The one-shot attempt flag guards against retrying forever when creation
// legitimately yields zero flows.
func (c *ApprovalFlowClient) CreateFlows(ctx context.Context) error {
	c.mu.Lock()
	c.hasAttemptedCreate = true
	c.mu.Unlock()

	var resp dto.CreateFlowsResponse
	if err := c.do(ctx, http.MethodPost, c.documentURL("/create-approval-flows"), nil, &resp); err != nil {
		c.notifier.NotifyFailure(err.Error())
		return err
	}

	c.mu.Lock()
	c.flows = resp.Flows
	c.mu.Unlock()
	return nil
}

// SignDocument signs one step and reloads the flows on success.
func (c *ApprovalFlowClient) SignDocument(ctx context.Context, stepType, notes string, substituteConfirmed bool) error {
	c.mu.Lock()
	c.signing = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.signing = false
		c.mu.Unlock()
	}()

	body := dto.SignFlowRequest{
		Notes:               notes,
		SubstituteConfirmed: substituteConfirmed,
	}
	var resp dto.MessageResponse
	if err := c.do(ctx, http.MethodPost, c.documentURL("/sign/"+stepType), body, &resp); err != nil {
		c.notifier.NotifyFailure(err.Error())
		return err
	}

	c.notifier.NotifySuccess(resp.Message)
	return c.LoadFlows(ctx)
}

// CancelDocument cancels the document's approval process and reloads on success.
func (c *ApprovalFlowClient) CancelDocument(ctx context.Context, reason string) error {
	c.mu.Lock()
	c.canceling = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.canceling = false
		c.mu.Unlock()
	}()

	var resp dto.MessageResponse
	if err := c.do(ctx, http.MethodPost, c.documentURL("/cancel"), dto.CancelDocumentRequest{Reason: reason}, &resp); err != nil {
		c.notifier.NotifyFailure(err.Error())
		return err
	}

	c.notifier.NotifySuccess(resp.Message)
	return c.LoadFlows(ctx)
}

// RevertToSection reverts the document to the target step and reloads on success.
func (c *ApprovalFlowClient) RevertToSection(ctx context.Context, stepType, reason string) error {
	c.mu.Lock()
	c.reverting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.reverting = false
		c.mu.Unlock()
	}()

	var resp dto.MessageResponse
	if err := c.do(ctx, http.MethodPost, c.documentURL("/revert/"+stepType), dto.RevertDocumentRequest{Reason: reason}, &resp); err != nil {
		c.notifier.NotifyFailure(err.Error())
		return err
	}

	c.notifier.NotifySuccess(resp.Message)
	return c.LoadFlows(ctx)
}

// Flows returns a copy of the cached flows.
func (c *ApprovalFlowClient) Flows() []dto.FlowResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	flows := make([]dto.FlowResponse, len(c.flows))
	copy(flows, c.flows)
	return flows
}

// IsLoading reports whether a load is in flight.
func (c *ApprovalFlowClient) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// IsSigning reports whether a sign call is in flight.
func (c *ApprovalFlowClient) IsSigning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.signing
}

// IsCanceling reports whether a cancel call is in flight.
func (c *ApprovalFlowClient) IsCanceling() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.canceling
}

// IsReverting reports whether a revert call is in flight.
func (c *ApprovalFlowClient) IsReverting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reverting
}

// GetFlowByType returns the cached flow for a step, or nil when absent.
func (c *ApprovalFlowClient) GetFlowByType(stepType string) *dto.FlowResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.flows {
		if c.flows[i].StepType == stepType {
			flow := c.flows[i]
			return &flow
		}
	}
	return nil
}

// CanSignFlow reports whether the user is an officer of the step's flow who
// has not signed yet, over the cache only.
func (c *ApprovalFlowClient) CanSignFlow(stepType, userID string) bool {
	flow := c.GetFlowByType(stepType)
	if flow == nil || flow.IsCompleted {
		return false
	}
	for _, officer := range flow.Officers {
		if officer.UserID == userID {
			return !officer.IsSigned
		}
	}
	return false
}

// IsFlowCompleted reports the cached completion state of a step.
func (c *ApprovalFlowClient) IsFlowCompleted(stepType string) bool {
	flow := c.GetFlowByType(stepType)
	return flow != nil && flow.IsCompleted
}

// GetSignaturesCount returns the cached signature count of a step.
func (c *ApprovalFlowClient) GetSignaturesCount(stepType string) int {
	flow := c.GetFlowByType(stepType)
	if flow == nil {
		return 0
	}
	return len(flow.Signatures)
}
