package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procflow/approval_flow_app/internal/dto"
	"github.com/procflow/approval_flow_app/pkg/client"
)

// recordingNotifier collects notifications for assertions.
type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *recordingNotifier) NotifySuccess(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) NotifyFailure(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, message)
}

// approvalServer is a minimal fake backend recording the calls it receives.
type approvalServer struct {
	mu          sync.Mutex
	flows            []dto.FlowResponse
	createCalls      int
	signCalls        int
	signStatus       int
	signDetail       string
	signDetailObject bool
}

func (s *approvalServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/approval/docfunda/doc-1/approval-flows", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.flows)
	})
	mux.HandleFunc("POST /api/v1/approval/docfunda/doc-1/create-approval-flows", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.createCalls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(dto.CreateFlowsResponse{Message: "Approval flows created", Flows: s.flows})
	})
	mux.HandleFunc("POST /api/v1/approval/docfunda/doc-1/sign/a", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.signCalls++
		w.Header().Set("Content-Type", "application/json")
		if s.signStatus != 0 && s.signStatus != http.StatusOK {
			w.WriteHeader(s.signStatus)
			if s.signDetailObject {
				_ = json.NewEncoder(w).Encode(map[string]any{"detail": map[string]string{"message": s.signDetail}})
				return
			}
			_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Detail: s.signDetail})
			return
		}
		_ = json.NewEncoder(w).Encode(dto.MessageResponse{Message: "Documentul a fost semnat"})
	})
	return mux
}

func stepFlow(id, stepType string, completed bool, signatures int) dto.FlowResponse {
	sigs := make([]dto.SignatureResponse, signatures)
	for i := range sigs {
		sigs[i] = dto.SignatureResponse{UserID: "user-1"}
	}
	return dto.FlowResponse{
		ID:          id,
		StepType:    stepType,
		IsCompleted: completed,
		Officers: []dto.OfficerResponse{
			{UserID: "user-1", IsSigned: signatures > 0},
			{UserID: "user-2"},
		},
		Signatures: sigs,
	}
}

func newTestClient(t *testing.T, srv *approvalServer, autoCreate bool, notifier client.Notifier) (*client.ApprovalFlowClient, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)

	opts := client.Options{
		BaseURL:    ts.URL + "/api/v1",
		Token:      "test-token",
		AutoCreate: autoCreate,
		Notifier:   notifier,
	}
	return client.New("docfunda", "doc-1", opts), ts
}

func TestLoadFlows_ReplacesCache(t *testing.T) {
	srv := &approvalServer{flows: []dto.FlowResponse{
		stepFlow("flow-a", "a", true, 1),
		stepFlow("flow-b", "b", false, 0),
	}}
	c, _ := newTestClient(t, srv, false, nil)

	require.NoError(t, c.LoadFlows(context.Background()))

	flows := c.Flows()
	require.Len(t, flows, 2)
	assert.Equal(t, "flow-a", flows[0].ID)
	assert.False(t, c.IsLoading())
}

func TestLoadFlows_AutoCreateFiresOnce(t *testing.T) {
	srv := &approvalServer{flows: []dto.FlowResponse{}}
	c, _ := newTestClient(t, srv, true, nil)

	require.NoError(t, c.LoadFlows(context.Background()))
	// A second empty load must not re-trigger creation.
	require.NoError(t, c.LoadFlows(context.Background()))

	assert.Equal(t, 1, srv.createCalls)
}

func TestLoadFlows_NoAutoCreateWhenDisabled(t *testing.T) {
	srv := &approvalServer{flows: []dto.FlowResponse{}}
	c, _ := newTestClient(t, srv, false, nil)

	require.NoError(t, c.LoadFlows(context.Background()))

	assert.Zero(t, srv.createCalls)
}

func TestSignDocument_SuccessNotifiesAndReloads(t *testing.T) {
	notifier := &recordingNotifier{}
	srv := &approvalServer{flows: []dto.FlowResponse{stepFlow("flow-a", "a", true, 1)}}
	c, _ := newTestClient(t, srv, false, notifier)

	require.NoError(t, c.SignDocument(context.Background(), "a", "verificat", false))

	assert.Equal(t, 1, srv.signCalls)
	require.Len(t, notifier.successes, 1)
	assert.Equal(t, "Documentul a fost semnat", notifier.successes[0])
	// The reload after the mutation refreshed the cache.
	assert.True(t, c.IsFlowCompleted("a"))
	assert.False(t, c.IsSigning())
}

func TestSignDocument_FailureSurfacesDetailWithoutRetry(t *testing.T) {
	notifier := &recordingNotifier{}
	srv := &approvalServer{
		flows:      []dto.FlowResponse{stepFlow("flow-a", "a", false, 0)},
		signStatus: http.StatusConflict,
		signDetail: "caller has already signed this flow",
	}
	c, _ := newTestClient(t, srv, false, notifier)

	err := c.SignDocument(context.Background(), "a", "", false)

	require.Error(t, err)
	assert.Equal(t, 1, srv.signCalls)
	require.Len(t, notifier.failures, 1)
	assert.Equal(t, "caller has already signed this flow", notifier.failures[0])
	// The cache is untouched on failure.
	assert.Empty(t, c.Flows())
}

func TestSignDocument_FailureSurfacesObjectFormDetail(t *testing.T) {
	notifier := &recordingNotifier{}
	srv := &approvalServer{
		flows:            []dto.FlowResponse{stepFlow("flow-a", "a", false, 0)},
		signStatus:       http.StatusForbidden,
		signDetail:       "substitute signing must be confirmed",
		signDetailObject: true,
	}
	c, _ := newTestClient(t, srv, false, notifier)

	err := c.SignDocument(context.Background(), "a", "", false)

	// Some backends wrap detail in an object with a message field.
	require.Error(t, err)
	require.Len(t, notifier.failures, 1)
	assert.Equal(t, "substitute signing must be confirmed", notifier.failures[0])
}

func TestQueryHelpers_TolerateEmptyCache(t *testing.T) {
	c := client.New("docfunda", "doc-1", client.Options{BaseURL: "http://unused"})

	assert.Nil(t, c.GetFlowByType("a"))
	assert.False(t, c.CanSignFlow("a", "user-1"))
	assert.False(t, c.IsFlowCompleted("a"))
	assert.Zero(t, c.GetSignaturesCount("a"))
}

func TestQueryHelpers_DeriveFromCache(t *testing.T) {
	srv := &approvalServer{flows: []dto.FlowResponse{
		stepFlow("flow-a", "a", true, 2),
		stepFlow("flow-b", "b", false, 0),
	}}
	c, _ := newTestClient(t, srv, false, nil)
	require.NoError(t, c.LoadFlows(context.Background()))

	flowA := c.GetFlowByType("a")
	require.NotNil(t, flowA)
	assert.Equal(t, "flow-a", flowA.ID)

	assert.Equal(t, 2, c.GetSignaturesCount("a"))
	assert.True(t, c.IsFlowCompleted("a"))
	assert.False(t, c.IsFlowCompleted("b"))

	// user-1 signed step b? No signatures there, and they are an officer.
	assert.True(t, c.CanSignFlow("b", "user-1"))
	// Completed flows are not signable.
	assert.False(t, c.CanSignFlow("a", "user-2"))
	// Non-officers cannot sign.
	assert.False(t, c.CanSignFlow("b", "user-necunoscut"))
}
