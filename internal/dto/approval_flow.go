package dto

import (
	"time"

	"github.com/procflow/approval_flow_app/internal/core/domain"
)

// StepTypeParam binds the step-type path parameter of the sign and
// signature-removal endpoints.
type StepTypeParam struct {
	StepType string `uri:"stepType" binding:"required,steptype"`
}

// RevertSectionParam binds the target-step path parameter of the revert endpoint.
type RevertSectionParam struct {
	Section string `uri:"section" binding:"required,steptype"`
}

// SignFlowRequest is the body of the sign endpoint.
type SignFlowRequest struct {
	Notes               string `json:"notes"`
	SignatureType       string `json:"signature_type"`
	SubstituteConfirmed bool   `json:"substitute_confirmed"`
	// SkipStepCheck bypasses the prior-step-completed check. Admin callers only.
	SkipStepCheck bool `json:"skip_step_check,omitempty"`
}

// CancelDocumentRequest is the body of the cancel endpoint.
type CancelDocumentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RevertDocumentRequest is the body of the revert endpoint.
type RevertDocumentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// MessageResponse carries a short human-readable message suitable for direct display.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the failure body of every mutation endpoint.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// CreateFlowsResponse is returned by the create-approval-flows endpoint.
type CreateFlowsResponse struct {
	Message string         `json:"message"`
	Flows   []FlowResponse `json:"flows,omitempty"`
}

// OfficerResponse is the wire representation of one eligible signer.
type OfficerResponse struct {
	Kind          string `json:"kind"`
	UserID        string `json:"user_id"`
	UserName      string `json:"user_name"`
	RoleID        string `json:"role_id,omitempty"`
	Obligation    string `json:"obligation"`
	IsSigned      bool   `json:"is_signed"`
	SubstituteFor string `json:"substitute_for,omitempty"`
}

// SignatureResponse is the wire representation of one signature record.
type SignatureResponse struct {
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	SignedAt      time.Time `json:"signed_at"`
	SignatureType string    `json:"signature_type"`
	Notes         string    `json:"notes"`
	SignatureHash string    `json:"signature_hash"`
}

// SubStepResponse is the wire representation of one sequential sub-step.
type SubStepResponse struct {
	Order         int               `json:"order"`
	Name          string            `json:"name"`
	Officers      []OfficerResponse `json:"officers"`
	MinSignatures int               `json:"min_signatures"`
}

// FlowResponse is the wire representation of an approval flow.
type FlowResponse struct {
	ID            string              `json:"id"`
	ObjectType    string              `json:"object_type"`
	ObjectSource  string              `json:"object_source"`
	ObjectID      string              `json:"object_id"`
	StepType      string              `json:"step_type"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Officers      []OfficerResponse   `json:"officers"`
	Steps         []SubStepResponse   `json:"steps,omitempty"`
	MinSignatures int                 `json:"min_signatures"`
	Signatures    []SignatureResponse `json:"signatures"`
	IsCompleted   bool                `json:"is_completed"`
	Status        string              `json:"status"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	CreatedBy     string              `json:"created_by"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ToOfficerResponse converts a domain.Officer to its wire form.
func ToOfficerResponse(o domain.Officer) OfficerResponse {
	return OfficerResponse{
		Kind:          string(o.Kind),
		UserID:        o.UserID,
		UserName:      o.UserName,
		RoleID:        o.RoleID,
		Obligation:    string(o.Obligation),
		IsSigned:      o.IsSigned,
		SubstituteFor: o.SubstituteFor,
	}
}

// ToOfficerResponses converts a slice of domain.Officer to wire form.
func ToOfficerResponses(officers []domain.Officer) []OfficerResponse {
	responses := make([]OfficerResponse, len(officers))
	for i, o := range officers {
		responses[i] = ToOfficerResponse(o)
	}
	return responses
}

// ToSignatureResponse converts a domain.Signature to its wire form.
func ToSignatureResponse(s domain.Signature) SignatureResponse {
	return SignatureResponse{
		UserID:        s.UserID,
		Username:      s.Username,
		Email:         s.Email,
		SignedAt:      s.SignedAt,
		SignatureType: s.SignatureType,
		Notes:         s.Notes,
		SignatureHash: s.SignatureHash,
	}
}

// ToFlowResponse converts a domain.ApprovalFlow to its wire form.
// Signature order is preserved exactly.
func ToFlowResponse(f *domain.ApprovalFlow) FlowResponse {
	signatures := make([]SignatureResponse, len(f.Signatures))
	for i, s := range f.Signatures {
		signatures[i] = ToSignatureResponse(s)
	}
	var steps []SubStepResponse
	for _, st := range f.Steps {
		steps = append(steps, SubStepResponse{
			Order:         st.Order,
			Name:          st.Name,
			Officers:      ToOfficerResponses(st.Officers),
			MinSignatures: st.MinSignatures,
		})
	}
	return FlowResponse{
		ID:            f.FlowID,
		ObjectType:    f.ObjectType,
		ObjectSource:  f.ObjectSource,
		ObjectID:      f.ObjectID,
		StepType:      f.StepType,
		Name:          f.Name,
		Description:   f.Description,
		Officers:      ToOfficerResponses(f.Officers),
		Steps:         steps,
		MinSignatures: f.MinSignatures,
		Signatures:    signatures,
		IsCompleted:   f.IsCompleted,
		Status:        string(f.Status),
		CompletedAt:   f.CompletedAt,
		CreatedAt:     f.CreatedAt,
		CreatedBy:     f.CreatedBy,
		UpdatedAt:     f.LastUpdatedAt,
	}
}

// ToFlowResponses converts a slice of domain.ApprovalFlow to wire form.
func ToFlowResponses(flows []domain.ApprovalFlow) []FlowResponse {
	responses := make([]FlowResponse, len(flows))
	for i := range flows {
		responses[i] = ToFlowResponse(&flows[i])
	}
	return responses
}
