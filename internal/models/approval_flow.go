package models

import "time"

// FlowStatus indicates the lifecycle state of a stored approval flow.
type FlowStatus string

const (
	FlowActive     FlowStatus = "ACTIVE"
	FlowCompleted  FlowStatus = "COMPLETED"
	FlowCancelled  FlowStatus = "CANCELLED"
	FlowSuperseded FlowStatus = "SUPERSEDED"
)

// Officer is the stored form of one eligible signer. Officer lists live in a
// jsonb column on the flow row; these json tags define the storage format.
type Officer struct {
	Kind          string `json:"kind"`
	UserID        string `json:"user_id"`
	UserName      string `json:"user_name"`
	RoleID        string `json:"role_id,omitempty"`
	Obligation    string `json:"obligation"`
	IsSigned      bool   `json:"is_signed"`
	SubstituteFor string `json:"substitute_for,omitempty"`
}

// Signature is the stored form of one signature record.
type Signature struct {
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	SignedAt      time.Time `json:"signed_at"`
	SignatureType string    `json:"signature_type"`
	Notes         string    `json:"notes"`
	SignatureHash string    `json:"signature_hash"`
}

// FlowSubStep is the stored form of one sequential sub-step.
type FlowSubStep struct {
	Order         int       `json:"order"`
	Name          string    `json:"name"`
	Officers      []Officer `json:"officers"`
	MinSignatures int       `json:"min_signatures"`
}

// ApprovalFlow is the stored form of one approval flow. Exactly one
// non-deleted row exists per (object_source, object_id, step_type).
type ApprovalFlow struct {
	FlowID        string        `json:"flowID"` // Primary Key (UUID)
	ObjectType    string        `json:"objectType"`
	ObjectSource  string        `json:"objectSource"`
	ObjectID      string        `json:"objectID"`
	StepType      string        `json:"stepType"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Officers      []Officer     `json:"officers"`        // jsonb
	Steps         []FlowSubStep `json:"steps,omitempty"` // jsonb
	MinSignatures int           `json:"minSignatures"`
	Signatures    []Signature   `json:"signatures"` // jsonb, append-only
	IsCompleted   bool          `json:"isCompleted"`
	Status        FlowStatus    `json:"status"`
	CompletedAt   *time.Time    `json:"completedAt,omitempty"`
	AuditFields
}
