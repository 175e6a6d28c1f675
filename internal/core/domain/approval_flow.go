package domain

import "time"

// FlowStatus indicates the lifecycle state of an approval flow.
type FlowStatus string

const (
	FlowActive     FlowStatus = "ACTIVE"
	FlowCompleted  FlowStatus = "COMPLETED"
	FlowCancelled  FlowStatus = "CANCELLED"
	FlowSuperseded FlowStatus = "SUPERSEDED" // Reset by a revert; signatures kept for audit
)

// OfficerKind distinguishes officers snapshotted from a concrete user reference
// from those resolved out of a role reference at flow-creation time.
type OfficerKind string

const (
	OfficerUser OfficerKind = "USER"
	OfficerRole OfficerKind = "ROLE"
)

// OfficerObligation tags an officer as mandatory or quorum-only.
type OfficerObligation string

const (
	MustSign OfficerObligation = "MUST_SIGN"
	CanSign  OfficerObligation = "CAN_SIGN"
)

// Officer is one eligible signer of an approval flow. Role references are
// resolved to concrete users when the flow is created; RoleID records the
// provenance of that snapshot.
type Officer struct {
	Kind          OfficerKind       `json:"kind"`
	UserID        string            `json:"userID"`
	UserName      string            `json:"userName"`
	RoleID        string            `json:"roleID,omitempty"` // Set when Kind == ROLE
	Obligation    OfficerObligation `json:"obligation"`
	IsSigned      bool              `json:"isSigned"`
	SubstituteFor string            `json:"substituteFor,omitempty"` // UserID of the officer signed for
}

// Signature is one append-only signature record on a flow.
type Signature struct {
	UserID        string    `json:"userID"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	SignedAt      time.Time `json:"signedAt"`
	SignatureType string    `json:"signatureType"`
	Notes         string    `json:"notes"`
	SignatureHash string    `json:"signatureHash"`
}

// FlowSubStep is an ordered sub-step of a single flow, used when one step
// itself requires sequential sub-approval by a subset of the flow's officers.
type FlowSubStep struct {
	Order         int       `json:"order"`
	Name          string    `json:"name"`
	Officers      []Officer `json:"officers"`
	MinSignatures int       `json:"minSignatures"`
}

// ApprovalFlow tracks the required signers and collected signatures for one
// step of one document's approval process.
type ApprovalFlow struct {
	FlowID        string        `json:"flowID"`       // Primary Key (UUID), immutable
	ObjectType    string        `json:"objectType"`   // Composite key "{document_kind}_{step}"
	ObjectSource  string        `json:"objectSource"` // Owning document kind
	ObjectID      string        `json:"objectID"`     // Concrete document instance
	StepType      string        `json:"stepType"`     // "a", "b", "c", ...
	Name          string        `json:"name"`         // Denormalized from the template at creation
	Description   string        `json:"description"`
	Officers      []Officer     `json:"officers"`
	Steps         []FlowSubStep `json:"steps,omitempty"`
	MinSignatures int           `json:"minSignatures"`
	Signatures    []Signature   `json:"signatures"`
	IsCompleted   bool          `json:"isCompleted"`
	Status        FlowStatus    `json:"status"`
	CompletedAt   *time.Time    `json:"completedAt,omitempty"`
	AuditFields
}

// StepBefore reports whether step a orders strictly before step b.
// Step types follow the a < b < c lexical convention.
func StepBefore(a, b string) bool {
	return a < b
}

// FindOfficer returns the officer entry for the given user, if any.
func (f *ApprovalFlow) FindOfficer(userID string) *Officer {
	for i := range f.Officers {
		if f.Officers[i].UserID == userID {
			return &f.Officers[i]
		}
	}
	return nil
}

// HasSigned reports whether the given user already holds a signature on the flow.
func (f *ApprovalFlow) HasSigned(userID string) bool {
	for _, sig := range f.Signatures {
		if sig.UserID == userID {
			return true
		}
	}
	return false
}

// QuorumMet reports whether the flow-level quorum and every sub-step quorum
// are satisfied: the signature count has reached MinSignatures, every
// must-sign officer has signed, and each sub-step meets the same conditions
// over its own officer subset. Signatures by substitutes count for the
// officer they substitute.
func (f *ApprovalFlow) QuorumMet() bool {
	signedBy := f.signedBy()
	if !quorumSatisfied(f.Officers, f.MinSignatures, signedBy) {
		return false
	}
	for i := range f.Steps {
		if !f.Steps[i].quorumMet(signedBy) {
			return false
		}
	}
	return true
}

// ActiveSubStep returns the lowest-ordered sub-step whose quorum is not yet
// satisfied, or nil when the flow has no sub-steps or all are satisfied.
func (f *ApprovalFlow) ActiveSubStep() *FlowSubStep {
	signedBy := f.signedBy()
	var active *FlowSubStep
	for i := range f.Steps {
		ss := &f.Steps[i]
		if ss.quorumMet(signedBy) {
			continue
		}
		if active == nil || ss.Order < active.Order {
			active = ss
		}
	}
	return active
}

// FindOfficer returns the sub-step's officer entry for the given user, if any.
func (ss *FlowSubStep) FindOfficer(userID string) *Officer {
	for i := range ss.Officers {
		if ss.Officers[i].UserID == userID {
			return &ss.Officers[i]
		}
	}
	return nil
}

func (ss *FlowSubStep) quorumMet(signedBy map[string]bool) bool {
	return quorumSatisfied(ss.Officers, ss.MinSignatures, signedBy)
}

// signedBy returns the set of user IDs holding a signature on the flow.
func (f *ApprovalFlow) signedBy() map[string]bool {
	set := make(map[string]bool, len(f.Signatures))
	for _, sig := range f.Signatures {
		set[sig.UserID] = true
	}
	return set
}

// quorumSatisfied reports whether the officer set reached min signatures and
// every must-sign officer in it has signed, directly or via a substitute.
func quorumSatisfied(officers []Officer, min int, signedBy map[string]bool) bool {
	signed := 0
	for _, off := range officers {
		if signedBy[off.UserID] {
			signed++
		}
	}
	if signed < min {
		return false
	}
	for _, off := range officers {
		if off.Obligation != MustSign {
			continue
		}
		if !off.IsSigned && !signedBy[off.UserID] && !substituteSignedFor(officers, off.UserID, signedBy) {
			return false
		}
	}
	return true
}

// substituteSignedFor reports whether some officer in the set signed as
// substitute for the given mandatory officer.
func substituteSignedFor(officers []Officer, userID string, signedBy map[string]bool) bool {
	for _, off := range officers {
		if off.SubstituteFor == userID && signedBy[off.UserID] {
			return true
		}
	}
	return false
}

// SignaturesCount returns the number of collected signatures.
func (f *ApprovalFlow) SignaturesCount() int {
	return len(f.Signatures)
}
