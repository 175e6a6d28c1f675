package domain

// TemplateOfficer is an officer reference inside a flow template: either a
// concrete user or a role whose members are snapshotted at flow creation.
type TemplateOfficer struct {
	Kind       OfficerKind       `json:"kind"`
	UserID     string            `json:"userID,omitempty"`
	RoleID     string            `json:"roleID,omitempty"`
	Obligation OfficerObligation `json:"obligation"`
	// SubstituteFor names the user this officer may sign for. User
	// references only; their signing needs an explicit confirmation.
	SubstituteFor string `json:"substituteFor,omitempty"`
}

// TemplateSubStep configures one sequential sub-step of a template step.
type TemplateSubStep struct {
	Order         int               `json:"order"`
	Name          string            `json:"name"`
	Officers      []TemplateOfficer `json:"officers"`
	MinSignatures int               `json:"minSignatures"`
}

// TemplateStep configures one approval step of a document kind.
type TemplateStep struct {
	StepType      string            `json:"stepType"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	MinSignatures int               `json:"minSignatures"`
	Officers      []TemplateOfficer `json:"officers"`
	SubSteps      []TemplateSubStep `json:"subSteps,omitempty"`
}

// FlowTemplate is the per-document-kind configuration the create action fans
// out into one ApprovalFlow per step.
type FlowTemplate struct {
	Kind  string         `json:"kind"` // Document kind, e.g. "docfunda"
	Steps []TemplateStep `json:"steps"`
	AuditFields
}
