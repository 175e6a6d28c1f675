package models

// TemplateOfficer is the stored form of an officer reference in a template.
type TemplateOfficer struct {
	Kind          string `json:"kind"`
	UserID        string `json:"user_id,omitempty"`
	RoleID        string `json:"role_id,omitempty"`
	Obligation    string `json:"obligation"`
	SubstituteFor string `json:"substitute_for,omitempty"`
}

// TemplateSubStep is the stored form of one configured sub-step.
type TemplateSubStep struct {
	Order         int               `json:"order"`
	Name          string            `json:"name"`
	Officers      []TemplateOfficer `json:"officers"`
	MinSignatures int               `json:"min_signatures"`
}

// TemplateStep is the stored form of one configured approval step.
type TemplateStep struct {
	StepType      string            `json:"step_type"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	MinSignatures int               `json:"min_signatures"`
	Officers      []TemplateOfficer `json:"officers"`
	SubSteps      []TemplateSubStep `json:"sub_steps,omitempty"`
}

// FlowTemplate is the stored per-document-kind flow configuration. Steps live
// in a jsonb column keyed by the document kind.
type FlowTemplate struct {
	Kind  string         `json:"kind"` // Primary Key
	Steps []TemplateStep `json:"steps"`
	AuditFields
}
