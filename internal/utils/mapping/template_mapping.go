package mapping

import (
	"github.com/procflow/approval_flow_app/internal/core/domain"
	"github.com/procflow/approval_flow_app/internal/models"
)

func toDomainTemplateOfficers(m []models.TemplateOfficer) []domain.TemplateOfficer {
	officers := make([]domain.TemplateOfficer, len(m))
	for i, o := range m {
		officers[i] = domain.TemplateOfficer{
			Kind:          domain.OfficerKind(o.Kind),
			UserID:        o.UserID,
			RoleID:        o.RoleID,
			Obligation:    domain.OfficerObligation(o.Obligation),
			SubstituteFor: o.SubstituteFor,
		}
	}
	return officers
}

// ToDomainTemplate converts a model FlowTemplate to a domain FlowTemplate
func ToDomainTemplate(m models.FlowTemplate) domain.FlowTemplate {
	steps := make([]domain.TemplateStep, len(m.Steps))
	for i, st := range m.Steps {
		var subSteps []domain.TemplateSubStep
		for _, sub := range st.SubSteps {
			subSteps = append(subSteps, domain.TemplateSubStep{
				Order:         sub.Order,
				Name:          sub.Name,
				Officers:      toDomainTemplateOfficers(sub.Officers),
				MinSignatures: sub.MinSignatures,
			})
		}
		steps[i] = domain.TemplateStep{
			StepType:      st.StepType,
			Name:          st.Name,
			Description:   st.Description,
			MinSignatures: st.MinSignatures,
			Officers:      toDomainTemplateOfficers(st.Officers),
			SubSteps:      subSteps,
		}
	}
	return domain.FlowTemplate{
		Kind:        m.Kind,
		Steps:       steps,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
