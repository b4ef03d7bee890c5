package wizard

import (
	"strings"

	"github.com/majupersonalizados/briefing/internal/model"
)

// Screens of the briefing form, in order.
const (
	StepCompany = iota
	StepContact
	StepAudience
	StepSlogans
	StepExperience
	StepLaunch
	StepFilesLink
	StepUploads
	StepIdentity
	StepReferences
	StepReview

	TotalSteps = StepReview + 1
	LastStep   = StepReview
)

var stepTitles = [TotalSteps]string{
	StepCompany:    "Conexão entre a Empresa e o E-commerce",
	StepContact:    "Informações de Contato",
	StepAudience:   "Público-Alvo",
	StepSlogans:    "Slogans e Propósito",
	StepExperience: "Experiência Anterior",
	StepLaunch:     "Lançamento do E-commerce",
	StepFilesLink:  "Identidade Visual",
	StepUploads:    "Envio de Materiais",
	StepIdentity:   "Logotipo e Cores",
	StepReferences: "Referências",
	StepReview:     "Expectativas e Objetivos",
}

// StepTitle returns the heading of a screen, or "" out of range.
func StepTitle(step int) string {
	if step < 0 || step >= TotalSteps {
		return ""
	}
	return stepTitles[step]
}

func filled(s string) bool {
	return strings.TrimSpace(s) != ""
}

// canAdvance is the gate of each screen over the draft.
func canAdvance(step int, b *model.Briefing, submitting bool) bool {
	switch step {
	case StepCompany:
		return filled(b.CompanyName) && filled(b.Expectations)
	case StepContact:
		return filled(b.ContactInfo.Name) && filled(b.ContactInfo.Email) && filled(b.ContactInfo.Phone)
	case StepAudience:
		return filled(b.TargetAudience)
	case StepSlogans:
		return filled(b.Slogans)
	case StepExperience:
		return filled(b.PriorExperience)
	case StepLaunch:
		return filled(b.LaunchEventDate)
	case StepFilesLink, StepUploads:
		return true
	case StepIdentity:
		return filled(b.LogoPreference) && filled(b.ColorsTypography)
	case StepReferences:
		return filled(b.ReferenceLinks)
	case StepReview:
		return !submitting
	default:
		return false
	}
}
