package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	LogoPreferenceExclusive    = "exclusive"
	LogoPreferenceKeepExisting = "keep_existing"
)

// Answers offered by the prior experience screen. Stored verbatim.
const (
	PriorExperienceYes = "Sim, já oferecemos."
	PriorExperienceNo  = "Não, é a primeira vez."
)

// ContactInfo is stored as a JSON object in the contact_info column.
type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (c ContactInfo) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *ContactInfo) Scan(src any) error {
	return scanJSON(src, c)
}

// FileList holds the public URLs of uploaded attachments, stored as a JSON array.
type FileList []string

func (f FileList) Value() (driver.Value, error) {
	if f == nil {
		f = FileList{}
	}
	b, err := json.Marshal([]string(f))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *FileList) Scan(src any) error {
	var urls []string
	err := scanJSON(src, &urls)
	if err != nil {
		return err
	}
	*f = urls
	return nil
}

// Briefing is a submitted intake form. JSON names follow the form client,
// db names the briefings table.
type Briefing struct {
	ID                  int64       `db:"id" json:"id,omitempty"`
	CompanyName         string      `db:"company_name" json:"companyName"`
	ContactInfo         ContactInfo `db:"contact_info" json:"contactInfo"`
	TargetAudience      string      `db:"target_audience" json:"targetAudience"`
	Slogans             string      `db:"slogans" json:"slogans"`
	PriorExperience     string      `db:"prior_experience" json:"priorExperience"`
	LaunchEventDate     string      `db:"launch_event_date" json:"launchEventDate"`
	FilesLink           *string     `db:"files_link" json:"filesLink,omitempty"`
	VisualIdentityFiles FileList    `db:"visual_identity_files" json:"visualIdentityFiles"`
	LogoPreference      string      `db:"logo_preference" json:"logoPreference"`
	ColorsTypography    string      `db:"colors_typography" json:"colorsTypography"`
	ReferenceLinks      string      `db:"reference_links" json:"reference_links"`
	Expectations        string      `db:"expectations" json:"expectations"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at,omitzero"`
}

// NewBriefing returns an empty draft with the form defaults.
func NewBriefing() *Briefing {
	return &Briefing{
		VisualIdentityFiles: FileList{},
		LogoPreference:      LogoPreferenceExclusive,
	}
}

// Clone returns a deep copy, used to freeze a draft before persisting it.
func (b *Briefing) Clone() *Briefing {
	c := *b
	if b.FilesLink != nil {
		link := *b.FilesLink
		c.FilesLink = &link
	}
	c.VisualIdentityFiles = append(FileList{}, b.VisualIdentityFiles...)
	return &c
}

// FilesLinkValue returns the optional files link or "".
func (b *Briefing) FilesLinkValue() string {
	if b.FilesLink == nil {
		return ""
	}
	return *b.FilesLink
}

func (b *Briefing) HasExclusiveLogo() bool {
	return b.LogoPreference == LogoPreferenceExclusive
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
}
