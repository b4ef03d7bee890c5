package wizard

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/storage"
)

var (
	ErrStepLocked       = errors.New("current step is incomplete")
	ErrAlreadySubmitted = errors.New("briefing already submitted")
	ErrFileNotFound     = errors.New("attachment not found")
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Submitter persists a frozen draft and sends the staff notification.
type Submitter interface {
	Submit(ctx context.Context, draft *model.Briefing) (*model.Briefing, error)
}

// Timing controls the simulated upload progress.
type Timing struct {
	Tick      time.Duration  // progress update interval
	Linger    time.Duration  // how long a finished task stays at 100
	Increment func() float64 // random step added per tick
}

// DefaultTiming ticks every 200ms by [0,10) and lingers 500ms.
func DefaultTiming() Timing {
	return Timing{
		Tick:      200 * time.Millisecond,
		Linger:    500 * time.Millisecond,
		Increment: randomIncrement,
	}
}

// Deps are the collaborators shared by every flow.
type Deps struct {
	Storage   storage.Storage
	Submitter Submitter
	Timing    Timing
}

// Flow is one visitor's pass through the briefing form.
type Flow struct {
	deps Deps

	mu         sync.Mutex
	step       int
	direction  int
	draft      *model.Briefing
	submitting bool
	status     Status
	started    bool
	uploads    []*model.UploadTask
	alerts     []string
}

func NewFlow(deps Deps) *Flow {
	def := DefaultTiming()
	if deps.Timing.Tick <= 0 {
		deps.Timing.Tick = def.Tick
	}
	if deps.Timing.Linger < 0 {
		deps.Timing.Linger = def.Linger
	}
	if deps.Timing.Increment == nil {
		deps.Timing.Increment = def.Increment
	}
	return &Flow{
		deps:      deps,
		direction: 1,
		draft:     model.NewBriefing(),
		status:    StatusIdle,
	}
}

// View is a consistent copy of the flow state for rendering.
type View struct {
	Step       int
	Direction  int
	Draft      *model.Briefing
	Submitting bool
	Status     Status
	Started    bool
	Uploads    []model.UploadTask
	Alerts     []string
	CanAdvance bool
}

func (v View) Title() string { return StepTitle(v.Step) }
func (v View) IsFirst() bool { return v.Step == 0 }
func (v View) IsLast() bool { return v.Step == LastStep }
func (v View) TotalSteps() int { return TotalSteps }
func (v View) HasUploads() bool { return len(v.Uploads) > 0 }

// Progress is the share of the form reached, in percent.
func (v View) Progress() int {
	return (v.Step + 1) * 100 / TotalSteps
}

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	uploads := make([]model.UploadTask, len(f.uploads))
	for i, t := range f.uploads {
		uploads[i] = *t
	}

	return View{
		Step:       f.step,
		Direction:  f.direction,
		Draft:      f.draft.Clone(),
		Submitting: f.submitting,
		Status:     f.status,
		Started:    f.started,
		Uploads:    uploads,
		Alerts:     slices.Clone(f.alerts),
		CanAdvance: canAdvance(f.step, f.draft, f.submitting),
	}
}

// DrainAlerts returns pending alerts and forgets them, so each shows once.
func (f *Flow) DrainAlerts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	alerts := f.alerts
	f.alerts = nil
	return alerts
}

func (f *Flow) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
}

func (f *Flow) CanAdvance() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return canAdvance(f.step, f.draft, f.submitting)
}

// Next moves forward when the current screen is complete. On the last
// screen it submits instead.
func (f *Flow) Next(ctx context.Context) error {
	f.mu.Lock()
	if !canAdvance(f.step, f.draft, f.submitting) {
		f.mu.Unlock()
		return ErrStepLocked
	}
	f.direction = 1
	if f.step < LastStep {
		f.step++
		f.mu.Unlock()
		return nil
	}
	f.mu.Unlock()

	return f.Submit(ctx)
}

func (f *Flow) Prev() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.direction = -1
	if f.step > 0 {
		f.step--
	}
}

// Submit persists a copy of the draft. Whatever happens to the staff email,
// a stored record means success.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrStepLocked
	}
	if f.status == StatusSuccess {
		f.mu.Unlock()
		return ErrAlreadySubmitted
	}
	f.submitting = true
	draft := f.draft.Clone()
	f.mu.Unlock()

	stored, err := f.deps.Submitter.Submit(ctx, draft)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		slog.Error("briefing submission failed", "error", err, "company", draft.CompanyName)
		f.status = StatusError
		return err
	}

	f.status = StatusSuccess
	slog.Info("briefing submitted", "id", stored.ID)
	return nil
}

// Fields carries a partial update. Nil fields are left untouched.
type Fields struct {
	CompanyName      *string
	Expectations     *string
	ContactName      *string
	ContactEmail     *string
	ContactPhone     *string
	TargetAudience   *string
	Slogans          *string
	PriorExperience  *string
	LaunchEventDate  *string
	FilesLink        *string
	LogoPreference   *string
	ColorsTypography *string
	ReferenceLinks   *string
}

// FieldsFromForm picks the keys present in a submitted screen. Keys follow
// the JSON names of the briefing.
func FieldsFromForm(form url.Values) Fields {
	get := func(key string) *string {
		if !form.Has(key) {
			return nil
		}
		v := form.Get(key)
		return &v
	}

	return Fields{
		CompanyName:      get("companyName"),
		Expectations:     get("expectations"),
		ContactName:      get("contactName"),
		ContactEmail:     get("contactEmail"),
		ContactPhone:     get("contactPhone"),
		TargetAudience:   get("targetAudience"),
		Slogans:          get("slogans"),
		PriorExperience:  get("priorExperience"),
		LaunchEventDate:  get("launchEventDate"),
		FilesLink:        get("filesLink"),
		LogoPreference:   get("logoPreference"),
		ColorsTypography: get("colorsTypography"),
		ReferenceLinks:   get("reference_links"),
	}
}

// Update merges fields into the draft.
func (f *Flow) Update(fields Fields) {
	f.mu.Lock()
	defer f.mu.Unlock()

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	b := f.draft
	set(&b.CompanyName, fields.CompanyName)
	set(&b.Expectations, fields.Expectations)
	set(&b.ContactInfo.Name, fields.ContactName)
	set(&b.ContactInfo.Email, fields.ContactEmail)
	set(&b.ContactInfo.Phone, fields.ContactPhone)
	set(&b.TargetAudience, fields.TargetAudience)
	set(&b.Slogans, fields.Slogans)
	set(&b.PriorExperience, fields.PriorExperience)
	set(&b.LaunchEventDate, fields.LaunchEventDate)
	set(&b.LogoPreference, fields.LogoPreference)
	set(&b.ColorsTypography, fields.ColorsTypography)
	set(&b.ReferenceLinks, fields.ReferenceLinks)

	if fields.FilesLink != nil {
		link := strings.TrimSpace(*fields.FilesLink)
		if link == "" {
			b.FilesLink = nil
		} else {
			b.FilesLink = &link
		}
	}
}

// SetContact replaces the whole contact block.
func (f *Flow) SetContact(contact model.ContactInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.ContactInfo = contact
}

// RemoveFile drops the i-th attachment from the draft and deletes the
// object. The delete is best effort; the draft change always holds.
func (f *Flow) RemoveFile(ctx context.Context, i int) error {
	f.mu.Lock()
	files := f.draft.VisualIdentityFiles
	if i < 0 || i >= len(files) {
		f.mu.Unlock()
		return ErrFileNotFound
	}
	fileURL := files[i]
	f.draft.VisualIdentityFiles = slices.Delete(slices.Clone(files), i, i+1)
	f.mu.Unlock()

	if f.deps.Storage == nil {
		return nil
	}
	key, ok := f.deps.Storage.KeyFromURL(fileURL)
	if !ok {
		return nil
	}
	err := f.deps.Storage.Delete(ctx, key)
	if err != nil {
		slog.Warn("failed to delete removed attachment", "error", err, "key", key)
	}
	return nil
}
