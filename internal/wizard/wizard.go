// Package wizard implements the four-step quote configurator: pick a project
// type, toggle features, choose a budget band, then leave contact details and
// submit.
package wizard

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"portfolio/internal/pricing"
	apperrors "portfolio/pkg/errors"
)

// Step is a wizard step, numbered from 1.
type Step int

const (
	StepType Step = iota + 1
	StepFeatures
	StepBudget
	StepContact
)

// Steps lists every step in order.
var Steps = []Step{StepType, StepFeatures, StepBudget, StepContact}

func (s Step) String() string {
	switch s {
	case StepType:
		return "Project Type"
	case StepFeatures:
		return "Features"
	case StepBudget:
		return "Budget"
	case StepContact:
		return "Contact"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

var (
	ErrTypeRequired  = errors.New("select a project type first")
	ErrFinalStep     = errors.New("already at the final step")
	ErrInvalidStep   = errors.New("invalid step")
	ErrStepLocked    = errors.New("step is not reachable yet")
	ErrUnknownType   = errors.New("unknown project type")
	ErrUnknownBudget = errors.New("unknown budget range")
	ErrNotFinalStep  = errors.New("submission is only possible from the contact step")
	ErrInFlight      = errors.New("a submission is already in progress")
)

// Field identifies a contact form field.
type Field int

const (
	FieldName Field = iota
	FieldEmail
	FieldMessage
)

// Contact holds the visitor's contact details.
type Contact struct {
	Name    string
	Email   string
	Message string
}

// Inquiry is the payload produced by a successful BeginSubmit.
type Inquiry struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Subject           string `json:"subject"`
	Message           string `json:"message"`
	Honeypot          string `json:"_h_,omitempty"`
	VerificationToken string `json:"turnstileToken"`
}

// StatusKind classifies the outcome shown to the visitor.
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusSuccess
	StatusError
)

// Status is the last submission outcome.
type Status struct {
	Kind    StatusKind
	Message string
	Err     error
}

// SuccessMessage is shown after an inquiry has been accepted.
const SuccessMessage = "Thank you! Your inquiry has been sent. I'll get back to you soon."

// Wizard is the configurator state. It is owned by a single UI loop and is not
// safe for concurrent use.
type Wizard struct {
	catalog  *pricing.Catalog
	currency pricing.Currency

	step     Step
	typeID   string
	features []string
	budget   string
	contact  Contact
	honeypot string
	token    string
	inFlight bool
	status   Status
}

// New returns a wizard at step 1 with nothing selected.
func New(catalog *pricing.Catalog, currency pricing.Currency) *Wizard {
	return &Wizard{
		catalog:  catalog,
		currency: currency,
		step:     StepType,
	}
}

func (w *Wizard) Catalog() *pricing.Catalog  { return w.catalog }
func (w *Wizard) Currency() pricing.Currency { return w.currency }
func (w *Wizard) Step() Step                 { return w.step }
func (w *Wizard) Budget() string             { return w.budget }
func (w *Wizard) Contact() Contact           { return w.contact }
func (w *Wizard) HasToken() bool             { return w.token != "" }
func (w *Wizard) InFlight() bool             { return w.inFlight }
func (w *Wizard) Status() Status             { return w.status }

// SetCurrency changes the display currency. Stored amounts are unaffected.
func (w *Wizard) SetCurrency(c pricing.Currency) { w.currency = c }

// SelectedType returns the selected project type, or nil.
func (w *Wizard) SelectedType() *pricing.ProjectType {
	if w.typeID == "" {
		return nil
	}
	t, ok := w.catalog.Type(w.typeID)
	if !ok {
		return nil
	}
	return t
}

// Features returns the selected feature ids in selection order.
func (w *Wizard) Features() []string {
	return slices.Clone(w.features)
}

// IsFeatureSelected reports whether id is selected.
func (w *Wizard) IsFeatureSelected(id string) bool {
	return slices.Contains(w.features, id)
}

// CanProceed reports whether Next would advance.
func (w *Wizard) CanProceed() bool {
	if w.step >= StepContact {
		return false
	}
	if w.step == StepType {
		return w.typeID != ""
	}
	return true
}

// Next advances one step.
func (w *Wizard) Next() error {
	if w.step >= StepContact {
		return ErrFinalStep
	}
	if w.step == StepType && w.typeID == "" {
		return ErrTypeRequired
	}
	w.step++
	return nil
}

// Back moves one step back. It reports false at the first step.
func (w *Wizard) Back() bool {
	if w.step <= StepType {
		return false
	}
	w.step--
	return true
}

// CanJumpTo reports whether the step indicator may jump to s: any visited step,
// or the feature step once a type is selected.
func (w *Wizard) CanJumpTo(s Step) bool {
	if s < StepType || s > StepContact {
		return false
	}
	return s <= w.step || (s == StepFeatures && w.typeID != "")
}

// JumpTo moves directly to s.
func (w *Wizard) JumpTo(s Step) error {
	if s < StepType || s > StepContact {
		return ErrInvalidStep
	}
	if !w.CanJumpTo(s) {
		return ErrStepLocked
	}
	w.step = s
	return nil
}

// SelectType selects a project type. Choosing a different type clears the
// feature selection.
func (w *Wizard) SelectType(id string) error {
	if _, ok := w.catalog.Type(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, id)
	}
	if id != w.typeID {
		w.features = nil
	}
	w.typeID = id
	return nil
}

// ToggleFeature flips the selection of a feature of the current type and
// reports whether it is now selected. Ids outside the current type are ignored.
func (w *Wizard) ToggleFeature(id string) bool {
	t := w.SelectedType()
	if t == nil {
		return false
	}
	if _, ok := t.Feature(id); !ok {
		return false
	}
	if i := slices.Index(w.features, id); i >= 0 {
		w.features = slices.Delete(w.features, i, i+1)
		return false
	}
	w.features = append(w.features, id)
	return true
}

// SetBudget records one of the catalog's budget bands.
func (w *Wizard) SetBudget(band string) error {
	if !w.catalog.HasBudgetBand(band) {
		return fmt.Errorf("%w: %q", ErrUnknownBudget, band)
	}
	w.budget = band
	return nil
}

// SetContactField updates one contact field.
func (w *Wizard) SetContactField(f Field, value string) {
	switch f {
	case FieldName:
		w.contact.Name = value
	case FieldEmail:
		w.contact.Email = value
	case FieldMessage:
		w.contact.Message = value
	}
}

// SetHoneypot records the hidden trap field. Humans never fill it.
func (w *Wizard) SetHoneypot(v string) { w.honeypot = v }

// SetVerificationToken stores a freshly issued challenge token.
func (w *Wizard) SetVerificationToken(token string) { w.token = strings.TrimSpace(token) }

// ClearVerificationToken drops an expired or failed token; submission is
// blocked until a new one arrives.
func (w *Wizard) ClearVerificationToken() { w.token = "" }

// Quote derives the current estimate.
func (w *Wizard) Quote() pricing.Quote {
	return pricing.Derive(w.SelectedType(), w.features)
}

// Subject returns the inquiry subject for the selected type.
func (w *Wizard) Subject() string {
	name := ""
	if t := w.SelectedType(); t != nil {
		name = t.Name
	}
	return QuoteSubject(name)
}

// Summary renders the selection as "Label: value" lines.
func (w *Wizard) Summary() string {
	t := w.SelectedType()
	typeName := ""
	if t != nil {
		typeName = t.Name
	}
	q := w.Quote()
	return FormatSummary(SummaryFields{
		TypeName:       typeName,
		Features:       pricing.FeatureNames(t, w.features),
		Budget:         w.budget,
		EstimatedPrice: w.currency.Format(q.TotalPrice),
		TimelineMin:    q.TimelineMin,
		TimelineMax:    q.TimelineMax,
		UserMessage:    w.contact.Message,
	})
}

// BeginSubmit validates the wizard for submission, marks it in flight and
// returns the payload to send.
func (w *Wizard) BeginSubmit() (Inquiry, error) {
	if w.step != StepContact {
		return Inquiry{}, ErrNotFinalStep
	}
	if w.inFlight {
		return Inquiry{}, ErrInFlight
	}
	if w.honeypot != "" {
		return Inquiry{}, apperrors.New(apperrors.ErrCodeSpamDetected, "Security verification failed")
	}
	if w.token == "" {
		return Inquiry{}, apperrors.New(apperrors.ErrCodeVerificationRequired, "Security verification required")
	}
	var missing []string
	if strings.TrimSpace(w.contact.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(w.contact.Email) == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return Inquiry{}, apperrors.Validation("Please fill in all required fields", missing...)
	}

	w.inFlight = true
	w.status = Status{}
	return Inquiry{
		Name:              strings.TrimSpace(w.contact.Name),
		Email:             strings.TrimSpace(w.contact.Email),
		Subject:           w.Subject(),
		Message:           w.Summary(),
		VerificationToken: w.token,
	}, nil
}

// CompleteSubmit records the outcome of the submission started by BeginSubmit.
// The verification token is consumed either way. On success the selection is
// discarded.
func (w *Wizard) CompleteSubmit(err error) {
	w.inFlight = false
	w.token = ""
	if err != nil {
		msg := err.Error()
		if appErr, ok := apperrors.As(err); ok {
			msg = appErr.Message
		}
		w.status = Status{Kind: StatusError, Message: msg, Err: err}
		return
	}
	w.Reset()
	w.status = Status{Kind: StatusSuccess, Message: SuccessMessage}
}

// Reset returns the wizard to step 1 with nothing selected.
func (w *Wizard) Reset() {
	*w = Wizard{
		catalog:  w.catalog,
		currency: w.currency,
		step:     StepType,
	}
}
