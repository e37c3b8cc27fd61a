package wizard

import (
	"errors"
	"math/rand/v2"
	"testing"

	"portfolio/internal/pricing"
	apperrors "portfolio/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWizard(t *testing.T) *Wizard {
	t.Helper()
	return New(pricing.Default(), pricing.USD)
}

// readyToSubmit walks a wizard to the contact step with a landing page quote.
func readyToSubmit(t *testing.T) *Wizard {
	t.Helper()
	w := newWizard(t)
	require.NoError(t, w.SelectType("landing"))
	w.ToggleFeature("responsive")
	w.ToggleFeature("animation")
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	require.NoError(t, w.SetBudget("$500 - $1,000"))
	require.NoError(t, w.Next())
	w.SetContactField(FieldName, "Ada Lovelace")
	w.SetContactField(FieldEmail, "ada@example.com")
	w.SetContactField(FieldMessage, "Launching in spring.")
	w.SetVerificationToken("tok-123")
	return w
}

func TestNextRequiresType(t *testing.T) {
	w := newWizard(t)

	assert.False(t, w.CanProceed())
	assert.ErrorIs(t, w.Next(), ErrTypeRequired)
	assert.Equal(t, StepType, w.Step())

	require.NoError(t, w.SelectType("business"))
	assert.True(t, w.CanProceed())
	require.NoError(t, w.Next())
	assert.Equal(t, StepFeatures, w.Step())
}

func TestFeatureAndBudgetStepsNeverBlock(t *testing.T) {
	w := newWizard(t)
	require.NoError(t, w.SelectType("business"))
	require.NoError(t, w.Next())

	require.NoError(t, w.Next())
	assert.Equal(t, StepBudget, w.Step())
	require.NoError(t, w.Next())
	assert.Equal(t, StepContact, w.Step())

	assert.False(t, w.CanProceed())
	assert.ErrorIs(t, w.Next(), ErrFinalStep)
	assert.Equal(t, StepContact, w.Step())
}

func TestBack(t *testing.T) {
	w := newWizard(t)
	assert.False(t, w.Back())
	assert.Equal(t, StepType, w.Step())

	require.NoError(t, w.SelectType("landing"))
	require.NoError(t, w.Next())
	assert.True(t, w.Back())
	assert.Equal(t, StepType, w.Step())
}

func TestJumpTo(t *testing.T) {
	w := newWizard(t)

	assert.ErrorIs(t, w.JumpTo(StepFeatures), ErrStepLocked)
	assert.ErrorIs(t, w.JumpTo(Step(5)), ErrInvalidStep)
	assert.ErrorIs(t, w.JumpTo(Step(0)), ErrInvalidStep)

	require.NoError(t, w.SelectType("landing"))
	require.NoError(t, w.JumpTo(StepFeatures))
	assert.Equal(t, StepFeatures, w.Step())

	// Steps past the feature step stay locked until visited.
	assert.ErrorIs(t, w.JumpTo(StepContact), ErrStepLocked)

	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	require.NoError(t, w.JumpTo(StepType))
	assert.Equal(t, StepType, w.Step())
	assert.True(t, w.CanJumpTo(StepFeatures))
	assert.False(t, w.CanJumpTo(StepBudget))
}

func TestSelectTypeClearsFeatures(t *testing.T) {
	w := newWizard(t)
	require.NoError(t, w.SelectType("landing"))
	w.ToggleFeature("seo")
	w.ToggleFeature("analytics")

	// Re-selecting the same type keeps the selection.
	require.NoError(t, w.SelectType("landing"))
	assert.Equal(t, []string{"seo", "analytics"}, w.Features())

	require.NoError(t, w.SelectType("business"))
	assert.Empty(t, w.Features())
	assert.Equal(t, pricing.Quote{TotalPrice: 400, TimelineMin: 14, TimelineMax: 14}, w.Quote())

	assert.ErrorIs(t, w.SelectType("rocket"), ErrUnknownType)
	assert.Equal(t, "business", w.SelectedType().ID)
}

func TestToggleFeature(t *testing.T) {
	w := newWizard(t)
	assert.False(t, w.ToggleFeature("seo"), "no type selected")

	require.NoError(t, w.SelectType("landing"))
	assert.True(t, w.ToggleFeature("seo"))
	assert.True(t, w.IsFeatureSelected("seo"))
	assert.False(t, w.ToggleFeature("payment"), "feature of another type")
	assert.Equal(t, []string{"seo"}, w.Features())

	assert.False(t, w.ToggleFeature("seo"))
	assert.Empty(t, w.Features())
}

func TestQuoteMatchesEngine(t *testing.T) {
	w := newWizard(t)
	assert.Equal(t, pricing.Quote{}, w.Quote())

	require.NoError(t, w.SelectType("landing"))
	w.ToggleFeature("responsive")
	w.ToggleFeature("animation")
	assert.Equal(t, pricing.Quote{TotalPrice: 230, TimelineMin: 11, TimelineMax: 15}, w.Quote())
}

func TestSetBudget(t *testing.T) {
	w := newWizard(t)
	require.NoError(t, w.SetBudget("$3,000+"))
	assert.Equal(t, "$3,000+", w.Budget())
	assert.ErrorIs(t, w.SetBudget("a yacht"), ErrUnknownBudget)
	assert.Equal(t, "$3,000+", w.Budget())
}

func TestSummaryAndSubject(t *testing.T) {
	w := readyToSubmit(t)

	assert.Equal(t, "Project Inquiry: Landing Page", w.Subject())
	want := "Website Type: Landing Page\n" +
		"Features: Responsive Design, Animations\n" +
		"Budget Range: $500 - $1,000\n" +
		"Estimated Price: $230\n" +
		"Timeline: 11-15 days\n" +
		"User Message: Launching in spring."
	assert.Equal(t, want, w.Summary())
}

func TestSummaryUsesDisplayCurrency(t *testing.T) {
	w := readyToSubmit(t)
	w.SetCurrency(pricing.VND)
	assert.Contains(t, w.Summary(), "₫")
	assert.Equal(t, 230, w.Quote().TotalPrice)
}

func TestBeginSubmitGuards(t *testing.T) {
	t.Run("not at contact step", func(t *testing.T) {
		w := newWizard(t)
		_, err := w.BeginSubmit()
		assert.ErrorIs(t, err, ErrNotFinalStep)
	})

	t.Run("honeypot filled", func(t *testing.T) {
		w := readyToSubmit(t)
		w.SetHoneypot("http://spam.example")
		_, err := w.BeginSubmit()
		assert.Equal(t, apperrors.ErrCodeSpamDetected, apperrors.CodeOf(err))
		assert.False(t, w.InFlight())
	})

	t.Run("token missing", func(t *testing.T) {
		w := readyToSubmit(t)
		w.ClearVerificationToken()
		_, err := w.BeginSubmit()
		assert.Equal(t, apperrors.ErrCodeVerificationRequired, apperrors.CodeOf(err))
	})

	t.Run("contact missing", func(t *testing.T) {
		w := readyToSubmit(t)
		w.SetContactField(FieldName, "  ")
		w.SetContactField(FieldEmail, "")
		_, err := w.BeginSubmit()
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, []string{"name", "email"}, appErr.Fields)
	})

	t.Run("in flight", func(t *testing.T) {
		w := readyToSubmit(t)
		_, err := w.BeginSubmit()
		require.NoError(t, err)
		_, err = w.BeginSubmit()
		assert.ErrorIs(t, err, ErrInFlight)
	})
}

func TestSubmitSuccessResetsWizard(t *testing.T) {
	w := readyToSubmit(t)

	inq, err := w.BeginSubmit()
	require.NoError(t, err)
	assert.True(t, w.InFlight())
	assert.Equal(t, "tok-123", inq.VerificationToken)
	assert.Equal(t, "Ada Lovelace", inq.Name)
	assert.Equal(t, w.Summary(), inq.Message)

	w.CompleteSubmit(nil)
	assert.False(t, w.InFlight())
	assert.False(t, w.HasToken())
	assert.Equal(t, StepType, w.Step())
	assert.Nil(t, w.SelectedType())
	assert.Equal(t, Contact{}, w.Contact())
	assert.Equal(t, StatusSuccess, w.Status().Kind)
}

func TestSubmitFailureKeepsSelectionAndConsumesToken(t *testing.T) {
	w := readyToSubmit(t)

	_, err := w.BeginSubmit()
	require.NoError(t, err)
	w.CompleteSubmit(apperrors.New(apperrors.ErrCodeVerificationFailed, "Security verification failed"))

	assert.False(t, w.InFlight())
	assert.False(t, w.HasToken())
	assert.Equal(t, StepContact, w.Step())
	assert.Equal(t, "landing", w.SelectedType().ID)
	assert.Equal(t, StatusError, w.Status().Kind)
	assert.Equal(t, "Security verification failed", w.Status().Message)

	// A fresh token re-enables submission.
	_, err = w.BeginSubmit()
	assert.Equal(t, apperrors.ErrCodeVerificationRequired, apperrors.CodeOf(err))
	w.SetVerificationToken("tok-456")
	_, err = w.BeginSubmit()
	assert.NoError(t, err)
}

func TestCompleteSubmitPlainError(t *testing.T) {
	w := readyToSubmit(t)
	_, err := w.BeginSubmit()
	require.NoError(t, err)

	w.CompleteSubmit(errors.New("connection refused"))
	assert.Equal(t, "connection refused", w.Status().Message)
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "Budget", StepBudget.String())
	assert.Equal(t, "Step(9)", Step(9).String())
}

func TestRandomOperationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	catalog := pricing.Default()
	types := catalog.Types()
	featureIDs := []string{"responsive", "seo", "cms", "payment", "api", "realtime", "bogus"}

	w := New(catalog, pricing.USD)
	for i := 0; i < 5000; i++ {
		switch rng.IntN(6) {
		case 0:
			_ = w.Next()
		case 1:
			w.Back()
		case 2:
			_ = w.JumpTo(Step(rng.IntN(6)))
		case 3:
			_ = w.SelectType(types[rng.IntN(len(types))].ID)
		case 4:
			w.ToggleFeature(featureIDs[rng.IntN(len(featureIDs))])
		case 5:
			w.Reset()
		}

		if w.SelectedType() == nil {
			require.Equal(t, StepType, w.Step(), "no step past 1 is reachable without a type")
			require.Empty(t, w.Features())
			continue
		}
		for _, id := range w.Features() {
			_, ok := w.SelectedType().Feature(id)
			require.True(t, ok, "feature %q does not belong to %q", id, w.SelectedType().ID)
		}
		q := w.Quote()
		require.LessOrEqual(t, q.TimelineMin, q.TimelineMax)
		require.GreaterOrEqual(t, q.TotalPrice, w.SelectedType().BasePrice)
	}
}
