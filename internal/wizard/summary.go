package wizard

import (
	"fmt"
	"strings"

	"portfolio/internal/domain"
)

// SummaryFields are the values rendered into a quote inquiry body.
type SummaryFields struct {
	TypeName       string
	Features       []string
	Budget         string
	EstimatedPrice string
	TimelineMin    int
	TimelineMax    int
	UserMessage    string
}

// QuoteSubject builds the subject line the notification dispatcher recognises
// as a quote.
func QuoteSubject(typeName string) string {
	return domain.QuoteSubjectPrefix + " " + typeName
}

// FormatSummary renders f as one "Label: value" line per field.
func FormatSummary(f SummaryFields) string {
	features := "None"
	if len(f.Features) > 0 {
		features = strings.Join(f.Features, ", ")
	}
	budget := f.Budget
	if budget == "" {
		budget = "Not specified"
	}
	lines := []string{
		"Website Type: " + f.TypeName,
		"Features: " + features,
		"Budget Range: " + budget,
		"Estimated Price: " + f.EstimatedPrice,
		fmt.Sprintf("Timeline: %d-%d days", f.TimelineMin, f.TimelineMax),
		"User Message: " + strings.TrimSpace(f.UserMessage),
	}
	return strings.Join(lines, "\n")
}
