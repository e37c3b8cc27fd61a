package pricing

// Days added per selected feature to the lower and upper timeline bounds.
const (
	MinDaysPerFeature = 2
	MaxDaysPerFeature = 4
)

// Quote is a derived estimate. Prices are whole USD.
type Quote struct {
	TotalPrice  int `json:"totalPrice"`
	TimelineMin int `json:"timelineMin"`
	TimelineMax int `json:"timelineMax"`
}

// Derive computes the quote for a project type and selected features.
// Unknown feature ids are ignored and duplicates count once. A nil type yields
// the zero quote.
func Derive(t *ProjectType, featureIDs []string) Quote {
	if t == nil {
		return Quote{}
	}
	total := t.BasePrice
	n := 0
	seen := make(map[string]bool, len(featureIDs))
	for _, id := range featureIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		f, ok := t.Feature(id)
		if !ok {
			continue
		}
		total += f.Price
		n++
	}
	return Quote{
		TotalPrice:  total,
		TimelineMin: t.BaseDays + MinDaysPerFeature*n,
		TimelineMax: t.BaseDays + MaxDaysPerFeature*n,
	}
}

// FeatureNames returns the display names of the valid ids in selection order.
func FeatureNames(t *ProjectType, featureIDs []string) []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(featureIDs))
	seen := make(map[string]bool, len(featureIDs))
	for _, id := range featureIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if f, ok := t.Feature(id); ok {
			names = append(names, f.Name)
		}
	}
	return names
}
