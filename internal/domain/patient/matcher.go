package patient

import "strings"

// Matcher identifies a registry patient corresponding to an external record.
// The census feed carries no stable patient ID, so the default implementation
// joins on the display name. Isolating the join behind this interface lets a
// stable-ID matcher replace it without touching the census classification.
type Matcher interface {
	Match(name string) (*Patient, bool)
}

// NormalizeName folds a display name to the canonical matching form.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NameMatcher matches by case-insensitive display name against a fixed
// snapshot of patients.
type NameMatcher struct {
	byName map[string]*Patient
}

// NewNameMatcher indexes the given patients by normalized name. When two
// patients share a name the first one wins; the feed cannot distinguish them
// either.
func NewNameMatcher(patients []*Patient) *NameMatcher {
	byName := make(map[string]*Patient, len(patients))
	for _, p := range patients {
		key := NormalizeName(p.Name)
		if _, ok := byName[key]; !ok {
			byName[key] = p
		}
	}
	return &NameMatcher{byName: byName}
}

func (m *NameMatcher) Match(name string) (*Patient, bool) {
	p, ok := m.byName[NormalizeName(name)]
	return p, ok
}
