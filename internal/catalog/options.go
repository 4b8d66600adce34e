package catalog

import "time"

// Default timing constants. Scenario bias may override both.
const (
	DefaultAlertCadence  = 28 * time.Second
	DefaultCriticalGrace = 60 * time.Second
)

// Bias lets a scenario influence the initial backlog order, the alert
// cadence, and the critical grace period. The zero value means "no bias".
type Bias struct {
	Categories      []Category `yaml:"categories,omitempty" json:"categories,omitempty"`
	AlertCadenceMs  int        `yaml:"alert_cadence_ms,omitempty" json:"alertCadenceMs,omitempty"`
	CriticalGraceMs int        `yaml:"critical_grace_ms,omitempty" json:"criticalGraceMs,omitempty"`
}

// AlertCadence returns the cadence override, or the default when the bias is
// absent or carries a non-positive value (malformed bias is treated as
// absent, never fatal).
func (b *Bias) AlertCadence() time.Duration {
	if b == nil || b.AlertCadenceMs <= 0 {
		return DefaultAlertCadence
	}
	return time.Duration(b.AlertCadenceMs) * time.Millisecond
}

// CriticalGrace returns the grace override, or the default.
func (b *Bias) CriticalGrace() time.Duration {
	if b == nil || b.CriticalGraceMs <= 0 {
		return DefaultCriticalGrace
	}
	return time.Duration(b.CriticalGraceMs) * time.Millisecond
}

// Favors reports whether the bias favors the given category.
func (b *Bias) Favors(c Category) bool {
	if b == nil {
		return false
	}
	for _, fc := range b.Categories {
		if fc == c {
			return true
		}
	}
	return false
}

// ScenarioOption is a selectable scenario: descriptive text for the player
// plus an optional bias record consumed by the engine.
type ScenarioOption struct {
	ID              string   `yaml:"id" json:"id"`
	Title           string   `yaml:"title" json:"title"`
	VerdictCategory Category `yaml:"verdict_category" json:"verdictCategory"`
	Text            string   `yaml:"text" json:"text"`
	Bias            *Bias    `yaml:"bias,omitempty" json:"bias,omitempty"`
}

// Options returns the built-in scenario catalog.
func Options() []ScenarioOption {
	out := make([]ScenarioOption, len(baseOptions))
	copy(out, baseOptions)
	return out
}

// OptionByID looks up a scenario by id. Returns nil when absent.
func OptionByID(id string) *ScenarioOption {
	for i := range baseOptions {
		if baseOptions[i].ID == id {
			opt := baseOptions[i]
			return &opt
		}
	}
	return nil
}

var baseOptions = []ScenarioOption{
	{
		ID:              "opt-acc",
		Title:           "Fix accessibility issues",
		VerdictCategory: CategoryAccessibility,
		Text: "In this scenario, we have identified several accessibility issues " +
			"that need to be addressed to ensure our application is usable by all " +
			"users, including those with disabilities.",
		Bias: &Bias{Categories: []Category{CategoryAccessibility}, AlertCadenceMs: 24000},
	},
	{
		ID:              "opt-sec",
		Title:           "Harden login form",
		VerdictCategory: CategorySecurityInput,
		Text: "In this scenario, we have identified potential security " +
			"vulnerabilities in our login form that need to be addressed to protect " +
			"user data and prevent unauthorized access.",
		Bias: &Bias{Categories: []Category{CategorySecurityInput}, CriticalGraceMs: 50000},
	},
	{
		ID:              "opt-auth",
		Title:           "Ship MVP auth flow",
		VerdictCategory: CategoryAuth,
		Text: "In this scenario, we need to implement a minimum viable product " +
			"(MVP) authentication flow to allow users to securely log in and access " +
			"their accounts.",
		Bias: &Bias{Categories: []Category{CategoryAuth}},
	},
}
