// Package catalog holds the static task and scenario definitions for the
// courtroom simulation, plus the pure bias reorder applied to the initial
// backlog. Catalog values are immutable once loaded; the game engine receives
// them as injected dependencies rather than reaching for package globals.
package catalog

import "fmt"

// Category classifies a task or scenario.
type Category string

const (
	CategoryAccessibility Category = "accessibility"
	CategorySecurityInput Category = "security-input"
	CategoryAuth          Category = "auth"
	CategoryDBSecurity    Category = "db-security"
	CategoryNotice        Category = "notice"
)

// Task is a single alert that can surface during a run. Critical tasks carry
// a verdict message shown when the player fails to resolve them in time;
// notice tasks never do.
type Task struct {
	ID       string   `yaml:"id" json:"id"`
	Text     string   `yaml:"text" json:"text"`
	Critical bool     `yaml:"critical" json:"critical"`
	Category Category `yaml:"category" json:"category"`
	Verdict  string   `yaml:"verdict,omitempty" json:"verdict,omitempty"`
}

// Validate checks the task invariants: non-empty id, and verdict text on
// criticals only.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task has empty id")
	}
	if t.Critical && t.Verdict == "" {
		return fmt.Errorf("critical task %s has no verdict text", t.ID)
	}
	if !t.Critical && t.Verdict != "" {
		return fmt.Errorf("notice task %s carries verdict text", t.ID)
	}
	return nil
}

// ValidateTasks checks id uniqueness and per-task invariants for a catalog.
func ValidateTasks(tasks []Task) error {
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate task id %s", t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// Partition splits a catalog into critical and notice tasks, preserving
// order within each group.
func Partition(tasks []Task) (critical, notice []Task) {
	for _, t := range tasks {
		if t.Critical {
			critical = append(critical, t)
		} else {
			notice = append(notice, t)
		}
	}
	return critical, notice
}

// Tasks returns the built-in task catalog. The slice is freshly allocated on
// each call so callers can reorder it without aliasing.
func Tasks() []Task {
	out := make([]Task, len(baseTasks))
	copy(out, baseTasks)
	return out
}

var baseTasks = []Task{
	// Original criticals.
	{
		ID:       "t-alt",
		Text:     "Add alt to <img id='img1'>",
		Critical: true,
		Category: CategoryAccessibility,
		Verdict:  "Charged under Disability Act for missing alt text.",
	},
	{
		ID:       "t-xss",
		Text:     "Fix input validation on login form",
		Critical: true,
		Category: CategorySecurityInput,
		Verdict:  "Negligence: data breach via input validation flaw.",
	},
	{
		ID:       "t-auth",
		Text:     "Fix user logins",
		Critical: true,
		Category: CategoryAuth,
		Verdict:  "Business failure: customers locked out.",
	},
	{
		ID:       "t-db",
		Text:     "Secure database configuration",
		Critical: true,
		Category: CategoryDBSecurity,
		Verdict:  "Data breach due to insecure DB configuration.",
	},

	// Original notices.
	{ID: "n-boss", Text: "Boss: Are you done with Sprint 1?", Category: CategoryNotice},
	{ID: "n-family", Text: "Family: Dinner plans tonight?", Category: CategoryNotice},
	{ID: "n-ui", Text: "Change button color on landing page (cosmetic)", Category: CategoryNotice},

	// Accessibility.
	{
		ID:       "acc-aria-critical-1",
		Text:     "CRITICAL: Primary navigation lacks aria-labels; screen reader users blocked.",
		Critical: true,
		Category: CategoryAccessibility,
		Verdict:  "Accessibility breach: unlabeled navigation blocks assistive tech.",
	},
	{
		ID:       "acc-contrast-1",
		Text:     "NOTICE: CTA buttons have low color contrast (< 4.5:1).",
		Category: CategoryAccessibility,
	},
	{
		ID:       "acc-forms-labels-1",
		Text:     "NOTICE: Inputs missing associated <label> elements.",
		Category: CategoryAccessibility,
	},

	// Security / input.
	{
		ID:       "sec-login-critical-1",
		Text:     "CRITICAL: Login accepts empty password; missing server-side validation.",
		Critical: true,
		Category: CategorySecurityInput,
		Verdict:  "Security violation: missing server-side validation at login.",
	},
	{
		ID:       "sec-rate-limit-1",
		Text:     "NOTICE: No rate limiting on /login attempts.",
		Category: CategorySecurityInput,
	},
	{
		ID:       "sec-xss-attr-1",
		Text:     "NOTICE: Unescaped user input placed in data-* attribute (potential XSS).",
		Category: CategorySecurityInput,
	},

	// Auth.
	{
		ID:       "auth-session-critical-1",
		Text:     "CRITICAL: Session cookie not HttpOnly/Secure in production.",
		Critical: true,
		Category: CategoryAuth,
		Verdict:  "Authentication/session misconfiguration enables token theft.",
	},
	{
		ID:       "auth-logout-1",
		Text:     "NOTICE: Logout doesn't invalidate session on server.",
		Category: CategoryAuth,
	},
	{
		ID:       "auth-redirect-1",
		Text:     "NOTICE: Post-login redirect doesn't validate returnTo origin.",
		Category: CategoryAuth,
	},

	// DB security.
	{
		ID:       "db-backup-critical-1",
		Text:     "CRITICAL: Database backups publicly accessible in S3 bucket.",
		Critical: true,
		Category: CategoryDBSecurity,
		Verdict:  "Data exposure due to public backups.",
	},
	{
		ID:       "db-perms-1",
		Text:     "NOTICE: App DB user has superuser privileges.",
		Category: CategoryDBSecurity,
	},
	{
		ID:       "db-tls-1",
		Text:     "NOTICE: Database connection not enforcing TLS.",
		Category: CategoryDBSecurity,
	},
}
