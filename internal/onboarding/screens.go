package onboarding

// Screen is the JSON state for one step of the signup wizard. The frontend
// renders from this and uses Step/TotalSteps for its progress tracker.
type Screen struct {
	Path       string                 `json:"path"`
	Title      string                 `json:"title"`
	Step       int                    `json:"step"`
	TotalSteps int                    `json:"total_steps"`
	Next       string                 `json:"next,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// wizardOrder fixes the screen sequence. Legal pages hang off the flow
// without consuming a step.
var wizardOrder = []string{
	"/onboarding",
	"/select-plan",
	"/checkout",
	"/account-setup",
	"/legal-stuff",
	"/lease-upload",
	"/payment-status",
	"/thank-you",
}

func stepOf(path string) int {
	for i, p := range wizardOrder {
		if p == path {
			return i + 1
		}
	}
	return 0
}

func nextOf(path string) string {
	for i, p := range wizardOrder {
		if p == path && i+1 < len(wizardOrder) {
			return wizardOrder[i+1]
		}
	}
	return ""
}

func newScreen(path, title string, data map[string]interface{}) *Screen {
	return &Screen{
		Path:       path,
		Title:      title,
		Step:       stepOf(path),
		TotalSteps: len(wizardOrder),
		Next:       nextOf(path),
		Data:       data,
	}
}

// featureItems are the welcome screen's product bullets.
var featureItems = []map[string]string{
	{"title": "Colorado-specific review", "detail": "Your lease is checked against Colorado landlord-tenant law."},
	{"title": "Clause-by-clause flags", "detail": "Risky clauses are highlighted with plain-language explanations."},
	{"title": "Fast turnaround", "detail": "Most analyses finish within minutes of upload."},
	{"title": "Secure document handling", "detail": "Uploads are stored privately and never shared."},
	{"title": "Support that answers", "detail": "Open a ticket from any report and a person replies."},
}
