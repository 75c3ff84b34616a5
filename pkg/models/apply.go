package models

// Outcome is the terminal state of one dry-run application attempt.
type Outcome string

const (
	OutcomeNotApplicable   Outcome = "not_applicable"
	OutcomeReachedFinal    Outcome = "reached_final_step"
	OutcomeStalled         Outcome = "stalled_no_next_control"
	OutcomeBudgetExhausted Outcome = "step_budget_exhausted"
	// OutcomeError marks a URL whose page could not be loaded.
	OutcomeError Outcome = "error"
)

// Entered reports whether the outcome implies the wizard was opened.
func (o Outcome) Entered() bool {
	switch o {
	case OutcomeReachedFinal, OutcomeStalled, OutcomeBudgetExhausted:
		return true
	}
	return false
}

// ApplyAttempt records what happened to one URL in dry-run mode.
type ApplyAttempt struct {
	URL            string  `json:"url"`
	Index          int     `json:"index"`
	Outcome        Outcome `json:"outcome"`
	Steps          int     `json:"steps"`
	ScreenshotPath string  `json:"screenshot_path,omitempty"`
	Error          string  `json:"error,omitempty"`
}
