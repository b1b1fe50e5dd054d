package interview

import (
	"fmt"
	"math"
)

// Policy decides when an interview ends and what progress to show.
type Policy struct {
	TargetTurns      int
	EarlyStopPercent int
	Cap              int
}

// DefaultPolicy ends after six answers and keeps non-terminal progress below 90.
func DefaultPolicy() Policy {
	return Policy{TargetTurns: 6, EarlyStopPercent: 90, Cap: 89}
}

// Validate rejects policies that could never complete or would show 100 early.
func (p Policy) Validate() error {
	if p.TargetTurns <= 0 {
		return fmt.Errorf("target turns must be positive, got %d", p.TargetTurns)
	}
	if p.EarlyStopPercent <= 0 || p.EarlyStopPercent > 100 {
		return fmt.Errorf("early stop percent must be in (0,100], got %d", p.EarlyStopPercent)
	}
	if p.Cap <= 0 || p.Cap >= 100 {
		return fmt.Errorf("progress cap must be in (0,100), got %d", p.Cap)
	}
	return nil
}

// Progress is the raw policy: percent of the target reached after answered turns,
// and whether the interview is done.
func (p Policy) Progress(answered int) (percent int, done bool) {
	percent = int(math.Round(float64(answered) * 100 / float64(p.TargetTurns)))
	if percent > 100 {
		percent = 100
	}
	return percent, answered >= p.TargetTurns || percent >= p.EarlyStopPercent
}

// Report is the progress shown to the client after answered turns. A finished
// interview shows exactly 100. Otherwise it shows the progress the next answer would
// reach, min(percent + 100/T, Cap), and 0 before anything is answered.
func (p Policy) Report(answered int) (percent int, done bool) {
	if _, done = p.Progress(answered); done {
		return 100, true
	}
	if answered <= 0 {
		return 0, false
	}
	percent = int(math.Round(float64(answered+1) * 100 / float64(p.TargetTurns)))
	if percent > p.Cap {
		percent = p.Cap
	}
	return percent, false
}
