package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skillchain/issuer/src/utils/model"
)

var (
	ErrInvalidTransition = errors.New("transition not allowed from the current stage")
	ErrNotAvailable      = errors.New("operation not available at the current stage")
	ErrBusy              = errors.New("another operation is in progress")
	ErrNotVerified       = errors.New("all verification checks must succeed before issuance")
	ErrSeedNotSynced     = errors.New("steganography seed is not synced")
	ErrNotLearner        = errors.New("identifier doesn't belong to a learner")
	ErrGovernmentId      = errors.New("government id wasn't verified through DigiLocker")
)

// Local error attached to a single form field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (self ValidationError) Error() string {
	return self.Field + ": " + self.Message
}

// All field errors found by a single validation
type ValidationErrors []ValidationError

func (self ValidationErrors) Error() string {
	msgs := make([]string, 0, len(self))
	for _, e := range self {
		msgs = append(msgs, e.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Message for the given field, empty if the field is valid
func (self ValidationErrors) For(field string) string {
	for _, e := range self {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Failed verification check
type CheckError struct {
	Check  model.CheckName
	Result model.Check
}

func (self *CheckError) Error() string {
	return fmt.Sprintf("%s check failed: %s", self.Check, self.Result.Error)
}

type Step string

const (
	StepSeed    Step = "seed"
	StepCreate  Step = "create"
	StepIssue   Step = "issue"
	StepOverlay Step = "overlay"
)

// Issuance failure of a specific step. Steps that succeeded before it are not rolled back.
type StepError struct {
	Step Step
	Err  error
}

func (self *StepError) Error() string {
	return fmt.Sprintf("%s step failed: %v", self.Step, self.Err)
}

func (self *StepError) Unwrap() error {
	return self.Err
}

// Step that failed, empty if the error didn't come from an issuance step
func FailedStep(err error) Step {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}
