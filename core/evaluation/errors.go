package evaluation

import (
	"errors"
	"fmt"
)

var (
	ErrCriterionNotFound   = errors.New("criterion not found")
	ErrEditorBusy          = errors.New("another criterion is already being edited")
	ErrEditorIdle          = errors.New("no criterion is being edited")
	ErrRemovalNotConfirmed = errors.New("removal of a criterion requires confirmation")
	ErrNoSession           = errors.New("no class selected")
	ErrUnknownClass        = errors.New("class not found")

	errNameRequired      = errors.New("criterion name is required")
	errWeightNotPositive = errors.New("weight must be greater than zero")
)

// ExceedsError reports a change that would push the total weight over MaxTotal.
// Current is the total of the other criteria, Attempted the rejected weight.
type ExceedsError struct {
	Current   int
	Attempted int
}

func (e *ExceedsError) Error() string {
	return fmt.Sprintf("the sum of weights cannot exceed %d%% (current: %d%%, new: %d%%)", MaxTotal, e.Current, e.Attempted)
}
