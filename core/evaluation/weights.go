package evaluation

import (
	"fmt"

	"github.com/trezcool/gradebook/core"
)

type Status string

const (
	StatusComplete   Status = "complete"
	StatusIncomplete Status = "incomplete"
	StatusExceeded   Status = "exceeded"
)

// Summary is the derived view of a criterion set.
type Summary struct {
	Total     int    `json:"total"`
	Remaining int    `json:"remaining"`
	Valid     bool   `json:"valid"`
	Status    Status `json:"status"`
	Message   string `json:"message"`
}

// Sum returns the total weight of criteria; 0 when empty.
func Sum(criteria []Criterion) int {
	var total int
	for _, c := range criteria {
		total += c.Weight
	}
	return total
}

// Remaining returns MaxTotal - Sum(criteria).
// Positive is under-allocated, negative over-allocated, zero complete.
func Remaining(criteria []Criterion) int {
	return MaxTotal - Sum(criteria)
}

// sumExcluding totals every criterion but the one with excludeID (0 excludes nothing).
func sumExcluding(criteria []Criterion, excludeID int) int {
	var total int
	for _, c := range criteria {
		if excludeID != 0 && c.ID == excludeID {
			continue
		}
		total += c.Weight
	}
	return total
}

// CanAccept reports whether weight fits next to the other criteria.
// excludeID is the criterion being edited, so that its previous weight is not counted twice;
// pass 0 when creating.
func CanAccept(criteria []Criterion, excludeID, weight int) bool {
	return sumExcluding(criteria, excludeID)+weight <= MaxTotal
}

// Check validates a proposed criterion against the set.
// The first failing rule is returned as a *core.ValidationError:
// blank name, non-positive weight, then a total above MaxTotal (*ExceedsError).
func Check(criteria []Criterion, excludeID int, name string, weight int) error {
	if core.CleanString(name) == "" {
		return core.NewValidationError(errNameRequired, core.FieldError{Field: "name", Error: errNameRequired.Error()})
	}
	if weight <= 0 {
		return core.NewValidationError(errWeightNotPositive, core.FieldError{Field: "weight", Error: errWeightNotPositive.Error()})
	}
	if base := sumExcluding(criteria, excludeID); base+weight > MaxTotal {
		err := &ExceedsError{Current: base, Attempted: weight}
		return core.NewValidationError(err, core.FieldError{Field: "weight", Error: err.Error()})
	}
	return nil
}

// Summarize derives the total, remaining budget and validity of criteria.
// A set is valid only when its weights add up to exactly MaxTotal.
func Summarize(criteria []Criterion) Summary {
	total := Sum(criteria)
	s := Summary{
		Total:     total,
		Remaining: MaxTotal - total,
		Valid:     total == MaxTotal,
	}
	switch {
	case s.Remaining == 0:
		s.Status = StatusComplete
		s.Message = fmt.Sprintf("Valid configuration: weights sum to %d%%", MaxTotal)
	case s.Remaining > 0:
		s.Status = StatusIncomplete
		s.Message = fmt.Sprintf("Missing %d%%", s.Remaining)
	default:
		s.Status = StatusExceeded
		s.Message = fmt.Sprintf("Exceeded %d%%", -s.Remaining)
	}
	return s
}
