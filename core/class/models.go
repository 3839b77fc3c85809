package class

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

type Class struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Students  int       `json:"students"` // derived roster count
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name     string `json:"name" validate:"required,notblank"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing Class.
// Zero values keep the current ones.
type UpdateClass struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity" validate:"omitempty,min=1"`
}

func (uc *UpdateClass) Validate(orig Class, validate *validator.Validate) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if err := validate.Struct(uc); err != nil {
		return err
	}
	if uc.Capacity == 0 {
		uc.Capacity = orig.Capacity
	}
	return nil
}

// NotEmptyError refuses the removal of a class that still has students.
type NotEmptyError struct {
	Students int
}

func (e *NotEmptyError) Error() string {
	return fmt.Sprintf("class still has %d student(s)", e.Students)
}
