package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

// Statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusAll      = "all" // filter only
)

type Student struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Class     string    `json:"class"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Student) IsActive() bool { return s.Status == StatusActive }

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name   string `json:"name" validate:"required,notblank"`
	Email  string `json:"email" validate:"required,email"`
	Class  string `json:"class" validate:"required,notblank"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Class = core.CleanString(ns.Class)
	ns.Status = core.CleanString(ns.Status, true /* lower */)
	if ns.Status == "" {
		ns.Status = StatusActive
	}
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Empty fields keep the current values.
type UpdateStudent struct {
	Name   string `json:"name"`
	Email  string `json:"email" validate:"omitempty,email"`
	Class  string `json:"class"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate) error {
	keep := func(val, origVal string, lower bool) string {
		if val = core.CleanString(val, lower); val != "" {
			return val
		}
		return origVal
	}
	us.Name = keep(us.Name, orig.Name, false)
	us.Email = keep(us.Email, orig.Email, true)
	us.Class = keep(us.Class, orig.Class, false)
	us.Status = keep(us.Status, orig.Status, true)
	return validate.Struct(us)
}

type QueryFilter struct {
	Search string `query:"search"`
	Class  string `query:"class"`
	Status string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Class == "" && (qf.Status == "" || qf.Status == StatusAll)
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Class = core.CleanString(qf.Class)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	if qf.Status == StatusAll {
		qf.Status = ""
	}
}
