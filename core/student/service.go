package student

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/gradebook/core"
)

var (
	// errors
	ErrNotFound     = errors.New("student not found")
	ErrEmailExists  = errors.New("a student with this email already exists")
	ErrUnknownClass = errors.New("class not found")

	suggestionCutoff = .6
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludeID int) error
		CreateStudent(ctx context.Context, s Student) (Student, error)
		// FilterStudents applies AND operation on the set QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Student.Name or Student.Email.
		FilterStudents(ctx context.Context, filter QueryFilter, ordering ...core.Ordering) ([]Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudent(ctx context.Context, id int) error
	}

	// ClassDirectory supplies the names of the existing classes.
	ClassDirectory interface {
		Names(ctx context.Context) ([]string, error)
	}

	Service struct {
		repo    Repository
		classes ClassDirectory
	}
)

func NewService(repo Repository, classes ClassDirectory) *Service {
	return &Service{repo: repo, classes: classes}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, excludeID int) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludeID); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return errors.Wrap(err, "checking email uniqueness")
	}
	return nil
}

// checkClass makes sure the class exists, suggesting the closest name when it does not.
func (svc *Service) checkClass(ctx context.Context, class string) error {
	names, err := svc.classes.Names(ctx)
	if err != nil {
		return errors.Wrap(err, "listing class names")
	}
	for _, name := range names {
		if name == class {
			return nil
		}
	}
	return unknownClassError(class, names)
}

// classVanished reports a class that the repository no longer found when writing.
func (svc *Service) classVanished(ctx context.Context, class string) error {
	names, _ := svc.classes.Names(ctx)
	return unknownClassError(class, names)
}

func unknownClassError(class string, names []string) error {
	msg := ErrUnknownClass.Error()
	if match := closestMatch(class, names); match != "" {
		msg = fmt.Sprintf("%s, did you mean %q?", msg, match)
	}
	return core.NewValidationError(ErrUnknownClass, core.FieldError{Field: "class", Error: msg})
}

// closestMatch returns the candidate most similar to word, or "" when none is similar enough.
func closestMatch(word string, candidates []string) string {
	var (
		best      string
		bestRatio = suggestionCutoff
	)
	lword := strings.Split(strings.ToLower(word), "")
	for _, c := range candidates {
		ratio := difflib.NewMatcher(lword, strings.Split(strings.ToLower(c), "")).Ratio()
		if ratio > bestRatio || (best == "" && ratio == bestRatio) {
			best, bestRatio = c, ratio
		}
	}
	return best
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := svc.checkClass(ctx, ns.Class); err != nil {
		return Student{}, err
	}
	if err := svc.checkUniqueness(ctx, ns.Email, 0); err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	s, err := svc.repo.CreateStudent(ctx, Student{
		Name:      ns.Name,
		Email:     ns.Email,
		Class:     ns.Class,
		Status:    ns.Status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Cause(err) == ErrUnknownClass {
			return Student{}, svc.classVanished(ctx, ns.Class)
		}
		return Student{}, errors.Wrap(err, "creating student")
	}
	return s, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.Ordering) ([]Student, error) {
	filter.Clean()
	students, err := svc.repo.FilterStudents(ctx, filter, ordering...)
	if err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	return students, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	if us.Class != orig.Class {
		if err := svc.checkClass(ctx, us.Class); err != nil {
			return Student{}, err
		}
	}
	if us.Email != orig.Email {
		if err := svc.checkUniqueness(ctx, us.Email, orig.ID); err != nil {
			return Student{}, err
		}
	}

	s, err := svc.repo.UpdateStudent(ctx, Student{
		ID:        orig.ID,
		Name:      us.Name,
		Email:     us.Email,
		Class:     us.Class,
		Status:    us.Status,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Cause(err) == ErrUnknownClass {
			return Student{}, svc.classVanished(ctx, us.Class)
		}
		return Student{}, errors.Wrap(err, "updating student")
	}
	return s, nil
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteStudent(ctx, id)
}
