package class

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

var (
	// errors
	ErrNotFound   = errors.New("class not found")
	ErrNameExists = errors.New("a class with this name already exists")
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string, excludeID int) error
		CreateClass(ctx context.Context, c Class) (Class, error)
		QueryClasses(ctx context.Context, ordering ...core.Ordering) ([]Class, error)
		GetClassByID(ctx context.Context, id int) (Class, error)
		// UpdateClass saves c. On a rename the class's students follow it in the same write.
		UpdateClass(ctx context.Context, c Class) (Class, error)
		// DeleteClass fails with a *NotEmptyError while students still sit in the class.
		DeleteClass(ctx context.Context, id int) error
	}

	// Roster knows which students sit in which class, by class name.
	Roster interface {
		CountByClass(ctx context.Context) (map[string]int, error)
	}

	Service struct {
		repo   Repository
		roster Roster
	}
)

func NewService(repo Repository, roster Roster) *Service {
	return &Service{repo: repo, roster: roster}
}

func (svc *Service) checkUniqueness(ctx context.Context, name string, excludeID int) error {
	if err := svc.repo.CheckNameUniqueness(ctx, name, excludeID); err != nil {
		if errors.Cause(err) == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return errors.Wrap(err, "checking class name uniqueness")
	}
	return nil
}

// withCounts fills the derived Students field of classes.
func (svc *Service) withCounts(ctx context.Context, classes ...Class) ([]Class, error) {
	counts, err := svc.roster.CountByClass(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting students")
	}
	for i := range classes {
		classes[i].Students = counts[classes[i].Name]
	}
	return classes, nil
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	if err := svc.checkUniqueness(ctx, nc.Name, 0); err != nil {
		return Class{}, err
	}
	now := time.Now().UTC()
	c, err := svc.repo.CreateClass(ctx, Class{
		Name:      nc.Name,
		Capacity:  nc.Capacity,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Class{}, errors.Wrap(err, "creating class")
	}
	return c, nil
}

func (svc *Service) Query(ctx context.Context, ordering ...core.Ordering) ([]Class, error) {
	classes, err := svc.repo.QueryClasses(ctx, ordering...)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	return svc.withCounts(ctx, classes...)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Class, error) {
	c, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	classes, err := svc.withCounts(ctx, c)
	if err != nil {
		return Class{}, err
	}
	return classes[0], nil
}

// Update saves uc on the class with id. A new name is carried over to the class's students.
// The rename and the move are one repository write, so a cancelled ctx leaves both undone or both done.
func (svc *Service) Update(ctx context.Context, id int, uc UpdateClass) (Class, error) {
	orig, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if uc.Name != orig.Name {
		if err = svc.checkUniqueness(ctx, uc.Name, id); err != nil {
			return Class{}, err
		}
	}

	c, err := svc.repo.UpdateClass(ctx, Class{
		ID:        id,
		Name:      uc.Name,
		Capacity:  uc.Capacity,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Class{}, errors.Wrap(err, "updating class")
	}
	classes, err := svc.withCounts(ctx, c)
	if err != nil {
		return Class{}, err
	}
	return classes[0], nil
}

// Delete removes an empty class.
func (svc *Service) Delete(ctx context.Context, id int) error {
	err := svc.repo.DeleteClass(ctx, id)
	var neErr *NotEmptyError
	if errors.As(err, &neErr) {
		return core.NewValidationError(err, core.FieldError{Field: "students", Error: neErr.Error()})
	}
	return err
}

// Names lists class names in creation order.
func (svc *Service) Names(ctx context.Context) ([]string, error) {
	classes, err := svc.repo.QueryClasses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	names := make([]string, 0, len(classes))
	for _, c := range classes {
		names = append(names, c.Name)
	}
	return names, nil
}
