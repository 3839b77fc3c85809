package dashboard

import (
	"context"
	"sort"

	"github.com/pkg/errors"
)

type (
	UpcomingEvaluation struct {
		ID          int    `json:"id"`
		Class       string `json:"class"`
		Date        string `json:"date"` // YYYY-MM-DD
		Description string `json:"description"`
	}

	Summary struct {
		TotalStudents       int                  `json:"total_students"`
		ActiveStudents      int                  `json:"active_students"`
		TotalClasses        int                  `json:"total_classes"`
		UpcomingEvaluations []UpcomingEvaluation `json:"upcoming_evaluations"`
	}
)

type (
	Repository interface {
		QueryUpcomingEvaluations(ctx context.Context) ([]UpcomingEvaluation, error)
	}

	StudentCounter interface {
		CountStudents(ctx context.Context) (total, active int, err error)
	}

	ClassCounter interface {
		CountClasses(ctx context.Context) (int, error)
	}

	Service struct {
		repo     Repository
		students StudentCounter
		classes  ClassCounter
	}
)

func NewService(repo Repository, students StudentCounter, classes ClassCounter) *Service {
	return &Service{repo: repo, students: students, classes: classes}
}

// Summary gathers the figures of the landing page. Upcoming evaluations are sorted by date.
func (svc *Service) Summary(ctx context.Context) (Summary, error) {
	var (
		sum Summary
		err error
	)
	if sum.TotalStudents, sum.ActiveStudents, err = svc.students.CountStudents(ctx); err != nil {
		return Summary{}, errors.Wrap(err, "counting students")
	}
	if sum.TotalClasses, err = svc.classes.CountClasses(ctx); err != nil {
		return Summary{}, errors.Wrap(err, "counting classes")
	}
	if sum.UpcomingEvaluations, err = svc.repo.QueryUpcomingEvaluations(ctx); err != nil {
		return Summary{}, errors.Wrap(err, "querying upcoming evaluations")
	}
	if sum.UpcomingEvaluations == nil {
		sum.UpcomingEvaluations = []UpcomingEvaluation{}
	}
	sort.SliceStable(sum.UpcomingEvaluations, func(i, j int) bool {
		return sum.UpcomingEvaluations[i].Date < sum.UpcomingEvaluations[j].Date
	})
	return sum, nil
}
