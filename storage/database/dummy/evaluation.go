package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/gradebook/core/dashboard"
)

type evaluationRepository struct {
	db *DB
	t  *evaluationTable
}

var _ dashboard.Repository = (*evaluationRepository)(nil) // interface compliance check

func NewEvaluationRepository(db *DB) dashboard.Repository {
	return &evaluationRepository{db: db, t: db.evaluation}
}

func (repo *evaluationRepository) QueryUpcomingEvaluations(ctx context.Context) ([]dashboard.UpcomingEvaluation, error) {
	if err := repo.db.wait(ctx); err != nil {
		return nil, err
	}
	repo.t.RLock()
	defer repo.t.RUnlock()

	evals := make([]dashboard.UpcomingEvaluation, 0, len(repo.t.table))
	for _, e := range repo.t.table {
		evals = append(evals, *e)
	}
	sort.Slice(evals, func(i, j int) bool { return evals[i].ID < evals[j].ID })
	return evals, nil
}
