package engine

import (
	"context"
	"fmt"

	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/types"
)

func examID(x types.Exam) string { return x.ID }

func (e *Engine) exams(catID string) ([]types.Exam, error) {
	if !e.hasCategory(remote.ExamCategories, "", catID) {
		return nil, fmt.Errorf("exam category %s: %w", catID, ErrParentNotFound)
	}
	return e.data.ExamData[catID], nil
}

// AddExam files x under an exam category.
func (e *Engine) AddExam(catID string, x types.Exam) (types.Exam, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.exams(catID)
	if err != nil {
		return types.Exam{}, err
	}
	x.ID = e.newID()
	if x.Location == nil {
		x.Location = []string{}
	}
	e.data.ExamData[catID] = appended(cur, x)
	e.touch()

	e.sync("exam add", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.InsertExam(ctx, catID, x)
	})
	return x, nil
}

// UpdateExam patches an exam.
func (e *Engine) UpdateExam(catID, id string, patch types.ExamPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.exams(catID)
	if err != nil {
		return err
	}
	i := indexOf(cur, id, examID)
	if i < 0 {
		return fmt.Errorf("exam %s: %w", id, ErrNotFound)
	}
	updated := patch.Apply(cur[i])
	e.data.ExamData[catID] = replaced(cur, i, updated)
	e.touch()

	e.sync("exam update", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.UpdateExam(ctx, updated)
	})
	return nil
}

// DeleteExam removes an exam.
func (e *Engine) DeleteExam(catID, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.exams(catID)
	if err != nil {
		return err
	}
	next, ok := without(cur, id, examID)
	if !ok {
		return fmt.Errorf("exam %s: %w", id, ErrNotFound)
	}
	e.data.ExamData[catID] = next
	e.touch()

	e.sync("exam delete", true, func(ctx context.Context, a *remote.Adapter) error {
		return a.DeleteExam(ctx, id)
	})
	return nil
}
