package engine

import (
	"context"
	"fmt"

	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/types"
)

func valueItemID(v types.ValueTableItem) string  { return v.ID }
func professionalID(p types.Professional) string { return p.ID }

func (e *Engine) valueItems(view, catID string) ([]types.ValueTableItem, error) {
	if err := checkView(view); err != nil {
		return nil, err
	}
	if !e.hasCategory(remote.ValueTableCategories, view, catID) {
		return nil, fmt.Errorf("value table category %s: %w", catID, ErrParentNotFound)
	}
	return e.data.ValueTableData[view][catID], nil
}

func (e *Engine) setValueItems(view, catID string, v []types.ValueTableItem) {
	if e.data.ValueTableData[view] == nil {
		e.data.ValueTableData[view] = map[string][]types.ValueTableItem{}
	}
	e.data.ValueTableData[view][catID] = v
}

// AddValueItem files v under a value table category.
func (e *Engine) AddValueItem(view, catID string, v types.ValueTableItem) (types.ValueTableItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.valueItems(view, catID)
	if err != nil {
		return types.ValueTableItem{}, err
	}
	v.ID = e.newID()
	if v.HonorariosDiferenciados == nil {
		v.HonorariosDiferenciados = []types.Fee{}
	}
	e.setValueItems(view, catID, appended(cur, v))
	e.touch()

	e.sync("value item add", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.InsertValueItem(ctx, catID, v)
	})
	return v, nil
}

// UpdateValueItem patches a value table row in place.
func (e *Engine) UpdateValueItem(view, catID, id string, patch types.ValueTableItemPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.valueItems(view, catID)
	if err != nil {
		return err
	}
	i := indexOf(cur, id, valueItemID)
	if i < 0 {
		return fmt.Errorf("value item %s: %w", id, ErrNotFound)
	}
	updated := patch.Apply(cur[i])
	e.setValueItems(view, catID, replaced(cur, i, updated))
	e.touch()

	e.sync("value item update", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.UpdateValueItem(ctx, updated)
	})
	return nil
}

// MoveAndUpdateValueItem patches a row and files it under newCat. When the
// category is unchanged this is UpdateValueItem; otherwise the row is
// deleted from oldCat and inserted, with the same id, into newCat.
func (e *Engine) MoveAndUpdateValueItem(view, oldCat, newCat, id string, patch types.ValueTableItemPatch) error {
	if oldCat == newCat {
		return e.UpdateValueItem(view, oldCat, id, patch)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	src, err := e.valueItems(view, oldCat)
	if err != nil {
		return err
	}
	dst, err := e.valueItems(view, newCat)
	if err != nil {
		return err
	}
	i := indexOf(src, id, valueItemID)
	if i < 0 {
		return fmt.Errorf("value item %s: %w", id, ErrNotFound)
	}
	moved := patch.Apply(src[i])
	rest, _ := without(src, id, valueItemID)
	e.setValueItems(view, oldCat, rest)
	e.setValueItems(view, newCat, appended(dst, moved))
	e.touch()

	e.sync("value item move", true, func(ctx context.Context, a *remote.Adapter) error {
		if err := a.DeleteValueItem(ctx, id); err != nil {
			return err
		}
		return a.InsertValueItem(ctx, newCat, moved)
	})
	return nil
}

// DeleteValueItem removes a value table row.
func (e *Engine) DeleteValueItem(view, catID, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.valueItems(view, catID)
	if err != nil {
		return err
	}
	next, ok := without(cur, id, valueItemID)
	if !ok {
		return fmt.Errorf("value item %s: %w", id, ErrNotFound)
	}
	e.setValueItems(view, catID, next)
	e.touch()

	e.sync("value item delete", true, func(ctx context.Context, a *remote.Adapter) error {
		return a.DeleteValueItem(ctx, id)
	})
	return nil
}

// Professionals are grouped under a free-form key rather than a category
// entity, so the key is created on first use.

func (e *Engine) professionals(view, key string) ([]types.Professional, error) {
	if err := checkView(view); err != nil {
		return nil, err
	}
	return e.data.ProfessionalData[view][key], nil
}

func (e *Engine) setProfessionals(view, key string, p []types.Professional) {
	if e.data.ProfessionalData[view] == nil {
		e.data.ProfessionalData[view] = map[string][]types.Professional{}
	}
	e.data.ProfessionalData[view][key] = p
}

// AddProfessional files p under the grouping key of view.
func (e *Engine) AddProfessional(view, key string, p types.Professional) (types.Professional, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.professionals(view, key)
	if err != nil {
		return types.Professional{}, err
	}
	p.ID = e.newID()
	if p.PerformedExams == nil {
		p.PerformedExams = []types.ExamDetail{}
	}
	e.setProfessionals(view, key, appended(cur, p))
	e.touch()

	e.sync("professional add", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.InsertProfessional(ctx, view, key, p)
	})
	return p, nil
}

// UpdateProfessional patches a professional.
func (e *Engine) UpdateProfessional(view, key, id string, patch types.ProfessionalPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.professionals(view, key)
	if err != nil {
		return err
	}
	i := indexOf(cur, id, professionalID)
	if i < 0 {
		return fmt.Errorf("professional %s: %w", id, ErrNotFound)
	}
	updated := patch.Apply(cur[i])
	e.setProfessionals(view, key, replaced(cur, i, updated))
	e.touch()

	e.sync("professional update", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.UpdateProfessional(ctx, updated)
	})
	return nil
}

// DeleteProfessional removes a professional.
func (e *Engine) DeleteProfessional(view, key, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.professionals(view, key)
	if err != nil {
		return err
	}
	next, ok := without(cur, id, professionalID)
	if !ok {
		return fmt.Errorf("professional %s: %w", id, ErrNotFound)
	}
	e.setProfessionals(view, key, next)
	e.touch()

	e.sync("professional delete", true, func(ctx context.Context, a *remote.Adapter) error {
		return a.DeleteProfessional(ctx, id)
	})
	return nil
}
