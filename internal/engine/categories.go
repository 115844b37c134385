package engine

import (
	"context"
	"fmt"

	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/types"
	"github.com/hyperengineering/cdusync/internal/validation"
)

// checkView rejects malformed workspace keys.
func checkView(view string) error {
	if verr := validation.ValidateViewType("viewType", view); verr != nil {
		return fmt.Errorf("%w: %s", ErrInvalidView, verr.Message)
	}
	return nil
}

// categories returns the sibling list of kind k. Exam categories ignore
// view.
func categories(d *types.Dataset, k remote.CategoryKind, view string) []types.Category {
	switch k {
	case remote.ScriptCategories:
		return d.ScriptCategories[view]
	case remote.ExamCategories:
		return d.ExamCategories
	case remote.ContactCategories:
		return d.ContactCategories[view]
	default:
		return d.ValueTableCategories[view]
	}
}

func setCategories(d *types.Dataset, k remote.CategoryKind, view string, cats []types.Category) {
	switch k {
	case remote.ScriptCategories:
		d.ScriptCategories[view] = cats
	case remote.ExamCategories:
		d.ExamCategories = cats
	case remote.ContactCategories:
		d.ContactCategories[view] = cats
	default:
		d.ValueTableCategories[view] = cats
	}
}

// initChildren creates the empty child collection of a new category.
func initChildren(d *types.Dataset, k remote.CategoryKind, view, id string) {
	switch k {
	case remote.ScriptCategories:
		if d.ScriptData[view] == nil {
			d.ScriptData[view] = map[string][]types.Script{}
		}
		d.ScriptData[view][id] = []types.Script{}
	case remote.ExamCategories:
		d.ExamData[id] = []types.Exam{}
	case remote.ContactCategories:
		if d.ContactData[view] == nil {
			d.ContactData[view] = map[string][]types.ContactGroup{}
		}
		d.ContactData[view][id] = []types.ContactGroup{}
	default:
		if d.ValueTableData[view] == nil {
			d.ValueTableData[view] = map[string][]types.ValueTableItem{}
		}
		d.ValueTableData[view][id] = []types.ValueTableItem{}
	}
}

// dropChildren removes everything a deleted category owned.
func dropChildren(d *types.Dataset, k remote.CategoryKind, view, id string) {
	switch k {
	case remote.ScriptCategories:
		delete(d.ScriptData[view], id)
	case remote.ExamCategories:
		delete(d.ExamData, id)
	case remote.ContactCategories:
		delete(d.ContactData[view], id)
	default:
		delete(d.ValueTableData[view], id)
	}
}

func (e *Engine) categoryView(k remote.CategoryKind, view string) (string, error) {
	if k == remote.ExamCategories {
		return "", nil
	}
	return view, checkView(view)
}

// AddCategory appends c to the categories of kind k in view and returns it
// with its id and order assigned.
func (e *Engine) AddCategory(k remote.CategoryKind, view string, c types.Category) (types.Category, error) {
	view, err := e.categoryView(k, view)
	if err != nil {
		return types.Category{}, err
	}
	c.ID = e.newID()
	c.Order = nil

	e.mu.Lock()
	defer e.mu.Unlock()

	next, added, writes := appendOrdered(categories(e.data, k, view), c, categoryID)
	setCategories(e.data, k, view, next)
	initChildren(e.data, k, view, added.ID)
	e.touch()

	e.sync(k.String()+" category add", false, func(ctx context.Context, a *remote.Adapter) error {
		if err := a.InsertCategory(ctx, k, view, added); err != nil {
			return err
		}
		return persistOrder(ctx, a, k.Table(), writes)
	})
	return added, nil
}

// UpdateCategory patches a category. A patch carrying an order renumbers the
// siblings.
func (e *Engine) UpdateCategory(k remote.CategoryKind, view, id string, patch types.CategoryPatch) error {
	view, err := e.categoryView(k, view)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cats := categories(e.data, k, view)
	i := indexOf(cats, id, categoryID)
	if i < 0 {
		return fmt.Errorf("%s category %s: %w", k, id, ErrNotFound)
	}
	reorder := patch.Order != nil
	next, updated, writes := replaceOrdered(cats, patch.Apply(cats[i]), categoryID, reorder)
	setCategories(e.data, k, view, next)
	e.touch()

	e.sync(k.String()+" category update", reorder, func(ctx context.Context, a *remote.Adapter) error {
		if err := a.UpdateCategory(ctx, k, updated); err != nil {
			return err
		}
		return persistOrder(ctx, a, k.Table(), writes)
	})
	return nil
}

// DeleteCategory removes a category and everything it owns.
func (e *Engine) DeleteCategory(k remote.CategoryKind, view, id string) error {
	view, err := e.categoryView(k, view)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next, writes, ok := removeOrdered(categories(e.data, k, view), id, categoryID)
	if !ok {
		return fmt.Errorf("%s category %s: %w", k, id, ErrNotFound)
	}
	setCategories(e.data, k, view, next)
	dropChildren(e.data, k, view, id)
	e.touch()

	e.sync(k.String()+" category delete", true, func(ctx context.Context, a *remote.Adapter) error {
		if err := a.DeleteCategory(ctx, k, id); err != nil {
			return err
		}
		return persistOrder(ctx, a, k.Table(), writes)
	})
	return nil
}

// ReorderCategories moves the category at from to position to.
func (e *Engine) ReorderCategories(k remote.CategoryKind, view string, from, to int) error {
	view, err := e.categoryView(k, view)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next, writes, err := moveOrdered(categories(e.data, k, view), from, to, categoryID)
	if err != nil {
		return err
	}
	setCategories(e.data, k, view, next)
	e.touch()

	e.sync(k.String()+" category reorder", true, func(ctx context.Context, a *remote.Adapter) error {
		return persistOrder(ctx, a, k.Table(), writes)
	})
	return nil
}

func (e *Engine) hasCategory(k remote.CategoryKind, view, id string) bool {
	return indexOf(categories(e.data, k, view), id, categoryID) >= 0
}
