package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/store"
	"github.com/hyperengineering/cdusync/internal/types"
)

func recadoItemID(it types.RecadoItem) string { return it.ID }

// AddRecadoCategory appends a recado category as the last one.
func (e *Engine) AddRecadoCategory(c types.RecadoCategory) (types.RecadoCategory, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c.ID = e.newID()
	c = c.Clone()
	c.Order = nil
	next, added, writes := appendOrdered(e.data.RecadoCategories, c, recadoCategoryID)
	e.data.RecadoCategories = next
	e.data.RecadoData[added.ID] = []types.RecadoItem{}
	e.touch()

	e.sync("recado category add", false, func(ctx context.Context, a *remote.Adapter) error {
		if err := a.InsertRecadoCategory(ctx, added); err != nil {
			return err
		}
		return persistOrder(ctx, a, store.TableRecadoCategories, writes)
	})
	return added, nil
}

// UpdateRecadoCategory replaces a recado category. A nil order keeps the
// current position; a different order renumbers the siblings.
func (e *Engine) UpdateRecadoCategory(c types.RecadoCategory) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cats := e.data.RecadoCategories
	i := indexOf(cats, c.ID, recadoCategoryID)
	if i < 0 {
		return fmt.Errorf("recado category %s: %w", c.ID, ErrNotFound)
	}
	c = c.Clone()
	reorder := c.Order != nil && types.OrderOf(c.Order) != types.OrderOf(cats[i].Order)
	if c.Order == nil {
		c.Order = cats[i].Order
	}
	next, updated, writes := replaceOrdered(cats, c, recadoCategoryID, reorder)
	e.data.RecadoCategories = next
	e.touch()

	e.sync("recado category update", reorder, func(ctx context.Context, a *remote.Adapter) error {
		if err := a.UpdateRecadoCategory(ctx, updated); err != nil {
			return err
		}
		return persistOrder(ctx, a, store.TableRecadoCategories, writes)
	})
	return nil
}

// DeleteRecadoCategory removes a recado category and its items.
func (e *Engine) DeleteRecadoCategory(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, writes, ok := removeOrdered(e.data.RecadoCategories, id, recadoCategoryID)
	if !ok {
		return fmt.Errorf("recado category %s: %w", id, ErrNotFound)
	}
	e.data.RecadoCategories = next
	delete(e.data.RecadoData, id)
	e.touch()

	e.sync("recado category delete", true, func(ctx context.Context, a *remote.Adapter) error {
		if err := a.DeleteRecadoCategory(ctx, id); err != nil {
			return err
		}
		return persistOrder(ctx, a, store.TableRecadoCategories, writes)
	})
	return nil
}

// ReorderRecadoCategories moves the category at from to position to.
func (e *Engine) ReorderRecadoCategories(from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, writes, err := moveOrdered(e.data.RecadoCategories, from, to, recadoCategoryID)
	if err != nil {
		return err
	}
	e.data.RecadoCategories = next
	e.touch()

	e.sync("recado category reorder", true, func(ctx context.Context, a *remote.Adapter) error {
		return persistOrder(ctx, a, store.TableRecadoCategories, writes)
	})
	return nil
}

func (e *Engine) recadoItems(catID string) ([]types.RecadoItem, error) {
	if indexOf(e.data.RecadoCategories, catID, recadoCategoryID) < 0 {
		return nil, fmt.Errorf("recado category %s: %w", catID, ErrParentNotFound)
	}
	return e.data.RecadoData[catID], nil
}

// AddRecadoItem files a message template under a recado category.
func (e *Engine) AddRecadoItem(catID string, it types.RecadoItem) (types.RecadoItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.recadoItems(catID)
	if err != nil {
		return types.RecadoItem{}, err
	}
	it.ID = e.newID()
	it.Fields = slices.Clone(it.Fields)
	if it.Fields == nil {
		it.Fields = []string{}
	}
	e.data.RecadoData[catID] = appended(cur, it)
	e.touch()

	e.sync("recado item add", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.InsertRecadoItem(ctx, catID, it)
	})
	return it, nil
}

// UpdateRecadoItem patches a message template.
func (e *Engine) UpdateRecadoItem(catID, id string, patch types.RecadoItemPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.recadoItems(catID)
	if err != nil {
		return err
	}
	i := indexOf(cur, id, recadoItemID)
	if i < 0 {
		return fmt.Errorf("recado item %s: %w", id, ErrNotFound)
	}
	updated := patch.Apply(cur[i])
	e.data.RecadoData[catID] = replaced(cur, i, updated)
	e.touch()

	e.sync("recado item update", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.UpdateRecadoItem(ctx, updated)
	})
	return nil
}

// DeleteRecadoItem removes a message template.
func (e *Engine) DeleteRecadoItem(catID, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.recadoItems(catID)
	if err != nil {
		return err
	}
	next, ok := without(cur, id, recadoItemID)
	if !ok {
		return fmt.Errorf("recado item %s: %w", id, ErrNotFound)
	}
	e.data.RecadoData[catID] = next
	e.touch()

	e.sync("recado item delete", true, func(ctx context.Context, a *remote.Adapter) error {
		return a.DeleteRecadoItem(ctx, id)
	})
	return nil
}
