package engine

import (
	"context"
	"fmt"

	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/types"
)

func officeID(o types.Office) string                 { return o.ID }
func officeCategoryID(c types.OfficeCategory) string { return c.ID }
func officeItemID(it types.OfficeItem) string        { return it.ID }

func normalizeOffice(o types.Office) types.Office {
	if o.Specialties == nil {
		o.Specialties = []string{}
	}
	if o.Attendants == nil {
		o.Attendants = []types.OfficeAttendant{}
	}
	if o.Professionals == nil {
		o.Professionals = []types.OfficeProfessional{}
	}
	if o.Procedures == nil {
		o.Procedures = []string{}
	}
	if o.Categories == nil {
		o.Categories = []types.OfficeCategory{}
	}
	if o.Items == nil {
		o.Items = map[string][]types.OfficeItem{}
	}
	return o
}

// AddOffice appends an office.
func (e *Engine) AddOffice(o types.Office) (types.Office, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o.ID = e.newID()
	o = normalizeOffice(o.Clone())
	e.data.OfficeData = appended(e.data.OfficeData, o)
	e.touch()

	sent := o.Clone()
	e.sync("office add", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.InsertOffice(ctx, sent)
	})
	return o, nil
}

// UpdateOffice replaces an office. When o carries neither categories nor
// items, the nested ones already held are kept.
func (e *Engine) UpdateOffice(o types.Office) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := indexOf(e.data.OfficeData, o.ID, officeID)
	if i < 0 {
		return fmt.Errorf("office %s: %w", o.ID, ErrNotFound)
	}
	o = o.Clone()
	if o.Categories == nil && len(o.Items) == 0 {
		cur := e.data.OfficeData[i].Clone()
		o.Categories, o.Items = cur.Categories, cur.Items
	}
	return e.storeOffice(i, normalizeOffice(o), "office update", false)
}

// DeleteOffice removes an office with its nested categories and items.
func (e *Engine) DeleteOffice(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, ok := without(e.data.OfficeData, id, officeID)
	if !ok {
		return fmt.Errorf("office %s: %w", id, ErrNotFound)
	}
	e.data.OfficeData = next
	e.touch()

	e.sync("office delete", true, func(ctx context.Context, a *remote.Adapter) error {
		return a.DeleteOffice(ctx, id)
	})
	return nil
}

// storeOffice puts o at index i and persists the whole office row.
func (e *Engine) storeOffice(i int, o types.Office, op string, destructive bool) error {
	e.data.OfficeData = replaced(e.data.OfficeData, i, o)
	e.touch()

	sent := o.Clone()
	e.sync(op, destructive, func(ctx context.Context, a *remote.Adapter) error {
		return a.UpdateOffice(ctx, sent)
	})
	return nil
}

// editOffice hands a private copy of office id to fn and stores the
// result.
func (e *Engine) editOffice(id, op string, destructive bool, fn func(o *types.Office) error) error {
	i := indexOf(e.data.OfficeData, id, officeID)
	if i < 0 {
		return fmt.Errorf("office %s: %w", id, ErrParentNotFound)
	}
	o := normalizeOffice(e.data.OfficeData[i].Clone())
	if err := fn(&o); err != nil {
		return err
	}
	return e.storeOffice(i, o, op, destructive)
}

// AddOfficeCategory appends a detail category to an office.
func (e *Engine) AddOfficeCategory(officeID string, c types.OfficeCategory) (types.OfficeCategory, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c.ID = e.newID()
	err := e.editOffice(officeID, "office category add", false, func(o *types.Office) error {
		o.Categories = append(o.Categories, c)
		o.Items[c.ID] = []types.OfficeItem{}
		return nil
	})
	if err != nil {
		return types.OfficeCategory{}, err
	}
	return c, nil
}

// UpdateOfficeCategory replaces a detail category of an office.
func (e *Engine) UpdateOfficeCategory(officeID string, c types.OfficeCategory) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.editOffice(officeID, "office category update", false, func(o *types.Office) error {
		i := indexOf(o.Categories, c.ID, officeCategoryID)
		if i < 0 {
			return fmt.Errorf("office category %s: %w", c.ID, ErrNotFound)
		}
		o.Categories[i] = c
		return nil
	})
}

// DeleteOfficeCategory removes a detail category and its items.
func (e *Engine) DeleteOfficeCategory(officeID, catID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.editOffice(officeID, "office category delete", true, func(o *types.Office) error {
		next, ok := without(o.Categories, catID, officeCategoryID)
		if !ok {
			return fmt.Errorf("office category %s: %w", catID, ErrNotFound)
		}
		o.Categories = next
		delete(o.Items, catID)
		return nil
	})
}

func officeCategoryItems(o *types.Office, catID string) ([]types.OfficeItem, error) {
	if indexOf(o.Categories, catID, officeCategoryID) < 0 {
		return nil, fmt.Errorf("office category %s: %w", catID, ErrParentNotFound)
	}
	return o.Items[catID], nil
}

// AddOfficeItem files it under a detail category of an office.
func (e *Engine) AddOfficeItem(officeID, catID string, it types.OfficeItem) (types.OfficeItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	it.ID = e.newID()
	err := e.editOffice(officeID, "office item add", false, func(o *types.Office) error {
		items, err := officeCategoryItems(o, catID)
		if err != nil {
			return err
		}
		o.Items[catID] = append(items, it)
		return nil
	})
	if err != nil {
		return types.OfficeItem{}, err
	}
	return it, nil
}

// UpdateOfficeItem replaces an item of an office detail category.
func (e *Engine) UpdateOfficeItem(officeID, catID string, it types.OfficeItem) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.editOffice(officeID, "office item update", false, func(o *types.Office) error {
		items, err := officeCategoryItems(o, catID)
		if err != nil {
			return err
		}
		i := indexOf(items, it.ID, officeItemID)
		if i < 0 {
			return fmt.Errorf("office item %s: %w", it.ID, ErrNotFound)
		}
		items[i] = it
		return nil
	})
}

// DeleteOfficeItem removes an item of an office detail category.
func (e *Engine) DeleteOfficeItem(officeID, catID, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.editOffice(officeID, "office item delete", true, func(o *types.Office) error {
		items, err := officeCategoryItems(o, catID)
		if err != nil {
			return err
		}
		next, ok := without(items, id, officeItemID)
		if !ok {
			return fmt.Errorf("office item %s: %w", id, ErrNotFound)
		}
		o.Items[catID] = next
		return nil
	})
}
