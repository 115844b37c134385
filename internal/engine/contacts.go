package engine

import (
	"context"
	"fmt"

	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/types"
)

func contactGroupID(g types.ContactGroup) string { return g.ID }
func contactPointID(p types.ContactPoint) string { return p.ID }

func (e *Engine) contactGroups(view, catID string) ([]types.ContactGroup, error) {
	if err := checkView(view); err != nil {
		return nil, err
	}
	if !e.hasCategory(remote.ContactCategories, view, catID) {
		return nil, fmt.Errorf("contact category %s: %w", catID, ErrParentNotFound)
	}
	return e.data.ContactData[view][catID], nil
}

func (e *Engine) setContactGroups(view, catID string, g []types.ContactGroup) {
	if e.data.ContactData[view] == nil {
		e.data.ContactData[view] = map[string][]types.ContactGroup{}
	}
	e.data.ContactData[view][catID] = g
}

// AddContactGroup files g, with its points, under a contact category.
func (e *Engine) AddContactGroup(view, catID string, g types.ContactGroup) (types.ContactGroup, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.contactGroups(view, catID)
	if err != nil {
		return types.ContactGroup{}, err
	}
	g.ID = e.newID()
	points := make([]types.ContactPoint, len(g.Points))
	for i, p := range g.Points {
		p.ID = e.newID()
		points[i] = p
	}
	g.Points = points
	e.setContactGroups(view, catID, appended(cur, g))
	e.touch()

	e.sync("contact group add", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.InsertContactGroup(ctx, catID, g)
	})
	return g, nil
}

// UpdateContactGroup renames a group.
func (e *Engine) UpdateContactGroup(view, catID, id string, patch types.ContactGroupPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.contactGroups(view, catID)
	if err != nil {
		return err
	}
	i := indexOf(cur, id, contactGroupID)
	if i < 0 {
		return fmt.Errorf("contact group %s: %w", id, ErrNotFound)
	}
	updated := patch.Apply(cur[i])
	e.setContactGroups(view, catID, replaced(cur, i, updated))
	e.touch()

	e.sync("contact group update", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.UpdateContactGroup(ctx, updated)
	})
	return nil
}

// DeleteContactGroup removes a group and its points.
func (e *Engine) DeleteContactGroup(view, catID, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.contactGroups(view, catID)
	if err != nil {
		return err
	}
	next, ok := without(cur, id, contactGroupID)
	if !ok {
		return fmt.Errorf("contact group %s: %w", id, ErrNotFound)
	}
	e.setContactGroups(view, catID, next)
	e.touch()

	e.sync("contact group delete", true, func(ctx context.Context, a *remote.Adapter) error {
		return a.DeleteContactGroup(ctx, id)
	})
	return nil
}

// withPoints locates group groupID and hands its points to fn, storing the
// group fn returns.
func (e *Engine) withPoints(view, catID, groupID string, fn func(points []types.ContactPoint) ([]types.ContactPoint, error)) error {
	cur, err := e.contactGroups(view, catID)
	if err != nil {
		return err
	}
	i := indexOf(cur, groupID, contactGroupID)
	if i < 0 {
		return fmt.Errorf("contact group %s: %w", groupID, ErrParentNotFound)
	}
	points, err := fn(cur[i].Points)
	if err != nil {
		return err
	}
	g := cur[i]
	g.Points = points
	e.setContactGroups(view, catID, replaced(cur, i, g))
	e.touch()
	return nil
}

// AddContactPoint appends p to a contact group.
func (e *Engine) AddContactPoint(view, catID, groupID string, p types.ContactPoint) (types.ContactPoint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p.ID = e.newID()
	err := e.withPoints(view, catID, groupID, func(points []types.ContactPoint) ([]types.ContactPoint, error) {
		return appended(points, p), nil
	})
	if err != nil {
		return types.ContactPoint{}, err
	}

	e.sync("contact point add", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.InsertContactPoint(ctx, groupID, p)
	})
	return p, nil
}

// UpdateContactPoint patches a contact point.
func (e *Engine) UpdateContactPoint(view, catID, groupID, id string, patch types.ContactPointPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var updated types.ContactPoint
	err := e.withPoints(view, catID, groupID, func(points []types.ContactPoint) ([]types.ContactPoint, error) {
		i := indexOf(points, id, contactPointID)
		if i < 0 {
			return nil, fmt.Errorf("contact point %s: %w", id, ErrNotFound)
		}
		updated = patch.Apply(points[i])
		return replaced(points, i, updated), nil
	})
	if err != nil {
		return err
	}

	e.sync("contact point update", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.UpdateContactPoint(ctx, updated)
	})
	return nil
}

// DeleteContactPoint removes a contact point.
func (e *Engine) DeleteContactPoint(view, catID, groupID, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.withPoints(view, catID, groupID, func(points []types.ContactPoint) ([]types.ContactPoint, error) {
		next, ok := without(points, id, contactPointID)
		if !ok {
			return nil, fmt.Errorf("contact point %s: %w", id, ErrNotFound)
		}
		return next, nil
	})
	if err != nil {
		return err
	}

	e.sync("contact point delete", true, func(ctx context.Context, a *remote.Adapter) error {
		return a.DeleteContactPoint(ctx, id)
	})
	return nil
}
