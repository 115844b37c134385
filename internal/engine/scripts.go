package engine

import (
	"context"
	"fmt"

	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/store"
	"github.com/hyperengineering/cdusync/internal/types"
)

func (e *Engine) scripts(view, catID string) ([]types.Script, error) {
	if err := checkView(view); err != nil {
		return nil, err
	}
	if !e.hasCategory(remote.ScriptCategories, view, catID) {
		return nil, fmt.Errorf("script category %s: %w", catID, ErrParentNotFound)
	}
	return e.data.ScriptData[view][catID], nil
}

func (e *Engine) setScripts(view, catID string, s []types.Script) {
	if e.data.ScriptData[view] == nil {
		e.data.ScriptData[view] = map[string][]types.Script{}
	}
	e.data.ScriptData[view][catID] = s
}

// AddScript files s under a script category. Without an explicit order it
// goes last.
func (e *Engine) AddScript(view, catID string, s types.Script) (types.Script, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.scripts(view, catID)
	if err != nil {
		return types.Script{}, err
	}
	s.ID = e.newID()
	next, added, writes := appendOrdered(cur, s, scriptID)
	e.setScripts(view, catID, next)
	e.touch()

	e.sync("script add", false, func(ctx context.Context, a *remote.Adapter) error {
		if err := a.InsertScript(ctx, catID, added); err != nil {
			return err
		}
		return persistOrder(ctx, a, store.TableScripts, writes)
	})
	return added, nil
}

// UpdateScript patches a script. A patch carrying an order renumbers the
// category.
func (e *Engine) UpdateScript(view, catID, id string, patch types.ScriptPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.scripts(view, catID)
	if err != nil {
		return err
	}
	i := indexOf(cur, id, scriptID)
	if i < 0 {
		return fmt.Errorf("script %s: %w", id, ErrNotFound)
	}
	reorder := patch.Order != nil
	next, updated, writes := replaceOrdered(cur, patch.Apply(cur[i]), scriptID, reorder)
	e.setScripts(view, catID, next)
	e.touch()

	e.sync("script update", reorder, func(ctx context.Context, a *remote.Adapter) error {
		if err := a.UpdateScript(ctx, updated); err != nil {
			return err
		}
		return persistOrder(ctx, a, store.TableScripts, writes)
	})
	return nil
}

// DeleteScript removes a script and renumbers its category.
func (e *Engine) DeleteScript(view, catID, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.scripts(view, catID)
	if err != nil {
		return err
	}
	next, writes, ok := removeOrdered(cur, id, scriptID)
	if !ok {
		return fmt.Errorf("script %s: %w", id, ErrNotFound)
	}
	e.setScripts(view, catID, next)
	e.touch()

	e.sync("script delete", true, func(ctx context.Context, a *remote.Adapter) error {
		if err := a.DeleteScript(ctx, id); err != nil {
			return err
		}
		return persistOrder(ctx, a, store.TableScripts, writes)
	})
	return nil
}

// ReorderScripts moves the script at from to position to.
func (e *Engine) ReorderScripts(view, catID string, from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.scripts(view, catID)
	if err != nil {
		return err
	}
	next, writes, err := moveOrdered(cur, from, to, scriptID)
	if err != nil {
		return err
	}
	e.setScripts(view, catID, next)
	e.touch()

	e.sync("script reorder", true, func(ctx context.Context, a *remote.Adapter) error {
		return persistOrder(ctx, a, store.TableScripts, writes)
	})
	return nil
}
