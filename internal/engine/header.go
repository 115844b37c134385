package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/types"
)

// UpdateHeaderTag patches a header tag. Tags seeded locally reach the
// remote store on their first edit.
func (e *Engine) UpdateHeaderTag(id string, patch types.HeaderTagPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := indexOf(e.data.HeaderTagData, id, headerTagID)
	if i < 0 {
		return fmt.Errorf("header tag %s: %w", id, ErrNotFound)
	}
	updated := patch.Apply(e.data.HeaderTagData[i])
	e.data.HeaderTagData = replaced(e.data.HeaderTagData, i, updated)
	e.touch()

	e.sync("header tag update", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.SaveHeaderTag(ctx, updated)
	})
	return nil
}

// ReorderHeaderTags moves the tag at from to position to. Every tag whose
// order changed is saved whole, so seeded tags are created on the way.
func (e *Engine) ReorderHeaderTags(from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, writes, err := moveOrdered(e.data.HeaderTagData, from, to, headerTagID)
	if err != nil {
		return err
	}
	e.data.HeaderTagData = next
	e.touch()

	changed := make([]types.HeaderTag, 0, len(writes))
	for _, w := range writes {
		changed = append(changed, next[indexOf(next, w.id, headerTagID)])
	}
	e.sync("header tag reorder", true, func(ctx context.Context, a *remote.Adapter) error {
		var g errgroup.Group
		for _, h := range changed {
			g.Go(func() error {
				return a.SaveHeaderTag(ctx, h)
			})
		}
		return g.Wait()
	})
	return nil
}
