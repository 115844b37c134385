package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/store"
	"github.com/hyperengineering/cdusync/internal/types"
	"github.com/hyperengineering/cdusync/internal/validation"
)

func infoItemID(it types.InfoItem) string { return it.ID }

// infoSection resolves the tag list and item map of section. Both sections
// share the remote info tables.
func (e *Engine) infoSection(section string) (tags *[]types.InfoTag, items map[string][]types.InfoItem, err error) {
	if verr := validation.ValidateSection("section", section); verr != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidSection, section)
	}
	if section == types.SectionEstomaterapia {
		return &e.data.EstomaterapiaTags, e.data.EstomaterapiaData, nil
	}
	return &e.data.InfoTags, e.data.InfoData, nil
}

// personal reports whether entries of section belong to the session user.
func (e *Engine) personal(section string) string {
	if section == types.SectionAnotacoes {
		return e.userID
	}
	return ""
}

// AddInfoTag appends a tag to section.
func (e *Engine) AddInfoTag(section string, t types.InfoTag) (types.InfoTag, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tags, items, err := e.infoSection(section)
	if err != nil {
		return types.InfoTag{}, err
	}
	t.ID = e.newID()
	t.Order = nil
	t.UserID = e.personal(section)
	next, added, writes := appendOrdered(*tags, t, infoTagID)
	*tags = next
	items[added.ID] = []types.InfoItem{}
	e.touch()

	e.sync(section+" tag add", false, func(ctx context.Context, a *remote.Adapter) error {
		if err := a.InsertInfoTag(ctx, section, added); err != nil {
			return err
		}
		return persistOrder(ctx, a, store.TableInfoTags, writes)
	})
	return added, nil
}

// UpdateInfoTag replaces name and color of a tag. A different order
// renumbers the siblings; a nil order keeps the current one.
func (e *Engine) UpdateInfoTag(section string, t types.InfoTag) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tags, _, err := e.infoSection(section)
	if err != nil {
		return err
	}
	i := indexOf(*tags, t.ID, infoTagID)
	if i < 0 {
		return fmt.Errorf("%s tag %s: %w", section, t.ID, ErrNotFound)
	}
	cur := (*tags)[i]
	reorder := t.Order != nil && types.OrderOf(t.Order) != types.OrderOf(cur.Order)
	if t.Order == nil {
		t.Order = cur.Order
	}
	t.UserID = cur.UserID
	next, updated, writes := replaceOrdered(*tags, t, infoTagID, reorder)
	*tags = next
	e.touch()

	e.sync(section+" tag update", reorder, func(ctx context.Context, a *remote.Adapter) error {
		if err := a.UpdateInfoTag(ctx, updated); err != nil {
			return err
		}
		return persistOrder(ctx, a, store.TableInfoTags, writes)
	})
	return nil
}

// DeleteInfoTag removes a tag and its items.
func (e *Engine) DeleteInfoTag(section, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tags, items, err := e.infoSection(section)
	if err != nil {
		return err
	}
	next, writes, ok := removeOrdered(*tags, id, infoTagID)
	if !ok {
		return fmt.Errorf("%s tag %s: %w", section, id, ErrNotFound)
	}
	*tags = next
	delete(items, id)
	e.touch()

	e.sync(section+" tag delete", true, func(ctx context.Context, a *remote.Adapter) error {
		if err := a.DeleteInfoTag(ctx, id); err != nil {
			return err
		}
		return persistOrder(ctx, a, store.TableInfoTags, writes)
	})
	return nil
}

// ReorderInfoTags moves the tag at from to position to.
func (e *Engine) ReorderInfoTags(section string, from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tags, _, err := e.infoSection(section)
	if err != nil {
		return err
	}
	next, writes, err := moveOrdered(*tags, from, to, infoTagID)
	if err != nil {
		return err
	}
	*tags = next
	e.touch()

	e.sync(section+" tag reorder", true, func(ctx context.Context, a *remote.Adapter) error {
		return persistOrder(ctx, a, store.TableInfoTags, writes)
	})
	return nil
}

func (e *Engine) infoItems(section, tagID string) (map[string][]types.InfoItem, error) {
	tags, items, err := e.infoSection(section)
	if err != nil {
		return nil, err
	}
	if indexOf(*tags, tagID, infoTagID) < 0 {
		return nil, fmt.Errorf("%s tag %s: %w", section, tagID, ErrParentNotFound)
	}
	return items, nil
}

// AddInfoItem files a note under its tag, stamping today's date.
func (e *Engine) AddInfoItem(section string, it types.InfoItem) (types.InfoItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := e.infoItems(section, it.TagID)
	if err != nil {
		return types.InfoItem{}, err
	}
	it.ID = e.newID()
	it.Date = e.now().Format(dateLayout)
	it.UserID = e.personal(section)
	it.Attachments = slices.Clone(it.Attachments)
	if it.Attachments == nil {
		it.Attachments = []types.Attachment{}
	}
	items[it.TagID] = appended(items[it.TagID], it)
	e.touch()

	e.sync(section+" item add", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.InsertInfoItem(ctx, it)
	})
	return it, nil
}

// UpdateInfoItem replaces title, content, info and attachments of a note and
// stamps it with today's date. The tag and owner are kept.
func (e *Engine) UpdateInfoItem(section string, it types.InfoItem) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := e.infoItems(section, it.TagID)
	if err != nil {
		return err
	}
	cur := items[it.TagID]
	i := indexOf(cur, it.ID, infoItemID)
	if i < 0 {
		return fmt.Errorf("%s item %s: %w", section, it.ID, ErrNotFound)
	}
	updated := cur[i]
	updated.Title = it.Title
	updated.Content = it.Content
	updated.Info = it.Info
	updated.Date = e.now().Format(dateLayout)
	updated.Attachments = slices.Clone(it.Attachments)
	if updated.Attachments == nil {
		updated.Attachments = []types.Attachment{}
	}
	items[it.TagID] = replaced(cur, i, updated)
	e.touch()

	e.sync(section+" item update", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.UpdateInfoItem(ctx, updated)
	})
	return nil
}

// DeleteInfoItem removes a note.
func (e *Engine) DeleteInfoItem(section, tagID, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := e.infoItems(section, tagID)
	if err != nil {
		return err
	}
	next, ok := without(items[tagID], id, infoItemID)
	if !ok {
		return fmt.Errorf("%s item %s: %w", section, id, ErrNotFound)
	}
	items[tagID] = next
	e.touch()

	e.sync(section+" item delete", true, func(ctx context.Context, a *remote.Adapter) error {
		return a.DeleteInfoItem(ctx, id)
	})
	return nil
}
