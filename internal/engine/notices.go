package engine

import (
	"context"
	"fmt"

	"github.com/hyperengineering/cdusync/internal/remote"
	"github.com/hyperengineering/cdusync/internal/types"
)

// dateLayout is the pt-BR day format stamped on notes and notices.
const dateLayout = "02/01/2006"

func noticeID(n types.Notice) string                   { return n.ID }
func attendantID(a types.ExamDeliveryAttendant) string { return a.ID }

// AddNotice publishes a notice, dating it today when no date is given.
func (e *Engine) AddNotice(n types.Notice) (types.Notice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n.ID = e.newID()
	if n.Date == "" {
		n.Date = e.now().Format(dateLayout)
	}
	e.data.NoticeData = appended(e.data.NoticeData, n)
	e.touch()

	e.sync("notice add", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.InsertNotice(ctx, n)
	})
	return n, nil
}

// UpdateNotice replaces a notice.
func (e *Engine) UpdateNotice(n types.Notice) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := indexOf(e.data.NoticeData, n.ID, noticeID)
	if i < 0 {
		return fmt.Errorf("notice %s: %w", n.ID, ErrNotFound)
	}
	e.data.NoticeData = replaced(e.data.NoticeData, i, n)
	e.touch()

	e.sync("notice update", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.UpdateNotice(ctx, n)
	})
	return nil
}

// DeleteNotice removes a notice.
func (e *Engine) DeleteNotice(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, ok := without(e.data.NoticeData, id, noticeID)
	if !ok {
		return fmt.Errorf("notice %s: %w", id, ErrNotFound)
	}
	e.data.NoticeData = next
	e.touch()

	e.sync("notice delete", true, func(ctx context.Context, a *remote.Adapter) error {
		return a.DeleteNotice(ctx, id)
	})
	return nil
}

// AddAttendant registers an exam delivery attendant.
func (e *Engine) AddAttendant(at types.ExamDeliveryAttendant) (types.ExamDeliveryAttendant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	at.ID = e.newID()
	e.data.ExamDeliveryAttendants = appended(e.data.ExamDeliveryAttendants, at)
	e.touch()

	e.sync("attendant add", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.InsertAttendant(ctx, at)
	})
	return at, nil
}

// UpdateAttendant replaces an exam delivery attendant.
func (e *Engine) UpdateAttendant(at types.ExamDeliveryAttendant) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := indexOf(e.data.ExamDeliveryAttendants, at.ID, attendantID)
	if i < 0 {
		return fmt.Errorf("attendant %s: %w", at.ID, ErrNotFound)
	}
	e.data.ExamDeliveryAttendants = replaced(e.data.ExamDeliveryAttendants, i, at)
	e.touch()

	e.sync("attendant update", false, func(ctx context.Context, a *remote.Adapter) error {
		return a.UpdateAttendant(ctx, at)
	})
	return nil
}

// DeleteAttendant removes an exam delivery attendant.
func (e *Engine) DeleteAttendant(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, ok := without(e.data.ExamDeliveryAttendants, id, attendantID)
	if !ok {
		return fmt.Errorf("attendant %s: %w", id, ErrNotFound)
	}
	e.data.ExamDeliveryAttendants = next
	e.touch()

	e.sync("attendant delete", true, func(ctx context.Context, a *remote.Adapter) error {
		return a.DeleteAttendant(ctx, id)
	})
	return nil
}
