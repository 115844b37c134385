package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperengineering/cdusync/internal/store"
	"github.com/hyperengineering/cdusync/internal/types"
)

// Scripts

func (a *Adapter) InsertScript(ctx context.Context, categoryID string, s types.Script) error {
	return a.rows.Insert(ctx, store.TableScripts, scriptRow(categoryID, s))
}

func (a *Adapter) UpdateScript(ctx context.Context, s types.Script) error {
	return a.rows.Update(ctx, store.TableScripts, s.ID, store.Row{
		"title":   s.Title,
		"content": s.Content,
		"order":   orderValue(s.Order),
	})
}

func (a *Adapter) DeleteScript(ctx context.Context, id string) error {
	return a.rows.Delete(ctx, store.TableScripts, store.Eq("id", id))
}

// Exams

func (a *Adapter) InsertExam(ctx context.Context, categoryID string, e types.Exam) error {
	return a.rows.Insert(ctx, store.TableExams, examRow(categoryID, e))
}

func (a *Adapter) UpdateExam(ctx context.Context, e types.Exam) error {
	row := examRow("", e)
	delete(row, "id")
	delete(row, "category_id")
	return a.rows.Update(ctx, store.TableExams, e.ID, row)
}

func (a *Adapter) DeleteExam(ctx context.Context, id string) error {
	return a.rows.Delete(ctx, store.TableExams, store.Eq("id", id))
}

// Contacts

// InsertContactGroup writes the group and then each of its points.
func (a *Adapter) InsertContactGroup(ctx context.Context, categoryID string, g types.ContactGroup) error {
	if err := a.rows.Insert(ctx, store.TableContactGroups, contactGroupRow(categoryID, g)); err != nil {
		return err
	}
	for _, p := range g.Points {
		if err := a.InsertContactPoint(ctx, g.ID, p); err != nil {
			return fmt.Errorf("insert point %s: %w", p.ID, err)
		}
	}
	return nil
}

func (a *Adapter) UpdateContactGroup(ctx context.Context, g types.ContactGroup) error {
	return a.rows.Update(ctx, store.TableContactGroups, g.ID, store.Row{"name": g.Name})
}

// DeleteContactGroup removes the group's points, then the group.
func (a *Adapter) DeleteContactGroup(ctx context.Context, id string) error {
	if err := a.rows.Delete(ctx, store.TableContactPoints, store.Eq("group_id", id)); err != nil {
		return fmt.Errorf("delete contact points: %w", err)
	}
	return a.rows.Delete(ctx, store.TableContactGroups, store.Eq("id", id))
}

func (a *Adapter) InsertContactPoint(ctx context.Context, groupID string, p types.ContactPoint) error {
	return a.rows.Insert(ctx, store.TableContactPoints, contactPointRow(groupID, p))
}

func (a *Adapter) UpdateContactPoint(ctx context.Context, p types.ContactPoint) error {
	row := contactPointRow("", p)
	delete(row, "id")
	delete(row, "group_id")
	return a.rows.Update(ctx, store.TableContactPoints, p.ID, row)
}

func (a *Adapter) DeleteContactPoint(ctx context.Context, id string) error {
	return a.rows.Delete(ctx, store.TableContactPoints, store.Eq("id", id))
}

// Value table

func (a *Adapter) InsertValueItem(ctx context.Context, categoryID string, v types.ValueTableItem) error {
	return a.rows.Insert(ctx, store.TableValueTableItems, valueItemRow(categoryID, v))
}

func (a *Adapter) UpdateValueItem(ctx context.Context, v types.ValueTableItem) error {
	row := valueItemRow("", v)
	delete(row, "id")
	delete(row, "category_id")
	return a.rows.Update(ctx, store.TableValueTableItems, v.ID, row)
}

func (a *Adapter) DeleteValueItem(ctx context.Context, id string) error {
	return a.rows.Delete(ctx, store.TableValueTableItems, store.Eq("id", id))
}

// Professionals

func (a *Adapter) InsertProfessional(ctx context.Context, view, categoryID string, p types.Professional) error {
	return a.rows.Insert(ctx, store.TableProfessionals, professionalRow(view, categoryID, p))
}

func (a *Adapter) UpdateProfessional(ctx context.Context, p types.Professional) error {
	row := professionalRow("", "", p)
	delete(row, "id")
	delete(row, "view_type")
	delete(row, "category_id")
	return a.rows.Update(ctx, store.TableProfessionals, p.ID, row)
}

func (a *Adapter) DeleteProfessional(ctx context.Context, id string) error {
	return a.rows.Delete(ctx, store.TableProfessionals, store.Eq("id", id))
}

// Offices. Office categories and items live in JSON columns of the office
// row, so nested edits persist through UpdateOffice.

func (a *Adapter) InsertOffice(ctx context.Context, o types.Office) error {
	return a.rows.Insert(ctx, store.TableOffices, officeRow(o))
}

func (a *Adapter) UpdateOffice(ctx context.Context, o types.Office) error {
	row := officeRow(o)
	delete(row, "id")
	return a.rows.Update(ctx, store.TableOffices, o.ID, row)
}

func (a *Adapter) DeleteOffice(ctx context.Context, id string) error {
	return a.rows.Delete(ctx, store.TableOffices, store.Eq("id", id))
}

// Notices

func (a *Adapter) InsertNotice(ctx context.Context, n types.Notice) error {
	return a.rows.Insert(ctx, store.TableNotices, noticeRow(n))
}

func (a *Adapter) UpdateNotice(ctx context.Context, n types.Notice) error {
	row := noticeRow(n)
	delete(row, "id")
	return a.rows.Update(ctx, store.TableNotices, n.ID, row)
}

func (a *Adapter) DeleteNotice(ctx context.Context, id string) error {
	return a.rows.Delete(ctx, store.TableNotices, store.Eq("id", id))
}

// Exam delivery attendants

func (a *Adapter) InsertAttendant(ctx context.Context, at types.ExamDeliveryAttendant) error {
	return a.rows.Insert(ctx, store.TableExamDeliveryAttendants, attendantRow(at))
}

func (a *Adapter) UpdateAttendant(ctx context.Context, at types.ExamDeliveryAttendant) error {
	return a.rows.Update(ctx, store.TableExamDeliveryAttendants, at.ID, store.Row{
		"name":      at.Name,
		"chat_nick": at.ChatNick,
	})
}

func (a *Adapter) DeleteAttendant(ctx context.Context, id string) error {
	return a.rows.Delete(ctx, store.TableExamDeliveryAttendants, store.Eq("id", id))
}

// Recados

func (a *Adapter) InsertRecadoCategory(ctx context.Context, c types.RecadoCategory) error {
	return a.rows.Insert(ctx, store.TableRecadoCategories, recadoCategoryRow(c))
}

func (a *Adapter) UpdateRecadoCategory(ctx context.Context, c types.RecadoCategory) error {
	row := recadoCategoryRow(c)
	delete(row, "id")
	return a.rows.Update(ctx, store.TableRecadoCategories, c.ID, row)
}

// DeleteRecadoCategory removes the category's items, then the category.
func (a *Adapter) DeleteRecadoCategory(ctx context.Context, id string) error {
	if err := a.rows.Delete(ctx, store.TableRecadoItems, store.Eq("category_id", id)); err != nil {
		return fmt.Errorf("delete recado items: %w", err)
	}
	return a.rows.Delete(ctx, store.TableRecadoCategories, store.Eq("id", id))
}

func (a *Adapter) InsertRecadoItem(ctx context.Context, categoryID string, it types.RecadoItem) error {
	return a.rows.Insert(ctx, store.TableRecadoItems, recadoItemRow(categoryID, it))
}

func (a *Adapter) UpdateRecadoItem(ctx context.Context, it types.RecadoItem) error {
	row := recadoItemRow("", it)
	delete(row, "id")
	delete(row, "category_id")
	return a.rows.Update(ctx, store.TableRecadoItems, it.ID, row)
}

func (a *Adapter) DeleteRecadoItem(ctx context.Context, id string) error {
	return a.rows.Delete(ctx, store.TableRecadoItems, store.Eq("id", id))
}

// Tagged notes. Both sections share the info tables; section picks the
// section_type of new tags.

func (a *Adapter) InsertInfoTag(ctx context.Context, section string, t types.InfoTag) error {
	return a.rows.Insert(ctx, store.TableInfoTags, infoTagRow(section, t))
}

func (a *Adapter) UpdateInfoTag(ctx context.Context, t types.InfoTag) error {
	return a.rows.Update(ctx, store.TableInfoTags, t.ID, store.Row{
		"name":  t.Name,
		"color": t.Color,
		"order": orderValue(t.Order),
	})
}

// DeleteInfoTag removes the tag's items, then the tag.
func (a *Adapter) DeleteInfoTag(ctx context.Context, id string) error {
	if err := a.rows.Delete(ctx, store.TableInfoItems, store.Eq("tag_id", id)); err != nil {
		return fmt.Errorf("delete info items: %w", err)
	}
	return a.rows.Delete(ctx, store.TableInfoTags, store.Eq("id", id))
}

func (a *Adapter) InsertInfoItem(ctx context.Context, it types.InfoItem) error {
	return a.rows.Insert(ctx, store.TableInfoItems, infoItemRow(it))
}

func (a *Adapter) UpdateInfoItem(ctx context.Context, it types.InfoItem) error {
	return a.rows.Update(ctx, store.TableInfoItems, it.ID, store.Row{
		"title":       it.Title,
		"content":     it.Content,
		"info":        it.Info,
		"date":        it.Date,
		"attachments": encodeList(it.Attachments),
	})
}

func (a *Adapter) DeleteInfoItem(ctx context.Context, id string) error {
	return a.rows.Delete(ctx, store.TableInfoItems, store.Eq("id", id))
}

// Header tags

func (a *Adapter) InsertHeaderTag(ctx context.Context, h types.HeaderTag) error {
	return a.rows.Insert(ctx, store.TableHeaderTags, headerTagRow(h))
}

func (a *Adapter) UpdateHeaderTag(ctx context.Context, h types.HeaderTag) error {
	row := headerTagRow(h)
	delete(row, "id")
	delete(row, "tag")
	return a.rows.Update(ctx, store.TableHeaderTags, h.ID, row)
}

// SaveHeaderTag updates h, inserting it when the row does not exist yet.
// The default header tags of a fresh portal exist only locally until
// their first edit.
func (a *Adapter) SaveHeaderTag(ctx context.Context, h types.HeaderTag) error {
	err := a.UpdateHeaderTag(ctx, h)
	if errors.Is(err, store.ErrNotFound) {
		return a.InsertHeaderTag(ctx, h)
	}
	return err
}
