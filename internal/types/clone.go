package types

import "slices"

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return Ptr(*p)
}

func cloneEach[T any](s []T, clone func(T) T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	for i, v := range s {
		out[i] = clone(v)
	}
	return out
}

func cloneMap[V any](m map[string]V, clone func(V) V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}

// eachOf lifts an element copier to a slice copier.
func eachOf[T any](clone func(T) T) func([]T) []T {
	return func(s []T) []T { return cloneEach(s, clone) }
}

// Clone returns c with its own order pointer.
func (c Category) Clone() Category { c.Order = cloneInt(c.Order); return c }

func (s Script) Clone() Script { s.Order = cloneInt(s.Order); return s }

func (x Exam) Clone() Exam { x.Location = slices.Clone(x.Location); return x }

func (g ContactGroup) Clone() ContactGroup { g.Points = slices.Clone(g.Points); return g }

func (v ValueTableItem) Clone() ValueTableItem {
	v.HonorariosDiferenciados = slices.Clone(v.HonorariosDiferenciados)
	return v
}

func (p Professional) Clone() Professional {
	p.PerformedExams = slices.Clone(p.PerformedExams)
	return p
}

// Clone copies every collection of o, nested items included.
func (o Office) Clone() Office {
	o.Specialties = slices.Clone(o.Specialties)
	o.Attendants = slices.Clone(o.Attendants)
	o.Professionals = slices.Clone(o.Professionals)
	o.Procedures = slices.Clone(o.Procedures)
	o.Categories = slices.Clone(o.Categories)
	o.Items = cloneMap(o.Items, func(s []OfficeItem) []OfficeItem { return slices.Clone(s) })
	return o
}

func (h HeaderTag) Clone() HeaderTag {
	h.Phones = slices.Clone(h.Phones)
	h.Contacts = slices.Clone(h.Contacts)
	h.Order = cloneInt(h.Order)
	return h
}

func (c RecadoCategory) Clone() RecadoCategory {
	c.Attendants = slices.Clone(c.Attendants)
	c.Order = cloneInt(c.Order)
	return c
}

func (it RecadoItem) Clone() RecadoItem { it.Fields = slices.Clone(it.Fields); return it }

func (t InfoTag) Clone() InfoTag { t.Order = cloneInt(t.Order); return t }

func (it InfoItem) Clone() InfoItem {
	it.Attachments = slices.Clone(it.Attachments)
	return it
}

func same[T any](v T) T { return v }

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{
		UserName:      d.UserName,
		HeaderTagData: cloneEach(d.HeaderTagData, HeaderTag.Clone),

		ScriptCategories: cloneMap(d.ScriptCategories, eachOf(Category.Clone)),
		ScriptData: cloneMap(d.ScriptData, func(m map[string][]Script) map[string][]Script {
			return cloneMap(m, eachOf(Script.Clone))
		}),
		ExamCategories:    cloneEach(d.ExamCategories, Category.Clone),
		ExamData:          cloneMap(d.ExamData, eachOf(Exam.Clone)),
		ContactCategories: cloneMap(d.ContactCategories, eachOf(Category.Clone)),
		ContactData: cloneMap(d.ContactData, func(m map[string][]ContactGroup) map[string][]ContactGroup {
			return cloneMap(m, eachOf(ContactGroup.Clone))
		}),

		ValueTableCategories: cloneMap(d.ValueTableCategories, eachOf(Category.Clone)),
		ValueTableData: cloneMap(d.ValueTableData, func(m map[string][]ValueTableItem) map[string][]ValueTableItem {
			return cloneMap(m, eachOf(ValueTableItem.Clone))
		}),
		ProfessionalData: cloneMap(d.ProfessionalData, func(m map[string][]Professional) map[string][]Professional {
			return cloneMap(m, eachOf(Professional.Clone))
		}),

		OfficeData:             cloneEach(d.OfficeData, Office.Clone),
		NoticeData:             cloneEach(d.NoticeData, same[Notice]),
		ExamDeliveryAttendants: cloneEach(d.ExamDeliveryAttendants, same[ExamDeliveryAttendant]),
		RecadoCategories:       cloneEach(d.RecadoCategories, RecadoCategory.Clone),
		RecadoData:             cloneMap(d.RecadoData, eachOf(RecadoItem.Clone)),

		InfoTags:          cloneEach(d.InfoTags, InfoTag.Clone),
		InfoData:          cloneMap(d.InfoData, eachOf(InfoItem.Clone)),
		EstomaterapiaTags: cloneEach(d.EstomaterapiaTags, InfoTag.Clone),
		EstomaterapiaData: cloneMap(d.EstomaterapiaData, eachOf(InfoItem.Clone)),
	}
	out.Normalize()
	return out
}
