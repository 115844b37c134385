package types

// Patches carry the fields an update should change. A nil field is left
// untouched; a non-nil field replaces the current value, even when it holds
// the zero value.

// CategoryPatch updates a Category.
type CategoryPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Order *int    `json:"order,omitempty"`
}

// Apply returns c with the patch merged in.
func (p CategoryPatch) Apply(c Category) Category {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Order != nil {
		c.Order = Ptr(*p.Order)
	}
	return c
}

// ScriptPatch updates a Script.
type ScriptPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Order   *int    `json:"order,omitempty"`
}

// Apply returns s with the patch merged in.
func (p ScriptPatch) Apply(s Script) Script {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Content != nil {
		s.Content = *p.Content
	}
	if p.Order != nil {
		s.Order = Ptr(*p.Order)
	}
	return s
}

// ExamPatch updates an Exam.
type ExamPatch struct {
	Title           *string   `json:"title,omitempty"`
	Location        *[]string `json:"location,omitempty"`
	AdditionalInfo  *string   `json:"additionalInfo,omitempty"`
	SchedulingRules *string   `json:"schedulingRules,omitempty"`
	ValueTableCode  *string   `json:"valueTableCode,omitempty"`
}

func (p ExamPatch) Apply(e Exam) Exam {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Location != nil {
		e.Location = append([]string(nil), (*p.Location)...)
	}
	if p.AdditionalInfo != nil {
		e.AdditionalInfo = *p.AdditionalInfo
	}
	if p.SchedulingRules != nil {
		e.SchedulingRules = *p.SchedulingRules
	}
	if p.ValueTableCode != nil {
		e.ValueTableCode = *p.ValueTableCode
	}
	return e
}

// ContactGroupPatch renames a ContactGroup. Points are edited through their
// own operations.
type ContactGroupPatch struct {
	Name *string `json:"name,omitempty"`
}

func (p ContactGroupPatch) Apply(g ContactGroup) ContactGroup {
	if p.Name != nil {
		g.Name = *p.Name
	}
	return g
}

// ContactPointPatch updates a ContactPoint.
type ContactPointPatch struct {
	Setor    *string `json:"setor,omitempty"`
	Local    *string `json:"local,omitempty"`
	Ramal    *string `json:"ramal,omitempty"`
	Telefone *string `json:"telefone,omitempty"`
	Whatsapp *string `json:"whatsapp,omitempty"`
}

func (p ContactPointPatch) Apply(c ContactPoint) ContactPoint {
	if p.Setor != nil {
		c.Setor = *p.Setor
	}
	if p.Local != nil {
		c.Local = *p.Local
	}
	if p.Ramal != nil {
		c.Ramal = *p.Ramal
	}
	if p.Telefone != nil {
		c.Telefone = *p.Telefone
	}
	if p.Whatsapp != nil {
		c.Whatsapp = *p.Whatsapp
	}
	return c
}

// ValueTableItemPatch updates a ValueTableItem.
type ValueTableItemPatch struct {
	Codigo                  *string `json:"codigo,omitempty"`
	Nome                    *string `json:"nome,omitempty"`
	Info                    *string `json:"info,omitempty"`
	Honorario               *Number `json:"honorario,omitempty"`
	ExameCartao             *Number `json:"exame_cartao,omitempty"`
	MaterialMin             *Number `json:"material_min,omitempty"`
	MaterialMax             *Number `json:"material_max,omitempty"`
	HonorariosDiferenciados *[]Fee  `json:"honorarios_diferenciados,omitempty"`
}

func (p ValueTableItemPatch) Apply(v ValueTableItem) ValueTableItem {
	if p.Codigo != nil {
		v.Codigo = *p.Codigo
	}
	if p.Nome != nil {
		v.Nome = *p.Nome
	}
	if p.Info != nil {
		v.Info = *p.Info
	}
	if p.Honorario != nil {
		v.Honorario = *p.Honorario
	}
	if p.ExameCartao != nil {
		v.ExameCartao = *p.ExameCartao
	}
	if p.MaterialMin != nil {
		v.MaterialMin = *p.MaterialMin
	}
	if p.MaterialMax != nil {
		v.MaterialMax = *p.MaterialMax
	}
	if p.HonorariosDiferenciados != nil {
		v.HonorariosDiferenciados = append([]Fee(nil), (*p.HonorariosDiferenciados)...)
	}
	return v
}

// ProfessionalPatch updates a Professional.
type ProfessionalPatch struct {
	Name           *string       `json:"name,omitempty"`
	Gender         *string       `json:"gender,omitempty"`
	Specialty      *string       `json:"specialty,omitempty"`
	AgeRange       *string       `json:"ageRange,omitempty"`
	Fittings       *Fittings     `json:"fittings,omitempty"`
	GeneralObs     *string       `json:"generalObs,omitempty"`
	PerformedExams *[]ExamDetail `json:"performedExams,omitempty"`
}

func (p ProfessionalPatch) Apply(pr Professional) Professional {
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.Gender != nil {
		pr.Gender = *p.Gender
	}
	if p.Specialty != nil {
		pr.Specialty = *p.Specialty
	}
	if p.AgeRange != nil {
		pr.AgeRange = *p.AgeRange
	}
	if p.Fittings != nil {
		pr.Fittings = *p.Fittings
	}
	if p.GeneralObs != nil {
		pr.GeneralObs = *p.GeneralObs
	}
	if p.PerformedExams != nil {
		pr.PerformedExams = append([]ExamDetail(nil), (*p.PerformedExams)...)
	}
	return pr
}

// RecadoItemPatch updates a RecadoItem.
type RecadoItemPatch struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Fields  *[]string `json:"fields,omitempty"`
}

func (p RecadoItemPatch) Apply(r RecadoItem) RecadoItem {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Content != nil {
		r.Content = *p.Content
	}
	if p.Fields != nil {
		r.Fields = append([]string(nil), (*p.Fields)...)
	}
	return r
}

// HeaderTagPatch updates a HeaderTag. The tag code and order are not
// patchable; order changes go through the reorder operation.
type HeaderTagPatch struct {
	Title    *string          `json:"title,omitempty"`
	Address  *string          `json:"address,omitempty"`
	Phones   *[]Phone         `json:"phones,omitempty"`
	Whatsapp *string          `json:"whatsapp,omitempty"`
	Contacts *[]HeaderContact `json:"contacts,omitempty"`
}

func (p HeaderTagPatch) Apply(h HeaderTag) HeaderTag {
	if p.Title != nil {
		h.Title = *p.Title
	}
	if p.Address != nil {
		h.Address = *p.Address
	}
	if p.Phones != nil {
		h.Phones = append([]Phone(nil), (*p.Phones)...)
	}
	if p.Whatsapp != nil {
		h.Whatsapp = *p.Whatsapp
	}
	if p.Contacts != nil {
		h.Contacts = append([]HeaderContact(nil), (*p.Contacts)...)
	}
	return h
}
