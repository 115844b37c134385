// Package types defines the entity tree held by the sync engine: every
// business domain of the portal, the whole-tree Dataset, and the partial
// patches accepted by update operations.
package types

// Well-known workspace keys (view types). Any non-empty key is accepted; these
// are the ones the portal ships with.
const (
	ViewGeral      = "GERAL"
	ViewUnimed     = "UNIMED"
	ViewParticular = "PARTICULAR"
)

// Info sections sharing the info_tags/info_items tables.
const (
	SectionAnotacoes     = "anotacoes"
	SectionEstomaterapia = "estomaterapia"
)

// Category is an ordered, colored grouping node owning a collection of items.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Order *int   `json:"order,omitempty"`
}

// Script is a canned attendance script.
type Script struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   *int   `json:"order,omitempty"`
}

// Exam describes where and how an exam is scheduled.
type Exam struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Location        []string `json:"location"`
	AdditionalInfo  string   `json:"additionalInfo"`
	SchedulingRules string   `json:"schedulingRules"`
	ValueTableCode  string   `json:"valueTableCode,omitempty"`
}

// ContactPoint is a single reachable sector inside a contact group.
type ContactPoint struct {
	ID       string `json:"id"`
	Setor    string `json:"setor"`
	Local    string `json:"local"`
	Ramal    string `json:"ramal"`
	Telefone string `json:"telefone"`
	Whatsapp string `json:"whatsapp"`
}

// ContactGroup clusters contact points under a category.
type ContactGroup struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Points []ContactPoint `json:"points"`
}

// Fee is a professional-specific fee attached to a value table row.
type Fee struct {
	ID           string `json:"id"`
	Profissional string `json:"profissional"`
	Valor        Number `json:"valor"`
	Genero       string `json:"genero"`
}

// ValueTableItem is one priced procedure row.
type ValueTableItem struct {
	ID                      string `json:"id"`
	Codigo                  string `json:"codigo"`
	Nome                    string `json:"nome"`
	Info                    string `json:"info"`
	Honorario               Number `json:"honorario"`
	ExameCartao             Number `json:"exame_cartao"`
	MaterialMin             Number `json:"material_min"`
	MaterialMax             Number `json:"material_max"`
	HonorariosDiferenciados []Fee  `json:"honorarios_diferenciados"`
}

// TotalExam is the honorarium plus the card exam value.
func (v ValueTableItem) TotalExam() float64 {
	return float64(v.Honorario) + float64(v.ExameCartao)
}

// TotalWithMaterial adds the maximum material cost to TotalExam.
func (v ValueTableItem) TotalWithMaterial() float64 {
	return v.TotalExam() + float64(v.MaterialMax)
}

// ExamDetail records how a professional performs a given exam.
type ExamDetail struct {
	ExamID                 string `json:"examId"`
	Observations           string `json:"observations"`
	Preparation            string `json:"preparation"`
	WithAnesthesia         bool   `json:"withAnesthesia"`
	AnesthesiaInstructions string `json:"anesthesiaInstructions,omitempty"`
}

// Fittings describes whether a professional accepts extra appointments.
type Fittings struct {
	Allowed bool   `json:"allowed"`
	Max     int    `json:"max"`
	Details string `json:"details"`
}

// Professional is a doctor or technician profile.
type Professional struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Gender         string       `json:"gender"`
	Specialty      string       `json:"specialty"`
	AgeRange       string       `json:"ageRange"`
	Fittings       Fittings     `json:"fittings"`
	GeneralObs     string       `json:"generalObs"`
	PerformedExams []ExamDetail `json:"performedExams"`
}

// OfficeAttendant staffs an office.
type OfficeAttendant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Shift    string `json:"shift"`
}

// OfficeProfessional is a professional working at an office.
type OfficeProfessional struct {
	Name                 string `json:"name"`
	Specialty            string `json:"specialty"`
	ActuationDescription string `json:"actuationDescription,omitempty"`
}

// OfficeCategory groups detailed office information.
type OfficeCategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// OfficeItem is a piece of detailed office information.
type OfficeItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Info    string `json:"info,omitempty"`
}

// Office owns its categories and the items filed under each of them.
type Office struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Ramal         string                  `json:"ramal"`
	Schedule      string                  `json:"schedule"`
	Specialties   []string                `json:"specialties"`
	Attendants    []OfficeAttendant       `json:"attendants"`
	Professionals []OfficeProfessional    `json:"professionals"`
	Procedures    []string                `json:"procedures"`
	Categories    []OfficeCategory        `json:"categories"`
	Items         map[string][]OfficeItem `json:"items"`
}

// Phone is a labelled phone number on a header tag.
type Phone struct {
	Label  string `json:"label"`
	Number string `json:"number"`
}

// HeaderContact is a named contact listed on a header tag.
type HeaderContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Ramal string `json:"ramal"`
}

// HeaderTag is one of the institutional cards shown in the portal header.
type HeaderTag struct {
	ID       string          `json:"id"`
	Tag      string          `json:"tag"`
	Title    string          `json:"title"`
	Address  string          `json:"address,omitempty"`
	Phones   []Phone         `json:"phones,omitempty"`
	Whatsapp string          `json:"whatsapp,omitempty"`
	Contacts []HeaderContact `json:"contacts,omitempty"`
	Order    *int            `json:"order,omitempty"`
}

// ExamDeliveryAttendant hands over exam results.
type ExamDeliveryAttendant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ChatNick string `json:"chatNick"`
}

// RecadoAttendant is a message recipient of a recado category.
type RecadoAttendant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ChatNick string `json:"chatNick"`
}

// RecadoCategory is a message template group with its destination.
type RecadoCategory struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	DestinationType string            `json:"destinationType"`
	GroupName       string            `json:"groupName,omitempty"`
	Attendants      []RecadoAttendant `json:"attendants,omitempty"`
	Order           *int              `json:"order,omitempty"`
}

// RecadoItem is a message template with fill-in fields.
type RecadoItem struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Fields  []string `json:"fields"`
}

// InfoTag plays the category role for tagged notes.
type InfoTag struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Order  *int   `json:"order,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

// Attachment is a file embedded in a note.
type Attachment struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	DataURL  string `json:"dataUrl"`
	Size     int64  `json:"size"`
}

// InfoItem is a tagged note (rule, procedure, personal annotation).
type InfoItem struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	TagID       string       `json:"tagId"`
	Date        string       `json:"date"`
	Attachments []Attachment `json:"attachments"`
	Info        string       `json:"info,omitempty"`
	UserID      string       `json:"user_id,omitempty"`
}

// Notice is a board announcement.
type Notice struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
	Tag     string `json:"tag"`
	Icon    string `json:"icon,omitempty"`
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
