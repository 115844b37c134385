package types

// Dataset is the whole entity tree. Its JSON encoding is both the local
// snapshot document and the backup document, so field names are stable.
//
// Workspace-partitioned domains are keyed by view type first, then by
// category id.
type Dataset struct {
	UserName          string                               `json:"userName"`
	HeaderTagData     []HeaderTag                          `json:"headerTagData"`
	ScriptCategories  map[string][]Category                `json:"scriptCategories"`
	ScriptData        map[string]map[string][]Script       `json:"scriptData"`
	ExamCategories    []Category                           `json:"examCategories"`
	ExamData          map[string][]Exam                    `json:"examData"`
	ContactCategories map[string][]Category                `json:"contactCategories"`
	ContactData       map[string]map[string][]ContactGroup `json:"contactData"`

	ValueTableCategories map[string][]Category                  `json:"valueTableCategories"`
	ValueTableData       map[string]map[string][]ValueTableItem `json:"valueTableData"`
	ProfessionalData     map[string]map[string][]Professional   `json:"professionalData"`

	OfficeData             []Office                `json:"officeData"`
	NoticeData             []Notice                `json:"noticeData"`
	ExamDeliveryAttendants []ExamDeliveryAttendant `json:"examDeliveryAttendants"`
	RecadoCategories       []RecadoCategory        `json:"recadoCategories"`
	RecadoData             map[string][]RecadoItem `json:"recadoData"`

	InfoTags          []InfoTag             `json:"infoTags"`
	InfoData          map[string][]InfoItem `json:"infoData"`
	EstomaterapiaTags []InfoTag             `json:"estomaterapiaTags"`
	EstomaterapiaData map[string][]InfoItem `json:"estomaterapiaData"`
}

// NewDataset returns an empty dataset with every collection allocated.
func NewDataset() *Dataset {
	d := &Dataset{}
	d.Normalize()
	return d
}

// Normalize replaces nil collections with empty ones so the encoded document
// always carries every key and callers can index maps without checks.
func (d *Dataset) Normalize() {
	if d.HeaderTagData == nil {
		d.HeaderTagData = []HeaderTag{}
	}
	if d.ScriptCategories == nil {
		d.ScriptCategories = map[string][]Category{}
	}
	if d.ScriptData == nil {
		d.ScriptData = map[string]map[string][]Script{}
	}
	if d.ExamCategories == nil {
		d.ExamCategories = []Category{}
	}
	if d.ExamData == nil {
		d.ExamData = map[string][]Exam{}
	}
	if d.ContactCategories == nil {
		d.ContactCategories = map[string][]Category{}
	}
	if d.ContactData == nil {
		d.ContactData = map[string]map[string][]ContactGroup{}
	}
	if d.ValueTableCategories == nil {
		d.ValueTableCategories = map[string][]Category{}
	}
	if d.ValueTableData == nil {
		d.ValueTableData = map[string]map[string][]ValueTableItem{}
	}
	if d.ProfessionalData == nil {
		d.ProfessionalData = map[string]map[string][]Professional{}
	}
	if d.OfficeData == nil {
		d.OfficeData = []Office{}
	}
	if d.NoticeData == nil {
		d.NoticeData = []Notice{}
	}
	if d.ExamDeliveryAttendants == nil {
		d.ExamDeliveryAttendants = []ExamDeliveryAttendant{}
	}
	if d.RecadoCategories == nil {
		d.RecadoCategories = []RecadoCategory{}
	}
	if d.RecadoData == nil {
		d.RecadoData = map[string][]RecadoItem{}
	}
	if d.InfoTags == nil {
		d.InfoTags = []InfoTag{}
	}
	if d.InfoData == nil {
		d.InfoData = map[string][]InfoItem{}
	}
	if d.EstomaterapiaTags == nil {
		d.EstomaterapiaTags = []InfoTag{}
	}
	if d.EstomaterapiaData == nil {
		d.EstomaterapiaData = map[string][]InfoItem{}
	}
}

// IsEmpty reports whether the dataset has no header tags and no script
// categories, the two collections every populated portal carries.
func (d *Dataset) IsEmpty() bool {
	if len(d.HeaderTagData) > 0 {
		return false
	}
	for _, cats := range d.ScriptCategories {
		if len(cats) > 0 {
			return false
		}
	}
	return true
}
