package types

import "time"

// seedDateLayout is the pt-BR short date used on seeded notes and notices.
const seedDateLayout = "02/01/2006"

// InitialDataset is the seed tree used when neither the remote store nor the
// local snapshot has any data. Notes and notices are dated today.
func InitialDataset() *Dataset {
	today := time.Now().Format(seedDateLayout)

	d := NewDataset()
	d.UserName = "Usuário"

	d.HeaderTagData = []HeaderTag{
		{
			ID:       "tag-1",
			Tag:      "CDU",
			Title:    "Central de Diagnóstico Unimed",
			Address:  "Rua X, 123 - Centro",
			Phones:   []Phone{{Label: "Agendamento", Number: "(14) 3235-3333"}},
			Whatsapp: "(14) 99999-1111",
			Contacts: []HeaderContact{},
			Order:    Ptr(1),
		},
		{
			ID:      "tag-3",
			Tag:     "SEDE",
			Title:   "Unimed Bauru",
			Address: "Av. Nações Unidas, 12-01 - Jardim Redentor",
			Phones: []Phone{
				{Label: "Recepção", Number: "(14) 3235-3333"},
				{Label: "Financeiro", Number: "(14) 3235-3300"},
			},
			Whatsapp: "(14) 99999-1111",
			Contacts: []HeaderContact{},
			Order:    Ptr(2),
		},
		{
			ID:       "tag-2",
			Tag:      "GERENCIA",
			Title:    "Contatos da Gerência",
			Phones:   []Phone{},
			Contacts: []HeaderContact{{Name: "João", Phone: "(14) 99999-2222", Ramal: "100"}},
			Order:    Ptr(3),
		},
	}

	d.ScriptCategories = map[string][]Category{
		ViewUnimed: {
			{ID: "un-cat-1", Name: "CONSULTAS", Color: "text-teal-800", Order: Ptr(1)},
			{ID: "un-cat-2", Name: "EXAMES", Color: "text-blue-800", Order: Ptr(2)},
		},
		"CASSI":        {},
		"ANESTESIA":    {},
		ViewParticular: {},
	}
	d.ScriptData = map[string]map[string][]Script{
		ViewUnimed: {
			"un-cat-1": {{
				ID:      "s-1",
				Title:   "Consulta Particular",
				Content: "Olá! A consulta particular tem valor de R$ 200,00.\n\nForma de pagamento:\n- Cartão (débito/crédito)\n- Dinheiro\n- PIX",
				Order:   Ptr(1),
			}},
			"un-cat-2": {},
		},
		"CASSI":        {},
		"ANESTESIA":    {},
		ViewParticular: {},
	}

	d.ExamCategories = []Category{
		{ID: "ex-cat-1", Name: "ULTRASSOM", Color: "text-green-800", Order: Ptr(1)},
		{ID: "ex-cat-2", Name: "RAIO X", Color: "text-red-800", Order: Ptr(2)},
	}
	d.ExamData = map[string][]Exam{
		"ex-cat-1": {{
			ID:             "e-1",
			Title:          "USG Abdômen Total",
			Location:       []string{"CDU"},
			AdditionalInfo: "Necessário jejum de 8 horas.",
		}},
		"ex-cat-2": {},
	}

	d.ContactCategories = map[string][]Category{
		ViewGeral: {{ID: "cont-cat-geral", Name: "GERAL", Color: "text-indigo-800", Order: Ptr(1)}},
	}
	d.ContactData = map[string]map[string][]ContactGroup{
		ViewGeral: {
			"cont-cat-geral": {
				{
					ID:   "cg-1",
					Name: "Recepção Geral",
					Points: []ContactPoint{{
						ID: "cp-1", Setor: "Recepção Principal", Local: "Térreo", Ramal: "1000",
						Telefone: "(14) 3235-3333", Whatsapp: "(14) 99999-1111",
					}},
				},
				{
					ID:   "cg-2",
					Name: "Setor de Imagens",
					Points: []ContactPoint{
						{ID: "cp-2", Setor: "Recepção RX", Local: "1º Andar", Ramal: "1001"},
						{ID: "cp-3", Setor: "Tomografia", Local: "1º Andar", Ramal: "1002"},
					},
				},
			},
		},
	}

	d.ValueTableCategories = map[string][]Category{
		ViewGeral: {{ID: "vt-cat-geral", Name: "GERAL", Color: "text-primary", Order: Ptr(1)}},
	}
	d.ValueTableData = map[string]map[string][]ValueTableItem{
		ViewGeral: {"vt-cat-geral": {}},
	}

	d.ProfessionalData = map[string]map[string][]Professional{
		ViewGeral: {
			"prof-cat-1": {{
				ID:         "p-1",
				Name:       "SILVA",
				Gender:     "masculino",
				Specialty:  "Gastroenterologia",
				AgeRange:   "Adultos",
				Fittings:   Fittings{Allowed: true, Max: 2, Details: "Apenas encaixes urgentes."},
				GeneralObs: "Atende apenas às terças e quintas.",
				PerformedExams: []ExamDetail{{
					ExamID:       "endoscopia",
					Observations: "Requer sedação leve.",
					Preparation:  "Jejum de 12h.",
				}},
			}},
		},
	}

	d.OfficeData = []Office{{
		ID:          "o-1",
		Name:        "1º Andar",
		Ramal:       "2110",
		Schedule:    "08:00 - 18:00",
		Specialties: []string{"Gastroenterologia", "Cardiologia"},
		Attendants:  []OfficeAttendant{{ID: "a-1", Name: "Ana Paula", Username: "Ana", Shift: "Integral"}},
		Professionals: []OfficeProfessional{{
			Name: "DRº. SILVA", Specialty: "Gastroenterologia", ActuationDescription: "Especialista em Endoscopia",
		}},
		Procedures: []string{"Endoscopia", "Colonoscopia"},
		Categories: []OfficeCategory{
			{ID: "office-cat-default", Name: "Informações do Setor", Color: "text-blue-800"},
			{ID: "office-cat-procedimentos", Name: "Procedimentos Comuns", Color: "text-green-800"},
		},
		Items: map[string][]OfficeItem{
			"office-cat-procedimentos": {{
				ID:      "oi-1",
				Title:   "Fluxo de Agendamento de Endoscopia",
				Content: "Verificar jejum de 12h. Confirmar se o paciente tem acompanhante. Se for menor de idade, precisa de termo de consentimento assinado pelos pais.",
				Info:    "O agendamento deve ser feito com a Ana Paula (ramal 2110) ou diretamente no sistema X.",
			}},
		},
	}}

	d.NoticeData = []Notice{{
		ID:      "n-1",
		Title:   "Novo Fluxo de Autorização",
		Content: "A partir de hoje, todas as solicitações de autorização devem ser enviadas via sistema X.",
		Date:    today,
		Tag:     "FLUXO",
	}}

	d.ExamDeliveryAttendants = []ExamDeliveryAttendant{{ID: "eda-1", Name: "Maria", ChatNick: "Maria_Exames"}}

	d.RecadoCategories = []RecadoCategory{{
		ID:              "rc-1",
		Title:           "Autorização",
		Description:     "Recados para o setor de Autorização de Guias.",
		DestinationType: "group",
		GroupName:       "Grupo Autorização",
		Order:           Ptr(1),
	}}
	d.RecadoData = map[string][]RecadoItem{
		"rc-1": {{
			ID:      "ri-1",
			Title:   "Solicitação de Guia",
			Content: "Prezados, solicito a autorização da guia para o paciente [paciente].\n\nGuia: [guia]\n\nObrigado!\n[nome] / Agendamento",
			Fields:  []string{"paciente", "guia"},
		}},
	}

	d.InfoTags = []InfoTag{
		{ID: "it-1", Name: "Regras Gerais", Color: "text-teal-800", Order: Ptr(1)},
		{ID: "it-2", Name: "Novos Procedimentos", Color: "text-blue-800", Order: Ptr(2)},
	}
	d.InfoData = map[string][]InfoItem{
		"it-1": {{
			ID:          "ii-1",
			Title:       "Fluxo de Agendamento de USG",
			Content:     "1. Verificar elegibilidade do paciente.\n2. Confirmar jejum de 8h.\n3. Agendar no sistema X.",
			TagID:       "it-1",
			Date:        today,
			Attachments: []Attachment{},
		}},
		"it-2": {},
	}

	d.EstomaterapiaTags = []InfoTag{
		{ID: "est-tag-1", Name: "Curativos", Color: "text-purple-800", Order: Ptr(1)},
		{ID: "est-tag-2", Name: "Ostomias", Color: "text-pink-800", Order: Ptr(2)},
	}
	d.EstomaterapiaData = map[string][]InfoItem{
		"est-tag-1": {{
			ID:          "est-item-1",
			Title:       "Regra de Agendamento de Curativos",
			Content:     "O agendamento de curativos deve ser feito diretamente com a enfermeira responsável, ramal 1234.",
			TagID:       "est-tag-1",
			Date:        today,
			Attachments: []Attachment{},
		}},
		"est-tag-2": {},
	}
	return d
}
