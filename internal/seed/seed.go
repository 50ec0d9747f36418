// Package seed produces the initial demo document. Generation is driven by
// a fixed-seed PRNG so every reset yields the same roster, collection sizes
// and fixed entity ids; only the uuid-suffixed ids and clock-relative
// timestamps differ between runs.
package seed

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/Dasparmv/FORTELV2/internal/types"
	"github.com/google/uuid"
)

// Seed is the fixed PRNG seed used for every generated document
const Seed = 202502

// New generates a fresh demo document relative to now
func New(now time.Time) *types.DB {
	rng := rand.New(rand.NewSource(Seed))
	g := &generator{rng: rng, now: now.UTC()}

	users := []types.User{
		{ID: "u_admin", Name: "Administrador", Email: "admin@demo.com", Role: types.RoleAdmin, Password: "Fortel2025!"},
		{ID: "u_sup", Name: "Supervisor de Campaña", Email: "supervisor@demo.com", Role: types.RoleSupervisor, Password: "Fortel2025!"},
		{ID: "u_data", Name: "Analista de Datos", Email: "analista@demo.com", Role: types.RoleAnalista, Password: "Fortel2025!"},
		{ID: "u_ops", Name: "Operador", Email: "operador@demo.com", Role: types.RoleOperador, Password: "Fortel2025!"},
	}

	campaigns := g.campaigns()
	agents := g.agents()
	resources := g.resources()
	assignments := g.assignments(resources, agents)
	integrations := g.integrations()
	pipelines := g.pipelines()
	kpiCatalog := g.kpiCatalog()
	qualityEvaluations := g.qualityEvaluations(agents)
	incidents := g.incidents()
	interactions := g.interactions(campaigns)
	kpiRecords := g.kpiRecords(campaigns)

	notifications := []types.Notification{
		{
			ID: g.uid("ntf"), At: g.hoursAgo(2), Type: types.NotifyWarn,
			Title:   "Calidad degradada",
			Message: "La integración con Herramientas de Calidad reporta errores intermitentes.",
			Meta:    map[string]string{"integrationId": "int_cal"},
		},
		{
			ID: g.uid("ntf"), At: g.hoursAgo(4), Type: types.NotifyInfo,
			Title:   "ETL Omnicanal",
			Message: "Carga completada. Nuevos registros disponibles para dashboard.",
			Meta:    map[string]string{"pipelineId": "etl_omni"},
		},
	}

	auditLogs := []types.AuditLog{
		{
			ID: g.uid("log"), At: g.now, Actor: "sistema", Severity: "info",
			Type: "seed", Message: "Base demo inicializada.", Meta: map[string]string{},
		},
	}

	return &types.DB{
		Meta:               types.Meta{Version: types.SchemaVersion, SeededAt: g.now},
		Users:              users,
		Campaigns:          campaigns,
		Agents:             agents,
		Resources:          resources,
		Assignments:        assignments,
		KPIRecords:         kpiRecords,
		Interactions:       interactions,
		QualityEvaluations: qualityEvaluations,
		Incidents:          incidents,
		Integrations:       integrations,
		Pipelines:          pipelines,
		KPICatalog:         kpiCatalog,
		Notifications:      notifications,
		AuditLogs:          auditLogs,
	}
}

type generator struct {
	rng *rand.Rand
	now time.Time
}

func (g *generator) uid(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

func (g *generator) daysAgo(days int) string {
	return g.now.AddDate(0, 0, -days).Format("2006-01-02")
}

func (g *generator) hoursAgo(hours int) time.Time {
	return g.now.Add(-time.Duration(hours) * time.Hour)
}

func (g *generator) campaigns() []types.Campaign {
	return []types.Campaign{
		{
			ID: "camp_pe_ventas", Name: "Ventas Fibra Hogar", Client: "Telco Andina", Country: "Perú",
			Channels: []string{"Voz", "WhatsApp", "Chat"}, Status: types.CampaignActive,
			StartDate: g.daysAgo(42), Owner: "Operaciones",
			Targets:   types.Targets{SLA: 0.82, CSAT: 86, AHT: 310, Conversion: 0.14},
			Notes:     "Campaña comercial con foco en conversión y cumplimiento de SLA.",
			CreatedAt: g.now, UpdatedAt: g.now,
		},
		{
			ID: "camp_cl_soporte", Name: "Soporte Técnico TV", Client: "TeleSur", Country: "Chile",
			Channels: []string{"Voz", "Chat", "Email"}, Status: types.CampaignActive,
			StartDate: g.daysAgo(70), Owner: "Operaciones",
			Targets:   types.Targets{SLA: 0.86, CSAT: 88, AHT: 340},
			Notes:     "Soporte técnico con énfasis en FCR y experiencia del cliente.",
			CreatedAt: g.now, UpdatedAt: g.now,
		},
		{
			ID: "camp_mx_cobranza", Name: "Cobranzas Retail", Client: "Grupo Retail MX", Country: "México",
			Channels: []string{"Voz", "Email"}, Status: types.CampaignActive,
			StartDate: g.daysAgo(18), Owner: "Operaciones",
			Targets:   types.Targets{SLA: 0.78, CSAT: 80, AHT: 360, Recovery: 0.22},
			Notes:     "Gestión de recupero con segmentación por mora y promesas de pago.",
			CreatedAt: g.now, UpdatedAt: g.now,
		},
		{
			ID: "camp_bo_onboarding", Name: "Onboarding Digital", Client: "Fintech BOL", Country: "Bolivia",
			Channels: []string{"Chat", "Email"}, Status: types.CampaignPlanned,
			StartDate: g.daysAgo(-7), Owner: "Operaciones",
			Targets:   types.Targets{SLA: 0.84, CSAT: 90, AHT: 280},
			Notes:     "Campaña en preparación: accesos, capacitación y pruebas de integración.",
			CreatedAt: g.now, UpdatedAt: g.now,
		},
	}
}

var agentNames = []string{
	"Valeria R.", "Miguel A.", "Sofía P.", "Carlos M.", "Daniela C.", "Jorge L.", "Andrea V.", "Pablo S.",
	"Camila G.", "Luis F.", "Mariana T.", "Renzo H.", "Gabriela N.", "Sebastián D.", "Lucía K.", "Diego B.",
	"Paula E.", "Kevin J.", "Rosa I.", "Marco Z.",
}

func (g *generator) agents() []types.Agent {
	agents := make([]types.Agent, 0, len(agentNames))
	for i, name := range agentNames {
		team := "Team Sur"
		switch i % 3 {
		case 0:
			team = "Team Norte"
		case 1:
			team = "Team Centro"
		}
		camp := "camp_mx_cobranza"
		if i < 8 {
			camp = "camp_pe_ventas"
		} else if i < 14 {
			camp = "camp_cl_soporte"
		}
		status := "Activo"
		if i%9 == 0 {
			status = "En descanso"
		}
		agents = append(agents, types.Agent{
			ID:         fmt.Sprintf("agt_%d", i+1),
			Name:       name,
			Team:       team,
			CampaignID: camp,
			Status:     status,
			HiredAt:    g.daysAgo(200 + g.rng.Intn(400)),
		})
	}
	return agents
}

func (g *generator) resources() []types.Resource {
	resourceTypes := []string{"PC", "Headset", "Teléfono", "Monitor", "Teclado"}
	locations := []string{"Lima", "Santiago", "CDMX", "Remoto"}
	statusPool := []types.ResourceStatus{
		types.ResourceAvailable, types.ResourceAvailable, types.ResourceAvailable,
		types.ResourceAssigned, types.ResourceMaintenance,
	}

	resources := make([]types.Resource, 0, 42)
	for i := 1; i <= 42; i++ {
		typ := resourceTypes[g.rng.Intn(len(resourceTypes))]
		status := statusPool[g.rng.Intn(len(statusPool))]

		model := "Genérico"
		switch typ {
		case "PC":
			model = "Dell OptiPlex 7090"
		case "Headset":
			model = "Jabra Evolve 20"
		case "Teléfono":
			model = "Yealink T46"
		}
		notes := ""
		if status == types.ResourceMaintenance {
			notes = "Revisión preventiva programada."
		}

		resources = append(resources, types.Resource{
			ID:        fmt.Sprintf("res_%d", i),
			Type:      typ,
			Code:      fmt.Sprintf("%s-%03d", codePrefix(typ), i),
			Model:     model,
			Status:    status,
			Location:  locations[g.rng.Intn(len(locations))],
			Notes:     notes,
			CreatedAt: g.now,
			UpdatedAt: g.now,
		})
	}
	return resources
}

// codePrefix takes the first two letters of the type, upper-cased; type
// names may start with a multibyte rune (Teléfono).
func codePrefix(typ string) string {
	runes := []rune(typ)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	out := make([]rune, len(runes))
	for i, r := range runes {
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		out[i] = r
	}
	return string(out)
}

func (g *generator) assignments(resources []types.Resource, agents []types.Agent) []types.Assignment {
	assignments := make([]types.Assignment, 0, 18)
	idx := 0
	for _, r := range resources {
		if r.Status != types.ResourceAssigned || len(assignments) >= 18 {
			continue
		}
		ag := agents[idx%len(agents)]
		assignments = append(assignments, types.Assignment{
			ID:         g.uid("asg"),
			ResourceID: r.ID,
			AgentID:    ag.ID,
			CampaignID: ag.CampaignID,
			At:         g.now.AddDate(0, 0, -(5 + g.rng.Intn(30))),
			Active:     true,
		})
		idx++
	}
	return assignments
}

func (g *generator) integrations() []types.Integration {
	return []types.Integration{
		g.connector("int_crm", "CRM por campaña (SaaS)", types.IntegrationConnected, "/api/crm"),
		g.connector("int_voip", "Telefonía IP / VoIP", types.IntegrationConnected, "/api/voip"),
		g.connector("int_omni", "Plataforma Omnicanal", types.IntegrationConnected, "/api/omni"),
		g.connector("int_cal", "Herramientas de Calidad", types.IntegrationDegraded, "/api/quality"),
		g.connector("int_rrhh", "RR.HH.", types.IntegrationConnected, "/api/hr"),
		g.connector("int_wfm", "WFM (Workforce)", types.IntegrationDisconnected, "/api/wfm"),
	}
}

func (g *generator) connector(id, name string, status types.IntegrationStatus, endpoint string) types.Integration {
	last := g.hoursAgo(g.rng.Intn(6))

	var health float64
	notes := "Operativo."
	switch status {
	case types.IntegrationConnected:
		health = float64(92 + g.rng.Intn(6))
	case types.IntegrationDegraded:
		health = float64(72 + g.rng.Intn(10))
		notes = "Errores 5xx intermitentes."
	case types.IntegrationDisconnected:
		health = float64(44 + g.rng.Intn(12))
		notes = "Pendiente de credenciales / whitelisting."
	}

	return types.Integration{
		ID: id, Name: name, Status: status,
		LastSyncAt: last, NextSyncAt: last.Add(time.Hour),
		Health: health, Endpoint: endpoint, Notes: notes,
	}
}

func (g *generator) pipelines() []types.Pipeline {
	specs := []struct{ id, name, source, dest, schedule string }{
		{"etl_crm", "ETL CRM → DWH", "CRM", "DWH", "cada 15 min"},
		{"etl_voip", "ETL VoIP → DWH", "VoIP", "DWH", "cada 10 min"},
		{"etl_omni", "ETL Omnicanal → DWH", "Omnicanal", "DWH", "cada 5 min"},
		{"etl_quality", "ETL Calidad → DWH", "Calidad", "DWH", "cada 30 min"},
		{"etl_rrhh", "ETL RR.HH. → DWH", "RR.HH.", "DWH", "cada 1 h"},
		{"etl_wfm", "ETL WFM → DWH", "WFM", "DWH", "cada 30 min"},
	}

	pipelines := make([]types.Pipeline, 0, len(specs))
	for _, p := range specs {
		status := types.PipelineOK
		switch roll := g.rng.Float64(); {
		case roll >= 0.92:
			status = types.PipelineError
		case roll >= 0.78:
			status = types.PipelineDelayed
		}
		pipelines = append(pipelines, types.Pipeline{
			ID: p.id, Name: p.name, Source: p.source, Dest: p.dest, Schedule: p.schedule,
			LastRunAt:   g.hoursAgo(g.rng.Intn(4)),
			Status:      status,
			Rows:        1200 + int(g.rng.Float64()*9200),
			DurationSec: 35 + int(g.rng.Float64()*140),
		})
	}
	return pipelines
}

func (g *generator) kpiCatalog() []types.KPIDef {
	specs := []struct{ code, name, frequency, owner, formula, description string }{
		{"SLA", "Nivel de servicio", "Cada 15 min", "Operaciones", "SLA = atendidas_en_objetivo / atendidas_totales", "Mide cumplimiento de atención en el tiempo comprometido."},
		{"TMO", "Tiempo medio de operación", "Cada 15 min", "Operaciones", "TMO = tiempo_total / interacciones", "Equivalente a AHT; incluye conversación + post-gestión."},
		{"CSAT", "Satisfacción del cliente", "Diaria", "Calidad", "CSAT = % respuestas 4-5", "Encuesta post interacción."},
		{"NPS", "Net Promoter Score", "Semanal", "Calidad", "NPS = %promotores - %detractores", "Lealtad percibida del cliente."},
		{"CONV", "Conversión", "Diaria", "Comercial", "Conversión = ventas / contactos efectivos", "Eficiencia de ventas."},
		{"REC", "Recupero", "Diaria", "Cobranzas", "Recupero = monto_recuperado / monto_gestionado", "Efectividad de cobranzas."},
		{"FCR", "Resolución en el primer contacto", "Diaria", "Calidad", "FCR = casos_resueltos_1_contacto / casos_totales", "Eficacia de soporte."},
	}

	defs := make([]types.KPIDef, 0, len(specs))
	for _, s := range specs {
		defs = append(defs, types.KPIDef{
			ID: g.uid("kpi"), Code: s.code, Name: s.name, Frequency: s.frequency,
			Owner: s.owner, Formula: s.formula, Description: s.description, CreatedAt: g.now,
		})
	}
	return defs
}

func (g *generator) qualityEvaluations(agents []types.Agent) []types.QualityEvaluation {
	evals := make([]types.QualityEvaluation, 0, 22)
	for i := 0; i < 22; i++ {
		ag := agents[g.rng.Intn(len(agents))]
		score := int(math.Round(72 + g.rng.Float64()*26))

		notes := "Buen manejo de la guía y validaciones."
		if score < 80 {
			notes = "Refuerzo en empatía y estructura de cierre."
		}

		evals = append(evals, types.QualityEvaluation{
			ID:         g.uid("qa"),
			CampaignID: ag.CampaignID,
			AgentID:    ag.ID,
			At:         g.daysAgo(g.rng.Intn(25)),
			Score:      score,
			Checklist: map[string]bool{
				"saludo":     score > 78,
				"validacion": score > 75,
				"empatia":    score > 80,
				"solucion":   score > 77,
				"cierre":     score > 74,
			},
			Notes: notes,
		})
	}
	return evals
}

func (g *generator) incidents() []types.Incident {
	return []types.Incident{
		{
			ID: "inc_001", Title: "Latencia elevada en plataforma omnicanal", Category: "Conectividad",
			Priority: types.PriorityHigh, Status: types.IncidentInProgress,
			Description: "Afecta chats y WhatsApp en picos de tráfico.",
			CreatedAt:   g.hoursAgo(24), UpdatedAt: g.now,
			AssignedTo: "TI / Redes", RelatedCampaignID: "camp_pe_ventas",
		},
		{
			ID: "inc_002", Title: "Usuarios sin acceso a CRM (error 403)", Category: "Accesos",
			Priority: types.PriorityMedium, Status: types.IncidentOpen,
			Description: "Nuevas altas sin permisos por rol.",
			CreatedAt:   g.hoursAgo(3), UpdatedAt: g.now,
			AssignedTo: "TI / Sistemas", RelatedCampaignID: "camp_bo_onboarding",
		},
		{
			ID: "inc_003", Title: "Headsets con ruido intermitente (lote)", Category: "Activos",
			Priority: types.PriorityLow, Status: types.IncidentResolved,
			Description: "Se cambió lote y se ajustó configuración de audio.",
			CreatedAt:   g.hoursAgo(9 * 24), UpdatedAt: g.hoursAgo(3 * 24),
			AssignedTo: "Soporte",
		},
	}
}

// Channels and customer names drawn for seeded and simulated interactions
var (
	Channels      = []string{"Voz", "Chat", "WhatsApp", "Email"}
	CustomerNames = []string{"Ana", "Juan", "Claudia", "Ricardo", "María", "Gustavo", "Erika", "José", "Sonia", "Felipe", "Roxana", "Héctor", "Paolo", "Estefanía"}
)

func (g *generator) interactions(campaigns []types.Campaign) []types.Interaction {
	interactions := make([]types.Interaction, 0, 34)
	for i := 0; i < 34; i++ {
		camp := campaigns[g.rng.Intn(3)]
		ch := Channels[g.rng.Intn(len(Channels))]

		status := "En cola"
		if g.rng.Float64() < 0.58 {
			status = "Resuelto"
		} else if g.rng.Float64() < 0.82 {
			status = "En curso"
		}
		priority := types.PriorityLow
		if g.rng.Float64() < 0.12 {
			priority = types.PriorityHigh
		} else if g.rng.Float64() < 0.42 {
			priority = types.PriorityMedium
		}

		summary := "Correo con evidencias adjuntas."
		switch ch {
		case "Voz":
			summary = "Consulta general / validación."
		case "Chat":
			summary = "Soporte y seguimiento."
		case "WhatsApp":
			summary = "Atención rápida y derivación."
		}

		interactions = append(interactions, types.Interaction{
			ID:         g.uid("cx"),
			CampaignID: camp.ID,
			Channel:    ch,
			Customer:   fmt.Sprintf("%s %c.", CustomerNames[g.rng.Intn(len(CustomerNames))], 'A'+rune(g.rng.Intn(26))),
			Status:     status,
			Priority:   priority,
			CreatedAt:  g.hoursAgo(g.rng.Intn(6) * 24),
			UpdatedAt:  g.now,
			Summary:    summary,
		})
	}
	return interactions
}

// kpiRecords generates 48 hours of history in 2-hour steps per active
// campaign, oldest first so the latest record sits at the end of the slice.
func (g *generator) kpiRecords(campaigns []types.Campaign) []types.KPIRecord {
	const points = 24

	records := make([]types.KPIRecord, 0, points*3)
	activeIdx := 0
	for _, c := range campaigns {
		if c.Status != types.CampaignActive {
			continue
		}
		baseVol := 90.0
		switch activeIdx {
		case 0:
			baseVol = 140
		case 1:
			baseVol = 110
		}
		activeIdx++

		baseCsat := c.Targets.CSAT - 2
		for i := points - 1; i >= 0; i-- {
			wave := math.Sin(float64(i)/points*math.Pi*2) * 0.08
			vol := int(math.Round(baseVol * (0.72 + g.rng.Float64()*0.65) * (1 + wave)))
			answered := int(math.Round(float64(vol) * (0.86 + g.rng.Float64()*0.10)))
			if answered > vol {
				answered = vol
			}

			conversion, recovery := 0.0, 0.0
			if c.Targets.Conversion != 0 {
				conversion = clamp(c.Targets.Conversion+(g.rng.Float64()-0.5)*0.06+wave*0.03, 0.04, 0.26)
			}
			if c.Targets.Recovery != 0 {
				recovery = clamp(c.Targets.Recovery+(g.rng.Float64()-0.5)*0.08+wave*0.03, 0.06, 0.40)
			}

			records = append(records, types.KPIRecord{
				ID:         g.uid("kpir"),
				CampaignID: c.ID,
				At:         g.hoursAgo(i * 2),
				Contacts:   vol,
				Answered:   answered,
				Abandoned:  vol - answered,
				SLA:        clamp(c.Targets.SLA+wave+(g.rng.Float64()-0.5)*0.06, 0.62, 0.95),
				AHT:        int(math.Round(clamp(c.Targets.AHT+(g.rng.Float64()-0.5)*70+wave*50, 210, 520))),
				CSAT:       int(math.Round(clamp(baseCsat+(g.rng.Float64()-0.5)*8+wave*6, 70, 95))),
				NPS:        int(math.Round(clamp(15+(g.rng.Float64()-0.5)*40+wave*20, -40, 65))),
				Conversion: conversion,
				Recovery:   recovery,
			})
		}
	}
	return records
}

func clamp(n, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, n))
}
