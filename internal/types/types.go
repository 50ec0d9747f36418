// Package types defines the SIGCR operational document and its entities.
// The whole document is loaded and rewritten wholesale; there is no partial
// persistence of individual collections.
package types

import "time"

// SchemaVersion is the expected DB document version. A loaded document with
// any other version is discarded and replaced by a fresh seed.
const SchemaVersion = 1

// Role represents a user role in the demo roster
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleSupervisor Role = "Supervisor"
	RoleAnalista   Role = "Analista"
	RoleOperador   Role = "Operador"
)

// CampaignStatus represents the lifecycle state of a campaign
type CampaignStatus string

const (
	CampaignPlanned CampaignStatus = "Planificada"
	CampaignActive  CampaignStatus = "Activa"
	CampaignPaused  CampaignStatus = "Pausada"
	CampaignClosed  CampaignStatus = "Cerrada"
)

// ResourceStatus represents the lifecycle state of a staffed resource/asset
type ResourceStatus string

const (
	ResourceAvailable   ResourceStatus = "Disponible"
	ResourceAssigned    ResourceStatus = "Asignado"
	ResourceMaintenance ResourceStatus = "Mantenimiento"
	ResourceRetired     ResourceStatus = "Retirado"
)

// IncidentStatus represents the state of an incident
type IncidentStatus string

const (
	IncidentOpen       IncidentStatus = "Abierto"
	IncidentInProgress IncidentStatus = "En curso"
	IncidentResolved   IncidentStatus = "Resuelto"
)

// Priority represents incident/interaction priority
type Priority string

const (
	PriorityHigh   Priority = "Alta"
	PriorityMedium Priority = "Media"
	PriorityLow    Priority = "Baja"
)

// IntegrationStatus represents connector health state
type IntegrationStatus string

const (
	IntegrationConnected    IntegrationStatus = "Conectado"
	IntegrationDegraded     IntegrationStatus = "Degradado"
	IntegrationDisconnected IntegrationStatus = "Desconectado"
)

// PipelineStatus represents ETL job state
type PipelineStatus string

const (
	PipelineOK      PipelineStatus = "OK"
	PipelineDelayed PipelineStatus = "Retrasado"
	PipelineError   PipelineStatus = "Error"
)

// NotificationType classifies notifications for presentation
type NotificationType string

const (
	NotifyInfo    NotificationType = "info"
	NotifySuccess NotificationType = "success"
	NotifyWarn    NotificationType = "warn"
	NotifyDanger  NotificationType = "danger"
)

// User is a static demo roster entry. Users are not created or edited at
// runtime; the password is a demonstration credential, not a secret.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Password string `json:"password"`
}

// Targets holds per-campaign KPI targets. A zero Conversion or Recovery
// means the campaign does not track that metric.
type Targets struct {
	SLA        float64 `json:"sla"`        // fraction 0..1
	CSAT       float64 `json:"csat"`       // points
	AHT        float64 `json:"aht"`        // seconds
	Conversion float64 `json:"conversion"` // fraction 0..1
	Recovery   float64 `json:"recovery"`   // fraction 0..1
}

// Campaign is a client campaign operated by the contact center
type Campaign struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Client    string         `json:"client"`
	Country   string         `json:"country"`
	Channels  []string       `json:"channels"`
	Status    CampaignStatus `json:"status"`
	StartDate string         `json:"startDate"` // YYYY-MM-DD
	Owner     string         `json:"owner"`
	Targets   Targets        `json:"targets"`
	Notes     string         `json:"notes"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Agent is a staffed contact-center agent (seed-only roster)
type Agent struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Team       string `json:"team"`
	CampaignID string `json:"campaignId"`
	Status     string `json:"status"`
	HiredAt    string `json:"hiredAt"` // YYYY-MM-DD
}

// Resource is a physical asset (PC, headset, phone, ...)
type Resource struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Code      string         `json:"code"`
	Model     string         `json:"model"`
	Status    ResourceStatus `json:"status"`
	Location  string         `json:"location"`
	Notes     string         `json:"notes"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Assignment links a resource to an agent and campaign. At most one
// assignment per resource is active at any time.
type Assignment struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resourceId"`
	AgentID    string    `json:"agentId"`
	CampaignID string    `json:"campaignId"`
	At         time.Time `json:"at"`
	Active     bool      `json:"active"`
}

// KPIRecord is one immutable time-series point for a campaign
type KPIRecord struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaignId"`
	At         time.Time `json:"at"`
	Contacts   int       `json:"contacts"`
	Answered   int       `json:"answered"`
	Abandoned  int       `json:"abandoned"`
	SLA        float64   `json:"sla"`  // 0..1
	AHT        int       `json:"aht"`  // seconds
	CSAT       int       `json:"csat"` // points
	NPS        int       `json:"nps"`
	Conversion float64   `json:"conversion"` // 0..1
	Recovery   float64   `json:"recovery"`   // 0..1
}

// Interaction is an omnichannel contact log entry
type Interaction struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaignId"`
	Channel    string    `json:"channel"`
	Customer   string    `json:"customer"`
	Status     string    `json:"status"`
	Priority   Priority  `json:"priority"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Summary    string    `json:"summary"`
}

// QualityEvaluation is a scored QA review of one agent interaction
type QualityEvaluation struct {
	ID         string          `json:"id"`
	CampaignID string          `json:"campaignId"`
	AgentID    string          `json:"agentId"`
	At         string          `json:"at"` // YYYY-MM-DD
	Score      int             `json:"score"`
	Checklist  map[string]bool `json:"checklist"`
	Notes      string          `json:"notes"`
}

// Incident is an operational incident. Any status is reachable from any
// other; no transition graph is enforced.
type Incident struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Category          string         `json:"category"`
	Priority          Priority       `json:"priority"`
	Status            IncidentStatus `json:"status"`
	Description       string         `json:"description"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	AssignedTo        string         `json:"assignedTo"`
	RelatedCampaignID string         `json:"relatedCampaignId"`
}

// Integration is an external connector (CRM, VoIP, omnichannel, ...)
type Integration struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Status     IntegrationStatus `json:"status"`
	LastSyncAt time.Time         `json:"lastSyncAt"`
	NextSyncAt time.Time         `json:"nextSyncAt"`
	Health     float64           `json:"health"` // 0..100
	Endpoint   string            `json:"endpoint"`
	Notes      string            `json:"notes"`
}

// Pipeline is an ETL job feeding the data hub
type Pipeline struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Source      string         `json:"source"`
	Dest        string         `json:"dest"`
	Schedule    string         `json:"schedule"`
	LastRunAt   time.Time      `json:"lastRunAt"`
	Status      PipelineStatus `json:"status"`
	Rows        int            `json:"rows"`
	DurationSec int            `json:"durationSec"`
}

// KPIDef is a KPI catalog entry
type KPIDef struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Frequency   string    `json:"frequency"`
	Owner       string    `json:"owner"`
	Formula     string    `json:"formula"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Notification is a user-facing alert or info message
type Notification struct {
	ID      string            `json:"id"`
	At      time.Time         `json:"at"`
	Read    bool              `json:"read"`
	Type    NotificationType  `json:"type"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta"`
}

// AuditLog records one state-changing operation
type AuditLog struct {
	ID       string            `json:"id"`
	At       time.Time         `json:"at"`
	Actor    string            `json:"actor"`
	Severity string            `json:"severity"`
	Type     string            `json:"type"`
	Message  string            `json:"message"`
	Meta     map[string]string `json:"meta"`
}

// Meta carries document versioning info
type Meta struct {
	Version  int       `json:"version"`
	SeededAt time.Time `json:"seededAt"`
}

// DB is the root operational document. Collections written unshift-style
// keep newest entries first; KPIRecords are append-only in time order and
// callers scan from the end for the latest record of a campaign.
type DB struct {
	Meta               Meta                `json:"meta"`
	Users              []User              `json:"users"`
	Campaigns          []Campaign          `json:"campaigns"`
	Agents             []Agent             `json:"agents"`
	Resources          []Resource          `json:"resources"`
	Assignments        []Assignment        `json:"assignments"`
	KPIRecords         []KPIRecord         `json:"kpiRecords"`
	Interactions       []Interaction       `json:"interactions"`
	QualityEvaluations []QualityEvaluation `json:"qualityEvaluations"`
	Incidents          []Incident          `json:"incidents"`
	Integrations       []Integration       `json:"integrations"`
	Pipelines          []Pipeline          `json:"pipelines"`
	KPICatalog         []KPIDef            `json:"kpiCatalog"`
	Notifications      []Notification      `json:"notifications"`
	AuditLogs          []AuditLog          `json:"auditLogs"`
}

// Session is the logged-in user context, persisted separately from DB
type Session struct {
	UserID  string    `json:"userId"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Role    Role      `json:"role"`
	LoginAt time.Time `json:"loginAt"`
}

// Settings holds UI preferences, persisted separately from DB
type Settings struct {
	Theme          string `json:"theme"` // dark | light
	Realtime       bool   `json:"realtime"`
	CompactSidebar bool   `json:"compactSidebar"`
}

// DefaultSettings returns the settings applied when none are persisted
func DefaultSettings() Settings {
	return Settings{Theme: "dark", Realtime: true, CompactSidebar: false}
}
