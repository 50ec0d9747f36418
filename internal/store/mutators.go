package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dasparmv/FORTELV2/internal/types"
)

// Entity mutators are thin wrappers around Transact: build or patch the
// entity, apply the invariant-preserving side effects, and record a
// category-specific audit entry. Required fields are validated here and
// reported as ErrMissingField; everything else is the caller's to get
// right. Patching an entity whose id no longer exists is a silent no-op
// (the audit entry is still recorded).

// CampaignDraft is the payload for CreateCampaign. Name and Client are
// required; everything else gets original defaults.
type CampaignDraft struct {
	Name      string
	Client    string
	Country   string
	Channels  []string
	Status    types.CampaignStatus
	StartDate string
	Owner     string
	Targets   *types.Targets
	Notes     string
}

// CreateCampaign adds a campaign and returns it
func (s *Store) CreateCampaign(ctx context.Context, draft CampaignDraft) (*types.Campaign, error) {
	name := strings.TrimSpace(draft.Name)
	client := strings.TrimSpace(draft.Client)
	if name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}
	if client == "" {
		return nil, fmt.Errorf("%w: client", ErrMissingField)
	}

	now := s.now()
	c := types.Campaign{
		ID:        UID("camp"),
		Name:      name,
		Client:    client,
		Country:   draft.Country,
		Channels:  draft.Channels,
		Status:    draft.Status,
		StartDate: draft.StartDate,
		Owner:     draft.Owner,
		Notes:     draft.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.Channels == nil {
		c.Channels = []string{}
	}
	if c.Status == "" {
		c.Status = types.CampaignPlanned
	}
	if c.StartDate == "" {
		c.StartDate = now.Format("2006-01-02")
	}
	if c.Owner == "" {
		c.Owner = "Operaciones"
	}
	if draft.Targets != nil {
		c.Targets = *draft.Targets
	} else {
		c.Targets = types.Targets{SLA: 0.80, CSAT: 85, AHT: 320, Conversion: 0.12, Recovery: 0.18}
	}

	err := s.Transact(ctx, func(d *types.DB) {
		d.Campaigns = append([]types.Campaign{c}, d.Campaigns...)
	}, &TxOptions{Audit: &AuditEntry{
		Type: "campaign.create", Message: "Campaña creada: " + c.Name,
		Meta: map[string]string{"campaignId": c.ID},
	}})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CampaignPatch updates a campaign in place; nil fields are untouched
type CampaignPatch struct {
	Name      *string
	Client    *string
	Country   *string
	Channels  *[]string
	Status    *types.CampaignStatus
	StartDate *string
	Owner     *string
	Targets   *types.Targets
	Notes     *string
}

// UpdateCampaign applies patch to the campaign with the given id
func (s *Store) UpdateCampaign(ctx context.Context, id string, patch CampaignPatch) error {
	return s.Transact(ctx, func(d *types.DB) {
		for i := range d.Campaigns {
			if d.Campaigns[i].ID != id {
				continue
			}
			c := &d.Campaigns[i]
			applyString(&c.Name, patch.Name)
			applyString(&c.Client, patch.Client)
			applyString(&c.Country, patch.Country)
			applyString(&c.StartDate, patch.StartDate)
			applyString(&c.Owner, patch.Owner)
			applyString(&c.Notes, patch.Notes)
			if patch.Channels != nil {
				c.Channels = *patch.Channels
			}
			if patch.Status != nil {
				c.Status = *patch.Status
			}
			if patch.Targets != nil {
				c.Targets = *patch.Targets
			}
			c.UpdatedAt = s.now()
			return
		}
	}, &TxOptions{Audit: &AuditEntry{
		Type: "campaign.update", Message: "Campaña actualizada",
		Meta: map[string]string{"campaignId": id},
	}})
}

// ResourceDraft is the payload for CreateResource. Type, Code and Model
// are required.
type ResourceDraft struct {
	Type     string
	Code     string
	Model    string
	Status   types.ResourceStatus
	Location string
	Notes    string
}

// CreateResource adds a resource and returns it
func (s *Store) CreateResource(ctx context.Context, draft ResourceDraft) (*types.Resource, error) {
	code := strings.TrimSpace(draft.Code)
	model := strings.TrimSpace(draft.Model)
	if draft.Type == "" {
		return nil, fmt.Errorf("%w: type", ErrMissingField)
	}
	if code == "" {
		return nil, fmt.Errorf("%w: code", ErrMissingField)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: model", ErrMissingField)
	}

	now := s.now()
	r := types.Resource{
		ID:        UID("res"),
		Type:      draft.Type,
		Code:      code,
		Model:     model,
		Status:    draft.Status,
		Location:  draft.Location,
		Notes:     draft.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if r.Status == "" {
		r.Status = types.ResourceAvailable
	}
	if r.Location == "" {
		r.Location = "Lima"
	}

	err := s.Transact(ctx, func(d *types.DB) {
		d.Resources = append([]types.Resource{r}, d.Resources...)
	}, &TxOptions{Audit: &AuditEntry{
		Type: "resource.create", Message: "Recurso agregado: " + r.Code,
		Meta: map[string]string{"resourceId": r.ID},
	}})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ResourcePatch updates a resource in place; nil fields are untouched
type ResourcePatch struct {
	Type     *string
	Code     *string
	Model    *string
	Status   *types.ResourceStatus
	Location *string
	Notes    *string
}

// UpdateResource applies patch to the resource with the given id
func (s *Store) UpdateResource(ctx context.Context, id string, patch ResourcePatch) error {
	return s.Transact(ctx, func(d *types.DB) {
		for i := range d.Resources {
			if d.Resources[i].ID != id {
				continue
			}
			r := &d.Resources[i]
			applyString(&r.Type, patch.Type)
			applyString(&r.Code, patch.Code)
			applyString(&r.Model, patch.Model)
			applyString(&r.Location, patch.Location)
			applyString(&r.Notes, patch.Notes)
			if patch.Status != nil {
				r.Status = *patch.Status
			}
			r.UpdatedAt = s.now()
			return
		}
	}, &TxOptions{Audit: &AuditEntry{
		Type: "resource.update", Message: "Recurso actualizado",
		Meta: map[string]string{"resourceId": id},
	}})
}

// AssignInput identifies the resource to assign and its destination
type AssignInput struct {
	ResourceID string
	AgentID    string
	CampaignID string
}

// AssignResource marks the resource as assigned and records a new active
// assignment, atomically deactivating any prior active assignment for the
// same resource within the same transaction.
func (s *Store) AssignResource(ctx context.Context, in AssignInput) error {
	if in.ResourceID == "" {
		return fmt.Errorf("%w: resourceId", ErrMissingField)
	}

	return s.Transact(ctx, func(d *types.DB) {
		var res *types.Resource
		for i := range d.Resources {
			if d.Resources[i].ID == in.ResourceID {
				res = &d.Resources[i]
				break
			}
		}
		if res == nil {
			return
		}
		res.Status = types.ResourceAssigned
		res.UpdatedAt = s.now()

		for i := range d.Assignments {
			if d.Assignments[i].ResourceID == in.ResourceID && d.Assignments[i].Active {
				d.Assignments[i].Active = false
			}
		}
		d.Assignments = append([]types.Assignment{{
			ID:         UID("asg"),
			ResourceID: in.ResourceID,
			AgentID:    in.AgentID,
			CampaignID: in.CampaignID,
			At:         s.now(),
			Active:     true,
		}}, d.Assignments...)
	}, &TxOptions{Audit: &AuditEntry{
		Type: "resource.assign", Message: "Recurso asignado",
		Meta: map[string]string{
			"resourceId": in.ResourceID,
			"agentId":    in.AgentID,
			"campaignId": in.CampaignID,
		},
	}})
}

// UnassignResource marks the resource as available again and deactivates
// its active assignments.
func (s *Store) UnassignResource(ctx context.Context, resourceID string) error {
	if resourceID == "" {
		return fmt.Errorf("%w: resourceId", ErrMissingField)
	}

	return s.Transact(ctx, func(d *types.DB) {
		var res *types.Resource
		for i := range d.Resources {
			if d.Resources[i].ID == resourceID {
				res = &d.Resources[i]
				break
			}
		}
		if res == nil {
			return
		}
		res.Status = types.ResourceAvailable
		res.UpdatedAt = s.now()

		for i := range d.Assignments {
			if d.Assignments[i].ResourceID == resourceID && d.Assignments[i].Active {
				d.Assignments[i].Active = false
			}
		}
	}, &TxOptions{Audit: &AuditEntry{
		Type: "resource.unassign", Message: "Recurso liberado",
		Meta: map[string]string{"resourceId": resourceID},
	}})
}

// IncidentDraft is the payload for CreateIncident. Title is required.
type IncidentDraft struct {
	Title             string
	Category          string
	Priority          types.Priority
	Status            types.IncidentStatus
	Description       string
	AssignedTo        string
	RelatedCampaignID string
}

// CreateIncident adds an incident and returns it
func (s *Store) CreateIncident(ctx context.Context, draft IncidentDraft) (*types.Incident, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title", ErrMissingField)
	}

	now := s.now()
	inc := types.Incident{
		ID:                UID("inc"),
		Title:             title,
		Category:          draft.Category,
		Priority:          draft.Priority,
		Status:            draft.Status,
		Description:       draft.Description,
		CreatedAt:         now,
		UpdatedAt:         now,
		AssignedTo:        draft.AssignedTo,
		RelatedCampaignID: draft.RelatedCampaignID,
	}
	if inc.Status == "" {
		inc.Status = types.IncidentOpen
	}

	err := s.Transact(ctx, func(d *types.DB) {
		d.Incidents = append([]types.Incident{inc}, d.Incidents...)
	}, &TxOptions{Audit: &AuditEntry{
		Type: "incident.create", Severity: "warn", Message: "Incidente creado: " + inc.Title,
		Meta: map[string]string{"incidentId": inc.ID},
	}})
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

// IncidentPatch updates an incident in place; nil fields are untouched
type IncidentPatch struct {
	Title             *string
	Category          *string
	Priority          *types.Priority
	Status            *types.IncidentStatus
	Description       *string
	AssignedTo        *string
	RelatedCampaignID *string
}

// UpdateIncident applies patch to the incident with the given id
func (s *Store) UpdateIncident(ctx context.Context, id string, patch IncidentPatch) error {
	return s.Transact(ctx, func(d *types.DB) {
		for i := range d.Incidents {
			if d.Incidents[i].ID != id {
				continue
			}
			inc := &d.Incidents[i]
			applyString(&inc.Title, patch.Title)
			applyString(&inc.Category, patch.Category)
			applyString(&inc.Description, patch.Description)
			applyString(&inc.AssignedTo, patch.AssignedTo)
			applyString(&inc.RelatedCampaignID, patch.RelatedCampaignID)
			if patch.Priority != nil {
				inc.Priority = *patch.Priority
			}
			if patch.Status != nil {
				inc.Status = *patch.Status
			}
			inc.UpdatedAt = s.now()
			return
		}
	}, &TxOptions{Audit: &AuditEntry{
		Type: "incident.update", Message: "Incidente actualizado",
		Meta: map[string]string{"incidentId": id},
	}})
}

// KPIDefDraft is the payload for CreateKPIDef. Code and Name are required;
// the code is stored upper-cased.
type KPIDefDraft struct {
	Code        string
	Name        string
	Frequency   string
	Owner       string
	Formula     string
	Description string
}

// CreateKPIDef adds a KPI catalog entry and returns it
func (s *Store) CreateKPIDef(ctx context.Context, draft KPIDefDraft) (*types.KPIDef, error) {
	code := strings.ToUpper(strings.TrimSpace(draft.Code))
	name := strings.TrimSpace(draft.Name)
	if code == "" {
		return nil, fmt.Errorf("%w: code", ErrMissingField)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}

	def := types.KPIDef{
		ID:          UID("kpi"),
		Code:        code,
		Name:        name,
		Frequency:   draft.Frequency,
		Owner:       draft.Owner,
		Formula:     draft.Formula,
		Description: draft.Description,
		CreatedAt:   s.now(),
	}
	if def.Frequency == "" {
		def.Frequency = "Diaria"
	}
	if def.Owner == "" {
		def.Owner = "Data"
	}

	err := s.Transact(ctx, func(d *types.DB) {
		d.KPICatalog = append([]types.KPIDef{def}, d.KPICatalog...)
	}, &TxOptions{Audit: &AuditEntry{
		Type: "kpi.create", Message: "KPI agregado: " + def.Code,
		Meta: map[string]string{"kpiId": def.ID},
	}})
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func applyString(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}
