package seed

import (
	"testing"
	"time"

	"github.com/Dasparmv/FORTELV2/internal/types"
)

func TestCollectionSizes(t *testing.T) {
	db := New(time.Now())

	checks := []struct {
		name string
		got  int
		want int
	}{
		{"users", len(db.Users), 4},
		{"campaigns", len(db.Campaigns), 4},
		{"agents", len(db.Agents), 20},
		{"resources", len(db.Resources), 42},
		{"integrations", len(db.Integrations), 6},
		{"pipelines", len(db.Pipelines), 6},
		{"kpiCatalog", len(db.KPICatalog), 7},
		{"qualityEvaluations", len(db.QualityEvaluations), 22},
		{"incidents", len(db.Incidents), 3},
		{"interactions", len(db.Interactions), 34},
		{"notifications", len(db.Notifications), 2},
		{"auditLogs", len(db.AuditLogs), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %d, got %d", c.name, c.want, c.got)
		}
	}

	// 24 history points per active campaign
	active := 0
	for _, c := range db.Campaigns {
		if c.Status == types.CampaignActive {
			active++
		}
	}
	if active != 3 {
		t.Fatalf("expected 3 active campaigns, got %d", active)
	}
	if len(db.KPIRecords) != 24*active {
		t.Errorf("kpiRecords: expected %d, got %d", 24*active, len(db.KPIRecords))
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := New(now)
	b := New(now)

	if a.Meta.Version != b.Meta.Version || a.Meta.Version != types.SchemaVersion {
		t.Errorf("meta version mismatch: %d vs %d", a.Meta.Version, b.Meta.Version)
	}
	if len(a.Assignments) != len(b.Assignments) {
		t.Errorf("assignment count differs: %d vs %d", len(a.Assignments), len(b.Assignments))
	}

	// fixed ids and PRNG-drawn fields repeat exactly
	for i := range a.Resources {
		if a.Resources[i].Code != b.Resources[i].Code || a.Resources[i].Status != b.Resources[i].Status {
			t.Fatalf("resource %d differs: %+v vs %+v", i, a.Resources[i], b.Resources[i])
		}
	}
	for i := range a.Campaigns {
		if a.Campaigns[i].ID != b.Campaigns[i].ID {
			t.Fatalf("campaign %d id differs", i)
		}
	}
}

func TestAssignmentInvariants(t *testing.T) {
	db := New(time.Now())

	seen := make(map[string]bool)
	for _, a := range db.Assignments {
		if !a.Active {
			t.Errorf("seed assignment %s not active", a.ID)
		}
		if seen[a.ResourceID] {
			t.Errorf("resource %s has more than one active assignment", a.ResourceID)
		}
		seen[a.ResourceID] = true
	}
	for _, a := range db.Assignments {
		found := false
		for _, r := range db.Resources {
			if r.ID == a.ResourceID {
				if r.Status != types.ResourceAssigned {
					t.Errorf("assigned resource %s has status %s", r.ID, r.Status)
				}
				found = true
			}
		}
		if !found {
			t.Errorf("assignment %s references missing resource %s", a.ID, a.ResourceID)
		}
	}
}

func TestKPIHistoryOrderedPerCampaign(t *testing.T) {
	db := New(time.Now())

	last := make(map[string]time.Time)
	for _, r := range db.KPIRecords {
		if prev, ok := last[r.CampaignID]; ok && r.At.Before(prev) {
			t.Fatalf("kpi history for %s not in time order", r.CampaignID)
		}
		last[r.CampaignID] = r.At
		if r.SLA < 0.62 || r.SLA > 0.95 {
			t.Errorf("seed sla out of range: %f", r.SLA)
		}
		if r.Answered > r.Contacts {
			t.Errorf("answered %d exceeds contacts %d", r.Answered, r.Contacts)
		}
	}
}
