package simulator

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Dasparmv/FORTELV2/internal/alerts"
	"github.com/Dasparmv/FORTELV2/internal/kv"
	"github.com/Dasparmv/FORTELV2/internal/store"
	"github.com/Dasparmv/FORTELV2/internal/types"
	"github.com/rs/zerolog"
)

func newTestSim(t *testing.T, cfg Config) (*Simulator, *store.Store) {
	t.Helper()
	logger := zerolog.New(&bytes.Buffer{})

	st := store.New(kv.NewMemory(), logger)
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	if cfg.Seed == 0 {
		cfg.Seed = 7
	}
	sim := New(st, cfg, logger)
	t.Cleanup(sim.Stop)
	return sim, st
}

func loginAdmin(t *testing.T, st *store.Store) {
	t.Helper()
	if _, err := st.Login(context.Background(), "admin@demo.com", "Fortel2025!"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestTickAdvancesDocument(t *testing.T) {
	sim, st := newTestSim(t, Config{})
	ctx := context.Background()
	loginAdmin(t, st)

	kpisBefore := len(st.DB().KPIRecords)
	interactionsBefore := len(st.DB().Interactions)
	runBefore := st.DB().Pipelines[0].LastRunAt

	sim.tick(ctx)

	d := st.DB()
	if got := len(d.KPIRecords) - kpisBefore; got != 3 {
		t.Errorf("expected one new KPI record per active campaign, got %d", got)
	}
	added := len(d.Interactions) - interactionsBefore
	if added < 1 || added > 3 {
		t.Errorf("expected 1-3 new interactions, got %d", added)
	}
	if !d.Pipelines[0].LastRunAt.After(runBefore) {
		t.Error("pipeline lastRunAt not redrawn")
	}

	// newest record per campaign is the one just appended
	rec := store.LatestKPI(d, "camp_pe_ventas")
	if rec == nil || !rec.At.After(runBefore.Add(-time.Hour)) {
		t.Error("latest KPI record not from this tick")
	}
}

func TestTickRespectsDisablement(t *testing.T) {
	sim, st := newTestSim(t, Config{})
	ctx := context.Background()

	before := len(st.DB().KPIRecords)
	sim.tick(ctx) // no session
	if len(st.DB().KPIRecords) != before {
		t.Error("tick ran without a session")
	}

	loginAdmin(t, st)
	realtime := false
	if err := st.UpdateSettings(ctx, store.SettingsPatch{Realtime: &realtime}); err != nil {
		t.Fatal(err)
	}
	sim.tick(ctx)
	if len(st.DB().KPIRecords) != before {
		t.Error("tick ran with realtime disabled")
	}
}

// Rolling caps hold after any number of ticks.
func TestRollingCaps(t *testing.T) {
	sim, st := newTestSim(t, Config{})
	ctx := context.Background()
	loginAdmin(t, st)

	// push the KPI series just below the cap; the next tick crosses it
	// and must trim to the most recent window
	err := st.Transact(ctx, func(d *types.DB) {
		filler := make([]types.KPIRecord, 0, store.MaxKPIRecords)
		for len(d.KPIRecords)+len(filler) < store.MaxKPIRecords-1 {
			filler = append(filler, types.KPIRecord{ID: store.UID("kpir"), CampaignID: "camp_pe_ventas", At: time.Now()})
		}
		d.KPIRecords = append(d.KPIRecords, filler...)
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		sim.tick(ctx)
	}

	d := st.DB()
	if len(d.KPIRecords) > store.MaxKPIRecords {
		t.Errorf("kpi cap exceeded: %d", len(d.KPIRecords))
	}
	if len(d.KPIRecords) > store.TrimKPIRecordsTo+15 {
		t.Errorf("kpi series not trimmed after crossing cap: %d", len(d.KPIRecords))
	}
	if len(d.Interactions) > store.MaxInteractions {
		t.Errorf("interaction cap exceeded: %d", len(d.Interactions))
	}
	if len(d.Notifications) > store.MaxNotifications {
		t.Errorf("notification cap exceeded: %d", len(d.Notifications))
	}
	if len(d.AuditLogs) > store.MaxAuditLogs {
		t.Errorf("audit cap exceeded: %d", len(d.AuditLogs))
	}
}

func TestInteractionCap(t *testing.T) {
	sim, st := newTestSim(t, Config{})
	ctx := context.Background()
	loginAdmin(t, st)

	err := st.Transact(ctx, func(d *types.DB) {
		for len(d.Interactions) < store.MaxInteractions {
			d.Interactions = append(d.Interactions, types.Interaction{ID: store.UID("cx"), CampaignID: "camp_pe_ventas"})
		}
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		sim.tick(ctx)
	}
	if got := len(st.DB().Interactions); got != store.MaxInteractions {
		t.Errorf("expected interactions held at %d, got %d", store.MaxInteractions, got)
	}
}

// One firing per key per cooldown window.
func TestCooldownSuppression(t *testing.T) {
	sim, _ := newTestSim(t, Config{Cooldown: 80 * time.Millisecond})

	if !sim.allow("sla_camp_pe_ventas") {
		t.Fatal("first firing suppressed")
	}
	if sim.allow("sla_camp_pe_ventas") {
		t.Error("second firing within cooldown not suppressed")
	}
	if !sim.allow("csat_camp_pe_ventas") {
		t.Error("cooldown leaked across keys")
	}

	time.Sleep(120 * time.Millisecond)
	if !sim.allow("sla_camp_pe_ventas") {
		t.Error("firing after cooldown suppressed")
	}
}

func TestNotifyWritesNotificationAndAudit(t *testing.T) {
	sim, st := newTestSim(t, Config{})
	ctx := context.Background()
	loginAdmin(t, st)

	sim.notify(ctx, alerts.Candidate{
		Key: "sla_camp_pe_ventas", Type: types.NotifyWarn,
		Title: "SLA en riesgo", Message: "Ventas Fibra Hogar: SLA 70% (meta 82%)",
		Meta: map[string]string{"campaignId": "camp_pe_ventas"},
	})

	d := st.DB()
	n := d.Notifications[0]
	if n.Title != "SLA en riesgo" || n.Type != types.NotifyWarn || n.Read {
		t.Errorf("unexpected notification: %+v", n)
	}
	if d.AuditLogs[0].Type != "notify.auto" {
		t.Errorf("expected notify.auto audit, got %s", d.AuditLogs[0].Type)
	}
}

func TestKPIRangesAndMeanReversion(t *testing.T) {
	sim, st := newTestSim(t, Config{})
	ctx := context.Background()
	loginAdmin(t, st)

	for i := 0; i < 40; i++ {
		sim.tick(ctx)
	}

	for _, r := range st.DB().KPIRecords {
		if r.SLA < 0.55 || r.SLA > 0.95 {
			t.Fatalf("sla out of range: %f", r.SLA)
		}
		if r.AHT < 200 || r.AHT > 540 {
			t.Fatalf("aht out of range: %d", r.AHT)
		}
		if r.CSAT < 65 || r.CSAT > 95 {
			t.Fatalf("csat out of range: %d", r.CSAT)
		}
		if r.NPS < -45 || r.NPS > 70 {
			t.Fatalf("nps out of range: %d", r.NPS)
		}
		if r.Answered > r.Contacts || r.Abandoned != r.Contacts-r.Answered {
			t.Fatalf("volume bookkeeping broken: %+v", r)
		}
	}

	// campaigns without a tracked conversion/recovery never grow one
	for _, r := range st.DB().KPIRecords {
		if r.CampaignID == "camp_cl_soporte" && (r.Conversion != 0 || r.Recovery != 0) {
			t.Fatalf("untracked metric synthesized: %+v", r)
		}
	}
}

func TestIntegrationHealthBands(t *testing.T) {
	sim, st := newTestSim(t, Config{})
	ctx := context.Background()
	loginAdmin(t, st)

	for i := 0; i < 30; i++ {
		sim.tick(ctx)
	}

	for _, x := range st.DB().Integrations {
		var lo, hi float64
		switch x.Status {
		case types.IntegrationConnected:
			lo, hi = 78, 99
		case types.IntegrationDegraded:
			lo, hi = 55, 85
		case types.IntegrationDisconnected:
			lo, hi = 35, 55
		}
		if x.Health < lo || x.Health > hi {
			t.Errorf("%s health %.1f outside band for %s", x.ID, x.Health, x.Status)
		}
	}
}

func TestSyncFollowsSessionAndSettings(t *testing.T) {
	sim, st := newTestSim(t, Config{TickInterval: time.Hour})
	ctx := context.Background()

	sim.Sync(ctx)
	if sim.Running() {
		t.Error("simulator running without a session")
	}

	loginAdmin(t, st)
	sim.Sync(ctx)
	if !sim.Running() {
		t.Error("simulator not running with session and realtime on")
	}
	sim.Sync(ctx) // idempotent
	if !sim.Running() {
		t.Error("second sync stopped a running simulator")
	}

	realtime := false
	if err := st.UpdateSettings(ctx, store.SettingsPatch{Realtime: &realtime}); err != nil {
		t.Fatal(err)
	}
	sim.Sync(ctx)
	if sim.Running() {
		t.Error("simulator still running with realtime off")
	}
}

func TestStopIsIdempotentAndFinal(t *testing.T) {
	sim, st := newTestSim(t, Config{TickInterval: 10 * time.Millisecond})
	ctx := context.Background()
	loginAdmin(t, st)

	sim.Start(ctx)
	time.Sleep(35 * time.Millisecond)
	sim.Stop()
	sim.Stop() // no-op

	records := len(st.DB().KPIRecords)
	time.Sleep(50 * time.Millisecond)
	if got := len(st.DB().KPIRecords); got != records {
		t.Errorf("tick fired after Stop returned: %d -> %d", records, got)
	}
}
