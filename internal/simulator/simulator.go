// Package simulator advances the demo document while realtime mode is on:
// it extends KPI series for active campaigns, perturbs integration and
// pipeline health, appends synthetic interactions, occasionally resolves
// incidents, and raises cooldown-gated alert notifications. It is
// best-effort and decorative: a failed tick is logged and abandoned, and
// the next tick proceeds from whatever state the document is in.
package simulator

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Dasparmv/FORTELV2/internal/alerts"
	"github.com/Dasparmv/FORTELV2/internal/seed"
	"github.com/Dasparmv/FORTELV2/internal/store"
	"github.com/Dasparmv/FORTELV2/internal/types"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Config holds simulator tuning
type Config struct {
	TickInterval time.Duration // default 5s
	Cooldown     time.Duration // minimum gap per alert key, default 6m
	Seed         int64         // PRNG seed; 0 uses the clock
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = 5 * time.Second
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 6 * time.Minute
	}
	return c
}

// Simulator runs the recurring demo tick. Alert cooldown state lives here,
// in process memory only; it is transient rate limiting, not durable
// document state, which is why alert emission happens outside the bulk
// transaction.
type Simulator struct {
	store  *store.Store
	cfg    Config
	logger zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	// limiters and rng are touched only by the tick goroutine
	limiters map[string]*rate.Limiter
	rng      *rand.Rand
}

// New creates a stopped simulator
func New(st *store.Store, cfg Config, logger zerolog.Logger) *Simulator {
	cfg = cfg.withDefaults()
	src := cfg.Seed
	if src == 0 {
		src = time.Now().UnixNano()
	}
	return &Simulator{
		store:    st,
		cfg:      cfg,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
		rng:      rand.New(rand.NewSource(src)),
	}
}

// Sync starts or stops the tick loop to match the current session and
// settings: running if and only if someone is logged in and realtime mode
// is enabled. Call it after any session or settings change.
func (s *Simulator) Sync(ctx context.Context) {
	sess := s.store.Session(ctx)
	settings := s.store.Settings()
	if sess == nil || !settings.Realtime {
		s.Stop()
		return
	}
	s.Start(ctx)
}

// Start launches the tick loop. Starting a running simulator is a no-op.
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx, s.done)

	s.logger.Info().Dur("interval", s.cfg.TickInterval).Msg("simulator started")
}

// Stop halts the tick loop and waits for the in-flight tick, if any, to
// finish: no tick fires after Stop returns. Stopping a stopped simulator
// is a no-op.
func (s *Simulator) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}

	cancel()
	<-done
	s.logger.Info().Msg("simulator stopped")
}

// Running reports whether the tick loop is active
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Simulator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one simulation step. The interval can fire once after
// disablement due to scheduling lag, so enablement is re-checked at the
// top. A panic abandons the tick; the next one proceeds independently.
func (s *Simulator) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("tick abandoned")
		}
	}()

	sess := s.store.Session(ctx)
	settings := s.store.Settings()
	if sess == nil || !settings.Realtime {
		return
	}

	var candidates []alerts.Candidate

	err := s.store.Transact(ctx, func(d *types.DB) {
		now := time.Now().UTC()

		var active []types.Campaign
		for _, c := range d.Campaigns {
			if c.Status == types.CampaignActive {
				active = append(active, c)
			}
		}

		for _, c := range active {
			last := store.LatestKPI(d, c.ID)
			rec := s.nextKPI(c, last, now)
			d.KPIRecords = append(d.KPIRecords, rec)
			if len(d.KPIRecords) > store.MaxKPIRecords {
				d.KPIRecords = d.KPIRecords[len(d.KPIRecords)-store.TrimKPIRecordsTo:]
			}
			candidates = append(candidates, alerts.Evaluate(c, rec)...)
		}

		s.driftIntegrations(d)
		s.redrawPipelines(d, now)
		s.appendInteractions(d, active, now)
		s.resolveIncidents(d, now)
	}, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("tick transaction failed")
		return
	}

	for _, cand := range candidates {
		if !s.allow(cand.Key) {
			continue
		}
		s.notify(ctx, cand)
	}
}

// allow applies per-key cooldown suppression: at most one firing per key
// per cooldown window.
func (s *Simulator) allow(key string) bool {
	lim, ok := s.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(s.cfg.Cooldown), 1)
		s.limiters[key] = lim
	}
	return lim.Allow()
}

func (s *Simulator) notify(ctx context.Context, cand alerts.Candidate) {
	err := s.store.Transact(ctx, func(d *types.DB) {
		store.PushNotification(d, types.Notification{
			At:      time.Now().UTC(),
			Type:    cand.Type,
			Title:   cand.Title,
			Message: cand.Message,
			Meta:    cand.Meta,
		})
	}, &store.TxOptions{Audit: &store.AuditEntry{
		Type: "notify.auto", Message: "Alerta: " + cand.Title, Meta: cand.Meta,
	}})
	if err != nil {
		s.logger.Warn().Err(err).Str("alert", cand.Key).Msg("alert notification failed")
		return
	}
	s.logger.Debug().Str("alert", cand.Key).Msg("alert raised")
}

// nextKPI synthesizes the follow-up record: volumes jitter multiplicatively
// off the previous record, quality metrics revert toward the campaign
// targets with bounded noise.
func (s *Simulator) nextKPI(c types.Campaign, last *types.KPIRecord, now time.Time) types.KPIRecord {
	baseContacts := 120.0
	if last != nil {
		baseContacts = float64(last.Contacts)
	}
	baseAnswered := math.Round(baseContacts * 0.9)
	if last != nil {
		baseAnswered = float64(last.Answered)
	}

	contacts := int(math.Max(0, math.Round(baseContacts*(0.88+s.rng.Float64()*0.24))))
	answered := int(math.Max(0, math.Round(baseAnswered*(0.90+s.rng.Float64()*0.22))))
	if answered > contacts {
		answered = contacts
	}

	slaTarget := c.Targets.SLA
	if slaTarget == 0 {
		slaTarget = 0.82
	}
	csatTarget := c.Targets.CSAT
	if csatTarget == 0 {
		csatTarget = 86
	}
	ahtTarget := c.Targets.AHT
	if ahtTarget == 0 {
		ahtTarget = 330
	}

	conversion, recovery := 0.0, 0.0
	if c.Targets.Conversion != 0 {
		conversion = clamp(c.Targets.Conversion+(s.rng.Float64()-0.5)*0.08, 0.04, 0.30)
	}
	if c.Targets.Recovery != 0 {
		recovery = clamp(c.Targets.Recovery+(s.rng.Float64()-0.5)*0.10, 0.06, 0.42)
	}

	return types.KPIRecord{
		ID:         store.UID("kpir"),
		CampaignID: c.ID,
		At:         now,
		Contacts:   contacts,
		Answered:   answered,
		Abandoned:  contacts - answered,
		SLA:        clamp(slaTarget+(s.rng.Float64()-0.5)*0.10, 0.55, 0.95),
		AHT:        int(math.Round(clamp(ahtTarget+(s.rng.Float64()-0.5)*90, 200, 540))),
		CSAT:       int(math.Round(clamp(csatTarget+(s.rng.Float64()-0.5)*10, 65, 95))),
		NPS:        int(math.Round(clamp(18+(s.rng.Float64()-0.5)*44, -45, 70))),
		Conversion: conversion,
		Recovery:   recovery,
	}
}

// driftIntegrations applies small status transitions and a health random
// walk clamped to a status-appropriate band.
func (s *Simulator) driftIntegrations(d *types.DB) {
	for i := range d.Integrations {
		x := &d.Integrations[i]
		roll := s.rng.Float64()
		switch {
		case x.Status == types.IntegrationConnected && roll < 0.03:
			x.Status = types.IntegrationDegraded
		case x.Status == types.IntegrationDegraded && roll < 0.10:
			x.Status = types.IntegrationConnected
		case x.Status == types.IntegrationDisconnected && roll < 0.06:
			x.Status = types.IntegrationConnected
		}

		x.Health = clamp(x.Health+(s.rng.Float64()-0.5)*6, 35, 99)
		switch x.Status {
		case types.IntegrationDisconnected:
			x.Health = clamp(x.Health, 35, 55)
		case types.IntegrationDegraded:
			x.Health = clamp(x.Health, 55, 85)
		case types.IntegrationConnected:
			x.Health = clamp(x.Health, 78, 99)
		}
	}
}

// redrawPipelines draws each run outcome from a fixed categorical
// distribution (~78% OK, ~14% delayed, ~8% error).
func (s *Simulator) redrawPipelines(d *types.DB, now time.Time) {
	for i := range d.Pipelines {
		p := &d.Pipelines[i]
		switch roll := s.rng.Float64(); {
		case roll < 0.78:
			p.Status = types.PipelineOK
		case roll < 0.92:
			p.Status = types.PipelineDelayed
		default:
			p.Status = types.PipelineError
		}
		p.LastRunAt = now
		p.Rows = 800 + int(s.rng.Float64()*12000)
		p.DurationSec = 30 + int(s.rng.Float64()*160)
	}
}

func (s *Simulator) appendInteractions(d *types.DB, active []types.Campaign, now time.Time) {
	if len(active) == 0 {
		return
	}

	addCount := 3
	if s.rng.Float64() < 0.55 {
		addCount = 1
	} else if s.rng.Float64() < 0.85 {
		addCount = 2
	}

	for i := 0; i < addCount; i++ {
		c := active[s.rng.Intn(len(active))]

		status := "En curso"
		if s.rng.Float64() < 0.66 {
			status = "En cola"
		}
		priority := types.PriorityLow
		if s.rng.Float64() < 0.10 {
			priority = types.PriorityHigh
		} else if s.rng.Float64() < 0.40 {
			priority = types.PriorityMedium
		}

		d.Interactions = append([]types.Interaction{{
			ID:         store.UID("cx"),
			CampaignID: c.ID,
			Channel:    seed.Channels[s.rng.Intn(len(seed.Channels))],
			Customer:   customerName(s.rng),
			Status:     status,
			Priority:   priority,
			CreatedAt:  now,
			UpdatedAt:  now,
			Summary:    "Interacción generada en modo demo.",
		}}, d.Interactions...)
	}
	if len(d.Interactions) > store.MaxInteractions {
		d.Interactions = d.Interactions[:store.MaxInteractions]
	}
}

// resolveIncidents gives every in-progress incident a small chance to
// auto-resolve each tick.
func (s *Simulator) resolveIncidents(d *types.DB, now time.Time) {
	for i := range d.Incidents {
		if d.Incidents[i].Status == types.IncidentInProgress && s.rng.Float64() < 0.08 {
			d.Incidents[i].Status = types.IncidentResolved
			d.Incidents[i].UpdatedAt = now
		}
	}
}

func customerName(rng *rand.Rand) string {
	name := seed.CustomerNames[rng.Intn(len(seed.CustomerNames))]
	return name + " " + string(rune('A'+rng.Intn(26))) + "."
}

func clamp(n, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, n))
}
