// Package store owns the operational document, the session and the
// settings, and is the only component allowed to mutate them. Every change
// goes through Transact: mutate in place, optionally audit, persist the
// whole document, then notify subscribers. There is no rollback: a mutator
// that panics leaves its partial in-memory edits behind, so mutators are
// treated as must-not-fail.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dasparmv/FORTELV2/internal/bus"
	"github.com/Dasparmv/FORTELV2/internal/kv"
	"github.com/Dasparmv/FORTELV2/internal/seed"
	"github.com/Dasparmv/FORTELV2/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Persisted blob names
const (
	dbKey       = "sigcr_demo_db_v1"
	sessionKey  = "sigcr_demo_session_v1"
	settingsKey = "sigcr_demo_settings_v1"
)

// Rolling caps for append-only collections
const (
	MaxAuditLogs     = 400
	MaxNotifications = 80
	MaxInteractions  = 180
	MaxKPIRecords    = 5000
	TrimKPIRecordsTo = 4200
)

var (
	// ErrUserNotFound is returned by Login for an unknown email
	ErrUserNotFound = errors.New("usuario no encontrado")
	// ErrBadPassword is returned by Login for a wrong password
	ErrBadPassword = errors.New("contraseña incorrecta")
	// ErrMissingField is returned by entity mutators when a required
	// field is empty
	ErrMissingField = errors.New("campo requerido")
)

// Store is the central state owner. All mutation is serialized by an
// internal mutex; change events are delivered synchronously on the mutating
// goroutine after the document has been persisted.
type Store struct {
	kvs    kv.Store
	events *bus.Bus
	logger zerolog.Logger

	mu       sync.Mutex
	db       *types.DB
	settings types.Settings

	now func() time.Time
}

// New creates a store backed by kvs. Call Init before anything else.
func New(kvs kv.Store, logger zerolog.Logger) *Store {
	return &Store{
		kvs:    kvs,
		events: bus.New(),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Init loads the persisted document or seeds a fresh one. A stored document
// whose meta version does not match the expected schema version is
// discarded and reseeded; that is the whole migration policy.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := s.loadDB(ctx)
	if db == nil || db.Meta.Version != types.SchemaVersion {
		if db != nil {
			s.logger.Info().
				Int("stored_version", db.Meta.Version).
				Int("expected_version", types.SchemaVersion).
				Msg("schema version mismatch, reseeding")
		}
		db = seed.New(s.now())
		s.db = db
		if err := s.persistDB(ctx); err != nil {
			return err
		}
	} else {
		s.db = db
	}

	s.settings = s.loadSettings(ctx)
	return nil
}

// loadDB returns the stored document, or nil when absent or unparsable
// (corrupt persisted state degrades to absent and triggers a reseed).
func (s *Store) loadDB(ctx context.Context) *types.DB {
	blob, err := s.kvs.Get(ctx, dbKey)
	if err != nil || blob == nil {
		if err != nil {
			s.logger.Warn().Err(err).Msg("db blob unreadable, treating as absent")
		}
		return nil
	}
	var db types.DB
	if err := json.Unmarshal(blob, &db); err != nil {
		s.logger.Warn().Err(err).Msg("db blob unparsable, treating as absent")
		return nil
	}
	return &db
}

func (s *Store) loadSettings(ctx context.Context) types.Settings {
	blob, err := s.kvs.Get(ctx, settingsKey)
	if err != nil || blob == nil {
		return types.DefaultSettings()
	}
	var settings types.Settings
	if err := json.Unmarshal(blob, &settings); err != nil {
		return types.DefaultSettings()
	}
	return settings
}

// persistDB writes the whole document. Callers hold the mutex.
func (s *Store) persistDB(ctx context.Context) error {
	blob, err := json.Marshal(s.db)
	if err != nil {
		return fmt.Errorf("marshal db: %w", err)
	}
	if err := s.kvs.Put(ctx, dbKey, blob); err != nil {
		return fmt.Errorf("persist db: %w", err)
	}
	return nil
}

// DB returns the live document. It is safe to call from change handlers
// (delivery happens on the mutating goroutine after commit) and from the
// goroutine driving the UI between operations; any other goroutine should
// use Read.
func (s *Store) DB() *types.DB {
	return s.db
}

// Read runs fn with the live document while holding the store lock
func (s *Store) Read(fn func(d *types.DB)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.db)
}

// Settings returns the current settings value
func (s *Store) Settings() types.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// On subscribes handler to a change event and returns an unsubscribe
// function. Delivery is synchronous and in subscription order.
func (s *Store) On(event bus.Event, handler bus.Handler) func() {
	return s.events.On(event, handler)
}

// AuditEntry describes the audit record appended alongside a transaction
type AuditEntry struct {
	Type     string
	Severity string
	Message  string
	Actor    string // defaults to the session email, or "sistema"
	Meta     map[string]string
}

// TxOptions carries optional per-transaction behavior
type TxOptions struct {
	Audit *AuditEntry
}

// Transact is the sole sanctioned way to change the document: it runs
// mutator with the live DB, appends the optional audit entry, persists the
// whole document and then emits db:changed. Subscribers always observe the
// fully-applied state, never a partial one. Re-entrant Transact calls from
// a db:changed handler are not guarded against; handlers must not mutate
// unconditionally.
func (s *Store) Transact(ctx context.Context, mutator func(d *types.DB), opts *TxOptions) error {
	s.mu.Lock()
	mutator(s.db)
	if opts != nil && opts.Audit != nil {
		s.addAuditLocked(ctx, *opts.Audit)
	}
	db := s.db
	err := s.persistDB(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.events.Emit(bus.DBChanged, db)
	return nil
}

// addAuditLocked prepends an audit record. Callers hold the mutex.
func (s *Store) addAuditLocked(ctx context.Context, entry AuditEntry) {
	actor := entry.Actor
	if actor == "" {
		if sess := s.Session(ctx); sess != nil {
			actor = sess.Email
		}
	}
	if actor == "" {
		actor = "sistema"
	}
	severity := entry.Severity
	if severity == "" {
		severity = "info"
	}
	typ := entry.Type
	if typ == "" {
		typ = "event"
	}
	meta := entry.Meta
	if meta == nil {
		meta = map[string]string{}
	}

	s.db.AuditLogs = append([]types.AuditLog{{
		ID:       UID("log"),
		At:       s.now(),
		Actor:    actor,
		Severity: severity,
		Type:     typ,
		Message:  entry.Message,
		Meta:     meta,
	}}, s.db.AuditLogs...)
	if len(s.db.AuditLogs) > MaxAuditLogs {
		s.db.AuditLogs = s.db.AuditLogs[:MaxAuditLogs]
	}
}

// SettingsPatch shallow-merges into the stored settings; nil fields are
// left untouched.
type SettingsPatch struct {
	Theme          *string
	Realtime       *bool
	CompactSidebar *bool
}

// UpdateSettings merges patch, persists and emits settings:changed
func (s *Store) UpdateSettings(ctx context.Context, patch SettingsPatch) error {
	s.mu.Lock()
	if patch.Theme != nil {
		s.settings.Theme = *patch.Theme
	}
	if patch.Realtime != nil {
		s.settings.Realtime = *patch.Realtime
	}
	if patch.CompactSidebar != nil {
		s.settings.CompactSidebar = *patch.CompactSidebar
	}
	settings := s.settings
	err := s.persistSettingsLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.events.Emit(bus.SettingsChanged, settings)
	return nil
}

func (s *Store) persistSettingsLocked(ctx context.Context) error {
	blob, err := json.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.kvs.Put(ctx, settingsKey, blob); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}

// ResetAll erases everything persisted, regenerates the seed document,
// restores default settings, clears the session and emits all three change
// events in sequence.
func (s *Store) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	for _, key := range []string{dbKey, sessionKey, settingsKey} {
		if err := s.kvs.Delete(ctx, key); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.db = seed.New(s.now())
	s.settings = types.DefaultSettings()
	db, settings := s.db, s.settings
	err := s.persistDB(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.events.Emit(bus.DBChanged, db)
	s.events.Emit(bus.SessionChanged, (*types.Session)(nil))
	s.events.Emit(bus.SettingsChanged, settings)
	return nil
}

// ResetDemo is an alias for ResetAll
func (s *Store) ResetDemo(ctx context.Context) error { return s.ResetAll(ctx) }

// ClearLocalData is an alias for ResetAll
func (s *Store) ClearLocalData(ctx context.Context) error { return s.ResetAll(ctx) }

// PushNotification prepends n to the document's notifications, enforcing
// the rolling cap. Meant for use inside Transact mutators.
func PushNotification(d *types.DB, n types.Notification) {
	if n.ID == "" {
		n.ID = UID("ntf")
	}
	if n.Type == "" {
		n.Type = types.NotifyInfo
	}
	if n.Title == "" {
		n.Title = "Notificación"
	}
	if n.Meta == nil {
		n.Meta = map[string]string{}
	}
	d.Notifications = append([]types.Notification{n}, d.Notifications...)
	if len(d.Notifications) > MaxNotifications {
		d.Notifications = d.Notifications[:MaxNotifications]
	}
}

// AddNotification appends a notification through a transaction
func (s *Store) AddNotification(ctx context.Context, n types.Notification) error {
	if n.At.IsZero() {
		n.At = s.now()
	}
	return s.Transact(ctx, func(d *types.DB) {
		PushNotification(d, n)
	}, nil)
}

// MarkNotificationsRead flags every notification as read
func (s *Store) MarkNotificationsRead(ctx context.Context) error {
	return s.Transact(ctx, func(d *types.DB) {
		for i := range d.Notifications {
			d.Notifications[i].Read = true
		}
	}, &TxOptions{Audit: &AuditEntry{
		Type: "notify.readAll", Message: "Notificaciones marcadas como leídas",
	}})
}

// LatestKPI returns the most recent KPI record for a campaign by scanning
// from the end of the time-ordered list, or nil when the campaign has none.
// This is O(n) per call and the document's only query pattern.
func LatestKPI(d *types.DB, campaignID string) *types.KPIRecord {
	for i := len(d.KPIRecords) - 1; i >= 0; i-- {
		if d.KPIRecords[i].CampaignID == campaignID {
			return &d.KPIRecords[i]
		}
	}
	return nil
}

// UID returns a prefixed unique id, e.g. "camp_8f14e45f-..."
func UID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// NowISO returns the current UTC time formatted as RFC3339
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
