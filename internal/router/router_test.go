package router

import (
	"bytes"
	"context"
	"testing"

	"github.com/Dasparmv/FORTELV2/internal/kv"
	"github.com/Dasparmv/FORTELV2/internal/store"
	"github.com/Dasparmv/FORTELV2/internal/types"
	"github.com/rs/zerolog"
)

type fakePage struct {
	title string
	log   *[]string
	name  string
}

func (p *fakePage) Title() string             { return p.title }
func (p *fakePage) Render(ctx Context) string { return "<div>" + p.title + "</div>" }

func (p *fakePage) Mount(ctx Context) func() {
	*p.log = append(*p.log, "mount:"+p.name)
	return func() { *p.log = append(*p.log, "cleanup:"+p.name) }
}

type fakeChrome struct {
	log       *[]string
	lastTitle string
}

func (c *fakeChrome) RenderChrome(sess *types.Session) { *c.log = append(*c.log, "chrome") }
func (c *fakeChrome) ClearChrome()                     { *c.log = append(*c.log, "clear") }
func (c *fakeChrome) SetView(title, markup string) {
	c.lastTitle = title
	*c.log = append(*c.log, "view:"+title)
}

func newTestRouter(t *testing.T) (*Router, *store.Store, *MemoryLocation, *[]string) {
	t.Helper()
	logger := zerolog.New(&bytes.Buffer{})
	s := store.New(kv.NewMemory(), logger)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}

	log := &[]string{}
	pages := map[string]Page{
		"/login":     &fakePage{title: "Acceso", log: log, name: "login"},
		"/dashboard": &fakePage{title: "Dashboard", log: log, name: "dashboard"},
		"/campaigns": &fakePage{title: "Campañas", log: log, name: "campaigns"},
		"/security":  &fakePage{title: "Seguridad", log: log, name: "security"},
		"/resources": &fakePage{title: "Recursos", log: log, name: "resources"},
	}
	loc := NewMemoryLocation("")
	r := New(s, loc, &fakeChrome{log: log}, DefaultTable(pages), logger)
	return r, s, loc, log
}

func TestParseHash(t *testing.T) {
	cases := []struct {
		hash  string
		path  string
		query map[string]string
	}{
		{"", "/dashboard", map[string]string{}},
		{"#", "/dashboard", map[string]string{}},
		{"#/login", "/login", map[string]string{}},
		{"#/campaigns?id=camp_mx_ventas", "/campaigns", map[string]string{"id": "camp_mx_ventas"}},
		{"#/reports?from=2025-01-01&to=2025-02-01", "/reports", map[string]string{"from": "2025-01-01", "to": "2025-02-01"}},
		{"#/reports?q=ventas%20mx&flag", "/reports", map[string]string{"q": "ventas mx", "flag": ""}},
		{"#/reports?q=a+b", "/reports", map[string]string{"q": "a+b"}},
		{"#garbage", "/dashboard", map[string]string{}},
		{"/dashboard", "/dashboard", map[string]string{}},
	}

	for _, c := range cases {
		path, query := ParseHash(c.hash)
		if path != c.path {
			t.Errorf("ParseHash(%q) path = %q, want %q", c.hash, path, c.path)
		}
		if len(query) != len(c.query) {
			t.Errorf("ParseHash(%q) query = %v, want %v", c.hash, query, c.query)
			continue
		}
		for k, v := range c.query {
			if query[k] != v {
				t.Errorf("ParseHash(%q) query[%q] = %q, want %q", c.hash, k, query[k], v)
			}
		}
	}
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	r, _, loc, log := newTestRouter(t)
	loc.SetHash("#/campaigns")

	r.Start(context.Background())
	defer r.Stop()

	if loc.Hash() != "#/login" {
		t.Fatalf("hash = %q, want #/login", loc.Hash())
	}
	if len(*log) == 0 || (*log)[len(*log)-1] != "mount:login" {
		t.Fatalf("trace = %v, want final mount:login", *log)
	}
}

func TestAuthenticatedLoginRedirectsToDashboard(t *testing.T) {
	r, s, loc, _ := newTestRouter(t)
	ctx := context.Background()
	if _, err := s.Login(ctx, "admin@demo.com", "Fortel2025!"); err != nil {
		t.Fatalf("login: %v", err)
	}

	loc.SetHash("#/login")
	r.Start(ctx)
	defer r.Stop()

	if loc.Hash() != "#/dashboard" {
		t.Fatalf("hash = %q, want #/dashboard", loc.Hash())
	}
}

func TestRoleGuardFallsBackToDashboard(t *testing.T) {
	r, s, loc, log := newTestRouter(t)
	ctx := context.Background()
	if _, err := s.Login(ctx, "supervisor@demo.com", "Fortel2025!"); err != nil {
		t.Fatalf("login: %v", err)
	}

	r.Start(ctx)
	defer r.Stop()

	loc.SetHash("#/security")

	if loc.Hash() != "#/dashboard" {
		t.Fatalf("hash = %q, want #/dashboard", loc.Hash())
	}
	if (*log)[len(*log)-1] == "mount:security" {
		t.Fatal("security page mounted for a Supervisor session")
	}
	found := false
	for _, entry := range *log {
		if entry == "mount:dashboard" {
			found = true
		}
	}
	if !found {
		t.Fatalf("trace = %v, want mount:dashboard", *log)
	}
}

func TestRoleGuardAllowsPermittedRole(t *testing.T) {
	r, s, loc, log := newTestRouter(t)
	ctx := context.Background()
	if _, err := s.Login(ctx, "supervisor@demo.com", "Fortel2025!"); err != nil {
		t.Fatalf("login: %v", err)
	}

	r.Start(ctx)
	defer r.Stop()

	loc.SetHash("#/resources")

	if loc.Hash() != "#/resources" {
		t.Fatalf("hash = %q, want #/resources", loc.Hash())
	}
	mounted := false
	for _, entry := range *log {
		if entry == "mount:resources" {
			mounted = true
		}
	}
	if !mounted {
		t.Fatalf("trace = %v, want mount:resources", *log)
	}
}

func TestCleanupRunsBeforeNextMount(t *testing.T) {
	r, s, loc, log := newTestRouter(t)
	ctx := context.Background()
	if _, err := s.Login(ctx, "admin@demo.com", "Fortel2025!"); err != nil {
		t.Fatalf("login: %v", err)
	}

	loc.SetHash("#/dashboard")
	r.Start(ctx)

	*log = (*log)[:0]
	loc.SetHash("#/campaigns")

	var seq []string
	for _, entry := range *log {
		if entry == "cleanup:dashboard" || entry == "mount:campaigns" {
			seq = append(seq, entry)
		}
	}
	if len(seq) != 2 || seq[0] != "cleanup:dashboard" || seq[1] != "mount:campaigns" {
		t.Fatalf("trace = %v, want cleanup:dashboard before mount:campaigns", *log)
	}

	*log = (*log)[:0]
	r.Stop()
	if len(*log) != 1 || (*log)[0] != "cleanup:campaigns" {
		t.Fatalf("trace after Stop = %v, want [cleanup:campaigns]", *log)
	}

	loc.SetHash("#/dashboard")
	for _, entry := range *log {
		if entry == "mount:dashboard" {
			t.Fatal("router still routing after Stop")
		}
	}
}

func TestUnknownPathFallsBackToDashboard(t *testing.T) {
	r, s, loc, log := newTestRouter(t)
	ctx := context.Background()
	if _, err := s.Login(ctx, "admin@demo.com", "Fortel2025!"); err != nil {
		t.Fatalf("login: %v", err)
	}

	loc.SetHash("#/nope")
	r.Start(ctx)
	defer r.Stop()

	mounted := false
	for _, entry := range *log {
		if entry == "mount:dashboard" {
			mounted = true
		}
	}
	if !mounted {
		t.Fatalf("trace = %v, want mount:dashboard", *log)
	}
}

func TestChromeViewTitleSet(t *testing.T) {
	r, s, loc, _ := newTestRouter(t)
	ctx := context.Background()
	if _, err := s.Login(ctx, "admin@demo.com", "Fortel2025!"); err != nil {
		t.Fatalf("login: %v", err)
	}

	loc.SetHash("#/campaigns")
	r.Start(ctx)
	defer r.Stop()

	chrome := r.chrome.(*fakeChrome)
	if chrome.lastTitle != "Campañas" {
		t.Fatalf("view title = %q, want Campañas", chrome.lastTitle)
	}
}

func TestMemoryLocationSameHashNoNotify(t *testing.T) {
	loc := NewMemoryLocation("#/dashboard")
	calls := 0
	unsub := loc.Listen(func() { calls++ })
	defer unsub()

	loc.SetHash("#/dashboard")
	if calls != 0 {
		t.Fatalf("calls = %d, want 0 for unchanged hash", calls)
	}
	loc.SetHash("#/login")
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	unsub()
	loc.SetHash("#/dashboard")
	if calls != 1 {
		t.Fatalf("calls = %d after unsubscribe, want 1", calls)
	}
}
