package main

import (
	"fmt"
	"strings"

	"github.com/Dasparmv/FORTELV2/internal/bus"
	"github.com/Dasparmv/FORTELV2/internal/router"
	"github.com/Dasparmv/FORTELV2/internal/store"
	"github.com/Dasparmv/FORTELV2/internal/types"
	"github.com/rs/zerolog"
)

// consoleChrome renders the shell to the log instead of a screen. The
// headless binary exists to exercise the full store/simulator/router loop;
// a real UI plugs in its own Chrome and Location.
type consoleChrome struct {
	logger zerolog.Logger
}

func newChrome(logger zerolog.Logger) *consoleChrome {
	return &consoleChrome{logger: logger}
}

func (c *consoleChrome) RenderChrome(sess *types.Session) {
	c.logger.Debug().Str("user", sess.Name).Str("role", string(sess.Role)).Msg("chrome rendered")
}

func (c *consoleChrome) ClearChrome() {
	c.logger.Debug().Msg("chrome cleared")
}

func (c *consoleChrome) SetView(title, markup string) {
	c.logger.Info().Str("title", title).Int("bytes", len(markup)).Msg("view set")
}

// textPage is a static placeholder page
type textPage struct {
	title string
}

func (p *textPage) Title() string                    { return p.title }
func (p *textPage) Render(ctx router.Context) string { return "<section>" + p.title + "</section>" }

// dashboardPage summarizes active campaigns against their KPI targets and
// re-renders itself on every document change while mounted.
type dashboardPage struct {
	store  *store.Store
	logger zerolog.Logger
}

func (p *dashboardPage) Title() string { return "Dashboard" }

func (p *dashboardPage) Render(ctx router.Context) string {
	var b strings.Builder
	b.WriteString("<section>")
	p.store.Read(func(d *types.DB) {
		for _, c := range d.Campaigns {
			if c.Status != types.CampaignActive {
				continue
			}
			rec := store.LatestKPI(d, c.ID)
			if rec == nil {
				continue
			}
			fmt.Fprintf(&b, "<article>%s SLA %.0f%% TMO %ds CSAT %d</article>",
				c.Name, rec.SLA*100, rec.AHT, rec.CSAT)
		}
	})
	b.WriteString("</section>")
	return b.String()
}

func (p *dashboardPage) Mount(ctx router.Context) func() {
	return p.store.On(bus.DBChanged, func(any) {
		p.logger.Debug().Str("path", ctx.Path).Msg("dashboard refresh")
	})
}

func pages(st *store.Store, logger zerolog.Logger) map[string]router.Page {
	return map[string]router.Page{
		"/login":        &textPage{title: "Acceso"},
		"/dashboard":    &dashboardPage{store: st, logger: logger},
		"/campaigns":    &textPage{title: "Campañas"},
		"/architecture": &textPage{title: "Arquitectura"},
		"/resources":    &textPage{title: "Recursos"},
		"/quality":      &textPage{title: "Calidad"},
		"/incidents":    &textPage{title: "Incidencias"},
		"/integrations": &textPage{title: "Integraciones"},
		"/reports":      &textPage{title: "Informes"},
		"/data-hub":     &textPage{title: "Data Hub"},
		"/security":     &textPage{title: "Seguridad"},
	}
}
