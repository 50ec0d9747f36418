// Package alerts evaluates KPI threshold rules for active campaigns.
package alerts

import (
	"fmt"
	"math"

	"github.com/Dasparmv/FORTELV2/internal/types"
)

// Thresholds relative to the campaign targets. A rule only applies when
// the campaign tracks the metric (nonzero target).
const (
	SLADropThreshold  = 0.06 // percentage points below target
	CSATDropThreshold = 4.0  // points below target
	AHTOverThreshold  = 55.0 // seconds above target
)

// Candidate is a tripped alert rule awaiting cooldown filtering. The key
// identifies the rule+campaign pair for de-duplication.
type Candidate struct {
	Key     string
	Type    types.NotificationType
	Title   string
	Message string
	Meta    map[string]string
}

// Evaluate checks the three threshold rules for a campaign against its
// freshest KPI record and returns one candidate per tripped rule.
func Evaluate(c types.Campaign, rec types.KPIRecord) []Candidate {
	t := c.Targets
	var out []Candidate

	if t.SLA != 0 && rec.SLA < t.SLA-SLADropThreshold {
		out = append(out, Candidate{
			Key:  "sla_" + c.ID,
			Type: types.NotifyWarn, Title: "SLA en riesgo",
			Message: fmt.Sprintf("%s: SLA %d%% (meta %d%%)", c.Name, pct(rec.SLA), pct(t.SLA)),
			Meta:    map[string]string{"campaignId": c.ID},
		})
	}
	if t.CSAT != 0 && float64(rec.CSAT) < t.CSAT-CSATDropThreshold {
		out = append(out, Candidate{
			Key:  "csat_" + c.ID,
			Type: types.NotifyWarn, Title: "CSAT bajo",
			Message: fmt.Sprintf("%s: CSAT %d (meta %d)", c.Name, rec.CSAT, int(math.Round(t.CSAT))),
			Meta:    map[string]string{"campaignId": c.ID},
		})
	}
	if t.AHT != 0 && float64(rec.AHT) > t.AHT+AHTOverThreshold {
		out = append(out, Candidate{
			Key:  "aht_" + c.ID,
			Type: types.NotifyWarn, Title: "TMO elevado",
			Message: fmt.Sprintf("%s: TMO %s (meta %s)", c.Name, formatTMO(rec.AHT), formatTMO(int(math.Round(t.AHT)))),
			Meta:    map[string]string{"campaignId": c.ID},
		})
	}
	return out
}

// formatTMO renders seconds as m:ss
func formatTMO(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func pct(fraction float64) int {
	return int(math.Round(fraction * 100))
}
