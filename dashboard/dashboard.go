// ABOUTME: In-memory aggregation over cached collections for reporting views
// ABOUTME: Joins happen client-side; nothing here writes to the backing store
package dashboard

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"sheetcrm/config"
	"sheetcrm/models"
	"sheetcrm/store"
)

// Readers are the collection views the dashboard consumes.
type Readers struct {
	Opportunities *store.OpportunityReader
	Contacts      *store.ContactReader
	Companies     *store.CompanyReader
	Interactions  *store.InteractionReader
	EventLogs     *store.EventLogReader
	Weekly        *store.WeeklyReader
	System        *store.SystemReader
}

// Service builds reporting views by fetching independent collections
// concurrently and joining them in memory.
type Service struct {
	r   Readers
	log *zap.Logger
}

// New creates the dashboard service.
func New(r Readers, log *zap.Logger) *Service {
	return &Service{r: r, log: log.Named("dashboard")}
}

// Stats are the headline counters of the overview page.
type Stats struct {
	TotalOpportunities  int    `json:"totalOpportunities"`
	ActiveOpportunities int    `json:"activeOpportunities"`
	PendingLeads        int    `json:"pendingLeads"`
	TotalCompanies      int    `json:"totalCompanies"`
	TotalValue          string `json:"totalValue"`
}

// StageColumn is one kanban column: a stage with its opportunities.
type StageColumn struct {
	Stage         string               `json:"stage"`
	StageName     string               `json:"stageName"`
	Opportunities []models.Opportunity `json:"opportunities"`
}

// Overview is the aggregated payload of the main dashboard view.
type Overview struct {
	Stats          Stats                `json:"stats"`
	Kanban         []StageColumn        `json:"kanban"`
	FollowUps      []models.Opportunity `json:"followUps"`
	RecentActivity []models.Interaction `json:"recentActivity"`
	ThisWeek       []models.WeeklyEntry `json:"thisWeek"`
}

const recentActivityLimit = 10

// Overview fetches the overview's source collections concurrently and
// assembles the aggregated view. Each fetch is independent; the first error
// wins.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error

		opps    []models.Opportunity
		leads   []models.Lead
		comps   []models.Company
		recent  []models.Interaction
		weekly  map[int][]models.WeeklyEntry
		sysConf models.SystemConfig
	)

	fetch := func(f func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	fetch(func() (err error) { opps, err = s.r.Opportunities.All(ctx); return })
	fetch(func() (err error) { leads, err = s.r.Contacts.Leads(ctx, 0); return })
	fetch(func() (err error) { comps, err = s.r.Companies.All(ctx); return })
	fetch(func() (err error) { recent, err = s.r.Interactions.Recent(ctx, recentActivityLimit); return })
	fetch(func() (err error) { weekly, err = s.r.Weekly.ByWeek(ctx, store.WeekID(time.Now())); return })
	fetch(func() (err error) { sysConf, err = s.r.System.Config(ctx); return })
	wg.Wait()

	if len(errs) > 0 {
		return nil, errs[0]
	}

	var thisWeek []models.WeeklyEntry
	for day := 1; day <= 5; day++ {
		thisWeek = append(thisWeek, weekly[day]...)
	}

	return &Overview{
		Stats:          buildStats(opps, leads, comps),
		Kanban:         buildKanban(opps, sysConf),
		FollowUps:      FollowUps(opps, time.Now()),
		RecentActivity: recent,
		ThisWeek:       thisWeek,
	}, nil
}

func buildStats(opps []models.Opportunity, leads []models.Lead, comps []models.Company) Stats {
	st := Stats{
		TotalOpportunities: len(opps),
		PendingLeads:       len(leads),
		TotalCompanies:     len(comps),
	}
	var total float64
	for _, o := range opps {
		if o.CurrentStatus == models.OpportunityStatusActive {
			st.ActiveOpportunities++
		}
		if v, err := strconv.ParseFloat(cleanNumber(o.OpportunityValue), 64); err == nil {
			total += v
		}
	}
	st.TotalValue = strconv.FormatFloat(total, 'f', -1, 64)
	return st
}

// cleanNumber strips the thousand separators and currency chrome found in
// hand-entered value cells.
func cleanNumber(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
}

// buildKanban groups active opportunities into the configured stage columns,
// in the display order of the stage setting group. Opportunities in a stage
// missing from config get a trailing column with the raw stage value.
func buildKanban(opps []models.Opportunity, cfg models.SystemConfig) []StageColumn {
	byStage := map[string][]models.Opportunity{}
	for _, o := range opps {
		if o.CurrentStatus != models.OpportunityStatusActive {
			continue
		}
		byStage[o.CurrentStage] = append(byStage[o.CurrentStage], o)
	}

	var columns []StageColumn
	seen := map[string]bool{}
	for _, opt := range cfg[models.StageGroup] {
		columns = append(columns, StageColumn{
			Stage:         opt.Value,
			StageName:     cfg.StageName(models.StageGroup, opt.Value),
			Opportunities: orEmpty(byStage[opt.Value]),
		})
		seen[opt.Value] = true
	}

	var leftovers []string
	for stage := range byStage {
		if !seen[stage] {
			leftovers = append(leftovers, stage)
		}
	}
	sort.Strings(leftovers)
	for _, stage := range leftovers {
		columns = append(columns, StageColumn{Stage: stage, StageName: stage, Opportunities: byStage[stage]})
	}
	return columns
}

func orEmpty(opps []models.Opportunity) []models.Opportunity {
	if opps == nil {
		return []models.Opportunity{}
	}
	return opps
}

// FollowUps returns the active opportunities in an early stage whose last
// activity is older than the follow-up threshold, most stale first.
func FollowUps(opps []models.Opportunity, now time.Time) []models.Opportunity {
	active := map[string]bool{}
	for _, stage := range config.FollowUpStages {
		active[stage] = true
	}
	cutoff := now.AddDate(0, 0, -config.FollowUpDays)

	stale := []models.Opportunity{}
	for _, o := range opps {
		if o.CurrentStatus != models.OpportunityStatusActive || !active[o.CurrentStage] {
			continue
		}
		last := o.LastUpdateTime
		if last == "" {
			last = o.CreatedTime
		}
		if t, ok := lastActivity(last); ok && t.Before(cutoff) {
			stale = append(stale, o)
		}
	}
	sort.SliceStable(stale, func(i, j int) bool {
		ti, _ := lastActivity(pick(stale[i]))
		tj, _ := lastActivity(pick(stale[j]))
		return ti.Before(tj)
	})
	return stale
}

func pick(o models.Opportunity) string {
	if o.LastUpdateTime != "" {
		return o.LastUpdateTime
	}
	return o.CreatedTime
}

var activityLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func lastActivity(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range activityLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
