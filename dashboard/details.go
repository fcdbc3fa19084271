// ABOUTME: Drill-down detail views for single opportunities and companies
// ABOUTME: Each view is a fan-out of concurrent collection reads joined by ID
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sheetcrm/models"
	"sheetcrm/store"
)

// OpportunityDetails is the full drill-down payload for one opportunity.
type OpportunityDetails struct {
	Opportunity  models.Opportunity   `json:"opportunity"`
	Parent       *models.Opportunity  `json:"parent,omitempty"`
	Children     []models.Opportunity `json:"children"`
	Interactions []models.Interaction `json:"interactions"`
	EventLogs    []models.EventLog    `json:"eventLogs"`
	Contacts     []models.Contact     `json:"contacts"`
}

// OpportunityDetails resolves one opportunity with its parent/children,
// interactions, event logs, and linked contacts.
func (s *Service) OpportunityDetails(ctx context.Context, opportunityID string) (*OpportunityDetails, error) {
	opp, err := s.r.Opportunities.ByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp == nil {
		return nil, fmt.Errorf("opportunity %s: %w", opportunityID, store.ErrNotFound)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error

		all      []models.Opportunity
		activity []models.Interaction
		logs     []models.EventLog
		contacts []models.Contact
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
	fetch(func() (err error) { all, err = s.r.Opportunities.All(ctx); return })
	fetch(func() (err error) { activity, err = s.r.Interactions.ByOpportunity(ctx, opportunityID); return })
	fetch(func() (err error) { logs, err = s.r.EventLogs.ByOpportunity(ctx, opportunityID); return })
	fetch(func() (err error) { contacts, err = s.r.Contacts.LinkedContacts(ctx, opportunityID); return })
	wg.Wait()
	if len(errs) > 0 {
		return nil, errs[0]
	}

	det := &OpportunityDetails{
		Opportunity:  *opp,
		Children:     []models.Opportunity{},
		Interactions: activity,
		EventLogs:    logs,
		Contacts:     contacts,
	}
	for i := range all {
		if all[i].ParentOpportunityID == opportunityID {
			det.Children = append(det.Children, all[i])
		}
		if opp.ParentOpportunityID != "" && all[i].OpportunityID == opp.ParentOpportunityID {
			parent := all[i]
			det.Parent = &parent
		}
	}
	return det, nil
}

// CompanyDetails is the drill-down payload for one company.
type CompanyDetails struct {
	Company       models.Company       `json:"company"`
	Contacts      []models.Contact     `json:"contacts"`
	Opportunities []models.Opportunity `json:"opportunities"`
}

// CompanyDetails resolves a company by name with its contacts and the
// opportunities referencing it. The opportunity join is by denormalized
// company name, the contact join by company ID.
func (s *Service) CompanyDetails(ctx context.Context, companyName string) (*CompanyDetails, error) {
	companies, err := s.r.Companies.All(ctx)
	if err != nil {
		return nil, err
	}

	var company *models.Company
	for i := range companies {
		if companies[i].CompanyName == companyName {
			company = &companies[i]
			break
		}
	}
	if company == nil {
		return nil, fmt.Errorf("company %s: %w", companyName, store.ErrNotFound)
	}

	contacts, err := s.r.Contacts.Filed(ctx)
	if err != nil {
		return nil, err
	}
	opps, err := s.r.Opportunities.All(ctx)
	if err != nil {
		return nil, err
	}

	det := &CompanyDetails{
		Company:       *company,
		Contacts:      []models.Contact{},
		Opportunities: []models.Opportunity{},
	}
	for _, c := range contacts {
		if c.CompanyID == company.CompanyID {
			c.CompanyName = company.CompanyName
			det.Contacts = append(det.Contacts, c)
		}
	}
	for _, o := range opps {
		if o.CustomerCompany == company.CompanyName {
			det.Opportunities = append(det.Opportunities, o)
		}
	}
	return det, nil
}

// ChartPoint is one label/count pair of a distribution chart.
type ChartPoint struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Charts are the distribution datasets of the report view.
type Charts struct {
	ByStage      []ChartPoint `json:"byStage"`
	ByType       []ChartPoint `json:"byType"`
	ByAssignee   []ChartPoint `json:"byAssignee"`
	BySource     []ChartPoint `json:"bySource"`
	MonthlyTrend []ChartPoint `json:"monthlyTrend"`
}

// Charts aggregates active opportunities into stage, type, assignee, and
// source distributions plus a created-per-month trend. Stage labels follow
// the configured display order.
func (s *Service) Charts(ctx context.Context) (*Charts, error) {
	opps, err := s.r.Opportunities.All(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := s.r.System.Config(ctx)
	if err != nil {
		return nil, err
	}

	byStage := map[string]int{}
	byType := map[string]int{}
	byAssignee := map[string]int{}
	bySource := map[string]int{}
	byMonth := map[string]int{}
	for _, o := range opps {
		if o.CurrentStatus != models.OpportunityStatusActive {
			continue
		}
		byStage[o.CurrentStage]++
		if o.OpportunityType != "" {
			byType[o.OpportunityType]++
		}
		if o.Assignee != "" {
			byAssignee[o.Assignee]++
		}
		if o.OpportunitySource != "" {
			bySource[o.OpportunitySource]++
		}
		if len(o.CreatedTime) >= 7 {
			byMonth[o.CreatedTime[:7]]++
		}
	}

	ch := &Charts{}
	for _, opt := range cfg[models.StageGroup] {
		ch.ByStage = append(ch.ByStage, ChartPoint{
			Label: cfg.StageName(models.StageGroup, opt.Value),
			Count: byStage[opt.Value],
		})
	}
	ch.ByType = sortedPoints(byType)
	ch.ByAssignee = sortedPoints(byAssignee)
	ch.BySource = sortedPoints(bySource)

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		ch.MonthlyTrend = append(ch.MonthlyTrend, ChartPoint{Label: m, Count: byMonth[m]})
	}
	return ch, nil
}

func sortedPoints(counts map[string]int) []ChartPoint {
	points := make([]ChartPoint, 0, len(counts))
	for label, n := range counts {
		points = append(points, ChartPoint{Label: label, Count: n})
	}
	// Largest first; ties break on label for deterministic output.
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].Count != points[j].Count {
			return points[i].Count > points[j].Count
		}
		return points[i].Label < points[j].Label
	})
	return points
}
