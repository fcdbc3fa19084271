// ABOUTME: Multi-entity workflows composed from entity readers and writers
// ABOUTME: The backing store has no transactions; step order and the journal stand in for them
package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sheetcrm/models"
	"sheetcrm/store"
)

// Deps are the readers and writers a workflow composes. All fields are
// required except Journal, which may be nil.
type Deps struct {
	Contacts      *store.ContactReader
	ContactWriter *store.ContactWriter
	Companies     *store.CompanyWriter
	Opportunities *store.OpportunityWriter
	Interactions  *store.InteractionWriter
	Journal       *Journal
	Log           *zap.Logger
}

// Orchestrator runs the multi-step operations that cut across entity types.
// Steps execute strictly in order because each step's output feeds the next;
// a load-bearing step failure aborts the run and leaves earlier steps
// committed, recorded in the journal for manual reconciliation.
type Orchestrator struct {
	d   Deps
	log *zap.Logger
}

// New creates a workflow orchestrator.
func New(d Deps) *Orchestrator {
	return &Orchestrator{d: d, log: d.Log.Named("workflow")}
}

// OpportunityInput is the opportunity portion of a promote/create request.
type OpportunityInput struct {
	OpportunityName   string
	Assignee          string
	OpportunityType   string
	OpportunitySource string
	CurrentStage      string
	ExpectedCloseDate string
	OpportunityValue  string
	Notes             string
	County            string
}

// PromoteResult reports every entity a promote/create run touched.
type PromoteResult struct {
	Opportunity models.Opportunity
	Company     store.CompanyRef
	Contact     store.ContactRef
	LinkID      string
	RunID       string
}

// PromoteLead turns an unfiled lead row into a Company, Contact, and
// Opportunity, links the contact, records an audit interaction, and marks the
// lead upgraded. The audit interaction is best-effort; every other step is
// load-bearing and aborts the run on failure.
func (o *Orchestrator) PromoteLead(ctx context.Context, leadRowIndex int, opp OpportunityInput, modifier string) (PromoteResult, error) {
	lead, err := o.d.Contacts.LeadByRowIndex(ctx, leadRowIndex)
	if err != nil {
		return PromoteResult{}, fmt.Errorf("failed to load lead at row %d: %w", leadRowIndex, err)
	}
	if lead == nil {
		return PromoteResult{}, fmt.Errorf("lead at row %d: %w", leadRowIndex, store.ErrNotFound)
	}

	src := store.ContactSource{
		LeadRowIndex: lead.RowIndex,
		Name:         lead.Name,
		Company:      lead.Company,
		Position:     lead.Position,
		Department:   lead.Department,
		Phone:        lead.Phone,
		Mobile:       lead.Mobile,
		Email:        lead.Email,
		Address:      lead.Address,
	}
	if opp.OpportunityName == "" {
		opp.OpportunityName = fmt.Sprintf("%s 合作機會", lead.Company)
	}

	runID := o.d.Journal.StartRun("promote-lead", fmt.Sprintf("lead-row-%d", leadRowIndex))
	res, err := o.run(ctx, runID, src, opp, modifier)
	if err != nil {
		o.d.Journal.FinishRun(runID, RunFailed)
		return res, err
	}

	if err := o.d.ContactWriter.SetLeadStatus(ctx, lead.RowIndex, models.LeadStatusUpgraded); err != nil {
		o.d.Journal.RecordStep(runID, 6, "mark-lead-upgraded", StepFailed, err.Error())
		o.d.Journal.FinishRun(runID, RunFailed)
		return res, fmt.Errorf("opportunity %s created but lead row %d not marked upgraded: %w",
			res.Opportunity.OpportunityID, lead.RowIndex, err)
	}
	o.d.Journal.RecordStep(runID, 6, "mark-lead-upgraded", StepOK, fmt.Sprintf("row %d", lead.RowIndex))
	o.d.Journal.FinishRun(runID, RunCompleted)

	o.log.Info("lead promoted",
		zap.Int("leadRowIndex", lead.RowIndex),
		zap.String("opportunityId", res.Opportunity.OpportunityID),
		zap.String("runId", runID))
	res.RunID = runID
	return res, nil
}

// CreateOpportunity runs the same company/contact/opportunity/link sequence
// from manually entered contact details, with no lead row to flip.
func (o *Orchestrator) CreateOpportunity(ctx context.Context, src store.ContactSource, opp OpportunityInput, modifier string) (PromoteResult, error) {
	src.LeadRowIndex = 0
	if opp.OpportunityName == "" {
		opp.OpportunityName = fmt.Sprintf("%s 合作機會", src.Company)
	}

	runID := o.d.Journal.StartRun("create-opportunity", src.Company)
	res, err := o.run(ctx, runID, src, opp, modifier)
	if err != nil {
		o.d.Journal.FinishRun(runID, RunFailed)
		return res, err
	}
	o.d.Journal.RecordStep(runID, 6, "mark-lead-upgraded", StepSkipped, "manual input")
	o.d.Journal.FinishRun(runID, RunCompleted)
	res.RunID = runID
	return res, nil
}

// run executes steps 1-5 shared by both entry points.
func (o *Orchestrator) run(ctx context.Context, runID string, src store.ContactSource, opp OpportunityInput, modifier string) (PromoteResult, error) {
	var res PromoteResult

	company, err := o.d.Companies.GetOrCreate(ctx, src.Company, src, opp.County, modifier)
	if err != nil {
		o.d.Journal.RecordStep(runID, 1, "resolve-company", StepFailed, err.Error())
		return res, fmt.Errorf("failed to resolve company: %w", err)
	}
	res.Company = company
	o.d.Journal.RecordStep(runID, 1, "resolve-company", StepOK, company.ID)

	contact, err := o.d.ContactWriter.GetOrCreate(ctx, src, company, modifier)
	if err != nil {
		o.d.Journal.RecordStep(runID, 2, "resolve-contact", StepFailed, err.Error())
		return res, fmt.Errorf("failed to resolve contact: %w", err)
	}
	res.Contact = contact
	o.d.Journal.RecordStep(runID, 2, "resolve-contact", StepOK, contact.ID)

	phone := src.Mobile
	if phone == "" {
		phone = src.Phone
	}
	created, err := o.d.Opportunities.Create(ctx, models.Opportunity{
		OpportunityName:   opp.OpportunityName,
		CustomerCompany:   company.Name,
		MainContact:       contact.Name,
		ContactPhone:      phone,
		Assignee:          opp.Assignee,
		OpportunityType:   opp.OpportunityType,
		OpportunitySource: opp.OpportunitySource,
		CurrentStage:      opp.CurrentStage,
		ExpectedCloseDate: opp.ExpectedCloseDate,
		OpportunityValue:  opp.OpportunityValue,
		Notes:             opp.Notes,
		LastModifier:      modifier,
	})
	if err != nil {
		o.d.Journal.RecordStep(runID, 3, "create-opportunity", StepFailed, err.Error())
		return res, fmt.Errorf("failed to create opportunity: %w", err)
	}
	res.Opportunity = created
	o.d.Journal.RecordStep(runID, 3, "create-opportunity", StepOK, created.OpportunityID)

	// Best-effort audit trail. A failure here must never undo the rows
	// already written. The title records how the opportunity came to be.
	title := "手動建立新機會"
	if src.LeadRowIndex > 0 {
		title = "從潛在客戶升級為機會"
	}
	_, err = o.d.Interactions.Create(ctx, models.Interaction{
		OpportunityID:  created.OpportunityID,
		EventType:      "系統事件",
		EventTitle:     title,
		ContentSummary: fmt.Sprintf("機會「%s」已建立，聯絡人：%s", created.OpportunityName, contact.Name),
		Recorder:       modifier,
	})
	if err != nil {
		o.log.Warn("audit interaction not recorded",
			zap.String("opportunityId", created.OpportunityID), zap.Error(err))
		o.d.Journal.RecordStep(runID, 4, "audit-interaction", StepFailed, err.Error())
	} else {
		o.d.Journal.RecordStep(runID, 4, "audit-interaction", StepOK, "")
	}

	linkID, err := o.d.Opportunities.LinkContact(ctx, created.OpportunityID, contact.ID, modifier)
	if err != nil {
		o.d.Journal.RecordStep(runID, 5, "link-contact", StepFailed, err.Error())
		return res, fmt.Errorf("opportunity %s created but contact link failed: %w", created.OpportunityID, err)
	}
	res.LinkID = linkID
	o.d.Journal.RecordStep(runID, 5, "link-contact", StepOK, linkID)

	return res, nil
}

// UpdateOpportunity applies a partial edit and, when the edit moves the
// opportunity to a new stage, appends a best-effort stage-change audit
// interaction after the write succeeds.
func (o *Orchestrator) UpdateOpportunity(ctx context.Context, rowIndex int, upd store.OpportunityUpdate, modifier string) (models.Opportunity, error) {
	var prevStage string
	if upd.CurrentStage != nil {
		current, err := o.d.Opportunities.Current(ctx, rowIndex)
		if err == nil {
			prevStage = current.CurrentStage
		}
	}

	updated, err := o.d.Opportunities.Update(ctx, rowIndex, upd, modifier)
	if err != nil {
		return models.Opportunity{}, err
	}

	if upd.CurrentStage != nil && prevStage != "" && prevStage != *upd.CurrentStage {
		_, auditErr := o.d.Interactions.Create(ctx, models.Interaction{
			OpportunityID:  updated.OpportunityID,
			EventType:      "階段變更",
			EventTitle:     "機會階段更新",
			ContentSummary: fmt.Sprintf("階段由「%s」變更為「%s」", prevStage, *upd.CurrentStage),
			Recorder:       modifier,
		})
		if auditErr != nil {
			o.log.Warn("stage-change audit not recorded",
				zap.String("opportunityId", updated.OpportunityID), zap.Error(auditErr))
		}
	}
	return updated, nil
}

// AddContactToOpportunity resolves (or creates) a company and contact from
// manual details and links the contact to an existing opportunity.
func (o *Orchestrator) AddContactToOpportunity(ctx context.Context, opportunityID string, src store.ContactSource, county, modifier string) (store.ContactRef, string, error) {
	company, err := o.d.Companies.GetOrCreate(ctx, src.Company, src, county, modifier)
	if err != nil {
		return store.ContactRef{}, "", fmt.Errorf("failed to resolve company: %w", err)
	}
	contact, err := o.d.ContactWriter.GetOrCreate(ctx, src, company, modifier)
	if err != nil {
		return store.ContactRef{}, "", fmt.Errorf("failed to resolve contact: %w", err)
	}
	linkID, err := o.d.Opportunities.LinkContact(ctx, opportunityID, contact.ID, modifier)
	if err != nil {
		return store.ContactRef{}, "", err
	}
	return contact, linkID, nil
}
