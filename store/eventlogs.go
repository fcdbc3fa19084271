// ABOUTME: Event-log (visit report) sheet reader and writer
// ABOUTME: Multi-select answers are persisted as comma-joined text in one cell
package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sheetcrm/config"
	"sheetcrm/idgen"
	"sheetcrm/models"
	"sheetcrm/sheets"
)

// Column layout of the event-log sheet (A:W).
const (
	evtColID = iota
	evtColName
	evtColOppID
	evtColCreator
	evtColCreated
	evtColProbability
	evtColQuantity
	evtColChannel
	evtColOurs
	evtColClients
	evtColCompanySize
	evtColPlace
	evtColLineFeatures
	evtColProduction
	evtColIoT
	evtColSummary
	evtColPainPoints
	evtColPainDetails
	evtColArchitecture
	evtColExternal
	evtColHardware
	evtColExpectation
	evtColPainNotes
	evtWidth
)

const evtLastCol = "W"

// EventLogReader serves the cached event-log collection.
type EventLogReader struct {
	deps
	sheet string
	opps  *OpportunityReader
}

// NewEventLogReader wires a reader for the event-log sheet.
func NewEventLogReader(st sheets.RangeStore, cache *Cache, cfg *config.Config, opps *OpportunityReader, log *zap.Logger) *EventLogReader {
	return &EventLogReader{
		deps:  deps{store: st, cache: cache, log: log.Named("eventlog-reader")},
		sheet: cfg.Sheets.EventLogs,
		opps:  opps,
	}
}

func parseEventLog(row []string, rowIndex int) models.EventLog {
	return models.EventLog{
		RowIndex:            rowIndex,
		EventID:             col(row, evtColID),
		EventName:           col(row, evtColName),
		OpportunityID:       col(row, evtColOppID),
		Creator:             col(row, evtColCreator),
		CreatedTime:         col(row, evtColCreated),
		OrderProbability:    col(row, evtColProbability),
		PotentialQuantity:   col(row, evtColQuantity),
		SalesChannel:        col(row, evtColChannel),
		OurParticipants:     col(row, evtColOurs),
		ClientParticipants:  col(row, evtColClients),
		CompanySize:         col(row, evtColCompanySize),
		VisitPlace:          col(row, evtColPlace),
		LineFeatures:        col(row, evtColLineFeatures),
		ProductionStatus:    col(row, evtColProduction),
		IoTStatus:           col(row, evtColIoT),
		SummaryNotes:        col(row, evtColSummary),
		PainPoints:          col(row, evtColPainPoints),
		PainPointDetails:    col(row, evtColPainDetails),
		SystemArchitecture:  col(row, evtColArchitecture),
		ExternalSystems:     col(row, evtColExternal),
		HardwareScale:       col(row, evtColHardware),
		CustomerExpectation: col(row, evtColExpectation),
		PainPointNotes:      col(row, evtColPainNotes),
	}
}

// All returns every event log, newest first, with opportunity names resolved.
func (r *EventLogReader) All(ctx context.Context) ([]models.EventLog, error) {
	logs, err := fetchCached(ctx, r.deps, cacheEventLogs, colRange(r.sheet, evtLastCol), parseEventLog,
		func(a, b models.EventLog) bool {
			return timeDescLess(a.CreatedTime, b.CreatedTime)
		})
	if err != nil {
		return nil, err
	}

	opps, err := r.opps.All(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(opps))
	for _, o := range opps {
		names[o.OpportunityID] = o.OpportunityName
	}

	out := make([]models.EventLog, len(logs))
	copy(out, logs)
	for i := range out {
		out[i].OpportunityName = names[out[i].OpportunityID]
	}
	return out, nil
}

// ByID finds one event log by its event ID. Returns nil when absent.
func (r *EventLogReader) ByID(ctx context.Context, eventID string) (*models.EventLog, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].EventID == eventID {
			return &all[i], nil
		}
	}
	return nil, nil
}

// ByOpportunity returns the event logs of one opportunity, newest first.
func (r *EventLogReader) ByOpportunity(ctx context.Context, opportunityID string) ([]models.EventLog, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	matched := []models.EventLog{}
	for _, e := range all {
		if e.OpportunityID == opportunityID {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// EventLogInput carries the form fields of a new or edited event log.
// Multi-select fields arrive as slices and are joined for storage.
type EventLogInput struct {
	EventName           string
	OpportunityID       string
	OrderProbability    string
	PotentialQuantity   string
	SalesChannel        string
	OurParticipants     string
	ClientParticipants  string
	CompanySize         string
	VisitPlace          string
	LineFeatures        []string
	ProductionStatus    string
	IoTStatus           string
	SummaryNotes        string
	PainPoints          []string
	PainPointDetails    string
	SystemArchitecture  string
	ExternalSystems     string
	HardwareScale       string
	CustomerExpectation string
	PainPointNotes      string
}

// EventLogWriter mutates the event-log sheet.
type EventLogWriter struct {
	deps
	sheet string
}

// NewEventLogWriter wires a writer for the event-log sheet.
func NewEventLogWriter(st sheets.RangeStore, cache *Cache, cfg *config.Config, log *zap.Logger) *EventLogWriter {
	return &EventLogWriter{
		deps:  deps{store: st, cache: cache, log: log.Named("eventlog-writer")},
		sheet: cfg.Sheets.EventLogs,
	}
}

func eventLogRow(id, creator, created string, in EventLogInput) []string {
	row := make([]string, evtWidth)
	row[evtColID] = id
	row[evtColName] = in.EventName
	row[evtColOppID] = in.OpportunityID
	row[evtColCreator] = creator
	row[evtColCreated] = created
	row[evtColProbability] = in.OrderProbability
	row[evtColQuantity] = in.PotentialQuantity
	row[evtColChannel] = in.SalesChannel
	row[evtColOurs] = in.OurParticipants
	row[evtColClients] = in.ClientParticipants
	row[evtColCompanySize] = in.CompanySize
	row[evtColPlace] = in.VisitPlace
	row[evtColLineFeatures] = strings.Join(in.LineFeatures, ", ")
	row[evtColProduction] = in.ProductionStatus
	row[evtColIoT] = in.IoTStatus
	row[evtColSummary] = in.SummaryNotes
	row[evtColPainPoints] = strings.Join(in.PainPoints, ", ")
	row[evtColPainDetails] = in.PainPointDetails
	row[evtColArchitecture] = in.SystemArchitecture
	row[evtColExternal] = in.ExternalSystems
	row[evtColHardware] = in.HardwareScale
	row[evtColExpectation] = in.CustomerExpectation
	row[evtColPainNotes] = in.PainPointNotes
	return row
}

// Create appends an event-log row and returns its generated ID.
func (w *EventLogWriter) Create(ctx context.Context, in EventLogInput, creator string) (string, error) {
	id := idgen.New(idgen.PrefixEventLog)
	row := eventLogRow(id, creator, nowStamp(), in)

	if _, err := appendAndLocate(ctx, w.store, colRange(w.sheet, evtLastCol), row); err != nil {
		return "", fmt.Errorf("failed to create event log: %w", err)
	}
	w.cache.Invalidate(cacheEventLogs)

	w.log.Info("event log created", zap.String("id", id), zap.String("opportunityId", in.OpportunityID))
	return id, nil
}

// Update overwrites an event log addressed by its event ID. The row is
// located by an uncached scan so stale indices cannot misdirect the write.
// Creator and created time survive the overwrite.
func (w *EventLogWriter) Update(ctx context.Context, eventID string, in EventLogInput) error {
	found, err := findRowByValue(ctx, w.store, colRange(w.sheet, evtLastCol), evtColID, eventID)
	if err != nil {
		return fmt.Errorf("failed to locate event log %s: %w", eventID, err)
	}
	if found == nil {
		return fmt.Errorf("event log %s: %w", eventID, ErrNotFound)
	}

	row := eventLogRow(eventID, col(found.row, evtColCreator), col(found.row, evtColCreated), in)
	if err := w.store.UpdateRange(ctx, rowRange(w.sheet, found.rowIndex, evtLastCol), [][]string{row}); err != nil {
		return fmt.Errorf("failed to update event log %s: %w", eventID, err)
	}
	w.cache.Invalidate(cacheEventLogs)

	w.log.Info("event log updated", zap.String("id", eventID), zap.Int("rowIndex", found.rowIndex))
	return nil
}
