// ABOUTME: Data models for spreadsheet-backed CRM entities
// ABOUTME: Each struct mirrors the fixed column layout of one sheet tab
package models

// Opportunity is a sales opportunity row (sheet columns A:R).
// CustomerCompany holds the company name as denormalized text, not an ID.
type Opportunity struct {
	RowIndex            int    `json:"rowIndex"`
	OpportunityID       string `json:"opportunityId"`
	OpportunityName     string `json:"opportunityName"`
	CustomerCompany     string `json:"customerCompany"`
	MainContact         string `json:"mainContact"`
	ContactPhone        string `json:"contactPhone"`
	Assignee            string `json:"assignee"`
	OpportunityType     string `json:"opportunityType"`
	OpportunitySource   string `json:"opportunitySource"`
	CurrentStage        string `json:"currentStage"`
	CreatedTime         string `json:"createdTime"`
	ExpectedCloseDate   string `json:"expectedCloseDate"`
	OpportunityValue    string `json:"opportunityValue"`
	CurrentStatus       string `json:"currentStatus"`
	DriveFolderLink     string `json:"driveFolderLink"`
	LastUpdateTime      string `json:"lastUpdateTime"`
	Notes               string `json:"notes"`
	LastModifier        string `json:"lastModifier"`
	ParentOpportunityID string `json:"parentOpportunityId"`
}

// Lead is an unfiled business-card contact awaiting promotion (columns A:Y).
// The row index is its only durable address until it is upgraded.
type Lead struct {
	RowIndex    int    `json:"rowIndex"`
	CreatedTime string `json:"createdTime"`
	Name        string `json:"name"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Department  string `json:"department"`
	Phone       string `json:"phone"`
	Mobile      string `json:"mobile"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	Address     string `json:"address"`
	Confidence  string `json:"confidence"`
	DriveLink   string `json:"driveLink"`
	Status      string `json:"status"`
}

// Contact is a filed contact in the contact master sheet (columns A:M).
type Contact struct {
	RowIndex       int    `json:"rowIndex"`
	ContactID      string `json:"contactId"`
	SourceID       string `json:"sourceId"`
	Name           string `json:"name"`
	CompanyID      string `json:"companyId"`
	Department     string `json:"department"`
	Position       string `json:"position"`
	Mobile         string `json:"mobile"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	CreatedTime    string `json:"createdTime"`
	LastUpdateTime string `json:"lastUpdateTime"`
	Creator        string `json:"creator"`
	LastModifier   string `json:"lastModifier"`

	// CompanyName is resolved in memory from the company sheet; never persisted.
	CompanyName string `json:"companyName,omitempty"`
}

// Company is a row in the company master sheet (columns A:J).
type Company struct {
	RowIndex       int    `json:"rowIndex"`
	CompanyID      string `json:"companyId"`
	CompanyName    string `json:"companyName"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	CreatedTime    string `json:"createdTime"`
	LastUpdateTime string `json:"lastUpdateTime"`
	County         string `json:"county"`
	Creator        string `json:"creator"`
	LastModifier   string `json:"lastModifier"`
	Introduction   string `json:"introduction"`
}

// Interaction is one audit/activity row tied to an opportunity (columns A:L).
type Interaction struct {
	RowIndex        int    `json:"rowIndex"`
	InteractionID   string `json:"interactionId"`
	OpportunityID   string `json:"opportunityId"`
	InteractionTime string `json:"interactionTime"`
	EventType       string `json:"eventType"`
	EventTitle      string `json:"eventTitle"`
	ContentSummary  string `json:"contentSummary"`
	Participants    string `json:"participants"`
	NextAction      string `json:"nextAction"`
	AttachmentLink  string `json:"attachmentLink"`
	CalendarEventID string `json:"calendarEventId"`
	Recorder        string `json:"recorder"`
	CreatedTime     string `json:"createdTime"`

	// OpportunityName is resolved in memory; never persisted.
	OpportunityName string `json:"opportunityName,omitempty"`
}

// EventLog is a detailed visit/event report row (columns A:W).
type EventLog struct {
	RowIndex            int    `json:"rowIndex"`
	EventID             string `json:"eventId"`
	EventName           string `json:"eventName"`
	OpportunityID       string `json:"opportunityId"`
	Creator             string `json:"creator"`
	CreatedTime         string `json:"createdTime"`
	OrderProbability    string `json:"orderProbability"`
	PotentialQuantity   string `json:"potentialQuantity"`
	SalesChannel        string `json:"salesChannel"`
	OurParticipants     string `json:"ourParticipants"`
	ClientParticipants  string `json:"clientParticipants"`
	CompanySize         string `json:"companySize"`
	VisitPlace          string `json:"visitPlace"`
	LineFeatures        string `json:"lineFeatures"`
	ProductionStatus    string `json:"productionStatus"`
	IoTStatus           string `json:"iotStatus"`
	SummaryNotes        string `json:"summaryNotes"`
	PainPoints          string `json:"painPoints"`
	PainPointDetails    string `json:"painPointDetails"`
	SystemArchitecture  string `json:"systemArchitecture"`
	ExternalSystems     string `json:"externalSystems"`
	HardwareScale       string `json:"hardwareScale"`
	CustomerExpectation string `json:"customerExpectation"`
	PainPointNotes      string `json:"painPointNotes"`

	OpportunityName string `json:"opportunityName,omitempty"`
}

// OppContactLink is one many-to-many association row (columns A:F).
// Links are removed by hard row deletion, never by status flag.
type OppContactLink struct {
	RowIndex      int    `json:"rowIndex"`
	LinkID        string `json:"linkId"`
	OpportunityID string `json:"opportunityId"`
	ContactID     string `json:"contactId"`
	CreatedTime   string `json:"createTime"`
	Status        string `json:"status"`
	Creator       string `json:"creator"`
}

// WeeklyEntry is one weekly business record (columns A:K), grouped by a
// derived ISO week identifier such as "2026-W35".
type WeeklyEntry struct {
	RowIndex       int    `json:"rowIndex"`
	Date           string `json:"date"`
	WeekID         string `json:"weekId"`
	Category       string `json:"category"`
	Topic          string `json:"topic"`
	Participants   string `json:"participants"`
	Summary        string `json:"summary"`
	ActionItems    string `json:"actionItems"`
	CreatedTime    string `json:"createdTime"`
	LastUpdateTime string `json:"lastUpdateTime"`
	Creator        string `json:"creator"`
	RecordID       string `json:"recordId"`

	// Day is the ISO weekday (1=Mon..5=Fri), derived when grouping.
	Day int `json:"day,omitempty"`
}

// Announcement is a bulletin-board row (columns A:H).
type Announcement struct {
	RowIndex       int    `json:"rowIndex"`
	ID             string `json:"id"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	Creator        string `json:"creator"`
	CreatedTime    string `json:"createTime"`
	LastUpdateTime string `json:"lastUpdateTime"`
	Status         string `json:"status"`
	IsPinned       bool   `json:"isPinned"`
}

// SettingOption is one enabled value of a system-config group, ordered by
// its display order column.
type SettingOption struct {
	Value string `json:"value"`
	Note  string `json:"note"`
	Order int    `json:"order"`
}

// SystemConfig maps a setting group name to its ordered options.
type SystemConfig map[string][]SettingOption

// StageName returns the display name configured for a value in a group,
// falling back to the raw value when no mapping exists.
func (c SystemConfig) StageName(group, value string) string {
	for _, opt := range c[group] {
		if opt.Value == value {
			return opt.Note
		}
	}
	return value
}

// User is a row of the user roster sheet, consumed by the (external)
// authentication layer.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	DisplayName  string `json:"displayName"`
}

// Status markers persisted in the sheets. These are the exact strings
// pre-existing rows carry, so they must not be translated.
const (
	OpportunityStatusActive    = "進行中"
	OpportunityStatusCompleted = "已完成"
	OpportunityStatusCancelled = "已取消"
	OpportunityStatusArchived  = "已封存"

	LeadStatusUpgraded = "已升級"

	AnnouncementStatusPublished = "已發布"

	LinkStatusActive = "active"

	DefaultOpportunityStage = "01_初步接觸"

	// StageGroup is the system-config group holding opportunity stages.
	StageGroup = "機會階段"
)
