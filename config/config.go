// ABOUTME: Application configuration loaded from environment variables
// ABOUTME: Sheet tab names default to the layout of the production spreadsheet
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds everything the data layer needs to address the backing
// spreadsheet. Tab names are configurable because staging copies of the
// spreadsheet rename them, but the defaults match the live workbook and must
// stay byte-identical to read pre-existing rows.
type Config struct {
	SpreadsheetID string `env:"SPREADSHEET_ID"`

	Sheets SheetNames

	// CacheTTL is the validity window of every cached collection.
	CacheTTL time.Duration `env:"CACHE_TTL" env-default:"60s"`

	// JournalPath is the local sqlite file recording workflow runs.
	JournalPath string `env:"WORKFLOW_JOURNAL_PATH" env-default:"workflow-journal.db"`

	Pagination PageSizes
}

// SheetNames are the tab names of each collection inside the workbook.
type SheetNames struct {
	Leads         string `env:"SHEET_LEADS" env-default:"原始名片資料"`
	Contacts      string `env:"SHEET_CONTACTS" env-default:"聯絡人總表"`
	Companies     string `env:"SHEET_COMPANIES" env-default:"公司總表"`
	Opportunities string `env:"SHEET_OPPORTUNITIES" env-default:"機會案件工作表"`
	Interactions  string `env:"SHEET_INTERACTIONS" env-default:"互動紀錄工作表"`
	SystemConfig  string `env:"SHEET_SYSTEM_CONFIG" env-default:"系統設定工作表"`
	EventLogs     string `env:"SHEET_EVENT_LOGS" env-default:"事件紀錄總表"`
	OppContacts   string `env:"SHEET_OPP_CONTACT_LINK" env-default:"機會-聯絡人關聯表"`
	Weekly        string `env:"SHEET_WEEKLY_BUSINESS" env-default:"週間業務工作表"`
	Announcements string `env:"SHEET_ANNOUNCEMENTS" env-default:"佈告欄"`
	Users         string `env:"SHEET_USERS" env-default:"使用者名冊"`
}

// PageSizes are the fixed page sizes per entity type.
type PageSizes struct {
	Contacts      int `env:"PAGE_SIZE_CONTACTS" env-default:"20"`
	Opportunities int `env:"PAGE_SIZE_OPPORTUNITIES" env-default:"10"`
	Interactions  int `env:"PAGE_SIZE_INTERACTIONS" env-default:"15"`
}

// FollowUp thresholds for the dashboard follow-up list.
const (
	FollowUpDays = 7
)

// FollowUpStages are the stages considered "active" for follow-up purposes.
var FollowUpStages = []string{"01_初步接觸", "02_需求確認", "03_提案報價", "04_談判修正"}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("SPREADSHEET_ID is required")
	}
	return &cfg, nil
}
