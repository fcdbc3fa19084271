// ABOUTME: System configuration and user roster readers
// ABOUTME: Config rows are grouped settings; only enabled rows surface
package store

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"sheetcrm/config"
	"sheetcrm/models"
	"sheetcrm/sheets"
)

// Column layout of the system config sheet (A:E).
const (
	cfgColGroup = iota
	cfgColValue
	cfgColOrder
	cfgColEnabled
	cfgColNote
	cfgWidth
)

const cfgLastCol = "E"

// Column layout of the user roster sheet (A:C).
const (
	userColName = iota
	userColHash
	userColDisplay
	userWidth
)

const userLastCol = "C"

// SystemReader serves the cached system configuration and user roster.
type SystemReader struct {
	deps
	configSheet string
	userSheet   string
}

// NewSystemReader wires a reader for the system config and user sheets.
func NewSystemReader(st sheets.RangeStore, cache *Cache, cfg *config.Config, log *zap.Logger) *SystemReader {
	return &SystemReader{
		deps:        deps{store: st, cache: cache, log: log.Named("system-reader")},
		configSheet: cfg.Sheets.SystemConfig,
		userSheet:   cfg.Sheets.Users,
	}
}

// Config returns the enabled setting options grouped by setting name, each
// group ordered by its display order column. Rows whose enabled flag is not
// "TRUE" (any casing) are dropped.
func (r *SystemReader) Config(ctx context.Context) (models.SystemConfig, error) {
	if cached, ok := r.cache.Get(cacheSystemConfig); ok {
		if cfg, ok := cached.(models.SystemConfig); ok {
			return cfg, nil
		}
	}

	rows, err := r.store.GetRange(ctx, colRange(r.configSheet, cfgLastCol))
	if err != nil {
		if sheets.IsRangeUnavailable(err) {
			return models.SystemConfig{}, nil
		}
		return nil, err
	}

	cfg := models.SystemConfig{}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		group := strings.TrimSpace(col(row, cfgColGroup))
		value := strings.TrimSpace(col(row, cfgColValue))
		if group == "" || value == "" {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(col(row, cfgColEnabled)), "true") {
			continue
		}
		// Rows without a numeric order land after every numbered row.
		order, err := strconv.Atoi(strings.TrimSpace(col(row, cfgColOrder)))
		if err != nil {
			order = 99
		}
		note := strings.TrimSpace(col(row, cfgColNote))
		if note == "" {
			note = value
		}
		cfg[group] = append(cfg[group], models.SettingOption{
			Value: value,
			Note:  note,
			Order: order,
		})
	}
	for group := range cfg {
		opts := cfg[group]
		sort.SliceStable(opts, func(i, j int) bool { return opts[i].Order < opts[j].Order })
	}

	r.cache.Put(cacheSystemConfig, cfg)
	return cfg, nil
}

// Options returns the enabled values of one setting group in display order.
func (r *SystemReader) Options(ctx context.Context, group string) ([]models.SettingOption, error) {
	cfg, err := r.Config(ctx)
	if err != nil {
		return nil, err
	}
	return cfg[group], nil
}

// Users returns the roster rows that carry both a username and a password
// hash; partially filled rows are treated as not-yet-provisioned and skipped.
func (r *SystemReader) Users(ctx context.Context) ([]models.User, error) {
	all, err := fetchCached(ctx, r.deps, cacheUsers,
		colRange(r.userSheet, userLastCol),
		func(row []string, rowIndex int) models.User {
			return models.User{
				Username:     strings.TrimSpace(col(row, userColName)),
				PasswordHash: strings.TrimSpace(col(row, userColHash)),
				DisplayName:  strings.TrimSpace(col(row, userColDisplay)),
			}
		}, nil)
	if err != nil {
		return nil, err
	}

	users := []models.User{}
	for _, u := range all {
		if u.Username != "" && u.PasswordHash != "" {
			users = append(users, u)
		}
	}
	return users, nil
}

// UserByName finds a provisioned user by username. Returns nil when the user
// does not exist or has no credentials yet.
func (r *SystemReader) UserByName(ctx context.Context, username string) (*models.User, error) {
	users, err := r.Users(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			u := users[i]
			return &u, nil
		}
	}
	return nil, nil
}
