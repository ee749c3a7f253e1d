package models

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

const DefaultPollingIntervalSeconds = 60

// QuotationDefaults is the singleton (id = 1) settings record the pipeline
// reads at the start of every conversion. A missing record is a hard
// precondition failure for conversion, not a default-able state: there is no
// sensible fallback customer to bill against.
type QuotationDefaults struct {
	ID                     int       `gorm:"primary_key" json:"id"`
	CustomerId             int       `gorm:"not null" json:"customer_id" binding:"required"`
	DefaultStatus          int       `json:"default_status"`
	QuotationTitlePrefix   string    `gorm:"size:50" json:"quotation_title_prefix"`
	PollingIntervalSeconds int       `gorm:"default:60" json:"polling_interval_seconds"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d *QuotationDefaults) Interval() time.Duration {
	seconds := d.PollingIntervalSeconds
	if seconds <= 0 {
		seconds = DefaultPollingIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}

// GetQuotationDefaults returns nil without error when no defaults are saved.
func (s *Store) GetQuotationDefaults(ctx context.Context) (*QuotationDefaults, error) {
	var defaults QuotationDefaults
	err := s.db.WithContext(ctx).Where("id = ?", 1).Take(&defaults).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &defaults, nil
}

func (s *Store) SaveQuotationDefaults(ctx context.Context, defaults *QuotationDefaults) error {
	defaults.ID = 1
	if defaults.PollingIntervalSeconds <= 0 {
		defaults.PollingIntervalSeconds = DefaultPollingIntervalSeconds
	}
	return s.withWrite(func(db *gorm.DB) error {
		return db.WithContext(ctx).Save(defaults).Error
	})
}
