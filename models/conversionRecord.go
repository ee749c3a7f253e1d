package models

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ConversionRecord is the idempotency ledger row: one row per picklist,
// upserted in place. Invariants enforced by LogConversion:
//   - at most one row per pick_list_id (unique index, upsert semantics)
//   - a successful row is never overwritten by a later failure
//
// Repeated failed attempts therefore collapse into the latest failure instead
// of accumulating or violating uniqueness.
type ConversionRecord struct {
	ID              int       `gorm:"primary_key" json:"id"`
	PickListId      int       `gorm:"uniqueIndex;not null" json:"pick_list_id"`
	Success         bool      `gorm:"index;not null" json:"success"`
	QuotationId     *int      `json:"quotation_id"`
	QuotationNumber string    `gorm:"size:20" json:"quotation_number"`
	ErrorMessage    string    `gorm:"type:text" json:"error_message"`
	ConvertedAt     time.Time `gorm:"index" json:"converted_at"`
}

type ConversionStats struct {
	TotalConverted int64 `json:"total_converted"`
	TotalFailed    int64 `json:"total_failed"`
	TotalAttempts  int64 `json:"total_attempts"`
}

// LogConversion records the outcome of one conversion attempt.
func (s *Store) LogConversion(ctx context.Context, record *ConversionRecord) error {
	record.ConvertedAt = time.Now().UTC()
	return s.withWrite(func(db *gorm.DB) error {
		var existing ConversionRecord
		err := db.WithContext(ctx).Where("pick_list_id = ?", record.PickListId).Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return db.WithContext(ctx).Create(record).Error
		}
		if err != nil {
			return err
		}
		if existing.Success && !record.Success {
			// The picklist already converted; a stray retry must not demote it.
			return nil
		}
		record.ID = existing.ID
		return db.WithContext(ctx).Model(&existing).
			Updates(map[string]interface{}{
				"success":          record.Success,
				"quotation_id":     record.QuotationId,
				"quotation_number": record.QuotationNumber,
				"error_message":    record.ErrorMessage,
				"converted_at":     record.ConvertedAt,
			}).Error
	})
}

// ConvertedPickListIds returns the set of picklists with a successful record.
func (s *Store) ConvertedPickListIds(ctx context.Context) (map[int]struct{}, error) {
	var ids []int
	if err := s.db.WithContext(ctx).Model(&ConversionRecord{}).
		Where("success = ?", true).Pluck("pick_list_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// ConversionHistory lists records newest first. status is "all", "success" or
// "failed".
func (s *Store) ConversionHistory(ctx context.Context, limit int, offset int, status string) ([]*ConversionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	dbCtx := s.db.WithContext(ctx).Model(&ConversionRecord{})
	switch status {
	case "success":
		dbCtx = dbCtx.Where("success = ?", true)
	case "failed":
		dbCtx = dbCtx.Where("success = ?", false)
	}
	var records []*ConversionRecord
	if err := dbCtx.Order("converted_at DESC").Limit(limit).Offset(offset).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) GetConversionStats(ctx context.Context) (*ConversionStats, error) {
	var stats ConversionStats
	if err := s.db.WithContext(ctx).Model(&ConversionRecord{}).
		Where("success = ?", true).Count(&stats.TotalConverted).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&ConversionRecord{}).
		Where("success = ?", false).Count(&stats.TotalFailed).Error; err != nil {
		return nil, err
	}
	stats.TotalAttempts = stats.TotalConverted + stats.TotalFailed
	return &stats, nil
}

func (s *Store) DeleteConversionRecords(ctx context.Context, recordIds []int) (int64, error) {
	if len(recordIds) == 0 {
		return 0, nil
	}
	var deleted int64
	err := s.withWrite(func(db *gorm.DB) error {
		result := db.WithContext(ctx).Where("id IN ?", recordIds).Delete(&ConversionRecord{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}

func (s *Store) DeleteFailedConversions(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.withWrite(func(db *gorm.DB) error {
		result := db.WithContext(ctx).Where("success = ?", false).Delete(&ConversionRecord{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}
