package models

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArchivedPickList permanently excludes a picklist from pending-set
// computation, independent of its conversion outcome.
type ArchivedPickList struct {
	ID         int       `gorm:"primary_key" json:"id"`
	PickListId int       `gorm:"uniqueIndex;not null" json:"pick_list_id"`
	ArchivedAt time.Time `gorm:"index" json:"archived_at"`
	ArchivedBy string    `gorm:"size:100" json:"archived_by"`
}

func (s *Store) ArchivePickList(ctx context.Context, pickListId int, archivedBy string) error {
	record := ArchivedPickList{
		PickListId: pickListId,
		ArchivedAt: time.Now().UTC(),
		ArchivedBy: archivedBy,
	}
	return s.withWrite(func(db *gorm.DB) error {
		return db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pick_list_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"archived_at", "archived_by"}),
		}).Create(&record).Error
	})
}

func (s *Store) UnarchivePickList(ctx context.Context, pickListId int) error {
	return s.withWrite(func(db *gorm.DB) error {
		return db.WithContext(ctx).Where("pick_list_id = ?", pickListId).
			Delete(&ArchivedPickList{}).Error
	})
}

func (s *Store) ArchivedPickListIds(ctx context.Context) (map[int]struct{}, error) {
	var ids []int
	if err := s.db.WithContext(ctx).Model(&ArchivedPickList{}).
		Pluck("pick_list_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (s *Store) ArchivedPickLists(ctx context.Context, limit int, offset int) ([]*ArchivedPickList, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []*ArchivedPickList
	if err := s.db.WithContext(ctx).Order("archived_at DESC").
		Limit(limit).Offset(offset).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
