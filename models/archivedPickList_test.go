package models_test

import (
	"context"
	"testing"

	"github.com/mmdatafocus/picklist_bridge/models"
)

func TestArchivePickList_RepeatIsNoDuplicate(t *testing.T) {
	ctx := context.Background()
	store := openLedgerStore(t)

	if err := store.ArchivePickList(ctx, 11, "operator"); err != nil {
		t.Fatalf("ArchivePickList: %v", err)
	}
	if err := store.ArchivePickList(ctx, 11, "operator"); err != nil {
		t.Fatalf("ArchivePickList repeat: %v", err)
	}

	var count int64
	if err := store.DB().Model(&models.ArchivedPickList{}).Where("pick_list_id = ?", 11).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 archive row, got %d", count)
	}

	ids, err := store.ArchivedPickListIds(ctx)
	if err != nil {
		t.Fatalf("ArchivedPickListIds: %v", err)
	}
	if _, ok := ids[11]; !ok {
		t.Fatal("picklist 11 missing from archived set")
	}
}

func TestUnarchivePickList(t *testing.T) {
	ctx := context.Background()
	store := openLedgerStore(t)

	if err := store.ArchivePickList(ctx, 3, "operator"); err != nil {
		t.Fatalf("ArchivePickList: %v", err)
	}
	if err := store.UnarchivePickList(ctx, 3); err != nil {
		t.Fatalf("UnarchivePickList: %v", err)
	}

	ids, err := store.ArchivedPickListIds(ctx)
	if err != nil {
		t.Fatalf("ArchivedPickListIds: %v", err)
	}
	if _, ok := ids[3]; ok {
		t.Fatal("picklist 3 still archived after unarchive")
	}

	// Unarchiving something never archived is a no-op, not an error.
	if err := store.UnarchivePickList(ctx, 99); err != nil {
		t.Fatalf("UnarchivePickList missing: %v", err)
	}
}
