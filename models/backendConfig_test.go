package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/mmdatafocus/picklist_bridge/models"
)

func TestBackendConfig_SingletonRow(t *testing.T) {
	ctx := context.Background()
	store := openLedgerStore(t)

	missing, err := store.GetBackendConfig(ctx)
	if err != nil {
		t.Fatalf("GetBackendConfig empty: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil config before first save")
	}

	first := &models.BackendConfig{
		ShipperHost: "shipper.local", ShipperPort: 3306,
		ShipperUser: "bridge", ShipperDatabase: "shipper",
	}
	if err := store.SaveBackendConfig(ctx, first); err != nil {
		t.Fatalf("SaveBackendConfig: %v", err)
	}

	second := &models.BackendConfig{
		ID:          40, // caller-supplied ids are ignored
		ShipperHost: "shipper2.local", ShipperPort: 3307,
		InventoryEnabled: true,
	}
	if err := store.SaveBackendConfig(ctx, second); err != nil {
		t.Fatalf("SaveBackendConfig second: %v", err)
	}

	var count int64
	if err := store.DB().Model(&models.BackendConfig{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single config row, got %d", count)
	}

	cfg, err := store.GetBackendConfig(ctx)
	if err != nil {
		t.Fatalf("GetBackendConfig: %v", err)
	}
	if cfg.ShipperHost != "shipper2.local" || !cfg.InventoryEnabled {
		t.Fatalf("second save did not replace first: %+v", cfg)
	}

	params := cfg.ShipperParams()
	if params.Host != "shipper2.local" || params.Port != 3307 {
		t.Fatalf("unexpected shipper params: %+v", params)
	}
}

func TestQuotationDefaults_IntervalFallback(t *testing.T) {
	ctx := context.Background()
	store := openLedgerStore(t)

	defaults := &models.QuotationDefaults{
		CustomerId:             1,
		QuotationTitlePrefix:   "Picklist",
		PollingIntervalSeconds: -5,
	}
	if err := store.SaveQuotationDefaults(ctx, defaults); err != nil {
		t.Fatalf("SaveQuotationDefaults: %v", err)
	}

	saved, err := store.GetQuotationDefaults(ctx)
	if err != nil {
		t.Fatalf("GetQuotationDefaults: %v", err)
	}
	if saved.PollingIntervalSeconds != models.DefaultPollingIntervalSeconds {
		t.Fatalf("expected default interval, got %d", saved.PollingIntervalSeconds)
	}
	if saved.Interval() != time.Duration(models.DefaultPollingIntervalSeconds)*time.Second {
		t.Fatalf("unexpected interval duration: %v", saved.Interval())
	}
}
