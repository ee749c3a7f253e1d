package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/picklist_bridge/config"
	"gorm.io/gorm"
)

// BackendConfig is the singleton (id = 1) connection config for the three
// operational backends. Read fresh at the start of every pipeline operation;
// changes take effect on the next cycle.
type BackendConfig struct {
	ID int `gorm:"primary_key" json:"id"`

	ShipperHost     string `gorm:"size:255" json:"shipper_host"`
	ShipperPort     int    `json:"shipper_port"`
	ShipperUser     string `gorm:"size:100" json:"shipper_user"`
	ShipperPassword string `gorm:"size:255" json:"shipper_password"`
	ShipperDatabase string `gorm:"size:100" json:"shipper_database"`

	BackofficeHost     string `gorm:"size:255" json:"backoffice_host"`
	BackofficePort     int    `json:"backoffice_port"`
	BackofficeUser     string `gorm:"size:100" json:"backoffice_user"`
	BackofficePassword string `gorm:"size:255" json:"backoffice_password"`
	BackofficeDatabase string `gorm:"size:100" json:"backoffice_database"`

	InventoryHost     string `gorm:"size:255" json:"inventory_host"`
	InventoryPort     int    `json:"inventory_port"`
	InventoryUser     string `gorm:"size:100" json:"inventory_user"`
	InventoryPassword string `gorm:"size:255" json:"inventory_password"`
	InventoryDatabase string `gorm:"size:100" json:"inventory_database"`
	InventoryEnabled  bool   `gorm:"default:false" json:"inventory_enabled"`

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *BackendConfig) ShipperParams() config.BackendParams {
	return config.BackendParams{
		Host:     c.ShipperHost,
		Port:     c.ShipperPort,
		User:     c.ShipperUser,
		Password: c.ShipperPassword,
		Database: c.ShipperDatabase,
	}
}

func (c *BackendConfig) BackofficeParams() config.BackendParams {
	return config.BackendParams{
		Host:     c.BackofficeHost,
		Port:     c.BackofficePort,
		User:     c.BackofficeUser,
		Password: c.BackofficePassword,
		Database: c.BackofficeDatabase,
	}
}

func (c *BackendConfig) InventoryParams() config.BackendParams {
	return config.BackendParams{
		Host:     c.InventoryHost,
		Port:     c.InventoryPort,
		User:     c.InventoryUser,
		Password: c.InventoryPassword,
		Database: c.InventoryDatabase,
	}
}

// GetBackendConfig returns nil without error when no config has been saved yet.
func (s *Store) GetBackendConfig(ctx context.Context) (*BackendConfig, error) {
	var cfg BackendConfig
	err := s.db.WithContext(ctx).Where("id = ?", 1).Take(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) SaveBackendConfig(ctx context.Context, cfg *BackendConfig) error {
	cfg.ID = 1
	return s.withWrite(func(db *gorm.DB) error {
		return db.WithContext(ctx).Save(cfg).Error
	})
}
