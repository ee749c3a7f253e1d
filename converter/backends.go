package converter

import (
	"context"
	"sync"

	"github.com/mmdatafocus/picklist_bridge/config"
	"github.com/mmdatafocus/picklist_bridge/models"
	"github.com/mmdatafocus/picklist_bridge/utils"
	"gorm.io/gorm"
)

// Backends resolves connections to the three operational databases. The
// pipeline re-resolves at the start of every operation so config changes take
// effect on the next cycle without a restart. Inventory returns
// utils.ErrInventoryNotConfigured when healing is unavailable; callers treat
// that as "no-op", not as an error.
type Backends interface {
	Shipper(ctx context.Context) (*gorm.DB, error)
	BackOffice(ctx context.Context) (*gorm.DB, error)
	Inventory(ctx context.Context) (*gorm.DB, error)
}

// LedgerBackends opens MySQL connections from the ledger's config row,
// caching one pool per role and recycling it when the stored parameters
// change.
type LedgerBackends struct {
	store *models.Store

	mu     sync.Mutex
	cached map[string]*cachedBackend
}

type cachedBackend struct {
	params config.BackendParams
	db     *gorm.DB
}

func NewLedgerBackends(store *models.Store) *LedgerBackends {
	return &LedgerBackends{
		store:  store,
		cached: make(map[string]*cachedBackend),
	}
}

func (b *LedgerBackends) Shipper(ctx context.Context) (*gorm.DB, error) {
	cfg, err := b.config(ctx)
	if err != nil {
		return nil, err
	}
	return b.resolve("shipper", cfg.ShipperParams())
}

func (b *LedgerBackends) BackOffice(ctx context.Context) (*gorm.DB, error) {
	cfg, err := b.config(ctx)
	if err != nil {
		return nil, err
	}
	return b.resolve("backoffice", cfg.BackofficeParams())
}

func (b *LedgerBackends) Inventory(ctx context.Context) (*gorm.DB, error) {
	cfg, err := b.config(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.InventoryEnabled || config.InventorySourceForcedOff() {
		return nil, utils.ErrInventoryNotConfigured
	}
	return b.resolve("inventory", cfg.InventoryParams())
}

func (b *LedgerBackends) config(ctx context.Context) (*models.BackendConfig, error) {
	cfg, err := b.store.GetBackendConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, ErrConfigMissing
	}
	return cfg, nil
}

func (b *LedgerBackends) resolve(role string, params config.BackendParams) (*gorm.DB, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if entry, ok := b.cached[role]; ok {
		if entry.params == params {
			return entry.db, nil
		}
		config.CloseBackend(entry.db)
		delete(b.cached, role)
	}

	db, err := config.OpenBackend(params)
	if err != nil {
		return nil, err
	}
	b.cached[role] = &cachedBackend{params: params, db: db}
	return db, nil
}

// StaticBackends serves fixed handles. Used by tests and one-off commands
// that already hold connections.
type StaticBackends struct {
	ShipperDB    *gorm.DB
	BackOfficeDB *gorm.DB
	InventoryDB  *gorm.DB
}

func (b *StaticBackends) Shipper(ctx context.Context) (*gorm.DB, error) {
	return b.ShipperDB, nil
}

func (b *StaticBackends) BackOffice(ctx context.Context) (*gorm.DB, error) {
	return b.BackOfficeDB, nil
}

func (b *StaticBackends) Inventory(ctx context.Context) (*gorm.DB, error) {
	if b.InventoryDB == nil {
		return nil, utils.ErrInventoryNotConfigured
	}
	return b.InventoryDB, nil
}
