package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/picklist_bridge/utils"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// BackendParams carries connection parameters for one of the three operational
// backends (shipper, backoffice, inventory). Values come from the ledger's
// config row, never from env, so they can be changed at runtime.
type BackendParams struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
}

func (p BackendParams) dsn() string {
	network := "tcp"
	address := fmt.Sprintf("%s:%d", p.Host, p.Port)

	// Cloud SQL Auth Proxy exposes a Unix socket under /cloudsql/.
	if strings.HasPrefix(p.Host, "/cloudsql/") {
		network = "unix"
		address = p.Host
	}

	return fmt.Sprintf("%s:%s@%s(%s)/%s?parseTime=true",
		p.User,
		p.Password,
		network,
		address,
		p.Database,
	)
}

// OpenBackend opens a request-scoped connection to a MySQL backend. Callers
// own the handle for the duration of one operation; pooling below keeps
// reconnect cost down when the same backend is opened every cycle.
func OpenBackend(params BackendParams) (*gorm.DB, error) {
	conn, err := gorm.Open(mysql.Open(params.dsn()), initConfig())
	if err != nil {
		return nil, err
	}

	if sqlDB, derr := conn.DB(); derr == nil && sqlDB != nil {
		sqlDB.SetMaxOpenConns(utils.IntFromEnv("DB_MAX_OPEN_CONNS", 10))
		sqlDB.SetMaxIdleConns(utils.IntFromEnv("DB_MAX_IDLE_CONNS", 5))
		sqlDB.SetConnMaxLifetime(time.Duration(utils.IntFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second)
		sqlDB.SetConnMaxIdleTime(time.Duration(utils.IntFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)) * time.Second)
	}

	if pluginErr := conn.Use(otelgorm.NewPlugin()); pluginErr != nil {
		GetLogger().Warnf("backend connected but failed to install otelgorm plugin: %v", pluginErr)
	}

	return conn, nil
}

// TestBackend verifies that a backend is reachable with the given parameters.
func TestBackend(params BackendParams) error {
	conn, err := OpenBackend(params)
	if err != nil {
		return err
	}
	defer closeBackend(conn)

	var one int
	return conn.Raw("SELECT 1").Scan(&one).Error
}

func closeBackend(conn *gorm.DB) {
	if conn == nil {
		return
	}
	if sqlDB, err := conn.DB(); err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

// CloseBackend releases the underlying pool of a request-scoped backend handle.
func CloseBackend(conn *gorm.DB) {
	closeBackend(conn)
}
