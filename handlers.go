package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/picklist_bridge/config"
	"github.com/mmdatafocus/picklist_bridge/converter"
	"github.com/mmdatafocus/picklist_bridge/models"
)

const (
	roleShipper    = "shipper"
	roleBackoffice = "backoffice"
	roleInventory  = "inventory"
)

type pickListIdsRequest struct {
	PickListIds []int `json:"pick_list_ids"`
}

type barcodesRequest struct {
	Barcodes []string `json:"barcodes"`
}

type recordIdsRequest struct {
	RecordIds []int `json:"record_ids"`
}

func getBackendConfigHandler(store *models.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := store.GetBackendConfig(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if cfg == nil {
			c.JSON(http.StatusOK, nil)
			return
		}
		// Passwords never leave the service.
		c.JSON(http.StatusOK, gin.H{
			"shipper_host":        cfg.ShipperHost,
			"shipper_port":        cfg.ShipperPort,
			"shipper_user":        cfg.ShipperUser,
			"shipper_database":    cfg.ShipperDatabase,
			"backoffice_host":     cfg.BackofficeHost,
			"backoffice_port":     cfg.BackofficePort,
			"backoffice_user":     cfg.BackofficeUser,
			"backoffice_database": cfg.BackofficeDatabase,
			"inventory_host":      cfg.InventoryHost,
			"inventory_port":      cfg.InventoryPort,
			"inventory_user":      cfg.InventoryUser,
			"inventory_database":  cfg.InventoryDatabase,
			"inventory_enabled":   cfg.InventoryEnabled,
		})
	}
}

func saveBackendConfigHandler(store *models.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cfg models.BackendConfig
		if err := c.ShouldBindJSON(&cfg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if err := store.SaveBackendConfig(c.Request.Context(), &cfg); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Configuration saved"})
	}
}

func testBackendHandler(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params config.BackendParams
		if err := c.ShouldBindJSON(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if role == roleInventory && config.InventorySourceForcedOff() {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "inventory source is disabled on this deployment"})
			return
		}
		if err := config.TestBackend(params); err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func getQuotationDefaultsHandler(store *models.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		defaults, err := store.GetQuotationDefaults(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, defaults)
	}
}

func saveQuotationDefaultsHandler(store *models.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var defaults models.QuotationDefaults
		if err := c.ShouldBindJSON(&defaults); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if err := store.SaveQuotationDefaults(c.Request.Context(), &defaults); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Defaults saved"})
	}
}

func triggerConversionHandler(conv *converter.Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := conv.ConvertAllPending(c.Request.Context())
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, converter.ErrRunInProgress) {
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "results": result})
	}
}

func convertSelectedHandler(conv *converter.Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pickListIdsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if len(req.PickListIds) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No picklist IDs provided"})
			return
		}
		results := make([]*converter.ConversionOutcome, 0, len(req.PickListIds))
		for _, id := range req.PickListIds {
			outcome, err := conv.ConvertOne(c.Request.Context(), id)
			if err != nil {
				status := http.StatusInternalServerError
				if errors.Is(err, converter.ErrRunInProgress) {
					status = http.StatusConflict
				}
				c.JSON(status, gin.H{"success": false, "error": err.Error()})
				return
			}
			results = append(results, outcome)
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
	}
}

func conversionStatusHandler(store *models.Store, conv *converter.Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		cfg, err := store.GetBackendConfig(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"configured": false, "error": err.Error()})
			return
		}
		defaults, err := store.GetQuotationDefaults(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"configured": false, "error": err.Error()})
			return
		}
		if cfg == nil || defaults == nil {
			c.JSON(http.StatusOK, gin.H{"configured": false, "message": "Database configuration or defaults not set"})
			return
		}
		pending, err := conv.PendingPickLists(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"configured": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"configured": true, "pending_count": len(pending)})
	}
}

func checkProductsHandler(conv *converter.Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pickListIdsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if len(req.PickListIds) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No picklist IDs provided"})
			return
		}
		report, err := conv.CheckMissingProducts(c.Request.Context(), req.PickListIds)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":             true,
			"missing":             report.Missing,
			"total_products":      report.TotalProducts,
			"missing_count":       report.MissingCount,
			"can_copy_count":      report.CanCopyCount,
			"truly_missing_count": report.TrulyMissingCount,
		})
	}
}

func copyProductsHandler(conv *converter.Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req barcodesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if len(req.Barcodes) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No barcodes provided"})
			return
		}
		report, err := conv.CopyFromInventory(c.Request.Context(), req.Barcodes)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":        true,
			"results":        report.Results,
			"copied":         report.Copied,
			"skipped":        report.Skipped,
			"failed":         report.Failed,
			"not_configured": report.NotConfigured,
		})
	}
}

func archiveSelectedHandler(store *models.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pickListIdsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if len(req.PickListIds) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No picklist IDs provided"})
			return
		}
		archived := 0
		for _, id := range req.PickListIds {
			if err := store.ArchivePickList(c.Request.Context(), id, "api"); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
				return
			}
			archived++
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "archived_count": archived})
	}
}

func unarchiveSelectedHandler(store *models.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pickListIdsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if len(req.PickListIds) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No picklist IDs provided"})
			return
		}
		unarchived := 0
		for _, id := range req.PickListIds {
			if err := store.UnarchivePickList(c.Request.Context(), id); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
				return
			}
			unarchived++
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "unarchived_count": unarchived})
	}
}

func pollerStartHandler(poller *converter.Poller) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := poller.Start(); err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Polling service started"})
	}
}

func pollerStopHandler(poller *converter.Poller) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := poller.Stop(); err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Polling service stopped"})
	}
}

func pollerStatusHandler(poller *converter.Poller) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, poller.Status(c.Request.Context()))
	}
}

func dashboardStatsHandler(store *models.Store, conv *converter.Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		stats, err := store.GetConversionStats(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		// Pending count is best effort: the dashboard still renders when the
		// shipper backend is unreachable.
		pendingCount := 0
		if pending, err := conv.PendingPickLists(ctx); err == nil {
			pendingCount = len(pending)
		}
		c.JSON(http.StatusOK, gin.H{
			"total_converted": stats.TotalConverted,
			"total_failed":    stats.TotalFailed,
			"total_attempts":  stats.TotalAttempts,
			"pending_count":   pendingCount,
		})
	}
}

func historyHandler(store *models.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := intQuery(c, "limit", 100)
		offset := intQuery(c, "offset", 0)
		status := c.DefaultQuery("status", "all")
		history, err := store.ConversionHistory(c.Request.Context(), limit, offset, status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, history)
	}
}

func deleteHistoryHandler(store *models.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req recordIdsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(req.RecordIds) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No record IDs provided"})
			return
		}
		deleted, err := store.DeleteConversionRecords(c.Request.Context(), req.RecordIds)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "deleted_count": deleted})
	}
}

func deleteFailedHistoryHandler(store *models.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := store.DeleteFailedConversions(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "deleted_count": deleted})
	}
}

func listPickListsHandler(conv *converter.Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		lists, err := conv.ListPickLists(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, lists)
	}
}

func pendingPickListsHandler(conv *converter.Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending, err := conv.PendingPickLists(c.Request.Context())
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, converter.ErrConfigMissing) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, pending)
	}
}

func archivedPickListsHandler(store *models.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := intQuery(c, "limit", 100)
		offset := intQuery(c, "offset", 0)
		archived, err := store.ArchivedPickLists(c.Request.Context(), limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, archived)
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
