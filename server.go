package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/picklist_bridge/config"
	"github.com/mmdatafocus/picklist_bridge/converter"
	"github.com/mmdatafocus/picklist_bridge/models"
	"github.com/mmdatafocus/picklist_bridge/utils"
	"github.com/sirupsen/logrus"
)

const defaultPort = "5000"

func main() {
	port := os.Getenv("BRIDGE_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	config.ConnectLedgerWithRetry()
	if strings.ToLower(os.Getenv("SKIP_MIGRATIONS")) != "true" {
		models.MigrateTable()
	}

	store := models.NewStore(config.GetDB())
	backends := converter.NewLedgerBackends(store)
	conv := converter.NewConverter(store, backends, logger)
	poller := converter.NewPoller(conv, store, logger)

	if strings.ToLower(os.Getenv("POLLER_AUTOSTART")) == "true" {
		if err := poller.Start(); err != nil {
			logger.WithFields(logrus.Fields{"field": "poller"}).Error(err)
		}
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), cid)
		ctx = utils.SetTriggeredByInContext(ctx, "api")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	r.Use(requestLogger(logger))
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	allowedOrigins := splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else if os.Getenv("GO_ENV") == "production" {
		corsConfig.AllowOrigins = []string{}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods(http.MethodOptions)
	corsConfig.AddAllowHeaders("x-correlation-id")
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")
	{
		api.GET("/config/backends", getBackendConfigHandler(store))
		api.POST("/config/backends", saveBackendConfigHandler(store))
		api.POST("/config/test-shipper", testBackendHandler(roleShipper))
		api.POST("/config/test-backoffice", testBackendHandler(roleBackoffice))
		api.POST("/config/test-inventory", testBackendHandler(roleInventory))
		api.GET("/config/quotation-defaults", getQuotationDefaultsHandler(store))
		api.POST("/config/quotation-defaults", saveQuotationDefaultsHandler(store))

		api.POST("/convert/trigger", triggerConversionHandler(conv))
		api.POST("/convert/selected", convertSelectedHandler(conv))
		api.GET("/convert/status", conversionStatusHandler(store, conv))

		api.POST("/check-products", checkProductsHandler(conv))
		api.POST("/copy-products-from-inventory", copyProductsHandler(conv))

		api.POST("/archive/selected", archiveSelectedHandler(store))
		api.POST("/archive/unarchive", unarchiveSelectedHandler(store))

		api.POST("/poller/start", pollerStartHandler(poller))
		api.POST("/poller/stop", pollerStopHandler(poller))
		api.GET("/poller/status", pollerStatusHandler(poller))

		api.GET("/dashboard/stats", dashboardStatsHandler(store, conv))

		api.GET("/history", historyHandler(store))
		api.POST("/history/delete", deleteHistoryHandler(store))
		api.POST("/history/delete-failed", deleteFailedHistoryHandler(store))

		api.GET("/picklists", listPickListsHandler(conv))
		api.GET("/picklists/pending", pendingPickListsHandler(conv))
		api.GET("/picklists/archived", archivedPickListsHandler(store))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"field": "server", "port": port}).Info("listening")
		serverErrCh <- srv.ListenAndServe()
	}()

	select {
	case <-sigCtx.Done():
		if poller.IsRunning() {
			_ = poller.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			logger.WithFields(logrus.Fields{"field": "server"}).Error(err)
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		logger.WithFields(logrus.Fields{
			"status":         c.Writer.Status(),
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"latency":        latency.String(),
			"correlation_id": cid,
		}).Info("request")
	}
}
