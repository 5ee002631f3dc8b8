package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/acadsched/timetable-engine/internal/config"
	"github.com/acadsched/timetable-engine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	srv := &server{cfg: cfg, log: log}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), metricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/generate", srv.handleGenerate)
		api.GET("/sections", srv.handleListSections)
		api.GET("/sections/:id", srv.handleGetSection)
		api.GET("/faculty", srv.handleListFaculty)
		api.GET("/faculty/:name", srv.handleGetFaculty)
		api.GET("/validation", srv.handleValidation)
		api.GET("/schedule.csv", srv.handleExportCSV)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
