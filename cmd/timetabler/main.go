package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/acadsched/timetable-engine/internal/config"
	"github.com/acadsched/timetable-engine/internal/csvio"
	"github.com/acadsched/timetable-engine/internal/pipeline"
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

	result, err := pipeline.Generate(cfg, log)
	if err != nil {
		log.Fatal("generation failed", zap.Error(err))
	}

	if dir := filepath.Dir(cfg.ExportFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal("create output dir", zap.Error(err))
		}
	}
	if err := csvio.ExportSections(result.Sections, cfg.ExportFile); err != nil {
		log.Fatal("export failed", zap.Error(err))
	}

	log.Info("done",
		zap.Int("sections", len(result.Sections)),
		zap.Int("failures", len(result.Failures)),
		zap.Int("pre_violations", len(result.PreReport.Violations())),
		zap.Int("post_violations", len(result.PostReport.Violations())),
		zap.String("export", cfg.ExportFile))

	for _, f := range result.Failures {
		log.Warn("unscheduled",
			zap.String("course", f.CourseCode),
			zap.String("type", string(f.SessionType)),
			zap.String("target", f.Target),
			zap.String("reason", f.Reason))
	}
}
