// Package config loads runtime configuration from an optional
// timetable.yaml, the environment (TIMETABLE_* variables) and a local
// .env file. All scheduling thresholds live here so policy changes
// never touch the engine.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/acadsched/timetable-engine/pkg/timeutil"
)

type Config struct {
	CoursesFile    string
	ClassroomsFile string
	ExportFile     string

	Departments   []string
	Semesters     []int
	SplitSections []string // departments running two physical sections

	CombinedRoomID     string
	LargeRoomThreshold int     // capacity split between large and small classroom pools
	LabCapacityCap     int     // per-section cap applied to split-department practicals
	AdjacentLabSlack   float64 // capacity multiplier when pairing adjacent labs
	ClassBreakMins     int

	Log    LogConfig
	Server ServerConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	Port int
}

// ClassBreakSlots converts the configured break length into slots.
func (c *Config) ClassBreakSlots() int {
	return c.ClassBreakMins / timeutil.SlotDurationMins
}

// Load reads configuration with sane defaults for every knob.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("timetable")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("TIMETABLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("courses_file", "data/course.csv")
	v.SetDefault("classrooms_file", "data/classroom_data.csv")
	v.SetDefault("export_file", "output/schedule.csv")
	v.SetDefault("departments", []string{"CSE", "DSAI", "ECE"})
	v.SetDefault("semesters", []int{1, 3, 5, 7})
	v.SetDefault("split_sections", []string{"CSE"})
	v.SetDefault("combined_room_id", "C004")
	v.SetDefault("large_room_threshold", 100)
	v.SetDefault("lab_capacity_cap", 40)
	v.SetDefault("adjacent_lab_slack", 1.25)
	v.SetDefault("class_break_mins", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.port", 8080)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{
		CoursesFile:        v.GetString("courses_file"),
		ClassroomsFile:     v.GetString("classrooms_file"),
		ExportFile:         v.GetString("export_file"),
		Departments:        v.GetStringSlice("departments"),
		Semesters:          v.GetIntSlice("semesters"),
		SplitSections:      v.GetStringSlice("split_sections"),
		CombinedRoomID:     v.GetString("combined_room_id"),
		LargeRoomThreshold: v.GetInt("large_room_threshold"),
		LabCapacityCap:     v.GetInt("lab_capacity_cap"),
		AdjacentLabSlack:   v.GetFloat64("adjacent_lab_slack"),
		ClassBreakMins:     v.GetInt("class_break_mins"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Server: ServerConfig{
			Port: v.GetInt("server.port"),
		},
	}
	return cfg, nil
}
