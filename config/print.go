package config

import (
	"fmt"
	"os"
	"text/tabwriter"
)

const redacted = "********"

// PrintConfig writes the effective configuration with secrets masked.
func PrintConfig(cfg *Config) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	rows := [][2]string{
		{"MODE", string(cfg.Mode)},
		{"LOG_LEVEL", cfg.Log.Level},
		{"HTTP_ADDR", cfg.HTTP.Addr()},
		{"STORE_DRIVER", string(cfg.Store.Driver)},
		{"STORE_FILE_PATH", cfg.Store.FilePath},
		{"STORE_SQLITE_PATH", cfg.Store.SQLitePath},
		{"DATABASE_HOST", cfg.Database.Host},
		{"DATABASE_PORT", cfg.Database.Port},
		{"DATABASE_USER", cfg.Database.User},
		{"DATABASE_PASSWORD", mask(cfg.Database.Password)},
		{"DATABASE_DATABASE", cfg.Database.Database},
		{"REDIS_ADDR", cfg.Redis.Addr},
		{"REDIS_PASSWORD", mask(cfg.Redis.Password)},
		{"REDIS_STANDING_TTL", cfg.Redis.StandingTTL.String()},
		{"RABBITMQ_ENABLED", fmt.Sprint(cfg.RabbitMQ.Enabled)},
		{"RABBITMQ_HOST", cfg.RabbitMQ.Host},
		{"RABBITMQ_PORT", cfg.RabbitMQ.Port},
		{"RABBITMQ_USER", cfg.RabbitMQ.User},
		{"RABBITMQ_PASSWORD", mask(cfg.RabbitMQ.Password)},
		{"TRACKER_SAMPLE_INTERVAL", cfg.Tracker.SampleInterval.String()},
		{"TRACKER_BASE", fmt.Sprintf("%.6f, %.6f", cfg.Tracker.BaseLat, cfg.Tracker.BaseLng)},
		{"TRACKER_MAX_STEP_DEG", fmt.Sprint(cfg.Tracker.MaxStepDeg)},
		{"TRACKER_LIVE_ENABLED", fmt.Sprint(cfg.Tracker.LiveEnabled)},
		{"GAMIFICATION_POLICY", string(cfg.Gamification.Policy)},
		{"AUTH_JWT_SECRET", mask(cfg.Auth.JWTSecret)},
		{"LOCATIONIQ_API_KEY", mask(cfg.ExternalAPI.LocationIQapiKey)},
	}

	fmt.Fprintln(w, "CONFIG\tVALUE")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\n", r[0], r[1])
	}
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return redacted
}
