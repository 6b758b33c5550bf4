package cron_config

import "time"

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Pending delete transition, hourly on the hour
	CronScheduleTransition string `env:"CRON_SCHEDULE_TRANSITION" envDefault:"0 0 * * * *"`
	// First availability check, every 4 hours
	CronScheduleFirstCheck string `env:"CRON_SCHEDULE_FIRST_CHECK" envDefault:"0 0 */4 * * *"`
	// Second availability check, twice a day
	CronScheduleSecondCheck string `env:"CRON_SCHEDULE_SECOND_CHECK" envDefault:"0 30 */12 * * *"`
	// Archival of expired domains, daily at 03:00
	CronScheduleArchive string `env:"CRON_SCHEDULE_ARCHIVE" envDefault:"0 0 3 * * *"`
	// Idea of the day refresh, daily shortly after midnight
	CronScheduleIdea string `env:"CRON_SCHEDULE_IDEA" envDefault:"0 5 0 * * *"`

	TransitionTimeout time.Duration `env:"CRON_TIMEOUT_TRANSITION" envDefault:"5m"`
	CheckTimeout      time.Duration `env:"CRON_TIMEOUT_CHECK" envDefault:"45m"`
	ArchiveTimeout    time.Duration `env:"CRON_TIMEOUT_ARCHIVE" envDefault:"15m"`
	IdeaTimeout       time.Duration `env:"CRON_TIMEOUT_IDEA" envDefault:"5m"`
}
