package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Warmup send cycle, hourly
	CronScheduleWarmupSend string `env:"CRON_SCHEDULE_WARMUP_SEND" envDefault:"0 0 * * * *"`
	// Spam rescue cycle, hourly at half past
	CronScheduleWarmupRescue string `env:"CRON_SCHEDULE_WARMUP_RESCUE" envDefault:"0 30 * * * *"`
}
