package types

import "time"

// Settings store keys for the teardown schedule.
const (
	KeyTeardownEnabled  = "teardown_enabled"
	KeyTimezone         = "teardown_timezone"
	KeyTeardownTime     = "teardown_time"
	KeyNotificationTime = "notification_time"
	KeyDelayUntil       = "delay_until"
	KeyNotifyOnShutdown = "notify_on_shutdown"
	KeyNotifyOnSpinup   = "notify_on_spinup"
	KeySilentMode       = "silent_mode"
)

// Defaults applied when a settings key is absent.
const (
	DefaultTimezone         = "Europe/Zurich"
	DefaultTeardownTime     = "22:00"
	DefaultNotificationTime = "21:45"
)

// ScheduleConfig is a read-only snapshot of the operator's teardown settings,
// loaded fresh from the settings store on every decision cycle. It is never
// cached across ticks.
type ScheduleConfig struct {
	Enabled          bool       `json:"enabled"`
	Timezone         string     `json:"timezone"`
	TeardownTime     string     `json:"teardown_time"`
	NotificationTime string     `json:"notification_time"`
	DelayUntil       *time.Time `json:"delay_until,omitempty"`
	NotifyOnShutdown bool       `json:"notify_on_shutdown"`
	SilentMode       bool       `json:"silent_mode"`
}

// DelayActive reports whether a delay override is set and still in the future.
func (c ScheduleConfig) DelayActive(now time.Time) bool {
	return c.DelayUntil != nil && c.DelayUntil.After(now)
}

// DelayExpired reports whether a delay override is set but has already elapsed.
func (c ScheduleConfig) DelayExpired(now time.Time) bool {
	return c.DelayUntil != nil && !c.DelayUntil.After(now)
}
