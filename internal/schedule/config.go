package schedule

import (
	"context"
	"time"

	"github.com/nexuslabs/stackctl/pkg/types"
)

// SettingsSource is the persisted key-value configuration store.
// *store.SettingsStore satisfies it.
type SettingsSource interface {
	Get(ctx context.Context, key, defaultValue string) string
	GetBool(ctx context.Context, key string, defaultValue bool) bool
	GetTime(ctx context.Context, key string) *time.Time
	Delete(ctx context.Context, key string) error
}

// LoadScheduleConfig reads a fresh settings snapshot. Absent keys fall back
// to defaults; the snapshot is never cached between decision cycles.
func LoadScheduleConfig(ctx context.Context, src SettingsSource) types.ScheduleConfig {
	return types.ScheduleConfig{
		Enabled:          src.GetBool(ctx, types.KeyTeardownEnabled, true),
		Timezone:         src.Get(ctx, types.KeyTimezone, types.DefaultTimezone),
		TeardownTime:     src.Get(ctx, types.KeyTeardownTime, types.DefaultTeardownTime),
		NotificationTime: src.Get(ctx, types.KeyNotificationTime, types.DefaultNotificationTime),
		DelayUntil:       src.GetTime(ctx, types.KeyDelayUntil),
		NotifyOnShutdown: src.GetBool(ctx, types.KeyNotifyOnShutdown, true),
		SilentMode:       src.GetBool(ctx, types.KeySilentMode, false),
	}
}
