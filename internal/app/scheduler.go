package app

import (
	"time"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// initJob starts the maintenance scheduler. Pipeline work never runs here;
// generation is strictly request-per-invocation. The scheduler only prunes
// old audit rows.
func (a *Application) initJob() {
	a.sched = cron.New()

	_, err := a.sched.AddFunc("@daily", a.pruneUserLogs)
	if err != nil {
		zap.L().Error("failed to register maintenance job", zap.Error(err))
		return
	}

	a.sched.Start()
	zap.L().Info("maintenance scheduler started")
}

func (a *Application) pruneUserLogs() {
	days := a.GetSettingsInt64Value("system", "log_retention_days")
	if days <= 0 {
		days = 90
	}
	cutoff := time.Now().AddDate(0, 0, -int(days))

	result := a.gormDB.Where("opt_time < ?", cutoff).Delete(&domain.SysUserLog{})
	if result.Error != nil {
		zap.L().Error("audit log prune failed", zap.Error(result.Error))
		return
	}
	if result.RowsAffected > 0 {
		zap.L().Info("audit log pruned",
			zap.Int64("rows", result.RowsAffected),
			zap.Time("cutoff", cutoff))
	}
}
