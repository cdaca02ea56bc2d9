package scheduler

import (
	"strings"

	"dxip_harvester/internal/config"
	"dxip_harvester/internal/harvest"
	"dxip_harvester/internal/logger"
	"dxip_harvester/internal/store"
	"github.com/robfig/cron/v3"
)

// Start 启动所有定时任务
func Start(cfg config.Config, recordStore store.RecordStore) {
	cronJob := cron.New()
	cronFlag := false

	if periodicHarvest := strings.TrimSpace(cfg.Task.PeriodicHarvest); periodicHarvest != "" {
		cronFlag = true
		cronJob.AddFunc(periodicHarvest, func() {
			logger.Info("\n定时采集 开始\n\n")
			harvest.Cycle(&cfg, recordStore)
			logger.Info("\n定时采集 结束\n\n")
		})
	}

	if cronFlag {
		cronJob.Start()
	}
}
