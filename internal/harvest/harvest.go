package harvest

import (
	"sync"
	"time"

	"dxip_harvester/internal/config"
	"dxip_harvester/internal/extract"
	"dxip_harvester/internal/logger"
	"dxip_harvester/internal/requests"
	"dxip_harvester/internal/store"
)

var (
	lastRunMu sync.Mutex
	lastRun   time.Time
)

// Cycle 执行一轮采集：抓取页面、提取记录、整体替换IP池。
// 守护模式下由定时任务反复调用，任何一步失败只记日志不退出，
// 失败时保留上一轮的IP池内容。
func Cycle(cfg *config.Config, recordStore store.RecordStore) {
	logger.Info("开始采集: %s", cfg.Source.URL)

	page, err := requests.FetchPage(cfg.Source.URL, cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
	if err != nil {
		logger.Error("请求网页失败: %v", err)
		return
	}

	records := extract.Extract(page, cfg.Source.Provider)
	if len(records) == 0 {
		logger.Warning("未找到%s线路的IP地址，保留现有IP池", cfg.Source.Provider)
		return
	}

	if err := recordStore.Replace(records); err != nil {
		logger.Error("IP池写入失败: %v", err)
		return
	}

	markRun()
	logger.Success("采集完成，共 %d 条%s线路记录", len(records), cfg.Source.Provider)
}

func markRun() {
	lastRunMu.Lock()
	defer lastRunMu.Unlock()
	lastRun = time.Now()
}

// LastRun 最近一次成功采集的时间，从未成功时为零值
func LastRun() time.Time {
	lastRunMu.Lock()
	defer lastRunMu.Unlock()
	return lastRun
}
