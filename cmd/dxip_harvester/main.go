package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"dxip_harvester/internal/apiserver"
	"dxip_harvester/internal/check"
	"dxip_harvester/internal/config"
	"dxip_harvester/internal/extract"
	"dxip_harvester/internal/globals"
	"dxip_harvester/internal/harvest"
	"dxip_harvester/internal/logger"
	"dxip_harvester/internal/plugin"
	"dxip_harvester/internal/requests"
	"dxip_harvester/internal/scheduler"
	"dxip_harvester/internal/store"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig("configs/config.toml")
	if err != nil {
		fmt.Println("配置加载失败:", err)
		os.Exit(1)
	}

	// 2. 初始化日志系统
	if err := logger.Setup(cfg.Log.Enabled, cfg.Log.LogDir); err != nil {
		fmt.Printf("初始化日志系统失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	// 设置IP汇总间隔
	if cfg.Log.IPSummaryInterval > 0 {
		logger.IPSummaryInterval = time.Duration(cfg.Log.IPSummaryInterval) * time.Minute
	}

	// 3. 初始化IP池
	recordStore := store.InitRecordStore(cfg.Storage, cfg.Source.Label)

	// 未配置定时采集时走一次性模式：抓一轮、落盘、打印、按结果退出
	if strings.TrimSpace(cfg.Task.PeriodicHarvest) == "" {
		runOnce(cfg, recordStore)
		return
	}

	// 4. 初始化候选通道
	globals.InitCandidateChannel(1000)

	// 5. 启动候选校验worker
	check.StartCandidateWorkers(cfg.Candidate.Workers, recordStore)

	// 6. 启动即执行一轮采集，之后交给定时任务
	go harvest.Cycle(&cfg, recordStore)
	scheduler.Start(cfg, recordStore)

	// 7. 启动API服务器（如果启用）
	if strings.ToLower(cfg.APIServer.Switch) == "open" {
		apiServer := apiserver.NewAPIServer(recordStore, cfg.Source.Label, cfg.APIServer.Token, cfg.APIServer.Port)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error("API服务器启动失败: %v", err)
			}
		}()
	}

	// 8. 初始化插件系统
	plugin.InitPluginSystem()

	// 9. 启动插件目录监控
	if err := plugin.WatchPluginFolder(cfg.Plugin, recordStore); err != nil {
		logger.Error("插件目录监控启动失败: %v", err)
	}

	// 10. 定期汇总IP池状态
	go func() {
		for {
			time.Sleep(logger.IPSummaryInterval / 2) // 使用一半的汇总间隔检查
			count, _ := recordStore.Len()
			logger.IPSummary(count, false)
		}
	}()

	logger.Info("dxip harvester 启动完成")

	select {} // 阻塞主线程
}

// 一次性采集，退出码: 0 成功，1 请求失败，2 无记录，3 写入失败
func runOnce(cfg config.Config, recordStore store.RecordStore) {
	page, err := requests.FetchPage(cfg.Source.URL, cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
	if err != nil {
		logger.Error("请求网页失败: %v", err)
		os.Exit(1)
	}

	records := extract.Extract(page, cfg.Source.Provider)
	if len(records) == 0 {
		logger.Warning("未找到%s线路的IP地址。可能页面结构已变或需要浏览器渲染。", cfg.Source.Provider)
		os.Exit(2)
	}

	if err := recordStore.Replace(records); err != nil {
		logger.Error("写入%s失败: %v", cfg.Storage.FileName, err)
		os.Exit(3)
	}

	for _, line := range extract.FormatRecords(records, cfg.Source.Label) {
		fmt.Println(line)
	}
}
