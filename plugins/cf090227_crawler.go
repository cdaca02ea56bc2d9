//go:build ignore

// CF线路表爬虫插件 - 使用requests API的函数式实现
package main

import (
	"fmt"
	"regexp"
	"strings"

	"dxip_harvester/internal/logger"
	"dxip_harvester/internal/requests"
)

// 插件配置
var config = struct {
	Switch    string
	PageURL   string
	Marker    string
	UserAgent string
	Timeout   int
	Periodic  string
}{
	Switch:    "open",
	PageURL:   "https://cf.090227.xyz/",
	Marker:    "电信",
	UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36",
	Timeout:   20,
	Periodic:  "*/30 * * * *", // 每30分钟执行一次
}

var (
	rowPattern   = regexp.MustCompile(`(?s)<tr[^>]*>(.*?)</tr>`)
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
	ipPattern    = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	speedPattern = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*(?:GB/s|MB/s|KB/s|Gbps|Mbps|Kbps)`)
)

// PluginName 返回插件名称
func PluginName() string {
	return "CF线路表爬虫(requests版本)"
}

// PluginCronSpec 返回定时任务表达式
func PluginCronSpec() string {
	return config.Periodic
}

// PluginFetchRecords 抓取候选IP
func PluginFetchRecords(out chan<- string) error {
	if config.Switch != "open" {
		logger.Plugin("CF线路表插件未开启")
		return nil
	}

	logger.Plugin("开始抓取CF线路表: %s", config.PageURL)

	page, err := requests.FetchPage(config.PageURL, config.Timeout, config.UserAgent)
	if err != nil {
		logger.Error("抓取CF线路表失败: %v", err)
		return err
	}

	count := 0
	for _, m := range rowPattern.FindAllStringSubmatch(page, -1) {
		rowText := strings.TrimSpace(tagPattern.ReplaceAllString(m[1], " "))
		if !strings.Contains(rowText, config.Marker) {
			continue
		}

		ip := ipPattern.FindString(rowText)
		if ip == "" {
			continue
		}

		if speed := speedPattern.FindString(rowText); speed != "" {
			out <- fmt.Sprintf("%s %s", ip, speed)
		} else {
			out <- ip
		}
		count++
		logger.Debug("CF线路表候选: %s", ip)
	}

	logger.Success("CF线路表抓取完成，共提交 %d 个%s候选", count, config.Marker)
	return nil
}

// 导出插件变量
var Plugin = map[string]interface{}{
	"Name":         PluginName,
	"CronSpec":     PluginCronSpec,
	"FetchRecords": PluginFetchRecords,
}
