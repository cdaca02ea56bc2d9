//go:build ignore

// CloudFlareYes优选IP API插件 - 使用requests API的函数式实现
package main

import (
	"encoding/json"
	"fmt"

	"dxip_harvester/internal/logger"
	"dxip_harvester/internal/requests"
)

// 插件配置
var config = struct {
	Switch   string
	APIURL   string
	Key      string
	Line     string
	Periodic string
}{
	Switch:   "open",
	APIURL:   "https://api.hostmonit.com/get_optimization_ip",
	Key:      "iDetkOys",
	Line:     "CT", // CT=电信 CU=联通 CM=移动
	Periodic: "*/30 * * * *",
}

// API响应结构
type OptimizationResponse struct {
	Code int `json:"code"`
	Info []struct {
		IP    string  `json:"ip"`
		Line  string  `json:"line"`
		Speed float64 `json:"speed"`
	} `json:"info"`
}

// PluginName 返回插件名称
func PluginName() string {
	return "CloudFlareYes优选IP API(requests版本)"
}

// PluginCronSpec 返回定时任务表达式
func PluginCronSpec() string {
	return config.Periodic
}

// PluginFetchRecords 抓取候选IP
func PluginFetchRecords(out chan<- string) error {
	if config.Switch != "open" {
		logger.Plugin("CloudFlareYes插件未开启")
		return nil
	}

	logger.Plugin("开始请求CloudFlareYes优选IP API")

	options := requests.RequestOptions{
		JSON:    map[string]interface{}{"key": config.Key, "type": "v4"},
		Timeout: 30,
	}

	resp, err := requests.Post(config.APIURL, options)
	if err != nil {
		logger.Error("请求CloudFlareYes API失败: %v", err)
		return err
	}

	if resp.StatusCode != 200 {
		logger.Error("CloudFlareYes API返回错误状态码: %d", resp.StatusCode)
		return fmt.Errorf("HTTP状态码: %d", resp.StatusCode)
	}

	var result OptimizationResponse
	if err := json.Unmarshal(resp.Content, &result); err != nil {
		logger.Error("解析CloudFlareYes响应失败: %v", err)
		return err
	}

	if result.Code != 200 {
		logger.Error("CloudFlareYes API业务码异常: %d", result.Code)
		return fmt.Errorf("API业务码: %d", result.Code)
	}

	count := 0
	for _, item := range result.Info {
		if item.Line != config.Line {
			continue
		}

		// API的speed字段单位为MB/s，缺失时只投递地址
		if item.Speed > 0 {
			out <- fmt.Sprintf("%s %.1f MB/s", item.IP, item.Speed)
		} else {
			out <- item.IP
		}
		count++
	}

	logger.Success("CloudFlareYes API共提交 %d 个%s线路候选", count, config.Line)
	return nil
}

// 导出插件变量
var Plugin = map[string]interface{}{
	"Name":         PluginName,
	"CronSpec":     PluginCronSpec,
	"FetchRecords": PluginFetchRecords,
}
