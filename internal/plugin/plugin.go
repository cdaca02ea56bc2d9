package plugin

import (
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"sync"
	"time"

	"dxip_harvester/internal/globals"
	"dxip_harvester/internal/logger"
	"dxip_harvester/internal/store"
	"dxip_harvester/internal/symbols"
	"github.com/robfig/cron/v3"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// SourceProvider 是所有IP来源插件的统一接口
// out: 通过通道返回候选记录（"地址 速度文本"格式的字符串）
type SourceProvider interface {
	Name() string                     // 返回来源名称
	CronSpec() string                 // 返回定时执行表达式
	FetchRecords(chan<- string) error // 抓取候选IP并发送到通道
}

// PluginEntry 记录已加载插件的信息
// Provider: 插件实例，Interp: yaegi 解释器
// Path: 插件文件路径
// CronID: 定时任务ID（可选）
type PluginEntry struct {
	Provider SourceProvider
	Interp   *interp.Interpreter
	Path     string
	CronID   string
}

// 插件注册表，key为插件名
var pluginRegistry = make(map[string]*PluginEntry)
var pluginMu sync.Mutex
var pluginCron = cron.New()

// LoadPlugin 加载函数式插件文件，返回 SourceProvider 实例
func LoadPlugin(path string) (SourceProvider, *interp.Interpreter, error) {
	// 设置yaegi的工作选项，特别是在Windows下
	opts := interp.Options{
		GoPath: "",         // 不使用GOPATH
		Env:    []string{}, // 清空环境变量，避免路径冲突
	}

	i := interp.New(opts)

	// 注册标准库符号
	i.Use(stdlib.Symbols)

	// 使用symbols包中的符号表
	i.Use(symbols.Symbols)

	logger.Debug("加载函数式插件: %s", path)
	_, err := i.EvalPath(path)
	if err != nil {
		logger.Debug("插件文件评估失败: %v", err)
		return nil, nil, err
	}

	// 获取插件变量 - 只支持函数映射格式
	v, err := i.Eval("main.Plugin")
	if err != nil {
		logger.Debug("获取main.Plugin失败: %v", err)
		return nil, nil, fmt.Errorf("插件必须导出 var Plugin = map[string]interface{}")
	}

	pluginVal := v.Interface()

	// 只支持函数映射格式
	pluginMap, ok := pluginVal.(map[string]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("插件必须使用函数映射格式: var Plugin = map[string]interface{}")
	}

	// 检查必需的函数是否存在
	nameFunc, hasName := pluginMap["Name"]
	cronFunc, hasCron := pluginMap["CronSpec"]
	fetchFunc, hasFetch := pluginMap["FetchRecords"]

	if !hasName || !hasCron || !hasFetch {
		return nil, nil, fmt.Errorf("插件缺少必需函数: Name=%v, CronSpec=%v, FetchRecords=%v",
			hasName, hasCron, hasFetch)
	}

	// 创建函数适配器
	adapter := &functionMapAdapter{
		nameFunc:  reflect.ValueOf(nameFunc),
		cronFunc:  reflect.ValueOf(cronFunc),
		fetchFunc: reflect.ValueOf(fetchFunc),
	}

	logger.Debug("函数式插件加载成功: %s", adapter.Name())
	return adapter, i, nil
}

// 函数映射适配器 - 将函数映射转换为SourceProvider接口
type functionMapAdapter struct {
	nameFunc  reflect.Value
	cronFunc  reflect.Value
	fetchFunc reflect.Value
}

func (a *functionMapAdapter) Name() string {
	result := a.nameFunc.Call(nil)
	return result[0].String()
}

func (a *functionMapAdapter) CronSpec() string {
	result := a.cronFunc.Call(nil)
	return result[0].String()
}

func (a *functionMapAdapter) FetchRecords(out chan<- string) error {
	args := []reflect.Value{reflect.ValueOf(out)}
	result := a.fetchFunc.Call(args)
	if result[0].IsNil() {
		return nil
	}
	return result[0].Interface().(error)
}

// 执行一次插件抓取：候选先进有缓冲通道，再转发到全局校验队列
func collectFrom(name string, provider SourceProvider, recordStore store.RecordStore) {
	beforeCount, _ := recordStore.Len()
	logger.Plugin("开始执行 %s 插件的IP收集任务，执行前IP池有 %d 条记录", name, beforeCount)

	out := make(chan string, 1000)

	go func() {
		defer close(out)
		if err := provider.FetchRecords(out); err != nil {
			logger.Error("%s 插件执行失败: %v", name, err)
		}
	}()

	count := 0
	for candidate := range out {
		globals.CandidateChan <- candidate
		count++
	}

	logger.Plugin("%s 插件已提交 %d 个候选到校验队列", name, count)
}

// ReloadPlugin 重新加载插件（文件变更时调用）
func ReloadPlugin(path string, recordStore store.RecordStore) error {
	provider, interpreter, err := LoadPlugin(path)
	if err != nil {
		return err
	}
	name := provider.Name()

	pluginMu.Lock()
	defer pluginMu.Unlock()

	// 如果插件已存在，停止其定时任务并清理资源
	if existingEntry, exists := pluginRegistry[name]; exists {
		logger.Plugin("插件 %s 已存在，正在替换", name)
		if existingEntry.Interp != nil {
			existingEntry.Interp = nil
		}
	}

	entry := &PluginEntry{
		Provider: provider,
		Interp:   interpreter,
		Path:     path,
	}

	// 直接替换插件
	pluginRegistry[name] = entry

	// 只为这个插件启动新的定时任务
	spec := provider.CronSpec()
	if spec != "" {
		cronID, err := pluginCron.AddFunc(spec, func() {
			collectFrom(name, provider, recordStore)
		})
		if err == nil {
			entry.CronID = fmt.Sprintf("%d", cronID)
			logger.Plugin("%s 定时任务已注册: %s", name, spec)
		} else {
			logger.Error("%s 定时任务注册失败: %v", name, err)
		}
	}

	logger.Plugin("%s 加载成功", name)

	// 立即执行一次该插件的抓取任务
	go func() {
		logger.Plugin("立即执行一次 %s 插件的IP收集任务", name)
		collectFrom(name, provider, recordStore)
	}()

	return nil
}

// RemovePluginByPath 根据文件路径移除插件
func RemovePluginByPath(path string) {
	path = filepath.Clean(path)
	logger.Plugin("尝试移除插件: %s", filepath.Base(path))

	pluginMu.Lock()
	defer pluginMu.Unlock()

	var targetName string
	var targetEntry *PluginEntry

	// 查找匹配路径的插件
	for name, entry := range pluginRegistry {
		entryPath := filepath.Clean(entry.Path)
		if entryPath == path {
			targetName = name
			targetEntry = entry
			break
		}
	}

	// 如果没有精确匹配路径，尝试匹配文件名
	if targetName == "" {
		filename := filepath.Base(path)
		for name, entry := range pluginRegistry {
			entryFilename := filepath.Base(entry.Path)
			if entryFilename == filename {
				targetName = name
				targetEntry = entry
				logger.Plugin("按文件名匹配到插件: %s (路径: %s)", name, entry.Path)
				break
			}
		}
	}

	if targetName == "" {
		logger.Plugin("未找到要移除的插件: %s", filepath.Base(path))
		return
	}

	// 停止该插件的定时任务
	if targetEntry.CronID != "" {
		logger.Debug("停止插件 %s 的定时任务", targetName)
		targetEntry.CronID = ""
	}

	// 清理解释器资源
	if targetEntry.Interp != nil {
		targetEntry.Interp = nil
	}

	// 从注册表中移除
	delete(pluginRegistry, targetName)
	logger.Plugin("成功移除插件: %s", targetName)

	// 触发垃圾回收
	go func() {
		time.Sleep(100 * time.Millisecond)
		runtime.GC()
	}()
}

// InitPluginSystem 初始化插件系统
func InitPluginSystem() {
	// 启动全局cron调度器
	pluginCron.Start()

	logger.Info("插件系统初始化完成")
}
