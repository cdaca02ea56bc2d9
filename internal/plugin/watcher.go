package plugin

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"dxip_harvester/internal/config"
	"dxip_harvester/internal/file"
	"dxip_harvester/internal/logger"
	"dxip_harvester/internal/store"
	"github.com/fsnotify/fsnotify"
)

// 用于防止过于频繁的文件变更事件触发
var lastEvents = struct {
	sync.Mutex
	timestamps map[string]time.Time
}{
	timestamps: make(map[string]time.Time),
}

// 事件节流，确保同一个文件的事件处理间隔至少为指定的时间
func shouldProcessEvent(path string, minInterval time.Duration) bool {
	lastEvents.Lock()
	defer lastEvents.Unlock()

	now := time.Now()
	lastTime, exists := lastEvents.timestamps[path]

	if !exists || now.Sub(lastTime) > minInterval {
		lastEvents.timestamps[path] = now
		return true
	}

	return false
}

// 启动插件目录监控
func WatchPluginFolder(cfg config.PluginConfig, recordStore store.RecordStore) error {
	pluginDir := cfg.PluginFolder

	// 创建插件目录(如果不存在)
	if _, err := os.Stat(pluginDir); os.IsNotExist(err) {
		logger.Plugin("插件目录不存在，创建目录: %s", pluginDir)
		if err := file.CreateFolder(pluginDir); err != nil {
			logger.Error("创建插件目录失败: %v", err)
		}
	}

	logger.Plugin("开始监控插件目录: %s", pluginDir)

	// 启动时先加载所有已有插件
	LoadAllPluginsOnStart(pluginDir, recordStore)

	// 启动文件监控
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	err = watcher.Add(pluginDir)
	if err != nil {
		watcher.Close()
		return err
	}

	logger.Plugin("文件监控已启动，将监控插件文件的变化")

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				// 只处理Go文件
				if !strings.HasSuffix(event.Name, ".go") {
					continue
				}

				// 事件节流，防止过于频繁的处理
				if !shouldProcessEvent(event.Name, 2*time.Second) {
					continue
				}

				switch {
				case event.Op&fsnotify.Create == fsnotify.Create:
					logger.Plugin("检测到新增文件: %s", filepath.Base(event.Name))
					if err := ReloadPlugin(event.Name, recordStore); err != nil {
						logger.Error("新增插件加载失败: %v", err)
					}

				case event.Op&fsnotify.Write == fsnotify.Write:
					logger.Plugin("检测到文件修改: %s", filepath.Base(event.Name))
					if err := ReloadPlugin(event.Name, recordStore); err != nil {
						logger.Error("修改插件重载失败: %v", err)
					}

				case event.Op&fsnotify.Remove == fsnotify.Remove,
					event.Op&fsnotify.Rename == fsnotify.Rename:
					logger.Plugin("检测到文件删除: %s", filepath.Base(event.Name))
					RemovePluginByPath(event.Name)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("插件监控错误: %v", err)
			}
		}
	}()
	return nil
}

// 启动时加载所有插件
func LoadAllPluginsOnStart(pluginDir string, recordStore store.RecordStore) {
	files, err := os.ReadDir(pluginDir)
	if err != nil {
		logger.Error("启动时读取插件目录失败: %v", err)
		return
	}

	goFiles := 0
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".go") {
			goFiles++
		}
	}

	if goFiles == 0 {
		logger.Plugin("插件目录中未发现Go文件: %s", pluginDir)
		return
	}

	logger.Plugin("启动时加载插件目录: %s，发现 %d 个Go文件", pluginDir, goFiles)

	// 清空现有插件注册表，确保干净启动
	pluginMu.Lock()
	pluginRegistry = make(map[string]*PluginEntry)
	pluginMu.Unlock()

	successCount := 0
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".go") {
			fullPath := filepath.Join(pluginDir, f.Name())

			if err := ReloadPlugin(fullPath, recordStore); err != nil {
				logger.Error("启动加载 %s 失败: %v", f.Name(), err)
			} else {
				successCount++
			}

			// 记录插件文件的最后修改时间
			if fileInfo, err := os.Stat(fullPath); err == nil {
				lastEvents.Lock()
				lastEvents.timestamps[fullPath] = fileInfo.ModTime()
				lastEvents.Unlock()
			}
		}
	}

	logger.Plugin("启动时成功加载 %d/%d 个插件", successCount, goFiles)
}
