// config.go
// 配置加载与类型定义
package config

import (
	"errors"
	"io/fs"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// SourceConfig 采集源配置
type SourceConfig struct {
	URL      string `toml:"url"`
	Provider string `toml:"provider"`
	Label    string `toml:"label"`
}

// FetchConfig 网页抓取配置
type FetchConfig struct {
	// 单次请求超时（秒）
	Timeout   int    `toml:"timeout"`
	UserAgent string `toml:"userAgent"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type          string `toml:"type"`
	RedisHost     string `toml:"redis_host"`
	RedisPort     int    `toml:"redis_port"`
	RedisPassword string `toml:"redis_password"`
	FileName      string `toml:"file_name"`
}

// TaskConfig 定时任务配置
// periodicHarvest 为空时程序单次运行后退出
type TaskConfig struct {
	PeriodicHarvest string `toml:"periodicHarvest"`
}

// CandidateConfig 插件候选校验配置
type CandidateConfig struct {
	Workers int `toml:"workers"`
}

// LogConfig 日志配置
type LogConfig struct {
	Enabled bool   `toml:"enabled"`
	LogDir  string `toml:"log_dir"`
	// IP汇总间隔（分钟）
	IPSummaryInterval int `toml:"ip_summary_interval"`
}

// PluginConfig 插件相关配置
// PluginFolder 插件目录
// toml: plugin_folder
// 示例: plugin_folder = "plugins"
type PluginConfig struct {
	PluginFolder string `toml:"plugin_folder"`
}

// APIServerConfig API服务器配置
type APIServerConfig struct {
	Switch string `toml:"switch"`
	Token  string `toml:"token"`
	Port   int    `toml:"port"`
}

// Config 是全局配置结构体
type Config struct {
	Source    SourceConfig    `toml:"source"`
	Fetch     FetchConfig     `toml:"fetch"`
	Task      TaskConfig      `toml:"task"`
	Candidate CandidateConfig `toml:"candidate"`
	Storage   StorageConfig   `toml:"storage"`
	Plugin    PluginConfig    `toml:"plugin"`
	Log       LogConfig       `toml:"log"`
	APIServer APIServerConfig `toml:"apiserver"`
}

// DefaultConfig 返回零配置运行时的默认值：抓取uouin电信线路页，
// 单次运行，结果写入dx.txt。
func DefaultConfig() Config {
	return Config{
		Source: SourceConfig{
			URL:      "https://api.uouin.com/cloudflare.html",
			Provider: "电信",
			Label:    "Cloudflare",
		},
		Fetch: FetchConfig{
			Timeout: 20,
		},
		Storage: StorageConfig{
			Type:     "file",
			FileName: "dx.txt",
		},
		Candidate: CandidateConfig{
			Workers: 2,
		},
		Plugin: PluginConfig{
			PluginFolder: "plugins",
		},
		Log: LogConfig{
			LogDir:            "logs",
			IPSummaryInterval: 5,
		},
		APIServer: APIServerConfig{
			Switch: "close",
			Port:   8889,
		},
	}
}

// LoadConfig 负责加载 TOML 配置文件。文件不存在时直接使用内置默认配置，
// 文件存在时在默认值之上按文件内容覆盖。
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	// 读取并解析 TOML 文件
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return config, err
	}

	err = toml.Unmarshal(data, &config)

	return config, err
}
