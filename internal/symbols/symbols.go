package symbols

import (
	"reflect"

	"dxip_harvester/internal/logger"
	"dxip_harvester/internal/requests"
	"github.com/traefik/yaegi/stdlib"
)

// 全局符号注册表
var Symbols = map[string]map[string]reflect.Value{}

func init() {
	// 加载标准库符号
	for pkg, symbols := range map[string]string{
		"os/exec": "os/exec",
	} {
		Symbols[pkg] = stdlib.Symbols[symbols]
	}

	// 宿主日志包，插件与主程序共用一套日志
	Symbols["dxip_harvester/internal/logger/logger"] = map[string]reflect.Value{
		"Info":    reflect.ValueOf(logger.Info),
		"Error":   reflect.ValueOf(logger.Error),
		"Debug":   reflect.ValueOf(logger.Debug),
		"Warning": reflect.ValueOf(logger.Warning),
		"Success": reflect.ValueOf(logger.Success),
		"Plugin":  reflect.ValueOf(logger.Plugin),
	}

	// 宿主HTTP客户端，插件不必自带http栈
	Symbols["dxip_harvester/internal/requests/requests"] = map[string]reflect.Value{
		"Get":            reflect.ValueOf(requests.Get),
		"Post":           reflect.ValueOf(requests.Post),
		"FetchPage":      reflect.ValueOf(requests.FetchPage),
		"BrowserHeaders": reflect.ValueOf(requests.BrowserHeaders),
		"RequestOptions": reflect.ValueOf((*requests.RequestOptions)(nil)),
		"Response":       reflect.ValueOf((*requests.Response)(nil)),
	}
}
