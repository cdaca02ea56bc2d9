package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// speedPattern 匹配"数值+单位"形式的下载速度，例如 12.3 MB/s、850KB/s、1.5 Gbps。
var speedPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(GB/s|MB/s|KB/s|Gbps|Mbps|Kbps)`)

// NormalizeSpeed 在任意文本中查找第一个速度表达式并换算为Mbps。
// 返回换算值、展示文本(原样保留数值和单位的大小写，两者之间固定单个空格)
// 以及是否识别成功。换算系数:
//
//	GB/s ×8000  MB/s ×8  KB/s ×0.008  Gbps ×1000  Mbps ×1  Kbps ×0.001
func NormalizeSpeed(text string) (float64, string, bool) {
	m := speedPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}

	var mbps float64
	switch strings.ToLower(m[2]) {
	case "gb/s":
		mbps = value * 8 * 1000
	case "mb/s":
		mbps = value * 8
	case "kb/s":
		mbps = value * 8 / 1000
	case "gbps":
		mbps = value * 1000
	case "mbps":
		mbps = value
	case "kbps":
		mbps = value / 1000
	}
	return mbps, m[1] + " " + m[2], true
}
