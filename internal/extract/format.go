package extract

import "fmt"

// FormatRecord 渲染单条输出行，形如 "104.16.1.1  Cloudflare-12.3 MB/s"：
// 地址与标签之间固定两个空格，标签与速度展示文本以连字符相连。
func FormatRecord(r Record, label string) string {
	return fmt.Sprintf("%s  %s-%s", r.Address, label, r.Display)
}

// FormatRecords 按输入顺序渲染全部记录。
func FormatRecords(records []Record, label string) []string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, FormatRecord(r, label))
	}
	return lines
}
