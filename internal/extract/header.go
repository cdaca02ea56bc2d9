package extract

import "strings"

// columnMap 表头三个角色列的下标，-1表示未识别。
type columnMap struct {
	address  int
	provider int
	speed    int
}

func (m columnMap) complete() bool {
	return m.address >= 0 && m.provider >= 0 && m.speed >= 0
}

func (m columnMap) max() int {
	n := m.address
	if m.provider > n {
		n = m.provider
	}
	if m.speed > n {
		n = m.speed
	}
	return n
}

// headerRules 表头角色识别规则表。地址列认"ip"(不分大小写)或"地址"，
// 线路列认"线路"/"运营商"/"isp"，速度列认"速度"/"speed"。
var headerRules = []struct {
	col   func(*columnMap) *int
	match func(text, lower string) bool
}{
	{
		col: func(m *columnMap) *int { return &m.address },
		match: func(text, lower string) bool {
			return strings.Contains(lower, "ip") || strings.Contains(text, "地址")
		},
	},
	{
		col: func(m *columnMap) *int { return &m.provider },
		match: func(text, lower string) bool {
			return strings.Contains(text, "线路") || strings.Contains(text, "运营商") || strings.Contains(lower, "isp")
		},
	},
	{
		col: func(m *columnMap) *int { return &m.speed },
		match: func(text, lower string) bool {
			return strings.Contains(text, "速度") || strings.Contains(lower, "speed")
		},
	},
}

// classifyHeader 根据表头单元格文本识别三个角色列的位置。每个角色取第一个
// 命中的单元格，命中后不再改写；角色之间互不影响，同一单元格可以同时承担
// 多个角色。
func classifyHeader(headers []string) columnMap {
	m := columnMap{address: -1, provider: -1, speed: -1}
	for idx, text := range headers {
		lower := strings.ToLower(text)
		for _, rule := range headerRules {
			col := rule.col(&m)
			if *col >= 0 {
				continue
			}
			if rule.match(text, lower) {
				*col = idx
			}
		}
	}
	return m
}
