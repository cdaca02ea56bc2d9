// Package extract 从CDN状态页的HTML表格中提取指定线路的IP记录。
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Record 一条候选记录：IPv4地址、归一化下载速度(Mbps)和速度展示文本。
type Record struct {
	Address string  `json:"address"`
	Mbps    float64 `json:"mbps"`
	Display string  `json:"display"`
}

// UnknownSpeed 速度无法识别时的展示占位文本。
const UnknownSpeed = "未知"

var ipPattern = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)

// ValidAddress 校验点分IPv4地址格式，每段必须是不超过3位的数字且在0-255之间。
func ValidAddress(ip string) bool {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if len(part) == 0 || len(part) > 3 {
			return false
		}
		n := 0
		for _, ch := range part {
			if ch < '0' || ch > '9' {
				return false
			}
			n = n*10 + int(ch-'0')
		}
		if n > 255 {
			return false
		}
	}
	return true
}

// NewRecord 由地址和速度原文构造记录。速度原文中识别不出速度表达式时，
// 展示文本使用占位文本，并以0.0参与排序。
func NewRecord(address, speedText string) Record {
	mbps, display, ok := NormalizeSpeed(speedText)
	if !ok {
		return Record{Address: address, Mbps: 0, Display: UnknownSpeed}
	}
	return Record{Address: address, Mbps: mbps, Display: display}
}

// Extract 解析页面中的全部表格，提取线路标记为marker的IP记录。
//
// 每张表优先通过表头识别地址/线路/速度三列并按列提取；表头不完整时
// 退化为整行文本匹配：整行包含线路标记即提取行内全部合法IP，行文本
// 同时作为速度识别来源。结果按地址去重(先出现者保留)，再按Mbps降序
// 稳定排序。页面解析失败或没有符合条件的行时返回空结果，不视为错误。
func Extract(page, marker string) []Record {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var records []Record
	emit := func(address, speedText string) {
		if seen[address] {
			return
		}
		seen[address] = true
		records = append(records, NewRecord(address, speedText))
	}

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		extractTable(table, marker, emit)
	})

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Mbps > records[j].Mbps
	})
	return records
}

// extractTable 处理单张表格，按表头完整与否选择按列提取或整行匹配。
func extractTable(table *goquery.Selection, marker string, emit func(address, speedText string)) {
	headerCells, headerRow := findHeader(table)

	cols := columnMap{address: -1, provider: -1, speed: -1}
	if headerCells != nil {
		cols = classifyHeader(cellTexts(headerCells))
	}

	rows := bodyRows(table, headerRow)
	if cols.complete() {
		for _, row := range rows {
			extractByColumns(row, cols, marker, emit)
		}
		return
	}
	for _, row := range rows {
		extractRowText(row, marker, emit)
	}
}

// findHeader 定位表头：优先<thead>内的首行，否则在表格首行含<th>时使用首行。
// 返回表头单元格与被占用的表头行，未找到时均为nil。
func findHeader(table *goquery.Selection) (*goquery.Selection, *goquery.Selection) {
	if thead := table.Find("thead").First(); thead.Length() > 0 {
		row := thead.Find("tr").First()
		if row.Length() > 0 {
			if cells := row.Find("th, td"); cells.Length() > 0 {
				return cells, row
			}
		}
	}
	first := table.Find("tr").First()
	if first.Length() > 0 && first.Find("th").Length() > 0 {
		if cells := first.Find("th, td"); cells.Length() > 0 {
			return cells, first
		}
	}
	return nil, nil
}

// bodyRows 收集数据行：跳过<thead>内的行和被占用的表头行。HTML5解析器
// 会为散落的<tr>自动补<tbody>，因此首行表头也可能出现在<tbody>内，需要
// 按节点排除而不是按章节排除。
func bodyRows(table *goquery.Selection, headerRow *goquery.Selection) []*goquery.Selection {
	var headerNode *html.Node
	if headerRow != nil && headerRow.Length() > 0 {
		headerNode = headerRow.Get(0)
	}
	var rows []*goquery.Selection
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.Closest("thead").Length() > 0 {
			return
		}
		if headerNode != nil && row.Get(0) == headerNode {
			return
		}
		rows = append(rows, row)
	})
	return rows
}

// extractByColumns 按列映射提取一行。线路列必须包含marker，地址列取第一个
// 合法IP，单元格数量不足以覆盖全部列下标时整行跳过。
func extractByColumns(row *goquery.Selection, cols columnMap, marker string, emit func(address, speedText string)) {
	cells := row.Find("th, td")
	if cells.Length() <= cols.max() {
		return
	}
	if !strings.Contains(joinText(cells.Eq(cols.provider), ""), marker) {
		return
	}
	addr := ipPattern.FindString(joinText(cells.Eq(cols.address), " "))
	if addr == "" || !ValidAddress(addr) {
		return
	}
	emit(addr, joinText(cells.Eq(cols.speed), " "))
}

// extractRowText 整行文本模式：行文本包含marker时提取行内全部合法IP，
// 同一行的IP共享同一份速度识别结果。
func extractRowText(row *goquery.Selection, marker string, emit func(address, speedText string)) {
	cells := row.Find("th, td")
	if cells.Length() == 0 {
		return
	}
	rowText := strings.Join(cellTexts(cells), " ")
	if !strings.Contains(rowText, marker) {
		return
	}
	for _, addr := range ipPattern.FindAllString(rowText, -1) {
		if ValidAddress(addr) {
			emit(addr, rowText)
		}
	}
}

// cellTexts 逐个单元格取纯文本，单元格内部的文本节点直接拼接。
func cellTexts(cells *goquery.Selection) []string {
	texts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, joinText(cell, ""))
	})
	return texts
}

// joinText 深度收集sel下的全部文本节点，每个节点去除首尾空白，丢弃
// 纯空白节点，再以sep拼接。
func joinText(sel *goquery.Selection, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}
