package extract

import (
	"reflect"
	"testing"
)

func TestExtract_ColumnMode(t *testing.T) {
	html := `<html><body>
<table>
<thead><tr><th>IP地址</th><th>线路</th><th>速度</th></tr></thead>
<tbody>
<tr><td>1.2.3.4</td><td>电信</td><td>12.3 MB/s</td></tr>
<tr><td>5.6.7.8</td><td>联通</td><td>20 MB/s</td></tr>
<tr><td>9.10.11.12</td><td>电信</td><td>500 Mbps</td></tr>
</tbody>
</table>
</body></html>`

	records := Extract(html, "电信")
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Address != "9.10.11.12" || records[0].Mbps != 500.0 {
		t.Errorf("records[0] = %+v, want 9.10.11.12 at 500.0", records[0])
	}
	if records[1].Address != "1.2.3.4" || records[1].Mbps != 98.4 {
		t.Errorf("records[1] = %+v, want 1.2.3.4 at 98.4", records[1])
	}
	if records[0].Display != "500 Mbps" {
		t.Errorf("records[0].Display = %q, want '500 Mbps'", records[0].Display)
	}
}

func TestExtract_FallbackRow(t *testing.T) {
	// No recognizable header, so the whole row text is matched.
	html := `<table>
<tr><td>电信 line sample</td><td>1.1.1.1 extra 2.2.2.2</td><td>850 KB/s</td></tr>
<tr><td>联通 line</td><td>3.3.3.3</td><td>900 KB/s</td></tr>
</table>`

	records := Extract(html, "电信")
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	for i, want := range []string{"1.1.1.1", "2.2.2.2"} {
		if records[i].Address != want {
			t.Errorf("records[%d].Address = %q, want %q", i, records[i].Address, want)
		}
		if records[i].Mbps != 6.8 {
			t.Errorf("records[%d].Mbps = %v, want 6.8", i, records[i].Mbps)
		}
		if records[i].Display != "850 KB/s" {
			t.Errorf("records[%d].Display = %q, want '850 KB/s'", i, records[i].Display)
		}
	}
}

func TestExtract_RealWorldColumnLayout(t *testing.T) {
	// Header carries extra columns, the three roles sit at 0/1/4.
	html := `<table>
<thead><tr><th>线路名称</th><th>优选IP</th><th>丢包</th><th>平均延迟</th><th>下载速度</th><th>更新时间</th></tr></thead>
<tbody>
<tr><td>电信</td><td>104.16.1.1</td><td>0%</td><td>45ms</td><td>15.2 MB/s</td><td>08-25</td></tr>
<tr><td>移动</td><td>104.16.2.2</td><td>0%</td><td>38ms</td><td>99.9 MB/s</td><td>08-25</td></tr>
<tr><td>电信</td><td>172.64.3.3</td><td>1%</td><td>60ms</td><td>1.5 Gbps</td><td>08-25</td></tr>
</tbody>
</table>`

	records := Extract(html, "电信")
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Address != "172.64.3.3" || records[0].Mbps != 1500.0 {
		t.Errorf("records[0] = %+v, want 172.64.3.3 at 1500.0", records[0])
	}
	if records[1].Address != "104.16.1.1" {
		t.Errorf("records[1].Address = %q, want 104.16.1.1", records[1].Address)
	}
}

func TestExtract_DedupFirstWins(t *testing.T) {
	html := `<table>
<thead><tr><th>IP</th><th>线路</th><th>速度</th></tr></thead>
<tbody>
<tr><td>1.2.3.4</td><td>电信</td><td>10 Mbps</td></tr>
<tr><td>1.2.3.4</td><td>电信</td><td>500 Mbps</td></tr>
</tbody>
</table>`

	records := Extract(html, "电信")
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Mbps != 10.0 {
		t.Errorf("records[0].Mbps = %v, want 10.0 (first occurrence wins)", records[0].Mbps)
	}
}

func TestExtract_StableOrderForEqualSpeeds(t *testing.T) {
	html := `<table>
<thead><tr><th>IP</th><th>线路</th><th>速度</th></tr></thead>
<tbody>
<tr><td>10.0.0.1</td><td>电信</td><td>5 MB/s</td></tr>
<tr><td>10.0.0.2</td><td>电信</td><td>5 MB/s</td></tr>
<tr><td>10.0.0.3</td><td>电信</td><td>80 MB/s</td></tr>
<tr><td>10.0.0.4</td><td>电信</td><td>5 MB/s</td></tr>
</tbody>
</table>`

	records := Extract(html, "电信")
	got := make([]string, 0, len(records))
	for _, r := range records {
		got = append(got, r.Address)
	}
	want := []string{"10.0.0.3", "10.0.0.1", "10.0.0.2", "10.0.0.4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestExtract_ExcludesOtherProviders(t *testing.T) {
	html := `<table>
<thead><tr><th>IP</th><th>线路</th><th>速度</th></tr></thead>
<tbody>
<tr><td>5.6.7.8</td><td>联通</td><td>20 MB/s</td></tr>
<tr><td>9.9.9.9</td><td>移动</td><td>30 MB/s</td></tr>
</tbody>
</table>`

	if records := Extract(html, "电信"); len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestExtract_InvalidOctetsSkipped(t *testing.T) {
	html := `<table>
<thead><tr><th>IP</th><th>线路</th><th>速度</th></tr></thead>
<tbody>
<tr><td>1.2.3.999</td><td>电信</td><td>10 MB/s</td></tr>
<tr><td>300.1.2.3</td><td>电信</td><td>10 MB/s</td></tr>
<tr><td>8.8.8.8</td><td>电信</td><td>10 MB/s</td></tr>
</tbody>
</table>`

	records := Extract(html, "电信")
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Address != "8.8.8.8" {
		t.Errorf("records[0].Address = %q, want 8.8.8.8", records[0].Address)
	}
}

func TestExtract_UnknownSpeed(t *testing.T) {
	html := `<table>
<thead><tr><th>IP</th><th>线路</th><th>速度</th></tr></thead>
<tbody>
<tr><td>1.2.3.4</td><td>电信</td><td>超时</td></tr>
</tbody>
</table>`

	records := Extract(html, "电信")
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Mbps != 0.0 || records[0].Display != UnknownSpeed {
		t.Errorf("records[0] = %+v, want mbps 0.0 and display %q", records[0], UnknownSpeed)
	}
}

func TestExtract_FirstRowHeaderWithoutThead(t *testing.T) {
	// The header row sits inside the parser-inserted tbody and must not be
	// treated as a data row.
	html := `<table>
<tr><th>IP地址</th><th>线路</th><th>速度</th></tr>
<tr><td>1.2.3.4</td><td>电信</td><td>9 MB/s</td></tr>
</table>`

	records := Extract(html, "电信")
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Address != "1.2.3.4" || records[0].Mbps != 72.0 {
		t.Errorf("records[0] = %+v, want 1.2.3.4 at 72.0", records[0])
	}
}

func TestExtract_ConsumedHeaderNeverData(t *testing.T) {
	// Incomplete header mapping drops the table into fallback mode; the row
	// consumed as header must not be re-read as data even though its text
	// carries the marker and a dotted quad.
	html := `<table>
<tr><th>电信线路 99.99.99.99</th><th>速度</th></tr>
<tr><td>电信 1.2.3.4</td><td>7 MB/s</td></tr>
</table>`

	records := Extract(html, "电信")
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Address != "1.2.3.4" {
		t.Errorf("records[0].Address = %q, want 1.2.3.4", records[0].Address)
	}
}

func TestExtract_HeaderCellsInBodyRows(t *testing.T) {
	// Some pages repeat th cells inside body rows; they count as ordinary cells.
	html := `<table>
<thead><tr><th>IP</th><th>线路</th><th>速度</th></tr></thead>
<tbody>
<tr><th>1.2.3.4</th><td>电信</td><td>16 MB/s</td></tr>
</tbody>
</table>`

	records := Extract(html, "电信")
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Address != "1.2.3.4" || records[0].Mbps != 128.0 {
		t.Errorf("records[0] = %+v, want 1.2.3.4 at 128.0", records[0])
	}
}

func TestExtract_RaggedRowSkipped(t *testing.T) {
	html := `<table>
<thead><tr><th>IP</th><th>线路</th><th>速度</th></tr></thead>
<tbody>
<tr><td>1.2.3.4</td><td>电信</td></tr>
<tr><td>5.6.7.8</td><td>电信</td><td>3 MB/s</td></tr>
</tbody>
</table>`

	records := Extract(html, "电信")
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Address != "5.6.7.8" {
		t.Errorf("records[0].Address = %q, want 5.6.7.8", records[0].Address)
	}
}

func TestExtract_MultipleTables(t *testing.T) {
	html := `<div>
<table>
<thead><tr><th>IP</th><th>线路</th><th>速度</th></tr></thead>
<tbody><tr><td>1.1.1.1</td><td>电信</td><td>2 MB/s</td></tr></tbody>
</table>
<table>
<thead><tr><th>IP</th><th>线路</th><th>速度</th></tr></thead>
<tbody><tr><td>2.2.2.2</td><td>电信</td><td>4 MB/s</td></tr></tbody>
</table>
</div>`

	records := Extract(html, "电信")
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Address != "2.2.2.2" || records[1].Address != "1.1.1.1" {
		t.Errorf("order = [%s %s], want [2.2.2.2 1.1.1.1]",
			records[0].Address, records[1].Address)
	}
}

func TestExtract_MarkupInsideCells(t *testing.T) {
	// Inline tags inside cells must not break marker or speed detection.
	html := `<table>
<thead><tr><th>IP</th><th>线路</th><th>速度</th></tr></thead>
<tbody>
<tr><td><a href="#">1.2.3.4</a></td><td><b>电</b><b>信</b></td><td><span>25</span> <span>MB/s</span></td></tr>
</tbody>
</table>`

	records := Extract(html, "电信")
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Mbps != 200.0 {
		t.Errorf("records[0].Mbps = %v, want 200.0", records[0].Mbps)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	html := `<table>
<thead><tr><th>IP</th><th>线路</th><th>速度</th></tr></thead>
<tbody>
<tr><td>1.2.3.4</td><td>电信</td><td>12.3 MB/s</td></tr>
<tr><td>9.10.11.12</td><td>电信</td><td>500 Mbps</td></tr>
</tbody>
</table>`

	first := Extract(html, "电信")
	second := Extract(html, "电信")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated runs differ: %v vs %v", first, second)
	}
}

func TestExtract_NoTables(t *testing.T) {
	if records := Extract("<div>电信 1.2.3.4 10 MB/s</div>", "电信"); len(records) != 0 {
		t.Errorf("len(records) = %d, want 0 without tables", len(records))
	}
	if records := Extract("plain text, no markup", "电信"); len(records) != 0 {
		t.Errorf("len(records) = %d, want 0 for non-HTML input", len(records))
	}
	if records := Extract("", "电信"); len(records) != 0 {
		t.Errorf("len(records) = %d, want 0 for empty input", len(records))
	}
}

func TestValidAddress(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"0.0.0.0", true},
		{"255.255.255.255", true},
		{"104.16.1.1", true},
		{"256.1.1.1", false},
		{"1.2.3", false},
		{"1.2.3.4.5", false},
		{"1.2.3.abc", false},
		{"1.2.3.1234", false},
		{"", false},
		{"1.2.3.-4", false},
	}
	for _, c := range cases {
		if got := ValidAddress(c.in); got != c.want {
			t.Errorf("ValidAddress(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNewRecord(t *testing.T) {
	r := NewRecord("1.2.3.4", "12.3 MB/s")
	if r.Mbps != 98.4 || r.Display != "12.3 MB/s" {
		t.Errorf("NewRecord = %+v, want 98.4 / '12.3 MB/s'", r)
	}

	r = NewRecord("1.2.3.4", "")
	if r.Mbps != 0.0 || r.Display != UnknownSpeed {
		t.Errorf("NewRecord with empty speed = %+v, want 0.0 / %q", r, UnknownSpeed)
	}

	r = NewRecord("1.2.3.4", "测速失败")
	if r.Display != UnknownSpeed {
		t.Errorf("NewRecord.Display = %q, want %q", r.Display, UnknownSpeed)
	}
}
