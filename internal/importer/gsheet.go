package importer

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"deckmate/internal/parser"
)

// GoogleSheetImporter 共享表格适配器
// 不走 Sheets API：把分享链接改写为 CSV 导出端点取回字节，
// 之后与本地 CSV 走同一套行列提取
type GoogleSheetImporter struct {
	client *http.Client
	csv    *CSVImporter
}

// NewGoogleSheetImporter 创建共享表格适配器
func NewGoogleSheetImporter() *GoogleSheetImporter {
	return &GoogleSheetImporter{
		client: &http.Client{Timeout: 30 * time.Second},
		csv:    NewCSVImporter(),
	}
}

// Name 适配器名
func (i *GoogleSheetImporter) Name() string { return "gsheet" }

var sheetIDRe = regexp.MustCompile(`spreadsheets/d/([A-Za-z0-9_-]+)`)

// ExportURL 把分享链接改写为 CSV 导出链接
func ExportURL(source string) (string, error) {
	m := sheetIDRe.FindStringSubmatch(source)
	if len(m) < 2 {
		return "", fmt.Errorf("cannot extract sheet id from %s", source)
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", m[1]), nil
}

// Fetch 取回远程表格的 CSV 字节
func (i *GoogleSheetImporter) Fetch(source string) ([]byte, error) {
	exportURL, err := ExportURL(source)
	if err != nil {
		return nil, err
	}

	resp, err := i.client.Get(exportURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s failed: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s failed: status %d", source, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Parse 解码取回的字节，复用 CSV 适配器
func (i *GoogleSheetImporter) Parse(data []byte, detector *parser.ColumnDetector) (*Grid, error) {
	return i.csv.Parse(data, detector)
}
