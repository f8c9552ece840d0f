package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"deckmate/internal/parser"
)

// CSVImporter CSV 适配器，按 RFC 4180 处理引号与逗号
type CSVImporter struct{}

// NewCSVImporter 创建 CSV 适配器
func NewCSVImporter() *CSVImporter {
	return &CSVImporter{}
}

// Name 适配器名
func (i *CSVImporter) Name() string { return "csv" }

// Parse 解码 CSV 字节为网格
func (i *CSVImporter) Parse(data []byte, detector *parser.ColumnDetector) (*Grid, error) {
	reader := csv.NewReader(bytes.NewReader(stripBOM(data)))
	reader.FieldsPerRecord = -1 // 允许行与行字段数不一致，由网格层按索引容错
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv decode failed: %w", err)
	}
	return buildGrid(records, detector), nil
}

// stripBOM 去掉 UTF-8 BOM，Excel 另存的 CSV 常带
func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}
