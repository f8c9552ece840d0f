package importer

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"deckmate/internal/parser"
)

// ExcelImporter Excel 适配器，读取工作簿第一个 Sheet 作为二维数组
type ExcelImporter struct{}

// NewExcelImporter 创建 Excel 适配器
func NewExcelImporter() *ExcelImporter {
	return &ExcelImporter{}
}

// Name 适配器名
func (i *ExcelImporter) Name() string { return "excel" }

// Parse 解码工作簿字节为网格
func (i *ExcelImporter) Parse(data []byte, detector *parser.ColumnDetector) (*Grid, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("excel decode failed: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel decode failed: workbook has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("excel read sheet %q failed: %w", sheets[0], err)
	}
	return buildGrid(rows, detector), nil
}
