// Package importer 负责把各种来源的表格解码为统一的行列网格
// 每种格式一个适配器；工厂按来源串选择适配器，选不中是显式错误而非静默兜底
package importer

import (
	"errors"
	"fmt"
	"strings"

	"deckmate/internal/model"
	"deckmate/internal/parser"
)

// ErrNoImporter 没有适配器认领该来源
var ErrNoImporter = errors.New("no importer for source")

// Grid 统一的解析结果：表头、列元数据与数据行
type Grid struct {
	Headers []string               `json:"headers"`
	Columns []model.ColumnMetaData `json:"columns"`
	Rows    [][]string             `json:"rows"`
}

// Importer 格式适配器
// 实现约定：剥离首行作为表头、跳过全空行、列类型识别交给识别器
type Importer interface {
	// Name 适配器名，用于错误与进度信息
	Name() string
	// Parse 把原始字节解码为网格
	Parse(data []byte, detector *parser.ColumnDetector) (*Grid, error)
}

// Fetcher 远程来源适配器额外实现的取数接口
type Fetcher interface {
	Fetch(source string) ([]byte, error)
}

// registration 来源判定与构造器的有序对，先命中者先得
type registration struct {
	matches func(source string) bool
	build   func() Importer
}

var registry = []registration{
	{matches: isGoogleSheetURL, build: func() Importer { return NewGoogleSheetImporter() }},
	{matches: hasSuffix(".csv", ".tsv", ".txt"), build: func() Importer { return NewCSVImporter() }},
	{matches: hasSuffix(".xlsx", ".xlsm", ".xltx", ".xls"), build: func() Importer { return NewExcelImporter() }},
}

// ForSource 按来源串选择适配器
// 无人认领时返回 ErrNoImporter，错误信息带上来源
func ForSource(source string) (Importer, error) {
	for _, r := range registry {
		if r.matches(source) {
			return r.build(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoImporter, source)
}

func hasSuffix(suffixes ...string) func(string) bool {
	return func(source string) bool {
		lower := strings.ToLower(strings.TrimSpace(source))
		for _, s := range suffixes {
			if strings.HasSuffix(lower, s) {
				return true
			}
		}
		return false
	}
}

func isGoogleSheetURL(source string) bool {
	lower := strings.ToLower(strings.TrimSpace(source))
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	return strings.Contains(lower, "docs.google.com/spreadsheets")
}

// stripEmptyRows 过滤全空行
func stripEmptyRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out
}

// buildGrid 表头 + 数据行组装网格并识别列类型
// 去掉表头后没有数据行不算错误，空数据集合法
func buildGrid(records [][]string, detector *parser.ColumnDetector) *Grid {
	records = stripEmptyRows(records)
	if len(records) == 0 {
		return &Grid{Headers: []string{}, Columns: []model.ColumnMetaData{}, Rows: [][]string{}}
	}
	headers := records[0]
	body := records[1:]
	return &Grid{
		Headers: headers,
		Columns: detector.BuildColumns(headers, body),
		Rows:    body,
	}
}
