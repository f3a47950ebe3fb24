/*
 * @module service/datasource/csv_source
 * @description CSV文件数据集加载器，首行为表头，支持UTF-8和GBK编码，空单元格按缺失处理，数值单元格自动转换
 * @architecture 适配器模式 - 数据源接入层
 * @stateFlow 文件打开 -> 编码转换 -> CSV解析 -> 单元格类型转换 -> 数据集快照
 * @rules 空字符串单元格转换为缺失值；可解析为数值的单元格转换为float64；其余保留字符串
 * @dependencies encoding/csv, golang.org/x/text, github.com/spf13/cast
 * @refs service/datasource/loader.go, service/utils/data_converter.go
 */

package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"pipeline-monitor-service/service/models"
	"pipeline-monitor-service/service/utils"

	"github.com/spf13/cast"
)

// CSVSource CSV文件数据集加载器
type CSVSource struct{}

// NewCSVSource 创建CSV加载器实例
func NewCSVSource() *CSVSource {
	return &CSVSource{}
}

// Type 返回数据源类型
func (s *CSVSource) Type() string {
	return "csv"
}

// Load 加载CSV文件为数据集快照
// options: path（必填）、encoding（utf-8/gbk，默认utf-8）、delimiter（默认逗号）
func (s *CSVSource) Load(ctx context.Context, options models.JSONB) (*models.Dataset, error) {
	path := cast.ToString(options["path"])
	if path == "" {
		return nil, fmt.Errorf("CSV数据源缺少path配置")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开CSV文件失败: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.EqualFold(cast.ToString(options["encoding"]), "gbk") {
		reader = utils.NewGBKReader(file)
	}

	csvReader := csv.NewReader(reader)
	if delimiter := cast.ToString(options["delimiter"]); delimiter != "" {
		csvReader.Comma = rune(delimiter[0])
	}
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if err == io.EOF {
		return &models.Dataset{Columns: []string{}, Rows: [][]interface{}{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取CSV表头失败: %w", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	rows := make([][]interface{}, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取CSV数据行失败: %w", err)
		}

		row := make([]interface{}, len(columns))
		for i := range columns {
			if i < len(record) {
				row[i] = convertCell(record[i])
			}
		}
		rows = append(rows, row)
	}

	return &models.Dataset{Columns: columns, Rows: rows}, nil
}

// convertCell 转换单元格取值：空串为缺失，数值串转float64，其余保留字符串
func convertCell(raw string) interface{} {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}
