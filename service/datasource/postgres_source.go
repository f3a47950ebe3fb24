/*
 * @module service/datasource/postgres_source
 * @description PostgreSQL表数据集加载器，全表或限量读取目标表为表格快照
 * @architecture 适配器模式 - 数据源接入层
 * @stateFlow 表名校验 -> 查询执行 -> 行扫描与类型转换 -> 数据集快照
 * @rules 表名仅允许字母数字下划线和点号，防止注入；[]byte列值转换为字符串
 * @dependencies gorm.io/gorm, database/sql
 * @refs service/datasource/loader.go
 */

package datasource

import (
	"context"
	"fmt"
	"regexp"

	"pipeline-monitor-service/service/models"

	"github.com/spf13/cast"
	"gorm.io/gorm"
)

const defaultQueryLimit = 10000

// 合法的表标识符：schema.table 或 table
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// PostgresSource PostgreSQL表数据集加载器
type PostgresSource struct {
	db *gorm.DB
}

// NewPostgresSource 创建PostgreSQL加载器实例
func NewPostgresSource(db *gorm.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// Type 返回数据源类型
func (s *PostgresSource) Type() string {
	return "postgresql"
}

// Load 读取目标表为数据集快照
// options: table（必填）、limit（默认10000）
func (s *PostgresSource) Load(ctx context.Context, options models.JSONB) (*models.Dataset, error) {
	table := cast.ToString(options["table"])
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("非法的表名: %s", table)
	}

	limit := cast.ToInt(options["limit"])
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	rows, err := s.db.WithContext(ctx).Raw(fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, limit)).Rows()
	if err != nil {
		return nil, fmt.Errorf("查询表数据失败: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("读取列信息失败: %w", err)
	}

	dataset := &models.Dataset{
		Columns: columns,
		Rows:    make([][]interface{}, 0),
	}

	values := make([]interface{}, len(columns))
	pointers := make([]interface{}, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("扫描数据行失败: %w", err)
		}
		row := make([]interface{}, len(columns))
		for i, value := range values {
			if b, ok := value.([]byte); ok {
				row[i] = string(b)
			} else {
				row[i] = value
			}
		}
		dataset.Rows = append(dataset.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历数据行失败: %w", err)
	}

	return dataset, nil
}
