/*
 * @module service/datasource/csv_source_test
 * @description CSV数据集加载器单元测试
 * @architecture 测试层 - 临时文件驱动解析验证
 * @stateFlow 临时CSV写入 -> 加载 -> 列头与单元格类型验证
 * @rules 覆盖类型转换、缺失单元格、分隔符选项、GBK编码和错误路径
 * @dependencies testing, testify, os
 * @refs csv_source.go
 */

package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pipeline-monitor-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVLoadConvertsCellTypes(t *testing.T) {
	path := writeTempCSV(t, "order_id,amount,region\nORD-000001,100.5,north\nORD-000002,,south\nORD-000003,0,east\n")

	dataset, err := NewCSVSource().Load(context.Background(), models.JSONB{"path": path})

	require.NoError(t, err)
	assert.Equal(t, []string{"order_id", "amount", "region"}, dataset.Columns)
	require.Len(t, dataset.Rows, 3)

	// 数值串转float64，空串转缺失，其余保留字符串
	assert.Equal(t, "ORD-000001", dataset.Rows[0][0])
	assert.Equal(t, 100.5, dataset.Rows[0][1])
	assert.Equal(t, "north", dataset.Rows[0][2])
	assert.Nil(t, dataset.Rows[1][1])
	assert.Equal(t, 0.0, dataset.Rows[2][1])
}

func TestCSVLoadTrimsHeaderWhitespace(t *testing.T) {
	path := writeTempCSV(t, " order_id , amount \nORD-1,10\n")

	dataset, err := NewCSVSource().Load(context.Background(), models.JSONB{"path": path})

	require.NoError(t, err)
	assert.Equal(t, []string{"order_id", "amount"}, dataset.Columns)
}

func TestCSVLoadShortRowsPadMissing(t *testing.T) {
	path := writeTempCSV(t, "order_id,amount,region\nORD-1,10\n")

	dataset, err := NewCSVSource().Load(context.Background(), models.JSONB{"path": path})

	require.NoError(t, err)
	require.Len(t, dataset.Rows, 1)
	require.Len(t, dataset.Rows[0], 3)
	assert.Nil(t, dataset.Rows[0][2])
}

func TestCSVLoadCustomDelimiter(t *testing.T) {
	path := writeTempCSV(t, "order_id;amount\nORD-1;10.5\n")

	dataset, err := NewCSVSource().Load(context.Background(), models.JSONB{"path": path, "delimiter": ";"})

	require.NoError(t, err)
	assert.Equal(t, []string{"order_id", "amount"}, dataset.Columns)
	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, 10.5, dataset.Rows[0][1])
}

func TestCSVLoadGBKEncoding(t *testing.T) {
	encoded, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("订单号,金额\nORD-1,10\n"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "gbk.csv")
	require.NoError(t, os.WriteFile(path, encoded, 0o644))

	dataset, err := NewCSVSource().Load(context.Background(), models.JSONB{"path": path, "encoding": "gbk"})

	require.NoError(t, err)
	assert.Equal(t, []string{"订单号", "金额"}, dataset.Columns)
}

func TestCSVLoadEmptyFile(t *testing.T) {
	path := writeTempCSV(t, "")

	dataset, err := NewCSVSource().Load(context.Background(), models.JSONB{"path": path})

	require.NoError(t, err)
	assert.Empty(t, dataset.Columns)
	assert.Empty(t, dataset.Rows)
}

func TestCSVLoadErrorPaths(t *testing.T) {
	t.Run("缺少path配置", func(t *testing.T) {
		_, err := NewCSVSource().Load(context.Background(), models.JSONB{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "缺少path配置")
	})

	t.Run("文件不存在", func(t *testing.T) {
		_, err := NewCSVSource().Load(context.Background(), models.JSONB{"path": "/nonexistent/data.csv"})
		assert.Error(t, err)
	})

	t.Run("取消的上下文", func(t *testing.T) {
		path := writeTempCSV(t, "a,b\n1,2\n")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewCSVSource().Load(ctx, models.JSONB{"path": path})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
