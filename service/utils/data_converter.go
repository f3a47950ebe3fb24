/*
 * @module service/utils/data_converter
 * @description 数据转换工具，提供GBK编码流转换和字节串转换辅助
 * @architecture 工具层
 * @stateFlow 无状态转换
 * @rules GBK解码经transform流式处理，不整体载入内存
 * @dependencies golang.org/x/text/encoding/simplifiedchinese, golang.org/x/text/transform
 * @refs service/datasource/csv_source.go
 */

package utils

import (
	"io"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// NewGBKReader 包装GBK编码的字节流为UTF-8读取器
func NewGBKReader(r io.Reader) io.Reader {
	return transform.NewReader(r, simplifiedchinese.GBK.NewDecoder())
}

// GBKToUTF8 转换GBK编码的字节串为UTF-8字符串
func GBKToUTF8(data []byte) (string, error) {
	decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
