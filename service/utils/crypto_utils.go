/*
 * @module service/utils/crypto_utils
 * @description 加密工具模块，提供敏感配置项（洞察服务密钥等）的AES加解密和展示脱敏
 * @architecture 加密工具集模式
 * @stateFlow 无状态加密：明文 -> 加密算法 -> 密文 / 密文 -> 解密算法 -> 明文
 * @rules 密钥经SHA-256派生为32字节（AES-256）；密文为IV前缀的base64编码
 * @dependencies crypto/aes, crypto/cipher, crypto/rand, crypto/sha256
 * @refs service/init.go, service/insight/groq_client.go
 */

package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// CryptoUtils 加密工具
type CryptoUtils struct {
	defaultKey []byte
}

// NewCryptoUtils 创建加密工具实例，key为空时使用内置默认密钥
func NewCryptoUtils(key string) *CryptoUtils {
	if key == "" {
		key = "pipeline-monitor-default-key"
	}

	// 密钥派生为32字节（AES-256）
	hasher := sha256.New()
	hasher.Write([]byte(key))

	return &CryptoUtils{
		defaultKey: hasher.Sum(nil),
	}
}

// AESEncrypt AES-CFB加密，返回IV前缀的base64密文
func (cu *CryptoUtils) AESEncrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(cu.defaultKey)
	if err != nil {
		return "", fmt.Errorf("创建AES块失败: %w", err)
	}

	ciphertext := make([]byte, aes.BlockSize+len(plaintext))
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("生成IV失败: %w", err)
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], []byte(plaintext))

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// AESDecrypt 解密IV前缀的base64密文
func (cu *CryptoUtils) AESDecrypt(encoded string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64解码失败: %w", err)
	}
	if len(ciphertext) < aes.BlockSize {
		return "", fmt.Errorf("密文长度不足")
	}

	block, err := aes.NewCipher(cu.defaultKey)
	if err != nil {
		return "", fmt.Errorf("创建AES块失败: %w", err)
	}

	iv := ciphertext[:aes.BlockSize]
	payload := ciphertext[aes.BlockSize:]

	stream := cipher.NewCFBDecrypter(block, iv)
	plaintext := make([]byte, len(payload))
	stream.XORKeyStream(plaintext, payload)

	return string(plaintext), nil
}

// MaskSecret 脱敏展示敏感串，保留前后各4位
func MaskSecret(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}
