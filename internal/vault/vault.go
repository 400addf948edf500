// Package vault cung cấp mã hóa đối xứng cho token truy cập các nền tảng.
// Token không bao giờ được lưu hoặc ghi log dưới dạng plaintext: mọi giá trị
// đi vào database phải qua Encrypt, đọc ra phải qua Decrypt.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrMissingKey trả về khi khởi tạo vault mà không có khóa.
// Caller (cmd/server) phải coi đây là lỗi fatal lúc khởi động.
var ErrMissingKey = errors.New("vault: encryption key is empty")

// Vault mã hóa/giải mã token bằng AES-256-GCM.
// Khóa AES được derive từ secret cấu hình qua SHA-256.
type Vault struct {
	key []byte
}

// New tạo vault từ secret cấu hình (TOKEN_VAULT_KEY).
// Secret rỗng trả về ErrMissingKey.
func New(secret string) (*Vault, error) {
	if secret == "" {
		return nil, ErrMissingKey
	}
	hash := sha256.Sum256([]byte(secret + "_platform_token_encryption_key"))
	return &Vault{key: hash[:]}, nil
}

// EncryptString mã hóa plaintext thành base64 string.
// Nonce được sinh ngẫu nhiên cho mỗi lần mã hóa và ghép vào đầu ciphertext.
func (v *Vault) EncryptString(plaintext string) (string, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	// Nonce 12 bytes cho GCM
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptString giải mã base64 string về plaintext.
// Ciphertext sai định dạng hoặc bị sửa đổi trả về lỗi, không bao giờ trả về dữ liệu rác.
func (v *Vault) DecryptString(encryptedBase64 string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encryptedBase64)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}
