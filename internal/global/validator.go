package global

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// knownPlatformFunc được gán từ nơi khởi tạo app (sau khi adapters đã đăng ký)
// để validator "platform_name" kiểm tra tên nền tảng mà không tạo import cycle.
var knownPlatformFunc func(name string) bool

// SetKnownPlatformFunc đăng ký hàm kiểm tra tên nền tảng hợp lệ.
// Gọi từ cmd/server sau khi đăng ký các adapter.
func SetKnownPlatformFunc(fn func(name string) bool) {
	knownPlatformFunc = fn
}

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("platform_name", validatePlatformName)
}

// validateNoXSS kiểm tra XSS
func validateNoXSS(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"eval(",
		"document.cookie",
		"document.write",
		"<iframe",
		"<object",
		"<embed",
	}

	value = strings.ToLower(value)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validatePlatformName kiểm tra tên nền tảng có adapter đã đăng ký.
// Nếu chưa có hàm kiểm tra (app chưa khởi tạo xong), cho qua để không chặn test đơn lẻ.
func validatePlatformName(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}
	if knownPlatformFunc == nil {
		return true
	}
	return knownPlatformFunc(value)
}
