package services

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MinPromptLength = 3
	DefaultStyle    = "digital"
	DefaultSize     = "2K"
)

// 已包含主题词的提示词只追加风格后缀
var themeKeywords = []string{"dragon", "horse", "fire", "龙", "马", "火"}

var validSizes = map[string]bool{"1K": true, "2K": true, "4K": true}

// ValidatePrompt 去掉首尾空白后至少 3 个字符
func ValidatePrompt(raw string) error {
	if utf8.RuneCountInString(strings.TrimSpace(raw)) < MinPromptLength {
		return newValidationError("prompt", fmt.Sprintf("Prompt is required (min %d characters)", MinPromptLength))
	}
	return nil
}

// NormalizeStyle 空风格取默认值
func NormalizeStyle(style string) string {
	style = strings.ToLower(strings.TrimSpace(style))
	if style == "" {
		return DefaultStyle
	}
	return style
}

// NormalizeSize 只接受 1K/2K/4K，其它一律 2K
func NormalizeSize(size string) string {
	size = strings.ToUpper(strings.TrimSpace(size))
	if validSizes[size] {
		return size
	}
	return DefaultSize
}

// EnhancePrompt 给提示词加上火龙马主题
func EnhancePrompt(raw, style, size string) string {
	prompt := strings.TrimSpace(raw)
	style = NormalizeStyle(style)
	size = NormalizeSize(size)

	lower := strings.ToLower(prompt)
	for _, kw := range themeKeywords {
		if strings.Contains(lower, kw) {
			return fmt.Sprintf("%s, %s style, Chinese New Year theme, %s quality, detailed", prompt, style, size)
		}
	}
	return fmt.Sprintf("Fire Dragon Horse, %s, %s style, golden scales, flames, Chinese New Year theme, %s quality", prompt, style, size)
}
