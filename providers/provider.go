// Package providers 封装各家图像生成服务（Gemini 兼容端点、OpenAI、通用 JSON 端点、轮询任务型端点）
package providers

import (
	"context"
	"encoding/base64"
	"strings"
	"time"
)

const (
	KindGemini = "gemini"
	KindOpenAI = "openai"
	KindHTTP   = "http"
	KindJob    = "job"

	DefaultTimeout = 5 * time.Minute
)

// Request 一次生成请求
type Request struct {
	Prompt string
	Style  string
	Size   string // 1K / 2K / 4K
}

// Image 生成结果：原始字节（内联）或远程 URL，二者至少一个
type Image struct {
	Data     []byte
	MIMEType string
	URL      string
}

// Ref 返回可直接存库/展示的引用：URL 优先，否则转成 data URI
func (img *Image) Ref() string {
	if img == nil {
		return ""
	}
	if img.URL != "" {
		return img.URL
	}
	if len(img.Data) == 0 {
		return ""
	}
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Provider 单个图像服务的一次尝试
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Image, error)
}

// Config 单个服务的不可变配置，启动时构造后按值传入
type Config struct {
	Name         string        `mapstructure:"name"`
	Kind         string        `mapstructure:"kind"`
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c Config) displayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Kind != "" {
		return c.Kind
	}
	return KindGemini
}

func (c Config) baseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
}

// New 按 Kind 构造 Provider；没有 key 时返回永远失败的 disabledProvider，不会让进程崩溃
func New(cfg Config) (Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return &disabledProvider{name: cfg.displayName()}, nil
	}
	switch strings.ToLower(cfg.Kind) {
	case "", KindGemini:
		return NewGeminiProvider(cfg)
	case KindOpenAI:
		return NewOpenAIProvider(cfg)
	case KindHTTP:
		return NewHTTPProvider(cfg)
	case KindJob:
		return NewJobProvider(cfg)
	default:
		return nil, &UnknownKindError{Kind: cfg.Kind}
	}
}

// UnknownKindError 配置了不支持的 provider 类型
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return "unknown provider kind: " + e.Kind
}

type disabledProvider struct {
	name string
}

func (p *disabledProvider) Name() string { return p.name }

func (p *disabledProvider) Generate(_ context.Context, _ Request) (*Image, error) {
	return nil, newFailure(p.name, KindUnavailable, errMissingKey)
}
