package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

const (
	defaultGeminiBaseURL = "https://api.mmw.ink"
	defaultGeminiModel   = "gemini-3-pro-image-preview-2k"
)

// GeminiProvider 调用 Gemini 兼容的 generateContent 端点（官方或代理）
type GeminiProvider struct {
	name    string
	model   string
	timeout time.Duration
	client  *genai.Client
}

func NewGeminiProvider(cfg Config) (*GeminiProvider, error) {
	base := cfg.baseURL()
	if base == "" {
		base = defaultGeminiBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	// 代理端点用 Bearer 鉴权，官方端点用 x-goog-api-key，两个都带上
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+cfg.APIKey)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    base,
			APIVersion: "v1",
			Headers:    headers,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		name:    cfg.displayName(),
		model:   model,
		timeout: cfg.timeout(),
		client:  client,
	}, nil
}

func (p *GeminiProvider) Name() string { return p.name }

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Image, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
		ImageConfig:        &genai.ImageConfig{ImageSize: req.Size},
		Temperature:        genai.Ptr[float32](0.7),
	})
	if err != nil {
		return nil, newFailure(p.name, p.classify(ctx, err), err)
	}

	// 统一走解析器链，响应里可能只有文本形式的图片链接
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, newFailure(p.name, KindNoImage, err)
	}
	img, err := ParseImage(raw)
	if err != nil {
		if text := resp.Text(); text != "" {
			return nil, newFailure(p.name, classifyMessage(KindNoImage, text), err)
		}
		return nil, newFailure(p.name, KindNoImage, err)
	}
	return img, nil
}

func (p *GeminiProvider) classify(ctx context.Context, err error) FailureKind {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyMessage(classifyStatus(apiErr.Code), apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return classifyMessage(classifyStatus(apiErrPtr.Code), apiErrPtr.Message)
	}
	return classifyTransport(ctx, err)
}
