package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "dall-e-3"

// OpenAIProvider 调用 OpenAI Images API
type OpenAIProvider struct {
	name    string
	model   string
	timeout time.Duration
	client  *openai.Client
}

func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if base := cfg.baseURL(); base != "" {
		clientConfig.BaseURL = base
	}
	clientConfig.HTTPClient = &http.Client{}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIProvider{
		name:    cfg.displayName(),
		model:   model,
		timeout: cfg.timeout(),
		client:  openai.NewClientWithConfig(clientConfig),
	}, nil
}

func (p *OpenAIProvider) Name() string { return p.name }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Image, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          p.model,
		N:              1,
		Size:           openAISize(req.Size),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, newFailure(p.name, p.classify(ctx, err), err)
	}

	for _, d := range resp.Data {
		if d.B64JSON != "" {
			b, err := base64.StdEncoding.DecodeString(d.B64JSON)
			if err != nil {
				return nil, newFailure(p.name, KindNoImage, fmt.Errorf("decode b64 image: %w", err))
			}
			return &Image{Data: b, MIMEType: "image/png"}, nil
		}
		if d.URL != "" {
			return &Image{URL: d.URL}, nil
		}
	}
	return nil, newFailure(p.name, KindNoImage, ErrNoImageInResponse)
}

func (p *OpenAIProvider) classify(ctx context.Context, err error) FailureKind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyMessage(classifyStatus(apiErr.HTTPStatusCode), apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode)
	}
	return classifyTransport(ctx, err)
}

// OpenAI 只接受像素尺寸
func openAISize(size string) string {
	switch size {
	case "1K":
		return openai.CreateImageSize1024x1024
	default:
		return openai.CreateImageSize1792x1024
	}
}
