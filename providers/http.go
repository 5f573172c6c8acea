package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// 单个响应体上限，base64 的 4K 图片也够用
const maxResponseBytes = 64 << 20

// HTTPProvider 通用 JSON 端点（Nano Banana / Stability 一类），响应形状不固定，交给解析器链
type HTTPProvider struct {
	name    string
	url     string
	apiKey  string
	model   string
	timeout time.Duration
	client  *http.Client
}

func NewHTTPProvider(cfg Config) (*HTTPProvider, error) {
	base := cfg.baseURL()
	if base == "" {
		return nil, errors.New("http provider requires base_url")
	}
	return &HTTPProvider{
		name:    cfg.displayName(),
		url:     base,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		timeout: cfg.timeout(),
		client:  &http.Client{},
	}, nil
}

func (p *HTTPProvider) Name() string { return p.name }

func (p *HTTPProvider) Generate(ctx context.Context, req Request) (*Image, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	payload := map[string]any{
		"model":           p.model,
		"prompt":          req.Prompt,
		"n":               1,
		"size":            req.Size,
		"style":           req.Style,
		"response_format": "b64_json",
	}
	body, kind, err := doJSON(ctx, p.client, http.MethodPost, p.url, p.apiKey, payload)
	if err != nil {
		return nil, newFailure(p.name, kind, err)
	}
	img, err := ParseImage(body)
	if err != nil {
		return nil, newFailure(p.name, classifyMessage(KindNoImage, string(body)), err)
	}
	return img, nil
}

// doJSON 发送 JSON 请求并返回 2xx 响应体；失败时给出分类
func doJSON(ctx context.Context, client *http.Client, method, url, apiKey string, payload any) ([]byte, FailureKind, error) {
	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, KindRejected, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, KindRejected, fmt.Errorf("new request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, classifyTransport(ctx, err), err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransport(ctx, err), fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errorMessage(body)
		return nil, classifyMessage(classifyStatus(resp.StatusCode), msg), fmt.Errorf("api status %d: %s", resp.StatusCode, msg)
	}
	return body, 0, nil
}

// errorMessage 兼容 {"error":"..."} 与 {"error":{"message":"..."}}
func errorMessage(body []byte) string {
	var obj map[string]any
	if json.Unmarshal(body, &obj) == nil {
		if msg, ok := obj["error"].(string); ok && msg != "" {
			return msg
		}
		if errobj, ok := obj["error"].(map[string]any); ok {
			if m, ok := errobj["message"].(string); ok && m != "" {
				return m
			}
		}
		if msg, ok := obj["message"].(string); ok && msg != "" {
			return msg
		}
	}
	if len(body) > 200 {
		return string(body[:200])
	}
	return string(body)
}
