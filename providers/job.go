package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultPollInterval = 5 * time.Second

// JobProvider 提交任务后轮询结果（replicate / ComfyUI 队列一类）
type JobProvider struct {
	name     string
	url      string
	apiKey   string
	model    string
	timeout  time.Duration
	interval time.Duration
	client   *http.Client
}

type jobSubmitResponse struct {
	ID string `json:"id"`
}

type jobStatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func NewJobProvider(cfg Config) (*JobProvider, error) {
	base := cfg.baseURL()
	if base == "" {
		return nil, errors.New("job provider requires base_url")
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &JobProvider{
		name:     cfg.displayName(),
		url:      base,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		timeout:  cfg.timeout(),
		interval: interval,
		client:   &http.Client{},
	}, nil
}

func (p *JobProvider) Name() string { return p.name }

func (p *JobProvider) Generate(ctx context.Context, req Request) (*Image, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, kind, err := doJSON(ctx, p.client, http.MethodPost, p.url, p.apiKey, map[string]any{
		"model": p.model,
		"input": map[string]any{"prompt": req.Prompt, "size": req.Size},
	})
	if err != nil {
		return nil, newFailure(p.name, kind, err)
	}
	var submitted jobSubmitResponse
	if err := json.Unmarshal(body, &submitted); err != nil || submitted.ID == "" {
		// 有的服务同步返回结果
		if img, perr := ParseImage(body); perr == nil {
			return img, nil
		}
		return nil, newFailure(p.name, KindRejected, fmt.Errorf("no job id in response"))
	}

	pollURL := p.url + "/" + submitted.ID
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, newFailure(p.name, KindTimeout, ctx.Err())
		case <-ticker.C:
		}

		body, kind, err := doJSON(ctx, p.client, http.MethodGet, pollURL, p.apiKey, nil)
		if err != nil {
			return nil, newFailure(p.name, kind, err)
		}
		var status jobStatusResponse
		if err := json.Unmarshal(body, &status); err != nil {
			return nil, newFailure(p.name, KindRejected, fmt.Errorf("decode poll response: %w", err))
		}
		switch strings.ToLower(status.Status) {
		case "succeeded", "success", "completed":
			img, err := ParseImage(body)
			if err != nil {
				return nil, newFailure(p.name, KindNoImage, err)
			}
			return img, nil
		case "failed", "canceled", "cancelled", "error":
			return nil, newFailure(p.name, classifyMessage(KindRejected, status.Error), fmt.Errorf("job %s %s: %s", submitted.ID, status.Status, status.Error))
		}
	}
}
