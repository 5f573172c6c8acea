package providers

import (
	"context"
	"errors"
	"time"
)

// AttemptFunc 每次尝试结束时回调（日志、指标）
type AttemptFunc func(provider string, err error, elapsed time.Duration)

// Chain 按配置顺序依次尝试，首个成功即返回；遇到鉴权/欠费类失败立即放弃剩余服务
type Chain struct {
	providers []Provider
	onAttempt AttemptFunc
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// OnAttempt 设置尝试回调，返回自身便于链式调用
func (c *Chain) OnAttempt(fn AttemptFunc) *Chain {
	c.onAttempt = fn
	return c
}

func (c *Chain) Len() int { return len(c.providers) }

// Providers 返回配置顺序下的服务列表
func (c *Chain) Providers() []Provider {
	return append([]Provider(nil), c.providers...)
}

// Generate 返回图片和成功的服务名；全部失败时返回合并后的错误
func (c *Chain) Generate(ctx context.Context, req Request) (*Image, string, error) {
	if len(c.providers) == 0 {
		return nil, "", newFailure("chain", KindUnavailable, errors.New("no providers configured"))
	}

	var errs []error
	for _, p := range c.providers {
		start := time.Now()
		img, err := p.Generate(ctx, req)
		if err == nil && img.Ref() == "" {
			err = newFailure(p.Name(), KindNoImage, ErrNoImageInResponse)
		}
		if c.onAttempt != nil {
			c.onAttempt(p.Name(), err, time.Since(start))
		}
		if err == nil {
			return img, p.Name(), nil
		}
		errs = append(errs, err)
		if IsUnrecoverable(err) {
			break
		}
		// 调用方已取消就没必要再试下一个
		if ctx.Err() != nil {
			break
		}
	}
	return nil, "", errors.Join(errs...)
}
