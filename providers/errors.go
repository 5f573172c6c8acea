package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FailureKind 失败类型
type FailureKind int

const (
	KindUnavailable FailureKind = iota + 1
	KindRejected
	KindNoImage
	KindTimeout
	// KindUnrecoverable 鉴权/欠费等，链路上剩下的服务不再尝试
	KindUnrecoverable
)

var (
	ErrUnavailable       = errors.New("provider unavailable")
	ErrRejected          = errors.New("provider rejected request")
	ErrNoImageInResponse = errors.New("no image in response")
	ErrTimeout           = errors.New("provider timeout")
	ErrUnrecoverable     = errors.New("provider unrecoverable failure")

	errMissingKey = errors.New("api key not configured")
)

func (k FailureKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindRejected:
		return "rejected"
	case KindNoImage:
		return "no_image"
	case KindTimeout:
		return "timeout"
	case KindUnrecoverable:
		return "unrecoverable"
	default:
		return "unknown"
	}
}

func (k FailureKind) sentinel() error {
	switch k {
	case KindUnavailable:
		return ErrUnavailable
	case KindRejected:
		return ErrRejected
	case KindNoImage:
		return ErrNoImageInResponse
	case KindTimeout:
		return ErrTimeout
	case KindUnrecoverable:
		return ErrUnrecoverable
	default:
		return nil
	}
}

// Failure 一次尝试的类型化失败
type Failure struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.Provider, f.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", f.Provider, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Is 让 errors.Is(err, ErrTimeout) 这类判断生效
func (f *Failure) Is(target error) bool {
	return target != nil && target == f.Kind.sentinel()
}

func newFailure(provider string, kind FailureKind, err error) *Failure {
	return &Failure{Provider: provider, Kind: kind, Err: err}
}

// IsUnrecoverable 是否应中止剩余 provider
func IsUnrecoverable(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == KindUnrecoverable
}

// KindOf 取失败类型，非 Failure 视为 unavailable
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnavailable
}

// classifyStatus 按 HTTP 状态码分类
func classifyStatus(code int) FailureKind {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusPaymentRequired, code == http.StatusForbidden:
		return KindUnrecoverable
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		return KindTimeout
	case code == http.StatusTooManyRequests, code >= 500:
		return KindUnavailable
	default:
		return KindRejected
	}
}

var unrecoverableHints = []string{
	"insufficient", "quota", "billing", "payment", "balance", "unauthorized", "invalid api key", "余额不足",
}

// classifyMessage 部分服务用 200/400 返回欠费等信息，只能看文本
func classifyMessage(kind FailureKind, msg string) FailureKind {
	lower := strings.ToLower(msg)
	for _, h := range unrecoverableHints {
		if strings.Contains(lower, h) {
			return KindUnrecoverable
		}
	}
	return kind
}

// classifyTransport 网络层错误：超时 / 其它不可用
func classifyTransport(ctx context.Context, err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return KindTimeout
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return KindTimeout
	}
	return KindUnavailable
}
