// Package metrics 提供生成与点赞相关的 Prometheus 指标
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 所有方法对 nil 接收者安全，测试里可以不注册
type Metrics struct {
	GenerationsTotal *prometheus.CounterVec   // 按来源统计：provider 名或 fallback
	ProviderAttempts *prometheus.CounterVec   // 按 provider 和结果统计
	ProviderDuration *prometheus.HistogramVec // 单次尝试耗时
	LikesTotal       *prometheus.CounterVec   // liked / already_voted
}

// New 创建并注册到 registry
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gallery_generations_total",
				Help: "Total number of generation requests by image source",
			},
			[]string{"source"},
		),
		ProviderAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gallery_provider_attempts_total",
				Help: "Total number of provider attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		ProviderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gallery_provider_attempt_duration_seconds",
				Help:    "Time taken by a single provider attempt",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"provider"},
		),
		LikesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gallery_likes_total",
				Help: "Total number of like requests by result",
			},
			[]string{"result"},
		),
	}
	for _, c := range []prometheus.Collector{m.GenerationsTotal, m.ProviderAttempts, m.ProviderDuration, m.LikesTotal} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register gallery metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) RecordGeneration(source string) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) RecordAttempt(provider, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ProviderAttempts.WithLabelValues(provider, outcome).Inc()
	m.ProviderDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordLike(alreadyVoted bool) {
	if m == nil {
		return
	}
	result := "liked"
	if alreadyVoted {
		result = "already_voted"
	}
	m.LikesTotal.WithLabelValues(result).Inc()
}
