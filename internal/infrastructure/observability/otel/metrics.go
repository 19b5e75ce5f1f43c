package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// 抽選数
	DrawCount metric.Int64Counter

	// 初入手アイテム数
	NewItemCount metric.Int64Counter

	// ポイント残高の分布
	PointsBalance metric.Int64Gauge

	// ポイント付与数
	GrantCount metric.Int64Counter

	// クールダウンによる棄却数
	ThrottledCount metric.Int64Counter

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー率
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	drawCount, err := meter.Int64Counter(
		"draws_total",
		metric.WithDescription("Total number of gacha draws"),
	)
	if err != nil {
		return nil, err
	}

	newItemCount, err := meter.Int64Counter(
		"new_items_total",
		metric.WithDescription("Total number of first-time item acquisitions"),
	)
	if err != nil {
		return nil, err
	}

	pointsBalance, err := meter.Int64Gauge(
		"points_balance",
		metric.WithDescription("Point balance"),
	)
	if err != nil {
		return nil, err
	}

	grantCount, err := meter.Int64Counter(
		"grants_total",
		metric.WithDescription("Total number of point grants"),
	)
	if err != nil {
		return nil, err
	}

	throttledCount, err := meter.Int64Counter(
		"throttled_total",
		metric.WithDescription("Total number of draws rejected by cooldown"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		DrawCount:      drawCount,
		NewItemCount:   newItemCount,
		PointsBalance:  pointsBalance,
		GrantCount:     grantCount,
		ThrottledCount: throttledCount,
		RequestCount:   requestCount,
		ResponseTime:   responseTime,
		ErrorCount:     errorCount,
	}, nil
}

// RecordDraw 抽選結果を記録
func (m *Metrics) RecordDraw(ctx context.Context, collection, rarity string, isNew bool) {
	m.DrawCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("collection", collection),
			attribute.String("rarity", rarity),
		),
	)
	if isNew {
		m.NewItemCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("collection", collection),
				attribute.String("rarity", rarity),
			),
		)
	}
}

// RecordPointsBalance ポイント残高を記録
func (m *Metrics) RecordPointsBalance(ctx context.Context, userID string, balance int64) {
	m.PointsBalance.Record(ctx, balance,
		metric.WithAttributes(
			attribute.String("user_id", userID),
		),
	)
}

// RecordGrant ポイント付与を記録
func (m *Metrics) RecordGrant(ctx context.Context, grantType string, amount int64) {
	m.GrantCount.Add(ctx, amount,
		metric.WithAttributes(
			attribute.String("grant_type", grantType),
		),
	)
}

// RecordThrottled クールダウンによる棄却を記録
func (m *Metrics) RecordThrottled(ctx context.Context) {
	m.ThrottledCount.Add(ctx, 1)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
