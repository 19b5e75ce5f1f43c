// Package scheduler 日次ジョブの起動タイミングを管理する。
package scheduler

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	otelinfra "gacha-server/internal/infrastructure/observability/otel"
)

// Job スケジューラが起動するジョブ
type Job func(ctx context.Context) error

// Daily 設定されたタイムゾーンの壁時計時刻で毎日1回ジョブを起動する。
// ジョブ自体が再実行安全であることを前提とし、スケジューラは失敗しても
// 次のサイクルまで待つだけでリトライはしない
type Daily struct {
	hour   int
	minute int
	loc    *time.Location
	job    Job
	logger *otelinfra.Logger
	tracer trace.Tracer
}

// NewDaily 新しいDailyスケジューラを作成
func NewDaily(hour, minute int, loc *time.Location, job Job, logger *otelinfra.Logger) *Daily {
	if loc == nil {
		loc = time.UTC
	}
	return &Daily{
		hour:   hour,
		minute: minute,
		loc:    loc,
		job:    job,
		logger: logger,
		tracer: otel.Tracer("daily-scheduler"),
	}
}

// Start スケジューラを開始する。ctxがキャンセルされるまでブロックする
func (d *Daily) Start(ctx context.Context) {
	d.logger.Info(ctx, "Daily scheduler started", map[string]interface{}{
		"hour":     d.hour,
		"minute":   d.minute,
		"timezone": d.loc.String(),
	})

	for {
		next := d.nextAfter(time.Now().In(d.loc))
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			d.logger.Info(ctx, "Daily scheduler stopped", nil)
			return
		case <-timer.C:
			d.fire(ctx)
		}
	}
}

// fire ジョブを1回起動する
func (d *Daily) fire(ctx context.Context) {
	ctx, span := d.tracer.Start(ctx, "Daily.fire")
	defer span.End()

	if err := d.job(ctx); err != nil {
		d.logger.Error(ctx, "Daily job failed", err, nil)
		return
	}
	d.logger.Info(ctx, "Daily job completed", nil)
}

// nextAfter nowより後の直近の起動時刻を返す
func (d *Daily) nextAfter(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, d.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
