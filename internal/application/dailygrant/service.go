// Package dailygrant 日次自動付与のアプリケーションサービスを提供する。
package dailygrant

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gacha-server/internal/domain/grantsetting"
	"gacha-server/internal/domain/points"
	"gacha-server/internal/domain/transaction"
	otelinfra "gacha-server/internal/infrastructure/observability/otel"
)

// auditUserID 日次付与サマリーの監査ログに使う擬似ユーザーID
const auditUserID = "system"

// DailyGrantApplicationService 日次付与アプリケーションサービス
type DailyGrantApplicationService struct {
	balanceRepo     points.BalanceRepository
	settingRepo     grantsetting.Repository
	transactionRepo transaction.TransactionRepository
	logger          *otelinfra.Logger
	metrics         *otelinfra.Metrics
	tracer          trace.Tracer
}

// NewDailyGrantApplicationService 新しいDailyGrantApplicationServiceを作成
func NewDailyGrantApplicationService(
	balanceRepo points.BalanceRepository,
	settingRepo grantsetting.Repository,
	transactionRepo transaction.TransactionRepository,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *DailyGrantApplicationService {
	return &DailyGrantApplicationService{
		balanceRepo:     balanceRepo,
		settingRepo:     settingRepo,
		transactionRepo: transactionRepo,
		logger:          logger,
		metrics:         metrics,
		tracer:          otel.Tracer("daily-grant-service"),
	}
}

// Run 全ユーザーに日次付与を実行する。
// 各行の更新は独立にアトミックなため、再実行しても上限を超えて付与されることはない
func (s *DailyGrantApplicationService) Run(ctx context.Context) (*RunResponse, error) {
	ctx, span := s.tracer.Start(ctx, "DailyGrantApplicationService.Run")
	defer span.End()

	amount, err := s.currentAmount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to read daily grant setting", err, nil)
		return nil, err
	}

	span.SetAttributes(attribute.Int("grant.amount", amount))

	granted, err := s.balanceRepo.GrantCappedAll(ctx, amount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to run daily grant", err, map[string]interface{}{
			"amount": amount,
		})
		s.metrics.RecordError(ctx, "daily_grant_failed")
		return nil, fmt.Errorf("failed to run daily grant: %w", err)
	}

	// 総ユーザー数は実行サマリー用。取得失敗は付与自体を失敗にしない
	total, err := s.balanceRepo.CountUsers(ctx)
	if err != nil {
		s.logger.Warn(ctx, "Failed to count users", map[string]interface{}{
			"error": err.Error(),
		})
		total = 0
	}

	// 実行1回につきサマリーを台帳に1行残す。付与自体は成功しているため、記録失敗は致命にしない
	s.recordAudit(ctx, amount)

	s.logger.Info(ctx, "Daily grant completed", map[string]interface{}{
		"amount":        amount,
		"granted_users": granted,
		"total_users":   total,
	})
	s.metrics.RecordGrant(ctx, "daily_grant", int64(amount))

	span.SetAttributes(
		attribute.Int64("grant.granted_users", granted),
		attribute.Int64("grant.total_users", total),
	)
	span.SetStatus(otelcodes.Ok, "daily grant completed")

	return &RunResponse{
		Amount:       amount,
		GrantedUsers: granted,
		TotalUsers:   total,
	}, nil
}

// GetSetting 日次付与量の設定を取得。未設定の場合はデフォルト値を返す
func (s *DailyGrantApplicationService) GetSetting(ctx context.Context) (*GetSettingResponse, error) {
	ctx, span := s.tracer.Start(ctx, "DailyGrantApplicationService.GetSetting")
	defer span.End()

	amount, err := s.currentAmount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	return &GetSettingResponse{
		Name:   grantsetting.DailySettingName,
		Amount: amount,
	}, nil
}

// SetSetting 日次付与量を更新する（管理者用）。0は「付与停止」を意味する
func (s *DailyGrantApplicationService) SetSetting(ctx context.Context, req *SetSettingRequest) (*SetSettingResponse, error) {
	ctx, span := s.tracer.Start(ctx, "DailyGrantApplicationService.SetSetting")
	defer span.End()

	span.SetAttributes(attribute.Int("grant.amount", req.Amount))

	setting, err := grantsetting.NewSetting(grantsetting.DailySettingName, req.Amount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if err := s.settingRepo.Save(ctx, setting); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to save daily grant setting", err, map[string]interface{}{
			"amount": req.Amount,
		})
		return nil, fmt.Errorf("failed to save setting: %w", err)
	}

	s.logger.Info(ctx, "Daily grant setting updated", map[string]interface{}{
		"amount":    req.Amount,
		"requester": req.Requester,
	})

	return &SetSettingResponse{
		Name:   setting.Name(),
		Amount: setting.Amount(),
	}, nil
}

// recordAudit 日次付与の実行サマリーをdaily_grantタイプの監査ログとして保存する。
// ユーザー単位の残高遷移ではないため、残高の前後は0で記録する
func (s *DailyGrantApplicationService) recordAudit(ctx context.Context, amount int) {
	audit, err := transaction.NewTransaction(
		transaction.NewTransactionID(),
		auditUserID,
		transaction.TransactionTypeDailyGrant,
		amount,
		0,
		0,
	)
	if err == nil {
		err = s.transactionRepo.Save(ctx, audit)
	}
	if err != nil {
		s.logger.Warn(ctx, "Failed to record daily grant audit", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// currentAmount 設定された付与量を取得する。未設定の場合はデフォルト値
func (s *DailyGrantApplicationService) currentAmount(ctx context.Context) (int, error) {
	setting, err := s.settingRepo.Find(ctx, grantsetting.DailySettingName)
	if err == grantsetting.ErrSettingNotFound {
		return grantsetting.DefaultDailyAmount, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find setting: %w", err)
	}
	return setting.Amount(), nil
}
