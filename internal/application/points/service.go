// Package points ポイント残高のアプリケーションサービスを提供する。
package points

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gacha-server/internal/domain/points"
	"gacha-server/internal/domain/transaction"
	otelinfra "gacha-server/internal/infrastructure/observability/otel"
)

// PointsApplicationService ポイントアプリケーションサービス
type PointsApplicationService struct {
	balanceRepo     points.BalanceRepository
	transactionRepo transaction.TransactionRepository
	txManager       transaction.TransactionManager
	logger          *otelinfra.Logger
	metrics         *otelinfra.Metrics
	tracer          trace.Tracer
	maxRetries      int
}

// NewPointsApplicationService 新しいPointsApplicationServiceを作成
func NewPointsApplicationService(
	balanceRepo points.BalanceRepository,
	transactionRepo transaction.TransactionRepository,
	txManager transaction.TransactionManager,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *PointsApplicationService {
	return &PointsApplicationService{
		balanceRepo:     balanceRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
		logger:          logger,
		metrics:         metrics,
		tracer:          otel.Tracer("points-service"),
		maxRetries:      3,
	}
}

// GetBalance 残高を取得。初回アクセス時は初期ポイントで残高を作成する
func (s *PointsApplicationService) GetBalance(ctx context.Context, req *GetBalanceRequest) (*GetBalanceResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PointsApplicationService.GetBalance")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
	)

	b, err := s.findOrCreate(ctx, req.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to get balance", err, map[string]interface{}{
			"user_id": req.UserID,
		})
		return nil, err
	}

	s.metrics.RecordPointsBalance(ctx, req.UserID, int64(b.Points()))

	return &GetBalanceResponse{
		UserID: b.UserID(),
		Points: b.Points(),
		Cap:    points.Cap,
	}, nil
}

// Grant ポイントを付与（管理者用）。上限を超える分は切り捨てられる
func (s *PointsApplicationService) Grant(ctx context.Context, req *GrantRequest) (*GrantResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PointsApplicationService.Grant")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.Int("amount", req.Amount),
	)

	s.logger.Info(ctx, "Granting points", map[string]interface{}{
		"user_id":   req.UserID,
		"amount":    req.Amount,
		"requester": req.Requester,
	})

	if req.Amount <= 0 {
		err := points.ErrInvalidAmount
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	transactionID := transaction.NewTransactionID()

	var result *GrantResponse
	err := s.txManager.WithTransaction(ctx, func(tx *sql.Tx) error {
		var retryErr error
		for attempt := 0; attempt < s.maxRetries; attempt++ {
			if attempt > 0 {
				backoff := time.Duration(math.Pow(2, float64(attempt-1))) * 10 * time.Millisecond
				time.Sleep(backoff)
			}

			b, err := s.findOrCreate(ctx, req.UserID)
			if err != nil {
				return err
			}

			balanceBefore := b.Points()
			changed, err := b.GrantCapped(req.Amount)
			if err != nil {
				return err
			}

			if err := s.balanceRepo.Save(ctx, b); err != nil {
				if attempt < s.maxRetries-1 {
					retryErr = err
					continue
				}
				return fmt.Errorf("failed to save balance after retries: %w", err)
			}

			txn, err := transaction.NewTransaction(
				transactionID,
				req.UserID,
				transaction.TransactionTypeGrant,
				req.Amount,
				balanceBefore,
				b.Points(),
			)
			if err != nil {
				return err
			}
			txn.WithRequester(req.Requester)

			if err := s.transactionRepo.Save(ctx, txn); err != nil {
				return fmt.Errorf("failed to save transaction: %w", err)
			}

			s.metrics.RecordGrant(ctx, "grant", int64(req.Amount))
			s.metrics.RecordPointsBalance(ctx, req.UserID, int64(b.Points()))

			result = &GrantResponse{
				TransactionID: transactionID,
				UserID:        req.UserID,
				BalanceAfter:  b.Points(),
				Changed:       changed,
			}

			return nil
		}

		return retryErr
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to grant points", err, map[string]interface{}{
			"user_id": req.UserID,
			"amount":  req.Amount,
		})
		s.metrics.RecordError(ctx, "grant_failed")
		return nil, err
	}

	s.logger.Info(ctx, "Points granted successfully", map[string]interface{}{
		"user_id":        req.UserID,
		"transaction_id": transactionID,
		"balance_after":  result.BalanceAfter,
	})

	return result, nil
}

// GrantAll 既知の全ユーザーにポイントを一括付与する（管理者用）。
// 上限到達済みのユーザーは変化せず、残高が増えたユーザー数を返す
func (s *PointsApplicationService) GrantAll(ctx context.Context, req *GrantAllRequest) (*GrantAllResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PointsApplicationService.GrantAll")
	defer span.End()

	span.SetAttributes(attribute.Int("amount", req.Amount))

	s.logger.Info(ctx, "Granting points to all users", map[string]interface{}{
		"amount":    req.Amount,
		"requester": req.Requester,
	})

	if req.Amount <= 0 {
		err := points.ErrInvalidAmount
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	granted, err := s.balanceRepo.GrantCappedAll(ctx, req.Amount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to grant points to all users", err, map[string]interface{}{
			"amount": req.Amount,
		})
		s.metrics.RecordError(ctx, "grant_all_failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int64("granted_users", granted))
	s.metrics.RecordGrant(ctx, "grant_all", int64(req.Amount))

	s.logger.Info(ctx, "Points granted to all users", map[string]interface{}{
		"amount":        req.Amount,
		"granted_users": granted,
	})

	return &GrantAllResponse{
		Amount:       req.Amount,
		GrantedUsers: granted,
	}, nil
}

// SetBalance 残高を指定値に上書きする（管理者用）
func (s *PointsApplicationService) SetBalance(ctx context.Context, req *SetBalanceRequest) (*SetBalanceResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PointsApplicationService.SetBalance")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.Int("points", req.Points),
	)

	s.logger.Info(ctx, "Setting balance", map[string]interface{}{
		"user_id":   req.UserID,
		"points":    req.Points,
		"requester": req.Requester,
	})

	if req.Points < 0 || req.Points > points.Cap {
		err := points.ErrPointsOutOfRange
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	transactionID := transaction.NewTransactionID()

	var result *SetBalanceResponse
	err := s.txManager.WithTransaction(ctx, func(tx *sql.Tx) error {
		var retryErr error
		for attempt := 0; attempt < s.maxRetries; attempt++ {
			if attempt > 0 {
				backoff := time.Duration(math.Pow(2, float64(attempt-1))) * 10 * time.Millisecond
				time.Sleep(backoff)
			}

			b, err := s.findOrCreate(ctx, req.UserID)
			if err != nil {
				return err
			}

			balanceBefore := b.Points()
			if err := b.Set(req.Points); err != nil {
				return err
			}

			if err := s.balanceRepo.Save(ctx, b); err != nil {
				if attempt < s.maxRetries-1 {
					retryErr = err
					continue
				}
				return fmt.Errorf("failed to save balance after retries: %w", err)
			}

			diff := b.Points() - balanceBefore
			if diff < 0 {
				diff = -diff
			}

			txn, err := transaction.NewTransaction(
				transactionID,
				req.UserID,
				transaction.TransactionTypeAdminSet,
				diff,
				balanceBefore,
				b.Points(),
			)
			if err != nil {
				return err
			}
			txn.WithRequester(req.Requester)

			if err := s.transactionRepo.Save(ctx, txn); err != nil {
				return fmt.Errorf("failed to save transaction: %w", err)
			}

			s.metrics.RecordPointsBalance(ctx, req.UserID, int64(b.Points()))

			result = &SetBalanceResponse{
				TransactionID: transactionID,
				UserID:        req.UserID,
				Points:        b.Points(),
			}

			return nil
		}

		return retryErr
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to set balance", err, map[string]interface{}{
			"user_id": req.UserID,
			"points":  req.Points,
		})
		s.metrics.RecordError(ctx, "set_balance_failed")
		return nil, err
	}

	s.logger.Info(ctx, "Balance set successfully", map[string]interface{}{
		"user_id":        req.UserID,
		"transaction_id": transactionID,
		"points":         result.Points,
	})

	return result, nil
}

// findOrCreate 残高を取得し、存在しない場合は初期ポイントで作成する
func (s *PointsApplicationService) findOrCreate(ctx context.Context, userID string) (*points.Balance, error) {
	b, err := s.balanceRepo.FindByUserID(ctx, userID)
	if err == nil {
		return b, nil
	}
	if err != points.ErrBalanceNotFound {
		return nil, fmt.Errorf("failed to find balance: %w", err)
	}

	b, err = points.NewDefaultBalance(userID)
	if err != nil {
		return nil, err
	}
	if err := s.balanceRepo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create balance: %w", err)
	}

	// 同時アクセスで別の作成が先行した可能性があるため再取得する
	return s.balanceRepo.FindByUserID(ctx, userID)
}
