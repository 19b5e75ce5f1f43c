// Package history ポイント変動履歴のアプリケーションサービスを提供する。
package history

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gacha-server/internal/domain/transaction"
	otelinfra "gacha-server/internal/infrastructure/observability/otel"
)

// HistoryApplicationService 履歴アプリケーションサービス
type HistoryApplicationService struct {
	transactionRepo transaction.TransactionRepository
	logger          *otelinfra.Logger
	metrics         *otelinfra.Metrics
	tracer          trace.Tracer
}

// NewHistoryApplicationService 新しいHistoryApplicationServiceを作成
func NewHistoryApplicationService(
	transactionRepo transaction.TransactionRepository,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *HistoryApplicationService {
	return &HistoryApplicationService{
		transactionRepo: transactionRepo,
		logger:          logger,
		metrics:         metrics,
		tracer:          otel.Tracer("history-service"),
	}
}

// GetTransactionHistory トランザクション履歴を取得
func (s *HistoryApplicationService) GetTransactionHistory(ctx context.Context, req *GetTransactionHistoryRequest) (*GetTransactionHistoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.GetTransactionHistory")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.Int("limit", req.Limit),
		attribute.Int("offset", req.Offset),
	)

	s.logger.Info(ctx, "Getting transaction history", map[string]interface{}{
		"user_id":          req.UserID,
		"limit":            req.Limit,
		"offset":           req.Offset,
		"transaction_type": req.TransactionType,
		"collection":       req.Collection,
	})

	// バリデーション
	if req.Limit <= 0 {
		req.Limit = 50 // デフォルト値
	}
	if req.Limit > 100 {
		req.Limit = 100 // 最大値
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	// トランザクション履歴を取得
	transactions, err := s.transactionRepo.FindByUserID(ctx, req.UserID, req.Limit, req.Offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to get transaction history", err, map[string]interface{}{
			"user_id": req.UserID,
		})
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}

	// フィルタリング
	filteredTransactions := make([]*transaction.Transaction, 0, len(transactions))
	for _, txn := range transactions {
		// トランザクションタイプフィルタ
		if req.TransactionType != "" {
			transactionType, err := transaction.NewTransactionType(req.TransactionType)
			if err == nil && txn.TransactionType() != transactionType {
				continue
			}
		}

		// コレクションフィルタ（抽選関連の行のみ対象）
		if req.Collection != "" {
			if txn.Collection() == nil || *txn.Collection() != req.Collection {
				continue
			}
		}

		filteredTransactions = append(filteredTransactions, txn)
	}

	return &GetTransactionHistoryResponse{
		Transactions: filteredTransactions,
		Total:        len(filteredTransactions),
		Limit:        req.Limit,
		Offset:       req.Offset,
	}, nil
}
