// Package gacha 抽選のアプリケーションサービスを提供する。
package gacha

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

	"gacha-server/internal/domain/catalog"
	"gacha-server/internal/domain/cooldown"
	"gacha-server/internal/domain/gacha"
	"gacha-server/internal/domain/ownership"
	"gacha-server/internal/domain/points"
	"gacha-server/internal/domain/transaction"
	otelinfra "gacha-server/internal/infrastructure/observability/otel"
)

// DrawCost 1回の抽選で消費するポイント
const DrawCost = 1

// GachaApplicationService 抽選アプリケーションサービス
type GachaApplicationService struct {
	balanceRepo     points.BalanceRepository
	catalogRepo     catalog.ItemRepository
	ownershipRepo   ownership.Repository
	transactionRepo transaction.TransactionRepository
	txManager       transaction.TransactionManager
	gate            *cooldown.Gate
	selector        *gacha.Selector
	logger          *otelinfra.Logger
	metrics         *otelinfra.Metrics
	tracer          trace.Tracer
	maxRetries      int
}

// NewGachaApplicationService 新しいGachaApplicationServiceを作成
func NewGachaApplicationService(
	balanceRepo points.BalanceRepository,
	catalogRepo catalog.ItemRepository,
	ownershipRepo ownership.Repository,
	transactionRepo transaction.TransactionRepository,
	txManager transaction.TransactionManager,
	gate *cooldown.Gate,
	selector *gacha.Selector,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *GachaApplicationService {
	return &GachaApplicationService{
		balanceRepo:     balanceRepo,
		catalogRepo:     catalogRepo,
		ownershipRepo:   ownershipRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
		gate:            gate,
		selector:        selector,
		logger:          logger,
		metrics:         metrics,
		tracer:          otel.Tracer("gacha-service"),
		maxRetries:      3,
	}
}

// Draw 抽選を1回実行する。
// クールダウン判定 → 1ポイント消費 → 重み付き抽選 → 所持記録 → 履歴記録の順で処理し、
// ポイント消費後に抽選が失敗した場合は消費分を返金する
func (s *GachaApplicationService) Draw(ctx context.Context, req *DrawRequest) (*DrawResponse, error) {
	ctx, span := s.tracer.Start(ctx, "GachaApplicationService.Draw")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("collection", req.Collection),
	)

	s.logger.Info(ctx, "Drawing item", map[string]interface{}{
		"user_id":    req.UserID,
		"collection": req.Collection,
	})

	// 存在しないコレクションはスタンプもポイント消費も起こさず棄却する
	if err := s.verifyCollection(ctx, req.Collection); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	// クールダウン判定。許可時のみスタンプが進むため、棄却されても次回の判定は変わらない
	gateResult, err := s.gate.CheckAndStamp(ctx, req.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to check cooldown: %w", err)
	}
	if !gateResult.Allowed {
		throttled := &cooldown.ThrottledError{Remaining: gateResult.Remaining}
		span.SetAttributes(attribute.Float64("cooldown.remaining_seconds", gateResult.Remaining.Seconds()))
		span.SetStatus(otelcodes.Ok, "throttled")
		s.metrics.RecordThrottled(ctx)
		return nil, throttled
	}

	transactionID := transaction.NewTransactionID()

	var result *DrawResponse
	err = s.txManager.WithTransaction(ctx, func(tx *sql.Tx) error {
		// 1ポイント消費
		balance, err := s.debit(ctx, req.UserID)
		if err != nil {
			return err
		}

		// 抽選。消費後の失敗はすべて返金してからエラーを返す
		items, err := s.catalogRepo.FindByCollection(ctx, req.Collection)
		if err != nil {
			return s.refundAndWrap(ctx, req, transactionID, fmt.Errorf("failed to load catalog: %w", err))
		}

		item, err := s.selector.Pick(items)
		if err != nil {
			return s.refundAndWrap(ctx, req, transactionID, err)
		}

		isNew, err := s.ownershipRepo.AddIfAbsent(ctx, req.UserID, req.Collection, item.ID())
		if err != nil {
			return s.refundAndWrap(ctx, req, transactionID, fmt.Errorf("failed to record ownership: %w", err))
		}

		txn, err := transaction.NewTransaction(
			transactionID,
			req.UserID,
			transaction.TransactionTypeConsume,
			DrawCost,
			balance.Points()+DrawCost,
			balance.Points(),
		)
		if err != nil {
			return s.refundAndWrap(ctx, req, transactionID, err)
		}
		txn.WithDrawContext(req.Collection, item.ID())

		if err := s.transactionRepo.Save(ctx, txn); err != nil {
			return s.refundAndWrap(ctx, req, transactionID, fmt.Errorf("failed to save transaction: %w", err))
		}

		s.metrics.RecordDraw(ctx, req.Collection, item.Rarity().String(), isNew)
		s.metrics.RecordPointsBalance(ctx, req.UserID, int64(balance.Points()))

		result = &DrawResponse{
			TransactionID: transactionID,
			Item:          toItemView(item),
			IsNew:         isNew,
			BalanceAfter:  balance.Points(),
		}

		return nil
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to draw item", err, map[string]interface{}{
			"user_id":    req.UserID,
			"collection": req.Collection,
		})
		s.metrics.RecordError(ctx, "draw_failed")
		return nil, err
	}

	s.logger.Info(ctx, "Item drawn successfully", map[string]interface{}{
		"user_id":        req.UserID,
		"collection":     req.Collection,
		"item_id":        result.Item.ItemID,
		"is_new":         result.IsNew,
		"transaction_id": transactionID,
	})

	return result, nil
}

// ListCatalog コレクションの全アイテムを取得
func (s *GachaApplicationService) ListCatalog(ctx context.Context, req *ListCatalogRequest) (*ListCatalogResponse, error) {
	ctx, span := s.tracer.Start(ctx, "GachaApplicationService.ListCatalog")
	defer span.End()

	span.SetAttributes(attribute.String("collection", req.Collection))

	if err := s.verifyCollection(ctx, req.Collection); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	items, err := s.catalogRepo.FindByCollection(ctx, req.Collection)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, toItemView(item))
	}

	return &ListCatalogResponse{
		Collection: req.Collection,
		Items:      views,
	}, nil
}

// ListCollections 存在する全コレクション名を取得
func (s *GachaApplicationService) ListCollections(ctx context.Context) (*ListCollectionsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "GachaApplicationService.ListCollections")
	defer span.End()

	collections, err := s.catalogRepo.ListCollections(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	return &ListCollectionsResponse{Collections: collections}, nil
}

// ListOwned ユーザーの所持アイテム一覧とコレクション進捗を取得
func (s *GachaApplicationService) ListOwned(ctx context.Context, req *ListOwnedRequest) (*ListOwnedResponse, error) {
	ctx, span := s.tracer.Start(ctx, "GachaApplicationService.ListOwned")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("collection", req.Collection),
	)

	if err := s.verifyCollection(ctx, req.Collection); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	itemIDs, err := s.ownershipRepo.FindItemIDs(ctx, req.UserID, req.Collection)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to load owned items: %w", err)
	}

	items, err := s.catalogRepo.FindByCollection(ctx, req.Collection)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	if itemIDs == nil {
		itemIDs = []string{}
	}

	return &ListOwnedResponse{
		Collection: req.Collection,
		ItemIDs:    itemIDs,
		OwnedCount: len(itemIDs),
		TotalCount: len(items),
	}, nil
}

// debit 残高から抽選コストを消費する（楽観的ロックのリトライ付き）
func (s *GachaApplicationService) debit(ctx context.Context, userID string) (*points.Balance, error) {
	var retryErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * 10 * time.Millisecond
			time.Sleep(backoff)
		}

		b, err := s.findOrCreate(ctx, userID)
		if err != nil {
			return nil, err
		}

		if err := b.Debit(DrawCost); err != nil {
			return nil, err
		}

		if err := s.balanceRepo.Save(ctx, b); err != nil {
			if attempt < s.maxRetries-1 {
				retryErr = err
				continue
			}
			return nil, fmt.Errorf("failed to save balance after retries: %w", err)
		}

		return b, nil
	}
	return nil, retryErr
}

// refundAndWrap 消費済みの抽選コストを返金し、返金履歴を記録した上で元のエラーを返す。
// 返金自体が失敗した場合は両方のエラーを返す
func (s *GachaApplicationService) refundAndWrap(ctx context.Context, req *DrawRequest, drawTransactionID string, cause error) error {
	var retryErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * 10 * time.Millisecond
			time.Sleep(backoff)
		}

		b, err := s.findOrCreate(ctx, req.UserID)
		if err != nil {
			return fmt.Errorf("refund failed: %v (original error: %w)", err, cause)
		}

		balanceBefore := b.Points()
		// 消費直前の残高は上限以下だったため、1ポイントの返金が上限で切り捨てられることはない
		if _, err := b.GrantCapped(DrawCost); err != nil {
			return fmt.Errorf("refund failed: %v (original error: %w)", err, cause)
		}

		if err := s.balanceRepo.Save(ctx, b); err != nil {
			if attempt < s.maxRetries-1 {
				retryErr = err
				continue
			}
			return fmt.Errorf("refund failed: %v (original error: %w)", err, cause)
		}

		txn, err := transaction.NewTransaction(
			fmt.Sprintf("%s_refund", drawTransactionID),
			req.UserID,
			transaction.TransactionTypeRefund,
			DrawCost,
			balanceBefore,
			b.Points(),
		)
		if err != nil {
			return fmt.Errorf("refund failed: %v (original error: %w)", err, cause)
		}
		txn.WithCollection(req.Collection)

		if err := s.transactionRepo.Save(ctx, txn); err != nil {
			s.logger.Error(ctx, "Failed to record refund transaction", err, map[string]interface{}{
				"user_id":        req.UserID,
				"transaction_id": drawTransactionID,
			})
		}

		s.logger.Info(ctx, "Draw cost refunded", map[string]interface{}{
			"user_id":    req.UserID,
			"collection": req.Collection,
		})
		s.metrics.RecordGrant(ctx, "refund", DrawCost)

		return cause
	}
	return fmt.Errorf("refund failed: %v (original error: %w)", retryErr, cause)
}

// verifyCollection コレクションの存在を確認し、存在しない場合はErrCollectionNotFoundを返す
func (s *GachaApplicationService) verifyCollection(ctx context.Context, collection string) error {
	exists, err := s.catalogRepo.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return catalog.ErrCollectionNotFound
	}
	return nil
}

// findOrCreate 残高を取得し、存在しない場合は初期ポイントで作成する
func (s *GachaApplicationService) findOrCreate(ctx context.Context, userID string) (*points.Balance, error) {
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

	return s.balanceRepo.FindByUserID(ctx, userID)
}

func toItemView(item *catalog.Item) ItemView {
	return ItemView{
		Collection:    item.Collection(),
		ItemID:        item.ID(),
		Title:         item.Title(),
		CharacterName: item.CharacterName(),
		Rarity:        item.Rarity().String(),
		Weight:        item.Weight(),
		MediaRef:      item.MediaRef(),
	}
}
