package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gacha-server/internal/domain/points"
)

// ErrOptimisticLock 楽観的ロックの競合エラー
var ErrOptimisticLock = errors.New("optimistic lock failed: version mismatch or balance not found")

// PointsRepository MySQL実装のBalanceRepository
type PointsRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewPointsRepository 新しいPointsRepositoryを作成
func NewPointsRepository(db *DB) *PointsRepository {
	return &PointsRepository{
		db:     db,
		tracer: otel.Tracer("points-repository"),
	}
}

// FindByUserID ユーザーIDで残高を取得
func (r *PointsRepository) FindByUserID(ctx context.Context, userID string) (*points.Balance, error) {
	ctx, span := r.tracer.Start(ctx, "PointsRepository.FindByUserID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", userID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "point_balances"),
	)

	query := `
		SELECT user_id, points, version
		FROM point_balances
		WHERE user_id = ?
	`

	var dbUserID string
	var pts int
	var version int

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&dbUserID, &pts, &version)
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "balance not found")
		return nil, points.ErrBalanceNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find balance: %w", err)
	}

	span.SetAttributes(
		attribute.Int("db.points", pts),
		attribute.Int("db.version", version),
	)
	span.SetStatus(otelcodes.Ok, "balance found")

	b, err := points.NewBalance(dbUserID, pts, version)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct balance entity: %w", err)
	}

	return b, nil
}

// Create 新しい残高を作成。既存レコードがある場合は何もしない
// （同時初回アクセスで既存の残高を上書きしないためINSERT IGNOREを使う）
func (r *PointsRepository) Create(ctx context.Context, b *points.Balance) error {
	ctx, span := r.tracer.Start(ctx, "PointsRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", b.UserID()),
		attribute.Int("db.points", b.Points()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "point_balances"),
	)

	query := `
		INSERT IGNORE INTO point_balances (user_id, points, version)
		VALUES (?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, b.UserID(), b.Points(), b.Version())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to create balance: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "balance created")
	return nil
}

// Save 残高を保存（更新、楽観的ロック対応）
func (r *PointsRepository) Save(ctx context.Context, b *points.Balance) error {
	ctx, span := r.tracer.Start(ctx, "PointsRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", b.UserID()),
		attribute.Int("db.points", b.Points()),
		attribute.Int("db.version", b.Version()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "point_balances"),
	)

	// エンティティ側でversionがインクリメント済みのため、WHERE句は更新前のversionと比較する
	query := `
		UPDATE point_balances
		SET points = ?, version = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND version = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		b.Points(),
		b.Version(),
		b.UserID(),
		b.Version()-1,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		span.RecordError(ErrOptimisticLock)
		span.SetStatus(otelcodes.Error, ErrOptimisticLock.Error())
		return ErrOptimisticLock
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
	span.SetStatus(otelcodes.Ok, "balance saved")
	return nil
}

// GrantCappedAll 全ユーザーに上限付きでポイントを付与し、残高が増えたユーザー数を返す。
// 1文のUPDATEで各行が独立にアトミックに更新される。既に上限の残高は変化しない
func (r *PointsRepository) GrantCappedAll(ctx context.Context, amount int) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "PointsRepository.GrantCappedAll")
	defer span.End()

	span.SetAttributes(
		attribute.Int("db.amount", amount),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "point_balances"),
	)

	if amount < 0 {
		return 0, points.ErrInvalidAmount
	}
	if amount == 0 {
		span.SetStatus(otelcodes.Ok, "nothing to grant")
		return 0, nil
	}

	query := `
		UPDATE point_balances
		SET points = LEAST(?, points + ?), version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE points < ?
	`

	result, err := r.db.ExecContext(ctx, query, points.Cap, amount, points.Cap)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fmt.Errorf("failed to grant points to all users: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", affected))
	span.SetStatus(otelcodes.Ok, "points granted")
	return affected, nil
}

// CountUsers 残高レコードを持つユーザー数を返す
func (r *PointsRepository) CountUsers(ctx context.Context) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "PointsRepository.CountUsers")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "point_balances"),
	)

	query := `
		SELECT COUNT(*) FROM point_balances
	`

	var count int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	span.SetAttributes(attribute.Int64("db.user_count", count))
	span.SetStatus(otelcodes.Ok, "users counted")
	return count, nil
}
