package mysql

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OwnershipRepository MySQL実装のownership.Repository
type OwnershipRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewOwnershipRepository 新しいOwnershipRepositoryを作成
func NewOwnershipRepository(db *DB) *OwnershipRepository {
	return &OwnershipRepository{
		db:     db,
		tracer: otel.Tracer("ownership-repository"),
	}
}

// AddIfAbsent (user, collection, item)を未所持の場合のみ追加する。
// INSERT IGNOREの影響行数で初入手かどうかを判定する
func (r *OwnershipRepository) AddIfAbsent(ctx context.Context, userID, collection, itemID string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "OwnershipRepository.AddIfAbsent")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", userID),
		attribute.String("db.collection", collection),
		attribute.String("db.item_id", itemID),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "owned_items"),
	)

	query := `
		INSERT IGNORE INTO owned_items (user_id, collection, item_id)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, userID, collection, itemID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return false, fmt.Errorf("failed to add owned item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	isNew := affected > 0
	span.SetAttributes(attribute.Bool("db.is_new", isNew))
	span.SetStatus(otelcodes.Ok, "owned item recorded")
	return isNew, nil
}

// FindItemIDs ユーザーがコレクション内で所持しているアイテムIDの一覧を取得
func (r *OwnershipRepository) FindItemIDs(ctx context.Context, userID, collection string) ([]string, error) {
	ctx, span := r.tracer.Start(ctx, "OwnershipRepository.FindItemIDs")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", userID),
		attribute.String("db.collection", collection),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "owned_items"),
	)

	query := `
		SELECT item_id
		FROM owned_items
		WHERE user_id = ? AND collection = ?
		ORDER BY item_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, collection)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find owned items: %w", err)
	}
	defer rows.Close()

	var itemIDs []string
	for rows.Next() {
		var itemID string
		if err := rows.Scan(&itemID); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan owned item: %w", err)
		}
		itemIDs = append(itemIDs, itemID)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate owned items: %w", err)
	}

	span.SetAttributes(attribute.Int("db.item_count", len(itemIDs)))
	span.SetStatus(otelcodes.Ok, "owned items found")
	return itemIDs, nil
}

// Contains ユーザーがアイテムを所持しているかどうかを返す
func (r *OwnershipRepository) Contains(ctx context.Context, userID, collection, itemID string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "OwnershipRepository.Contains")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", userID),
		attribute.String("db.collection", collection),
		attribute.String("db.item_id", itemID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "owned_items"),
	)

	query := `
		SELECT COUNT(*)
		FROM owned_items
		WHERE user_id = ? AND collection = ? AND item_id = ?
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, collection, itemID).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return false, fmt.Errorf("failed to check owned item: %w", err)
	}

	owned := count > 0
	span.SetAttributes(attribute.Bool("db.owned", owned))
	span.SetStatus(otelcodes.Ok, "ownership checked")
	return owned, nil
}
