package mysql

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gacha-server/internal/domain/catalog"
)

// CatalogRepository MySQL実装のItemRepository
type CatalogRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewCatalogRepository 新しいCatalogRepositoryを作成
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{
		db:     db,
		tracer: otel.Tracer("catalog-repository"),
	}
}

// BulkInsert アイテムを一括投入する。既存の(collection, item_id)はスキップし、
// 新規に投入された件数を返す
func (r *CatalogRepository) BulkInsert(ctx context.Context, items []*catalog.Item) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "CatalogRepository.BulkInsert")
	defer span.End()

	span.SetAttributes(
		attribute.Int("db.item_count", len(items)),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "gacha_items"),
	)

	if len(items) == 0 {
		span.SetStatus(otelcodes.Ok, "nothing to insert")
		return 0, nil
	}

	// seqはAUTO_INCREMENTで採番され、排出判定の走査順になる
	placeholders := make([]string, 0, len(items))
	args := make([]interface{}, 0, len(items)*7)
	for _, item := range items {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			item.Collection(),
			item.ID(),
			item.Title(),
			item.CharacterName(),
			string(item.Rarity()),
			item.Weight(),
			item.MediaRef(),
		)
	}

	query := fmt.Sprintf(`
		INSERT IGNORE INTO gacha_items (collection, item_id, title, character_name, rarity, weight, media_ref)
		VALUES %s
	`, strings.Join(placeholders, ", "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fmt.Errorf("failed to bulk insert items: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", inserted))
	span.SetStatus(otelcodes.Ok, "items inserted")
	return inserted, nil
}

// FindByCollection コレクションの全アイテムを投入順(seq昇順)で取得
func (r *CatalogRepository) FindByCollection(ctx context.Context, collection string) ([]*catalog.Item, error) {
	ctx, span := r.tracer.Start(ctx, "CatalogRepository.FindByCollection")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.collection", collection),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "gacha_items"),
	)

	query := `
		SELECT collection, item_id, title, character_name, rarity, weight, media_ref
		FROM gacha_items
		WHERE collection = ?
		ORDER BY seq ASC
	`

	rows, err := r.db.QueryContext(ctx, query, collection)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find items: %w", err)
	}
	defer rows.Close()

	var items []*catalog.Item
	for rows.Next() {
		var col, itemID, title, characterName, rarityStr, mediaRef string
		var weight float64
		if err := rows.Scan(&col, &itemID, &title, &characterName, &rarityStr, &weight, &mediaRef); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}

		rarity, err := catalog.NewRarity(rarityStr)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct rarity: %w", err)
		}

		item, err := catalog.NewItem(col, itemID, title, characterName, rarity, weight, mediaRef)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct item entity: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	span.SetAttributes(attribute.Int("db.item_count", len(items)))
	span.SetStatus(otelcodes.Ok, "items found")
	return items, nil
}

// ListCollections 存在する全コレクション名を取得
func (r *CatalogRepository) ListCollections(ctx context.Context) ([]string, error) {
	ctx, span := r.tracer.Start(ctx, "CatalogRepository.ListCollections")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "gacha_items"),
	)

	query := `
		SELECT DISTINCT collection
		FROM gacha_items
		ORDER BY collection ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var collections []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, name)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate collections: %w", err)
	}

	span.SetAttributes(attribute.Int("db.collection_count", len(collections)))
	span.SetStatus(otelcodes.Ok, "collections listed")
	return collections, nil
}

// CollectionExists コレクションが存在するかどうかを返す
func (r *CatalogRepository) CollectionExists(ctx context.Context, collection string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "CatalogRepository.CollectionExists")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.collection", collection),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "gacha_items"),
	)

	query := `
		SELECT EXISTS(SELECT 1 FROM gacha_items WHERE collection = ?)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, collection).Scan(&exists); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}

	span.SetAttributes(attribute.Bool("db.collection_exists", exists))
	span.SetStatus(otelcodes.Ok, "collection existence checked")
	return exists, nil
}
