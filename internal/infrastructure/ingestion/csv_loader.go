// Package ingestion CSVファイルからガチャカタログを投入する。
// ファイル名（拡張子を除く）がコレクション名になる。
package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gacha-server/internal/domain/catalog"
	appotel "gacha-server/internal/infrastructure/observability/otel"
)

// 必須カラム。ヘッダー行の列順は問わない
const (
	columnNo        = "No."
	columnURL       = "url"
	columnCharacter = "chname"
	columnRarity    = "rarity"
	columnRate      = "rate"
	columnTitle     = "title"
)

// Loader CSVカタログローダー
type Loader struct {
	repo   catalog.ItemRepository
	logger *appotel.Logger
	tracer trace.Tracer
}

// NewLoader 新しいLoaderを作成
func NewLoader(repo catalog.ItemRepository, logger *appotel.Logger) *Loader {
	return &Loader{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("catalog-loader"),
	}
}

// LoadDir ディレクトリ内の全CSVファイルを投入し、新規投入された総件数を返す
func (l *Loader) LoadDir(ctx context.Context, dir string) (int64, error) {
	ctx, span := l.tracer.Start(ctx, "Loader.LoadDir")
	defer span.End()

	span.SetAttributes(attribute.String("ingestion.dir", dir))

	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fmt.Errorf("failed to list csv files: %w", err)
	}

	var total int64
	for _, path := range paths {
		inserted, err := l.LoadFile(ctx, path)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return total, fmt.Errorf("failed to load %s: %w", path, err)
		}
		total += inserted
	}

	span.SetAttributes(
		attribute.Int("ingestion.file_count", len(paths)),
		attribute.Int64("ingestion.inserted", total),
	)
	span.SetStatus(otelcodes.Ok, "catalog loaded")
	return total, nil
}

// LoadFile 1つのCSVファイルを投入し、新規投入された件数を返す。
// 既存の(collection, item_id)はスキップされるため再実行しても重複しない
func (l *Loader) LoadFile(ctx context.Context, path string) (int64, error) {
	ctx, span := l.tracer.Start(ctx, "Loader.LoadFile")
	defer span.End()

	collection := collectionName(path)
	span.SetAttributes(
		attribute.String("ingestion.path", path),
		attribute.String("ingestion.collection", collection),
	)

	f, err := os.Open(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	items, err := l.parse(ctx, f, collection)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, err
	}

	inserted, err := l.repo.BulkInsert(ctx, items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, err
	}

	l.logger.Info(ctx, "catalog file loaded", map[string]interface{}{
		"collection": collection,
		"rows":       len(items),
		"inserted":   inserted,
	})

	span.SetAttributes(attribute.Int64("ingestion.inserted", inserted))
	span.SetStatus(otelcodes.Ok, "file loaded")
	return inserted, nil
}

// parse ヘッダー付きCSVをアイテム一覧に変換する
func (l *Loader) parse(ctx context.Context, r io.Reader, collection string) ([]*catalog.Item, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{columnNo, columnURL, columnCharacter, columnRarity, columnRate, columnTitle} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing csv column %q", required)
		}
	}

	var items []*catalog.Item
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}

		itemID := strings.TrimSpace(record[index[columnNo]])
		rarityStr := strings.TrimSpace(record[index[columnRarity]])
		weight := l.parseRate(ctx, itemID, record[index[columnRate]])

		rarity, err := catalog.NewRarity(rarityStr)
		if err != nil {
			// 不正な行1つでファイル全体を失敗させない
			l.logger.Warn(ctx, "skipping row with invalid rarity", map[string]interface{}{
				"collection": collection,
				"item_id":    itemID,
				"rarity":     rarityStr,
			})
			continue
		}

		item, err := catalog.NewItem(
			collection,
			itemID,
			strings.TrimSpace(record[index[columnTitle]]),
			strings.TrimSpace(record[index[columnCharacter]]),
			rarity,
			weight,
			strings.TrimSpace(record[index[columnURL]]),
		)
		if err != nil {
			l.logger.Warn(ctx, "skipping invalid row", map[string]interface{}{
				"collection": collection,
				"item_id":    itemID,
				"error":      err.Error(),
			})
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

// parseRate 排出率をパースする。空文字・不正値は0.0（排出されない）として扱う
func (l *Loader) parseRate(ctx context.Context, itemID, raw string) float64 {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0.0
	}
	rate, err := strconv.ParseFloat(value, 64)
	if err != nil || rate < 0 {
		l.logger.Warn(ctx, "invalid rate, using 0.0", map[string]interface{}{
			"item_id": itemID,
			"rate":    raw,
		})
		return 0.0
	}
	return rate
}

// collectionName ファイルパスからコレクション名を導出する
func collectionName(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}
