package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gacha-server/internal/domain/grantsetting"
)

// GrantSettingRepository MySQL実装のgrantsetting.Repository
type GrantSettingRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewGrantSettingRepository 新しいGrantSettingRepositoryを作成
func NewGrantSettingRepository(db *DB) *GrantSettingRepository {
	return &GrantSettingRepository{
		db:     db,
		tracer: otel.Tracer("grant-setting-repository"),
	}
}

// Find 設定名で設定を取得
func (r *GrantSettingRepository) Find(ctx context.Context, name string) (*grantsetting.Setting, error) {
	ctx, span := r.tracer.Start(ctx, "GrantSettingRepository.Find")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.setting_name", name),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "grant_settings"),
	)

	query := `
		SELECT name, amount
		FROM grant_settings
		WHERE name = ?
	`

	var dbName string
	var amount int
	err := r.db.QueryRowContext(ctx, query, name).Scan(&dbName, &amount)
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "setting not found")
		return nil, grantsetting.ErrSettingNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find grant setting: %w", err)
	}

	setting, err := grantsetting.NewSetting(dbName, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct grant setting: %w", err)
	}

	span.SetAttributes(attribute.Int("db.amount", amount))
	span.SetStatus(otelcodes.Ok, "setting found")
	return setting, nil
}

// Save 設定を保存（upsert）
func (r *GrantSettingRepository) Save(ctx context.Context, setting *grantsetting.Setting) error {
	ctx, span := r.tracer.Start(ctx, "GrantSettingRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.setting_name", setting.Name()),
		attribute.Int("db.amount", setting.Amount()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "grant_settings"),
	)

	query := `
		INSERT INTO grant_settings (name, amount)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE amount = VALUES(amount), updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query, setting.Name(), setting.Amount())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save grant setting: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "setting saved")
	return nil
}
