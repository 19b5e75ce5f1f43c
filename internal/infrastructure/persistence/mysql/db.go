package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gacha-server/internal/infrastructure/config"

	_ "github.com/go-sql-driver/mysql"
)

const pingTimeout = 5 * time.Second

// DB データベース接続を保持する
type DB struct {
	*sql.DB
}

// NewDB 接続プールを設定し、疎通確認済みのデータベース接続を返す
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	sqlDB, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db := &DB{DB: sqlDB}
	if err := db.HealthCheck(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// HealthCheck タイムアウト付きでデータベースへの疎通を確認する
func (db *DB) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	return db.PingContext(ctx)
}
