package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gacha-server/internal/domain/transaction"
)

// TransactionRepository MySQL実装のTransactionRepository
type TransactionRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewTransactionRepository 新しいTransactionRepositoryを作成
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		tracer: otel.Tracer("transaction-repository"),
	}
}

// Save トランザクションを保存
func (r *TransactionRepository) Save(ctx context.Context, t *transaction.Transaction) error {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.transaction_id", t.TransactionID()),
		attribute.String("db.user_id", t.UserID()),
		attribute.String("db.transaction_type", t.TransactionType().String()),
		attribute.Int("db.amount", t.Amount()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "point_transactions"),
	)

	query := `
		INSERT INTO point_transactions (
			transaction_id, user_id, transaction_type,
			amount, balance_before, balance_after,
			collection, item_id, requester, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var collectionValue interface{}
	if c := t.Collection(); c != nil {
		collectionValue = *c
	}
	var itemIDValue interface{}
	if i := t.ItemID(); i != nil {
		itemIDValue = *i
	}
	var requesterValue interface{}
	if req := t.Requester(); req != nil {
		requesterValue = *req
	}

	_, err := r.db.ExecContext(ctx, query,
		t.TransactionID(),
		t.UserID(),
		t.TransactionType().String(),
		t.Amount(),
		t.BalanceBefore(),
		t.BalanceAfter(),
		collectionValue,
		itemIDValue,
		requesterValue,
		t.CreatedAt(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "transaction saved")
	return nil
}

// scanTransaction 1行分のカラムからエンティティを復元する
func scanTransaction(scan func(dest ...interface{}) error) (*transaction.Transaction, error) {
	var dbTransactionID, dbUserID, dbTransactionType string
	var amount, balanceBefore, balanceAfter int
	var collection, itemID, requester sql.NullString
	var createdAt time.Time

	if err := scan(
		&dbTransactionID,
		&dbUserID,
		&dbTransactionType,
		&amount,
		&balanceBefore,
		&balanceAfter,
		&collection,
		&itemID,
		&requester,
		&createdAt,
	); err != nil {
		return nil, err
	}

	tt, err := transaction.NewTransactionType(dbTransactionType)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction type: %w", err)
	}

	var collectionPtr, itemIDPtr, requesterPtr *string
	if collection.Valid {
		collectionPtr = &collection.String
	}
	if itemID.Valid {
		itemIDPtr = &itemID.String
	}
	if requester.Valid {
		requesterPtr = &requester.String
	}

	return transaction.Reconstruct(
		dbTransactionID,
		dbUserID,
		tt,
		amount,
		balanceBefore,
		balanceAfter,
		collectionPtr,
		itemIDPtr,
		requesterPtr,
		createdAt,
	), nil
}

// FindByTransactionID トランザクションIDでトランザクションを取得
func (r *TransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.FindByTransactionID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.transaction_id", transactionID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "point_transactions"),
	)

	query := `
		SELECT
			transaction_id, user_id, transaction_type,
			amount, balance_before, balance_after,
			collection, item_id, requester, created_at
		FROM point_transactions
		WHERE transaction_id = ?
	`

	row := r.db.QueryRowContext(ctx, query, transactionID)
	t, err := scanTransaction(row.Scan)
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "transaction not found")
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	span.SetAttributes(
		attribute.String("db.user_id", t.UserID()),
		attribute.String("db.transaction_type", t.TransactionType().String()),
	)
	span.SetStatus(otelcodes.Ok, "transaction found")
	return t, nil
}

// FindByUserID ユーザーIDでトランザクション一覧を新しい順に取得（ページネーション対応）
func (r *TransactionRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*transaction.Transaction, error) {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.FindByUserID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", userID),
		attribute.Int("db.limit", limit),
		attribute.Int("db.offset", offset),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "point_transactions"),
	)

	query := `
		SELECT
			transaction_id, user_id, transaction_type,
			amount, balance_before, balance_after,
			collection, item_id, requester, created_at
		FROM point_transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	span.SetAttributes(attribute.Int("db.result_count", len(transactions)))
	span.SetStatus(otelcodes.Ok, fmt.Sprintf("found %d transactions", len(transactions)))
	return transactions, nil
}
