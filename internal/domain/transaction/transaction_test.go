package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransaction(t *testing.T) {
	tests := []struct {
		name            string
		transactionID   string
		userID          string
		transactionType TransactionType
		amount          int
		balanceBefore   int
		balanceAfter    int
		wantError       error
	}{
		{
			name:            "正常系: 抽選消費",
			transactionID:   "txn_1",
			userID:          "123456789012345678",
			transactionType: TransactionTypeConsume,
			amount:          1,
			balanceBefore:   15,
			balanceAfter:    14,
		},
		{
			name:            "正常系: 変動なしの日次付与",
			transactionID:   "txn_2",
			userID:          "123456789012345678",
			transactionType: TransactionTypeDailyGrant,
			amount:          0,
			balanceBefore:   15,
			balanceAfter:    15,
		},
		{
			name:            "異常系: 無効なトランザクションID",
			transactionID:   "",
			userID:          "123456789012345678",
			transactionType: TransactionTypeConsume,
			amount:          1,
			balanceBefore:   15,
			balanceAfter:    14,
			wantError:       ErrInvalidTransactionID,
		},
		{
			name:            "異常系: 無効なトランザクションタイプ",
			transactionID:   "txn_3",
			userID:          "123456789012345678",
			transactionType: TransactionType("bogus"),
			amount:          1,
			balanceBefore:   15,
			balanceAfter:    14,
			wantError:       ErrInvalidTransactionType,
		},
		{
			name:            "異常系: マイナスのポイント数",
			transactionID:   "txn_4",
			userID:          "123456789012345678",
			transactionType: TransactionTypeGrant,
			amount:          -1,
			balanceBefore:   5,
			balanceAfter:    4,
			wantError:       ErrInvalidAmount,
		},
		{
			name:            "異常系: 上限超過の残高",
			transactionID:   "txn_5",
			userID:          "123456789012345678",
			transactionType: TransactionTypeGrant,
			amount:          5,
			balanceBefore:   15,
			balanceAfter:    20,
			wantError:       ErrBalanceOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTransaction(tt.transactionID, tt.userID, tt.transactionType, tt.amount, tt.balanceBefore, tt.balanceAfter)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.transactionID, got.TransactionID())
			assert.Equal(t, tt.transactionType, got.TransactionType())
			assert.Nil(t, got.Collection())
			assert.Nil(t, got.Requester())
		})
	}
}

func TestNewTransactionID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewTransactionID()
		assert.Regexp(t, `^txn_\d+_[0-9a-f]{8}$`, id)
		assert.True(t, idRegex.MatchString(id))

		// 同一ナノ秒で生成されても衝突しないこと
		_, dup := seen[id]
		require.False(t, dup, "duplicate transaction id: %s", id)
		seen[id] = struct{}{}
	}
}

func TestTransaction_WithDrawContext(t *testing.T) {
	txn, err := NewTransaction("txn_1", "123456789012345678", TransactionTypeConsume, 1, 15, 14)
	require.NoError(t, err)

	txn = txn.WithDrawContext("halloween", "012")
	require.NotNil(t, txn.Collection())
	require.NotNil(t, txn.ItemID())
	assert.Equal(t, "halloween", *txn.Collection())
	assert.Equal(t, "012", *txn.ItemID())
}

func TestNewTransactionType(t *testing.T) {
	for _, s := range []string{"grant", "consume", "refund", "daily_grant", "admin_set"} {
		got, err := NewTransactionType(s)
		require.NoError(t, err)
		assert.True(t, got.Valid())
		assert.Equal(t, s, got.String())
	}

	_, err := NewTransactionType("purchase")
	assert.Error(t, err)
}
