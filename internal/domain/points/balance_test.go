package points

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBalance(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		points    int
		version   int
		wantError error
	}{
		{
			name:    "正常系: 残高の作成",
			userID:  "123456789012345678",
			points:  10,
			version: 1,
		},
		{
			name:    "正常系: 残高0",
			userID:  "123456789012345678",
			points:  0,
			version: 0,
		},
		{
			name:    "正常系: 上限ちょうど",
			userID:  "123456789012345678",
			points:  Cap,
			version: 0,
		},
		{
			name:      "異常系: マイナス残高",
			userID:    "123456789012345678",
			points:    -1,
			wantError: ErrPointsOutOfRange,
		},
		{
			name:      "異常系: 上限超過",
			userID:    "123456789012345678",
			points:    Cap + 1,
			wantError: ErrPointsOutOfRange,
		},
		{
			name:      "異常系: 無効なユーザーID",
			userID:    "user with spaces",
			points:    10,
			wantError: ErrInvalidUserID,
		},
		{
			name:      "異常系: 空のユーザーID",
			userID:    "",
			points:    10,
			wantError: ErrInvalidUserID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewBalance(tt.userID, tt.points, tt.version)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.userID, got.UserID())
			assert.Equal(t, tt.points, got.Points())
			assert.Equal(t, tt.version, got.Version())
		})
	}
}

func TestNewDefaultBalance(t *testing.T) {
	b, err := NewDefaultBalance("123456789012345678")
	require.NoError(t, err)
	assert.Equal(t, DefaultPoints, b.Points())
	assert.Equal(t, 0, b.Version())
}

func TestBalance_Debit(t *testing.T) {
	tests := []struct {
		name        string
		balance     *Balance
		amount      int
		wantPoints  int
		wantVersion int
		wantError   error
	}{
		{
			name:        "正常系: 1ポイント消費",
			balance:     MustNewBalance("123456789012345678", 15, 1),
			amount:      1,
			wantPoints:  14,
			wantVersion: 2,
		},
		{
			name:        "正常系: 残高ちょうど消費",
			balance:     MustNewBalance("123456789012345678", 3, 0),
			amount:      3,
			wantPoints:  0,
			wantVersion: 1,
		},
		{
			name:      "異常系: 残高不足",
			balance:   MustNewBalance("123456789012345678", 0, 0),
			amount:    1,
			wantError: ErrInsufficientPoints,
		},
		{
			name:      "異常系: 0ポイント消費",
			balance:   MustNewBalance("123456789012345678", 10, 0),
			amount:    0,
			wantError: ErrInvalidAmount,
		},
		{
			name:      "異常系: マイナス消費",
			balance:   MustNewBalance("123456789012345678", 10, 0),
			amount:    -1,
			wantError: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.balance.Debit(tt.amount)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPoints, tt.balance.Points())
			assert.Equal(t, tt.wantVersion, tt.balance.Version())
		})
	}
}

func TestBalance_GrantCapped(t *testing.T) {
	tests := []struct {
		name        string
		balance     *Balance
		amount      int
		wantPoints  int
		wantChanged bool
		wantError   error
	}{
		{
			name:        "正常系: 上限以下の付与",
			balance:     MustNewBalance("123456789012345678", 5, 0),
			amount:      3,
			wantPoints:  8,
			wantChanged: true,
		},
		{
			name:        "正常系: 上限で切り詰め",
			balance:     MustNewBalance("123456789012345678", 14, 0),
			amount:      3,
			wantPoints:  15,
			wantChanged: true,
		},
		{
			name:        "正常系: 既に上限",
			balance:     MustNewBalance("123456789012345678", 15, 0),
			amount:      3,
			wantPoints:  15,
			wantChanged: false,
		},
		{
			name:        "正常系: 0ポイント付与",
			balance:     MustNewBalance("123456789012345678", 5, 0),
			amount:      0,
			wantPoints:  5,
			wantChanged: false,
		},
		{
			name:      "異常系: マイナス付与",
			balance:   MustNewBalance("123456789012345678", 5, 0),
			amount:    -1,
			wantError: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed, err := tt.balance.GrantCapped(tt.amount)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPoints, tt.balance.Points())
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestBalance_Set(t *testing.T) {
	b := MustNewBalance("123456789012345678", 5, 1)

	require.NoError(t, b.Set(12))
	assert.Equal(t, 12, b.Points())
	assert.Equal(t, 2, b.Version())

	assert.ErrorIs(t, b.Set(-1), ErrPointsOutOfRange)
	assert.ErrorIs(t, b.Set(Cap+1), ErrPointsOutOfRange)
	assert.Equal(t, 12, b.Points())
}

// 操作列に対する不変条件: どの時点でも 0 <= points <= Cap
func TestBalance_Invariant(t *testing.T) {
	b := MustNewBalance("123456789012345678", DefaultPoints, 0)

	ops := []func() error{
		func() error { return b.Debit(1) },
		func() error { _, err := b.GrantCapped(7); return err },
		func() error { return b.Debit(15) },
		func() error { _, err := b.GrantCapped(100); return err },
		func() error { return b.Debit(15) },
		func() error { _, err := b.GrantCapped(3); return err },
	}

	for _, op := range ops {
		_ = op()
		assert.GreaterOrEqual(t, b.Points(), 0)
		assert.LessOrEqual(t, b.Points(), Cap)
	}
}
