package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	historyapp "gacha-server/internal/application/history"
	"gacha-server/internal/domain/transaction"
	otelinfra "gacha-server/internal/infrastructure/observability/otel"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newHistoryHandler(transactionRepo *MockTransactionRepository) *HistoryHandler {
	tracer := noop.NewTracerProvider().Tracer("test")
	logger := otelinfra.NewLogger(tracer)
	metrics, _ := otelinfra.NewMetrics("test")

	appService := historyapp.NewHistoryApplicationService(transactionRepo, logger, metrics)
	return NewHistoryHandler(appService)
}

func sampleTransactions() []*transaction.Transaction {
	collection := "animals"
	itemID := "007"
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []*transaction.Transaction{
		transaction.Reconstruct("txn-002", "user123", transaction.TransactionTypeConsume, 1, 15, 14, &collection, &itemID, nil, createdAt),
		transaction.Reconstruct("txn-001", "user123", transaction.TransactionTypeDailyGrant, 3, 12, 15, nil, nil, nil, createdAt.Add(-time.Hour)),
	}
}

func TestHistoryHandler_GetTransactionHistory(t *testing.T) {
	tests := []struct {
		name           string
		tokenUserID    string
		query          string
		setupMock      func(*MockTransactionRepository)
		expectedStatus int
		verify         func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "正常系: 履歴取得成功",
			tokenUserID: "user123",
			setupMock: func(mtr *MockTransactionRepository) {
				mtr.On("FindByUserID", mock.Anything, "user123", 50, 0).Return(sampleTransactions(), nil)
			},
			expectedStatus: http.StatusOK,
			verify: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var response TransactionHistoryResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
				require.Len(t, response.Transactions, 2)
				assert.Equal(t, "txn-002", response.Transactions[0].TransactionID)
				assert.Equal(t, "consume", response.Transactions[0].TransactionType)
				assert.Equal(t, "animals", response.Transactions[0].Collection)
				assert.Equal(t, "007", response.Transactions[0].ItemID)
				assert.Equal(t, "daily_grant", response.Transactions[1].TransactionType)
				assert.Empty(t, response.Transactions[1].Collection)
			},
		},
		{
			name:        "正常系: タイプで絞り込み",
			tokenUserID: "user123",
			query:       "?transaction_type=consume",
			setupMock: func(mtr *MockTransactionRepository) {
				mtr.On("FindByUserID", mock.Anything, "user123", 50, 0).Return(sampleTransactions(), nil)
			},
			expectedStatus: http.StatusOK,
			verify: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var response TransactionHistoryResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
				require.Len(t, response.Transactions, 1)
				assert.Equal(t, "consume", response.Transactions[0].TransactionType)
			},
		},
		{
			name:           "異常系: limitが範囲外",
			tokenUserID:    "user123",
			query:          "?limit=500",
			setupMock:      func(mtr *MockTransactionRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "異常系: offsetが不正",
			tokenUserID:    "user123",
			query:          "?offset=-1",
			setupMock:      func(mtr *MockTransactionRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "異常系: user_idがトークンにない",
			tokenUserID:    "",
			setupMock:      func(mtr *MockTransactionRepository) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			mockTransactionRepo := new(MockTransactionRepository)
			tt.setupMock(mockTransactionRepo)
			handler := newHistoryHandler(mockTransactionRepo)

			req := httptest.NewRequest(http.MethodGet, "/me/transactions"+tt.query, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tt.tokenUserID != "" {
				c.Set("user_id", tt.tokenUserID)
			}

			invokeHandler(t, c, handler.GetTransactionHistory)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.verify != nil {
				tt.verify(t, rec)
			}
		})
	}
}

func TestHistoryHandler_GetTransactionHistoryAdmin(t *testing.T) {
	e := echo.New()
	mockTransactionRepo := new(MockTransactionRepository)
	mockTransactionRepo.On("FindByUserID", mock.Anything, "user123", 50, 0).Return(sampleTransactions(), nil)
	handler := newHistoryHandler(mockTransactionRepo)

	req := httptest.NewRequest(http.MethodGet, "/admin/users/user123/transactions", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("user_id")
	c.SetParamValues("user123")

	invokeHandler(t, c, handler.GetTransactionHistoryAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)

	var response TransactionHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Total)
}
