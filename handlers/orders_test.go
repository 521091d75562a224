package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockedOrderRow(orderID, propertyID, customerID uuid.UUID, status string, total float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "property_id", "customer_id", "order_number", "status", "total_amount", "notes", "created_at", "updated_at"}).
		AddRow(orderID.String(), propertyID.String(), customerID.String(), "BH-20260812-000042", status, total, nil, sampleTime(), sampleTime())
}

func TestTransitionOrderStatusInvalidEdgeAnswers409(t *testing.T) {
	propertyID := uuid.New()
	orderID := uuid.New()
	customerID := uuid.New()

	h, mock, r, closeDB := newTestRouter(t, propertyID)
	defer closeDB()
	r.PUT("/orders/:id/status", h.TransitionOrderStatus)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, property_id, customer_id, order_number").
		WithArgs(orderID, propertyID).
		WillReturnRows(lockedOrderRow(orderID, propertyID, customerID, "completed", 60.0))
	mock.ExpectRollback()

	body := `{"status":"preparing"}`
	w := performRequest(r, http.MethodPut, "/orders/"+orderID.String()+"/status", body)

	require.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid status transition", resp["error"])
	assert.Equal(t, "completed", resp["from"])
	assert.Equal(t, "preparing", resp["to"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionOrderStatusConfirmFreezesTotal(t *testing.T) {
	propertyID := uuid.New()
	orderID := uuid.New()
	customerID := uuid.New()

	h, mock, r, closeDB := newTestRouter(t, propertyID)
	defer closeDB()
	r.PUT("/orders/:id/status", h.TransitionOrderStatus)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, property_id, customer_id, order_number").
		WithArgs(orderID, propertyID).
		WillReturnRows(lockedOrderRow(orderID, propertyID, customerID, "pending", 0))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"total", "count"}).AddRow(95.5, 3))
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("confirmed", 95.5, sqlmock.AnyArg(), orderID, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_status_history").
		WithArgs(orderID, "confirmed", "staff-1", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	body := `{"status":"confirmed"}`
	w := performRequest(r, http.MethodPut, "/orders/"+orderID.String()+"/status", body)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "confirmed", resp["status"])
	assert.Equal(t, 95.5, resp["total_amount"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveOrderItemFrozenOrderAnswers400(t *testing.T) {
	propertyID := uuid.New()
	orderID := uuid.New()
	customerID := uuid.New()
	itemID := uuid.New()

	h, mock, r, closeDB := newTestRouter(t, propertyID)
	defer closeDB()
	r.DELETE("/orders/:id/items/:itemId", h.RemoveOrderItem)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, property_id, customer_id, order_number").
		WithArgs(orderID, propertyID).
		WillReturnRows(lockedOrderRow(orderID, propertyID, customerID, "confirmed", 60.0))
	mock.ExpectRollback()

	w := performRequest(r, http.MethodDelete, "/orders/"+orderID.String()+"/items/"+itemID.String(), "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "items are frozen")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderUnknownAnswers404(t *testing.T) {
	propertyID := uuid.New()
	orderID := uuid.New()

	h, mock, r, closeDB := newTestRouter(t, propertyID)
	defer closeDB()
	r.GET("/orders/:id", h.GetOrder)

	mock.ExpectQuery("FROM orders").
		WithArgs(orderID, propertyID).
		WillReturnError(sql.ErrNoRows)

	w := performRequest(r, http.MethodGet, "/orders/"+orderID.String(), "")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdersUnknownStatusAnswers400(t *testing.T) {
	propertyID := uuid.New()

	h, mock, r, closeDB := newTestRouter(t, propertyID)
	defer closeDB()
	r.GET("/orders", h.ListOrders)

	w := performRequest(r, http.MethodGet, "/orders?status=shipped", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unknown status")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderHistoryOrderedOldestFirst(t *testing.T) {
	propertyID := uuid.New()
	orderID := uuid.New()

	h, mock, r, closeDB := newTestRouter(t, propertyID)
	defer closeDB()
	r.GET("/orders/:id/history", h.GetOrderHistory)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(orderID, propertyID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	rows := sqlmock.NewRows([]string{"id", "order_id", "status", "actor", "notes", "created_at"}).
		AddRow(int64(1), orderID.String(), "pending", "staff-1", "order created", sampleTime()).
		AddRow(int64(2), orderID.String(), "confirmed", "staff-1", nil, sampleTime().Add(5*time.Minute))
	mock.ExpectQuery("FROM order_status_history").
		WithArgs(orderID).
		WillReturnRows(rows)

	w := performRequest(r, http.MethodGet, "/orders/"+orderID.String()+"/history", "")

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		History []struct {
			Status string `json:"status"`
			Actor  string `json:"actor"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.History, 2)
	assert.Equal(t, "pending", resp.History[0].Status)
	assert.Equal(t, "confirmed", resp.History[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
