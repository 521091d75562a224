package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/thependalorian/buffrhost-sub008/database"
)

// newTestRouter wires a Handler onto a bare router with the auth middleware
// replaced by a stub that scopes every request to the given property.
func newTestRouter(t *testing.T, propertyID uuid.UUID) (*Handler, sqlmock.Sqlmock, *gin.Engine, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	h := NewHandler(&database.DB{DB: db}, nil)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("staff_id", "staff-1")
		c.Set("property_id", propertyID)
		c.Set("role", "manager")
	})

	return h, mock, r, func() { db.Close() }
}

func performRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleTime() time.Time {
	return time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
}
