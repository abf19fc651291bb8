package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"expense_tracker/internal/models"
	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerRes service.AuthResult
	registerErr error
	loginRes    service.AuthResult
	loginErr    error
	parseID     int64
	parseErr    error

	lastRegister   service.RegisterInput
	lastLogin      service.LoginInput
	lastParseToken string
}

func (m *mockAuth) Register(_ context.Context, in service.RegisterInput) (service.AuthResult, error) {
	m.lastRegister = in
	return m.registerRes, m.registerErr
}

func (m *mockAuth) Login(_ context.Context, in service.LoginInput) (service.AuthResult, error) {
	m.lastLogin = in
	return m.loginRes, m.loginErr
}

func (m *mockAuth) ParseToken(token string) (int64, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockExpenses struct {
	mu      sync.Mutex // the websocket feed reads from the server goroutine
	expense models.Expense
	list    []models.Expense
	err     error

	calls      int
	lastUserID int64
	lastID     int64
	lastCreate service.CreateExpenseInput
	lastUpdate service.UpdateExpenseInput
	lastFilter service.ListFilter
}

func (m *mockExpenses) Create(_ context.Context, userID int64, in service.CreateExpenseInput) (models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastUserID, m.lastCreate = userID, in
	return m.expense, m.err
}

func (m *mockExpenses) List(_ context.Context, userID int64, f service.ListFilter) ([]models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastUserID, m.lastFilter = userID, f
	return m.list, m.err
}

func (m *mockExpenses) Get(_ context.Context, userID, id int64) (models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastUserID, m.lastID = userID, id
	return m.expense, m.err
}

func (m *mockExpenses) Update(_ context.Context, userID, id int64, in service.UpdateExpenseInput) (models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastUserID, m.lastID, m.lastUpdate = userID, id, in
	return m.expense, m.err
}

func (m *mockExpenses) Delete(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastUserID, m.lastID = userID, id
	return m.err
}

func (m *mockExpenses) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, Options{})
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// serve performs a request against r; body may be empty.
func serve(r http.Handler, method, path, body string, hdr http.Header) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	for k, v := range hdr {
		req.Header[k] = v
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeMessage(w *httptest.ResponseRecorder) string {
	var out ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out.Message
}
