package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbaminim/order-intake/internal/intake/domain"
	"github.com/arbaminim/order-intake/internal/intake/repository"
)

type mockRepo struct {
	m      sync.Mutex
	orders []*domain.Order
	err    error
}

func (r *mockRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return r.err
	}
	r.orders = append(r.orders, order)
	return nil
}

func (r *mockRepo) ListOrders(context.Context, int) ([]*domain.Order, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.orders, nil
}

func (r *mockRepo) RunMigrations(*repository.Credentials) error { return nil }
func (r *mockRepo) Close() error                                { return nil }

type mockPublisher struct {
	m      sync.Mutex
	events []*domain.Order
	err    error
}

func (p *mockPublisher) PublishAccepted(_ context.Context, order *domain.Order) error {
	p.m.Lock()
	defer p.m.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, order)
	return nil
}

func newTestRouter(repo repository.OrderRepository, pub EventPublisher) *chi.Mux {
	handler := NewIntakeHandler(repo, pub, 5*time.Second)
	r := chi.NewRouter()
	r.Get("/orders", handler.Ready)
	r.Post("/orders", handler.SubmitOrder)
	return r
}

func validFormBody() url.Values {
	form := url.Values{}
	form.Set("fullName", "יהודה כהן")
	form.Set("phone", "050-1234567")
	form.Set("city", "ירושלים")
	form.Set("address", "רחוב הדקל 5")
	form.Set("terms", "מאושר")
	form.Set("contactApproval", "מאושר")
	form.Set("totalPrice", "68")
	form.Set("totalItems", "1")
	form.Set("detailedOrderSummary", "לולב - כשר × 2 = 68₪")
	form.Set("hasLulav", "כן")
	return form
}

func TestSubmitOrder_FormEncoded(t *testing.T) {
	repo := &mockRepo{}
	pub := &mockPublisher{}
	router := newTestRouter(repo, pub)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validFormBody().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ההזמנה נשמרה בהצלחה!", resp.Message)
	assert.NotEmpty(t, resp.OrderNumber)
	assert.NotEmpty(t, resp.Timestamp)

	require.Len(t, repo.orders, 1)
	saved := repo.orders[0]
	assert.Equal(t, "יהודה כהן", saved.FullName)
	assert.Equal(t, domain.StatusNew, saved.Status)
	assert.Equal(t, "68", saved.TotalPrice)
	assert.Equal(t, "כן", saved.HasLulav)
	assert.Equal(t, "לא", saved.HasEtrogim)

	require.Len(t, pub.events, 1)
	assert.Equal(t, resp.OrderNumber, pub.events[0].OrderNumber)
}

func TestSubmitOrder_JSONBody(t *testing.T) {
	repo := &mockRepo{}
	router := newTestRouter(repo, &mockPublisher{})

	body := `{
		"fullName": "Sara Levi",
		"phone": "0501234567",
		"city": "חיפה",
		"address": "שדרות הנשיא 10",
		"terms": "מאושר",
		"contactApproval": "מאושר",
		"totalItems": 2
	}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.orders, 1)
	assert.Equal(t, "Sara Levi", repo.orders[0].FullName)
	assert.Equal(t, "2", repo.orders[0].TotalItems)
}

func TestSubmitOrder_MissingRequiredField(t *testing.T) {
	repo := &mockRepo{}
	router := newTestRouter(repo, &mockPublisher{})

	form := validFormBody()
	form.Del("phone")
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "נתונים חסרים או לא תקינים", resp.Message)
	assert.Empty(t, repo.orders)
}

func TestSubmitOrder_KeepsClientOrderNumber(t *testing.T) {
	repo := &mockRepo{}
	router := newTestRouter(repo, &mockPublisher{})

	form := validFormBody()
	form.Set("orderNumber", "4M260901123")
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "4M260901123", resp.OrderNumber)
}

func TestSubmitOrder_RepositoryError(t *testing.T) {
	repo := &mockRepo{err: errors.New("db down")}
	router := newTestRouter(repo, &mockPublisher{})

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validFormBody().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Success)
}

func TestSubmitOrder_PublisherFailureIsNotFatal(t *testing.T) {
	repo := &mockRepo{}
	pub := &mockPublisher{err: errors.New("broker unreachable")}
	router := newTestRouter(repo, pub)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validFormBody().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// The order is durable; a missed event must not fail the request.
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, repo.orders, 1)
}

func TestReady(t *testing.T) {
	router := newTestRouter(&mockRepo{}, &mockPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, readyText, w.Body.String())
}
