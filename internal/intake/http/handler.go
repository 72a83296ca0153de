package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arbaminim/order-intake/internal/intake/domain"
	"github.com/arbaminim/order-intake/internal/intake/repository"
)

// readyText answers liveness probes on GET.
const readyText = "Order intake is working! Ready to receive form data."

// requiredFields is the endpoint's own validation set. It deliberately does
// not mirror the client's rules: the endpoint is authoritative and a client
// must never assume its local validation guarantees acceptance here.
var requiredFields = []string{"fullName", "phone", "city", "address", "terms", "contactApproval"}

type EventPublisher interface {
	PublishAccepted(ctx context.Context, order *domain.Order) error
}

type Response struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	OrderNumber string `json:"orderNumber,omitempty"`
}

type IntakeHandler struct {
	repo      repository.OrderRepository
	publisher EventPublisher
	timeout   time.Duration
}

func NewIntakeHandler(repo repository.OrderRepository, publisher EventPublisher, timeout time.Duration) *IntakeHandler {
	return &IntakeHandler{
		repo:      repo,
		publisher: publisher,
		timeout:   timeout,
	}
}

// Ready handles the GET liveness probe with a fixed ready text.
func (h *IntakeHandler) Ready(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(readyText))
}

// SubmitOrder accepts a JSON or form-encoded order payload, validates the
// required fields and appends the order.
func (h *IntakeHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	data, err := parsePayload(r)
	if err != nil {
		respond(w, http.StatusBadRequest, Response{
			Success:   false,
			Message:   "נתונים חסרים או לא תקינים",
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	for _, field := range requiredFields {
		if strings.TrimSpace(data[field]) == "" {
			respond(w, http.StatusBadRequest, Response{
				Success:   false,
				Message:   "נתונים חסרים או לא תקינים",
				Timestamp: time.Now().Format(time.RFC3339),
			})
			return
		}
	}

	order := orderFromPayload(data)

	if err := h.repo.CreateOrder(ctx, order); err != nil {
		log.Printf("failed to append order %s: %v", order.OrderNumber, err)
		respond(w, http.StatusInternalServerError, Response{
			Success:   false,
			Message:   "שגיאה בשמירת ההזמנה",
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	// Best effort: the order is durable already, a missing event only
	// delays fulfillment tooling.
	if h.publisher != nil {
		if err := h.publisher.PublishAccepted(ctx, order); err != nil {
			log.Printf("failed to publish accepted order %s: %v", order.OrderNumber, err)
		}
	}

	respond(w, http.StatusCreated, Response{
		Success:     true,
		Message:     "ההזמנה נשמרה בהצלחה!",
		Timestamp:   time.Now().Format(time.RFC3339),
		OrderNumber: order.OrderNumber,
	})
}

// parsePayload reads the submission whichever way it arrives: a JSON body
// first, form fields as the fallback.
func parsePayload(r *http.Request) (map[string]string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, err
		}
		data := make(map[string]string, len(raw))
		for k, v := range raw {
			switch val := v.(type) {
			case string:
				data[k] = val
			case float64:
				data[k] = strconv.FormatFloat(val, 'f', -1, 64)
			case bool:
				if val {
					data[k] = "true"
				} else {
					data[k] = "false"
				}
			}
		}
		return data, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	data := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		data[k] = r.PostForm.Get(k)
	}
	return data, nil
}

func orderFromPayload(data map[string]string) *domain.Order {
	orderNumber := data["orderNumber"]
	if orderNumber == "" {
		orderNumber = domain.GenerateOrderNumber(time.Now())
	}

	return &domain.Order{
		ID:                     uuid.New(),
		OrderNumber:            orderNumber,
		FullName:               data["fullName"],
		Phone:                  data["phone"],
		Email:                  data["email"],
		City:                   data["city"],
		Address:                data["address"],
		NeedsShipping:          defaultString(data["needsShipping"], "לא"),
		TotalPrice:             defaultString(data["totalPrice"], "0"),
		TotalItems:             defaultString(data["totalItems"], "0"),
		DetailedSummary:        data["detailedOrderSummary"],
		SetsOrdered:            data["setsOrdered"],
		EtrogimOrdered:         data["etrogimOrdered"],
		IndividualItemsOrdered: data["individualItemsOrdered"],
		HasTimaniSet:           defaultString(data["hasTimaniSet"], "לא"),
		HasMoroccanSet:         defaultString(data["hasMoroccanSet"], "לא"),
		HasAshkenaziSet:        defaultString(data["hasAshkenaziSet"], "לא"),
		HasEtrogim:             defaultString(data["hasEtrogim"], "לא"),
		HasLulav:               defaultString(data["hasLulav"], "לא"),
		HasHadas:               defaultString(data["hasHadas"], "לא"),
		HasArava:               defaultString(data["hasArava"], "לא"),
		Notes:                  data["notes"],
		Terms:                  defaultString(data["terms"], "לא מאושר"),
		ContactApproval:        defaultString(data["contactApproval"], "לא מאושר"),
		CartItems:              data["cartItems"],
		Status:                 domain.StatusNew,
	}
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func respond(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
