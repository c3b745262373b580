package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/srfrogui/giacomoNsei/internal/app"
	"github.com/srfrogui/giacomoNsei/internal/domain"
)

// OrderCreator is the minimal interface needed to book an order.
type OrderCreator interface {
	CreateOrder(ctx context.Context, in app.CreateOrderInput) (domain.Order, error)
}

// OrderLister is the minimal interface needed to list orders.
type OrderLister interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// OrderDeleter is the minimal interface needed to delete an order by id.
type OrderDeleter interface {
	DeleteOrder(ctx context.Context, id string) error
}

// HandleOrders serves GET (list) and POST (create) on /orders.
func HandleOrders(creator OrderCreator, lister OrderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			orders, err := lister.ListOrders(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]orderResponse, 0, len(orders))
			for _, order := range orders {
				resp = append(resp, toOrderResponse(order))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
			return
		case http.MethodPost:
			var req createOrderRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			in, err := req.toInput()
			if err != nil {
				writeError(w, http.StatusBadRequest, errorCode(err), err.Error())
				return
			}

			order, err := creator.CreateOrder(r.Context(), in)
			if err != nil {
				writeServiceError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(toOrderResponse(order))
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

// HandleDeleteOrder serves DELETE on /orders/{id}.
func HandleDeleteOrder(svc OrderDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseOrderPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		if err := svc.DeleteOrder(r.Context(), strings.TrimSpace(id)); err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidOrderID):
				writeError(w, http.StatusBadRequest, codeInvalidOrderID, err.Error())
			case errors.Is(err, domain.ErrOrderNotFound):
				writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(deleteOrderResponse{Deleted: id})
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidOrderID),
		errors.Is(err, domain.ErrSellerRequired),
		errors.Is(err, domain.ErrClientRequired),
		errors.Is(err, domain.ErrEndClientRequired),
		errors.Is(err, domain.ErrInvalidUnits),
		errors.Is(err, domain.ErrInvalidEntryDate):
		writeError(w, http.StatusBadRequest, errorCode(err), err.Error())
	case errors.Is(err, domain.ErrDuplicateOrderID):
		writeError(w, http.StatusConflict, codeDuplicateOrderID, err.Error())
	case errors.Is(err, domain.ErrCapacityComputation):
		writeError(w, http.StatusInternalServerError, codeCapacityFailure, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidOrderID):
		return codeInvalidOrderID
	case errors.Is(err, domain.ErrSellerRequired):
		return codeSellerRequired
	case errors.Is(err, domain.ErrClientRequired):
		return codeClientRequired
	case errors.Is(err, domain.ErrEndClientRequired):
		return codeEndClientRequired
	case errors.Is(err, domain.ErrInvalidUnits):
		return codeInvalidUnits
	case errors.Is(err, domain.ErrInvalidEntryDate):
		return codeInvalidEntryDate
	default:
		return codeInternalError
	}
}

type createOrderRequest struct {
	ID             string `json:"id"`
	Seller         string `json:"seller"`
	Client         string `json:"client"`
	EndClient      string `json:"end_client"`
	RequestedUnits int    `json:"requested_units"`
	EntryDate      string `json:"entry_date"`
}

func (r createOrderRequest) toInput() (app.CreateOrderInput, error) {
	if len(strings.TrimSpace(r.ID)) != domain.OrderIDLength {
		return app.CreateOrderInput{}, domain.ErrInvalidOrderID
	}
	if r.Seller == "" {
		return app.CreateOrderInput{}, domain.ErrSellerRequired
	}
	if r.Client == "" {
		return app.CreateOrderInput{}, domain.ErrClientRequired
	}
	if r.EndClient == "" {
		return app.CreateOrderInput{}, domain.ErrEndClientRequired
	}
	if r.RequestedUnits <= 0 {
		return app.CreateOrderInput{}, domain.ErrInvalidUnits
	}
	entryDate, err := time.Parse(domain.DateLayout, r.EntryDate)
	if err != nil {
		return app.CreateOrderInput{}, domain.ErrInvalidEntryDate
	}
	return app.CreateOrderInput{
		ID:             strings.TrimSpace(r.ID),
		Seller:         r.Seller,
		Client:         r.Client,
		EndClient:      r.EndClient,
		RequestedUnits: r.RequestedUnits,
		EntryDate:      entryDate,
	}, nil
}

type orderResponse struct {
	ID             string `json:"id"`
	Seller         string `json:"seller"`
	Client         string `json:"client"`
	EndClient      string `json:"end_client"`
	RequestedUnits int    `json:"requested_units"`
	EntryDate      string `json:"entry_date"`
	DeliveryDate   string `json:"delivery_date"`
	CreatedAt      string `json:"created_at"`
}

type deleteOrderResponse struct {
	Deleted string `json:"deleted"`
}

func toOrderResponse(order domain.Order) orderResponse {
	return orderResponse{
		ID:             order.ID,
		Seller:         order.Seller,
		Client:         order.Client,
		EndClient:      order.EndClient,
		RequestedUnits: order.RequestedUnits,
		EntryDate:      order.EntryDate.Format(domain.DateLayout),
		DeliveryDate:   order.DeliveryDate.Format(domain.DateLayout),
		CreatedAt:      order.CreatedAt.Format(time.RFC3339),
	}
}

func parseOrderPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] != "orders" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
