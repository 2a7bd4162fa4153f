package handler

import (
	"net/http"

	"cardledger/internal/logger"
	"cardledger/internal/order"
)

// CompleteOrderRequest is the body of an order fulfillment request
type CompleteOrderRequest struct {
	UserID  string `json:"user_id" validate:"required,uuid4"`
	OrderID int64  `json:"order_id" validate:"required,gt=0"`
}

// CancelOrderRequest is the body of an order cancellation request
type CancelOrderRequest struct {
	UserID  string `json:"user_id" validate:"required,uuid4"`
	OrderID int64  `json:"order_id" validate:"required,gt=0"`
}

// HandleCompleteOrder handles delivering cards against an order
func HandleCompleteOrder(svc order.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req CompleteOrderRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Complete order"); err != nil {
			return
		}

		reward, err := svc.Complete(r.Context(), req.UserID, req.OrderID)
		if err != nil {
			respondServiceError(w, r, "Complete order", err)
			return
		}

		log.Info("Order completed", "userID", req.UserID, "orderID", req.OrderID, "currency", reward.Currency)
		respondJSON(w, http.StatusOK, reward)
	}
}

// HandleCancelOrder handles cancelling a waiting order
func HandleCancelOrder(svc order.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req CancelOrderRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Cancel order"); err != nil {
			return
		}

		if err := svc.Cancel(r.Context(), req.UserID, req.OrderID); err != nil {
			respondServiceError(w, r, "Cancel order", err)
			return
		}

		log.Info("Order cancelled", "userID", req.UserID, "orderID", req.OrderID)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Order cancelled"})
	}
}

// HandlePendingOrders handles listing a user's still-open orders
func HandlePendingOrders(svc order.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDParam(r, w)
		if !ok {
			return
		}

		orders, err := svc.PendingOrders(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, "Pending orders", err)
			return
		}

		respondJSON(w, http.StatusOK, orders)
	}
}
