package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"authnet-cim/models"
	"authnet-cim/services/payment"
	"authnet-cim/services/payment/authorizenet"
	"authnet-cim/utils"
)

const requestTimeout = 40 * time.Second

type CIMHandler struct {
	service payment.Gateway
	logger  *zap.Logger
}

func NewCIMHandler(service payment.Gateway, logger *zap.Logger) *CIMHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CIMHandler{service: service, logger: logger}
}

type AddProfileRequest struct {
	CustomerID string                `json:"customer_id"`
	Payment    authorizenet.FormData `json:"payment"`
	Billing    authorizenet.FormData `json:"billing"`
}

type PaymentProfileRequest struct {
	Payment authorizenet.FormData `json:"payment"`
	Billing authorizenet.FormData `json:"billing"`
}

type TransactionRequest struct {
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	TransactionID string `json:"transaction_id"`
	Delimiter     string `json:"delimiter"`
}

func (h *CIMHandler) AddProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req AddProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CustomerID == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "customer_id is required")
		return
	}

	result, err := h.service.AddProfile(ctx, req.CustomerID, req.Payment, req.Billing)
	if err != nil {
		h.sendGatewayError(w, err)
		return
	}

	h.sendResult(w, http.StatusCreated, result.Response, result)
}

func (h *CIMHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.service.GetProfile(ctx, mux.Vars(r)["profileID"])
	if err != nil {
		h.sendGatewayError(w, err)
		return
	}

	h.sendResult(w, http.StatusOK, result.Response, result)
}

func (h *CIMHandler) CreatePaymentProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req PaymentProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.CreatePaymentProfile(ctx, mux.Vars(r)["profileID"], req.Payment, req.Billing)
	if err != nil {
		h.sendGatewayError(w, err)
		return
	}

	h.sendResult(w, http.StatusCreated, result.Response, result)
}

func (h *CIMHandler) UpdatePaymentProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req PaymentProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vars := mux.Vars(r)
	resp, err := h.service.UpdatePaymentProfile(ctx, vars["profileID"], vars["paymentProfileID"], req.Payment, req.Billing)
	if err != nil {
		h.sendGatewayError(w, err)
		return
	}

	h.sendResult(w, http.StatusOK, resp, resp)
}

func (h *CIMHandler) DeletePaymentProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	vars := mux.Vars(r)
	resp, err := h.service.DeletePaymentProfile(ctx, vars["profileID"], vars["paymentProfileID"])
	if err != nil {
		h.sendGatewayError(w, err)
		return
	}

	h.sendResult(w, http.StatusOK, resp, resp)
}

func (h *CIMHandler) ProcessTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	txType, err := authorizenet.ParseTransactionType(req.Type)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if txType.RequiresTransactionID() && req.TransactionID == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "transaction_id is required for "+string(txType))
		return
	}

	vars := mux.Vars(r)
	result, err := h.service.ProcessTransaction(ctx, authorizenet.TransactionParams{
		ProfileID:        vars["profileID"],
		PaymentProfileID: vars["paymentProfileID"],
		Type:             txType,
		Amount:           amount,
		TransactionID:    req.TransactionID,
		Delimiter:        req.Delimiter,
	})
	if err != nil {
		h.sendGatewayError(w, err)
		return
	}

	h.sendResult(w, http.StatusOK, result.Response, result)
}

// sendResult writes status for accepted requests and 422 for gateway
// rejections. data is sent either way.
func (h *CIMHandler) sendResult(w http.ResponseWriter, status int, resp *models.CIMResponse, data interface{}) {
	if !resp.Success {
		utils.SendJSON(w, http.StatusUnprocessableEntity, models.APIResponse{
			Status:  "error",
			Message: resp.ResultText,
			Data:    data,
		})
		return
	}

	utils.SendJSON(w, status, models.APIResponse{
		Status:  "success",
		Message: resp.ResultText,
		Data:    data,
	})
}

func (h *CIMHandler) sendGatewayError(w http.ResponseWriter, err error) {
	var (
		validationErr *authorizenet.ValidationError
		transportErr  *authorizenet.TransportError
		parseErr      *authorizenet.ParseError
		protocolErr   *authorizenet.ProtocolError
	)

	switch {
	case errors.As(err, &validationErr):
		utils.SendErrorResponse(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &transportErr):
		utils.SendErrorResponse(w, http.StatusBadGateway, "Payment gateway unavailable")
	case errors.As(err, &parseErr), errors.As(err, &protocolErr):
		utils.SendErrorResponse(w, http.StatusBadGateway, "Unexpected response from payment gateway")
	default:
		h.logger.Error("Unhandled CIM error", zap.Error(err))
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}
