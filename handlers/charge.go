package handlers

import (
    "context"
    "fmt"
    "log"
    "net/http"

    "github.com/google/uuid"

    "efipay-proxy/middleware"
    "efipay-proxy/models"
    "efipay-proxy/utils"
)

// ChargeCreator is implemented by charge.Service.
type ChargeCreator interface {
    CreateCharge(ctx context.Context, payload map[string]interface{}) (*models.ChargeResult, error)
}

type ChargeHandler struct {
    service ChargeCreator
}

func NewChargeHandler(service ChargeCreator) (*ChargeHandler, error) {
    if service == nil {
        return nil, fmt.Errorf("charge service is required")
    }
    return &ChargeHandler{service: service}, nil
}

// CreateCharge handles POST / and POST /efipay-proxy.
func (h *ChargeHandler) CreateCharge(w http.ResponseWriter, r *http.Request) {
    requestID := uuid.New().String()
    log.Printf("[RequestID: %s] Charge request from %s", requestID, middleware.CallerName(r.Context()))

    var payload map[string]interface{}
    if err := decodeJSON(r, w, &payload); err != nil {
        log.Printf("[RequestID: %s] Invalid request body: %v", requestID, err)
        sendErrorDetails(w, http.StatusBadRequest, "Corpo da requisição inválido", err.Error(), "")
        return
    }

    result, err := h.service.CreateCharge(r.Context(), payload)
    if err != nil {
        writeServiceError(w, requestID, err)
        return
    }

    log.Printf("[RequestID: %s] Charge %s created", requestID, result.TxID)
    utils.SendSuccessResponse(w, result)
}
