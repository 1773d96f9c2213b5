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

// Relayer is implemented by relay.Service.
type Relayer interface {
    Relay(ctx context.Context, req models.RelayRequest) (*models.RelayResult, error)
}

type RelayHandler struct {
    service Relayer
}

func NewRelayHandler(service Relayer) (*RelayHandler, error) {
    if service == nil {
        return nil, fmt.Errorf("relay service is required")
    }
    return &RelayHandler{service: service}, nil
}

// Relay handles POST /relay. A successful answer is always wrapped as
// {"success": true, "data": <provider JSON>}.
func (h *RelayHandler) Relay(w http.ResponseWriter, r *http.Request) {
    requestID := uuid.New().String()

    var req models.RelayRequest
    if err := decodeJSON(r, w, &req); err != nil {
        log.Printf("[RequestID: %s] Invalid relay body: %v", requestID, err)
        sendErrorDetails(w, http.StatusBadRequest, "Corpo da requisição inválido", err.Error(), "")
        return
    }

    log.Printf("[RequestID: %s] Relay %s %s requested by %s", requestID, req.Method, req.Endpoint, middleware.CallerName(r.Context()))

    result, err := h.service.Relay(r.Context(), req)
    if err != nil {
        writeServiceError(w, requestID, err)
        return
    }

    utils.SendSuccessResponse(w, result.Body)
}
