package handlers

import (
    "context"
    "fmt"
    "io"
    "log"
    "net/http"

    "github.com/google/uuid"

    "efipay-proxy/models"
    "efipay-proxy/utils"
)

const SignatureHeader = "X-Signature"

// NotificationReceiver is implemented by webhook.Receiver.
type NotificationReceiver interface {
    Receive(ctx context.Context, rawBody []byte, signature string) (*models.WebhookAck, error)
}

type WebhookHandler struct {
    receiver NotificationReceiver
}

func NewWebhookHandler(receiver NotificationReceiver) (*WebhookHandler, error) {
    if receiver == nil {
        return nil, fmt.Errorf("webhook receiver is required")
    }
    return &WebhookHandler{receiver: receiver}, nil
}

// HandleNotification processa as notificações PIX enviadas pela EfiPay
func (h *WebhookHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        MethodNotAllowed(w, r)
        return
    }

    requestID := uuid.New().String()

    // o HMAC é calculado sobre os bytes exatos recebidos
    body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
    if err != nil {
        log.Printf("[RequestID: %s] Error reading webhook body: %v", requestID, err)
        sendErrorDetails(w, http.StatusBadRequest, "Corpo da requisição inválido", err.Error(), "")
        return
    }

    ack, err := h.receiver.Receive(r.Context(), body, r.Header.Get(SignatureHeader))
    if err != nil {
        writeServiceError(w, requestID, err)
        return
    }

    log.Printf("[RequestID: %s] Webhook stored %d/%d notifications", requestID, ack.Stored, ack.Received)
    utils.SendSuccessResponse(w, ack)
}
