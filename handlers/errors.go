package handlers

import (
    "encoding/json"
    "errors"
    "log"
    "net/http"

    "efipay-proxy/models"
    "efipay-proxy/utils"
)

const maxBodyBytes = 1 << 20

func sendErrorDetails(w http.ResponseWriter, status int, message, details, stage string) {
    utils.SendJSON(w, status, models.APIResponse{
        Success: false,
        Error:   message,
        Details: details,
        Stage:   stage,
    })
}

// writeServiceError maps the service error taxonomy onto HTTP responses.
func writeServiceError(w http.ResponseWriter, requestID string, err error) {
    var (
        verr *models.ValidationError
        ferr *models.ForbiddenError
        serr *models.SignatureError
        aerr *models.AuthError
        uerr *models.UpstreamError
    )

    switch {
    case errors.As(err, &verr):
        log.Printf("[RequestID: %s] Validation failed: %v", requestID, verr)
        message := "Campos obrigatórios ausentes"
        if verr.Message != "" {
            message = "Requisição inválida"
        }
        sendErrorDetails(w, http.StatusBadRequest, message, verr.Error(), "")

    case errors.As(err, &ferr):
        log.Printf("[RequestID: %s] Forbidden: %v", requestID, ferr)
        sendErrorDetails(w, http.StatusForbidden, "Rota não permitida", ferr.Error(), "")

    case errors.As(err, &serr):
        log.Printf("[RequestID: %s] Webhook rejected: %v", requestID, serr)
        sendErrorDetails(w, http.StatusUnauthorized, "Assinatura inválida", "", "")

    case errors.As(err, &aerr):
        log.Printf("[RequestID: %s] EfiPay authentication failed: %v", requestID, aerr)
        details := aerr.Body
        if details == "" {
            details = aerr.Reason
        }
        sendErrorDetails(w, http.StatusInternalServerError, "Erro ao autenticar na EfiPay", details, "auth")

    case errors.As(err, &uerr):
        log.Printf("[RequestID: %s] Upstream call failed: %v", requestID, uerr)
        details := uerr.Body
        if details == "" && uerr.Err != nil {
            details = uerr.Err.Error()
        }
        sendErrorDetails(w, upstreamStatus(uerr), upstreamMessage(uerr.Stage), details, uerr.Stage)

    default:
        log.Printf("[RequestID: %s] Internal error: %v", requestID, err)
        sendErrorDetails(w, http.StatusInternalServerError, "Erro interno no proxy", "", "")
    }
}

// upstreamStatus mirrors provider errors on the relay; everything else is a 500.
func upstreamStatus(err *models.UpstreamError) int {
    if err.Stage == "relay" && err.Status >= 400 && err.Status <= 599 {
        return err.Status
    }
    return http.StatusInternalServerError
}

func upstreamMessage(stage string) string {
    switch stage {
    case "charge":
        return "Erro ao criar cobrança"
    case "relay":
        return "Erro na chamada à EfiPay"
    case "persist":
        return "Erro ao registrar notificação"
    default:
        return "Erro interno no proxy"
    }
}

// decodeJSON reads a JSON object keeping numbers as json.Number.
func decodeJSON(r *http.Request, w http.ResponseWriter, v interface{}) error {
    dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
    dec.UseNumber()
    return dec.Decode(v)
}

// MethodNotAllowed answers routes hit with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
    utils.SendErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
    utils.SendErrorResponse(w, http.StatusNotFound, "Not found")
}
