package utils

import (
    "encoding/json"
    "log"
    "net/http"

    "efipay-proxy/models"
)

func SendErrorResponse(w http.ResponseWriter, status int, message string) {
    SendJSON(w, status, models.APIResponse{
        Success: false,
        Error:   message,
    })
}

func SendSuccessResponse(w http.ResponseWriter, data interface{}) {
    SendJSON(w, http.StatusOK, models.APIResponse{
        Success: true,
        Data:    data,
    })
}

func SendJSON(w http.ResponseWriter, status int, response interface{}) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    if err := json.NewEncoder(w).Encode(response); err != nil {
        log.Printf("Error encoding response: %v", err)
    }
}
