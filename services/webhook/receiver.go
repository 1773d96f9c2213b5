package webhook

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "log"
    "strings"
    "time"

    "github.com/google/uuid"

    "efipay-proxy/models"
    "efipay-proxy/utils"
)

// Sink persists one normalized notification.
type Sink interface {
    SaveNotification(ctx context.Context, n *models.Notification) (*models.SinkResult, error)
}

// Receiver authenticates provider callbacks and hands them to a sink.
type Receiver struct {
    secret []byte
    sink   Sink
    now    func() time.Time
    newID  func() string
}

func NewReceiver(secret string, sink Sink) *Receiver {
    return &Receiver{
        secret: []byte(secret),
        sink:   sink,
        now:    time.Now,
        newID:  uuid.NewString,
    }
}

// Receive checks the HMAC of rawBody before reading it, then stores one
// record per pix entry.
func (r *Receiver) Receive(ctx context.Context, rawBody []byte, signature string) (*models.WebhookAck, error) {
    if len(r.secret) == 0 {
        return nil, &models.SignatureError{Reason: "webhook secret not configured"}
    }
    if strings.TrimSpace(signature) == "" {
        return nil, &models.SignatureError{Reason: "missing signature"}
    }
    if !utils.VerifyHMAC(r.secret, rawBody, signature) {
        return nil, &models.SignatureError{Reason: "signature mismatch"}
    }

    notifications, err := r.Normalize(rawBody)
    if err != nil {
        return nil, err
    }

    ack := &models.WebhookAck{Received: len(notifications), Results: []models.SinkResult{}}
    for _, n := range notifications {
        result, err := r.sink.SaveNotification(ctx, n)
        if err != nil {
            log.Printf("Error persisting notification %s (txid %s): %v", n.ID, n.TxID, err)
            var uerr *models.UpstreamError
            if errors.As(err, &uerr) {
                return nil, uerr
            }
            return nil, &models.UpstreamError{Stage: "persist", Err: err}
        }
        ack.Stored++
        ack.Results = append(ack.Results, *result)
    }

    log.Printf("Webhook processed: %d received, %d stored", ack.Received, ack.Stored)
    return ack, nil
}

// Normalize turns a provider callback into notification records. A body
// carrying a "pix" array yields one record per entry; any other JSON object
// becomes a single record.
func (r *Receiver) Normalize(rawBody []byte) ([]*models.Notification, error) {
    dec := json.NewDecoder(bytes.NewReader(rawBody))
    dec.UseNumber()

    var body map[string]interface{}
    if err := dec.Decode(&body); err != nil || body == nil {
        return nil, &models.ValidationError{Fields: []string{"body"}, Message: "invalid JSON body"}
    }

    receivedAt := r.now().UTC()

    entries, ok := body["pix"].([]interface{})
    if !ok {
        return []*models.Notification{r.record(body, compact(rawBody), receivedAt)}, nil
    }

    notifications := make([]*models.Notification, 0, len(entries))
    for _, entry := range entries {
        obj, ok := entry.(map[string]interface{})
        if !ok {
            continue
        }
        raw, err := json.Marshal(obj)
        if err != nil {
            return nil, &models.ValidationError{Fields: []string{"pix"}, Message: "invalid pix entry"}
        }
        notifications = append(notifications, r.record(obj, raw, receivedAt))
    }
    return notifications, nil
}

func (r *Receiver) record(obj map[string]interface{}, raw []byte, receivedAt time.Time) *models.Notification {
    return &models.Notification{
        ID:         r.newID(),
        TxID:       text(obj["txid"]),
        ReceivedAt: receivedAt,
        Valor:      amount(obj["valor"]),
        Payer:      payer(obj),
        Raw:        json.RawMessage(raw),
    }
}

func payer(obj map[string]interface{}) json.RawMessage {
    for _, key := range []string{"pagador", "devedor", "infoPagador"} {
        if v, ok := obj[key]; ok && v != nil {
            if b, err := json.Marshal(v); err == nil {
                return json.RawMessage(b)
            }
        }
    }
    return json.RawMessage("null")
}

// amount accepts "12.34", 12.34 or {"original": "12.34"}.
func amount(v interface{}) string {
    if m, ok := v.(map[string]interface{}); ok {
        return text(m["original"])
    }
    return text(v)
}

func text(v interface{}) string {
    switch val := v.(type) {
    case string:
        return val
    case json.Number:
        return val.String()
    default:
        return ""
    }
}

func compact(raw []byte) []byte {
    var buf bytes.Buffer
    if err := json.Compact(&buf, raw); err != nil {
        return raw
    }
    return buf.Bytes()
}
