package webhook

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "efipay-proxy/models"
    "efipay-proxy/utils"
)

const testSecret = "webhook-secret"

type memorySink struct {
    saved []*models.Notification
    err   error
}

func (m *memorySink) SaveNotification(_ context.Context, n *models.Notification) (*models.SinkResult, error) {
    if m.err != nil {
        return nil, m.err
    }
    m.saved = append(m.saved, n)
    return &models.SinkResult{Backend: "memory", Status: http.StatusCreated}, nil
}

func newTestReceiver(sink Sink) *Receiver {
    r := NewReceiver(testSecret, sink)
    r.now = func() time.Time { return time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC) }
    seq := 0
    r.newID = func() string {
        seq++
        return fmt.Sprintf("id-%d", seq)
    }
    return r
}

const pixCallback = `{"pix":[
  {"endToEndId":"E1","txid":"txid-na-hora-1-abc123","valor":"49.90","horario":"2024-05-10T09:29:58Z","pagador":{"cpf":"11122233344","nome":"Ana Silva"}},
  {"endToEndId":"E2","txid":"txid-na-hora-2-def456","valor":"10.00","infoPagador":"obrigado"}
]}`

func TestReceive_StoresEachPixEntry(t *testing.T) {
    sink := &memorySink{}
    body := []byte(pixCallback)

    ack, err := newTestReceiver(sink).Receive(context.Background(), body, utils.SignHMAC([]byte(testSecret), body))
    require.NoError(t, err)
    require.Equal(t, 2, ack.Received)
    require.Equal(t, 2, ack.Stored)
    require.Len(t, ack.Results, 2)
    require.Equal(t, http.StatusCreated, ack.Results[0].Status)

    require.Len(t, sink.saved, 2)
    first := sink.saved[0]
    require.Equal(t, "id-1", first.ID)
    require.Equal(t, "txid-na-hora-1-abc123", first.TxID)
    require.Equal(t, "49.90", first.Valor)
    require.Equal(t, time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC), first.ReceivedAt)
    require.JSONEq(t, `{"cpf":"11122233344","nome":"Ana Silva"}`, string(first.Payer))
    require.Contains(t, string(first.Raw), `"endToEndId":"E1"`)

    second := sink.saved[1]
    require.Equal(t, "id-2", second.ID)
    require.JSONEq(t, `"obrigado"`, string(second.Payer))
}

func TestReceive_SingleRecordWithoutPixArray(t *testing.T) {
    sink := &memorySink{}
    body := []byte(`{"txid":"t1","valor":{"original":"5.00"}}`)

    ack, err := newTestReceiver(sink).Receive(context.Background(), body, "sha256="+utils.SignHMAC([]byte(testSecret), body))
    require.NoError(t, err)
    require.Equal(t, 1, ack.Stored)
    require.Equal(t, "t1", sink.saved[0].TxID)
    require.Equal(t, "5.00", sink.saved[0].Valor)
    require.JSONEq(t, "null", string(sink.saved[0].Payer))
    require.JSONEq(t, string(body), string(sink.saved[0].Raw))
}

func TestReceive_RejectsEverySingleByteMutation(t *testing.T) {
    body := []byte(`{"pix":[{"txid":"abc","valor":"1.00"}]}`)
    signature := utils.SignHMAC([]byte(testSecret), body)

    for i := range body {
        mutated := append([]byte(nil), body...)
        mutated[i] ^= 0x01

        sink := &memorySink{}
        _, err := newTestReceiver(sink).Receive(context.Background(), mutated, signature)

        var serr *models.SignatureError
        require.ErrorAs(t, err, &serr, "mutation at byte %d accepted", i)
        require.Empty(t, sink.saved)
    }
}

func TestReceive_SignatureErrors(t *testing.T) {
    body := []byte(pixCallback)
    cases := map[string]string{
        "missing":   "",
        "not hex":   "zzzz",
        "wrong key": utils.SignHMAC([]byte("other"), body),
        "truncated": utils.SignHMAC([]byte(testSecret), body)[:32],
    }

    for name, sig := range cases {
        t.Run(name, func(t *testing.T) {
            sink := &memorySink{}
            _, err := newTestReceiver(sink).Receive(context.Background(), body, sig)

            var serr *models.SignatureError
            require.ErrorAs(t, err, &serr)
            require.Empty(t, sink.saved)
        })
    }
}

func TestReceive_NoSecretConfigured(t *testing.T) {
    body := []byte(`{}`)
    r := NewReceiver("", &memorySink{})

    _, err := r.Receive(context.Background(), body, utils.SignHMAC(nil, body))

    var serr *models.SignatureError
    require.ErrorAs(t, err, &serr)
}

func TestReceive_InvalidJSON(t *testing.T) {
    body := []byte(`not json`)

    _, err := newTestReceiver(&memorySink{}).Receive(context.Background(), body, utils.SignHMAC([]byte(testSecret), body))

    var verr *models.ValidationError
    require.ErrorAs(t, err, &verr)
}

func TestReceive_SinkFailure(t *testing.T) {
    body := []byte(pixCallback)
    sig := utils.SignHMAC([]byte(testSecret), body)

    t.Run("plain error", func(t *testing.T) {
        _, err := newTestReceiver(&memorySink{err: errors.New("disk full")}).Receive(context.Background(), body, sig)

        var uerr *models.UpstreamError
        require.ErrorAs(t, err, &uerr)
        require.Equal(t, "persist", uerr.Stage)
    })

    t.Run("upstream error", func(t *testing.T) {
        sinkErr := &models.UpstreamError{Stage: "persist", Status: 409, Body: `{"code":"23505"}`}
        _, err := newTestReceiver(&memorySink{err: sinkErr}).Receive(context.Background(), body, sig)

        var uerr *models.UpstreamError
        require.ErrorAs(t, err, &uerr)
        require.Equal(t, 409, uerr.Status)
    })
}
