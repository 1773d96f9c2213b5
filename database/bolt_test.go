package database_test

import (
    "context"
    "encoding/json"
    "net/http"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "efipay-proxy/database"
    "efipay-proxy/models"
)

func newTestBolt(t *testing.T) *database.BoltStore {
    t.Helper()
    s, err := database.NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
    require.NoError(t, err)
    t.Cleanup(func() { s.Close() })
    return s
}

func sampleNotification(id, txid string) *models.Notification {
    return &models.Notification{
        ID:         id,
        TxID:       txid,
        ReceivedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
        Valor:      "49.90",
        Payer:      json.RawMessage(`{"nome":"Ana Silva"}`),
        Raw:        json.RawMessage(`{"txid":"` + txid + `","valor":"49.90"}`),
    }
}

func TestBoltStore_SaveAndGet(t *testing.T) {
    s := newTestBolt(t)

    res, err := s.SaveNotification(context.Background(), sampleNotification("n-1", "txid-1"))
    require.NoError(t, err)
    require.Equal(t, "bolt", res.Backend)
    require.Equal(t, http.StatusCreated, res.Status)

    got, err := s.Get("n-1")
    require.NoError(t, err)
    require.Equal(t, "txid-1", got.TxID)
    require.Equal(t, "49.90", got.Valor)
    require.JSONEq(t, `{"nome":"Ana Silva"}`, string(got.Payer))
}

func TestBoltStore_DuplicateIsNoop(t *testing.T) {
    s := newTestBolt(t)
    ctx := context.Background()

    _, err := s.SaveNotification(ctx, sampleNotification("n-1", "txid-1"))
    require.NoError(t, err)

    changed := sampleNotification("n-1", "txid-other")
    res, err := s.SaveNotification(ctx, changed)
    require.NoError(t, err)
    require.Equal(t, http.StatusOK, res.Status)

    got, err := s.Get("n-1")
    require.NoError(t, err)
    require.Equal(t, "txid-1", got.TxID)
}

func TestBoltStore_ListByTxID(t *testing.T) {
    s := newTestBolt(t)
    ctx := context.Background()

    for _, n := range []*models.Notification{
        sampleNotification("a", "txid-1"),
        sampleNotification("b", "txid-2"),
        sampleNotification("c", "txid-1"),
    } {
        _, err := s.SaveNotification(ctx, n)
        require.NoError(t, err)
    }

    list, err := s.ListByTxID("txid-1")
    require.NoError(t, err)
    require.Len(t, list, 2)

    _, err = s.Get("missing")
    require.ErrorIs(t, err, database.ErrNotFound)
}
