package database_test

import (
    "context"
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/require"

    "efipay-proxy/database"
    "efipay-proxy/models"
)

func TestRESTSink_Save(t *testing.T) {
    var gotPath, gotKey, gotAuth, gotPrefer string
    var gotBody map[string]interface{}

    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotPath = r.URL.Path
        gotKey = r.Header.Get("apikey")
        gotAuth = r.Header.Get("Authorization")
        gotPrefer = r.Header.Get("Prefer")
        body, _ := io.ReadAll(r.Body)
        json.Unmarshal(body, &gotBody)
        w.WriteHeader(http.StatusCreated)
        w.Write([]byte(`[{"id":"n-1"}]`))
    }))
    defer srv.Close()

    sink := database.NewRESTSink(srv.URL, "service-key", "pix_notifications", srv.Client())
    res, err := sink.SaveNotification(context.Background(), sampleNotification("n-1", "txid-1"))
    require.NoError(t, err)

    require.Equal(t, "/rest/v1/pix_notifications", gotPath)
    require.Equal(t, "service-key", gotKey)
    require.Equal(t, "Bearer service-key", gotAuth)
    require.Equal(t, "return=representation", gotPrefer)
    require.Equal(t, "txid-1", gotBody["txid"])

    require.Equal(t, "rest", res.Backend)
    require.Equal(t, http.StatusCreated, res.Status)
    require.JSONEq(t, `[{"id":"n-1"}]`, string(res.Response))
}

func TestRESTSink_Failure(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusUnauthorized)
        w.Write([]byte(`{"message":"invalid key"}`))
    }))
    defer srv.Close()

    sink := database.NewRESTSink(srv.URL, "bad", "pix_notifications", srv.Client())
    _, err := sink.SaveNotification(context.Background(), sampleNotification("n-1", "txid-1"))
    require.Error(t, err)

    var upErr *models.UpstreamError
    require.True(t, errors.As(err, &upErr))
    require.Equal(t, "persist", upErr.Stage)
    require.Equal(t, http.StatusUnauthorized, upErr.Status)
    require.Contains(t, upErr.Body, "invalid key")
}
