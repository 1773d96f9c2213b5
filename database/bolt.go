package database

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "time"

    bolt "github.com/boltdb/bolt"

    "efipay-proxy/models"
)

const notificationsBucket = "pix_notifications"

// ErrNotFound is returned when a notification id is not in the store.
var ErrNotFound = errors.New("notification not found")

// BoltStore keeps webhook notifications in an embedded BoltDB file.
type BoltStore struct {
    db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
    db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
    if err != nil {
        return nil, fmt.Errorf("failed to open bolt store: %v", err)
    }

    err = db.Update(func(tx *bolt.Tx) error {
        _, err := tx.CreateBucketIfNotExists([]byte(notificationsBucket))
        return err
    })
    if err != nil {
        db.Close()
        return nil, fmt.Errorf("failed to create bucket: %v", err)
    }

    return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
    return s.db.Close()
}

// SaveNotification writes n under its id; an existing id is left untouched.
func (s *BoltStore) SaveNotification(ctx context.Context, n *models.Notification) (*models.SinkResult, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }

    data, err := json.Marshal(n)
    if err != nil {
        return nil, fmt.Errorf("failed to marshal notification: %v", err)
    }

    status := http.StatusCreated
    err = s.db.Update(func(tx *bolt.Tx) error {
        b := tx.Bucket([]byte(notificationsBucket))
        if b.Get([]byte(n.ID)) != nil {
            status = http.StatusOK
            return nil
        }
        return b.Put([]byte(n.ID), data)
    })
    if err != nil {
        return nil, fmt.Errorf("failed to save notification: %v", err)
    }

    return &models.SinkResult{Backend: "bolt", Status: status}, nil
}

func (s *BoltStore) Get(id string) (*models.Notification, error) {
    var n models.Notification
    err := s.db.View(func(tx *bolt.Tx) error {
        data := tx.Bucket([]byte(notificationsBucket)).Get([]byte(id))
        if data == nil {
            return ErrNotFound
        }
        return json.Unmarshal(data, &n)
    })
    if err != nil {
        return nil, err
    }
    return &n, nil
}

// ListByTxID returns every stored notification for a txid.
func (s *BoltStore) ListByTxID(txid string) ([]*models.Notification, error) {
    var out []*models.Notification
    err := s.db.View(func(tx *bolt.Tx) error {
        return tx.Bucket([]byte(notificationsBucket)).ForEach(func(_, v []byte) error {
            var n models.Notification
            if err := json.Unmarshal(v, &n); err != nil {
                return err
            }
            if n.TxID == txid {
                out = append(out, &n)
            }
            return nil
        })
    })
    return out, err
}
