package database

import (
    "context"
    "database/sql"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "regexp"
    "strings"
    "time"

    "efipay-proxy/models"
)

const DefaultTable = "pix_notifications"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

type DatabaseConfig struct {
    Driver string // mysql ou postgres
    DSN    string
    Table  string
}

// Connection is a database/sql backed notification sink.
type Connection struct {
    db     *sql.DB
    driver string
    table  string
}

func NewConnection(config DatabaseConfig) (*Connection, error) {
    driver := strings.ToLower(config.Driver)
    switch driver {
    case "mysql", "postgres":
    default:
        return nil, fmt.Errorf("unsupported database driver: %s", config.Driver)
    }

    // o nome entra no SQL sem placeholder
    table := config.Table
    if table == "" {
        table = DefaultTable
    }
    if !tableNamePattern.MatchString(table) {
        return nil, fmt.Errorf("invalid table name: %q", table)
    }

    dsn := config.DSN
    if driver == "mysql" && !strings.Contains(dsn, "parseTime") {
        sep := "?"
        if strings.Contains(dsn, "?") {
            sep = "&"
        }
        dsn += sep + "parseTime=true"
    }

    db, err := sql.Open(driver, dsn)
    if err != nil {
        return nil, fmt.Errorf("failed to connect to database: %v", err)
    }

    db.SetMaxOpenConns(25)
    db.SetMaxIdleConns(25)
    db.SetConnMaxLifetime(5 * time.Minute)
    db.SetConnMaxIdleTime(5 * time.Minute)

    conn := &Connection{db: db, driver: driver, table: table}

    if err := conn.ensureConnection(); err != nil {
        db.Close()
        return nil, err
    }

    return conn, nil
}

func (c *Connection) ensureConnection() error {
    for retries := 0; retries < 3; retries++ {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        err := c.db.PingContext(ctx)
        cancel()

        if err == nil {
            return nil
        }

        log.Printf("Database ping failed (attempt %d/3): %v", retries+1, err)
        time.Sleep(time.Second * time.Duration(retries+1))
    }
    return fmt.Errorf("failed to establish database connection after 3 attempts")
}

func (c *Connection) Close() error {
    return c.db.Close()
}

func (c *Connection) GetDB() *sql.DB {
    return c.db
}

func (c *Connection) Ping(ctx context.Context) error {
    return c.db.PingContext(ctx)
}

// EnsureSchema creates the notifications table when it does not exist.
func (c *Connection) EnsureSchema(ctx context.Context) error {
    if _, err := c.db.ExecContext(ctx, c.schemaQuery()); err != nil {
        return fmt.Errorf("failed to create %s table: %v", c.table, err)
    }
    return nil
}

func (c *Connection) schemaQuery() string {
    payloadType := "JSON"
    if c.driver == "postgres" {
        payloadType = "JSONB"
    }
    return fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            id          VARCHAR(36) PRIMARY KEY,
            txid        VARCHAR(64) NOT NULL,
            received_at TIMESTAMP NOT NULL,
            valor       VARCHAR(32),
            payer       %s,
            raw         %s NOT NULL
        )`, c.table, payloadType, payloadType)
}

// SaveNotification inserts one record. Re-delivering the same id is a no-op.
func (c *Connection) SaveNotification(ctx context.Context, n *models.Notification) (*models.SinkResult, error) {
    ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()

    result, err := c.db.ExecContext(ctx, c.insertQuery(),
        n.ID,
        n.TxID,
        n.ReceivedAt.UTC(),
        n.Valor,
        nullableJSON(n.Payer),
        string(n.Raw),
    )
    if err != nil {
        log.Printf("Error saving notification %s: %v", n.ID, err)
        return nil, fmt.Errorf("failed to save notification: %v", err)
    }

    status := http.StatusCreated
    if rows, err := result.RowsAffected(); err == nil && rows == 0 {
        status = http.StatusOK
    }

    log.Printf("Stored notification %s for txid %s in %s.%s", n.ID, n.TxID, c.driver, c.table)
    return &models.SinkResult{Backend: c.driver, Status: status}, nil
}

func (c *Connection) insertQuery() string {
    if c.driver == "postgres" {
        return fmt.Sprintf(`
            INSERT INTO %s (id, txid, received_at, valor, payer, raw)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (id) DO NOTHING`, c.table)
    }
    return fmt.Sprintf(`
        INSERT IGNORE INTO %s (id, txid, received_at, valor, payer, raw)
        VALUES (?, ?, ?, ?, ?, ?)`, c.table)
}

func nullableJSON(raw json.RawMessage) interface{} {
    if len(raw) == 0 || string(raw) == "null" {
        return nil
    }
    return string(raw)
}
