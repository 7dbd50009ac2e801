package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"
)

// dsn assembles the connection string through the driver's own config
// type. The session time zone is pinned to UTC so DEFAULT
// CURRENT_TIMESTAMP columns agree with the UTC_TIMESTAMP() comparisons
// in queries regardless of the server's default zone, and parseTime
// maps DATETIME columns onto time.Time in UTC.
func dsn(user, pass, host, port, name string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = pass
	cfg.Net = "tcp"
	cfg.Addr = host + ":" + port
	cfg.DBName = name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{
		"charset":   "utf8mb4",
		"time_zone": "'+00:00'",
	}
	return cfg.FormatDSN()
}

// Open connects to MySQL, applies the configured pool limits and
// verifies the connection with a short ping before returning.
func Open(user, pass, host, port, name string, maxConns int, connLifetime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn(user, pass, host, port, name))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(connLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
