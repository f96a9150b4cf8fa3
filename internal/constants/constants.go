package constants

import "time"

const (
	TeamSize          = 6
	MaxToolIterations = 5
)

const (
	ExternalAPITimeout = 10 * time.Second
	CompletionTimeout  = 120 * time.Second
	DatabaseTimeout    = 5 * time.Second
	DialTimeout        = 15 * time.Second
)

// The session is the database's only writer, so the pool stays small.
const (
	DBMaxOpenConns    = 4
	DBMaxIdleConns    = 2
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	PingInterval = 30 * time.Second
)
