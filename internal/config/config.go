package config

import "time"

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment
	// when the postgres store is selected.
	DefaultDatabaseURL = ""

	// DefaultStore is the backend used when none is configured.
	DefaultStore = StoreFile

	// DefaultDataDir holds the file and sqlite stores.
	DefaultDataDir = "data"

	// DefaultLogLevel and DefaultLogFormat configure the logger.
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// DefaultTokenTTL is how long a dashboard token stays valid.
	DefaultTokenTTL = 8 * time.Hour

	// DefaultSubmitLimit is the number of submissions allowed per client per window.
	DefaultSubmitLimit = 10

	// DefaultSubmitWindow is the rate limit window for submissions.
	DefaultSubmitWindow = time.Hour

	// SQLiteFileName is the database file created inside the data directory.
	SQLiteFileName = "panchayat.db"
)

// Store backends selectable with --store.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Stores lists every selectable store backend.
var Stores = []string{StoreFile, StoreSQLite, StorePostgres, StoreMemory}
