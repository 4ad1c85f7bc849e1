package sqlstore

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Dialect holds what differs between the database/sql backends.
type Dialect struct {
	// Driver is the database/sql driver name.
	Driver string
	// Schema returns the statements creating the table and its recency index.
	Schema func(table string) []string
	// DSN normalizes a user-supplied data source name.
	DSN func(dsn string) (string, error)
}

// SQLite is the embedded default store (modernc.org/sqlite, no cgo).
var SQLite = Dialect{
	Driver: "sqlite",
	Schema: func(table string) []string {
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id                INTEGER PRIMARY KEY AUTOINCREMENT,
				filename          TEXT NOT NULL,
				original_path     TEXT NOT NULL,
				converted_content TEXT NOT NULL,
				status            TEXT NOT NULL,
				file_size         INTEGER NOT NULL,
				conversion_time   REAL NOT NULL,
				created_at        DATETIME NOT NULL
			)`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s(created_at)`, table, table),
		}
	},
	DSN: sqliteDSN,
}

// MySQL stores records in InnoDB.
var MySQL = Dialect{
	Driver: "mysql",
	Schema: func(table string) []string {
		// MySQL has no CREATE INDEX IF NOT EXISTS, so the index is declared inline.
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id                BIGINT AUTO_INCREMENT PRIMARY KEY,
				filename          VARCHAR(255) NOT NULL,
				original_path     TEXT NOT NULL,
				converted_content LONGTEXT NOT NULL,
				status            VARCHAR(16) NOT NULL,
				file_size         BIGINT NOT NULL,
				conversion_time   DOUBLE NOT NULL,
				created_at        DATETIME(6) NOT NULL,
				INDEX idx_%s_created_at (created_at)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, table, table),
		}
	},
	DSN: mysqlDSN,
}

// sqliteDSN adds the pragmas every connection needs: WAL, a busy timeout so
// concurrent appends wait instead of failing, and NORMAL sync.
func sqliteDSN(dsn string) (string, error) {
	pragmas := []string{"busy_timeout(10000)", "journal_mode(WAL)", "synchronous(NORMAL)"}

	base, query, _ := strings.Cut(dsn, "?")
	values, err := url.ParseQuery(query)
	if err != nil {
		return "", fmt.Errorf("parse sqlite dsn: %w", err)
	}
	for _, p := range pragmas {
		values.Add("_pragma", p)
	}
	return base + "?" + values.Encode(), nil
}

// mysqlDSN forces parseTime so DATETIME columns scan into time.Time.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
