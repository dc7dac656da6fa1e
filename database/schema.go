// database/schema.go
package database

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// Date and timestamp columns are declared TEXT under SQLite and bound as
// ISO strings: the pure-Go driver converts declared DATE/DATETIME columns
// to time.Time on scan, and string storage keeps both dialects scanning
// the same way.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS sites (
		site_code   TEXT PRIMARY KEY,
		latitude    REAL,
		longitude   REAL,
		site_name   TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS filters (
		filter_id            TEXT PRIMARY KEY,
		barcode              TEXT,
		site_code            TEXT REFERENCES sites(site_code),
		sample_date          TEXT,
		filter_type          TEXT,
		lot_id               INTEGER,
		project_id           TEXT,
		external_shipment_id TEXT,
		filter_comments      TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS ftir_sample_measurements (
		measurement_id INTEGER PRIMARY KEY AUTOINCREMENT,
		filter_id      TEXT REFERENCES filters(filter_id),
		ftir_batch_id  INTEGER,
		sample_id      TEXT,
		volume_m3      REAL,
		oc_ftir        REAL,
		oc_ftir_mdl    REAL,
		ec_ftir        REAL,
		ec_ftir_mdl    REAL,
		comments       TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS ftir_blank_measurements (
		filter_id     TEXT PRIMARY KEY REFERENCES filters(filter_id),
		ftir_batch_id INTEGER,
		oc_ftir       REAL,
		ec_ftir       REAL,
		tau           REAL,
		comments      TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS hips_measurements (
		measurement_id    INTEGER PRIMARY KEY AUTOINCREMENT,
		filter_id         TEXT REFERENCES filters(filter_id),
		analysis_date     TEXT,
		analysis_time     TEXT,
		t1                REAL,
		r1                REAL,
		intercept         REAL,
		slope             REAL,
		t                 REAL,
		r                 REAL,
		tau               REAL,
		deposit_area      REAL,
		volume            REAL,
		fabs              REAL,
		fabs_mdl          REAL,
		fabs_uncertainty  REAL,
		analysis_comments TEXT,
		ftir_batch_id     INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS functional_groups (
		measurement_id INTEGER PRIMARY KEY AUTOINCREMENT,
		filter_id      TEXT REFERENCES filters(filter_id),
		sample_id      TEXT,
		acoh           REAL,
		ach            REAL,
		naco           REAL,
		cooh           REAL,
		om             REAL
	)`,
	`CREATE TABLE IF NOT EXISTS source_runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id      TEXT NOT NULL,
		source_name TEXT NOT NULL,
		source_file TEXT NOT NULL,
		file_sha256 TEXT,
		rows_read   INTEGER NOT NULL,
		rows_loaded INTEGER NOT NULL,
		started_at  TEXT,
		finished_at TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_filters_site       ON filters(site_code)`,
	`CREATE INDEX IF NOT EXISTS idx_ftir_sample_filter ON ftir_sample_measurements(filter_id)`,
	`CREATE INDEX IF NOT EXISTS idx_hips_filter        ON hips_measurements(filter_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sample_id          ON ftir_sample_measurements(sample_id)`,
	`CREATE INDEX IF NOT EXISTS idx_source_runs_run    ON source_runs(run_id)`,
}

// MySQL needs bounded key columns (TEXT cannot back a primary key or
// index) and InnoDB for the foreign keys.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS sites (
		site_code   VARCHAR(16) PRIMARY KEY,
		latitude    DOUBLE,
		longitude   DOUBLE,
		site_name   TEXT
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS filters (
		filter_id            VARCHAR(64) PRIMARY KEY,
		barcode              TEXT,
		site_code            VARCHAR(16),
		sample_date          DATE,
		filter_type          TEXT,
		lot_id               INTEGER,
		project_id           TEXT,
		external_shipment_id TEXT,
		filter_comments      TEXT,
		FOREIGN KEY (site_code) REFERENCES sites(site_code)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS ftir_sample_measurements (
		measurement_id INTEGER PRIMARY KEY AUTO_INCREMENT,
		filter_id      VARCHAR(64),
		ftir_batch_id  INTEGER,
		sample_id      VARCHAR(128),
		volume_m3      DOUBLE,
		oc_ftir        DOUBLE,
		oc_ftir_mdl    DOUBLE,
		ec_ftir        DOUBLE,
		ec_ftir_mdl    DOUBLE,
		comments       TEXT,
		FOREIGN KEY (filter_id) REFERENCES filters(filter_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS ftir_blank_measurements (
		filter_id     VARCHAR(64) PRIMARY KEY,
		ftir_batch_id INTEGER,
		oc_ftir       DOUBLE,
		ec_ftir       DOUBLE,
		tau           DOUBLE,
		comments      TEXT,
		FOREIGN KEY (filter_id) REFERENCES filters(filter_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS hips_measurements (
		measurement_id    INTEGER PRIMARY KEY AUTO_INCREMENT,
		filter_id         VARCHAR(64),
		analysis_date     DATE,
		analysis_time     TEXT,
		t1                DOUBLE,
		r1                DOUBLE,
		intercept         DOUBLE,
		slope             DOUBLE,
		t                 DOUBLE,
		r                 DOUBLE,
		tau               DOUBLE,
		deposit_area      DOUBLE,
		volume            DOUBLE,
		fabs              DOUBLE,
		fabs_mdl          DOUBLE,
		fabs_uncertainty  DOUBLE,
		analysis_comments TEXT,
		ftir_batch_id     INTEGER,
		FOREIGN KEY (filter_id) REFERENCES filters(filter_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS functional_groups (
		measurement_id INTEGER PRIMARY KEY AUTO_INCREMENT,
		filter_id      VARCHAR(64),
		sample_id      VARCHAR(128),
		acoh           DOUBLE,
		ach            DOUBLE,
		naco           DOUBLE,
		cooh           DOUBLE,
		om             DOUBLE,
		FOREIGN KEY (filter_id) REFERENCES filters(filter_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS source_runs (
		id          INTEGER PRIMARY KEY AUTO_INCREMENT,
		run_id      VARCHAR(36) NOT NULL,
		source_name VARCHAR(32) NOT NULL,
		source_file TEXT NOT NULL,
		file_sha256 CHAR(64),
		rows_read   INTEGER NOT NULL,
		rows_loaded INTEGER NOT NULL,
		started_at  DATETIME,
		finished_at DATETIME
	) ENGINE=InnoDB`,
	`CREATE INDEX idx_filters_site       ON filters(site_code)`,
	`CREATE INDEX idx_ftir_sample_filter ON ftir_sample_measurements(filter_id)`,
	`CREATE INDEX idx_hips_filter        ON hips_measurements(filter_id)`,
	`CREATE INDEX idx_sample_id          ON ftir_sample_measurements(sample_id)`,
	`CREATE INDEX idx_source_runs_run    ON source_runs(run_id)`,
}

// EnsureSchema creates every table and index the loader writes. Each
// statement is idempotent, so pointing the pipeline at an existing store
// leaves it untouched.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	stmts := sqliteSchema
	if driver == "mysql" {
		stmts = mysqlSchema
	}
	for _, stmt := range stmts {
		if _, err := DB.Exec(stmt); err != nil {
			if driver == "mysql" && isDuplicateKeyName(err) {
				continue
			}
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}

// isDuplicateKeyName reports MySQL error 1061, raised when CREATE INDEX
// hits an index that already exists. MySQL has no IF NOT EXISTS for
// indexes, so re-running the schema trips it on every index.
func isDuplicateKeyName(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1061
	}
	return false
}
