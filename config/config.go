// config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" (default) or "mysql"

	// sqlite
	Path string `yaml:"path"`

	// mysql
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// SourceFilesConfig names the file (relative to data_dir unless absolute)
// for each of the five configured sources. An empty name disables the
// source; a named but absent file is skipped with a warning.
type SourceFilesConfig struct {
	Sample  string `yaml:"sample"`
	Blank   string `yaml:"blank"`
	Etad    string `yaml:"etad"`
	Batch23 string `yaml:"batch23"`
	Batch4  string `yaml:"batch4"`
}

// FileFor returns the configured file name for a source key.
func (s SourceFilesConfig) FileFor(source string) string {
	switch source {
	case "sample":
		return s.Sample
	case "blank":
		return s.Blank
	case "etad":
		return s.Etad
	case "batch23":
		return s.Batch23
	case "batch4":
		return s.Batch4
	}
	return ""
}

type PipelineConfig struct {
	// CreateMissingFilters controls whether the linker synthesizes
	// placeholder filter (and site) rows for resolved labels whose filter
	// does not exist yet. When false, such measurements keep a NULL
	// filter_id and only already-known filters are linked.
	CreateMissingFilters bool `yaml:"create_missing_filters"`
}

type Config struct {
	Database DatabaseConfig    `yaml:"database"`
	DataDir  string            `yaml:"data_dir"`
	Sources  SourceFilesConfig `yaml:"sources"`
	NaTokens []string          `yaml:"na_tokens"`
	Pipeline PipelineConfig    `yaml:"pipeline"`
	LogLevel string            `yaml:"log_level"`
}

var AppConfig Config

// Defaults returns the built-in configuration: a SQLite store next to the
// working directory and the five source files under data_dir with the
// exporters' original names.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "spartan_ftir_hips.db",
			Port:   "3306",
		},
		DataDir: ".",
		Sources: SourceFilesConfig{
			Sample:  "SPARTAN_FTIR_&_HIPS_FTIR_Batches_3_4_5_SAMPLE.csv",
			Blank:   "SPARTAN_FTIR_&_HIPS_FTIR_Batches_3_4_5_BLANK.csv",
			Etad:    "ETAD_data_2023.csv",
			Batch23: "SPARTAN_FTIR data batch 2 and 3 resubmitted with MDLs.csv",
			Batch4:  "SPARTAN_FTIR data_batch 4_ Nov2022 to March2024.csv",
		},
		NaTokens: []string{"NA", "NaN", "nan", "N/A", ""},
		Pipeline: PipelineConfig{CreateMissingFilters: true},
		LogLevel: "info",
	}
}

// LoadConfig populates AppConfig from defaults, an optional YAML file, and
// environment overrides (a .env file is honored if present). An empty
// configPath searches the usual locations and falls back to defaults; an
// explicit path must exist.
func LoadConfig(configPath string) error {
	AppConfig = Defaults()

	explicit := configPath != ""
	if !explicit {
		potentialPaths := []string{
			"config.yaml",
			"config/config.yaml",
		}
		for _, p := range potentialPaths {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			if explicit {
				return fmt.Errorf("failed to read config file %s: %w", configPath, err)
			}
		} else if err := yaml.Unmarshal(file, &AppConfig); err != nil {
			return fmt.Errorf("failed to unmarshal config %s: %w", configPath, err)
		}
	}

	// .env then process environment, highest precedence.
	_ = godotenv.Load()
	applyEnvOverrides(&AppConfig)

	switch AppConfig.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q (expected sqlite or mysql)", AppConfig.Database.Driver)
	}

	if AppConfig.Database.Driver == "sqlite" && AppConfig.Database.Path != "" {
		if dir := filepath.Dir(AppConfig.Database.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory for database file: %w", err)
			}
		}
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	setIfEnv(&cfg.Database.Driver, "SPARTANDB_DB_DRIVER")
	setIfEnv(&cfg.Database.Path, "SPARTANDB_DB_PATH")
	setIfEnv(&cfg.Database.Host, "SPARTANDB_MYSQL_HOST")
	setIfEnv(&cfg.Database.Port, "SPARTANDB_MYSQL_PORT")
	setIfEnv(&cfg.Database.User, "SPARTANDB_MYSQL_USER")
	setIfEnv(&cfg.Database.Password, "SPARTANDB_MYSQL_PASSWORD")
	setIfEnv(&cfg.Database.DBName, "SPARTANDB_MYSQL_DBNAME")
	setIfEnv(&cfg.DataDir, "SPARTANDB_DATA_DIR")
	setIfEnv(&cfg.LogLevel, "SPARTANDB_LOG_LEVEL")
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
