package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"fiber-ring-topology-ui/internal/topology"
)

// Config holds runtime configuration for the API service.
type Config struct {
	ListenAddr      string        `validate:"required"`
	ReadTimeout     time.Duration `validate:"gt=0"`
	WriteTimeout    time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
	DefaultLimit    int           `validate:"min=1,max=1000"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
	LogFormat       string        `validate:"oneof=json text"`

	DataSource     string        `validate:"oneof=file mysql snapshot"`
	DataFile       string        `validate:"required_if=DataSource file"`
	DataSheet      string
	DataReloadEach time.Duration `validate:"gte=0"`

	DBHost         string
	DBPort         int    `validate:"required_if=DataSource mysql,gte=0,lte=65535"`
	DBUser         string `validate:"required_if=DataSource mysql"`
	DBPassword     string
	DBName         string `validate:"required_if=DataSource mysql"`
	DBTable        string `validate:"required_if=DataSource mysql,omitempty,sqlident"`
	DBConnTimeout  time.Duration
	DBQueryTimeout time.Duration

	SnapshotSQLitePath string `validate:"required_if=DataSource snapshot"`
	UploadMaxBytes     int64  `validate:"gt=0"`

	LayoutMode     string  `validate:"oneof=zigzag plain"`
	LayoutRowWidth int     `validate:"min=1,max=64"`
	LayoutXSpacing float64 `validate:"gt=0"`
	LayoutYSpacing float64 `validate:"gt=0"`
	LookupMode     string  `validate:"oneof=first-appearance source-first"`
	GraphCacheSize int     `validate:"gte=0"`

	SchemaFile string
}

// FromEnv loads configuration from environment variables with sensible defaults.
func FromEnv() Config {
	loadConfigDefaultsFromFile()

	return Config{
		ListenAddr:         getEnv("APP_LISTEN_ADDR", ":8080"),
		ReadTimeout:        time.Duration(getEnvInt("APP_READ_TIMEOUT_SEC", 10)) * time.Second,
		WriteTimeout:       time.Duration(getEnvInt("APP_WRITE_TIMEOUT_SEC", 30)) * time.Second,
		ShutdownTimeout:    time.Duration(getEnvInt("APP_SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
		DefaultLimit:       getEnvInt("APP_DEFAULT_LIMIT", 100),
		LogLevel:           strings.ToLower(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("APP_LOG_FORMAT", "json")),
		DataSource:         strings.ToLower(getEnv("APP_DATA_SOURCE", "file")),
		DataFile:           getEnv("APP_DATA_FILE", "./data/links.xlsx"),
		DataSheet:          getEnv("APP_DATA_SHEET", ""),
		DataReloadEach:     time.Duration(getEnvInt("APP_DATA_RELOAD_SEC", 300)) * time.Second,
		DBHost:             getEnv("APP_DB_HOST", "127.0.0.1"),
		DBPort:             getEnvInt("APP_DB_PORT", 3306),
		DBUser:             getEnv("APP_DB_USER", "topology"),
		DBPassword:         getEnv("APP_DB_PASSWORD", ""),
		DBName:             getEnv("APP_DB_NAME", "fiber"),
		DBTable:            getEnv("APP_DB_TABLE", "link_records"),
		DBConnTimeout:      time.Duration(getEnvInt("APP_DB_CONN_TIMEOUT_SEC", 5)) * time.Second,
		DBQueryTimeout:     time.Duration(getEnvInt("APP_DB_QUERY_TIMEOUT_SEC", 10)) * time.Second,
		SnapshotSQLitePath: getEnv("APP_SNAPSHOT_SQLITE_PATH", ""),
		UploadMaxBytes:     int64(getEnvInt("APP_UPLOAD_MAX_MB", 20)) << 20,
		LayoutMode:         layoutModeEnv("APP_LAYOUT_MODE"),
		LayoutRowWidth:     getEnvInt("APP_LAYOUT_ROW_WIDTH", 8),
		LayoutXSpacing:     getEnvFloat("APP_LAYOUT_X_SPACING", 180),
		LayoutYSpacing:     getEnvFloat("APP_LAYOUT_Y_SPACING", 150),
		LookupMode:         lookupModeEnv("APP_LOOKUP_MODE"),
		GraphCacheSize:     getEnvInt("APP_GRAPH_CACHE_SIZE", 256),
		SchemaFile:         getEnv("APP_SCHEMA_FILE", ""),
	}
}

var (
	validate   = newValidator()
	identRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return identRegex.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks field ranges and cross-field requirements.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func loadConfigDefaultsFromFile() {
	bootstrapCandidates := []string{
		"./fiber-topology.env",
		"/etc/default/fiber-topology",
	}

	for _, candidate := range bootstrapCandidates {
		_ = applyEnvDefaultsFromFile(absPath(candidate))
	}

	candidates := make([]string, 0, 2)
	if explicit := strings.TrimSpace(os.Getenv("APP_CONFIG_FILE")); explicit != "" {
		candidates = append(candidates, explicit)
	}
	candidates = append(candidates, "/etc/fiber-topology/config.env")

	for _, candidate := range candidates {
		if err := applyEnvDefaultsFromFile(absPath(candidate)); err == nil {
			return
		}
	}
}

func absPath(candidate string) string {
	if filepath.IsAbs(candidate) {
		return candidate
	}
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, candidate)
	}
	return candidate
}

// applyEnvDefaultsFromFile sets variables from an env file without
// overriding anything already present in the environment.
func applyEnvDefaultsFromFile(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	for key, val := range values {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}
	return nil
}

// MySQLDSN returns a mysql driver DSN with safe defaults for TCP access.
func (c Config) MySQLDSN() string {
	params := url.Values{}
	params.Set("parseTime", "true")
	params.Set("timeout", c.DBConnTimeout.String())
	params.Set("readTimeout", c.DBQueryTimeout.String())
	params.Set("writeTimeout", c.DBQueryTimeout.String())
	params.Set("charset", "utf8mb4")
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, params.Encode())
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

// layoutModeEnv folds accepted aliases ("zig-zag", "grid") onto the
// canonical name. Unknown values are kept so Validate reports them.
func layoutModeEnv(key string) string {
	raw := strings.ToLower(getEnv(key, string(topology.LayoutZigZag)))
	mode, err := topology.ParseLayoutMode(raw)
	if err != nil {
		return raw
	}
	return string(mode)
}

func lookupModeEnv(key string) string {
	raw := strings.ToLower(getEnv(key, string(topology.LookupFirstAppearance)))
	mode, err := topology.ParseLookupMode(raw)
	if err != nil {
		return raw
	}
	return string(mode)
}

func getEnvInt(key string, def int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvFloat(key string, def float64) float64 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return def
	}
	return parsed
}
