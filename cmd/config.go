package cmd

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/eurekatools/integrity-reporter/cmd/tabular"
)

// Static errors for configuration validation
var (
	ErrSourceTypeInvalid       = errors.New("source type must be one of: file, s3, db")
	ErrSourcePathRequired      = errors.New("source path is required")
	ErrSourceFormatInvalid     = errors.New("source format must be one of: csv, jsonl, parquet (or empty to detect from the filename)")
	ErrDatabaseUserRequired    = errors.New("database user is required")
	ErrDatabaseNameRequired    = errors.New("database name is required")
	ErrDatabasePortInvalid     = errors.New("database port must be between 1 and 65535")
	ErrTableNameRequired       = errors.New("table name is required for db sources")
	ErrTableNameInvalid        = errors.New("table name is invalid: must be 1-63 characters, start with a letter or underscore, and contain only letters, numbers, and underscores")
	ErrS3EndpointRequired      = errors.New("S3 endpoint is required")
	ErrS3BucketRequired        = errors.New("S3 bucket is required")
	ErrS3AccessKeyRequired     = errors.New("S3 access key is required")
	ErrS3SecretKeyRequired     = errors.New("S3 secret key is required")
	ErrS3RegionInvalid         = errors.New("S3 region contains invalid characters or is too long")
	ErrKeyColumnInvalid        = errors.New("key column name must not be empty")
	ErrSampleRowsInvalid       = errors.New("sample rows must be >= 0")
	ErrOutputFormatInvalid     = errors.New("output format must be one of: text, json")
	ErrExportFormatInvalid     = errors.New("export tables format must be one of: csv, jsonl")
	ErrCompressionInvalid      = errors.New("export compression must be one of: zstd, lz4, gzip, none")
	ErrCompressionLevelInvalid = errors.New("compression level must be between 1 and 22 (zstd), 1-9 (lz4/gzip)")
)

const regionAuto = "auto"

type Config struct {
	Debug     bool
	LogFormat string

	Left  SourceConfig
	Right SourceConfig

	Compare CompareConfig
	Output  OutputConfig
}

// SourceConfig describes one side of the comparison. Type selects how Path is
// interpreted: a local filename, an s3://bucket/key URI, or a database table.
type SourceConfig struct {
	Type        string // file, s3, db
	Path        string
	Format      string // csv, jsonl, parquet; empty = detect from filename
	Compression string // zstd, lz4, gzip, none; empty = detect from filename
	Table       string // db sources only
	Database    DatabaseConfig
	S3          S3Config
}

type CompareConfig struct {
	KeyColumns      string // comma-separated; empty = full-row content hash
	StrictDecimal   bool
	CaseInsensitive bool
	DropBlankRows   bool
	SampleRows      int // rows shown per table in text output (0 = all)
}

type OutputConfig struct {
	Format           string // text, json
	File             string // JSON report destination ("" = stdout)
	XLSX             string // spreadsheet export path ("" = no export)
	ExportTables     string // directory for only-left/only-right table dumps
	ExportFormat     string // csv, jsonl
	Compression      string
	CompressionLevel int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
}

// validSQLIdentifier checks if a string is a valid PostgreSQL identifier
// to prevent SQL injection attacks
var validSQLIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// isValidTableName validates that a table name is safe to use in SQL queries
func isValidTableName(name string) bool {
	if name == "" || len(name) > 63 {
		return false
	}
	return validSQLIdentifier.MatchString(name)
}

// isValidRegion validates that an S3 region is reasonable
func isValidRegion(region string) bool {
	if region == "" {
		return false
	}
	if len(region) > 50 {
		return false
	}
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_-]+$`, region)
	return matched
}

func isValidSourceType(sourceType string) bool {
	validTypes := map[string]bool{
		"file": true,
		"s3":   true,
		"db":   true,
	}
	return validTypes[sourceType]
}

func isValidSourceFormat(format string) bool {
	validFormats := map[string]bool{
		"":                    true, // detect from filename
		tabular.FormatCSV:     true,
		tabular.FormatJSONL:   true,
		tabular.FormatParquet: true,
	}
	return validFormats[format]
}

func isValidOutputFormat(format string) bool {
	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	return validFormats[format]
}

func isValidExportFormat(format string) bool {
	validFormats := map[string]bool{
		tabular.FormatCSV:   true,
		tabular.FormatJSONL: true,
	}
	return validFormats[format]
}

func isValidCompression(compression string) bool {
	validCompressions := map[string]bool{
		"zstd": true,
		"lz4":  true,
		"gzip": true,
		"none": true,
	}
	return validCompressions[compression]
}

// isValidCompressionLevel validates compression level based on compression
// type. Zero means the codec default.
func isValidCompressionLevel(compression string, level int) bool {
	if level == 0 {
		return true
	}
	switch compression {
	case "zstd":
		return level >= 1 && level <= 22
	case "lz4", "gzip":
		return level >= 1 && level <= 9
	case "none":
		return false
	default:
		return false
	}
}

func (s *SourceConfig) validate(side string) error {
	if !isValidSourceType(s.Type) {
		return fmt.Errorf("%s source: %w, got '%s'", side, ErrSourceTypeInvalid, s.Type)
	}
	if !isValidSourceFormat(s.Format) {
		return fmt.Errorf("%s source: %w, got '%s'", side, ErrSourceFormatInvalid, s.Format)
	}

	switch s.Type {
	case "file", "s3":
		if s.Path == "" {
			return fmt.Errorf("%s source: %w", side, ErrSourcePathRequired)
		}
	case "db":
		if s.Table == "" {
			return fmt.Errorf("%s source: %w", side, ErrTableNameRequired)
		}
		if !isValidTableName(s.Table) {
			return fmt.Errorf("%s source: %w: '%s'", side, ErrTableNameInvalid, s.Table)
		}
		if s.Database.User == "" {
			return fmt.Errorf("%s source: %w", side, ErrDatabaseUserRequired)
		}
		if s.Database.Name == "" {
			return fmt.Errorf("%s source: %w", side, ErrDatabaseNameRequired)
		}
		if s.Database.Port < 1 || s.Database.Port > 65535 {
			return fmt.Errorf("%s source: %w, got %d", side, ErrDatabasePortInvalid, s.Database.Port)
		}
	}

	if s.Type == "s3" {
		if s.S3.Endpoint == "" {
			return fmt.Errorf("%s source: %w", side, ErrS3EndpointRequired)
		}
		if s.S3.Bucket == "" {
			return fmt.Errorf("%s source: %w", side, ErrS3BucketRequired)
		}
		if s.S3.AccessKey == "" {
			return fmt.Errorf("%s source: %w", side, ErrS3AccessKeyRequired)
		}
		if s.S3.SecretKey == "" {
			return fmt.Errorf("%s source: %w", side, ErrS3SecretKeyRequired)
		}
		if s.S3.Region != "" && s.S3.Region != regionAuto {
			if !isValidRegion(s.S3.Region) {
				return fmt.Errorf("%s source: %w: %s", side, ErrS3RegionInvalid, s.S3.Region)
			}
		}
	}

	return nil
}

func splitKeyColumns(requested string) []string {
	parts := strings.Split(requested, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func (c *Config) Validate() error {
	if err := c.Left.validate("left"); err != nil {
		return err
	}
	if err := c.Right.validate("right"); err != nil {
		return err
	}

	// Key columns: empty is valid (content-hash alignment), but a list with a
	// blank entry like "id,," is a typo worth catching early
	if c.Compare.KeyColumns != "" {
		for _, col := range splitKeyColumns(c.Compare.KeyColumns) {
			if col == "" {
				return fmt.Errorf("%w: '%s'", ErrKeyColumnInvalid, c.Compare.KeyColumns)
			}
		}
	}

	if c.Compare.SampleRows < 0 {
		return fmt.Errorf("%w, got %d", ErrSampleRowsInvalid, c.Compare.SampleRows)
	}

	if !isValidOutputFormat(c.Output.Format) {
		return fmt.Errorf("%w: '%s'", ErrOutputFormatInvalid, c.Output.Format)
	}

	// Table export settings only matter when an export directory is set
	if c.Output.ExportTables != "" {
		if !isValidExportFormat(c.Output.ExportFormat) {
			return fmt.Errorf("%w: '%s'", ErrExportFormatInvalid, c.Output.ExportFormat)
		}
		if !isValidCompression(c.Output.Compression) {
			return fmt.Errorf("%w: '%s'", ErrCompressionInvalid, c.Output.Compression)
		}
		if !isValidCompressionLevel(c.Output.Compression, c.Output.CompressionLevel) {
			return fmt.Errorf("%w for compression %s: got %d", ErrCompressionLevelInvalid, c.Output.Compression, c.Output.CompressionLevel)
		}
	}

	return nil
}
