package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version information - set via ldflags during build
	// Example: go build -ldflags "-X github.com/eurekatools/integrity-reporter/cmd.Version=1.2.3"
	Version = "dev" // Default to "dev" if not set during build

	// signalContext is set by main() before Cobra initialization
	// This ensures signal handling is set up before any library can interfere
	signalContext context.Context

	// versionCheckResult stores the result of the background version check
	versionCheckResult *VersionCheckResult

	cfgFile   string
	debug     bool
	logFormat string

	leftType         string
	leftPath         string
	leftFormat       string
	leftCompression  string
	leftTable        string
	rightType        string
	rightPath        string
	rightFormat      string
	rightCompression string
	rightTable       string

	dbHost     string
	dbPort     int
	dbUser     string
	dbPassword string
	dbName     string
	dbSSLMode  string

	s3Endpoint  string
	s3Bucket    string
	s3AccessKey string
	s3SecretKey string
	s3Region    string

	keyColumns      string
	strictDecimal   bool
	caseInsensitive bool
	dropBlankRows   bool
	sampleRows      int

	outputFormat     string
	outputFile       string
	xlsxFile         string
	exportTables     string
	exportFormat     string
	compression      string
	compressionLevel int

	servePort int

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true).
			Underline(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00D9FF"))

	logger *slog.Logger
)

// SetSignalContext stores the signal-aware context created in main()
// This must be called before Execute() to ensure proper signal handling
func SetSignalContext(ctx context.Context) {
	signalContext = ctx
}

// broadcastLogHandler wraps a slog handler and broadcasts logs to WebSocket clients
type broadcastLogHandler struct {
	handler slog.Handler
}

func newBroadcastLogHandler(handler slog.Handler) *broadcastLogHandler {
	return &broadcastLogHandler{handler: handler}
}

func (h *broadcastLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *broadcastLogHandler) Handle(ctx context.Context, r slog.Record) error {
	// Broadcast log to WebSocket clients (non-blocking)
	// logBroadcast is only initialized in serve mode (see serve.go)
	if logBroadcast != nil {
		logMsg := LogMessage{
			Timestamp: r.Time.Format("2006-01-02 15:04:05"),
			Level:     r.Level.String(),
			Message:   r.Message,
		}
		select {
		case logBroadcast <- logMsg:
			// Successfully sent to broadcast channel
		default:
			// Channel full, skip broadcast to avoid blocking
		}
	}

	// Always write to original handler (this ensures logs still appear in console)
	return h.handler.Handle(ctx, r)
}

func (h *broadcastLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &broadcastLogHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *broadcastLogHandler) WithGroup(name string) slog.Handler {
	return &broadcastLogHandler{handler: h.handler.WithGroup(name)}
}

// textOnlyHandler is a custom slog handler that outputs human-readable text
// without key=value pairs, suitable for interactive terminal usage
type textOnlyHandler struct {
	opts   slog.HandlerOptions
	writer io.Writer
}

func newTextOnlyHandler(w io.Writer, opts *slog.HandlerOptions) *textOnlyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &textOnlyHandler{
		opts:   *opts,
		writer: w,
	}
}

func (h *textOnlyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *textOnlyHandler) Handle(_ context.Context, r slog.Record) error {
	// Format: YYYY-MM-DD HH:MM:SS LEVEL message
	timestamp := r.Time.Format("2006-01-02 15:04:05")
	level := r.Level.String()

	_, err := fmt.Fprintf(h.writer, "%s %s %s\n", timestamp, level, r.Message)
	return err
}

func (h *textOnlyHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	// For simplicity, we ignore attributes in text-only mode
	return h
}

func (h *textOnlyHandler) WithGroup(_ string) slog.Handler {
	// For simplicity, we ignore groups in text-only mode
	return h
}

// initLogger initializes the slog logger based on debug flag and log format.
// Logs go to stderr so that report output on stdout stays machine-readable.
func initLogger(isDebug bool, format string) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if isDebug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "logfmt":
		// logfmt uses slog.TextHandler which outputs key=value pairs
		handler = slog.NewTextHandler(os.Stderr, opts)
	default: // "text" or anything else
		handler = newTextOnlyHandler(os.Stderr, opts)
	}

	// Wrap handler to broadcast logs when the serve-mode channel exists
	handler = newBroadcastLogHandler(handler)

	logger = slog.New(handler)
}

var rootCmd = &cobra.Command{
	Use:     "integrity-reporter",
	Version: Version,
	Short:   "🔍 Compare two tabular datasets and report integrity differences",
	Long: titleStyle.Render("Integrity Reporter") + `

A CLI tool to compare two tabular datasets (CSV, JSONL or Parquet; local file,
S3 object or PostgreSQL table) and report schema drift, row presence
differences and cell-level changes. Rows align by key columns or by full-row
content hash; values are normalized so "5.00" and "5" compare equal. Results
render as text, JSON or a multi-sheet spreadsheet.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// Show help when no subcommand is specified
		cmd.Help()
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two datasets and report differences",
	Long: `Compare two datasets and report differences. Loads both sides, aligns rows
by key columns (or full-row content hash), and reports column drift, rows
present on only one side, and cell-level changes for matched rows.`,
	Run: func(_ *cobra.Command, _ []string) {
		runCompare()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the comparison web UI",
	Long: `Start an embedded web server with an upload form for two dataset files.
Comparisons run server-side and results render in the browser, with a
downloadable spreadsheet report and a live log stream over WebSocket.`,
	Run: func(_ *cobra.Command, _ []string) {
		runServe()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(serveCmd)

	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.integrity-reporter.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, logfmt, json)")

	// Source flags
	compareCmd.Flags().StringVar(&leftType, "left-type", "file", "left source type: file, s3, db")
	compareCmd.Flags().StringVar(&leftPath, "left", "", "left source path (file path or S3 key)")
	compareCmd.Flags().StringVar(&leftFormat, "left-format", "", "left source format: csv, jsonl, parquet (default: detect from filename)")
	compareCmd.Flags().StringVar(&leftCompression, "left-compression", "", "left source compression: zstd, lz4, gzip, none (default: detect from filename)")
	compareCmd.Flags().StringVar(&leftTable, "left-table", "", "left table name (db sources)")
	compareCmd.Flags().StringVar(&rightType, "right-type", "file", "right source type: file, s3, db")
	compareCmd.Flags().StringVar(&rightPath, "right", "", "right source path (file path or S3 key)")
	compareCmd.Flags().StringVar(&rightFormat, "right-format", "", "right source format: csv, jsonl, parquet (default: detect from filename)")
	compareCmd.Flags().StringVar(&rightCompression, "right-compression", "", "right source compression: zstd, lz4, gzip, none (default: detect from filename)")
	compareCmd.Flags().StringVar(&rightTable, "right-table", "", "right table name (db sources)")

	// Shared connection flags (db and s3 sources use the same connection on both sides)
	compareCmd.Flags().StringVar(&dbHost, "db-host", "localhost", "PostgreSQL host")
	compareCmd.Flags().IntVar(&dbPort, "db-port", 5432, "PostgreSQL port")
	compareCmd.Flags().StringVar(&dbUser, "db-user", "", "PostgreSQL user")
	compareCmd.Flags().StringVar(&dbPassword, "db-password", "", "PostgreSQL password")
	compareCmd.Flags().StringVar(&dbName, "db-name", "", "PostgreSQL database name")
	compareCmd.Flags().StringVar(&dbSSLMode, "db-sslmode", "disable", "PostgreSQL SSL mode (disable, require, verify-ca, verify-full)")

	compareCmd.Flags().StringVar(&s3Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL")
	compareCmd.Flags().StringVar(&s3Bucket, "s3-bucket", "", "S3 bucket name")
	compareCmd.Flags().StringVar(&s3AccessKey, "s3-access-key", "", "S3 access key")
	compareCmd.Flags().StringVar(&s3SecretKey, "s3-secret-key", "", "S3 secret key")
	compareCmd.Flags().StringVar(&s3Region, "s3-region", "auto", "S3 region")

	// Comparison flags
	compareCmd.Flags().StringVar(&keyColumns, "keys", "", "comma-separated key columns for row alignment (default: full-row content hash)")
	compareCmd.Flags().BoolVar(&strictDecimal, "strict-decimal", false, "compare numeric text verbatim instead of canonicalizing (5.00 != 5)")
	compareCmd.Flags().BoolVar(&caseInsensitive, "case-insensitive", true, "fold values to lowercase before comparing")
	compareCmd.Flags().BoolVar(&dropBlankRows, "drop-blank-rows", true, "drop trailing all-blank rows before comparing")
	compareCmd.Flags().IntVar(&sampleRows, "sample-rows", 20, "rows shown per difference table in text output (0 = all)")

	// Output flags
	compareCmd.Flags().StringVar(&outputFormat, "output-format", "text", "report format: text, json")
	compareCmd.Flags().StringVar(&outputFile, "output-file", "", "write the JSON report to a file instead of stdout")
	compareCmd.Flags().StringVar(&xlsxFile, "xlsx", "", "write a multi-sheet spreadsheet report to this path")
	compareCmd.Flags().StringVar(&exportTables, "export-tables", "", "directory for only-left/only-right table dumps")
	compareCmd.Flags().StringVar(&exportFormat, "export-format", "csv", "table dump format: csv, jsonl")
	compareCmd.Flags().StringVar(&compression, "compression", "none", "table dump compression: zstd, lz4, gzip, none")
	compareCmd.Flags().IntVar(&compressionLevel, "compression-level", 0, "compression level (zstd: 1-22, lz4/gzip: 1-9, none: 0)")

	// Serve-specific flags
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "port for the comparison web server")
	serveCmd.Flags().StringVar(&keyColumns, "keys", "", "default key columns for uploaded comparisons")

	// Note: We don't use MarkFlagRequired because it checks before viper loads the config file.
	// Instead, validation happens in config.Validate() which runs after all config sources are loaded.

	// Bind persistent flags
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Bind compare flags
	_ = viper.BindPFlag("left.type", compareCmd.Flags().Lookup("left-type"))
	_ = viper.BindPFlag("left.path", compareCmd.Flags().Lookup("left"))
	_ = viper.BindPFlag("left.format", compareCmd.Flags().Lookup("left-format"))
	_ = viper.BindPFlag("left.compression", compareCmd.Flags().Lookup("left-compression"))
	_ = viper.BindPFlag("left.table", compareCmd.Flags().Lookup("left-table"))
	_ = viper.BindPFlag("right.type", compareCmd.Flags().Lookup("right-type"))
	_ = viper.BindPFlag("right.path", compareCmd.Flags().Lookup("right"))
	_ = viper.BindPFlag("right.format", compareCmd.Flags().Lookup("right-format"))
	_ = viper.BindPFlag("right.compression", compareCmd.Flags().Lookup("right-compression"))
	_ = viper.BindPFlag("right.table", compareCmd.Flags().Lookup("right-table"))
	_ = viper.BindPFlag("db.host", compareCmd.Flags().Lookup("db-host"))
	_ = viper.BindPFlag("db.port", compareCmd.Flags().Lookup("db-port"))
	_ = viper.BindPFlag("db.user", compareCmd.Flags().Lookup("db-user"))
	_ = viper.BindPFlag("db.password", compareCmd.Flags().Lookup("db-password"))
	_ = viper.BindPFlag("db.name", compareCmd.Flags().Lookup("db-name"))
	_ = viper.BindPFlag("db.sslmode", compareCmd.Flags().Lookup("db-sslmode"))
	_ = viper.BindPFlag("s3.endpoint", compareCmd.Flags().Lookup("s3-endpoint"))
	_ = viper.BindPFlag("s3.bucket", compareCmd.Flags().Lookup("s3-bucket"))
	_ = viper.BindPFlag("s3.access_key", compareCmd.Flags().Lookup("s3-access-key"))
	_ = viper.BindPFlag("s3.secret_key", compareCmd.Flags().Lookup("s3-secret-key"))
	_ = viper.BindPFlag("s3.region", compareCmd.Flags().Lookup("s3-region"))
	_ = viper.BindPFlag("key_columns", compareCmd.Flags().Lookup("keys"))
	_ = viper.BindPFlag("strict_decimal", compareCmd.Flags().Lookup("strict-decimal"))
	_ = viper.BindPFlag("case_insensitive", compareCmd.Flags().Lookup("case-insensitive"))
	_ = viper.BindPFlag("drop_blank_rows", compareCmd.Flags().Lookup("drop-blank-rows"))
	_ = viper.BindPFlag("sample_rows", compareCmd.Flags().Lookup("sample-rows"))
	_ = viper.BindPFlag("output_format", compareCmd.Flags().Lookup("output-format"))
	_ = viper.BindPFlag("output_file", compareCmd.Flags().Lookup("output-file"))
	_ = viper.BindPFlag("xlsx", compareCmd.Flags().Lookup("xlsx"))
	_ = viper.BindPFlag("export_tables", compareCmd.Flags().Lookup("export-tables"))
	_ = viper.BindPFlag("export_format", compareCmd.Flags().Lookup("export-format"))
	_ = viper.BindPFlag("compression", compareCmd.Flags().Lookup("compression"))
	_ = viper.BindPFlag("compression_level", compareCmd.Flags().Lookup("compression-level"))

	// Bind serve flags (last binding wins for shared variables)
	_ = viper.BindPFlag("serve_port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("key_columns", serveCmd.Flags().Lookup("keys"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".integrity-reporter")
	}

	viper.SetEnvPrefix("EUREKA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && debug {
		// Initialize logger early if reading config in debug mode
		if logger == nil {
			initLogger(debug, logFormat)
		}
		logger.Debug(fmt.Sprintf("📄 Using config file: %s", viper.ConfigFileUsed()))
	}
}

// configFromViper assembles the full Config from all bound sources.
func configFromViper() *Config {
	sharedDB := DatabaseConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetInt("db.port"),
		User:     viper.GetString("db.user"),
		Password: viper.GetString("db.password"),
		Name:     viper.GetString("db.name"),
		SSLMode:  viper.GetString("db.sslmode"),
	}
	sharedS3 := S3Config{
		Endpoint:  viper.GetString("s3.endpoint"),
		Bucket:    viper.GetString("s3.bucket"),
		AccessKey: viper.GetString("s3.access_key"),
		SecretKey: viper.GetString("s3.secret_key"),
		Region:    viper.GetString("s3.region"),
	}

	return &Config{
		Debug:     viper.GetBool("debug"),
		LogFormat: viper.GetString("log_format"),
		Left: SourceConfig{
			Type:        viper.GetString("left.type"),
			Path:        viper.GetString("left.path"),
			Format:      viper.GetString("left.format"),
			Compression: viper.GetString("left.compression"),
			Table:       viper.GetString("left.table"),
			Database:    sharedDB,
			S3:          sharedS3,
		},
		Right: SourceConfig{
			Type:        viper.GetString("right.type"),
			Path:        viper.GetString("right.path"),
			Format:      viper.GetString("right.format"),
			Compression: viper.GetString("right.compression"),
			Table:       viper.GetString("right.table"),
			Database:    sharedDB,
			S3:          sharedS3,
		},
		Compare: CompareConfig{
			KeyColumns:      viper.GetString("key_columns"),
			StrictDecimal:   viper.GetBool("strict_decimal"),
			CaseInsensitive: viper.GetBool("case_insensitive"),
			DropBlankRows:   viper.GetBool("drop_blank_rows"),
			SampleRows:      viper.GetInt("sample_rows"),
		},
		Output: OutputConfig{
			Format:           viper.GetString("output_format"),
			File:             viper.GetString("output_file"),
			XLSX:             viper.GetString("xlsx"),
			ExportTables:     viper.GetString("export_tables"),
			ExportFormat:     viper.GetString("export_format"),
			Compression:      viper.GetString("compression"),
			CompressionLevel: viper.GetInt("compression_level"),
		},
	}
}
