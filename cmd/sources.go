package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/lib/pq"

	"github.com/eurekatools/integrity-reporter/cmd/compressors"
	"github.com/eurekatools/integrity-reporter/cmd/tabular"
)

// loadFile reads a local file into a dataset, detecting format and
// compression from the filename unless overridden in the source config.
func loadFile(source *SourceConfig) (*tabular.Dataset, error) {
	file, err := os.Open(source.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return readDataset(file.Name(), file, source)
}

// readDataset decodes a named stream: resolve format and compression, wrap
// the stream in a decompression reader, then parse it.
func readDataset(name string, file *os.File, source *SourceConfig) (*tabular.Dataset, error) {
	format, compression, err := resolveFormat(name, source)
	if err != nil {
		return nil, err
	}

	compressor, err := compressors.GetCompressor(compression)
	if err != nil {
		return nil, fmt.Errorf("failed to get compressor: %w", err)
	}

	decompressed, err := compressor.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create decompression reader: %w", err)
	}
	defer decompressed.Close()

	reader, err := tabular.NewReader(format, decompressed)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	ds, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s data: %w", format, err)
	}
	return ds, nil
}

// resolveFormat applies explicit format/compression overrides, falling back
// to filename detection for whichever is unset.
func resolveFormat(name string, source *SourceConfig) (string, string, error) {
	format := source.Format
	compression := source.Compression

	if format == "" || compression == "" {
		detectedFormat, detectedCompression, err := tabular.DetectFormat(filepath.Base(name))
		if err != nil && format == "" {
			return "", "", err
		}
		if format == "" {
			format = detectedFormat
		}
		if compression == "" {
			compression = detectedCompression
		}
	}
	if compression == "" {
		compression = "none"
	}

	return format, compression, nil
}

// loadS3Object downloads an object to a temp file and reads it like a local
// file. Objects are downloaded whole; comparison needs the full dataset in
// memory anyway.
func loadS3Object(ctx context.Context, source *SourceConfig) (*tabular.Dataset, error) {
	sess, err := session.NewSession(&aws.Config{
		Endpoint:         aws.String(source.S3.Endpoint),
		Region:           aws.String(source.S3.Region),
		Credentials:      credentials.NewStaticCredentials(source.S3.AccessKey, source.S3.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}
	downloader := s3manager.NewDownloader(sess)

	tempFile, err := os.CreateTemp("", "integrity-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())
	defer tempFile.Close()

	_, err = downloader.DownloadWithContext(ctx, tempFile, &s3.GetObjectInput{
		Bucket: aws.String(source.S3.Bucket),
		Key:    aws.String(source.Path),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", source.S3.Bucket, source.Path, err)
	}

	if _, err := tempFile.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("failed to rewind temp file: %w", err)
	}

	// Detection runs against the object key, not the temp filename
	return readDataset(source.Path, tempFile, source)
}

// loadDatabaseTable reads a full PostgreSQL table into a dataset. Every value
// renders through its text representation; NULL becomes the empty string so
// it aligns with blank cells in file exports.
func loadDatabaseTable(ctx context.Context, source *SourceConfig) (*tabular.Dataset, error) {
	db, err := connectDatabase(ctx, &source.Database)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return queryTable(ctx, db, source.Table)
}

// connectDatabase connects to a PostgreSQL database
func connectDatabase(ctx context.Context, dbConfig *DatabaseConfig) (*sql.DB, error) {
	sslMode := dbConfig.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	// Note: lib/pq handles password escaping internally, so we don't need URL encoding
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s search_path=public",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		sslMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// queryTable selects every row of the table in its natural order.
func queryTable(ctx context.Context, db *sql.DB, table string) (*tabular.Dataset, error) {
	// Table name is validated against identifier rules before we get here;
	// QuoteIdentifier guards against anything that slipped through
	query := fmt.Sprintf("SELECT * FROM public.%s", pq.QuoteIdentifier(table))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns for table %s: %w", table, err)
	}

	ds := tabular.NewDataset(columns)

	values := make([]interface{}, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row from table %s: %w", table, err)
		}

		rec := make(tabular.Record, len(columns))
		for i, col := range columns {
			rec[col] = renderSQLValue(values[i])
		}
		ds.Append(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table %s: %w", table, err)
	}

	return ds, nil
}

// renderSQLValue converts a driver value to its text form. lib/pq hands back
// a small set of Go types; anything else falls through to fmt.
func renderSQLValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", val)
	}
}
