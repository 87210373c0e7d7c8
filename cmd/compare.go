package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eurekatools/integrity-reporter/cmd/diff"
	"github.com/eurekatools/integrity-reporter/cmd/tabular"
)

func runCompare() {
	// Add panic recovery to catch any unexpected crashes
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n❌ PANIC: %v\n", r)
			os.Exit(1)
		}
	}()

	config := configFromViper()

	// Initialize logger
	initLogger(config.Debug, config.LogFormat)

	logger.Info("")
	logger.Info(fmt.Sprintf("🔍 Integrity Reporter v%s", Version))
	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	logger.Debug("Validating configuration...")
	if err := config.Validate(); err != nil {
		logger.Error(fmt.Sprintf("❌ Configuration error: %s", err.Error()))
		os.Exit(1)
	}
	logger.Debug("Configuration validated successfully")

	// Check for updates in background (non-blocking)
	updateCheckDone := make(chan struct{})
	go func() {
		defer close(updateCheckDone)
		result := checkForUpdates(context.Background(), Version)
		versionCheckResult = &result

		if result.UpdateAvailable {
			logger.Info("")
			logger.Info(fmt.Sprintf("💡 %s", formatUpdateMessage(result)))
		} else if result.Error != nil && config.Debug {
			logger.Debug(fmt.Sprintf("Version check failed: %v", result.Error))
		}
	}()

	// Give version check a short time to complete, but don't block startup
	select {
	case <-updateCheckDone:
	case <-time.After(2 * time.Second):
		logger.Debug("Version check taking longer than expected, continuing...")
	}

	// Use the signal context created in main() before Cobra initialization
	ctx := signalContext
	if ctx == nil {
		// Fallback if SetSignalContext wasn't called (shouldn't happen)
		logger.Warn("Signal context not set, creating fallback...")
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
	}

	report, err := runComparison(ctx, config)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("")
			logger.Info("⚠️  Comparison cancelled by user")
			os.Exit(130)
		}
		logger.Error(fmt.Sprintf("❌ Comparison failed: %s", err.Error()))
		os.Exit(1)
	}

	if report.Identical() {
		logger.Info("")
		logger.Info("✅ Datasets are identical")
	} else {
		logger.Info("")
		logger.Info(fmt.Sprintf("⚠️  Differences found: %d column(s) drifted, %d row(s) only left, %d row(s) only right, %d cell diff(s)",
			len(report.MissingColumnsInRight)+len(report.NewColumnsInRight),
			report.OnlyLeftCount, report.OnlyRightCount, report.CellDiffCount))
		defer os.Exit(2)
	}
}

// runComparison loads both sides, diffs them and emits every configured
// output. Shared between the CLI path and the progress UI.
func runComparison(ctx context.Context, config *Config) (*diff.Report, error) {
	tracker := newPhaseTracker(config)

	tracker.Start(phaseLoadLeft)
	left, err := loadSource(ctx, &config.Left, config)
	if err != nil {
		return nil, fmt.Errorf("loading left source: %w", err)
	}
	tracker.Done(phaseLoadLeft, left.RowCount())
	logger.Info(fmt.Sprintf("📥 Left: %d rows, %d columns (%s)", left.RowCount(), len(left.Columns), config.Left.Path+config.Left.Table))

	tracker.Start(phaseLoadRight)
	right, err := loadSource(ctx, &config.Right, config)
	if err != nil {
		return nil, fmt.Errorf("loading right source: %w", err)
	}
	tracker.Done(phaseLoadRight, right.RowCount())
	logger.Info(fmt.Sprintf("📥 Right: %d rows, %d columns (%s)", right.RowCount(), len(right.Columns), config.Right.Path+config.Right.Table))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracker.Start(phaseCompare)
	opts := diff.Options{
		StrictDecimal:   config.Compare.StrictDecimal,
		CaseInsensitive: config.Compare.CaseInsensitive,
	}
	report := diff.Compare(left, right, config.Compare.KeyColumns, opts)
	tracker.Done(phaseCompare, report.CellDiffCount)

	if report.HashKeyed && config.Compare.KeyColumns != "" {
		logger.Warn(fmt.Sprintf("⚠️  Key columns '%s' not present on both sides, falling back to full-row hashing", config.Compare.KeyColumns))
	}

	tracker.Start(phaseOutput)
	tracker.Done(phaseOutput, 0)
	// The tracker owns the terminal while running; shut it down before the
	// report itself is written to stdout
	tracker.Finish()

	if err := emitOutputs(report, config); err != nil {
		return nil, err
	}

	return report, nil
}

// emitOutputs renders the report in the configured format and writes any
// requested spreadsheet or table exports.
func emitOutputs(report *diff.Report, config *Config) error {
	switch config.Output.Format {
	case "json":
		if err := renderJSON(report, config.Output.File); err != nil {
			return fmt.Errorf("writing JSON report: %w", err)
		}
	default:
		renderText(report, config.Compare.SampleRows)
	}

	if config.Output.XLSX != "" {
		if err := exportXLSX(report, config.Output.XLSX); err != nil {
			return fmt.Errorf("writing spreadsheet: %w", err)
		}
		logger.Info(fmt.Sprintf("📊 Spreadsheet written to %s", config.Output.XLSX))
	}

	if config.Output.ExportTables != "" {
		if err := exportTableDumps(report, &config.Output); err != nil {
			return fmt.Errorf("exporting tables: %w", err)
		}
		logger.Info(fmt.Sprintf("📁 Difference tables written to %s", config.Output.ExportTables))
	}

	return nil
}

// loadSource reads one side into memory, applying format detection,
// decompression and the trailing-blank-row policy.
func loadSource(ctx context.Context, source *SourceConfig, config *Config) (*tabular.Dataset, error) {
	var ds *tabular.Dataset
	var err error

	switch source.Type {
	case "db":
		ds, err = loadDatabaseTable(ctx, source)
	case "s3":
		ds, err = loadS3Object(ctx, source)
	default:
		ds, err = loadFile(source)
	}
	if err != nil {
		return nil, err
	}

	if config.Compare.DropBlankRows {
		dropped := ds.DropTrailingBlankRows()
		if dropped > 0 {
			logger.Debug(fmt.Sprintf("Dropped %d trailing blank row(s)", dropped))
		}
	}

	return ds, nil
}
