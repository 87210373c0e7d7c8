package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/viper"

	"github.com/eurekatools/integrity-reporter/cmd/compressors"
	"github.com/eurekatools/integrity-reporter/cmd/diff"
	"github.com/eurekatools/integrity-reporter/cmd/tabular"
)

const maxUploadBytes = 256 << 20 // 256 MiB across both files

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(_ *http.Request) bool {
			return true // Allow all origins for local development
		},
	}

	// Log streaming clients
	logClients   = make(map[*websocket.Conn]*clientWrapper)
	logClientsMu sync.RWMutex
	logBroadcast chan LogMessage

	// Ensure background goroutines are started only once
	startOnce sync.Once
)

// clientWrapper wraps a websocket connection with a write mutex to ensure thread-safe writes
type clientWrapper struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// writeJSON safely writes JSON to the websocket connection with mutex protection
func (cw *clientWrapper) writeJSON(v interface{}) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.conn.WriteJSON(v)
}

type LogMessage struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

type StatusResponse struct {
	Version         string `json:"version"`
	UpdateAvailable bool   `json:"updateAvailable"`
	LatestVersion   string `json:"latestVersion,omitempty"`
	ReleaseURL      string `json:"releaseUrl,omitempty"`
}

// startBackgroundServices ensures the log broadcast manager is started only once
func startBackgroundServices() {
	startOnce.Do(func() {
		logBroadcast = make(chan LogMessage, 1000)
		go logBroadcastManager()
	})
}

// logBroadcastManager sends log messages to all connected log clients
func logBroadcastManager() {
	for {
		logMsg := <-logBroadcast
		logClientsMu.RLock()
		var failedClients []*websocket.Conn
		for conn, wrapper := range logClients {
			if err := wrapper.writeJSON(logMsg); err != nil {
				failedClients = append(failedClients, conn)
			}
		}
		logClientsMu.RUnlock()

		// Clean up failed clients
		if len(failedClients) > 0 {
			logClientsMu.Lock()
			for _, conn := range failedClients {
				if wrapper, exists := logClients[conn]; exists {
					wrapper.conn.Close()
					delete(logClients, conn)
				}
			}
			logClientsMu.Unlock()
		}
	}
}

// handleLogsWebSocket handles WebSocket connections for log streaming
func handleLogsWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Logs WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	logClientsMu.Lock()
	logClients[conn] = &clientWrapper{conn: conn}
	logClientsMu.Unlock()

	// Confirm the stream works once the client is registered
	go func() {
		time.Sleep(100 * time.Millisecond)
		if logBroadcast != nil {
			testMsg := LogMessage{
				Timestamp: time.Now().Format("2006-01-02 15:04:05"),
				Level:     "INFO",
				Message:   "Log streaming connected successfully",
			}
			select {
			case logBroadcast <- testMsg:
			default:
			}
		}
	}()

	// Clean up on disconnect
	defer func() {
		logClientsMu.Lock()
		delete(logClients, conn)
		logClientsMu.Unlock()
	}()

	// Keep connection alive
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Logs WebSocket error: %v", err)
			}
			break
		}
	}
}

func runServe() {
	// logBroadcast must exist before initLogger so the broadcast handler
	// can pick it up
	startBackgroundServices()

	if logger == nil {
		initLogger(viper.GetBool("debug"), viper.GetString("log_format"))
	}

	http.HandleFunc("/", serveComparePage)
	http.HandleFunc("/api/compare", handleCompareUpload)
	http.HandleFunc("/api/status", serveStatusData)
	http.HandleFunc("/ws/logs", handleLogsWebSocket)

	port := viper.GetInt("serve_port")
	addr := fmt.Sprintf(":%d", port)

	logger.Info("")
	logger.Info(fmt.Sprintf("🔍 Integrity Reporter v%s", Version))
	logger.Info(fmt.Sprintf("📊 Starting web server on http://localhost%s", addr))
	fmt.Fprintln(os.Stderr, infoStyle.Render("🌐 Open your browser to compare datasets"))
	fmt.Fprintln(os.Stderr, infoStyle.Render("⌨️  Press Ctrl+C to stop the server"))

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
	}
	if err := server.ListenAndServe(); err != nil {
		logger.Error(fmt.Sprintf("❌ Server failed: %s", err.Error()))
	}
}

func serveComparePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(comparePageHTML))
}

func serveStatusData(w http.ResponseWriter, _ *http.Request) {
	// Enable CORS for local development
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	response := StatusResponse{
		Version: Version,
	}
	if versionCheckResult != nil {
		response.UpdateAvailable = versionCheckResult.UpdateAvailable
		response.LatestVersion = versionCheckResult.LatestVersion
		response.ReleaseURL = versionCheckResult.ReleaseURL
	}

	_ = json.NewEncoder(w).Encode(response)
}

// handleCompareUpload compares two uploaded files. The response is the JSON
// report, or the spreadsheet when format=xlsx is requested.
func handleCompareUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("failed to parse upload: %v", err), http.StatusBadRequest)
		return
	}

	opts := diff.Options{
		StrictDecimal:   r.FormValue("strict_decimal") == "true",
		CaseInsensitive: r.FormValue("case_insensitive") == "true",
	}
	keys := r.FormValue("keys")
	if keys == "" {
		keys = viper.GetString("key_columns")
	}
	dropBlank := r.FormValue("drop_blank_rows") == "true"

	left, leftName, err := readUpload(r, "left", dropBlank)
	if err != nil {
		http.Error(w, fmt.Sprintf("left file: %v", err), http.StatusBadRequest)
		return
	}
	right, rightName, err := readUpload(r, "right", dropBlank)
	if err != nil {
		http.Error(w, fmt.Sprintf("right file: %v", err), http.StatusBadRequest)
		return
	}

	logger.Info(fmt.Sprintf("🔍 Comparing %s (%d rows) against %s (%d rows)",
		leftName, left.RowCount(), rightName, right.RowCount()))

	report := diff.Compare(left, right, keys, opts)

	logger.Info(fmt.Sprintf("📋 Result: %d only left, %d only right, %d cell diff(s)",
		report.OnlyLeftCount, report.OnlyRightCount, report.CellDiffCount))

	if r.FormValue("format") == "xlsx" {
		workbook, err := buildWorkbook(report)
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to build spreadsheet: %v", err), http.StatusInternalServerError)
			return
		}
		defer workbook.Close()

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="integrity-report.xlsx"`)
		if err := workbook.Write(w); err != nil {
			log.Printf("failed to stream spreadsheet: %v", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(report)
}

// readUpload decodes one uploaded form file into a dataset. Format and
// compression come from the uploaded filename.
func readUpload(r *http.Request, field string, dropBlank bool) (*tabular.Dataset, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("missing upload: %w", err)
	}
	defer file.Close()

	ds, err := decodeUpload(file, header.Filename)
	if err != nil {
		return nil, "", err
	}
	if dropBlank {
		ds.DropTrailingBlankRows()
	}
	return ds, header.Filename, nil
}

func decodeUpload(file multipart.File, filename string) (*tabular.Dataset, error) {
	format, compression, err := tabular.DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	compressor, err := compressors.GetCompressor(compression)
	if err != nil {
		return nil, err
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

	return reader.ReadAll()
}
