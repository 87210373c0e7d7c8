package cmd

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eurekatools/integrity-reporter/cmd/diff"
)

func multipartRequest(t *testing.T, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("failed to write field %s: %v", name, err)
		}
	}
	for field, content := range files {
		part, err := writer.CreateFormFile(field, field+".csv")
		if err != nil {
			t.Fatalf("failed to create form file %s: %v", field, err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write form file %s: %v", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/compare", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandleCompareUpload(t *testing.T) {
	initLogger(false, "text")

	req := multipartRequest(t,
		map[string]string{"keys": "id"},
		map[string]string{
			"left":  "id,v\n1,a\n2,b\n",
			"right": "id,v\n2,B\n3,c\n",
		})
	rec := httptest.NewRecorder()

	handleCompareUpload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var report diff.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if report.OnlyLeftCount != 1 || report.OnlyRightCount != 1 {
		t.Errorf("presence counts = %d/%d, want 1/1", report.OnlyLeftCount, report.OnlyRightCount)
	}
	if report.CellDiffCount != 1 {
		t.Errorf("cell diff count = %d, want 1", report.CellDiffCount)
	}
}

func TestHandleCompareUploadXLSX(t *testing.T) {
	initLogger(false, "text")

	req := multipartRequest(t,
		map[string]string{"keys": "id", "format": "xlsx"},
		map[string]string{
			"left":  "id,v\n1,a\n",
			"right": "id,v\n1,a\n",
		})
	rec := httptest.NewRecorder()

	handleCompareUpload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	ct := rec.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("spreadsheet response is empty")
	}
}

func TestHandleCompareUploadRejectsGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/compare", nil)
	rec := httptest.NewRecorder()

	handleCompareUpload(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleCompareUploadMissingFile(t *testing.T) {
	initLogger(false, "text")

	req := multipartRequest(t,
		nil,
		map[string]string{"left": "id\n1\n"})
	rec := httptest.NewRecorder()

	handleCompareUpload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServeStatusData(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()

	serveStatusData(rec, req)

	var status StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if status.Version != Version {
		t.Errorf("version = %q, want %q", status.Version, Version)
	}
}
