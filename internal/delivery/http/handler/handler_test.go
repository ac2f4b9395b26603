package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/user/feed-service/internal/entity"
	"github.com/user/feed-service/internal/olx"
	"github.com/user/feed-service/internal/usecase"
)

type stubImporter struct {
	fileResult *entity.ImportResult
	fileErr    error
	urlResult  *entity.ImportResult
	urlErr     error
}

func (s *stubImporter) ImportFile(context.Context, string, []byte, bool, bool) (*entity.ImportResult, error) {
	return s.fileResult, s.fileErr
}

func (s *stubImporter) ImportURL(context.Context, string, string, string, bool, bool, bool) (*entity.ImportResult, error) {
	return s.urlResult, s.urlErr
}

type stubExporter struct {
	xmlDoc   string
	filename string
	err      error
}

func (s *stubExporter) ExportGeneric(context.Context, string) (string, string, error) {
	return s.xmlDoc, s.filename, s.err
}

func (s *stubExporter) ExportOlx(context.Context, string, bool) (string, string, error) {
	return s.xmlDoc, s.filename, s.err
}

type stubOlxManager struct {
	result  olx.Result
	meta    *entity.OlxListingMetadata
	err     error
	markErr error
}

func (s *stubOlxManager) Readiness(context.Context, int64) (olx.Result, error) {
	return s.result, s.err
}

func (s *stubOlxManager) GetMetadata(context.Context, int64) (*entity.OlxListingMetadata, error) {
	return s.meta, s.err
}

func (s *stubOlxManager) SaveMetadata(context.Context, *entity.OlxListingMetadata) (olx.Result, error) {
	return s.result, s.err
}

func (s *stubOlxManager) SetMarked(context.Context, string, int64, bool) error {
	return s.markErr
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func newTestHandler(imp usecase.Importer, exp usecase.Exporter, mgr usecase.OlxManager) *Handler {
	if imp == nil {
		imp = &stubImporter{}
	}
	if exp == nil {
		exp = &stubExporter{}
	}
	if mgr == nil {
		mgr = &stubOlxManager{}
	}
	return NewHandler(imp, exp, mgr, stubPinger{}, stubPinger{})
}

func TestHandleImportFileRequiresOwner(t *testing.T) {
	t.Parallel()

	h := newTestHandler(nil, nil, nil)
	rr := httptest.NewRecorder()
	h.HandleImportFile(rr, httptest.NewRequest(http.MethodPost, "/api/import/file", strings.NewReader("<Listings/>")))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestHandleImportFileSuccess(t *testing.T) {
	t.Parallel()

	imp := &stubImporter{fileResult: &entity.ImportResult{Fetched: 2, Created: 2}}
	h := newTestHandler(imp, nil, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/import/file?owner_id=o1", strings.NewReader("<Listings/>"))
	h.HandleImportFile(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var body struct {
		Fetched int      `json:"fetched"`
		Created int      `json:"created"`
		Errors  []string `json:"errors"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if body.Fetched != 2 || body.Created != 2 {
		t.Errorf("body = %+v, want fetched/created 2/2", body)
	}
	if body.Errors == nil {
		t.Error("errors should serialize as an empty array, not null")
	}
}

func TestHandleImportURLStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"guard conflict", usecase.ErrFeedRecentlyImported, http.StatusConflict},
		{"internal", errors.New("postgres down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&stubImporter{urlErr: tt.err}, nil, nil)
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/import/cnm",
				strings.NewReader(`{"url":"http://feeds.example.com/f.xml","user_id":"o1"}`))
			h.HandleImportCNM(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleImportURLRejectsBadInput(t *testing.T) {
	t.Parallel()

	h := newTestHandler(nil, nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"missing user", `{"url":"http://feeds.example.com/f.xml"}`},
		{"bad url", `{"url":"not a url","user_id":"o1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/import/vrsync", strings.NewReader(tt.body))
			h.HandleImportVRSync(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestHandleExportGenericAttachment(t *testing.T) {
	t.Parallel()

	exp := &stubExporter{xmlDoc: "<Listings/>", filename: "imoveis_2026-08-28.xml"}
	h := newTestHandler(nil, exp, nil)

	rr := httptest.NewRecorder()
	h.HandleExportGeneric(rr, httptest.NewRequest(http.MethodGet, "/api/export?owner_id=o1", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "imoveis_2026-08-28.xml") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestHandleOlxFeedPreviewInline(t *testing.T) {
	t.Parallel()

	exp := &stubExporter{xmlDoc: "<Listings/>", filename: "olx-export-b1-1.xml"}
	h := newTestHandler(nil, exp, nil)

	rr := httptest.NewRecorder()
	h.HandleOlxFeed(rr, httptest.NewRequest(http.MethodGet, "/api/feeds/olx?broker_id=b1&preview=true", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("preview Content-Type = %q, want text/plain", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != "" {
		t.Errorf("preview should not be an attachment, got %q", cd)
	}
}

func TestHandleMarkOlxStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ok", nil, http.StatusOK},
		{"quota", usecase.ErrOlxQuotaExceeded, http.StatusConflict},
		{"not owner", usecase.ErrNotOwner, http.StatusForbidden},
		{"not found", usecase.ErrPropertyNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(nil, nil, &stubOlxManager{markErr: tt.err})
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/olx/mark",
				strings.NewReader(`{"owner_id":"o1","property_id":1,"marked":true}`))
			h.HandleMarkOlx(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleOlxReadinessNotFound(t *testing.T) {
	t.Parallel()

	h := newTestHandler(nil, nil, &stubOlxManager{err: usecase.ErrPropertyNotFound})
	rr := httptest.NewRecorder()
	h.HandleOlxReadiness(rr, httptest.NewRequest(http.MethodGet, "/api/olx/readiness?property_id=5", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestHandleHealthCheck(t *testing.T) {
	t.Parallel()

	h := NewHandler(&stubImporter{}, &stubExporter{}, &stubOlxManager{}, stubPinger{}, stubPinger{err: errors.New("refused")})
	rr := httptest.NewRecorder()
	h.HandleHealthCheck(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if body["postgres"] != "healthy" || body["redis"] != "unhealthy" {
		t.Errorf("body = %v", body)
	}
}
