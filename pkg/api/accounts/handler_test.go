package accounts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accounts_parser/pkg/core/registry"
)

// fakeBackend stands in for both registry origins. The markup it serves tags
// turnover of 1,000,000 and operating profit of 200,000.
func fakeBackend(t *testing.T, markup string, filingItems string) *registry.Client {
	t.Helper()

	docMux := http.NewServeMux()
	docSrv := httptest.NewServer(docMux)

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/company/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"items": %s}`, filingItems)
	})
	apiSrv := httptest.NewServer(apiMux)

	docMux.HandleFunc("/document/doc1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"resources": {"application/xhtml+xml": {"content_length": 100}},
			"links": {"document": %q}
		}`, docSrv.URL+"/document/doc1")
	})
	docMux.HandleFunc("/document/doc1/content", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, markup)
	})

	t.Cleanup(func() {
		apiSrv.Close()
		docSrv.Close()
	})

	return registry.NewClient(registry.Config{
		APIBaseURL:      apiSrv.URL,
		DocumentBaseURL: docSrv.URL,
	})
}

const filingWithMetadata = `[{"date": "2024-03-31", "category": "accounts",
	"links": {"document_metadata": "/document/doc1"}}]`

const sampleMarkup = `<html><body>
	<ix:nonFraction name="uk-gaap:Turnover" contextRef="cy-2024-03-31">1,000,000</ix:nonFraction>
	<ix:nonFraction name="uk-gaap:OperatingProfit" contextRef="cy-2024-03-31">200,000</ix:nonFraction>
</body></html>`

func doParse(t *testing.T, h *Handler, body any) (*httptest.ResponseRecorder, *ParseResponse) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/accounts/parse", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.HandleParse(rec, req)

	var resp ParseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, &resp
}

func TestHandleParseSuccess(t *testing.T) {
	client := fakeBackend(t, sampleMarkup, filingWithMetadata)
	h := NewHandler(client)

	rec, resp := doParse(t, h, ParseRequest{CompanyNumber: "01234567", APIKey: "key"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, "01234567", resp.CompanyNumber)
	assert.Equal(t, "2024-03-31", resp.FilingDate)
	assert.Equal(t, "2024-03-31", resp.BalanceSheetDate)

	require.NotNil(t, resp.Record)
	require.NotNil(t, resp.Record.Revenue)
	assert.Equal(t, float64(1000000), *resp.Record.Revenue)
	require.NotNil(t, resp.Record.OperatingMarginPct)
	assert.Equal(t, 20.0, *resp.Record.OperatingMarginPct)

	assert.Equal(t, float64(200000), resp.RawFields["operating_profit"])
	assert.Nil(t, resp.Debug, "diagnostics only on request")
}

func TestHandleParseDebugEchoesDiagnostics(t *testing.T) {
	client := fakeBackend(t, sampleMarkup, filingWithMetadata)
	h := NewHandler(client)

	_, resp := doParse(t, h, ParseRequest{CompanyNumber: "01234567", APIKey: "key", Debug: true})

	require.NotNil(t, resp.Debug)
	assert.Contains(t, resp.Debug.ContentURL, "/document/doc1/content")
}

func TestHandleParseNoFiling(t *testing.T) {
	client := fakeBackend(t, sampleMarkup, `[]`)
	h := NewHandler(client)

	rec, resp := doParse(t, h, ParseRequest{CompanyNumber: "01234567", APIKey: "key"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, StatusNoFiling, resp.Status)
}

func TestHandleParseEmptyExtraction(t *testing.T) {
	// Parseable document with no recognizable tags and no filing date.
	client := fakeBackend(t, "<html><body><p>narrative only</p></body></html>",
		`[{"date": "", "category": "accounts", "links": {"document_metadata": "/document/doc1"}}]`)
	h := NewHandler(client)

	rec, resp := doParse(t, h, ParseRequest{CompanyNumber: "01234567", APIKey: "key"})

	assert.Equal(t, http.StatusOK, rec.Code, "no data extracted is success-class")
	assert.Equal(t, StatusParseEmpty, resp.Status)
}

func TestHandleParseLookupTransportError(t *testing.T) {
	// Point the client at an origin that refuses connections: the filing
	// lookup fails before any registry response, which is not a download
	// failure and must not be reported as one.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := registry.NewClient(registry.Config{
		APIBaseURL:      srv.URL,
		DocumentBaseURL: srv.URL,
	})
	h := NewHandler(client)

	rec, resp := doParse(t, h, ParseRequest{CompanyNumber: "01234567", APIKey: "key"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, StatusError, resp.Status)
	assert.NotEqual(t, StatusDownloadError, resp.Status)
}

func TestHandleParseValidation(t *testing.T) {
	h := NewHandler(registry.NewClient(registry.Config{}))

	tests := []struct {
		name string
		body ParseRequest
	}{
		{"missing company number", ParseRequest{APIKey: "key"}},
		{"missing api key", ParseRequest{CompanyNumber: "01234567"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doParse(t, h, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleParseInvalidBody(t *testing.T) {
	h := NewHandler(registry.NewClient(registry.Config{}))

	req := httptest.NewRequest(http.MethodPost, "/api/accounts/parse", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.HandleParse(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	HandleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}
