// Package accounts exposes the retrieval-and-extraction pipeline over HTTP.
package accounts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"accounts_parser/pkg/core/ixbrl"
	"accounts_parser/pkg/core/registry"
	"accounts_parser/pkg/core/report"
	"accounts_parser/pkg/core/store"
)

// Machine-readable outcome statuses. The caller must be able to distinguish
// "nothing to extract" (pdf_only, parse_empty; success class) from pipeline
// failure (metadata_error, download_error).
const (
	StatusSuccess       = "success"
	StatusNoFiling      = "no_filing"
	StatusNoDocumentURL = "no_document_url"
	StatusMetadataError = "metadata_error"
	StatusPDFOnly       = "pdf_only"
	StatusNoDownloadURL = "no_download_url"
	StatusDownloadError = "download_error"
	StatusParseEmpty    = "parse_empty"

	// StatusError covers failures outside the retrieval taxonomy, such as a
	// transport error before any registry response was received.
	StatusError = "error"
)

// ParseRequest is the caller's input. The company number is normalized to
// uppercase; no further identifier validation is applied.
type ParseRequest struct {
	CompanyNumber string `json:"company_number" validate:"required"`
	APIKey        string `json:"api_key" validate:"required"`
	Debug         bool   `json:"debug"`
}

// ParseResponse is the response envelope for every outcome.
type ParseResponse struct {
	Status           string                  `json:"status"`
	Error            string                  `json:"error,omitempty"`
	CompanyNumber    string                  `json:"company_number,omitempty"`
	FilingDate       string                  `json:"filing_date,omitempty"`
	AvailableFormats []string                `json:"available_formats,omitempty"`
	FieldsExtracted  int                     `json:"fields_extracted,omitempty"`
	Record           *report.FlatRecord      `json:"record,omitempty"`
	RawFields        map[string]float64      `json:"raw_financial_data,omitempty"`
	BalanceSheetDate string                  `json:"balance_sheet_date,omitempty"`
	Debug            *registry.DownloadDebug `json:"download_debug,omitempty"`
}

// Handler runs the pipeline for parse requests.
type Handler struct {
	registry *registry.Client
	validate *validator.Validate
}

// NewHandler creates a handler backed by the given retriever.
func NewHandler(client *registry.Client) *Handler {
	return &Handler{
		registry: client,
		validate: validator.New(),
	}
}

// HandleParse handles POST /api/accounts/parse.
func (h *Handler) HandleParse(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, &ParseResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, &ParseResponse{Error: err.Error()})
		return
	}

	retrieval, err := h.registry.Retrieve(r.Context(), req.CompanyNumber, req.APIKey)
	if err != nil {
		h.writeRetrievalError(w, logger, err, req.Debug)
		return
	}

	if retrieval.PDFOnly {
		logger.Info().Str("company_number", retrieval.CompanyNumber).
			Strs("available_formats", retrieval.AvailableFormats).
			Msg("filing has no iXBRL representation")
		writeJSON(w, http.StatusOK, &ParseResponse{
			Status:           StatusPDFOnly,
			Error:            "document only available as PDF",
			CompanyNumber:    retrieval.CompanyNumber,
			FilingDate:       retrieval.FilingDate,
			AvailableFormats: retrieval.AvailableFormats,
		})
		return
	}

	record := ixbrl.Extract(retrieval.Markup, retrieval.FilingDate)
	if record.Empty() {
		writeJSON(w, http.StatusOK, &ParseResponse{
			Status:        StatusParseEmpty,
			Error:         "no data extracted",
			CompanyNumber: retrieval.CompanyNumber,
			FilingDate:    retrieval.FilingDate,
		})
		return
	}

	flat := report.Flatten(record, retrieval.CompanyNumber, retrieval.FilingDate)

	// Delivery is best effort; sink failures never fail the request.
	if store.Enabled() {
		if err := store.SaveRecord(r.Context(), flat); err != nil {
			logger.Error().Err(err).Str("company_number", retrieval.CompanyNumber).
				Msg("failed to deliver record to store")
		}
	}

	resp := &ParseResponse{
		Status:           StatusSuccess,
		CompanyNumber:    retrieval.CompanyNumber,
		FilingDate:       retrieval.FilingDate,
		FieldsExtracted:  len(record.Fields),
		Record:           flat,
		RawFields:        record.Fields,
		BalanceSheetDate: record.BalanceSheetDate,
	}
	if req.Debug {
		resp.Debug = &retrieval.Debug
	}

	logger.Info().Str("company_number", retrieval.CompanyNumber).
		Int("fields_extracted", len(record.Fields)).
		Msg("extraction complete")
	writeJSON(w, http.StatusOK, resp)
}

// writeRetrievalError maps the retrieval failure taxonomy onto HTTP statuses.
func (h *Handler) writeRetrievalError(w http.ResponseWriter, logger *zerolog.Logger, err error, debug bool) {
	var (
		noFiling    *registry.NoFilingError
		missingMeta *registry.MissingMetadataLinkError
		metaErr     *registry.MetadataError
		noURL       *registry.NoDownloadURLError
		downloadErr *registry.DownloadError
	)

	switch {
	case errors.As(err, &noFiling):
		writeJSON(w, http.StatusNotFound, &ParseResponse{Status: StatusNoFiling, Error: err.Error()})
	case errors.As(err, &missingMeta):
		writeJSON(w, http.StatusNotFound, &ParseResponse{Status: StatusNoDocumentURL, Error: err.Error()})
	case errors.As(err, &metaErr):
		writeJSON(w, http.StatusInternalServerError, &ParseResponse{Status: StatusMetadataError, Error: err.Error()})
	case errors.As(err, &noURL):
		writeJSON(w, http.StatusInternalServerError, &ParseResponse{Status: StatusNoDownloadURL, Error: err.Error()})
	case errors.As(err, &downloadErr):
		resp := &ParseResponse{Status: StatusDownloadError, Error: "failed to download iXBRL document"}
		if debug {
			resp.Debug = &downloadErr.Debug
		}
		writeJSON(w, http.StatusInternalServerError, resp)
	default:
		logger.Error().Err(err).Msg("retrieval failed")
		writeJSON(w, http.StatusInternalServerError, &ParseResponse{Status: StatusError, Error: err.Error()})
	}
}

// HandleHealth handles GET /healthz.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "accounts-parser",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
