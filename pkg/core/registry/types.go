package registry

import "sort"

// FilingHistoryResponse is the registry's filing-history envelope.
type FilingHistoryResponse struct {
	Items []Filing `json:"items"`
}

// Filing is one historical accounts submission. The registry orders items by
// recency, so index 0 of the filtered list is the latest accounts filing.
type Filing struct {
	Date        string            `json:"date"` // calendar date, "2006-01-02"
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Links       map[string]string `json:"links"`
}

// DocumentMetadata describes the representations available for one filing.
// Resources is keyed by MIME type.
type DocumentMetadata struct {
	Resources map[string]Resource `json:"resources"`
	Links     map[string]string   `json:"links"`
}

// Resource describes a single available representation.
type Resource struct {
	ContentLength int64 `json:"content_length"`
}

// MIMETypeIXBRL is the representation the extractor can process.
const MIMETypeIXBRL = "application/xhtml+xml"

// Retrieval is the outcome of a successful retrieve call. PDFOnly marks the
// success-class "nothing to extract" case: the filing exists but exposes no
// iXBRL representation.
type Retrieval struct {
	CompanyNumber    string
	FilingDate       string
	Markup           string
	PDFOnly          bool
	AvailableFormats []string
	Debug            DownloadDebug
}

// DownloadDebug accumulates per-attempt diagnostics across the download
// fallback sequence.
type DownloadDebug struct {
	ContentURL  string `json:"content_url"`
	Try1Status  int    `json:"try1_status,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
	StoreStatus int    `json:"store_status,omitempty"`
	Try2Status  int    `json:"try2_status,omitempty"`
	Try3Status  int    `json:"try3_status,omitempty"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
