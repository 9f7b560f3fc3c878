package registry

import "fmt"

// The retrieval failure taxonomy. Each failure is terminal for the request
// and carries enough context to distinguish registry-side absence of data
// from pipeline malfunction. PDF-only filings and empty extractions are not
// errors; they are reported as success-class outcomes by the caller.

// NoFilingError means the filing-history lookup returned no accounts filings,
// or the call itself failed.
type NoFilingError struct {
	CompanyNumber string
	Status        int // HTTP status of the lookup, 0 if the list was simply empty
}

func (e *NoFilingError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("filing history lookup for %s returned HTTP %d", e.CompanyNumber, e.Status)
	}
	return fmt.Sprintf("no accounts filings found for %s", e.CompanyNumber)
}

// MissingMetadataLinkError means the selected filing record carries no
// document_metadata reference.
type MissingMetadataLinkError struct {
	CompanyNumber string
	LinkKeys      []string
}

func (e *MissingMetadataLinkError) Error() string {
	return fmt.Sprintf("filing for %s has no document_metadata link (links: %v)", e.CompanyNumber, e.LinkKeys)
}

// MetadataError means the document metadata fetch failed.
type MetadataError struct {
	URL    string
	Status int
	Body   string // truncated response body for diagnosis
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("document metadata fetch returned HTTP %d for %s", e.Status, e.URL)
}

// NoDownloadURLError means the metadata exposed an iXBRL resource but no
// content-download link.
type NoDownloadURLError struct {
	LinkKeys []string
}

func (e *NoDownloadURLError) Error() string {
	return fmt.Sprintf("document metadata has no download link (links: %v)", e.LinkKeys)
}

// DownloadError means all three download attempts were exhausted without a
// 200 response carrying a non-empty body.
type DownloadError struct {
	Debug DownloadDebug
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("content download failed after all attempts (statuses: %d/%d/%d)",
		e.Debug.Try1Status, e.Debug.Try2Status, e.Debug.Try3Status)
}
