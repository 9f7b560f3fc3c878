// Package registry retrieves filed accounts documents from the Companies
// House API.
//
// The document content endpoint redirects to a time-limited pre-signed
// storage URL. Registry credentials must never be sent to that storage
// origin, so the primary download path disables redirect following and
// re-requests the Location target unauthenticated.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// Companies House API origins.
	DefaultAPIBaseURL      = "https://api.companieshouse.gov.uk"
	DefaultDocumentBaseURL = "https://document-api.companieshouse.gov.uk"

	// Lookup calls are small JSON payloads; content downloads can be
	// multi-megabyte accounts documents.
	DefaultLookupTimeout   = 15 * time.Second
	DefaultDownloadTimeout = 30 * time.Second
)

// Config carries the client's endpoints and timeouts. Zero values fall back
// to the Companies House defaults.
type Config struct {
	APIBaseURL      string
	DocumentBaseURL string
	LookupTimeout   time.Duration
	DownloadTimeout time.Duration
}

// Client is the document retriever. It is immutable after construction and
// safe for concurrent use; no state is shared between requests.
type Client struct {
	apiBase  string
	docBase  string
	lookup   *http.Client // filing history and metadata calls
	download *http.Client // authenticated, auto-redirect content calls
	direct   *http.Client // authenticated, redirects disabled
	plain    *http.Client // unauthenticated storage fetch
}

// NewClient creates a retriever for the given registry endpoints.
func NewClient(cfg Config) *Client {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.DocumentBaseURL == "" {
		cfg.DocumentBaseURL = DefaultDocumentBaseURL
	}
	if cfg.LookupTimeout == 0 {
		cfg.LookupTimeout = DefaultLookupTimeout
	}
	if cfg.DownloadTimeout == 0 {
		cfg.DownloadTimeout = DefaultDownloadTimeout
	}

	return &Client{
		apiBase:  strings.TrimRight(cfg.APIBaseURL, "/"),
		docBase:  strings.TrimRight(cfg.DocumentBaseURL, "/"),
		lookup:   &http.Client{Timeout: cfg.LookupTimeout},
		download: &http.Client{Timeout: cfg.DownloadTimeout},
		direct: &http.Client{
			Timeout: cfg.DownloadTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		plain: &http.Client{Timeout: cfg.DownloadTimeout},
	}
}

// Retrieve locates the most recent accounts filing for a company and
// downloads its iXBRL markup. A nil error with Retrieval.PDFOnly set means
// the filing exists but has no parseable representation.
func (c *Client) Retrieve(ctx context.Context, companyNumber, apiKey string) (*Retrieval, error) {
	companyNumber = strings.ToUpper(strings.TrimSpace(companyNumber))

	filing, err := c.LatestAccountsFiling(ctx, companyNumber, apiKey)
	if err != nil {
		return nil, err
	}

	metaURL := filing.Links["document_metadata"]
	if metaURL == "" {
		return nil, &MissingMetadataLinkError{
			CompanyNumber: companyNumber,
			LinkKeys:      sortedKeys(filing.Links),
		}
	}
	// The registry returns the metadata reference relative to the
	// document-service origin.
	if strings.HasPrefix(metaURL, "/") {
		metaURL = c.docBase + metaURL
	}

	meta, err := c.DocumentMetadata(ctx, metaURL, apiKey)
	if err != nil {
		return nil, err
	}

	if _, ok := meta.Resources[MIMETypeIXBRL]; !ok {
		return &Retrieval{
			CompanyNumber:    companyNumber,
			FilingDate:       filing.Date,
			PDFOnly:          true,
			AvailableFormats: sortedKeys(meta.Resources),
		}, nil
	}

	documentURL := meta.Links["document"]
	if documentURL == "" {
		return nil, &NoDownloadURLError{LinkKeys: sortedKeys(meta.Links)}
	}

	markup, debug, err := c.downloadContent(ctx, documentURL, apiKey)
	if err != nil {
		return nil, err
	}

	return &Retrieval{
		CompanyNumber: companyNumber,
		FilingDate:    filing.Date,
		Markup:        markup,
		Debug:         debug,
	}, nil
}

// LatestAccountsFiling queries the filing-history endpoint filtered to the
// accounts category and selects the most recent entry.
func (c *Client) LatestAccountsFiling(ctx context.Context, companyNumber, apiKey string) (*Filing, error) {
	url := fmt.Sprintf("%s/company/%s/filing-history?category=accounts&items_per_page=10",
		c.apiBase, companyNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create filing history request: %w", err)
	}
	req.SetBasicAuth(apiKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.lookup.Do(req)
	if err != nil {
		return nil, fmt.Errorf("filing history request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &NoFilingError{CompanyNumber: companyNumber, Status: resp.StatusCode}
	}

	var history FilingHistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, fmt.Errorf("failed to parse filing history: %w", err)
	}
	if len(history.Items) == 0 {
		return nil, &NoFilingError{CompanyNumber: companyNumber}
	}

	return &history.Items[0], nil
}

// DocumentMetadata fetches the available-format map and download link for a
// filing's document.
func (c *Client) DocumentMetadata(ctx context.Context, metadataURL, apiKey string) (*DocumentMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata request: %w", err)
	}
	req.SetBasicAuth(apiKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.lookup.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &MetadataError{
			URL:    metadataURL,
			Status: resp.StatusCode,
			Body:   truncate(string(body), 200),
		}
	}

	var meta DocumentMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse document metadata: %w", err)
	}

	return &meta, nil
}

// downloadContent runs the fixed three-attempt download sequence:
//
//  1. Authenticated request with redirects disabled; on a redirect status the
//     Location target is fetched with a second, unauthenticated request so
//     registry credentials never reach the storage origin.
//  2. Authenticated auto-redirect request with an XHTML accept header, for
//     deployments whose storage backends ignore stray auth headers.
//  3. Same as 2 without the accept header.
//
// The first 200 response with a non-empty body wins. There are no retries
// beyond this sequence.
func (c *Client) downloadContent(ctx context.Context, documentURL, apiKey string) (string, DownloadDebug, error) {
	contentURL := documentURL + "/content"
	debug := DownloadDebug{ContentURL: contentURL}

	// Attempt 1: manual redirect follow, credentials stripped.
	status, headers, body, err := c.doGet(ctx, c.direct, contentURL, apiKey, MIMETypeIXBRL)
	if err == nil {
		debug.Try1Status = status
		if isRedirect(status) {
			redirectURL := headers.Get("Location")
			debug.RedirectURL = redirectURL
			if redirectURL != "" {
				storeStatus, _, storeBody, storeErr := c.doGet(ctx, c.plain, redirectURL, "", "")
				if storeErr == nil {
					debug.StoreStatus = storeStatus
					if storeStatus == http.StatusOK && len(storeBody) > 0 {
						return string(storeBody), debug, nil
					}
				}
			}
		} else if status == http.StatusOK && len(body) > 0 {
			return string(body), debug, nil
		}
	}

	// Attempt 2: auto-redirect with accept header.
	status, _, body, err = c.doGet(ctx, c.download, contentURL, apiKey, MIMETypeIXBRL)
	if err == nil {
		debug.Try2Status = status
		if status == http.StatusOK && len(body) > 0 {
			return string(body), debug, nil
		}
	}

	// Attempt 3: auto-redirect without accept header.
	status, _, body, err = c.doGet(ctx, c.download, contentURL, apiKey, "")
	if err == nil {
		debug.Try3Status = status
		if status == http.StatusOK && len(body) > 0 {
			return string(body), debug, nil
		}
	}

	return "", debug, &DownloadError{Debug: debug}
}

// doGet issues a single GET. An empty apiKey sends no credentials; an empty
// accept sends no Accept header.
func (c *Client) doGet(ctx context.Context, client *http.Client, url, apiKey, accept string) (int, http.Header, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, nil, err
	}
	if apiKey != "" {
		req.SetBasicAuth(apiKey, "")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, resp.Header, nil, err
	}

	return resp.StatusCode, resp.Header, body, nil
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
