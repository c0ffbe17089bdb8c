package download

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/pgstools/pgmatch/internal/pgserr"
	"github.com/pgstools/pgmatch/internal/scorefile"
)

// DefaultBaseURL is the PGS Catalog REST API root.
const DefaultBaseURL = "https://www.pgscatalog.org/rest"

const (
	defaultRetries = 5
	defaultBackoff = 2 * time.Second
)

// HarmonizedFile points at one harmonized scoring file on the catalog FTP
// mirror.
type HarmonizedFile struct {
	Positions string `json:"positions"`
}

// ScoreMetadata is the subset of the catalog's score response the
// downloader needs.
type ScoreMetadata struct {
	ID                   string                    `json:"id"`
	Name                 string                    `json:"name"`
	TraitReported        string                    `json:"trait_reported"`
	VariantsNumber       int                       `json:"variants_number"`
	FTPScoringFile       string                    `json:"ftp_scoring_file"`
	FTPHarmonizedScoring map[string]HarmonizedFile `json:"ftp_harmonized_scoring_files"`
}

// FileURL resolves the download URL for the requested genome build.
// BuildUnknown selects the author-submitted file; harmonized builds must
// have a harmonized file available.
func (m *ScoreMetadata) FileURL(build scorefile.GenomeBuild) (string, error) {
	if build == scorefile.BuildUnknown {
		return m.FTPScoringFile, nil
	}
	hf, ok := m.FTPHarmonizedScoring[build.String()]
	if !ok || hf.Positions == "" {
		return "", &pgserr.Error{
			Kind:      pgserr.KindDownloadFailed,
			Accession: m.ID,
			Msg:       fmt.Sprintf("no harmonized scoring file for build %s", build),
		}
	}
	return hf.Positions, nil
}

// Client talks to the PGS Catalog REST API and FTP mirror.
type Client struct {
	baseURL string
	http    *http.Client
	retries int
	backoff time.Duration
	logger  *zap.Logger
}

// NewClient creates a catalog client with default retry behavior.
func NewClient() *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Minute},
		retries: defaultRetries,
		backoff: defaultBackoff,
		logger:  zap.NewNop(),
	}
}

// SetBaseURL overrides the API root. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// SetLogger sets the logger for retry and progress reporting.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

// SetRetries bounds the number of attempts per request.
func (c *Client) SetRetries(n int, backoff time.Duration) {
	c.retries = n
	c.backoff = backoff
}

// Scores resolves an accession to score metadata. Score accessions return
// one entry; publication and trait accessions expand to every associated
// score. The accession is validated before any request is made.
func (c *Client) Scores(ctx context.Context, accession string) ([]ScoreMetadata, error) {
	kind, err := ClassifyAccession(accession)
	if err != nil {
		return nil, err
	}

	switch kind {
	case AccessionScore:
		var meta ScoreMetadata
		path := c.baseURL + "/score/" + accession
		if err := c.getJSON(ctx, accession, path, &meta); err != nil {
			return nil, err
		}
		return []ScoreMetadata{meta}, nil
	case AccessionPublication:
		return c.search(ctx, accession, "pgp_ids", accession)
	default:
		return c.search(ctx, accession, "trait_id", accession)
	}
}

type searchPage struct {
	Next    string          `json:"next"`
	Results []ScoreMetadata `json:"results"`
}

// search pages through /score/search until the catalog reports no next
// page.
func (c *Client) search(ctx context.Context, accession, param, value string) ([]ScoreMetadata, error) {
	next := c.baseURL + "/score/search?" + param + "=" + url.QueryEscape(value)

	var all []ScoreMetadata
	for next != "" {
		var page searchPage
		if err := c.getJSON(ctx, accession, next, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		next = page.Next
	}

	if len(all) == 0 {
		return nil, &pgserr.Error{
			Kind:      pgserr.KindQueryInvalid,
			Accession: accession,
			Msg:       "catalog returned no scores for accession",
		}
	}
	return all, nil
}

// getJSON fetches a URL with bounded retry and decodes the response body.
// 4xx statuses are query errors and not retried; transport failures and
// 5xx statuses back off and retry.
func (c *Client) getJSON(ctx context.Context, accession, rawURL string, v any) error {
	body, err := c.get(ctx, accession, rawURL)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return &pgserr.Error{
			Kind:      pgserr.KindQueryInvalid,
			Accession: accession,
			Msg:       "decode catalog response",
			Err:       err,
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, accession, rawURL string) (io.ReadCloser, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(1<<(attempt-1))
			c.logger.Warn("retrying catalog request",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait),
				zap.Error(lastErr))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return resp.Body, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			resp.Body.Close()
			return nil, &pgserr.Error{
				Kind:      pgserr.KindQueryInvalid,
				Accession: accession,
				Msg:       fmt.Sprintf("catalog returned %s for %s", resp.Status, rawURL),
			}
		default:
			resp.Body.Close()
			lastErr = fmt.Errorf("catalog returned %s", resp.Status)
		}
	}

	return nil, &pgserr.Error{
		Kind:      pgserr.KindDownloadFailed,
		Accession: accession,
		Msg:       fmt.Sprintf("giving up on %s after %d attempts", rawURL, c.retries),
		Err:       lastErr,
	}
}
