// Package cbioportal provides a caching client for the cBioPortal REST API.
//
// Every request is memoized through a fetchcache.Store keyed by a
// fingerprint of the endpoint, parameters, and requested gene set, so
// repeated runs over the same studies cost one network round-trip per unique
// request. Transient failures are retried with bounded exponential backoff;
// schema errors are surfaced immediately.
package cbioportal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/oncodel/codel/internal/fetchcache"
	"github.com/oncodel/codel/internal/genome"
)

// DefaultBaseURL is the public cBioPortal API.
const DefaultBaseURL = "https://www.cbioportal.org/api"

// defaultGeneBatchSize bounds how many Entrez IDs go into one copy-number
// fetch. The API accepts larger bodies but responses get unwieldy.
const defaultGeneBatchSize = 500

// Client talks to a cBioPortal-compatible API through a response cache.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	cache         *fetchcache.Store
	logger        *zap.Logger
	geneBatchSize int
	maxRetries    uint64
	newBackOff    func() backoff.BackOff
}

// NewClient creates a client against baseURL with responses memoized in
// cache. The cache store is required; callers that want a cold run flush
// the store instead of bypassing it.
func NewClient(baseURL string, cache *fetchcache.Store) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:         cache,
		logger:        zap.NewNop(),
		geneBatchSize: defaultGeneBatchSize,
		maxRetries:    3,
	}
	c.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries)
	}
	return c
}

// SetLogger sets the logger for retry and cache-miss messages.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Studies returns all cancer studies.
func (c *Client) Studies(ctx context.Context) ([]Study, error) {
	var studies []Study
	if err := c.getJSON(ctx, "studies", nil, &studies); err != nil {
		return nil, err
	}
	return studies, nil
}

// MolecularProfiles returns the molecular profiles of a study.
func (c *Client) MolecularProfiles(ctx context.Context, studyID string) ([]MolecularProfile, error) {
	endpoint := fmt.Sprintf("studies/%s/molecular-profiles", studyID)
	var profiles []MolecularProfile
	if err := c.getJSON(ctx, endpoint, nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// SampleLists returns the sample lists of a study.
func (c *Client) SampleLists(ctx context.Context, studyID string) ([]SampleList, error) {
	endpoint := fmt.Sprintf("studies/%s/sample-lists", studyID)
	var lists []SampleList
	if err := c.getJSON(ctx, endpoint, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// ChromosomeGenes returns all genes on a chromosome with their genomic
// coordinates, deduplicated by Entrez ID and ordered by start position.
// Genes with unknown coordinates (start 0) sort last.
func (c *Client) ChromosomeGenes(ctx context.Context, genomeBuild, chrom string) ([]genome.Info, error) {
	endpoint := fmt.Sprintf("reference-genome-genes/%s", genomeBuild)
	var raw []referenceGene
	if err := c.getJSON(ctx, endpoint, nil, &raw); err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var infos []genome.Info
	for _, g := range raw {
		if g.Chromosome != chrom || g.EntrezGeneID == 0 || g.HugoGeneSymbol == "" {
			continue
		}
		if seen[g.EntrezGeneID] {
			continue
		}
		seen[g.EntrezGeneID] = true
		infos = append(infos, genome.Info{
			Gene:       genome.Gene{Symbol: g.HugoGeneSymbol, EntrezID: g.EntrezGeneID},
			Chromosome: g.Chromosome,
			Cytoband:   g.Cytoband,
			Start:      g.Start,
			End:        g.End,
		})
	}

	sort.SliceStable(infos, func(i, j int) bool {
		a, b := infos[i], infos[j]
		if a.HasCoordinates() != b.HasCoordinates() {
			return a.HasCoordinates()
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Gene.Less(b.Gene)
	})
	return infos, nil
}

// DiscreteCopyNumber fetches discrete copy-number calls for a gene set,
// splitting large sets into batches transparently. Each batch is cached
// under its own gene-set fingerprint.
func (c *Client) DiscreteCopyNumber(ctx context.Context, profileID, sampleListID string, entrezIDs []int64) ([]CopyNumberCall, error) {
	endpoint := fmt.Sprintf("molecular-profiles/%s/discrete-copy-number/fetch", profileID)
	params := map[string]string{"sampleListId": sampleListID}

	var calls []CopyNumberCall
	for start := 0; start < len(entrezIDs); start += c.geneBatchSize {
		end := min(start+c.geneBatchSize, len(entrezIDs))
		batch := entrezIDs[start:end]
		c.logger.Debug("copy-number batch",
			zap.String("profile", profileID),
			zap.String("genes", formatIDs(batch)))

		body := map[string]any{
			"sampleListId":  sampleListID,
			"entrezGeneIds": batch,
		}
		var batchCalls []CopyNumberCall
		if err := c.postJSON(ctx, endpoint, params, batch, body, &batchCalls); err != nil {
			return nil, err
		}
		calls = append(calls, batchCalls...)
	}
	return calls, nil
}

// getJSON resolves a GET request through the cache.
func (c *Client) getJSON(ctx context.Context, endpoint string, params map[string]string, v any) error {
	key := fetchcache.Key(endpoint, params, nil)
	return c.resolve(ctx, key, endpoint, params, nil, v)
}

// postJSON resolves a POST request through the cache. entrezIDs participate
// in the cache key even though they also appear in the body.
func (c *Client) postJSON(ctx context.Context, endpoint string, params map[string]string, entrezIDs []int64, body any, v any) error {
	key := fetchcache.Key(endpoint, params, entrezIDs)
	return c.resolve(ctx, key, endpoint, params, body, v)
}

func (c *Client) resolve(ctx context.Context, key, endpoint string, params map[string]string, body any, v any) error {
	if data, ok, err := c.cache.Get(key); err != nil {
		return err
	} else if ok {
		if err := json.Unmarshal(data, v); err != nil {
			return &MalformedResponseError{Endpoint: endpoint, Err: fmt.Errorf("cached entry: %w", err)}
		}
		return nil
	}

	c.logger.Debug("cache miss", zap.String("endpoint", endpoint))

	data, err := c.request(ctx, endpoint, params, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &MalformedResponseError{Endpoint: endpoint, Err: err}
	}
	if err := c.cache.Put(key, data); err != nil {
		return err
	}
	return nil
}

// request performs one HTTP request with retry on transient failures.
func (c *Client) request(ctx context.Context, endpoint string, params map[string]string, body any) ([]byte, error) {
	op := func() ([]byte, error) {
		data, err := c.doOnce(ctx, endpoint, params, body)
		if err != nil && !IsTransient(err) {
			return nil, backoff.Permanent(err)
		}
		if err != nil {
			c.logger.Warn("retrying fetch",
				zap.String("endpoint", endpoint),
				zap.Error(err))
		}
		return data, err
	}
	data, err := backoff.RetryWithData(op, backoff.WithContext(c.newBackOff(), ctx))
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) doOnce(ctx context.Context, endpoint string, params map[string]string, body any) ([]byte, error) {
	url := c.baseURL + "/" + endpoint
	sep := "?"
	for name, value := range params {
		url += sep + name + "=" + value
		sep = "&"
	}

	var req *http.Request
	var err error
	if body == nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	} else {
		var payload []byte
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &TransientError{Err: fmt.Errorf("%s returned %s", endpoint, resp.Status)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &MalformedResponseError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	return data, nil
}

// formatIDs renders Entrez IDs for logging.
func formatIDs(ids []int64) string {
	if len(ids) <= 3 {
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.FormatInt(id, 10)
		}
		return fmt.Sprintf("%v", parts)
	}
	return fmt.Sprintf("%d genes", len(ids))
}
