package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"boampwatch/platform/apperr"
	"boampwatch/platform/config"
	"boampwatch/platform/logger"
)

// Client fetches date-bounded batches from the BOAMP records endpoint.
type Client struct {
	baseURL      string
	pageLimit    int
	descripteurs []string
	httpClient   *http.Client
	log          *logger.Logger
}

// New creates a feed client from configuration.
func New(cfg config.FeedConfig, log *logger.Logger) *Client {
	timeout := cfg.GetFeedTimeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.GetFeedBaseURL(), "/"),
		pageLimit:    cfg.GetFeedPageLimit(),
		descripteurs: cfg.GetDescripteurs(),
		httpClient:   &http.Client{Timeout: timeout},
		log:          log,
	}
}

// FetchDay retrieves every matching notice published on the given date
// (yyyy-MM-dd), optionally narrowed to one nature.
func (c *Client) FetchDay(ctx context.Context, date string, sel SelectOption) (*Batch, error) {
	where, err := buildWhere(date, c.descripteurs, sel)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBatch, "invalid scan date", err)
	}

	params := url.Values{}
	params.Set("select", "*")
	params.Set("where", where)
	params.Set("limit", strconv.Itoa(c.pageLimit))
	params.Set("offset", "0")
	params.Set("timezone", "UTC")
	params.Set("include_links", "false")
	params.Set("include_app_metas", "false")

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBatch, "build feed request", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.FeedError(c.baseURL, err)
		return nil, apperr.Wrap(apperr.KindBatch, "feed request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("feed status %d", resp.StatusCode)
		c.log.FeedError(c.baseURL, err)
		return nil, apperr.Wrap(apperr.KindBatch, "feed request rejected", err)
	}

	var batch Batch
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		c.log.FeedError(c.baseURL, err)
		return nil, apperr.Wrap(apperr.KindBatch, "decode feed response", err)
	}

	c.log.FeedRequest(c.baseURL, resp.StatusCode, float64(time.Since(start).Milliseconds()), len(batch.Results))
	return &batch, nil
}

// buildWhere assembles the ODS where clause: publication date match plus
// the IT descripteur filter (the catch-all "Informatique%" prefix and the
// configured exact labels), plus an optional nature filter.
func buildWhere(date string, descripteurs []string, sel SelectOption) (string, error) {
	parsed, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return "", err
	}
	year, month, day := parsed.Format("2006"), parsed.Format("01"), parsed.Format("02")

	var sb strings.Builder
	fmt.Fprintf(&sb, "date_format(dateparution, 'yyyy') = '%s'", year)
	fmt.Fprintf(&sb, " and date_format(dateparution, 'MM') = '%s'", month)
	fmt.Fprintf(&sb, " and date_format(dateparution, 'dd') = '%s'", day)

	sb.WriteString(" and (descripteur_libelle like 'Informatique%'")
	for _, word := range descripteurs {
		fmt.Fprintf(&sb, " or descripteur_libelle = '%s'", escapeODS(word))
	}
	sb.WriteString(")")

	switch sel {
	case SelectAttribution:
		sb.WriteString(" and nature='ATTRIBUTION'")
	case SelectAppelOffre:
		sb.WriteString(" and nature='APPEL_OFFRE'")
	case SelectRectificatif:
		sb.WriteString(" and nature='RECTIFICATIF'")
	}

	return sb.String(), nil
}

// escapeODS doubles single quotes for the ODS query language.
func escapeODS(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}
