// Package teams delivers composed notifications to Microsoft Teams incoming
// webhooks as connector cards. Award results go to the attribution channel,
// everything else to the market channel.
package teams

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"boampwatch/internal/compose"
	"boampwatch/internal/notice/domain"
	"boampwatch/platform/config"
	"boampwatch/platform/logger"
)

// connectorCard is the legacy MessageCard payload Teams incoming webhooks
// accept. The card markdown flag stays off so the HTML body renders as-is.
type connectorCard struct {
	Type       string `json:"@type"`
	Context    string `json:"@context"`
	ThemeColor string `json:"themeColor"`
	Title      string `json:"title"`
	Text       string `json:"text"`
	Markdown   bool   `json:"markdown"`
}

type Client struct {
	webhookMarche      string
	webhookAttribution string
	limiter            *rate.Limiter
	http               *http.Client
	log                *logger.Logger
}

func NewClient(cfg config.NotifierConfig, log *logger.Logger) *Client {
	perSecond := cfg.GetWebhookRatePerSecond()
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Client{
		webhookMarche:      cfg.GetWebhookMarche(),
		webhookAttribution: cfg.GetWebhookAttribution(),
		limiter:            rate.NewLimiter(rate.Limit(perSecond), 1),
		http:               &http.Client{Timeout: 15 * time.Second},
		log:                log,
	}
}

// Send posts one message to the channel matching its nature. The call blocks
// on the rate limiter, so bursts from a large batch are smoothed out.
func (c *Client) Send(ctx context.Context, msg compose.Message) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	card := connectorCard{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: themeColor(msg.Nature),
		Title:      msg.Title,
		Text:       msg.Body,
	}
	body, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("marshal teams card: %w", err)
	}

	url := c.webhookFor(msg.Nature)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.DeliveryError("teams", msg.NoticeID, err)
		return fmt.Errorf("teams request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("teams webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		c.log.DeliveryError("teams", msg.NoticeID, err)
		return err
	}

	c.log.Info("teams card sent", "notice_id", msg.NoticeID, "nature", string(msg.Nature))
	return nil
}

// webhookFor routes award results to the attribution channel when one is
// configured, and everything else to the market channel.
func (c *Client) webhookFor(nature domain.Nature) string {
	if nature == domain.NatureResult && c.webhookAttribution != "" {
		return c.webhookAttribution
	}
	return c.webhookMarche
}

func themeColor(nature domain.Nature) string {
	switch nature {
	case domain.NatureResult:
		return "FFD700"
	case domain.NatureAmendment:
		return "FFA500"
	default:
		return "2EB886"
	}
}
