package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/Dosada05/swisscut/models"
)

const (
	DefaultCardsURL    = "https://netrunnerdb.com/api/2.0/public/cards"
	DefaultV3CardsURL  = "https://api.netrunnerdb.com/api/v3/public/cards"
	DefaultLegalFormat = "standard_30"

	identityType = "identity"
)

// Fetcher loads fresh catalog data from the upstream source.
type Fetcher interface {
	FetchIdentities(ctx context.Context) ([]Identity, error)
	FetchCards(ctx context.Context) ([]Card, error)
}

type ClientConfig struct {
	CardsURL          string
	V3CardsURL        string
	LegalFormat       string
	RequestsPerMinute int
	Timeout           time.Duration
}

// Client talks to the NetrunnerDB public API with a token bucket limiter.
type Client struct {
	httpClient  *http.Client
	cardsURL    string
	v3CardsURL  string
	legalFormat string
	limiter     *rate.Limiter
	logger      *slog.Logger
}

var _ Fetcher = (*Client)(nil)

func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CardsURL == "" {
		cfg.CardsURL = DefaultCardsURL
	}
	if cfg.V3CardsURL == "" {
		cfg.V3CardsURL = DefaultV3CardsURL
	}
	if cfg.LegalFormat == "" {
		cfg.LegalFormat = DefaultLegalFormat
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		cardsURL:    cfg.CardsURL,
		v3CardsURL:  cfg.V3CardsURL,
		legalFormat: cfg.LegalFormat,
		limiter:     rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		logger:      logger,
	}
}

type v2Card struct {
	Title         string `json:"title"`
	StrippedTitle string `json:"stripped_title"`
	SideCode      string `json:"side_code"`
	FactionCode   string `json:"faction_code"`
	TypeCode      string `json:"type_code"`
	FactionCost   int    `json:"faction_cost"`
}

type v2Response struct {
	Data []v2Card `json:"data"`
}

type v3Response struct {
	Data []struct {
		Attributes struct {
			Title string `json:"title"`
		} `json:"attributes"`
	} `json:"data"`
}

// FetchIdentities returns every identity with its legality in the configured
// snapshot format.
func (c *Client) FetchIdentities(ctx context.Context) ([]Identity, error) {
	cards, err := c.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	legal, err := c.fetchLegalIdentities(ctx)
	if err != nil {
		return nil, err
	}

	var ids []Identity
	for _, card := range cards {
		if card.TypeCode != identityType {
			continue
		}
		ids = append(ids, Identity{
			Name:    straightenQuotes(card.StrippedTitle),
			Side:    models.Side(card.SideCode),
			Faction: card.FactionCode,
			Legal:   legal[card.StrippedTitle] || legal[card.Title],
		})
	}
	c.logger.Info("fetched identities", slog.Int("count", len(ids)), slog.Int("legal", len(legal)))
	return ids, nil
}

// FetchCards returns every non-identity card.
func (c *Client) FetchCards(ctx context.Context) ([]Card, error) {
	all, err := c.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	var cards []Card
	for _, card := range all {
		if card.TypeCode == identityType {
			continue
		}
		cards = append(cards, Card{
			Title:         card.Title,
			Side:          models.Side(card.SideCode),
			Faction:       card.FactionCode,
			Type:          card.TypeCode,
			Influence:     card.FactionCost,
			StrippedTitle: card.StrippedTitle,
		})
	}
	c.logger.Info("fetched cards", slog.Int("count", len(cards)))
	return cards, nil
}

func (c *Client) fetchAll(ctx context.Context) ([]v2Card, error) {
	var resp v2Response
	if err := c.get(ctx, c.cardsURL, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) fetchLegalIdentities(ctx context.Context) (map[string]bool, error) {
	params := url.Values{}
	params.Set("filter[search]", fmt.Sprintf("snapshot:%s t:runner_identity|corp_identity", c.legalFormat))
	params.Set("fields[cards]", "title")

	var resp v3Response
	if err := c.get(ctx, c.v3CardsURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	legal := make(map[string]bool, len(resp.Data))
	for _, card := range resp.Data {
		legal[card.Attributes.Title] = true
	}
	return legal, nil
}

func (c *Client) get(ctx context.Context, u string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("netrunnerdb %s returned %d: %s", u, resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
