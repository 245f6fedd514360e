package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Dosada05/swisscut/models"
)

const DefaultTTL = 24 * time.Hour

var ErrCardNotFound = errors.New("card not found")

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

// Catalog serves identities and cards from the on-disk store, refetching a
// dataset from upstream when its copy is older than the TTL. When the refetch
// fails but a stale copy exists, the stale copy is served.
type Catalog struct {
	store   *Store
	fetcher Fetcher
	now     Clock
	ttl     time.Duration
	logger  *slog.Logger

	mu         sync.Mutex
	identities []Identity
	idsLoaded  time.Time
	cards      []Card
	cardsAt    time.Time
}

func New(store *Store, fetcher Fetcher, now Clock, ttl time.Duration, logger *slog.Logger) *Catalog {
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{store: store, fetcher: fetcher, now: now, ttl: ttl, logger: logger}
}

func (c *Catalog) expired(fetchedAt time.Time) bool {
	return fetchedAt.IsZero() || c.now().Sub(fetchedAt) >= c.ttl
}

// Identities returns the cached identity list, refreshing it when expired.
func (c *Catalog) Identities(ctx context.Context) ([]Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.identities != nil && !c.expired(c.idsLoaded) {
		return c.identities, nil
	}

	fetchedAt, ok, err := c.store.FetchedAt(ctx, datasetIdentities)
	if err != nil {
		return nil, err
	}

	if !ok || c.expired(fetchedAt) {
		fresh, fetchErr := c.fetcher.FetchIdentities(ctx)
		if fetchErr == nil {
			fetchedAt = c.now()
			if err := c.store.ReplaceIdentities(ctx, fresh, fetchedAt); err != nil {
				return nil, err
			}
		} else if !ok {
			return nil, fmt.Errorf("fetch identities: %w", fetchErr)
		} else {
			c.logger.Warn("identity refresh failed, serving stale cache",
				slog.Time("fetched_at", fetchedAt), slog.Any("error", fetchErr))
		}
	}

	ids, err := c.store.Identities(ctx)
	if err != nil {
		return nil, err
	}
	c.identities = ids
	c.idsLoaded = fetchedAt
	return ids, nil
}

// Refresh warms both datasets.
func (c *Catalog) Refresh(ctx context.Context) error {
	if _, err := c.Identities(ctx); err != nil {
		return err
	}
	_, err := c.Cards(ctx)
	return err
}

// Faction returns the faction code of the identity, empty when unknown.
func (c *Catalog) Faction(ctx context.Context, identity string) (string, error) {
	ids, err := c.Identities(ctx)
	if err != nil {
		return "", err
	}
	for _, id := range ids {
		if id.Name == identity {
			return id.Faction, nil
		}
	}
	return "", nil
}

// IdentityNames lists the side's identities for a picker: standard-legal names
// sorted, the separator, then the rest sorted. Duplicates are dropped.
func (c *Catalog) IdentityNames(ctx context.Context, side models.Side) ([]string, error) {
	if side != models.SideCorp && side != models.SideRunner {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownSide, side)
	}

	ids, err := c.Identities(ctx)
	if err != nil {
		return nil, err
	}

	legal := map[string]struct{}{}
	other := map[string]struct{}{}
	for _, id := range ids {
		if id.Side != side {
			continue
		}
		if id.Legal {
			legal[id.Name] = struct{}{}
		} else {
			other[id.Name] = struct{}{}
		}
	}

	out := sortedKeys(legal)
	out = append(out, NonStandardSeparator)
	return append(out, sortedKeys(other)...), nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ResolveIdentity maps a loosely typed identity name to a catalog entry.
func (c *Catalog) ResolveIdentity(ctx context.Context, side models.Side, query string) (Identity, bool, error) {
	ids, err := c.Identities(ctx)
	if err != nil {
		return Identity{}, false, err
	}

	var names []string
	bySide := map[string]Identity{}
	for _, id := range ids {
		if id.Side != side {
			continue
		}
		if strings.EqualFold(id.Name, query) {
			return id, true, nil
		}
		names = append(names, id.Name)
		bySide[id.Name] = id
	}

	best, ok := bestMatch(query, names)
	if !ok {
		return Identity{}, false, nil
	}
	return bySide[best], true, nil
}

// Cards returns the cached card list, refreshing it when expired.
func (c *Catalog) Cards(ctx context.Context) ([]Card, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cards != nil && !c.expired(c.cardsAt) {
		return c.cards, nil
	}

	fetchedAt, ok, err := c.store.FetchedAt(ctx, datasetCards)
	if err != nil {
		return nil, err
	}

	if !ok || c.expired(fetchedAt) {
		fresh, fetchErr := c.fetcher.FetchCards(ctx)
		if fetchErr == nil {
			fetchedAt = c.now()
			if err := c.store.ReplaceCards(ctx, fresh, fetchedAt); err != nil {
				return nil, err
			}
		} else if !ok {
			return nil, fmt.Errorf("fetch cards: %w", fetchErr)
		} else {
			c.logger.Warn("card refresh failed, serving stale cache",
				slog.Time("fetched_at", fetchedAt), slog.Any("error", fetchErr))
		}
	}

	cards, err := c.store.Cards(ctx)
	if err != nil {
		return nil, err
	}
	c.cards = cards
	c.cardsAt = fetchedAt
	return cards, nil
}

// CardByStrippedTitle finds the card whose stripped title matches the name
// once accents are removed. Without an exact hit the closest fuzzy match is
// returned.
func (c *Catalog) CardByStrippedTitle(ctx context.Context, name string) (Card, error) {
	cards, err := c.Cards(ctx)
	if err != nil {
		return Card{}, err
	}

	unaccented := RemoveAccents(name)
	titles := make([]string, 0, len(cards))
	byStripped := make(map[string]Card, len(cards))
	for _, card := range cards {
		if card.StrippedTitle == unaccented {
			return card, nil
		}
		titles = append(titles, card.StrippedTitle)
		byStripped[card.StrippedTitle] = card
	}

	best, ok := bestMatch(unaccented, titles)
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrCardNotFound, name)
	}
	return byStripped[best], nil
}

func bestMatch(query string, targets []string) (string, bool) {
	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	if len(ranks) == 0 {
		return "", false
	}
	sort.Sort(ranks)
	return ranks[0].Target, true
}
