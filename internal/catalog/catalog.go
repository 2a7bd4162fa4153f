// Package catalog holds the immutable card reference data. The catalog is
// built once at startup and is read-only afterwards, so every method is safe
// for concurrent use without locking.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"cardledger/internal/domain"
)

const findCacheSize = 256

type packageRarityKey struct {
	pkg    domain.Package
	rarity int
}

// Catalog is the in-memory card reference store.
type Catalog struct {
	cards  map[int64]*domain.CardDefinition
	sorted []*domain.CardDefinition // by id ascending

	// byPackageRarity holds draw candidates sorted by id for deterministic
	// iteration in tests.
	byPackageRarity map[packageRarityKey][]*domain.CardDefinition

	// findCache memoizes Find results; safe because the catalog never
	// changes after construction.
	findCache *lru.Cache[string, []*domain.CardDefinition]
}

// New builds a Catalog from a validated config.
func New(config *Config) (*Catalog, error) {
	cache, err := lru.New[string, []*domain.CardDefinition](findCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog cache: %w", err)
	}

	c := &Catalog{
		cards:           make(map[int64]*domain.CardDefinition, len(config.Cards)),
		byPackageRarity: make(map[packageRarityKey][]*domain.CardDefinition),
		findCache:       cache,
	}

	for i := range config.Cards {
		card := &config.Cards[i]
		c.cards[card.ID] = card
		c.sorted = append(c.sorted, card)

		key := packageRarityKey{pkg: card.Package, rarity: card.Rarity}
		c.byPackageRarity[key] = append(c.byPackageRarity[key], card)
	}

	sort.Slice(c.sorted, func(i, j int) bool { return c.sorted[i].ID < c.sorted[j].ID })
	for _, cards := range c.byPackageRarity {
		sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	}

	return c, nil
}

// Card returns the definition for id, or nil if the catalog does not know it.
func (c *Catalog) Card(id int64) *domain.CardDefinition {
	return c.cards[id]
}

// Size returns the number of card definitions.
func (c *Catalog) Size() int {
	return len(c.cards)
}

// Eligible returns the draw candidates for a package and rarity that are
// unlocked at playerLevel. The result is ordered by card id.
func (c *Catalog) Eligible(pkg domain.Package, rarity, playerLevel int) []*domain.CardDefinition {
	candidates := c.byPackageRarity[packageRarityKey{pkg: pkg, rarity: rarity}]
	eligible := make([]*domain.CardDefinition, 0, len(candidates))
	for _, card := range candidates {
		if card.UnlockLevel <= playerLevel {
			eligible = append(eligible, card)
		}
	}
	return eligible
}

// Find returns catalog entries matching the filter, ordered by card id.
func (c *Catalog) Find(filter domain.BoxFilter) []*domain.CardDefinition {
	key := fmt.Sprintf("%s|%d|%s", filter.NameContains, filter.Rarity, filter.Package)
	if cached, ok := c.findCache.Get(key); ok {
		return cached
	}

	needle := strings.ToLower(filter.NameContains)
	var matched []*domain.CardDefinition
	for _, card := range c.sorted {
		if needle != "" && !strings.Contains(strings.ToLower(card.Name), needle) {
			continue
		}
		if filter.Rarity != 0 && card.Rarity != filter.Rarity {
			continue
		}
		if filter.Package != "" && card.Package != filter.Package {
			continue
		}
		matched = append(matched, card)
	}

	c.findCache.Add(key, matched)
	return matched
}

// LoadCatalog is the startup entry point: read, validate and index the card
// data file in one call.
func LoadCatalog(path string) (*Catalog, error) {
	loader := NewLoader()

	config, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	if err := loader.Validate(config); err != nil {
		return nil, err
	}

	return New(config)
}
