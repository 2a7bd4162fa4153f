package domain

// Package identifies the expansion a card belongs to.
type Package string

const (
	PackageBase     Package = "base"
	PackageNeon     Package = "neon"
	PackageFrontier Package = "frontier"
	PackageRelic    Package = "relic"
)

// Valid reports whether p is a known expansion package.
func (p Package) Valid() bool {
	switch p {
	case PackageBase, PackageNeon, PackageFrontier, PackageRelic:
		return true
	}
	return false
}

// Rarity bounds for card definitions. Rarity 5 cards exist in the catalog but
// are never produced by draws; they are reachable through compose only.
const (
	MinRarity = 1
	MaxRarity = 5
)

// CardDefinition is immutable reference data for a single card. Definitions
// are loaded once at startup and referenced by ID everywhere else; material
// maps are keyed by card ID.
type CardDefinition struct {
	ID                 int64           `json:"card_id" validate:"required,gt=0"`
	Name               string          `json:"name" validate:"required"`
	Image              string          `json:"image,omitempty"`
	Description        string          `json:"description,omitempty"`
	Rarity             int             `json:"rarity" validate:"min=1,max=5"`
	Package            Package         `json:"package" validate:"required"`
	UnlockLevel        int             `json:"unlock_level" validate:"min=1"`
	ComposeMaterials   map[int64]int64 `json:"compose_materials,omitempty"`
	DecomposeMaterials map[int64]int64 `json:"decompose_materials,omitempty"`
}

// Composable reports whether the card has a compose recipe.
func (c *CardDefinition) Composable() bool {
	return len(c.ComposeMaterials) > 0
}

// Decomposable reports whether the card has a decompose yield table.
func (c *CardDefinition) Decomposable() bool {
	return len(c.DecomposeMaterials) > 0
}

// CardStack is a quantity of one card, used for ledger rows, draw results and
// decompose yields.
type CardStack struct {
	CardID int64 `json:"card_id"`
	Count  int64 `json:"count"`
}

// OwnedCard is a ledger row joined with the catalog display fields for box
// inspection responses.
type OwnedCard struct {
	CardID  int64   `json:"card_id"`
	Name    string  `json:"name"`
	Image   string  `json:"image,omitempty"`
	Rarity  int     `json:"rarity"`
	Package Package `json:"package"`
	Count   int64   `json:"count"`
}

// BoxFilter narrows a box inspection query. Zero values mean "no filter".
type BoxFilter struct {
	NameContains string
	Rarity       int
	Package      Package
}
