package gacha

// CostPerDraw is the currency price of a single draw.
const CostPerDraw = 10

// Draw count bounds for one pull request.
const (
	MinDraws = 1
	MaxDraws = 100
)

// rarityWeight is one row of the draw weight table.
type rarityWeight struct {
	rarity int
	weight int
}

// rarityWeights is the fixed draw distribution. Weights sum to 100; rarity 5
// cards are never drawn, they only come out of composition.
var rarityWeights = []rarityWeight{
	{rarity: 1, weight: 75},
	{rarity: 2, weight: 20},
	{rarity: 3, weight: 4},
	{rarity: 4, weight: 1},
}

const totalWeight = 100
