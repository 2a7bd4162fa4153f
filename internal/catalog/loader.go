package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"cardledger/internal/domain"
)

// Sentinel errors for the catalog loader
var (
	ErrDuplicateCardID = errors.New("duplicate card id")
	ErrInvalidConfig   = errors.New("invalid catalog configuration")

	// ErrDanglingReference marks a recipe entry that points at a card id the
	// catalog does not define. Caught at load time so a bad data file fails
	// startup instead of failing transactions.
	ErrDanglingReference = errors.New("recipe references unknown card")
)

// Config represents the JSON catalog file
type Config struct {
	Version     string                  `json:"version"`
	Description string                  `json:"description"`
	Cards       []domain.CardDefinition `json:"cards" validate:"required,min=1,dive"`
}

// Loader handles loading and validating the card catalog file
type Loader interface {
	Load(path string) (*Config, error)
	Validate(config *Config) error
}

type cardLoader struct {
	validate *validator.Validate
	titler   cases.Caser
}

// NewLoader creates a new Loader instance
func NewLoader() Loader {
	return &cardLoader{
		validate: validator.New(),
		titler:   cases.Title(language.English),
	}
}

// Load reads and parses a catalog JSON file
func (l *cardLoader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	// Display names in data files are inconsistently cased; normalize once
	// here so every downstream surface shows the same form.
	for i := range config.Cards {
		config.Cards[i].Name = l.titler.String(config.Cards[i].Name)
	}

	return &config, nil
}

// Validate checks the catalog configuration for structural errors, duplicate
// ids and dangling recipe references.
func (l *cardLoader) Validate(config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := l.validate.Struct(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	known := make(map[int64]bool, len(config.Cards))
	for i := range config.Cards {
		card := &config.Cards[i]
		if known[card.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateCardID, card.ID)
		}
		known[card.ID] = true

		if !card.Package.Valid() {
			return fmt.Errorf("%w: card %d has unknown package %q", ErrInvalidConfig, card.ID, card.Package)
		}
	}

	for i := range config.Cards {
		card := &config.Cards[i]
		if err := checkRecipeRefs(card.ID, "compose", card.ComposeMaterials, known); err != nil {
			return err
		}
		if err := checkRecipeRefs(card.ID, "decompose", card.DecomposeMaterials, known); err != nil {
			return err
		}
	}

	return nil
}

func checkRecipeRefs(cardID int64, kind string, materials map[int64]int64, known map[int64]bool) error {
	for materialID, qty := range materials {
		if !known[materialID] {
			return fmt.Errorf("%w: card %d %s recipe uses %d", ErrDanglingReference, cardID, kind, materialID)
		}
		if qty <= 0 {
			return fmt.Errorf("%w: card %d %s recipe has non-positive quantity for %d", ErrInvalidConfig, cardID, kind, materialID)
		}
	}
	return nil
}
