package repository

import "context"

// Crafting defines the persistence interface for the compose/decompose
// engine. Recipes live in the catalog, not the database, so craft
// transactions only touch ledger rows.
type Crafting interface {
	BeginTx(ctx context.Context) (CraftingTx, error)
}

// CraftingTx is one compose or decompose transaction.
type CraftingTx interface {
	Tx
	LedgerOps
}
