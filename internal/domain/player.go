package domain

// Player is the engine's view of a player account. The account itself is an
// external collaborator: the engine reads level and balance and applies
// atomic debits/credits, but never owns the account lifecycle.
type Player struct {
	ID       string `json:"user_id"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	Balance  int64  `json:"balance"`
	Exp      int64  `json:"exp"`
}
