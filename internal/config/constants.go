package config

const (
	// DefaultMaxDailyTrades is the trailing-24h purchase cap per buyer.
	DefaultMaxDailyTrades = 20
)
