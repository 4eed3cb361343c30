package models

// Token symbols supported by the ledger.
const (
	TokenKAIA = "KAIA"
	TokenZOO  = "ZOO"
	TokenWBTC = "WBTC"
)

// Tokens lists every supported token symbol.
func Tokens() []string {
	return []string{TokenKAIA, TokenZOO, TokenWBTC}
}

// ValidToken reports whether the symbol names a supported token.
func ValidToken(symbol string) bool {
	switch symbol {
	case TokenKAIA, TokenZOO, TokenWBTC:
		return true
	}
	return false
}
