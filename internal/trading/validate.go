package trading

import "strings"

func validateTrade(symbol string, shares int64) error {
	if strings.TrimSpace(symbol) == "" {
		return ErrMissingSymbol
	}
	if shares <= 0 {
		return ErrInvalidShares
	}
	return nil
}
