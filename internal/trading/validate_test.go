package trading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateTrade(t *testing.T) {
	tests := []struct {
		name    string
		symbol  string
		shares  int64
		wantErr error
	}{
		{"valid", "AAPL", 10, nil},
		{"empty symbol", "", 10, ErrMissingSymbol},
		{"whitespace symbol", "   ", 10, ErrMissingSymbol},
		{"zero shares", "AAPL", 0, ErrInvalidShares},
		{"negative shares", "AAPL", -5, ErrInvalidShares},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTrade(tt.symbol, tt.shares)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
