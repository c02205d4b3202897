package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, USD, c)

	_, err = ParseCurrency("EUR")
	assert.Error(t, err)
}

func TestAmountPut(t *testing.T) {
	body := map[string]any{}
	InARS(5000).Put(body, "monto_usd", "monto_ars")
	assert.Equal(t, map[string]any{"monto_ars": 5000.0}, body)

	body = map[string]any{}
	InUSD(12.5).Put(body, "monto_usd", "monto_ars")
	assert.Equal(t, map[string]any{"monto_usd": 12.5}, body)
}

func TestAmountConversions(t *testing.T) {
	assert.InDelta(t, 30000, InUSD(30).ToARS(1000), 1e-9)
	assert.InDelta(t, 5000, InARS(5000).ToARS(1000), 1e-9)
	assert.InDelta(t, 5, InARS(5000).ToUSD(1000), 1e-9)
	assert.Zero(t, InARS(5000).ToUSD(0))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "$ 1.234.568", FormatARS(1234567.8))
	assert.Equal(t, "$ 0", FormatARS(0))
	assert.Equal(t, "US$ 1,234.57", FormatUSD(1234.567))
	assert.Equal(t, "US$ 30.00", FormatUSD(30))
	assert.Equal(t, "12.50", FormatPlain(12.5))
	assert.Equal(t, 2.35, Round2(2.345))
}
