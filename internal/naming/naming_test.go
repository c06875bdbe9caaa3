package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"hmo_partner_id": "HMO Partner ID",
		"created_at":     "Created At",
		"erp_range":      "ERP Range",
		"claims":         "Claims",
		"provider__name": "Provider Name",
		"TOTAL_AMOUNT":   "Total Amount",
		"":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Label(in), in)
	}
}

func TestCounted(t *testing.T) {
	assert.Equal(t, "1 day", Counted(1, "day"))
	assert.Equal(t, "7 days", Counted(7, "day"))
	assert.Equal(t, "0 days", Counted(0, "day"))
	assert.Equal(t, "2 insurers", Counted(2, "insurer"))
	assert.Equal(t, "1 claim", Counted(1, "claims"))
	assert.Equal(t, "3 categories", Counted(3, "category"))
}

func TestTableNoun(t *testing.T) {
	assert.Equal(t, "claim", TableNoun("claims"))
	assert.Equal(t, "claim item", TableNoun("claim_items"))
	assert.Equal(t, "hmo", TableNoun("hmos"))
	assert.Equal(t, "tariff", TableNoun("tariffs"))
}
