package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want Money
	}{
		{"12.5", 1250},
		{"12.50", 1250},
		{"25.00", 2500},
		{"0.05", 5},
		{"7", 700},
		{"-3.2", -320},
	}
	for _, c := range cases {
		got, err := ParseMoney(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}

	_, err := ParseMoney("12.345")
	assert.Error(t, err, "more than two decimal places must be rejected")
	_, err = ParseMoney("abc")
	assert.Error(t, err)
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Money(2500))
	require.NoError(t, err)
	assert.Equal(t, "25.00", string(b))

	var m Money
	require.NoError(t, json.Unmarshal([]byte("12.5"), &m))
	assert.Equal(t, Money(1250), m)

	require.NoError(t, json.Unmarshal([]byte(`"8.25"`), &m))
	assert.Equal(t, Money(825), m)
}

func TestOrderItemLineTotal(t *testing.T) {
	item := OrderItem{
		Quantity: 2,
		Price:    1250,
		SelectedOptions: OptionList{
			{Name: "Extra cheese", Price: 150},
		},
	}
	assert.Equal(t, Money(1400), item.UnitPrice())
	assert.Equal(t, Money(2800), item.LineTotal())
}

func TestOptionListScanValue(t *testing.T) {
	opts := OptionList{{Name: "Large", Price: 300}}
	v, err := opts.Value()
	require.NoError(t, err)

	var back OptionList
	require.NoError(t, back.Scan(v))
	assert.Equal(t, opts, back)

	var empty OptionList
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)
}
