package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseText(t *testing.T) {
	tests := []struct {
		input    string
		name     string
		category string
		specs    string
		source   string
		quantity int
	}{
		{
			input:    "add resistor 10k ohm, 0603, 100 mW, 50 pieces",
			name:     "resistor",
			category: "Resistor",
			specs:    "10k ohm, 0603, 100 mW",
			quantity: 50,
		},
		{
			input:    "ATMEGA328P microcontroller, TQFP-32, 16MHz, qty:3",
			name:     "ATMEGA328P microcontroller",
			category: "IC",
			specs:    "TQFP-32, 16MHz",
			quantity: 3,
		},
		{
			input:    "1N4148 diode, DO-35 package, 100V, 200mA, 10 pcs",
			name:     "1N4148 diode",
			category: "Diode",
			specs:    "DO-35 package, 100V, 200mA",
			quantity: 10,
		},
		{
			input:    "EEPROM, 2.5-5.5V operating range, MSOP8 package, tme.cz:24LC32A-I/MS, 5 pcs",
			name:     "EEPROM",
			category: "IC",
			source:   "tme.cz:24LC32A-I/MS",
			quantity: 5,
		},
		{
			input:    "widget",
			name:     "widget",
			category: "Uncategorized",
			quantity: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseText(tt.input)
			assert.Equal(t, tt.name, got.Name)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.quantity, got.Quantity)
			assert.Equal(t, tt.source, got.Source)
			if tt.specs != "" {
				assert.Equal(t, tt.specs, got.Specifications)
			}
			if tt.source != "" {
				assert.NotContains(t, got.Specifications, tt.source)
			}
		})
	}
}

func TestParseTextLongNameWithoutSeparator(t *testing.T) {
	got := ParseText("generic black plastic enclosure")
	assert.Equal(t, "generic black plastic", got.Name)
	assert.Equal(t, "enclosure", got.Specifications)
}

func TestParseTextQuantityPrefix(t *testing.T) {
	got := ParseText("qty:15 LM7805 voltage regulator, TO-220 package, 5V 1.5A")
	assert.Equal(t, 15, got.Quantity)
	assert.Equal(t, "LM7805 voltage regulator", got.Name)
}

func TestRegexParserRejectsEmpty(t *testing.T) {
	_, err := NewRegexParser().Parse(context.Background(), "   ")
	require.Error(t, err)
}
