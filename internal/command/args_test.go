package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "aliases Notch", []string{"aliases", "Notch"}},
		{"extra spaces", "  aliases   Notch ", []string{"aliases", "Notch"}},
		{"double quoted", `aliases "Notch"`, []string{"aliases", "Notch"}},
		{"single quoted", `aliases 'Notch'`, []string{"aliases", "Notch"}},
		{"quoted space", `echo "two words"`, []string{"echo", "two words"}},
		{"escaped quote", `echo "say \"hi\""`, []string{"echo", `say "hi"`}},
		{"empty quotes", `echo ""`, []string{"echo", ""}},
		{"quote inside word", `echo don't`, []string{"echo", "don't"}},
		{"empty line", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitArgs(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitArgs_Malformed(t *testing.T) {
	_, err := splitArgs(`aliases "Notch`)
	assert.ErrorIs(t, err, errUnclosedQuote)

	_, err = splitArgs(`aliases "Notch\`)
	assert.ErrorIs(t, err, errTrailingEscape)
}
