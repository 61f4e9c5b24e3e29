package command

import (
	"errors"
	"strings"
)

var (
	errUnclosedQuote  = errors.New("unclosed quote")
	errTrailingEscape = errors.New("trailing escape")
)

// splitArgs breaks line into whitespace separated words. A word wrapped in
// double or single quotes may contain spaces; inside quotes a backslash
// escapes the next character. Quotes only open at the start of a word.
func splitArgs(line string) ([]string, error) {
	var (
		words []string
		b     strings.Builder
		inTok bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t':
			if inTok {
				words = append(words, b.String())
				b.Reset()
				inTok = false
			}
		case (r == '"' || r == '\'') && !inTok:
			quote := r
			closed := false
			for i++; i < len(runes); i++ {
				c := runes[i]
				if c == '\\' {
					i++
					if i == len(runes) {
						return nil, errTrailingEscape
					}
					b.WriteRune(runes[i])
					continue
				}
				if c == quote {
					closed = true
					break
				}
				b.WriteRune(c)
			}
			if !closed {
				return nil, errUnclosedQuote
			}
			words = append(words, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
			inTok = true
		}
	}
	if inTok {
		words = append(words, b.String())
	}
	return words, nil
}
