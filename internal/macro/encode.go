package macro

import (
	"strconv"
	"strings"
	"unicode"
)

// Encode makes command text safe to store as XML character data. Control
// and whitespace characters become $!<code>!, as does a $ followed by !, so
// Decode(Encode(s)) == s for every s.
func Encode(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	runes := []rune(text)
	for i, r := range runes {
		escape := unicode.IsControl(r) || unicode.IsSpace(r) ||
			(r == '$' && i+1 < len(runes) && runes[i+1] == '!')
		if !escape {
			b.WriteRune(r)
			continue
		}
		b.WriteString("$!")
		b.WriteString(strconv.Itoa(int(r)))
		b.WriteByte('!')
	}
	return b.String()
}

// Decode reverses Encode. A $! that is not followed by digits and a closing
// ! is kept literally.
func Decode(text string) string {
	if !strings.Contains(text, "$!") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); {
		if strings.HasPrefix(text[i:], "$!") {
			j := i + 2
			for j < len(text) && text[j] >= '0' && text[j] <= '9' {
				j++
			}
			if j > i+2 && j < len(text) && text[j] == '!' {
				if code, err := strconv.Atoi(text[i+2 : j]); err == nil {
					b.WriteRune(rune(code))
					i = j + 1
					continue
				}
			}
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}
