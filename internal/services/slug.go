package services

import (
	"strings"
	"unicode"
)

// Slugify lowercases title and joins its letter and digit runs with "-".
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

func slugFor(title string) (string, error) {
	slug := Slugify(title)
	if slug == "" {
		return "", ValidationError("Title must contain at least one letter or digit")
	}
	return slug, nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
