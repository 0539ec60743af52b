// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import (
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// initialisms are rendered in upper case inside Go identifiers.
var initialisms = map[string]string{
	"api":  "API",
	"cpu":  "CPU",
	"dns":  "DNS",
	"html": "HTML",
	"http": "HTTP",
	"id":   "ID",
	"ip":   "IP",
	"json": "JSON",
	"sql":  "SQL",
	"tls":  "TLS",
	"ttl":  "TTL",
	"uri":  "URI",
	"url":  "URL",
	"uuid": "UUID",
	"xml":  "XML",
}

func splitWords(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
}

// ExportedName derives the exported Go identifier for a declared field name:
// `user_id` becomes `UserID`, `max-retries` becomes `MaxRetries`.
func ExportedName(name string) string {
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range splitWords(name) {
		if up, ok := initialisms[strings.ToLower(w)]; ok {
			b.WriteString(up)
			continue
		}
		b.WriteString(title.String(w))
	}
	return b.String()
}

// LocalName derives the unexported Go identifier used for struct fields and
// locals: `user_id` becomes `userID`. Keywords and predeclared identifiers
// get a trailing underscore so generated code never shadows them.
func LocalName(name string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return ""
	}
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(lowerFirstWord(w))
			continue
		}
		if up, ok := initialisms[strings.ToLower(w)]; ok {
			b.WriteString(up)
			continue
		}
		b.WriteString(title.String(w))
	}
	ident := b.String()
	if token.IsKeyword(ident) || types.Universe.Lookup(ident) != nil {
		ident += "_"
	}
	return ident
}

// lowerFirstWord lower-cases an initialism entirely and otherwise only its
// leading run of capitals, so `HTTPServer` becomes `httpServer`.
func lowerFirstWord(w string) string {
	if _, ok := initialisms[strings.ToLower(w)]; ok {
		return strings.ToLower(w)
	}
	runes := []rune(w)
	i := 0
	for i < len(runes) && 'A' <= runes[i] && runes[i] <= 'Z' {
		i++
	}
	switch {
	case i == 0:
	case i == len(runes) || i == 1:
		for j := 0; j < i; j++ {
			runes[j] = runes[j] + ('a' - 'A')
		}
	default:
		// Keep the last capital: it starts the next word.
		for j := 0; j < i-1; j++ {
			runes[j] = runes[j] + ('a' - 'A')
		}
	}
	return string(runes)
}
