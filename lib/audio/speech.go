// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"strings"
	"unicode"
)

// StripMarkdownForSpeech removes residual markdown from text destined
// for text-to-speech. The massaging model is instructed to emit plain
// prose, but it sometimes leaves formatting behind; a narrator reading
// "asterisk asterisk" aloud is worse than losing the emphasis.
//
// Code blocks are dropped entirely (their contents are unreadable as
// speech), inline formatting markers are stripped while keeping the
// text, header markers are removed, and whitespace is collapsed to
// single spaces.
func StripMarkdownForSpeech(text string) string {
	// Drop fenced code blocks, contents included.
	var withoutFences strings.Builder
	remaining := text
	for {
		start := strings.Index(remaining, "```")
		if start < 0 {
			break
		}
		withoutFences.WriteString(remaining[:start])
		remaining = remaining[start+3:]
		end := strings.Index(remaining, "```")
		if end < 0 {
			break
		}
		remaining = remaining[end+3:]
	}
	withoutFences.WriteString(remaining)

	cleaned := withoutFences.String()
	cleaned = strings.ReplaceAll(cleaned, "`", "")
	cleaned = strings.ReplaceAll(cleaned, "***", "")
	cleaned = strings.ReplaceAll(cleaned, "**", "")
	cleaned = strings.ReplaceAll(cleaned, "___", "")
	cleaned = strings.ReplaceAll(cleaned, "__", "")

	// Lone emphasis markers: drop every '*'; keep '_' only between
	// alphanumerics, where it is part of an identifier.
	runes := []rune(cleaned)
	var kept []rune
	for i, r := range runes {
		switch r {
		case '*':
			continue
		case '_':
			prevAlnum := i > 0 && isAlnum(runes[i-1])
			nextAlnum := i+1 < len(runes) && isAlnum(runes[i+1])
			if prevAlnum && nextAlnum {
				kept = append(kept, r)
			}
		default:
			kept = append(kept, r)
		}
	}

	// Strip header markers at line starts and flatten lines.
	var flattened []string
	for _, line := range strings.Split(string(kept), "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "#") {
			trimmed = strings.TrimLeft(trimmed, "#")
			trimmed = strings.TrimLeft(trimmed, " \t")
			flattened = append(flattened, trimmed)
		} else {
			flattened = append(flattened, line)
		}
	}

	return strings.Join(strings.Fields(strings.Join(flattened, " ")), " ")
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
