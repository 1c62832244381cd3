// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"encoding/json"
	"strings"
)

// ToolCall is one tool invocation embedded in message content or
// reconstructed from tool/tool-args tags.
type ToolCall struct {
	ID         string          `json:"id,omitempty"`
	Name       string          `json:"name"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
	Result     string          `json:"result,omitempty"`
}

// toolCallGroup matches the {"tool_calls": [...]} wrapper some
// backends emit instead of a bare tool-call object.
type toolCallGroup struct {
	ToolCalls []ToolCall `json:"tool_calls"`
}

// MessageContent is message text split around embedded tool calls.
// Plain text yields a single TextParts entry and no ToolCalls.
type MessageContent struct {
	TextParts []string
	ToolCalls []ToolCall
}

// IsPlain reports whether no tool calls were found.
func (c *MessageContent) IsPlain() bool { return len(c.ToolCalls) == 0 }

// ParseMessageContent scans content for balanced JSON objects and
// lifts out the ones that decode as a tool call or a tool-call group.
// Braces inside JSON strings do not terminate a block. Objects that
// decode to neither shape stay in the surrounding text untouched.
func ParseMessageContent(content string) MessageContent {
	var toolCalls []ToolCall
	var textParts []string
	var text strings.Builder

	flush := func() {
		if strings.TrimSpace(text.String()) != "" {
			textParts = append(textParts, text.String())
		}
		text.Reset()
	}

	runes := []rune(content)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '{' {
			text.WriteRune(runes[i])
			continue
		}

		block, next := scanJSONObject(runes, i)
		i = next

		var call ToolCall
		if err := json.Unmarshal([]byte(block), &call); err == nil && call.Name != "" {
			flush()
			toolCalls = append(toolCalls, call)
			continue
		}
		var group toolCallGroup
		if err := json.Unmarshal([]byte(block), &group); err == nil && len(group.ToolCalls) > 0 {
			flush()
			toolCalls = append(toolCalls, group.ToolCalls...)
			continue
		}
		text.WriteString(block)
	}
	flush()

	if len(toolCalls) == 0 {
		return MessageContent{TextParts: []string{content}}
	}
	return MessageContent{TextParts: textParts, ToolCalls: toolCalls}
}

// scanJSONObject consumes a brace-balanced block starting at
// runes[start] == '{' and returns it with the index of its last rune.
// An unterminated block runs to the end of input.
func scanJSONObject(runes []rune, start int) (string, int) {
	var block strings.Builder
	block.WriteRune('{')

	depth := 1
	inString := false
	escaped := false
	i := start + 1
	for ; i < len(runes); i++ {
		r := runes[i]
		block.WriteRune(r)
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return block.String(), i
				}
			}
		}
	}
	return block.String(), i - 1
}

// ParsedContent returns the message content split into text and tool
// calls. A tool/tool-args tag pair takes precedence over anything
// embedded in the content text.
func (m *Message) ParsedContent() MessageContent {
	if m.ToolName != "" {
		call := ToolCall{Name: m.ToolName}
		if m.ToolArgs != "" && json.Valid([]byte(m.ToolArgs)) {
			call.Parameters = json.RawMessage(m.ToolArgs)
		}
		var parts []string
		if strings.TrimSpace(m.Content) != "" {
			parts = []string{m.Content}
		}
		return MessageContent{TextParts: parts, ToolCalls: []ToolCall{call}}
	}
	return ParseMessageContent(m.Content)
}
