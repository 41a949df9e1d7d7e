// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package conversation manages durable multi-conversation chat state.
//
// The store keeps a recency-ordered list of conversations plus an active
// pointer, and serializes every mutation through a pluggable key-value
// adapter so state survives process restarts. The store is never empty:
// initialization and deletion both guarantee at least one conversation
// exists and is active.
package conversation

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// DefaultTitle is the title of a conversation before its first visible
// user message names it.
const DefaultTitle = "New Chat"

// titleMaxLen is the number of leading characters of the first user
// message used as a derived title.
const titleMaxLen = 30

// Message is one chat turn.
//
// Hidden messages carry context the agent needs (proactive prompts) but
// are never rendered to the user.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Hidden    bool      `json:"hidden,omitempty"`
}

// Conversation is one chat thread.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VisibleMessages returns the messages that should render, preserving
// order.
func (c *Conversation) VisibleMessages() []Message {
	out := make([]Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		if !m.Hidden {
			out = append(out, m)
		}
	}
	return out
}

// deriveTitle truncates a first message into a conversation title.
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleMaxLen {
		return content
	}
	return string(runes[:titleMaxLen]) + "..."
}
