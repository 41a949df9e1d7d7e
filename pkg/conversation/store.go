// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package conversation

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Persistence keys. Fixed so state written by one process version is
// found by the next.
const (
	conversationsKey = "resumatch_conversations"
	activeKey        = "resumatch_current_conversation"
)

// Store manages the conversation list and the active pointer.
//
// Invariants:
//   - At least one conversation always exists and one is always active.
//   - Conversations are ordered most recent first; new conversations are
//     inserted at the front.
//   - Every mutation is written through the KV adapter before the method
//     returns. Persistence failures are logged, never fatal; the session
//     keeps working in memory.
//
// Thread Safety: safe for concurrent use.
type Store struct {
	mu            sync.Mutex
	kv            KV
	logger        *slog.Logger
	conversations []*Conversation
	activeID      string
}

// NewStore loads conversation state from kv, or starts fresh when the
// stored state is missing or corrupt. The returned store always has an
// active conversation.
func NewStore(kv KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{kv: kv, logger: logger}
	s.load()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.conversations) == 0 {
		s.createLocked()
		s.persistLocked()
	}
	return s
}

// load reads persisted state. Corrupt state is discarded wholesale; a
// half-trusted conversation list is worse than a fresh one.
func (s *Store) load() {
	raw, found, err := s.kv.Get(conversationsKey)
	if err != nil {
		s.logger.Warn("failed to read conversation state", "error", err)
		return
	}
	if !found {
		return
	}

	var conversations []*Conversation
	if err := json.Unmarshal(raw, &conversations); err != nil {
		s.logger.Warn("discarding corrupt conversation state", "error", err)
		return
	}
	s.conversations = conversations

	if rawID, found, err := s.kv.Get(activeKey); err == nil && found {
		s.activeID = string(rawID)
	}

	// The active pointer must reference a live conversation
	if s.findLocked(s.activeID) == nil && len(s.conversations) > 0 {
		s.activeID = s.conversations[0].ID
	}
}

// Create starts a new conversation, makes it active, and returns its ID.
func (s *Store) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.createLocked()
	s.persistLocked()
	return id
}

func (s *Store) createLocked() string {
	now := time.Now()
	conv := &Conversation{
		ID:        uuid.New().String(),
		Title:     DefaultTitle,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations = append([]*Conversation{conv}, s.conversations...)
	s.activeID = conv.ID
	return conv.ID
}

// Select makes the identified conversation active. Returns false when no
// such conversation exists; the active pointer is unchanged in that case.
func (s *Store) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) == nil {
		return false
	}
	s.activeID = id
	s.persistLocked()
	return true
}

// Delete removes the identified conversation.
//
// Deleting the active conversation promotes the most recent survivor.
// Deleting the last conversation immediately creates a fresh one, so the
// store is never empty. Unknown IDs are a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.conversations {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)

	if len(s.conversations) == 0 {
		s.createLocked()
	} else if s.activeID == id {
		s.activeID = s.conversations[0].ID
	}
	s.persistLocked()
}

// Append adds a message to the identified conversation.
//
// The first visible user message of a conversation still carrying the
// default title names it; the derived title is frozen afterward. Unknown
// conversation IDs are a no-op.
func (s *Store) Append(conversationID string, msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(conversationID)
	if conv == nil {
		s.logger.Debug("append to unknown conversation dropped", "id", conversationID)
		return
	}

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = time.Now()

	if conv.Title == DefaultTitle && msg.Role == RoleUser && !msg.Hidden {
		conv.Title = deriveTitle(msg.Content)
	}

	s.persistLocked()
}

// UpsertStreaming creates or replaces the streaming assistant message.
//
// The first call for a message ID appends an assistant message with the
// given content; subsequent calls replace that message's content with the
// full accumulated buffer. This keeps partial tokens out of the durable
// state shape: each persisted snapshot holds the complete text so far.
func (s *Store) UpsertStreaming(conversationID, messageID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(conversationID)
	if conv == nil {
		s.logger.Debug("streaming upsert to unknown conversation dropped", "id", conversationID)
		return
	}

	for i := range conv.Messages {
		if conv.Messages[i].ID == messageID {
			conv.Messages[i].Content = content
			conv.UpdatedAt = time.Now()
			s.persistLocked()
			return
		}
	}

	now := time.Now()
	conv.Messages = append(conv.Messages, Message{
		ID:        messageID,
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: now,
	})
	conv.UpdatedAt = now
	s.persistLocked()
}

// ActiveID returns the ID of the active conversation.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns a copy of the active conversation.
func (s *Store) Active() Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyConversation(s.findLocked(s.activeID))
}

// Get returns a copy of the identified conversation.
func (s *Store) Get(id string) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(id)
	if conv == nil {
		return Conversation{}, false
	}
	return copyConversation(conv), true
}

// List returns copies of all conversations, most recent first.
func (s *Store) List() []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, copyConversation(c))
	}
	return out
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

func (s *Store) findLocked(id string) *Conversation {
	for _, c := range s.conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// persistLocked writes both keys through the adapter.
func (s *Store) persistLocked() {
	raw, err := json.Marshal(s.conversations)
	if err != nil {
		s.logger.Error("failed to serialize conversation state", "error", err)
		return
	}
	if err := s.kv.Set(conversationsKey, raw); err != nil {
		s.logger.Warn("failed to persist conversations", "error", err)
	}
	if err := s.kv.Set(activeKey, []byte(s.activeID)); err != nil {
		s.logger.Warn("failed to persist active pointer", "error", err)
	}
}

func copyConversation(c *Conversation) Conversation {
	if c == nil {
		return Conversation{}
	}
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}
