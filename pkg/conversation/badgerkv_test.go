// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package conversation

import (
	"testing"
)

func openTestBadger(t *testing.T) *BadgerKV {
	t.Helper()
	kv, err := OpenBadger(InMemoryBadgerConfig())
	if err != nil {
		t.Fatalf("open in-memory badger: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestBadgerKV_GetMissingKey(t *testing.T) {
	kv := openTestBadger(t)

	_, found, err := kv.Get("never-written")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected found=false for missing key")
	}
}

func TestBadgerKV_SetGetRoundTrip(t *testing.T) {
	kv := openTestBadger(t)

	if err := kv.Set("resumatch_current_conversation", []byte("conv-1")); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, found, err := kv.Get("resumatch_current_conversation")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatal("expected key to be found")
	}
	if string(value) != "conv-1" {
		t.Errorf("unexpected value: %q", value)
	}
}

func TestBadgerKV_SetReplacesValue(t *testing.T) {
	kv := openTestBadger(t)

	if err := kv.Set("k", []byte("first")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set("k", []byte("second")); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, _, err := kv.Get("k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(value) != "second" {
		t.Errorf("expected replacement, got %q", value)
	}
}

func TestBadgerKV_PersistentOpenRequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{})
	if err == nil {
		t.Fatal("expected error for persistent config without path")
	}
}

func TestStore_WorksOverBadger(t *testing.T) {
	kv := openTestBadger(t)

	store := NewStore(kv, nil)
	id := store.ActiveID()
	store.Append(id, userMessage("persist me"))

	reloaded := NewStore(kv, nil)
	conv, ok := reloaded.Get(id)
	if !ok {
		t.Fatal("expected conversation to survive reload over badger")
	}
	if len(conv.Messages) != 1 || conv.Messages[0].Content != "persist me" {
		t.Errorf("unexpected reloaded messages: %+v", conv.Messages)
	}
}
