// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

package gemini

import (
	"testing"

	"github.com/jllopis/paideia/pkg/llm"
)

func TestProviderImplementsInterface(t *testing.T) {
	var _ llm.Provider = (*Provider)(nil)
}

func TestWithModel(t *testing.T) {
	p := &Provider{model: "gemini-2.0-flash-001"}
	WithModel("gemini-1.5-pro")(p)
	if p.model != "gemini-1.5-pro" {
		t.Errorf("expected model gemini-1.5-pro, got %s", p.model)
	}
	WithModel("")(p)
	if p.model != "gemini-1.5-pro" {
		t.Errorf("empty model must not override, got %s", p.model)
	}
}

func TestConvertMessages(t *testing.T) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a tutor."},
		{Role: llm.RoleUser, Content: "What is a gearbox?"},
		{Role: llm.RoleAssistant, Content: "A gearbox transmits torque."},
	}
	contents, system := convertMessages(messages)
	if system != "You are a tutor." {
		t.Fatalf("expected system instruction, got %q", system)
	}
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if contents[0].Role != "user" || contents[1].Role != "model" {
		t.Fatalf("unexpected roles: %s, %s", contents[0].Role, contents[1].Role)
	}
}
