// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"log/slog"

	"github.com/jllopis/paideia/pkg/registry"
)

// RegisterAll clears the registry and registers the full tutoring agent
// set. Registration order is the skill lookup tie-break order, so the
// retrieval agent goes first.
func RegisterAll(reg *registry.Registry, svc Services) {
	reg.Clear()
	reg.Register(NewRAG(svc))
	reg.Register(NewContent(svc))
	reg.Register(NewCode(svc))
	reg.Register(NewPersonalization(svc))
	reg.Register(NewTranslation(svc))
	reg.Register(NewAuth(svc))
	reg.Register(NewHistory(svc))
	slog.Info("agent registry initialized", "agents", reg.Count())
}
