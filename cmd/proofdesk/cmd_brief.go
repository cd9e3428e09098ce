// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/proofdesk/services/evaluation"
)

// briefEvent is the shape of the brief_assembled audit payload this
// command cares about.
type briefEvent struct {
	ApplicationID string          `json:"application_id"`
	Version       int             `json:"version"`
	Brief         json.RawMessage `json:"brief"`
}

func runBriefShow(_ *cobra.Command, _ []string) {
	if appID == "" {
		slog.Error("Please provide an application ID using --application")
		return
	}

	store, ok := openAuditStore()
	if !ok {
		return
	}
	defer store.Close()

	entries, err := store.List(context.Background(), orgID)
	if err != nil {
		slog.Error("Failed to read chain", "org", orgID, "error", err)
		return
	}

	// Briefs are versioned, never mutated; the latest brief_assembled
	// event for the application is the current version.
	var latest *briefEvent
	for _, entry := range entries {
		if entry.EventType != evaluation.EventBriefAssembled {
			continue
		}
		var ev briefEvent
		if err := json.Unmarshal(entry.EventJSON, &ev); err != nil {
			slog.Warn("Skipping unreadable brief event", "id", entry.ID, "error", err)
			continue
		}
		if ev.ApplicationID != appID {
			continue
		}
		if latest == nil || ev.Version >= latest.Version {
			copied := ev
			latest = &copied
		}
	}
	if latest == nil {
		slog.Error("No brief recorded for application", "application", appID, "org", orgID)
		return
	}

	var out bytes.Buffer
	if err := json.Indent(&out, latest.Brief, "", "  "); err != nil {
		slog.Error("Failed to render brief", "error", err)
		return
	}
	fmt.Println(out.String())
}
