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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/proofdesk/services/evaluation/audit"
)

func openAuditStore() (*audit.BadgerStore, bool) {
	store, err := audit.OpenBadgerStore(audit.DefaultBadgerConfig(auditPath))
	if err != nil {
		slog.Error("Failed to open audit store", "path", auditPath, "error", err)
		return nil, false
	}
	return store, true
}

func runChainVerify(_ *cobra.Command, _ []string) {
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
	if err := audit.VerifyEntries(entries); err != nil {
		slog.Error("Chain verification FAILED", "org", orgID, "error", err)
		return
	}
	fmt.Printf("Chain intact: %d entries verified from genesis for scope %q\n", len(entries), orgID)
}

func runChainList(_ *cobra.Command, _ []string) {
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
	for _, entry := range entries {
		line, err := json.Marshal(entry)
		if err != nil {
			slog.Error("Failed to render entry", "id", entry.ID, "error", err)
			return
		}
		fmt.Println(string(line))
	}
}
