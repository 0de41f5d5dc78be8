package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"crm-ad-sync/internal/providers"
)

type Options struct {
	// DryRun fetches and enriches but logs instead of patching.
	DryRun bool
}

// Run executes one full sync pass: list enabled CRM users, enrich each from
// the directory, patch the CRM record. Strictly sequential, one record at a
// time; a failure on one record never aborts the rest. Only the initial
// listing is fatal, since without it there is nothing to isolate per record.
func Run(ctx context.Context, crm providers.CRMStore, dir providers.DirectoryLookup, opts Options) (*Report, error) {
	start := time.Now()

	users, err := crm.ListEnabledUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	log.Printf("Fetched %d enabled users with a domain account", len(users))

	report := &Report{}
	for i, u := range users {
		log.Printf("[%d/%d] Processing %s (%s)...", i+1, len(users), u.DomainName, u.ID)

		ad, err := dir.RetrieveUserProperties(ctx, u.DomainName)
		if err != nil {
			log.Printf("  ERR: directory lookup failed: %v", err)
			report.add(Result{UserID: u.ID, DomainName: u.DomainName, Outcome: OutcomeError, Detail: err.Error()})
			continue
		}
		if ad == nil {
			log.Printf("  WARN: no directory entry for %s, skipping", u.DomainName)
			report.add(Result{UserID: u.ID, DomainName: u.DomainName, Outcome: OutcomeSkipped, Detail: "no directory entry"})
			continue
		}

		payload := BuildUpdatePayload(*ad)
		if len(payload) == 0 {
			log.Printf("  SKIP: directory entry has no writable attributes")
			report.add(Result{UserID: u.ID, DomainName: u.DomainName, Outcome: OutcomeSkipped, Detail: "no writable attributes"})
			continue
		}

		if opts.DryRun {
			b, _ := json.Marshal(payload)
			log.Printf("  [DRY-RUN] Would patch %s: %s", u.ID, b)
			report.add(Result{UserID: u.ID, DomainName: u.DomainName, Outcome: OutcomeDryRun, Detail: string(b)})
			continue
		}

		if err := crm.UpdateUser(ctx, u.ID, payload); err != nil {
			b, _ := json.Marshal(payload)
			log.Printf("  ERR: update failed id=%s name=%q payload=%s: %v", u.ID, ad.FullName(), b, err)
			report.add(Result{UserID: u.ID, DomainName: u.DomainName, Outcome: OutcomeError, Detail: err.Error()})
			continue
		}

		log.Printf("  OK: updated %s", u.ID)
		report.add(Result{UserID: u.ID, DomainName: u.DomainName, Outcome: OutcomeUpdated})
	}

	report.Elapsed = time.Since(start)
	log.Printf("Sync summary: processed=%d, updated=%d, skipped=%d, errors=%d, total_time=%s",
		len(report.Results), report.Count(OutcomeUpdated), report.Count(OutcomeSkipped), report.Count(OutcomeError), report.Elapsed)
	return report, nil
}
