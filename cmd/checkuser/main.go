package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"strings"
	"time"

	"crm-ad-sync/internal/config"
	"crm-ad-sync/internal/devutil"
	"crm-ad-sync/internal/providers/directory"
)

// Diagnostic: look up a single domain account in the directory service and
// print the attributes the sync would see. Handy when a user reports stale
// profile data and you want to know which side is wrong.
func main() {
	var (
		domainName = flag.String("domain", "", `domain account name, e.g. "CONTOSO\\jdoe"`)
		fields     = flag.String("fields", "", "comma-separated attribute names to print (default: all)")
	)
	flag.Parse()

	if strings.TrimSpace(*domainName) == "" {
		log.Fatal("missing -domain")
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dir := directory.New(cfg.DirectoryBaseURL)
	dir.BasicUser = cfg.DirectoryBasicUser
	dir.BasicPass = cfg.DirectoryBasicPass

	user, err := dir.RetrieveUserProperties(ctx, *domainName)
	if err != nil {
		log.Fatalf("lookup failed: %v", err)
	}
	if user == nil {
		log.Fatalf("no directory entry for %s", *domainName)
	}

	var out any = user
	if strings.TrimSpace(*fields) != "" {
		keys := strings.Split(*fields, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
		out = devutil.Pick(user, keys...)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("marshal output: %v", err)
	}
	log.Printf("directory entry for %s:\n%s", *domainName, b)
}
