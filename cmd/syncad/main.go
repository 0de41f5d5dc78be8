package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"crm-ad-sync/internal/config"
	"crm-ad-sync/internal/export"
	"crm-ad-sync/internal/providers/directory"
	"crm-ad-sync/internal/providers/dynamics"
	"crm-ad-sync/internal/sftpclient"
	"crm-ad-sync/internal/sync"
)

func main() {
	var (
		dryRun  = flag.Bool("dry-run", false, "fetch and enrich but do not patch CRM")
		report  = flag.String("report", "", "write per-user sync report CSV to this path")
		upload  = flag.Bool("upload", false, "upload the report to SFTP after the run (requires -report)")
		timeout = flag.Duration("timeout", 2*time.Hour, "overall run timeout")
	)
	flag.Parse()

	start := time.Now()

	err := run(*dryRun, *report, *upload, *timeout)

	log.Printf("Execution finished in %s", time.Since(start))

	if err != nil {
		log.Fatalf("Job failed: %v", err)
	}
}

func run(dryRun bool, reportPath string, upload bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := config.Load()

	if strings.TrimSpace(cfg.CRMBaseURL) == "" {
		return fmt.Errorf("missing env: CRM_BASE_URL")
	}
	if upload && reportPath == "" {
		return fmt.Errorf("-upload requires -report")
	}

	crm := dynamics.New(cfg.CRMBaseURL)
	crm.BearerToken = strings.TrimSpace(cfg.CRMBearerToken)
	if crm.BearerToken == "" {
		log.Printf("CRM_BEARER_TOKEN not set, relying on gateway auth")
	}

	dir := directory.New(cfg.DirectoryBaseURL)
	dir.BasicUser = cfg.DirectoryBasicUser
	dir.BasicPass = cfg.DirectoryBasicPass

	rep, err := sync.Run(ctx, crm, dir, sync.Options{DryRun: dryRun})
	if err != nil {
		return err
	}

	if reportPath != "" {
		if err := export.WriteSyncReportFile(reportPath, rep.Results); err != nil {
			return err
		}
		log.Printf("wrote %d report rows to %s", len(rep.Results), reportPath)

		if upload {
			remoteName := filepath.Base(reportPath)
			upCfg := sftpclient.Config{
				Host:                  cfg.SFTPHost,
				Port:                  cfg.SFTPPort,
				User:                  cfg.SFTPUser,
				Pass:                  cfg.SFTPPass,
				RemoteDir:             cfg.SFTPDir,
				InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
			}

			upCtx, upCancel := context.WithTimeout(ctx, 5*time.Minute)
			defer upCancel()

			if err := sftpclient.UploadFile(upCtx, upCfg, reportPath, remoteName); err != nil {
				return err
			}
			log.Printf("uploaded to sftp://%s:%d%s/%s", upCfg.Host, upCfg.Port, upCfg.RemoteDir, remoteName)
		}
	}

	// A run that only hit per-record errors still exits 0: partial progress
	// is the normal mode for this job, the report carries the detail.
	if n := rep.Count(sync.OutcomeError); n > 0 {
		log.Printf("WARN: %d users failed, see log above", n)
	}
	return nil
}
