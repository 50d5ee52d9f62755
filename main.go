// ABOUTME: Entry point for the fiveyard opportunity server
// ABOUTME: Routes to serve, sync, or init based on arguments
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/fiveyard/config"
	"github.com/harperreed/fiveyard/salesforce"
	"github.com/harperreed/fiveyard/store"
	"github.com/harperreed/fiveyard/syncer"
	"github.com/harperreed/fiveyard/views"
	"github.com/harperreed/fiveyard/web"
)

const version = "0.2.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("fiveyard version %s\n", version)
		os.Exit(0)
	}

	command := "serve"
	if args := flag.Args(); len(args) > 0 {
		command = args[0]
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	st, err := store.Open(cfg.DatabaseURL, cfg.DBPath, log)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	switch command {
	case "init":
		log.Info("Database initialized successfully")

	case "sync":
		sy := buildSyncer(cfg, st, log)
		count, err := sy.RunSync(context.Background())
		if err != nil {
			log.Fatalf("Sync failed: %v", err)
		}
		log.WithField("count", count).Info("Sync complete")

	case "serve":
		sy := buildSyncer(cfg, st, log)
		vs := views.NewService(st, log)
		srv := web.NewServer(st, vs, sy, cfg.SFExcludedOwners, log)
		if err := srv.Start(cfg.Port); err != nil {
			log.Fatalf("Server failed: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func buildSyncer(cfg *config.Config, st *store.Store, log *logrus.Logger) *syncer.Syncer {
	if !cfg.HasSalesforceCredentials() {
		log.Warn("Salesforce credentials not configured; sync will fail until they are set")
	}
	client := salesforce.NewClient(salesforce.Config{
		LoginURL:       cfg.SFLoginURL,
		ClientID:       cfg.SFClientID,
		ClientSecret:   cfg.SFClientSecret,
		Username:       cfg.SFUsername,
		Password:       cfg.SFPassword,
		SecurityToken:  cfg.SFSecurityToken,
		APIVersion:     cfg.SFAPIVersion,
		ExcludedOwners: cfg.SFExcludedOwners,
	}, log)
	return syncer.New(client, st, log)
}

func printUsage() {
	fmt.Println(`fiveyard - Salesforce opportunity board

Usage:
  fiveyard [flags] <command>

Commands:
  serve    Start the HTTP server (default)
  sync     Run one sync against Salesforce and exit
  init     Initialize the database and exit

Flags:
  -version Show version and exit

Configuration is read from the environment (and .env):
  PORT, DATABASE_URL, FIVEYARD_DB_PATH, LOG_LEVEL,
  SF_LOGIN_URL, SF_CLIENT_ID, SF_CLIENT_SECRET, SF_USERNAME,
  SF_PASSWORD, SF_SECURITY_TOKEN, SF_API_VERSION, SF_EXCLUDED_OWNERS`)
}
