// Package main provides the entry point for the domainchecker application.
//
// domainchecker reads a newline-delimited list of candidate domains,
// determines the availability of each one concurrently using WHOIS with
// the Domainr status API as a confirmation tier, diffs the outcome
// against the previous run and alerts on newly available domains.
//
// The application follows the standard Go project layout:
//
// - cmd/domainchecker: main application entry point
// - internal/checker: credential rotation, availability oracle, batch engine
// - internal/status: cross-run status snapshot persistence
// - internal/notify: email and webhook notification dispatch
// - pkg/api: Domainr status API client
// - pkg/config: configuration handling
// - pkg/domain: domain-related models
// - pkg/util: punycode and scoring helpers
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/likexian/whois"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/williamzujkowski/domainchecker/internal/checker"
	"github.com/williamzujkowski/domainchecker/internal/notify"
	"github.com/williamzujkowski/domainchecker/internal/status"
	"github.com/williamzujkowski/domainchecker/pkg/api"
	"github.com/williamzujkowski/domainchecker/pkg/config"
)

const statusFileName = "domain_status.json"

func main() {
	var (
		configFile  = flag.String("config", config.DefaultConfigFileName, "Path to configuration file")
		domainsFile = flag.String("domains-file", "output/generated_domains.txt", "File with list of domains to check")
		resultsFile = flag.String("results", "domain_results.json", "Where to write the run report as JSON")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = "2006-01-02 15:04:05.000000"
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.StampMicro}
	log.Logger = zerolog.New(console).With().Timestamp().Logger()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Log to a file as well when possible; console-only otherwise.
	if f, ferr := openLogFile(cfg.LogDir); ferr != nil {
		log.Warn().Err(ferr).Msg("Unable to open log file, logging to console only")
	} else {
		defer f.Close()
		log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, f)).With().Timestamp().Logger()
	}

	domains, err := loadDomainList(*domainsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", *domainsFile).Msg("Failed to load domain list")
	}

	whoisClient := whois.NewClient().SetTimeout(cfg.Timeout())
	apiClient := api.NewClient(cfg.DomainrAPIType, cfg.Timeout(), cfg.DomainrRateLimit)
	rotator := checker.NewRotator(cfg.Keys())
	oracle := checker.NewOracle(whoisClient, apiClient, rotator)
	store := status.NewStore(filepath.Join(cfg.OutputDir, statusFileName))
	dispatcher := notify.NewDispatcher(cfg)

	batch := checker.NewBatch(oracle, store, dispatcher, cfg.ThreadCount, cfg.OutputDir)

	report, err := batch.Run(context.Background(), domains)
	if err != nil {
		log.Fatal().Err(err).Msg("Batch run failed")
	}

	if err := writeReport(*resultsFile, report); err != nil {
		log.Error().Err(err).Str("file", *resultsFile).Msg("Failed to write results file")
	} else {
		log.Info().Str("file", *resultsFile).Msg("Results saved")
	}

	fmt.Println(report.Summary)
}

func openLogFile(logDir string) (*os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(logDir, "domainchecker.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// loadDomainList reads one domain per line, skipping blank lines.
func loadDomainList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var domains []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			domains = append(domains, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return domains, nil
}

func writeReport(path string, report interface{}) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
