package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jllopis/scriptor/pkg/agent"
	"github.com/jllopis/scriptor/pkg/config"
	"github.com/jllopis/scriptor/pkg/graph"
	"github.com/jllopis/scriptor/pkg/journal"
	"github.com/jllopis/scriptor/pkg/telemetry"
)

const version = "0.1.0"

type globalFlags struct {
	ConfigPath string
	JSON       bool
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	cfg, err := config.Load(global.ConfigPath)
	if err != nil {
		fatal(err)
	}

	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	shutdown, err := telemetry.InitWithConfig("scriptor", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		fatal(err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	a, cleanup, err := buildAgent(ctx, cfg, logger)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	switch args[0] {
	case "run":
		runLoop(ctx, a, global)
	case "graph":
		fmt.Println(a.Graph().Describe())
	case "concepts":
		printConcepts(a, global)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var global globalFlags
	fs := flag.NewFlagSet("scriptor", flag.ContinueOnError)
	fs.StringVar(&global.ConfigPath, "config", "", "path to config file")
	fs.BoolVar(&global.JSON, "json", false, "emit JSON output")
	fs.BoolVar(&global.Help, "help", false, "show usage")
	if err := fs.Parse(args); err != nil {
		return globalFlags{}, nil, err
	}
	return global, fs.Args(), nil
}

func buildAgent(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*agent.Agent, func(), error) {
	manifest, err := graph.LoadManifest(cfg.Agent.RoleManifest)
	if err != nil {
		return nil, nil, fmt.Errorf("load role manifest: %w", err)
	}

	metrics, err := telemetry.NewAgentMetrics(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := []agent.Option{
		agent.WithMetrics(metrics),
		agent.WithMaxMessageBytes(cfg.Agent.MaxMessageBytes),
	}

	// A missing or broken concept manifest only means fewer seeded
	// concepts.
	if cfg.Agent.ConceptManifest != "" {
		conceptManifest, err := graph.LoadManifest(cfg.Agent.ConceptManifest)
		if err != nil {
			logger.Warn("concept manifest skipped", "path", cfg.Agent.ConceptManifest, "error", err)
		} else {
			opts = append(opts, agent.WithConceptStates(conceptManifest.MetaStates))
		}
	}

	cleanup := func() {}
	if cfg.Journal.Enabled {
		switch cfg.Journal.Provider {
		case "", "sqlite":
			store, err := journal.OpenSQLite(cfg.Journal.Path)
			if err != nil {
				return nil, nil, fmt.Errorf("open journal: %w", err)
			}
			opts = append(opts, agent.WithJournal(store))
			cleanup = func() { store.Close() }
		case "inmemory":
			opts = append(opts, agent.WithJournal(journal.NewInMemory()))
		default:
			return nil, nil, fmt.Errorf("unknown journal provider %q", cfg.Journal.Provider)
		}
	}

	a, err := agent.New(manifest, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return a, cleanup, nil
}

func runLoop(ctx context.Context, a *agent.Agent, global globalFlags) {
	fmt.Println("Enter a message (Ctrl+C to exit):")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}
		res := a.ProcessMessage(ctx, scanner.Text())
		printResult(res, global)
	}
	fmt.Println("\nExiting")
}

func printResult(res agent.Result, global globalFlags) {
	if global.JSON {
		out := struct {
			Fingerprint map[string]float64 `json:"fingerprint"`
			RoleID      string             `json:"role_id,omitempty"`
			Activated   bool               `json:"activated"`
			Truncated   bool               `json:"truncated,omitempty"`
			Error       string             `json:"activation_error,omitempty"`
		}{
			Fingerprint: res.Fingerprint,
			RoleID:      res.RoleID,
			Activated:   res.Activated,
			Truncated:   res.Truncated,
		}
		if res.ActivationErr != nil {
			out.Error = res.ActivationErr.Error()
		}
		payload, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(payload))
		return
	}

	if res.RoleID != "" {
		status := "activated"
		if !res.Activated {
			status = "activation failed"
		}
		fmt.Printf("role: %s (%s)\n", res.RoleID, status)
	}
	names := make([]string, 0, len(res.Fingerprint))
	for name := range res.Fingerprint {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		fmt.Println("fingerprint: (empty)")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%.3f\n", name, res.Fingerprint[name])
	}
	w.Flush()
}

func printConcepts(a *agent.Agent, global globalFlags) {
	names := a.Concepts().ListConcepts()
	if global.JSON {
		payload, err := json.MarshalIndent(names, "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(payload))
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%s\n", name, a.Concepts().GetConcept(name))
	}
	w.Flush()
}

func printUsage() {
	fmt.Println(`Usage: scriptor [flags] <command>

Commands:
  run        interactive message loop; prints a fingerprint per message
  graph      describe the role graph
  concepts   list seeded concepts

Flags:
  -config    path to config file
  -json      emit JSON output
  -help      show usage`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
