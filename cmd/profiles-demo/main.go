// Command profiles-demo exposes browser-profile automation as dispatchable
// actions: create a profile-bound browser for interactive login, end a
// session so its state saves into the profile, and run LLM-driven tasks
// against a saved profile.
//
// Run one action and print its JSON result:
//
//	profiles-demo -action create_profile_browser
//	profiles-demo -action execute_task_with_profile -payload '{"profile_name":"profile_...","task":"..."}'
//
// Or serve every action over HTTP:
//
//	profiles-demo -serve
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/onkernel/profiles-demo/pkg/actions"
	openaiagent "github.com/onkernel/profiles-demo/pkg/agent/openai"
	"github.com/onkernel/profiles-demo/pkg/browser"
	"github.com/onkernel/profiles-demo/pkg/browser/local"
	"github.com/onkernel/profiles-demo/pkg/browser/remote"
	"github.com/onkernel/profiles-demo/pkg/config"
	"github.com/onkernel/profiles-demo/pkg/logging"
	"github.com/onkernel/profiles-demo/pkg/orchestrator"
)

type cliFlags struct {
	configFile string
	action     string
	payload    string
	serve      bool
	listOnly   bool
}

func parseFlags() *cliFlags {
	f := &cliFlags{}
	flag.StringVar(&f.configFile, "config", "", "Path to YAML config file (optional)")
	flag.StringVar(&f.action, "action", "", "Action to run once (see -list)")
	flag.StringVar(&f.payload, "payload", "", "JSON payload for the action")
	flag.BoolVar(&f.serve, "serve", false, "Serve actions over HTTP instead of running once")
	flag.BoolVar(&f.listOnly, "list", false, "List available actions and their payload schemas")
	flag.Parse()
	return f
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := parseFlags()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return err
	}

	log, logErr := logging.NewLogger("main")
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging unavailable: %v\n", logErr)
	}
	defer log.Close()

	provisioner, shutdown, err := buildProvisioner(cfg, log)
	if err != nil {
		return err
	}
	defer shutdown()

	launcherLog, _ := logging.NewLogger("agent")
	defer launcherLog.Close()

	var launcherOpts []openaiagent.Option
	if cfg.LLM.BaseURL != "" {
		launcherOpts = append(launcherOpts, openaiagent.WithBaseURL(cfg.LLM.BaseURL))
	}
	launcher := openaiagent.NewLauncher(launcherLog, launcherOpts...)

	orchLog, _ := logging.NewLogger("orchestrator")
	defer orchLog.Close()

	orch := orchestrator.New(provisioner, launcher, cfg.LLM.APIKey, orchLog,
		orchestrator.WithModel(cfg.LLM.Model))

	registry := actions.NewDefaultRegistry(orch)

	switch {
	case flags.listOnly:
		return printJSON(registry.Schemas())
	case flags.serve:
		return serveActions(cfg, registry, log)
	case flags.action != "":
		return runOnce(registry, flags.action, flags.payload)
	default:
		flag.Usage()
		return fmt.Errorf("one of -action, -serve, or -list is required")
	}
}

// buildProvisioner wires the configured provisioning backend. The returned
// shutdown func is a no-op for the remote client.
func buildProvisioner(cfg *config.Config, log *logging.Logger) (browser.Provisioner, func(), error) {
	if cfg.Provisioner == config.ProvisionerRemote {
		return remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.APIKey), func() {}, nil
	}

	localLog, _ := logging.NewLogger("local")
	mgr, err := local.NewManager(cfg.Local, localLog)
	if err != nil {
		localLog.Close()
		return nil, nil, err
	}
	if err := mgr.Initialize(); err != nil {
		localLog.Close()
		return nil, nil, err
	}

	shutdown := func() {
		if err := mgr.Shutdown(); err != nil {
			log.Warnf("local provisioner shutdown: %v", err)
		}
		localLog.Close()
	}
	return mgr, shutdown, nil
}

func runOnce(registry *actions.Registry, name, payload string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := registry.Dispatch(ctx, name, json.RawMessage(payload))
	if err != nil {
		// The dispatch boundary reports failure as a structured JSON
		// result, matching the HTTP surface.
		printErr := printJSON(map[string]any{"success": false, "error": err.Error()})
		if printErr != nil {
			return printErr
		}
		os.Exit(1)
	}
	return printJSON(result)
}

func serveActions(cfg *config.Config, registry *actions.Registry, log *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := actions.NewServer(registry, log)
	fmt.Fprintf(os.Stderr, "serving actions on %s\n", cfg.ServerAddr)
	return srv.ListenAndServe(ctx, cfg.ServerAddr)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
