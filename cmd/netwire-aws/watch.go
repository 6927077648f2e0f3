package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/lex00/netwire-aws-go/internal/lint"
	"github.com/lex00/netwire-aws-go/internal/plan"
	"github.com/lex00/netwire-aws-go/topology"
)

// newWatchCmd creates the "watch" subcommand for auto-replanning on file changes.
func newWatchCmd() *cobra.Command {
	var (
		lintOnly     bool
		debounce     time.Duration
		outputFormat string
		outputFile   string
		namespace    string
		zf           zoneFlags
	)

	cmd := &cobra.Command{
		Use:   "watch [topology-file]",
		Short: "Auto-replan on topology file changes",
		Long: `Watch monitors a topology file for changes and automatically replans.

The watch command:
- Monitors the topology file for changes
- Runs lint on each change
- Replans if lint passes (unless --lint-only)
- Debounces rapid changes to avoid excessive replans

Examples:
    netwire-aws watch topology.yaml
    netwire-aws watch topology.yaml --lint-only
    netwire-aws watch topology.yaml -f cfn -o template.json
    netwire-aws watch topology.yaml --debounce 1s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := defaultTopologyFile
			if len(args) > 0 {
				file = args[0]
			}
			return runWatch(cmd.Context(), file, watchOptions{
				lintOnly:     lintOnly,
				debounce:     debounce,
				outputFormat: outputFormat,
				outputFile:   outputFile,
				namespace:    namespace,
				zones:        zf,
			})
		},
	}

	cmd.Flags().BoolVar(&lintOnly, "lint-only", false, "Only run lint, skip replanning")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format for the plan: json, yaml, cfn, cfn-yaml, or k8s")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for the plan (default: stdout summary only)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Kubernetes namespace for k8s output")
	zf.register(cmd)

	return cmd
}

type watchOptions struct {
	lintOnly     bool
	debounce     time.Duration
	outputFormat string
	outputFile   string
	namespace    string
	zones        zoneFlags
}

// runWatch monitors the topology file and runs lint/plan on changes. The
// parent directory is watched rather than the file itself: most editors
// replace the file on save, which would otherwise drop the watch.
func runWatch(ctx context.Context, file string, opts watchOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	absFile, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(absFile)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absFile), err)
	}
	fmt.Printf("Watching: %s\n", absFile)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initial run
	fmt.Println("Running initial lint/plan...")
	runLintAndPlan(ctx, file, opts)

	// Debounce timer
	var debounceTimer *time.Timer
	replanChan := make(chan struct{}, 1)

	fmt.Println("\nWatching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !watchedFileEvent(event, absFile) {
				continue
			}

			// Debounce: reset timer on each change
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(opts.debounce, func() {
				select {
				case replanChan <- struct{}{}:
				default:
				}
			})

		case <-replanChan:
			fmt.Printf("\n[%s] Change detected, replanning...\n", time.Now().Format("15:04:05"))
			runLintAndPlan(ctx, file, opts)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-sigChan:
			fmt.Println("\nStopping watch...")
			return nil
		}
	}
}

// watchedFileEvent reports whether a directory event is a write or create
// of the watched file.
func watchedFileEvent(event fsnotify.Event, absFile string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	eventPath, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return eventPath == absFile
}

// runLintAndPlan runs lint and optionally plan on the topology file.
func runLintAndPlan(ctx context.Context, file string, opts watchOptions) {
	if !runWatchLint(file) {
		fmt.Println("Lint failed, skipping plan")
		return
	}

	fmt.Println("Lint passed")

	if opts.lintOnly {
		return
	}

	runWatchPlan(ctx, file, opts)
}

// runWatchLint runs lint and returns true when no error-severity issues
// were found. Warnings are printed but do not block replanning.
func runWatchLint(file string) bool {
	lintResult, err := lint.LintFile(file, lint.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lint error: %v\n", err)
		return false
	}

	blocked := false
	for _, issue := range lintResult.Issues {
		fmt.Printf("%s: %s: %s [%s]\n", issue.File, issue.Severity, issue.Message, issue.Rule)
		if issue.Severity == lint.SeverityError {
			blocked = true
		}
	}

	return !blocked
}

// runWatchPlan replans and writes the result.
func runWatchPlan(ctx context.Context, file string, opts watchOptions) {
	spec, err := topology.Load(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Plan error: %v\n", err)
		return
	}

	zoneList, err := resolveZones(ctx, spec, opts.zones)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Plan error: %v\n", err)
		return
	}

	graph, err := plan.Build(spec, zoneList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Plan error: %v\n", err)
		return
	}

	data, err := renderGraph(graph, spec, opts.outputFormat, opts.namespace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
		return
	}

	if opts.outputFile == "" {
		fmt.Println("Plan successful")
		fmt.Printf("Planned %d resources\n", len(graph.Nodes))
	} else {
		if err := os.WriteFile(opts.outputFile, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
			return
		}
		fmt.Printf("Plan successful, wrote %s\n", opts.outputFile)
	}
}
