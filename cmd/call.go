package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"azdo-cli/internal/config"
)

var (
	callArgPairs []string
	callArgsJSON string
	callSaved    string
	callJSON     bool
)

var callCmd = &cobra.Command{
	Use:   "call [tool]",
	Short: "Call one query tool and print the result",
	Long: `Call one tool from the catalog with arguments from --arg pairs, an
--args JSON object, or a saved query, and print the payload as JSON.

Argument values given with --arg parse as JSON when they can, so
numbers, booleans, and arrays come through typed; anything else stays a
string.`,
	Example: `  # List active pull requests of a repository
  azdo-cli call list_pull_requests --arg repository=web --arg status=active

  # Pass arguments as one JSON object
  azdo-cli call query_work_items --args '{"type":"Bug","states":["Active"]}'

  # Run a saved query from queries.yaml
  azdo-cli call --saved failed-builds`,
	Args: cobra.MaximumNArgs(1),
	Run:  runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringArrayVar(&callArgPairs, "arg", nil, "Argument as key=value, repeatable")
	callCmd.Flags().StringVar(&callArgsJSON, "args", "", "All arguments as one JSON object")
	callCmd.Flags().StringVar(&callSaved, "saved", "", "Run a saved query from queries.yaml")
	callCmd.Flags().BoolVar(&callJSON, "json", false, "Print the raw response envelope")
}

func runCall(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	tool, callArgs, err := resolveCall(cfg, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dispatcher, cleanup, err := newDispatcher(cfg, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = fmt.Sprintf(" Calling %s...", tool)
	s.Start()
	env := dispatcher.Call(context.Background(), tool, callArgs)
	s.Stop()

	if callJSON {
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		if !env.OK {
			os.Exit(1)
		}
		return
	}

	if !env.OK {
		fmt.Fprintf(os.Stderr, "\033[31m%s\033[0m\n", env.ErrorMessage)
		os.Exit(1)
	}
	data, err := json.MarshalIndent(env.Payload, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

// resolveCall works out the tool name and raw arguments from the
// positional name, a saved query, the --args object, and --arg pairs,
// in increasing order of precedence.
func resolveCall(cfg *config.Config, args []string) (string, map[string]any, error) {
	tool := ""
	if len(args) == 1 {
		tool = args[0]
	}
	raw := map[string]any{}

	if callSaved != "" {
		if tool != "" {
			return "", nil, fmt.Errorf("cannot combine a tool name with --saved")
		}
		queries, err := config.LoadQueries(cfg.QueriesPath())
		if err != nil {
			return "", nil, err
		}
		q, ok := config.FindQuery(queries, callSaved)
		if !ok {
			return "", nil, fmt.Errorf("saved query %q not found in %s", callSaved, cfg.QueriesPath())
		}
		tool = q.Tool
		for k, v := range q.Arguments {
			raw[k] = v
		}
	}
	if tool == "" {
		return "", nil, fmt.Errorf("no tool given: pass a tool name or --saved")
	}

	if callArgsJSON != "" {
		var fromJSON map[string]any
		if err := json.Unmarshal([]byte(callArgsJSON), &fromJSON); err != nil {
			return "", nil, fmt.Errorf("parsing --args: %w", err)
		}
		for k, v := range fromJSON {
			raw[k] = v
		}
	}

	for _, pair := range callArgPairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return "", nil, fmt.Errorf("invalid --arg %q: want key=value", pair)
		}
		raw[key] = parseArgValue(value)
	}
	return tool, raw, nil
}

// parseArgValue types a flag value: valid JSON passes through decoded,
// anything else is a plain string.
func parseArgValue(value string) any {
	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err == nil {
		return parsed
	}
	return value
}
