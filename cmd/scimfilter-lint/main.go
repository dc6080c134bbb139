// Command scimfilter-lint parses a SCIM filter expression and reports its
// canonical rendering, or a precise parse error, to help authors of
// filter strings (scripts, service configs, tests) catch mistakes before
// sending them to a live SCIM service.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log/v2"
	"github.com/spf13/cobra"

	"github.com/scimkit/filter"
)

func main() {
	logger := log.New(os.Stderr)

	var pathMode bool
	var quiet bool

	rootCmd := &cobra.Command{
		Use:   "scimfilter-lint [flags] [filter-string]",
		Short: "Parse and canonically render a SCIM filter expression",
		Long: `scimfilter-lint parses a SCIM 2.0 filter expression (RFC 7644 section
3.4.2.2), either given as an argument or read from stdin, and prints its
canonical rendering. On a parse failure it reports the error kind and the
character offset at which it occurred, then exits non-zero.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(logger, args, pathMode, quiet)
		},
	}

	rootCmd.Flags().BoolVar(&pathMode, "path", false, "parse the input as a standalone attribute path instead of a filter")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the rendered output; only report success or failure")

	if err := rootCmd.Execute(); err != nil {
		logger.Error("lint failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *log.Logger, args []string, pathMode, quiet bool) error {
	src, err := readInput(args)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if pathMode {
		p, err := scimfilter.ParsePath(src)
		if err != nil {
			return reportParseError(logger, err)
		}
		if !quiet {
			fmt.Println(p.String())
		}
		logger.Debug("path parsed", "elements", len(p.Elements))
		return nil
	}

	f, err := scimfilter.ParseFilter(src)
	if err != nil {
		return reportParseError(logger, err)
	}
	if !quiet {
		fmt.Println(scimfilter.Render(f))
	}
	logger.Debug("filter parsed", "paths", len(f.Paths()))
	return nil
}

func reportParseError(logger *log.Logger, err error) error {
	var pe *scimfilter.ParseError
	if errors.As(err, &pe) {
		logger.Error("parse error", "kind", pe.Kind, "offset", pe.Offset, "message", pe.Message)
	}
	return err
}

func readInput(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
