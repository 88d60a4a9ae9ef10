package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nutralink/directory/internal/search"
)

type parseOptions struct {
	entityType     string
	state          string
	city           string
	verified       string
	exportOnly     bool
	certifications []string
	dictionary     string
	pretty         bool
}

func newParseCmd(_ *rootOptions) *cobra.Command {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <query>",
		Short: "Explain how a search query is interpreted",
		Long: `Parse a free-text search query and print the detected entity type,
location, keywords and the SQL condition it compiles to.

Explicit filters override anything detected in the query text.`,
		Example: `  directoryctl parse "ashwagandha manufacturers in gujarat"
  directoryctl parse "herbal extracts" --state kerala --verified true`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, opts, strings.Join(args, " "))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.entityType, "entity-type", "", "Explicit entity type filter")
	flags.StringVar(&opts.state, "state", "", "Explicit state filter")
	flags.StringVar(&opts.city, "city", "", "Explicit city filter")
	flags.StringVar(&opts.verified, "verified", "", "Restrict to verified (true) or unverified (false) companies")
	flags.BoolVar(&opts.exportOnly, "export-only", false, "Restrict to exporters")
	flags.StringSliceVar(&opts.certifications, "cert", nil, "Required certification, repeatable")
	flags.StringVar(&opts.dictionary, "dictionary", "", "YAML dictionary layered over the built-in vocabulary")
	flags.BoolVar(&opts.pretty, "pretty", true, "Indent the JSON output")

	return cmd
}

func runParse(cmd *cobra.Command, opts *parseOptions, query string) error {
	parser, err := loadParser(opts.dictionary)
	if err != nil {
		return err
	}

	fc := search.FilterContext{
		EntityType:     opts.entityType,
		State:          opts.state,
		City:           opts.city,
		ExportOnly:     opts.exportOnly,
		Certifications: opts.certifications,
	}
	if raw := strings.TrimSpace(opts.verified); raw != "" {
		verified, err := parseBool(raw)
		if err != nil {
			return err
		}
		fc.Verified = &verified
	}

	explanation := parser.Explain(query, fc, search.CompanyFields())

	encoder := json.NewEncoder(cmd.OutOrStdout())
	if opts.pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(explanation)
}

func loadParser(path string) (*search.Parser, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return search.NewParser(nil), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	dict, err := search.LoadDictionary(f)
	if err != nil {
		return nil, err
	}
	return search.NewParser(dict), nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
}
