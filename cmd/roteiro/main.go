// cmd/roteiro/main.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/clinicflow/roteiros/internal/models"
	"github.com/clinicflow/roteiros/internal/parser"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	formatFlag string
	outputFlag string
	modeFlag   string
)

var rootCmd = &cobra.Command{
	Use:           "roteiro",
	Short:         "Structure raw marketing scripts offline",
	Long:          `Runs the script structuring engine on local files: carousel, Stories 10x and GPSC video scripts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Parse a raw script into its structured document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParse,
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file|-]",
	Short: "Print the cleaned text of a raw script",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNormalize,
}

var validateCmd = &cobra.Command{
	Use:   "validate [file|-]",
	Short: "Score a structured document (JSON)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	parseCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "script format: carousel, stories10x or gpsc")
	_ = parseCmd.MarkFlagRequired("format")
	validateCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "override the document format")

	for _, cmd := range []*cobra.Command{parseCmd, validateCmd} {
		cmd.Flags().StringVarP(&outputFlag, "output", "o", "json", "output encoding: json or yaml")
	}
	normalizeCmd.Flags().StringVarP(&modeFlag, "mode", "m", "reading", "structural or reading")

	rootCmd.AddCommand(parseCmd, normalizeCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := models.ParseScriptFormat(formatFlag)
	if err != nil {
		return err
	}
	raw, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	doc, strategy := parser.ParseDocument(format, raw)
	return writeOutput(cmd.OutOrStdout(), models.ParsedScript{
		Format:     format,
		Raw:        raw,
		Document:   doc,
		Validation: parser.ValidateDocument(doc),
		Strategy:   strategy,
	})
}

func runNormalize(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), parser.Normalize(raw, parser.ParseMode(modeFlag)))
	return err
}

func runValidate(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	var doc models.ScriptDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Errorf("document is not valid JSON: %w", err)
	}
	if formatFlag != "" {
		if doc.Format, err = models.ParseScriptFormat(formatFlag); err != nil {
			return err
		}
	}
	return writeOutput(cmd.OutOrStdout(), parser.ValidateDocument(doc))
}

// readInput reads the named file, or stdin for "-" and no argument.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func writeOutput(w io.Writer, v interface{}) error {
	switch strings.ToLower(outputFlag) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	}
	return fmt.Errorf("unknown output %q", outputFlag)
}
