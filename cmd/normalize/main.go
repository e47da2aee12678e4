package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/catalog"
)

var errProductNotFound = errors.New("product not found")

func main() {
	cmd := newRootCommand(os.Stdin, os.Stdout)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var indent bool
	cmd := &cobra.Command{
		Use:           "normalize [file]",
		Short:         "Print the storefront view-model for a raw catalog product",
		Long:          "Reads one raw product JSON document from file, or stdin when no file or \"-\" is given, and prints its normalized view-model.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			in := stdin
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return run(in, stdout, indent)
		},
	}
	cmd.Flags().BoolVar(&indent, "indent", false, "Pretty-print the output")
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	return cmd
}

// run normalizes the raw product read from in and writes it to out.
func run(in io.Reader, out io.Writer, indent bool) error {
	payload, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	raw, err := catalog.ParseRawProduct(payload)
	if err != nil {
		return fmt.Errorf("parse product: %w", err)
	}
	product := catalog.Normalize(raw)
	if product == nil {
		return errProductNotFound
	}

	enc := json.NewEncoder(out)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(product)
}
