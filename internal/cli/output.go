package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

func (f *outputFormat) String() string { return string(*f) }

func (f *outputFormat) Set(s string) error {
	switch outputFormat(s) {
	case formatTable, formatJSON, formatYAML:
		*f = outputFormat(s)
		return nil
	}
	return fmt.Errorf("must be one of table, json, yaml")
}

func (f *outputFormat) Type() string { return "format" }

func addOutputFlag(fs *pflag.FlagSet, f *outputFormat) {
	*f = formatTable
	fs.VarP(f, "output", "o", "output format: table, json or yaml")
}

// render writes v in the machine formats, or the table text otherwise.
func render(w io.Writer, format outputFormat, v any, table func() string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	_, err := fmt.Fprintln(w, table())
	return err
}
