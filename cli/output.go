// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/fubarnetes/dtrace"
)

// outputFormat defines how listed probes are written.
type outputFormat string

const (
	// formatUndefined is an unset format, it should not be used.
	formatUndefined outputFormat = ""
	// formatText writes an aligned table like dtrace -l.
	formatText outputFormat = "text"
	// formatJSON writes a JSON array of probes.
	formatJSON outputFormat = "json"
	// formatYAML writes a YAML sequence of probes.
	formatYAML outputFormat = "yaml"
)

var errInvalidFormat = errors.New("invalid output format")

func (f outputFormat) String() string {
	switch f {
	case formatText, formatJSON, formatYAML, formatUndefined:
		return string(f)
	default:
		return fmt.Sprintf("Format(%s)", string(f))
	}
}

// UnmarshalText applies the outputFormat type when inputted text is valid.
func (f *outputFormat) UnmarshalText(text []byte) error {
	*f = outputFormat(bytes.ToLower(text))

	return f.validate()
}

func (f *outputFormat) validate() error {
	if f == nil {
		return errors.New("nil outputFormat")
	}

	switch *f {
	case formatText, formatJSON, formatYAML:
		// Valid.
	default:
		return fmt.Errorf("%w: %s", errInvalidFormat, f.String())
	}
	return nil
}

func parseOutputFormat(text string) (outputFormat, error) {
	var f outputFormat

	err := f.UnmarshalText([]byte(text))

	return f, err
}

func writeProbes(w io.Writer, f outputFormat, probes []dtrace.Probe) error {
	switch f {
	case formatJSON:
		if probes == nil {
			probes = []dtrace.Probe{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(probes)
	case formatYAML:
		if probes == nil {
			probes = []dtrace.Probe{}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(probes); err != nil {
			return err
		}
		return enc.Close()
	case formatText:
		tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
		fmt.Fprintln(tw, "ID\tPROVIDER\tMODULE\tFUNCTION\tNAME")
		for _, p := range probes {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Provider, p.Module, p.Function, p.Name)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("%w: %s", errInvalidFormat, f.String())
	}
}
