package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// render writes v as JSON or YAML, or calls text for the text format.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case formatText, "":
		return text(w)
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
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

// abiReport is the serialised form of abi.Profile.
type abiReport struct {
	RunningABI    string `json:"running_abi" yaml:"running_abi"`
	IsX86         bool   `json:"is_x86" yaml:"is_x86"`
	Supports64Bit bool   `json:"supports_64bit" yaml:"supports_64bit"`
	Path32        string `json:"path32" yaml:"path32"`
	Path64        string `json:"path64,omitempty" yaml:"path64,omitempty"`
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
