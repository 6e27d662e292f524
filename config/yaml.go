package config

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/gatesim/internal/gatesimerr"
)

// yamlDoc mirrors the port-configuration document shape: a flat list of
// ports, each either a role assignment (clock/reset) or a data port
// shape declaration, following the nested-struct approach to yaml.v3
// unmarshaling used by core.YAMLRoot / core.ArrayConfig.
type yamlDoc struct {
	Ports []yamlPort `yaml:"ports"`
}

type yamlPort struct {
	Name   string `yaml:"name"`
	Role   string `yaml:"role"` // "clock", "reset", or "" for a data port
	Rows   int    `yaml:"rows"`
	Cols   int    `yaml:"cols"`
	Width  int    `yaml:"width"`
	Signed bool   `yaml:"signed"`
}

// LoadPortConfigYAML reads a port configuration document from r in the
// shape documented alongside gatesim's other external interfaces, and
// builds a Config from it.
//
// Unlike LoadProgramFileFromYAML (which panics on a read or parse
// failure), this always returns an error: construction-time failures in
// gatesim are reported to the caller, never panicked.
func LoadPortConfigYAML(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, gatesimerr.New(gatesimerr.NetlistParse, "<config-yaml>", err.Error())
	}

	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, gatesimerr.New(gatesimerr.NetlistParse, "<config-yaml>", err.Error())
	}

	b := NewBuilder()
	for _, p := range doc.Ports {
		switch p.Role {
		case "clock":
			b = b.WithClock(p.Name)
		case "reset":
			b = b.WithReset(p.Name)
		case "":
			b = b.WithPort(p.Name, rowsOrDefault(p.Rows), colsOrDefault(p.Cols), p.Width, p.Signed)
		default:
			return Config{}, gatesimerr.Newf(gatesimerr.NetlistParse, p.Name, "unknown port role %q", p.Role)
		}
	}

	cfg, err := b.Build()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func rowsOrDefault(rows int) int {
	if rows == 0 {
		return 1
	}
	return rows
}

func colsOrDefault(cols int) int {
	if cols == 0 {
		return 1
	}
	return cols
}
