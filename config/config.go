// Package config reads the agent's TOML configuration in a type-safe way.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

// JSONRPCVersion is the JSON-RPC version spoken by the agent's server.
const JSONRPCVersion = "2.0"

// DefaultConfigTemplate is written by `ipc-agent config init`.
const DefaultConfigTemplate = `[server]
json_rpc_address = "127.0.0.1:3030"

# Default configuration for a local root node
[[subnets]]
id = "/root"
network_name = "root"

[subnets.config]
network_type = "fvm"
gateway_addr = "t064"
accounts = []
jsonrpc_api_http = "http://127.0.0.1:1234/rpc/v1"
auth_token = "<AUTH_TOKEN>"

# Subnet template - uncomment and adjust before using
# [[subnets]]
# id = "/root/<SUBNET_ACTOR_ADDR>"
# network_name = "<NAME>"

# [subnets.config]
# network_type = "fvm"
# gateway_addr = "t064"
# accounts = ["<WORKER_1>", "<WORKER_2>"]
# jsonrpc_api_http = "http://127.0.0.1:1251/rpc/v1"
# auth_token = "<AUTH_TOKEN_1>"
`

// Server configures the agent's own JSON-RPC endpoint.
type Server struct {
	JSONRPCAddress string `toml:"json_rpc_address"`
}

// Config is the top-level agent configuration. Subnets are keyed by
// their ID; the TOML representation carries them as a list.
type Config struct {
	Server  Server
	Subnets map[hierarchical.SubnetID]*Subnet
}

type rawConfig struct {
	Server  Server      `toml:"server"`
	Subnets []rawSubnet `toml:"subnets"`
}

// FromTOMLString reads a TOML configuration from a string.
func FromTOMLString(s string) (*Config, error) {
	var raw rawConfig
	if _, err := toml.Decode(s, &raw); err != nil {
		return nil, xerrors.Errorf("decoding config: %w", err)
	}

	cfg := &Config{
		Server:  raw.Server,
		Subnets: make(map[hierarchical.SubnetID]*Subnet, len(raw.Subnets)),
	}
	for _, rs := range raw.Subnets {
		sn, err := rs.parse()
		if err != nil {
			return nil, err
		}
		if _, ok := cfg.Subnets[sn.ID]; ok {
			return nil, xerrors.Errorf("duplicate subnet %s in config", sn.ID)
		}
		cfg.Subnets[sn.ID] = sn
	}
	return cfg, nil
}

// FromFile reads a TOML configuration from the file at path.
func FromFile(path string) (*Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("reading config file %s: %w", path, err)
	}
	return FromTOMLString(string(contents))
}
