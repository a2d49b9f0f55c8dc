package config

import (
	"github.com/filecoin-project/go-address"
	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

// Network types a subnet entry may declare.
const (
	NetworkFVM  = "fvm"
	NetworkFEVM = "fevm"
)

// FVMSubnet connects to a native Filecoin node over its JSON-RPC API.
type FVMSubnet struct {
	GatewayAddr address.Address
	Accounts    []address.Address
	JSONRPCAPI  string
	AuthToken   string
}

// FEVMSubnet connects through an Ethereum-compatible provider. Addresses
// are kept as raw hex strings since they are not Filecoin addresses.
type FEVMSubnet struct {
	GatewayAddr  string
	RegistryAddr string
	Accounts     []string
	ProviderHTTP string
}

// Subnet is a single subnet entry. Exactly one of FVM and FEVM is set,
// according to NetworkType.
type Subnet struct {
	ID          hierarchical.SubnetID
	NetworkName string
	NetworkType string
	FVM         *FVMSubnet
	FEVM        *FEVMSubnet
}

type rawSubnet struct {
	ID          string          `toml:"id"`
	NetworkName string          `toml:"network_name"`
	Config      rawSubnetConfig `toml:"config"`
}

type rawSubnetConfig struct {
	NetworkType  string   `toml:"network_type"`
	GatewayAddr  string   `toml:"gateway_addr"`
	Accounts     []string `toml:"accounts"`
	JSONRPCAPI   string   `toml:"jsonrpc_api_http"`
	AuthToken    string   `toml:"auth_token"`
	ProviderHTTP string   `toml:"provider_http"`
	RegistryAddr string   `toml:"registry_addr"`
}

func (rs rawSubnet) parse() (*Subnet, error) {
	id, err := hierarchical.SubnetIDFromString(rs.ID)
	if err != nil {
		return nil, xerrors.Errorf("subnet id %q: %w", rs.ID, err)
	}
	sn := &Subnet{
		ID:          id,
		NetworkName: rs.NetworkName,
		NetworkType: rs.Config.NetworkType,
	}
	switch rs.Config.NetworkType {
	case NetworkFVM:
		fvm, err := rs.Config.parseFVM()
		if err != nil {
			return nil, xerrors.Errorf("subnet %s: %w", id, err)
		}
		sn.FVM = fvm
	case NetworkFEVM:
		fevm, err := rs.Config.parseFEVM()
		if err != nil {
			return nil, xerrors.Errorf("subnet %s: %w", id, err)
		}
		sn.FEVM = fevm
	default:
		return nil, xerrors.Errorf("subnet %s: unknown network type %q", id, rs.Config.NetworkType)
	}
	return sn, nil
}

func (rc rawSubnetConfig) parseFVM() (*FVMSubnet, error) {
	if rc.JSONRPCAPI == "" {
		return nil, xerrors.New("missing jsonrpc_api_http")
	}
	fvm := &FVMSubnet{
		JSONRPCAPI: rc.JSONRPCAPI,
		AuthToken:  rc.AuthToken,
	}
	if rc.GatewayAddr != "" {
		addr, err := address.NewFromString(rc.GatewayAddr)
		if err != nil {
			return nil, xerrors.Errorf("gateway address %q: %w", rc.GatewayAddr, err)
		}
		fvm.GatewayAddr = addr
	}
	for _, a := range rc.Accounts {
		addr, err := address.NewFromString(a)
		if err != nil {
			return nil, xerrors.Errorf("account address %q: %w", a, err)
		}
		fvm.Accounts = append(fvm.Accounts, addr)
	}
	return fvm, nil
}

func (rc rawSubnetConfig) parseFEVM() (*FEVMSubnet, error) {
	if rc.ProviderHTTP == "" {
		return nil, xerrors.New("missing provider_http")
	}
	return &FEVMSubnet{
		GatewayAddr:  rc.GatewayAddr,
		RegistryAddr: rc.RegistryAddr,
		Accounts:     rc.Accounts,
		ProviderHTTP: rc.ProviderHTTP,
	}, nil
}

// HasAccount reports whether addr is one of the accounts configured for
// the subnet.
func (s *Subnet) HasAccount(addr address.Address) bool {
	if s.FVM == nil {
		return false
	}
	for _, a := range s.FVM.Accounts {
		if a == addr {
			return true
		}
	}
	return false
}
