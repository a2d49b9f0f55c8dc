package hierarchical

import (
	"strings"

	addr "github.com/filecoin-project/go-address"
	"golang.org/x/xerrors"
)

// Validator is one member of a subnet's validator set.
type Validator struct {
	Subnet  SubnetID
	Addr    addr.Address
	NetAddr string
}

// String renders a validator as subnet:address@netaddr. The network
// address is opaque here, it may be a libp2p multiaddr or a host:port
// pair depending on the subnet's consensus.
func (v Validator) String() string {
	return v.Subnet.String() + ":" + v.Addr.String() + "@" + v.NetAddr
}

// ValidatorsToString encodes a validator set as a comma-separated
// list, the format subnet nodes take in their configuration.
func ValidatorsToString(validators []Validator) string {
	parts := make([]string, len(validators))
	for i, v := range validators {
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}

// ValidatorsFromString parses the comma-separated encoding produced by
// ValidatorsToString. Empty entries are skipped.
func ValidatorsFromString(input string) ([]Validator, error) {
	var validators []Validator
	for _, entry := range strings.Split(input, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		idPart, netAddr, found := strings.Cut(entry, "@")
		if !found {
			return nil, xerrors.Errorf("validator %q has no network address", entry)
		}
		subnetStr, addrStr, found := cutLast(idPart, ":")
		if !found {
			return nil, xerrors.Errorf("validator %q has no wallet address", entry)
		}
		a, err := addr.NewFromString(addrStr)
		if err != nil {
			return nil, xerrors.Errorf("parsing validator address %q: %w", addrStr, err)
		}
		id, err := SubnetIDFromString(subnetStr)
		if err != nil {
			return nil, err
		}
		validators = append(validators, Validator{Subnet: id, Addr: a, NetAddr: netAddr})
	}
	return validators, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
