package manager

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/gateway"
	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

func (m *LotusSubnetManager) ListChildSubnets(ctx context.Context) ([]gateway.SubnetInfo, error) {
	subnets, err := m.node.IPCListChildSubnets(ctx, m.gateway)
	if err != nil {
		return nil, xerrors.Errorf("listing child subnets of %s: %w", m.id, err)
	}
	return subnets, nil
}

// QueryValidatorSet reads the validator set of a child subnet from the
// subnet actor in this subnet's chain.
func (m *LotusSubnetManager) QueryValidatorSet(
	ctx context.Context, id hierarchical.SubnetID) ([]hierarchical.Validator, error) {

	if id.Parent() != m.id {
		return nil, xerrors.Errorf("subnet %s is not a child of %s: %w", id, m.id, ErrUnknownSubnet)
	}
	st, err := m.node.IPCReadSubnetActorState(ctx, id)
	if err != nil {
		return nil, xerrors.Errorf("reading subnet actor state for %s: %w", id, err)
	}
	return st.ValidatorSet, nil
}
