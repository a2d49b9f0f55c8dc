// Package server exposes the agent's operations over JSON-RPC.
package server

import (
	"context"

	address "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/api"
	"github.com/consensus-shipyard/ipc-agent/config"
	"github.com/consensus-shipyard/ipc-agent/gateway"
	"github.com/consensus-shipyard/ipc-agent/hierarchical"
	"github.com/consensus-shipyard/ipc-agent/manager"
)

var log = logging.Logger("server")

// errInternal is returned for server-side configuration problems. The
// detail is logged, never sent to the client.
var errInternal = xerrors.New("internal server error")

// AgentAPI is the JSON-RPC handler of the agent. Every exported method
// becomes an RPC method under the IPCAgent namespace.
type AgentAPI struct {
	pool  *manager.Pool
	relay *manager.CheckpointRelay
}

func NewAgentAPI(pool *manager.Pool) *AgentAPI {
	return &AgentAPI{
		pool:  pool,
		relay: manager.NewCheckpointRelay(pool),
	}
}

// checkSubnet verifies a subnet entry is complete enough to serve
// requests. Details of what is missing stay in the log.
func checkSubnet(sn *config.Subnet) error {
	if sn.FVM == nil || sn.FVM.JSONRPCAPI == "" {
		log.Errorw("subnet has no node endpoint configured", "subnet", sn.ID)
		return errInternal
	}
	if sn.FVM.AuthToken == "" {
		log.Errorw("subnet has no auth token configured", "subnet", sn.ID)
		return errInternal
	}
	return nil
}

type FundParams struct {
	Subnet string  `json:"subnet"`
	From   string  `json:"from,omitempty"`
	To     string  `json:"to,omitempty"`
	Amount float64 `json:"amount"`
}

type EpochResult struct {
	Epoch abi.ChainEpoch `json:"epoch"`
}

// Fund injects funds from the parent of a subnet into it.
func (a *AgentAPI) Fund(ctx context.Context, params FundParams) (*EpochResult, error) {
	id, err := hierarchical.SubnetIDFromString(params.Subnet)
	if err != nil {
		return nil, err
	}
	conn, err := a.pool.GetParent(id)
	if err != nil {
		return nil, err
	}
	if err := checkSubnet(conn.Subnet); err != nil {
		return nil, err
	}
	from, err := parseFrom(conn.Subnet, params.From)
	if err != nil {
		return nil, err
	}
	to := from
	if params.To != "" {
		if to, err = address.NewFromString(params.To); err != nil {
			return nil, xerrors.Errorf("parsing address %q: %w", params.To, err)
		}
	}
	amount, err := f64ToTokenAmount(params.Amount)
	if err != nil {
		return nil, err
	}

	epoch, err := conn.Manager.Fund(ctx, id, from, to, amount)
	if err != nil {
		return nil, err
	}
	return &EpochResult{Epoch: epoch}, nil
}

type ReleaseParams struct {
	Subnet string  `json:"subnet"`
	From   string  `json:"from,omitempty"`
	To     string  `json:"to,omitempty"`
	Amount float64 `json:"amount"`
}

// Release moves funds from a subnet up to its parent.
func (a *AgentAPI) Release(ctx context.Context, params ReleaseParams) (*EpochResult, error) {
	id, err := hierarchical.SubnetIDFromString(params.Subnet)
	if err != nil {
		return nil, err
	}
	if id.IsRoot() {
		return nil, xerrors.Errorf("subnet %s: %w", id, manager.ErrNoParent)
	}
	conn, err := a.pool.Get(id)
	if err != nil {
		return nil, err
	}
	if err := checkSubnet(conn.Subnet); err != nil {
		return nil, err
	}
	from, err := parseFrom(conn.Subnet, params.From)
	if err != nil {
		return nil, err
	}
	to := from
	if params.To != "" {
		if to, err = address.NewFromString(params.To); err != nil {
			return nil, xerrors.Errorf("parsing address %q: %w", params.To, err)
		}
	}
	amount, err := f64ToTokenAmount(params.Amount)
	if err != nil {
		return nil, err
	}

	epoch, err := conn.Manager.Release(ctx, from, to, amount)
	if err != nil {
		return nil, err
	}
	return &EpochResult{Epoch: epoch}, nil
}

type PropagateParams struct {
	Subnet     string `json:"subnet"`
	From       string `json:"from,omitempty"`
	PostboxCid string `json:"postbox_cid"`
}

// Propagate executes a cross-message pending in a subnet's postbox.
func (a *AgentAPI) Propagate(ctx context.Context, params PropagateParams) error {
	id, err := hierarchical.SubnetIDFromString(params.Subnet)
	if err != nil {
		return err
	}
	conn, err := a.pool.Get(id)
	if err != nil {
		return err
	}
	if err := checkSubnet(conn.Subnet); err != nil {
		return err
	}
	from, err := parseFrom(conn.Subnet, params.From)
	if err != nil {
		return err
	}
	c, err := cid.Decode(params.PostboxCid)
	if err != nil {
		return xerrors.Errorf("parsing postbox cid %q: %w", params.PostboxCid, err)
	}
	return conn.Manager.Propagate(ctx, from, c)
}

type SendValueParams struct {
	Subnet string  `json:"subnet"`
	From   string  `json:"from,omitempty"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// SendValue transfers funds between two addresses of a subnet.
func (a *AgentAPI) SendValue(ctx context.Context, params SendValueParams) error {
	id, err := hierarchical.SubnetIDFromString(params.Subnet)
	if err != nil {
		return err
	}
	conn, err := a.pool.Get(id)
	if err != nil {
		return err
	}
	if err := checkSubnet(conn.Subnet); err != nil {
		return err
	}
	from, err := parseFrom(conn.Subnet, params.From)
	if err != nil {
		return err
	}
	to, err := address.NewFromString(params.To)
	if err != nil {
		return xerrors.Errorf("parsing address %q: %w", params.To, err)
	}
	amount, err := f64ToTokenAmount(params.Amount)
	if err != nil {
		return err
	}
	return conn.Manager.SendValue(ctx, from, to, amount)
}

type SubmitCheckpointParams struct {
	Subnet string         `json:"subnet"`
	From   string         `json:"from,omitempty"`
	Epoch  abi.ChainEpoch `json:"epoch"`
}

// SubmitBottomUpCheckpoint assembles and submits the bottom-up
// checkpoint of a subnet for a window epoch.
func (a *AgentAPI) SubmitBottomUpCheckpoint(ctx context.Context, params SubmitCheckpointParams) (*EpochResult, error) {
	id, conn, err := a.childAndParent(params.Subnet)
	if err != nil {
		return nil, err
	}
	submitter, err := parseFrom(conn.Subnet, params.From)
	if err != nil {
		return nil, err
	}
	epoch, err := a.relay.SubmitBottomUp(ctx, id, submitter, params.Epoch)
	if err != nil {
		return nil, err
	}
	return &EpochResult{Epoch: epoch}, nil
}

// SubmitTopDownCheckpoint collects finalized top-down messages from
// the parent and submits them as a vote in the child.
func (a *AgentAPI) SubmitTopDownCheckpoint(ctx context.Context, params SubmitCheckpointParams) (*EpochResult, error) {
	id, err := hierarchical.SubnetIDFromString(params.Subnet)
	if err != nil {
		return nil, err
	}
	conn, err := a.pool.Get(id)
	if err != nil {
		return nil, err
	}
	if err := checkSubnet(conn.Subnet); err != nil {
		return nil, err
	}
	submitter, err := parseFrom(conn.Subnet, params.From)
	if err != nil {
		return nil, err
	}
	epoch, err := a.relay.SubmitTopDown(ctx, id, submitter, params.Epoch)
	if err != nil {
		return nil, err
	}
	return &EpochResult{Epoch: epoch}, nil
}

// childAndParent resolves a subnet ID and checks the parent-side
// connection used to act on it.
func (a *AgentAPI) childAndParent(subnet string) (hierarchical.SubnetID, *manager.Connection, error) {
	id, err := hierarchical.SubnetIDFromString(subnet)
	if err != nil {
		return hierarchical.UndefID, nil, err
	}
	conn, err := a.pool.GetParent(id)
	if err != nil {
		return hierarchical.UndefID, nil, err
	}
	if err := checkSubnet(conn.Subnet); err != nil {
		return hierarchical.UndefID, nil, err
	}
	return id, conn, nil
}

type ListCheckpointsParams struct {
	Subnet    string         `json:"subnet"`
	FromEpoch abi.ChainEpoch `json:"from_epoch"`
	ToEpoch   abi.ChainEpoch `json:"to_epoch"`
}

// ListCheckpoints returns the bottom-up checkpoints committed for a
// subnet within an epoch range.
func (a *AgentAPI) ListCheckpoints(ctx context.Context, params ListCheckpointsParams) ([]*gateway.BottomUpCheckpoint, error) {
	id, _, err := a.childAndParent(params.Subnet)
	if err != nil {
		return nil, err
	}
	return a.relay.ListCheckpoints(ctx, id, params.FromEpoch, params.ToEpoch)
}

type HasVotedParams struct {
	Subnet    string         `json:"subnet"`
	Validator string         `json:"validator"`
	Epoch     abi.ChainEpoch `json:"epoch"`
	Direction string         `json:"direction"`
}

// HasVoted reports whether a validator already voted for the
// checkpoint of a subnet at an epoch. Direction selects between the
// bottom-up vote recorded in the parent and the top-down vote recorded
// in the subnet itself.
func (a *AgentAPI) HasVoted(ctx context.Context, params HasVotedParams) (bool, error) {
	validator, err := address.NewFromString(params.Validator)
	if err != nil {
		return false, xerrors.Errorf("parsing address %q: %w", params.Validator, err)
	}
	switch hierarchical.MsgTypeFromString(params.Direction) {
	case hierarchical.BottomUp:
		id, _, err := a.childAndParent(params.Subnet)
		if err != nil {
			return false, err
		}
		return a.relay.HasVotedBottomUp(ctx, id, params.Epoch, validator)
	case hierarchical.TopDown:
		id, err := hierarchical.SubnetIDFromString(params.Subnet)
		if err != nil {
			return false, err
		}
		conn, err := a.pool.Get(id)
		if err != nil {
			return false, err
		}
		if err := checkSubnet(conn.Subnet); err != nil {
			return false, err
		}
		return a.relay.HasVotedTopDown(ctx, id, params.Epoch, validator)
	default:
		return false, xerrors.Errorf("unknown checkpoint direction %q", params.Direction)
	}
}

type SubnetParams struct {
	Subnet string `json:"subnet"`
}

// ListChildSubnets lists the child subnets registered in a subnet's
// gateway.
func (a *AgentAPI) ListChildSubnets(ctx context.Context, params SubnetParams) ([]gateway.SubnetInfo, error) {
	id, err := hierarchical.SubnetIDFromString(params.Subnet)
	if err != nil {
		return nil, err
	}
	conn, err := a.pool.Get(id)
	if err != nil {
		return nil, err
	}
	if err := checkSubnet(conn.Subnet); err != nil {
		return nil, err
	}
	return conn.Manager.ListChildSubnets(ctx)
}

type ValidatorSetResult struct {
	Validators []hierarchical.Validator `json:"validators"`
	// ValidatorSet is the same set in the string encoding consumed by
	// subnet node configuration.
	ValidatorSet string `json:"validator_set"`
}

// QueryValidatorSet returns the validators of a subnet as registered
// in its parent.
func (a *AgentAPI) QueryValidatorSet(ctx context.Context, params SubnetParams) (*ValidatorSetResult, error) {
	id, conn, err := a.childAndParent(params.Subnet)
	if err != nil {
		return nil, err
	}
	validators, err := conn.Manager.QueryValidatorSet(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ValidatorSetResult{
		Validators:   validators,
		ValidatorSet: hierarchical.ValidatorsToString(validators),
	}, nil
}

// TopDownExecuted returns the epoch of the last executed top-down
// voting round in a subnet.
func (a *AgentAPI) TopDownExecuted(ctx context.Context, params SubnetParams) (*EpochResult, error) {
	id, err := hierarchical.SubnetIDFromString(params.Subnet)
	if err != nil {
		return nil, err
	}
	conn, err := a.pool.Get(id)
	if err != nil {
		return nil, err
	}
	if err := checkSubnet(conn.Subnet); err != nil {
		return nil, err
	}
	epoch, err := a.relay.TopDownExecuted(ctx, id)
	if err != nil {
		return nil, err
	}
	return &EpochResult{Epoch: epoch}, nil
}

type WalletNewParams struct {
	Subnet  string `json:"subnet"`
	KeyType string `json:"key_type"`
}

// WalletNew creates a key in a subnet's node. Valid key types are
// "bls" and "secp256k1".
func (a *AgentAPI) WalletNew(ctx context.Context, params WalletNewParams) (address.Address, error) {
	typ := api.KeyType(params.KeyType)
	if typ != api.KTBLS && typ != api.KTSecp256k1 {
		return address.Undef, xerrors.Errorf("unknown key type %q", params.KeyType)
	}
	id, err := hierarchical.SubnetIDFromString(params.Subnet)
	if err != nil {
		return address.Undef, err
	}
	conn, err := a.pool.Get(id)
	if err != nil {
		return address.Undef, err
	}
	if err := checkSubnet(conn.Subnet); err != nil {
		return address.Undef, err
	}
	return conn.Manager.WalletNew(ctx, typ)
}

// WalletList lists the addresses held by a subnet's node.
func (a *AgentAPI) WalletList(ctx context.Context, params SubnetParams) ([]address.Address, error) {
	id, err := hierarchical.SubnetIDFromString(params.Subnet)
	if err != nil {
		return nil, err
	}
	conn, err := a.pool.Get(id)
	if err != nil {
		return nil, err
	}
	if err := checkSubnet(conn.Subnet); err != nil {
		return nil, err
	}
	return conn.Manager.WalletList(ctx)
}

type WalletBalanceParams struct {
	Subnet  string `json:"subnet"`
	Address string `json:"address"`
}

// WalletBalance returns the balance of an address in a subnet.
func (a *AgentAPI) WalletBalance(ctx context.Context, params WalletBalanceParams) (abi.TokenAmount, error) {
	id, err := hierarchical.SubnetIDFromString(params.Subnet)
	if err != nil {
		return abi.TokenAmount{}, err
	}
	conn, err := a.pool.Get(id)
	if err != nil {
		return abi.TokenAmount{}, err
	}
	if err := checkSubnet(conn.Subnet); err != nil {
		return abi.TokenAmount{}, err
	}
	addr, err := address.NewFromString(params.Address)
	if err != nil {
		return abi.TokenAmount{}, xerrors.Errorf("parsing address %q: %w", params.Address, err)
	}
	return conn.Manager.WalletBalance(ctx, addr)
}

// ReloadConfig re-reads the config file and rebuilds the connection
// pool.
func (a *AgentAPI) ReloadConfig(ctx context.Context) error {
	if err := a.pool.Reload(ctx); err != nil {
		log.Errorw("config reload failed", "error", err)
		return err
	}
	log.Infow("config reloaded", "subnets", len(a.pool.Subnets()))
	return nil
}
