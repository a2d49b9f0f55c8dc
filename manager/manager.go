// Package manager drives IPC operations against subnet nodes. A
// SubnetManager wraps the connection to a single subnet's node; the
// Pool keeps one per configured subnet and the CheckpointRelay
// coordinates the parent and child sides of checkpoint submission.
package manager

import (
	"context"

	address "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/exitcode"
	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/api"
	"github.com/consensus-shipyard/ipc-agent/gateway"
	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

var log = logging.Logger("manager")

// SubnetManager performs IPC operations through the node of one
// subnet. Operations that act on a child subnet (Fund, checkpoint
// listing) run on the manager of the child's parent; operations that
// act inside a subnet (Release, Propagate, SendValue) run on the
// manager of that subnet.
type SubnetManager interface {
	// Fund injects funds from an account in this subnet into a child
	// subnet and returns the epoch at which the message executed.
	Fund(ctx context.Context, id hierarchical.SubnetID, from, to address.Address, amount abi.TokenAmount) (abi.ChainEpoch, error)

	// Release moves funds from an account in this subnet up to its
	// parent and returns the epoch at which the message executed.
	Release(ctx context.Context, from, to address.Address, amount abi.TokenAmount) (abi.ChainEpoch, error)

	// Propagate executes a cross-message pending in this subnet's
	// postbox towards its destination.
	Propagate(ctx context.Context, from address.Address, postboxCid cid.Cid) error

	// SendValue transfers funds between two accounts of this subnet.
	SendValue(ctx context.Context, from, to address.Address, amount abi.TokenAmount) error

	// SubmitBottomUpCheckpoint submits a signed bottom-up checkpoint of
	// a child subnet to that child's actor in this subnet.
	SubmitBottomUpCheckpoint(ctx context.Context, submitter address.Address, ch *gateway.BottomUpCheckpoint) (abi.ChainEpoch, error)

	// SubmitTopDownCheckpoint submits a top-down checkpoint assembled
	// from the parent's view to this subnet's gateway.
	SubmitTopDownCheckpoint(ctx context.Context, submitter address.Address, ch *gateway.TopDownCheckpoint) (abi.ChainEpoch, error)

	// GetTopDownMsgs returns the top-down messages committed in this
	// subnet for a child, starting at nonce. The returned sequence is
	// checked to be gap-free.
	GetTopDownMsgs(ctx context.Context, id hierarchical.SubnetID, nonce uint64) ([]*gateway.CrossMsg, error)

	// ListChildSubnets lists the child subnets registered in this
	// subnet's gateway.
	ListChildSubnets(ctx context.Context) ([]gateway.SubnetInfo, error)

	// QueryValidatorSet returns the validators of a child subnet.
	QueryValidatorSet(ctx context.Context, id hierarchical.SubnetID) ([]hierarchical.Validator, error)

	// WalletNew creates a key of the given type in the node.
	WalletNew(ctx context.Context, typ api.KeyType) (address.Address, error)

	// WalletList lists the addresses held by the node.
	WalletList(ctx context.Context) ([]address.Address, error)

	// WalletBalance returns the balance of an address in this subnet.
	WalletBalance(ctx context.Context, addr address.Address) (abi.TokenAmount, error)

	// Node exposes the underlying node API for callers that need
	// reads this interface does not wrap.
	Node() api.NodeAPI
}

// LotusSubnetManager implements SubnetManager over the JSON-RPC API of
// a Lotus-derived subnet node.
type LotusSubnetManager struct {
	id      hierarchical.SubnetID
	gateway address.Address
	node    api.NodeAPI

	cm *crossMsgPool
}

var _ SubnetManager = &LotusSubnetManager{}

// NewLotusSubnetManager wraps a node connection for the given subnet.
// An undefined gateway address falls back to the genesis default.
func NewLotusSubnetManager(id hierarchical.SubnetID, gw address.Address, node api.NodeAPI) *LotusSubnetManager {
	if gw == address.Undef {
		gw = gateway.DefaultGatewayAddr
	}
	return &LotusSubnetManager{
		id:      id,
		gateway: gw,
		node:    node,
		cm:      newCrossMsgPool(),
	}
}

func (m *LotusSubnetManager) Node() api.NodeAPI {
	return m.node
}

// pushAndWait pushes a message through the node's mempool and blocks
// until it is included on chain and executed successfully.
func (m *LotusSubnetManager) pushAndWait(ctx context.Context, msg *api.Message) (*api.MsgLookup, error) {
	smsg, err := m.node.MpoolPushMessage(ctx, msg)
	if err != nil {
		return nil, xerrors.Errorf("pushing message to subnet %s: %w", m.id, err)
	}
	log.Debugw("pushed message", "subnet", m.id, "cid", smsg.CID, "to", msg.To, "method", msg.Method)

	lookup, err := m.node.StateWaitMsg(ctx, smsg.CID)
	if err != nil {
		return nil, xerrors.Errorf("waiting for message %s in subnet %s: %w", smsg.CID, m.id, err)
	}
	if lookup.Receipt.ExitCode != exitcode.Ok {
		return nil, xerrors.Errorf("message %s failed in subnet %s with exit code %d", smsg.CID, m.id, lookup.Receipt.ExitCode)
	}
	return lookup, nil
}

func (m *LotusSubnetManager) Fund(
	ctx context.Context, id hierarchical.SubnetID,
	from, to address.Address, amount abi.TokenAmount) (abi.ChainEpoch, error) {

	if id.Parent() != m.id {
		return 0, xerrors.Errorf("subnet %s is not a child of %s: %w", id, m.id, ErrUnknownSubnet)
	}

	msg := &api.Message{
		To:    m.gateway,
		From:  from,
		Value: amount,
	}
	if to == from {
		// The gateway credits the caller, a plain fund call suffices.
		serparams, err := gateway.SerializeParams(&gateway.SubnetIDParam{ID: id.String()})
		if err != nil {
			return 0, xerrors.Errorf("serializing fund params: %w", err)
		}
		msg.Method = gateway.Methods.Fund
		msg.Params = serparams
	} else {
		// Funding a different receiver goes through an explicit
		// cross-message so the gateway credits `to` in the child.
		serparams, err := gateway.SerializeParams(&gateway.CrossMsgParams{
			Destination: id,
			Msg: gateway.StorableMsg{
				From:   gateway.IPCAddress{SubnetID: m.id, RawAddress: from},
				To:     gateway.IPCAddress{SubnetID: id, RawAddress: to},
				Method: gateway.MethodSend,
				Value:  amount,
				Params: []byte{},
			},
		})
		if err != nil {
			return 0, xerrors.Errorf("serializing cross-msg params: %w", err)
		}
		msg.Method = gateway.Methods.SendCross
		msg.Params = serparams
	}

	lookup, err := m.pushAndWait(ctx, msg)
	if err != nil {
		return 0, err
	}
	log.Infow("funded subnet", "subnet", id, "from", from, "to", to, "amount", amount,
		"direction", hierarchical.CrossMsgType(m.id, id), "epoch", lookup.Height)
	return lookup.Height, nil
}

func (m *LotusSubnetManager) Release(
	ctx context.Context, from, to address.Address, amount abi.TokenAmount) (abi.ChainEpoch, error) {

	msg := &api.Message{
		To:    m.gateway,
		From:  from,
		Value: amount,
	}
	if to == from {
		msg.Method = gateway.Methods.Release
	} else {
		serparams, err := gateway.SerializeParams(&gateway.CrossMsgParams{
			Destination: m.id.Parent(),
			Msg: gateway.StorableMsg{
				From:   gateway.IPCAddress{SubnetID: m.id, RawAddress: from},
				To:     gateway.IPCAddress{SubnetID: m.id.Parent(), RawAddress: to},
				Method: gateway.MethodSend,
				Value:  amount,
				Params: []byte{},
			},
		})
		if err != nil {
			return 0, xerrors.Errorf("serializing cross-msg params: %w", err)
		}
		msg.Method = gateway.Methods.SendCross
		msg.Params = serparams
	}

	lookup, err := m.pushAndWait(ctx, msg)
	if err != nil {
		return 0, err
	}
	log.Infow("released funds to parent", "subnet", m.id, "from", from, "to", to, "amount", amount,
		"direction", hierarchical.CrossMsgType(m.id, m.id.Parent()), "epoch", lookup.Height)
	return lookup.Height, nil
}

func (m *LotusSubnetManager) Propagate(ctx context.Context, from address.Address, postboxCid cid.Cid) error {
	if m.cm.isPropagated(postboxCid) {
		return xerrors.Errorf("postbox item %s in subnet %s: %w", postboxCid, m.id, ErrAlreadyExecuted)
	}

	serparams, err := gateway.SerializeParams(&gateway.PropagateParams{PostboxCid: postboxCid})
	if err != nil {
		return xerrors.Errorf("serializing propagate params: %w", err)
	}
	_, err = m.pushAndWait(ctx, &api.Message{
		To:     m.gateway,
		From:   from,
		Value:  abi.NewTokenAmount(0),
		Method: gateway.Methods.Propagate,
		Params: serparams,
	})
	if err != nil {
		return err
	}

	m.cm.markPropagated(postboxCid)
	log.Infow("propagated cross-message", "subnet", m.id, "postbox", postboxCid)
	return nil
}

func (m *LotusSubnetManager) SendValue(ctx context.Context, from, to address.Address, amount abi.TokenAmount) error {
	_, err := m.pushAndWait(ctx, &api.Message{
		To:     to,
		From:   from,
		Value:  amount,
		Method: gateway.MethodSend,
	})
	if err != nil {
		return err
	}
	log.Infow("sent value", "subnet", m.id, "from", from, "to", to, "amount", amount)
	return nil
}

func (m *LotusSubnetManager) WalletNew(ctx context.Context, typ api.KeyType) (address.Address, error) {
	return m.node.WalletNew(ctx, typ)
}

func (m *LotusSubnetManager) WalletList(ctx context.Context) ([]address.Address, error) {
	return m.node.WalletList(ctx)
}

func (m *LotusSubnetManager) WalletBalance(ctx context.Context, addr address.Address) (abi.TokenAmount, error) {
	return m.node.WalletBalance(ctx, addr)
}
