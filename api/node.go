package api

import (
	"context"

	address "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"

	"github.com/consensus-shipyard/ipc-agent/gateway"
	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

// NodeAPI is the capability the agent needs from a subnet's node.
//
// One implementation exists per supported chain runtime; the rest of
// the agent only depends on this interface. Every call may suspend on
// network I/O and may fail independently of local state: callers must
// not assume atomicity across two calls.
type NodeAPI interface {
	// ChainHead returns the current head of the chain.
	ChainHead(ctx context.Context) (*TipSet, error)

	// MpoolPushMessage signs a message with the node's key store and
	// pushes it to the memory pool. Make sure `From` is present in the
	// node's key store.
	MpoolPushMessage(ctx context.Context, msg *Message) (*SignedMessage, error)

	// StateWaitMsg waits for a message to land on chain and returns
	// its receipt and the epoch at which it was included.
	StateWaitMsg(ctx context.Context, c cid.Cid) (*MsgLookup, error)

	// WalletDefaultAddress returns the default wallet of the node.
	WalletDefaultAddress(ctx context.Context) (address.Address, error)

	// WalletList lists the wallets in the node.
	WalletList(ctx context.Context) ([]address.Address, error)

	// WalletNew creates a new wallet in the node's key store.
	WalletNew(ctx context.Context, typ KeyType) (address.Address, error)

	// WalletBalance returns the balance of an address.
	WalletBalance(ctx context.Context, addr address.Address) (abi.TokenAmount, error)

	// IPCReadGatewayState returns the state of the gateway actor.
	IPCReadGatewayState(ctx context.Context, gw address.Address) (*gateway.State, error)

	// IPCReadSubnetActorState returns the state of the subnet actor
	// governing `id` in this node's chain.
	IPCReadSubnetActorState(ctx context.Context, id hierarchical.SubnetID) (*gateway.SubnetActorState, error)

	// IPCGetCheckpointTemplate returns the bottom-up checkpoint
	// template frozen by the gateway at `epoch`.
	IPCGetCheckpointTemplate(ctx context.Context, gw address.Address, epoch abi.ChainEpoch) (*gateway.BottomUpCheckpoint, error)

	// IPCGetCheckpoint returns the checkpoint committed for a child
	// subnet at `epoch`.
	IPCGetCheckpoint(ctx context.Context, id hierarchical.SubnetID, epoch abi.ChainEpoch) (*gateway.BottomUpCheckpoint, error)

	// IPCGetPrevCheckpointForChild returns the commitment of the last
	// checkpoint committed for a child subnet.
	IPCGetPrevCheckpointForChild(ctx context.Context, gw address.Address, id hierarchical.SubnetID) (cid.Cid, error)

	// IPCListCheckpoints returns the checkpoints committed for a
	// subnet with epoch in [from, to].
	IPCListCheckpoints(ctx context.Context, id hierarchical.SubnetID, from, to abi.ChainEpoch) ([]*gateway.BottomUpCheckpoint, error)

	// IPCHasVotedBottomUp determines if a validator has already voted
	// for a bottom-up checkpoint at an epoch.
	IPCHasVotedBottomUp(ctx context.Context, id hierarchical.SubnetID, epoch abi.ChainEpoch, validator address.Address) (bool, error)

	// IPCHasVotedTopDown determines if a validator has already voted
	// for a top-down checkpoint at an epoch.
	IPCHasVotedTopDown(ctx context.Context, gw address.Address, epoch abi.ChainEpoch, validator address.Address) (bool, error)

	// IPCGetTopDownMsgs returns the top-down messages committed for
	// propagation to a subnet from a specific nonce.
	IPCGetTopDownMsgs(ctx context.Context, id hierarchical.SubnetID, gw address.Address, nonce uint64) ([]*gateway.CrossMsg, error)

	// IPCGetGenesisEpoch returns the epoch at which a subnet was
	// registered in its parent.
	IPCGetGenesisEpoch(ctx context.Context, id hierarchical.SubnetID, gw address.Address) (abi.ChainEpoch, error)

	// IPCListChildSubnets returns the list of child subnets registered
	// in a gateway.
	IPCListChildSubnets(ctx context.Context, gw address.Address) ([]gateway.SubnetInfo, error)

	// IPCSubmitTopDownCheckpoint submits a top-down checkpoint vote on
	// behalf of a validator and returns the epoch at which the vote
	// was accepted.
	IPCSubmitTopDownCheckpoint(ctx context.Context, gw address.Address, validator address.Address, ch *gateway.TopDownCheckpoint) (abi.ChainEpoch, error)
}
