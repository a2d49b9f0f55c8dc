package api

import (
	"context"

	address "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"

	"github.com/consensus-shipyard/ipc-agent/gateway"
	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

// NodeStruct implements NodeAPI over a struct of function pointers so
// it can be populated by a JSON-RPC merge client.
type NodeStruct struct {
	Internal struct {
		ChainHead                    func(ctx context.Context) (*TipSet, error)
		MpoolPushMessage             func(ctx context.Context, msg *Message) (*SignedMessage, error)
		StateWaitMsg                 func(ctx context.Context, c cid.Cid) (*MsgLookup, error)
		WalletDefaultAddress         func(ctx context.Context) (address.Address, error)
		WalletList                   func(ctx context.Context) ([]address.Address, error)
		WalletNew                    func(ctx context.Context, typ KeyType) (address.Address, error)
		WalletBalance                func(ctx context.Context, addr address.Address) (abi.TokenAmount, error)
		IPCReadGatewayState          func(ctx context.Context, gw address.Address) (*gateway.State, error)
		IPCReadSubnetActorState      func(ctx context.Context, id hierarchical.SubnetID) (*gateway.SubnetActorState, error)
		IPCGetCheckpointTemplate     func(ctx context.Context, gw address.Address, epoch abi.ChainEpoch) (*gateway.BottomUpCheckpoint, error)
		IPCGetCheckpoint             func(ctx context.Context, id hierarchical.SubnetID, epoch abi.ChainEpoch) (*gateway.BottomUpCheckpoint, error)
		IPCGetPrevCheckpointForChild func(ctx context.Context, gw address.Address, id hierarchical.SubnetID) (cid.Cid, error)
		IPCListCheckpoints           func(ctx context.Context, id hierarchical.SubnetID, from, to abi.ChainEpoch) ([]*gateway.BottomUpCheckpoint, error)
		IPCHasVotedBottomUp          func(ctx context.Context, id hierarchical.SubnetID, epoch abi.ChainEpoch, validator address.Address) (bool, error)
		IPCHasVotedTopDown           func(ctx context.Context, gw address.Address, epoch abi.ChainEpoch, validator address.Address) (bool, error)
		IPCGetTopDownMsgs            func(ctx context.Context, id hierarchical.SubnetID, gw address.Address, nonce uint64) ([]*gateway.CrossMsg, error)
		IPCGetGenesisEpoch           func(ctx context.Context, id hierarchical.SubnetID, gw address.Address) (abi.ChainEpoch, error)
		IPCListChildSubnets          func(ctx context.Context, gw address.Address) ([]gateway.SubnetInfo, error)
		IPCSubmitTopDownCheckpoint   func(ctx context.Context, gw address.Address, validator address.Address, ch *gateway.TopDownCheckpoint) (abi.ChainEpoch, error)
	}
}

func (s *NodeStruct) ChainHead(ctx context.Context) (*TipSet, error) {
	return s.Internal.ChainHead(ctx)
}

func (s *NodeStruct) MpoolPushMessage(ctx context.Context, msg *Message) (*SignedMessage, error) {
	return s.Internal.MpoolPushMessage(ctx, msg)
}

func (s *NodeStruct) StateWaitMsg(ctx context.Context, c cid.Cid) (*MsgLookup, error) {
	return s.Internal.StateWaitMsg(ctx, c)
}

func (s *NodeStruct) WalletDefaultAddress(ctx context.Context) (address.Address, error) {
	return s.Internal.WalletDefaultAddress(ctx)
}

func (s *NodeStruct) WalletList(ctx context.Context) ([]address.Address, error) {
	return s.Internal.WalletList(ctx)
}

func (s *NodeStruct) WalletNew(ctx context.Context, typ KeyType) (address.Address, error) {
	return s.Internal.WalletNew(ctx, typ)
}

func (s *NodeStruct) WalletBalance(ctx context.Context, addr address.Address) (abi.TokenAmount, error) {
	return s.Internal.WalletBalance(ctx, addr)
}

func (s *NodeStruct) IPCReadGatewayState(ctx context.Context, gw address.Address) (*gateway.State, error) {
	return s.Internal.IPCReadGatewayState(ctx, gw)
}

func (s *NodeStruct) IPCReadSubnetActorState(ctx context.Context, id hierarchical.SubnetID) (*gateway.SubnetActorState, error) {
	return s.Internal.IPCReadSubnetActorState(ctx, id)
}

func (s *NodeStruct) IPCGetCheckpointTemplate(ctx context.Context, gw address.Address, epoch abi.ChainEpoch) (*gateway.BottomUpCheckpoint, error) {
	return s.Internal.IPCGetCheckpointTemplate(ctx, gw, epoch)
}

func (s *NodeStruct) IPCGetCheckpoint(ctx context.Context, id hierarchical.SubnetID, epoch abi.ChainEpoch) (*gateway.BottomUpCheckpoint, error) {
	return s.Internal.IPCGetCheckpoint(ctx, id, epoch)
}

func (s *NodeStruct) IPCGetPrevCheckpointForChild(ctx context.Context, gw address.Address, id hierarchical.SubnetID) (cid.Cid, error) {
	return s.Internal.IPCGetPrevCheckpointForChild(ctx, gw, id)
}

func (s *NodeStruct) IPCListCheckpoints(ctx context.Context, id hierarchical.SubnetID, from, to abi.ChainEpoch) ([]*gateway.BottomUpCheckpoint, error) {
	return s.Internal.IPCListCheckpoints(ctx, id, from, to)
}

func (s *NodeStruct) IPCHasVotedBottomUp(ctx context.Context, id hierarchical.SubnetID, epoch abi.ChainEpoch, validator address.Address) (bool, error) {
	return s.Internal.IPCHasVotedBottomUp(ctx, id, epoch, validator)
}

func (s *NodeStruct) IPCHasVotedTopDown(ctx context.Context, gw address.Address, epoch abi.ChainEpoch, validator address.Address) (bool, error) {
	return s.Internal.IPCHasVotedTopDown(ctx, gw, epoch, validator)
}

func (s *NodeStruct) IPCGetTopDownMsgs(ctx context.Context, id hierarchical.SubnetID, gw address.Address, nonce uint64) ([]*gateway.CrossMsg, error) {
	return s.Internal.IPCGetTopDownMsgs(ctx, id, gw, nonce)
}

func (s *NodeStruct) IPCGetGenesisEpoch(ctx context.Context, id hierarchical.SubnetID, gw address.Address) (abi.ChainEpoch, error) {
	return s.Internal.IPCGetGenesisEpoch(ctx, id, gw)
}

func (s *NodeStruct) IPCListChildSubnets(ctx context.Context, gw address.Address) ([]gateway.SubnetInfo, error) {
	return s.Internal.IPCListChildSubnets(ctx, gw)
}

func (s *NodeStruct) IPCSubmitTopDownCheckpoint(ctx context.Context, gw address.Address, validator address.Address, ch *gateway.TopDownCheckpoint) (abi.ChainEpoch, error) {
	return s.Internal.IPCSubmitTopDownCheckpoint(ctx, gw, validator, ch)
}

var _ NodeAPI = &NodeStruct{}
