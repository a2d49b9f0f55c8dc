package manager

import (
	"context"
	"sync"
	"testing"

	address "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/exitcode"
	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"
	mh "github.com/multiformats/go-multihash"

	"github.com/consensus-shipyard/ipc-agent/api"
	"github.com/consensus-shipyard/ipc-agent/gateway"
	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

func testCid(t *testing.T, data string) cid.Cid {
	t.Helper()
	b := cid.V1Builder{Codec: cid.Raw, MhType: mh.SHA2_256}
	c, err := b.Sum([]byte(data))
	require.NoError(t, err)
	return c
}

func testAddr(t *testing.T, id uint64) address.Address {
	t.Helper()
	a, err := address.NewIDAddress(id)
	require.NoError(t, err)
	return a
}

// mockNode is an in-memory NodeAPI used to exercise managers without a
// chain behind them.
type mockNode struct {
	lk sync.Mutex

	height   abi.ChainEpoch
	headCid  cid.Cid
	exit     exitcode.ExitCode
	pushed   []*api.Message
	nonce    uint64
	wallets  []address.Address
	balance  abi.TokenAmount
	keyCount uint64

	gwState    *gateway.State
	actorState *gateway.SubnetActorState
	topdown    []*gateway.CrossMsg
	votedBU    bool
	votedTD    bool
	template   *gateway.BottomUpCheckpoint
	prevCheck  cid.Cid
	listed     []*gateway.BottomUpCheckpoint
	children   []gateway.SubnetInfo
	genesis    abi.ChainEpoch

	submittedTopDown []*gateway.TopDownCheckpoint
}

var _ api.NodeAPI = &mockNode{}

func newMockNode() *mockNode {
	headCid, _ := cid.V1Builder{Codec: cid.Raw, MhType: mh.SHA2_256}.Sum([]byte("head"))
	return &mockNode{
		height:  100,
		headCid: headCid,
		exit:    exitcode.Ok,
		balance: abi.NewTokenAmount(0),
	}
}

func (n *mockNode) lastPushed() *api.Message {
	n.lk.Lock()
	defer n.lk.Unlock()
	if len(n.pushed) == 0 {
		return nil
	}
	return n.pushed[len(n.pushed)-1]
}

func (n *mockNode) ChainHead(ctx context.Context) (*api.TipSet, error) {
	n.lk.Lock()
	defer n.lk.Unlock()
	return &api.TipSet{Cids: []cid.Cid{n.headCid}, Height: n.height}, nil
}

func (n *mockNode) MpoolPushMessage(ctx context.Context, msg *api.Message) (*api.SignedMessage, error) {
	n.lk.Lock()
	defer n.lk.Unlock()
	m := *msg
	m.Nonce = n.nonce
	n.nonce++
	n.pushed = append(n.pushed, &m)
	return &api.SignedMessage{Message: m, CID: n.headCid}, nil
}

func (n *mockNode) StateWaitMsg(ctx context.Context, c cid.Cid) (*api.MsgLookup, error) {
	n.lk.Lock()
	defer n.lk.Unlock()
	return &api.MsgLookup{
		Message: c,
		Receipt: api.MessageReceipt{ExitCode: n.exit},
		Height:  n.height,
	}, nil
}

func (n *mockNode) WalletDefaultAddress(ctx context.Context) (address.Address, error) {
	if len(n.wallets) == 0 {
		return address.Undef, nil
	}
	return n.wallets[0], nil
}

func (n *mockNode) WalletList(ctx context.Context) ([]address.Address, error) {
	return n.wallets, nil
}

func (n *mockNode) WalletNew(ctx context.Context, typ api.KeyType) (address.Address, error) {
	n.lk.Lock()
	defer n.lk.Unlock()
	n.keyCount++
	a, err := address.NewIDAddress(1000 + n.keyCount)
	if err != nil {
		return address.Undef, err
	}
	n.wallets = append(n.wallets, a)
	return a, nil
}

func (n *mockNode) WalletBalance(ctx context.Context, addr address.Address) (abi.TokenAmount, error) {
	return n.balance, nil
}

func (n *mockNode) IPCReadGatewayState(ctx context.Context, gw address.Address) (*gateway.State, error) {
	return n.gwState, nil
}

func (n *mockNode) IPCReadSubnetActorState(ctx context.Context, id hierarchical.SubnetID) (*gateway.SubnetActorState, error) {
	return n.actorState, nil
}

func (n *mockNode) IPCGetCheckpointTemplate(ctx context.Context, gw address.Address, epoch abi.ChainEpoch) (*gateway.BottomUpCheckpoint, error) {
	return n.template, nil
}

func (n *mockNode) IPCGetCheckpoint(ctx context.Context, id hierarchical.SubnetID, epoch abi.ChainEpoch) (*gateway.BottomUpCheckpoint, error) {
	for _, ch := range n.listed {
		if ch.Epoch() == epoch {
			return ch, nil
		}
	}
	return nil, nil
}

func (n *mockNode) IPCGetPrevCheckpointForChild(ctx context.Context, gw address.Address, id hierarchical.SubnetID) (cid.Cid, error) {
	return n.prevCheck, nil
}

func (n *mockNode) IPCListCheckpoints(ctx context.Context, id hierarchical.SubnetID, from, to abi.ChainEpoch) ([]*gateway.BottomUpCheckpoint, error) {
	var out []*gateway.BottomUpCheckpoint
	for _, ch := range n.listed {
		if ch.Epoch() >= from && ch.Epoch() <= to {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (n *mockNode) IPCHasVotedBottomUp(ctx context.Context, id hierarchical.SubnetID, epoch abi.ChainEpoch, validator address.Address) (bool, error) {
	return n.votedBU, nil
}

func (n *mockNode) IPCHasVotedTopDown(ctx context.Context, gw address.Address, epoch abi.ChainEpoch, validator address.Address) (bool, error) {
	return n.votedTD, nil
}

func (n *mockNode) IPCGetTopDownMsgs(ctx context.Context, id hierarchical.SubnetID, gw address.Address, nonce uint64) ([]*gateway.CrossMsg, error) {
	var out []*gateway.CrossMsg
	for _, m := range n.topdown {
		if m.Msg.Nonce >= nonce {
			out = append(out, m)
		}
	}
	return out, nil
}

func (n *mockNode) IPCGetGenesisEpoch(ctx context.Context, id hierarchical.SubnetID, gw address.Address) (abi.ChainEpoch, error) {
	return n.genesis, nil
}

func (n *mockNode) IPCListChildSubnets(ctx context.Context, gw address.Address) ([]gateway.SubnetInfo, error) {
	return n.children, nil
}

func (n *mockNode) IPCSubmitTopDownCheckpoint(ctx context.Context, gw address.Address, validator address.Address, ch *gateway.TopDownCheckpoint) (abi.ChainEpoch, error) {
	n.lk.Lock()
	defer n.lk.Unlock()
	n.submittedTopDown = append(n.submittedTopDown, ch)
	return n.height, nil
}
