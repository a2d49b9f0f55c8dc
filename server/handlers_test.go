package server

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	address "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-jsonrpc"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/api"
	"github.com/consensus-shipyard/ipc-agent/config"
	"github.com/consensus-shipyard/ipc-agent/gateway"
	"github.com/consensus-shipyard/ipc-agent/hierarchical"
	"github.com/consensus-shipyard/ipc-agent/manager"
)

const testConfig = `[server]
json_rpc_address = "127.0.0.1:3030"

[[subnets]]
id = "/root"
network_name = "root"

[subnets.config]
network_type = "fvm"
gateway_addr = "t064"
accounts = ["t0701"]
jsonrpc_api_http = "http://127.0.0.1:1234/rpc/v1"
auth_token = "root-token"

[[subnets]]
id = "/root/t0100"
network_name = "broken"

[subnets.config]
network_type = "fvm"
gateway_addr = "t064"
accounts = ["t0702"]
jsonrpc_api_http = "http://127.0.0.1:1251/rpc/v1"

[[subnets]]
id = "/root/t0200"
network_name = "noaccounts"

[subnets.config]
network_type = "fvm"
gateway_addr = "t064"
accounts = []
jsonrpc_api_http = "http://127.0.0.1:1252/rpc/v1"
auth_token = "child-token"
`

// fakeManager records calls and answers with canned values.
type fakeManager struct {
	calls    int
	lastFrom address.Address
	lastTo   address.Address
	lastAmt  abi.TokenAmount
}

var _ manager.SubnetManager = &fakeManager{}

func (f *fakeManager) Fund(ctx context.Context, id hierarchical.SubnetID, from, to address.Address, amount abi.TokenAmount) (abi.ChainEpoch, error) {
	f.calls++
	f.lastFrom, f.lastTo, f.lastAmt = from, to, amount
	return 42, nil
}

func (f *fakeManager) Release(ctx context.Context, from, to address.Address, amount abi.TokenAmount) (abi.ChainEpoch, error) {
	f.calls++
	f.lastFrom, f.lastTo, f.lastAmt = from, to, amount
	return 43, nil
}

func (f *fakeManager) Propagate(ctx context.Context, from address.Address, postboxCid cid.Cid) error {
	f.calls++
	f.lastFrom = from
	return nil
}

func (f *fakeManager) SendValue(ctx context.Context, from, to address.Address, amount abi.TokenAmount) error {
	f.calls++
	f.lastFrom, f.lastTo, f.lastAmt = from, to, amount
	return nil
}

func (f *fakeManager) SubmitBottomUpCheckpoint(ctx context.Context, submitter address.Address, ch *gateway.BottomUpCheckpoint) (abi.ChainEpoch, error) {
	f.calls++
	f.lastFrom = submitter
	return 44, nil
}

func (f *fakeManager) SubmitTopDownCheckpoint(ctx context.Context, submitter address.Address, ch *gateway.TopDownCheckpoint) (abi.ChainEpoch, error) {
	f.calls++
	f.lastFrom = submitter
	return 45, nil
}

func (f *fakeManager) GetTopDownMsgs(ctx context.Context, id hierarchical.SubnetID, nonce uint64) ([]*gateway.CrossMsg, error) {
	return nil, nil
}

func (f *fakeManager) ListChildSubnets(ctx context.Context) ([]gateway.SubnetInfo, error) {
	return []gateway.SubnetInfo{{ID: "/root/t0100"}, {ID: "/root/t0200"}}, nil
}

func (f *fakeManager) QueryValidatorSet(ctx context.Context, id hierarchical.SubnetID) ([]hierarchical.Validator, error) {
	a, err := address.NewFromString("t0702")
	if err != nil {
		return nil, err
	}
	return []hierarchical.Validator{{Subnet: id, Addr: a, NetAddr: "127.0.0.1:1347"}}, nil
}

func (f *fakeManager) WalletNew(ctx context.Context, typ api.KeyType) (address.Address, error) {
	return address.NewIDAddress(800)
}

func (f *fakeManager) WalletList(ctx context.Context) ([]address.Address, error) {
	return nil, nil
}

func (f *fakeManager) WalletBalance(ctx context.Context, addr address.Address) (abi.TokenAmount, error) {
	return abi.NewTokenAmount(77), nil
}

func (f *fakeManager) Node() api.NodeAPI { return nil }

func newTestAPI(t *testing.T) (*AgentAPI, map[hierarchical.SubnetID]*fakeManager) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	rc, err := config.NewReloadableConfig(path)
	require.NoError(t, err)

	fakes := make(map[hierarchical.SubnetID]*fakeManager)
	factory := func(ctx context.Context, sn *config.Subnet) (manager.SubnetManager, func(), error) {
		f := &fakeManager{}
		fakes[sn.ID] = f
		return f, nil, nil
	}
	pool, err := manager.NewPool(context.Background(), rc, factory)
	require.NoError(t, err)
	return NewAgentAPI(pool), fakes
}

func TestFundDefaultsSender(t *testing.T) {
	ctx := context.Background()
	hnd, fakes := newTestAPI(t)

	res, err := hnd.Fund(ctx, FundParams{Subnet: "/root/t0100", Amount: 1})
	require.NoError(t, err)
	require.Equal(t, abi.ChainEpoch(42), res.Epoch)

	// the parent's first configured account is the sender and, absent
	// an explicit receiver, also the receiver
	root := fakes[hierarchical.RootSubnet]
	require.Equal(t, 1, root.calls)
	def, err := address.NewFromString("t0701")
	require.NoError(t, err)
	require.Equal(t, def, root.lastFrom)
	require.Equal(t, def, root.lastTo)
}

func TestFundAtRootFailsEarly(t *testing.T) {
	ctx := context.Background()
	hnd, fakes := newTestAPI(t)

	_, err := hnd.Fund(ctx, FundParams{Subnet: "/root", Amount: 1})
	require.True(t, xerrors.Is(err, manager.ErrNoParent))
	for _, f := range fakes {
		require.Zero(t, f.calls)
	}
}

func TestReleaseAtRootFails(t *testing.T) {
	ctx := context.Background()
	hnd, _ := newTestAPI(t)

	_, err := hnd.Release(ctx, ReleaseParams{Subnet: "/root", Amount: 1})
	require.True(t, xerrors.Is(err, manager.ErrNoParent))
}

func TestMissingAuthTokenIsOpaque(t *testing.T) {
	ctx := context.Background()
	hnd, fakes := newTestAPI(t)

	// the /root/t0100 entry carries no auth token
	_, err := hnd.Release(ctx, ReleaseParams{Subnet: "/root/t0100", Amount: 1})
	require.Error(t, err)
	require.EqualError(t, err, "internal server error")
	require.Zero(t, fakes[hierarchical.SubnetID("/root/t0100")].calls)
}

func TestFundUnknownSubnet(t *testing.T) {
	ctx := context.Background()
	hnd, fakes := newTestAPI(t)

	// funding acts through the parent, so the parent entry is the one
	// that must exist
	_, err := hnd.Fund(ctx, FundParams{Subnet: "/root/t0999/t0100", Amount: 1})
	require.True(t, xerrors.Is(err, manager.ErrUnknownSubnet))
	for _, f := range fakes {
		require.Zero(t, f.calls)
	}
}

func TestFundInvalidAmount(t *testing.T) {
	ctx := context.Background()
	hnd, fakes := newTestAPI(t)

	_, err := hnd.Fund(ctx, FundParams{Subnet: "/root/t0100", Amount: -3})
	require.True(t, xerrors.Is(err, manager.ErrInvalidAmount))
	require.Zero(t, fakes[hierarchical.RootSubnet].calls)
}

func TestFundRejectsUnconfiguredSender(t *testing.T) {
	ctx := context.Background()
	hnd, fakes := newTestAPI(t)

	// root only has t0701 configured
	_, err := hnd.Fund(ctx, FundParams{Subnet: "/root/t0100", From: "t0999", Amount: 1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a configured account")
	require.Zero(t, fakes[hierarchical.RootSubnet].calls)
}

func TestQueryValidatorSetEncodesSet(t *testing.T) {
	ctx := context.Background()
	hnd, _ := newTestAPI(t)

	res, err := hnd.QueryValidatorSet(ctx, SubnetParams{Subnet: "/root/t0100"})
	require.NoError(t, err)
	require.Len(t, res.Validators, 1)
	require.Equal(t, "/root/t0100:t0702@127.0.0.1:1347", res.ValidatorSet)
}

func TestHasVotedRejectsUnknownDirection(t *testing.T) {
	ctx := context.Background()
	hnd, _ := newTestAPI(t)

	_, err := hnd.HasVoted(ctx, HasVotedParams{
		Subnet: "/root/t0100", Validator: "t0701", Direction: "sideways",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown checkpoint direction")
}

func TestHasVotedTopDownChecksSubnet(t *testing.T) {
	ctx := context.Background()
	hnd, _ := newTestAPI(t)

	// /root/t0100 has no auth token, the handler must refuse before
	// touching the node
	_, err := hnd.HasVoted(ctx, HasVotedParams{
		Subnet: "/root/t0100", Validator: "t0701", Direction: "topdown",
	})
	require.EqualError(t, err, "internal server error")
}

func TestTopDownExecutedChecksSubnet(t *testing.T) {
	ctx := context.Background()
	hnd, _ := newTestAPI(t)

	_, err := hnd.TopDownExecuted(ctx, SubnetParams{Subnet: "/root/t0100"})
	require.EqualError(t, err, "internal server error")
}

func TestSendValueNoAccountConfigured(t *testing.T) {
	ctx := context.Background()
	hnd, _ := newTestAPI(t)

	err := hnd.SendValue(ctx, SendValueParams{Subnet: "/root/t0200", To: "t0703", Amount: 1})
	require.True(t, xerrors.Is(err, manager.ErrNoAccountConfigured))
}

func TestWalletNewRejectsUnknownKeyType(t *testing.T) {
	ctx := context.Background()
	hnd, _ := newTestAPI(t)

	_, err := hnd.WalletNew(ctx, WalletNewParams{Subnet: "/root", KeyType: "ed25519"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown key type")
}

func TestPropagateParsesCid(t *testing.T) {
	ctx := context.Background()
	hnd, fakes := newTestAPI(t)

	err := hnd.Propagate(ctx, PropagateParams{Subnet: "/root", PostboxCid: "not-a-cid"})
	require.Error(t, err)

	c, err := hierarchical.RootSubnet.Cid()
	require.NoError(t, err)
	require.NoError(t, hnd.Propagate(ctx, PropagateParams{Subnet: "/root", PostboxCid: c.String()}))
	require.Equal(t, 1, fakes[hierarchical.RootSubnet].calls)
}

func TestFundOverHTTP(t *testing.T) {
	ctx := context.Background()
	hnd, fakes := newTestAPI(t)

	rpcServer := jsonrpc.NewServer()
	rpcServer.Register(RPCNamespace, hnd)
	ts := httptest.NewServer(rpcServer)
	defer ts.Close()

	var client struct {
		Fund func(ctx context.Context, params FundParams) (*EpochResult, error)
	}
	closer, err := jsonrpc.NewMergeClient(ctx, ts.URL, RPCNamespace, []interface{}{&client}, nil)
	require.NoError(t, err)
	defer closer()

	res, err := client.Fund(ctx, FundParams{Subnet: "/root/t0100", From: "t0701", To: "t0702", Amount: 2})
	require.NoError(t, err)
	require.Equal(t, abi.ChainEpoch(42), res.Epoch)
	require.Equal(t, 1, fakes[hierarchical.RootSubnet].calls)
}
