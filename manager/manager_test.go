package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/exitcode"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/config"
	"github.com/consensus-shipyard/ipc-agent/gateway"
	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

type testEnv struct {
	pool  *Pool
	path  string
	nodes map[hierarchical.SubnetID]*mockNode
}

func testEnvTOML(ids []string) string {
	var sb strings.Builder
	sb.WriteString("[server]\njson_rpc_address = \"127.0.0.1:3030\"\n")
	for i, id := range ids {
		fmt.Fprintf(&sb, `
[[subnets]]
id = "%s"

[subnets.config]
network_type = "fvm"
gateway_addr = "t064"
accounts = []
jsonrpc_api_http = "http://127.0.0.1:%d/rpc/v1"
`, id, 1234+i)
	}
	return sb.String()
}

// newTestEnv builds a pool over mock nodes for the given subnet IDs.
func newTestEnv(t *testing.T, ids ...string) *testEnv {
	t.Helper()

	env := &testEnv{nodes: make(map[hierarchical.SubnetID]*mockNode)}
	for _, id := range ids {
		env.nodes[hierarchical.SubnetID(id)] = newMockNode()
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testEnvTOML(ids)), 0o644))
	env.path = path
	rc, err := config.NewReloadableConfig(path)
	require.NoError(t, err)

	factory := func(ctx context.Context, sn *config.Subnet) (SubnetManager, func(), error) {
		node, ok := env.nodes[sn.ID]
		if !ok {
			return nil, nil, xerrors.Errorf("no mock node for %s", sn.ID)
		}
		return NewLotusSubnetManager(sn.ID, sn.FVM.GatewayAddr, node), nil, nil
	}
	pool, err := NewPool(context.Background(), rc, factory)
	require.NoError(t, err)
	env.pool = pool
	return env
}

func (e *testEnv) manager(t *testing.T, id string) SubnetManager {
	t.Helper()
	conn, err := e.pool.Get(hierarchical.SubnetID(id))
	require.NoError(t, err)
	return conn.Manager
}

func TestFundSelf(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "/root", "/root/t0100")
	node := env.nodes[hierarchical.RootSubnet]
	wallet := testAddr(t, 100)

	epoch, err := env.manager(t, "/root").Fund(ctx, "/root/t0100", wallet, wallet, abi.NewTokenAmount(1000))
	require.NoError(t, err)
	require.Equal(t, node.height, epoch)

	msg := node.lastPushed()
	require.NotNil(t, msg)
	require.Equal(t, gateway.Methods.Fund, msg.Method)
	require.Equal(t, gateway.DefaultGatewayAddr, msg.To)
	require.Equal(t, wallet, msg.From)
	require.Equal(t, abi.NewTokenAmount(1000), msg.Value)
}

func TestFundOtherReceiverGoesCross(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "/root", "/root/t0100")
	node := env.nodes[hierarchical.RootSubnet]

	_, err := env.manager(t, "/root").Fund(ctx, "/root/t0100", testAddr(t, 100), testAddr(t, 101), abi.NewTokenAmount(1000))
	require.NoError(t, err)
	require.Equal(t, gateway.Methods.SendCross, node.lastPushed().Method)
}

func TestFundRejectsNonChild(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "/root", "/root/t0100")
	wallet := testAddr(t, 100)

	_, err := env.manager(t, "/root").Fund(ctx, "/root/t0100/t0101", wallet, wallet, abi.NewTokenAmount(1))
	require.True(t, xerrors.Is(err, ErrUnknownSubnet))
	require.Nil(t, env.nodes[hierarchical.RootSubnet].lastPushed())
}

func TestReleaseSelf(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "/root", "/root/t0100")
	node := env.nodes[hierarchical.SubnetID("/root/t0100")]
	wallet := testAddr(t, 100)

	_, err := env.manager(t, "/root/t0100").Release(ctx, wallet, wallet, abi.NewTokenAmount(500))
	require.NoError(t, err)
	require.Equal(t, gateway.Methods.Release, node.lastPushed().Method)
}

func TestFailedExecutionSurfaces(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "/root", "/root/t0100")
	env.nodes[hierarchical.RootSubnet].exit = exitcode.ErrIllegalState
	wallet := testAddr(t, 100)

	_, err := env.manager(t, "/root").Fund(ctx, "/root/t0100", wallet, wallet, abi.NewTokenAmount(1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "exit code")
}

func TestPropagateOnlyOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "/root")
	mgr := env.manager(t, "/root")
	c := testCid(t, "postbox-item")

	require.NoError(t, mgr.Propagate(ctx, testAddr(t, 100), c))
	err := mgr.Propagate(ctx, testAddr(t, 100), c)
	require.True(t, xerrors.Is(err, ErrAlreadyExecuted))
	require.Len(t, env.nodes[hierarchical.RootSubnet].pushed, 1)

	// a different item still goes through
	require.NoError(t, mgr.Propagate(ctx, testAddr(t, 100), testCid(t, "other-item")))
}

func TestSendValue(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "/root")
	node := env.nodes[hierarchical.RootSubnet]

	require.NoError(t, env.manager(t, "/root").SendValue(ctx, testAddr(t, 100), testAddr(t, 101), abi.NewTokenAmount(42)))
	msg := node.lastPushed()
	require.Equal(t, gateway.MethodSend, msg.Method)
	require.Equal(t, testAddr(t, 101), msg.To)
	require.Equal(t, abi.NewTokenAmount(42), msg.Value)
}

func TestTopDownMsgsContiguous(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "/root", "/root/t0100")
	node := env.nodes[hierarchical.RootSubnet]
	child := hierarchical.SubnetID("/root/t0100")

	for _, n := range []uint64{10, 11, 12} {
		node.topdown = append(node.topdown, &gateway.CrossMsg{Msg: gateway.StorableMsg{Nonce: n}})
	}
	msgs, err := env.manager(t, "/root").GetTopDownMsgs(ctx, child, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	// a hole in the sequence fails the read
	node.topdown = append(node.topdown, &gateway.CrossMsg{Msg: gateway.StorableMsg{Nonce: 14}})
	_, err = env.manager(t, "/root").GetTopDownMsgs(ctx, child, 10)
	require.True(t, xerrors.Is(err, ErrNonceGap))
}

func TestTopDownMsgsNotReproposed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "/root", "/root/t0100")
	node := env.nodes[hierarchical.RootSubnet]
	child := hierarchical.SubnetID("/root/t0100")

	for _, n := range []uint64{10, 11, 12} {
		node.topdown = append(node.topdown, &gateway.CrossMsg{Msg: gateway.StorableMsg{Nonce: n}})
	}
	mgr := env.manager(t, "/root")

	msgs, err := mgr.GetTopDownMsgs(ctx, child, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	// the pickup was at height 100; once the chain moves the same
	// nonces must not be handed out again
	node.height = 101
	msgs, err = mgr.GetTopDownMsgs(ctx, child, 10)
	require.NoError(t, err)
	require.Empty(t, msgs)

	// a retry within the pickup epoch still re-proposes
	node.height = 100
	msgs, err = mgr.GetTopDownMsgs(ctx, child, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	// past the finality window the pickup record is forgotten and the
	// messages become proposable again
	node.height = 100 + finalityWait + 1
	msgs, err = mgr.GetTopDownMsgs(ctx, child, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
}

func TestPoolLookups(t *testing.T) {
	env := newTestEnv(t, "/root", "/root/t0100")

	_, err := env.pool.Get("/root/t0999")
	require.True(t, xerrors.Is(err, ErrUnknownSubnet))

	_, err = env.pool.GetParent(hierarchical.RootSubnet)
	require.True(t, xerrors.Is(err, ErrNoParent))

	conn, err := env.pool.GetParent("/root/t0100")
	require.NoError(t, err)
	require.Equal(t, hierarchical.RootSubnet, conn.Subnet.ID)

	require.ElementsMatch(t,
		[]hierarchical.SubnetID{"/root", "/root/t0100"},
		env.pool.Subnets())
}

func TestPoolReload(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "/root", "/root/t0100")
	rootMgr := env.manager(t, "/root")

	// dropping the child from the config removes its connection but
	// keeps the untouched root connection alive
	require.NoError(t, os.WriteFile(env.path, []byte(testEnvTOML([]string{"/root"})), 0o644))
	require.NoError(t, env.pool.Reload(ctx))

	_, err := env.pool.Get("/root/t0100")
	require.True(t, xerrors.Is(err, ErrUnknownSubnet))

	require.Same(t, rootMgr, env.manager(t, "/root"))
}

func TestQueryValidatorSet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "/root", "/root/t0100")
	child := hierarchical.SubnetID("/root/t0100")
	env.nodes[hierarchical.RootSubnet].actorState = &gateway.SubnetActorState{
		ValidatorSet: []hierarchical.Validator{
			{Subnet: child, Addr: testAddr(t, 100), NetAddr: "/ip4/127.0.0.1/tcp/3000"},
		},
	}

	vals, err := env.manager(t, "/root").QueryValidatorSet(ctx, child)
	require.NoError(t, err)
	require.Len(t, vals, 1)
	require.Equal(t, child, vals[0].Subnet)
}
