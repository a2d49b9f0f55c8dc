package hierarchical_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

func TestValidatorsStringRoundtrip(t *testing.T) {
	net1 := hierarchical.NewSubnetID(hierarchical.RootSubnet, newIDAddr(t, 101))
	validators := []hierarchical.Validator{
		{Subnet: hierarchical.RootSubnet, Addr: newIDAddr(t, 201), NetAddr: "/ip4/127.0.0.1/tcp/10000/p2p/12D3KooWJhKB"},
		{Subnet: net1, Addr: newIDAddr(t, 202), NetAddr: "127.0.0.1:1347"},
	}

	s := hierarchical.ValidatorsToString(validators)
	parsed, err := hierarchical.ValidatorsFromString(s)
	require.NoError(t, err)
	require.Equal(t, validators, parsed)
}

func TestValidatorsFromStringErrors(t *testing.T) {
	// empty input is an empty set
	parsed, err := hierarchical.ValidatorsFromString("")
	require.NoError(t, err)
	require.Empty(t, parsed)

	_, err = hierarchical.ValidatorsFromString("/root:t0101")
	require.Error(t, err)

	_, err = hierarchical.ValidatorsFromString("/root@127.0.0.1:1347")
	require.Error(t, err)

	_, err = hierarchical.ValidatorsFromString("/root:notanaddr@127.0.0.1:1347")
	require.Error(t, err)
}

func TestCrossMsgType(t *testing.T) {
	net1 := hierarchical.NewSubnetID(hierarchical.RootSubnet, newIDAddr(t, 101))

	require.Equal(t, hierarchical.TopDown, hierarchical.CrossMsgType(hierarchical.RootSubnet, net1))
	require.Equal(t, hierarchical.BottomUp, hierarchical.CrossMsgType(net1, hierarchical.RootSubnet))

	require.Equal(t, hierarchical.BottomUp, hierarchical.MsgTypeFromString("bottomup"))
	require.Equal(t, hierarchical.TopDown, hierarchical.MsgTypeFromString("topdown"))
	require.Equal(t, hierarchical.Unknown, hierarchical.MsgTypeFromString("sideways"))
}
