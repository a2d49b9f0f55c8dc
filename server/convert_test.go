package server

import (
	"testing"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/manager"
)

func TestF64ToTokenAmount(t *testing.T) {
	oneFIL := big.Mul(abi.NewTokenAmount(1), big.NewInt(1e18))

	for _, tc := range []struct {
		in   float64
		want abi.TokenAmount
	}{
		{0, abi.NewTokenAmount(0)},
		{1, oneFIL},
		{0.5, big.Div(oneFIL, big.NewInt(2))},
		{0.25, big.Div(oneFIL, big.NewInt(4))},
		{4096, big.Mul(oneFIL, big.NewInt(4096))},
	} {
		got, err := f64ToTokenAmount(tc.in)
		require.NoError(t, err, "amount %v", tc.in)
		require.Equal(t, tc.want, got, "amount %v", tc.in)
	}
}

func TestF64ToTokenAmountRejectsInexact(t *testing.T) {
	for _, in := range []float64{-1, 1e-19, 0.1} {
		_, err := f64ToTokenAmount(in)
		require.True(t, xerrors.Is(err, manager.ErrInvalidAmount), "amount %v", in)
	}
}
