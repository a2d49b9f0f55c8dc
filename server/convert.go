package server

import (
	"math/big"

	address "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	stbig "github.com/filecoin-project/go-state-types/big"
	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/config"
	"github.com/consensus-shipyard/ipc-agent/manager"
)

// attoPerFIL is the number of attoFIL in one FIL.
var attoPerFIL = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// f64ToTokenAmount converts a FIL amount to attoFIL. The conversion
// must be exact: amounts with precision below one attoFIL are rejected
// rather than rounded.
func f64ToTokenAmount(f float64) (abi.TokenAmount, error) {
	if f < 0 {
		return abi.TokenAmount{}, xerrors.Errorf("amount %v is negative: %w", f, manager.ErrInvalidAmount)
	}
	r := new(big.Rat).SetFloat64(f)
	if r == nil {
		return abi.TokenAmount{}, xerrors.Errorf("amount %v is not finite: %w", f, manager.ErrInvalidAmount)
	}
	r.Mul(r, new(big.Rat).SetInt(attoPerFIL))
	if !r.IsInt() {
		return abi.TokenAmount{}, xerrors.Errorf("amount %v is not a whole number of attoFIL: %w", f, manager.ErrInvalidAmount)
	}
	return stbig.NewFromGo(r.Num()), nil
}

// parseFrom resolves the sender of a request: an explicit address if
// given, otherwise the first account configured for the subnet. An
// explicit sender must be one of the configured accounts when the
// subnet lists any.
func parseFrom(sn *config.Subnet, from string) (address.Address, error) {
	if from == "" {
		if sn.FVM == nil || len(sn.FVM.Accounts) == 0 {
			return address.Undef, xerrors.Errorf("subnet %s: %w", sn.ID, manager.ErrNoAccountConfigured)
		}
		return sn.FVM.Accounts[0], nil
	}
	addr, err := address.NewFromString(from)
	if err != nil {
		return address.Undef, xerrors.Errorf("parsing address %q: %w", from, err)
	}
	if sn.FVM != nil && len(sn.FVM.Accounts) > 0 && !sn.HasAccount(addr) {
		return address.Undef, xerrors.Errorf("address %s is not a configured account of subnet %s", addr, sn.ID)
	}
	return addr, nil
}
