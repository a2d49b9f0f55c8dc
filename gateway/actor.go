package gateway

import (
	address "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
)

// MethodSend is the method number of a plain value transfer.
const MethodSend = abi.MethodNum(0)

// Methods of the gateway actor the agent interacts with.
var Methods = struct {
	Constructor             abi.MethodNum
	Register                abi.MethodNum
	AddStake                abi.MethodNum
	ReleaseStake            abi.MethodNum
	Kill                    abi.MethodNum
	CommitChildCheckpoint   abi.MethodNum
	Fund                    abi.MethodNum
	Release                 abi.MethodNum
	SendCross               abi.MethodNum
	ApplyMessage            abi.MethodNum
	Propagate               abi.MethodNum
	SubmitTopDownCheckpoint abi.MethodNum
}{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

// SubnetActorMethods are the methods of the subnet actor governing a
// subnet in its parent. Bottom-up checkpoints are submitted there.
var SubnetActorMethods = struct {
	Constructor      abi.MethodNum
	Join             abi.MethodNum
	Leave            abi.MethodNum
	Kill             abi.MethodNum
	SubmitCheckpoint abi.MethodNum
}{1, 2, 3, 4, 5}

// DefaultGatewayAddr is the address of the gateway actor in every subnet.
// It is initialized in genesis with the address t064.
var DefaultGatewayAddr = func() address.Address {
	a, err := address.NewIDAddress(64)
	if err != nil {
		panic(err)
	}
	return a
}()
