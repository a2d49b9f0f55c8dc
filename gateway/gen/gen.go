package main

import (
	gen "github.com/whyrusleeping/cbor-gen"

	"github.com/consensus-shipyard/ipc-agent/gateway"
)

func main() {
	if err := gen.WriteTupleEncodersToFile("../cbor_gen.go", "gateway",
		gateway.SubnetIDParam{},
		gateway.CheckpointParams{},
		gateway.CrossMsgParams{},
		gateway.PropagateParams{},
		gateway.StorableMsg{},
		gateway.IPCAddress{},
	); err != nil {
		panic(err)
	}
}
