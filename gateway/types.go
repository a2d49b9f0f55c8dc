package gateway

import (
	address "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"

	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

// Status describes in what state in its lifecycle a subnet is.
type Status uint64

const (
	Active   Status = iota // Active and operating. Has permission to interact with other chains in the hierarchy
	Inactive               // Waiting for the stake to be top-up over the minimum stake threshold
	Killed                 // Not active anymore.
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	case Killed:
		return "killed"
	default:
		return "unknown"
	}
}

// SubnetInfo is a (shallow) view of a child subnet registered in a gateway.
type SubnetInfo struct {
	ID         hierarchical.SubnetID
	Stake      abi.TokenAmount
	CircSupply abi.TokenAmount
	Status     Status
}

// IPCAddress is an address fully qualified with the subnet it belongs to.
type IPCAddress struct {
	SubnetID   hierarchical.SubnetID
	RawAddress address.Address
}

// StorableMsg is the core of a cross-subnet message, as stored by the
// gateway actor while the message travels through the hierarchy.
type StorableMsg struct {
	From   IPCAddress
	To     IPCAddress
	Method abi.MethodNum
	Params []byte
	Value  abi.TokenAmount
	Nonce  uint64
}

// CrossMsg is a message passing value or a call between two subnets.
//
// Nonces are assigned by the gateway per direction and are strictly
// increasing without gaps.
type CrossMsg struct {
	Msg     StorableMsg
	Wrapped bool
}

// CrossMsgMeta is a commitment to a batch of bottom-up cross-messages
// included in a checkpoint. Value is the aggregated amount carried by
// the batch, in attoFIL, as a decimal string.
type CrossMsgMeta struct {
	From    string
	To      string
	MsgsCid string
	Nonce   int
	Value   string
}

func NewCrossMsgMeta(from, to hierarchical.SubnetID) *CrossMsgMeta {
	return &CrossMsgMeta{
		From:  from.String(),
		To:    to.String(),
		Value: "0",
	}
}

func (m *CrossMsgMeta) GetValue() (abi.TokenAmount, error) {
	return big.FromString(m.Value)
}

func (m *CrossMsgMeta) AddValue(x abi.TokenAmount) error {
	v, err := m.GetValue()
	if err != nil {
		return err
	}
	m.Value = big.Add(v, x).String()
	return nil
}

func (m *CrossMsgMeta) SubValue(x abi.TokenAmount) error {
	v, err := m.GetValue()
	if err != nil {
		return err
	}
	m.Value = big.Sub(v, x).String()
	return nil
}
