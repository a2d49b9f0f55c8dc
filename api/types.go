package api

import (
	address "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/crypto"
	"github.com/filecoin-project/go-state-types/exitcode"
	"github.com/ipfs/go-cid"
)

// KeyType of wallet keys.
type KeyType string

const (
	KTBLS       KeyType = "bls"
	KTSecp256k1 KeyType = "secp256k1"
)

// Message is the agent-side view of an unsigned chain message.
//
// Field names follow the node's JSON encoding, so the struct can go
// straight onto the wire.
type Message struct {
	Version uint64

	To   address.Address
	From address.Address

	Nonce uint64

	Value abi.TokenAmount

	GasLimit   int64
	GasFeeCap  abi.TokenAmount
	GasPremium abi.TokenAmount

	Method abi.MethodNum
	Params []byte
}

// SignedMessage is a message accepted by the node's mempool. CID
// identifies the signed message and is what StateWaitMsg expects.
type SignedMessage struct {
	Message   Message
	Signature crypto.Signature
	CID       cid.Cid
}

// MessageReceipt is the execution receipt of a message.
type MessageReceipt struct {
	ExitCode exitcode.ExitCode
	Return   []byte
	GasUsed  int64
}

// MsgLookup is the result of waiting for a message to land on chain.
type MsgLookup struct {
	Message cid.Cid
	Receipt MessageReceipt
	Height  abi.ChainEpoch
}

// TipSet is a shallow view of a chain tipset: enough to anchor reads
// and compute epochs, nothing more.
type TipSet struct {
	Cids   []cid.Cid
	Height abi.ChainEpoch
}

// Key returns the serialized tipset key bytes used as checkpoint proofs.
func (ts *TipSet) Key() []byte {
	var out []byte
	for _, c := range ts.Cids {
		out = append(out, c.Bytes()...)
	}
	return out
}
