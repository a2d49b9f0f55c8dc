package gateway

import (
	"bytes"

	cid "github.com/ipfs/go-cid"
	cbg "github.com/whyrusleeping/cbor-gen"
	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

// SubnetIDParam identifies a subnet in gateway actor calls.
type SubnetIDParam struct {
	ID string
}

// CheckpointParams handles in/out communication of checkpoints
// To accommodate arbitrary schemas (and even if it introduces an overhead)
// is easier to transmit a marshalled version of the checkpoint.
type CheckpointParams struct {
	Checkpoint []byte
}

// CrossMsgParams determines the cross message to apply.
type CrossMsgParams struct {
	Msg         StorableMsg
	Destination hierarchical.SubnetID
}

// PropagateParams identifies a cross message pending in the gateway's
// postbox for propagation towards its destination.
type PropagateParams struct {
	PostboxCid cid.Cid
}

// SerializeParams serializes actor call parameters to CBOR.
func SerializeParams(v cbg.CBORMarshaler) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := v.MarshalCBOR(buf); err != nil {
		return nil, xerrors.Errorf("failed to serialize params: %w", err)
	}
	return buf.Bytes(), nil
}
