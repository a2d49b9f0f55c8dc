package gateway

import (
	"bytes"
	"io"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
	ipld "github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	"github.com/ipld/go-ipld-prime/codec/dagjson"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/bindnode"
	"github.com/ipld/go-ipld-prime/schema"
	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

// Linkproto is the default link prototype used for checkpoints
// It uses the default CidBuilder for Filecoin (see abi)
var Linkproto = cidlink.LinkPrototype{
	Prefix: cid.Prefix{
		Version:  1,
		Codec:    abi.CidBuilder.GetCodec(),
		MhType:   abi.HashFunction,
		MhLength: 16,
	},
}

var (
	checkpointSchema schema.Type
	// NoPreviousCheck is a work-around to avoid undefined CIDs,
	// that results in unexpected errors when marshalling.
	// This needs a fix in go-ipld-prime::bindnode
	NoPreviousCheck cid.Cid
)

func init() {
	checkpointSchema = initCheckpointSchema()
	var err error
	NoPreviousCheck, err = abi.CidBuilder.Sum([]byte("nil"))
	if err != nil {
		panic(err)
	}
}

// ChildCheck is the set of checkpoint commitments a child subnet
// contributed to a window.
type ChildCheck struct {
	Source string
	Checks []cid.Cid
}

// CheckData is the data included in a bottom-up checkpoint.
type CheckData struct {
	Source    string
	Proof     []byte // key of the child tipset the checkpoint is anchored to
	Epoch     int
	PrevCheck cid.Cid
	Childs    []ChildCheck
	CrossMsgs []CrossMsgMeta
}

// BottomUpCheckpoint anchors the state of a child subnet into its parent.
//
// - Data includes all the data for the checkpoint. The Cid of Data
// is what identifies a checkpoint uniquely.
// - Sig adds the signature from a validator. According to the verifier
// used for the checkpoint this may be different things.
type BottomUpCheckpoint struct {
	Data CheckData
	Sig  []byte
}

// TopDownCheckpoint pushes the parent's view of the top-down message
// queue down to a child subnet's validators.
type TopDownCheckpoint struct {
	Epoch       abi.ChainEpoch
	TopDownMsgs []*CrossMsg
}

// initCheckpointSchema initializes the BottomUpCheckpoint schema
func initCheckpointSchema() schema.Type {
	ts := schema.TypeSystem{}
	ts.Init()
	ts.Accumulate(schema.SpawnString("String"))
	ts.Accumulate(schema.SpawnInt("Int"))
	ts.Accumulate(schema.SpawnLink("Link"))
	ts.Accumulate(schema.SpawnBytes("Bytes"))

	ts.Accumulate(schema.SpawnStruct("ChildCheck",
		[]schema.StructField{
			schema.SpawnStructField("Source", "String", false, false),
			schema.SpawnStructField("Checks", "List_Link", false, false),
		},
		schema.SpawnStructRepresentationMap(nil),
	))
	ts.Accumulate(schema.SpawnStruct("CrossMsgMeta",
		[]schema.StructField{
			schema.SpawnStructField("From", "String", false, false),
			schema.SpawnStructField("To", "String", false, false),
			schema.SpawnStructField("MsgsCid", "String", false, false),
			schema.SpawnStructField("Nonce", "Int", false, false),
			schema.SpawnStructField("Value", "String", false, false),
		},
		schema.SpawnStructRepresentationMap(nil),
	))
	ts.Accumulate(schema.SpawnStruct("CheckData",
		[]schema.StructField{
			schema.SpawnStructField("Source", "String", false, false),
			schema.SpawnStructField("Proof", "Bytes", false, false),
			schema.SpawnStructField("Epoch", "Int", false, false),
			schema.SpawnStructField("PrevCheck", "Link", false, false),
			schema.SpawnStructField("Childs", "List_ChildCheck", false, false),
			schema.SpawnStructField("CrossMsgs", "List_CrossMsgMeta", false, false),
		},
		schema.SpawnStructRepresentationMap(nil),
	))
	ts.Accumulate(schema.SpawnStruct("BottomUpCheckpoint",
		[]schema.StructField{
			schema.SpawnStructField("Data", "CheckData", false, false),
			schema.SpawnStructField("Sig", "Bytes", false, false),
		},
		schema.SpawnStructRepresentationMap(nil),
	))
	ts.Accumulate(schema.SpawnList("List_Link", "Link", false))
	ts.Accumulate(schema.SpawnList("List_ChildCheck", "ChildCheck", false))
	ts.Accumulate(schema.SpawnList("List_CrossMsgMeta", "CrossMsgMeta", false))

	return ts.TypeByName("BottomUpCheckpoint")
}

// Dumb linksystem used to generate links
//
// This linksystem doesn't store anything, just computes the Cid
// for a node.
func noStoreLinkSystem() ipld.LinkSystem {
	lsys := cidlink.DefaultLinkSystem()
	lsys.StorageWriteOpener = func(lctx ipld.LinkContext) (io.Writer, ipld.BlockWriteCommitter, error) {
		buf := bytes.NewBuffer(nil)
		return buf, func(lnk ipld.Link) error {
			return nil
		}, nil
	}
	return lsys
}

// NewBottomUpCheckpoint creates a checkpoint template to populate by the
// agent before submission.
//
// This is the template returned by the gateway actor for validators to
// include the corresponding information and sign before commitment.
func NewBottomUpCheckpoint(source hierarchical.SubnetID, epoch abi.ChainEpoch) *BottomUpCheckpoint {
	return &BottomUpCheckpoint{
		Data: CheckData{
			Source:    source.String(),
			Proof:     []byte{},
			Epoch:     int(epoch),
			PrevCheck: NoPreviousCheck,
			Childs:    []ChildCheck{},
			CrossMsgs: []CrossMsgMeta{},
		},
	}
}

func (c *BottomUpCheckpoint) SetPrevious(id cid.Cid) {
	c.Data.PrevCheck = id
}

func (c *BottomUpCheckpoint) SetProof(proof []byte) {
	c.Data.Proof = proof
}

// Source returns the ID of the subnet the checkpoint anchors.
func (c *BottomUpCheckpoint) Source() (hierarchical.SubnetID, error) {
	return hierarchical.SubnetIDFromString(c.Data.Source)
}

func (c *BottomUpCheckpoint) Epoch() abi.ChainEpoch {
	return abi.ChainEpoch(c.Data.Epoch)
}

// PreviousCheck returns the linked commitment of the previous checkpoint.
func (c *BottomUpCheckpoint) PreviousCheck() cid.Cid {
	return c.Data.PrevCheck
}

func (c *BottomUpCheckpoint) MarshalBinary() ([]byte, error) {
	node := bindnode.Wrap(c, checkpointSchema)
	var buf bytes.Buffer
	if err := dagjson.Encode(node.Representation(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *BottomUpCheckpoint) UnmarshalBinary(b []byte) error {
	nb := bindnode.Prototype(c, checkpointSchema).NewBuilder()
	if err := dagjson.Decode(nb, bytes.NewReader(b)); err != nil {
		return err
	}
	ch, ok := bindnode.Unwrap(nb.Build()).(*BottomUpCheckpoint)
	if !ok {
		return xerrors.Errorf("unmarshalled node not of type BottomUpCheckpoint")
	}
	*c = *ch
	return nil
}

func (c *BottomUpCheckpoint) MarshalCBOR(w io.Writer) error {
	node := bindnode.Wrap(c, checkpointSchema)
	return dagcbor.Encode(node.Representation(), w)
}

func (c *BottomUpCheckpoint) UnmarshalCBOR(r io.Reader) error {
	nb := bindnode.Prototype(c, checkpointSchema).NewBuilder()
	if err := dagcbor.Decode(nb, r); err != nil {
		return err
	}
	ch, ok := bindnode.Unwrap(nb.Build()).(*BottomUpCheckpoint)
	if !ok {
		return xerrors.Errorf("unmarshalled node not of type BottomUpCheckpoint")
	}
	*c = *ch
	return nil
}

func (c *BottomUpCheckpoint) Equals(ch *BottomUpCheckpoint) (bool, error) {
	c1, err := c.Cid()
	if err != nil {
		return false, err
	}
	c2, err := ch.Cid()
	if err != nil {
		return false, err
	}
	return c1 == c2, nil
}

// Cid returns the unique identifier for a checkpoint.
//
// It is computed by removing the signature from the checkpoint.
// The checkpoints are unique but validators need to include additional
// signature information.
func (c *BottomUpCheckpoint) Cid() (cid.Cid, error) {
	// The Cid of a checkpoint is computed from the data.
	// The signature may differ according to the verifier used.
	ch := &BottomUpCheckpoint{Data: c.Data}
	lsys := noStoreLinkSystem()
	lnk, err := lsys.ComputeLink(Linkproto, bindnode.Wrap(ch, checkpointSchema))
	if err != nil {
		return cid.Undef, err
	}
	return lnk.(cidlink.Link).Cid, nil
}

// AddChild adds a single child commitment to the checkpoint
//
// Commitments for a source are accumulated; adding the same
// commitment twice for a source is an error.
func (c *BottomUpCheckpoint) AddChild(source hierarchical.SubnetID, commit cid.Cid) error {
	ind := c.HasChildSource(source)
	if ind < 0 {
		c.Data.Childs = append(c.Data.Childs, ChildCheck{Source: source.String(), Checks: []cid.Cid{commit}})
		return nil
	}
	for _, ex := range c.Data.Childs[ind].Checks {
		if ex == commit {
			return xerrors.New("child checkpoint already added for that source")
		}
	}
	c.Data.Childs[ind].Checks = append(c.Data.Childs[ind].Checks, commit)
	return nil
}

// HasChildSource returns the index of the child commitments for a source,
// or -1 when the source has contributed nothing.
func (c *BottomUpCheckpoint) HasChildSource(source hierarchical.SubnetID) int {
	for i, ch := range c.Data.Childs {
		if ch.Source == source.String() {
			return i
		}
	}
	return -1
}

func (c *BottomUpCheckpoint) LenChilds() int {
	return len(c.Data.Childs)
}
