package hierarchical

import (
	"path"
	"strings"

	address "github.com/filecoin-project/go-address"
	cid "github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"golang.org/x/xerrors"
)

// RootSubnet is the ID of the root network
const RootSubnet = SubnetID("/root")

// UndefID is the undef ID
const UndefID = SubnetID("")

// SubnetSeparator used to separate the segments of a subnet ID.
const SubnetSeparator = "/"

// ErrMalformedID is returned when a string can't be parsed
// into a valid subnet ID.
var ErrMalformedID = xerrors.New("malformed subnet ID")

// SubnetID represents the ID of a subnet.
//
// It is a path of segments rooted at the ID of the root network,
// e.g. /root/t0100/t0101. Each non-root segment is the address of
// the subnet actor governing the subnet in its parent.
type SubnetID string

// Builder to generate subnet IDs from their name
var builder = cid.V1Builder{Codec: cid.Raw, MhType: mh.IDENTITY}

// NewSubnetID generates the ID for a subnet from the ID
// of its parent.
//
// It takes the parent ID and adds the source address of the subnet
// actor that represents the subnet.
func NewSubnetID(parent SubnetID, subnetActorAddr address.Address) SubnetID {
	return SubnetID(path.Join(parent.String(), subnetActorAddr.String()))
}

// SubnetIDFromString parses a string into a subnet ID.
//
// It fails with ErrMalformedID for empty segments or segments
// with characters outside the subnet ID grammar.
func SubnetIDFromString(s string) (SubnetID, error) {
	if !strings.HasPrefix(s, SubnetSeparator) || s == SubnetSeparator {
		return UndefID, xerrors.Errorf("parsing %q: %w", s, ErrMalformedID)
	}
	segments := strings.Split(s[1:], SubnetSeparator)
	for _, seg := range segments {
		if seg == "" {
			return UndefID, xerrors.Errorf("parsing %q: empty segment: %w", s, ErrMalformedID)
		}
		if !validSegment(seg) {
			return UndefID, xerrors.Errorf("parsing %q: invalid character in segment %q: %w", s, seg, ErrMalformedID)
		}
	}
	return SubnetID(s), nil
}

func validSegment(seg string) bool {
	for _, r := range seg {
		ok := r >= 'a' && r <= 'z' ||
			r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' ||
			r == '-' || r == '_'
		if !ok {
			return false
		}
	}
	return true
}

// Cid for the subnetID
func (id SubnetID) Cid() (cid.Cid, error) {
	return builder.Sum([]byte(id))
}

// IsRoot reports whether the ID has no parent in the hierarchy.
func (id SubnetID) IsRoot() bool {
	return strings.Count(string(id), SubnetSeparator) == 1
}

// Parent returns the ID of the parent network.
//
// It returns UndefID for the root of the hierarchy.
func (id SubnetID) Parent() SubnetID {
	if id == UndefID || id.IsRoot() {
		return UndefID
	}
	return SubnetID(path.Dir(string(id)))
}

// CommonParent returns the closest common ancestor of two subnet IDs
// along with its depth in the path.
func (id SubnetID) CommonParent(other SubnetID) (SubnetID, int) {
	s1 := strings.Split(string(id), SubnetSeparator)
	s2 := strings.Split(string(other), SubnetSeparator)
	l := 0
	for i, seg := range s2 {
		if i < len(s1) && seg == s1[i] {
			l = i
			continue
		}
		break
	}
	out := strings.Join(s1[:l+1], SubnetSeparator)
	if out == "" {
		return UndefID, 0
	}
	return SubnetID(out), l
}

// Down returns the next subnet in the path from curr towards id.
// It returns UndefID if curr is not an ancestor of id.
func (id SubnetID) Down(curr SubnetID) SubnetID {
	if !strings.HasPrefix(string(id), string(curr)+SubnetSeparator) {
		return UndefID
	}
	segments := strings.Split(string(id), SubnetSeparator)
	currLen := strings.Count(string(curr), SubnetSeparator) + 1
	if len(segments) <= currLen {
		return UndefID
	}
	return SubnetID(strings.Join(segments[:currLen+1], SubnetSeparator))
}

// Actor returns the subnet actor for a subnet
//
// Returns the address of the actor that handles the logic for a subnet
// in its parent Subnet.
func (id SubnetID) Actor() (address.Address, error) {
	if id.IsRoot() {
		return address.Undef, nil
	}
	_, saddr := path.Split(string(id))
	return address.NewFromString(saddr)
}

// String returns the id in string form
func (id SubnetID) String() string {
	return string(id)
}
