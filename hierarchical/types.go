package hierarchical

import (
	"strings"
)

// MsgType of cross message.
type MsgType uint64

// List of cross messages supported.
const (
	Unknown MsgType = iota
	BottomUp
	TopDown
)

// MsgTypeFromString parses a cross-message direction name.
func MsgTypeFromString(name string) MsgType {
	switch {
	case strings.EqualFold(name, "bottomup"):
		return BottomUp
	case strings.EqualFold(name, "topdown"):
		return TopDown
	default:
		return Unknown
	}
}

func (t MsgType) String() string {
	switch t {
	case BottomUp:
		return "bottomup"
	case TopDown:
		return "topdown"
	default:
		return "unknown"
	}
}

// IsBottomUp reports whether a message between two subnets
// travels up the hierarchy.
func IsBottomUp(from, to SubnetID) bool {
	_, l := from.CommonParent(to)
	sfrom := strings.Split(from.String(), SubnetSeparator)
	return len(sfrom)-1 > l
}

// CrossMsgType classifies the direction a cross-message between two
// subnets travels.
func CrossMsgType(from, to SubnetID) MsgType {
	if IsBottomUp(from, to) {
		return BottomUp
	}
	return TopDown
}
