package manager

import (
	"context"
	"sync"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/gateway"
	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

// finalityWait is the number of epochs a picked-up top-down nonce is
// held back from re-proposal. If the chain has not recorded the message
// as applied after this long, the pickup is assumed lost and the nonce
// becomes proposable again.
const finalityWait = 15

// crossMsgPool remembers which cross-message work this agent already
// performed, so retried requests do not produce duplicate on-chain
// messages. State is in-memory only; the chain remains the source of
// truth and a restarted agent simply pays the gas of a no-op retry.
type crossMsgPool struct {
	lk         sync.Mutex
	topdown    map[hierarchical.SubnetID]*pickedUpNonces
	propagated map[cid.Cid]struct{}
}

// pickedUpNonces tracks, for one child subnet, the epoch at which each
// top-down nonce was last picked up for a checkpoint.
type pickedUpNonces struct {
	nonces map[uint64]abi.ChainEpoch
	height abi.ChainEpoch
}

func newCrossMsgPool() *crossMsgPool {
	return &crossMsgPool{
		topdown:    make(map[hierarchical.SubnetID]*pickedUpNonces),
		propagated: make(map[cid.Cid]struct{}),
	}
}

func (cm *crossMsgPool) isPropagated(c cid.Cid) bool {
	cm.lk.Lock()
	defer cm.lk.Unlock()
	_, ok := cm.propagated[c]
	return ok
}

func (cm *crossMsgPool) markPropagated(c cid.Cid) {
	cm.lk.Lock()
	defer cm.lk.Unlock()
	cm.propagated[c] = struct{}{}
}

// noncesFor returns the pickup record for a child, resetting it when
// the chain has advanced past the finality window since the last reset.
// Must be called with cm.lk held.
func (cm *crossMsgPool) noncesFor(id hierarchical.SubnetID, height abi.ChainEpoch) *pickedUpNonces {
	p, ok := cm.topdown[id]
	if !ok || height > p.height+finalityWait {
		p = &pickedUpNonces{nonces: make(map[uint64]abi.ChainEpoch), height: height}
		cm.topdown[id] = p
	}
	return p
}

func (cm *crossMsgPool) applyTopDown(id hierarchical.SubnetID, nonce uint64, height abi.ChainEpoch) {
	cm.lk.Lock()
	defer cm.lk.Unlock()
	cm.noncesFor(id, height).nonces[nonce] = height
}

// isTopDownApplied reports whether a nonce was already picked up at an
// earlier epoch. A pickup at the current epoch does not count, so a
// retry within the same epoch still re-proposes the message.
func (cm *crossMsgPool) isTopDownApplied(id hierarchical.SubnetID, nonce uint64, height abi.ChainEpoch) bool {
	cm.lk.Lock()
	defer cm.lk.Unlock()
	h, ok := cm.noncesFor(id, height).nonces[nonce]
	return ok && h != height
}

// GetTopDownMsgs returns the top-down messages committed in this
// subnet's gateway for child `id`, starting at `nonce`. Messages must
// be applied in nonce order, so a hole in the sequence fails the whole
// read instead of silently skipping a message. Messages this agent
// already picked up at an earlier epoch are trimmed so a slow chain
// does not get them proposed twice.
func (m *LotusSubnetManager) GetTopDownMsgs(
	ctx context.Context, id hierarchical.SubnetID, nonce uint64) ([]*gateway.CrossMsg, error) {

	if id.Parent() != m.id {
		return nil, xerrors.Errorf("subnet %s is not a child of %s: %w", id, m.id, ErrUnknownSubnet)
	}

	head, err := m.node.ChainHead(ctx)
	if err != nil {
		return nil, xerrors.Errorf("getting chain head of %s: %w", m.id, err)
	}

	msgs, err := m.node.IPCGetTopDownMsgs(ctx, id, m.gateway, nonce)
	if err != nil {
		return nil, xerrors.Errorf("getting top-down messages for %s: %w", id, err)
	}
	for i, cmsg := range msgs {
		if cmsg.Msg.Nonce != nonce+uint64(i) {
			return nil, xerrors.Errorf("expected nonce %d at position %d, got %d: %w",
				nonce+uint64(i), i, cmsg.Msg.Nonce, ErrNonceGap)
		}
	}

	out := make([]*gateway.CrossMsg, 0, len(msgs))
	for _, cmsg := range msgs {
		if m.cm.isTopDownApplied(id, cmsg.Msg.Nonce, head.Height) {
			log.Debugw("top-down message already picked up", "subnet", id, "nonce", cmsg.Msg.Nonce)
			continue
		}
		m.cm.applyTopDown(id, cmsg.Msg.Nonce, head.Height)
		out = append(out, cmsg)
	}
	return out, nil
}
