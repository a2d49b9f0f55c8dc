package manager

import (
	"context"
	"sort"

	address "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/api"
	"github.com/consensus-shipyard/ipc-agent/gateway"
	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

// FinalityThreshold is the number of epochs behind the head a
// checkpointed epoch must be before the agent acts on it.
const FinalityThreshold = 5

// submitGasLimit is set high so checkpoint submissions are not dropped
// by gas estimation on busy subnets.
const submitGasLimit = 1_000_000_000

// SubmitBottomUpCheckpoint pushes a bottom-up checkpoint to the subnet
// actor governing its source. The manager must be connected to the
// parent of the checkpoint's source subnet.
func (m *LotusSubnetManager) SubmitBottomUpCheckpoint(
	ctx context.Context, submitter address.Address, ch *gateway.BottomUpCheckpoint) (abi.ChainEpoch, error) {

	source, err := ch.Source()
	if err != nil {
		return 0, xerrors.Errorf("reading checkpoint source: %w", err)
	}
	actor, err := source.Actor()
	if err != nil {
		return 0, xerrors.Errorf("resolving subnet actor for %s: %w", source, err)
	}

	b, err := ch.MarshalBinary()
	if err != nil {
		return 0, xerrors.Errorf("marshaling checkpoint: %w", err)
	}
	serparams, err := gateway.SerializeParams(&gateway.CheckpointParams{Checkpoint: b})
	if err != nil {
		return 0, xerrors.Errorf("serializing checkpoint params: %w", err)
	}

	lookup, err := m.pushAndWait(ctx, &api.Message{
		To:       actor,
		From:     submitter,
		Value:    abi.NewTokenAmount(0),
		Method:   gateway.SubnetActorMethods.SubmitCheckpoint,
		Params:   serparams,
		GasLimit: submitGasLimit,
	})
	if err != nil {
		return 0, err
	}

	chcid, _ := ch.Cid()
	log.Infow("submitted bottom-up checkpoint", "subnet", source, "epoch", ch.Epoch(), "cid", chcid, "at", lookup.Height)
	return lookup.Height, nil
}

// SubmitTopDownCheckpoint submits a top-down checkpoint vote in this
// subnet on behalf of a validator.
func (m *LotusSubnetManager) SubmitTopDownCheckpoint(
	ctx context.Context, submitter address.Address, ch *gateway.TopDownCheckpoint) (abi.ChainEpoch, error) {

	epoch, err := m.node.IPCSubmitTopDownCheckpoint(ctx, m.gateway, submitter, ch)
	if err != nil {
		return 0, xerrors.Errorf("submitting top-down checkpoint in %s: %w", m.id, err)
	}
	log.Infow("submitted top-down checkpoint", "subnet", m.id, "epoch", ch.Epoch, "msgs", len(ch.TopDownMsgs), "at", epoch)
	return epoch, nil
}

// CheckpointRelay coordinates checkpoint submission between the two
// sides of a parent/child edge. Connections are resolved from the pool
// on every call so a config reload takes effect immediately.
type CheckpointRelay struct {
	pool *Pool
}

func NewCheckpointRelay(pool *Pool) *CheckpointRelay {
	return &CheckpointRelay{pool: pool}
}

// SubmitBottomUp assembles the bottom-up checkpoint of `id` for a
// window epoch from the child's gateway template and submits it to the
// subnet actor in the parent. Returns the parent epoch at which the
// submission executed.
func (r *CheckpointRelay) SubmitBottomUp(
	ctx context.Context, id hierarchical.SubnetID,
	submitter address.Address, epoch abi.ChainEpoch) (abi.ChainEpoch, error) {

	child, err := r.pool.Get(id)
	if err != nil {
		return 0, err
	}
	parent, err := r.pool.GetParent(id)
	if err != nil {
		return 0, err
	}

	st, err := parent.Manager.Node().IPCReadSubnetActorState(ctx, id)
	if err != nil {
		return 0, xerrors.Errorf("reading subnet actor state for %s: %w", id, err)
	}
	head, err := child.Manager.Node().ChainHead(ctx)
	if err != nil {
		return 0, xerrors.Errorf("reading chain head of %s: %w", id, err)
	}
	if epoch <= 0 {
		// no epoch given, pick the latest finalized signing window
		epoch = gateway.CheckpointEpoch(head.Height-FinalityThreshold, st.BottomUpCheckVoting.SubmissionPeriod)
	}
	if gateway.CheckpointEpoch(epoch, st.BottomUpCheckVoting.SubmissionPeriod) != epoch {
		return 0, xerrors.Errorf("epoch %d is not a checkpoint window boundary for %s", epoch, id)
	}
	if epoch <= st.BottomUpCheckVoting.LastVotingExecuted {
		return 0, xerrors.Errorf("epoch %d in subnet %s: %w", epoch, id, ErrStaleCheckpoint)
	}
	if epoch > head.Height-FinalityThreshold {
		return 0, xerrors.Errorf("epoch %d above finalized height %d in %s: %w",
			epoch, head.Height-FinalityThreshold, id, ErrNotYetFinalized)
	}

	voted, err := parent.Manager.Node().IPCHasVotedBottomUp(ctx, id, epoch, submitter)
	if err != nil {
		return 0, xerrors.Errorf("checking bottom-up vote for %s: %w", id, err)
	}
	if voted {
		return 0, xerrors.Errorf("validator %s at epoch %d in %s: %w", submitter, epoch, id, ErrAlreadySubmitted)
	}

	template, err := child.Manager.Node().IPCGetCheckpointTemplate(ctx, child.GatewayAddr(), epoch)
	if err != nil {
		return 0, xerrors.Errorf("getting checkpoint template for %s at %d: %w", id, epoch, err)
	}
	prev, err := parent.Manager.Node().IPCGetPrevCheckpointForChild(ctx, parent.GatewayAddr(), id)
	if err != nil {
		return 0, xerrors.Errorf("getting previous checkpoint for %s: %w", id, err)
	}
	template.SetPrevious(prev)

	proofTs, err := child.Manager.Node().ChainHead(ctx)
	if err != nil {
		return 0, xerrors.Errorf("reading chain head of %s: %w", id, err)
	}
	template.SetProof(proofTs.Key())

	return parent.Manager.SubmitBottomUpCheckpoint(ctx, submitter, template)
}

// SubmitTopDown collects the finalized top-down messages committed in
// the parent for `id` and submits them as a top-down checkpoint vote
// in the child. Returns the child epoch at which the vote executed.
func (r *CheckpointRelay) SubmitTopDown(
	ctx context.Context, id hierarchical.SubnetID,
	submitter address.Address, epoch abi.ChainEpoch) (abi.ChainEpoch, error) {

	child, err := r.pool.Get(id)
	if err != nil {
		return 0, err
	}
	parent, err := r.pool.GetParent(id)
	if err != nil {
		return 0, err
	}

	st, err := child.Manager.Node().IPCReadGatewayState(ctx, child.GatewayAddr())
	if err != nil {
		return 0, xerrors.Errorf("reading gateway state of %s: %w", id, err)
	}
	head, err := parent.Manager.Node().ChainHead(ctx)
	if err != nil {
		return 0, xerrors.Errorf("reading chain head of %s: %w", id.Parent(), err)
	}
	if epoch <= 0 {
		epoch = gateway.CheckpointEpoch(head.Height-FinalityThreshold, st.TopDownCheckVoting.SubmissionPeriod)
	}
	if epoch <= st.TopDownCheckVoting.LastVotingExecuted {
		return 0, xerrors.Errorf("epoch %d in subnet %s: %w", epoch, id, ErrStaleCheckpoint)
	}
	if epoch > head.Height-FinalityThreshold {
		return 0, xerrors.Errorf("epoch %d above finalized height %d in %s: %w",
			epoch, head.Height-FinalityThreshold, id.Parent(), ErrNotYetFinalized)
	}

	voted, err := child.Manager.Node().IPCHasVotedTopDown(ctx, child.GatewayAddr(), epoch, submitter)
	if err != nil {
		return 0, xerrors.Errorf("checking top-down vote for %s: %w", id, err)
	}
	if voted {
		return 0, xerrors.Errorf("validator %s at epoch %d in %s: %w", submitter, epoch, id, ErrAlreadySubmitted)
	}

	msgs, err := parent.Manager.GetTopDownMsgs(ctx, id, st.AppliedTopDownNonce)
	if err != nil {
		return 0, err
	}

	return child.Manager.SubmitTopDownCheckpoint(ctx, submitter, &gateway.TopDownCheckpoint{
		Epoch:       epoch,
		TopDownMsgs: msgs,
	})
}

// ListCheckpoints returns the bottom-up checkpoints committed for `id`
// with epochs in [from, to].
func (r *CheckpointRelay) ListCheckpoints(
	ctx context.Context, id hierarchical.SubnetID, from, to abi.ChainEpoch) ([]*gateway.BottomUpCheckpoint, error) {

	if from < 0 || to < from {
		return nil, xerrors.Errorf("invalid epoch range [%d, %d]", from, to)
	}
	parent, err := r.pool.GetParent(id)
	if err != nil {
		return nil, err
	}
	out, err := parent.Manager.Node().IPCListCheckpoints(ctx, id, from, to)
	if err != nil {
		return nil, xerrors.Errorf("listing checkpoints for %s: %w", id, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Epoch() < out[j].Epoch() })
	return out, nil
}

// HasVotedBottomUp reports whether a validator already voted for the
// bottom-up checkpoint of `id` at an epoch.
func (r *CheckpointRelay) HasVotedBottomUp(
	ctx context.Context, id hierarchical.SubnetID,
	epoch abi.ChainEpoch, validator address.Address) (bool, error) {

	parent, err := r.pool.GetParent(id)
	if err != nil {
		return false, err
	}
	return parent.Manager.Node().IPCHasVotedBottomUp(ctx, id, epoch, validator)
}

// HasVotedTopDown reports whether a validator already voted for the
// top-down checkpoint in `id` at an epoch.
func (r *CheckpointRelay) HasVotedTopDown(
	ctx context.Context, id hierarchical.SubnetID,
	epoch abi.ChainEpoch, validator address.Address) (bool, error) {

	child, err := r.pool.Get(id)
	if err != nil {
		return false, err
	}
	return child.Manager.Node().IPCHasVotedTopDown(ctx, child.GatewayAddr(), epoch, validator)
}

// TopDownExecuted returns the epoch of the last top-down voting round
// executed in a subnet.
func (r *CheckpointRelay) TopDownExecuted(ctx context.Context, id hierarchical.SubnetID) (abi.ChainEpoch, error) {
	child, err := r.pool.Get(id)
	if err != nil {
		return 0, err
	}
	st, err := child.Manager.Node().IPCReadGatewayState(ctx, child.GatewayAddr())
	if err != nil {
		return 0, xerrors.Errorf("reading gateway state of %s: %w", id, err)
	}
	return st.TopDownCheckVoting.LastVotingExecuted, nil
}

// GenesisEpoch returns the parent epoch at which a subnet was
// registered.
func (r *CheckpointRelay) GenesisEpoch(ctx context.Context, id hierarchical.SubnetID) (abi.ChainEpoch, error) {
	parent, err := r.pool.GetParent(id)
	if err != nil {
		return 0, err
	}
	return parent.Manager.Node().IPCGetGenesisEpoch(ctx, id, parent.GatewayAddr())
}
