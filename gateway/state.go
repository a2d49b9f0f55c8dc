package gateway

import (
	"github.com/filecoin-project/go-state-types/abi"

	"github.com/consensus-shipyard/ipc-agent/hierarchical"
)

// Voting tracks the checkpoint voting progress of a gateway or subnet
// actor for one direction.
type Voting struct {
	GenesisEpoch       abi.ChainEpoch
	SubmissionPeriod   abi.ChainEpoch
	LastVotingExecuted abi.ChainEpoch
}

// State is the agent-side view of the gateway actor state.
//
// The agent never materializes the actor's HAMTs locally, it reads
// this summary through the node's RPC API and treats the chain as the
// source of truth for every nonce and epoch in it.
type State struct {
	NetworkName          string
	TotalSubnets         uint64
	MinStake             abi.TokenAmount
	CheckPeriod          abi.ChainEpoch
	AppliedBottomUpNonce uint64
	AppliedTopDownNonce  uint64
	TopDownCheckVoting   Voting
}

// SubnetActorState is the agent-side view of a subnet actor state in
// the parent subnet.
type SubnetActorState struct {
	Name                string
	ParentID            hierarchical.SubnetID
	Status              Status
	TotalStake          abi.TokenAmount
	MinValidatorStake   abi.TokenAmount
	GenesisEpoch        abi.ChainEpoch
	CheckPeriod         abi.ChainEpoch
	ValidatorSet        []hierarchical.Validator
	BottomUpCheckVoting Voting
}
