package manager

import "golang.org/x/xerrors"

// Errors the manager surfaces to the dispatcher. Handlers map these to
// JSON-RPC error responses, so they carry no subnet-local detail.
var (
	// ErrNoParent is returned for operations that need a parent when
	// the target subnet is the hierarchy root.
	ErrNoParent = xerrors.New("subnet has no parent")

	// ErrUnknownSubnet is returned when no connection is configured
	// for the subnet an operation targets.
	ErrUnknownSubnet = xerrors.New("subnet not found in config")

	// ErrNoAccountConfigured is returned when a sender is needed and
	// the subnet entry configures no accounts.
	ErrNoAccountConfigured = xerrors.New("no account configured for subnet")

	// ErrInvalidAmount is returned when a token amount cannot be
	// represented exactly in attoFIL.
	ErrInvalidAmount = xerrors.New("invalid token amount")

	// ErrStaleCheckpoint is returned when submitting a checkpoint for
	// an epoch at or below the last executed voting epoch.
	ErrStaleCheckpoint = xerrors.New("checkpoint epoch already executed")

	// ErrNotYetFinalized is returned when a checkpoint epoch is too
	// close to the chain head to be considered final.
	ErrNotYetFinalized = xerrors.New("checkpoint epoch not final yet")

	// ErrNonceGap is returned when the committed top-down messages do
	// not form a contiguous nonce sequence.
	ErrNonceGap = xerrors.New("gap in cross-message nonce sequence")

	// ErrAlreadySubmitted is returned when the validator already voted
	// for the checkpoint at that epoch.
	ErrAlreadySubmitted = xerrors.New("checkpoint already submitted for epoch")

	// ErrAlreadyExecuted is returned when a cross-message was already
	// propagated from the postbox.
	ErrAlreadyExecuted = xerrors.New("cross-message already propagated")
)
