package tool

import (
	"encoding/json"
	"time"

	"BlockScribe/internal/audit"
	"BlockScribe/internal/chain"
	"BlockScribe/internal/digest"
	"BlockScribe/internal/fault"
	"BlockScribe/internal/ledger"
	"BlockScribe/internal/logger"
)

// BlockArgs identifies a block for lookup.
type BlockArgs struct {
	BlockID string `json:"blockId"`
}

// AuditArgs identifies a block to audit, with an optional key for
// encrypted bundles.
type AuditArgs struct {
	BlockID       string `json:"blockId"`
	DecryptionKey string `json:"decryptionKey,omitempty"`
}

// VerifyArgs carries a block and the digest to check against it. The
// digest is accepted with or without the 0x prefix.
type VerifyArgs struct {
	BlockID string `json:"blockId"`
	Digest  string `json:"digest"`
}

// LatestResult is the get_latest payload.
type LatestResult struct {
	Hash string `json:"hash"`
}

// VerifyResult is the verify payload.
type VerifyResult struct {
	BlockID  string `json:"blockId"`
	Digest   string `json:"digest"`
	Verified bool   `json:"verified"`
}

// Dispatcher routes operations to their handlers. Adding an operation
// means adding an enum variant and a case here; the switch is the
// complete operation surface.
type Dispatcher struct {
	submitter *chain.Submitter
	auditor   *audit.Engine
	ledger    ledger.Client
}

// NewDispatcher creates a dispatcher over the wired components.
func NewDispatcher(submitter *chain.Submitter, auditor *audit.Engine, lc ledger.Client) *Dispatcher {
	return &Dispatcher{submitter: submitter, auditor: auditor, ledger: lc}
}

// Dispatch decodes the arguments for op and runs its handler. Every
// outcome, including malformed arguments, is an envelope; nothing
// escapes as a panic or a bare error.
func (d *Dispatcher) Dispatch(op Op, args json.RawMessage) Envelope {
	start := time.Now()

	var env Envelope

	switch op {
	case OpSubmit:
		env = handle(args, d.submit)
	case OpGetBlock:
		env = handle(args, d.getBlock)
	case OpGetLatest:
		env = handle(args, d.getLatest)
	case OpAudit:
		env = handle(args, d.audit)
	case OpVerify:
		env = handle(args, d.verify)
	default:
		env = Failure(fault.New(fault.InvalidFormat, "unknown operation %q", op))
	}

	logger.Debug("operation dispatched", "op", op.String(), "ok", env.OK, logger.Timed(start))

	return env
}

// handle decodes args into the handler's request type and envelopes
// the outcome.
func handle[Req any](args json.RawMessage, fn func(Req) (any, error)) Envelope {
	var req Req

	if len(args) > 0 {
		if err := json.Unmarshal(args, &req); err != nil {
			return Failure(fault.Wrap(fault.InvalidFormat, err, "decode arguments"))
		}
	}

	result, err := fn(req)
	if err != nil {
		return Failure(err)
	}

	return Success(result)
}

// submit handles OpSubmit.
func (d *Dispatcher) submit(req chain.SubmitRequest) (any, error) {
	return d.submitter.Submit(req)
}

// getBlock handles OpGetBlock.
func (d *Dispatcher) getBlock(args BlockArgs) (any, error) {
	if err := digest.ValidateBlockID(args.BlockID); err != nil {
		return nil, err
	}

	rec, err := d.ledger.GetBlock(args.BlockID)
	if err != nil {
		return nil, err
	}

	if rec == nil {
		return nil, fault.New(fault.NotFound, "block %s not found on ledger", args.BlockID)
	}

	return rec, nil
}

// getLatest handles OpGetLatest. An empty ledger reports the genesis
// digest.
func (d *Dispatcher) getLatest(_ struct{}) (any, error) {
	latest, err := d.ledger.LatestBlockHash()
	if err != nil {
		return nil, err
	}

	return LatestResult{Hash: latest.String()}, nil
}

// audit handles OpAudit.
func (d *Dispatcher) audit(args AuditArgs) (any, error) {
	if err := digest.ValidateBlockID(args.BlockID); err != nil {
		return nil, err
	}

	return d.auditor.Audit(args.BlockID, args.DecryptionKey)
}

// verify handles OpVerify, normalizing the digest prefix before the
// ledger query.
func (d *Dispatcher) verify(args VerifyArgs) (any, error) {
	if err := digest.ValidateBlockID(args.BlockID); err != nil {
		return nil, err
	}

	dg, err := digest.ParseLoose(args.Digest)
	if err != nil {
		return nil, err
	}

	verified, err := d.ledger.VerifyBlock(args.BlockID, dg)
	if err != nil {
		return nil, err
	}

	return VerifyResult{
		BlockID:  args.BlockID,
		Digest:   dg.String(),
		Verified: verified,
	}, nil
}
