package chain

import (
	"BlockScribe/internal/bundle"
	"BlockScribe/internal/digest"
	"BlockScribe/internal/ledger"
	"BlockScribe/internal/logger"
	"BlockScribe/internal/store"
)

// defaultConsensusType is recorded when a submission names none.
const defaultConsensusType = "proof-of-authority"

// SubmitRequest is a proposed block submission.
type SubmitRequest struct {
	BlockID       string             `json:"blockId"`                 // BlockID is the {origin}_{workflow} identifier
	ContentHash   string             `json:"contentHash"`             // ContentHash is the declared digest of the content
	PreviousHash  string             `json:"previousHash,omitempty"`  // PreviousHash overrides continuity resolution when set
	Content       string             `json:"content,omitempty"`       // Content is the inline block content, may be empty
	Files         []bundle.FileInput `json:"files,omitempty"`         // Files are declared file inputs to materialize
	EncryptionKey string             `json:"encryptionKey,omitempty"` // EncryptionKey encrypts the stored bundle when set
	ConsensusType string             `json:"consensusType,omitempty"` // ConsensusType names the consensus mechanism
	LedgerRef     string             `json:"ledgerRef,omitempty"`     // LedgerRef names the target ledger
}

// Receipt describes an accepted submission.
type Receipt struct {
	BlockID      string        `json:"blockId"`
	PreviousHash digest.Digest `json:"previousHash"`
	ContentHash  digest.Digest `json:"contentHash"`
	ContentRef   string        `json:"contentRef,omitempty"`
}

// Submitter orchestrates block submissions. It owns the continuity
// cache; the cache only ever advances after the ledger confirms
// acceptance, so a cached hash always names a durable block.
type Submitter struct {
	ledger    ledger.Client
	store     store.Store
	files     *bundle.Materializer
	cache     *Cache
	resolver  *Resolver
	ledgerRef string // ledgerRef is the default target ledger name
}

// NewSubmitter creates a submitter with an empty continuity cache.
func NewSubmitter(lc ledger.Client, cs store.Store, files *bundle.Materializer, ledgerRef string) *Submitter {
	cache := NewCache()

	return &Submitter{
		ledger:    lc,
		store:     cs,
		files:     files,
		cache:     cache,
		resolver:  NewResolver(cache, lc),
		ledgerRef: ledgerRef,
	}
}

// LatestAccepted returns the cached tip in canonical form, if the
// process has accepted any submission or primed the cache.
func (s *Submitter) LatestAccepted() (string, bool) {
	d, ok := s.cache.Latest()
	if !ok {
		return "", false
	}
	return d.String(), true
}

// Submit runs one submission end to end. All validation and file
// materialization happen before any external side effect; a failure
// anywhere before ledger acceptance leaves the cache untouched.
func (s *Submitter) Submit(req SubmitRequest) (*Receipt, error) {
	// 1. Validate identifiers and digests before touching anything.
	if err := digest.ValidateBlockID(req.BlockID); err != nil {
		return nil, err
	}

	contentHash, err := digest.ParseField(req.ContentHash, "content hash")
	if err != nil {
		return nil, err
	}

	var suppliedParent *digest.Digest
	if req.PreviousHash != "" {
		parent, err := digest.ParseField(req.PreviousHash, "previous hash")
		if err != nil {
			return nil, err
		}
		suppliedParent = &parent
	}

	// 2. Materialize file inputs; any single failure aborts the
	// submission before anything is uploaded.
	resolved, err := s.files.ResolveAll(req.Files)
	if err != nil {
		return nil, err
	}

	// 3. Resolve the parent.
	parent, err := s.resolver.Parent(suppliedParent)
	if err != nil {
		return nil, err
	}

	// 4. Upload the bundle. Skipped entirely when there is no inline
	// content; such blocks carry no content reference.
	var contentRef string
	if req.Content != "" {
		contentRef, err = s.store.Upload(store.FromResolved(req.Content, resolved), req.EncryptionKey)
		if err != nil {
			return nil, err
		}
	}

	consensusType := req.ConsensusType
	if consensusType == "" {
		consensusType = defaultConsensusType
	}

	ledgerRef := req.LedgerRef
	if ledgerRef == "" {
		ledgerRef = s.ledgerRef
	}

	// 5. Submit and await durable acceptance.
	sub := ledger.Submission{
		BlockID:       req.BlockID,
		PreviousHash:  parent,
		ContentHash:   contentHash,
		ConsensusType: consensusType,
		LedgerRef:     ledgerRef,
		ContentRef:    contentRef,
	}

	if err := s.ledger.SubmitBlock(sub); err != nil {
		return nil, err
	}

	// 6. Only now does the cache advance: this block's content hash
	// becomes the parent of whatever is submitted next.
	s.cache.Store(contentHash)

	logger.Info("block submitted",
		"block", req.BlockID,
		"parent", parent,
		"hash", contentHash,
		"contentRef", contentRef,
		"files", len(resolved),
	)

	return &Receipt{
		BlockID:      req.BlockID,
		PreviousHash: parent,
		ContentHash:  contentHash,
		ContentRef:   contentRef,
	}, nil
}
