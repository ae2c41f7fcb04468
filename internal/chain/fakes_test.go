package chain

import (
	"testing"

	"BlockScribe/internal/bundle"
	"BlockScribe/internal/digest"
	"BlockScribe/internal/fault"
	"BlockScribe/internal/ledger"
	"BlockScribe/internal/store"
)

// fakeLedger is an in-memory ledger for orchestration tests.
type fakeLedger struct {
	blocks      map[string]ledger.BlockRecord
	latest      digest.Digest
	latestCalls int  // latestCalls counts LatestBlockHash queries
	failSubmit  bool // failSubmit rejects the next submission
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{blocks: make(map[string]ledger.BlockRecord)}
}

func (l *fakeLedger) SubmitBlock(sub ledger.Submission) error {
	if l.failSubmit {
		return fault.New(fault.External, "ledger rejected block %s", sub.BlockID)
	}

	l.blocks[sub.BlockID] = ledger.BlockRecord{
		BlockID:       sub.BlockID,
		PreviousHash:  sub.PreviousHash,
		ContentHash:   sub.ContentHash,
		ConsensusType: sub.ConsensusType,
		LedgerRef:     sub.LedgerRef,
		ContentRef:    sub.ContentRef,
	}
	l.latest = sub.ContentHash

	return nil
}

func (l *fakeLedger) GetBlock(blockID string) (*ledger.BlockRecord, error) {
	rec, ok := l.blocks[blockID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (l *fakeLedger) LatestBlockHash() (digest.Digest, error) {
	l.latestCalls++
	return l.latest, nil
}

func (l *fakeLedger) VerifyBlock(blockID string, d digest.Digest) (bool, error) {
	rec, ok := l.blocks[blockID]
	if !ok {
		return false, nil
	}
	return rec.ContentHash == d, nil
}

// fakeStore counts uploads and hands out sequential refs.
type fakeStore struct {
	bundles    map[string]store.Bundle
	uploads    int
	failUpload bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{bundles: make(map[string]store.Bundle)}
}

func (s *fakeStore) Upload(b store.Bundle, encryptionKey string) (string, error) {
	s.uploads++

	if s.failUpload {
		return "", fault.New(fault.External, "store unavailable")
	}

	ref := digest.FromContent([]byte(b.Block)).String()
	s.bundles[ref] = b

	return ref, nil
}

func (s *fakeStore) Download(ref, decryptionKey string) (store.Bundle, error) {
	b, ok := s.bundles[ref]
	if !ok {
		return store.Bundle{}, fault.New(fault.NotFound, "bundle %s not found", ref)
	}
	return b, nil
}

// newTestSubmitter wires a submitter over fakes with a sandboxed
// materializer.
func newTestSubmitter(t *testing.T) (*Submitter, *fakeLedger, *fakeStore, string) {
	t.Helper()

	root := t.TempDir()

	m, err := bundle.NewMaterializer(root)
	if err != nil {
		t.Fatalf("create materializer: %v", err)
	}

	lc := newFakeLedger()
	cs := newFakeStore()

	return NewSubmitter(lc, cs, m, "main"), lc, cs, root
}

// hashOf is shorthand for a content digest string.
func hashOf(content string) string {
	return digest.FromContent([]byte(content)).String()
}
