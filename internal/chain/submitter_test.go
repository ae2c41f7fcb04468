package chain

import (
	"os"
	"path/filepath"
	"testing"

	"BlockScribe/internal/bundle"
	"BlockScribe/internal/digest"
	"BlockScribe/internal/fault"
)

// TestSubmit_FirstBlockChainsToGenesis tests the first submission of
// a fresh process on an empty ledger gets the genesis parent.
func TestSubmit_FirstBlockChainsToGenesis(t *testing.T) {
	s, lc, _, _ := newTestSubmitter(t)

	receipt, err := s.Submit(SubmitRequest{
		BlockID:     "agent_run1",
		ContentHash: hashOf("first"),
		Content:     "first",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if receipt.PreviousHash != digest.Genesis {
		t.Fatalf("expected genesis parent, got %s", receipt.PreviousHash)
	}

	rec, err := lc.GetBlock("agent_run1")
	if err != nil || rec == nil {
		t.Fatalf("block not on ledger: %v", err)
	}

	if rec.ContentRef == "" {
		t.Fatal("inline content should produce a content ref")
	}
}

// TestSubmit_SequentialChaining tests the second submission's parent
// equals the first submission's declared content hash.
func TestSubmit_SequentialChaining(t *testing.T) {
	s, _, _, _ := newTestSubmitter(t)

	firstHash := hashOf("first")

	if _, err := s.Submit(SubmitRequest{
		BlockID:     "agent_run1",
		ContentHash: firstHash,
		Content:     "first",
	}); err != nil {
		t.Fatalf("submit first: %v", err)
	}

	receipt, err := s.Submit(SubmitRequest{
		BlockID:     "agent_run2",
		ContentHash: hashOf("second"),
		Content:     "second",
	})
	if err != nil {
		t.Fatalf("submit second: %v", err)
	}

	if receipt.PreviousHash.String() != firstHash {
		t.Fatalf("second block should chain to first: got %s, want %s",
			receipt.PreviousHash, firstHash)
	}
}

// TestSubmit_ExplicitParent tests a supplied previous hash overrides
// the cache.
func TestSubmit_ExplicitParent(t *testing.T) {
	s, _, _, _ := newTestSubmitter(t)

	if _, err := s.Submit(SubmitRequest{
		BlockID:     "agent_run1",
		ContentHash: hashOf("first"),
		Content:     "first",
	}); err != nil {
		t.Fatalf("submit first: %v", err)
	}

	explicit := digest.FromContent([]byte("elsewhere"))

	receipt, err := s.Submit(SubmitRequest{
		BlockID:      "agent_run2",
		ContentHash:  hashOf("second"),
		PreviousHash: explicit.String(),
		Content:      "second",
	})
	if err != nil {
		t.Fatalf("submit second: %v", err)
	}

	if receipt.PreviousHash != explicit {
		t.Fatalf("explicit parent not honored: got %s", receipt.PreviousHash)
	}
}

// TestSubmit_NoContentSkipsUpload tests a block without inline content
// produces no content ref and no store call.
func TestSubmit_NoContentSkipsUpload(t *testing.T) {
	s, lc, cs, _ := newTestSubmitter(t)

	receipt, err := s.Submit(SubmitRequest{
		BlockID:     "agent_run1",
		ContentHash: hashOf("declared elsewhere"),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if receipt.ContentRef != "" {
		t.Fatalf("expected no content ref, got %q", receipt.ContentRef)
	}

	if cs.uploads != 0 {
		t.Fatalf("store should not be called, got %d uploads", cs.uploads)
	}

	rec, err := lc.GetBlock("agent_run1")
	if err != nil || rec == nil {
		t.Fatalf("block not on ledger: %v", err)
	}

	if rec.ContentRef != "" {
		t.Fatalf("ledger record should have no content ref, got %q", rec.ContentRef)
	}
}

// TestSubmit_FilesIncludedInBundle tests materialized files land in
// the uploaded bundle.
func TestSubmit_FilesIncludedInBundle(t *testing.T) {
	s, _, cs, root := newTestSubmitter(t)

	path := filepath.Join(root, "t.json")
	if err := os.WriteFile(path, []byte(`{"x":1}`), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	receipt, err := s.Submit(SubmitRequest{
		BlockID:     "agent_run1",
		ContentHash: hashOf("content"),
		Content:     "content",
		Files: []bundle.FileInput{
			{Name: "t.json", Content: path},
			{Name: "inline.txt", Content: "literal body"},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	b, err := cs.Download(receipt.ContentRef, "")
	if err != nil {
		t.Fatalf("download: %v", err)
	}

	if b.Files["t.json"] != `{"x":1}` {
		t.Fatalf("path input not materialized: %q", b.Files["t.json"])
	}

	if b.Files["inline.txt"] != "literal body" {
		t.Fatalf("literal input changed: %q", b.Files["inline.txt"])
	}
}

// TestSubmit_InvalidInputsFailFast tests validation failures abort
// before any external side effect.
func TestSubmit_InvalidInputsFailFast(t *testing.T) {
	s, lc, cs, _ := newTestSubmitter(t)

	cases := []struct {
		name string
		req  SubmitRequest
	}{
		{"bad block id", SubmitRequest{BlockID: "nounderscore", ContentHash: hashOf("c"), Content: "c"}},
		{"bad content hash", SubmitRequest{BlockID: "agent_run1", ContentHash: "0x123", Content: "c"}},
		{"bad parent", SubmitRequest{BlockID: "agent_run1", ContentHash: hashOf("c"), PreviousHash: "nothex", Content: "c"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Submit(tc.req); !fault.Is(err, fault.InvalidFormat) {
				t.Fatalf("expected invalid_format, got %v", err)
			}
		})
	}

	if cs.uploads != 0 {
		t.Fatalf("no upload should happen, got %d", cs.uploads)
	}

	if len(lc.blocks) != 0 {
		t.Fatalf("no block should reach the ledger, got %d", len(lc.blocks))
	}
}

// TestSubmit_FileFailureAbortsBeforeUpload tests a sandbox rejection
// prevents the bundle upload entirely.
func TestSubmit_FileFailureAbortsBeforeUpload(t *testing.T) {
	s, lc, cs, _ := newTestSubmitter(t)

	outside := filepath.Join(t.TempDir(), "outside.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := s.Submit(SubmitRequest{
		BlockID:     "agent_run1",
		ContentHash: hashOf("c"),
		Content:     "c",
		Files:       []bundle.FileInput{{Name: "outside.txt", Content: outside}},
	})
	if !fault.Is(err, fault.PathTraversal) {
		t.Fatalf("expected path_traversal, got %v", err)
	}

	if cs.uploads != 0 {
		t.Fatalf("no upload should happen, got %d", cs.uploads)
	}

	if len(lc.blocks) != 0 {
		t.Fatal("no block should reach the ledger")
	}
}

// TestSubmit_LedgerRejectionLeavesCacheUntouched tests a rejected
// submission does not advance the continuity cache.
func TestSubmit_LedgerRejectionLeavesCacheUntouched(t *testing.T) {
	s, lc, _, _ := newTestSubmitter(t)

	if _, err := s.Submit(SubmitRequest{
		BlockID:     "agent_run1",
		ContentHash: hashOf("first"),
		Content:     "first",
	}); err != nil {
		t.Fatalf("submit first: %v", err)
	}

	lc.failSubmit = true

	_, err := s.Submit(SubmitRequest{
		BlockID:     "agent_run2",
		ContentHash: hashOf("second"),
		Content:     "second",
	})
	if !fault.Is(err, fault.External) {
		t.Fatalf("expected external_failure, got %v", err)
	}

	tip, ok := s.LatestAccepted()
	if !ok || tip != hashOf("first") {
		t.Fatalf("cache must still point at the first block, got %q", tip)
	}
}

// TestSubmit_UploadFailureLeavesCacheUntouched tests a store failure
// stops the submission before the ledger and the cache.
func TestSubmit_UploadFailureLeavesCacheUntouched(t *testing.T) {
	s, lc, cs, _ := newTestSubmitter(t)

	cs.failUpload = true

	_, err := s.Submit(SubmitRequest{
		BlockID:     "agent_run1",
		ContentHash: hashOf("c"),
		Content:     "c",
	})
	if !fault.Is(err, fault.External) {
		t.Fatalf("expected external_failure, got %v", err)
	}

	if len(lc.blocks) != 0 {
		t.Fatal("no block should reach the ledger")
	}

	if _, ok := s.LatestAccepted(); ok {
		t.Fatal("cache must stay empty after a failed submission")
	}
}

// TestSubmit_DefaultsApplied tests consensus type and ledger ref
// defaults are recorded.
func TestSubmit_DefaultsApplied(t *testing.T) {
	s, lc, _, _ := newTestSubmitter(t)

	if _, err := s.Submit(SubmitRequest{
		BlockID:     "agent_run1",
		ContentHash: hashOf("c"),
		Content:     "c",
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	rec, _ := lc.GetBlock("agent_run1")
	if rec.ConsensusType != defaultConsensusType {
		t.Fatalf("consensus type default missing: %q", rec.ConsensusType)
	}

	if rec.LedgerRef != "main" {
		t.Fatalf("ledger ref default missing: %q", rec.LedgerRef)
	}
}
