package audit

import (
	"path/filepath"
	"testing"

	"BlockScribe/internal/digest"
	"BlockScribe/internal/fault"
	"BlockScribe/internal/ledger"
	"BlockScribe/internal/store"
)

// fakeLedger serves a fixed set of block records.
type fakeLedger struct {
	blocks map[string]ledger.BlockRecord
}

func (l *fakeLedger) SubmitBlock(sub ledger.Submission) error { return nil }

func (l *fakeLedger) GetBlock(blockID string) (*ledger.BlockRecord, error) {
	rec, ok := l.blocks[blockID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (l *fakeLedger) LatestBlockHash() (digest.Digest, error) {
	return digest.Digest{}, nil
}

func (l *fakeLedger) VerifyBlock(blockID string, d digest.Digest) (bool, error) {
	return false, nil
}

// fakeStore serves fixed bundles and scripted failures.
type fakeStore struct {
	bundles map[string]store.Bundle
	err     error // err overrides every download when set
}

func (s *fakeStore) Upload(b store.Bundle, encryptionKey string) (string, error) {
	return "", nil
}

func (s *fakeStore) Download(ref, decryptionKey string) (store.Bundle, error) {
	if s.err != nil {
		return store.Bundle{}, s.err
	}

	b, ok := s.bundles[ref]
	if !ok {
		return store.Bundle{}, fault.New(fault.NotFound, "bundle %s not found", ref)
	}

	return b, nil
}

// newTestLocal opens a temporary pebble-backed store.
func newTestLocal(t *testing.T) *store.Local {
	t.Helper()

	l, err := store.OpenLocal(filepath.Join(t.TempDir(), "store"))
	if err != nil {
		t.Fatalf("open local store: %v", err)
	}

	t.Cleanup(func() { l.Close() })

	return l
}

// newEngine builds an engine over one block with stored content.
func newEngine(content string) (*Engine, *fakeLedger, *fakeStore) {
	lc := &fakeLedger{blocks: map[string]ledger.BlockRecord{
		"agent_run1": {
			BlockID:     "agent_run1",
			ContentHash: digest.FromContent([]byte(content)),
			ContentRef:  "ref1",
		},
	}}

	cs := &fakeStore{bundles: map[string]store.Bundle{
		"ref1": {Block: content},
	}}

	return NewEngine(lc, cs), lc, cs
}

// TestAudit_Match tests intact content verifies true with matching
// digests.
func TestAudit_Match(t *testing.T) {
	e, _, _ := newEngine("original content")

	res, err := e.Audit("agent_run1", "")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}

	if res.Verified != VerdictTrue {
		t.Fatalf("expected true, got %s (%s)", res.Verified, res.Note)
	}

	if res.ComputedHash != res.OnChainHash.String() {
		t.Fatalf("digests should match: %s != %s", res.ComputedHash, res.OnChainHash)
	}
}

// TestAudit_Tampered tests altered stored content verifies false with
// both digests reported.
func TestAudit_Tampered(t *testing.T) {
	e, _, cs := newEngine("original content")

	cs.bundles["ref1"] = store.Bundle{Block: "tampered content"}

	res, err := e.Audit("agent_run1", "")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}

	if res.Verified != VerdictFalse {
		t.Fatalf("expected false, got %s", res.Verified)
	}

	if res.ComputedHash == "" || res.ComputedHash == res.OnChainHash.String() {
		t.Fatalf("computed digest should differ: %s", res.ComputedHash)
	}
}

// TestAudit_BlockAbsent tests a missing block is false/not_found.
func TestAudit_BlockAbsent(t *testing.T) {
	e, _, _ := newEngine("content")

	res, err := e.Audit("agent_missing", "")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}

	if res.Verified != VerdictFalse || res.ErrorClass != fault.NotFound {
		t.Fatalf("expected false/not_found, got %s/%s", res.Verified, res.ErrorClass)
	}
}

// TestAudit_NoContentRef tests a block without a content reference is
// unknown, not false.
func TestAudit_NoContentRef(t *testing.T) {
	e, lc, _ := newEngine("content")

	rec := lc.blocks["agent_run1"]
	rec.ContentRef = ""
	lc.blocks["agent_run1"] = rec

	res, err := e.Audit("agent_run1", "")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}

	if res.Verified != VerdictUnknown {
		t.Fatalf("expected unknown, got %s", res.Verified)
	}

	if res.ErrorClass != "" {
		t.Fatalf("no error class expected, got %s", res.ErrorClass)
	}
}

// TestAudit_DownloadFailureClasses tests decryption failures keep
// their class and everything else maps to unknown.
func TestAudit_DownloadFailureClasses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want fault.Class
	}{
		{"missing key", fault.New(fault.MissingDecryptionKey, "no key"), fault.MissingDecryptionKey},
		{"wrong key", fault.New(fault.DecryptionFailed, "bad key"), fault.DecryptionFailed},
		{"store gone", fault.New(fault.External, "unreachable"), fault.Unknown},
		{"bundle gone", fault.New(fault.NotFound, "missing"), fault.Unknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, _, cs := newEngine("content")
			cs.err = tc.err

			res, err := e.Audit("agent_run1", "")
			if err != nil {
				t.Fatalf("audit: %v", err)
			}

			if res.Verified != VerdictFalse || res.ErrorClass != tc.want {
				t.Fatalf("expected false/%s, got %s/%s", tc.want, res.Verified, res.ErrorClass)
			}
		})
	}
}

// TestAudit_RoundTripWithRealSealing tests the submit-then-audit
// round trip through the real codec: sha256 of the submitted content
// equals the recomputed digest.
func TestAudit_RoundTripWithRealSealing(t *testing.T) {
	content := `{"finding":"x","score":1}`

	lc := &fakeLedger{blocks: map[string]ledger.BlockRecord{}}

	local := newTestLocal(t)

	ref, err := local.Upload(store.Bundle{Block: content}, "")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	lc.blocks["agent_run1"] = ledger.BlockRecord{
		BlockID:     "agent_run1",
		ContentHash: digest.FromContent([]byte(content)),
		ContentRef:  ref,
	}

	res, err := NewEngine(lc, local).Audit("agent_run1", "")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}

	if res.Verified != VerdictTrue {
		t.Fatalf("expected true, got %s (%s)", res.Verified, res.Note)
	}
}
