package ledger

import (
	"crypto/ed25519"
	"fmt"

	blst "github.com/supranational/blst/bindings/go"
	"github.com/zeebo/blake3"
)

const (
	// PublicKeySize is the size of a compressed BLS public key in bytes.
	PublicKeySize = 48

	// SignatureSize is the size of a compressed BLS signature in bytes.
	SignatureSize = 96
)

// signDST is the domain separation tag for submission signatures.
var signDST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")

// keygenDomain binds derived BLS keys to the scribe's signing scheme.
var keygenDomain = []byte("blockscribe-submission-keygen")

// Signer signs ledger submissions with a BLS key derived
// deterministically from the agent's ed25519 signing credential.
type Signer struct {
	secret *blst.SecretKey // secret is the derived BLS private key
	public *blst.P1Affine  // public is the matching public key
}

// NewSigner derives a BLS keypair from an ed25519 signing credential.
// The derivation is deterministic: the same credential always yields
// the same submission key.
func NewSigner(credential ed25519.PrivateKey) (*Signer, error) {
	if len(credential) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid credential size: got %d, want %d",
			len(credential), ed25519.PrivateKeySize)
	}

	h := blake3.New()
	h.Write(keygenDomain)
	h.Write(credential.Seed())

	var seed [32]byte
	h.Sum(seed[:0])

	secret := blst.KeyGen(seed[:])
	if secret == nil {
		return nil, fmt.Errorf("derive BLS key from credential")
	}

	return &Signer{
		secret: secret,
		public: new(blst.P1Affine).From(secret),
	}, nil
}

// Sign creates a compressed BLS signature over the payload.
func (s *Signer) Sign(payload []byte) []byte {
	sig := new(blst.P2Affine).Sign(s.secret, payload, signDST)
	return sig.Compress()
}

// PublicKey returns the compressed public key bytes.
func (s *Signer) PublicKey() []byte {
	return s.public.Compress()
}

// VerifySignature checks a compressed BLS signature against a payload
// and public key.
func VerifySignature(signature, payload, publicKey []byte) bool {
	if len(signature) != SignatureSize || len(publicKey) != PublicKeySize {
		return false
	}

	sig := new(blst.P2Affine).Uncompress(signature)
	if sig == nil {
		return false
	}

	pk := new(blst.P1Affine).Uncompress(publicKey)
	if pk == nil {
		return false
	}

	return sig.Verify(true, pk, true, payload, signDST)
}

// SigningPayload returns the canonical byte string signed for a
// submission. Field order is fixed; changing it invalidates all
// existing signatures.
func SigningPayload(sub Submission) []byte {
	canonical := sub.BlockID + "|" +
		sub.PreviousHash.String() + "|" +
		sub.ContentHash.String() + "|" +
		sub.ConsensusType + "|" +
		sub.LedgerRef + "|" +
		sub.ContentRef

	sum := blake3.Sum256([]byte(canonical))
	return sum[:]
}
