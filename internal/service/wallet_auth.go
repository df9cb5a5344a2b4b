package service

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
)

// Wallet sign-in: the server issues a one-time challenge, the wallet signs
// it with its ed25519 key, and the server verifies the signature before
// handing out a session token. Identity stays an opaque 32-byte key
// everywhere past this point.

// ChallengeTTL is how long an issued challenge stays valid.
const ChallengeTTL = 5 * time.Minute

const signInPrefix = "solana-task-manager-login/"

var (
	ErrChallengeNotFound = errors.New("challenge not found or expired")
	ErrBadSignature      = errors.New("invalid wallet signature")
)

type challenge struct {
	wallet   string
	issuedAt time.Time
}

// WalletAuthService issues and verifies sign-in challenges.
type WalletAuthService struct {
	domain     string
	mu         sync.Mutex
	challenges map[string]challenge
}

func NewWalletAuthService(domain string) *WalletAuthService {
	return &WalletAuthService{
		domain:     domain,
		challenges: make(map[string]challenge),
	}
}

// IssueChallenge creates a single-use nonce for the wallet and returns the
// exact message the wallet must sign.
func (s *WalletAuthService) IssueChallenge(wallet string) (nonce, message string, err error) {
	if _, err := solana.PublicKeyFromBase58(wallet); err != nil {
		return "", "", err
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	nonce = hex.EncodeToString(raw)

	s.mu.Lock()
	s.gcLocked()
	s.challenges[nonce] = challenge{wallet: wallet, issuedAt: time.Now()}
	s.mu.Unlock()

	return nonce, s.message(wallet, nonce), nil
}

// VerifyChallenge checks the signature over the issued challenge message.
// The nonce is consumed on success and on signature failure alike, so a
// captured challenge cannot be replayed.
func (s *WalletAuthService) VerifyChallenge(wallet, nonce, signatureB64 string) error {
	s.mu.Lock()
	ch, ok := s.challenges[nonce]
	if ok {
		delete(s.challenges, nonce)
	}
	s.mu.Unlock()

	if !ok || ch.wallet != wallet || time.Since(ch.issuedAt) > ChallengeTTL {
		return ErrChallengeNotFound
	}

	pk, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return err
	}
	// a PDA can never sign; only on-curve keys are wallets
	if !solana.IsOnCurve(pk) {
		return fmt.Errorf("%w: address is not a signing key", ErrBadSignature)
	}

	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%w: bad signature size", ErrBadSignature)
	}

	if !ed25519.Verify(ed25519.PublicKey(pk.Bytes()), []byte(s.message(wallet, nonce)), sig) {
		return ErrBadSignature
	}
	return nil
}

func (s *WalletAuthService) message(wallet, nonce string) string {
	return signInPrefix + s.domain + "/" + wallet + "/" + nonce
}

// gcLocked drops expired challenges. Caller holds the lock.
func (s *WalletAuthService) gcLocked() {
	cutoff := time.Now().Add(-ChallengeTTL)
	for nonce, ch := range s.challenges {
		if ch.issuedAt.Before(cutoff) {
			delete(s.challenges, nonce)
		}
	}
}
