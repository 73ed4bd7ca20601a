// Package signing produces and checks SSH signatures for commits in the
// armored SSHSIG format that git stores in a commit's gpgsig header.
package signing

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hiddeco/sshsig"
	"golang.org/x/crypto/ssh"
)

// Namespace is the SSHSIG namespace git uses for commit signatures.
const Namespace = "git"

const hashAlgorithm = sshsig.HashSHA512

// ErrBadSignature is returned when a signature does not verify or cannot be
// decoded.
var ErrBadSignature = errors.New("bad ssh signature")

// SSHSigner signs commit payloads with an SSH private key.
type SSHSigner struct {
	signer ssh.Signer
}

// NewSSHSigner wraps an ssh.Signer.
func NewSSHSigner(signer ssh.Signer) *SSHSigner {
	return &SSHSigner{signer: signer}
}

// LoadSSHSigner reads an unencrypted OpenSSH private key. An empty path
// falls back to ~/.ssh/id_ed25519, id_ecdsa, then id_rsa.
func LoadSSHSigner(keyPath string) (*SSHSigner, string, error) {
	resolvedPath, err := resolveSigningKeyPath(keyPath)
	if err != nil {
		return nil, "", err
	}

	raw, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("read signing key %q: %w", resolvedPath, err)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parse signing key %q: %w", resolvedPath, err)
	}
	return NewSSHSigner(signer), resolvedPath, nil
}

// PublicKey returns the key that verifies this signer's signatures.
func (s *SSHSigner) PublicKey() ssh.PublicKey {
	return s.signer.PublicKey()
}

// Sign returns an armored SSHSIG signature over payload, without a trailing
// newline.
func (s *SSHSigner) Sign(payload []byte) (string, error) {
	signer := s.signer
	// RSA keys must not fall back to ssh-rsa (SHA-1) signatures.
	if as, ok := signer.(ssh.AlgorithmSigner); ok && signer.PublicKey().Type() == ssh.KeyAlgoRSA {
		signer = rsaSHA512Signer{as}
	}
	sig, err := sshsig.Sign(bytes.NewReader(payload), signer, hashAlgorithm, Namespace)
	if err != nil {
		return "", fmt.Errorf("ssh sign: %w", err)
	}
	return strings.TrimRight(string(sshsig.Armor(sig)), "\n"), nil
}

// VerifySSH checks an armored signature over payload and returns the public
// key that produced it. Callers decide whether that key is trusted.
func VerifySSH(armored string, payload []byte) (ssh.PublicKey, error) {
	text := strings.TrimSpace(armored)
	if text == "" {
		return nil, fmt.Errorf("%w: empty signature", ErrBadSignature)
	}
	sig, err := sshsig.Unarmor([]byte(text + "\n"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if sig.Namespace != Namespace {
		return nil, fmt.Errorf("%w: namespace %q, want %q", ErrBadSignature, sig.Namespace, Namespace)
	}
	if err := sshsig.Verify(bytes.NewReader(payload), sig, sig.PublicKey, sig.HashAlgorithm, Namespace); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return sig.PublicKey, nil
}

// rsaSHA512Signer pins RSA signatures to rsa-sha2-512.
type rsaSHA512Signer struct {
	ssh.AlgorithmSigner
}

func (s rsaSHA512Signer) Sign(r io.Reader, data []byte) (*ssh.Signature, error) {
	if r == nil {
		r = rand.Reader
	}
	return s.SignWithAlgorithm(r, data, ssh.KeyAlgoRSASHA512)
}

func resolveSigningKeyPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		return expandUserPath(path)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	candidates := []string{
		filepath.Join(home, ".ssh", "id_ed25519"),
		filepath.Join(home, ".ssh", "id_ecdsa"),
		filepath.Join(home, ".ssh", "id_rsa"),
	}
	for _, candidate := range candidates {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no default SSH private key found in ~/.ssh (id_ed25519, id_ecdsa, id_rsa)")
}

func expandUserPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}
