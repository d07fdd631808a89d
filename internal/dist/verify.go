package dist

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// ErrChecksumMismatch means a downloaded archive does not match its digest.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Verifier inspects a fully written download before it is moved into place.
type Verifier interface {
	Verify(ctx context.Context, path string) error
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, path string) error

func (f VerifierFunc) Verify(ctx context.Context, path string) error { return f(ctx, path) }

func newHash(algorithm string) (hash.Hash, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", "sha256", "sha-256":
		return sha256.New(), nil
	case "sha512", "sha-512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported checksum algorithm %q", algorithm)
	}
}

func computeChecksum(path, algorithm string) (string, error) {
	h, err := newHash(algorithm)
	if err != nil {
		return "", err
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for checksum: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ExpectChecksum verifies against a known digest.
func ExpectChecksum(want Checksum) Verifier {
	return VerifierFunc(func(_ context.Context, path string) error {
		got, err := computeChecksum(path, want.Algorithm)
		if err != nil {
			return err
		}
		if !strings.EqualFold(got, strings.TrimSpace(want.Hex)) {
			return fmt.Errorf("%w: %s: got %s, want %s", ErrChecksumMismatch, path, got, want.Hex)
		}
		return nil
	})
}

// sidecarVerifier fetches the digest published at archiveURL+suffix.
func (m *Manager) sidecarVerifier(archiveURL string, l Layout) Verifier {
	return VerifierFunc(func(ctx context.Context, path string) error {
		sidecar := archiveURL + l.SidecarSuffix
		resp, err := m.get(ctx, sidecar)
		if err != nil {
			return fmt.Errorf("fetch checksum: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return fmt.Errorf("read checksum %s: %w", sidecar, err)
		}
		fields := strings.Fields(string(raw))
		if len(fields) == 0 {
			return fmt.Errorf("%w: empty digest at %s", ErrChecksumMismatch, sidecar)
		}
		return ExpectChecksum(Checksum{Algorithm: l.SidecarAlgorithm, Hex: fields[0]}).Verify(ctx, path)
	})
}

// verifierFor picks the verification step for an archive download: a
// declared checksum wins, then the published sidecar when enabled.
func (m *Manager) verifierFor(spec Spec, l Layout) Verifier {
	if !spec.Checksum.IsZero() {
		return ExpectChecksum(spec.Checksum)
	}
	if m.verifySidecar && l.SidecarSuffix != "" {
		return m.sidecarVerifier(spec.URL, l)
	}
	return nil
}
