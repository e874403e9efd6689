package checker

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"hash"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	consts "github.com/khanhnv2901/seca-sri/internal/shared/constants"
	sharederrors "github.com/khanhnv2901/seca-sri/internal/shared/errors"
)

// HashAlgorithm is one of the digest algorithms allowed in an integrity value.
type HashAlgorithm string

const (
	HashAlgorithmSHA256 HashAlgorithm = "sha256"
	HashAlgorithmSHA384 HashAlgorithm = "sha384"
	HashAlgorithmSHA512 HashAlgorithm = "sha512"
)

var hashFuncs = map[HashAlgorithm]func() hash.Hash{
	HashAlgorithmSHA256: sha256.New,
	HashAlgorithmSHA384: sha512.New384,
	HashAlgorithmSHA512: sha512.New,
}

func (a HashAlgorithm) String() string {
	return string(a)
}

// DisplayName returns the conventional upper-case spelling, e.g. "SHA-384".
func (a HashAlgorithm) DisplayName() string {
	return "SHA-" + strings.TrimPrefix(string(a), "sha")
}

// ParseHashAlgorithm accepts sha256, sha384 or sha512.
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	algo := HashAlgorithm(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := hashFuncs[algo]; !ok {
		return "", fmt.Errorf("%w: %s", sharederrors.ErrInvalidHashAlgorithm, name)
	}
	return algo, nil
}

var integrityFormat = regexp.MustCompile(`^(sha256|sha384|sha512)-(.+)$`)

// ParseIntegrity splits an integrity value into its algorithm and base64 digest.
func ParseIntegrity(value string) (HashAlgorithm, string, error) {
	m := integrityFormat.FindStringSubmatch(value)
	if m == nil {
		return "", "", &InvalidIntegrityFormatError{Value: value}
	}
	return HashAlgorithm(m[1]), m[2], nil
}

// ComputeDigest hashes body with algo and returns the base64 digest.
func ComputeDigest(algo HashAlgorithm, body []byte) (string, error) {
	newHash, ok := hashFuncs[algo]
	if !ok {
		return "", fmt.Errorf("%w: %s", sharederrors.ErrInvalidHashAlgorithm, algo)
	}
	h := newHash()
	h.Write(body)
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// VerificationOutcome is the result of recomputing a declared digest.
type VerificationOutcome struct {
	Matches   bool            `json:"matches" yaml:"matches"`
	Algorithm HashAlgorithm   `json:"algorithm" yaml:"algorithm"`
	Expected  string          `json:"expected_digest" yaml:"expected_digest"`
	Computed  string          `json:"computed_digest" yaml:"computed_digest"`
	Size      int             `json:"size_bytes" yaml:"size_bytes"`
	Response  ResponseHeaders `json:"response" yaml:"response"`
}

// Verifier fetches resources and checks them against their declared digest.
type Verifier struct {
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
}

// NewVerifier returns a Verifier with a bounded per-request timeout.
func NewVerifier(timeout time.Duration, userAgent string) *Verifier {
	if timeout <= 0 {
		timeout = consts.DefaultFetchTimeout
	}
	return &Verifier{
		Client:    &http.Client{Timeout: timeout},
		Timeout:   timeout,
		UserAgent: userAgent,
	}
}

// Verify fetches rawURL once and compares the digest of its body with the
// declared integrity value.
func (v *Verifier) Verify(ctx context.Context, rawURL, declared string) (*VerificationOutcome, error) {
	algo, expected, err := ParseIntegrity(declared)
	if err != nil {
		return nil, err
	}

	body, header, err := v.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	computed, err := ComputeDigest(algo, body)
	if err != nil {
		return nil, err
	}

	return &VerificationOutcome{
		Matches:   computed == expected,
		Algorithm: algo,
		Expected:  expected,
		Computed:  computed,
		Size:      len(body),
		Response:  AnalyzeResponseHeaders(header),
	}, nil
}

// Digest fetches rawURL and returns a ready-to-use integrity value for it.
func (v *Verifier) Digest(ctx context.Context, rawURL string, algo HashAlgorithm) (string, error) {
	body, _, err := v.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	digest, err := ComputeDigest(algo, body)
	if err != nil {
		return "", err
	}
	return algo.String() + "-" + digest, nil
}

func (v *Verifier) fetch(ctx context.Context, rawURL string) ([]byte, http.Header, error) {
	client := v.Client
	if client == nil {
		client = &http.Client{Timeout: consts.DefaultFetchTimeout}
	}

	if v.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, &NetworkError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}
	if v.UserAgent != "" {
		req.Header.Set("User-Agent", v.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, &NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil, &HTTPStatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &NetworkError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, resp.Header, nil
}
