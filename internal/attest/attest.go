// Package attest signs machine reports and verifies the detached
// attestation documents. Signing binds the report digest and the signing
// time; verification recomputes the digest from the presented report and
// checks the signature against the embedded public key. Everything is
// local, no transparency log or certificate authority is involved.
package attest

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
	"github.com/sigstore/sigstore/pkg/signature"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/ssh"

	"github.com/felixgeelhaar/lintgate/internal/errors"
)

const digestAlgorithm = "blake3"

// Attestation is the detached signature for one report.
type Attestation struct {
	Subject        Subject   `json:"subject"`
	Algorithm      string    `json:"algorithm"`
	Signature      string    `json:"signature"`
	PublicKey      string    `json:"publicKey"`
	KeyFingerprint string    `json:"keyFingerprint,omitempty"`
	SignedAt       time.Time `json:"signedAt"`
}

// Subject identifies the signed report.
type Subject struct {
	Name   string            `json:"name"`
	Digest map[string]string `json:"digest"`
}

// Digest returns the hex digest of a report.
func Digest(report []byte) string {
	sum := blake3.Sum256(report)
	return fmt.Sprintf("%x", sum[:])
}

// signedMessage is the canonical byte sequence the signature covers. It
// must be reconstructable from the attestation alone.
func signedMessage(att *Attestation) []byte {
	var buf strings.Builder
	buf.WriteString("LINTGATE REPORT ATTESTATION\n")
	fmt.Fprintf(&buf, "Subject: %s\n", att.Subject.Name)
	fmt.Fprintf(&buf, "Digest: %s:%s\n", digestAlgorithm, att.Subject.Digest[digestAlgorithm])
	fmt.Fprintf(&buf, "Signed At: %s\n", att.SignedAt.Format(time.RFC3339))
	return []byte(buf.String())
}

// Signer produces attestations with a private key loaded from disk. PEM
// keys sign through sigstore, OpenSSH keys through the ssh agent-less
// path.
type Signer struct {
	keyPath string
}

// NewSigner creates a signer for the key at the given path.
func NewSigner(keyPath string) *Signer {
	return &Signer{keyPath: keyPath}
}

// Sign attests the report bytes. subjectName names the report in the
// attestation, usually its file path.
func (s *Signer) Sign(report []byte, subjectName string) (*Attestation, error) {
	keyData, err := os.ReadFile(s.keyPath)
	if err != nil {
		return nil, errors.NewAttestKeyError(s.keyPath, err)
	}

	block, _ := pem.Decode(keyData)
	if block == nil {
		return nil, errors.NewAttestKeyError(s.keyPath, fmt.Errorf("no PEM block found"))
	}

	att := &Attestation{
		Subject: Subject{
			Name:   subjectName,
			Digest: map[string]string{digestAlgorithm: Digest(report)},
		},
		SignedAt: time.Now().UTC().Truncate(time.Second),
	}

	if block.Type == "OPENSSH PRIVATE KEY" {
		err = s.signSSH(att, keyData)
	} else {
		err = s.signECDSA(att, keyData)
	}
	if err != nil {
		return nil, err
	}
	return att, nil
}

// signECDSA signs with a PEM-encoded key through sigstore.
func (s *Signer) signECDSA(att *Attestation, keyData []byte) error {
	priv, err := cryptoutils.UnmarshalPEMToPrivateKey(keyData, cryptoutils.SkipPassword)
	if err != nil {
		return errors.NewAttestKeyError(s.keyPath, err)
	}

	signer, err := signature.LoadSignerVerifier(priv, crypto.SHA256)
	if err != nil {
		return errors.NewAttestKeyError(s.keyPath, err)
	}

	sig, err := signer.SignMessage(bytes.NewReader(signedMessage(att)))
	if err != nil {
		return errors.NewAttestSignError(err)
	}

	pub, err := signer.PublicKey()
	if err != nil {
		return errors.NewAttestSignError(err)
	}
	pubPEM, err := cryptoutils.MarshalPublicKeyToPEM(pub)
	if err != nil {
		return errors.NewAttestSignError(err)
	}

	att.Algorithm = "ECDSA-SHA256"
	att.Signature = base64.StdEncoding.EncodeToString(sig)
	att.PublicKey = string(pubPEM)
	return nil
}

// signSSH signs with an OpenSSH private key.
func (s *Signer) signSSH(att *Attestation, keyData []byte) error {
	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return errors.NewAttestKeyError(s.keyPath, err)
	}

	pub := signer.PublicKey()
	att.Algorithm = pub.Type()
	att.PublicKey = string(ssh.MarshalAuthorizedKey(pub))
	att.KeyFingerprint = ssh.FingerprintSHA256(pub)

	sig, err := signer.Sign(rand.Reader, signedMessage(att))
	if err != nil {
		return errors.NewAttestSignError(err)
	}
	att.Signature = base64.StdEncoding.EncodeToString(sig.Blob)
	return nil
}

// Verify checks an attestation against the report bytes. The digest is
// recomputed from the report, then the signature is checked against the
// public key embedded in the attestation.
func Verify(report []byte, att *Attestation) error {
	want, ok := att.Subject.Digest[digestAlgorithm]
	if !ok {
		return errors.NewAttestVerifyError("attestation carries no " + digestAlgorithm + " digest")
	}
	if got := Digest(report); got != want {
		return errors.NewAttestVerifyError(fmt.Sprintf(
			"report digest %s does not match signed digest %s", got, want))
	}

	sig, err := base64.StdEncoding.DecodeString(att.Signature)
	if err != nil {
		return errors.NewAttestVerifyError("signature is not valid base64")
	}

	message := signedMessage(att)
	if strings.HasPrefix(strings.TrimSpace(att.PublicKey), "-----BEGIN") {
		return verifyECDSA(att.PublicKey, sig, message)
	}
	return verifySSH(att.PublicKey, sig, message)
}

func verifyECDSA(pubPEM string, sig, message []byte) error {
	pub, err := cryptoutils.UnmarshalPEMToPublicKey([]byte(pubPEM))
	if err != nil {
		return errors.NewAttestVerifyError("embedded public key cannot be parsed: " + err.Error())
	}

	verifier, err := signature.LoadVerifier(pub, crypto.SHA256)
	if err != nil {
		return errors.NewAttestVerifyError(err.Error())
	}
	if err := verifier.VerifySignature(bytes.NewReader(sig), bytes.NewReader(message)); err != nil {
		return errors.NewAttestVerifyError("signature does not match report")
	}
	return nil
}

func verifySSH(pubLine string, sigBlob, message []byte) error {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(pubLine))
	if err != nil {
		return errors.NewAttestVerifyError("embedded public key cannot be parsed: " + err.Error())
	}

	sig := &ssh.Signature{Format: pub.Type(), Blob: sigBlob}
	if err := pub.Verify(message, sig); err != nil {
		return errors.NewAttestVerifyError("signature does not match report")
	}
	return nil
}

// Save writes the attestation document.
func Save(path string, att *Attestation) error {
	data, err := json.MarshalIndent(att, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "failed to encode attestation", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}

// Load reads an attestation document.
func Load(path string) (*Attestation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to open %s", path), err)
	}

	var att Attestation
	if err := json.Unmarshal(data, &att); err != nil {
		return nil, errors.NewAttestVerifyError("attestation cannot be decoded: " + err.Error())
	}
	return &att, nil
}
