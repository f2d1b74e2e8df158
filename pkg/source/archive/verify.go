package archive

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"

	"github.com/matzehuels/stacksize/pkg/errors"
)

// Verifier checks InRelease signatures against a keyring.
type Verifier struct {
	keyring openpgp.KeyRing
}

// NewVerifier reads an ASCII-armored keyring such as
// /usr/share/keyrings/ubuntu-archive-keyring.gpg exported with --armor.
// Binary keyrings are accepted too.
func NewVerifier(r io.Reader) (*Verifier, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	el, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		el, err = openpgp.ReadKeyRing(bytes.NewReader(data))
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read keyring")
	}
	return &Verifier{keyring: el}, nil
}

// NewVerifierFromKeyRing wraps an already parsed keyring.
func NewVerifierFromKeyRing(kr openpgp.KeyRing) *Verifier {
	return &Verifier{keyring: kr}
}

// Verify checks the clearsigned InRelease document and returns its signed
// plaintext.
func (v *Verifier) Verify(inRelease []byte) ([]byte, error) {
	block, _ := clearsign.Decode(inRelease)
	if block == nil {
		return nil, errors.New(errors.ErrCodeSignatureInvalid, "InRelease is not clearsigned")
	}
	_, err := openpgp.CheckDetachedSignature(v.keyring, bytes.NewReader(block.Bytes), block.ArmoredSignature.Body, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSignatureInvalid, err, "InRelease signature")
	}
	return block.Plaintext, nil
}

// checkFile compares data with the Release entry for path.
func checkFile(rel *Release, path string, data []byte) error {
	want, ok := rel.Files[path]
	if !ok {
		return errors.New(errors.ErrCodeChecksumMismatch, "%s is not listed in Release", path)
	}
	sum := sha256.Sum256(data)
	got := hex.EncodeToString(sum[:])
	if int64(len(data)) != want.Size || got != want.SHA256 {
		return errors.New(errors.ErrCodeChecksumMismatch,
			"%s: got sha256 %s (%d bytes), want %s (%d bytes)", path, got, len(data), want.SHA256, want.Size)
	}
	return nil
}

// unsignedPlaintext extracts the body of an InRelease file without
// verifying it, so checksums can still be used when no keyring is set.
func unsignedPlaintext(inRelease []byte) ([]byte, error) {
	if block, _ := clearsign.Decode(inRelease); block != nil {
		return block.Plaintext, nil
	}
	if bytes.HasPrefix(inRelease, []byte("-----BEGIN")) {
		return nil, fmt.Errorf("malformed clearsigned document")
	}
	return inRelease, nil
}
