package archive

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"

	"github.com/matzehuels/stacksize/pkg/errors"
)

const sampleRelease = `Origin: Ubuntu
Label: Ubuntu
Suite: noble
Codename: noble
Date: Thu, 25 Apr 2024 15:10:33 UTC
Architectures: amd64 arm64 armhf i386 ppc64el riscv64 s390x
Components: main restricted universe multiverse
MD5Sum:
 0123456789abcdef0123456789abcdef  1000 main/binary-amd64/Packages
SHA256:
 AB12000000000000000000000000000000000000000000000000000000000000  1000 main/binary-amd64/Packages
 cd34000000000000000000000000000000000000000000000000000000000000   400 main/binary-amd64/Packages.xz
 not-a-line
 ef56 notasize main/binary-amd64/Packages.gz
`

func TestParseRelease(t *testing.T) {
	rel := ParseRelease(sampleRelease)
	if rel.Suite != "noble" || rel.Codename != "noble" {
		t.Errorf("Suite/Codename = %q/%q", rel.Suite, rel.Codename)
	}
	if len(rel.Components) != 4 {
		t.Errorf("Components = %v", rel.Components)
	}
	if len(rel.Files) != 2 {
		t.Fatalf("Files = %v, want 2 SHA256 entries", rel.Files)
	}
	f := rel.Files["main/binary-amd64/Packages"]
	if f.Size != 1000 || !strings.HasPrefix(f.SHA256, "ab12") {
		t.Errorf("Packages entry = %+v, want lowercase SHA256 digest", f)
	}
}

func TestCheckFile(t *testing.T) {
	data := []byte("Package: a\n")
	rel := &Release{Files: map[string]FileEntry{
		"ok": {SHA256: "f8a1ad6d4ad1d0f4b2f59bfb4e1f6b1d1be0e1cd36e15d59ad4da01b0e7ebe3d", Size: 999},
	}}
	if err := checkFile(rel, "missing", data); !errors.Is(err, errors.ErrCodeChecksumMismatch) {
		t.Errorf("unlisted file: error = %v", err)
	}
	if err := checkFile(rel, "ok", data); !errors.Is(err, errors.ErrCodeChecksumMismatch) {
		t.Errorf("wrong digest: error = %v", err)
	}
}

func TestNewVerifierArmored(t *testing.T) {
	e := testEntity(t)
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Serialize(w); err != nil {
		t.Fatal(err)
	}
	w.Close()

	v, err := NewVerifier(&buf)
	if err != nil {
		t.Fatalf("NewVerifier() error: %v", err)
	}
	plain, err := v.Verify(clearsignText(t, e, "Suite: noble\n"))
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if !strings.HasPrefix(string(plain), "Suite: noble") {
		t.Errorf("plaintext = %q", plain)
	}
}

func TestNewVerifierGarbage(t *testing.T) {
	if _, err := NewVerifier(strings.NewReader("not a key")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestVerifyUnsigned(t *testing.T) {
	v := NewVerifierFromKeyRing(openpgp.EntityList{})
	if _, err := v.Verify([]byte("Suite: noble\n")); !errors.Is(err, errors.ErrCodeSignatureInvalid) {
		t.Errorf("error = %v, want SIGNATURE_INVALID", err)
	}
}

func TestUnsignedPlaintext(t *testing.T) {
	e := testEntity(t)
	plain, err := unsignedPlaintext(clearsignText(t, e, "Suite: noble\n"))
	if err != nil || !strings.HasPrefix(string(plain), "Suite: noble") {
		t.Errorf("unsignedPlaintext(signed) = %q, %v", plain, err)
	}
	plain, err = unsignedPlaintext([]byte("Suite: noble\n"))
	if err != nil || string(plain) != "Suite: noble\n" {
		t.Errorf("unsignedPlaintext(plain) = %q, %v", plain, err)
	}
	if _, err := unsignedPlaintext([]byte("-----BEGIN PGP SIGNED MESSAGE-----\ngarbage")); err == nil {
		t.Error("truncated clearsigned text should fail")
	}
}
