package document

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/mod/semver"

	"github.com/aledsdavies/cobolscope/core/errors"
)

// EnvelopeVersion is the version of the binary envelope layout. Readers
// accept any envelope with the same major version.
const EnvelopeVersion = "v1.0.0"

// Envelope is the binary container written by EncodeCBOR.
type Envelope struct {
	Version  string          `cbor:"1,keyasint"`
	Digest   []byte          `cbor:"2,keyasint"`
	Document cbor.RawMessage `cbor:"3,keyasint"`
}

// Decoded is an envelope read back by DecodeCBOR. Document holds the
// generic tree (maps, slices, strings, nil) of the encoded Program.
type Decoded struct {
	Version  string
	Digest   [32]byte
	Document map[string]any
}

// Digest returns the BLAKE2b-256 digest of data.
func Digest(data []byte) [32]byte {
	return blake2b.Sum256(data)
}

// DigestString returns the hex form of Digest(data).
func DigestString(data []byte) string {
	sum := Digest(data)
	return hex.EncodeToString(sum[:])
}

// EncodeCBOR wraps the CBOR encoding of p in a versioned envelope carrying
// a digest of the document bytes.
func EncodeCBOR(p *Program) ([]byte, error) {
	body, err := p.MarshalCBOR()
	if err != nil {
		return nil, errors.NewOutputError("CBOR encoding failed", err)
	}
	sum := Digest(body)

	em, err := cborEncMode()
	if err != nil {
		return nil, errors.NewOutputError("CBOR encoding failed", err)
	}
	data, err := em.Marshal(Envelope{
		Version:  EnvelopeVersion,
		Digest:   sum[:],
		Document: body,
	})
	if err != nil {
		return nil, errors.NewOutputError("CBOR encoding failed", err)
	}
	return data, nil
}

// DecodeCBOR reads an envelope written by EncodeCBOR, checking its version
// and digest.
func DecodeCBOR(data []byte) (*Decoded, error) {
	var env Envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(errors.ErrDecode, "invalid envelope", err)
	}

	if !semver.IsValid(env.Version) {
		return nil, errors.New(errors.ErrDecode, fmt.Sprintf("invalid envelope version %q", env.Version))
	}
	if semver.Major(env.Version) != semver.Major(EnvelopeVersion) {
		return nil, errors.New(errors.ErrDecode,
			fmt.Sprintf("unsupported envelope version %s (reader supports %s)", env.Version, semver.Major(EnvelopeVersion))).
			WithContext("version", env.Version)
	}

	sum := Digest(env.Document)
	if !bytes.Equal(sum[:], env.Digest) {
		return nil, errors.New(errors.ErrDecode, "document digest mismatch")
	}

	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		return nil, errors.Wrap(errors.ErrDecode, "failed to create CBOR decoder", err)
	}
	var doc map[string]any
	if err := dm.Unmarshal(env.Document, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrDecode, "invalid document", err)
	}

	return &Decoded{Version: env.Version, Digest: sum, Document: doc}, nil
}
