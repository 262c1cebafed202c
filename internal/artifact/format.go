package artifact

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/handiism/notecorpus/internal/model"
	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/encoding/protowire"
)

// Version is the current format version.
const Version uint16 = 1

const (
	headerSize = 8

	flagCompressed uint16 = 1 << 0
)

var magic = [4]byte{'N', 'T', 'C', 'P'}

// Field numbers of the body message.
const (
	fieldRunID   protowire.Number = 1
	fieldCreated protowire.Number = 2
	fieldEntry   protowire.Number = 3
	fieldFailure protowire.Number = 4

	fieldPath   protowire.Number = 1
	fieldToken  protowire.Number = 2
	fieldReason protowire.Number = 2
)

var (
	// ErrBadMagic reports a file that is not an artifact.
	ErrBadMagic = errors.New("not a notecorpus artifact")

	// ErrUnsupportedVersion reports an artifact written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported artifact version")

	// ErrCorrupt reports a truncated or malformed body.
	ErrCorrupt = errors.New("corrupt artifact")
)

// Header describes an artifact.
type Header struct {
	Version    uint16
	Compressed bool
	RunID      string
	Created    time.Time
}

// Artifact is a decoded artifact.
type Artifact struct {
	Header Header
	Corpus *model.Corpus
}

// Encode serializes corpus with the given header fields.
func Encode(hdr Header, corpus *model.Corpus) ([]byte, error) {
	body := encodeBody(hdr, corpus)

	var flags uint16
	if hdr.Compressed {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		body = enc.EncodeAll(body, nil)
		if err := enc.Close(); err != nil {
			return nil, err
		}
		flags |= flagCompressed
	}

	out := make([]byte, headerSize, headerSize+len(body))
	copy(out[0:4], magic[:])
	binary.LittleEndian.PutUint16(out[4:6], Version)
	binary.LittleEndian.PutUint16(out[6:8], flags)
	return append(out, body...), nil
}

func encodeBody(hdr Header, corpus *model.Corpus) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldRunID, protowire.BytesType)
	b = protowire.AppendString(b, hdr.RunID)
	b = protowire.AppendTag(b, fieldCreated, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(hdr.Created.Unix()))

	for _, path := range corpus.Paths() {
		var entry []byte
		entry = protowire.AppendTag(entry, fieldPath, protowire.BytesType)
		entry = protowire.AppendString(entry, path)
		for _, tok := range corpus.Mapping[path] {
			entry = protowire.AppendTag(entry, fieldToken, protowire.BytesType)
			entry = protowire.AppendString(entry, tok)
		}
		b = protowire.AppendTag(b, fieldEntry, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}

	failures := make([]model.Failure, len(corpus.Failures))
	copy(failures, corpus.Failures)
	sorted := &model.Corpus{Failures: failures}
	sorted.SortFailures()
	for _, f := range sorted.Failures {
		var msg []byte
		msg = protowire.AppendTag(msg, fieldPath, protowire.BytesType)
		msg = protowire.AppendString(msg, f.Path)
		msg = protowire.AppendTag(msg, fieldReason, protowire.BytesType)
		msg = protowire.AppendString(msg, f.Reason)
		b = protowire.AppendTag(b, fieldFailure, protowire.BytesType)
		b = protowire.AppendBytes(b, msg)
	}
	return b
}

// Decode reads an artifact from r.
func Decode(r io.Reader) (*Artifact, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(data)
}

// DecodeBytes parses an artifact held in memory.
func DecodeBytes(data []byte) (*Artifact, error) {
	if len(data) < headerSize || !bytes.Equal(data[0:4], magic[:]) {
		return nil, ErrBadMagic
	}

	version := binary.LittleEndian.Uint16(data[4:6])
	if version == 0 || version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	flags := binary.LittleEndian.Uint16(data[6:8])

	body := data[headerSize:]
	if flags&flagCompressed != 0 {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		body, err = dec.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	}

	a := &Artifact{
		Header: Header{Version: version, Compressed: flags&flagCompressed != 0},
		Corpus: model.NewCorpus(),
	}
	if err := decodeBody(body, a); err != nil {
		return nil, err
	}
	return a, nil
}

func decodeBody(b []byte, a *Artifact) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return corrupt(n)
		}
		b = b[n:]

		switch {
		case num == fieldRunID && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return corrupt(n)
			}
			a.Header.RunID = v
			b = b[n:]
		case num == fieldCreated && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return corrupt(n)
			}
			a.Header.Created = time.Unix(int64(v), 0).UTC()
			b = b[n:]
		case num == fieldEntry && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return corrupt(n)
			}
			path, tokens, err := decodeEntry(v)
			if err != nil {
				return err
			}
			if _, dup := a.Corpus.Mapping[path]; dup {
				return fmt.Errorf("%w: duplicate entry %q", ErrCorrupt, path)
			}
			a.Corpus.Mapping[path] = tokens
			b = b[n:]
		case num == fieldFailure && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return corrupt(n)
			}
			f, err := decodeFailure(v)
			if err != nil {
				return err
			}
			a.Corpus.Failures = append(a.Corpus.Failures, f)
			b = b[n:]
		default:
			// unknown fields from newer writers are skipped
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return corrupt(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func decodeEntry(b []byte) (string, []model.Token, error) {
	var path string
	tokens := []model.Token{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", nil, corrupt(n)
		}
		b = b[n:]

		if typ != protowire.BytesType || (num != fieldPath && num != fieldToken) {
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return "", nil, corrupt(n)
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeString(b)
		if n < 0 {
			return "", nil, corrupt(n)
		}
		if num == fieldPath {
			path = v
		} else {
			tokens = append(tokens, v)
		}
		b = b[n:]
	}
	return path, tokens, nil
}

func decodeFailure(b []byte) (model.Failure, error) {
	var f model.Failure
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return f, corrupt(n)
		}
		b = b[n:]

		if typ != protowire.BytesType || (num != fieldPath && num != fieldReason) {
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return f, corrupt(n)
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeString(b)
		if n < 0 {
			return f, corrupt(n)
		}
		if num == fieldPath {
			f.Path = v
		} else {
			f.Reason = v
		}
		b = b[n:]
	}
	return f, nil
}

func corrupt(n int) error {
	return fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
}
