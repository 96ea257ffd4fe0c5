package interp

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

const traceVersion = 1

var traceEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("interp: failed to create CBOR enc mode: %v", err))
	}
	traceEncMode = em
}

type traceFile struct {
	Version int           `cbor:"1,keyasint"`
	Records []TraceRecord `cbor:"2,keyasint"`
}

// EncodeTrace writes records to w as a single CBOR document.
func EncodeTrace(w io.Writer, records []TraceRecord) error {
	if err := traceEncMode.NewEncoder(w).Encode(traceFile{Version: traceVersion, Records: records}); err != nil {
		return fmt.Errorf("interp: encode trace: %w", err)
	}
	return nil
}

// DecodeTrace reads a document written by EncodeTrace.
func DecodeTrace(r io.Reader) ([]TraceRecord, error) {
	var f traceFile
	if err := cbor.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("interp: decode trace: %w", err)
	}
	if f.Version != traceVersion {
		return nil, fmt.Errorf("interp: unsupported trace version %d", f.Version)
	}
	return f.Records, nil
}
