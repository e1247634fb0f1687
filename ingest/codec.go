package ingest

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"io"
)

// DecodePayload reverses the upload encoding: base64 over a zlib stream.
// Some producers emit a raw deflate stream without the zlib header, so that
// form is accepted too.
func DecodePayload(payload string) ([]byte, error) {
	compressed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("ingest: decoding base64 payload: %w", err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err == nil {
		defer zr.Close()
		data, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("ingest: inflating payload: %w", err)
		}
		return data, nil
	}

	fr := flate.NewReader(bytes.NewReader(compressed))
	defer fr.Close()
	data, ferr := io.ReadAll(fr)
	if ferr != nil {
		return nil, fmt.Errorf("ingest: inflating payload: %w (zlib: %w)", ferr, err)
	}
	return data, nil
}
