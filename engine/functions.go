package engine

import (
	"database/sql/driver"
	"fmt"

	sqlite "modernc.org/sqlite"

	"github.com/faqbase/faqbase/textsim"
	"github.com/faqbase/faqbase/vector"
)

// RegisterSearchFunctions registers the scalar functions used by candidate
// retrieval with the driver so they are available on connections opened after
// this call:
//
//	vec_cosine(embedding BLOB, query BLOB) -> REAL cosine similarity
//	trgm_sim(a TEXT, b TEXT)               -> REAL trigram similarity
//
// Registration is process-wide and idempotent; the driver rejects duplicate
// names and those errors are ignored here.
func RegisterSearchFunctions() {
	_ = sqlite.RegisterDeterministicScalarFunction("vec_cosine", 2, vecCosineImpl)
	_ = sqlite.RegisterDeterministicScalarFunction("trgm_sim", 2, trgmSimImpl)
}

func vecCosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("vec_cosine: expected 2 arguments, got %d", len(args))
	}
	a, err := asEmbedding(args[0])
	if err != nil {
		return nil, err
	}
	b, err := asEmbedding(args[1])
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	return vector.CosineSimilarity(a, b), nil
}

func trgmSimImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("trgm_sim: expected 2 arguments, got %d", len(args))
	}
	a, ok := asText(args[0])
	if !ok {
		return nil, nil
	}
	b, ok := asText(args[1])
	if !ok {
		return nil, nil
	}
	return textsim.Similarity(a, b), nil
}

func asEmbedding(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vector.Decode(v)
	default:
		return nil, fmt.Errorf("vec_cosine: unsupported argument type %T; want BLOB", arg)
	}
}

func asText(arg driver.Value) (string, bool) {
	switch v := arg.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}
