package engine

import (
	"math"
	"testing"

	"github.com/faqbase/faqbase/vector"
)

func TestRegisteredFunctions(t *testing.T) {
	RegisterSearchFunctions()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE t (id TEXT PRIMARY KEY, txt TEXT, emb BLOB)`); err != nil {
		t.Fatalf("creating table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO t VALUES ('a', 'reset password', ?)`, vector.Encode([]float32{1, 0, 0})); err != nil {
		t.Fatalf("inserting row: %v", err)
	}

	var sim float64
	err = db.QueryRow(`SELECT vec_cosine(emb, ?) FROM t WHERE id = 'a'`, vector.Encode([]float32{1, 0, 0})).Scan(&sim)
	if err != nil {
		t.Fatalf("vec_cosine query failed: %v", err)
	}
	if math.Abs(sim-1) > 1e-5 {
		t.Errorf("vec_cosine(self) = %v, want ~1", sim)
	}

	err = db.QueryRow(`SELECT vec_cosine(emb, ?) FROM t WHERE id = 'a'`, vector.Encode([]float32{0, 1, 0})).Scan(&sim)
	if err != nil {
		t.Fatalf("vec_cosine orthogonal query failed: %v", err)
	}
	if math.Abs(sim) > 1e-5 {
		t.Errorf("vec_cosine(orthogonal) = %v, want ~0", sim)
	}

	var tsim float64
	err = db.QueryRow(`SELECT trgm_sim(txt, 'reset password') FROM t WHERE id = 'a'`).Scan(&tsim)
	if err != nil {
		t.Fatalf("trgm_sim query failed: %v", err)
	}
	if tsim != 1 {
		t.Errorf("trgm_sim(identical) = %v, want 1", tsim)
	}
}

func TestVecCosine_NullEmbedding(t *testing.T) {
	RegisterSearchFunctions()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	var sim *float64
	err = db.QueryRow(`SELECT vec_cosine(NULL, ?)`, vector.Encode([]float32{1, 0})).Scan(&sim)
	if err != nil {
		t.Fatalf("vec_cosine(NULL, blob) failed: %v", err)
	}
	if sim != nil {
		t.Errorf("vec_cosine(NULL, blob) = %v, want NULL", *sim)
	}
}
