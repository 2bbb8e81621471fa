package chromem

import (
	"context"
	"strings"
	"testing"
)

// testEmbedding maps text to a fixed two-dimensional vector so similarity
// is fully deterministic: anything mentioning paris points one way,
// everything else the other.
func testEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.Contains(strings.ToLower(text), "paris") {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

func TestStore_EmbedAndStore(t *testing.T) {
	ctx := context.Background()
	store := New(testEmbedding)

	ids, err := store.EmbedAndStore(ctx,
		[]string{"Paris is the capital of France.", "Berlin is the capital of Germany."},
		"cities",
		[]map[string]any{{"source": "a.txt"}, {"source": "b.txt"}},
		"")
	if err != nil {
		t.Fatalf("EmbedAndStore: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	if ids[0] == ids[1] {
		t.Error("ids must be unique")
	}

	infos, err := store.ListCollections(ctx)
	if err != nil {
		t.Fatalf("ListCollections: %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "cities" || infos[0].Count != 2 {
		t.Errorf("unexpected collections: %+v", infos)
	}
}

func TestStore_Query(t *testing.T) {
	ctx := context.Background()
	store := New(testEmbedding)

	_, err := store.EmbedAndStore(ctx,
		[]string{"Paris is the capital of France.", "Berlin is the capital of Germany."},
		"cities", nil, "")
	if err != nil {
		t.Fatalf("EmbedAndStore: %v", err)
	}

	docs, err := store.Query(ctx, "tell me about paris", "cities", 1, "")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 result, got %d", len(docs))
	}
	if !strings.Contains(docs[0].Text, "Paris") {
		t.Errorf("expected the paris document, got %q", docs[0].Text)
	}
	if docs[0].Score < 0.99 {
		t.Errorf("expected near-perfect similarity, got %v", docs[0].Score)
	}
}

func TestStore_QueryClampsTopK(t *testing.T) {
	ctx := context.Background()
	store := New(testEmbedding)

	_, err := store.EmbedAndStore(ctx, []string{"only one document"}, "tiny", nil, "")
	if err != nil {
		t.Fatalf("EmbedAndStore: %v", err)
	}

	// asking for more results than documents must not fail
	docs, err := store.Query(ctx, "anything", "tiny", 10, "")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected 1 result, got %d", len(docs))
	}
}

func TestStore_QueryEmptyCollection(t *testing.T) {
	ctx := context.Background()
	store := New(testEmbedding)

	docs, err := store.Query(ctx, "anything", "nonexistent", 5, "")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected empty result, got %d", len(docs))
	}
}

func TestStore_MetadataRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(testEmbedding)

	_, err := store.EmbedAndStore(ctx,
		[]string{"Paris document"},
		"meta",
		[]map[string]any{{"chunk_index": 3, "source": "doc.txt"}},
		"")
	if err != nil {
		t.Fatalf("EmbedAndStore: %v", err)
	}

	docs, err := store.Query(ctx, "paris", "meta", 1, "")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 result, got %d", len(docs))
	}
	// metadata values come back as strings
	if docs[0].Metadata["chunk_index"] != "3" || docs[0].Metadata["source"] != "doc.txt" {
		t.Errorf("unexpected metadata: %v", docs[0].Metadata)
	}
}

func TestStore_PersistentRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewPersistent(dir, testEmbedding)
	if err != nil {
		t.Fatalf("NewPersistent: %v", err)
	}
	if _, err := store.EmbedAndStore(ctx, []string{"Paris document"}, "persisted", nil, ""); err != nil {
		t.Fatalf("EmbedAndStore: %v", err)
	}

	reopened, err := NewPersistent(dir, testEmbedding)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	infos, err := reopened.ListCollections(ctx)
	if err != nil {
		t.Fatalf("ListCollections: %v", err)
	}
	if len(infos) != 1 || infos[0].Count != 1 {
		t.Errorf("expected persisted collection with 1 document, got %+v", infos)
	}
}
