package vectordb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	chromem "github.com/philippgille/chromem-go"
)

// ExportFile is the file name the indexing flow writes under the chromem
// directory.
const ExportFile = "chromem.gob.gz"

// ChromemIndex serves queries from a chromem-go database. Each namespace is a
// collection; the unscoped index is the default collection.
type ChromemIndex struct {
	db         *chromem.DB
	collection string
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemIndex wraps an open database. defaultCollection is queried when
// no namespace is active.
func NewChromemIndex(db *chromem.DB, defaultCollection string, ef chromem.EmbeddingFunc) *ChromemIndex {
	return &ChromemIndex{db: db, collection: defaultCollection, embedFunc: ef}
}

// LoadChromem imports the export found in dir. A missing export yields an
// empty database so the service can start before anything was indexed.
func LoadChromem(dir string) (*chromem.DB, error) {
	db := chromem.NewDB()
	path := filepath.Join(dir, ExportFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return db, nil
	}
	if err := db.ImportFromFile(path, ""); err != nil {
		return nil, fmt.Errorf("import chromem export %s: %w", path, err)
	}
	return db, nil
}

func (c *ChromemIndex) Namespace(name string) (Index, error) {
	if c.db.GetCollection(name, c.embedFunc) == nil {
		return nil, fmt.Errorf("chromem collection %q: %w", name, ErrNamespaceNotFound)
	}
	return &ChromemIndex{db: c.db, collection: name, embedFunc: c.embedFunc}, nil
}

func (c *ChromemIndex) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	name := c.collection
	if req.Namespace != "" {
		name = req.Namespace
	}
	col := c.db.GetCollection(name, c.embedFunc)
	if col == nil {
		return nil, fmt.Errorf("chromem collection %q: %w", name, ErrNamespaceNotFound)
	}

	// chromem-go requires 0 < nResults <= collection size.
	n := req.TopK
	count := col.Count()
	if count == 0 || n <= 0 {
		return &QueryResponse{}, nil
	}
	if n > count {
		n = count
	}

	results, err := col.QueryEmbedding(ctx, req.Vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := &QueryResponse{Matches: make([]Match, 0, len(results))}
	for _, r := range results {
		score := float64(r.Similarity)
		m := Match{ID: r.ID, Score: &score}
		if req.IncludeMetadata {
			m.Metadata = make(map[string]any, len(r.Metadata)+1)
			for k, v := range r.Metadata {
				m.Metadata[k] = v
			}
			m.Metadata[MetaText] = r.Content
		}
		out.Matches = append(out.Matches, m)
	}
	return out, nil
}
