package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

// WriteParquet serializes posts to the columnar binary format
func WriteParquet(w io.Writer, posts []models.StoredPost) error {
	records := make([]record, len(posts))
	for i, p := range posts {
		records[i] = toRecord(p)
	}

	if err := parquet.Write(w, records); err != nil {
		return fmt.Errorf("parquet write: %w", err)
	}
	return nil
}

// ReadParquet parses a parquet payload produced by WriteParquet
func ReadParquet(rd io.Reader) ([]models.StoredPost, error) {
	// The parquet footer lives at the end of the file, so reading needs
	// random access over the whole payload.
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("parquet read: %w", err)
	}

	records, err := parquet.Read[record](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parquet decode: %w", err)
	}

	posts := make([]models.StoredPost, len(records))
	for i, r := range records {
		posts[i] = fromRecord(r)
	}
	return posts, nil
}
