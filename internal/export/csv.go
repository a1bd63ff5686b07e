package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

// WriteCSV serializes posts as delimited text with a header row
func WriteCSV(w io.Writer, posts []models.StoredPost) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}

	for _, p := range posts {
		r := toRecord(p)
		row := []string{
			r.ExternalID,
			r.AuthorID,
			r.AuthorName,
			r.DisplayName,
			r.Content,
			r.CreatedAt.Format(time.RFC3339Nano),
			strconv.Itoa(int(r.LikeCount)),
			strconv.Itoa(int(r.RepostCount)),
			strconv.Itoa(int(r.ReplyCount)),
			r.Language,
			r.Keyword,
			strconv.FormatFloat(r.Polarity, 'g', -1, 64),
			strconv.FormatFloat(r.Subjectivity, 'g', -1, 64),
			r.Category,
			r.IngestedAt.Format(time.RFC3339Nano),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv row %s: %w", r.ExternalID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses delimited text produced by WriteCSV back into posts.
// Surrogate keys are zero; the loader assigns them on re-import.
func ReadCSV(rd io.Reader) ([]models.StoredPost, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	for i, col := range Columns {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected csv column %d: got %q, want %q", i, header[i], col)
		}
	}

	var posts []models.StoredPost
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}

		rec, err := parseCSVRow(row)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		posts = append(posts, fromRecord(rec))
	}
	return posts, nil
}

func parseCSVRow(row []string) (record, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, row[5])
	if err != nil {
		return record{}, fmt.Errorf("created_at: %w", err)
	}
	ingestedAt, err := time.Parse(time.RFC3339Nano, row[14])
	if err != nil {
		return record{}, fmt.Errorf("ingested_at: %w", err)
	}

	likes, err := strconv.Atoi(row[6])
	if err != nil {
		return record{}, fmt.Errorf("like_count: %w", err)
	}
	reposts, err := strconv.Atoi(row[7])
	if err != nil {
		return record{}, fmt.Errorf("repost_count: %w", err)
	}
	replies, err := strconv.Atoi(row[8])
	if err != nil {
		return record{}, fmt.Errorf("reply_count: %w", err)
	}

	polarity, err := strconv.ParseFloat(row[11], 64)
	if err != nil {
		return record{}, fmt.Errorf("polarity: %w", err)
	}
	subjectivity, err := strconv.ParseFloat(row[12], 64)
	if err != nil {
		return record{}, fmt.Errorf("subjectivity: %w", err)
	}

	return record{
		ExternalID:   row[0],
		AuthorID:     row[1],
		AuthorName:   row[2],
		DisplayName:  row[3],
		Content:      row[4],
		CreatedAt:    createdAt.UTC(),
		LikeCount:    int32(likes),
		RepostCount:  int32(reposts),
		ReplyCount:   int32(replies),
		Language:     row[9],
		Keyword:      row[10],
		Polarity:     polarity,
		Subjectivity: subjectivity,
		Category:     row[13],
		IngestedAt:   ingestedAt.UTC(),
	}, nil
}
