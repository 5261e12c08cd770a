// package formatter renders movie and rating lists as text, Markdown and CSV, and reads rating imports
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/filmhub/internal/models"
	"github.com/desertthunder/filmhub/internal/shared"
)

// Export formats understood by [WriteRatings].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// Stars renders score as ten filled or empty stars.
func Stars(score int) string {
	score = max(0, min(score, models.MaxScore))
	return strings.Repeat("★", score) + strings.Repeat("☆", models.MaxScore-score)
}

// MovieLine is the one-line text form of a movie: "[id] Title (year) · genre · director · avg".
func MovieLine(m models.Movie) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s", m.ExternalID, m.Title)
	if m.Year > 0 {
		fmt.Fprintf(&b, " (%d)", m.Year)
	}
	for _, part := range []string{m.Genre, m.Director} {
		if part != "" {
			b.WriteString(" · " + part)
		}
	}
	b.WriteString(" · ★ " + m.RatingLabel())
	return b.String()
}

// MoviesToText renders a titled, numbered movie list.
func MoviesToText(title string, movies []models.Movie) []byte {
	var buf bytes.Buffer

	if title != "" {
		buf.WriteString(fmt.Sprintf("%s (%d)\n\n", title, len(movies)))
	}
	for i, m := range movies {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, MovieLine(m)))
	}

	return buf.Bytes()
}

// MoviesToMarkdown renders movies as a Markdown table under a heading.
func MoviesToMarkdown(title string, movies []models.Movie) []byte {
	var buf bytes.Buffer

	if title != "" {
		buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	}
	buf.WriteString("| ID | Title | Year | Genre | Director | Avg |\n")
	buf.WriteString("|---:|---|---:|---|---|---:|\n")
	for _, m := range movies {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			m.ExternalID, escapeCell(m.Title), yearCell(int(m.Year)), escapeCell(m.Genre), escapeCell(m.Director), m.RatingLabel()))
	}

	return buf.Bytes()
}

// MoviesToCSV converts movies to CSV with columns: external_id, title, year, genre, director, average_rating, poster_url
func MoviesToCSV(movies []models.Movie) ([]byte, error) {
	headers := []string{"external_id", "title", "year", "genre", "director", "average_rating", "poster_url"}

	records := make([][]string, 0, len(movies))
	for _, m := range movies {
		avg := ""
		if m.AverageRating != nil {
			avg = strconv.FormatFloat(*m.AverageRating, 'f', -1, 64)
		}
		records = append(records, []string{
			strconv.Itoa(m.ExternalID), m.Title, yearCell(int(m.Year)), m.Genre, m.Director, avg, m.PosterURL,
		})
	}
	return writeCSV(headers, records)
}

// RatingsToCSV converts rating entries to CSV with columns: movie, title, score, comment.
//
// The output can be fed back to [ParseRatingsCSV].
func RatingsToCSV(entries []models.RatingEntry) ([]byte, error) {
	headers := []string{"movie", "title", "score", "comment"}

	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, []string{
			strconv.Itoa(e.Rating.Movie), e.Title(), strconv.Itoa(e.Rating.Score), e.Rating.Comment,
		})
	}
	return writeCSV(headers, records)
}

// RatingsToMarkdown renders rating entries as a Markdown table.
func RatingsToMarkdown(entries []models.RatingEntry) []byte {
	var buf bytes.Buffer

	buf.WriteString("# My Ratings\n\n")
	buf.WriteString(fmt.Sprintf("**Rated movies**: %d\n\n", len(entries)))
	buf.WriteString("| Movie | Title | Score | Comment |\n")
	buf.WriteString("|---:|---|---|---|\n")
	for _, e := range entries {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s %d/10 | %s |\n",
			e.Rating.Movie, escapeCell(e.Title()), Stars(e.Rating.Score), e.Rating.Score, escapeCell(e.Rating.Comment)))
	}

	return buf.Bytes()
}

// RatingsToText renders rating entries one per line.
func RatingsToText(entries []models.RatingEntry) []byte {
	var buf bytes.Buffer

	for _, e := range entries {
		buf.WriteString(fmt.Sprintf("%s %2d/10  [%d] %s", Stars(e.Rating.Score), e.Rating.Score, e.Rating.Movie, e.Title()))
		if e.Rating.Comment != "" {
			buf.WriteString(fmt.Sprintf(" - %s", e.Rating.Comment))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// RatingRow is one parsed line of a rating import. Err is set when the line could not be understood.
type RatingRow struct {
	Line    int
	Movie   int
	Score   int
	Comment string
	Err     error
}

// ParseRatingsCSV reads "movie,score[,comment]" rows. A first row whose movie column is not a number is
// treated as a header. Malformed rows are returned with Err set rather than failing the whole file.
func ParseRatingsCSV(r io.Reader) ([]RatingRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows := []RatingRow{}
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", shared.ErrInvalidInput, line, err)
		}

		if isBlank(record) {
			continue
		}
		if line == 1 && isHeader(record) {
			continue
		}
		rows = append(rows, parseRatingRecord(line, record))
	}
	return rows, nil
}

func parseRatingRecord(line int, record []string) RatingRow {
	row := RatingRow{Line: line}
	if len(record) < 2 {
		row.Err = fmt.Errorf("%w: line %d: expected movie and score", shared.ErrInvalidInput, line)
		return row
	}

	movie, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil || movie <= 0 {
		row.Err = fmt.Errorf("%w: line %d: invalid movie id %q", shared.ErrInvalidInput, line, record[0])
		return row
	}

	// Four columns is the RatingsToCSV layout: movie, title, score, comment.
	scoreField, comment := record[1], ""
	switch {
	case len(record) >= 4:
		scoreField, comment = record[2], record[3]
	case len(record) == 3:
		comment = record[2]
	}

	score, err := strconv.Atoi(strings.TrimSpace(scoreField))
	if err != nil {
		row.Err = fmt.Errorf("%w: line %d: invalid score %q", shared.ErrInvalidInput, line, scoreField)
		return row
	}

	row.Movie = movie
	row.Score = score
	row.Comment = strings.TrimSpace(comment)
	return row
}

// WriteRatings writes entries to path in format and returns the path written.
func WriteRatings(entries []models.RatingEntry, format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("ratings_%d.%s", time.Now().Unix(), extension(format))
	}

	var data []byte
	var err error
	switch format {
	case FormatCSV:
		data, err = RatingsToCSV(entries)
	case FormatMarkdown:
		data = RatingsToMarkdown(entries)
	case FormatText:
		data = RatingsToText(entries)
	case FormatJSON:
		data, err = shared.MarshalJSON(entries, true)
	default:
		return "", fmt.Errorf("%w: unsupported format %q (want csv, markdown, txt or json)", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render ratings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write ratings file: %w", err)
	}
	return path, nil
}

// DownloadPoster downloads a movie poster and returns the raw bytes.
func DownloadPoster(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: movie has no poster URL", shared.ErrInvalidInput)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download poster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download poster: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read poster data: %w", err)
	}
	return data, nil
}

func writeCSV(headers []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write CSV records: %w", err)
	}
	return buf.Bytes(), nil
}

func extension(format string) string {
	if format == FormatMarkdown {
		return "md"
	}
	return format
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func yearCell(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func isHeader(record []string) bool {
	return !isInt(record[0])
}

func isInt(s string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil
}
