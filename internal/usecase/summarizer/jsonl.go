package summarizer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
)

// ParseJSONL decodes a line-delimited JSON transcript. Blank lines are
// skipped; a malformed line fails the whole parse.
func ParseJSONL(raw string) ([]entities.TranscriptItem, error) {
	items := []entities.TranscriptItem{}

	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item entities.TranscriptItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, fmt.Errorf("invalid transcript line %d: %w", lineNo, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	return items, nil
}
