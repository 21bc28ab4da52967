// Package extract enriches broadcasts with moderator and guest persons
// via a chat-completion model. The model contract is strictly positional:
// one response line per input broadcast, validated by count, so a
// malformed answer can never smear persons across broadcasts.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"talk-catalog/pkg/content"
	"talk-catalog/pkg/domain"
)

const (
	// batchSize bounds prompt length and per-call API cost.
	batchSize = 5

	// moderatorMarker classifies an extracted entry as moderator when
	// its text contains it (case-sensitive; also matches "Moderatorin").
	moderatorMarker = "Moderator"

	noneToken = "none"
)

// Completer sends one chat completion and returns the generated text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Extractor batches unenriched broadcasts through the model.
type Extractor struct {
	completer Completer
}

// NewExtractor creates an extractor on top of the given completion client.
func NewExtractor(completer Completer) *Extractor {
	return &Extractor{completer: completer}
}

// batchItem is one element of the JSON payload sent as the user turn.
type batchItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// EnrichShow extracts persons for every unenriched broadcast of the show,
// in batches, mutating the broadcasts in place. afterBatch is invoked
// after every batch (checkpoint hook); its error aborts the show.
//
// A failed batch is logged and left unenriched: those broadcasts stay
// selectable and are simply retried on the next run.
func (e *Extractor) EnrichShow(ctx context.Context, show *domain.Show, afterBatch func() error) error {
	selection := show.Unenriched()
	if len(selection) == 0 {
		return nil
	}

	processed := 0
	for start := 0; start < len(selection); start += batchSize {
		end := start + batchSize
		if end > len(selection) {
			end = len(selection)
		}
		batch := selection[start:end]

		if err := e.extractBatch(ctx, batch); err != nil {
			log.Printf("Extractor: ERROR extracting batch for %s: %v", show.Title, err)
		}
		processed += len(batch)
		log.Printf("%s: %d/%d", show.Title, processed, len(selection))

		if afterBatch != nil {
			if err := afterBatch(); err != nil {
				return fmt.Errorf("checkpoint after batch: %w", err)
			}
		}
	}
	return nil
}

// extractBatch sends one batch and applies the response lines to the
// broadcasts. Any error leaves every broadcast of the batch untouched.
func (e *Extractor) extractBatch(ctx context.Context, batch []*domain.Broadcast) error {
	payload, err := buildPayload(batch)
	if err != nil {
		return err
	}

	answer, err := e.completer.Complete(ctx, systemPrompt, payload)
	if err != nil {
		return fmt.Errorf("completion failed: %w", err)
	}

	lines := responseLines(answer)
	if len(lines) != len(batch) {
		return fmt.Errorf("broadcasts/lines mismatch: %d broadcasts, %d lines", len(batch), len(lines))
	}

	for i, line := range lines {
		applyLine(batch[i], line)
	}
	return nil
}

// buildPayload serializes the batch as the JSON user turn. Descriptions
// are HTML-stripped; feeds embed markup and the names survive without it.
func buildPayload(batch []*domain.Broadcast) (string, error) {
	items := make([]batchItem, 0, len(batch))
	for _, broadcast := range batch {
		items = append(items, batchItem{
			Title:       broadcast.Title,
			Description: content.StripTags(broadcast.Description),
		})
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal batch: %w", err)
	}
	return string(data), nil
}

// responseLines splits the answer into its non-empty lines, dropping
// markdown code-fence markers the model sometimes wraps around output.
func responseLines(answer string) []string {
	var lines []string
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "```", ""))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// applyLine parses one response line into the broadcast's moderator and
// guest lists.
func applyLine(broadcast *domain.Broadcast, line string) {
	if line == noneToken {
		return
	}
	for _, entry := range strings.Split(line, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		person := domain.Person{Name: entry}
		person.Normalize()
		if strings.Contains(entry, moderatorMarker) {
			broadcast.Moderators = append(broadcast.Moderators, person)
		} else {
			broadcast.Guests = append(broadcast.Guests, person)
		}
	}
}
