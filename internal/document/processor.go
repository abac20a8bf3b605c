package document

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/document"
	"github.com/coloradoleasecheck/leasecheck/internal/core/events"
)

// riskKeywords are lease clauses the placeholder analysis scans for. Real
// clause analysis arrives with the analyzer service; until then uploads get
// a keyword pass so the review queue has something to sort by.
var riskKeywords = map[string]string{
	"waive":              "tenant rights waiver language",
	"as-is":              "as-is condition clause",
	"non-refundable":     "non-refundable fee language",
	"liquidated damages": "liquidated damages clause",
	"confess":            "confession of judgment language",
	"attorney's fees":    "one-sided attorney fee clause",
}

// Processor advances uploaded documents through pending -> processing ->
// processed/error. It subscribes to document.uploaded on the event bus.
type Processor struct {
	repository RepositoryAPI
	storage    *Storage
	logger     *slog.Logger
}

func NewProcessor(repository RepositoryAPI, storage *Storage, logger *slog.Logger) *Processor {
	return &Processor{
		repository: repository,
		storage:    storage,
		logger:     logger,
	}
}

func (p *Processor) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeDocumentUploaded, p.handleUploaded)
}

func (p *Processor) handleUploaded(ctx context.Context, event events.Event) error {
	uploaded, ok := event.(*events.DocumentUploadedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	return p.Process(ctx, uploaded.DocumentID)
}

// Process runs the analysis for one document. Failures record the error on
// the row and set status error rather than bubbling a retry loop.
func (p *Processor) Process(ctx context.Context, documentID int64) error {
	doc, err := p.repository.GetByID(documentID)
	if err != nil {
		return fmt.Errorf("failed to load document %d: %w", documentID, err)
	}
	if doc.Status != document.StatusPending {
		p.logger.Info("document already picked up, skipping", "document_id", doc.ID, "status", doc.Status)
		return nil
	}

	if err := p.repository.UpdateStatus(doc.ID, document.StatusProcessing, nil); err != nil {
		return fmt.Errorf("failed to mark document processing: %w", err)
	}

	riskLevel, riskFactors, annotations, err := p.analyze(doc)
	if err != nil {
		msg := err.Error()
		if markErr := p.repository.UpdateStatus(doc.ID, document.StatusError, &msg); markErr != nil {
			p.logger.Error("failed to record processing error", "error", markErr, "document_id", doc.ID)
		}
		p.logger.Error("document processing failed", "error", err, "document_id", doc.ID)
		return nil
	}

	if err := p.repository.UpdateAnalysis(doc.ID, document.StatusProcessed, riskLevel, riskFactors, annotations); err != nil {
		return fmt.Errorf("failed to record analysis for document %d: %w", doc.ID, err)
	}

	p.logger.Info("document processed",
		"document_id", doc.ID,
		"risk_level", riskLevel)
	return nil
}

func (p *Processor) analyze(doc *document.Document) (string, []byte, []byte, error) {
	path, err := p.storage.Path(doc.StoredFilename)
	if err != nil {
		return "", nil, nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to read stored file: %w", err)
	}

	// Keyword scan over whatever text the container leaks. Binary formats
	// surface less text, which only lowers the flag count.
	text := strings.ToLower(string(raw))
	var factors []string
	for keyword, label := range riskKeywords {
		if strings.Contains(text, keyword) {
			factors = append(factors, label)
		}
	}

	riskLevel := "low"
	switch {
	case len(factors) >= 3:
		riskLevel = "high"
	case len(factors) >= 1:
		riskLevel = "medium"
	}

	riskFactors, err := json.Marshal(factors)
	if err != nil {
		return "", nil, nil, err
	}
	annotations, err := json.Marshal(map[string]interface{}{
		"scanned_bytes": len(raw),
		"flag_count":    len(factors),
	})
	if err != nil {
		return "", nil, nil, err
	}

	return riskLevel, riskFactors, annotations, nil
}
