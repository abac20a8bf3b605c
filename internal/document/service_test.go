package document_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/coloradoleasecheck/leasecheck/internal"
	documentmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/document"
	documentpkg "github.com/coloradoleasecheck/leasecheck/internal/document"
)

func TestDocument(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Document Suite")
}

type mockDocumentRepo struct {
	createError error
	getError    error
	documents   map[int64]*documentmodel.Document
	nextID      int64
	statusLog   []string
}

func newMockDocumentRepo() *mockDocumentRepo {
	return &mockDocumentRepo{documents: map[int64]*documentmodel.Document{}, nextID: 1}
}

func (m *mockDocumentRepo) Create(doc *documentmodel.Document) error {
	if m.createError != nil {
		return m.createError
	}
	doc.ID = m.nextID
	m.nextID++
	copied := *doc
	m.documents[doc.ID] = &copied
	return nil
}

func (m *mockDocumentRepo) GetByID(id int64) (*documentmodel.Document, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	doc, ok := m.documents[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *mockDocumentRepo) ListByEmail(email string, limit, offset int) ([]*documentmodel.Document, error) {
	var out []*documentmodel.Document
	for _, doc := range m.documents {
		if doc.UserEmail == email {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *mockDocumentRepo) UpdateStatus(id int64, status string, processingError *string) error {
	doc, ok := m.documents[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	doc.Status = status
	doc.ProcessingError = processingError
	m.statusLog = append(m.statusLog, status)
	return nil
}

func (m *mockDocumentRepo) UpdateAnalysis(id int64, status string, riskLevel string, riskFactors, annotations []byte) error {
	doc, ok := m.documents[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	doc.Status = status
	doc.RiskLevel = &riskLevel
	doc.RiskFactors = riskFactors
	doc.Annotations = annotations
	m.statusLog = append(m.statusLog, status)
	return nil
}

func pdfBytes(body string) []byte {
	return []byte("%PDF-1.4\n" + body + "\n%%EOF")
}

var _ = ginkgo.Describe("DocumentService", func() {
	var (
		service *documentpkg.DocumentService
		repo    *mockDocumentRepo
		storage *documentpkg.Storage
		baseDir string
		logger  *slog.Logger
	)

	ginkgo.BeforeEach(func() {
		baseDir = ginkgo.GinkgoT().TempDir()
		repo = newMockDocumentRepo()
		storage = documentpkg.NewStorage(baseDir)
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = documentpkg.NewService(repo, storage, nil, 10<<20, logger)
	})

	ginkgo.Context("Upload", func() {
		ginkgo.It("stores a valid pdf and records a pending row", func() {
			content := pdfBytes("standard colorado lease")

			doc, err := service.Upload(context.Background(), "Tenant@Example.com", "my lease.pdf", int64(len(content)), bytes.NewReader(content))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(doc.ID).To(gomega.Equal(int64(1)))
			gomega.Expect(doc.Status).To(gomega.Equal(documentmodel.StatusPending))
			gomega.Expect(doc.UserEmail).To(gomega.Equal("tenant@example.com"))
			gomega.Expect(doc.OriginalFilename).To(gomega.Equal("my lease.pdf"))
			gomega.Expect(doc.MimeType).To(gomega.ContainSubstring("application/pdf"))
			gomega.Expect(doc.SizeBytes).To(gomega.Equal(int64(len(content))))

			stored, err := os.ReadFile(filepath.Join(baseDir, doc.StoredFilename))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(stored).To(gomega.Equal(content))
			gomega.Expect(doc.StoredFilename).To(gomega.HaveSuffix(".pdf"))
			gomega.Expect(doc.StoredFilename).ToNot(gomega.ContainSubstring("my lease"))
		})

		ginkgo.It("rejects a disallowed extension", func() {
			_, err := service.Upload(context.Background(), "tenant@example.com", "lease.exe", 10, strings.NewReader("MZ"))

			gomega.Expect(err).To(gomega.MatchError(internal.ErrUnsupportedFileType))
		})

		ginkgo.It("rejects an upload whose declared size exceeds the limit", func() {
			service = documentpkg.NewService(repo, storage, nil, 64, logger)

			_, err := service.Upload(context.Background(), "tenant@example.com", "lease.pdf", 1024, bytes.NewReader(pdfBytes("x")))

			gomega.Expect(err).To(gomega.MatchError(internal.ErrFileTooLarge))
		})

		ginkgo.It("rejects a stream that outgrows its declared size", func() {
			service = documentpkg.NewService(repo, storage, nil, 32, logger)
			content := pdfBytes(strings.Repeat("a", 256))

			_, err := service.Upload(context.Background(), "tenant@example.com", "lease.pdf", 16, bytes.NewReader(content))

			gomega.Expect(err).To(gomega.MatchError(internal.ErrFileTooLarge))
			entries, readErr := os.ReadDir(baseDir)
			gomega.Expect(readErr).ToNot(gomega.HaveOccurred())
			for _, entry := range entries {
				files, _ := os.ReadDir(filepath.Join(baseDir, entry.Name()))
				gomega.Expect(files).To(gomega.BeEmpty())
			}
		})

		ginkgo.It("rejects a pdf extension hiding plain text", func() {
			_, err := service.Upload(context.Background(), "tenant@example.com", "lease.pdf", 24, strings.NewReader("just some text, no pdf"))

			gomega.Expect(err).To(gomega.MatchError(internal.ErrUnsupportedFileType))
		})
	})

	ginkgo.Context("GetByID", func() {
		ginkgo.It("maps a missing row to the domain error", func() {
			_, err := service.GetByID(99)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrDocumentNotFound))
		})
	})
})

var _ = ginkgo.Describe("Processor", func() {
	var (
		processor *documentpkg.Processor
		service   *documentpkg.DocumentService
		repo      *mockDocumentRepo
		storage   *documentpkg.Storage
		logger    *slog.Logger
	)

	upload := func(body string) *documentmodel.Document {
		content := pdfBytes(body)
		doc, err := service.Upload(context.Background(), "tenant@example.com", "lease.pdf", int64(len(content)), bytes.NewReader(content))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return doc
	}

	ginkgo.BeforeEach(func() {
		repo = newMockDocumentRepo()
		storage = documentpkg.NewStorage(ginkgo.GinkgoT().TempDir())
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = documentpkg.NewService(repo, storage, nil, 10<<20, logger)
		processor = documentpkg.NewProcessor(repo, storage, logger)
	})

	ginkgo.It("advances a clean lease to processed with low risk", func() {
		doc := upload("ordinary twelve month residential lease")

		err := processor.Process(context.Background(), doc.ID)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		processed, _ := repo.GetByID(doc.ID)
		gomega.Expect(processed.Status).To(gomega.Equal(documentmodel.StatusProcessed))
		gomega.Expect(*processed.RiskLevel).To(gomega.Equal("low"))
		gomega.Expect(repo.statusLog).To(gomega.Equal([]string{documentmodel.StatusProcessing, documentmodel.StatusProcessed}))
	})

	ginkgo.It("flags risky clause language", func() {
		doc := upload("tenant agrees to waive all claims; deposit is non-refundable; unit rented as-is")

		err := processor.Process(context.Background(), doc.ID)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		processed, _ := repo.GetByID(doc.ID)
		gomega.Expect(*processed.RiskLevel).To(gomega.Equal("high"))
		gomega.Expect(string(processed.RiskFactors)).To(gomega.ContainSubstring("non-refundable fee language"))
	})

	ginkgo.It("records an error status when the stored file is gone", func() {
		doc := upload("some lease")
		gomega.Expect(storage.Remove(doc.StoredFilename)).To(gomega.Succeed())

		err := processor.Process(context.Background(), doc.ID)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		processed, _ := repo.GetByID(doc.ID)
		gomega.Expect(processed.Status).To(gomega.Equal(documentmodel.StatusError))
		gomega.Expect(processed.ProcessingError).ToNot(gomega.BeNil())
	})

	ginkgo.It("skips a document that already left pending", func() {
		doc := upload("some lease")
		gomega.Expect(repo.UpdateStatus(doc.ID, documentmodel.StatusProcessed, nil)).To(gomega.Succeed())
		repo.statusLog = nil

		err := processor.Process(context.Background(), doc.ID)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(repo.statusLog).To(gomega.BeEmpty())
	})
})
