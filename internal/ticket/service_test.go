package ticket_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/coloradoleasecheck/leasecheck/internal"
	ticketmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/ticket"
	ticketpkg "github.com/coloradoleasecheck/leasecheck/internal/ticket"
)

func TestTicket(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Ticket Suite")
}

type mockTicketRepo struct {
	createError error
	tickets     map[int64]*ticketmodel.SupportTicket
	nextID      int64
}

func newMockTicketRepo() *mockTicketRepo {
	return &mockTicketRepo{tickets: map[int64]*ticketmodel.SupportTicket{}, nextID: 1}
}

func (m *mockTicketRepo) Create(t *ticketmodel.SupportTicket) error {
	if m.createError != nil {
		return m.createError
	}
	t.ID = m.nextID
	m.nextID++
	copied := *t
	m.tickets[t.ID] = &copied
	return nil
}

func (m *mockTicketRepo) GetByID(id int64) (*ticketmodel.SupportTicket, error) {
	t, ok := m.tickets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *mockTicketRepo) ListByEmail(email string, limit, offset int) ([]*ticketmodel.SupportTicket, error) {
	var out []*ticketmodel.SupportTicket
	for _, t := range m.tickets {
		if t.UserEmail == email {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTicketRepo) ListAll(status string, limit, offset int) ([]*ticketmodel.SupportTicket, error) {
	var out []*ticketmodel.SupportTicket
	for _, t := range m.tickets {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTicketRepo) UpdateStatus(id int64, status string) error {
	t, ok := m.tickets[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Status = status
	return nil
}

type mockDocumentChecker struct {
	owned    bool
	checkErr error
}

func (m *mockDocumentChecker) OwnedBy(documentID int64, email string) (bool, error) {
	return m.owned, m.checkErr
}

var _ = ginkgo.Describe("TicketService", func() {
	var (
		service   *ticketpkg.TicketService
		repo      *mockTicketRepo
		documents *mockDocumentChecker
	)

	validDTO := func() *ticketpkg.CreateTicketDTO {
		return &ticketpkg.CreateTicketDTO{
			DocumentID:  7,
			Email:       "Tenant@Example.com",
			IssueType:   "analysis_question",
			Description: "the risk summary for clause 12 looks wrong",
		}
	}

	ginkgo.BeforeEach(func() {
		repo = newMockTicketRepo()
		documents = &mockDocumentChecker{owned: true}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = ticketpkg.NewService(repo, documents, logger)
	})

	ginkgo.Context("Create", func() {
		ginkgo.It("opens a ticket against the reporter's own document", func() {
			t, err := service.Create(validDTO())

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(t.Status).To(gomega.Equal(ticketmodel.StatusOpen))
			gomega.Expect(t.UserEmail).To(gomega.Equal("tenant@example.com"))
			gomega.Expect(t.DocumentID).To(gomega.Equal(int64(7)))
		})

		ginkgo.It("rejects an unknown issue type", func() {
			dto := validDTO()
			dto.IssueType = "feature_request"

			_, err := service.Create(dto)

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(repo.tickets).To(gomega.BeEmpty())
		})

		ginkgo.It("rejects a too-short description", func() {
			dto := validDTO()
			dto.Description = "broken"

			_, err := service.Create(dto)

			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("rejects a document the reporter does not own", func() {
			documents.owned = false

			_, err := service.Create(validDTO())

			gomega.Expect(err).To(gomega.MatchError(internal.ErrDocumentNotFound))
		})
	})

	ginkgo.Context("UpdateStatus", func() {
		ginkgo.It("moves an open ticket to in_progress", func() {
			created, err := service.Create(validDTO())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			updated, err := service.UpdateStatus(created.ID, &ticketpkg.UpdateStatusDTO{Status: ticketmodel.StatusInProgress})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.Status).To(gomega.Equal(ticketmodel.StatusInProgress))
		})

		ginkgo.It("rejects an unknown status", func() {
			created, err := service.Create(validDTO())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.UpdateStatus(created.ID, &ticketpkg.UpdateStatusDTO{Status: "closed"})

			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("returns not found for a missing ticket", func() {
			_, err := service.UpdateStatus(404, &ticketpkg.UpdateStatusDTO{Status: ticketmodel.StatusResolved})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrTicketNotFound))
		})
	})

	ginkgo.Context("ListAll", func() {
		ginkgo.It("filters by status", func() {
			first, err := service.Create(validDTO())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			_, err = service.Create(validDTO())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			_, err = service.UpdateStatus(first.ID, &ticketpkg.UpdateStatusDTO{Status: ticketmodel.StatusResolved})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			open, err := service.ListAll(ticketmodel.StatusOpen, 20, 0)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(open).To(gomega.HaveLen(1))
		})

		ginkgo.It("rejects an invalid status filter", func() {
			_, err := service.ListAll("archived", 20, 0)

			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})
})
