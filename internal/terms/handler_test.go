package terms_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	termsmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/terms"
	termspkg "github.com/coloradoleasecheck/leasecheck/internal/terms"
)

func TestTerms(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Terms Suite")
}

type mockTermsService struct {
	acceptError   error
	record        *termsmodel.TermsAcceptance
	capturedIP    string
	capturedEmail string
}

func (m *mockTermsService) Accept(dto *termspkg.AcceptTermsDTO, clientIP string) (*termsmodel.TermsAcceptance, error) {
	m.capturedIP = clientIP
	if m.acceptError != nil {
		return nil, m.acceptError
	}
	return m.record, nil
}

func (m *mockTermsService) HasAccepted(email, version string) (bool, error) {
	m.capturedEmail = email
	return m.record != nil, nil
}

var _ = ginkgo.Describe("Terms Handler", func() {
	var (
		handler  *termspkg.Handler
		service  *mockTermsService
		recorder *httptest.ResponseRecorder
	)

	ginkgo.BeforeEach(func() {
		service = &mockTermsService{
			record: &termsmodel.TermsAcceptance{
				ID:           1,
				UserEmail:    "tenant@example.com",
				TermsVersion: termspkg.CurrentVersion,
			},
		}
		handler = termspkg.NewHandler(service)
		recorder = httptest.NewRecorder()
	})

	post := func(body map[string]interface{}, headers map[string]string) {
		jsonBody, _ := json.Marshal(body)
		req := httptest.NewRequest("POST", "/api/v1/terms/accept", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.9:52011"
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		handler.AcceptTerms(recorder, req)
	}

	ginkgo.It("records an acceptance with the client IP", func() {
		post(map[string]interface{}{"email": "tenant@example.com", "accepted": true}, nil)

		gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusCreated))
		gomega.Expect(service.capturedIP).To(gomega.Equal("203.0.113.9"))
	})

	ginkgo.It("prefers the first X-Forwarded-For hop", func() {
		post(map[string]interface{}{"email": "tenant@example.com", "accepted": true},
			map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.2"})

		gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusCreated))
		gomega.Expect(service.capturedIP).To(gomega.Equal("198.51.100.4"))
	})

	ginkgo.It("sends a decline to the terms-declined screen without recording", func() {
		post(map[string]interface{}{"email": "tenant@example.com", "accepted": false}, nil)

		gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusUnprocessableEntity))
		gomega.Expect(service.capturedIP).To(gomega.BeEmpty())

		var resp map[string]string
		gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &resp)).To(gomega.Succeed())
		gomega.Expect(resp["redirect"]).To(gomega.Equal("/terms-declined"))
	})

	ginkgo.It("rejects invalid json", func() {
		req := httptest.NewRequest("POST", "/api/v1/terms/accept", bytes.NewBufferString("not json"))
		handler.AcceptTerms(recorder, req)

		gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
	})

	ginkgo.Describe("TermsStatus", func() {
		ginkgo.It("reports acceptance for a returning customer", func() {
			req := httptest.NewRequest("GET", "/api/v1/terms/status?email=tenant@example.com", nil)
			handler.TermsStatus(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(service.capturedEmail).To(gomega.Equal("tenant@example.com"))

			var resp map[string]interface{}
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &resp)).To(gomega.Succeed())
			gomega.Expect(resp["accepted"]).To(gomega.Equal(true))
		})

		ginkgo.It("reports no acceptance for an unknown email", func() {
			service.record = nil
			req := httptest.NewRequest("GET", "/api/v1/terms/status?email=new@example.com", nil)
			handler.TermsStatus(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))

			var resp map[string]interface{}
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &resp)).To(gomega.Succeed())
			gomega.Expect(resp["accepted"]).To(gomega.Equal(false))
		})

		ginkgo.It("requires the email query parameter", func() {
			req := httptest.NewRequest("GET", "/api/v1/terms/status", nil)
			handler.TermsStatus(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})
})
