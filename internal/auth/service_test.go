package auth_test

import (
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/coloradoleasecheck/leasecheck/internal/auth"
	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/adminuser"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Suite")
}

type mockAdminRepo struct {
	admins map[string]*adminuser.AdminUser
}

func (m *mockAdminRepo) GetByEmail(email string) (*adminuser.AdminUser, error) {
	admin, ok := m.admins[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return admin, nil
}

func (m *mockAdminRepo) GetByID(id int64) (*adminuser.AdminUser, error) {
	for _, admin := range m.admins {
		if admin.ID == id {
			return admin, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ = ginkgo.Describe("Auth Service", func() {
	var (
		service *auth.Service
		repo    *mockAdminRepo
	)

	ginkgo.BeforeEach(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		repo = &mockAdminRepo{admins: map[string]*adminuser.AdminUser{
			"admin@coloradoleasecheck.com": {
				ID:           1,
				Email:        "admin@coloradoleasecheck.com",
				PasswordHash: string(hash),
				IsActive:     true,
			},
		}}
		tokenGen := auth.NewJWTTokenGenerator("access-secret", "refresh-secret")
		service = auth.NewService(repo, tokenGen)
	})

	ginkgo.Context("Authenticate", func() {
		ginkgo.It("returns a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "admin@coloradoleasecheck.com",
				Password: "correct-horse",
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
			gomega.Expect(tokens.RefreshToken).ToNot(gomega.BeEmpty())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.AdminID).To(gomega.Equal("1"))
			gomega.Expect(claims.Email).To(gomega.Equal("admin@coloradoleasecheck.com"))
		})

		ginkgo.It("rejects a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "admin@coloradoleasecheck.com",
				Password: "wrong",
			})

			gomega.Expect(err).To(gomega.MatchError(auth.ErrInvalidCredentials))
		})

		ginkgo.It("rejects an unknown email with the same error", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "nobody@coloradoleasecheck.com",
				Password: "correct-horse",
			})

			gomega.Expect(err).To(gomega.MatchError(auth.ErrInvalidCredentials))
		})

		ginkgo.It("rejects a deactivated admin", func() {
			repo.admins["admin@coloradoleasecheck.com"].IsActive = false

			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "admin@coloradoleasecheck.com",
				Password: "correct-horse",
			})

			gomega.Expect(err).To(gomega.MatchError(auth.ErrInvalidCredentials))
		})

		ginkgo.It("rejects missing fields before touching the repository", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "admin@coloradoleasecheck.com"})

			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Context("tokens", func() {
		ginkgo.It("refreshes a valid refresh token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "admin@coloradoleasecheck.com",
				Password: "correct-horse",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(refreshed.AccessToken).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("rejects garbage tokens", func() {
			_, err := service.ValidateAccessToken("not-a-jwt")

			gomega.Expect(err).To(gomega.MatchError(auth.ErrInvalidToken))
		})

		ginkgo.It("rejects an expired access token", func() {
			tokenGen := auth.NewJWTTokenGenerator("access-secret", "refresh-secret")
			tokenGen.AccessTokenTTL = -time.Minute
			expiredService := auth.NewService(repo, tokenGen)

			tokens, err := expiredService.Authenticate(auth.LoginDTO{
				Email:    "admin@coloradoleasecheck.com",
				Password: "correct-horse",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = expiredService.ValidateAccessToken(tokens.AccessToken)
			gomega.Expect(err).To(gomega.MatchError(auth.ErrTokenExpired))
		})
	})
})
