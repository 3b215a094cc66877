package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/platolabs/onboard/internal/onboard/domain"
	"github.com/platolabs/onboard/internal/onboard/store"
	"github.com/platolabs/onboard/internal/onboard/store/drivers/sqlite"
	"github.com/platolabs/onboard/pkg/cryptox"
	"github.com/platolabs/onboard/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Argon2id hashing needs a pepper file; point it at a throwaway.
	dir, err := os.MkdirTemp("", "onboard-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// fakeMailer records sent codes and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

type sentMail struct {
	address string
	code    string
}

func (m *fakeMailer) SendVerificationEmail(ctx context.Context, address, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sentMail{address: address, code: code})
	return nil
}

func (m *fakeMailer) lastSent(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// seedUser inserts an unverified user with the given pending code.
func seedUser(t *testing.T, st store.Store, email, code string) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword("pw123456")
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if code != "" {
		u.VerificationCode = &code
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

// seedOrg inserts an organization directly, bypassing slug resolution.
func seedOrg(t *testing.T, st store.Store, name, slug string) domain.Organization {
	t.Helper()

	o := domain.Organization{
		ID:   idx.New().String(),
		Name: name,
		Slug: slug,
	}
	require.NoError(t, st.Organizations().CreateOrganization(context.Background(), o))
	return o
}

// uniqueEmail avoids collisions across subtests sharing a store.
var emailSeq int

func uniqueEmail() string {
	emailSeq++
	return fmt.Sprintf("user%d@example.com", emailSeq)
}
