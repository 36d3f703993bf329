package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sangrahhq/sangrah/internal/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

var errSendFailed = errors.New("send failed")

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// recordingMailer captures sends so tests can assert on delivery without a
// mail server.
type recordingMailer struct {
	mu       sync.Mutex
	otps     []sentOTP
	welcomes []string // recipient addresses
	fail     bool
}

type sentOTP struct {
	To   string
	Code string
}

func (m *recordingMailer) SendOTP(_ context.Context, to, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errSendFailed
	}
	m.otps = append(m.otps, sentOTP{To: to, Code: code})
	return nil
}

func (m *recordingMailer) SendWelcome(_ context.Context, to, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errSendFailed
	}
	m.welcomes = append(m.welcomes, to)
	return nil
}

func (m *recordingMailer) lastOTP(t *testing.T) sentOTP {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.otps)
	return m.otps[len(m.otps)-1]
}
