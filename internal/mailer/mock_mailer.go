package mailer

import (
	"sync"
)

// Email is one recorded Send call.
type Email struct {
	Recipient    string
	TemplateFile string
	Data         any
}

// MockMailer records outgoing emails instead of delivering them.
// Confirmation emails leave from background goroutines, so access to the
// record is mutex-guarded.
type MockMailer struct {
	mu   sync.RWMutex
	sent []Email
}

func NewMockMailer() *MockMailer {
	return &MockMailer{
		sent: make([]Email, 0),
	}
}

func (m *MockMailer) Send(recipient, templateFile string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, Email{
		Recipient:    recipient,
		TemplateFile: templateFile,
		Data:         data,
	})

	return nil
}

// GetSentEmails returns a snapshot of everything recorded so far.
func (m *MockMailer) GetSentEmails() []Email {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sent := make([]Email, len(m.sent))
	copy(sent, m.sent)

	return sent
}

// Reset drops the recorded emails between test cases.
func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = make([]Email, 0)
}
