package email

import (
	"context"
	"sync"

	"github.com/aleanon/Tempered/domain"
)

// SentEmail is one message captured by the MockClient.
type SentEmail struct {
	Recipient domain.Email
	Subject   string
	Content   string
}

// MockClient records every send instead of delivering. Set Err to make
// sends fail. Safe for concurrent use.
type MockClient struct {
	Err error

	mu   sync.Mutex
	sent []SentEmail
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) SendEmail(ctx context.Context, recipient domain.Email, subject, content string) error {
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, SentEmail{
		Recipient: recipient,
		Subject:   subject,
		Content:   content,
	})
	return nil
}

// Sent returns a copy of every captured message in send order.
func (m *MockClient) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SentEmail, len(m.sent))
	copy(out, m.sent)
	return out
}
