package kiosknet

import (
	"context"
	"sync"

	"github.com/abrezinsky/rfidkiosk/internal/models"
)

// MockClient is a mock device client for testing
type MockClient struct {
	mu       sync.Mutex
	users    []models.UserRecord
	fetchErr error
	baseURL  string
	calls    int
	gate     chan struct{} // when set, each fetch waits for a value
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithUsers sets the directory to return
func WithUsers(users []models.UserRecord) MockOption {
	return func(m *MockClient) {
		m.users = users
	}
}

// WithFetchError sets an error to return from FetchDirectory
func WithFetchError(err error) MockOption {
	return func(m *MockClient) {
		m.fetchErr = err
	}
}

// WithGate makes every FetchDirectory call block until a value is sent on gate
func WithGate(gate chan struct{}) MockOption {
	return func(m *MockClient) {
		m.gate = gate
	}
}

// NewMockClient creates a new mock device client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL: "http://mock-reader.local",
		users:   DefaultMockUsers(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	return m.baseURL
}

// FetchDirectory returns the configured directory or error
func (m *MockClient) FetchDirectory(ctx context.Context) ([]models.UserRecord, error) {
	m.mu.Lock()
	m.calls++
	gate := m.gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return append([]models.UserRecord{}, m.users...), nil
}

// SetUsers replaces the directory served by the mock
func (m *MockClient) SetUsers(users []models.UserRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = users
}

// AddUser appends a record, as the device does after a successful registration
func (m *MockClient) AddUser(u models.UserRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, u)
}

// SetFetchError changes the error returned by FetchDirectory
func (m *MockClient) SetFetchError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErr = err
}

// Calls returns how many times FetchDirectory was invoked
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// DefaultMockUsers returns a small directory with one admin
func DefaultMockUsers() []models.UserRecord {
	return []models.UserRecord{
		{UID: "AABB", Nume: "Ion", Prenume: "Pop", Rol: "User"},
		{UID: "A1B2C3D4", Nume: "Maria", Prenume: "Ionescu", Rol: "User"},
		{UID: "FF00FF00", Nume: "Andrei", Prenume: "Stan", Rol: models.RoleAdmin},
	}
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
