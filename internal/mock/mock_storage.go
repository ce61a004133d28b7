package mock

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of storage.Storage.
type MockStorage struct {
	mock.Mock
}

// Upload mocks the Upload method.
func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

// UploadFile mocks the UploadFile method.
func (m *MockStorage) UploadFile(ctx context.Context, key string, localPath string) error {
	args := m.Called(ctx, key, localPath)
	return args.Error(0)
}

// Download mocks the Download method.
func (m *MockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Exists mocks the Exists method.
func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// GetURL mocks the GetURL method.
func (m *MockStorage) GetURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// ExpectUploadFile sets up an expectation for UploadFile of key.
func (m *MockStorage) ExpectUploadFile(key string, err error) *mock.Call {
	return m.On("UploadFile", mock.Anything, key, mock.Anything).Return(err)
}

// ExpectDelete sets up an expectation for Delete of key.
func (m *MockStorage) ExpectDelete(key string, err error) *mock.Call {
	return m.On("Delete", mock.Anything, key).Return(err)
}

// ExpectGetURL makes GetURL return a fake URL for any key.
func (m *MockStorage) ExpectGetURL() *mock.Call {
	return m.On("GetURL", mock.Anything).Return("mock://object")
}
