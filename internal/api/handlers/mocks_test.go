package handlers_test

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"

	"coralbay/estate/internal/models"
	"coralbay/estate/internal/utils"
)

// --- Service Mocks ---

type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) CreateListing(ctx context.Context, agentID string, input models.ListingInput) (*models.Listing, error) {
	args := m.Called(ctx, agentID, input)
	if l, ok := args.Get(0).(*models.Listing); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingService) FindListingByID(ctx context.Context, listingID utils.SixID) (*models.Listing, error) {
	args := m.Called(ctx, listingID)
	if l, ok := args.Get(0).(*models.Listing); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingService) SetListingStatus(ctx context.Context, listingID utils.SixID, status models.Status, actor models.Actor) (*models.Listing, error) {
	args := m.Called(ctx, listingID, status, actor)
	if l, ok := args.Get(0).(*models.Listing); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingService) ResubmitListing(ctx context.Context, listingID utils.SixID, agentID string, input *models.ListingInput) (*models.Listing, error) {
	args := m.Called(ctx, listingID, agentID, input)
	if l, ok := args.Get(0).(*models.Listing); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingService) AttachPhoto(ctx context.Context, listingID utils.SixID, photoKey string) (*models.Listing, error) {
	args := m.Called(ctx, listingID, photoKey)
	if l, ok := args.Get(0).(*models.Listing); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingService) FindListingsByAgent(ctx context.Context, agentID string) ([]models.Listing, error) {
	args := m.Called(ctx, agentID)
	if l, ok := args.Get(0).([]models.Listing); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingService) FindPendingListings(ctx context.Context) ([]models.Listing, error) {
	args := m.Called(ctx)
	if l, ok := args.Get(0).([]models.Listing); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingService) SearchCatalog(ctx context.Context, filter models.CatalogFilter) ([]models.Listing, error) {
	args := m.Called(ctx, filter)
	if l, ok := args.Get(0).([]models.Listing); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) LoginAgent(ctx context.Context, accessCode string) (*models.Actor, string, error) {
	args := m.Called(ctx, accessCode)
	if a, ok := args.Get(0).(*models.Actor); ok {
		return a, args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *MockAuthService) LoginManager(ctx context.Context, accessCode string) (*models.Actor, string, error) {
	args := m.Called(ctx, accessCode)
	if a, ok := args.Get(0).(*models.Actor); ok {
		return a, args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) PostMessage(ctx context.Context, agentID string, author models.Actor, body string) (*models.Message, error) {
	args := m.Called(ctx, agentID, author, body)
	if msg, ok := args.Get(0).(*models.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatService) PostSystemMessage(ctx context.Context, agentID string, body string) (*models.Message, error) {
	args := m.Called(ctx, agentID, body)
	if msg, ok := args.Get(0).(*models.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatService) ListConversation(ctx context.Context, agentID string) ([]models.Message, error) {
	args := m.Called(ctx, agentID)
	if msgs, ok := args.Get(0).([]models.Message); ok {
		return msgs, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDirectoryService struct {
	mock.Mock
}

func (m *MockDirectoryService) CatalogFilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	args := m.Called(ctx)
	if o, ok := args.Get(0).(*models.FilterOptions); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Infrastructure Mocks ---

type MockS3Storage struct {
	mock.Mock
}

func (m *MockS3Storage) GeneratePresignedPutURL(ctx context.Context, agentID, listingID, filename, contentType string) (string, string, error) {
	args := m.Called(ctx, agentID, listingID, filename, contentType)
	return args.String(0), args.String(1), args.Error(2)
}

type MockAsynqClient struct {
	mock.Mock
}

func (m *MockAsynqClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if info, ok := args.Get(0).(*asynq.TaskInfo); ok {
		return info, args.Error(1)
	}
	return nil, args.Error(1)
}
