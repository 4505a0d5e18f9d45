package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coralbay/estate/internal/config"
	"coralbay/estate/internal/models"
	"coralbay/estate/internal/repository"
	"coralbay/estate/internal/tasks"
	"coralbay/estate/internal/utils"
)

// --- Mocks ---

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	args := m.Called(ctx, to, subject, rawMessage)
	return args.Error(0)
}

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

type MockTemplateService struct {
	mock.Mock
}

func (m *MockTemplateService) GetTemplate(ctx context.Context, templateID, locale string) (*models.NotificationTemplate, error) {
	args := m.Called(ctx, templateID, locale)
	if tmpl, ok := args.Get(0).(*models.NotificationTemplate); ok {
		return tmpl, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTemplateService) Render(tmpl *models.NotificationTemplate, vars map[string]string) (string, string) {
	args := m.Called(tmpl, vars)
	return args.String(0), args.String(1)
}

// --- Tests ---

func taskTestConfig() *config.Config {
	return &config.Config{
		SmtpFromAddress:       "noreply@coralbay.example.com",
		ModerationNotifyEmail: "backoffice@coralbay.example.com",
	}
}

func TestNewDecisionNotifyTaskPayload(t *testing.T) {
	listingID := utils.NewSixID()
	task, err := tasks.NewDecisionNotifyTask(listingID, models.StatusApproved, "Lera")
	require.NoError(t, err)
	assert.Equal(t, tasks.TypeDecisionNotify, task.Type())

	var payload tasks.DecisionNotifyPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, listingID.String(), payload.ListingID)
	assert.Equal(t, "approved", payload.Status)
	assert.Equal(t, "Lera", payload.Manager)
}

func TestNewPhotoProcessTaskPayload(t *testing.T) {
	listingID := utils.NewSixID()
	task, err := tasks.NewPhotoProcessTask("photos/A1/key.jpg", listingID)
	require.NoError(t, err)
	assert.Equal(t, tasks.TypePhotoProcess, task.Type())

	var payload tasks.PhotoTaskPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "photos/A1/key.jpg", payload.S3Key)
	assert.Equal(t, listingID.String(), payload.ListingID)
}

func TestHandleDecisionNotifyTask(t *testing.T) {
	mockEmail := new(MockEmailSender)
	mockListing := new(MockListingService)
	mockChat := new(MockChatService)
	mockTemplates := new(MockTemplateService)

	processor := tasks.NewTaskProcessor(taskTestConfig(), mockEmail, mockListing, mockChat, mockTemplates, nil, nil)

	listingID := utils.NewSixID()
	listing := &models.Listing{ID: listingID, AgentID: "A1", Title: "Sea Villa", Status: models.StatusApproved}
	tmpl := &models.NotificationTemplate{TemplateID: "decision_approved", Subject: "s", Body: "b"}

	mockListing.On("FindListingByID", mock.Anything, listingID).Return(listing, nil)
	mockTemplates.On("GetTemplate", mock.Anything, "decision_approved", "en-US").Return(tmpl, nil)
	mockTemplates.On("Render", tmpl, mock.Anything).Return("Listing approved: Sea Villa", "The listing was approved.")
	mockEmail.On("Send", mock.Anything, []string{"backoffice@coralbay.example.com"}, "Listing approved: Sea Villa", mock.Anything).Return(nil)
	mockChat.On("PostSystemMessage", mock.Anything, "A1", "The listing was approved.").Return(&models.Message{}, nil)

	task, err := tasks.NewDecisionNotifyTask(listingID, models.StatusApproved, "Lera")
	require.NoError(t, err)

	err = processor.HandleDecisionNotifyTask(context.Background(), task)
	require.NoError(t, err)

	mockEmail.AssertExpectations(t)
	mockChat.AssertExpectations(t)
	mockTemplates.AssertExpectations(t)
}

func TestHandleDecisionNotifyTaskListingGone(t *testing.T) {
	mockListing := new(MockListingService)
	processor := tasks.NewTaskProcessor(taskTestConfig(), new(MockEmailSender), mockListing, new(MockChatService), new(MockTemplateService), nil, nil)

	listingID := utils.NewSixID()
	mockListing.On("FindListingByID", mock.Anything, listingID).Return(nil, repository.ErrNotFound)

	task, err := tasks.NewDecisionNotifyTask(listingID, models.StatusRejected, "Lera")
	require.NoError(t, err)

	err = processor.HandleDecisionNotifyTask(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry, "a deleted listing must not be retried")
}

func TestHandleDecisionNotifyTaskBadPayload(t *testing.T) {
	processor := tasks.NewTaskProcessor(taskTestConfig(), new(MockEmailSender), new(MockListingService), new(MockChatService), new(MockTemplateService), nil, nil)

	task := asynq.NewTask(tasks.TypeDecisionNotify, []byte("{not json"))
	err := processor.HandleDecisionNotifyTask(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleDecisionNotifyTaskEmailFailureRetries(t *testing.T) {
	mockEmail := new(MockEmailSender)
	mockListing := new(MockListingService)
	mockTemplates := new(MockTemplateService)
	processor := tasks.NewTaskProcessor(taskTestConfig(), mockEmail, mockListing, new(MockChatService), mockTemplates, nil, nil)

	listingID := utils.NewSixID()
	listing := &models.Listing{ID: listingID, AgentID: "A1", Title: "Sea Villa", Status: models.StatusApproved}
	tmpl := &models.NotificationTemplate{TemplateID: "decision_approved", Subject: "s", Body: "b"}

	mockListing.On("FindListingByID", mock.Anything, listingID).Return(listing, nil)
	mockTemplates.On("GetTemplate", mock.Anything, "decision_approved", "en-US").Return(tmpl, nil)
	mockTemplates.On("Render", tmpl, mock.Anything).Return("s", "b")
	mockEmail.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	task, err := tasks.NewDecisionNotifyTask(listingID, models.StatusApproved, "Lera")
	require.NoError(t, err)

	err = processor.HandleDecisionNotifyTask(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry, "transient email failures should retry")
}
