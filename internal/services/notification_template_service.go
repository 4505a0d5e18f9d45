package services

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"coralbay/estate/internal/models"
)

// Default notification templates used as fallback when not found in database
var defaultNotificationTemplates = map[string]models.NotificationTemplate{
	"decision_approved": {
		TemplateID: "decision_approved",
		Locale:     "en-US",
		Subject:    "Listing approved: {{.title}}",
		Body:       "The listing \"{{.title}}\" ({{.listing_id}}) was approved by {{.manager}} and is now live in the catalog.",
	},
	"decision_rejected": {
		TemplateID: "decision_rejected",
		Locale:     "en-US",
		Subject:    "Listing rejected: {{.title}}",
		Body:       "The listing \"{{.title}}\" ({{.listing_id}}) was rejected by {{.manager}}.",
	},
	"decision_revision": {
		TemplateID: "decision_revision",
		Locale:     "en-US",
		Subject:    "Listing needs revision: {{.title}}",
		Body:       "The listing \"{{.title}}\" ({{.listing_id}}) was sent back for revision by {{.manager}}. The agent can edit and resubmit it.",
	},
}

// INotificationTemplateService defines the interface for notification template operations.
type INotificationTemplateService interface {
	GetTemplate(ctx context.Context, templateID, locale string) (*models.NotificationTemplate, error)
	Render(tmpl *models.NotificationTemplate, vars map[string]string) (subject, body string)
}

const notificationTemplatesCollection = "notification_templates"

// NotificationTemplateService handles operations related to notification templates
type NotificationTemplateService struct {
	db *mongo.Database
}

// NewNotificationTemplateService creates a new instance of NotificationTemplateService
func NewNotificationTemplateService(db *mongo.Database) *NotificationTemplateService {
	return &NotificationTemplateService{
		db: db,
	}
}

// GetTemplate retrieves a notification template by ID and locale, falling
// back to the compiled-in defaults.
func (s *NotificationTemplateService) GetTemplate(ctx context.Context, templateID string, locale string) (*models.NotificationTemplate, error) {
	collection := s.db.Collection(notificationTemplatesCollection)
	filter := bson.M{
		"template_id": templateID,
		"locale":      locale,
	}

	var template models.NotificationTemplate
	err := collection.FindOne(ctx, filter).Decode(&template)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			if defaultTemplate, ok := defaultNotificationTemplates[templateID]; ok {
				return &defaultTemplate, nil
			}
			return nil, fmt.Errorf("template not found: %s (locale: %s)", templateID, locale)
		}
		return nil, fmt.Errorf("error retrieving template: %w", err)
	}

	return &template, nil
}

// Render substitutes {{.key}} placeholders in the subject and body.
func (s *NotificationTemplateService) Render(tmpl *models.NotificationTemplate, vars map[string]string) (string, string) {
	subject := tmpl.Subject
	body := tmpl.Body
	for key, value := range vars {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		subject = strings.ReplaceAll(subject, placeholder, value)
		body = strings.ReplaceAll(body, placeholder, value)
	}
	return subject, body
}

// SaveTemplate saves a notification template to the database
func (s *NotificationTemplateService) SaveTemplate(ctx context.Context, template *models.NotificationTemplate) error {
	collection := s.db.Collection(notificationTemplatesCollection)
	filter := bson.M{
		"template_id": template.TemplateID,
		"locale":      template.Locale,
	}

	update := bson.M{"$set": template}
	opts := options.Update().SetUpsert(true)

	_, err := collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("error saving template: %w", err)
	}

	return nil
}
