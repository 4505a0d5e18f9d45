package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coralbay/estate/internal/models"
)

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	svc := &NotificationTemplateService{}

	tmpl := &models.NotificationTemplate{
		Subject: "Listing approved: {{.title}}",
		Body:    "The listing \"{{.title}}\" ({{.listing_id}}) was approved by {{.manager}}.",
	}

	subject, body := svc.Render(tmpl, map[string]string{
		"title":      "Sea Villa",
		"listing_id": "0123456789",
		"manager":    "Lera",
	})

	assert.Equal(t, "Listing approved: Sea Villa", subject)
	assert.Equal(t, "The listing \"Sea Villa\" (0123456789) was approved by Lera.", body)
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	svc := &NotificationTemplateService{}

	tmpl := &models.NotificationTemplate{Subject: "{{.title}}", Body: "{{.unknown}}"}
	subject, body := svc.Render(tmpl, map[string]string{"title": "Sea Villa"})

	assert.Equal(t, "Sea Villa", subject)
	assert.Equal(t, "{{.unknown}}", body)
}

func TestDefaultTemplatesCoverAllDecisions(t *testing.T) {
	for _, status := range []models.Status{models.StatusApproved, models.StatusRejected, models.StatusRevision} {
		_, ok := defaultNotificationTemplates["decision_"+string(status)]
		assert.True(t, ok, "missing default template for %s", status)
	}
}
