package noop_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"medscan/internal/domain"
	"medscan/internal/email/noop"
)

func TestNoopSender_NeverFails(t *testing.T) {
	sender := noop.NewNoopSender("http://localhost:3000")
	err := sender.SendAnalysisReady(context.Background(), "pat@example.com", &domain.Report{ID: uuid.New()})
	assert.NoError(t, err)
}
