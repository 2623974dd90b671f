package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTopics(t *testing.T) {
	assert.Equal(t, "sync/results/lead_to_person", BuildResultTopic("lead_to_person"))
	assert.Equal(t, "sync/responses/req-1", BuildResponseTopic("req-1"))
}

func TestParseRequestTopic(t *testing.T) {
	task, ok := ParseRequestTopic("sync/requests/deal_to_opportunity")
	assert.True(t, ok)
	assert.Equal(t, "deal_to_opportunity", task)

	for _, topic := range []string{
		"sync/requests/",
		"sync/requests/a/b",
		"sync/results/lead_to_person",
		"requests/lead_to_person",
	} {
		_, ok := ParseRequestTopic(topic)
		assert.False(t, ok, "topic %q", topic)
	}
}
