package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"on_process", "on_delivery", "delivered"} {
		status, err := ParseStatus(valid)
		require.NoError(t, err, valid)
		assert.Equal(t, valid, status.String())
	}

	for _, invalid := range []string{"", "cancelled", "ON_PROCESS", "done", "on process"} {
		_, err := ParseStatus(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestStatusesVocabulary(t *testing.T) {
	assert.Equal(t, []Status{StatusOnProcess, StatusOnDelivery, StatusDelivered}, Statuses())
}
