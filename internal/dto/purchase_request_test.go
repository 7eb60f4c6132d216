package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/purchase-request-api/internal/models"
)

func TestListQuerySelection(t *testing.T) {
	q := ListPurchaseRequestsQuery{
		Status: []string{"pending,rejected"},
		Type:   []string{"urgent"},
		Vendor: []string{"AutoParts Inc.", " "},
		From:   "2024-01-15",
		To:     "2024-01-22",
		SortBy: "quantity",
		Order:  "desc",
	}
	sel, err := q.Selection()
	require.NoError(t, err)
	assert.Equal(t, []models.RequestStatus{models.RequestStatusPending, models.RequestStatusRejected}, sel.Statuses)
	assert.Equal(t, []models.RequestType{models.RequestTypeUrgent}, sel.Types)
	assert.Equal(t, []string{"AutoParts Inc."}, sel.Vendors)
	require.NotNil(t, sel.DateRange)
	assert.True(t, sel.DateRange.Contains(time.Date(2024, time.January, 22, 23, 0, 0, 0, time.UTC)))
	assert.False(t, sel.DateRange.Contains(time.Date(2024, time.January, 23, 0, 0, 0, 0, time.UTC)))
}

func TestListQuerySelectionRejectsGarbage(t *testing.T) {
	cases := []ListPurchaseRequestsQuery{
		{Status: []string{"archived"}},
		{Type: []string{"express"}},
		{SortBy: "requestedAt"},
		{Order: "sideways"},
		{From: "15/01/2024"},
		{From: "2024-01-20", To: "2024-01-10"},
	}
	for _, q := range cases {
		_, err := q.Selection()
		assert.Error(t, err, "%+v", q)
	}
}
