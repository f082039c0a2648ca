package pharmacy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository/memory"
	apperrors "github.com/freee021022/onconet/pkg/errors"
)

func TestListPharmaciesFilters(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store)
	ctx := context.Background()

	for _, p := range []*model.Pharmacy{
		{Name: "Farmacia Centrale", Address: "Via Roma 1", City: "Roma", Region: "Lazio", Specializations: []string{"oncology"}},
		{Name: "Farmacia Duomo", Address: "Piazza Duomo", City: "Milano", Region: "Lombardia", Specializations: []string{"galenics"}},
	} {
		require.NoError(t, store.CreatePharmacy(ctx, p))
	}

	all, err := svc.ListPharmacies(ctx, model.PharmacyFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	rome, err := svc.ListPharmacies(ctx, model.PharmacyFilter{City: "roma"})
	require.NoError(t, err)
	require.Len(t, rome, 1)
	assert.Equal(t, "Farmacia Centrale", rome[0].Name)

	onc, err := svc.ListPharmacies(ctx, model.PharmacyFilter{Region: "Lombardia", Specialization: "oncology"})
	require.NoError(t, err)
	assert.Empty(t, onc)

	got, err := svc.GetPharmacy(ctx, rome[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Lazio", got.Region)

	_, err = svc.GetPharmacy(ctx, 404)
	assert.Equal(t, "Pharmacy not found", apperrors.From(err).Message)
}

func TestListTestimonials(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store)
	ctx := context.Background()
	require.NoError(t, store.CreateTestimonial(ctx, &model.Testimonial{Name: "Maria", Role: "patient", Location: "Napoli", Content: "Grazie", Rating: 5}))

	list, err := svc.ListTestimonials(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Rating)
}
