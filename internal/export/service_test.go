package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aduanatech/docextract/internal/entity"
	"github.com/aduanatech/docextract/internal/repository"
)

// fakeRepo serves canned carnets without a database.
type fakeRepo struct {
	repository.CarnetRepository
	carnets []*entity.CarnetAduanero
	err     error
}

func (f *fakeRepo) List(_ context.Context, _ repository.ListParams) ([]*entity.CarnetAduanero, error) {
	return f.carnets, f.err
}

func TestExportCarnetsXLSX(t *testing.T) {
	expiry := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{carnets: []*entity.CarnetAduanero{
		{
			NumeroCarnet:     "12345-AB",
			FechaEmision:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			FechaVencimiento: &expiry,
			NombreTitular:    "MARIA CONTRERAS",
			Aduana:           "Valparaíso",
			ArchivoOrigen:    "carnet.pdf",
		},
		{
			NumeroCarnet: "777888",
			FechaEmision: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
	}}

	out, err := NewService(repo, nil).ExportCarnetsXLSX(context.Background(), repository.ListParams{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	rows, err := f.GetRows("Carnets")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "N° Carnet", rows[0][0])
	assert.Equal(t, "12345-AB", rows[1][0])
	assert.Equal(t, "2024-03-15", rows[1][1])
	assert.Equal(t, "2025-03-15", rows[1][2])
	assert.Equal(t, "777888", rows[2][0])
}

func TestExportCarnetsXLSXEmpty(t *testing.T) {
	out, err := NewService(&fakeRepo{}, nil).ExportCarnetsXLSX(context.Background(), repository.ListParams{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	rows, err := f.GetRows("Carnets")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
