package quotepdf

import (
	"bytes"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/cotizador3d/internal/domain"
	"github.com/Simplici0/cotizador3d/internal/money"
	"github.com/Simplici0/cotizador3d/internal/pricing"
)

func sampleInput() Input {
	b := domain.CostBreakdown{
		CostoMaquinasUSD:        2,
		CostoTrabajadoresUSD:    1,
		CostoMaterialesUSD:      3,
		CostoDesperdicioUSD:     1,
		CostoTotalUSD:           7,
		CostoSugeridoTotalUSD:   10,
		CostoSugeridoTotalLocal: 10000,
	}
	extras := []domain.Extra{{Concepto: "Pintura", Moneda: money.USD, Monto: 10, PorUnidad: true}}
	job := Job{
		Name:  "Soporte/Pieza #1",
		Hours: 3.5,
		Units: 3,
		FX:    1000,
		Date:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	return Input{
		Job:       job,
		Breakdown: b,
		Totals:    pricing.Compute(b, pricing.Inputs{Units: job.Units, FX: job.FX, Extras: extras}),
		Extras:    extras,
	}
}

func TestFileName(t *testing.T) {
	got := FileName("Soporte/Pieza #1", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Presupuesto_Soporte_Pieza__1_2024-05-01.pdf", got)
}

func TestWriteWithoutTargetFailsFast(t *testing.T) {
	_, err := Write(nil, sampleInput())
	assert.True(t, errors.Is(err, ErrNoRenderTarget))
}

func TestWriteProducesNumberedPages(t *testing.T) {
	var buf bytes.Buffer
	res, err := Write(&buf, sampleInput(), WithoutCompression())
	require.NoError(t, err)

	assert.Equal(t, "Presupuesto_Soporte_Pieza__1_2024-05-01.pdf", res.FileName)
	assert.Equal(t, 2, res.Pages)
	assert.EqualValues(t, buf.Len(), res.Bytes)

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "P\xe1gina 1 de 2")
	assert.Contains(t, string(out), "P\xe1gina 2 de 2")
	assert.Contains(t, string(out), "COPIA CLIENTE")
	assert.Contains(t, string(out), "USO INTERNO")
	assert.NotContains(t, string(out), "{nb}")
}

func TestWriteCountsOverflowPages(t *testing.T) {
	in := sampleInput()
	for i := 0; i < 60; i++ {
		in.Extras = append(in.Extras, domain.Extra{Concepto: "Extra", Moneda: money.ARS, Monto: 100})
	}

	var buf bytes.Buffer
	res, err := Write(&buf, in, WithoutCompression())
	require.NoError(t, err)

	assert.Greater(t, res.Pages, 2)
	assert.Contains(t, buf.String(), "de "+strconv.Itoa(res.Pages))
}

func TestConditionsDefaults(t *testing.T) {
	c := Conditions{Payment: "50% anticipo"}.withDefaults()
	assert.Equal(t, 7, c.ValidityDays)
	assert.Equal(t, 5, c.ProductionDays)
	assert.Equal(t, "50% anticipo", c.Payment)
	assert.NotEmpty(t, c.Guarantee)
}

func TestSpanishDate(t *testing.T) {
	assert.Equal(t, "1 de mayo de 2024", spanishDate(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCapBullets(t *testing.T) {
	assert.Equal(t, []string{"-"}, capBullets(nil))
	assert.Len(t, capBullets([]string{"a", "b", "c", "d", "e", "f", "g"}), 6)
}
