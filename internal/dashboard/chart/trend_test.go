package chart

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fla-ops/fla/internal/costing"
	"github.com/fla-ops/fla/internal/dashboard"
)

func TestTrendSVGPlotsEveryMonth(t *testing.T) {
	points := []dashboard.TrendPoint{
		{Period: costing.Period{Year: 2026, Month: 1}, NetSales: decimal.NewFromInt(40000), CompletedJobs: 1},
		{Period: costing.Period{Year: 2026, Month: 2}},
		{Period: costing.Period{Year: 2026, Month: 3}, NetSales: decimal.NewFromInt(110000), CompletedJobs: 2},
	}

	out, err := TrendSVG(points, Options{Title: "Ventas <netas>"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.True(t, strings.HasSuffix(out, "</svg>"))
	assert.Equal(t, 3, strings.Count(out, "<circle"))
	assert.Contains(t, out, "2026-03: 2 jobs")
	assert.Contains(t, out, "Ventas &lt;netas&gt;")
	assert.Contains(t, out, ">110k<")
}

func TestTrendSVGSinglePointCentred(t *testing.T) {
	out, err := TrendSVG([]dashboard.TrendPoint{{Period: costing.Period{Year: 2026, Month: 3}}}, Options{Width: 200, Height: 100, Padding: 20})
	require.NoError(t, err)
	assert.Contains(t, out, `cx="100.00"`)
}

func TestTrendSVGErrors(t *testing.T) {
	_, err := TrendSVG(nil, Options{})
	assert.ErrorIs(t, err, ErrNoPoints)

	_, err = TrendSVG([]dashboard.TrendPoint{{}}, Options{Width: 10, Height: 10, Padding: 20})
	assert.Error(t, err)
}
