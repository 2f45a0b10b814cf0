package output

import (
	"bytes"
	"math"
	"testing"

	"github.com/bcdannyboy/stocsim/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func exampleGBMResult(t *testing.T) models.SimulationResult {
	t.Helper()
	p := models.SimulationParameters{
		Horizon: 1.0, Step: 0.5, PathCount: 1, InitialValue: 100.0, Volatility: 0.0, Drift: 0.1,
	}
	paths, err := models.NewGBM(models.DefaultLimits()).Generate(p, rand.NewSource(1))
	require.NoError(t, err)
	return models.NewGBMResult(p, 1, paths)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "csv", want: FormatCSV},
		{in: " JSON ", want: FormatJSON},
		{in: "msgpack", want: FormatMsgpack},
		{in: "xml", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteGBMCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatCSV, 2).Write(&buf, exampleGBMResult(t)))

	want := "path,step,time,value\n" +
		"0,0,0.00,100.00\n" +
		"0,1,0.50,105.13\n" +
		"0,2,1.00,110.52\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteGBMCSVFullPrecision(t *testing.T) {
	var buf bytes.Buffer
	result := models.NewGBMResult(
		models.SimulationParameters{Horizon: 1, Step: 1, PathCount: 2, InitialValue: 1.5},
		0,
		models.PathSet{{1.5, 1.25}, {1.5, 2.0625}},
	)
	require.NoError(t, NewWriter(FormatCSV, -1).Write(&buf, result))

	want := "path,step,time,value\n" +
		"0,0,0,1.5\n" +
		"0,1,1,1.25\n" +
		"1,0,0,1.5\n" +
		"1,1,1,2.0625\n"
	assert.Equal(t, want, buf.String())
}

func TestWritePoissonCSV(t *testing.T) {
	var buf bytes.Buffer
	result := models.NewPoissonResult(
		models.SimulationParameters{Horizon: 1, Step: 0.25, Intensity: 4},
		3,
		models.JumpSeries{Times: []float64{0.25, 0.75}, Marks: []int{2, 5}},
	)
	require.NoError(t, NewWriter(FormatCSV, -1).Write(&buf, result))
	assert.Equal(t, "time,mark\n0.25,2\n0.75,5\n", buf.String())

	buf.Reset()
	empty := models.NewPoissonResult(models.SimulationParameters{Horizon: 1, Step: 0.5}, 0, models.JumpSeries{})
	require.NoError(t, NewWriter(FormatCSV, -1).Write(&buf, empty))
	assert.Equal(t, "time,mark\n", buf.String())
}

func TestWriteJSONRoundTrip(t *testing.T) {
	result := exampleGBMResult(t)

	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatJSON, -1).Write(&buf, result))
	assert.Contains(t, buf.String(), `"kind":"gbm"`)

	got, err := Read(&buf, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, result, got)
}

func TestWriteMsgpackRoundTrip(t *testing.T) {
	result := models.NewPoissonResult(
		models.SimulationParameters{Horizon: 2, Step: 0.5, Intensity: 1, JumpSizeMean: 3},
		9,
		models.JumpSeries{Times: []float64{0.5, 1.5}, Marks: []int{4, 1}},
	)

	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatMsgpack, -1).Write(&buf, result))

	got, err := Read(&buf, FormatMsgpack)
	require.NoError(t, err)
	assert.Equal(t, result, got)
}

func TestWriteRoundsWithoutMutating(t *testing.T) {
	result := exampleGBMResult(t)
	original := result.Paths[0][1]

	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatJSON, 1).Write(&buf, result))
	assert.Equal(t, original, result.Paths[0][1])

	got, err := Read(&buf, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 105.1, 110.5}, got.Paths[0])
}

func TestWriteErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewWriter(Format("yaml"), -1).Write(&buf, exampleGBMResult(t)))
	assert.Error(t, NewWriter(FormatCSV, -1).Write(&buf, models.SimulationResult{Kind: "other"}))

	_, err := Read(&buf, FormatCSV)
	assert.Error(t, err)
}

func TestWriteNonFiniteWithPrecision(t *testing.T) {
	result := exampleGBMResult(t)
	result.Paths[0][1] = math.Inf(1)
	result.Paths[0][2] = math.NaN()

	var buf bytes.Buffer
	require.NotPanics(t, func() {
		require.NoError(t, NewWriter(FormatCSV, 2).Write(&buf, result))
	})
	want := "path,step,time,value\n" +
		"0,0,0.00,100.00\n" +
		"0,1,0.50,+Inf\n" +
		"0,2,1.00,NaN\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NotPanics(t, func() {
		require.NoError(t, NewWriter(FormatMsgpack, 2).Write(&buf, result))
	})
	got, err := Read(&buf, FormatMsgpack)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Paths[0][0])
	assert.True(t, math.IsInf(got.Paths[0][1], 1))
	assert.True(t, math.IsNaN(got.Paths[0][2]))

	buf.Reset()
	require.NotPanics(t, func() {
		assert.Error(t, NewWriter(FormatJSON, 2).Write(&buf, result))
	})
}
