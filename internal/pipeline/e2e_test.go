package pipeline_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"testing"

	"github.com/couchcryptid/fire-extent-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/fire-extent-etl/internal/domain"
	"github.com/couchcryptid/fire-extent-etl/internal/mockdata"
	"github.com/couchcryptid/fire-extent-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const occurrenceLayout = "01/02/06"

// TestPipeline_CSVEndToEnd runs generated FIRMS and occurrence listings
// through the CSV reader, the resolver and the CSV writer.
func TestPipeline_CSVEndToEnd(t *testing.T) {
	ds := mockdata.Generate(mockdata.DefaultFires(), mockdata.Stray)

	var modis, occ bytes.Buffer
	require.NoError(t, mockdata.WriteModisCSV(&modis, ds.Detections))
	require.NoError(t, mockdata.WriteOccurrenceCSV(&occ, ds.Occurrences, occurrenceLayout))

	catalog, stats, err := csvfile.ReadCatalog(&modis, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, len(ds.Detections), stats.Loaded)

	reader, err := csvfile.NewOccurrenceReader(&occ, occurrenceLayout, slog.Default())
	require.NoError(t, err)

	var out bytes.Buffer
	writer, err := csvfile.NewWriter(&out, reader.PassthroughColumns())
	require.NoError(t, err)

	resolver := domain.NewResolver(catalog, domain.ExtentThresholds)
	p := pipeline.New(reader, pipeline.NewTransformer(resolver, nil, slog.Default()),
		[]pipeline.Sink{{Name: "csv", Loader: writer}},
		slog.Default(), newTestMetrics(), fastOptions(2, 3))

	require.NoError(t, p.Run(context.Background()))
	require.NoError(t, writer.Close())

	assert.Equal(t, pipeline.Stats{Read: 4, Resolved: 2, NoFire: 2}, p.Stats())

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, append(append([]string{}, csvfile.MergedColumns...), "temp", "rh", "ws", "ffmc", "fwi"), rows[0])

	// lat, lng, reportDate, startDate, endDate, peakDate, duration ... direction, code
	horse := rows[1]
	assert.Equal(t, []string{"56.62", "-111.28", "2016-05-02", "2016-05-01", "2016-05-05", "2016-05-03", "4"}, horse[:7])
	assert.Equal(t, []string{"NE", "1"}, horse[11:13])
	assert.Equal(t, "22.5", horse[13])

	chip := rows[2]
	assert.Equal(t, []string{"53.67", "-115.38", "2016-05-10", "2016-05-08", "2016-05-13", "2016-05-11", "5"}, chip[:7])
	assert.Equal(t, []string{"SW", "2"}, chip[11:13])
	assert.Equal(t, "23.5", chip[13])
}
