package noaa_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/meteo/pkg/noaa"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	gt.NoError(t, err)
	return string(data)
}

func TestParse(t *testing.T) {
	report, err := noaa.Parse(readFixture(t, "2023-03.txt"))
	gt.NoError(t, err)

	t.Run("metadata", func(t *testing.T) {
		md := report.Metadata
		gt.Equal(t, md.Date, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC))
		gt.Equal(t, md.Name, "Lycee Chamson")
		gt.Equal(t, md.City, "Le Vigan")
		gt.Equal(t, md.State, "Gard")
		gt.Equal(t, md.Elevation, "237 m")
		gt.Equal(t, md.Latitude, `43° 59' 28" N`)
		gt.Equal(t, md.Longitude, `3° 36' 21" E`)
	})

	t.Run("rows without data are skipped", func(t *testing.T) {
		gt.A(t, report.Days).Length(4)
	})

	t.Run("day values", func(t *testing.T) {
		day := report.Days[2]
		gt.Equal(t, day.Date, time.Date(2023, time.March, 3, 0, 0, 0, 0, time.UTC))
		gt.Equal(t, day.MeanTemp, 10.1)
		gt.Equal(t, day.HighTemp, 16.2)
		gt.Equal(t, day.HighTempAt, time.Date(2023, time.March, 3, 13, 50, 0, 0, time.UTC))
		gt.Equal(t, day.LowTemp, -1.2)
		gt.Equal(t, day.LowTempAt, time.Date(2023, time.March, 3, 5, 30, 0, 0, time.UTC))
		gt.Equal(t, day.Rain, 12.4)
		gt.Equal(t, day.AvgWindSpeed, 3.0)
		gt.Equal(t, day.HighWindSpeed, 48.3)
		gt.V(t, day.HighWindAt).NotNil()
		gt.Equal(t, *day.HighWindAt, time.Date(2023, time.March, 3, 2, 10, 0, 0, time.UTC))
		gt.Equal(t, day.DominantDir, "N")
	})

	t.Run("12 hour clock and missing wind time", func(t *testing.T) {
		day := report.Days[3]
		gt.Equal(t, day.HighTempAt, time.Date(2023, time.March, 4, 14, 40, 0, 0, time.UTC))
		gt.Equal(t, day.LowTempAt, time.Date(2023, time.March, 4, 23, 50, 0, 0, time.UTC))
		gt.V(t, day.HighWindAt).Nil()
		gt.Equal(t, day.DominantDir, "")
	})
}

func TestParse_CRLF(t *testing.T) {
	lf, err := noaa.Parse(readFixture(t, "2023-04.txt"))
	gt.NoError(t, err)
	crlf, err := noaa.Parse(readFixture(t, "2023-04-crlf.txt"))
	gt.NoError(t, err)

	gt.A(t, crlf.Days).Length(2)
	gt.Equal(t, crlf.Metadata, lf.Metadata)
	gt.Equal(t, crlf.Days[1].DominantDir, "SW")
}

func TestParse_FrenchHeader(t *testing.T) {
	text := "RELEVE CLIMATOLOGICAL SUMMARY pour Décembre 2021\n" +
		"DAY TEMP HIGH TIME LOW TIME DAYS DAYS RAIN SPEED HIGH TIME DIR\n" +
		"-----\n" +
		" 31  2.0  5.0  14:00  -3.0  07:00  16.3  0.0  0.0  1.0  10.0  12:00  E\n" +
		"-----\n"

	report, err := noaa.Parse(text)
	gt.NoError(t, err)
	gt.Equal(t, report.Metadata.Date, time.Date(2021, time.December, 1, 0, 0, 0, 0, time.UTC))
	gt.A(t, report.Days).Length(1)
	gt.Equal(t, report.Days[0].Date.Day(), 31)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{
			name: "empty document",
			text: "",
			want: noaa.ErrMissingHeader,
		},
		{
			name: "html error page",
			text: "<html><body>404 Not Found</body></html>",
			want: noaa.ErrMissingHeader,
		},
		{
			name: "unknown month",
			text: "MONTHLY CLIMATOLOGICAL SUMMARY for XYZ. 2023\n",
			want: noaa.ErrMissingHeader,
		},
		{
			name: "no table",
			text: "MONTHLY CLIMATOLOGICAL SUMMARY for MAR. 2023\nNAME: x\n",
			want: noaa.ErrMissingTable,
		},
		{
			name: "column header without separator",
			text: "MONTHLY CLIMATOLOGICAL SUMMARY for MAR. 2023\nDAY TEMP\n",
			want: noaa.ErrMissingTable,
		},
		{
			name: "truncated row",
			text: "MONTHLY CLIMATOLOGICAL SUMMARY for MAR. 2023\nDAY\n---\n 1 8.6 14.1\n---\n",
			want: noaa.ErrInvalidRow,
		},
		{
			name: "day out of month",
			text: "MONTHLY CLIMATOLOGICAL SUMMARY for FEB. 2023\nDAY\n---\n" +
				" 30  8.6  14.1  14:30  3.9  07:00  9.7  0.0  0.0  2.1  22.5  13:00  NW\n---\n",
			want: noaa.ErrInvalidRow,
		},
		{
			name: "bad number",
			text: "MONTHLY CLIMATOLOGICAL SUMMARY for MAR. 2023\nDAY\n---\n" +
				" 1  8.6  14.1  14:30  3.9  07:00  9.7  0.0  abc  2.1  22.5  13:00  NW\n---\n",
			want: noaa.ErrInvalidRow,
		},
		{
			name: "bad time",
			text: "MONTHLY CLIMATOLOGICAL SUMMARY for MAR. 2023\nDAY\n---\n" +
				" 1  8.6  14.1  25:30  3.9  07:00  9.7  0.0  0.0  2.1  22.5  13:00  NW\n---\n",
			want: noaa.ErrInvalidRow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := noaa.Parse(tt.text)
			gt.Error(t, err)
			gt.True(t, errors.Is(err, tt.want))
		})
	}
}
