// Package export renders session snapshots for sharing: PNG charts and xlsx workbooks.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pable/royaleops/internal/model"
)

var (
	background = drawing.ColorFromHex("101418")
	textColor  = drawing.ColorFromHex("eceff1")
	sideColors = [2]drawing.Color{drawing.ColorFromHex("1e88e5"), drawing.ColorFromHex("e53935")}
)

func teamColor(c model.Color) drawing.Color {
	hex := strings.TrimPrefix(string(c), "#")
	if len(hex) != 6 {
		return textColor
	}
	return drawing.ColorFromHex(hex)
}

// LeaderboardPNG renders total points per team as a bar chart, in the order given.
func LeaderboardPNG(title string, rows []model.ProcessedScore) ([]byte, error) {
	top := 0
	bars := make([]chart.Value, 0, len(rows))
	for _, r := range rows {
		top = max(top, r.TotalPoints)
		bars = append(bars, chart.Value{
			Label: r.Name,
			Value: float64(r.TotalPoints),
			Style: chart.Style{
				FillColor:   teamColor(r.Color),
				StrokeColor: teamColor(r.Color),
			},
		})
	}
	if top == 0 {
		return renderNoDataPlaceholder("No scored matches yet")
	}
	return renderBars(title, bars, float64(top))
}

// SeriesPNG renders the match wins of both sides.
func SeriesPNG(st model.SeriesState) ([]byte, error) {
	if st.SeriesScore.A == 0 && st.SeriesScore.B == 0 {
		return renderNoDataPlaceholder("No finished matches yet")
	}
	bars := []chart.Value{
		{Label: "Side A", Value: float64(st.SeriesScore.A), Style: chart.Style{FillColor: sideColors[0], StrokeColor: sideColors[0]}},
		{Label: "Side B", Value: float64(st.SeriesScore.B), Style: chart.Style{FillColor: sideColors[1], StrokeColor: sideColors[1]}},
	}
	title := fmt.Sprintf("MD%d  %d – %d", st.BestOf, st.SeriesScore.A, st.SeriesScore.B)
	return renderBars(title, bars, float64((st.BestOf+1)/2))
}

func renderBars(title string, bars []chart.Value, top float64) ([]byte, error) {
	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: textColor},
		Width:      max(400, 90*len(bars)),
		Height:     400,
		BarWidth:   50,
		Background: chart.Style{
			FillColor: background,
			Padding:   chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Canvas: chart.Style{
			FillColor: background,
		},
		XAxis: chart.Style{
			FontColor: textColor,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: textColor},
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(msg string) ([]byte, error) {
	graph := chart.Chart{
		Width:  400,
		Height: 200,
		Background: chart.Style{
			FillColor: background,
		},
		Canvas: chart.Style{
			FillColor: background,
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(textColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render placeholder: %w", err)
	}
	return buffer.Bytes(), nil
}
