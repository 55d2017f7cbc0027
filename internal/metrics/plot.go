package metrics

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/ppg"
)

// Plot renders mean reward and mean step time per episode as an HTML page.
func Plot(w io.Writer, run string, rows []ppg.EpisodeStats) error {
	if len(rows) == 0 {
		return fmt.Errorf("run %s has no episodes", run)
	}

	episodes := make([]string, len(rows))
	rewards := make([]opts.LineData, len(rows))
	times := make([]opts.LineData, len(rows))
	for i, r := range rows {
		episodes[i] = fmt.Sprintf("%d", r.Episode)
		rewards[i] = opts.LineData{Value: r.MeanReward}
		times[i] = opts.LineData{Value: r.MeanStepSeconds}
	}

	reward := charts.NewLine()
	reward.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: run, Subtitle: "mean reward per episode"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
	)
	reward.SetXAxis(episodes).AddSeries("mean reward", rewards)

	timing := charts.NewLine()
	timing.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: run, Subtitle: "mean step time (s)"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
	)
	timing.SetXAxis(episodes).AddSeries("mean step time", times)

	page := components.NewPage()
	page.AddCharts(reward, timing)
	return page.Render(w)
}
