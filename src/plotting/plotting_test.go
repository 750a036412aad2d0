package plotting

import (
	"WeRateDogsAnalysis/src/config"
	"WeRateDogsAnalysis/src/processor"
	"WeRateDogsAnalysis/src/storage"
	"WeRateDogsAnalysis/src/utils"
	"errors"
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	chart "github.com/wcharczuk/go-chart/v2"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.DPI = 50
	return cfg
}

func newTestPlotter(t *testing.T) (*Plotter, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "app.log")
	logger, err := storage.NewLogger(logPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { logger.Close() })
	return NewPlotter(testConfig(), nil, logger), logPath
}

func tweets() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"1", "2", "3", "4", "5", "6"}, series.String, "tweet_id"),
		series.New([]int{2016, 2016, 2015, 2016, 2016, 2016}, series.Int, "year"),
		series.New([]int{4, 0, 6, 0, 4, 0}, series.Int, "day_number"),
		series.New([]int{12, 1, 11, 1, 7, 7}, series.Int, "month_number"),
		series.New([]int{16, 16, 2, 0, 16, 0}, series.Int, "hour_number"),
		series.New([]string{"16:00", "16:00", "02:00", "00:00", "16:00", "00:00"}, series.String, "hour"),
	)
}

func TestParsePeriod(t *testing.T) {
	for s, want := range map[string]Period{"daily": Daily, "monthly": Monthly, "hourly": Hourly} {
		got, err := ParsePeriod(s)
		if err != nil || got != want || got.String() != s {
			t.Errorf("ParsePeriod(%q) = %v, %v", s, got, err)
		}
	}

	_, err := ParsePeriod("weekly")
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("ParsePeriod(weekly) error = %v", err)
	}
	if !strings.Contains(err.Error(), "'daily', 'monthly', 'hourly'") {
		t.Errorf("error should list the valid periods: %v", err)
	}
}

func TestPlotPeriodInvalid(t *testing.T) {
	p, _ := newTestPlotter(t)
	if _, err := p.PlotPeriod(tweets(), Period(42)); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("PlotPeriod with unknown period error = %v", err)
	}
}

func TestPlotPeriodDaily(t *testing.T) {
	p, logPath := newTestPlotter(t)

	fig, err := p.PlotPeriod(tweets(), Daily)
	if err != nil {
		t.Fatalf("PlotPeriod: %v", err)
	}
	if fig.Title != "Daily Total Tweets" {
		t.Errorf("title = %q", fig.Title)
	}
	if len(fig.Panels) != 2 {
		t.Fatalf("expected one panel per year, got %d", len(fig.Panels))
	}

	if got := fig.Panels[0].Chart.Title; got != "Daily Total Tweets (2015)" {
		t.Errorf("panel 0 title = %q", got)
	}
	want := []processor.Aggregate{{Key: "Monday", Value: 3}, {Key: "Friday", Value: 2}}
	got := fig.Panels[1].Points
	if len(got) != len(want) {
		t.Fatalf("2016 points = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("2016 point %d = %v, want %v", i, got[i], want[i])
		}
	}
	if fig.Panels[1].Chart.XAxis.Name != "Day" || fig.Panels[1].Chart.YAxis.Name != "Number of Tweets" {
		t.Errorf("unexpected axis names %q / %q", fig.Panels[1].Chart.XAxis.Name, fig.Panels[1].Chart.YAxis.Name)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "INFO: 绘制图表: Daily Total Tweets") {
		t.Errorf("render not logged: %q", data)
	}
}

func TestPlotPeriodPaletteCycles(t *testing.T) {
	p, _ := newTestPlotter(t)
	p.cfg.Palette = []string{"#1f77b4"}

	fig, err := p.PlotPeriod(tweets(), Monthly)
	if err != nil {
		t.Fatal(err)
	}
	for i, panel := range fig.Panels {
		line := panel.Chart.Series[0].(chart.ContinuousSeries)
		if line.Style.StrokeColor.R != 0x1f || line.Style.StrokeColor.B != 0xb4 {
			t.Errorf("panel %d color = %v", i, line.Style.StrokeColor)
		}
	}
	if got := fig.Panels[1].Points[0].Key; got != "January" {
		t.Errorf("first 2016 month = %q", got)
	}
}

func TestPlotPeriodHourly(t *testing.T) {
	p, _ := newTestPlotter(t)

	fig, err := p.PlotPeriod(tweets(), Hourly)
	if err != nil {
		t.Fatal(err)
	}
	keys := []string{}
	for _, pt := range fig.Panels[1].Points {
		keys = append(keys, pt.Key)
	}
	if strings.Join(keys, ",") != "00:00,16:00" {
		t.Errorf("hour labels = %v", keys)
	}

	// 没有 hour 列时退回 hour_number
	noHour := tweets().Drop("hour")
	fig, err = p.PlotPeriod(noHour, Hourly)
	if err != nil {
		t.Fatal(err)
	}
	if got := fig.Panels[1].Points[1].Key; got != "16" {
		t.Errorf("fallback label = %q", got)
	}
}

func TestPlotPeriodBadMonth(t *testing.T) {
	p, _ := newTestPlotter(t)
	df := tweets().Mutate(series.New([]int{13, 1, 1, 1, 1, 1}, series.Int, "month_number"))

	if _, err := p.PlotPeriod(df, Monthly); !errors.Is(err, utils.ErrIndexOutOfRange) {
		t.Errorf("expected out of range error, got %v", err)
	}
}

func TestPlotPeriodColumnMapping(t *testing.T) {
	dcfg := config.DefaultDataConfig()
	dcfg.SetColumn("tweet_id", "id")
	p := NewPlotter(testConfig(), dcfg, nil)

	df := tweets().Rename("id", "tweet_id")
	fig, err := p.PlotPeriod(df, Daily)
	if err != nil {
		t.Fatalf("PlotPeriod with mapped column: %v", err)
	}
	if len(fig.Panels) != 2 {
		t.Errorf("got %d panels", len(fig.Panels))
	}
}

func categoryFrame() dataframe.DataFrame {
	var (
		sources []string
		counts  []float64
	)
	for i := 0; i < 10; i++ {
		for j := 0; j <= i; j++ {
			sources = append(sources, fmt.Sprintf("source_%d", i))
			counts = append(counts, float64(100*(i+1)))
		}
	}
	return dataframe.New(
		series.New(sources, series.String, "source"),
		series.New(counts, series.Float, "retweet_count"),
	)
}

func TestPlotAttributesTopFive(t *testing.T) {
	p, _ := newTestPlotter(t)

	fig, err := p.PlotAttributes(categoryFrame(), "source", "retweet_count", processor.Sum, 5)
	if err != nil {
		t.Fatalf("PlotAttributes: %v", err)
	}

	points := fig.Panels[0].Points
	if len(points) != 5 {
		t.Fatalf("expected 5 bars, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Value > points[i-1].Value {
			t.Errorf("bars not descending: %v", points)
		}
	}
	// source_9 出现 10 次，每次 1000
	if points[0].Key != "source_9" || points[0].Value != 10000 {
		t.Errorf("top bar = %v", points[0])
	}

	c := fig.Panels[0].Chart
	if len(c.Series) != 6 {
		t.Errorf("expected 5 bars plus labels, got %d series", len(c.Series))
	}
	if r := c.YAxis.Range.(*chart.ContinuousRange); math.Abs(r.Max-12000) > 1e-9 {
		t.Errorf("y limit = %v, want 12000", r.Max)
	}
	if c.Title != "Top 5 Source by Retweet Count" || c.YAxis.Name != "Total" || c.XAxis.Name != "Source" {
		t.Errorf("unexpected labels %q / %q / %q", c.Title, c.YAxis.Name, c.XAxis.Name)
	}

	labels := c.Series[5].(chart.AnnotationSeries).Annotations
	if labels[0].Label != "10,000" {
		t.Errorf("bar label = %q", labels[0].Label)
	}
}

func TestPlotAttributesMeanDefaultTop(t *testing.T) {
	p, _ := newTestPlotter(t)

	fig, err := p.PlotAttributes(categoryFrame(), "source", "retweet_count", processor.Mean, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(fig.Panels[0].Points) != DefaultTop {
		t.Errorf("expected %d bars, got %d", DefaultTop, len(fig.Panels[0].Points))
	}
	if fig.Panels[0].Chart.YAxis.Name != "Average" {
		t.Errorf("y label = %q", fig.Panels[0].Chart.YAxis.Name)
	}
}

func TestPlotAttributesInvalidAggregator(t *testing.T) {
	p, _ := newTestPlotter(t)

	if _, err := processor.ParseAggregator("median"); !errors.Is(err, processor.ErrInvalidAggregator) {
		t.Errorf("ParseAggregator(median) error = %v", err)
	}
	if _, err := p.PlotAttributes(categoryFrame(), "source", "retweet_count", processor.Aggregator(0), 10); !errors.Is(err, processor.ErrInvalidAggregator) {
		t.Errorf("PlotAttributes with invalid aggregator error = %v", err)
	}
}

func TestPlotAttrib(t *testing.T) {
	p, _ := newTestPlotter(t)
	counts := []processor.Aggregate{{Key: "pupper", Value: 1245}, {Key: "doggo", Value: 80}, {Key: "puppo", Value: 30}}

	fig, err := p.PlotAttrib(counts, "Dog Stage", "Distribution of Dog Stages")
	if err != nil {
		t.Fatalf("PlotAttrib: %v", err)
	}
	c := fig.Panels[0].Chart
	if c.Title != "Distribution of Dog Stages" || c.XAxis.Name != "Dog Stage" {
		t.Errorf("labels not applied verbatim: %q / %q", c.Title, c.XAxis.Name)
	}
	if r := c.YAxis.Range.(*chart.ContinuousRange); r.Max != 1255 {
		t.Errorf("y limit = %v, want 1255", r.Max)
	}
	if labels := c.Series[3].(chart.AnnotationSeries).Annotations; labels[0].Label != "1,245" {
		t.Errorf("bar label = %q", labels[0].Label)
	}

	if _, err := p.PlotAttrib(nil, "x", "empty"); err == nil {
		t.Error("expected error for empty counts")
	}
}

func TestFigureImageStacksPanels(t *testing.T) {
	p, _ := newTestPlotter(t)
	fig, err := p.PlotPeriod(tweets(), Daily)
	if err != nil {
		t.Fatal(err)
	}

	img, err := fig.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 850 || b.Dy() != 500 {
		t.Errorf("image size = %dx%d, want 850x500", b.Dx(), b.Dy())
	}
}

func TestFigureFrameAndSlug(t *testing.T) {
	fig := &Figure{
		Title: "Top 5 Source by Retweet Count",
		Panels: []Panel{
			{Points: []processor.Aggregate{{Key: "a", Value: 1}}},
			{Points: []processor.Aggregate{{Key: "b", Value: 2}, {Key: "c", Value: 3}}},
		},
	}
	if got := fig.Slug(); got != "top_5_source_by_retweet_count" {
		t.Errorf("Slug = %q", got)
	}

	df := fig.Frame()
	if df.Nrow() != 3 || df.Ncol() != 3 {
		t.Fatalf("frame dims = %dx%d", df.Nrow(), df.Ncol())
	}
	panels, _ := df.Col("panel").Int()
	if panels[0] != 0 || panels[2] != 1 {
		t.Errorf("panel column = %v", panels)
	}
}

func TestPNGSink(t *testing.T) {
	dir := t.TempDir()
	p, _ := newTestPlotter(t)
	p.WithSink(PNGSink{Dir: dir})

	if _, err := p.PlotAttributes(categoryFrame(), "source", "retweet_count", processor.Sum, 3); err != nil {
		t.Fatalf("PlotAttributes: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "top_3_source_by_retweet_count.png"))
	if err != nil {
		t.Fatalf("png not written: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 750 || cfg.Height != 250 {
		t.Errorf("png size = %dx%d, want 750x250", cfg.Width, cfg.Height)
	}
}

func TestWorkbookSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	p, _ := newTestPlotter(t)
	p.WithSink(NewWorkbookSink(path))

	if _, err := p.PlotPeriod(tweets(), Daily); err != nil {
		t.Fatalf("PlotPeriod: %v", err)
	}
	if _, err := p.PlotPeriod(tweets(), Daily); err != nil {
		t.Fatalf("second PlotPeriod: %v", err)
	}

	wb, err := xlsx.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}

	sheet, ok := wb.Sheet["daily_total_tweets"]
	if !ok {
		t.Fatalf("figure sheet missing, have %d sheets", len(wb.Sheets))
	}
	if got := sheet.Rows[0].Cells[1].Value; got != "key" {
		t.Errorf("header = %q", got)
	}
	if got := sheet.Rows[1].Cells[1].Value; got != "Sunday" {
		t.Errorf("first data row key = %q", got)
	}
	if _, ok := wb.Sheet["daily_total_tweets_2"]; !ok {
		t.Error("second figure should get its own sheet")
	}

	index := wb.Sheet[indexSheet]
	if len(index.Rows) != 2 || index.Rows[0].Cells[0].Value != "daily_total_tweets" || index.Rows[1].Cells[1].Value != "Daily Total Tweets" {
		t.Errorf("unexpected index sheet")
	}
}

func TestSinkFromConfig(t *testing.T) {
	cfg := config.Default()
	if s := SinkFromConfig(cfg); s != nil {
		t.Errorf("expected no sink, got %T", s)
	}
	cfg.OutputDir = "figures"
	if _, ok := SinkFromConfig(cfg).(PNGSink); !ok {
		t.Error("expected PNGSink")
	}
	cfg.Workbook = "report.xlsx"
	if m, ok := SinkFromConfig(cfg).(MultiSink); !ok || len(m) != 2 {
		t.Error("expected MultiSink with two sinks")
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"dog_stage":     "Dog_Stage",
		"retweet count": "Retweet Count",
		"source":        "Source",
	}
	for in, want := range tests {
		if got := titleCase(in); got != want {
			t.Errorf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}

// 单点子图(2015 年只有一条推文、只有一个分类)也必须能渲染输出
func TestPlotsRenderThroughSink(t *testing.T) {
	dir := t.TempDir()
	p, _ := newTestPlotter(t)
	p.WithSink(PNGSink{Dir: dir})

	for _, period := range []Period{Daily, Monthly, Hourly} {
		fig, err := p.PlotPeriod(tweets(), period)
		if err != nil {
			t.Fatalf("PlotPeriod(%s): %v", period, err)
		}
		if len(fig.Panels[0].Points) != 1 {
			t.Errorf("%s: 2015 panel should hold a single point, got %v", period, fig.Panels[0].Points)
		}
	}

	stages := dataframe.New(
		series.New([]string{"pupper", "NaN", "pupper", "NaN"}, series.String, "dog_stage"),
		series.New([]float64{120, 80, 40, 10}, series.Float, "retweet_count"),
	)
	fig, err := p.PlotAttributes(stages, "dog_stage", "retweet_count", processor.Sum, 10)
	if err != nil {
		t.Fatalf("PlotAttributes with one category: %v", err)
	}
	if got := fig.Panels[0].Points; len(got) != 1 || got[0].Value != 160 {
		t.Errorf("points = %v", got)
	}
	if fig.Panels[0].Chart.XAxis.Name != "Dog_Stage" {
		t.Errorf("x label = %q", fig.Panels[0].Chart.XAxis.Name)
	}

	if _, err := p.PlotAttrib([]processor.Aggregate{{Key: "golden_retriever", Value: 5}}, "Breed", "Single Breed"); err != nil {
		t.Fatalf("PlotAttrib with one bar: %v", err)
	}

	for _, name := range []string{
		"daily_total_tweets", "monthly_total_tweets", "hourly_total_tweets",
		"top_10_dog_stage_by_retweet_count", "single_breed",
	} {
		f, err := os.Open(filepath.Join(dir, name+".png"))
		if err != nil {
			t.Errorf("%s not written: %v", name, err)
			continue
		}
		if _, err := png.DecodeConfig(f); err != nil {
			t.Errorf("%s: %v", name, err)
		}
		f.Close()
	}
}

func TestPlotAttributesRendersPNG(t *testing.T) {
	p, _ := newTestPlotter(t)

	fig, err := p.PlotAttributes(categoryFrame(), "source", "retweet_count", processor.Mean, 3)
	if err != nil {
		t.Fatal(err)
	}
	data, err := fig.PNG()
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	if len(data) == 0 {
		t.Error("empty png")
	}
}

func TestOpenPlotter(t *testing.T) {
	cfg := testConfig()
	cfg.LogName = filepath.Join(t.TempDir(), "plots.log")

	p, err := OpenPlotter(cfg, nil)
	if err != nil {
		t.Fatalf("OpenPlotter: %v", err)
	}
	if _, err := p.PlotAttrib([]processor.Aggregate{{Key: "doggo", Value: 3}, {Key: "puppo", Value: 1}}, "Dog Stage", "Stages"); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(cfg.LogName)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "绘制图表: Stages") {
		t.Errorf("log = %q", data)
	}
}
