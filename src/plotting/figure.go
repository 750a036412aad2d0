package plotting

import (
	"WeRateDogsAnalysis/src/processor"
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/lucasb-eyer/go-colorful"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// 柱宽的一半，以横轴单位计
const barHalfWidth = 0.4

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Panel 一个子图及其绘制的数据点
type Panel struct {
	Chart  chart.Chart
	Points []processor.Aggregate
}

// Figure 由若干子图纵向堆叠而成的图
type Figure struct {
	Title  string
	Width  int
	Height int
	Panels []Panel
}

// Image 逐个渲染子图并纵向拼接，每个子图高度为 Height/len(Panels)
func (f *Figure) Image() (image.Image, error) {
	if len(f.Panels) == 0 {
		return nil, fmt.Errorf("figure %q has no panels", f.Title)
	}

	panelHeight := f.Height / len(f.Panels)
	canvas := image.NewRGBA(image.Rect(0, 0, f.Width, panelHeight*len(f.Panels)))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	for i, p := range f.Panels {
		c := p.Chart
		c.Width = f.Width
		c.Height = panelHeight

		var buf bytes.Buffer
		if err := c.Render(chart.PNG, &buf); err != nil {
			return nil, fmt.Errorf("render panel %d of %q: %w", i, f.Title, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return nil, fmt.Errorf("decode panel %d of %q: %w", i, f.Title, err)
		}

		r := image.Rect(0, i*panelHeight, f.Width, (i+1)*panelHeight)
		draw.Draw(canvas, r, img, img.Bounds().Min, draw.Over)
	}
	return canvas, nil
}

func (f *Figure) WritePNG(w io.Writer) error {
	img, err := f.Image()
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func (f *Figure) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.WritePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Frame 以 DataFrame 形式返回所有子图的数据点(panel, key, value)
func (f *Figure) Frame() dataframe.DataFrame {
	var (
		panels []int
		keys   []string
		values []float64
	)
	for i, p := range f.Panels {
		for _, pt := range p.Points {
			panels = append(panels, i)
			keys = append(keys, pt.Key)
			values = append(values, pt.Value)
		}
	}
	return dataframe.New(
		series.New(panels, series.Int, "panel"),
		series.New(keys, series.String, "key"),
		series.New(values, series.Float, "value"),
	)
}

// Slug 由标题生成文件名/工作表名
func (f *Figure) Slug() string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(f.Title), "_"), "_")
	if s == "" {
		return "figure"
	}
	return s
}

// linePanel 折线子图，每个点上方标注整数值
func linePanel(title, xLabel, yLabel string, points []processor.Aggregate, color drawing.Color) chart.Chart {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	annotations := make([]chart.Value2, len(points))
	maxY := 0.0
	for i, pt := range points {
		xs[i] = float64(i)
		ys[i] = pt.Value
		annotations[i] = chart.Value2{XValue: float64(i), YValue: pt.Value, Label: strconv.FormatFloat(pt.Value, 'f', 0, 64)}
		maxY = math.Max(maxY, pt.Value)
	}
	if maxY <= 0 {
		maxY = 1
	}

	return chart.Chart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:  xLabel,
			Ticks: categoryTicks(points, -0.5, float64(len(points))-0.5),
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(points)) - 0.5},
		},
		YAxis: chart.YAxis{
			Name:           yLabel,
			Range:          &chart.ContinuousRange{Min: 0, Max: maxY * 1.15},
			ValueFormatter: commaFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    title,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: color,
					StrokeWidth: 1.5,
					DotColor:    color,
					DotWidth:    3,
				},
			},
			chart.AnnotationSeries{Annotations: annotations},
		},
	}
}

// barPanel 柱状子图，每个柱子是一个填充的矩形折线，柱顶标注千分位数值
func barPanel(title, xLabel, yLabel string, points []processor.Aggregate, yMax float64, colors []drawing.Color) chart.Chart {
	bars := make([]chart.Series, 0, len(points)+1)
	annotations := make([]chart.Value2, len(points))
	for i, pt := range points {
		x := float64(i)
		bars = append(bars, chart.ContinuousSeries{
			Name:    pt.Key,
			XValues: []float64{x - barHalfWidth, x - barHalfWidth, x + barHalfWidth, x + barHalfWidth},
			YValues: []float64{0, pt.Value, pt.Value, 0},
			Style: chart.Style{
				StrokeColor: colors[i],
				StrokeWidth: 1,
				FillColor:   colors[i],
			},
		})
		annotations[i] = chart.Value2{XValue: x, YValue: pt.Value, Label: commaLabel(pt.Value)}
	}
	bars = append(bars, chart.AnnotationSeries{Annotations: annotations})

	if yMax <= 0 {
		yMax = 1
	}

	return chart.Chart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 30}},
		XAxis: chart.XAxis{
			Name:      xLabel,
			Ticks:     categoryTicks(points, -0.6, float64(len(points))-0.4),
			TickStyle: chart.Style{TextRotationDegrees: 10},
			Range:     &chart.ContinuousRange{Min: -0.6, Max: float64(len(points)) - 0.4},
		},
		YAxis: chart.YAxis{
			Name:           yLabel,
			Range:          &chart.ContinuousRange{Min: 0, Max: yMax},
			ValueFormatter: commaFormatter,
		},
		Series: bars,
	}
}

// categoryTicks 每个分类一个刻度，两端补无标签刻度
// go-chart 以刻度的最小、最大值作为横轴范围，只有一个分类时范围为零无法渲染
func categoryTicks(points []processor.Aggregate, lo, hi float64) []chart.Tick {
	ticks := make([]chart.Tick, 0, len(points)+2)
	ticks = append(ticks, chart.Tick{Value: lo})
	for i, pt := range points {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: pt.Key})
	}
	return append(ticks, chart.Tick{Value: hi})
}

// commaLabel 千分位、无小数，如 12345.6 -> "12,346"
func commaLabel(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

func commaFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return commaLabel(f)
	}
	return fmt.Sprint(v)
}

func parseColor(hex string) (drawing.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return drawing.Color{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return drawing.Color{R: r, G: g, B: b, A: 255}, nil
}

// gradient 按数值在 [min,max] 中的位置沿色带取色，alpha 为透明度
func gradient(stops []string, points []processor.Aggregate, alpha uint8) ([]drawing.Color, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("colormap has no stops")
	}
	cols := make([]colorful.Color, len(stops))
	for i, s := range stops {
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("invalid colormap stop %q: %w", s, err)
		}
		cols[i] = c
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, pt := range points {
		lo = math.Min(lo, pt.Value)
		hi = math.Max(hi, pt.Value)
	}

	out := make([]drawing.Color, len(points))
	for i, pt := range points {
		t := 0.0
		if hi > lo {
			t = (pt.Value - lo) / (hi - lo)
		}
		r, g, b := sample(cols, t).RGB255()
		out[i] = drawing.Color{R: r, G: g, B: b, A: alpha}
	}
	return out, nil
}

func sample(stops []colorful.Color, t float64) colorful.Color {
	if len(stops) == 1 || t <= 0 {
		return stops[0]
	}
	pos := t * float64(len(stops)-1)
	i := int(math.Floor(pos))
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	return stops[i].BlendLab(stops[i+1], pos-float64(i)).Clamped()
}
