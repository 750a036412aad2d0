package plotting

import (
	"WeRateDogsAnalysis/src/processor"
	"WeRateDogsAnalysis/src/utils"
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrInvalidPeriod 不支持的统计周期
var ErrInvalidPeriod = errors.New("invalid period")

// Period 推文数量统计周期
type Period int

const (
	Daily Period = iota + 1
	Monthly
	Hourly
)

// ParsePeriod 只接受 "daily"、"monthly"、"hourly"
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "daily":
		return Daily, nil
	case "monthly":
		return Monthly, nil
	case "hourly":
		return Hourly, nil
	default:
		return 0, fmt.Errorf("invalid period %q, choose from 'daily', 'monthly', 'hourly': %w", s, ErrInvalidPeriod)
	}
}

func (p Period) String() string {
	switch p {
	case Daily:
		return "daily"
	case Monthly:
		return "monthly"
	case Hourly:
		return "hourly"
	default:
		return fmt.Sprintf("Period(%d)", int(p))
	}
}

// periodSpec 每个周期的分组列、横轴标签与刻度命名方式
type periodSpec struct {
	codeCol  string // 数字编码列，决定横轴顺序
	labelCol string // 额外参与分组的原始标签列，可为空
	xLabel   string
	name     func(processor.PeriodCount) (string, error)
}

func (p Period) spec() (periodSpec, error) {
	switch p {
	case Daily:
		return periodSpec{
			codeCol: "day_number",
			xLabel:  "Day",
			name:    func(c processor.PeriodCount) (string, error) { return utils.DayName(c.Code) },
		}, nil
	case Monthly:
		return periodSpec{
			codeCol: "month_number",
			xLabel:  "Month",
			name:    func(c processor.PeriodCount) (string, error) { return utils.MonthName(c.Code) },
		}, nil
	case Hourly:
		return periodSpec{
			codeCol:  "hour_number",
			labelCol: "hour",
			xLabel:   "Hour",
			name:     func(c processor.PeriodCount) (string, error) { return c.Label, nil },
		}, nil
	default:
		return periodSpec{}, fmt.Errorf("invalid period %s, choose from 'daily', 'monthly', 'hourly': %w", p, ErrInvalidPeriod)
	}
}

// PlotPeriod 按年绘制每个周期单位内的推文数量，每年一个子图纵向排列
func (p *Plotter) PlotPeriod(df dataframe.DataFrame, period Period) (*Figure, error) {
	spec, err := period.spec()
	if err != nil {
		return nil, err
	}

	yearCol := p.dcfg.Column("year")
	codeCol := p.dcfg.Column(spec.codeCol)
	labelCol := ""
	if spec.labelCol != "" {
		// 缺少 hour 列时直接用 hour_number 作为刻度
		if c := p.dcfg.Column(spec.labelCol); utils.HasColumn(df, c) {
			labelCol = c
		}
	}

	counts, err := processor.CountByPeriod(df, yearCol, codeCol, labelCol, p.dcfg.Column("tweet_id"))
	if err != nil {
		return nil, fmt.Errorf("plot %s: %w", period, err)
	}
	years := processor.Years(counts)
	if len(years) == 0 {
		return nil, fmt.Errorf("plot %s: no tweets to plot", period)
	}

	palette := make([]drawing.Color, len(p.cfg.Palette))
	for i, hex := range p.cfg.Palette {
		if palette[i], err = parseColor(hex); err != nil {
			return nil, err
		}
	}
	if len(palette) == 0 {
		return nil, fmt.Errorf("plot %s: empty palette", period)
	}

	periodTitle := titleCase(period.String())
	w, h := p.cfg.Pixels(p.cfg.Figures.Period)
	fig := &Figure{
		Title:  fmt.Sprintf("%s Total Tweets", periodTitle),
		Width:  w,
		Height: h,
	}

	for i, year := range years {
		rows := processor.ForYear(counts, year)
		points := make([]processor.Aggregate, len(rows))
		for j, r := range rows {
			label, err := spec.name(r)
			if err != nil {
				return nil, fmt.Errorf("plot %s (%d): %w", period, year, err)
			}
			points[j] = processor.Aggregate{Key: label, Value: float64(r.Count)}
		}

		title := fmt.Sprintf("%s Total Tweets (%d)", periodTitle, year)
		fig.Panels = append(fig.Panels, Panel{
			Chart:  linePanel(title, spec.xLabel, "Number of Tweets", points, palette[i%len(palette)]),
			Points: points,
		})
	}

	return fig, p.show(fig)
}
