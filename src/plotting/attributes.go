package plotting

import (
	"WeRateDogsAnalysis/src/processor"
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// DefaultTop PlotAttributes 默认展示的分类数
const DefaultTop = 10

// PlotAttributes 按 category 分组聚合 value，绘制聚合值最大的 top 个分类
// 参数:
//
//	category: 分组用的分类列
//	value: 参与聚合的数值列
//	agg: processor.Sum 或 processor.Mean
//	top: 分类数，<= 0 时取 DefaultTop
func (p *Plotter) PlotAttributes(df dataframe.DataFrame, category, value string, agg processor.Aggregator, top int) (*Figure, error) {
	if top <= 0 {
		top = DefaultTop
	}

	aggs, err := processor.AggregateBy(df, category, value, agg)
	if err != nil {
		return nil, err
	}
	points := processor.TopN(aggs, top)
	maxValue, err := processor.MaxValue(points)
	if err != nil {
		return nil, fmt.Errorf("plot %s by %s: %w", value, category, err)
	}

	colors, err := gradient(p.cfg.ColorMap, points, 230)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Top %d %s by %s", top, titleCase(category), titleCase(strings.ReplaceAll(value, "_", " ")))
	w, h := p.cfg.Pixels(p.cfg.Figures.Attributes)
	fig := &Figure{
		Title:  title,
		Width:  w,
		Height: h,
		Panels: []Panel{{
			// 纵轴上限留出 20% 空间放柱顶标签
			Chart:  barPanel(title, titleCase(category), agg.Label(), points, maxValue*1.2, colors),
			Points: points,
		}},
	}
	return fig, p.show(fig)
}

// PlotAttrib 绘制已统计好的分布(分类 -> 数量)，xlabel 与 title 原样使用
func (p *Plotter) PlotAttrib(counts []processor.Aggregate, xlabel, title string) (*Figure, error) {
	maxValue, err := processor.MaxValue(counts)
	if err != nil {
		return nil, fmt.Errorf("plot %q: %w", title, err)
	}

	colors, err := gradient(p.cfg.ColorMap, counts, 204)
	if err != nil {
		return nil, err
	}

	w, h := p.cfg.Pixels(p.cfg.Figures.Attrib)
	fig := &Figure{
		Title:  title,
		Width:  w,
		Height: h,
		Panels: []Panel{{
			Chart:  barPanel(title, xlabel, "", counts, maxValue+10, colors),
			Points: counts,
		}},
	}
	return fig, p.show(fig)
}
