package processor

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrInvalidAggregator 不支持的聚合方式
var ErrInvalidAggregator = errors.New("invalid aggregator")

// Aggregator 分类聚合方式
type Aggregator int

const (
	Sum Aggregator = iota + 1
	Mean
)

// ParseAggregator 只接受 "sum" 与 "mean"
func ParseAggregator(s string) (Aggregator, error) {
	switch s {
	case "sum":
		return Sum, nil
	case "mean":
		return Mean, nil
	default:
		return 0, fmt.Errorf("aggregator must be 'sum' or 'mean', got %q: %w", s, ErrInvalidAggregator)
	}
}

func (a Aggregator) String() string {
	switch a {
	case Sum:
		return "sum"
	case Mean:
		return "mean"
	default:
		return fmt.Sprintf("Aggregator(%d)", int(a))
	}
}

// Label 图表纵轴标签
func (a Aggregator) Label() string {
	if a == Mean {
		return "Average"
	}
	return "Total"
}

func (a Aggregator) valid() error {
	if a != Sum && a != Mean {
		return fmt.Errorf("aggregator must be 'sum' or 'mean', got %s: %w", a, ErrInvalidAggregator)
	}
	return nil
}

// apply 聚合时跳过 NaN；全部为 NaN 时求和为 0，求均值为 NaN
func (a Aggregator) apply(values []float64) float64 {
	kept := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}
	if a == Mean {
		if len(kept) == 0 {
			return math.NaN()
		}
		return stat.Mean(kept, nil)
	}
	return floats.Sum(kept)
}

// Aggregate 分类键及其聚合值
type Aggregate struct {
	Key   string
	Value float64
}

// AggregateBy 按 category 分组并聚合 value 列，结果按聚合值降序排列
// 分类为 NA 的行与聚合结果为 NaN 的分组不参与排序结果
func AggregateBy(df dataframe.DataFrame, category, value string, agg Aggregator) ([]Aggregate, error) {
	if err := agg.valid(); err != nil {
		return nil, err
	}
	if err := checkColumns(df, category, value); err != nil {
		return nil, err
	}

	result := make([]Aggregate, 0)
	df = dropNA(df, category)
	if df.Err != nil {
		return nil, df.Err
	}
	if df.Nrow() == 0 {
		return result, nil
	}

	groups := df.GroupBy(category)
	if groups.Err != nil {
		return nil, groups.Err
	}

	for _, g := range groups.GetGroups() {
		if g.Nrow() == 0 {
			continue
		}
		v := agg.apply(g.Col(value).Float())
		if math.IsNaN(v) {
			continue
		}
		result = append(result, Aggregate{Key: g.Col(category).Elem(0).String(), Value: v})
	}

	sortDescending(result)
	return result, nil
}

// TopN 返回前 n 项，n 大于长度时返回全部
func TopN(aggs []Aggregate, n int) []Aggregate {
	if n < 0 {
		n = 0
	}
	if n > len(aggs) {
		n = len(aggs)
	}
	return aggs[:n]
}

// ValueCounts 统计 column 中每个取值出现的次数，按次数降序
func ValueCounts(df dataframe.DataFrame, column string) ([]Aggregate, error) {
	if err := checkColumns(df, column); err != nil {
		return nil, err
	}

	col := df.Col(column)
	counts := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		el := col.Elem(i)
		if el.IsNA() {
			continue
		}
		counts[el.String()]++
	}

	result := make([]Aggregate, 0, len(counts))
	for k, c := range counts {
		result = append(result, Aggregate{Key: k, Value: float64(c)})
	}
	sortDescending(result)
	return result, nil
}

// MaxValue 返回聚合结果中的最大值，空切片返回错误
func MaxValue(aggs []Aggregate) (float64, error) {
	if len(aggs) == 0 {
		return 0, fmt.Errorf("no values to plot")
	}
	values := make([]float64, len(aggs))
	for i, a := range aggs {
		values[i] = a.Value
	}
	return floats.Max(values), nil
}

// 先按键升序再稳定排序，保证同值分组的顺序确定
func sortDescending(aggs []Aggregate) {
	sort.Slice(aggs, func(i, j int) bool { return aggs[i].Key < aggs[j].Key })
	sort.SliceStable(aggs, func(i, j int) bool { return aggs[i].Value > aggs[j].Value })
}

func checkColumns(df dataframe.DataFrame, names ...string) error {
	if df.Err != nil {
		return df.Err
	}
	for _, name := range names {
		if col := df.Col(name); col.Err != nil {
			return col.Err
		}
	}
	return nil
}

// dropNA 剔除 cols 中任一列为 NA 的行
// GroupBy 遇到 NA 键会直接报错，分组前必须先过滤
func dropNA(df dataframe.DataFrame, cols ...string) dataframe.DataFrame {
	filters := make([]dataframe.F, len(cols))
	for i, c := range cols {
		filters[i] = dataframe.F{
			Colname:    c,
			Comparator: series.CompFunc,
			Comparando: func(el series.Element) bool { return !el.IsNA() },
		}
	}
	return df.FilterAggregation(dataframe.And, filters...)
}
