package utils

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DiscardOutliers 按 1.5 倍四分位距剔除 column 列的离群行
// 只保留严格落在 (Q1-1.5*IQR, Q3+1.5*IQR) 内的行，边界值与 NaN 行同样剔除。
// 输入不会被修改，返回新的 DataFrame；列不存在时错误记录在返回值的 Err 中。
func DiscardOutliers(df dataframe.DataFrame, column string) dataframe.DataFrame {
	if df.Err != nil {
		return df
	}
	col := df.Col(column)
	if col.Err != nil {
		return dataframe.DataFrame{Err: fmt.Errorf("discard outliers: %w", col.Err)}
	}

	lo, hi := OutlierBounds(col.Float())

	return df.Filter(
		dataframe.F{
			Colname:    column,
			Comparator: series.CompFunc,
			Comparando: func(el series.Element) bool {
				v := el.Float()
				return v > lo && v < hi
			},
		},
	)
}

// OutlierBounds 返回离群判定的上下界，全部为 NaN 时上下界均为 NaN
func OutlierBounds(values []float64) (lo, hi float64) {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return math.NaN(), math.NaN()
	}
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr
}

// quantile 对已排序数据做线性插值分位数，位置为 q*(n-1)
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
