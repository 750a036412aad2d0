package processor

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/dataframe"
)

// PeriodCount 某年某个周期单位(星期/月/小时)内的推文数
type PeriodCount struct {
	Year  int
	Code  int    // 周期单位的数字编码，用于排序
	Label string // 原始标签列的取值
	Count int
}

// CountByPeriod 按 (year, code[, label]) 分组统计不重复的推文 id 数
// labelCol 为空或与 codeCol 相同时只按 (year, code) 分组。结果按年份、编码升序。
func CountByPeriod(df dataframe.DataFrame, yearCol, codeCol, labelCol, idCol string) ([]PeriodCount, error) {
	groupCols := []string{yearCol, codeCol}
	if labelCol != "" && labelCol != codeCol {
		groupCols = append(groupCols, labelCol)
	}
	if err := checkColumns(df, append(groupCols, idCol)...); err != nil {
		return nil, err
	}

	// id 为 NA 的行不计数，与分组列一起过滤
	result := make([]PeriodCount, 0)
	df = dropNA(df, append(groupCols, idCol)...)
	if df.Err != nil {
		return nil, df.Err
	}
	if df.Nrow() == 0 {
		return result, nil
	}

	groups := df.GroupBy(groupCols...)
	if groups.Err != nil {
		return nil, groups.Err
	}

	for _, g := range groups.GetGroups() {
		if g.Nrow() == 0 {
			continue
		}
		year, err := g.Col(yearCol).Elem(0).Int()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", yearCol, err)
		}
		code, err := g.Col(codeCol).Elem(0).Int()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", codeCol, err)
		}

		label := g.Col(codeCol).Elem(0).String()
		if len(groupCols) == 3 {
			label = g.Col(labelCol).Elem(0).String()
		}

		result = append(result, PeriodCount{
			Year:  year,
			Code:  code,
			Label: label,
			Count: distinctCount(g, idCol),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		if result[i].Code != result[j].Code {
			return result[i].Code < result[j].Code
		}
		return result[i].Label < result[j].Label
	})
	return result, nil
}

// Years 返回结果中出现的年份(升序，去重)
func Years(counts []PeriodCount) []int {
	seen := make(map[int]bool)
	var years []int
	for _, c := range counts {
		if !seen[c.Year] {
			seen[c.Year] = true
			years = append(years, c.Year)
		}
	}
	sort.Ints(years)
	return years
}

// ForYear 过滤出某一年的统计，保持原有顺序
func ForYear(counts []PeriodCount, year int) []PeriodCount {
	var out []PeriodCount
	for _, c := range counts {
		if c.Year == year {
			out = append(out, c)
		}
	}
	return out
}

func distinctCount(df dataframe.DataFrame, idCol string) int {
	col := df.Col(idCol)
	seen := make(map[string]struct{}, col.Len())
	for i := 0; i < col.Len(); i++ {
		el := col.Elem(i)
		if el.IsNA() {
			continue
		}
		seen[el.String()] = struct{}{}
	}
	return len(seen)
}
