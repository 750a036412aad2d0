package utils

import (
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// 推文时间戳可能出现的格式
var timeLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// 辅助函数：判断DataFrame是否有某列
func HasColumn(df dataframe.DataFrame, name string) bool {
	return Contains(df.Names(), name)
}

func ParseTime(s series.Element) (time.Time, error) {
	if s.IsNA() || s.String() == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	var err error
	for _, layout := range timeLayouts {
		t, perr := time.Parse(layout, s.String())
		if perr == nil {
			return t.UTC(), nil
		}
		err = perr
	}
	return time.Time{}, err
}

// AddPeriodColumns 由时间戳列派生 year、month_number、day_number、hour_number、hour 列
// day_number 以星期一为 0，hour 为 "15:00" 形式的标签
func AddPeriodColumns(df dataframe.DataFrame, timeCol string) (dataframe.DataFrame, error) {
	if df.Err != nil {
		return df, df.Err
	}
	col := df.Col(timeCol)
	if col.Err != nil {
		return df, col.Err
	}

	n := df.Nrow()
	years := make([]int, 0, n)
	monthNums := make([]int, 0, n)
	dayNums := make([]int, 0, n)
	hourNums := make([]int, 0, n)
	hours := make([]string, 0, n)

	for i := 0; i < n; i++ {
		t, err := ParseTime(col.Elem(i))
		if err != nil {
			return df, fmt.Errorf("failed to parse %s at row %d: %w", timeCol, i, err)
		}
		years = append(years, t.Year())
		monthNums = append(monthNums, int(t.Month()))
		dayNums = append(dayNums, (int(t.Weekday())+6)%7)
		hourNums = append(hourNums, t.Hour())
		hours = append(hours, fmt.Sprintf("%02d:00", t.Hour()))
	}

	out := df.Mutate(series.New(years, series.Int, "year")).
		Mutate(series.New(monthNums, series.Int, "month_number")).
		Mutate(series.New(dayNums, series.Int, "day_number")).
		Mutate(series.New(hourNums, series.Int, "hour_number")).
		Mutate(series.New(hours, series.String, "hour"))
	return out, out.Err
}

// WriteSheet 将 DataFrame 写入工作簿的指定工作表，首行为列名
func WriteSheet(f *excelize.File, sheetName string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return df.Err
	}

	colNames := df.Names()
	for i, name := range colNames {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return err
		}
	}

	for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
		for colIdx, colName := range colNames {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			el := df.Col(colName).Elem(rowIdx)
			if el.IsNA() {
				continue
			}
			if err := f.SetCellValue(sheetName, cell, el.Val()); err != nil {
				return fmt.Errorf("写入单元格 %s 失败: %w", cell, err)
			}
		}
	}
	return nil
}
