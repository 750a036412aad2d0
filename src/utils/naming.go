package utils

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange 星期或月份序号超出取值范围
var ErrIndexOutOfRange = errors.New("index out of range")

var (
	weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	months   = []string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"}
)

// DayName 星期序号转名称
// 参数:
//
//	x: 0 <= x <= 6, 0 为星期一
func DayName(x int) (string, error) {
	if x < 0 || x >= len(weekdays) {
		return "", fmt.Errorf("day number %d not in [0,6]: %w", x, ErrIndexOutOfRange)
	}
	return weekdays[x], nil
}

// MonthName 月份序号转名称
// 参数:
//
//	x: 1 <= x <= 12
func MonthName(x int) (string, error) {
	if x < 1 || x > len(months) {
		return "", fmt.Errorf("month number %d not in [1,12]: %w", x, ErrIndexOutOfRange)
	}
	return months[x-1], nil
}
