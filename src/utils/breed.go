package utils

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Prediction 图像分类器的单个候选结果
type Prediction struct {
	Breed string  // 品种名称
	Conf  float64 // 置信度 [0,1]
	IsDog bool    // 该候选是否为狗的品种
}

// ImagePredictions 按排名排列的三个候选(p1, p2, p3)
type ImagePredictions [3]Prediction

// Breed 选出的品种及其置信度
type Breed struct {
	Name       string
	Confidence float64
}

// GetDog 依次检查 p1、p2、p3，返回第一个被标记为狗的候选
// 三个候选都不是狗时返回 false
func GetDog(preds ImagePredictions) (Breed, bool) {
	for _, p := range preds {
		if p.IsDog {
			return Breed{Name: p.Breed, Confidence: p.Conf}, true
		}
	}
	return Breed{}, false
}

// PredictionsFromRow 从 DataFrame.Maps() 的一行读取 p1..p3 相关列
func PredictionsFromRow(row map[string]interface{}) ImagePredictions {
	var preds ImagePredictions
	for i := range preds {
		key := fmt.Sprintf("p%d", i+1)
		preds[i] = Prediction{
			Breed: toString(row[key]),
			Conf:  toFloat(row[key+"_conf"]),
			IsDog: toBool(row[key+"_dog"]),
		}
	}
	return preds
}

// ApplyBestBreed 逐行调用 GetDog，新增 breed 与 breed_conf 两列
// 没有狗的预测时 breed 为 NA，breed_conf 为 NaN
func ApplyBestBreed(df dataframe.DataFrame) dataframe.DataFrame {
	if df.Err != nil {
		return df
	}

	rows := df.Maps()
	names := make([]string, len(rows))
	confs := make([]float64, len(rows))
	for i, row := range rows {
		breed, ok := GetDog(PredictionsFromRow(row))
		if !ok {
			names[i] = "NaN"
			confs[i] = math.NaN()
			continue
		}
		names[i] = breed.Name
		confs[i] = breed.Confidence
	}

	return df.Mutate(series.New(names, series.String, "breed")).
		Mutate(series.New(confs, series.Float, "breed_conf"))
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func toBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	case int:
		return t != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	default:
		return false
	}
}
