package plotting

import (
	"WeRateDogsAnalysis/src/config"
	"WeRateDogsAnalysis/src/utils"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"
)

// 工作簿中记录图表目录的工作表
const indexSheet = "Sheet1"

// Sink 图表的输出位置
type Sink interface {
	Show(fig *Figure) error
}

// SinkFromConfig 根据配置组合输出位置，都未配置时返回 nil
func SinkFromConfig(cfg *config.Config) Sink {
	var sinks MultiSink
	if cfg.OutputDir != "" {
		sinks = append(sinks, PNGSink{Dir: cfg.OutputDir})
	}
	if cfg.Workbook != "" {
		sinks = append(sinks, NewWorkbookSink(cfg.Workbook))
	}

	switch len(sinks) {
	case 0:
		return nil
	case 1:
		return sinks[0]
	default:
		return sinks
	}
}

// PNGSink 将图表写为 Dir/<slug>.png
type PNGSink struct {
	Dir string
}

func (s PNGSink) Show(fig *Figure) (err error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	path := filepath.Join(s.Dir, fig.Slug()+".png")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return fig.WritePNG(f)
}

// WorkbookSink 每个图表追加一个工作表(数据 + 图片)，并在 Sheet1 登记目录
type WorkbookSink struct {
	Path string
	mu   sync.Mutex
}

func NewWorkbookSink(path string) *WorkbookSink {
	return &WorkbookSink{Path: path}
}

func (s *WorkbookSink) Show(fig *Figure) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pic, err := fig.PNG()
	if err != nil {
		return err
	}

	f, err := s.open()
	if err != nil {
		return fmt.Errorf("打开工作簿失败: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("关闭工作簿失败: %w", cerr)
		}
	}()

	sheet, err := uniqueSheetName(f, fig.Slug())
	if err != nil {
		return err
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("创建工作表 %s 失败: %w", sheet, err)
	}
	if err := utils.WriteSheet(f, sheet, fig.Frame()); err != nil {
		return err
	}
	if err := f.AddPictureFromBytes(sheet, "E2", &excelize.Picture{
		Extension: ".png",
		File:      pic,
		Format:    &excelize.GraphicOptions{AltText: fig.Title},
	}); err != nil {
		return fmt.Errorf("插入图片失败: %w", err)
	}

	if err := appendIndex(f, sheet, fig.Title); err != nil {
		return err
	}

	if err := f.SaveAs(s.Path); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}

func (s *WorkbookSink) open() (*excelize.File, error) {
	if _, err := os.Stat(s.Path); err == nil {
		return excelize.OpenFile(s.Path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return excelize.NewFile(), nil
}

// uniqueSheetName 工作表名最长 31 个字符，重名时追加序号
func uniqueSheetName(f *excelize.File, base string) (string, error) {
	if len(base) > 27 {
		base = base[:27]
	}
	name := base
	for i := 2; ; i++ {
		idx, err := f.GetSheetIndex(name)
		if err != nil {
			return "", err
		}
		if idx == -1 {
			return name, nil
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
}

func appendIndex(f *excelize.File, sheet, title string) error {
	rows, err := f.GetRows(indexSheet)
	if err != nil {
		return err
	}
	row := len(rows) + 1
	for col, v := range []string{sheet, title} {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(indexSheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// MultiSink 依次输出到多个位置，汇总所有错误
type MultiSink []Sink

func (m MultiSink) Show(fig *Figure) error {
	var errs []error
	for _, s := range m {
		if err := s.Show(fig); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
