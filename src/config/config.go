package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Size 图表尺寸，单位为英寸，渲染时乘以 DPI 得到像素
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Config 结构体定义了绘图与日志相关的配置
type Config struct {
	DPI float64 `json:"dpi"` // 每英寸像素数

	Figures struct {
		Period     Size `json:"period"`     // 按周期的推文数量折线图
		Attributes Size `json:"attributes"` // Top-N 聚合柱状图
		Attrib     Size `json:"attrib"`     // 单属性分布柱状图
	} `json:"figures"`

	Palette  []string `json:"palette"`  // 按年份循环使用的折线颜色
	ColorMap []string `json:"colormap"` // 柱状图渐变色节点(由低到高)

	OutputDir  string `json:"output_dir"` // PNG 输出目录，为空则不写文件
	Workbook   string `json:"workbook"`   // xlsx 报表路径，为空则不写报表
	LogName    string `json:"log_name"`
	LogMaxSize string `json:"log_max_size"`
}

// DataConfig 数据列名映射：逻辑列名 -> 数据集中的实际列名
type DataConfig struct {
	Columns map[string]string `json:"columns"`
}

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
	mu                 sync.RWMutex
)

// Default 返回与 matplotlib 默认效果一致的配置
func Default() *Config {
	cfg := &Config{
		DPI:        100,
		Palette:    []string{"#1f77b4", "#8c564b", "#00008b"},
		ColorMap:   []string{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
		LogName:    "app.log",
		LogMaxSize: "10 * 1024 * 1024",
	}
	cfg.Figures.Period = Size{Width: 17, Height: 10}
	cfg.Figures.Attributes = Size{Width: 15, Height: 5}
	cfg.Figures.Attrib = Size{Width: 12, Height: 3}
	return cfg
}

func DefaultDataConfig() *DataConfig {
	return &DataConfig{Columns: map[string]string{}}
}

// LoadConfig 只加载一次配置文件，后续调用返回同一实例
func LoadConfig(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	var err error
	once.Do(func() {
		instance, dataConfigInstance, err = loadConfigs(jsonFolder, jsonFile, dataJsonFile)
	})
	return instance, dataConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	dataConfigFile := filepath.Join(jsonFolder, dataJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	dataConfigData, err := readFile(dataConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取数据配置文件失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	return waitForResults(cfgChan, dcfgChan, errChan)
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

// parseConfig 在默认配置之上解析，未出现的字段保持默认值
func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		errChan <- fmt.Errorf("解析Config失败: %w", err)
		return
	}
	if len(cfg.Palette) == 0 {
		errChan <- fmt.Errorf("解析Config失败: palette 不能为空")
		return
	}
	resultChan <- cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	dcfg := DefaultDataConfig()
	if err := json.Unmarshal(data, dcfg); err != nil {
		errChan <- fmt.Errorf("解析DataConfig失败: %w", err)
		return
	}
	if dcfg.Columns == nil {
		dcfg.Columns = map[string]string{}
	}
	resultChan <- dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg    *Config
		dcfg   *DataConfig
		errors []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, nil, combineErrors(errors)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	msg := "配置加载遇到多个错误:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// Pixels 将英寸尺寸换算为像素
func (c *Config) Pixels(s Size) (int, int) {
	dpi := c.DPI
	if dpi <= 0 {
		dpi = 100
	}
	return int(s.Width * dpi), int(s.Height * dpi)
}

// Column 返回逻辑列名对应的实际列名，未配置时原样返回
func (dc *DataConfig) Column(name string) string {
	mu.RLock()
	defer mu.RUnlock()
	if actual, ok := dc.Columns[name]; ok && actual != "" {
		return actual
	}
	return name
}

func (dc *DataConfig) SetColumn(name, actual string) {
	mu.Lock()
	defer mu.Unlock()
	if dc.Columns == nil {
		dc.Columns = map[string]string{}
	}
	dc.Columns[name] = actual
}
