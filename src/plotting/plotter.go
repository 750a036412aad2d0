package plotting

import (
	"WeRateDogsAnalysis/src/config"
	"WeRateDogsAnalysis/src/storage"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Plotter 持有绘图配置、列名映射、日志与输出位置
type Plotter struct {
	cfg    *config.Config
	dcfg   *config.DataConfig
	logger *storage.Logger
	sink   Sink
}

// NewPlotter 创建绘图器，cfg/dcfg 为 nil 时使用默认配置
// 输出位置由 cfg.OutputDir 与 cfg.Workbook 决定，都为空时只记录日志
func NewPlotter(cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) *Plotter {
	if cfg == nil {
		cfg = config.Default()
	}
	if dcfg == nil {
		dcfg = config.DefaultDataConfig()
	}
	return &Plotter{
		cfg:    cfg,
		dcfg:   dcfg,
		logger: logger,
		sink:   SinkFromConfig(cfg),
	}
}

// OpenPlotter 按 cfg.LogName 打开日志文件并创建绘图器，用完后调用 Close
func OpenPlotter(cfg *config.Config, dcfg *config.DataConfig) (*Plotter, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	name := cfg.LogName
	if name == "" {
		name = config.Default().LogName
	}
	logger, err := storage.NewLogger(name)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	return NewPlotter(cfg, dcfg, logger), nil
}

// Close 关闭日志文件
func (p *Plotter) Close() error {
	if p.logger == nil {
		return nil
	}
	return p.logger.Close()
}

// WithSink 替换输出位置
func (p *Plotter) WithSink(s Sink) *Plotter {
	p.sink = s
	return p
}

// show 相当于 plt.show()：记录日志并交给 sink 输出
func (p *Plotter) show(fig *Figure) error {
	p.logger.Info(fmt.Sprintf("绘制图表: %s (%d 个子图)", fig.Title, len(fig.Panels)))

	if p.sink == nil {
		return nil
	}
	if err := p.sink.Show(fig); err != nil {
		p.logger.Error(fmt.Sprintf("输出图表 %s 失败: %v", fig.Title, err))
		return fmt.Errorf("show %q: %w", fig.Title, err)
	}

	if p.cfg.LogMaxSize != "" {
		if err := p.logger.CheckRotate(p.cfg.LogMaxSize); err != nil {
			p.logger.Warning("日志轮转失败: " + err.Error())
		}
	}
	return nil
}

// titleCase 每个单词首字母大写，"_" 两侧视为不同单词，如 dog_stage -> Dog_Stage
func titleCase(s string) string {
	caser := cases.Title(language.English)
	words := strings.Split(s, "_")
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, "_")
}
