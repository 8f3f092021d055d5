package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/document"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/fonts"
)

// config 汇总命令行参数。
type config struct {
	title    string
	body     string
	bodyFile string
	input    string
	data     string
	strategy string
	fallback bool
	verify   bool
	debug    string
	font     string
	boldFont string
	output   string
	settings map[string]string
}

func main() {
	cfg := config{settings: map[string]string{}}
	flag.StringVar(&cfg.title, "title", "", "文档标题")
	flag.StringVar(&cfg.body, "body", "", "正文内容，\\n 换行（\\\\ 表示反斜杠本身）")
	flag.StringVar(&cfg.bodyFile, "body-file", "", "从文件读取正文（- 表示标准输入）")
	flag.StringVar(&cfg.input, "in", "", "请求文件路径（document \"标题\" { ... }）")
	flag.StringVar(&cfg.data, "data", "", "绑定到 ${path} 占位符的 JSON 数据，@file 表示从文件读取")
	flag.StringVar(&cfg.strategy, "strategy", "", "渲染策略 raster|text，覆盖请求文件中的设置")
	flag.BoolVar(&cfg.fallback, "fallback", true, "位图渲染不可用时改用文本策略")
	flag.BoolVar(&cfg.verify, "verify", true, "输出前重新解析并校验 PDF 结构")
	flag.StringVar(&cfg.debug, "debug", "", "布局调试 JSON 输出路径")
	flag.StringVar(&cfg.font, "font", "", "位图策略的正文字体（embed:DejaVuSans 或 ttf 路径）")
	flag.StringVar(&cfg.boldFont, "bold-font", "", "位图策略的标题字体")
	flag.StringVar(&cfg.output, "out", "", "PDF 输出路径，- 表示标准输出；默认由标题生成文件名")
	flag.Func("set", "设置项 key=value，可重复，例如 -set margin=20mm", func(s string) error {
		key, value, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return fmt.Errorf("需要 key=value 形式: %q", s)
		}
		cfg.settings[strings.TrimSpace(key)] = value
		return nil
	})
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	written, err := run(cfg, os.Stdout, term.IsTerminal(int(os.Stdout.Fd())), logger)
	if err != nil {
		log.Fatalf("生成 PDF 失败: %v", err)
	}
	if written != "-" {
		fmt.Printf("已生成 PDF：%s\n", written)
	}
}

// run 串联请求解析、数据绑定、渲染与写出，返回实际写入的路径。
func run(cfg config, stdout io.Writer, stdoutIsTTY bool, logger *slog.Logger) (string, error) {
	title, body := cfg.title, bodyEscapes.Replace(cfg.body)
	opts := document.DefaultOptions()
	opts.Logger = logger
	opts.Fallback = cfg.fallback
	opts.Verify = cfg.verify
	opts.DebugPath = cfg.debug

	if cfg.input != "" {
		req, err := readRequest(cfg.input)
		if err != nil {
			return "", err
		}
		settings, err := req.Settings()
		if err != nil {
			return "", fmt.Errorf("请求文件 %s: %w", cfg.input, err)
		}
		if err := opts.Apply(settings); err != nil {
			return "", fmt.Errorf("请求文件 %s: %w", cfg.input, err)
		}
		if title == "" {
			title = string(req.Title)
		}
		if body == "" {
			body = req.Body()
		}
	}
	if cfg.bodyFile != "" {
		data, err := readFile(cfg.bodyFile)
		if err != nil {
			return "", fmt.Errorf("读取正文失败: %w", err)
		}
		body = string(data)
	}
	if err := opts.Apply(cfg.settings); err != nil {
		return "", err
	}
	if cfg.strategy != "" {
		s, err := document.ParseStrategy(cfg.strategy)
		if err != nil {
			return "", err
		}
		opts.Strategy = s
	}
	if err := loadFonts(&opts, cfg); err != nil {
		return "", err
	}

	if cfg.data != "" {
		data, err := loadData(cfg.data)
		if err != nil {
			return "", err
		}
		for _, path := range binding.Missing(title+"\n"+body, data) {
			logger.Warn("占位符没有对应的数据", slog.String("path", path))
		}
		title = binding.Interpolate(title, data)
		body = binding.Interpolate(body, data)
	}

	if cfg.debug != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.debug), 0o755); err != nil {
			return "", fmt.Errorf("创建调试目录失败: %w", err)
		}
	}

	file, err := document.Render(title, body, opts)
	if err != nil {
		return "", err
	}
	logger.Debug("渲染结果",
		slog.String("strategy", string(file.Strategy)),
		slog.Int("pages", file.Pages),
		slog.Int("bytes", len(file.Data)))

	output := cfg.output
	if output == "" {
		output = file.Filename
	}
	if output == "-" {
		if stdoutIsTTY {
			return "", errors.New("拒绝向终端写入二进制 PDF，请使用 -out 指定文件或重定向输出")
		}
		if _, err := stdout.Write(file.Data); err != nil {
			return "", fmt.Errorf("写出 PDF 失败: %w", err)
		}
		return output, nil
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(output, file.Data, 0o644); err != nil {
		return "", fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return output, nil
}

// bodyEscapes 展开 -body 中的转义，便于在命令行里写多行正文。
var bodyEscapes = strings.NewReplacer(`\\`, `\`, `\n`, "\n")

func readRequest(path string) (*dsl.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开请求文件 %s: %w", path, err)
	}
	defer f.Close()
	req, err := dsl.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("解析请求文件失败: %w", err)
	}
	return req, nil
}

func readFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func loadData(arg string) (any, error) {
	if name, ok := strings.CutPrefix(arg, "@"); ok {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("读取 data 文件失败: %w", err)
		}
		defer f.Close()
		return binding.Decode(f)
	}
	return binding.DecodeBytes([]byte(arg))
}

func loadFonts(opts *document.Options, cfg config) error {
	if cfg.font != "" {
		data, err := fonts.Load(cfg.font)
		if err != nil {
			return err
		}
		opts.FontData = data
	}
	if cfg.boldFont != "" {
		data, err := fonts.Load(cfg.boldFont)
		if err != nil {
			return err
		}
		opts.BoldFontData = data
	}
	return nil
}
