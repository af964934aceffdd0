package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/client"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/config"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/logger"
)

// rootOptions 全局参数
type rootOptions struct {
	ConfPath string
	Server   string
	Lang     string
	JSON     bool

	cfg    *config.Config
	client *client.Client
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "fact_radar",
		Short:         "Fact Radar - claim verification client",
		Long:          "Submit claims, links and images to the Fact Radar analyzer service and read the verdicts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfPath, "conf", "app/fact_radar/configs/config.yaml", "config path, eg: --conf config.yaml (missing file means defaults)")
	cmd.PersistentFlags().StringVar(&opts.Server, "server", "", "analyzer base url (overrides client.base_url)")
	cmd.PersistentFlags().StringVar(&opts.Lang, "lang", "", "language tag, eg: en, es, pt-BR")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "print raw JSON instead of text")

	cmd.AddCommand(newAnalyzeCommand(opts))
	cmd.AddCommand(newBatchCommand(opts))
	cmd.AddCommand(newURLCommand(opts))
	cmd.AddCommand(newImageCommand(opts))
	cmd.AddCommand(newStreamCommand(opts))
	cmd.AddCommand(newResultCommand(opts))
	cmd.AddCommand(newTranslateCommand(opts))
	cmd.AddCommand(newArchiveCommand(opts))

	return cmd
}

// setup 加载配置、初始化日志并创建客户端
func (o *rootOptions) setup() error {
	cfg, err := config.LoadConfig(o.ConfPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return err
	}
	if o.Server != "" {
		cfg.Client.BaseURL = o.Server
	}
	if o.Lang != "" {
		cfg.Client.Language = o.Lang
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return err
	}

	o.cfg = cfg
	o.client = client.New(cfg.Client.BaseURL,
		client.WithTimeout(time.Duration(cfg.Client.Timeout)*time.Second),
		client.WithLanguage(cfg.Client.Language),
	)
	logger.Log.Debugf("using analyzer at %s", cfg.Client.BaseURL)
	return nil
}
