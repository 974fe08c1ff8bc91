package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/banksync-dev/banksync/internal/browser"
	"github.com/banksync-dev/banksync/internal/config"
	"github.com/banksync-dev/banksync/internal/extract"
	"github.com/banksync-dev/banksync/internal/logging"
	"github.com/banksync-dev/banksync/internal/model"
	"github.com/banksync-dev/banksync/internal/prompt"
	"github.com/banksync-dev/banksync/internal/site"
	"github.com/banksync-dev/banksync/internal/site/everydollar"
	"github.com/banksync-dev/banksync/internal/sync"
	"github.com/banksync-dev/banksync/internal/synclog"
)

const defaultConfigFile = "banksync.yaml"

func newSyncCommand(reg *site.Registry) *cobra.Command {
	var (
		configPath  string
		bank        string
		date        string
		headless    bool
		interactive bool
		auditLog    string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull new bank transactions and enter them into the budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			// Flags override the file only when set.
			if cmd.Flags().Changed("bank") {
				cfg.Bank = bank
			}
			if cmd.Flags().Changed("date") {
				cfg.Date = date
			}
			if cmd.Flags().Changed("headless") {
				cfg.Headless = headless
			}
			if cmd.Flags().Changed("interactive") {
				cfg.Interactive = interactive
			}
			if cmd.Flags().Changed("audit-log") {
				cfg.AuditLog = auditLog
			}

			if err := config.LoadEnvCredentials(cfg); err != nil {
				return err
			}
			if cfg.Bank == "" {
				return errors.New("no bank selected; use --bank or set it in banksync.yaml")
			}

			return runSync(reg, cfg, logging.New())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to banksync.yaml")
	cmd.Flags().StringVarP(&bank, "bank", "b", "", "bank to pull from (see 'banksync banks')")
	cmd.Flags().StringVarP(&date, "date", "d", "", "pull transactions back to this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&headless, "headless", true, "run the browser without a window")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", true, "confirm each transaction before adding it")
	cmd.Flags().StringVar(&auditLog, "audit-log", "", "CSV file to append verified writes to")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return config.Load(defaultConfigFile)
	}
	return config.Default(), nil
}

func runSync(reg *site.Registry, cfg *config.Config, log zerolog.Logger) error {
	factory, err := reg.Get(cfg.Bank)
	if err != nil {
		return err
	}

	boundary, ok, err := cfg.SyncDate()
	if err != nil {
		return err
	}
	if !ok {
		boundary = sync.DefaultBoundary(time.Now())
	}
	log.Info().Str("bank", cfg.Bank).Str("boundary", extract.FormatDate(boundary)).Msg("starting sync")

	term := prompt.NewTerminal()

	b, err := browser.Launch(cfg.Headless)
	if err != nil {
		return err
	}
	defer b.Close()

	// Destination first: its known set bounds the source pull.
	dstTab, err := b.NewTab()
	if err != nil {
		return err
	}
	dst := everydollar.New(dstTab)

	if err := dst.Open(); err != nil {
		return fmt.Errorf("opening %s: %w", dst.Name(), err)
	}
	dstCreds, err := ensureCredentials(term, "EveryDollar", cfg.Credentials.Destination)
	if err != nil {
		return err
	}
	log.Info().Msg("logging into EveryDollar")
	if err := dst.Login(dstCreds); err != nil {
		return fmt.Errorf("logging into %s: %w", dst.Name(), err)
	}
	if err := dst.OpenTransactions(); err != nil {
		return fmt.Errorf("opening transactions: %w", err)
	}

	known, knownCount, err := sync.KnownTransactions(dst)
	if err != nil {
		return err
	}
	log.Info().Int("count", knownCount).Msg("budget transactions found")

	srcTab, err := b.NewTab()
	if err != nil {
		return err
	}
	src := factory(srcTab, term)

	if err := src.Open(); err != nil {
		return fmt.Errorf("opening %s: %w", src.Name(), err)
	}
	srcCreds, err := ensureCredentials(term, cfg.Bank, cfg.Credentials.Source)
	if err != nil {
		return err
	}
	log.Info().Str("bank", cfg.Bank).Msg("logging into bank")
	if err := src.Login(srcCreds); err != nil {
		return fmt.Errorf("logging into %s: %w", src.Name(), err)
	}
	if err := src.OpenLedger(); err != nil {
		return err
	}

	delta, err := sync.Collect(src, known, boundary)
	if err != nil {
		return err
	}
	log.Info().Int("count", len(delta)).Msg("bank transactions pulled")

	if len(delta) == 0 {
		log.Info().Msg("nothing to sync")
		return nil
	}

	renderDelta(os.Stdout, delta)

	opts := sync.WriteBackOptions{
		Interactive: cfg.Interactive,
		Source:      src.Name(),
		Log:         log,
	}
	if cfg.AuditLog != "" {
		opts.Audit = synclog.New(cfg.AuditLog)
	}

	added, err := sync.NewWriteBack(dst, term, opts).Apply(delta)
	if err != nil {
		return err
	}
	log.Info().Int("added", added).Msg("sync complete")
	return nil
}

func ensureCredentials(term *prompt.Terminal, label string, sc config.SiteCredentials) (site.Credentials, error) {
	creds := site.Credentials{Username: sc.Username, Password: sc.Password}

	var err error
	if creds.Username == "" {
		creds.Username, err = term.Ask(label + " Username: ")
		if err != nil {
			return site.Credentials{}, err
		}
	}
	if creds.Password == "" {
		creds.Password, err = term.AskSecret(label + " Password: ")
		if err != nil {
			return site.Credentials{}, err
		}
	}
	return creds, nil
}

func renderDelta(w io.Writer, delta []model.Transaction) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Description", "Amount", "Type"})
	for _, tx := range delta {
		table.Append([]string{
			extract.FormatDate(tx.Date),
			tx.Description,
			tx.Amount.StringFixed(2),
			string(tx.Type),
		})
	}
	table.Render()
}
