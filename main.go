package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/siqueira-ec/equatorial-utils-cli/config"
	"github.com/siqueira-ec/equatorial-utils-cli/equatorial"
	"github.com/siqueira-ec/equatorial-utils-cli/faturas"
	"github.com/siqueira-ec/equatorial-utils-cli/logger"
	"github.com/siqueira-ec/equatorial-utils-cli/prompt"
	"github.com/siqueira-ec/equatorial-utils-cli/state"
	"github.com/siqueira-ec/equatorial-utils-cli/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	outDir     string
	debug      bool
	cpf        string
	birthDate  string

	// Run command flags
	dryRun    bool
	allDebts  bool
	contracts []string

	// State command flags
	stateContract string
)

var rootCmd = &cobra.Command{
	Use:   "equatorial",
	Short: "CLI para emitir as faturas em aberto da Equatorial Energia",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download the open invoices of the selected contracts",
	RunE:  runDownload,
}

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "List the contracts of the account holder",
	RunE:  listContracts,
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Display the invoices saved so far",
	RunE:  showState,
}

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Test API connection and credentials",
	RunE:  testConnection,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "equatorial.yaml", "Path to the YAML config file (optional)")
	rootCmd.PersistentFlags().StringVar(&outDir, "out-dir", "", "Output directory for invoice PDFs (default: working directory)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cpf, "cpf", "", "CPF of the account holder (env EQUATORIAL_CPF)")
	rootCmd.PersistentFlags().StringVar(&birthDate, "birth-date", "", "Birth date of the account holder (env EQUATORIAL_BIRTH_DATE)")

	// Run command flags
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "List invoices without downloading or saving files")
	runCmd.Flags().BoolVar(&allDebts, "all-debts", false, "Include paid invoices (listarEmAberto=false)")
	runCmd.Flags().StringSliceVar(&contracts, "contract", nil, `Contract number to download, repeatable; "all" selects every contract`)

	// State command flags
	stateCmd.Flags().StringVar(&stateContract, "contract", "", "Only show invoices saved for this contract")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(contractsCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(testConnectionCmd)

	rootCmd.SilenceUsage = true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "An error occurred: %v\n", err)
		os.Exit(1)
	}
}

// app bundles everything a command needs, built once per invocation.
type app struct {
	cfg    *config.Config
	log    *logrus.Entry
	client *equatorial.Client
	prompt *prompt.Prompter
	outDir string
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func setup(cmd *cobra.Command) (*app, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}
	if debug {
		cfg.Log.Level = "debug"
	}

	log := logger.Init(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.Debug("Debug mode enabled")
	if envErr != nil {
		log.Debug("Error loading .env file (optional)")
	}

	// --out-dir wins over OUT_DIR and the config file
	dir := cfg.Output.Dir
	if cmd.Flags().Changed("out-dir") {
		dir = outDir
	}

	endpoints, err := cfg.Endpoints()
	if err != nil {
		return nil, fmt.Errorf("invalid api timeout %q: %w", cfg.API.Timeout, err)
	}

	client := equatorial.NewClient(endpoints)
	client.SetDebug(logrus.IsLevelEnabled(logrus.DebugLevel))
	client.Progress = &logger.Progress{Log: log}

	return &app{
		cfg:    cfg,
		log:    log,
		client: client,
		prompt: prompt.New(os.Stdin, os.Stderr),
		outDir: expandTilde(dir),
	}, nil
}

func (a *app) credentials() (equatorial.Credentials, error) {
	creds := equatorial.Credentials{Identifier: cpf, Secret: birthDate}
	if creds.Identifier == "" {
		creds.Identifier = os.Getenv("EQUATORIAL_CPF")
	}
	if creds.Secret == "" {
		creds.Secret = os.Getenv("EQUATORIAL_BIRTH_DATE")
	}
	return a.prompt.Credentials(creds)
}

// login authenticates and unpacks the holder's contracts.
func (a *app) login(ctx context.Context) (equatorial.Token, []equatorial.Contract, error) {
	creds, err := a.credentials()
	if err != nil {
		return equatorial.Token{}, nil, err
	}

	token, err := a.client.Authenticate(ctx, creds)
	if err != nil {
		return equatorial.Token{}, nil, err
	}

	profile, err := equatorial.DecodeProfile(token)
	if err != nil {
		return equatorial.Token{}, nil, err
	}
	return token, equatorial.ListContracts(profile), nil
}

func (a *app) manifest() *state.Manager {
	return state.NewManager(filepath.Join(a.outDir, "state", "manifest.json"))
}

func runDownload(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	token, list, err := a.login(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.log.Info("Nenhuma conta contrato encontrada.")
		return nil
	}

	choices := contracts
	if len(choices) == 0 {
		if choices, err = a.prompt.Contracts(list); err != nil {
			return err
		}
	}
	selected, err := equatorial.ResolveSelection(list, choices...)
	if err != nil {
		return err
	}

	set, err := a.client.FetchInvoices(ctx, selected, !allDebts)
	if err != nil {
		return err
	}

	if !dryRun {
		if err := os.MkdirAll(a.outDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	saver := faturas.NewSaver(a.client, a.outDir)
	saver.DryRun = dryRun
	saver.Logger = a.log
	if a.cfg.Output.FilePrefix != "" {
		saver.FilePrefix = a.cfg.Output.FilePrefix
	}

	if a.cfg.Minio.Enabled() && !dryRun {
		uploader, err := storage.NewMinioUploader(&a.cfg.Minio)
		if err != nil {
			return err
		}
		if err := uploader.EnsureBucket(ctx); err != nil {
			return err
		}
		saver.Uploader = uploader
	}

	var manifest *state.Manager
	if !dryRun {
		manifest = a.manifest()
		if err := manifest.Load(); err != nil {
			a.log.Warnf("Could not load manifest (starting fresh?): %v", err)
		}
		manifest.StartRun(fmt.Sprint(a.log.Data["run_id"]), time.Now())
		saver.Recorder = manifest
	}

	a.log.Infof("Saving invoices of %d contract(s) to %s...", len(selected), a.outDir)
	saveErr := saver.SaveOpenInvoices(ctx, set, token)

	// the manifest is written even after a failed batch
	if manifest != nil {
		if err := manifest.Save(); err != nil {
			return errors.Join(saveErr, fmt.Errorf("saving manifest: %w", err))
		}
	}
	if saveErr != nil {
		return saveErr
	}

	a.log.Info("Fatura salva com sucesso")
	return nil
}

func listContracts(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	_, list, err := a.login(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Found %d contract(s):\n", len(list))
	for _, c := range list {
		fmt.Printf("  %s  %s\n", c.Number, c.Address)
	}
	return nil
}

func showState(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	manifest := a.manifest()
	if _, err := os.Stat(manifest.Path); os.IsNotExist(err) {
		fmt.Printf("No manifest found at %s\n", manifest.Path)
		fmt.Println("Run 'equatorial run' to download invoices.")
		return nil
	}
	if err := manifest.Load(); err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}

	fmt.Printf("Manifest: %s\n\n", manifest.Path)
	fmt.Printf("Last run: %s (%s)\n", manifest.State.LastRun, manifest.State.LastRunID)
	files := manifest.State.Files
	if stateContract != "" {
		files = manifest.FilesForContract(stateContract)
		fmt.Printf("Contract: %s\n", stateContract)
	}
	fmt.Printf("Saved invoices: %d\n", len(files))
	for _, f := range files {
		fmt.Printf("  %-12s %-8s %s\n", f.Contract, f.Period, f.Path)
	}
	return nil
}

func testConnection(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	fmt.Println("Testing API connection...")

	_, list, err := a.login(cmd.Context())
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	fmt.Println("Connection successful!")
	fmt.Printf("Found %d contract(s).\n", len(list))
	return nil
}
