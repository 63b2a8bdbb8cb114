package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rumor-ml/commons.systems/smsledger/internal/banks"
	"github.com/rumor-ml/commons.systems/smsledger/internal/batch"
	"github.com/rumor-ml/commons.systems/smsledger/internal/dedup"
	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
	"github.com/rumor-ml/commons.systems/smsledger/internal/ledger"
	"github.com/rumor-ml/commons.systems/smsledger/internal/match"
	"github.com/rumor-ml/commons.systems/smsledger/internal/output"
	"github.com/rumor-ml/commons.systems/smsledger/internal/parse"
	"github.com/rumor-ml/commons.systems/smsledger/internal/rules"
	"github.com/rumor-ml/commons.systems/smsledger/internal/store"
	"github.com/rumor-ml/commons.systems/smsledger/internal/ui"
	"github.com/rumor-ml/commons.systems/smsledger/internal/validate"
)

const (
	version = "0.1.0"
)

var (
	// Global flags
	versionFlag = flag.Bool("version", false, "Show version")

	// Import flags
	messageText  = flag.String("message", "", "A single bank notification to parse")
	inputFile    = flag.String("input", "", "File with one or more notifications (- = stdin)")
	accountsFile = flag.String("accounts", "", "YAML file listing known accounts")
	dbFile       = flag.String("db", "", "SQLite ledger database")
	stateFile    = flag.String("state", "", "Deduplication state file")
	rulesFile    = flag.String("rules", "", "Category rules file (default: embedded rules)")
	dryRun       = flag.Bool("dry-run", false, "Parse and match without committing")
	verbose      = flag.Bool("verbose", false, "Show detailed parsing logs")

	// Ledger flags
	ledgerAccount = flag.String("ledger", "", "Print running balances for this account ID")
	reconcileWith = flag.String("reconcile", "", "Reconcile the -ledger account against this actual balance")
	applyAdjust   = flag.Bool("apply", false, "Commit the reconciliation adjustment if one is needed")

	// Export flags
	outputFile = flag.String("output", "", "Export ledger JSON to this file (default: stdout)")
	exportMode = flag.Bool("export", false, "Export the ledger as JSON")
	mergeMode  = flag.Bool("merge", false, "Merge export into an existing output file")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `smsledger - bank notification parser and ledger

Usage:
  smsledger [flags]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, `
Examples:
  # Parse a single message against known accounts
  smsledger -accounts accounts.yaml -message "BML: Your purchase of ..."

  # Batch-import a clipboard dump into the ledger database
  smsledger -db ledger.db -input messages.txt -state state.json

  # Show running balances and reconcile against the bank's figure
  smsledger -db ledger.db -ledger acc-bml-1621 -reconcile 4125.50

`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("smsledger version %s\n", version)
		os.Exit(0)
	}

	if *messageText == "" && *inputFile == "" && *ledgerAccount == "" && !*exportMode {
		fmt.Fprintf(os.Stderr, "Error: nothing to do (use -message, -input, -ledger or -export)\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	engine, err := loadRules()
	if err != nil {
		return err
	}

	parser := parse.New(banks.New(), engine)

	var db *store.Store
	if *dbFile != "" {
		db, err = store.Open(*dbFile)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	accounts, err := loadAccounts(db)
	if err != nil {
		return err
	}

	if *messageText != "" || *inputFile != "" {
		if err := runImport(parser, db, accounts); err != nil {
			return err
		}
	}

	if *ledgerAccount != "" {
		if err := runLedger(db, accounts); err != nil {
			return err
		}
	}

	if *exportMode {
		if err := runExport(db); err != nil {
			return err
		}
	}

	return nil
}

func loadRules() (*rules.Engine, error) {
	if *rulesFile != "" {
		engine, err := rules.LoadFromFile(*rulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules file: %w", err)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "Loaded %d custom rules from %s\n", len(engine.GetRules()), *rulesFile)
		}
		return engine, nil
	}
	engine, err := rules.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded rules: %w", err)
	}
	return engine, nil
}

// accountsConfig is the YAML shape of the -accounts file.
type accountsConfig struct {
	Accounts []struct {
		ID              string `yaml:"id"`
		BankName        string `yaml:"bankName"`
		AccountNumber   string `yaml:"accountNumber"`
		Nickname        string `yaml:"nickname"`
		StartingBalance string `yaml:"startingBalance"`
		IsPrimary       bool   `yaml:"isPrimary"`
	} `yaml:"accounts"`
}

// loadAccounts resolves the known-account list: the database wins when
// present, the YAML file otherwise. YAML accounts are seeded into a fresh
// database so later runs can rely on the database alone.
func loadAccounts(db *store.Store) ([]domain.Account, error) {
	if db != nil {
		accounts, err := db.Accounts()
		if err != nil {
			return nil, err
		}
		if len(accounts) > 0 || *accountsFile == "" {
			return accounts, nil
		}
	}

	if *accountsFile == "" {
		return nil, nil
	}

	data, err := os.ReadFile(*accountsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	var cfg accountsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file %q: %w", *accountsFile, err)
	}

	accounts := make([]domain.Account, 0, len(cfg.Accounts))
	for i, raw := range cfg.Accounts {
		balance := decimal.Zero
		if raw.StartingBalance != "" {
			balance, err = decimal.NewFromString(raw.StartingBalance)
			if err != nil {
				return nil, fmt.Errorf("account %d (%s): invalid starting balance %q: %w", i, raw.ID, raw.StartingBalance, err)
			}
		}
		acc, err := domain.NewAccount(raw.ID, raw.BankName, raw.AccountNumber, raw.Nickname, balance, raw.IsPrimary)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		accounts = append(accounts, *acc)
	}

	if db != nil && !*dryRun {
		for _, acc := range accounts {
			if err := db.UpsertAccount(acc); err != nil {
				return nil, err
			}
		}
	}

	return accounts, nil
}

func runImport(parser *parse.Parser, db *store.Store, accounts []domain.Account) error {
	text, err := readInput()
	if err != nil {
		return err
	}

	var state *dedup.State
	if *stateFile != "" {
		state, err = loadState(*stateFile)
		if err != nil {
			return err
		}
	}

	if !*verbose {
		ui.Header("Importing Bank Notifications")
	}

	importer := batch.NewImporter(parser)
	result := importer.Import(text)

	committed := 0
	skipped := 0
	for i, item := range result.Items {
		if !item.OK() {
			ui.Error(fmt.Sprintf("message %d: %v", i+1, item.Err))
			if *verbose {
				fmt.Fprintf(os.Stderr, "  raw: %s\n", item.Raw)
			}
			continue
		}

		parsed := item.Parsed
		var fingerprint string
		if state != nil {
			fingerprint = dedup.Fingerprint(parsed)
			if state.IsDuplicate(fingerprint) {
				skipped++
				ui.Info(fmt.Sprintf("message %d: duplicate of a previously imported notification, skipped", i+1))
				continue
			}
		}

		accountID, matched := match.Match(parsed, accounts)
		if *verbose {
			fmt.Fprintf(os.Stderr, "  %s %s %s %s -> account %q\n",
				parsed.BankName, parsed.Type, parsed.Amount.StringFixed(2), parsed.Merchant, accountID)
		}

		if !matched {
			ui.Warning(fmt.Sprintf("message %d: no known accounts supplied; parsed but not committed", i+1))
			printParsed(parsed)
			continue
		}

		if db == nil || *dryRun {
			printParsed(parsed)
			continue
		}

		txn, err := domain.NewTransaction(uuid.New().String(), accountID, parsed)
		if err != nil {
			return fmt.Errorf("message %d: %w", i+1, err)
		}
		if err := db.InsertTransaction(*txn); err != nil {
			return err
		}
		committed++

		// A fingerprint is recorded only once its transaction is committed.
		// Dry runs, missing databases and unmatched messages leave the state
		// untouched so a later real import still picks them up.
		if state != nil {
			if err := state.Record(fingerprint, parsed.ReferenceNumber, time.Now()); err != nil {
				return fmt.Errorf("failed to record fingerprint: %w", err)
			}
		}
	}

	// Save state before any export so a retry never reimports.
	if state != nil && committed > 0 {
		if err := dedup.SaveState(state, *stateFile); err != nil {
			return fmt.Errorf("failed to save state file: %w", err)
		}
	}

	summary := fmt.Sprintf("Parsed %d of %d messages (%d failed)", result.OK, len(result.Items), result.Failed)
	if skipped > 0 {
		summary += fmt.Sprintf(", %d duplicates skipped", skipped)
	}
	if committed > 0 {
		summary += fmt.Sprintf(", %d committed", committed)
	}
	ui.Success(summary)

	return nil
}

func runLedger(db *store.Store, accounts []domain.Account) error {
	if db == nil {
		return fmt.Errorf("-ledger requires -db")
	}

	var account *domain.Account
	for i := range accounts {
		if accounts[i].ID == *ledgerAccount {
			account = &accounts[i]
			break
		}
	}
	if account == nil {
		return fmt.Errorf("unknown account %q", *ledgerAccount)
	}

	txns, err := db.TransactionsForAccount(account.ID)
	if err != nil {
		return err
	}

	total := ledger.TotalBalance(account.StartingBalance, txns)
	snapshots := ledger.RunningBalances(txns, account.StartingBalance)

	name := account.Nickname
	if name == "" {
		name = account.ID
	}
	ui.Header(fmt.Sprintf("%s | %s %s", name, domain.BaseCurrency, total.StringFixed(2)))
	for _, snap := range snapshots {
		sign := "-"
		if snap.Transaction.Type == domain.TxnCredit {
			sign = "+"
		}
		fmt.Printf("%s  %s%9s  %-28s %12s\n",
			snap.Transaction.Date.Format("2006-01-02 15:04"),
			sign,
			snap.Transaction.Amount.StringFixed(2),
			snap.Transaction.Description,
			snap.BalanceAfter.StringFixed(2))
	}

	if *reconcileWith != "" {
		return runReconcile(db, account, total)
	}
	return nil
}

func runReconcile(db *store.Store, account *domain.Account, calculated decimal.Decimal) error {
	actual, ok := parseActualBalance(*reconcileWith)
	if !ok {
		// Non-finite or malformed input is a zero-difference no-op, not an error.
		ui.Warning(fmt.Sprintf("actual balance %q is not a finite number; nothing to reconcile", *reconcileWith))
		return nil
	}

	result := ledger.Reconcile(calculated, actual)
	if !result.NeedsAdjustment {
		ui.Success(fmt.Sprintf("Balances match: calculated %s, bank reported %s",
			calculated.StringFixed(2), actual.StringFixed(2)))
		return nil
	}

	ui.Warning(fmt.Sprintf("Ledger is off by %s %s: a %s adjustment of %s would align it",
		domain.BaseCurrency, result.Difference.StringFixed(2),
		result.AdjustmentType, result.AdjustmentAmount.StringFixed(2)))

	if !*applyAdjust || *dryRun {
		ui.Info("Re-run with -apply to commit the adjustment")
		return nil
	}

	adj, err := domain.NewAdjustment(uuid.New().String(), account.ID,
		result.AdjustmentType, result.AdjustmentAmount, time.Now())
	if err != nil {
		return err
	}
	if err := db.InsertTransaction(*adj); err != nil {
		return err
	}
	ui.Success(fmt.Sprintf("Committed %s adjustment of %s", adj.Type, adj.Amount.StringFixed(2)))
	return nil
}

func runExport(db *store.Store) error {
	if db == nil {
		return fmt.Errorf("-export requires -db")
	}

	ldgr, err := db.LoadLedger()
	if err != nil {
		return err
	}

	validation := validate.ValidateLedger(ldgr)
	if len(validation.Errors) > 0 {
		ui.Error(fmt.Sprintf("Validation failed with %d errors", len(validation.Errors)))
		for i, e := range validation.Errors {
			if i >= 5 && !*verbose {
				ui.Error(fmt.Sprintf("... and %d more errors (run with -verbose to see all)", len(validation.Errors)-5))
				break
			}
			ui.Error(fmt.Sprintf("%s %s [%s]: %s", e.Entity, e.ID, e.Field, e.Message))
		}
		return fmt.Errorf("validation failed with %d errors", len(validation.Errors))
	}
	for _, w := range validation.Warnings {
		ui.Warning(fmt.Sprintf("%s %s [%s]: %s", w.Entity, w.ID, w.Field, w.Message))
	}

	opts := output.WriteOptions{
		MergeMode: *mergeMode,
		FilePath:  *outputFile,
	}
	if err := output.WriteLedgerToFile(ldgr, opts); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if *outputFile != "" {
		ui.Success(fmt.Sprintf("Ledger exported to %s", *outputFile))
	}
	return nil
}

func readInput() (string, error) {
	if *messageText != "" {
		return *messageText, nil
	}
	if *inputFile == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(*inputFile)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}

func loadState(path string) (*dedup.State, error) {
	state, err := dedup.LoadState(path)
	if err != nil {
		if os.IsNotExist(err) {
			if *verbose {
				fmt.Fprintf(os.Stderr, "State file not found, creating new state\n")
			}
			return dedup.NewState(), nil
		}
		// An unreadable state file must stop the run: importing without the
		// history would silently duplicate every previously seen message.
		return nil, fmt.Errorf("failed to load state file %q: %w", path, err)
	}
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("state file %q failed validation: %w", path, err)
	}
	return state, nil
}

func printParsed(parsed *domain.ParsedTransaction) {
	sign := "-"
	if parsed.Type == domain.TxnCredit {
		sign = "+"
	}
	fmt.Printf("%s  %s%s %s  %s  [%s]\n",
		parsed.Date.Format("2006-01-02 15:04"),
		sign, parsed.Currency, parsed.Amount.StringFixed(2),
		parsed.Description, parsed.Category)
}

// parseActualBalance parses a user-supplied balance figure. Non-finite or
// malformed input reports !ok so the caller can treat reconciliation as a
// no-op instead of failing.
func parseActualBalance(raw string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, false
	}
	return d.Round(2), true
}
