package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"perfi.com/internal/application/usecase"
	"perfi.com/internal/domain/entity"
	httpclient "perfi.com/internal/infrastructure/http"
	"perfi.com/internal/infrastructure/logger"
	"perfi.com/internal/infrastructure/preference"
	"perfi.com/internal/infrastructure/repository"
)

// session wires the stores the read commands share
type session struct {
	client    *httpclient.Client
	entities  *repository.EntityStore
	addresses *repository.AddressStore
	txs       *repository.TxLogicalStore
	balances  *repository.Keyed[entity.AssetBalance]
	nav       *repository.NavigationContext
	logger    logger.Logger
}

// apiURL picks the backend root: --api-url, then config, then the port
// recorded by the last launch.
func apiURL() (string, error) {
	if flagAPIURL != "" {
		return flagAPIURL, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.API.URL != "" {
		return cfg.API.URL, nil
	}
	prefs, err := preference.Open(cfg.Preferences.Path)
	if err != nil {
		return "", err
	}
	return preference.BackendURL(prefs), nil
}

func newSession() (*session, error) {
	baseURL, err := apiURL()
	if err != nil {
		return nil, err
	}
	appLogger := logger.NewLogger()
	client := httpclient.NewClientWith(baseURL, nil, appLogger.WithComponent("api"))

	return &session{
		client:    client,
		entities:  repository.NewEntityStore(client, appLogger),
		addresses: repository.NewAddressStore(client, appLogger),
		txs:       repository.NewTxLogicalStore(client, appLogger),
		balances:  repository.NewAssetBalanceStores(client, appLogger),
		nav:       repository.NewNavigationContext(),
		logger:    appLogger,
	}, nil
}

var entitiesCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "entities [id]",
	Short: "List entities, or show one entity and its addresses.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if len(args) == 1 {
			drill := usecase.NewDrillDownUseCase(s.entities, s.addresses, s.nav)
			e, owned, err := drill.SelectEntity(ctx, entity.NewID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", e.Name, e.Note)
			return printAddresses(cmd.OutOrStdout(), owned)
		}
		if err := s.entities.Fetch(ctx); err != nil {
			return err
		}
		return printEntities(cmd.OutOrStdout(), s.entities.All())
	},
}

var addressesCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "addresses",
	Short: "List and manage addresses.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		if err := s.addresses.Fetch(cmd.Context()); err != nil {
			return err
		}
		return printAddresses(cmd.OutOrStdout(), s.addresses.All())
	},
}

var addressesListCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "list",
	Short: "List addresses.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return addressesCmd.RunE(cmd, args)
	},
}

var newAddress entity.Address //nolint:gochecknoglobals

var addressesAddCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "add",
	Short: "Create an address on the backend.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		created, err := usecase.NewAddressPersister(s.client, s.addresses).Create(cmd.Context(), newAddress)
		if err != nil {
			return err
		}
		return printAddresses(cmd.OutOrStdout(), []entity.Address{created})
	},
}

var addressesRmCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "rm <id>",
	Short: "Delete an address on the backend.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		id := entity.NewID(args[0])
		if err := usecase.NewAddressPersister(s.client, s.addresses).Remove(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted address %s\n", id)
		return nil
	},
}

var balancesCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "balances <addressID>",
	Short: "Show the manual balances of an address.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		res, err := usecase.NewGetBalancesUseCase(s.balances).Execute(cmd.Context(), entity.NewID(args[0]))
		if err != nil {
			return err
		}
		return printBalances(cmd.OutOrStdout(), res)
	},
}

var txsCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "txs",
	Short: "List logical transactions.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		if err := s.txs.Fetch(cmd.Context()); err != nil {
			return err
		}
		return printTxLogicals(cmd.OutOrStdout(), s.txs.All())
	},
}

func printEntities(out io.Writer, items []entity.Entity) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tNOTE")
	for _, e := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Name, e.Note)
	}
	return w.Flush()
}

func printAddresses(out io.Writer, items []entity.Address) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tCHAIN\tADDRESS\tTYPE\tSOURCE\tORD\tENTITY")
	for _, a := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			a.ID, a.Label, a.Chain, a.Address, a.Type, a.Source, a.Ord, a.EntityID)
	}
	return w.Flush()
}

func printBalances(out io.Writer, res *usecase.Balances) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tEXPOSURE\tAMOUNT\tUSD\tPROTOCOL")
	for _, b := range res.Items {
		usd := "-"
		if b.USDValue != nil {
			usd = b.USDValue.StringFixed(2)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", b.Symbol, b.ExposureSymbol, b.Amount.String(), usd, b.Protocol)
	}
	fmt.Fprintf(w, "TOTAL\t\t\t%s\t\n", res.TotalUSD)
	return w.Flush()
}

func printTxLogicals(out io.Writer, items []entity.TxLogical) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTYPE\tINS\tOUTS\tFLAGS\tDESCRIPTION")
	for _, tx := range items {
		flags := make([]string, 0, len(tx.Flags))
		for _, f := range tx.Flags {
			flags = append(flags, f.Name)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			entity.DisplayTimestamp(tx.Timestamp),
			tx.TxLogicalType,
			describeLegs(tx.Ins, "from"),
			describeLegs(tx.Outs, "to"),
			strings.Join(flags, ","),
			tx.Description)
	}
	return w.Flush()
}

func describeLegs(legs []entity.TxLedger, side string) string {
	parts := make([]string, 0, len(legs))
	for _, l := range legs {
		counterparty, err := l.DisplayAddress(side)
		if err != nil {
			counterparty = "?"
		}
		parts = append(parts, fmt.Sprintf("%s %s %s %s", l.Amount.String(), symbolOf(l), side, counterparty))
	}
	return strings.Join(parts, "; ")
}

func symbolOf(l entity.TxLedger) string {
	if l.Symbol != "" {
		return l.Symbol
	}
	return l.AssetTxID
}

func init() { //nolint:gochecknoinits
	addressesAddCmd.Flags().StringVar(&newAddress.Label, "label", "", "address label")
	addressesAddCmd.Flags().StringVar((*string)(&newAddress.Chain), "chain", string(entity.ChainEthereum), "chain")
	addressesAddCmd.Flags().StringVar(&newAddress.Address, "address", "", "address string")
	addressesAddCmd.Flags().StringVar(&newAddress.Type, "type", entity.DefaultAddressType, "address type")
	addressesAddCmd.Flags().StringVar(&newAddress.Source, "source", entity.DefaultAddressSource, "address source")
	addressesAddCmd.Flags().IntVar(&newAddress.Ord, "ord", entity.DefaultAddressOrd, "display order")
	addressesAddCmd.Flags().StringVar((*string)(&newAddress.EntityID), "entity", "", "owning entity id")

	addressesCmd.AddCommand(addressesListCmd, addressesAddCmd, addressesRmCmd)
	rootCmd.AddCommand(entitiesCmd, addressesCmd, balancesCmd, txsCmd)
}
