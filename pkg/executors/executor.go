package executors

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/ynabsync/pkg/config"
	"github.com/yurifrl/ynabsync/pkg/csv"
	"github.com/yurifrl/ynabsync/pkg/models"
	"github.com/yurifrl/ynabsync/pkg/plan"
	"github.com/yurifrl/ynabsync/pkg/ynab"
)

// Destination is where the current state of the account comes from.
type Destination interface {
	ResolveAccount(budgetID, name string) (*models.Account, error)
	Transactions(budgetID, accountID string) ([]models.DestinationTransaction, error)
}

type Executor struct {
	logger *log.Logger
	config *config.Config
	dest   Destination
	now    func() time.Time
	debug  io.Writer
}

func New(logger *log.Logger, config *config.Config, dest Destination) *Executor {
	return &Executor{
		logger: logger,
		config: config,
		dest:   dest,
		now:    time.Now,
		debug:  os.Stderr,
	}
}

// Applier returns the replay backend selected by configuration.
func (e *Executor) Applier(client *ynab.YNABClient, p *plan.Plan) plan.Applier {
	if e.config.Backend == config.BackendCSV {
		return csv.NewExporter(e.config.Output, exportPrefix(p.AccountName), e.logger)
	}
	return ynab.NewApplier(client, p.BudgetID, p.AccountID, e.logger)
}

func exportPrefix(accountName string) string {
	name := strings.ToLower(strings.TrimSpace(accountName))
	name = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, name)
	if name == "" {
		return "ynabsync"
	}
	return name
}
