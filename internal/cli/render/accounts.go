package render

import (
	"fmt"
	"io"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/usecase"
)

// AccountsRenderer renders configured accounts
type AccountsRenderer struct {
	out io.Writer
}

// NewAccountsRenderer creates a new accounts renderer
func NewAccountsRenderer(out io.Writer) *AccountsRenderer {
	return &AccountsRenderer{out: out}
}

// RenderAccounts renders accounts in configuration order
func (r *AccountsRenderer) RenderAccounts(result *usecase.ListAccountsResult) error {
	if len(result.Accounts) == 0 {
		fmt.Fprintln(r.out, "No accounts configured")
		return nil
	}

	data := make(TableData, 0, len(result.Accounts))
	for _, acct := range result.Accounts {
		name := acct.Name
		if name == result.Default {
			name = existsStyle.Sprint(name + " *")
		}
		kind := "signer"
		if !acct.CanSign() {
			kind = labelStyle.Sprint("watch-only")
		}
		row := []string{name, addressStyle.Sprint(acct.Address.Hex()), kind}
		if acct.Balance != nil {
			row = append(row, valueStyle.Sprintf("%s ETH", domain.FormatEther(acct.Balance)))
		}
		data = append(data, row)
	}

	fmt.Fprint(r.out, renderTableWithWidths(data, calculateTableColumnWidths(data), ""))
	fmt.Fprintln(r.out)
	if result.ChainID != 0 {
		fmt.Fprintf(r.out, "\n%s %d\n", labelStyle.Sprint("balances on chain"), result.ChainID)
	}
	return nil
}
