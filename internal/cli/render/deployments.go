package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"

	"github.com/webuildworld/webuild/internal/domain/models"
	"github.com/webuildworld/webuild/internal/usecase"
)

var (
	chainBg         = color.BgCyan
	chainHeader     = color.New(chainBg, color.FgBlack)
	chainHeaderBold = color.New(chainBg, color.FgBlack, color.Bold)
	missingStyle    = color.New(color.FgRed)
	existsStyle     = color.New(color.FgGreen)
	implPrefixStyle = color.New(color.Faint)
)

// DeploymentsRenderer renders registry deployments
type DeploymentsRenderer struct {
	out io.Writer
}

// NewDeploymentsRenderer creates a new deployments renderer
func NewDeploymentsRenderer(out io.Writer) *DeploymentsRenderer {
	return &DeploymentsRenderer{out: out}
}

// RenderDeploymentList renders deployments grouped into main and implementation sections
func (r *DeploymentsRenderer) RenderDeploymentList(result *usecase.DeploymentListResult) error {
	if len(result.Deployments) == 0 {
		fmt.Fprintln(r.out, "No deployments found")
		return nil
	}

	sections := []struct {
		title string
		typ   models.DeploymentType
	}{
		{"MAIN", models.MainDeployment},
		{"IMPLEMENTATIONS", models.ImplementationDeployment},
		{"OTHER", models.UnknownDeployment},
	}

	grouped := make(map[models.DeploymentType][]*usecase.DeploymentStatus)
	for _, st := range result.Deployments {
		typ := st.Deployment.Type
		if typ != models.MainDeployment && typ != models.ImplementationDeployment {
			typ = models.UnknownDeployment
		}
		grouped[typ] = append(grouped[typ], st)
	}

	tables := make(map[models.DeploymentType]TableData, len(grouped))
	all := make([]TableData, 0, len(grouped))
	for typ, list := range grouped {
		tables[typ] = r.buildDeploymentTable(list)
		all = append(all, tables[typ])
	}
	widths := calculateTableColumnWidths(all...)

	chainLabel := fmt.Sprintf("%-12s", "chain:")
	chainValue := fmt.Sprintf("%-30d", result.ChainID)
	fmt.Fprintf(r.out, "%s%s\n", chainHeader.Sprintf(" ⛓ %s ", chainLabel), chainHeaderBold.Sprint(chainValue))

	const prefix = "│ "
	for _, s := range sections {
		data, ok := tables[s.typ]
		if !ok {
			continue
		}
		fmt.Fprintln(r.out, prefix)
		fmt.Fprintf(r.out, "%s%s\n", prefix, sectionHeaderStyle.Sprint(s.title))
		fmt.Fprint(r.out, renderTableWithWidths(data, widths, prefix))
		fmt.Fprintln(r.out)
	}
	fmt.Fprintln(r.out)

	fmt.Fprintf(r.out, "Total deployments: %d\n", result.Summary.Total)
	if result.Summary.Missing > 0 {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("%d deployments have no code on chain", result.Summary.Missing)))
	}
	return nil
}

func (r *DeploymentsRenderer) buildDeploymentTable(list []*usecase.DeploymentStatus) TableData {
	data := make(TableData, 0, len(list))
	for _, st := range list {
		dep := st.Deployment

		codeCell := ""
		if st.Checked {
			if st.Exists {
				codeCell = existsStyle.Sprint("✓ code")
			} else {
				codeCell = missingStyle.Sprintf("✗ %s", st.Reason)
			}
		}

		data = append(data, []string{
			getColoredDisplayName(dep),
			addressStyle.Sprint(dep.Address),
			codeCell,
			timestampStyle.Sprint(dep.CreatedAt.Format("2006-01-02 15:04:05")),
		})

		if provider := dep.CurrentProvider(); provider != "" {
			data = append(data, []string{
				implPrefixStyle.Sprintf("└─ provider %s", shortAddress(common.HexToAddress(provider))),
				"", "", "",
			})
		}
	}
	return data
}

// getColoredDisplayName returns a colored display name for deployment
func getColoredDisplayName(dep *models.Deployment) string {
	name := dep.GetShortID()
	switch dep.Type {
	case models.MainDeployment:
		return color.New(color.FgMagenta, color.Bold).Sprint(name)
	case models.ImplementationDeployment:
		return color.New(color.FgGreen, color.Bold).Sprint(name)
	default:
		return color.New(color.FgHiBlack, color.Bold).Sprint(name)
	}
}

// RenderDeploy renders deployed and reused contracts
func (r *DeploymentsRenderer) RenderDeploy(result *usecase.DeployContractsResult) error {
	for _, dep := range result.Existing {
		fmt.Fprintf(r.out, "%s %s at %s\n", color.New(color.FgHiBlack).Sprint("•"), getColoredDisplayName(dep), dep.Address)
		fmt.Fprintln(r.out, labelStyle.Sprint("   already deployed"))
	}

	names := make([]string, 0, len(result.Deployed))
	byName := make(map[string]*models.Deployment, len(result.Deployed))
	for _, dep := range result.Deployed {
		names = append(names, dep.ID)
		byName[dep.ID] = dep
	}
	sort.Strings(names)
	for _, id := range names {
		dep := byName[id]
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deployed %s at %s", getColoredDisplayName(dep), dep.Address)))
		renderTransaction(r.out, result.Transaction[dep.ContractName])
	}

	if result.Link != nil {
		return r.RenderLink(result.Link)
	}
	return nil
}

// RenderLink renders setMain and upgradeProvider results
func (r *DeploymentsRenderer) RenderLink(result *usecase.LinkContractsResult) error {
	if result.AlreadyLinked() {
		fmt.Fprintf(r.out, "%s %s already uses %s\n",
			color.New(color.FgHiBlack).Sprint("•"), result.Main.GetShortID(), result.Implementation.GetShortID())
		return nil
	}
	if result.SetMainTx != nil {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Set main of %s to %s", result.Implementation.GetShortID(), result.Main.Address)))
		renderTransaction(r.out, result.SetMainTx)
	}
	if result.UpgradeTx != nil {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Upgraded provider of %s to %s", result.Main.GetShortID(), result.Implementation.Address)))
		if result.PreviousProvider != (common.Address{}) {
			fmt.Fprintf(r.out, "   %s %s\n", labelStyle.Sprint("previous:"), result.PreviousProvider.Hex())
		}
		renderTransaction(r.out, result.UpgradeTx)
	}
	return nil
}

// RenderUpgrade renders a provider upgrade
func (r *DeploymentsRenderer) RenderUpgrade(result *usecase.UpgradeProviderResult) error {
	if result.Deployed {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deployed %s at %s",
			getColoredDisplayName(result.Implementation), result.Implementation.Address)))
	}
	if result.Link != nil {
		return r.RenderLink(result.Link)
	}
	return nil
}
