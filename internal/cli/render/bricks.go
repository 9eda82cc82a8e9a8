package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/models"
	"github.com/webuildworld/webuild/internal/usecase"
)

// BricksRenderer renders bricks as tables and detail views
type BricksRenderer struct {
	out io.Writer
}

// NewBricksRenderer creates a new bricks renderer
func NewBricksRenderer(out io.Writer) *BricksRenderer {
	return &BricksRenderer{out: out}
}

// RenderList renders a getBrickIds page
func (r *BricksRenderer) RenderList(result *usecase.ListBricksResult) error {
	if len(result.Bricks) == 0 {
		fmt.Fprintln(r.out, "No bricks found")
		return nil
	}

	r.renderTable(result.Bricks)

	q := result.Query
	shown := uint64(len(result.Bricks))
	fmt.Fprintf(r.out, "Showing %d-%d of %d bricks\n", q.Offset+1, q.Offset+shown, result.Total)
	return nil
}

// RenderAccountBricks renders bricks indexed by owner or builder
func (r *BricksRenderer) RenderAccountBricks(result *usecase.ListAccountBricksResult) error {
	who := result.Account.Name
	if who == "" {
		who = result.Account.Address.Hex()
	}
	verb := "owned by"
	if result.Role == models.RoleBuilder {
		verb = "built by"
	}

	if len(result.Bricks) == 0 {
		fmt.Fprintf(r.out, "No bricks %s %s\n", verb, who)
		return nil
	}
	fmt.Fprintf(r.out, "%s\n\n", sectionHeaderStyle.Sprintf("Bricks %s %s", verb, who))
	r.renderTable(result.Bricks)
	fmt.Fprintf(r.out, "Total bricks: %d\n", len(result.Bricks))
	return nil
}

func (r *BricksRenderer) renderTable(bricks []*models.Brick) {
	header := TableData{{
		sectionHeaderStyle.Sprint("ID"),
		sectionHeaderStyle.Sprint("TITLE"),
		sectionHeaderStyle.Sprint("STATUS"),
		sectionHeaderStyle.Sprint("VALUE"),
		sectionHeaderStyle.Sprint("OWNER"),
		sectionHeaderStyle.Sprint("TAGS"),
		sectionHeaderStyle.Sprint("CREATED"),
	}}

	rows := make(TableData, 0, len(bricks))
	for _, b := range bricks {
		rows = append(rows, []string{
			fmt.Sprintf("#%d", b.ID),
			color.New(color.Bold).Sprint(truncate(b.Title, 40)),
			statusLabel(b.Status),
			valueStyle.Sprintf("%s ETH", domain.FormatEther(b.Value)),
			addressStyle.Sprint(shortAddress(b.Owner)),
			tagsStyle.Sprint(formatTags(b.Tags)),
			timestampStyle.Sprint(formatUnix(b.DateCreated)),
		})
	}

	widths := calculateTableColumnWidths(header, rows)
	fmt.Fprint(r.out, renderTableWithWidths(header, widths, ""))
	fmt.Fprintln(r.out)
	fmt.Fprint(r.out, renderTableWithWidths(rows, widths, ""))
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out)
}

// RenderBrick renders the full getBrick record
func (r *BricksRenderer) RenderBrick(main *models.Deployment, b *models.Brick) error {
	fmt.Fprintf(r.out, "%s %s\n", color.New(color.Bold).Sprintf("Brick #%d", b.ID), statusLabel(b.Status))
	fmt.Fprintln(r.out, strings.Repeat("─", 50))

	field := func(name, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprintf("%-14s", name+":"), value)
	}
	field("Title", b.Title)
	field("URL", b.URL)
	field("Description", b.Description)
	field("Tags", tagsStyle.Sprint(formatTags(b.Tags)))
	field("Value", valueStyle.Sprintf("%s ETH", domain.FormatEther(b.Value)))
	field("Owner", addressStyle.Sprint(b.Owner.Hex()))
	field("Timestamp", formatUnix(b.Timestamp))
	field("Created", formatUnix(b.DateCreated))
	if b.DateCompleted != 0 {
		field("Completed", formatUnix(b.DateCompleted))
	}
	if b.HasWinner() {
		field("Winner", color.New(color.FgGreen).Sprint(b.Winner.Hex()))
	}
	field("Builders", fmt.Sprintf("%d", b.NumBuilders))
	for _, builder := range b.Builders {
		fmt.Fprintf(r.out, "%s %s\n", strings.Repeat(" ", 14), addressStyle.Sprint(builder.Hex()))
	}
	if main != nil {
		fmt.Fprintf(r.out, "\n%s %s (%s)\n", labelStyle.Sprint("Registry:"), main.GetShortID(), main.Address)
	}
	return nil
}

// RenderAdded renders the result of addBrick
func (r *BricksRenderer) RenderAdded(result *usecase.AddBrickResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Added brick #%d", result.BrickID)))
	fmt.Fprintf(r.out, "   %s %s ETH escrowed by %s\n",
		labelStyle.Sprint("value:"),
		valueStyle.Sprint(domain.FormatEther(result.Transaction.Value)),
		accountLabel(result.Sender))
	renderTransaction(r.out, result.Transaction)
	return nil
}

// RenderWork renders a start, accept or cancel transition
func (r *BricksRenderer) RenderWork(result *usecase.ManageWorkResult) error {
	var msg string
	switch result.Operation {
	case usecase.WorkStart:
		msg = fmt.Sprintf("%s started work on brick #%d", accountLabel(result.Sender), result.Brick.ID)
	case usecase.WorkAccept:
		msg = fmt.Sprintf("Accepted work on brick #%d, %s ETH paid to %s",
			result.Brick.ID, domain.FormatEther(result.Brick.Value), result.Brick.Winner.Hex())
	case usecase.WorkCancel:
		msg = fmt.Sprintf("Cancelled brick #%d, %s ETH refunded", result.Brick.ID, domain.FormatEther(result.Brick.Value))
	}
	fmt.Fprintln(r.out, FormatSuccess(msg))
	renderTransaction(r.out, result.Transaction)
	return nil
}

func accountLabel(a *models.Account) string {
	if a == nil {
		return "?"
	}
	if a.Name == "" {
		return a.Address.Hex()
	}
	return fmt.Sprintf("%s (%s)", a.Name, shortAddress(a.Address))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
