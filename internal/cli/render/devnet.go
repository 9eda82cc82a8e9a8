package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/webuildworld/webuild/internal/usecase"
)

// DevnetRenderer renders dev chain output
type DevnetRenderer struct {
	out io.Writer
}

// NewDevnetRenderer creates a new dev chain renderer
func NewDevnetRenderer(out io.Writer) *DevnetRenderer {
	return &DevnetRenderer{out: out}
}

// RenderListening renders the endpoints of a running dev chain
func (r *DevnetRenderer) RenderListening(addr string, chainID uint64) {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Dev chain %d listening", chainID)))
	fmt.Fprintf(r.out, "   %s %s\n", labelStyle.Sprint("rpc:    "), color.New(color.FgCyan).Sprintf("http://%s", addr))
	fmt.Fprintf(r.out, "   %s %s\n", labelStyle.Sprint("metrics:"), color.New(color.FgCyan).Sprintf("http://%s/metrics", addr))
	fmt.Fprintln(r.out, labelStyle.Sprint("   press Ctrl+C to stop"))
}

// RenderReset renders the result of a reset
func (r *DevnetRenderer) RenderReset(result *usecase.ResetDevnetResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Reset dev chain %d", result.ChainID)))
	fmt.Fprintf(r.out, "   %s %s\n", labelStyle.Sprint("removed:"), getRelativePath(result.DataDir))
	fmt.Fprintf(r.out, "   %s %d\n", labelStyle.Sprint("deployments forgotten:"), result.DeploymentsRemoved)
	return nil
}
