package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/webuildworld/webuild/internal/domain/models"
)

var (
	addressStyle       = color.New(color.FgWhite)
	timestampStyle     = color.New(color.Faint)
	tagsStyle          = color.New(color.FgCyan)
	valueStyle         = color.New(color.FgYellow)
	sectionHeaderStyle = color.New(color.Bold, color.FgHiWhite)
	labelStyle         = color.New(color.Faint)
	txStyle            = color.New(color.FgHiBlack)

	titleCaser = cases.Title(language.English)
)

// RenderJSON writes v as indented JSON
func RenderJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	if len(message) > 0 {
		message = strings.ToUpper(message[:1]) + message[1:]
	}
	return color.New(color.FgRed).Sprintf("❌ %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// statusLabel returns the colored, title-cased brick status
func statusLabel(s models.BrickStatus) string {
	label := titleCaser.String(s.String())
	switch s {
	case models.BrickOpen:
		return color.New(color.FgGreen).Sprint(label)
	case models.BrickStarted:
		return color.New(color.FgYellow).Sprint(label)
	case models.BrickCompleted:
		return color.New(color.FgCyan).Sprint(label)
	case models.BrickCancelled:
		return color.New(color.FgRed).Sprint(label)
	default:
		return label
	}
}

// shortAddress abbreviates an address to 0x1234…abcd
func shortAddress(addr common.Address) string {
	hex := addr.Hex()
	return hex[:6] + "…" + hex[len(hex)-4:]
}

// formatUnix formats a unix timestamp; zero renders as "-"
func formatUnix(ts uint64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(int64(ts), 0).UTC().Format("2006-01-02 15:04:05")
}

// formatTags renders tags as "#a #b"
func formatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "#" + strings.Join(tags, " #")
}

// renderTransaction prints a one-line transaction summary
func renderTransaction(out io.Writer, tx *models.TransactionResult) {
	if tx == nil {
		return
	}
	fmt.Fprintf(out, "   %s %s %s\n",
		labelStyle.Sprint("tx:"),
		txStyle.Sprint(tx.Hash.Hex()),
		labelStyle.Sprintf("(block %d, gas %d)", tx.BlockNumber, tx.GasUsed))
}

// getRelativePath returns the path relative to the current directory
func getRelativePath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	relPath, err := filepath.Rel(cwd, path)
	if err != nil {
		return path
	}
	return relPath
}
