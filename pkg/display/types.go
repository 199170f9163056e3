// Package display provides output formatting for squad records.
//
// It supports multiple output formats (table, JSON, simple text) for
// players, teams, members, comments, list statistics and pagination.
package display

import (
	"io"

	"github.com/0xmhha/squad-console/pkg/model"
)

// Format represents an output format.
type Format string

const (
	// FormatTable displays records in an aligned table.
	FormatTable Format = "table"

	// FormatJSON displays records as JSON.
	FormatJSON Format = "json"

	// FormatSimple displays one line per record.
	FormatSimple Format = "simple"
)

// Formatter formats and displays squad records.
type Formatter interface {
	// FormatPlayers formats a page of players.
	//
	// Parameters:
	//   - w: Output writer
	//   - players: Rows to format
	//
	// Returns error if formatting fails.
	FormatPlayers(w io.Writer, players []model.Player) error

	// FormatTeams formats a page of teams.
	FormatTeams(w io.Writer, teams []model.Team) error

	// FormatMembers formats a page of members.
	FormatMembers(w io.Writer, members []model.User) error

	// FormatComments formats a page of comments.
	FormatComments(w io.Writer, comments []model.Comment) error

	// FormatStats formats list statistics.
	//
	// Parameters:
	//   - w: Output writer
	//   - stats: Counters reported with a list; nil prints nothing
	//
	// Returns error if formatting fails.
	FormatStats(w io.Writer, stats model.Counters) error

	// FormatPagination formats the page position line.
	FormatPagination(w io.Writer, p model.Pagination) error

	// FormatProfile formats the signed-in user.
	FormatProfile(w io.Writer, user model.User) error
}

// Config contains formatter configuration.
type Config struct {
	// Format specifies the output format.
	// Default: FormatTable.
	Format Format

	// Compact enables compact output (less whitespace).
	// Default: false.
	Compact bool

	// Width is the terminal width tables are fitted to. Zero disables
	// fitting. See TerminalWidth.
	Width int
}
