package display

import (
	"encoding/json"
	"io"

	"github.com/0xmhha/squad-console/pkg/model"
)

// jsonFormatter formats output as JSON.
type jsonFormatter struct {
	config Config
}

func (f *jsonFormatter) encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if !f.config.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// FormatPlayers implements Formatter.FormatPlayers.
func (f *jsonFormatter) FormatPlayers(w io.Writer, players []model.Player) error {
	if players == nil {
		players = []model.Player{}
	}
	return f.encode(w, players)
}

// FormatTeams implements Formatter.FormatTeams.
func (f *jsonFormatter) FormatTeams(w io.Writer, teams []model.Team) error {
	if teams == nil {
		teams = []model.Team{}
	}
	return f.encode(w, teams)
}

// FormatMembers implements Formatter.FormatMembers.
func (f *jsonFormatter) FormatMembers(w io.Writer, members []model.User) error {
	if members == nil {
		members = []model.User{}
	}
	return f.encode(w, members)
}

// FormatComments implements Formatter.FormatComments.
func (f *jsonFormatter) FormatComments(w io.Writer, comments []model.Comment) error {
	if comments == nil {
		comments = []model.Comment{}
	}
	return f.encode(w, comments)
}

// FormatStats implements Formatter.FormatStats.
func (f *jsonFormatter) FormatStats(w io.Writer, stats model.Counters) error {
	if stats == nil {
		return nil
	}
	return f.encode(w, stats)
}

// FormatPagination implements Formatter.FormatPagination.
func (f *jsonFormatter) FormatPagination(w io.Writer, p model.Pagination) error {
	return f.encode(w, p)
}

// FormatProfile implements Formatter.FormatProfile.
func (f *jsonFormatter) FormatProfile(w io.Writer, user model.User) error {
	return f.encode(w, user)
}
