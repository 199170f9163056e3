package display

import (
	"fmt"
	"io"

	"github.com/0xmhha/squad-console/pkg/model"
)

// simpleFormatter formats output as simple text.
type simpleFormatter struct {
	config Config
}

// FormatPlayers implements Formatter.FormatPlayers.
func (f *simpleFormatter) FormatPlayers(w io.Writer, players []model.Player) error {
	for _, p := range players {
		captain := ""
		if p.IsCaptain {
			captain = " (C)"
		}
		if _, err := fmt.Fprintf(w, "%s: %s%s | %s | %s\n",
			p.ID, p.Name, captain, teamLabel(p), formatNumber(p.Cost)); err != nil {
			return err
		}
	}
	return nil
}

// FormatTeams implements Formatter.FormatTeams.
func (f *simpleFormatter) FormatTeams(w io.Writer, teams []model.Team) error {
	for _, t := range teams {
		if _, err := fmt.Fprintf(w, "%s: %s - %d players\n", t.ID, t.Name, t.PlayerCount); err != nil {
			return err
		}
	}
	return nil
}

// FormatMembers implements Formatter.FormatMembers.
func (f *simpleFormatter) FormatMembers(w io.Writer, members []model.User) error {
	for _, u := range members {
		role := "member"
		if u.IsAdmin {
			role = "admin"
		}
		if _, err := fmt.Fprintf(w, "%s: %s (%s) %s\n", u.ID, u.Username, u.Name, role); err != nil {
			return err
		}
	}
	return nil
}

// FormatComments implements Formatter.FormatComments.
func (f *simpleFormatter) FormatComments(w io.Writer, comments []model.Comment) error {
	for _, c := range comments {
		if _, err := fmt.Fprintf(w, "%s: [%d/%d] %s - %s\n", c.ID, c.Rating, model.MaxRating, authorLabel(c), c.Content); err != nil {
			return err
		}
	}
	return nil
}

// FormatStats implements Formatter.FormatStats.
func (f *simpleFormatter) FormatStats(w io.Writer, stats model.Counters) error {
	if len(stats) == 0 {
		return nil
	}
	sep := ""
	for _, k := range sortedKeys(stats) {
		if _, err := fmt.Fprintf(w, "%s%s: %s", sep, statLabel(k), formatNumber(stats[k])); err != nil {
			return err
		}
		sep = " | "
	}
	_, err := fmt.Fprintln(w)
	return err
}

// FormatPagination implements Formatter.FormatPagination.
func (f *simpleFormatter) FormatPagination(w io.Writer, p model.Pagination) error {
	_, err := fmt.Fprintf(w, "page %d/%d (%d items)\n", p.Page, max(p.TotalPages, 1), p.TotalItems)
	return err
}

// FormatProfile implements Formatter.FormatProfile.
func (f *simpleFormatter) FormatProfile(w io.Writer, user model.User) error {
	role := "member"
	if user.IsAdmin {
		role = "admin"
	}
	_, err := fmt.Fprintf(w, "%s (%s), born %d, %s\n", user.Username, user.Name, user.YOB, role)
	return err
}

func teamLabel(p model.Player) string {
	if p.TeamName != "" {
		return p.TeamName
	}
	return p.TeamID
}

func authorLabel(c model.Comment) string {
	if c.Author != "" {
		return c.Author
	}
	return c.AuthorID
}
