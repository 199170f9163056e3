package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/0xmhha/squad-console/pkg/model"
)

// minColumn is the narrowest a column is squeezed to when fitting.
const minColumn = 6

// tableFormatter formats output as tables.
type tableFormatter struct {
	config Config
}

// FormatPlayers implements Formatter.FormatPlayers.
func (f *tableFormatter) FormatPlayers(w io.Writer, players []model.Player) error {
	rows := make([][]string, len(players))
	for i, p := range players {
		rows[i] = []string{p.ID, p.Name, teamLabel(p), formatNumber(p.Cost), yesNo(p.IsCaptain)}
	}
	return f.writeTable(w, []string{"ID", "Name", "Team", "Cost", "Captain"}, rows)
}

// FormatTeams implements Formatter.FormatTeams.
func (f *tableFormatter) FormatTeams(w io.Writer, teams []model.Team) error {
	rows := make([][]string, len(teams))
	for i, t := range teams {
		rows[i] = []string{t.ID, t.Name, strconv.Itoa(t.PlayerCount)}
	}
	return f.writeTable(w, []string{"ID", "Name", "Players"}, rows)
}

// FormatMembers implements Formatter.FormatMembers.
func (f *tableFormatter) FormatMembers(w io.Writer, members []model.User) error {
	rows := make([][]string, len(members))
	for i, u := range members {
		rows[i] = []string{u.ID, u.Username, u.Name, strconv.Itoa(u.YOB), yesNo(u.IsAdmin)}
	}
	return f.writeTable(w, []string{"ID", "Username", "Name", "YOB", "Admin"}, rows)
}

// FormatComments implements Formatter.FormatComments.
func (f *tableFormatter) FormatComments(w io.Writer, comments []model.Comment) error {
	rows := make([][]string, len(comments))
	for i, c := range comments {
		rows[i] = []string{c.ID, authorLabel(c), formatRating(c.Rating), c.Content}
	}
	return f.writeTable(w, []string{"ID", "Author", "Rating", "Comment"}, rows)
}

// FormatStats implements Formatter.FormatStats.
func (f *tableFormatter) FormatStats(w io.Writer, stats model.Counters) error {
	if len(stats) == 0 {
		return nil
	}
	if err := writeHeader(w, "Statistics", f.config.Compact); err != nil {
		return err
	}

	keys := sortedKeys(stats)
	rows := make([][]string, len(keys))
	for i, k := range keys {
		rows[i] = []string{statLabel(k), formatNumber(stats[k])}
	}
	return f.writeTable(w, []string{"Metric", "Value"}, rows)
}

// FormatPagination implements Formatter.FormatPagination.
func (f *tableFormatter) FormatPagination(w io.Writer, p model.Pagination) error {
	_, err := fmt.Fprintf(w, "Page %d of %d, %s items\n",
		p.Page, max(p.TotalPages, 1), formatNumber(int64(p.TotalItems)))
	return err
}

// FormatProfile implements Formatter.FormatProfile.
func (f *tableFormatter) FormatProfile(w io.Writer, user model.User) error {
	if err := writeHeader(w, "Profile", f.config.Compact); err != nil {
		return err
	}
	role := "member"
	if user.IsAdmin {
		role = "admin"
	}
	rows := [][]string{
		{"ID", user.ID},
		{"Username", user.Username},
		{"Name", user.Name},
		{"Year of birth", strconv.Itoa(user.YOB)},
		{"Role", role},
	}
	if !user.CreatedAt.IsZero() {
		rows = append(rows, []string{"Member since", user.CreatedAt.Format("2006-01-02")})
	}
	return f.writeTable(w, []string{"Field", "Value"}, rows)
}

// writeTable writes a formatted table.
func (f *tableFormatter) writeTable(w io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No data")
		return err
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	f.fit(widths)

	if err := f.writeRow(w, header, widths); err != nil {
		return err
	}

	if !f.config.Compact {
		separator := make([]string, len(header))
		for i, width := range widths {
			separator[i] = strings.Repeat("-", width)
		}
		if err := f.writeRow(w, separator, widths); err != nil {
			return err
		}
	}

	for _, row := range rows {
		if err := f.writeRow(w, row, widths); err != nil {
			return err
		}
	}

	if !f.config.Compact {
		_, err := fmt.Fprintln(w)
		return err
	}

	return nil
}

// fit narrows the widest columns until the table fits config.Width.
func (f *tableFormatter) fit(widths []int) {
	if f.config.Width <= 0 {
		return
	}
	gap := 2
	if f.config.Compact {
		gap = 1
	}
	total := gap * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	for total > f.config.Width {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumn {
			return
		}
		widths[widest]--
		total--
	}
}

// writeRow writes a single table row.
func (f *tableFormatter) writeRow(w io.Writer, cells []string, widths []int) error {
	for i, cell := range cells {
		if i > 0 {
			sep := "  "
			if f.config.Compact {
				sep = " "
			}
			if _, err := fmt.Fprint(w, sep); err != nil {
				return err
			}
		}

		cell = truncate(cell, widths[i])
		pad := widths[i] - utf8.RuneCountInString(cell)
		if i == len(cells)-1 {
			pad = 0
		}
		if _, err := fmt.Fprint(w, cell, strings.Repeat(" ", pad)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}

// truncate shortens s to n runes, marking the cut with "~".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 1 {
		return "~"
	}
	r := []rune(s)
	return string(r[:n-1]) + "~"
}
