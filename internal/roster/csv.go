package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Column is one exportable roster field.
type Column struct {
	Key    string
	Header string
	value  func(User) string
}

// Columns is the export catalogue in default order.
var Columns = []Column{
	{Key: "id", Header: "ID", value: func(u User) string { return u.ID }},
	{Key: "name", Header: "Name", value: func(u User) string { return deref(u.Name) }},
	{Key: "email", Header: "Email", value: func(u User) string { return deref(u.Email) }},
	{Key: "phone", Header: "Phone", value: func(u User) string { return deref(u.Phone) }},
	{Key: "status", Header: "Status", value: func(u User) string { return string(u.Status) }},
	{Key: "is_admin", Header: "Admin", value: func(u User) string { return yesNo(u.IsAdmin) }},
	{Key: "is_facilitator", Header: "Facilitator", value: func(u User) string { return yesNo(u.IsFacilitator) }},
	{Key: "team_count", Header: "Teams", value: func(u User) string { return strconv.Itoa(len(u.TeamIDs)) }},
	{Key: "league_count", Header: "Leagues", value: func(u User) string { return strconv.Itoa(len(u.LeagueIDs)) }},
	{Key: "total_owed", Header: "Total Owed", value: func(u User) string { return u.TotalOwed.StringFixed(2) }},
	{Key: "total_paid", Header: "Total Paid", value: func(u User) string { return u.TotalPaid.StringFixed(2) }},
}

// ResolveColumns maps a comma separated list of keys to columns.
// An empty list selects the whole catalogue.
func ResolveColumns(list string) ([]Column, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return slices.Clone(Columns), nil
	}

	var out []Column
	for _, key := range strings.Split(list, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		i := slices.IndexFunc(Columns, func(c Column) bool { return c.Key == key })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, key)
		}
		out = append(out, Columns[i])
	}
	if len(out) == 0 {
		return slices.Clone(Columns), nil
	}
	return out, nil
}

// WriteCSV writes a header row followed by one row per user.
// Quoting of commas, quotes and newlines follows RFC 4180.
func WriteCSV(w io.Writer, users []User, columns []Column) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(columns))
	for _, u := range users {
		for i, c := range columns {
			record[i] = c.value(u)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", u.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
