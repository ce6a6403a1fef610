package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case UserPage:
		o.printUserPage(v)
	case CreateResult:
		o.printCreateResult(v)
	case OptionsResult:
		fmt.Fprintf(o.w, "Allow: %s\n", v.Allow)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID            string  `json:"id"`
	Login         string  `json:"login"`
	FullName      string  `json:"fullName"`
	GamesPlayed   int     `json:"gamesPlayed"`
	CurrentGameID *string `json:"currentGameId"`
}

// Pagination is the decoded X-Pagination header
type Pagination struct {
	PreviousPageLink *string `json:"previousPageLink"`
	NextPageLink     *string `json:"nextPageLink"`
	TotalCount       int64   `json:"totalCount"`
	PageSize         int     `json:"pageSize"`
	CurrentPage      int     `json:"currentPage"`
	TotalPages       int     `json:"totalPages"`
}

// UserPage combines a page of users with its pagination header
type UserPage struct {
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}

// CreateResult is printed after create, and after replace when it inserted
type CreateResult struct {
	ID       string `json:"id"`
	Location string `json:"location"`
	Created  bool   `json:"created"`
}

// OptionsResult lists the methods the collection supports
type OptionsResult struct {
	Allow string `json:"allow"`
}

func (o *Output) printUser(u User) {
	fmt.Fprintf(o.w, "User: %s (%s)\n", u.Login, u.ID)
	fmt.Fprintf(o.w, "Full Name: %s\n", u.FullName)
	fmt.Fprintf(o.w, "Games Played: %d\n", u.GamesPlayed)
	if u.CurrentGameID != nil {
		fmt.Fprintf(o.w, "Current Game: %s\n", *u.CurrentGameID)
	}
}

func (o *Output) printUserPage(p UserPage) {
	pg := p.Pagination
	fmt.Fprintf(o.w, "Page %d of %d (%d users, %d per page)\n", pg.CurrentPage, pg.TotalPages, pg.TotalCount, pg.PageSize)
	for _, u := range p.Users {
		fmt.Fprintf(o.w, "  - %s  %s  %q\n", u.ID, u.Login, u.FullName)
	}
	if pg.PreviousPageLink != nil {
		fmt.Fprintf(o.w, "Previous: %s\n", *pg.PreviousPageLink)
	}
	if pg.NextPageLink != nil {
		fmt.Fprintf(o.w, "Next: %s\n", *pg.NextPageLink)
	}
}

func (o *Output) printCreateResult(r CreateResult) {
	fmt.Fprintf(o.w, "Created user %s\n", r.ID)
	fmt.Fprintf(o.w, "Location: %s\n", r.Location)
}
