package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

const usersPath = "/api/users"

func userPath(id string) string {
	return usersPath + "/" + url.PathEscape(id)
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result User
			if _, err := client.Get(userPath(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newExistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <id>",
		Short: "Check whether a user exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := client.Head(userPath(args[0])); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(fmt.Sprintf("user %s exists", args[0]))
			return nil
		},
	}
}

// userFieldFlags binds the writable user fields to cmd
type userFieldFlags struct {
	login, firstName, lastName string
}

func (f *userFieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.login, "login", "", "Login, letters and digits only (required)")
	cmd.Flags().StringVar(&f.firstName, "first-name", "", "First name (omit to leave unset)")
	cmd.Flags().StringVar(&f.lastName, "last-name", "", "Last name (required)")
}

func (f *userFieldFlags) body(cmd *cobra.Command) map[string]any {
	body := map[string]any{
		"login":    f.login,
		"lastName": f.lastName,
	}
	if cmd.Flags().Changed("first-name") {
		body["firstName"] = f.firstName
	}
	return body
}

func newCreateCmd() *cobra.Command {
	var fields userFieldFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			header, err := client.Send(http.MethodPost, usersPath, fields.body(cmd), &id)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(CreateResult{
				ID:       id,
				Location: header.Get("Location"),
				Created:  true,
			})
			return nil
		},
	}
	fields.register(cmd)

	return cmd
}

func newReplaceCmd() *cobra.Command {
	var fields userFieldFlags

	cmd := &cobra.Command{
		Use:   "replace <id>",
		Short: "Replace a user, creating it when the ID is unused",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			header, err := client.Send(http.MethodPut, userPath(args[0]), fields.body(cmd), &id)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			if location := header.Get("Location"); location != "" {
				out.Print(CreateResult{ID: id, Location: location, Created: true})
				return nil
			}
			out.PrintMessage(fmt.Sprintf("user %s replaced", args[0]))
			return nil
		},
	}
	fields.register(cmd)

	return cmd
}

func newPatchCmd() *cobra.Command {
	var (
		ops   []string
		merge string
	)

	cmd := &cobra.Command{
		Use:   "patch <id>",
		Short: "Partially update a user",
		Long: `Partially update a user with JSON Patch operations or a JSON merge patch.

Operations take the form op:path[=value], where value is parsed as JSON
and falls back to a plain string:

  usersctl patch <id> --op replace:/firstName=Vanya --op remove:/lastName
  usersctl patch <id> --merge '{"firstName": null}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				body        []byte
				contentType string
				err         error
			)
			switch {
			case len(ops) > 0 && merge != "":
				return errors.New("--op and --merge are mutually exclusive")
			case len(ops) > 0:
				body, err = buildJSONPatch(ops)
				if err != nil {
					return err
				}
				contentType = ContentTypeJSONPatch
			case merge != "":
				if !json.Valid([]byte(merge)) {
					return errors.New("--merge must be a JSON document")
				}
				body, contentType = []byte(merge), ContentTypeMergePatch
			default:
				return errors.New("one of --op or --merge is required")
			}

			if _, err := client.Do(http.MethodPatch, userPath(args[0]), contentType, body, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(fmt.Sprintf("user %s updated", args[0]))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&ops, "op", nil, "JSON Patch operation op:path[=value] (repeatable)")
	cmd.Flags().StringVar(&merge, "merge", "", "JSON merge patch document")

	return cmd
}

// patchOp is one RFC 6902 operation
type patchOp struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	From  string          `json:"from,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// buildJSONPatch turns op:path[=value] arguments into a JSON Patch document.
// For move and copy the value is the from path.
func buildJSONPatch(args []string) ([]byte, error) {
	ops := make([]patchOp, 0, len(args))
	for _, arg := range args {
		kind, rest, ok := strings.Cut(arg, ":")
		if !ok || kind == "" || !strings.HasPrefix(rest, "/") {
			return nil, fmt.Errorf("invalid --op %q: want op:/path[=value]", arg)
		}

		path, value, hasValue := strings.Cut(rest, "=")
		op := patchOp{Op: kind, Path: path}

		switch kind {
		case "remove":
		case "move", "copy":
			if !hasValue {
				return nil, fmt.Errorf("invalid --op %q: %s needs =/from", arg, kind)
			}
			op.From = value
		case "add", "replace", "test":
			if !hasValue {
				return nil, fmt.Errorf("invalid --op %q: %s needs a value", arg, kind)
			}
			op.Value = jsonValue(value)
		default:
			return nil, fmt.Errorf("invalid --op %q: unknown operation %q", arg, kind)
		}
		ops = append(ops, op)
	}
	return json.Marshal(ops)
}

// jsonValue keeps valid JSON as is and quotes anything else
func jsonValue(v string) json.RawMessage {
	if json.Valid([]byte(v)) {
		return json.RawMessage(v)
	}
	quoted, _ := json.Marshal(v)
	return quoted
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(userPath(args[0])); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(fmt.Sprintf("user %s deleted", args[0]))
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users one page at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("pageNumber", fmt.Sprint(page))
			query.Set("pageSize", fmt.Sprint(size))

			var result UserPage
			header, err := client.Get(usersPath+"?"+query.Encode(), &result.Users)
			if err != nil {
				return err
			}
			if raw := header.Get("X-Pagination"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &result.Pagination); err != nil {
					return fmt.Errorf("failed to parse pagination header: %w", err)
				}
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", 10, "Page size (at most 20)")

	return cmd
}

func newOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Show the methods the users collection supports",
		RunE: func(cmd *cobra.Command, args []string) error {
			header, err := client.Options(usersPath)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(OptionsResult{Allow: header.Get("Allow")})
			return nil
		},
	}
}
