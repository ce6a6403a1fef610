package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"users-api/internal/adapter/gin/handler"
	"users-api/internal/adapter/gin/router"
	"users-api/internal/adapter/repository/memory"
	"users-api/internal/usecase/user"
)

// cliRunner runs usersctl commands in-process against a test server
type cliRunner struct {
	serverURL string
}

func newCLIRunner(t *testing.T) *cliRunner {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zaptest.NewLogger(t)
	h := handler.NewUserHandler(user.New(memory.NewUserRepository(), log), log)
	srv := httptest.NewServer(router.SetupRouter(h, nil, nil, "users-api", log))
	t.Cleanup(srv.Close)

	return &cliRunner{serverURL: srv.URL}
}

func (r *cliRunner) run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", r.serverURL, "--output", "json"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (r *cliRunner) create(t *testing.T, args ...string) CreateResult {
	t.Helper()
	out, err := r.run(append([]string{"create"}, args...)...)
	require.NoError(t, err, out)

	var result CreateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	return result
}

func (r *cliRunner) get(t *testing.T, id string) User {
	t.Helper()
	out, err := r.run("get", id)
	require.NoError(t, err, out)

	var u User
	require.NoError(t, json.Unmarshal([]byte(out), &u))
	return u
}

func TestCLI_CreateGetDelete(t *testing.T) {
	r := newCLIRunner(t)

	created := r.create(t, "--login", "ivan", "--first-name", "Ivan", "--last-name", "Petrov")
	assert.True(t, created.Created)
	assert.Equal(t, "/api/users/"+created.ID, created.Location)

	u := r.get(t, created.ID)
	assert.Equal(t, "ivan", u.Login)
	assert.Equal(t, "Petrov Ivan", u.FullName)

	_, err := r.run("exists", created.ID)
	require.NoError(t, err)

	_, err = r.run("delete", created.ID)
	require.NoError(t, err)

	_, err = r.run("exists", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.run("get", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCLI_CreateValidationError(t *testing.T) {
	r := newCLIRunner(t)

	_, err := r.run("create", "--login", "bad login", "--last-name", "")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 422, apiErr.Status)
	assert.Equal(t, "login must be alphanumeric", apiErr.Fields["login"])
	assert.Contains(t, apiErr.Fields, "lastName")
}

func TestCLI_Replace(t *testing.T) {
	r := newCLIRunner(t)
	id := "5f2b6c1e-8f6a-4d8e-9d4b-0a1b2c3d4e5f"

	out, err := r.run("replace", id, "--login", "ivan", "--last-name", "Petrov")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"created": true`)

	out, err = r.run("replace", id, "--login", "petr", "--last-name", "Sidorov")
	require.NoError(t, err, out)
	assert.Contains(t, out, "replaced")

	assert.Equal(t, "petr", r.get(t, id).Login)
}

func TestCLI_Patch(t *testing.T) {
	r := newCLIRunner(t)
	created := r.create(t, "--login", "ivan", "--first-name", "Ivan", "--last-name", "Petrov")

	_, err := r.run("patch", created.ID, "--op", "replace:/firstName=Vanya")
	require.NoError(t, err)
	assert.Equal(t, "Petrov Vanya", r.get(t, created.ID).FullName)

	_, err = r.run("patch", created.ID, "--merge", `{"firstName": null}`)
	require.NoError(t, err)
	assert.Equal(t, "Petrov ", r.get(t, created.ID).FullName)

	_, err = r.run("patch", created.ID)
	assert.Error(t, err)

	_, err = r.run("patch", created.ID, "--op", "replace:/firstName=x", "--merge", "{}")
	assert.Error(t, err)
}

func TestCLI_List(t *testing.T) {
	r := newCLIRunner(t)
	for _, login := range []string{"a1", "b2", "c3"} {
		r.create(t, "--login", login, "--last-name", "X")
	}

	out, err := r.run("list", "--page", "2", "--size", "2")
	require.NoError(t, err, out)

	var page UserPage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Users, 1)
	assert.Equal(t, "c3", page.Users[0].Login)
	assert.Equal(t, int64(3), page.Pagination.TotalCount)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.NotNil(t, page.Pagination.PreviousPageLink)
	assert.Nil(t, page.Pagination.NextPageLink)
}

func TestCLI_Options(t *testing.T) {
	r := newCLIRunner(t)

	out, err := r.run("options")
	require.NoError(t, err)
	assert.Contains(t, out, "GET, POST, OPTIONS")
}

func TestCLI_TextOutput(t *testing.T) {
	r := newCLIRunner(t)
	created := r.create(t, "--login", "ivan", "--last-name", "Petrov")

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--server", r.serverURL, "get", created.ID})
	require.NoError(t, cmd.Execute())

	assert.True(t, strings.HasPrefix(out.String(), "User: ivan ("+created.ID+")"))
	assert.Contains(t, out.String(), "Full Name: Petrov ")
}

func TestCLI_UnknownOutputFormat(t *testing.T) {
	r := newCLIRunner(t)

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--server", r.serverURL, "-o", "yaml", "options"})
	assert.Error(t, cmd.Execute())
}

func TestBuildJSONPatch(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		want    string
		wantErr bool
	}{
		{
			name:  "string value",
			specs: []string{"replace:/firstName=Vanya"},
			want:  `[{"op":"replace","path":"/firstName","value":"Vanya"}]`,
		},
		{
			name:  "json value and remove",
			specs: []string{"add:/firstName=null", "remove:/lastName"},
			want:  `[{"op":"add","path":"/firstName","value":null},{"op":"remove","path":"/lastName"}]`,
		},
		{
			name:  "move",
			specs: []string{"move:/lastName=/firstName"},
			want:  `[{"op":"move","path":"/lastName","from":"/firstName"}]`,
		},
		{name: "missing path", specs: []string{"replace"}, wantErr: true},
		{name: "missing value", specs: []string{"replace:/login"}, wantErr: true},
		{name: "unknown op", specs: []string{"frobnicate:/login=x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildJSONPatch(tt.specs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}
