package commands

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/session"
)

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"groups", []string{"groups"}},
		{`createGroup "Family Pot" -m 5`, []string{"createGroup", "Family Pot", "-m", "5"}},
		{`addParticipants g1 'Amina Ali'  Hodan`, []string{"addParticipants", "g1", "Amina Ali", "Hodan"}},
		{`login ""`, []string{"login", ""}},
		{"   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseCommandLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseCommandLine(`share g1 "unterminated`)
	assert.Error(t, err)
}

func TestInteractive_RunsCommandsAndResetsFlags(t *testing.T) {
	var seen []string
	echo := &cobra.Command{
		Use:  "echo <word>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loud, _ := cmd.Flags().GetBool("loud")
			word := args[0]
			if loud {
				word = strings.ToUpper(word)
			}
			seen = append(seen, word)
			return nil
		},
	}
	echo.Flags().Bool("loud", false, "")

	app := &AppContext{
		In:     bufio.NewReader(strings.NewReader("echo --loud hi\necho there\nnope\necho\nquit\n")),
		Logger: zap.NewNop(),
	}
	root := &cobra.Command{Use: "ayuuto"}
	interactive := InteractiveCmd(app)
	root.AddCommand(echo, interactive)

	var out bytes.Buffer
	interactive.SetOut(&out)
	require.NoError(t, interactive.RunE(interactive, nil))

	assert.Equal(t, []string{"HI", "there"}, seen)
	assert.Contains(t, out.String(), "Unknown command: nope")
	assert.Contains(t, out.String(), "accepts 1 arg(s)")
}

func TestHandleError_ExpiredSessionIsCleared(t *testing.T) {
	store := session.NewStore(t.TempDir(), "test")
	require.NoError(t, store.Save(model.Session{Token: "opaque", User: model.User{ID: "u1"}}))

	app := &AppContext{Sessions: store, Logger: zap.NewNop()}

	var out bytes.Buffer
	HandleError(app, &out, errExpired())

	assert.Contains(t, out.String(), "Run 'login'")
	_, ok := store.User()
	assert.False(t, ok)
}
