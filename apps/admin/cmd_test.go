package main

import (
	"bytes"
	"errors"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setup() (*commandLine, *bytes.Buffer) {
	var out bytes.Buffer
	return &commandLine{out: &out}, &out
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	wantOut []string
	extra   interface{}
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_commandLine_usage(t *testing.T) {
	tests := []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: []string{"Usage:"}},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp, wantOut: []string{"hashpassword", "checkweights", "checkseed"}},
		{name: "checkweights: no file", args: []string{"checkweights"}, wantErr: errHelp, wantOut: []string{"-file"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup()
			err := cli.run(append([]string{"admin"}, tt.args...))
			assert.Equal(t, tt.wantErr, err)
			for _, s := range tt.wantOut {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func Test_commandLine_hashPassword(t *testing.T) {
	type extra struct {
		pwd string
		err error
	}
	tests := []cliTest{
		{name: "no password", args: []string{"hashpassword"}, wantErr: errHelp},
		{name: "read failure", args: []string{"hashpassword"}, extra: extra{err: errors.New("no tty")}, wantErr: errors.New("no tty")},
		{name: "hashed", args: []string{"hashpassword"}, extra: extra{pwd: "s3cret!"}},
	}
	for _, tt := range tests {
		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), extra.err
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup()
			err := cli.run(append([]string{"admin"}, tt.args...))
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			hash := lines[len(lines)-1]
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret!")))
		})
	}
}

func Test_commandLine_checkWeights(t *testing.T) {
	valid := writeFile(t, "valid.yaml", `
class: Turma A
criteria:
  - name: Prova 1
    weight: 40
  - name: Prova 2
    weight: 40
  - name: Trabalho
    weight: 20
`)
	overflow := writeFile(t, "overflow.yaml", `
criteria:
  - name: Prova 1
    weight: 70
  - name: Trabalho
    weight: 40
  - name: "  "
    weight: 10
  - name: Participação
    weight: 30
`)
	incomplete := writeFile(t, "incomplete.yaml", `
criteria:
  - name: Prova
    weight: 60
`)
	broken := writeFile(t, "broken.yaml", "criteria: [")

	tests := []cliTest{
		{
			name: "valid", args: []string{"checkweights", "-file", valid},
			wantOut: []string{"class: Turma A", "1. Prova 1: 40%", "3. Trabalho: 20%", "total: 100% (Valid configuration: weights sum to 100%)"},
		},
		{
			name: "rejections", args: []string{"checkweights", "-file", overflow},
			wantOut: []string{
				`rejected "Trabalho" (40%): the sum of weights cannot exceed 100% (current: 70%, new: 40%)`,
				`rejected "  " (10%): criterion name is required`,
				"2. Participação: 30%",
				"total: 100%",
			},
		},
		{name: "incomplete", args: []string{"checkweights", "-file", incomplete}, wantErr: errInvalidWeights, wantOut: []string{"total: 60% (Missing 40%)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup()
			err := cli.run(append([]string{"admin"}, tt.args...))
			assert.Equal(t, tt.wantErr, err)
			for _, s := range tt.wantOut {
				assert.Contains(t, out.String(), s)
			}
		})
	}

	t.Run("unreadable files", func(t *testing.T) {
		cli, _ := setup()
		assert.Error(t, cli.run([]string{"admin", "checkweights", "-file", broken}))
		assert.Error(t, cli.run([]string{"admin", "checkweights", "-file", filepath.Join(t.TempDir(), "lol.yaml")}))
	})
}

func Test_commandLine_checkSeed(t *testing.T) {
	cli, out := setup()
	require.NoError(t, cli.run([]string{"admin", "checkseed"}))
	assert.Contains(t, out.String(), "users: 2, classes: 3, students: 3, upcoming evaluations: 3")

	bad := writeFile(t, "seed.yaml", `
classes:
  - name: Turma A
    capacity: 30
students:
  - name: Ana
    email: ana@escola.com
    class: Turma Z
    status: active
`)
	assert.Error(t, cli.run([]string{"admin", "checkseed", "-file", bad}))
}
