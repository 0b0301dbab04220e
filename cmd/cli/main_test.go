package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/pokebox/internal/pokemon"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--storage", "memory"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBoxCommand(t *testing.T) {
	out, err := execute(t, "", "box", "--as", "ash")
	require.NoError(t, err)
	assert.Contains(t, out, "== ash's Pokemon ==")
}

func TestInfoMissingPokemon(t *testing.T) {
	_, err := execute(t, "", "info", "3", "--as", "ash")
	assert.ErrorIs(t, err, pokemon.ErrNotFound)
}

func TestArgsValidated(t *testing.T) {
	_, err := execute(t, "", "trade", "1", "2")
	assert.Error(t, err)
}

func TestCreateWithPipedAnswers(t *testing.T) {
	out, err := execute(t, "Sparky\nPidgey\nlevel: 5, attack: 10\nnature: hasty\n", "create", "--as", "ash")
	require.NoError(t, err)
	assert.Contains(t, out, "What species of Pokemon is it?")
	assert.Contains(t, out, "Finished! Pokemon has been added to box with ID 1")
	assert.NotContains(t, out, "Timed out!")
}
