package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/koe/internal/config"
	"github.com/nadzzz/koe/internal/query"
)

func TestQueryDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	q := queryDefaults(cfg.Engine)
	q.AccentPhrases = []query.AccentPhrase{}
	assert.Equal(t, *query.DefaultAudioQuery(nil), q)
	assert.NoError(t, q.Validate())
}
