package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_ValidateKeepsKnownFields(t *testing.T) {
	validator := Schema{
		{Name: "html_selector", Type: TypeString, Required: true},
		{Name: "clickable", Type: TypeBoolean},
	}.MustCompile("interact")

	args, err := validator.Validate(`{"html_selector":"a.next","clickable":true,"extra":1}`)
	require.NoError(t, err)

	assert.Equal(t, "a.next", args.String("html_selector"))
	assert.True(t, args.Bool("clickable"))
	assert.NotContains(t, args, "extra")
	assert.Empty(t, args.String("missing"))
}

func TestSchema_ValidateBlankIsEmptyObject(t *testing.T) {
	validator := Schema{}.MustCompile("empty")

	args, err := validator.Validate("  ")
	require.NoError(t, err)
	assert.Empty(t, args)

	_, err = validator.Validate("null")
	assert.ErrorIs(t, err, errNotObject)

	_, err = validator.Validate(`["a"]`)
	assert.ErrorIs(t, err, errNotObject)
}

func TestSchema_ValidateReportsFirstViolation(t *testing.T) {
	validator := Schema{
		{Name: "query", Type: TypeString, Required: true},
		{Name: "clickable", Type: TypeBoolean},
	}.MustCompile("mixed")

	_, err := validator.Validate(`{"clickable":false}`)
	assert.EqualError(t, err, `missing required field "query"`)

	_, err = validator.Validate(`{"query":null}`)
	assert.EqualError(t, err, `missing required field "query"`)

	_, err = validator.Validate(`{"query":"https://example.com","clickable":"yes"}`)
	assert.EqualError(t, err, `field "clickable" must be a boolean`)

	args, err := validator.Validate(`{"query":"https://example.com","clickable":null}`)
	require.NoError(t, err)
	assert.Equal(t, Args{"query": "https://example.com"}, args)
}
