package env_vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zclconf/go-cty/cty"
)

func TestEnvironment(t *testing.T) {
	t.Setenv("SPFRM_TEST_CDN", "https://cdn.example.com")
	env := Environment()
	assert.Equal(t, "https://cdn.example.com", env["SPFRM_TEST_CDN"])
}

func TestValue(t *testing.T) {
	v := Value(map[string]string{"A": "1"})
	assert.Equal(t, cty.StringVal("1"), v.GetAttr("A"))
	assert.True(t, Value(nil).RawEquals(cty.EmptyObjectVal))
}
