package gen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewConfigDefaults(t *testing.T) {
	c, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultQueryType, c.QueryType)
	assert.Equal(t, Overwrite, c.Collisions)
	assert.False(t, c.NodeResolvers)
	assert.Equal(t, "Persons", c.Plural("Person"))
	assert.NotNil(t, c.Logger)
}

func TestWithQueryTypeName(t *testing.T) {
	t.Run("sets name", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, WithQueryTypeName("Root")(c))
		assert.Equal(t, "Root", c.QueryType)
	})

	t.Run("empty name returns error", func(t *testing.T) {
		err := WithQueryTypeName("")(&Config{})
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestWithCollisionPolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  CollisionPolicy
		wantErr bool
	}{
		{"overwrite", Overwrite, false},
		{"reject", Reject, false},
		{"invalid", CollisionPolicy(42), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			err := WithCollisionPolicy(tt.policy)(c)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.policy, c.Collisions)
		})
	}
}

func TestParseCollisionPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    CollisionPolicy
		wantErr bool
	}{
		{"", Overwrite, false},
		{"overwrite", Overwrite, false},
		{"reject", Reject, false},
		{"merge", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCollisionPolicy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "merge")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.ToLower(got.String()), got.String())
		})
	}
	assert.Equal(t, "unknown", CollisionPolicy(9).String())
}

func TestWithPluralizer(t *testing.T) {
	t.Run("custom function", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, WithPluralizer(func(s string) string { return "all" + s })(c))
		assert.Equal(t, "allPerson", c.Plural("Person"))
	})

	t.Run("nil returns error", func(t *testing.T) {
		err := WithPluralizer(nil)(&Config{})
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("inflect", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, WithInflectPlurals()(c))
		assert.Equal(t, "people", c.Plural("person"))
		assert.Equal(t, "Companies", c.Plural("Company"))
		assert.Equal(t, "Boxes", c.Plural("Box"))
	})
}

func TestWithLogger(t *testing.T) {
	c := &Config{}
	l := zap.NewExample()
	require.NoError(t, WithLogger(l)(c))
	assert.Same(t, l, c.Logger)

	err := WithLogger(nil)(&Config{})
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestConfigApply(t *testing.T) {
	t.Run("stops at first error", func(t *testing.T) {
		c := &Config{}
		err := c.Apply(WithQueryTypeName(""), WithNodeResolvers())
		require.Error(t, err)
		assert.False(t, c.NodeResolvers)
	})

	t.Run("ApplyAll collects errors", func(t *testing.T) {
		c := &Config{}
		err := c.ApplyAll(WithQueryTypeName(""), WithNodeResolvers(), WithLogger(nil))
		require.Error(t, err)
		assert.True(t, c.NodeResolvers)
		assert.Contains(t, err.Error(), "QueryType")
		assert.Contains(t, err.Error(), "Logger")
	})

	t.Run("MustNewConfig panics", func(t *testing.T) {
		assert.Panics(t, func() { MustNewConfig(WithLogger(nil)) })
		assert.NotPanics(t, func() { MustNewConfig(WithNodeResolvers()) })
	})
}

func TestConfigErrorMessage(t *testing.T) {
	err := NewConfigError("Plural", "x", "bad")
	assert.Equal(t, `vertexql: config error for "Plural" (value: x): bad`, err.Error())
	assert.Equal(t, `vertexql: config error for "Plural": bad`, NewConfigError("Plural", nil, "bad").Error())
}
