package graph

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type (
	// VertexType describes one vertex type (tag) of a graph space.
	VertexType struct {
		// Name of the vertex type, used verbatim as the GraphQL type name.
		Name string `yaml:"name" json:"name" msgpack:"name" validate:"required"`
		// Properties in declaration order.
		Properties []Property `yaml:"properties" json:"properties" msgpack:"properties" validate:"dive"`
	}

	// Property is a typed, named attribute of a vertex type.
	Property struct {
		Name        string       `yaml:"name" json:"name" msgpack:"name" validate:"required"`
		Type        PropertyType `yaml:"type" json:"type" msgpack:"type"`
		Description string       `yaml:"description,omitempty" json:"description,omitempty" msgpack:"description,omitempty"`
	}
)

// Property returns the property with the given name. When a name repeats,
// the last declaration wins.
func (v VertexType) Property(name string) (Property, bool) {
	for i := len(v.Properties) - 1; i >= 0; i-- {
		if v.Properties[i].Name == name {
			return v.Properties[i], true
		}
	}
	return Property{}, false
}

// HasDescription reports whether the property carries a comment.
func (p Property) HasDescription() bool {
	return p.Description != ""
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the structural requirements of the record.
func (v VertexType) Validate() error {
	if err := structValidator().Struct(v); err != nil {
		return formatValidationError(v, err)
	}
	return nil
}

// formatValidationError turns validator failures into readable messages.
func formatValidationError(v VertexType, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		// Namespace looks like "VertexType.Properties[1].Name".
		path := strings.TrimPrefix(e.Namespace(), "VertexType.")
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", path))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", path, e.Tag()))
		}
	}
	if v.Name != "" {
		return fmt.Errorf("vertex type %s: %s", v.Name, strings.Join(msgs, "; "))
	}
	return errors.New(strings.Join(msgs, "; "))
}
