package openapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formengine/pkg/schema"
)

const petstoreDoc = `{
  "openapi": "3.0.3",
  "info": {"title": "Petstore", "version": "1.0.0"},
  "paths": {
    "/pets": {
      "post": {
        "operationId": "createPet",
        "summary": "Register a pet",
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["name", "species"],
                "properties": {
                  "name": {"type": "string", "minLength": 2, "maxLength": 40},
                  "species": {"type": "string", "enum": ["dog", "cat", "bird"]},
                  "weightKg": {"type": "number", "minimum": 0.1},
                  "vaccinated": {"type": "boolean"},
                  "birthday": {"type": "string", "format": "date"},
                  "tags": {"type": "array", "items": {"type": "string"}}
                }
              }
            }
          }
        },
        "responses": {"201": {"description": "created"}}
      }
    }
  }
}`

func TestImportMapsOperationToFormSchema(t *testing.T) {
	s, err := Import(context.Background(), []byte(petstoreDoc), "createPet")
	require.NoError(t, err)

	assert.Equal(t, "Register a pet", s.Title)

	fields := s.FieldMap()
	require.Len(t, fields, 6)

	name := fields["name"]
	assert.Equal(t, schema.FieldTypeString, name.Type)
	require.NotNil(t, name.Validation)
	assert.True(t, name.Validation.Required)
	assert.Equal(t, 2, *name.Validation.MinLength)
	assert.Equal(t, 40, *name.Validation.MaxLength)

	species := fields["species"]
	assert.Equal(t, schema.FieldTypeSelect, species.Type)
	assert.ElementsMatch(t, []string{"dog", "cat", "bird"}, species.Options)

	weight := fields["weightKg"]
	assert.Equal(t, schema.FieldTypeNumber, weight.Type)
	require.NotNil(t, weight.Validation)
	assert.InDelta(t, 0.1, *weight.Validation.Min, 1e-9)
	assert.False(t, weight.Validation.Required)

	assert.Equal(t, schema.FieldTypeBoolean, fields["vaccinated"].Type)
	assert.Equal(t, schema.FieldTypeDate, fields["birthday"].Type)
	assert.Equal(t, schema.FieldTypeMultiSelect, fields["tags"].Type)
}

func TestImportUnknownOperation(t *testing.T) {
	_, err := Import(context.Background(), []byte(petstoreDoc), "deletePet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestImportEmptyPayload(t *testing.T) {
	_, err := Import(context.Background(), nil, "createPet")
	require.Error(t, err)
}
