package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fakturo/internal/core/entity"
	"fakturo/internal/core/id"
)

type mockCatalog struct {
	entity.Catalog
	IsActive bool   `db:"is_active" json:"isActive"`
	Ignored  string `db:"-" json:"ignored"`
	NoTag    string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expected := []string{
		"id", "deletion_mark", "version", "created_at", "updated_at",
		"code", "name", "is_active",
	}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}

	assert.NotContains(t, cols, "-")
	assert.Len(t, cols, len(expected))
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	cat := mockCatalog{
		Catalog: entity.Catalog{
			BaseCatalog: entity.BaseCatalog{
				BaseEntity: entity.BaseEntity{
					ID:           id.New(),
					DeletionMark: true,
					Version:      5,
				},
				CreatedAt: now,
				UpdatedAt: now,
			},
			Code: "TEST",
			Name: "Test Name",
		},
		IsActive: true,
		Ignored:  "skip me",
		NoTag:    "skip me too",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "TEST", m["code"])
	assert.Equal(t, "Test Name", m["name"])
	assert.Equal(t, true, m["is_active"])

	_, hasIgnored := m["ignored"]
	assert.False(t, hasIgnored)
}

func TestStructToMap_PointerInput(t *testing.T) {
	cat := &mockCatalog{IsActive: true}
	m := StructToMap(cat)
	assert.Equal(t, true, m["is_active"])
}
