package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	rec := newQueryRecorder()
	repo := NewUserRepository(newDryRunDB(t, rec))

	_, err := repo.FindByIDForUpdate(context.Background(), 3)
	assert.NoError(t, err)

	assert.Contains(t, rec.last(t), "FOR UPDATE")
}

func TestUserRepository_FindByID_ReadsWithoutLock(t *testing.T) {
	rec := newQueryRecorder()
	repo := NewUserRepository(newDryRunDB(t, rec))

	_, err := repo.FindByID(context.Background(), 3)
	assert.NoError(t, err)

	assert.NotContains(t, rec.last(t), "FOR UPDATE")
}
