package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"newsportal/internal/auth"
	apperr "newsportal/internal/errors"
)

func identity(role string) *auth.Identity {
	return &auth.Identity{ID: uuid.NewString(), Username: role, Role: role}
}

func TestRoleGate(t *testing.T) {
	c := MustNew()

	tests := []struct {
		perm   Permission
		user   bool
		editor bool
		admin  bool
	}{
		{CategoryCreate, false, true, true},
		{CategoryUpdate, false, true, true},
		{CategoryDelete, false, false, true},
		{CommentModerate, false, true, true},
		{CommentManage, false, true, true},
		{ArticleManage, false, true, true},
		{ArticlePublish, false, true, true},
		{MediaManage, false, false, true},
		{MediaListAll, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.perm.String(), func(t *testing.T) {
			assert.Equal(t, tt.user, c.Allowed(identity("user"), tt.perm), "user")
			assert.Equal(t, tt.editor, c.Allowed(identity("editor"), tt.perm), "editor")
			assert.Equal(t, tt.admin, c.Allowed(identity("admin"), tt.perm), "admin")
			assert.False(t, c.Allowed(nil, tt.perm), "anonymous")
			assert.False(t, c.Allowed(identity("superuser"), tt.perm), "unknown role")
		})
	}
}

func TestRequireRole(t *testing.T) {
	c := MustNew()

	assert.ErrorIs(t, c.RequireRole(nil, CategoryCreate), apperr.ErrUnauthorized)
	assert.ErrorIs(t, c.RequireRole(identity("user"), CategoryCreate), apperr.ErrForbidden)
	assert.NoError(t, c.RequireRole(identity("editor"), CategoryCreate))
	assert.ErrorIs(t, c.RequireRole(identity("editor"), CategoryDelete), apperr.ErrForbidden)
	assert.NoError(t, c.RequireRole(identity("admin"), CategoryDelete))
}

func TestRequireOwnerOr(t *testing.T) {
	c := MustNew()
	owner := identity("user")
	ownerID := uuid.MustParse(owner.ID)

	tests := []struct {
		name     string
		caller   *auth.Identity
		override Permission
		wantErr  error
	}{
		{"anonymous", nil, ArticleManage, apperr.ErrUnauthorized},
		{"owner", owner, ArticleManage, nil},
		{"other user", identity("user"), ArticleManage, apperr.ErrForbidden},
		{"editor on article", identity("editor"), ArticleManage, nil},
		{"admin on comment", identity("admin"), CommentManage, nil},
		{"editor on media", identity("editor"), MediaManage, apperr.ErrForbidden},
		{"admin on media", identity("admin"), MediaManage, nil},
		{"owner on media", owner, MediaManage, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.RequireOwnerOr(tt.caller, ownerID, tt.override)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
