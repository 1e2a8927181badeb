// Package access decides whether a caller may perform an operation.
//
// Two checks exist. The role gate asks a casbin enforcer whether the
// caller's role holds a permission. The ownership gate passes the owner of
// an entity, or any role holding the entity's override permission.
package access

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/google/uuid"

	"newsportal/internal/auth"
	apperr "newsportal/internal/errors"
	domain "newsportal/internal/model"
)

// Permission is an (object, action) pair checked against the caller's role.
type Permission struct {
	Object string
	Action string
}

func (p Permission) String() string {
	return p.Object + ":" + p.Action
}

var (
	CategoryCreate  = Permission{Object: "category", Action: "create"}
	CategoryUpdate  = Permission{Object: "category", Action: "update"}
	CategoryDelete  = Permission{Object: "category", Action: "delete"}
	CommentModerate = Permission{Object: "comment", Action: "moderate"}
	CommentManage   = Permission{Object: "comment", Action: "manage"}
	ArticleManage   = Permission{Object: "article", Action: "manage"}
	ArticlePublish  = Permission{Object: "article", Action: "publish"}
	MediaManage     = Permission{Object: "media", Action: "manage"}
	MediaListAll    = Permission{Object: "media", Action: "list_all"}
)

// roleHierarchy lists (member, inherited role) pairs.
var roleHierarchy = [][2]string{
	{domain.RoleAdmin, domain.RoleEditor},
	{domain.RoleEditor, domain.RoleUser},
}

// policies grants each permission to the lowest role that holds it.
var policies = []struct {
	role string
	perm Permission
}{
	{domain.RoleEditor, CategoryCreate},
	{domain.RoleEditor, CategoryUpdate},
	{domain.RoleAdmin, CategoryDelete},
	{domain.RoleEditor, CommentModerate},
	{domain.RoleEditor, CommentManage},
	{domain.RoleEditor, ArticleManage},
	{domain.RoleEditor, ArticlePublish},
	{domain.RoleAdmin, MediaManage},
	{domain.RoleEditor, MediaListAll},
}

// Controller is the access control layer consulted by every entity service.
type Controller struct {
	enforcer *casbin.Enforcer
}

// New builds the controller with its in-code model and policy.
func New() (*Controller, error) {
	m := model.NewModel()
	m.AddDef("r", "r", "sub, obj, act")
	m.AddDef("p", "p", "sub, obj, act")
	m.AddDef("g", "g", "_, _")
	m.AddDef("e", "e", "some(where (p.eft == allow))")
	m.AddDef("m", "m", "g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act")

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	for _, pair := range roleHierarchy {
		if _, err := e.AddGroupingPolicy(pair[0], pair[1]); err != nil {
			return nil, fmt.Errorf("casbin role %s: %w", pair[0], err)
		}
	}
	for _, p := range policies {
		if _, err := e.AddPolicy(p.role, p.perm.Object, p.perm.Action); err != nil {
			return nil, fmt.Errorf("casbin policy %s: %w", p.perm, err)
		}
	}
	return &Controller{enforcer: e}, nil
}

// MustNew is New for process startup and tests.
func MustNew() *Controller {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

// Allowed reports whether the caller's role holds the permission. A nil
// caller holds nothing.
func (c *Controller) Allowed(caller *auth.Identity, perm Permission) bool {
	if caller == nil {
		return false
	}
	ok, err := c.enforcer.Enforce(caller.Role, perm.Object, perm.Action)
	return err == nil && ok
}

// Authenticated fails with ErrAuthRequired for a nil caller.
func (c *Controller) Authenticated(caller *auth.Identity) error {
	if caller == nil {
		return apperr.ErrAuthRequired
	}
	return nil
}

// RequireRole is the role gate.
func (c *Controller) RequireRole(caller *auth.Identity, perm Permission) error {
	if err := c.Authenticated(caller); err != nil {
		return err
	}
	if !c.Allowed(caller, perm) {
		return apperr.ErrAccessDenied
	}
	return nil
}

// IsOwner reports whether the caller is the owner.
func (c *Controller) IsOwner(caller *auth.Identity, owner uuid.UUID) bool {
	return caller != nil && caller.ID == owner.String()
}

// RequireOwnerOr is the ownership gate: the owner passes, as does any role
// holding the override permission.
func (c *Controller) RequireOwnerOr(caller *auth.Identity, owner uuid.UUID, override Permission) error {
	if err := c.Authenticated(caller); err != nil {
		return err
	}
	if c.IsOwner(caller, owner) || c.Allowed(caller, override) {
		return nil
	}
	return apperr.ErrAccessDenied
}
